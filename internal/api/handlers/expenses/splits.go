package expenses

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"time"
	"triptally/internal/api/handlers/trips"
	"triptally/internal/models"
	"triptally/internal/repositories/sqlconnect"
	"triptally/pkg/utils"

	"github.com/shopspring/decimal"
)

// FUNC TO ADD OR REPLACE ONE USER'S SPLIT ON AN EXPENSE
func UpdateSplitHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	db := sqlconnect.DB
	if db == nil {
		utils.Logger.Error("DB is not initialized")
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	idStr := r.PathValue("id")
	expenseID, err := strconv.Atoi(idStr)
	if err != nil {
		utils.WriteError(w, "invalid expense ID", http.StatusBadRequest)
		return
	}

	idFloat, ok := r.Context().Value(utils.ContextKey("userId")).(float64)
	if !ok {
		utils.WriteError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	userID := int(idFloat)
	role, _ := r.Context().Value(utils.ContextKey("role")).(string)

	type request struct {
		UserID     int                 `json:"user_id"`
		Amount     decimal.Decimal     `json:"amount"`
		Percentage decimal.NullDecimal `json:"percentage"`
		Version    int                 `json:"version"`
	}

	var req request
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err = decoder.Decode(&req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if req.UserID == 0 {
		utils.WriteError(w, "user_id is required", http.StatusBadRequest)
		return
	}
	if req.Amount.IsNegative() {
		utils.WriteError(w, "split amount cannot be negative", http.StatusBadRequest)
		return
	}
	if req.Percentage.Valid &&
		(req.Percentage.Decimal.IsNegative() || req.Percentage.Decimal.GreaterThan(decimal.NewFromInt(100))) {
		utils.WriteError(w, "percentage must be between 0 and 100", http.StatusBadRequest)
		return
	}
	if req.Version < 1 {
		utils.WriteError(w, "version is required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	expense, err := loadExpense(ctx, db, expenseID)
	if err != nil {
		if err == sql.ErrNoRows {
			utils.WriteError(w, "expense not found", http.StatusNotFound)
			return
		}
		utils.WriteError(w, "failed to retrieve expense", http.StatusInternalServerError)
		return
	}

	canEdit, err := trips.CanEditExpense(ctx, db, expense.TripID, expense.CreatedBy, userID, role)
	if err != nil {
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if !canEdit {
		utils.WriteError(w, "forbidden: only the creator or trip owner can edit splits", http.StatusForbidden)
		return
	}

	member, err := isTripMember(ctx, db, expense.TripID, req.UserID)
	if err != nil {
		utils.WriteError(w, "failed to verify trip membership", http.StatusInternalServerError)
		return
	}
	if !member {
		utils.WriteError(w, "user is not a collaborator on this trip", http.StatusBadRequest)
		return
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		utils.Logger.Errorf("failed to start transaction: %v", err)
		utils.WriteError(w, "failed to start transaction", http.StatusInternalServerError)
		return
	}

	// The version bump doubles as the concurrency gate for the whole split set.
	res, err := tx.ExecContext(ctx, `
		UPDATE expenses SET version = version + 1, last_modified_by = ?
		WHERE id = ? AND version = ? AND is_deleted = FALSE
	`, userID, expenseID, req.Version)
	if err != nil {
		tx.Rollback()
		utils.Logger.Errorf("failed to bump expense version: %v", err)
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		tx.Rollback()
		utils.WriteError(w, "expense was modified by someone else, refresh and retry", http.StatusConflict)
		return
	}

	// Replacing a share resets its settled state, the new amount has not
	// been paid.
	_, err = tx.ExecContext(ctx, `
		INSERT INTO expense_splits (expense_id, user_id, amount, percentage, settled, settled_at)
		VALUES (?, ?, ?, ?, FALSE, NULL)
		ON DUPLICATE KEY UPDATE amount = VALUES(amount), percentage = VALUES(percentage),
			settled = FALSE, settled_at = NULL
	`, expenseID, req.UserID, req.Amount, req.Percentage)
	if err != nil {
		tx.Rollback()
		utils.Logger.Errorf("failed to upsert split: %v", err)
		utils.WriteError(w, "failed to update split", http.StatusInternalServerError)
		return
	}

	if err = tx.Commit(); err != nil {
		utils.WriteError(w, "failed to commit transaction", http.StatusInternalServerError)
		return
	}

	expense.AddOrReplaceSplit(req.UserID, req.Amount, req.Percentage)

	response := map[string]interface{}{
		"status":  "success",
		"message": "split saved, finalize the expense to lock it in",
		"data": map[string]interface{}{
			"expense_id":  expenseID,
			"version":     req.Version + 1,
			"total_split": expense.TotalSplitAmount(),
			"amount":      expense.Amount,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// FUNC TO FINALIZE AN EXPENSE AFTER SPLIT EDITS
func FinalizeExpenseHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	db := sqlconnect.DB
	if db == nil {
		utils.Logger.Error("DB is not initialized")
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	idStr := r.PathValue("id")
	expenseID, err := strconv.Atoi(idStr)
	if err != nil {
		utils.WriteError(w, "invalid expense ID", http.StatusBadRequest)
		return
	}

	idFloat, ok := r.Context().Value(utils.ContextKey("userId")).(float64)
	if !ok {
		utils.WriteError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	userID := int(idFloat)
	role, _ := r.Context().Value(utils.ContextKey("role")).(string)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	expense, err := loadExpense(ctx, db, expenseID)
	if err != nil {
		if err == sql.ErrNoRows {
			utils.WriteError(w, "expense not found", http.StatusNotFound)
			return
		}
		utils.WriteError(w, "failed to retrieve expense", http.StatusInternalServerError)
		return
	}

	canEdit, err := trips.CanEditExpense(ctx, db, expense.TripID, expense.CreatedBy, userID, role)
	if err != nil {
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if !canEdit {
		utils.WriteError(w, "forbidden: only the creator or trip owner can finalize this expense", http.StatusForbidden)
		return
	}

	if err := expense.Validate(); err != nil {
		if err == models.ErrSplitMismatch {
			utils.WriteError(w, "split amounts must equal the total expense amount", http.StatusUnprocessableEntity)
			return
		}
		utils.WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}

	_, err = db.ExecContext(ctx, `
		UPDATE expenses SET status = 'confirmed', last_modified_by = ?
		WHERE id = ? AND is_deleted = FALSE
	`, userID, expenseID)
	if err != nil {
		utils.Logger.Errorf("failed to finalize expense: %v", err)
		utils.WriteError(w, "failed to finalize expense", http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"status":  "success",
		"message": "expense finalized",
		"data": map[string]interface{}{
			"expense_id":  expenseID,
			"amount":      expense.Amount,
			"total_split": expense.TotalSplitAmount(),
			"splits":      len(expense.SplitBetween),
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// FUNC TO SETTLE A USER'S SHARE OF AN EXPENSE
func SettleSplitHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	db := sqlconnect.DB
	if db == nil {
		utils.Logger.Error("DB is not initialized")
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	idStr := r.PathValue("id")
	expenseID, err := strconv.Atoi(idStr)
	if err != nil {
		utils.WriteError(w, "invalid expense ID", http.StatusBadRequest)
		return
	}

	idFloat, ok := r.Context().Value(utils.ContextKey("userId")).(float64)
	if !ok {
		utils.WriteError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	userID := int(idFloat)
	role, _ := r.Context().Value(utils.ContextKey("role")).(string)

	type request struct {
		UserID int `json:"user_id"`
	}

	var req request
	if r.Body != nil && r.ContentLength > 0 {
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err = decoder.Decode(&req); err != nil {
			utils.WriteError(w, "invalid request body", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()
	}
	if req.UserID == 0 {
		req.UserID = userID
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	expense, err := loadExpense(ctx, db, expenseID)
	if err != nil {
		if err == sql.ErrNoRows {
			utils.WriteError(w, "expense not found", http.StatusNotFound)
			return
		}
		utils.WriteError(w, "failed to retrieve expense", http.StatusInternalServerError)
		return
	}

	// Settling your own share needs trip access only; settling on behalf of
	// someone else is reserved for the payer, creator or trip owner.
	if req.UserID == userID {
		allowed, err := trips.CanAccess(ctx, db, expense.TripID, userID, role)
		if err != nil {
			utils.WriteError(w, "internal server error", http.StatusInternalServerError)
			return
		}
		if !allowed {
			utils.WriteError(w, "forbidden: you are not a collaborator on this trip", http.StatusForbidden)
			return
		}
	} else {
		canEdit, err := trips.CanEditExpense(ctx, db, expense.TripID, expense.CreatedBy, userID, role)
		if err != nil {
			utils.WriteError(w, "internal server error", http.StatusInternalServerError)
			return
		}
		if !canEdit && expense.PaidBy != userID {
			utils.WriteError(w, "forbidden: you cannot settle someone else's share", http.StatusForbidden)
			return
		}
	}

	now := time.Now()
	if err := expense.SettleShare(req.UserID, now); err != nil {
		switch err {
		case models.ErrShareNotFound:
			utils.WriteError(w, "no split found for this user", http.StatusNotFound)
		case models.ErrAlreadySettled:
			utils.WriteError(w, "split is already settled", http.StatusConflict)
		case models.ErrSplitMismatch:
			utils.WriteError(w, "split amounts must equal the total expense amount, fix the splits before settling", http.StatusUnprocessableEntity)
		default:
			utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		}
		return
	}

	// The settled = FALSE guard makes concurrent settles lose cleanly.
	res, err := db.ExecContext(ctx, `
		UPDATE expense_splits SET settled = TRUE, settled_at = ?
		WHERE expense_id = ? AND user_id = ? AND settled = FALSE
	`, now.UTC().Format("2006-01-02 15:04:05"), expenseID, req.UserID)
	if err != nil {
		utils.Logger.Errorf("failed to settle split: %v", err)
		utils.WriteError(w, "failed to settle split", http.StatusInternalServerError)
		return
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		utils.WriteError(w, "split is already settled", http.StatusConflict)
		return
	}

	var share models.ExpenseSplit
	for _, s := range expense.SplitBetween {
		if s.UserID == req.UserID {
			share = s
			break
		}
	}

	// Tell the payer their money arrived, unless they settled their own share.
	if expense.PaidBy != req.UserID {
		var payerEmail, settlerName string
		err = db.QueryRowContext(ctx, "SELECT email FROM users WHERE id = ?", expense.PaidBy).Scan(&payerEmail)
		if err == nil {
			err = db.QueryRowContext(ctx,
				"SELECT CONCAT(first_name, ' ', last_name) FROM users WHERE id = ?",
				req.UserID).Scan(&settlerName)
		}
		if err == nil {
			_, _, tripTitle, tripErr := trips.FetchTrip(ctx, db, expense.TripID)
			if tripErr != nil {
				tripTitle = ""
			}
			go func(email, name, amount, currency, title, expenseTitle string, when time.Time) {
				if err := utils.SendSettlementReceivedEmail(email, name, amount, currency, title, expenseTitle, when); err != nil {
					utils.Logger.Errorf("failed to send settlement email to %s: %v", email, err)
				}
			}(payerEmail, settlerName, share.Amount.StringFixed(2), expense.Currency, tripTitle, expense.Title, now)
		}
	}

	response := map[string]interface{}{
		"status":  "success",
		"message": "share settled successfully",
		"data": map[string]interface{}{
			"expense_id":    expenseID,
			"user_id":       req.UserID,
			"amount":        share.Amount,
			"fully_settled": expense.IsFullySettled(),
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}
