package expenses

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
	"triptally/internal/api/handlers"
	"triptally/internal/api/handlers/trips"
	"triptally/internal/models"
	"triptally/internal/repositories/sqlconnect"
	"triptally/internal/split"
	"triptally/pkg/utils"

	"github.com/shopspring/decimal"
)

// Query parameters the expense list accepts as filters, mapped to expenses
// columns.
var expenseFilters = map[string]string{
	"category":       "e.category",
	"currency":       "e.currency",
	"payment_method": "e.payment_method",
	"status":         "e.status",
}

// loadExpense fetches one live expense with its splits.
func loadExpense(ctx context.Context, db *sql.DB, expenseID int) (*models.Expense, error) {
	var e models.Expense
	err := db.QueryRowContext(ctx, `
		SELECT id, trip_id, title, COALESCE(description, ''), amount, currency, category, date,
			payment_method, COALESCE(tags, ''), COALESCE(notes, ''), status,
			paid_by, created_by, COALESCE(last_modified_by, 0), version, created_at, updated_at
		FROM expenses WHERE id = ? AND is_deleted = FALSE
	`, expenseID).Scan(
		&e.ID, &e.TripID, &e.Title, &e.Description, &e.Amount, &e.Currency, &e.Category, &e.Date,
		&e.PaymentMethod, &e.Tags, &e.Notes, &e.Status,
		&e.PaidBy, &e.CreatedBy, &e.LastModifiedBy, &e.Version, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, expense_id, user_id, amount, percentage, settled, settled_at
		FROM expense_splits WHERE expense_id = ?
		ORDER BY user_id
	`, expenseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var s models.ExpenseSplit
		if err := rows.Scan(&s.ID, &s.ExpenseID, &s.UserID, &s.Amount, &s.Percentage, &s.Settled, &s.SettledAt); err != nil {
			return nil, err
		}
		e.SplitBetween = append(e.SplitBetween, s)
	}
	return &e, rows.Err()
}

// isTripMember reports whether the user is the trip owner or an accepted
// collaborator. Used to validate split participants.
func isTripMember(ctx context.Context, db *sql.DB, tripID, userID int) (bool, error) {
	var member bool
	err := db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM trips WHERE id = ? AND owner_id = ? AND is_deleted = FALSE
			UNION
			SELECT 1 FROM trip_collaborators WHERE trip_id = ? AND user_id = ? AND status = 'accepted'
		)
	`, tripID, userID, tripID, userID).Scan(&member)
	return member, err
}

// FUNC TO CREATE AN EXPENSE WITH ITS SPLITS
func CreateExpenseHandler(w http.ResponseWriter, r *http.Request) {
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

	idFloat, ok := r.Context().Value(utils.ContextKey("userId")).(float64)
	if !ok {
		utils.WriteError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	userID := int(idFloat)
	role, _ := r.Context().Value(utils.ContextKey("role")).(string)

	type SplitInput struct {
		UserID     int                 `json:"user_id"`
		Amount     decimal.Decimal     `json:"amount"`
		Percentage decimal.NullDecimal `json:"percentage"`
	}

	type request struct {
		TripID        int             `json:"trip_id"`
		Title         string          `json:"title"`
		Description   string          `json:"description"`
		Amount        decimal.Decimal `json:"amount"`
		Currency      string          `json:"currency"`
		Category      string          `json:"category"`
		Date          string          `json:"date"`
		PaymentMethod string          `json:"payment_method"`
		Tags          string          `json:"tags"`
		Notes         string          `json:"notes"`
		PaidBy        int             `json:"paid_by"`
		SplitType     string          `json:"split_type"`
		Participants  []int           `json:"participants"`
		SplitBetween  []SplitInput    `json:"split_between"`
	}

	var req request
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		utils.WriteError(w, "expense title is required", http.StatusBadRequest)
		return
	}

	if req.Amount.LessThanOrEqual(decimal.Zero) {
		utils.WriteError(w, "amount must be greater than 0", http.StatusBadRequest)
		return
	}

	if !models.ValidCategory(req.Category) {
		utils.WriteError(w, "invalid category", http.StatusBadRequest)
		return
	}

	if req.PaymentMethod == "" {
		req.PaymentMethod = "cash"
	}
	if !models.ValidPaymentMethod(req.PaymentMethod) {
		utils.WriteError(w, "invalid payment method", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	allowed, err := trips.CanAccess(ctx, db, req.TripID, userID, role)
	if err == trips.ErrTripNotFound {
		utils.WriteError(w, "trip not found", http.StatusNotFound)
		return
	}
	if err != nil {
		utils.Logger.Errorf("error checking access: %v", err)
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if !allowed {
		utils.WriteError(w, "forbidden: you are not a collaborator on this trip", http.StatusForbidden)
		return
	}

	_, tripCurrency, _, err := trips.FetchTrip(ctx, db, req.TripID)
	if err != nil {
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if req.Currency == "" {
		req.Currency = tripCurrency
	}
	if !models.ValidCurrency(req.Currency) {
		utils.WriteError(w, "unsupported currency", http.StatusBadRequest)
		return
	}

	if req.PaidBy == 0 {
		req.PaidBy = userID
	}

	date := time.Now().UTC().Format("2006-01-02 15:04:05")
	if req.Date != "" {
		parsed, err := handlers.ParseDate(req.Date)
		if err != nil {
			utils.WriteError(w, "invalid date, use YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		date = parsed.Format("2006-01-02 15:04:05")
	}

	var shares []models.ExpenseSplit
	switch req.SplitType {
	case "", "none":
		// Unsplit personal expense, no shares recorded.
	case "equal":
		if len(req.Participants) == 0 {
			utils.WriteError(w, "participants are required for an equal split", http.StatusBadRequest)
			return
		}
		shares, err = split.Equal(req.Amount, req.Participants)
		if err != nil {
			utils.WriteError(w, err.Error(), http.StatusBadRequest)
			return
		}
	case "custom":
		for _, s := range req.SplitBetween {
			shares = append(shares, models.ExpenseSplit{UserID: s.UserID, Amount: s.Amount})
		}
		if err = split.ValidateCustom(req.Amount, shares); err != nil {
			if err == split.ErrSplitMismatch {
				utils.WriteError(w, "split amounts must equal the total expense amount", http.StatusUnprocessableEntity)
				return
			}
			utils.WriteError(w, err.Error(), http.StatusBadRequest)
			return
		}
	case "percentage":
		for _, s := range req.SplitBetween {
			shares = append(shares, models.ExpenseSplit{UserID: s.UserID, Percentage: s.Percentage})
		}
		shares, err = split.ApplyPercentage(req.Amount, shares)
		if err != nil {
			utils.WriteError(w, err.Error(), http.StatusBadRequest)
			return
		}
	default:
		utils.WriteError(w, "split_type must be equal, custom or percentage", http.StatusBadRequest)
		return
	}

	seen := make(map[int]bool)
	for _, s := range shares {
		if seen[s.UserID] {
			utils.WriteError(w, "duplicate user in split", http.StatusBadRequest)
			return
		}
		seen[s.UserID] = true

		member, err := isTripMember(ctx, db, req.TripID, s.UserID)
		if err != nil {
			utils.WriteError(w, "failed to verify trip membership", http.StatusInternalServerError)
			return
		}
		if !member {
			utils.WriteError(w, fmt.Sprintf("user %d is not a collaborator on this trip", s.UserID), http.StatusBadRequest)
			return
		}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		utils.Logger.Errorf("failed to start transaction: %v", err)
		utils.WriteError(w, "failed to start transaction", http.StatusInternalServerError)
		return
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO expenses (trip_id, title, description, amount, currency, category, date,
			payment_method, tags, notes, status, paid_by, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 'confirmed', ?, ?)
	`, req.TripID, req.Title, req.Description, req.Amount, req.Currency, req.Category, date,
		req.PaymentMethod, req.Tags, req.Notes, req.PaidBy, userID)
	if err != nil {
		tx.Rollback()
		utils.Logger.Errorf("failed to create expense: %v", err)
		utils.WriteError(w, "failed to create expense", http.StatusInternalServerError)
		return
	}

	expenseID, _ := res.LastInsertId()

	if len(shares) > 0 {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO expense_splits (expense_id, user_id, amount, percentage, settled)
			VALUES (?, ?, ?, ?, FALSE)
		`)
		if err != nil {
			tx.Rollback()
			utils.Logger.Errorf("failed to prepare statement: %v", err)
			utils.WriteError(w, "internal server error", http.StatusInternalServerError)
			return
		}
		defer stmt.Close()

		for _, s := range shares {
			if _, err := stmt.ExecContext(ctx, expenseID, s.UserID, s.Amount, s.Percentage); err != nil {
				tx.Rollback()
				utils.Logger.Errorf("failed to insert split: %v", err)
				utils.WriteError(w, "failed to split expense", http.StatusInternalServerError)
				return
			}
		}
	}

	if err := tx.Commit(); err != nil {
		utils.WriteError(w, "failed to commit transaction", http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"status":  "success",
		"message": fmt.Sprintf("Expense created and split among %d participants", len(shares)),
		"data": map[string]interface{}{
			"expense_id": expenseID,
			"amount":     req.Amount,
			"currency":   req.Currency,
			"splits":     shares,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(response)
}

// FUNC TO GET ALL EXPENSES FOR A TRIP
func GetTripExpensesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
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
	tripID, err := strconv.Atoi(idStr)
	if err != nil {
		utils.WriteError(w, "invalid trip ID", http.StatusBadRequest)
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

	allowed, err := trips.CanAccess(ctx, db, tripID, userID, role)
	if err == trips.ErrTripNotFound {
		utils.WriteError(w, "trip not found", http.StatusNotFound)
		return
	}
	if err != nil {
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if !allowed {
		utils.WriteError(w, "forbidden: you are not a collaborator on this trip", http.StatusForbidden)
		return
	}

	query := `
		SELECT e.id, e.title, COALESCE(e.description, ''), e.amount, e.currency, e.category,
			e.date, e.payment_method, e.status, u.username AS paid_by, e.version, e.created_at
		FROM expenses e
		JOIN users u ON e.paid_by = u.id
		WHERE e.trip_id = ? AND e.is_deleted = FALSE
	`
	args := []interface{}{tripID}

	if startDate := r.URL.Query().Get("start_date"); startDate != "" {
		parsed, err := handlers.ParseDate(startDate)
		if err != nil {
			utils.WriteError(w, "invalid start_date, use YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		query += " AND e.date >= ?"
		args = append(args, parsed.Format("2006-01-02 15:04:05"))
	}
	if endDate := r.URL.Query().Get("end_date"); endDate != "" {
		parsed, err := handlers.ParseDate(endDate)
		if err != nil {
			utils.WriteError(w, "invalid end_date, use YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		query += " AND e.date <= ?"
		args = append(args, parsed.Format("2006-01-02 15:04:05"))
	}

	query, args = utils.AddFilters(r, query, args, expenseFilters)
	query += " ORDER BY e.date DESC"

	page, limit := utils.GetPaginationParams(r)
	offset := (page - 1) * limit
	query += " LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		utils.Logger.Errorf("failed to retrieve expenses: %v", err)
		utils.WriteError(w, "failed to retrieve expenses", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	type ExpenseRow struct {
		ID            int             `json:"id"`
		Title         string          `json:"title"`
		Description   string          `json:"description"`
		Amount        decimal.Decimal `json:"amount"`
		Currency      string          `json:"currency"`
		Category      string          `json:"category"`
		Date          sql.NullString  `json:"date"`
		PaymentMethod string          `json:"payment_method"`
		Status        string          `json:"status"`
		PaidBy        string          `json:"paid_by"`
		Version       int             `json:"version"`
		CreatedAt     sql.NullString  `json:"created_at"`
	}

	expenseList := make([]ExpenseRow, 0)
	for rows.Next() {
		var e ExpenseRow
		err := rows.Scan(&e.ID, &e.Title, &e.Description, &e.Amount, &e.Currency, &e.Category,
			&e.Date, &e.PaymentMethod, &e.Status, &e.PaidBy, &e.Version, &e.CreatedAt)
		if err != nil {
			utils.Logger.Errorf("error reading expenses: %v", err)
			utils.WriteError(w, "error reading expenses", http.StatusInternalServerError)
			return
		}
		expenseList = append(expenseList, e)
	}

	if err = rows.Err(); err != nil {
		utils.WriteError(w, "error finalizing expenses read", http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"status":    "success",
		"trip_id":   tripID,
		"count":     len(expenseList),
		"page":      page,
		"page_size": limit,
		"expenses":  expenseList,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// FUNC TO GET ONE EXPENSE WITH ITS SPLITS
func GetExpenseByIDHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
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
		utils.Logger.Errorf("failed to retrieve expense: %v", err)
		utils.WriteError(w, "failed to retrieve expense", http.StatusInternalServerError)
		return
	}

	allowed, err := trips.CanAccess(ctx, db, expense.TripID, userID, role)
	if err != nil && err != trips.ErrTripNotFound {
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if err == trips.ErrTripNotFound || !allowed {
		utils.WriteError(w, "forbidden: you are not a collaborator on this trip", http.StatusForbidden)
		return
	}

	response := map[string]interface{}{
		"status": "success",
		"data": map[string]interface{}{
			"expense":          expense,
			"total_split":      expense.TotalSplitAmount(),
			"unsettled_amount": expense.UnsettledAmount(),
			"fully_settled":    expense.IsFullySettled(),
		},
	}

	utils.WriteJSON(w, response)
}

// FUNC TO UPDATE AN EXPENSE WITH A VERSION CHECK
func UpdateExpenseHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
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
		Title         string           `json:"title"`
		Description   string           `json:"description"`
		Amount        *decimal.Decimal `json:"amount"`
		Currency      string           `json:"currency"`
		Category      string           `json:"category"`
		Date          string           `json:"date"`
		PaymentMethod string           `json:"payment_method"`
		Tags          string           `json:"tags"`
		Notes         string           `json:"notes"`
		Status        string           `json:"status"`
		Version       int              `json:"version"`
	}

	var req request
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err = decoder.Decode(&req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if req.Version < 1 {
		utils.WriteError(w, "version is required", http.StatusBadRequest)
		return
	}

	if req.Currency != "" && !models.ValidCurrency(req.Currency) {
		utils.WriteError(w, "unsupported currency", http.StatusBadRequest)
		return
	}
	if req.Category != "" && !models.ValidCategory(req.Category) {
		utils.WriteError(w, "invalid category", http.StatusBadRequest)
		return
	}
	if req.PaymentMethod != "" && !models.ValidPaymentMethod(req.PaymentMethod) {
		utils.WriteError(w, "invalid payment method", http.StatusBadRequest)
		return
	}
	if req.Status != "" && !models.ValidExpenseStatus(req.Status) {
		utils.WriteError(w, "invalid status", http.StatusBadRequest)
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
		utils.WriteError(w, "forbidden: only the creator or trip owner can edit this expense", http.StatusForbidden)
		return
	}

	if req.Amount != nil {
		if req.Amount.LessThanOrEqual(decimal.Zero) {
			utils.WriteError(w, "amount must be greater than 0", http.StatusBadRequest)
			return
		}
		// Changing the total invalidates existing shares, which must be
		// re-entered and re-finalized against the new amount.
		if len(expense.SplitBetween) > 0 && !req.Amount.Equal(expense.Amount) {
			utils.WriteError(w, "cannot change the amount of a split expense, update its splits first", http.StatusConflict)
			return
		}
	}

	// Build dynamic update query
	fields := []string{}
	args := []interface{}{}

	if req.Title != "" {
		fields = append(fields, "title = ?")
		args = append(args, strings.TrimSpace(req.Title))
	}
	if req.Description != "" {
		fields = append(fields, "description = ?")
		args = append(args, req.Description)
	}
	if req.Amount != nil {
		fields = append(fields, "amount = ?")
		args = append(args, *req.Amount)
	}
	if req.Currency != "" {
		fields = append(fields, "currency = ?")
		args = append(args, req.Currency)
	}
	if req.Category != "" {
		fields = append(fields, "category = ?")
		args = append(args, req.Category)
	}
	if req.Date != "" {
		parsed, err := handlers.ParseDate(req.Date)
		if err != nil {
			utils.WriteError(w, "invalid date, use YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		fields = append(fields, "date = ?")
		args = append(args, parsed.Format("2006-01-02 15:04:05"))
	}
	if req.PaymentMethod != "" {
		fields = append(fields, "payment_method = ?")
		args = append(args, req.PaymentMethod)
	}
	if req.Tags != "" {
		fields = append(fields, "tags = ?")
		args = append(args, req.Tags)
	}
	if req.Notes != "" {
		fields = append(fields, "notes = ?")
		args = append(args, req.Notes)
	}
	if req.Status != "" {
		fields = append(fields, "status = ?")
		args = append(args, req.Status)
	}

	if len(fields) == 0 {
		utils.WriteError(w, "no updates provided", http.StatusBadRequest)
		return
	}

	fields = append(fields, "last_modified_by = ?", "version = version + 1")
	args = append(args, userID, expenseID, req.Version)

	query := fmt.Sprintf("UPDATE expenses SET %s WHERE id = ? AND version = ? AND is_deleted = FALSE",
		strings.Join(fields, ", "))
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		utils.Logger.Errorf("failed to update expense: %v", err)
		utils.WriteError(w, "failed to update expense", http.StatusInternalServerError)
		return
	}

	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		utils.WriteError(w, "expense was modified by someone else, refresh and retry", http.StatusConflict)
		return
	}

	response := map[string]interface{}{
		"status":  "success",
		"message": "Expense updated successfully",
		"data": map[string]interface{}{
			"expense_id": expenseID,
			"version":    req.Version + 1,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// FUNC TO SOFT DELETE AN EXPENSE
func DeleteExpenseHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
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

	var tripID, createdBy int
	err = db.QueryRowContext(ctx,
		"SELECT trip_id, created_by FROM expenses WHERE id = ? AND is_deleted = FALSE",
		expenseID).Scan(&tripID, &createdBy)
	if err != nil {
		if err == sql.ErrNoRows {
			utils.WriteError(w, "expense not found or already deleted", http.StatusNotFound)
			return
		}
		utils.WriteError(w, "failed to retrieve expense", http.StatusInternalServerError)
		return
	}

	canEdit, err := trips.CanEditExpense(ctx, db, tripID, createdBy, userID, role)
	if err != nil {
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if !canEdit {
		utils.WriteError(w, "forbidden: only the creator or trip owner can delete this expense", http.StatusForbidden)
		return
	}

	now := time.Now().UTC().Format("2006-01-02 15:04:05")
	res, err := db.ExecContext(ctx, `
		UPDATE expenses
		SET is_deleted = TRUE, deleted_at = ?, last_modified_by = ?, version = version + 1
		WHERE id = ? AND is_deleted = FALSE
	`, now, userID, expenseID)
	if err != nil {
		utils.Logger.Errorf("error deleting expense: %v", err)
		utils.WriteError(w, "error deleting expense", http.StatusInternalServerError)
		return
	}

	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		utils.WriteError(w, "expense not found or already deleted", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "success",
		"message": "expense deleted successfully",
	})
}
