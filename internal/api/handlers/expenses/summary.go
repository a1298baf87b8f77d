package expenses

import (
	"context"
	"database/sql"
	"net/http"
	"strconv"
	"time"
	"triptally/internal/api/handlers"
	"triptally/internal/api/handlers/trips"
	"triptally/internal/models"
	"triptally/internal/repositories/sqlconnect"
	"triptally/internal/settlement"
	"triptally/pkg/utils"

	"github.com/shopspring/decimal"
)

// loadTripExpenses fetches all live expenses of a trip with their splits, the
// input the settlement package works on.
func loadTripExpenses(ctx context.Context, db *sql.DB, tripID int) ([]*models.Expense, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, trip_id, amount, currency, category, date, paid_by, is_deleted
		FROM expenses
		WHERE trip_id = ? AND is_deleted = FALSE
	`, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[int]*models.Expense)
	var expenses []*models.Expense
	for rows.Next() {
		var e models.Expense
		if err := rows.Scan(&e.ID, &e.TripID, &e.Amount, &e.Currency, &e.Category,
			&e.Date, &e.PaidBy, &e.IsDeleted); err != nil {
			return nil, err
		}
		byID[e.ID] = &e
		expenses = append(expenses, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	splitRows, err := db.QueryContext(ctx, `
		SELECT s.expense_id, s.user_id, s.amount, s.settled
		FROM expense_splits s
		JOIN expenses e ON e.id = s.expense_id
		WHERE e.trip_id = ? AND e.is_deleted = FALSE
		ORDER BY s.user_id
	`, tripID)
	if err != nil {
		return nil, err
	}
	defer splitRows.Close()

	for splitRows.Next() {
		var s models.ExpenseSplit
		if err := splitRows.Scan(&s.ExpenseID, &s.UserID, &s.Amount, &s.Settled); err != nil {
			return nil, err
		}
		if e, ok := byID[s.ExpenseID]; ok {
			e.SplitBetween = append(e.SplitBetween, s)
		}
	}
	return expenses, splitRows.Err()
}

// FUNC TO GET THE TRIP EXPENSE SUMMARY
func TripSummaryHandler(w http.ResponseWriter, r *http.Request) {
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

	_, currency, _, err := trips.FetchTrip(ctx, db, tripID)
	if err != nil {
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	expenses, err := loadTripExpenses(ctx, db, tripID)
	if err != nil {
		utils.Logger.Errorf("failed to load trip expenses: %v", err)
		utils.WriteError(w, "failed to retrieve expenses", http.StatusInternalServerError)
		return
	}

	totalAmount := decimal.Zero
	for _, e := range expenses {
		totalAmount = totalAmount.Add(e.Amount)
	}

	plan := settlement.Settle(expenses, currency)

	response := map[string]interface{}{
		"status": "success",
		"data": map[string]interface{}{
			"trip_id":      tripID,
			"total_amount": totalAmount,
			"total_count":  len(expenses),
			"currency":     currency,
			"by_category":  settlement.ByCategory(expenses),
			"settlements":  plan.Transfers,
		},
	}

	utils.WriteJSON(w, response)
}

// FUNC TO GET THE FULL SETTLEMENT PLAN FOR A TRIP
func TripSettlementHandler(w http.ResponseWriter, r *http.Request) {
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

	_, currency, _, err := trips.FetchTrip(ctx, db, tripID)
	if err != nil {
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	expenses, err := loadTripExpenses(ctx, db, tripID)
	if err != nil {
		utils.Logger.Errorf("failed to load trip expenses: %v", err)
		utils.WriteError(w, "failed to retrieve expenses", http.StatusInternalServerError)
		return
	}

	plan := settlement.Settle(expenses, currency)

	response := map[string]interface{}{
		"status": "success",
		"data": map[string]interface{}{
			"trip_id":   tripID,
			"currency":  currency,
			"balances":  plan.Balances,
			"transfers": plan.Transfers,
		},
	}

	utils.WriteJSON(w, response)
}

// FUNC TO GET THE LOGGED-IN USER'S SPENDING SUMMARY
func UserSummaryHandler(w http.ResponseWriter, r *http.Request) {
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

	idFloat, ok := r.Context().Value(utils.ContextKey("userId")).(float64)
	if !ok {
		utils.WriteError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	userID := int(idFloat)

	var start, end *time.Time
	if s := r.URL.Query().Get("start_date"); s != "" {
		parsed, err := handlers.ParseDate(s)
		if err != nil {
			utils.WriteError(w, "invalid start_date, use YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		start = &parsed
	}
	if s := r.URL.Query().Get("end_date"); s != "" {
		parsed, err := handlers.ParseDate(s)
		if err != nil {
			utils.WriteError(w, "invalid end_date, use YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		end = &parsed
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	rows, err := db.QueryContext(ctx, `
		SELECT id, trip_id, amount, currency, category, date, paid_by, is_deleted
		FROM expenses
		WHERE paid_by = ? AND is_deleted = FALSE
	`, userID)
	if err != nil {
		utils.Logger.Errorf("failed to load user expenses: %v", err)
		utils.WriteError(w, "failed to retrieve expenses", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	var expenses []*models.Expense
	for rows.Next() {
		var e models.Expense
		if err := rows.Scan(&e.ID, &e.TripID, &e.Amount, &e.Currency, &e.Category,
			&e.Date, &e.PaidBy, &e.IsDeleted); err != nil {
			utils.Logger.Errorf("error reading expenses: %v", err)
			utils.WriteError(w, "error reading expenses", http.StatusInternalServerError)
			return
		}
		expenses = append(expenses, &e)
	}
	if err = rows.Err(); err != nil {
		utils.WriteError(w, "error finalizing expenses read", http.StatusInternalServerError)
		return
	}

	summary := settlement.ByUser(expenses, userID, start, end)

	totalAmount := decimal.Zero
	for _, row := range summary {
		totalAmount = totalAmount.Add(row.TotalAmount)
	}

	response := map[string]interface{}{
		"status": "success",
		"data": map[string]interface{}{
			"user_id":      userID,
			"total_amount": totalAmount,
			"rows":         summary,
		},
	}

	utils.WriteJSON(w, response)
}
