package routers

import (
	"net/http"
	"triptally/internal/api/handlers/expenses"
)

func expensesRouter() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/expenses/create", expenses.CreateExpenseHandler)

	mux.HandleFunc("/expenses/trip/{id}/expenses", expenses.GetTripExpensesHandler)

	mux.HandleFunc("/expenses/details/{id}/expense", expenses.GetExpenseByIDHandler)

	mux.HandleFunc("/expenses/{id}/update", expenses.UpdateExpenseHandler)

	mux.HandleFunc("/expenses/delete/{id}/expense", expenses.DeleteExpenseHandler)

	mux.HandleFunc("/expenses/{id}/split", expenses.UpdateSplitHandler)

	mux.HandleFunc("/expenses/{id}/finalize", expenses.FinalizeExpenseHandler)

	mux.HandleFunc("/expenses/{id}/settle", expenses.SettleSplitHandler)

	mux.HandleFunc("/expenses/trip/{id}/summary", expenses.TripSummaryHandler)

	mux.HandleFunc("/expenses/trip/{id}/settlement", expenses.TripSettlementHandler)

	mux.HandleFunc("/expenses/member/summary", expenses.UserSummaryHandler)

	return mux
}
