package utils

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

var sortableFields = map[string]string{
	"amount":       "amount",
	"date":         "date",
	"title":        "title",
	"created_at":   "created_at",
	"budget_total": "budget_total",
}

// AddFilters appends WHERE conditions from whitelisted query parameters.
// Each call site passes the parameter-to-column map for its own table, so
// a parameter that only exists on another table is ignored rather than
// producing an unknown-column error. The base query must already contain a
// WHERE clause.
func AddFilters(r *http.Request, query string, args []interface{}, allowed map[string]string) (string, []interface{}) {
	for param, column := range allowed {
		value := strings.TrimSpace(r.URL.Query().Get(param))
		if value == "" {
			continue
		}
		query += fmt.Sprintf(" AND %s = ?", column)
		args = append(args, value)
	}
	return query, args
}

// AddSorting appends an ORDER BY clause built from the sortby parameter,
// e.g. ?sortby=amount:desc&sortby=date:asc. Unknown fields are ignored.
func AddSorting(r *http.Request, query string) string {
	sortParams := r.URL.Query()["sortby"]
	if len(sortParams) == 0 {
		return query
	}

	clauses := []string{}
	for _, param := range sortParams {
		parts := strings.Split(param, ":")
		if len(parts) != 2 {
			continue
		}
		column, ok := sortableFields[parts[0]]
		if !ok {
			continue
		}
		order := strings.ToUpper(parts[1])
		if order != "ASC" && order != "DESC" {
			continue
		}
		clauses = append(clauses, fmt.Sprintf("%s %s", column, order))
	}

	if len(clauses) > 0 {
		query += " ORDER BY " + strings.Join(clauses, ", ")
	}
	return query
}

// GetPaginationParams reads page and limit query parameters with sane defaults.
func GetPaginationParams(r *http.Request) (int, int) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit < 1 || limit > 100 {
		limit = 20
	}

	return page, limit
}
