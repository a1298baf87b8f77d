// Package settlement computes net balances and a minimal transfer plan for a
// trip's expenses, plus category and per-user summaries. Soft-deleted
// expenses must be filtered out before they reach this package; everything
// here is pure and order-deterministic.
package settlement

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"triptally/internal/models"
)

// noiseFloor suppresses transfers smaller than a cent left over by the
// clients' rounded split amounts.
var noiseFloor = decimal.NewFromFloat(0.01)

// Balance is one user's position across all expenses of a trip.
// Positive NetBalance means the user is owed money.
type Balance struct {
	UserID     int             `json:"user_id"`
	TotalPaid  decimal.Decimal `json:"total_paid"`
	TotalOwed  decimal.Decimal `json:"total_owed"`
	NetBalance decimal.Decimal `json:"net_balance"`
}

// Transfer is one settlement instruction: From pays To.
type Transfer struct {
	FromUserID int             `json:"from_user_id"`
	ToUserID   int             `json:"to_user_id"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
}

// Plan is the full settlement output for a trip.
type Plan struct {
	Balances  []Balance  `json:"balances"`
	Transfers []Transfer `json:"transfers"`
}

// Contributions returns each participant's signed balance change for one
// expense: the payer gains amount minus their own share (the full amount when
// they are not a participant), every other participant loses their share.
func Contributions(e *models.Expense) map[int]decimal.Decimal {
	out := make(map[int]decimal.Decimal, len(e.SplitBetween)+1)

	payerIsParticipant := false
	for _, s := range e.SplitBetween {
		if s.UserID == e.PaidBy {
			payerIsParticipant = true
			out[e.PaidBy] = e.Amount.Sub(s.Amount)
			continue
		}
		out[s.UserID] = s.Amount.Neg()
	}
	if !payerIsParticipant {
		out[e.PaidBy] = e.Amount
	}
	return out
}

// Settle aggregates non-deleted expenses into per-user balances and a greedy
// minimal transfer plan. Creditors and debtors are each processed in
// ascending user-id order, which pins the plan's output for a given input.
// Any rounding residual inside the split tolerance is absorbed by the largest
// creditor so the emitted transfers reconcile exactly with the balances.
func Settle(expenses []*models.Expense, currency string) Plan {
	paid := make(map[int]decimal.Decimal)
	owed := make(map[int]decimal.Decimal)

	for _, e := range expenses {
		if e.IsDeleted || len(e.SplitBetween) == 0 {
			continue
		}
		for userID, delta := range Contributions(e) {
			if delta.IsNegative() {
				owed[userID] = owed[userID].Add(delta.Neg())
			} else {
				paid[userID] = paid[userID].Add(delta)
			}
		}
	}

	userIDs := make([]int, 0, len(paid)+len(owed))
	seen := make(map[int]bool)
	for id := range paid {
		userIDs = append(userIDs, id)
		seen[id] = true
	}
	for id := range owed {
		if !seen[id] {
			userIDs = append(userIDs, id)
		}
	}
	sort.Ints(userIDs)

	plan := Plan{Balances: []Balance{}, Transfers: []Transfer{}}

	var creditors, debtors []Balance
	for _, id := range userIDs {
		b := Balance{
			UserID:     id,
			TotalPaid:  paid[id],
			TotalOwed:  owed[id],
			NetBalance: paid[id].Sub(owed[id]),
		}
		plan.Balances = append(plan.Balances, b)
		switch {
		case b.NetBalance.IsPositive():
			creditors = append(creditors, b)
		case b.NetBalance.IsNegative():
			debtors = append(debtors, b)
		}
	}

	// Rounding drift from tolerant custom splits can leave total credit and
	// total debt unequal by up to the tolerance; park the difference on the
	// largest creditor so the greedy match terminates at zero.
	residual := decimal.Zero
	for _, c := range creditors {
		residual = residual.Add(c.NetBalance)
	}
	for _, d := range debtors {
		residual = residual.Sub(d.NetBalance.Neg())
	}
	if !residual.IsZero() && len(creditors) > 0 {
		largest := 0
		for i, c := range creditors {
			if c.NetBalance.GreaterThan(creditors[largest].NetBalance) {
				largest = i
			}
		}
		creditors[largest].NetBalance = creditors[largest].NetBalance.Sub(residual)
	}

	credit := make([]decimal.Decimal, len(creditors))
	for i, c := range creditors {
		credit[i] = c.NetBalance
	}
	debt := make([]decimal.Decimal, len(debtors))
	for i, d := range debtors {
		debt[i] = d.NetBalance.Neg()
	}

	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		amount := debt[i]
		if credit[j].LessThan(amount) {
			amount = credit[j]
		}

		if amount.GreaterThan(noiseFloor) {
			plan.Transfers = append(plan.Transfers, Transfer{
				FromUserID: debtors[i].UserID,
				ToUserID:   creditors[j].UserID,
				Amount:     amount,
				Currency:   currency,
			})
		}

		debt[i] = debt[i].Sub(amount)
		credit[j] = credit[j].Sub(amount)

		if debt[i].LessThanOrEqual(noiseFloor) {
			i++
		}
		if credit[j].LessThanOrEqual(noiseFloor) {
			j++
		}
	}

	return plan
}

// CategorySummary is the grouped total for one expense category.
type CategorySummary struct {
	Category    string          `json:"category"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Count       int             `json:"count"`
	AvgAmount   decimal.Decimal `json:"avg_amount"`
}

// ByCategory groups non-deleted expenses by category, sorted by total
// descending (category name breaks ties).
func ByCategory(expenses []*models.Expense) []CategorySummary {
	totals := make(map[string]*CategorySummary)
	for _, e := range expenses {
		if e.IsDeleted {
			continue
		}
		s, ok := totals[e.Category]
		if !ok {
			s = &CategorySummary{Category: e.Category}
			totals[e.Category] = s
		}
		s.TotalAmount = s.TotalAmount.Add(e.Amount)
		s.Count++
	}

	out := make([]CategorySummary, 0, len(totals))
	for _, s := range totals {
		s.AvgAmount = s.TotalAmount.Div(decimal.NewFromInt(int64(s.Count))).Round(2)
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].TotalAmount.Equal(out[j].TotalAmount) {
			return out[i].TotalAmount.GreaterThan(out[j].TotalAmount)
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// UserSummaryRow is one category × month × year bucket of a payer's spending.
type UserSummaryRow struct {
	Category    string          `json:"category"`
	Month       int             `json:"month"`
	Year        int             `json:"year"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Count       int             `json:"count"`
}

// ByUser groups a payer's non-deleted expenses by category, month and year,
// keeping only those whose date falls inside the optional range. Rows are
// sorted newest first, then by total descending.
func ByUser(expenses []*models.Expense, userID int, start, end *time.Time) []UserSummaryRow {
	type key struct {
		category    string
		month, year int
	}
	buckets := make(map[key]*UserSummaryRow)

	for _, e := range expenses {
		if e.IsDeleted || e.PaidBy != userID || !e.Date.Valid {
			continue
		}
		date, err := time.Parse("2006-01-02 15:04:05", e.Date.String)
		if err != nil {
			date, err = time.Parse("2006-01-02", e.Date.String)
			if err != nil {
				continue
			}
		}
		if start != nil && date.Before(*start) {
			continue
		}
		if end != nil && date.After(*end) {
			continue
		}

		k := key{category: e.Category, month: int(date.Month()), year: date.Year()}
		row, ok := buckets[k]
		if !ok {
			row = &UserSummaryRow{Category: k.category, Month: k.month, Year: k.year}
			buckets[k] = row
		}
		row.TotalAmount = row.TotalAmount.Add(e.Amount)
		row.Count++
	}

	out := make([]UserSummaryRow, 0, len(buckets))
	for _, row := range buckets {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year > out[j].Year
		}
		if out[i].Month != out[j].Month {
			return out[i].Month > out[j].Month
		}
		if !out[i].TotalAmount.Equal(out[j].TotalAmount) {
			return out[i].TotalAmount.GreaterThan(out[j].TotalAmount)
		}
		return out[i].Category < out[j].Category
	})
	return out
}
