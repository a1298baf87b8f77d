package settlement

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"triptally/internal/models"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func expense(id, paidBy int, amount, category string, shares map[int]string) *models.Expense {
	e := &models.Expense{
		ID:       id,
		Amount:   dec(amount),
		Currency: "USD",
		Category: category,
		PaidBy:   paidBy,
	}
	for userID, share := range shares {
		e.SplitBetween = append(e.SplitBetween, models.ExpenseSplit{
			ExpenseID: id,
			UserID:    userID,
			Amount:    dec(share),
		})
	}
	return e
}

func TestContributions(t *testing.T) {
	t.Run("payer is a participant", func(t *testing.T) {
		e := expense(1, 1, "40.00", "food", map[int]string{1: "20.00", 2: "20.00"})
		got := Contributions(e)

		if !got[1].Equal(dec("20.00")) {
			t.Errorf("payer contribution = %s, want 20.00", got[1])
		}
		if !got[2].Equal(dec("-20.00")) {
			t.Errorf("participant contribution = %s, want -20.00", got[2])
		}
	})

	t.Run("payer is not a participant", func(t *testing.T) {
		e := expense(1, 3, "30.00", "food", map[int]string{1: "15.00", 2: "15.00"})
		got := Contributions(e)

		if !got[3].Equal(dec("30.00")) {
			t.Errorf("payer contribution = %s, want the full 30.00", got[3])
		}
		if !got[1].Equal(dec("-15.00")) || !got[2].Equal(dec("-15.00")) {
			t.Errorf("participant contributions = %s, %s, want -15.00 each", got[1], got[2])
		}
	})

	t.Run("contributions sum to zero when the payer participates", func(t *testing.T) {
		e := expense(1, 2, "99.99", "transport", map[int]string{1: "33.34", 2: "33.33", 3: "33.32"})
		sum := decimal.Zero
		for _, delta := range Contributions(e) {
			sum = sum.Add(delta)
		}
		if !sum.IsZero() {
			t.Errorf("contributions sum to %s, want 0", sum)
		}
	})
}

func TestSettle(t *testing.T) {
	t.Run("single expense yields one transfer", func(t *testing.T) {
		expenses := []*models.Expense{
			expense(1, 1, "40.00", "food", map[int]string{1: "20.00", 2: "20.00"}),
		}

		plan := Settle(expenses, "USD")

		if len(plan.Transfers) != 1 {
			t.Fatalf("got %d transfers, want 1", len(plan.Transfers))
		}
		tr := plan.Transfers[0]
		if tr.FromUserID != 2 || tr.ToUserID != 1 {
			t.Errorf("transfer %d -> %d, want 2 -> 1", tr.FromUserID, tr.ToUserID)
		}
		if !tr.Amount.Equal(dec("20.00")) {
			t.Errorf("transfer amount = %s, want 20.00", tr.Amount)
		}
		if tr.Currency != "USD" {
			t.Errorf("transfer currency = %s, want USD", tr.Currency)
		}
	})

	t.Run("no expenses yields an empty plan", func(t *testing.T) {
		plan := Settle(nil, "USD")
		if len(plan.Balances) != 0 || len(plan.Transfers) != 0 {
			t.Errorf("got %d balances and %d transfers, want none", len(plan.Balances), len(plan.Transfers))
		}
	})

	t.Run("deleted expenses are ignored", func(t *testing.T) {
		deleted := expense(1, 1, "40.00", "food", map[int]string{1: "20.00", 2: "20.00"})
		deleted.IsDeleted = true

		plan := Settle([]*models.Expense{deleted}, "USD")
		if len(plan.Transfers) != 0 {
			t.Errorf("got %d transfers from a deleted expense, want 0", len(plan.Transfers))
		}
	})

	t.Run("unsplit expenses are ignored", func(t *testing.T) {
		solo := expense(1, 1, "40.00", "food", nil)

		plan := Settle([]*models.Expense{solo}, "USD")
		if len(plan.Balances) != 0 {
			t.Errorf("got %d balances from an unsplit expense, want 0", len(plan.Balances))
		}
	})

	t.Run("transfers reconcile with net balances", func(t *testing.T) {
		expenses := []*models.Expense{
			expense(1, 1, "90.00", "accommodation", map[int]string{1: "30.00", 2: "30.00", 3: "30.00"}),
			expense(2, 2, "30.00", "food", map[int]string{1: "10.00", 2: "10.00", 3: "10.00"}),
			expense(3, 3, "12.00", "transport", map[int]string{1: "4.00", 2: "4.00", 3: "4.00"}),
		}

		plan := Settle(expenses, "EUR")

		net := make(map[int]decimal.Decimal)
		for _, b := range plan.Balances {
			net[b.UserID] = b.NetBalance
		}
		for _, tr := range plan.Transfers {
			net[tr.FromUserID] = net[tr.FromUserID].Add(tr.Amount)
			net[tr.ToUserID] = net[tr.ToUserID].Sub(tr.Amount)
		}
		tolerance := dec("0.01")
		for userID, rest := range net {
			if rest.Abs().GreaterThan(tolerance) {
				t.Errorf("user %d left with %s after transfers, want 0", userID, rest)
			}
		}
	})

	t.Run("balances are ordered by user id", func(t *testing.T) {
		expenses := []*models.Expense{
			expense(1, 9, "30.00", "food", map[int]string{2: "10.00", 5: "10.00", 9: "10.00"}),
		}

		plan := Settle(expenses, "USD")

		want := []int{2, 5, 9}
		if len(plan.Balances) != len(want) {
			t.Fatalf("got %d balances, want %d", len(plan.Balances), len(want))
		}
		for i, b := range plan.Balances {
			if b.UserID != want[i] {
				t.Errorf("balance %d user = %d, want %d", i, b.UserID, want[i])
			}
		}
	})

	t.Run("chained debts settle through the largest creditor", func(t *testing.T) {
		// User 1 paid 60 shared three ways, user 2 paid 30 shared three ways.
		// Net: 1 is owed 30, 2 is even, 3 owes 30.
		expenses := []*models.Expense{
			expense(1, 1, "60.00", "food", map[int]string{1: "20.00", 2: "20.00", 3: "20.00"}),
			expense(2, 2, "30.00", "transport", map[int]string{1: "10.00", 2: "10.00", 3: "10.00"}),
		}

		plan := Settle(expenses, "USD")

		if len(plan.Transfers) != 1 {
			t.Fatalf("got %d transfers, want 1", len(plan.Transfers))
		}
		tr := plan.Transfers[0]
		if tr.FromUserID != 3 || tr.ToUserID != 1 || !tr.Amount.Equal(dec("30.00")) {
			t.Errorf("transfer = %d -> %d for %s, want 3 -> 1 for 30.00", tr.FromUserID, tr.ToUserID, tr.Amount)
		}
	})
}

func TestByCategory(t *testing.T) {
	expenses := []*models.Expense{
		expense(1, 1, "100.00", "accommodation", nil),
		expense(2, 1, "30.00", "food", nil),
		expense(3, 1, "20.00", "food", nil),
		expense(4, 1, "50.00", "transport", nil),
	}
	deleted := expense(5, 1, "500.00", "shopping", nil)
	deleted.IsDeleted = true
	expenses = append(expenses, deleted)

	got := ByCategory(expenses)

	if len(got) != 3 {
		t.Fatalf("got %d categories, want 3", len(got))
	}
	if got[0].Category != "accommodation" || !got[0].TotalAmount.Equal(dec("100.00")) {
		t.Errorf("top category = %s (%s), want accommodation (100.00)", got[0].Category, got[0].TotalAmount)
	}
	if got[1].Category != "food" || got[1].Count != 2 {
		t.Errorf("second category = %s with count %d, want food with 2", got[1].Category, got[1].Count)
	}
	if !got[1].AvgAmount.Equal(dec("25.00")) {
		t.Errorf("food average = %s, want 25.00", got[1].AvgAmount)
	}
	if got[2].Category != "transport" {
		t.Errorf("third category = %s, want transport", got[2].Category)
	}
}

func TestByUser(t *testing.T) {
	dated := func(id int, amount, category, date string) *models.Expense {
		e := expense(id, 1, amount, category, nil)
		e.Date.String = date
		e.Date.Valid = true
		return e
	}

	expenses := []*models.Expense{
		dated(1, "40.00", "food", "2026-07-10 12:00:00"),
		dated(2, "60.00", "food", "2026-07-20 18:30:00"),
		dated(3, "80.00", "flights", "2026-08-01 09:00:00"),
		dated(4, "25.00", "food", "2026-05-01 09:00:00"),
	}
	otherPayer := dated(5, "999.00", "shopping", "2026-07-15 12:00:00")
	otherPayer.PaidBy = 2
	expenses = append(expenses, otherPayer)

	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	got := ByUser(expenses, 1, &start, &end)

	if len(got) != 2 {
		t.Fatalf("got %d rows, want 2", len(got))
	}
	if got[0].Category != "flights" || got[0].Month != 8 || got[0].Year != 2026 {
		t.Errorf("newest row = %s %d/%d, want flights 8/2026", got[0].Category, got[0].Month, got[0].Year)
	}
	if got[1].Category != "food" || got[1].Count != 2 || !got[1].TotalAmount.Equal(dec("100.00")) {
		t.Errorf("food row = count %d total %s, want 2 and 100.00", got[1].Count, got[1].TotalAmount)
	}
}
