package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func splitExpense(amount string, shares map[int]string) *Expense {
	e := &Expense{
		ID:       1,
		Amount:   dec(amount),
		Currency: "USD",
		Category: "food",
	}
	for userID, share := range shares {
		e.SplitBetween = append(e.SplitBetween, ExpenseSplit{
			ExpenseID: 1,
			UserID:    userID,
			Amount:    dec(share),
		})
	}
	return e
}

func TestExpenseValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(e *Expense)
		wantErr bool
		want    error
	}{
		{
			name:   "valid split expense",
			mutate: func(e *Expense) {},
		},
		{
			name: "splits off by half a unit",
			mutate: func(e *Expense) {
				e.SplitBetween[0].Amount = e.SplitBetween[0].Amount.Sub(dec("0.50"))
			},
			wantErr: true,
			want:    ErrSplitMismatch,
		},
		{
			name: "splits off by exactly the tolerance pass",
			mutate: func(e *Expense) {
				e.SplitBetween[0].Amount = e.SplitBetween[0].Amount.Add(dec("0.01"))
			},
		},
		{
			name:    "negative amount",
			mutate:  func(e *Expense) { e.Amount = dec("-1.00") },
			wantErr: true,
		},
		{
			name:    "negative split amount",
			mutate:  func(e *Expense) { e.SplitBetween[0].Amount = dec("-5.00") },
			wantErr: true,
		},
		{
			name:    "unknown currency",
			mutate:  func(e *Expense) { e.Currency = "XXX" },
			wantErr: true,
		},
		{
			name:    "unknown category",
			mutate:  func(e *Expense) { e.Category = "lasers" },
			wantErr: true,
		},
		{
			name:    "unknown payment method",
			mutate:  func(e *Expense) { e.PaymentMethod = "barter" },
			wantErr: true,
		},
		{
			name:    "unknown status",
			mutate:  func(e *Expense) { e.Status = "maybe" },
			wantErr: true,
		},
		{
			name: "percentage within range passes",
			mutate: func(e *Expense) {
				e.SplitBetween[0].Percentage = decimal.NewNullDecimal(dec("50"))
				e.SplitBetween[1].Percentage = decimal.NewNullDecimal(dec("50"))
			},
		},
		{
			name: "percentage over 100",
			mutate: func(e *Expense) {
				e.SplitBetween[0].Percentage = decimal.NewNullDecimal(dec("150"))
			},
			wantErr: true,
			want:    ErrPercentageOutOfRange,
		},
		{
			name: "negative percentage",
			mutate: func(e *Expense) {
				e.SplitBetween[0].Percentage = decimal.NewNullDecimal(dec("-10"))
			},
			wantErr: true,
			want:    ErrPercentageOutOfRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := splitExpense("100.00", map[int]string{1: "50.00", 2: "50.00"})
			tt.mutate(e)

			err := e.Validate()
			if tt.wantErr && err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("Validate() unexpected error: %v", err)
			}
			if tt.want != nil && err != tt.want {
				t.Errorf("Validate() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestExpenseValidateRejectsUndercountedCustomSplit(t *testing.T) {
	// 99.50 against a 100 total is outside the tolerance and must be an
	// error, not silently corrected.
	e := splitExpense("100.00", map[int]string{1: "50.00", 2: "49.50"})
	if err := e.Validate(); err != ErrSplitMismatch {
		t.Errorf("Validate() error = %v, want %v", err, ErrSplitMismatch)
	}
}

func TestSettleShare(t *testing.T) {
	now := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	t.Run("settles once and stamps the time", func(t *testing.T) {
		e := splitExpense("40.00", map[int]string{1: "20.00", 2: "20.00"})

		if err := e.SettleShare(2, now); err != nil {
			t.Fatalf("SettleShare() unexpected error: %v", err)
		}
		for _, s := range e.SplitBetween {
			if s.UserID != 2 {
				continue
			}
			if !s.Settled {
				t.Error("share not marked settled")
			}
			if s.SettledAt.String != "2026-08-01 10:00:00" {
				t.Errorf("settled_at = %q, want 2026-08-01 10:00:00", s.SettledAt.String)
			}
		}
	})

	t.Run("second settle fails", func(t *testing.T) {
		e := splitExpense("40.00", map[int]string{1: "20.00", 2: "20.00"})

		if err := e.SettleShare(2, now); err != nil {
			t.Fatalf("first SettleShare() failed: %v", err)
		}
		if err := e.SettleShare(2, now); err != ErrAlreadySettled {
			t.Errorf("second SettleShare() error = %v, want %v", err, ErrAlreadySettled)
		}
	})

	t.Run("unknown user fails", func(t *testing.T) {
		e := splitExpense("40.00", map[int]string{1: "20.00", 2: "20.00"})

		if err := e.SettleShare(99, now); err != ErrShareNotFound {
			t.Errorf("SettleShare() error = %v, want %v", err, ErrShareNotFound)
		}
	})

	t.Run("unbalanced splits cannot be settled", func(t *testing.T) {
		// A share edit can leave the splits short of the total; no share may
		// settle until the sum is repaired.
		e := splitExpense("100.00", map[int]string{1: "40.00", 2: "40.00"})

		if err := e.SettleShare(1, now); err != ErrSplitMismatch {
			t.Fatalf("SettleShare() error = %v, want %v", err, ErrSplitMismatch)
		}
		for _, s := range e.SplitBetween {
			if s.Settled {
				t.Errorf("share for user %d settled despite the sum mismatch", s.UserID)
			}
		}

		e.AddOrReplaceSplit(2, dec("60.00"), decimal.NullDecimal{})
		if err := e.SettleShare(1, now); err != nil {
			t.Errorf("SettleShare() after repairing the splits failed: %v", err)
		}
	})
}

func TestAddOrReplaceSplit(t *testing.T) {
	e := splitExpense("60.00", map[int]string{1: "30.00", 2: "30.00"})

	e.AddOrReplaceSplit(2, dec("20.00"), decimal.NullDecimal{})
	e.AddOrReplaceSplit(3, dec("10.00"), decimal.NullDecimal{})

	if len(e.SplitBetween) != 3 {
		t.Fatalf("got %d splits, want 3", len(e.SplitBetween))
	}
	if !e.TotalSplitAmount().Equal(dec("60.00")) {
		t.Errorf("total split = %s, want 60.00", e.TotalSplitAmount())
	}
	for _, s := range e.SplitBetween {
		if s.UserID == 2 && !s.Amount.Equal(dec("20.00")) {
			t.Errorf("user 2 share = %s, want the replacement 20.00", s.Amount)
		}
	}
}

func TestUnsettledAmountAndFullySettled(t *testing.T) {
	e := splitExpense("40.00", map[int]string{1: "20.00", 2: "20.00"})
	now := time.Now()

	if e.IsFullySettled() {
		t.Error("IsFullySettled() = true before any settles")
	}
	if !e.UnsettledAmount().Equal(dec("40.00")) {
		t.Errorf("UnsettledAmount() = %s, want 40.00", e.UnsettledAmount())
	}

	if err := e.SettleShare(1, now); err != nil {
		t.Fatalf("SettleShare() failed: %v", err)
	}
	if !e.UnsettledAmount().Equal(dec("20.00")) {
		t.Errorf("UnsettledAmount() = %s, want 20.00 after one settle", e.UnsettledAmount())
	}
	if e.IsFullySettled() {
		t.Error("IsFullySettled() = true with one share outstanding")
	}

	if err := e.SettleShare(2, now); err != nil {
		t.Fatalf("SettleShare() failed: %v", err)
	}
	if !e.IsFullySettled() {
		t.Error("IsFullySettled() = false after all shares settled")
	}

	empty := &Expense{Amount: dec("10.00"), Currency: "USD", Category: "food"}
	if empty.IsFullySettled() {
		t.Error("an expense with no splits must never read as settled")
	}
}
