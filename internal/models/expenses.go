package models

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// SplitTolerance is the largest drift allowed between an expense amount and
// the sum of its split amounts. Matches the rounding slack the clients send.
var SplitTolerance = decimal.NewFromFloat(0.01)

var (
	ErrShareNotFound        = errors.New("no split found for this user")
	ErrAlreadySettled       = errors.New("split is already settled")
	ErrSplitMismatch        = errors.New("split amounts must equal the total expense amount")
	ErrPercentageOutOfRange = errors.New("percentage must be between 0 and 100")
)

var hundredPercent = decimal.NewFromInt(100)

var Currencies = []string{"USD", "EUR", "GBP", "JPY", "CAD", "AUD", "INR"}

var Categories = []string{
	"flights",
	"accommodation",
	"food",
	"activities",
	"transport",
	"shopping",
	"miscellaneous",
}

var PaymentMethods = []string{"cash", "credit_card", "debit_card", "paypal", "bank_transfer", "other"}

var ExpenseStatuses = []string{"pending", "confirmed", "disputed", "refunded"}

func ValidCurrency(c string) bool {
	return contains(Currencies, c)
}

func ValidCategory(c string) bool {
	return contains(Categories, c)
}

func ValidPaymentMethod(m string) bool {
	return contains(PaymentMethods, m)
}

func ValidExpenseStatus(s string) bool {
	return contains(ExpenseStatuses, s)
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

type Expense struct {
	ID             int             `json:"id,omitempty" db:"id,omitempty"`
	TripID         int             `json:"trip_id,omitempty" db:"trip_id,omitempty"`
	Title          string          `json:"title,omitempty" db:"title,omitempty"`
	Description    string          `json:"description,omitempty" db:"description,omitempty"`
	Amount         decimal.Decimal `json:"amount,omitempty" db:"amount,omitempty"`
	Currency       string          `json:"currency,omitempty" db:"currency,omitempty"`
	Category       string          `json:"category,omitempty" db:"category,omitempty"`
	Date           sql.NullString  `json:"date,omitempty" db:"date,omitempty"`
	PaymentMethod  string          `json:"payment_method,omitempty" db:"payment_method,omitempty"`
	Tags           string          `json:"tags,omitempty" db:"tags,omitempty"`
	Notes          string          `json:"notes,omitempty" db:"notes,omitempty"`
	Status         string          `json:"status,omitempty" db:"status,omitempty"`
	PaidBy         int             `json:"paid_by,omitempty" db:"paid_by,omitempty"`
	CreatedBy      int             `json:"created_by,omitempty" db:"created_by,omitempty"`
	LastModifiedBy int             `json:"last_modified_by,omitempty" db:"last_modified_by,omitempty"`
	IsDeleted      bool            `json:"is_deleted,omitempty" db:"is_deleted,omitempty"`
	DeletedAt      sql.NullString  `json:"deleted_at,omitempty" db:"deleted_at,omitempty"`
	Version        int             `json:"version,omitempty" db:"version,omitempty"`
	CreatedAt      sql.NullString  `json:"created_at,omitempty" db:"created_at,omitempty"`
	UpdatedAt      sql.NullString  `json:"updated_at,omitempty" db:"updated_at,omitempty"`

	SplitBetween []ExpenseSplit `json:"split_between,omitempty" db:"-"`
}

type ExpenseSplit struct {
	ID         int                 `json:"id,omitempty" db:"id,omitempty"`
	ExpenseID  int                 `json:"expense_id,omitempty" db:"expense_id,omitempty"`
	UserID     int                 `json:"user_id,omitempty" db:"user_id,omitempty"`
	Amount     decimal.Decimal     `json:"amount" db:"amount"`
	Percentage decimal.NullDecimal `json:"percentage,omitempty" db:"percentage,omitempty"`
	Settled    bool                `json:"settled" db:"settled"`
	SettledAt  sql.NullString      `json:"settled_at,omitempty" db:"settled_at,omitempty"`
}

// IsSplit reports whether the expense is shared between at least two people.
func (e *Expense) IsSplit() bool {
	return len(e.SplitBetween) > 1
}

// TotalSplitAmount is the sum of all split amounts.
func (e *Expense) TotalSplitAmount() decimal.Decimal {
	total := decimal.Zero
	for _, s := range e.SplitBetween {
		total = total.Add(s.Amount)
	}
	return total
}

// UnsettledAmount is the sum of split amounts not yet settled.
func (e *Expense) UnsettledAmount() decimal.Decimal {
	total := decimal.Zero
	for _, s := range e.SplitBetween {
		if !s.Settled {
			total = total.Add(s.Amount)
		}
	}
	return total
}

// IsFullySettled reports whether every split has been settled.
// An expense with no splits is never considered settled.
func (e *Expense) IsFullySettled() bool {
	if len(e.SplitBetween) == 0 {
		return false
	}
	for _, s := range e.SplitBetween {
		if !s.Settled {
			return false
		}
	}
	return true
}

// Validate checks field ranges and, when splits are present, the sum invariant:
// split amounts must equal the expense amount within SplitTolerance. A
// violation is an error, never silently corrected.
func (e *Expense) Validate() error {
	if e.Amount.IsNegative() {
		return errors.New("amount cannot be negative")
	}
	if !ValidCurrency(e.Currency) {
		return fmt.Errorf("invalid currency %q", e.Currency)
	}
	if !ValidCategory(e.Category) {
		return fmt.Errorf("invalid category %q", e.Category)
	}
	if e.PaymentMethod != "" && !ValidPaymentMethod(e.PaymentMethod) {
		return fmt.Errorf("invalid payment method %q", e.PaymentMethod)
	}
	if e.Status != "" && !ValidExpenseStatus(e.Status) {
		return fmt.Errorf("invalid status %q", e.Status)
	}
	for _, s := range e.SplitBetween {
		if s.Amount.IsNegative() {
			return errors.New("split amount cannot be negative")
		}
		if s.Percentage.Valid &&
			(s.Percentage.Decimal.IsNegative() || s.Percentage.Decimal.GreaterThan(hundredPercent)) {
			return ErrPercentageOutOfRange
		}
	}
	if len(e.SplitBetween) > 0 {
		drift := e.TotalSplitAmount().Sub(e.Amount).Abs()
		if drift.GreaterThan(SplitTolerance) {
			return ErrSplitMismatch
		}
	}
	return nil
}

// AddOrReplaceSplit removes any existing split for the user and appends the
// new one. It does not re-check the sum invariant; callers lock the expense
// with Validate (the finalize step) before treating it as settleable.
func (e *Expense) AddOrReplaceSplit(userID int, amount decimal.Decimal, percentage decimal.NullDecimal) {
	kept := e.SplitBetween[:0]
	for _, s := range e.SplitBetween {
		if s.UserID != userID {
			kept = append(kept, s)
		}
	}
	e.SplitBetween = append(kept, ExpenseSplit{
		ExpenseID:  e.ID,
		UserID:     userID,
		Amount:     amount,
		Percentage: percentage,
	})
}

// SettleShare marks the user's split settled and stamps the time. Settling an
// absent share or one already settled is an error, so two settle requests for
// the same share cannot both succeed. The sum invariant is re-checked here:
// an expense whose splits drifted from its amount must be fixed and finalized
// before any share can be settled.
func (e *Expense) SettleShare(userID int, now time.Time) error {
	if len(e.SplitBetween) > 0 {
		drift := e.TotalSplitAmount().Sub(e.Amount).Abs()
		if drift.GreaterThan(SplitTolerance) {
			return ErrSplitMismatch
		}
	}
	for i := range e.SplitBetween {
		s := &e.SplitBetween[i]
		if s.UserID != userID {
			continue
		}
		if s.Settled {
			return ErrAlreadySettled
		}
		s.Settled = true
		s.SettledAt = sql.NullString{String: now.UTC().Format("2006-01-02 15:04:05"), Valid: true}
		return nil
	}
	return ErrShareNotFound
}
