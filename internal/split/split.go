// Package split computes and validates participant shares of an expense.
// All functions are pure; persistence happens at the handler layer.
package split

import (
	"errors"

	"github.com/shopspring/decimal"

	"triptally/internal/models"
)

var (
	ErrNoParticipants        = errors.New("must have at least one participant")
	ErrNegativeAmount        = errors.New("amount cannot be negative")
	ErrSplitMismatch         = models.ErrSplitMismatch
	ErrPercentageOutOfRange  = models.ErrPercentageOutOfRange
	ErrPercentageSumMismatch = errors.New("percentages must sum to 100")
)

// percentTolerance allows for rounding slack when percentages are summed.
var percentTolerance = decimal.NewFromFloat(0.1)

var hundred = decimal.NewFromInt(100)

// Equal divides total evenly across the participants. The per-head share is
// rounded down to cents and the leftover cents go to the first participant,
// so the shares always sum to exactly total.
func Equal(total decimal.Decimal, participants []int) ([]models.ExpenseSplit, error) {
	if len(participants) == 0 {
		return nil, ErrNoParticipants
	}
	if total.IsNegative() {
		return nil, ErrNegativeAmount
	}

	n := decimal.NewFromInt(int64(len(participants)))
	share := total.Div(n).RoundDown(2)
	remainder := total.Sub(share.Mul(n))

	shares := make([]models.ExpenseSplit, len(participants))
	for i, userID := range participants {
		amount := share
		if i == 0 {
			amount = amount.Add(remainder)
		}
		shares[i] = models.ExpenseSplit{
			UserID: userID,
			Amount: amount,
		}
	}
	return shares, nil
}

// ValidateCustom checks that the share amounts sum to total within the
// 0.01 tolerance. Each amount must be non-negative.
func ValidateCustom(total decimal.Decimal, shares []models.ExpenseSplit) error {
	if total.IsNegative() {
		return ErrNegativeAmount
	}
	sum := decimal.Zero
	for _, s := range shares {
		if s.Amount.IsNegative() {
			return ErrNegativeAmount
		}
		sum = sum.Add(s.Amount)
	}
	if sum.Sub(total).Abs().GreaterThan(models.SplitTolerance) {
		return ErrSplitMismatch
	}
	return nil
}

// ValidatePercentage checks that every share carries a percentage in [0,100]
// and that the percentages sum to 100 within a 0.1 tolerance.
func ValidatePercentage(shares []models.ExpenseSplit) error {
	if len(shares) == 0 {
		return ErrNoParticipants
	}
	sum := decimal.Zero
	for _, s := range shares {
		if !s.Percentage.Valid {
			return ErrPercentageOutOfRange
		}
		p := s.Percentage.Decimal
		if p.IsNegative() || p.GreaterThan(hundred) {
			return ErrPercentageOutOfRange
		}
		sum = sum.Add(p)
	}
	if sum.Sub(hundred).Abs().GreaterThan(percentTolerance) {
		return ErrPercentageSumMismatch
	}
	return nil
}

// ApplyPercentage fills in share amounts from percentages of total. Amounts
// are rounded down to cents with the leftover assigned to the first share,
// mirroring Equal's tie-break.
func ApplyPercentage(total decimal.Decimal, shares []models.ExpenseSplit) ([]models.ExpenseSplit, error) {
	if err := ValidatePercentage(shares); err != nil {
		return nil, err
	}
	if total.IsNegative() {
		return nil, ErrNegativeAmount
	}

	out := make([]models.ExpenseSplit, len(shares))
	allocated := decimal.Zero
	for i, s := range shares {
		out[i] = s
		out[i].Amount = total.Mul(s.Percentage.Decimal).Div(hundred).RoundDown(2)
		allocated = allocated.Add(out[i].Amount)
	}
	out[0].Amount = out[0].Amount.Add(total.Sub(allocated))
	return out, nil
}
