package split

import (
	"testing"

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

func TestEqual(t *testing.T) {
	tests := []struct {
		name         string
		total        string
		participants []int
		wantErr      error
		wantAmounts  []string
	}{
		{
			name:         "two-way even split",
			total:        "40.00",
			participants: []int{1, 2},
			wantAmounts:  []string{"20", "20"},
		},
		{
			name:         "hundred split three ways, first takes the remainder",
			total:        "100.00",
			participants: []int{1, 2, 3},
			wantAmounts:  []string{"33.34", "33.33", "33.33"},
		},
		{
			name:         "single participant gets everything",
			total:        "19.99",
			participants: []int{7},
			wantAmounts:  []string{"19.99"},
		},
		{
			name:         "seven-way split of an awkward total",
			total:        "10.00",
			participants: []int{1, 2, 3, 4, 5, 6, 7},
			wantAmounts:  []string{"1.48", "1.42", "1.42", "1.42", "1.42", "1.42", "1.42"},
		},
		{
			name:         "zero total yields zero shares",
			total:        "0",
			participants: []int{1, 2},
			wantAmounts:  []string{"0", "0"},
		},
		{
			name:         "no participants",
			total:        "10.00",
			participants: nil,
			wantErr:      ErrNoParticipants,
		},
		{
			name:         "negative amount",
			total:        "-5.00",
			participants: []int{1},
			wantErr:      ErrNegativeAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares, err := Equal(dec(tt.total), tt.participants)
			if tt.wantErr != nil {
				if err != tt.wantErr {
					t.Fatalf("Equal() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Equal() unexpected error: %v", err)
			}
			if len(shares) != len(tt.wantAmounts) {
				t.Fatalf("Equal() returned %d shares, want %d", len(shares), len(tt.wantAmounts))
			}

			sum := decimal.Zero
			for i, s := range shares {
				if s.UserID != tt.participants[i] {
					t.Errorf("share %d user = %d, want %d", i, s.UserID, tt.participants[i])
				}
				if !s.Amount.Equal(dec(tt.wantAmounts[i])) {
					t.Errorf("share %d amount = %s, want %s", i, s.Amount, tt.wantAmounts[i])
				}
				sum = sum.Add(s.Amount)
			}
			if !sum.Equal(dec(tt.total)) {
				t.Errorf("shares sum to %s, want exactly %s", sum, tt.total)
			}
		})
	}
}

func TestValidateCustom(t *testing.T) {
	tests := []struct {
		name    string
		total   string
		amounts []string
		wantErr error
	}{
		{
			name:    "exact sum",
			total:   "100.00",
			amounts: []string{"60.00", "40.00"},
		},
		{
			name:    "sum within the cent tolerance",
			total:   "100.00",
			amounts: []string{"60.00", "40.01"},
		},
		{
			name:    "half a unit short is rejected",
			total:   "100.00",
			amounts: []string{"60.00", "39.50"},
			wantErr: ErrSplitMismatch,
		},
		{
			name:    "overshoot beyond tolerance is rejected",
			total:   "100.00",
			amounts: []string{"60.00", "40.02"},
			wantErr: ErrSplitMismatch,
		},
		{
			name:    "negative share is rejected",
			total:   "10.00",
			amounts: []string{"15.00", "-5.00"},
			wantErr: ErrNegativeAmount,
		},
		{
			name:    "negative total is rejected",
			total:   "-10.00",
			amounts: []string{"-10.00"},
			wantErr: ErrNegativeAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var shares []models.ExpenseSplit
			for i, a := range tt.amounts {
				shares = append(shares, models.ExpenseSplit{UserID: i + 1, Amount: dec(a)})
			}
			err := ValidateCustom(dec(tt.total), shares)
			if err != tt.wantErr {
				t.Errorf("ValidateCustom() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidatePercentage(t *testing.T) {
	pct := func(s string) decimal.NullDecimal {
		return decimal.NullDecimal{Decimal: dec(s), Valid: true}
	}

	tests := []struct {
		name    string
		pcts    []decimal.NullDecimal
		wantErr error
	}{
		{
			name: "exact hundred",
			pcts: []decimal.NullDecimal{pct("50"), pct("30"), pct("20")},
		},
		{
			name: "within the tolerance",
			pcts: []decimal.NullDecimal{pct("33.33"), pct("33.33"), pct("33.33")},
		},
		{
			name:    "sum short of hundred",
			pcts:    []decimal.NullDecimal{pct("50"), pct("30")},
			wantErr: ErrPercentageSumMismatch,
		},
		{
			name:    "negative percentage",
			pcts:    []decimal.NullDecimal{pct("-10"), pct("110")},
			wantErr: ErrPercentageOutOfRange,
		},
		{
			name:    "percentage above hundred",
			pcts:    []decimal.NullDecimal{pct("110")},
			wantErr: ErrPercentageOutOfRange,
		},
		{
			name:    "missing percentage",
			pcts:    []decimal.NullDecimal{pct("50"), {}},
			wantErr: ErrPercentageOutOfRange,
		},
		{
			name:    "no shares",
			pcts:    nil,
			wantErr: ErrNoParticipants,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var shares []models.ExpenseSplit
			for i, p := range tt.pcts {
				shares = append(shares, models.ExpenseSplit{UserID: i + 1, Percentage: p})
			}
			err := ValidatePercentage(shares)
			if err != tt.wantErr {
				t.Errorf("ValidatePercentage() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyPercentage(t *testing.T) {
	pct := func(s string) decimal.NullDecimal {
		return decimal.NullDecimal{Decimal: dec(s), Valid: true}
	}

	shares := []models.ExpenseSplit{
		{UserID: 1, Percentage: pct("33.33")},
		{UserID: 2, Percentage: pct("33.33")},
		{UserID: 3, Percentage: pct("33.33")},
	}

	out, err := ApplyPercentage(dec("100.00"), shares)
	if err != nil {
		t.Fatalf("ApplyPercentage() unexpected error: %v", err)
	}

	sum := decimal.Zero
	for _, s := range out {
		sum = sum.Add(s.Amount)
	}
	if !sum.Equal(dec("100.00")) {
		t.Errorf("amounts sum to %s, want exactly 100.00", sum)
	}
	if !out[1].Amount.Equal(dec("33.33")) || !out[2].Amount.Equal(dec("33.33")) {
		t.Errorf("later shares = %s, %s, want 33.33 each", out[1].Amount, out[2].Amount)
	}
	if !out[0].Amount.Equal(dec("33.34")) {
		t.Errorf("first share = %s, want 33.34 with the remainder", out[0].Amount)
	}
}
