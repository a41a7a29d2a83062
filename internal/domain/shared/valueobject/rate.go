package valueobject

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// BasisPointScale is the denominator converting basis points to a ratio.
const BasisPointScale int64 = 10000

// MaxAnnualRateBps is the highest annual interest rate a project may carry (20%).
const MaxAnnualRateBps int64 = 2000

// InterestRate is an annual interest rate expressed in basis points.
// It is a value object; all arithmetic goes through exact decimals.
type InterestRate struct {
	bps int64
}

// NewInterestRate creates an InterestRate, validating the allowed band [0, 2000] bps.
func NewInterestRate(bps int64) (InterestRate, error) {
	if bps < 0 || bps > MaxAnnualRateBps {
		return InterestRate{}, fmt.Errorf("annual rate %d bps outside allowed band [0, %d]", bps, MaxAnnualRateBps)
	}
	return InterestRate{bps: bps}, nil
}

// BasisPoints returns the rate in basis points
func (r InterestRate) BasisPoints() int64 {
	return r.bps
}

// Decimal returns the rate as an exact decimal ratio (e.g. 850 bps -> 0.085)
func (r InterestRate) Decimal() decimal.Decimal {
	return decimal.NewFromInt(r.bps).Div(decimal.NewFromInt(BasisPointScale))
}

// IsZero returns true for a zero rate
func (r InterestRate) IsZero() bool {
	return r.bps == 0
}

// String returns the rate as a percentage string (e.g. "8.50%")
func (r InterestRate) String() string {
	pct := decimal.NewFromInt(r.bps).Div(decimal.NewFromInt(100))
	return pct.StringFixed(2) + "%"
}
