// Package money converts between user-entered decimal amounts and integer cents.
package money

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount  = errors.New("invalid money amount")
	ErrNegativeAmount = errors.New("negative money amount")
)

// maxCents keeps every stored value well inside int64 after summing.
const maxCents = int64(1) << 53

// Rounding rescales by 10^|exponent|, so inputs are bounded before it runs.
const (
	maxInputLen = 32
	minExponent = -30
	maxExponent = 20
)

var hundred = decimal.NewFromInt(100)

// ParseCents parses a decimal string such as "45.5" or "1200" into cents,
// rounding half away from zero to two fractional digits.
func ParseCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > maxInputLen {
		return 0, ErrInvalidAmount
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if exp := d.Exponent(); exp < minExponent || exp > maxExponent {
		return 0, ErrInvalidAmount
	}

	d = d.Round(2)
	if d.IsNegative() {
		return 0, ErrNegativeAmount
	}

	cents := d.Mul(hundred)
	if cents.GreaterThan(decimal.NewFromInt(maxCents)) {
		return 0, ErrInvalidAmount
	}
	return cents.IntPart(), nil
}

// Decimal returns cents as a two-place decimal.
func Decimal(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// Format renders cents as a plain two-decimal string, e.g. 115450 -> "1154.50".
func Format(cents int64) string {
	return Decimal(cents).StringFixed(2)
}

// Float returns cents as a float64 for consumers that need a numeric value
// (spreadsheet cells, charts).
func Float(cents int64) float64 {
	return Decimal(cents).InexactFloat64()
}
