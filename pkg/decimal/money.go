package decimal

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CentPlaces is the number of decimal places money is rounded to.
const CentPlaces = 2

// Money represents a monetary amount with proper financial precision
type Money struct {
	decimal.Decimal
}

// NewMoneyFromDecimal creates a new Money instance from a decimal.Decimal
func NewMoneyFromDecimal(d decimal.Decimal) Money {
	return Money{d}
}

// NewMoneyFromString creates a new Money instance from a string.
// A leading "$" and thousands separators are accepted.
func NewMoneyFromString(value string) (Money, error) {
	clean := strings.TrimSpace(value)
	clean = strings.TrimPrefix(clean, "$")
	clean = strings.ReplaceAll(clean, ",", "")
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return Money{}, err
	}
	return Money{d}, nil
}

// Round rounds the money amount to cents, half away from zero (2.345 -> 2.35, -2.345 -> -2.35).
func (m Money) Round() Money {
	return Money{RoundCents(m.Decimal)}
}

// RoundCents rounds d to cents, half away from zero.
func RoundCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(CentPlaces)
}

// ClampZero returns max(0, d).
func ClampZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Sum adds all amounts; an empty list sums to zero.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// String returns the string representation with proper formatting
func (m Money) String() string {
	return m.Decimal.StringFixed(CentPlaces)
}

// Format formats the amount as US currency with thousands separators, e.g. "$1,234.50" or "-$12.00".
func (m Money) Format() string {
	s := m.Round().String()
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := "$" + b.String() + "." + frac
	if neg {
		return "-" + out
	}
	return out
}
