package decimal

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Money represents a monetary amount with proper financial precision
type Money struct {
	decimal.Decimal
}

// NewMoney creates a new Money instance from a float64
func NewMoney(value float64) Money {
	return Money{decimal.NewFromFloat(value)}
}

// NewMoneyFromDecimal creates a new Money instance from a decimal.Decimal
func NewMoneyFromDecimal(d decimal.Decimal) Money {
	return Money{d}
}

// Round rounds the money amount to cents
func (m Money) Round() Money {
	return Money{m.Decimal.Round(2)}
}

// Scale applies a percentage change: 10 means +10%.
func (m Money) Scale(percent float64) Money {
	if percent == 0 {
		return m
	}
	factor := decimal.NewFromInt(1).Add(decimal.NewFromFloat(percent).Div(decimal.NewFromInt(100)))
	return Money{m.Decimal.Mul(factor)}
}

// Add adds another Money amount
func (m Money) Add(other Money) Money {
	return Money{m.Decimal.Add(other.Decimal)}
}

// Sub subtracts another Money amount
func (m Money) Sub(other Money) Money {
	return Money{m.Decimal.Sub(other.Decimal)}
}

// Abs returns the magnitude
func (m Money) Abs() Money {
	return Money{m.Decimal.Abs()}
}

// IsZero checks if the amount is zero
func (m Money) IsZero() bool {
	return m.Decimal.IsZero()
}

// IsNegative checks if the amount is negative
func (m Money) IsNegative() bool {
	return m.Decimal.IsNegative()
}

// Zero returns a zero Money amount
func Zero() Money {
	return Money{decimal.Zero}
}

// String returns the string representation with proper formatting
func (m Money) String() string {
	return m.Decimal.StringFixed(2)
}

// Format renders the amount as currency with thousands separators: -$1,234.50
func (m Money) Format() string {
	s := m.Abs().Decimal.StringFixed(2)
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}
	var b strings.Builder
	if m.IsNegative() && !m.Round().IsZero() {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteString(frac)
	return b.String()
}

var compactUnits = []struct {
	limit  decimal.Decimal
	suffix string
}{
	{decimal.New(1, 12), "T"},
	{decimal.New(1, 9), "B"},
	{decimal.New(1, 6), "M"},
	{decimal.New(1, 3), "K"},
}

// Compact renders large amounts with a unit suffix: $81.6M, -$2.0B
func (m Money) Compact() string {
	abs := m.Abs().Decimal
	sign := ""
	if m.IsNegative() {
		sign = "-"
	}
	for _, u := range compactUnits {
		if abs.GreaterThanOrEqual(u.limit) {
			return sign + "$" + abs.Div(u.limit).StringFixed(1) + u.suffix
		}
	}
	return m.Format()
}
