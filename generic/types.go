/*
Package generic provides the domain-agnostic primitives shared by the payroll engine,
the store and the API.

KEY CONCEPTS:
  - Money: A currency amount backed by decimal.Decimal
  - Date: A calendar day (time.go)
  - Period: An inclusive range of days (period.go)
  - Sentinel and structured errors (errors.go)

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal to avoid floating-point drift in totals
  2. Day granularity: Every business date is a calendar day, no clock time
  3. Ordering: Date strings are ISO 8601 so string order equals calendar order

SEE ALSO:
  - payroll/: Earnings, schedule, award and due-date calculations
  - store/sqlite: Persists Money as decimal strings
*/
package generic

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Currency amount
// =============================================================================

// Money is an amount in the household's currency.
type Money struct {
	Value decimal.Decimal
}

func NewMoney(value float64) Money { return Money{Value: decimal.NewFromFloat(value)} }
func NewMoneyFromInt(value int64) Money { return Money{Value: decimal.NewFromInt(value)} }
func ZeroMoney() Money { return Money{Value: decimal.Zero} }

// ParseMoney parses a decimal string. Empty input is zero.
func ParseMoney(s string) (Money, error) {
	if s == "" {
		return ZeroMoney(), nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, &ValidationError{Field: "amount", Message: "invalid decimal " + s}
	}
	return Money{Value: d}, nil
}

// MustParseDecimal returns zero for malformed input; used on values the store wrote itself.
func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func (m Money) Add(o Money) Money { return Money{Value: m.Value.Add(o.Value)} }
func (m Money) Sub(o Money) Money { return Money{Value: m.Value.Sub(o.Value)} }
func (m Money) MulInt(n int) Money {
	return Money{Value: m.Value.Mul(decimal.NewFromInt(int64(n)))}
}
func (m Money) IsZero() bool { return m.Value.IsZero() }
func (m Money) IsPositive() bool { return m.Value.IsPositive() }
func (m Money) IsNegative() bool { return m.Value.IsNegative() }
func (m Money) Equal(o Money) bool { return m.Value.Equal(o.Value) }
func (m Money) Float64() float64 {
	f, _ := m.Value.Float64()
	return f
}

// String renders the amount rounded to cents, the precision used on every screen and report.
func (m Money) String() string { return m.Value.StringFixed(2) }

// MarshalJSON renders the amount as a JSON number with two decimals.
func (m Money) MarshalJSON() ([]byte, error) { return []byte(m.String()), nil }

// UnmarshalJSON accepts JSON numbers and quoted decimal strings.
func (m *Money) UnmarshalJSON(b []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return err
	}
	m.Value = d
	return nil
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type WorkerID string
type ClientID string
