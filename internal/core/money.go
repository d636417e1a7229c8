// Package core provides money parsing and handling utilities.
//
// Amounts are kept as integer cents; shopspring/decimal is used only at the
// edges, for parsing user input and rendering fixed two-digit output.
package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxCents is the largest magnitude an amount or balance may reach:
// 13 integer digits plus 2 fraction digits.
const MaxCents int64 = 999_999_999_999_999

var hundred = decimal.NewFromInt(100)

// ParseMoney converts a decimal string to Money with half-up rounding on the
// third fractional digit.
//
// Both dot (12.34) and comma (12,34) separators are accepted. Negative values
// and values beyond MaxCents are rejected with ErrInvalidAmount. Zero is a
// valid amount.
//
// Examples:
//
//	ParseMoney("12.34")  -> 1234 cents
//	ParseMoney("12,345") -> 1235 cents
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	return MoneyFromDecimal(d)
}

// MoneyFromDecimal rounds d to cents and checks the amount bounds.
func MoneyFromDecimal(d decimal.Decimal) (Money, error) {
	if d.IsNegative() {
		return Money{}, ErrInvalidAmount
	}
	cents := d.Mul(hundred).Round(0)
	if cents.GreaterThan(decimal.NewFromInt(MaxCents)) {
		return Money{}, ErrInvalidAmount
	}
	return Money{Cents: cents.IntPart()}, nil
}

// Cents builds Money from a raw cent count.
func Cents(c int64) Money { return Money{Cents: c} }

// Decimal returns the amount as a decimal with two fraction digits.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// Add returns m+o, failing when the result leaves the storable range.
func (m Money) Add(o Money) (Money, error) {
	sum := m.Cents + o.Cents
	if sum > MaxCents || sum < -MaxCents {
		return Money{}, fmt.Errorf("%w: %s + %s exceeds the storable range", ErrInvalidAmount, m, o)
	}
	return Money{Cents: sum}, nil
}

// InBounds reports whether m can be persisted.
func (m Money) InBounds() bool {
	return m.Cents <= MaxCents && m.Cents >= -MaxCents
}

// Validate accepts any non-negative amount within bounds.
func (m Money) Validate() error {
	if m.Cents < 0 || m.Cents > MaxCents {
		return ErrInvalidAmount
	}
	return nil
}

// MarshalJSON renders the amount as a JSON number with two fraction digits.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted decimal string.
func (m *Money) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "null" {
		return nil
	}
	parsed, err := ParseMoney(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
