// Package money provides an exact fixed-point money representation for
// provider price payloads. Providers report prices as decimal strings
// ("49.99"); float64 cannot round-trip those exactly, so amounts are held
// as minor units (cents) and converted through shopspring/decimal.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// minorFactor converts between major and minor units for two-decimal
// currencies.
var minorFactor = decimal.NewFromInt(100)

// Money is an amount in minor units (cents) of a currency. The zero value
// is zero units of no currency.
type Money struct {
	// Units is the amount in minor units: 4999 for $49.99.
	Units int64 `json:"units"`

	// Currency is the ISO 4217 code ("USD"). Defaults to empty when the
	// provider omits it; callers decide the fallback per provider.
	Currency string `json:"currency"`
}

// FromDecimal converts a decimal amount in major units into Money,
// truncating beyond two decimal places. Values representable with two
// decimals round-trip exactly.
func FromDecimal(d decimal.Decimal, currency string) Money {
	return Money{
		Units:    d.Mul(minorFactor).IntPart(),
		Currency: currency,
	}
}

// ToDecimal returns the amount in major units.
func (m Money) ToDecimal() decimal.Decimal {
	return decimal.NewFromInt(m.Units).Div(minorFactor)
}

// Parse converts a provider decimal string ("49.99") into Money. Returns
// an error on non-numeric input; an empty string parses as zero, the
// documented default for absent price fields.
func Parse(value, currency string) (Money, error) {
	if value == "" {
		return Money{Currency: currency}, nil
	}

	d, err := decimal.NewFromString(value)
	if err != nil {
		return Money{}, fmt.Errorf("parsing amount %q: %w", value, err)
	}
	return FromDecimal(d, currency), nil
}

// String formats the amount in major units: "49.99 USD".
func (m Money) String() string {
	if m.Currency == "" {
		return m.ToDecimal().StringFixed(2)
	}
	return m.ToDecimal().StringFixed(2) + " " + m.Currency
}

// IsZero reports whether the amount is zero, regardless of currency.
func (m Money) IsZero() bool {
	return m.Units == 0
}
