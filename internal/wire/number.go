package wire

import (
	"github.com/shopspring/decimal"
)

// Number is a decimal that travels as a bare JSON number (50, 59.0, 118.05)
// instead of decimal's default quoted string.
type Number decimal.Decimal

// NewNumber wraps d.
func NewNumber(d decimal.Decimal) Number {
	return Number(d)
}

// Decimal unwraps n.
func (n Number) Decimal() decimal.Decimal {
	return decimal.Decimal(n)
}

func (n Number) MarshalJSON() ([]byte, error) {
	return []byte(decimal.Decimal(n).String()), nil
}

// UnmarshalJSON accepts numbers, numeric strings and null (zero).
func (n *Number) UnmarshalJSON(b []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return err
	}
	*n = Number(d)
	return nil
}
