package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const minorUnitExponent = 2

var ErrInvalidAmount = errors.New("amount is not representable in minor units")

// Money is an amount in the currency's minor unit (paise, cents).
type Money int64

// ParseMoney reads a major-unit decimal such as "19.99" without going through float64.
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}

	minor := d.Shift(minorUnitExponent)
	if !minor.IsInteger() || minor.IsNegative() || !minor.BigInt().IsInt64() {
		return 0, fmt.Errorf("%w: %s", ErrInvalidAmount, s)
	}
	return Money(minor.IntPart()), nil
}

func (m Money) Times(quantity int64) Money {
	return m * Money(quantity)
}

func (m Money) MinorUnits() int64 {
	return int64(m)
}

// Decimal returns the amount in major units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -minorUnitExponent)
}

func (m Money) String() string {
	return m.Decimal().StringFixed(minorUnitExponent)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal().String()), nil
}

func (m *Money) UnmarshalJSON(b []byte) error {
	v, err := ParseMoney(strings.Trim(string(b), `"`))
	if err != nil {
		return err
	}
	*m = v
	return nil
}
