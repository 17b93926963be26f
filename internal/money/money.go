package money

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("invalid money amount")

// Amounts are stored as numeric(10,2); anything finer than a cent is
// rejected rather than rounded so the API never silently changes a value.
const maxAmountDigits = 8

// Parse validates a user-supplied amount: strictly positive, at most two
// decimal places, small enough for the column.
func Parse(amount float64) (decimal.Decimal, error) {
	d := decimal.NewFromFloat(amount)
	return validate(d)
}

// ParseString is like Parse but for decimal strings coming from the store.
func ParseString(amount string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrInvalidAmount, amount)
	}
	return validate(d)
}

func validate(d decimal.Decimal) (decimal.Decimal, error) {
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: must be greater than zero", ErrInvalidAmount)
	}
	if d.Exponent() < -2 {
		if !d.Equal(d.Round(2)) {
			return decimal.Zero, fmt.Errorf("%w: at most two decimal places", ErrInvalidAmount)
		}
		d = d.Round(2)
	}
	if len(d.Truncate(0).String()) > maxAmountDigits {
		return decimal.Zero, fmt.Errorf("%w: too large", ErrInvalidAmount)
	}
	return d, nil
}

// Format renders an amount with two decimal places, e.g. "123.40".
func Format(d decimal.Decimal) string {
	return d.StringFixed(2)
}
