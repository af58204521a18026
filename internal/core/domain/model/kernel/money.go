package kernel

import (
	"fmt"

	"ordering/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// moneyScale is the number of fractional digits every Money amount carries.
const moneyScale = 2

// ZeroMoney is the additive identity, used as the seed when summing item subtotals.
var ZeroMoney = Money{amount: decimal.Zero}

// Money is an immutable currency amount with exactly two fractional digits.
//
// Every amount is rounded half-to-even (banker's rounding) when it is built and
// again after every arithmetic operation, so scale never drifts:
//
//	a := kernel.NewMoneyFromFloat(10.125) // 10.12
//	b := kernel.NewMoneyFromFloat(10.135) // 10.14
//	c := kernel.NewMoneyFromFloat(10.005).Add(kernel.NewMoneyFromFloat(0.005)) // 10.00 + 0.00 = 10.00
//
// Money deliberately carries no currency; the order service prices everything
// in the restaurant's currency.
type Money struct {
	amount decimal.Decimal
}

// NewMoney rounds amount to two digits using round-half-to-even.
func NewMoney(amount decimal.Decimal) Money {
	return Money{amount: amount.RoundBank(moneyScale)}
}

// NewMoneyFromFloat builds Money from a float using its shortest decimal representation,
// so 10.005 is treated as exactly 10.005 before rounding.
func NewMoneyFromFloat(amount float64) Money {
	return NewMoney(decimal.NewFromFloat(amount))
}

// NewMoneyFromString parses a decimal string such as "25.00".
func NewMoneyFromString(amount string) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, errs.NewValueIsInvalidErrorWithCause("money", fmt.Errorf("%q is not a decimal: %w", amount, err))
	}
	return NewMoney(d), nil
}

// Add returns m + other.
func (m Money) Add(other Money) Money {
	return NewMoney(m.amount.Add(other.amount))
}

// Subtract returns m - other. The result may be negative.
func (m Money) Subtract(other Money) Money {
	return NewMoney(m.amount.Sub(other.amount))
}

// Multiply returns m multiplied by an item quantity.
func (m Money) Multiply(quantity int) Money {
	return NewMoney(m.amount.Mul(decimal.NewFromInt(int64(quantity))))
}

// IsGreaterThanZero reports whether m > 0.
func (m Money) IsGreaterThanZero() bool {
	return m.amount.IsPositive()
}

// IsGreaterThan reports whether m > other.
func (m Money) IsGreaterThan(other Money) bool {
	return m.amount.GreaterThan(other.amount)
}

// IsEqual compares amounts numerically, so 10 and 10.00 are equal.
func (m Money) IsEqual(other Money) bool {
	return m.amount.Equal(other.amount)
}

// Amount exposes the rounded decimal for persistence and wire mapping.
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// String renders the amount with two fractional digits.
func (m Money) String() string {
	return m.amount.StringFixed(moneyScale)
}
