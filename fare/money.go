package fare

import (
	"fmt"
	"math"

	"golang.org/x/text/currency"
)

// Type is a rider category
type Type string

const (
	Regular Type = "regular"
	Student Type = "student"
	Senior  Type = "senior"
	Youth   Type = "youth"
)

// Money is an amount in the minor units of its currency
type Money struct {
	Currency currency.Unit
	Amount   int64
}

// NewMoney returns an amount in minor units
func NewMoney(cur currency.Unit, minor int64) Money {
	return Money{Currency: cur, Amount: minor}
}

// MoneyFromDecimal converts a decimal price, such as GTFS price fields, into
// minor units using the currency's standard scale
func MoneyFromDecimal(cur currency.Unit, v float64) Money {
	scale, _ := currency.Standard.Rounding(cur)
	return Money{Currency: cur, Amount: int64(math.Round(v * math.Pow10(scale)))}
}

// Add sums two amounts. The receiver's currency is kept.
func (m Money) Add(o Money) Money {
	if m.Currency == (currency.Unit{}) {
		m.Currency = o.Currency
	}
	m.Amount += o.Amount
	return m
}

// Cents returns the amount in minor units
func (m Money) Cents() int64 { return m.Amount }

func (m Money) String() string {
	scale, _ := currency.Standard.Rounding(m.Currency)
	if scale == 0 {
		return fmt.Sprintf("%s %d", m.Currency, m.Amount)
	}
	div := int64(math.Pow10(scale))
	sign := ""
	a := m.Amount
	if a < 0 {
		sign, a = "-", -a
	}
	return fmt.Sprintf("%s %s%d.%0*d", m.Currency, sign, a/div, scale, a%div)
}
