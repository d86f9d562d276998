// Package money holds the fixed-point currency helpers shared by the planner,
// the store and the presentation layers.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a currency value. Binary floats never carry money in this module.
type Amount = decimal.Decimal

var (
	// Zero is the zero amount.
	Zero = decimal.Zero

	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
)

// Rounder applies the currency's minor-unit rounding rule.
// Places is the number of decimal places of the minor unit; 0 means the
// currency has no minor unit and amounts round to whole units.
type Rounder struct {
	Places int32
}

// Round rounds half away from zero to the minor unit.
func (r Rounder) Round(a Amount) Amount {
	return a.Round(r.Places)
}

// Epsilon is half of one minor unit. Balances at or below it count as paid.
func (r Rounder) Epsilon() Amount {
	return decimal.New(5, -(r.Places + 1))
}

// MonthlyInterest is balance × annualPercent / 100 / 12 before rounding.
func MonthlyInterest(balance, annualPercent Amount) Amount {
	return balance.Mul(annualPercent).Div(hundred.Mul(twelve))
}

// Parse reads an amount from user input. Thousands separators and a leading
// currency symbol are tolerated.
func Parse(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "₹$€£")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "_", "")
	if s == "" {
		return Zero, fmt.Errorf("empty amount")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return d, nil
}

// FromInt returns n whole units.
func FromInt(n int64) Amount {
	return decimal.NewFromInt(n)
}

// MustParse is Parse for literals known to be valid.
func MustParse(s string) Amount {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Sum adds amounts.
func Sum(amounts ...Amount) Amount {
	total := Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// Min returns the smaller of a and b.
func Min(a, b Amount) Amount {
	if a.LessThan(b) {
		return a
	}
	return b
}
