/*
Package core provides the primitive types shared by every payroll package.

PURPOSE:
  This package holds the vocabulary of the payroll engine: rupiah amounts,
  named-amount containers, the closed enumerations that select a calculation
  pipeline, and the error taxonomy. It has no knowledge of tax rules or
  statutory tables; those live in provisions/ and tax/.

KEY CONCEPTS IN THIS FILE (money.go):
  - Rupiah amounts are decimal.Decimal, never float64
  - Percent: apply a percentage rate (4 means 4%) to an amount
  - Floor: truncate to whole rupiah, the rounding every liability uses

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal to avoid floating-point errors
  2. Immutability: Helpers return new values, inputs are never modified
  3. Explicit rounding: Nothing is rounded unless Floor is called

USAGE:
  jht := core.Percent(core.Min(grossFirst, ceiling), decimal.NewFromFloat(3.7))
  monthly := core.Floor(annual.Div(decimal.NewFromInt(12)))

SEE ALSO:
  - components.go: Named-amount containers (allowances, deductions, ...)
  - enums.go: Employee type, tax article, salary period, allocation method
  - errors.go: Configuration, unsupported-combination and lookup errors
*/
package core

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Rupiah converts a whole-rupiah integer to a decimal amount.
func Rupiah(value int64) decimal.Decimal {
	return decimal.NewFromInt(value)
}

// Percent returns amount × rate / 100.
func Percent(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).Div(hundred)
}

// Floor truncates to whole rupiah (towards negative infinity).
func Floor(d decimal.Decimal) decimal.Decimal {
	return d.Floor()
}

func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

func Max(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// NonNegative clamps d at zero.
func NonNegative(d decimal.Decimal) decimal.Decimal {
	return Max(d, decimal.Zero)
}
