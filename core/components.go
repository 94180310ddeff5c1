package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// COMPONENTS - Named-amount containers
// =============================================================================

// Components is a named-amount mapping such as an employee's allowances,
// deductions, benefits or bonus lines. The zero value (nil) is an empty
// container for reads; use Clone or make before writing.
type Components map[string]decimal.Decimal

// Sum returns the total of all lines.
func (c Components) Sum() decimal.Decimal {
	total := decimal.Zero
	for _, v := range c {
		total = total.Add(v)
	}
	return total
}

// Get returns the named line or zero.
func (c Components) Get(name string) decimal.Decimal {
	if v, ok := c[name]; ok {
		return v
	}
	return decimal.Zero
}

// Clone returns an independent copy. Calculations always clone the caller's
// containers so the input is never mutated.
func (c Components) Clone() Components {
	out := make(Components, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Names returns the line names in sorted order.
func (c Components) Names() []string {
	names := make([]string, 0, len(c))
	for k := range c {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
