package payroll

import (
	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/core"
)

// allocate writes the tax transparency lines for the chosen method and
// returns the share of liability the employee bears:
//
//	NETT     company lines; employee bears nothing
//	GROSS    deduction lines; employee bears all
//	GROSSUP  matching allowance and deduction lines; nets to zero
//	MIXED    employee share as deductions, company share as allowances
//
// withPosition also writes the position-tax line (PPh21 only).
func allocate(r *Result, opts Options, line string, liability decimal.Decimal, withPosition bool) decimal.Decimal {
	position := r.PositionTax

	switch opts.Method {
	case core.MethodGross:
		if withPosition {
			r.Deductions[LinePositionTax] = position
		}
		r.Deductions[line] = liability
		return liability

	case core.MethodGrossUp:
		if withPosition {
			r.Allowances[LinePositionTax] = position
			r.Deductions[LinePositionTax] = position
		}
		r.Allowances[line] = liability
		r.Deductions[line] = liability
		return decimal.Zero

	case core.MethodMixed:
		split := opts.mixedSplit()
		if withPosition {
			employee := core.Floor(core.Percent(position, split.PositionTax.Employee))
			r.Deductions[LinePositionTax] = employee
			r.Allowances[LinePositionTax] = position.Sub(employee)
		}
		employee := core.Floor(core.Percent(liability, split.IncomeTax.Employee))
		r.Deductions[line] = employee
		r.Allowances[line] = liability.Sub(employee)
		return employee
	}

	// NETT
	if withPosition {
		r.Company[LinePositionTax] = position
	}
	r.Company[line] = liability
	return decimal.Zero
}
