package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/core"
	"github.com/warp/payroll-engine/payroll"
)

// render writes a text payslip. Zero amounts are left out.
func render(w io.Writer, name string, r *payroll.Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	if name == "" {
		name = "-"
	}
	fmt.Fprintf(tw, "Employee\t%s\t\n", name)
	fmt.Fprintf(tw, "Period\t%s %s, month %d\t\n", r.EmployeeType, r.SalaryPeriod, r.CurrentMonth)
	fmt.Fprintf(tw, "Method\t%s\t\n", r.Method)
	fmt.Fprintln(tw, "\t\t")

	e := r.Earnings
	section(tw, "EARNINGS", []line{
		{"Base", e.Base},
		{"Fixed allowance", e.FixedAllowance},
		{"Overtime", e.Overtime},
		{"Split shifts", e.SplitShifts},
		{"Holiday allowance", e.HolidayAllowance},
	})
	section(tw, "ALLOWANCES", components(r.Allowances, payroll.LineHolidayAllowance))
	section(tw, "BONUS", components(r.Bonus))
	section(tw, "DEDUCTIONS", components(r.Deductions))
	section(tw, "PENALTY", []line{
		{"Late", r.Penalty.LateNominal},
		{"Absent", r.Penalty.Absent},
	})
	section(tw, "PAID BY COMPANY", components(r.Company))
	section(tw, "TAX", []line{
		{"Gross (tax base)", e.Gross},
		{"Position tax", r.PositionTax},
		{"Nett", e.Nett},
		{"PKP", r.Taxable.PKP},
		{"Liability this period", r.Taxable.Liability.PerPeriod},
	})

	fmt.Fprintf(tw, "TAKE-HOME PAY\t%s\t\n", core.FormatRupiah(r.TakeHomePay))
	return tw.Flush()
}

type line struct {
	label  string
	amount decimal.Decimal
}

func components(c core.Components, skip ...string) []line {
	skipped := make(map[string]bool, len(skip))
	for _, s := range skip {
		skipped[s] = true
	}
	var out []line
	for _, name := range c.Names() {
		if !skipped[name] {
			out = append(out, line{name, c[name]})
		}
	}
	return out
}

func section(w io.Writer, title string, lines []line) {
	var shown []line
	for _, l := range lines {
		if !l.amount.IsZero() {
			shown = append(shown, l)
		}
	}
	if len(shown) == 0 {
		return
	}
	fmt.Fprintf(w, "%s\t\t\n", title)
	for _, l := range shown {
		fmt.Fprintf(w, "  %s\t%s\t\n", l.label, core.FormatRupiah(l.amount))
	}
	fmt.Fprintln(w, "\t\t")
}
