package payroll

import (
	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/core"
	"github.com/warp/payroll-engine/tax"
)

// Result is the itemized outcome of one calculation. Field names mirror the
// payslip layout downstream systems already consume.
type Result struct {
	EmployeeType core.EmployeeType `json:"employeeType"`
	TaxNumber    core.TaxArticle   `json:"taxNumber"`
	SalaryPeriod core.SalaryPeriod `json:"salaryPeriod"`
	Method       core.Method       `json:"method"`
	CurrentMonth int               `json:"currentMonth"`
	Continuity   bool              `json:"berkesinambungan"`

	Earnings   ResultEarnings  `json:"earnings"`
	Allowances core.Components `json:"allowances"`
	Deductions core.Components `json:"deductions"`
	Bonus      core.Components `json:"bonus"`
	Benefits   core.Components `json:"benefits"`
	Taxable    tax.Taxable     `json:"taxable"`
	Company    core.Components `json:"company"`
	Penalty    Penalty         `json:"penalty"`

	PositionTax decimal.Decimal `json:"positionTax"`
	TakeHomePay decimal.Decimal `json:"takeHomePay"`
}

// ResultEarnings breaks down gross and nett.
//
// GrossFirst is base + fixed allowance and never changes after the first
// stage. Gross is the tax base: it also carries overtime, split shifts,
// employer contributions and taxable benefits. SalaryGross and SalaryNett
// are the cash figures take-home pay is built from. Base is the period's
// base, which for PKHL is the daily wage times the days worked.
type ResultEarnings struct {
	Base             decimal.Decimal `json:"base"`
	FixedAllowance   decimal.Decimal `json:"fixedAllowance"`
	GrossFirst       decimal.Decimal `json:"grossFirst"`
	Gross            decimal.Decimal `json:"gross"`
	SalaryGross      decimal.Decimal `json:"salaryGross"`
	Overtime         decimal.Decimal `json:"overtime"`
	SplitShifts      decimal.Decimal `json:"splitShifts"`
	Benefits         decimal.Decimal `json:"benefits"`
	HolidayAllowance decimal.Decimal `json:"holidayAllowance"`
	Nett             decimal.Decimal `json:"nett"`
	SalaryNett       decimal.Decimal `json:"salaryNett"`
	Annualy          Annual          `json:"annualy"`
}

type Annual struct {
	Gross decimal.Decimal `json:"gross"`
	Nett  decimal.Decimal `json:"nett"`
}

// Penalty is the attendance penalty. Late is the late count; LateNominal and
// Absent are amounts.
type Penalty struct {
	Late        int             `json:"late"`
	LateNominal decimal.Decimal `json:"lateNominal"`
	Absent      decimal.Decimal `json:"absent"`
	RuleSet     string          `json:"ruleSet,omitempty"`
}

func (p Penalty) Total() decimal.Decimal {
	return p.LateNominal.Add(p.Absent)
}

// Line names written by the pipeline.
const (
	LineBPJSKesehatan    = "BPJSKesehatan"
	LineJKK              = "JKK"
	LineJKM              = "JKM"
	LineJHT              = "JHT"
	LineJIP              = "JIP"
	LinePositionTax      = "positionTax"
	LineHolidayAllowance = "holidayAllowance"
)
