/*
Package tax computes income-tax liability for one pay period.

PURPOSE:
  Each calculator is a pure function of a Subject (the figures the payroll
  pipeline has produced so far) and the statutory State. It returns a
  Taxable sub-result; allocating that liability between employer and
  employee is the payroll package's job.

CALCULATORS:
  Pph21  - Employee income tax: TER tables, progressive December
           reconciliation, PKHL daily threshold, KEMITRAAN half base
  Pph23  - Flat withholding on domestic service fees
  Pph26  - Flat withholding on foreign payees
  NonPph - No withholding

DESIGN PRINCIPLES:
  1. No mutation: Subject is a value, results are built fresh
  2. Fail whole: a lookup miss returns an error and no Taxable
  3. Floor at the end: liabilities are truncated to whole rupiah

SEE ALSO:
  - pph21.go: Regime selection and formulas
  - withholding.go: PPh23/26 and NonPph
  - payroll/pipeline.go: Builds the Subject and consumes the Taxable
*/
package tax

import (
	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/core"
	"github.com/warp/payroll-engine/provisions"
)

// =============================================================================
// INPUT
// =============================================================================

// Subject is the read-only view of an employee and the pipeline's figures
// that a tax calculator needs.
type Subject struct {
	EmployeeType core.EmployeeType
	Period       core.SalaryPeriod
	Method       core.Method
	CurrentMonth int

	Married    bool
	HasNPWP    bool
	Dependents int
	Continuity bool

	// Base is the employee's base earning; the daily wage for PKHL.
	Base     decimal.Decimal
	WorkDays int

	Gross decimal.Decimal
	Nett  decimal.Decimal

	// AnnualNett is the regular nett annualized by the period factor; it
	// excludes irregular income such as the holiday allowance.
	AnnualNett       decimal.Decimal
	HolidayAllowance decimal.Decimal
	Bonus            decimal.Decimal
}

// =============================================================================
// OUTPUT
// =============================================================================

// Regime names the formula that produced a liability.
type Regime string

const (
	RegimeTER         Regime = "TER"
	RegimeProgressive Regime = "PROGRESSIVE"
	RegimeDaily       Regime = "PKHL"
	RegimePartnership Regime = "KEMITRAAN"
	RegimeFlat        Regime = "FLAT"
	RegimeNone        Regime = "NONE"
)

// Taxable is the tax sub-result.
type Taxable struct {
	Regime    Regime             `json:"regime"`
	PTKP      PTKP               `json:"ptkp"`
	PKP       decimal.Decimal    `json:"pkp"`
	Rate      decimal.Decimal    `json:"rate"`
	Liability Liability          `json:"liability"`
	Daily     *DailyAccumulation `json:"pkhl,omitempty"`
}

// PTKP echoes the tax-free allowance and, for TER, the category used.
type PTKP struct {
	Status      provisions.PTKPStatus  `json:"status"`
	Amount      decimal.Decimal        `json:"amount"`
	TERCategory provisions.TERCategory `json:"terCategory,omitempty"`
	TERRate     decimal.Decimal        `json:"terRate"`
}

// Liability holds the tax owed at each granularity. PerPeriod is what the
// current pay period withholds. Allowance is the first-pass gross-up tax
// allowance. Amount is the flat PPh23/26 withholding.
type Liability struct {
	Annual    decimal.Decimal `json:"annual"`
	Monthly   decimal.Decimal `json:"monthly"`
	Weekly    decimal.Decimal `json:"weekly"`
	PerPeriod decimal.Decimal `json:"perPeriod"`
	Allowance decimal.Decimal `json:"allowance"`
	Amount    decimal.Decimal `json:"amount"`
}

// DailyAccumulation reports the PKHL threshold crossing.
type DailyAccumulation struct {
	ThresholdDay    int             `json:"thresholdDay"`
	Cumulative      decimal.Decimal `json:"cumulative"`
	BeforeThreshold decimal.Decimal `json:"beforeThreshold"`
	AfterThreshold  decimal.Decimal `json:"afterThreshold"`
}

// =============================================================================
// CALCULATOR
// =============================================================================

// Calculator computes a Taxable for one Subject.
type Calculator interface {
	Calculate(s Subject) (Taxable, error)
}

// For returns the calculator for a tax article.
func For(article core.TaxArticle, state provisions.State) Calculator {
	switch article.Normalize() {
	case core.Pph21:
		return &Pph21{State: state}
	case core.Pph23:
		return &Pph23{State: state}
	case core.Pph26:
		return &Pph26{State: state}
	}
	return NonPph{}
}

var (
	four   = decimal.NewFromInt(4)
	two    = decimal.NewFromInt(2)
	twelve = decimal.NewFromInt(12)
)

// spread fills Monthly-derived fields from an annual or monthly figure.
func spread(l Liability, period core.SalaryPeriod) Liability {
	l.Weekly = core.Floor(l.Monthly.Div(four))
	switch period {
	case core.PeriodWeekly:
		l.PerPeriod = l.Weekly
	case core.PeriodBiweekly:
		l.PerPeriod = core.Floor(l.Monthly.Div(two))
	default:
		l.PerPeriod = l.Monthly
	}
	return l
}

// surcharge adds pct percent when the payee has no tax ID.
func surcharge(amount decimal.Decimal, hasNPWP bool, pct decimal.Decimal) decimal.Decimal {
	if hasNPWP {
		return amount
	}
	return amount.Add(core.Percent(amount, pct))
}
