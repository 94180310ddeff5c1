/*
Package payroll orchestrates a full pay calculation.

PURPOSE:
  The Calculator turns an Employee snapshot and a set of Options into an
  itemized Result. It runs one pipeline parameterized by salary period and
  tax article instead of a copy per combination:

    earnings -> holiday allowance -> overtime -> split shifts -> annualize
      -> contributions | non-permanent zeroing -> benefits -> position tax
      -> nett -> tax liability -> penalty -> allocation -> take-home pay

  PPh23 and PPh26 use a shorter single-shot pipeline (withholding.go).

ATOMICITY:
  Stages write into a private builder. Any error aborts the run and the
  caller gets (nil, err); a Result is only returned when every stage ran.

CONCURRENCY:
  A Calculator holds read-only provisions and may be shared across
  goroutines. Each Calculate call allocates its own builder.

USAGE:
  calc, err := payroll.New(provs)
  res, err := calc.Calculate(emp, payroll.Options{
      EmployeeType: core.EmployeePKWTT,
      TaxNumber:    core.Pph21,
      SalaryPeriod: core.PeriodMonthly,
      Method:       core.MethodNett,
      CurrentMonth: 6,
  })

SEE ALSO:
  - pipeline.go: Stage implementations
  - contributions.go: BPJS rules
  - overtime.go: Regulation overtime bands
  - allocation.go: NETT / GROSS / GROSSUP / MIXED
*/
package payroll

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/core"
	"github.com/warp/payroll-engine/provisions"
	"github.com/warp/payroll-engine/tax"
)

// Options select the pipeline variant for one calculation.
type Options struct {
	EmployeeType core.EmployeeType `json:"employeeType"`
	TaxNumber    core.TaxArticle   `json:"taxNumber"`
	SalaryPeriod core.SalaryPeriod `json:"salaryPeriod"`
	Method       core.Method       `json:"method"`
	CurrentMonth int               `json:"currentMonth"`

	// Continuity is the KEMITRAAN berkesinambungan flag.
	Continuity bool `json:"berkesinambungan"`

	// BasedOnPresences enables attendance penalties.
	BasedOnPresences bool `json:"basedOnPresences"`

	// MixedSplit applies to MethodMixed; nil means 50/50 on both lines.
	MixedSplit *MixedSplit `json:"mixedSplit,omitempty"`
}

// MixedSplit is the company/employee percentage pair for each tax line.
type MixedSplit struct {
	PositionTax provisions.Split `json:"positionTax"`
	IncomeTax   provisions.Split `json:"incomeTax"`
}

// DefaultMixedSplit shares both lines equally.
func DefaultMixedSplit() MixedSplit {
	half := decimal.NewFromInt(50)
	even := provisions.Split{Company: half, Employee: half}
	return MixedSplit{PositionTax: even, IncomeTax: even}
}

// Validate checks the enum values and numeric ranges.
func (o Options) Validate() error {
	if !o.EmployeeType.Valid() {
		return &core.UnsupportedCombinationError{Field: "employeeType", Value: string(o.EmployeeType)}
	}
	if !o.SalaryPeriod.Valid() {
		return &core.UnsupportedCombinationError{Field: "salaryPeriod", Value: string(o.SalaryPeriod)}
	}
	if !o.Method.Valid() {
		return &core.UnsupportedCombinationError{Field: "method", Value: string(o.Method)}
	}
	if o.CurrentMonth < 1 || o.CurrentMonth > 12 {
		return &core.ConfigurationError{Field: "currentMonth", Reason: fmt.Sprintf("%d is not a month", o.CurrentMonth)}
	}
	if o.Method == core.MethodMixed {
		split := o.mixedSplit()
		if err := validateSplit("mixedSplit.positionTax", split.PositionTax); err != nil {
			return err
		}
		if err := validateSplit("mixedSplit.incomeTax", split.IncomeTax); err != nil {
			return err
		}
	}
	return nil
}

func validateSplit(field string, pair provisions.Split) error {
	if pair.Company.IsNegative() || pair.Employee.IsNegative() ||
		!pair.Company.Add(pair.Employee).Equal(decimal.NewFromInt(100)) {
		return &core.ConfigurationError{Field: field, Reason: "shares must be non-negative and sum to 100"}
	}
	return nil
}

func (o Options) mixedSplit() MixedSplit {
	if o.MixedSplit == nil {
		return DefaultMixedSplit()
	}
	return *o.MixedSplit
}

// =============================================================================
// CALCULATOR
// =============================================================================

// Calculator runs payroll calculations against one set of provisions.
type Calculator struct {
	provisions provisions.Provisions
}

// New validates the provisions and returns a Calculator.
func New(p provisions.Provisions) (*Calculator, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Calculator{provisions: p}, nil
}

// Calculate computes the payroll result for one employee and period.
func (c *Calculator) Calculate(emp Employee, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	article := opts.TaxNumber.Normalize()
	p := &pipeline{
		state:   c.provisions.State,
		company: c.provisions.Company,
		emp:     emp,
		opts:    opts,
		article: article,
		tax:     tax.For(article, c.provisions.State),
		r:       newResult(emp, opts),
	}

	var err error
	switch article {
	case core.Pph23, core.Pph26:
		err = p.runWithholding()
	default:
		err = p.run()
	}
	if err != nil {
		return nil, err
	}
	return p.r, nil
}

func newResult(emp Employee, opts Options) *Result {
	return &Result{
		EmployeeType: opts.EmployeeType,
		TaxNumber:    opts.TaxNumber,
		SalaryPeriod: opts.SalaryPeriod,
		Method:       opts.Method,
		CurrentMonth: opts.CurrentMonth,
		Continuity:   opts.Continuity,
		Allowances:   emp.Allowances.Clone(),
		Deductions:   emp.Deductions.Clone(),
		Bonus:        emp.Bonus.Clone(),
		Benefits:     emp.Benefits.Clone(),
		Company:      make(core.Components),
	}
}
