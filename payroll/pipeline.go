package payroll

import (
	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/core"
	"github.com/warp/payroll-engine/provisions"
	"github.com/warp/payroll-engine/tax"
)

// pipeline is the builder for one calculation.
type pipeline struct {
	state   provisions.State
	company provisions.Company
	emp     Employee
	opts    Options
	article core.TaxArticle
	tax     tax.Calculator
	r       *Result
}

// =============================================================================
// PPh21 / NonPph
// =============================================================================

func (p *pipeline) run() error {
	p.earnings()
	p.holidayAllowance(p.emp.Permanent)
	if err := p.overtime(); err != nil {
		return err
	}
	p.splitShifts()
	p.annualizeGross()

	if p.emp.Permanent {
		if err := p.contributions(); err != nil {
			return err
		}
		p.benefits()
		p.positionTax()
	} else {
		p.zeroContributions()
		p.benefits()
	}
	p.nett()

	if err := p.liability(); err != nil {
		return err
	}
	p.penalty()
	p.takeHomePay()
	return nil
}

// earnings seeds the base figures. A PKHL base is a daily wage, so the
// period's base is that wage over the days worked.
func (p *pipeline) earnings() {
	e := p.emp.Earnings
	r := &p.r.Earnings

	r.Base = e.Base
	if p.opts.EmployeeType == core.EmployeePKHL {
		r.Base = e.Base.Mul(decimal.NewFromInt(int64(p.emp.Presences.WorkDays)))
	}
	r.FixedAllowance = e.FixedAllowance
	r.GrossFirst = r.Base.Add(e.FixedAllowance)
	r.SalaryGross = r.GrossFirst
	r.Gross = r.GrossFirst.Sub(e.UntaxedFixedAllowance)
}

// holidayAllowance records THR: rate × gross when a rate is set, the nominal
// amount otherwise. asAllowance also lists it under allowances.
func (p *pipeline) holidayAllowance(asAllowance bool) {
	e := p.emp.Earnings
	thr := e.HolidayAllowance
	if e.HolidayAllowanceRate.IsPositive() {
		thr = core.Floor(e.HolidayAllowanceRate.Mul(p.r.Earnings.Gross))
	}
	p.r.Earnings.HolidayAllowance = thr
	if asAllowance && thr.IsPositive() {
		p.r.Allowances[LineHolidayAllowance] = thr
	}
}

func (p *pipeline) overtime() error {
	if !p.company.CalculateOvertime {
		return nil
	}
	amount, err := overtimePay(p.emp.Presences, p.company, p.state, p.r.Earnings.GrossFirst)
	if err != nil {
		return err
	}
	p.r.Earnings.Overtime = amount
	p.addCash(amount)
	return nil
}

func (p *pipeline) splitShifts() {
	if !p.company.CalculateSplitShifts || p.emp.Presences.SplitShifts <= 0 {
		return
	}
	amount := p.company.SplitShiftRate.Mul(decimal.NewFromInt(int64(p.emp.Presences.SplitShifts)))
	p.r.Earnings.SplitShifts = amount
	p.addCash(amount)
}

// addCash adds a cash earning to both the tax base and the cash gross.
func (p *pipeline) addCash(amount decimal.Decimal) {
	p.r.Earnings.Gross = p.r.Earnings.Gross.Add(amount)
	p.r.Earnings.SalaryGross = p.r.Earnings.SalaryGross.Add(amount)
}

func (p *pipeline) periodsPerYear() decimal.Decimal {
	return decimal.NewFromInt(p.opts.SalaryPeriod.PeriodsPerYear())
}

func (p *pipeline) annualizeGross() {
	p.r.Earnings.Annualy.Gross = p.r.Earnings.Gross.Mul(p.periodsPerYear())
}

// benefits adds taxable in-kind benefits to the tax base only.
func (p *pipeline) benefits() {
	sum := p.r.Benefits.Sum()
	p.r.Earnings.Benefits = sum
	p.r.Earnings.Gross = p.r.Earnings.Gross.Add(sum)
}

// positionTax is the occupational deduction. The monthly PPh21 pipeline
// takes it once a year in December; every other variant takes it each
// period. The minimum wage gate compares the monthly equivalent gross.
func (p *pipeline) positionTax() {
	if p.article == core.Pph21 && p.opts.SalaryPeriod == core.PeriodMonthly && p.opts.CurrentMonth != 12 {
		return
	}
	gross := p.r.Earnings.Gross
	if !p.opts.SalaryPeriod.MonthlyEquivalent(gross).GreaterThan(p.state.ProvinceMinimumWage) {
		return
	}
	p.r.PositionTax = core.Floor(core.Min(core.Percent(gross, p.state.PositionTaxRate), p.state.MaxPositionTax))
}

func (p *pipeline) nett() {
	r := p.r
	allowances, deductions := r.Allowances.Sum(), r.Deductions.Sum()

	r.Earnings.Nett = r.Earnings.Gross.Add(allowances).Sub(deductions).Sub(r.PositionTax)
	r.Earnings.SalaryNett = r.Earnings.SalaryGross.Add(allowances).Sub(deductions)

	// The holiday allowance is irregular income and is not annualized.
	regular := r.Earnings.Nett.Sub(r.Allowances.Get(LineHolidayAllowance))
	r.Earnings.Annualy.Nett = regular.Mul(p.periodsPerYear())
}

func (p *pipeline) subject() tax.Subject {
	return tax.Subject{
		EmployeeType:     p.opts.EmployeeType,
		Period:           p.opts.SalaryPeriod,
		Method:           p.opts.Method,
		CurrentMonth:     p.opts.CurrentMonth,
		Married:          p.emp.Married,
		HasNPWP:          p.emp.HasNPWP,
		Dependents:       p.emp.Dependents,
		Continuity:       p.opts.Continuity,
		Base:             p.emp.Earnings.Base,
		WorkDays:         p.emp.Presences.WorkDays,
		Gross:            p.r.Earnings.Gross,
		Nett:             p.r.Earnings.Nett,
		AnnualNett:       p.r.Earnings.Annualy.Nett,
		HolidayAllowance: p.r.Earnings.HolidayAllowance,
		Bonus:            p.r.Bonus.Sum(),
	}
}

func (p *pipeline) liability() error {
	taxable, err := p.tax.Calculate(p.subject())
	if err != nil {
		return err
	}
	p.r.Taxable = taxable
	return nil
}

func (p *pipeline) penalty() {
	pr := p.emp.Presences
	pen := Penalty{RuleSet: pr.LatePenaltyRule}
	if p.opts.BasedOnPresences {
		pen.Late = pr.LateCount
		pen.LateNominal = p.company.LatePenalty.Mul(decimal.NewFromInt(int64(pr.LateCount)))
		pen.Absent = p.company.AbsentPenalty.Mul(decimal.NewFromInt(int64(pr.AbsentDays))).Add(pr.AbsentPenalty)
	}
	p.r.Penalty = pen
}

// takeHomePay starts from the cash nett and lets the allocation method
// decide how much tax the employee bears. Non-permanent employees receive
// the holiday allowance on top and have nothing withheld here.
func (p *pipeline) takeHomePay() {
	r := p.r
	cash := r.Earnings.SalaryNett.Add(r.Bonus.Sum()).Sub(r.Penalty.Total())

	if !p.emp.Permanent {
		r.TakeHomePay = cash.Add(r.Earnings.HolidayAllowance)
		return
	}
	if p.article == core.NonPph {
		r.TakeHomePay = cash
		return
	}

	employeeShare := allocate(r, p.opts, p.article.LineName(), r.Taxable.Liability.PerPeriod, true)
	r.TakeHomePay = cash.Sub(employeeShare)
}

// =============================================================================
// PPh23 / PPh26
// =============================================================================

// runWithholding is the single-shot pipeline for service fees and foreign
// payees: no contributions, overtime or position tax.
func (p *pipeline) runWithholding() error {
	p.earnings()
	p.holidayAllowance(false)
	p.annualizeGross()
	p.nett()

	if err := p.liability(); err != nil {
		return err
	}

	r := p.r
	cash := r.Earnings.SalaryNett.Add(r.Earnings.HolidayAllowance).Add(r.Bonus.Sum())
	employeeShare := allocate(r, p.opts, p.article.LineName(), r.Taxable.Liability.Amount, false)
	r.TakeHomePay = cash.Sub(employeeShare)
	return nil
}
