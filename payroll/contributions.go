package payroll

import (
	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/core"
)

// contributions applies the BPJS rules to gross_first. Employer amounts are
// recorded under company and added to gross; employee amounts are recorded
// under deductions. A missing JKK risk grade fails the calculation.
func (p *pipeline) contributions() error {
	rates := p.state.Contributions
	base := p.r.Earnings.GrossFirst
	general := core.Min(base, p.state.HighestWage)

	if p.company.CalculateBPJSKesehatan {
		kes := core.Min(base, p.state.KesehatanCeiling())
		employee := core.Percent(kes, rates.BPJSKesehatan.Employee)
		if extra := p.emp.Dependents - rates.KesehatanFamilyLimit; rates.KesehatanFamilyLimit > 0 && extra > 0 {
			employee = employee.Add(employee.Mul(decimal.NewFromInt(int64(extra))))
		}
		p.employer(LineBPJSKesehatan, core.Percent(kes, rates.BPJSKesehatan.Company))
		p.employee(LineBPJSKesehatan, employee)
	}

	if p.company.JKK {
		rate, err := p.state.RiskGrades.Lookup(p.company.RiskGrade)
		if err != nil {
			return err
		}
		p.employer(LineJKK, core.Percent(general, rate))
	}

	if p.company.JKM {
		p.employer(LineJKM, core.Percent(general, rates.JKM))
	}

	if p.company.JHT {
		split := rates.JHT
		if p.company.BPJSKetenagakerjaanPaidByCompany {
			split = rates.JHTCompanyPaid
		}
		p.employer(LineJHT, core.Percent(general, split.Company))
		p.employee(LineJHT, core.Percent(general, split.Employee))
	}

	if p.company.JIP {
		jp := core.Min(base, p.state.HighestWageJP)
		split := rates.JIP
		if p.company.BPJSKetenagakerjaanPaidByCompany {
			split = rates.JIPCompanyPaid
		}
		p.employer(LineJIP, core.Percent(jp, split.Company))
		p.employee(LineJIP, core.Percent(jp, split.Employee))
	}
	return nil
}

func (p *pipeline) employer(line string, amount decimal.Decimal) {
	p.r.Company[line] = amount
	p.r.Earnings.Gross = p.r.Earnings.Gross.Add(amount)
}

func (p *pipeline) employee(line string, amount decimal.Decimal) {
	if amount.IsPositive() {
		p.r.Deductions[line] = amount
	}
}

// zeroContributions records every line as zero for non-permanent employees.
func (p *pipeline) zeroContributions() {
	for _, line := range []string{LineBPJSKesehatan, LineJKK, LineJKM, LineJHT, LineJIP} {
		p.r.Company[line] = decimal.Zero
		p.r.Deductions[line] = decimal.Zero
	}
}
