package tax

import (
	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/core"
	"github.com/warp/payroll-engine/provisions"
)

// Pph21 computes employee income tax.
//
// Regime selection:
//
//	PKHL                          -> daily cumulative threshold (any month)
//	KEMITRAAN                     -> half taxable base (any month)
//	PKWTT/PKWT, December or no TER -> progressive annual reconciliation
//	PKWTT/PKWT, otherwise          -> TER monthly effective rate
type Pph21 struct {
	State provisions.State
}

func (p *Pph21) Calculate(s Subject) (Taxable, error) {
	switch s.EmployeeType {
	case core.EmployeePKHL:
		return p.daily(s)
	case core.EmployeeKemitraan:
		return p.partnership(s)
	}
	if s.CurrentMonth == 12 || !p.State.UseTER {
		return p.progressive(s)
	}
	return p.effectiveRate(s)
}

func (p *Pph21) ptkp(s Subject) (PTKP, error) {
	status := provisions.StatusFor(s.Married, s.Dependents)
	amount, err := p.State.PTKP.Lookup(status)
	if err != nil {
		return PTKP{}, err
	}
	return PTKP{Status: status, Amount: amount}, nil
}

// =============================================================================
// PROGRESSIVE - Annual reconciliation
// =============================================================================

// progressive applies the rate of the bracket containing the annual nett to
// the whole PKP. Nothing is withheld while the monthly equivalent nett is at
// or below the minimum taxable nett.
func (p *Pph21) progressive(s Subject) (Taxable, error) {
	ptkp, err := p.ptkp(s)
	if err != nil {
		return Taxable{}, err
	}
	band, err := p.bracket(s.AnnualNett)
	if err != nil {
		return Taxable{}, err
	}

	pkp := core.NonNegative(s.AnnualNett.Add(s.HolidayAllowance).Add(s.Bonus).Sub(ptkp.Amount))
	t := Taxable{Regime: RegimeProgressive, PTKP: ptkp, PKP: pkp, Rate: band.Rate}
	if !s.Period.MonthlyEquivalent(s.Nett).GreaterThan(p.State.MinimumTaxableNett) {
		t.Liability = spread(Liability{}, s.Period)
		return t, nil
	}

	annual := surcharge(core.Percent(pkp, band.Rate), s.HasNPWP, p.State.NoTaxIDSurcharge)
	t.Liability = spread(Liability{
		Annual:  annual,
		Monthly: core.Floor(annual.Div(twelve)),
	}, s.Period)
	return t, nil
}

// bracket returns the band whose tier contains amount.
func (p *Pph21) bracket(amount decimal.Decimal) (provisions.RateBand, error) {
	return p.State.Brackets.Lookup(core.NonNegative(amount))
}

// =============================================================================
// TER - Monthly effective rate
// =============================================================================

func (p *Pph21) effectiveRate(s Subject) (Taxable, error) {
	ptkp, err := p.ptkp(s)
	if err != nil {
		return Taxable{}, err
	}

	gross := core.Floor(s.Period.MonthlyEquivalent(s.Gross))
	cat, band, err := p.State.TER.Lookup(ptkp.Status, gross)
	if err != nil {
		return Taxable{}, err
	}
	monthly := core.Floor(core.Percent(gross, band.Rate))

	var allowance decimal.Decimal
	if s.Method == core.MethodGrossUp {
		// One re-lookup with the first-pass tax added; the rate it yields
		// applies to the unchanged gross.
		allowance = monthly
		cat, band, err = p.State.TER.Lookup(ptkp.Status, gross.Add(allowance))
		if err != nil {
			return Taxable{}, err
		}
		monthly = core.Floor(core.Percent(gross, band.Rate))
	}

	ptkp.TERCategory = cat
	ptkp.TERRate = band.Rate
	return Taxable{
		Regime: RegimeTER,
		PTKP:   ptkp,
		PKP:    gross,
		Rate:   band.Rate,
		Liability: spread(Liability{
			Annual:    monthly.Mul(twelve),
			Monthly:   monthly,
			Allowance: allowance,
		}, s.Period),
	}, nil
}

// =============================================================================
// PKHL - Daily workers
// =============================================================================

// daily walks the work days accumulating wages. Before the monthly
// threshold is crossed only wages above the daily threshold are taxed. On
// the crossing day the whole cumulative wage less pro-rated PTKP is taxed,
// net of what was already withheld, and every later day is taxed on the
// wage less daily PTKP. Wages are taxed at the rate of the band containing
// the day's wage.
func (p *Pph21) daily(s Subject) (Taxable, error) {
	ptkp, err := p.ptkp(s)
	if err != nil {
		return Taxable{}, err
	}
	band, err := p.bracket(s.Base)
	if err != nil {
		return Taxable{}, err
	}
	rate := band.Rate
	rules := p.State.PKHL
	dailyPTKP := ptkp.Amount.Div(decimal.NewFromInt(rules.PTKPDays))

	acc := &DailyAccumulation{}
	cumulative := decimal.Zero
	for day := 1; day <= s.WorkDays; day++ {
		cumulative = cumulative.Add(s.Base)
		if cumulative.GreaterThan(rules.MonthlyThreshold) {
			taxedBase := cumulative.Sub(dailyPTKP.Mul(decimal.NewFromInt(int64(day))))
			crossing := core.NonNegative(core.Percent(taxedBase, rate).Sub(acc.BeforeThreshold))

			remainingDays := decimal.NewFromInt(int64(s.WorkDays - day))
			remaining := core.NonNegative(core.Percent(s.Base.Sub(dailyPTKP).Mul(remainingDays), rate))

			acc.ThresholdDay = day
			acc.AfterThreshold = crossing.Add(remaining)
			break
		}
		if s.Base.GreaterThan(rules.DailyThreshold) {
			acc.BeforeThreshold = acc.BeforeThreshold.Add(core.Percent(s.Base.Sub(rules.DailyThreshold), rate))
		}
	}
	acc.Cumulative = s.Base.Mul(decimal.NewFromInt(int64(s.WorkDays)))

	total := surcharge(acc.BeforeThreshold.Add(acc.AfterThreshold), s.HasNPWP, p.State.NoTaxIDSurcharge)
	return Taxable{
		Regime:    RegimeDaily,
		PTKP:      ptkp,
		PKP:       acc.Cumulative,
		Rate:      rate,
		Liability: spread(Liability{Monthly: core.Floor(total)}, s.Period),
		Daily:     acc,
	}, nil
}

// =============================================================================
// KEMITRAAN - Partnerships
// =============================================================================

func (p *Pph21) partnership(s Subject) (Taxable, error) {
	var ptkp PTKP
	if s.Continuity {
		var err error
		if ptkp, err = p.ptkp(s); err != nil {
			return Taxable{}, err
		}
	} else {
		ptkp.Status = provisions.StatusFor(s.Married, s.Dependents)
	}

	band, err := p.bracket(s.AnnualNett)
	if err != nil {
		return Taxable{}, err
	}

	pkp := core.NonNegative(s.AnnualNett.Add(s.HolidayAllowance).Add(s.Bonus).Sub(ptkp.Amount))
	annual := surcharge(core.Percent(pkp.Div(two), band.Rate), s.HasNPWP, p.State.NoTaxIDSurcharge)

	return Taxable{
		Regime: RegimePartnership,
		PTKP:   ptkp,
		PKP:    pkp,
		Rate:   band.Rate,
		Liability: spread(Liability{
			Annual:  annual,
			Monthly: core.Floor(annual.Div(twelve)),
		}, s.Period),
	}, nil
}
