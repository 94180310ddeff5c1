package tax

import (
	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/core"
	"github.com/warp/payroll-engine/provisions"
)

// Pph23 withholds a flat rate on nett; payees without NPWP pay the
// configured surcharge on top of the rate.
type Pph23 struct {
	State provisions.State
}

func (p *Pph23) Calculate(s Subject) (Taxable, error) {
	rate := surcharge(p.State.Pph23Rate, s.HasNPWP, p.State.Pph23NoTaxIDSurcharge)
	return flat(s, rate), nil
}

// Pph26 withholds a flat rate on nett for foreign payees.
type Pph26 struct {
	State provisions.State
}

func (p *Pph26) Calculate(s Subject) (Taxable, error) {
	return flat(s, p.State.Pph26Rate), nil
}

func flat(s Subject, rate decimal.Decimal) Taxable {
	amount := core.Floor(core.Percent(core.NonNegative(s.Nett), rate))
	return Taxable{
		Regime: RegimeFlat,
		PKP:    s.Nett,
		Rate:   rate,
		Liability: Liability{
			Monthly:   amount,
			PerPeriod: amount,
			Amount:    amount,
		},
	}
}

// NonPph withholds nothing.
type NonPph struct{}

func (NonPph) Calculate(Subject) (Taxable, error) {
	return Taxable{Regime: RegimeNone}, nil
}
