/*
Package provisions holds the statutory and company parameters a payroll
calculation reads.

PURPOSE:
  Provisions are pure input. The State half carries statutory constants
  (PTKP, wage ceilings, JKK risk grades, progressive brackets, TER tables,
  contribution and withholding rates). The Company half carries policy
  switches and company-specific rates. Calculators never mutate either.

KEY CONCEPTS:
  - PTKPStatus: "TK/n" or "K/n" with n capped at 3
  - RateTable: sorted, non-overlapping [min, max] bands with binary search
  - TER: PTKP status -> category A/B/C -> RateTable
  - RiskGradeTable: JKK percentage by risk grade

LOADING:
  Default() parses the embedded 2024 provisions (defaults.yaml).
  ParseYAML/LoadFile accept the same document shape for other years or
  provinces. store/sqlite persists a loaded snapshot.

SEE ALSO:
  - factory.go: YAML document -> State/Company
  - tables.go: Range index used for TER, brackets and risk grades
  - tax/: Consumes State
  - payroll/: Consumes Company and State
*/
package provisions

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/core"
)

// Provisions bundles the two parameter sets a calculation needs.
type Provisions struct {
	State   State   `json:"state"`
	Company Company `json:"company"`
}

// Validate checks both halves.
func (p Provisions) Validate() error {
	if err := p.State.Validate(); err != nil {
		return err
	}
	return p.Company.Validate()
}

// =============================================================================
// STATE
// =============================================================================

// State is the statutory parameter set for one fiscal year.
type State struct {
	Year int `json:"year"`

	PTKP PTKPTable `json:"ptkp"`

	HighestWage              decimal.Decimal `json:"highestWage"`
	HighestWageJP            decimal.Decimal `json:"highestWageJp"`
	HighestWageBPJSKesehatan decimal.Decimal `json:"highestWageBpjsKesehatan"`
	ProvinceMinimumWage      decimal.Decimal `json:"provinceMinimumWage"`

	RiskGrades RiskGradeTable `json:"riskGrades"`
	Brackets   RateTable      `json:"brackets"`
	TER        TER            `json:"ter"`

	// UseTER selects TER-table withholding for January..November. When false
	// every month uses the progressive calculation.
	UseTER bool `json:"useTer"`

	PositionTaxRate decimal.Decimal `json:"positionTaxRate"`
	MaxPositionTax  decimal.Decimal `json:"maxPositionTax"`

	Contributions ContributionRates `json:"contributions"`

	NoTaxIDSurcharge      decimal.Decimal `json:"noTaxIdSurcharge"`
	Pph23Rate             decimal.Decimal `json:"pph23Rate"`
	Pph23NoTaxIDSurcharge decimal.Decimal `json:"pph23NoTaxIdSurcharge"`
	Pph26Rate             decimal.Decimal `json:"pph26Rate"`

	PKHL PKHLRules `json:"pkhl"`

	// MinimumTaxableNett gates the progressive path for PKWTT/PKWT.
	MinimumTaxableNett    decimal.Decimal `json:"minimumTaxableNett"`
	OvertimeHourlyDivisor decimal.Decimal `json:"overtimeHourlyDivisor"`
}

// Split is a company/employee percentage pair.
type Split struct {
	Company  decimal.Decimal `json:"company"`
	Employee decimal.Decimal `json:"employee"`
}

// ContributionRates are the BPJS percentages. The CompanyPaid variants apply
// when the company bears the whole BPJS Ketenagakerjaan contribution.
type ContributionRates struct {
	BPJSKesehatan  Split           `json:"bpjsKesehatan"`
	JKM            decimal.Decimal `json:"jkm"`
	JHT            Split           `json:"jht"`
	JHTCompanyPaid Split           `json:"jhtCompanyPaid"`
	JIP            Split           `json:"jip"`
	JIPCompanyPaid Split           `json:"jipCompanyPaid"`

	// Above this many dependents the employee's BPJS Kesehatan share grows
	// by one share per extra family member.
	KesehatanFamilyLimit int `json:"kesehatanFamilyLimit"`
}

// PKHLRules parameterize the daily-worker cumulative threshold algorithm.
type PKHLRules struct {
	DailyThreshold   decimal.Decimal `json:"dailyThreshold"`
	MonthlyThreshold decimal.Decimal `json:"monthlyThreshold"`
	PTKPDays         int64           `json:"ptkpDays"`
}

// KesehatanCeiling falls back to the general ceiling when no dedicated
// BPJS Kesehatan ceiling is set.
func (s State) KesehatanCeiling() decimal.Decimal {
	if s.HighestWageBPJSKesehatan.IsPositive() {
		return s.HighestWageBPJSKesehatan
	}
	return s.HighestWage
}

// Validate checks that every table a calculation may consult is present.
func (s State) Validate() error {
	if len(s.PTKP) == 0 {
		return &core.ConfigurationError{Field: "state.ptkp", Reason: "table is empty"}
	}
	if !s.HighestWage.IsPositive() {
		return &core.ConfigurationError{Field: "state.highestWage", Reason: "must be positive"}
	}
	if !s.HighestWageJP.IsPositive() {
		return &core.ConfigurationError{Field: "state.highestWageJp", Reason: "must be positive"}
	}
	if len(s.Brackets.Bands) == 0 {
		return &core.ConfigurationError{Field: "state.brackets", Reason: "table is empty"}
	}
	if err := s.Brackets.Validate(); err != nil {
		return err
	}
	if err := s.RiskGrades.Validate(); err != nil {
		return err
	}
	if s.UseTER {
		if err := s.TER.Validate(); err != nil {
			return err
		}
	}
	if s.PKHL.PTKPDays <= 0 {
		return &core.ConfigurationError{Field: "state.pkhl.ptkpDays", Reason: "must be positive"}
	}
	if !s.OvertimeHourlyDivisor.IsPositive() {
		return &core.ConfigurationError{Field: "state.overtimeHourlyDivisor", Reason: "must be positive"}
	}
	return nil
}

// =============================================================================
// COMPANY
// =============================================================================

// Company is a company's payroll policy.
type Company struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	CalculateOvertime      bool `json:"calculateOvertime"`
	OvertimeByRegulation   bool `json:"overtimeByRegulation"`
	CalculateSplitShifts   bool `json:"calculateSplitShifts"`
	CalculateBPJSKesehatan bool `json:"calculateBpjsKesehatan"`
	JKK                    bool `json:"jkk"`
	JKM                    bool `json:"jkm"`
	JHT                    bool `json:"jht"`
	JIP                    bool `json:"jip"`

	// BPJSKetenagakerjaanPaidByCompany moves the employee JHT/JIP share to
	// the company.
	BPJSKetenagakerjaanPaidByCompany bool `json:"bpjsKetenagakerjaanPaidByCompany"`

	// WorkingDays is the 5- or 6-day week rule used by regulation overtime.
	WorkingDays      int `json:"workingDays"`
	ShortestWorkDay  int `json:"shortestWorkDay"`
	NumOfWorkingDays int `json:"numOfWorkingDays"`

	OvertimeRate   decimal.Decimal `json:"overtimeRate"`
	LatePenalty    decimal.Decimal `json:"latePenalty"`
	AbsentPenalty  decimal.Decimal `json:"absentPenalty"`
	SplitShiftRate decimal.Decimal `json:"splitShiftRate"`
	RiskGrade      int             `json:"riskGrade"`

	// Holidays are company-observed public holidays, YYYY-MM-DD.
	Holidays []string `json:"holidays,omitempty"`
}

const holidayLayout = "2006-01-02"

// Validate checks the switches that regulation overtime depends on.
func (c Company) Validate() error {
	if c.CalculateOvertime && c.OvertimeByRegulation {
		if c.WorkingDays != 5 && c.WorkingDays != 6 {
			return &core.ConfigurationError{Field: "company.workingDays", Reason: "must be 5 or 6"}
		}
		if c.ShortestWorkDay < 1 || c.ShortestWorkDay > c.WorkingDays {
			return &core.ConfigurationError{Field: "company.shortestWorkDay", Reason: "must be a working day"}
		}
	}
	for _, h := range c.Holidays {
		if _, err := time.Parse(holidayLayout, h); err != nil {
			return &core.ConfigurationError{Field: "company.holidays", Reason: "invalid date " + h}
		}
	}
	return nil
}

// IsHoliday reports whether t falls on a company holiday.
func (c Company) IsHoliday(t time.Time) bool {
	day := t.Format(holidayLayout)
	for _, h := range c.Holidays {
		if h == day {
			return true
		}
	}
	return false
}
