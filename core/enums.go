package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// EMPLOYEE TYPE
// =============================================================================

// EmployeeType is the employment relationship, which selects the PPh21
// calculation regime.
type EmployeeType string

const (
	EmployeePKWTT     EmployeeType = "PKWTT"     // permanent contract
	EmployeePKWT      EmployeeType = "PKWT"      // fixed-term contract
	EmployeePKHL      EmployeeType = "PKHL"      // daily worker
	EmployeeKemitraan EmployeeType = "KEMITRAAN" // partnership / non-employee
)

func (t EmployeeType) Valid() bool {
	switch t {
	case EmployeePKWTT, EmployeePKWT, EmployeePKHL, EmployeeKemitraan:
		return true
	}
	return false
}

// ParseEmployeeType is case-insensitive.
func ParseEmployeeType(s string) (EmployeeType, error) {
	t := EmployeeType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", &UnsupportedCombinationError{Field: "employeeType", Value: s}
	}
	return t, nil
}

func (t *EmployeeType) UnmarshalText(text []byte) error {
	v, err := ParseEmployeeType(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// =============================================================================
// TAX ARTICLE
// =============================================================================

// TaxArticle is the PPh article number. Any number other than 21, 23 or 26
// means no income tax is withheld.
type TaxArticle int

const (
	NonPph TaxArticle = 0
	Pph21  TaxArticle = 21
	Pph23  TaxArticle = 23
	Pph26  TaxArticle = 26
)

// Normalize maps unknown article numbers to NonPph.
func (a TaxArticle) Normalize() TaxArticle {
	switch a {
	case Pph21, Pph23, Pph26:
		return a
	}
	return NonPph
}

// LineName is the allocation line used for this article's liability.
func (a TaxArticle) LineName() string {
	switch a.Normalize() {
	case Pph21:
		return "pph21Tax"
	case Pph23:
		return "pph23Tax"
	case Pph26:
		return "pph26Tax"
	}
	return ""
}

// =============================================================================
// SALARY PERIOD
// =============================================================================

type SalaryPeriod string

const (
	PeriodMonthly  SalaryPeriod = "MONTHLY"
	PeriodWeekly   SalaryPeriod = "WEEKLY"
	PeriodBiweekly SalaryPeriod = "BIWEEKLY"
)

var periodAliases = map[string]SalaryPeriod{
	"MONTHLY":      PeriodMonthly,
	"BULANAN":      PeriodMonthly,
	"WEEKLY":       PeriodWeekly,
	"MINGGUAN":     PeriodWeekly,
	"BIWEEKLY":     PeriodBiweekly,
	"DUA MINGGUAN": PeriodBiweekly,
	"DUA_MINGGUAN": PeriodBiweekly,
}

func (p SalaryPeriod) Valid() bool {
	switch p {
	case PeriodMonthly, PeriodWeekly, PeriodBiweekly:
		return true
	}
	return false
}

// PeriodsPerYear is the annualization factor.
func (p SalaryPeriod) PeriodsPerYear() int64 {
	switch p {
	case PeriodWeekly:
		return 52
	case PeriodBiweekly:
		return 26
	}
	return 12
}

// PeriodsPerMonth converts a period's gross to a monthly equivalent.
func (p SalaryPeriod) PeriodsPerMonth() int64 {
	switch p {
	case PeriodWeekly:
		return 4
	case PeriodBiweekly:
		return 2
	}
	return 1
}

// MonthlyEquivalent scales a per-period amount to a month, so monthly
// thresholds and tables apply to every period.
func (p SalaryPeriod) MonthlyEquivalent(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(decimal.NewFromInt(p.PeriodsPerMonth()))
}

// ParseSalaryPeriod accepts the English names and the Indonesian
// BULANAN / MINGGUAN / DUA MINGGUAN labels.
func ParseSalaryPeriod(s string) (SalaryPeriod, error) {
	if p, ok := periodAliases[strings.ToUpper(strings.TrimSpace(s))]; ok {
		return p, nil
	}
	return "", &UnsupportedCombinationError{Field: "salaryPeriod", Value: s}
}

func (p *SalaryPeriod) UnmarshalText(text []byte) error {
	v, err := ParseSalaryPeriod(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// =============================================================================
// ALLOCATION METHOD
// =============================================================================

// Method decides who bears the income tax.
type Method string

const (
	MethodNett    Method = "NETT"    // employer bears the tax
	MethodGross   Method = "GROSS"   // employee bears the tax
	MethodGrossUp Method = "GROSSUP" // employer pays a tax allowance equal to the tax
	MethodMixed   Method = "MIXED"   // split by a percentage pair
)

func (m Method) Valid() bool {
	switch m {
	case MethodNett, MethodGross, MethodGrossUp, MethodMixed:
		return true
	}
	return false
}

func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToUpper(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", &UnsupportedCombinationError{Field: "method", Value: s}
	}
	return m, nil
}

func (m *Method) UnmarshalText(text []byte) error {
	v, err := ParseMethod(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}
