package provisions

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/core"
)

// =============================================================================
// PTKP
// =============================================================================

// PTKPStatus is the tax-free allowance status, "TK/0".."K/3".
type PTKPStatus string

// MaxPTKPDependents caps dependents counted for PTKP and TER status.
const MaxPTKPDependents = 3

// StatusFor builds the PTKP status for a marital flag and dependent count.
func StatusFor(married bool, dependents int) PTKPStatus {
	if dependents < 0 {
		dependents = 0
	}
	if dependents > MaxPTKPDependents {
		dependents = MaxPTKPDependents
	}
	prefix := "TK"
	if married {
		prefix = "K"
	}
	return PTKPStatus(fmt.Sprintf("%s/%d", prefix, dependents))
}

// PTKPTable maps a status to its annual tax-free allowance.
type PTKPTable map[PTKPStatus]decimal.Decimal

func (t PTKPTable) Lookup(status PTKPStatus) (decimal.Decimal, error) {
	v, ok := t[status]
	if !ok {
		return decimal.Zero, &core.LookupMissError{Table: "PTKP", Key: string(status)}
	}
	return v, nil
}

// =============================================================================
// RATE TABLE - Sorted range index
// =============================================================================

// RateBand is one [Min, Max] row with a percentage rate. An Open band has
// no upper bound and must be last.
type RateBand struct {
	Min  decimal.Decimal `json:"min"`
	Max  decimal.Decimal `json:"max"`
	Open bool            `json:"open,omitempty"`
	Rate decimal.Decimal `json:"rate"`
}

func (b RateBand) contains(v decimal.Decimal) bool {
	return v.GreaterThanOrEqual(b.Min) && (b.Open || v.LessThanOrEqual(b.Max))
}

// RateTable is a named list of bands sorted by Min. Keys are whole rupiah:
// fractional keys are floored before matching, so integer-bounded tables
// have no fractional gaps.
type RateTable struct {
	Name  string     `json:"name"`
	Bands []RateBand `json:"bands"`
}

// NewRateTable sorts the bands and validates them.
func NewRateTable(name string, bands []RateBand) (RateTable, error) {
	sorted := make([]RateBand, len(bands))
	copy(sorted, bands)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Min.LessThan(sorted[j].Min) })

	t := RateTable{Name: name, Bands: sorted}
	if err := t.Validate(); err != nil {
		return RateTable{}, err
	}
	return t, nil
}

// Validate enforces ordering and non-overlap.
func (t RateTable) Validate() error {
	for i, b := range t.Bands {
		field := fmt.Sprintf("%s[%d]", t.Name, i)
		if b.Open && i != len(t.Bands)-1 {
			return &core.ConfigurationError{Field: field, Reason: "open band must be last"}
		}
		if !b.Open && b.Max.LessThan(b.Min) {
			return &core.ConfigurationError{Field: field, Reason: "max below min"}
		}
		if i > 0 && !b.Min.GreaterThan(t.Bands[i-1].Max) {
			return &core.ConfigurationError{Field: field, Reason: "overlaps previous band"}
		}
	}
	return nil
}

// Lookup finds the band containing v by binary search.
func (t RateTable) Lookup(v decimal.Decimal) (RateBand, error) {
	key := core.Floor(v)
	i := sort.Search(len(t.Bands), func(i int) bool {
		return t.Bands[i].Open || t.Bands[i].Max.GreaterThanOrEqual(key)
	})
	if i == len(t.Bands) || !t.Bands[i].contains(key) {
		return RateBand{}, &core.LookupMissError{Table: t.Name, Key: key.String()}
	}
	return t.Bands[i], nil
}

// =============================================================================
// TER
// =============================================================================

// TERCategory is the effective-rate table letter.
type TERCategory string

const (
	TERCategoryA TERCategory = "A"
	TERCategoryB TERCategory = "B"
	TERCategoryC TERCategory = "C"
)

// TER groups the monthly effective-rate tables.
type TER struct {
	Categories map[PTKPStatus]TERCategory `json:"categories"`
	Tables     map[TERCategory]RateTable  `json:"tables"`
}

// Validate requires every mapped category to have a non-empty table.
func (t TER) Validate() error {
	if len(t.Categories) == 0 {
		return &core.ConfigurationError{Field: "state.ter.categories", Reason: "mapping is empty"}
	}
	for status, cat := range t.Categories {
		table, ok := t.Tables[cat]
		if !ok || len(table.Bands) == 0 {
			return &core.ConfigurationError{
				Field:  "state.ter.tables." + string(cat),
				Reason: "no table for status " + string(status),
			}
		}
		if err := table.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Lookup returns the category and band for a status and monthly gross.
func (t TER) Lookup(status PTKPStatus, gross decimal.Decimal) (TERCategory, RateBand, error) {
	cat, ok := t.Categories[status]
	if !ok {
		return "", RateBand{}, &core.LookupMissError{Table: "TER category", Key: string(status)}
	}
	table, ok := t.Tables[cat]
	if !ok {
		return "", RateBand{}, &core.LookupMissError{Table: "TER table", Key: string(cat)}
	}
	band, err := table.Lookup(gross)
	if err != nil {
		return "", RateBand{}, err
	}
	return cat, band, nil
}

// =============================================================================
// JKK RISK GRADES
// =============================================================================

type RiskGrade struct {
	Grade int             `json:"grade"`
	Rate  decimal.Decimal `json:"rate"`
}

// RiskGradeTable is sorted by grade.
type RiskGradeTable []RiskGrade

func NewRiskGradeTable(grades []RiskGrade) (RiskGradeTable, error) {
	t := make(RiskGradeTable, len(grades))
	copy(t, grades)
	sort.SliceStable(t, func(i, j int) bool { return t[i].Grade < t[j].Grade })
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t RiskGradeTable) Validate() error {
	for i := 1; i < len(t); i++ {
		if t[i].Grade <= t[i-1].Grade {
			return &core.ConfigurationError{
				Field:  fmt.Sprintf("state.riskGrades[%d]", i),
				Reason: "grades must be unique and ascending",
			}
		}
	}
	return nil
}

// Lookup returns the JKK percentage for a grade.
func (t RiskGradeTable) Lookup(grade int) (decimal.Decimal, error) {
	i := sort.Search(len(t), func(i int) bool { return t[i].Grade >= grade })
	if i == len(t) || t[i].Grade != grade {
		return decimal.Zero, &core.LookupMissError{Table: "JKK risk grade", Key: fmt.Sprint(grade)}
	}
	return t[i].Rate, nil
}
