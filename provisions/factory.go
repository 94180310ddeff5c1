/*
factory.go - YAML provisions document to Go structs

PURPOSE:
  Converts a provisions document into State and Company values. Statutory
  tables change every year or two; keeping them in a document means a new
  regulation is a data change, not a code change.

DOCUMENT SHAPE:
  year: 2024
  useTer: true
  ptkp: {"TK/0": 54000000, "K/3": 72000000, ...}
  wages: {highest: 12000000, highestJp: 10042300, provinceMinimum: 5067381}
  riskGrades: [{grade: 1, rate: 0.24}, ...]
  brackets:                      # [min, max, rate%], null max = open band
    - [0, 60000000, 5]
    - [5000000001, null, 35]
  ter:
    categories: {A: ["TK/0", "TK/1", "K/0"], ...}
    tables:
      A: [[0, 5400000, 0], [5400001, 5650000, 0.25], ...]
  positionTax: {rate: 5, max: 500000}
  contributions: {...}
  company: {...}                 # optional default company policy

KEY FEATURES:
  - Numbers are read as float64 and converted with decimal.NewFromFloat
  - Tables are sorted and validated on load
  - The embedded defaults.yaml carries the 2024 statutory figures

SEE ALSO:
  - defaults.yaml: 2024 provisions
  - store/sqlite: Persists the parsed result
*/
package provisions

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/core"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// =============================================================================
// YAML SCHEMA TYPES
// =============================================================================

// Document is the YAML representation of a provisions set.
type Document struct {
	Year          int                  `yaml:"year"`
	UseTER        bool                 `yaml:"useTer"`
	PTKP          map[string]float64   `yaml:"ptkp"`
	Wages         WagesDocument        `yaml:"wages"`
	RiskGrades    []RiskGradeDocument  `yaml:"riskGrades"`
	Brackets      [][]*float64         `yaml:"brackets"`
	TER           TERDocument          `yaml:"ter"`
	PositionTax   PositionTaxDocument  `yaml:"positionTax"`
	Contributions ContributionDocument `yaml:"contributions"`
	Surcharges    struct {
		NoTaxID float64 `yaml:"noTaxId"`
	} `yaml:"surcharges"`
	Withholding struct {
		Pph23        float64 `yaml:"pph23"`
		Pph23NoTaxID float64 `yaml:"pph23NoTaxId"`
		Pph26        float64 `yaml:"pph26"`
	} `yaml:"withholding"`
	PKHL struct {
		DailyThreshold   float64 `yaml:"dailyThreshold"`
		MonthlyThreshold float64 `yaml:"monthlyThreshold"`
		PTKPDays         int64   `yaml:"ptkpDays"`
	} `yaml:"pkhl"`
	MinimumTaxableNett    float64          `yaml:"minimumTaxableNett"`
	OvertimeHourlyDivisor float64          `yaml:"overtimeHourlyDivisor"`
	Company               *CompanyDocument `yaml:"company"`
}

type WagesDocument struct {
	Highest              float64 `yaml:"highest"`
	HighestJP            float64 `yaml:"highestJp"`
	HighestBPJSKesehatan float64 `yaml:"highestBpjsKesehatan"`
	ProvinceMinimum      float64 `yaml:"provinceMinimum"`
}

type RiskGradeDocument struct {
	Grade int     `yaml:"grade"`
	Rate  float64 `yaml:"rate"`
}

type TERDocument struct {
	Categories map[string][]string     `yaml:"categories"`
	Tables     map[string][][]*float64 `yaml:"tables"`
}

type PositionTaxDocument struct {
	Rate float64 `yaml:"rate"`
	Max  float64 `yaml:"max"`
}

type SplitDocument struct {
	Company  float64 `yaml:"company"`
	Employee float64 `yaml:"employee"`
}

type ContributionDocument struct {
	BPJSKesehatan        SplitDocument `yaml:"bpjsKesehatan"`
	JKM                  float64       `yaml:"jkm"`
	JHT                  SplitDocument `yaml:"jht"`
	JHTCompanyPaid       SplitDocument `yaml:"jhtCompanyPaid"`
	JIP                  SplitDocument `yaml:"jip"`
	JIPCompanyPaid       SplitDocument `yaml:"jipCompanyPaid"`
	KesehatanFamilyLimit int           `yaml:"kesehatanFamilyLimit"`
}

// CompanyDocument is the YAML representation of a company policy.
type CompanyDocument struct {
	ID                               string   `yaml:"id"`
	Name                             string   `yaml:"name"`
	CalculateOvertime                bool     `yaml:"calculateOvertime"`
	OvertimeByRegulation             bool     `yaml:"overtimeByRegulation"`
	CalculateSplitShifts             bool     `yaml:"calculateSplitShifts"`
	CalculateBPJSKesehatan           bool     `yaml:"calculateBpjsKesehatan"`
	JKK                              bool     `yaml:"jkk"`
	JKM                              bool     `yaml:"jkm"`
	JHT                              bool     `yaml:"jht"`
	JIP                              bool     `yaml:"jip"`
	BPJSKetenagakerjaanPaidByCompany bool     `yaml:"bpjsKetenagakerjaanPaidByCompany"`
	WorkingDays                      int      `yaml:"workingDays"`
	ShortestWorkDay                  int      `yaml:"shortestWorkDay"`
	NumOfWorkingDays                 int      `yaml:"numOfWorkingDays"`
	OvertimeRate                     float64  `yaml:"overtimeRate"`
	LatePenalty                      float64  `yaml:"latePenalty"`
	AbsentPenalty                    float64  `yaml:"absentPenalty"`
	SplitShiftRate                   float64  `yaml:"splitShiftRate"`
	RiskGrade                        int      `yaml:"riskGrade"`
	Holidays                         []string `yaml:"holidays"`
}

// =============================================================================
// PARSING
// =============================================================================

// Default returns the embedded 2024 provisions.
func Default() (Provisions, error) {
	return ParseYAML(defaultsYAML)
}

// LoadFile parses a provisions document from disk.
func LoadFile(path string) (Provisions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Provisions{}, fmt.Errorf("read provisions %s: %w", path, err)
	}
	return ParseYAML(data)
}

// ParseYAML converts a YAML document into validated provisions.
func ParseYAML(data []byte) (Provisions, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Provisions{}, fmt.Errorf("parse provisions: %w", err)
	}
	return doc.Build()
}

// Build converts the document and validates the result.
func (d Document) Build() (Provisions, error) {
	state, err := d.buildState()
	if err != nil {
		return Provisions{}, err
	}
	var company Company
	if d.Company != nil {
		company = d.Company.Build()
	}

	p := Provisions{State: state, Company: company}
	if err := p.Validate(); err != nil {
		return Provisions{}, err
	}
	return p, nil
}

func (d Document) buildState() (State, error) {
	s := State{
		Year:                     d.Year,
		UseTER:                   d.UseTER,
		PTKP:                     make(PTKPTable, len(d.PTKP)),
		HighestWage:              dec(d.Wages.Highest),
		HighestWageJP:            dec(d.Wages.HighestJP),
		HighestWageBPJSKesehatan: dec(d.Wages.HighestBPJSKesehatan),
		ProvinceMinimumWage:      dec(d.Wages.ProvinceMinimum),
		PositionTaxRate:          dec(d.PositionTax.Rate),
		MaxPositionTax:           dec(d.PositionTax.Max),
		Contributions: ContributionRates{
			BPJSKesehatan:        d.Contributions.BPJSKesehatan.build(),
			JKM:                  dec(d.Contributions.JKM),
			JHT:                  d.Contributions.JHT.build(),
			JHTCompanyPaid:       d.Contributions.JHTCompanyPaid.build(),
			JIP:                  d.Contributions.JIP.build(),
			JIPCompanyPaid:       d.Contributions.JIPCompanyPaid.build(),
			KesehatanFamilyLimit: d.Contributions.KesehatanFamilyLimit,
		},
		NoTaxIDSurcharge:      dec(d.Surcharges.NoTaxID),
		Pph23Rate:             dec(d.Withholding.Pph23),
		Pph23NoTaxIDSurcharge: dec(d.Withholding.Pph23NoTaxID),
		Pph26Rate:             dec(d.Withholding.Pph26),
		PKHL: PKHLRules{
			DailyThreshold:   dec(d.PKHL.DailyThreshold),
			MonthlyThreshold: dec(d.PKHL.MonthlyThreshold),
			PTKPDays:         d.PKHL.PTKPDays,
		},
		MinimumTaxableNett:    dec(d.MinimumTaxableNett),
		OvertimeHourlyDivisor: dec(d.OvertimeHourlyDivisor),
	}

	for status, amount := range d.PTKP {
		s.PTKP[PTKPStatus(status)] = dec(amount)
	}

	grades := make([]RiskGrade, 0, len(d.RiskGrades))
	for _, g := range d.RiskGrades {
		grades = append(grades, RiskGrade{Grade: g.Grade, Rate: dec(g.Rate)})
	}
	riskGrades, err := NewRiskGradeTable(grades)
	if err != nil {
		return State{}, err
	}
	s.RiskGrades = riskGrades

	s.Brackets, err = buildTable("brackets", d.Brackets)
	if err != nil {
		return State{}, err
	}

	s.TER = TER{
		Categories: make(map[PTKPStatus]TERCategory),
		Tables:     make(map[TERCategory]RateTable),
	}
	for cat, statuses := range d.TER.Categories {
		for _, status := range statuses {
			s.TER.Categories[PTKPStatus(status)] = TERCategory(cat)
		}
	}
	// Sorted so errors are deterministic.
	cats := make([]string, 0, len(d.TER.Tables))
	for cat := range d.TER.Tables {
		cats = append(cats, cat)
	}
	sort.Strings(cats)
	for _, cat := range cats {
		table, err := buildTable("TER category "+cat, d.TER.Tables[cat])
		if err != nil {
			return State{}, err
		}
		s.TER.Tables[TERCategory(cat)] = table
	}
	return s, nil
}

func buildTable(name string, rows [][]*float64) (RateTable, error) {
	bands := make([]RateBand, 0, len(rows))
	for i, row := range rows {
		if len(row) != 3 || row[0] == nil || row[2] == nil {
			return RateTable{}, &core.ConfigurationError{
				Field:  fmt.Sprintf("%s[%d]", name, i),
				Reason: "row must be [min, max, rate]",
			}
		}
		band := RateBand{Min: dec(*row[0]), Rate: dec(*row[2])}
		if row[1] == nil {
			band.Open = true
		} else {
			band.Max = dec(*row[1])
		}
		bands = append(bands, band)
	}
	return NewRateTable(name, bands)
}

func (s SplitDocument) build() Split {
	return Split{Company: dec(s.Company), Employee: dec(s.Employee)}
}

// Build converts a company document.
func (c CompanyDocument) Build() Company {
	return Company{
		ID:                               c.ID,
		Name:                             c.Name,
		CalculateOvertime:                c.CalculateOvertime,
		OvertimeByRegulation:             c.OvertimeByRegulation,
		CalculateSplitShifts:             c.CalculateSplitShifts,
		CalculateBPJSKesehatan:           c.CalculateBPJSKesehatan,
		JKK:                              c.JKK,
		JKM:                              c.JKM,
		JHT:                              c.JHT,
		JIP:                              c.JIP,
		BPJSKetenagakerjaanPaidByCompany: c.BPJSKetenagakerjaanPaidByCompany,
		WorkingDays:                      c.WorkingDays,
		ShortestWorkDay:                  c.ShortestWorkDay,
		NumOfWorkingDays:                 c.NumOfWorkingDays,
		OvertimeRate:                     dec(c.OvertimeRate),
		LatePenalty:                      dec(c.LatePenalty),
		AbsentPenalty:                    dec(c.AbsentPenalty),
		SplitShiftRate:                   dec(c.SplitShiftRate),
		RiskGrade:                        c.RiskGrade,
		Holidays:                         c.Holidays,
	}
}

func dec(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}
