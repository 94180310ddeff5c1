package core_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/core"
)

// =============================================================================
// MONEY
// =============================================================================

func TestPercent_AppliesRate(t *testing.T) {
	got := core.Percent(core.Rupiah(6000000), decimal.NewFromFloat(0.75))
	assert.True(t, got.Equal(core.Rupiah(45000)), "got %s", got)
}

func TestFloor_TruncatesFractionalRupiah(t *testing.T) {
	assert.True(t, core.Floor(decimal.RequireFromString("1234.99")).Equal(core.Rupiah(1234)))
	assert.True(t, core.Floor(decimal.RequireFromString("-0.5")).Equal(core.Rupiah(-1)))
}

func TestMinMax(t *testing.T) {
	a, b := core.Rupiah(5), core.Rupiah(7)
	assert.True(t, core.Min(a, b).Equal(a))
	assert.True(t, core.Max(a, b).Equal(b))
	assert.True(t, core.NonNegative(core.Rupiah(-3)).IsZero())
}

// =============================================================================
// COMPONENTS
// =============================================================================

func TestComponents_SumAndClone(t *testing.T) {
	// GIVEN: An allowance container with two lines
	c := core.Components{"transport": core.Rupiah(300000), "meal": core.Rupiah(200000)}

	// WHEN: Cloning and writing to the clone
	clone := c.Clone()
	clone["bonus"] = core.Rupiah(1)

	// THEN: The source map is untouched
	assert.True(t, c.Sum().Equal(core.Rupiah(500000)))
	assert.True(t, clone.Sum().Equal(core.Rupiah(500001)))
	assert.Len(t, c, 2)
	assert.Equal(t, []string{"bonus", "meal", "transport"}, clone.Names())
}

func TestComponents_NilIsEmpty(t *testing.T) {
	var c core.Components
	assert.True(t, c.Sum().IsZero())
	assert.True(t, c.Get("missing").IsZero())
	assert.NotNil(t, c.Clone())
}

// =============================================================================
// ENUMS
// =============================================================================

func TestParseSalaryPeriod_Aliases(t *testing.T) {
	cases := map[string]core.SalaryPeriod{
		"BULANAN":      core.PeriodMonthly,
		"mingguan":     core.PeriodWeekly,
		"DUA MINGGUAN": core.PeriodBiweekly,
		"biweekly":     core.PeriodBiweekly,
	}
	for in, want := range cases {
		got, err := core.ParseSalaryPeriod(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := core.ParseSalaryPeriod("DAILY")
	assert.ErrorIs(t, err, core.ErrUnsupportedCombination)
}

func TestParseEmployeeTypeAndMethod(t *testing.T) {
	et, err := core.ParseEmployeeType("pkhl")
	require.NoError(t, err)
	assert.Equal(t, core.EmployeePKHL, et)

	_, err = core.ParseEmployeeType("INTERN")
	var unsupported *core.UnsupportedCombinationError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "employeeType", unsupported.Field)

	m, err := core.ParseMethod("grossup")
	require.NoError(t, err)
	assert.Equal(t, core.MethodGrossUp, m)
}

func TestTaxArticle_Normalize(t *testing.T) {
	assert.Equal(t, core.Pph21, core.TaxArticle(21).Normalize())
	assert.Equal(t, core.NonPph, core.TaxArticle(22).Normalize())
	assert.Equal(t, "pph26Tax", core.Pph26.LineName())
	assert.Equal(t, "", core.TaxArticle(4).LineName())
}

func TestPeriodFactors(t *testing.T) {
	assert.Equal(t, int64(12), core.PeriodMonthly.PeriodsPerYear())
	assert.Equal(t, int64(52), core.PeriodWeekly.PeriodsPerYear())
	assert.Equal(t, int64(26), core.PeriodBiweekly.PeriodsPerYear())
	assert.Equal(t, int64(4), core.PeriodWeekly.PeriodsPerMonth())

	assert.True(t, core.PeriodWeekly.MonthlyEquivalent(core.Rupiah(3000000)).Equal(core.Rupiah(12000000)))
	assert.True(t, core.PeriodBiweekly.MonthlyEquivalent(core.Rupiah(3000000)).Equal(core.Rupiah(6000000)))
	assert.True(t, core.PeriodMonthly.MonthlyEquivalent(core.Rupiah(3000000)).Equal(core.Rupiah(3000000)))
}

// =============================================================================
// ERRORS & FORMAT
// =============================================================================

func TestErrorTaxonomy(t *testing.T) {
	miss := &core.LookupMissError{Table: "TER category A", Key: "5400000.5"}
	cfg := &core.ConfigurationError{Field: "workingDays", Reason: "must be 5 or 6"}

	assert.True(t, errors.Is(miss, core.ErrLookupMiss))
	assert.True(t, core.IsLookupMiss(miss))
	assert.True(t, core.IsClientError(cfg))
	assert.False(t, core.IsNotFound(cfg))
	assert.Contains(t, cfg.Error(), "workingDays")
}

func TestFormatRupiah(t *testing.T) {
	assert.Equal(t, "Rp 6.000.000", core.FormatRupiah(core.Rupiah(6000000)))
	assert.Equal(t, "Rp 950", core.FormatRupiah(core.Rupiah(950)))
	assert.Equal(t, "-Rp 1.500", core.FormatRupiah(core.Rupiah(-1500)))
	assert.Equal(t, "Rp 12.345,50", core.FormatRupiah(decimal.RequireFromString("12345.5")))
}
