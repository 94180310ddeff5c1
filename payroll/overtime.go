package payroll

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/core"
	"github.com/warp/payroll-engine/provisions"
)

// Overtime multipliers follow Kepmenakertrans 102/MEN/VI/2004. A band with
// zero hours takes every remaining hour.
type overtimeBand struct {
	hours      decimal.Decimal
	multiplier decimal.Decimal
}

var (
	workdayBands = []overtimeBand{
		{hours: decimal.NewFromInt(1), multiplier: decimal.NewFromFloat(1.5)},
		{multiplier: decimal.NewFromInt(2)},
	}
	shortestDayBands = restDayBands(5)
	fiveDayRestBands = restDayBands(8)
	sixDayRestBands  = restDayBands(7)
)

func restDayBands(firstHours int64) []overtimeBand {
	return []overtimeBand{
		{hours: decimal.NewFromInt(firstHours), multiplier: decimal.NewFromInt(2)},
		{hours: decimal.NewFromInt(1), multiplier: decimal.NewFromInt(3)},
		{multiplier: decimal.NewFromInt(4)},
	}
}

// bandsFor picks the multiplier bands for a day in the company's week.
func bandsFor(c provisions.Company, day int, holiday bool) []overtimeBand {
	restDay := day > c.WorkingDays
	if !restDay && !holiday {
		return workdayBands
	}
	if !restDay && day == c.ShortestWorkDay {
		return shortestDayBands
	}
	if c.WorkingDays == 6 {
		return sixDayRestBands
	}
	return fiveDayRestBands
}

// multipliedHours converts worked hours into paid hours.
func multipliedHours(hours decimal.Decimal, bands []overtimeBand) decimal.Decimal {
	paid := decimal.Zero
	remaining := hours
	for _, b := range bands {
		if !remaining.IsPositive() {
			break
		}
		take := remaining
		if b.hours.IsPositive() {
			take = core.Min(remaining, b.hours)
		}
		paid = paid.Add(take.Mul(b.multiplier))
		remaining = remaining.Sub(take)
	}
	return paid
}

// overtimePay computes the period's overtime, floored to whole rupiah.
// Fixed overtime hours are always paid at the company overtime rate.
func overtimePay(pr Presences, c provisions.Company, state provisions.State, grossFirst decimal.Decimal) (decimal.Decimal, error) {
	fixed := pr.FixedOvertime.Mul(c.OvertimeRate)
	if !c.OvertimeByRegulation {
		return core.Floor(pr.OvertimeValue.Add(fixed)), nil
	}

	hourly := grossFirst.Div(state.OvertimeHourlyDivisor)
	paidHours := decimal.Zero
	if len(pr.Overtime) == 0 {
		paidHours = multipliedHours(pr.OvertimeHours, workdayBands)
	}
	for i, entry := range pr.Overtime {
		day, holiday, err := entry.resolve(c)
		if err != nil {
			return decimal.Zero, fmt.Errorf("overtime entry %d: %w", i, err)
		}
		paidHours = paidHours.Add(multipliedHours(entry.Hours, bandsFor(c, day, holiday)))
	}
	return core.Floor(hourly.Mul(paidHours).Add(fixed)), nil
}

// resolve returns the ISO day and holiday flag for an entry.
func (e OvertimeEntry) resolve(c provisions.Company) (int, bool, error) {
	if e.Date != "" {
		t, err := time.Parse("2006-01-02", e.Date)
		if err != nil {
			return 0, false, &core.ConfigurationError{Field: "presences.overtime.date", Reason: err.Error()}
		}
		return isoWeekday(t), e.PublicHoliday || c.IsHoliday(t), nil
	}
	if e.Day < 1 || e.Day > 7 {
		return 0, false, &core.ConfigurationError{Field: "presences.overtime.day", Reason: fmt.Sprintf("%d is not 1..7", e.Day)}
	}
	return e.Day, e.PublicHoliday, nil
}
