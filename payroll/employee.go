package payroll

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/core"
)

// Employee is one employee's compensation snapshot for a pay period. The
// calculator reads it and never writes to it.
type Employee struct {
	Name string `json:"name,omitempty"`

	Permanent  bool `json:"permanentStatus"`
	Married    bool `json:"maritalStatus"`
	HasNPWP    bool `json:"hasNPWP"`
	Dependents int  `json:"numOfDependentsFamily"`

	Earnings  Earnings  `json:"earnings"`
	Presences Presences `json:"presences"`

	Allowances core.Components `json:"allowances,omitempty"`
	Deductions core.Components `json:"deductions,omitempty"`
	Benefits   core.Components `json:"benefits,omitempty"`
	Bonus      core.Components `json:"bonus,omitempty"`
}

// Earnings are the fixed pay components. For PKHL employees Base is the
// daily wage, paid for each of Presences.WorkDays.
type Earnings struct {
	Base           decimal.Decimal `json:"base"`
	FixedAllowance decimal.Decimal `json:"fixedAllowance"`

	// UntaxedFixedAllowance is the part of FixedAllowance excluded from gross.
	UntaxedFixedAllowance decimal.Decimal `json:"untaxedFixedAllowance"`

	// HolidayAllowance is a nominal THR; HolidayAllowanceRate, when set,
	// replaces it with rate × gross.
	HolidayAllowance     decimal.Decimal `json:"holidayAllowance"`
	HolidayAllowanceRate decimal.Decimal `json:"holidayAllowanceRate"`
}

// Presences is the attendance record for the period.
type Presences struct {
	WorkDays   int `json:"workDays"`
	AbsentDays int `json:"absentDays"`
	LateCount  int `json:"lateCount"`

	// AbsentPenalty is an ad-hoc absence penalty on top of the per-day rate.
	AbsentPenalty   decimal.Decimal `json:"absentPenalty"`
	LatePenaltyRule string          `json:"latePenaltyRule,omitempty"`

	// Overtime entries drive the regulation formula. OvertimeHours is used
	// when no entries are given; OvertimeValue when the company does not
	// calculate overtime by regulation.
	Overtime      []OvertimeEntry `json:"overtime,omitempty"`
	OvertimeHours decimal.Decimal `json:"overtimeHours"`
	OvertimeValue decimal.Decimal `json:"overtimeValue"`
	FixedOvertime decimal.Decimal `json:"fixedOvertime"`

	SplitShifts int `json:"splitShifts"`
}

// OvertimeEntry is the overtime worked on one day. Day is 1 (Monday) to 7
// (Sunday); when Date is set the day is derived from it and company
// holidays are applied.
type OvertimeEntry struct {
	Day           int             `json:"day,omitempty"`
	Date          string          `json:"date,omitempty"`
	Hours         decimal.Decimal `json:"hours"`
	PublicHoliday bool            `json:"publicHoliday,omitempty"`
}

// isoWeekday maps time.Weekday (Sunday = 0) to 1 = Monday .. 7 = Sunday.
func isoWeekday(t time.Time) int {
	return (int(t.Weekday())+6)%7 + 1
}
