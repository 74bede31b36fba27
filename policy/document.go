/*
Package policy defines the attendance Policy Document and its versioning.

PURPOSE:
  The Policy Document holds every tunable attendance rule: work hours, the
  late-rule table, exemption quota, penalty scheme, full-attendance rules,
  attendance-day accounting, workday swaps, remote work, overtime checkpoints
  and the cross-day checkout rule. It is pure data; the attendance package
  gives it behavior.

KEY CONCEPTS:
  - Document: The complete ruleset, replaced as a whole, never patched
  - Version: An immutable, addressable snapshot of a Document
  - Manager: Validates before a Document may become the active Version

RULE TABLES:
  LateRules, Penalty.Ladder and FullAttendance.Rules are ordered lists. An
  empty list disables the feature; a non-exhaustive list falls back to the
  default documented on the evaluating function.

EXAMPLE:
  doc := policy.Document{
      WorkHours: policy.WorkHours{OnDuty: generic.Clock(9, 0), OffDuty: generic.Clock(18, 30)},
      LateRules: []policy.LateRule{
          {PreviousDayCheckoutTime: generic.Clock(18, 0), LateThresholdTime: generic.Clock(9, 1)},
          {PreviousDayCheckoutTime: generic.Clock(21, 0), LateThresholdTime: generic.Clock(10, 0)},
      },
  }

SEE ALSO:
  - validate.go: Configuration error detection
  - version.go: Store and Manager
  - factory/document.go: JSON presets
*/
package policy

import (
	"github.com/shopspring/decimal"
	"github.com/warp/attendance-engine/generic"
)

// =============================================================================
// DOCUMENT
// =============================================================================

type Document struct {
	Name string `json:"name"`

	WorkHours         WorkHours          `json:"work_hours"`
	FullDayLeaveHours decimal.Decimal    `json:"full_day_leave_hours"`
	LateRules         []LateRule         `json:"late_rules" validate:"dive"`
	CrossDay          CrossDayRule       `json:"cross_day"`
	Exemption         Exemption          `json:"exemption"`
	Penalty           PenaltyScheme      `json:"penalty"`
	FullAttendance    FullAttendance     `json:"full_attendance"`
	LeaveDisplayRules []LeaveDisplayRule `json:"leave_display_rules" validate:"dive"`
	AttendanceDays    AttendanceDays     `json:"attendance_days"`
	WorkdaySwap       WorkdaySwap        `json:"workday_swap"`
	RemoteWork        RemoteWork         `json:"remote_work"`
	Overtime          Overtime           `json:"overtime"`
}

type WorkHours struct {
	OnDuty     generic.ClockTime `json:"on_duty" validate:"clock"`
	OffDuty    generic.ClockTime `json:"off_duty" validate:"clock,gtfield=OnDuty"`
	LunchStart generic.ClockTime `json:"lunch_start" validate:"clock"`
	LunchEnd   generic.ClockTime `json:"lunch_end" validate:"clock,gtefield=LunchStart"`
}

// WorkMinutes returns the scheduled minutes of a full day, lunch excluded.
func (w WorkHours) WorkMinutes() int {
	return int(w.OffDuty-w.OnDuty) - generic.Overlap(w.OnDuty, w.OffDuty, w.LunchStart, w.LunchEnd)
}

// =============================================================================
// LATENESS
// =============================================================================

// LateRule maps yesterday's checkout boundary to today's lateness threshold.
// A LateThresholdTime of 24:00 means no threshold applies today.
type LateRule struct {
	PreviousDayCheckoutTime generic.ClockTime `json:"previous_day_checkout_time" validate:"clock"`
	LateThresholdTime       generic.ClockTime `json:"late_threshold_time" validate:"clock"`
}

// CrossDayRule grants a later check-in after a very late checkout. It is
// evaluated before the LateRules table.
type CrossDayRule struct {
	Enabled          bool              `json:"enabled"`
	CheckoutAfter    generic.ClockTime `json:"checkout_after" validate:"clock"`
	NextDayThreshold generic.ClockTime `json:"next_day_threshold" validate:"clock"`
	RequireApproval  bool              `json:"require_approval"`
}

type Exemption struct {
	Enabled bool `json:"late_exemption_enabled"`
	Count   int  `json:"late_exemption_count" validate:"gte=0"`
	Minutes int  `json:"late_exemption_minutes" validate:"gte=0"`
}

// =============================================================================
// PENALTY
// =============================================================================

type PenaltyMode string

const (
	PenaltyUnlimited PenaltyMode = "unlimited"
	PenaltyCapped    PenaltyMode = "capped"
)

type PenaltySubMode string

const (
	SubModePerMinute PenaltySubMode = "perMinute"
	SubModeFixed     PenaltySubMode = "fixed"
	SubModeLadder    PenaltySubMode = "ladder"
	SubModeFixedCap  PenaltySubMode = "fixedCap"
)

// OpenEndedMax marks the last ladder tier as unbounded.
const OpenEndedMax = 999

type PenaltyScheme struct {
	Enabled       bool              `json:"enabled"`
	Mode          PenaltyMode       `json:"mode" validate:"omitempty,oneof=unlimited capped"`
	SubMode       PenaltySubMode    `json:"sub_mode" validate:"omitempty,oneof=perMinute fixed ladder fixedCap"`
	ThresholdTime generic.ClockTime `json:"threshold_time" validate:"clock"`
	UnitPrice     decimal.Decimal   `json:"unit_price"`
	FixedAmount   decimal.Decimal   `json:"fixed_amount"`
	MaxPenalty    decimal.Decimal   `json:"max_performance_penalty"`
	Ladder        []PenaltyTier     `json:"ladder" validate:"dive"`
}

// PenaltyTier is a half-open [Min, Max) range of billable minutes.
type PenaltyTier struct {
	Min    int             `json:"min" validate:"gte=0"`
	Max    int             `json:"max" validate:"gtfield=Min"`
	Amount decimal.Decimal `json:"amount"`
}

func (t PenaltyTier) OpenEnded() bool { return t.Max >= OpenEndedMax }

func (t PenaltyTier) Contains(minutes int) bool {
	return minutes >= t.Min && (t.OpenEnded() || minutes < t.Max)
}

// =============================================================================
// FULL ATTENDANCE
// =============================================================================

type StatType string

const (
	StatLate        StatType = "late"
	StatMissing     StatType = "missing"
	StatAbsenteeism StatType = "absenteeism"
	StatEarlyLeave  StatType = "early_leave"
	StatLeave       StatType = "leave"
)

type StatUnit string

const (
	UnitCount   StatUnit = "count"
	UnitHours   StatUnit = "hours"
	UnitMinutes StatUnit = "minutes"
)

type FullAttendance struct {
	Bonus decimal.Decimal      `json:"bonus"`
	Rules []FullAttendanceRule `json:"rules" validate:"dive"`
}

type FullAttendanceRule struct {
	Type      StatType        `json:"type" validate:"oneof=late missing absenteeism early_leave leave"`
	LeaveType string          `json:"leave_type,omitempty"`
	Threshold decimal.Decimal `json:"threshold"`
	Unit      StatUnit        `json:"unit" validate:"oneof=count hours minutes"`
	Enabled   bool            `json:"enabled"`
}

// LeaveDisplayRule labels a day by its leave type and covered hours.
type LeaveDisplayRule struct {
	LeaveType string          `json:"leave_type" validate:"required"`
	Label     string          `json:"label" validate:"required"`
	MinHours  decimal.Decimal `json:"min_hours"`
	MaxHours  decimal.Decimal `json:"max_hours"`
}

// =============================================================================
// ATTENDANCE DAYS
// =============================================================================

type ShouldAttendMode string

const (
	ShouldAttendWorkdays ShouldAttendMode = "workdays"
	ShouldAttendFixed    ShouldAttendMode = "fixed"
)

type AttendanceDays struct {
	ShouldAttendMode         ShouldAttendMode `json:"should_attend_mode" validate:"omitempty,oneof=workdays fixed"`
	FixedDays                int              `json:"fixed_days" validate:"gte=0,lte=31"`
	IncludeHolidays          bool             `json:"include_holidays"`
	CountHalfDayLeave        bool             `json:"count_half_day_leave"`
	MinWorkHoursForFullDay   decimal.Decimal  `json:"min_work_hours_for_full_day"`
	CountHolidayAsAttendance bool             `json:"count_holiday_as_attendance"`
	CountCompTime            bool             `json:"count_comp_time"`
	CountPaidLeave           bool             `json:"count_paid_leave"`
	CountTrip                bool             `json:"count_trip"`
	CountOut                 bool             `json:"count_out"`
	CountSickLeave           bool             `json:"count_sick_leave"`
	CountPersonalLeave       bool             `json:"count_personal_leave"`
	CountMissingAsAttendance bool             `json:"count_missing_as_attendance"`
	CountLateAsAttendance    bool             `json:"count_late_as_attendance"`
}

// =============================================================================
// CALENDAR OVERRIDES
// =============================================================================

type DayType string

const (
	DayWorkday DayType = "workday"
	DayHoliday DayType = "holiday"
)

type WorkdaySwap struct {
	Enabled    bool        `json:"enabled"`
	CustomDays []CustomDay `json:"custom_days" validate:"dive"`
}

type CustomDay struct {
	Date   generic.Date `json:"date"`
	Type   DayType      `json:"type" validate:"oneof=workday holiday"`
	Reason string       `json:"reason,omitempty"`
}

type RemoteMode string

const (
	RemoteFullDay    RemoteMode = "full_day"
	RemoteHourWindow RemoteMode = "hour_window"
)

type RemoteScope string

const (
	ScopeAll        RemoteScope = "all"
	ScopeDepartment RemoteScope = "department"
	ScopeIndividual RemoteScope = "individual"
)

type RemoteWork struct {
	Enabled bool        `json:"enabled"`
	Days    []RemoteDay `json:"days" validate:"dive"`
}

// RemoteDay flags either one Date or every occurrence of an RFC 5545
// Recurrence starting at Start.
type RemoteDay struct {
	Date          *generic.Date          `json:"date,omitempty"`
	Recurrence    string                 `json:"recurrence,omitempty"`
	Start         generic.Date           `json:"start"`
	Mode          RemoteMode             `json:"mode" validate:"oneof=full_day hour_window"`
	WindowStart   generic.ClockTime      `json:"window_start" validate:"clock"`
	WindowEnd     generic.ClockTime      `json:"window_end" validate:"clock"`
	Scope         RemoteScope            `json:"scope" validate:"oneof=all department individual"`
	DepartmentIDs []generic.DepartmentID `json:"department_ids,omitempty"`
	EmployeeIDs   []generic.EmployeeID   `json:"employee_ids,omitempty"`
}

// =============================================================================
// OVERTIME
// =============================================================================

type Overtime struct {
	Checkpoints []generic.ClockTime `json:"checkpoints" validate:"dive,clock"`
	// WeekendOvertimeThreshold is in hours. Weekend overtime at or above it
	// lets the weekend checkout govern Monday's late rule.
	WeekendOvertimeThreshold decimal.Decimal `json:"weekend_overtime_threshold"`
}
