package factory

import (
	"github.com/shopspring/decimal"
	"github.com/warp/attendance-engine/generic"
	"github.com/warp/attendance-engine/policy"
)

// =============================================================================
// PRESETS - Ready-made documents
// =============================================================================

// Minimal returns a valid document with only work hours configured. Every
// optional feature is off.
func Minimal(name string) policy.Document {
	doc := policy.Document{
		Name: name,
		WorkHours: policy.WorkHours{
			OnDuty:     generic.Clock(9, 0),
			OffDuty:    generic.Clock(18, 30),
			LunchStart: generic.Clock(12, 0),
			LunchEnd:   generic.Clock(13, 30),
		},
	}
	ApplyDefaults(&doc)
	return doc
}

// StandardOffice returns the head-office rule set: 09:00-18:30 with a 90
// minute lunch, a three-step late table, three 15-minute exemptions a
// month and a capped penalty ladder.
func StandardOffice(name string) policy.Document {
	doc := Minimal(name)

	doc.LateRules = []policy.LateRule{
		{PreviousDayCheckoutTime: generic.Clock(18, 0), LateThresholdTime: generic.Clock(9, 1)},
		{PreviousDayCheckoutTime: generic.Clock(21, 0), LateThresholdTime: generic.Clock(9, 31)},
		{PreviousDayCheckoutTime: generic.Clock(22, 0), LateThresholdTime: generic.Clock(10, 1)},
	}
	doc.CrossDay = policy.CrossDayRule{
		Enabled:          true,
		CheckoutAfter:    generic.Clock(20, 30),
		NextDayThreshold: generic.Clock(10, 30),
		RequireApproval:  true,
	}
	doc.Exemption = policy.Exemption{Enabled: true, Count: 3, Minutes: 15}
	doc.Penalty = policy.PenaltyScheme{
		Enabled:    true,
		Mode:       policy.PenaltyCapped,
		SubMode:    policy.SubModeLadder,
		MaxPenalty: decimal.NewFromInt(250),
		Ladder: []policy.PenaltyTier{
			{Min: 0, Max: 5, Amount: decimal.NewFromInt(50)},
			{Min: 5, Max: 15, Amount: decimal.NewFromInt(100)},
			{Min: 15, Max: policy.OpenEndedMax, Amount: decimal.NewFromInt(200)},
		},
	}
	doc.FullAttendance = policy.FullAttendance{
		Bonus: decimal.NewFromInt(200),
		Rules: []policy.FullAttendanceRule{
			{Type: policy.StatLate, Unit: policy.UnitCount, Enabled: true},
			{Type: policy.StatMissing, Unit: policy.UnitCount, Enabled: true},
			{Type: policy.StatAbsenteeism, Unit: policy.UnitCount, Enabled: true},
			{Type: policy.StatLeave, LeaveType: "personal", Unit: policy.UnitHours, Enabled: true},
			{Type: policy.StatLeave, LeaveType: "sick", Unit: policy.UnitHours, Threshold: decimal.NewFromInt(8), Enabled: true},
		},
	}
	doc.LeaveDisplayRules = []policy.LeaveDisplayRule{
		{LeaveType: "annual", Label: "Annual leave (half day)", MaxHours: decimal.NewFromInt(4)},
		{LeaveType: "annual", Label: "Annual leave", MinHours: decimal.NewFromInt(4)},
		{LeaveType: "sick", Label: "Sick leave"},
		{LeaveType: "personal", Label: "Personal leave"},
	}
	doc.AttendanceDays = policy.AttendanceDays{
		ShouldAttendMode:       policy.ShouldAttendWorkdays,
		CountHalfDayLeave:      true,
		MinWorkHoursForFullDay: decimal.NewFromInt(6),
		CountCompTime:          true,
		CountPaidLeave:         true,
		CountTrip:              true,
		CountOut:               true,
		CountLateAsAttendance:  true,
	}
	doc.Overtime = policy.Overtime{
		Checkpoints: []generic.ClockTime{
			generic.Clock(19, 30),
			generic.Clock(20, 30),
			generic.Clock(22, 0),
			generic.EndOfDay,
		},
		WeekendOvertimeThreshold: decimal.NewFromInt(4),
	}
	return doc
}

// StandardOfficeJSON is StandardOffice rendered as an editable JSON document.
func StandardOfficeJSON(name string) string {
	s, err := ToJSON(StandardOffice(name))
	if err != nil {
		panic(err)
	}
	return s
}
