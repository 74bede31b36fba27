package policy_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/attendance-engine/factory"
	"github.com/warp/attendance-engine/generic"
	"github.com/warp/attendance-engine/policy"
)

func fields(t *testing.T, err error) []string {
	t.Helper()
	require.Error(t, err)
	assert.ErrorIs(t, err, generic.ErrInvalidPolicy)

	var verrs policy.ValidationErrors
	require.True(t, errors.As(err, &verrs), "expected ValidationErrors, got %T", err)
	out := make([]string, len(verrs))
	for i, fe := range verrs {
		out[i] = fe.Field
	}
	return out
}

func TestValidate_Presets(t *testing.T) {
	assert.NoError(t, policy.Validate(factory.Minimal("min")))
	assert.NoError(t, policy.Validate(factory.StandardOffice("hq")))
}

func TestValidate_AcceptsEveryEvaluatedUnit(t *testing.T) {
	doc := factory.StandardOffice("hq")
	doc.FullAttendance.Rules = append(doc.FullAttendance.Rules,
		policy.FullAttendanceRule{Type: policy.StatLate, Unit: policy.UnitHours, Threshold: decimal.NewFromInt(2), Enabled: true},
		policy.FullAttendanceRule{Type: policy.StatLeave, LeaveType: "sick", Unit: policy.UnitMinutes, Threshold: decimal.NewFromInt(240), Enabled: true},
	)
	assert.NoError(t, policy.Validate(doc))

	doc.FullAttendance.Rules = []policy.FullAttendanceRule{{Type: policy.StatAbsenteeism, Unit: policy.UnitMinutes, Enabled: true}}
	assert.Equal(t, []string{"full_attendance.rules[0].unit"}, fields(t, policy.Validate(doc)))
}

func TestValidate_RejectsConfigurationErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*policy.Document)
		field  string
	}{
		{
			name:   "off duty before on duty",
			mutate: func(d *policy.Document) { d.WorkHours.OffDuty = generic.Clock(8, 0) },
			field:  "work_hours.off_duty",
		},
		{
			name:   "full day leave hours missing",
			mutate: func(d *policy.Document) { d.FullDayLeaveHours = decimal.Zero },
			field:  "full_day_leave_hours",
		},
		{
			name: "duplicate late rule boundary",
			mutate: func(d *policy.Document) {
				d.LateRules = append(d.LateRules, policy.LateRule{PreviousDayCheckoutTime: generic.Clock(18, 0), LateThresholdTime: generic.Clock(9, 5)})
			},
			field: "late_rules[3].previous_day_checkout_time",
		},
		{
			name:   "late threshold past midnight",
			mutate: func(d *policy.Document) { d.LateRules[0].LateThresholdTime = generic.Clock(25, 0) },
			field:  "late_rules[0].late_threshold_time",
		},
		{
			name:   "cross day without checkout boundary",
			mutate: func(d *policy.Document) { d.CrossDay.CheckoutAfter = 0 },
			field:  "cross_day.checkout_after",
		},
		{
			name:   "exemption enabled without quota",
			mutate: func(d *policy.Document) { d.Exemption.Count = 0 },
			field:  "exemption.late_exemption_count",
		},
		{
			name:   "mode and sub mode mismatch",
			mutate: func(d *policy.Document) { d.Penalty.SubMode = policy.SubModePerMinute },
			field:  "penalty.sub_mode",
		},
		{
			name:   "ladder without tiers",
			mutate: func(d *policy.Document) { d.Penalty.Ladder = nil },
			field:  "penalty.ladder",
		},
		{
			name: "overlapping tiers",
			mutate: func(d *policy.Document) {
				d.Penalty.Ladder[1] = policy.PenaltyTier{Min: 3, Max: 15, Amount: decimal.NewFromInt(100)}
			},
			field: "penalty.ladder[3-15]",
		},
		{
			name: "open ended tier not last",
			mutate: func(d *policy.Document) {
				d.Penalty.Ladder = []policy.PenaltyTier{
					{Min: 0, Max: policy.OpenEndedMax, Amount: decimal.NewFromInt(50)},
					{Min: 5, Max: 15, Amount: decimal.NewFromInt(100)},
				}
			},
			field: "penalty.ladder[0-999]",
		},
		{
			name:   "decreasing amounts",
			mutate: func(d *policy.Document) { d.Penalty.Ladder[2].Amount = decimal.NewFromInt(10) },
			field:  "penalty.ladder[15-999].amount",
		},
		{
			name:   "capped ladder without max",
			mutate: func(d *policy.Document) { d.Penalty.MaxPenalty = decimal.Zero },
			field:  "penalty.max_performance_penalty",
		},
		{
			name:   "unknown full attendance stat",
			mutate: func(d *policy.Document) { d.FullAttendance.Rules[0].Type = "overtime" },
			field:  "full_attendance.rules[0].type",
		},
		{
			name:   "stat measured in the wrong unit",
			mutate: func(d *policy.Document) { d.FullAttendance.Rules[1].Unit = policy.UnitHours },
			field:  "full_attendance.rules[1].unit",
		},
		{
			name: "fixed mode without days",
			mutate: func(d *policy.Document) {
				d.AttendanceDays.ShouldAttendMode = policy.ShouldAttendFixed
			},
			field: "attendance_days.fixed_days",
		},
		{
			name: "duplicate swap date",
			mutate: func(d *policy.Document) {
				day := generic.MustParseDate("2024-11-02")
				d.WorkdaySwap.CustomDays = []policy.CustomDay{
					{Date: day, Type: policy.DayWorkday},
					{Date: day, Type: policy.DayHoliday},
				}
			},
			field: "workday_swap.custom_days[1].date",
		},
		{
			name: "unparseable recurrence",
			mutate: func(d *policy.Document) {
				d.RemoteWork.Days = []policy.RemoteDay{{
					Recurrence: "FREQ=SOMETIMES",
					Start:      generic.MustParseDate("2024-11-01"),
					Mode:       policy.RemoteFullDay,
					Scope:      policy.ScopeAll,
				}}
			},
			field: "remote_work.days[0].recurrence",
		},
		{
			name: "department scope without departments",
			mutate: func(d *policy.Document) {
				day := generic.MustParseDate("2024-11-08")
				d.RemoteWork.Days = []policy.RemoteDay{{Date: &day, Mode: policy.RemoteFullDay, Scope: policy.ScopeDepartment}}
			},
			field: "remote_work.days[0].department_ids",
		},
		{
			name: "inverted remote window",
			mutate: func(d *policy.Document) {
				day := generic.MustParseDate("2024-11-08")
				d.RemoteWork.Days = []policy.RemoteDay{{
					Date:        &day,
					Mode:        policy.RemoteHourWindow,
					WindowStart: generic.Clock(14, 0),
					WindowEnd:   generic.Clock(9, 0),
					Scope:       policy.ScopeAll,
				}}
			},
			field: "remote_work.days[0].window_end",
		},
		{
			name: "checkpoints out of order",
			mutate: func(d *policy.Document) {
				d.Overtime.Checkpoints = []generic.ClockTime{generic.Clock(22, 0), generic.Clock(20, 0)}
			},
			field: "overtime.checkpoints[1]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := factory.StandardOffice("hq")
			tt.mutate(&doc)

			assert.Contains(t, fields(t, policy.Validate(doc)), tt.field)
		})
	}
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	doc := factory.StandardOffice("hq")
	doc.WorkHours.OffDuty = generic.Clock(8, 0)
	doc.Exemption.Minutes = 0
	doc.Penalty.Ladder[2].Amount = decimal.NewFromInt(10)

	got := fields(t, policy.Validate(doc))

	assert.Len(t, got, 3)
}

func TestValidate_DisabledFeaturesAreNotChecked(t *testing.T) {
	doc := factory.StandardOffice("hq")
	doc.Penalty.Enabled = false
	doc.Penalty.Ladder = nil
	doc.Exemption = policy.Exemption{}
	doc.CrossDay = policy.CrossDayRule{}

	assert.NoError(t, policy.Validate(doc))
}
