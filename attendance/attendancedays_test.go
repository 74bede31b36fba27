package attendance_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/calendar"
	"github.com/warp/attendance-engine/policy"
)

func onWorkday(ds attendance.DailyStatus) attendance.DailyStatus {
	ds.Employed = true
	ds.Day = calendar.DayInfo{IsWorkday: true, WageMultiplier: decimal.NewFromInt(1)}
	return ds
}

func leaveCoverage(kind attendance.LeaveType, hours string, full, half bool) attendance.Coverage {
	return attendance.Coverage{
		Hours:   dec(hours),
		ByType:  map[attendance.LeaveType]decimal.Decimal{kind: dec(hours)},
		FullDay: full,
		HalfDay: half,
	}
}

func TestDayContribution(t *testing.T) {
	all := standardDoc().AttendanceDays
	none := policy.AttendanceDays{ShouldAttendMode: policy.ShouldAttendWorkdays}
	floorOnly := none
	floorOnly.MinWorkHoursForFullDay = decimal.NewFromInt(7)

	tests := []struct {
		name string
		cfg  policy.AttendanceDays
		ds   attendance.DailyStatus
		want string
	}{
		{"normal day", none, onWorkday(attendance.DailyStatus{Status: attendance.StatusNormal}), "1"},
		{"not employed", all, attendance.DailyStatus{Status: attendance.StatusNormal}, "0"},
		{"absent", all, onWorkday(attendance.DailyStatus{Status: attendance.StatusNoRecord, Flags: attendance.DayFlags{Absenteeism: true}}), "0"},
		{"late counted", all, onWorkday(attendance.DailyStatus{Status: attendance.StatusAbnormal, Flags: attendance.DayFlags{Late: true}}), "1"},
		{"late not counted", none, onWorkday(attendance.DailyStatus{Status: attendance.StatusAbnormal, Flags: attendance.DayFlags{Late: true}}), "0"},
		{"missing not counted", all, onWorkday(attendance.DailyStatus{Status: attendance.StatusIncomplete, Flags: attendance.DayFlags{MissingOffDuty: true}}), "0"},
		{"early leave above floor", all, onWorkday(attendance.DailyStatus{Status: attendance.StatusAbnormal, Flags: attendance.DayFlags{EarlyLeave: true}, WorkedMinutes: 400}), "1"},
		{"early leave below floor", all, onWorkday(attendance.DailyStatus{Status: attendance.StatusAbnormal, Flags: attendance.DayFlags{EarlyLeave: true}, WorkedMinutes: 300}), "0"},
		{"paid leave counted", all, onWorkday(attendance.DailyStatus{Status: attendance.StatusNormal, Coverage: leaveCoverage(attendance.LeaveAnnual, "8", true, false)}), "1"},
		{"paid leave not counted", none, onWorkday(attendance.DailyStatus{Status: attendance.StatusNormal, Coverage: leaveCoverage(attendance.LeaveAnnual, "8", true, false)}), "0"},
		{"sick leave full day", all, onWorkday(attendance.DailyStatus{Status: attendance.StatusNormal, Coverage: leaveCoverage(attendance.LeaveSick, "8", true, false)}), "0"},
		{"half day sick", all, onWorkday(attendance.DailyStatus{Status: attendance.StatusNormal, Coverage: leaveCoverage(attendance.LeaveSick, "4", false, true)}), "0.5"},
		{"half day paid", all, onWorkday(attendance.DailyStatus{Status: attendance.StatusNormal, Coverage: leaveCoverage(attendance.LeaveCompTime, "4", false, true)}), "1"},
		{"half day sick, nothing included", none, onWorkday(attendance.DailyStatus{Status: attendance.StatusNormal, OnDuty: clockPtr("08:55"), Coverage: leaveCoverage(attendance.LeaveSick, "5", false, true)}), "0"},
		{"half day, full hours worked", floorOnly, onWorkday(attendance.DailyStatus{Status: attendance.StatusNormal, OnDuty: clockPtr("08:55"), OffDuty: clockPtr("18:35"), WorkedMinutes: 450, Coverage: leaveCoverage(attendance.LeaveSick, "4", false, true)}), "1"},
		{"half day, short hours", floorOnly, onWorkday(attendance.DailyStatus{Status: attendance.StatusNormal, OnDuty: clockPtr("13:25"), OffDuty: clockPtr("18:35"), WorkedMinutes: 310, Coverage: leaveCoverage(attendance.LeaveSick, "4", false, true)}), "0"},
		{"short leave excuses checkout", none, onWorkday(attendance.DailyStatus{Status: attendance.StatusNormal, OnDuty: clockPtr("08:55"), Coverage: leaveCoverage(attendance.LeaveSick, "1", false, false)}), "0"},
		{"short leave, both punches", none, onWorkday(attendance.DailyStatus{Status: attendance.StatusNormal, OnDuty: clockPtr("08:55"), OffDuty: clockPtr("18:35"), Coverage: leaveCoverage(attendance.LeaveSick, "1", false, false)}), "1"},
		{"trip", all, onWorkday(attendance.DailyStatus{Status: attendance.StatusNormal, Coverage: leaveCoverage(attendance.LeaveTrip, "8", true, false)}), "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := attendance.DayContribution(tt.cfg, tt.ds)
			assert.True(t, dec(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestDayContribution_Holidays(t *testing.T) {
	holiday := attendance.DailyStatus{
		Employed: true,
		Status:   attendance.StatusNoRecord,
		Day:      calendar.DayInfo{IsStatutoryHoliday: true, WageMultiplier: decimal.NewFromInt(3)},
	}
	weekend := attendance.DailyStatus{Employed: true, Status: attendance.StatusNormal}

	cfg := policy.AttendanceDays{CountHolidayAsAttendance: true}
	assert.True(t, attendance.DayContribution(cfg, holiday).Equal(decimal.NewFromInt(1)))
	assert.True(t, attendance.DayContribution(cfg, weekend).IsZero(), "weekend work is overtime, not attendance")
	assert.True(t, attendance.DayContribution(policy.AttendanceDays{}, holiday).IsZero())
}

func TestCountShouldAttend(t *testing.T) {
	r, err := calendar.NewResolver(calendar.NewHolidayMap([]calendar.Holiday{
		{Date: d("2024-11-11"), Holiday: true, Name: "Armistice Day"},
	}), policy.WorkdaySwap{}, policy.RemoteWork{})
	assert.NoError(t, err)
	var days []calendar.DayInfo
	for _, day := range mustMonth(t, "2024-11").Days() {
		days = append(days, r.Resolve(day, calendar.Scope{}))
	}

	emp := employee("alice")
	assert.Equal(t, 20, attendance.CountShouldAttend(policy.AttendanceDays{}, days, emp))
	assert.Equal(t, 21, attendance.CountShouldAttend(policy.AttendanceDays{IncludeHolidays: true}, days, emp))
	assert.Equal(t, 22, attendance.CountShouldAttend(policy.AttendanceDays{ShouldAttendMode: policy.ShouldAttendFixed, FixedDays: 22}, days, emp))

	// Hired mid-month
	emp.HireDate = d("2024-11-15")
	assert.Equal(t, 11, attendance.CountShouldAttend(policy.AttendanceDays{}, days, emp))

	// Left mid-month
	emp.HireDate = d("2020-01-01")
	left := d("2024-11-20")
	emp.TerminationDate = &left
	assert.Equal(t, 13, attendance.CountShouldAttend(policy.AttendanceDays{}, days, emp))
}
