package attendance

import (
	"github.com/shopspring/decimal"
	"github.com/warp/attendance-engine/calendar"
	"github.com/warp/attendance-engine/generic"
	"github.com/warp/attendance-engine/policy"
)

// =============================================================================
// ATTENDANCE-DAY COUNTER
// =============================================================================
//
// Attendance days are presence accounting. They are independent of the
// lateness and missing-punch penalties: a late day may count as attended
// and still be billed.

var (
	oneDay  = decimal.NewFromInt(1)
	halfDay = decimal.NewFromFloat(0.5)
)

// CountShouldAttend returns the month's should-attend days. Workdays mode
// counts resolved workdays in the employment window, plus statutory holidays
// when IncludeHolidays. Fixed mode returns FixedDays.
func CountShouldAttend(a policy.AttendanceDays, days []calendar.DayInfo, emp Employee) int {
	if a.ShouldAttendMode == policy.ShouldAttendFixed {
		return a.FixedDays
	}
	n := 0
	for _, d := range days {
		if !emp.EmployedOn(d.Date) {
			continue
		}
		if d.IsWorkday || (a.IncludeHolidays && d.IsStatutoryHoliday) {
			n++
		}
	}
	return n
}

// DayContribution returns one day's share of actual attendance, at most 1.0.
// A day partly covered by leave earns only its worked portion unless
// CountHalfDayLeave is on: the leave may excuse a punch, but it never turns
// the day into a fully-punched one.
func DayContribution(a policy.AttendanceDays, ds DailyStatus) decimal.Decimal {
	if !ds.Employed {
		return decimal.Zero
	}
	if !ds.Day.IsWorkday {
		if ds.Day.IsStatutoryHoliday && a.CountHolidayAsAttendance {
			return oneDay
		}
		return decimal.Zero
	}

	cov := ds.Coverage
	kind, hasLeave := cov.Dominant()
	if cov.FullDay {
		if hasLeave && leaveCounts(a, kind) {
			return oneDay
		}
		return decimal.Zero
	}
	if ds.Flags.Absenteeism {
		return decimal.Zero
	}
	if cov.HalfDay || (hasLeave && (ds.OnDuty == nil || ds.OffDuty == nil)) {
		if !a.CountHalfDayLeave {
			return credit(ds.Status == StatusNormal && workedFullDay(a, ds))
		}
		share := halfDay
		if hasLeave && leaveCounts(a, kind) {
			share = share.Add(halfDay)
		}
		return decimal.Min(share, oneDay)
	}

	switch {
	case ds.Flags.MissingOnDuty || ds.Flags.MissingOffDuty:
		return credit(a.CountMissingAsAttendance)
	case ds.Flags.Late:
		return credit(a.CountLateAsAttendance)
	case ds.Flags.EarlyLeave:
		return credit(workedFullDay(a, ds))
	case ds.Status == StatusNormal:
		return oneDay
	}
	return decimal.Zero
}

// workedFullDay reports whether both punches exist and the hours between
// them reach MinWorkHoursForFullDay. A zero floor never qualifies.
func workedFullDay(a policy.AttendanceDays, ds DailyStatus) bool {
	floor := a.MinWorkHoursForFullDay
	if ds.OnDuty == nil || ds.OffDuty == nil || !floor.IsPositive() {
		return false
	}
	return generic.MinutesToHours(ds.WorkedMinutes).GreaterThanOrEqual(floor)
}

func credit(counts bool) decimal.Decimal {
	if counts {
		return oneDay
	}
	return decimal.Zero
}

// leaveCounts reports whether a day of this leave kind counts as attended.
func leaveCounts(a policy.AttendanceDays, kind LeaveType) bool {
	switch kind {
	case LeaveCompTime:
		return a.CountCompTime
	case LeaveAnnual, LeavePaid, LeaveMarriage, LeaveMaternity, LeavePaternity, LeaveBereavement:
		return a.CountPaidLeave
	case LeaveTrip:
		return a.CountTrip
	case LeaveOut:
		return a.CountOut
	case LeaveSick:
		return a.CountSickLeave
	case LeavePersonal:
		return a.CountPersonalLeave
	}
	return false
}
