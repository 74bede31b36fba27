package attendance_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/calendar"
	"github.com/warp/attendance-engine/generic"
	"github.com/warp/attendance-engine/policy"
)

// November 2024 starts on a Friday and has 21 weekdays.
const month = "2024-11"

func compute(t *testing.T, e *attendance.Engine, emp attendance.Employee, recs []attendance.PunchRecord, approvals attendance.ApprovalLookup) *attendance.EmployeeStats {
	t.Helper()
	stats, err := e.ComputeMonth(attendance.MonthInput{
		Employee:  emp,
		Month:     mustMonth(t, month),
		Records:   recs,
		Approvals: approvals,
	})
	require.NoError(t, err)
	return stats
}

// =============================================================================
// MONTHLY TOTALS
// =============================================================================

func TestEngine_PerfectMonth(t *testing.T) {
	// GIVEN: Every weekday punched 08:55-18:35
	e := newEngine(t, standardDoc(), nil)
	recs := everyWeekday(t, "alice", month, "08:55", "18:35")

	// WHEN
	stats := compute(t, e, employee("alice"), recs, nil)

	// THEN
	assert.Equal(t, generic.VersionID("v1"), stats.PolicyVersionID)
	assert.Len(t, stats.Days, 30)
	assert.Equal(t, 0, stats.Late.Count)
	assert.Equal(t, 0, stats.MissingCount)
	assert.Equal(t, 0, stats.AbsenteeismCount)
	assert.True(t, stats.Penalty.IsZero())
	assert.True(t, stats.FullAttendance)
	assert.True(t, decimal.NewFromInt(200).Equal(stats.FullAttendanceBonus))
	assert.Equal(t, 21, stats.ShouldAttendDays)
	assert.True(t, decimal.NewFromInt(21).Equal(stats.ActualAttendDays))
	assert.Equal(t, 21*5, stats.Overtime.WorkdayMinutes)
	assert.Equal(t, attendance.StatusNoRecord, dayOf(t, stats, "2024-11-02").Status)
}

func TestEngine_LateAfterNormalCheckout(t *testing.T) {
	// GIVEN: Monday checkout 18:35, Tuesday check-in 09:05
	e := newEngine(t, standardDoc(), nil)
	recs := everyWeekday(t, "alice", month, "08:55", "18:35")
	recs = replaceDay(recs, "2024-11-05", workday("alice", "2024-11-05", "09:05", "18:35"))

	stats := compute(t, e, employee("alice"), recs, nil)

	// THEN: The 18:00 rule applies, threshold 09:01, 4 minutes late, forgiven
	day := dayOf(t, stats, "2024-11-05")
	assert.Equal(t, attendance.StatusAbnormal, day.Status)
	assert.Equal(t, 4, day.LateMinutes)
	require.NotNil(t, day.Late)
	assert.Equal(t, attendance.ReasonTable, day.Late.Reason)
	assert.Equal(t, 1, stats.Late.Count)
	assert.Equal(t, 1, stats.Late.ForgivenCount)
	assert.True(t, stats.Penalty.IsZero())
	assert.True(t, stats.FullAttendance, "forgiven lateness keeps full attendance")
	assert.True(t, decimal.NewFromInt(21).Equal(stats.ActualAttendDays))
}

func TestEngine_ExemptionQuotaThenLadder(t *testing.T) {
	// GIVEN: Four late arrivals of 10, 10, 10 and 20 minutes
	e := newEngine(t, standardDoc(), nil)
	recs := everyWeekday(t, "alice", month, "08:55", "18:35")
	for date, on := range map[string]string{
		"2024-11-04": "09:11",
		"2024-11-05": "09:11",
		"2024-11-06": "09:11",
		"2024-11-07": "09:21",
	} {
		recs = replaceDay(recs, date, workday("alice", date, on, "18:35"))
	}

	stats := compute(t, e, employee("alice"), recs, nil)

	// THEN: Three forgiven, the 20 minutes fall in the [15, open) tier
	assert.Equal(t, 4, stats.Late.Count)
	assert.Equal(t, 50, stats.Late.Minutes)
	assert.Equal(t, 3, stats.Late.ForgivenCount)
	assert.Equal(t, 1, stats.Late.BillableCount)
	assert.Equal(t, 20, stats.Late.BillableMinutes)
	assert.True(t, decimal.NewFromInt(200).Equal(stats.Penalty), stats.Penalty.String())
	assert.False(t, stats.FullAttendance)
	require.Len(t, stats.Disqualified, 1)
	assert.Equal(t, policy.StatLate, stats.Disqualified[0].Type)
}

func TestEngine_IsDeterministic(t *testing.T) {
	e := newEngine(t, standardDoc(), nil)
	recs := everyWeekday(t, "alice", month, "08:55", "18:35")
	recs = replaceDay(recs, "2024-11-07", workday("alice", "2024-11-07", "09:40", "17:00"))

	first := compute(t, e, employee("alice"), recs, nil)

	shuffled := append([]attendance.PunchRecord(nil), recs...)
	rand.New(rand.NewSource(7)).Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	second := compute(t, e, employee("alice"), shuffled, nil)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

// =============================================================================
// LOOKBACK
// =============================================================================

func TestEngine_MondayLookback(t *testing.T) {
	approvals := attendance.ApprovalLookup{
		"ot-sat": {ID: "ot-sat", EmployeeID: "alice", BizType: attendance.BizOvertime, Duration: dec("6"), DurationUnit: attendance.UnitHour},
	}

	tests := []struct {
		name     string
		saturday []attendance.PunchRecord
		monday   string
		wantLate int
	}{
		{
			name:     "long weekend shift governs",
			saturday: workday("alice", "2024-11-09", "10:00", "22:30"),
			monday:   "10:00",
			wantLate: 0,
		},
		{
			name:     "short weekend shift falls back to Friday",
			saturday: workday("alice", "2024-11-09", "10:00", "12:00"),
			monday:   "10:00",
			wantLate: 59,
		},
		{
			name: "approved late weekend checkout triggers cross-day",
			saturday: append(workday("alice", "2024-11-09", "10:00", "22:30"),
				approvalRecord("alice", "2024-11-09", "ot-sat")),
			monday:   "10:25",
			wantLate: 0,
		},
		{
			name:     "unapproved late weekend checkout uses the table",
			saturday: workday("alice", "2024-11-09", "10:00", "22:30"),
			monday:   "10:25",
			wantLate: 24,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEngine(t, standardDoc(), nil)
			recs := everyWeekday(t, "alice", month, "08:55", "18:35")
			recs = append(recs, tt.saturday...)
			recs = replaceDay(recs, "2024-11-11", workday("alice", "2024-11-11", tt.monday, "18:35"))

			stats := compute(t, e, employee("alice"), recs, approvals)

			assert.Equal(t, tt.wantLate, dayOf(t, stats, "2024-11-11").LateMinutes)
		})
	}
}

func TestEngine_CrossDayCheckout(t *testing.T) {
	approvals := attendance.ApprovalLookup{
		"ot1": {ID: "ot1", EmployeeID: "alice", BizType: attendance.BizOvertime, Duration: dec("7"), DurationUnit: attendance.UnitHour},
	}
	build := func(approved bool) []attendance.PunchRecord {
		recs := everyWeekday(t, "alice", month, "08:55", "18:35")
		day := workday("alice", "2024-11-12", "08:55", "25:30")
		if approved {
			day = append(day, approvalRecord("alice", "2024-11-12", "ot1"))
		}
		recs = replaceDay(recs, "2024-11-12", day)
		return replaceDay(recs, "2024-11-13", workday("alice", "2024-11-13", "10:25", "18:35"))
	}
	e := newEngine(t, standardDoc(), nil)

	// GIVEN: An approved checkout at 01:30 the next morning
	stats := compute(t, e, employee("alice"), build(true), approvals)

	// THEN: It stays on Nov 12 and Nov 13 uses the 10:30 threshold
	nov12 := dayOf(t, stats, "2024-11-12")
	require.NotNil(t, nov12.OffDuty)
	assert.Equal(t, clock("25:30"), *nov12.OffDuty)
	nov13 := dayOf(t, stats, "2024-11-13")
	assert.Equal(t, 0, nov13.LateMinutes)
	assert.Equal(t, attendance.ReasonCrossDay, nov13.Late.Reason)
	assert.Equal(t, 1, stats.Overtime.Buckets[3].Count)
	assert.Equal(t, 420, stats.Overtime.Buckets[3].Minutes)
	assert.True(t, dec("7").Equal(stats.Overtime.ApprovedHours))

	// Without approval the 22:00 rule applies
	stats = compute(t, e, employee("alice"), build(false), approvals)
	assert.Equal(t, 24, dayOf(t, stats, "2024-11-13").LateMinutes)
}

// =============================================================================
// CALENDAR, LEAVE AND EMPLOYMENT
// =============================================================================

func TestEngine_FullDayLeave(t *testing.T) {
	e := newEngine(t, standardDoc(), nil)
	approvals := attendance.ApprovalLookup{
		"a1": leave("a1", attendance.LeaveAnnual, at("2024-11-12", "09:00"), at("2024-11-12", "18:30")),
	}
	recs := everyWeekday(t, "alice", month, "08:55", "18:35")
	recs = replaceDay(recs, "2024-11-12", []attendance.PunchRecord{approvalRecord("alice", "2024-11-12", "a1")})

	stats := compute(t, e, employee("alice"), recs, approvals)

	day := dayOf(t, stats, "2024-11-12")
	assert.Equal(t, attendance.StatusNormal, day.Status)
	assert.Equal(t, "Annual leave", day.LeaveLabel)
	assert.False(t, day.Flags.Absenteeism)
	assert.Equal(t, 1, stats.LeaveCount(attendance.LeaveAnnual))
	assert.True(t, dec("8").Equal(stats.LeaveHours("")))
	assert.True(t, stats.FullAttendance)
	assert.True(t, decimal.NewFromInt(21).Equal(stats.ActualAttendDays))
}

func TestEngine_AttendanceDaysWithNothingIncluded(t *testing.T) {
	doc := standardDoc()
	doc.AttendanceDays = policy.AttendanceDays{ShouldAttendMode: policy.ShouldAttendWorkdays}
	e := newEngine(t, doc, nil)
	approvals := attendance.ApprovalLookup{
		"a1": leave("a1", attendance.LeaveAnnual, at("2024-11-12", "09:00"), at("2024-11-12", "18:30")),
	}

	recs := everyWeekday(t, "alice", month, "08:55", "18:35")
	recs = replaceDay(recs, "2024-11-05", workday("alice", "2024-11-05", "09:05", "18:35"))
	recs = replaceDay(recs, "2024-11-06", []attendance.PunchRecord{punch("alice", "2024-11-06", attendance.OnDuty, "08:55")})
	recs = replaceDay(recs, "2024-11-12", []attendance.PunchRecord{approvalRecord("alice", "2024-11-12", "a1")})

	stats := compute(t, e, employee("alice"), recs, approvals)

	// Late, missing and leave days each lose their credit
	assert.True(t, decimal.NewFromInt(18).Equal(stats.ActualAttendDays), stats.ActualAttendDays.String())
	assert.True(t, stats.ActualAttendDays.LessThanOrEqual(decimal.NewFromInt(int64(stats.ShouldAttendDays))))
	assert.Equal(t, 1, stats.MissingCount)
	assert.Equal(t, attendance.StatusIncomplete, dayOf(t, stats, "2024-11-06").Status)
}

func TestEngine_HalfDayLeaveEarnsOnlyWorkedPortion(t *testing.T) {
	// GIVEN: Nothing optional counts, and Nov 12 has a morning punch then
	// sick leave for the afternoon with no checkout
	doc := standardDoc()
	doc.AttendanceDays = policy.AttendanceDays{ShouldAttendMode: policy.ShouldAttendWorkdays}
	e := newEngine(t, doc, nil)
	approvals := attendance.ApprovalLookup{
		"s1": leave("s1", attendance.LeaveSick, at("2024-11-12", "13:30"), at("2024-11-12", "18:30")),
	}
	recs := everyWeekday(t, "alice", month, "08:55", "18:35")
	recs = replaceDay(recs, "2024-11-12", []attendance.PunchRecord{
		punch("alice", "2024-11-12", attendance.OnDuty, "08:55"),
		approvalRecord("alice", "2024-11-12", "s1"),
	})

	// WHEN
	stats := compute(t, e, employee("alice"), recs, approvals)

	// THEN: The leave excuses the checkout but the day earns nothing
	day := dayOf(t, stats, "2024-11-12")
	assert.Equal(t, attendance.StatusNormal, day.Status)
	assert.True(t, day.Coverage.HalfDay)
	assert.False(t, day.Flags.MissingOffDuty)
	assert.True(t, day.Attendance.IsZero())

	fullyPunched := 0
	for _, ds := range stats.Days {
		if ds.Day.IsWorkday && ds.Status == attendance.StatusNormal && ds.OnDuty != nil && ds.OffDuty != nil {
			fullyPunched++
		}
	}
	assert.Equal(t, 20, fullyPunched)
	assert.True(t, stats.ActualAttendDays.LessThanOrEqual(decimal.NewFromInt(int64(fullyPunched))), stats.ActualAttendDays.String())
	assert.True(t, decimal.NewFromInt(20).Equal(stats.ActualAttendDays), stats.ActualAttendDays.String())
}

func TestEngine_LatenessBehindMorningLeave(t *testing.T) {
	e := newEngine(t, standardDoc(), nil)
	approvals := attendance.ApprovalLookup{
		"hour":    leave("hour", attendance.LeaveAnnual, at("2024-11-12", "09:00"), at("2024-11-12", "10:00")),
		"morning": leave("morning", attendance.LeaveAnnual, at("2024-11-13", "09:00"), at("2024-11-13", "12:00")),
		"early":   leave("early", attendance.LeaveAnnual, at("2024-11-14", "09:00"), at("2024-11-14", "10:00")),
	}
	recs := everyWeekday(t, "alice", month, "08:55", "18:35")
	// One hour of leave, arriving two hours after the start of the day
	recs = replaceDay(recs, "2024-11-12", append(workday("alice", "2024-11-12", "11:00", "18:35"),
		approvalRecord("alice", "2024-11-12", "hour")))
	// Morning leave ends at lunch; lunch is not counted
	recs = replaceDay(recs, "2024-11-13", append(workday("alice", "2024-11-13", "13:40", "18:35"),
		approvalRecord("alice", "2024-11-13", "morning")))
	// Back before the leave ends
	recs = replaceDay(recs, "2024-11-14", append(workday("alice", "2024-11-14", "09:50", "18:35"),
		approvalRecord("alice", "2024-11-14", "early")))

	stats := compute(t, e, employee("alice"), recs, approvals)

	hour := dayOf(t, stats, "2024-11-12")
	assert.Equal(t, 60, hour.LateMinutes)
	assert.True(t, hour.Flags.Late)
	assert.Equal(t, attendance.StatusAbnormal, hour.Status)

	assert.Equal(t, 10, dayOf(t, stats, "2024-11-13").LateMinutes)

	early := dayOf(t, stats, "2024-11-14")
	assert.Equal(t, 0, early.LateMinutes)
	assert.Equal(t, attendance.StatusNormal, early.Status)

	assert.Equal(t, 2, stats.Late.Count)
	assert.Equal(t, 70, stats.Late.Minutes)
}

func TestEngine_DaysAfterCutoffArePending(t *testing.T) {
	// GIVEN: Mid-month, with punches only up to today
	e := newEngine(t, standardDoc(), nil)
	var recs []attendance.PunchRecord
	for _, r := range everyWeekday(t, "alice", month, "08:55", "18:35") {
		if r.WorkDate.BeforeOrEqual(d("2024-11-15")) {
			recs = append(recs, r)
		}
	}

	// WHEN
	stats, err := e.ComputeMonth(attendance.MonthInput{
		Employee: employee("alice"),
		Month:    mustMonth(t, month),
		Records:  recs,
		AsOf:     d("2024-11-15"),
	})
	require.NoError(t, err)

	// THEN: The rest of the month is neither absent nor attended
	assert.Len(t, stats.Days, 30)
	future := dayOf(t, stats, "2024-11-20")
	assert.Equal(t, attendance.StatusPending, future.Status)
	assert.False(t, future.Flags.Absenteeism)
	assert.True(t, future.Attendance.IsZero())
	assert.Equal(t, attendance.StatusNormal, dayOf(t, stats, "2024-11-15").Status)

	assert.Equal(t, 0, stats.AbsenteeismCount)
	assert.Equal(t, 0, stats.MissingCount)
	assert.True(t, stats.FullAttendance)
	assert.Equal(t, 21, stats.ShouldAttendDays)
	assert.True(t, decimal.NewFromInt(11).Equal(stats.ActualAttendDays), stats.ActualAttendDays.String())
	assert.Equal(t, 11*5, stats.Overtime.WorkdayMinutes)
}

func TestEngine_EmploymentWindow(t *testing.T) {
	e := newEngine(t, standardDoc(), nil)

	t.Run("hired mid-month", func(t *testing.T) {
		emp := employee("alice")
		emp.HireDate = d("2024-11-15")
		var recs []attendance.PunchRecord
		for _, r := range everyWeekday(t, "alice", month, "08:55", "18:35") {
			if !r.WorkDate.Before(emp.HireDate) {
				recs = append(recs, r)
			}
		}

		stats := compute(t, e, emp, recs, nil)

		assert.Equal(t, 11, stats.ShouldAttendDays)
		assert.True(t, decimal.NewFromInt(11).Equal(stats.ActualAttendDays))
		assert.Equal(t, 0, stats.AbsenteeismCount)
		assert.Equal(t, attendance.ReasonBaseline, dayOf(t, stats, "2024-11-15").Late.Reason)
	})

	t.Run("terminated mid-month", func(t *testing.T) {
		emp := employee("bob")
		last := d("2024-11-20")
		emp.TerminationDate = &last
		var recs []attendance.PunchRecord
		for _, r := range everyWeekday(t, "bob", month, "08:55", "18:35") {
			if !r.WorkDate.After(last) {
				recs = append(recs, r)
			}
		}

		stats := compute(t, e, emp, recs, nil)

		assert.Equal(t, 14, stats.ShouldAttendDays)
		assert.Equal(t, 0, stats.AbsenteeismCount)
		assert.True(t, stats.FullAttendance)
	})
}

func TestEngine_HolidaysAndSwaps(t *testing.T) {
	holidays := calendar.NewHolidayMap([]calendar.Holiday{
		{Date: d("2024-11-11"), Holiday: true, Name: "Armistice Day", WageMultiplier: decimal.NewFromInt(3)},
	})
	doc := standardDoc()
	doc.WorkdaySwap = policy.WorkdaySwap{
		Enabled:    true,
		CustomDays: []policy.CustomDay{{Date: d("2024-11-02"), Type: policy.DayWorkday, Reason: "inventory"}},
	}
	e := newEngine(t, doc, holidays)

	recs := everyWeekday(t, "alice", month, "08:55", "18:35")
	recs = replaceDay(recs, "2024-11-11", workday("alice", "2024-11-11", "09:00", "12:00"))

	stats := compute(t, e, employee("alice"), recs, nil)

	// Saturday Nov 2 is a swapped workday with no punches
	assert.Equal(t, 1, stats.AbsenteeismCount)
	assert.True(t, dayOf(t, stats, "2024-11-02").Flags.Absenteeism)
	// 21 weekdays, minus the holiday, plus the swapped Saturday
	assert.Equal(t, 21, stats.ShouldAttendDays)
	assert.Equal(t, 180, stats.Overtime.HolidayMinutes)
	assert.True(t, decimal.NewFromInt(540).Equal(stats.Overtime.HolidayWeightedMinutes))
	assert.False(t, stats.FullAttendance)
}

func TestEngine_RemoteFridays(t *testing.T) {
	doc := standardDoc()
	doc.RemoteWork = policy.RemoteWork{
		Enabled: true,
		Days: []policy.RemoteDay{{
			Recurrence:    "FREQ=WEEKLY;BYDAY=FR",
			Start:         d("2024-11-01"),
			Mode:          policy.RemoteFullDay,
			Scope:         policy.ScopeDepartment,
			DepartmentIDs: []generic.DepartmentID{"eng"},
		}},
	}
	e := newEngine(t, doc, nil)

	var recs []attendance.PunchRecord
	for _, r := range everyWeekday(t, "alice", month, "08:55", "18:35") {
		if r.WorkDate.Weekday() != time.Friday {
			recs = append(recs, r)
		}
	}

	stats := compute(t, e, employee("alice"), recs, nil)

	fri := dayOf(t, stats, "2024-11-08")
	assert.True(t, fri.Day.IsRemote)
	assert.Equal(t, attendance.StatusNormal, fri.Status)
	assert.Equal(t, 0, stats.AbsenteeismCount)
	assert.Equal(t, 0, stats.MissingCount)
	assert.True(t, decimal.NewFromInt(21).Equal(stats.ActualAttendDays))
}

// =============================================================================
// ERRORS AND BATCH
// =============================================================================

func TestEngine_RefusesInvalidDocument(t *testing.T) {
	doc := standardDoc()
	doc.WorkHours.OffDuty = clock("08:00")

	_, err := attendance.NewEngine(policy.Version{ID: "bad", Document: doc}, nil)

	assert.ErrorIs(t, err, generic.ErrInvalidPolicy)
}

func TestEngine_CorruptPunch(t *testing.T) {
	e := newEngine(t, standardDoc(), nil)

	tests := []struct {
		name   string
		record attendance.PunchRecord
	}{
		{"foreign employee", punch("mallory", "2024-11-05", attendance.OnDuty, "09:00")},
		{"signed without time", func() attendance.PunchRecord {
			r := punch("alice", "2024-11-05", attendance.OnDuty, "09:00")
			r.UserCheckTime = time.Time{}
			return r
		}()},
		{"far from work date", func() attendance.PunchRecord {
			r := punch("alice", "2024-11-05", attendance.OffDuty, "18:30")
			r.UserCheckTime = r.UserCheckTime.AddDate(0, 0, 3)
			return r
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs := append(everyWeekday(t, "alice", month, "08:55", "18:35"), tt.record)
			_, err := e.ComputeMonth(attendance.MonthInput{Employee: employee("alice"), Month: mustMonth(t, month), Records: recs})

			assert.ErrorIs(t, err, generic.ErrCorruptPunch)
			var evalErr *attendance.EvaluationError
			require.True(t, errors.As(err, &evalErr))
			assert.Equal(t, generic.EmployeeID("alice"), evalErr.EmployeeID)
			assert.Equal(t, d("2024-11-05"), evalErr.Date)
		})
	}
}

func TestEngine_BatchIsolatesFailures(t *testing.T) {
	e, err := attendance.NewEngine(policy.Version{ID: "v1", Document: standardDoc()}, nil,
		attendance.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	require.NoError(t, err)

	m := mustMonth(t, month)
	inputs := []attendance.MonthInput{
		{Employee: employee("alice"), Month: m, Records: everyWeekday(t, "alice", month, "08:55", "18:35")},
		{Employee: employee("bob"), Month: m, Records: append(everyWeekday(t, "bob", month, "08:55", "18:35"),
			punch("mallory", "2024-11-05", attendance.OnDuty, "09:00"))},
		{Employee: employee("carol"), Month: m, Records: everyWeekday(t, "carol", month, "09:30", "18:35")},
	}

	results := e.ComputeBatch(context.Background(), inputs, 2)

	require.Len(t, results, 3)
	assert.Equal(t, generic.EmployeeID("alice"), results[0].EmployeeID)
	assert.NoError(t, results[0].Err)
	assert.True(t, results[0].Stats.FullAttendance)

	assert.Equal(t, generic.EmployeeID("bob"), results[1].EmployeeID)
	assert.ErrorIs(t, results[1].Err, generic.ErrCorruptPunch)
	assert.Nil(t, results[1].Stats)

	assert.Equal(t, generic.EmployeeID("carol"), results[2].EmployeeID)
	require.NoError(t, results[2].Err)
	assert.Equal(t, 21, results[2].Stats.Late.Count)
}

func TestEngine_BatchHonoursCancellation(t *testing.T) {
	e := newEngine(t, standardDoc(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := e.ComputeBatch(ctx, []attendance.MonthInput{
		{Employee: employee("alice"), Month: mustMonth(t, month)},
	}, 0)

	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Err, context.Canceled)
}
