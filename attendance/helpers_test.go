package attendance_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/calendar"
	"github.com/warp/attendance-engine/factory"
	"github.com/warp/attendance-engine/generic"
	"github.com/warp/attendance-engine/policy"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func d(s string) generic.Date { return generic.MustParseDate(s) }

func clock(s string) generic.ClockTime { return generic.MustParseClock(s) }

func clockPtr(s string) *generic.ClockTime {
	c := clock(s)
	return &c
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func at(date, hhmm string) time.Time { return d(date).At(clock(hhmm), time.UTC) }

func mustMonth(t *testing.T, s string) generic.Month {
	t.Helper()
	m, err := generic.ParseMonth(s)
	require.NoError(t, err)
	return m
}

func punch(emp generic.EmployeeID, date string, ct attendance.CheckType, hhmm string) attendance.PunchRecord {
	base := "09:00"
	if ct == attendance.OffDuty {
		base = "18:30"
	}
	return attendance.PunchRecord{
		ID:            fmt.Sprintf("%s-%s-%s", emp, date, ct),
		EmployeeID:    emp,
		WorkDate:      d(date),
		CheckType:     ct,
		Source:        attendance.SourceDevice,
		UserCheckTime: at(date, hhmm),
		BaseCheckTime: at(date, base),
		TimeResult:    attendance.ResultNormal,
	}
}

func workday(emp generic.EmployeeID, date, on, off string) []attendance.PunchRecord {
	return []attendance.PunchRecord{
		punch(emp, date, attendance.OnDuty, on),
		punch(emp, date, attendance.OffDuty, off),
	}
}

// approvalRecord links an approval to a day the way the device feed does.
func approvalRecord(emp generic.EmployeeID, date, approvalID string) attendance.PunchRecord {
	return attendance.PunchRecord{
		ID:         fmt.Sprintf("%s-%s-%s", emp, date, approvalID),
		EmployeeID: emp,
		WorkDate:   d(date),
		CheckType:  attendance.OnDuty,
		Source:     attendance.SourceApproval,
		TimeResult: attendance.ResultNormal,
		ApprovalID: approvalID,
	}
}

// everyWeekday punches on/off for each Monday-Friday of month.
func everyWeekday(t *testing.T, emp generic.EmployeeID, month, on, off string) []attendance.PunchRecord {
	var recs []attendance.PunchRecord
	for _, day := range mustMonth(t, month).Days() {
		if day.IsWeekend() {
			continue
		}
		recs = append(recs, workday(emp, day.String(), on, off)...)
	}
	return recs
}

// replaceDay swaps the records of one date, the way an edit would.
func replaceDay(recs []attendance.PunchRecord, date string, day []attendance.PunchRecord) []attendance.PunchRecord {
	var out []attendance.PunchRecord
	for _, r := range recs {
		if r.WorkDate != d(date) {
			out = append(out, r)
		}
	}
	return append(out, day...)
}

func newEngine(t *testing.T, doc policy.Document, holidays calendar.HolidayCalendar) *attendance.Engine {
	t.Helper()
	e, err := attendance.NewEngine(policy.Version{ID: "v1", Number: 1, Document: doc}, holidays)
	require.NoError(t, err)
	return e
}

func standardDoc() policy.Document { return factory.StandardOffice("head-office") }

func employee(id generic.EmployeeID) attendance.Employee {
	return attendance.Employee{ID: id, Name: string(id), DepartmentID: "eng", HireDate: d("2020-01-01")}
}

func dayOf(t *testing.T, stats *attendance.EmployeeStats, date string) attendance.DailyStatus {
	t.Helper()
	for _, ds := range stats.Days {
		if ds.Date == d(date) {
			return ds
		}
	}
	t.Fatalf("no day %s in stats", date)
	return attendance.DailyStatus{}
}
