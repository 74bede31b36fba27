/*
engine.go - Monthly aggregation of one employee's attendance

PURPOSE:
  Orchestrates every component for one employee-month and stamps the result
  with the policy version that produced it.

PER DAY:
  1. Resolve the calendar and leave coverage
  2. Resolve on/off-duty punches (cross-day checkouts exceed 24:00)
  3. Look back for the governing previous checkout and evaluate lateness
  4. Classify the day and score its attendance contribution
  Days after MonthInput.AsOf are marked pending and skip all four steps.

PER MONTH:
  5. Fold late occurrences through the exemption quota in date order
  6. Price the billable minutes
  7. Aggregate overtime
  8. Count should-attend days and evaluate full attendance last

LOOKBACK:
  Yesterday's checkout governs today's late rule when yesterday was a
  workday. When it was not, the non-workday run is walked back to the prior
  workday: if the run's worked hours reach WeekendOvertimeThreshold, its
  latest checkout governs; otherwise the prior workday's does. The walk is
  bounded, and days before the month come from the same record set.

SEE ALSO:
  - batch.go: Parallel evaluation across employees
*/
package attendance

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/attendance-engine/calendar"
	"github.com/warp/attendance-engine/generic"
	"github.com/warp/attendance-engine/policy"
)

// LookbackDays bounds the walk over a non-workday run. Hosts load this many
// days of records before the month.
const LookbackDays = 14

// =============================================================================
// ENGINE
// =============================================================================

// Engine evaluates one policy version against one holiday calendar. It holds
// only read-only state and is safe for concurrent use.
type Engine struct {
	version  policy.Version
	doc      *policy.Document
	resolver *calendar.Resolver
	loc      *time.Location
	logger   *slog.Logger
}

type Option func(*Engine)

// WithLocation sets the zone punches are read in. Defaults to UTC.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) { e.loc = loc }
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// NewEngine refuses a version whose document fails validation.
func NewEngine(version policy.Version, holidays calendar.HolidayCalendar, opts ...Option) (*Engine, error) {
	if err := policy.Validate(version.Document); err != nil {
		return nil, fmt.Errorf("refusing policy version %s: %w", version.ID, err)
	}

	doc := version.Document.Clone()
	resolver, err := calendar.NewResolver(holidays, doc.WorkdaySwap, doc.RemoteWork)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		version:  version,
		doc:      &doc,
		resolver: resolver,
		loc:      time.UTC,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

func (e *Engine) VersionID() generic.VersionID { return e.version.ID }

// Editor returns a manual edit builder using this engine's work hours.
func (e *Engine) Editor() *Editor {
	return NewEditor(e.doc.WorkHours, e.loc)
}

// MonthInput is one employee's immutable input snapshot. Records may reach
// back before the month for the late-rule lookback.
type MonthInput struct {
	Employee  Employee
	Month     generic.Month
	Records   []PunchRecord
	Approvals ApprovalLookup
	// AsOf is the last day evaluated. Later days are pending: never absent,
	// never attended. Zero evaluates the whole month.
	AsOf generic.Date
}

func (in MonthInput) pending(date generic.Date) bool {
	return !in.AsOf.IsZero() && in.AsOf.Before(date)
}

// ComputeMonth returns complete stats or an *EvaluationError.
func (e *Engine) ComputeMonth(in MonthInput) (*EmployeeStats, error) {
	run, err := e.newMonthRun(in)
	if err != nil {
		return nil, err
	}
	return run.compute()
}

// =============================================================================
// MONTH RUN - Per-call working state
// =============================================================================

type monthRun struct {
	e      *Engine
	doc    *policy.Document
	in     MonthInput
	scope  calendar.Scope
	byDate map[generic.Date][]PunchRecord
	facts  map[generic.Date]*dayFacts
}

func (e *Engine) newMonthRun(in MonthInput) (*monthRun, error) {
	byDate := make(map[generic.Date][]PunchRecord)
	for _, r := range in.Records {
		if err := e.checkRecord(in.Employee.ID, r); err != nil {
			return nil, &EvaluationError{EmployeeID: in.Employee.ID, Date: r.WorkDate, Err: err}
		}
		byDate[r.WorkDate] = append(byDate[r.WorkDate], r)
	}
	for _, recs := range byDate {
		sortRecords(recs)
	}

	return &monthRun{
		e:      e,
		doc:    e.doc,
		in:     in,
		scope:  calendar.Scope{EmployeeID: in.Employee.ID, DepartmentID: in.Employee.DepartmentID},
		byDate: byDate,
		facts:  make(map[generic.Date]*dayFacts),
	}, nil
}

// checkRecord rejects records that cannot be placed on their work date.
func (e *Engine) checkRecord(employeeID generic.EmployeeID, r PunchRecord) error {
	if r.EmployeeID != employeeID {
		return fmt.Errorf("%w: record %s belongs to employee %q", generic.ErrCorruptPunch, r.ID, r.EmployeeID)
	}
	if r.WorkDate.IsZero() {
		return fmt.Errorf("%w: record %s has no work date", generic.ErrCorruptPunch, r.ID)
	}
	if !r.Punched() {
		return nil
	}
	if r.UserCheckTime.IsZero() {
		return fmt.Errorf("%w: record %s is signed without a check time", generic.ErrCorruptPunch, r.ID)
	}
	if c := r.Clock(e.loc); c < -generic.EndOfDay || c >= generic.MaxClock {
		return fmt.Errorf("%w: record %s check time %s is outside work date %s",
			generic.ErrCorruptPunch, r.ID, r.UserCheckTime.Format(time.RFC3339), r.WorkDate)
	}
	return nil
}

func sortRecords(recs []PunchRecord) {
	sort.SliceStable(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		if a.CheckType != b.CheckType {
			return a.CheckType == OnDuty
		}
		if !a.UserCheckTime.Equal(b.UserCheckTime) {
			return a.UserCheckTime.Before(b.UserCheckTime)
		}
		return a.ID < b.ID
	})
}

func (m *monthRun) dayFacts(date generic.Date) *dayFacts {
	if f, ok := m.facts[date]; ok {
		return f
	}
	recs := m.byDate[date]
	f := &dayFacts{
		date:    date,
		info:    m.e.resolver.Resolve(date, m.scope),
		records: recs,
	}
	f.on, f.off = resolvePunches(recs, m.e.loc)
	f.coverage = ResolveCoverage(date, recs, m.in.Approvals, m.doc.WorkHours, m.doc.FullDayLeaveHours, m.e.loc)
	m.facts[date] = f
	return f
}

// resolvePunches returns the earliest on-duty and latest off-duty punch.
func resolvePunches(recs []PunchRecord, loc *time.Location) (on, off *generic.ClockTime) {
	for _, r := range recs {
		if !r.Punched() {
			continue
		}
		c := r.Clock(loc)
		switch r.CheckType {
		case OnDuty:
			if on == nil || c < *on {
				on = &c
			}
		case OffDuty:
			if off == nil || c > *off {
				off = &c
			}
		}
	}
	return on, off
}

// previousCheckout resolves the checkout governing date's late rule.
func (m *monthRun) previousCheckout(date generic.Date) (*generic.ClockTime, bool) {
	f := m.dayFacts(date.AddDays(-1))
	if f.info.IsWorkday {
		return f.off, len(f.coverage.Overtime) > 0
	}

	var latest *dayFacts
	worked := 0
	d := f.date
	for i := 0; i < LookbackDays; i++ {
		f = m.dayFacts(d)
		if f.info.IsWorkday {
			break
		}
		worked += WorkedMinutes(m.doc.WorkHours, f.on, f.off)
		if latest == nil && f.off != nil {
			latest = f
		}
		d = d.AddDays(-1)
	}

	if latest != nil && generic.MinutesToHours(worked).GreaterThanOrEqual(m.doc.Overtime.WeekendOvertimeThreshold) {
		return latest.off, len(latest.coverage.Overtime) > 0
	}
	if f.info.IsWorkday {
		return f.off, len(f.coverage.Overtime) > 0
	}
	return nil, false
}

func (m *monthRun) compute() (*EmployeeStats, error) {
	doc := m.doc
	emp := m.in.Employee

	stats := &EmployeeStats{
		EmployeeID:          emp.ID,
		Month:               m.in.Month,
		PolicyVersionID:     m.e.version.ID,
		Leave:               make(map[LeaveType]LeaveTotal),
		Penalty:             decimal.Zero,
		FullAttendanceBonus: decimal.Zero,
		ActualAttendDays:    decimal.Zero,
	}

	var (
		infos       []calendar.DayInfo
		occurrences []LateOccurrence
		otDays      []OvertimeDay
	)

	for _, date := range m.in.Month.Days() {
		f := m.dayFacts(date)
		infos = append(infos, f.info)
		employed := emp.EmployedOn(date)

		if m.in.pending(date) {
			stats.Days = append(stats.Days, DailyStatus{
				Date:       date,
				Status:     StatusPending,
				Day:        f.info,
				Employed:   employed,
				Records:    f.records,
				Coverage:   f.coverage,
				Attendance: decimal.Zero,
			})
			continue
		}

		var late *LateResult
		if employed && f.info.IsWorkday && f.on != nil {
			prev, approved := m.previousCheckout(date)
			res := EvaluateLate(doc, LateInput{
				PreviousCheckout: prev,
				PreviousApproved: approved,
				OnDuty:           *f.on,
				FirstDay:         date == emp.HireDate,
			})
			if end, ok := f.coverage.CoveredUntil(res.Threshold); ok {
				res.Minutes = LateAfter(doc.WorkHours, end, *f.on)
			} else if f.info.RemoteCovers(res.Threshold) {
				res.Minutes = 0
			}
			late = &res
		}

		ds := classifyDay(doc, f, late, employed)
		ds.Attendance = DayContribution(doc.AttendanceDays, ds)
		stats.ActualAttendDays = stats.ActualAttendDays.Add(ds.Attendance)
		stats.Days = append(stats.Days, ds)

		if ds.Flags.Late {
			occurrences = append(occurrences, LateOccurrence{Date: date, Minutes: ds.LateMinutes, OnDuty: *f.on})
			stats.Late.Count++
			stats.Late.Minutes += ds.LateMinutes
		}
		if ds.Flags.MissingOnDuty {
			stats.MissingCount++
		}
		if ds.Flags.MissingOffDuty {
			stats.MissingCount++
		}
		if ds.Flags.EarlyLeave {
			stats.EarlyLeaveCount++
		}
		if ds.Flags.Absenteeism {
			stats.AbsenteeismCount++
		}

		if !employed {
			continue
		}
		if f.info.IsWorkday {
			tallyLeave(stats, f.coverage)
		}
		otDays = append(otDays, OvertimeDay{Info: f.info, OnDuty: f.on, OffDuty: f.off, Approved: f.coverage.Overtime})
	}

	ex := TrackExemptions(doc.Exemption, occurrences)
	stats.Late.ForgivenCount = ex.ForgivenCount
	stats.Late.BillableCount = ex.BillableCount
	stats.Late.BillableMinutes = ex.BillableMinutes
	stats.Late.Occurrences = ex.Decisions
	stats.Penalty = CalculatePenalty(doc.Penalty, ex.Decisions)

	stats.Overtime = AggregateOvertime(doc, otDays)
	stats.ShouldAttendDays = CountShouldAttend(doc.AttendanceDays, infos, emp)

	fa, err := EvaluateFullAttendance(doc.FullAttendance, stats)
	if err != nil {
		return nil, &EvaluationError{EmployeeID: emp.ID, Err: err}
	}
	stats.FullAttendance = fa.Eligible
	stats.FullAttendanceBonus = fa.Bonus
	stats.Disqualified = fa.Disqualified

	return stats, nil
}

func tallyLeave(stats *EmployeeStats, cov Coverage) {
	for kind, hours := range cov.ByType {
		switch kind {
		case LeaveTrip:
			stats.TripDays++
		case LeaveOut:
			stats.OutDays++
		default:
			t := stats.Leave[kind]
			t.Count++
			t.Hours = t.Hours.Add(hours)
			stats.Leave[kind] = t
		}
	}
}
