package attendance

import (
	"github.com/shopspring/decimal"
	"github.com/warp/attendance-engine/calendar"
	"github.com/warp/attendance-engine/generic"
	"github.com/warp/attendance-engine/policy"
)

// =============================================================================
// DAILY CLASSIFIER
// =============================================================================

type Status string

const (
	StatusNormal     Status = "normal"
	StatusAbnormal   Status = "abnormal"
	StatusIncomplete Status = "incomplete"
	StatusNoRecord   Status = "no_record"
	// StatusPending marks a day after the evaluation cutoff.
	StatusPending Status = "pending"
)

type DayFlags struct {
	Late           bool `json:"late"`
	MissingOnDuty  bool `json:"missing_on_duty"`
	MissingOffDuty bool `json:"missing_off_duty"`
	EarlyLeave     bool `json:"early_leave"`
	Absenteeism    bool `json:"absenteeism"`
}

// DailyStatus is derived entirely from the day's records, the policy and
// leave coverage. It is never authored by hand.
type DailyStatus struct {
	Date     generic.Date     `json:"date"`
	Status   Status           `json:"status"`
	Day      calendar.DayInfo `json:"day"`
	Employed bool             `json:"employed"`

	Records  []PunchRecord      `json:"records"`
	OnDuty   *generic.ClockTime `json:"on_duty,omitempty"`
	OffDuty  *generic.ClockTime `json:"off_duty,omitempty"`
	Coverage Coverage           `json:"coverage"`

	Late          *LateResult `json:"late,omitempty"`
	LateMinutes   int         `json:"late_minutes"`
	Flags         DayFlags    `json:"flags"`
	LeaveLabel    string      `json:"leave_label,omitempty"`
	WorkedMinutes int         `json:"worked_minutes"`

	Attendance decimal.Decimal `json:"attendance"`
}

// dayFacts is everything known about a day before lateness is decided.
type dayFacts struct {
	date     generic.Date
	info     calendar.DayInfo
	records  []PunchRecord
	on, off  *generic.ClockTime
	coverage Coverage
}

// excused reports whether clock c needs no punch: covered by an approval or
// inside a remote-work window.
func (f *dayFacts) excused(c generic.ClockTime) bool {
	return f.coverage.Covers(c) || f.info.RemoteCovers(c)
}

// classifyDay applies the status rules. On a workday: both punches with no
// lateness or early leave is normal; lateness or early leave is abnormal;
// one unexcused missing punch is incomplete; no punches and nothing excused
// is absenteeism. Non-workdays are never abnormal.
func classifyDay(doc *policy.Document, f *dayFacts, late *LateResult, employed bool) DailyStatus {
	ds := DailyStatus{
		Date:          f.date,
		Day:           f.info,
		Employed:      employed,
		Records:       f.records,
		OnDuty:        f.on,
		OffDuty:       f.off,
		Coverage:      f.coverage,
		WorkedMinutes: WorkedMinutes(doc.WorkHours, f.on, f.off),
		LeaveLabel:    leaveLabel(doc.LeaveDisplayRules, f.coverage),
		Attendance:    decimal.Zero,
	}

	if !employed || !f.info.IsWorkday {
		ds.Status = StatusNoRecord
		if f.on != nil || f.off != nil {
			ds.Status = StatusNormal
		}
		return ds
	}

	wh := doc.WorkHours
	missingOn := f.on == nil && !f.excused(wh.OnDuty)
	missingOff := f.off == nil && !f.excused(wh.OffDuty-1)

	if f.on == nil && f.off == nil && missingOn && missingOff {
		ds.Status = StatusNoRecord
		ds.Flags.Absenteeism = true
		return ds
	}

	ds.Flags.MissingOnDuty = missingOn
	ds.Flags.MissingOffDuty = missingOff

	if late != nil {
		ds.Late = late
		ds.LateMinutes = late.Minutes
		ds.Flags.Late = late.Minutes > 0
	}

	if f.off != nil && *f.off < wh.OffDuty {
		resume := *f.off
		if resume >= wh.LunchStart && resume < wh.LunchEnd {
			resume = wh.LunchEnd
		}
		ds.Flags.EarlyLeave = resume < wh.OffDuty && !f.excused(resume)
	}

	switch {
	case ds.Flags.Late || ds.Flags.EarlyLeave:
		ds.Status = StatusAbnormal
	case ds.Flags.MissingOnDuty || ds.Flags.MissingOffDuty:
		ds.Status = StatusIncomplete
	default:
		ds.Status = StatusNormal
	}
	return ds
}

// leaveLabel returns the label of the first display rule whose leave type is
// on the day and whose hour range holds that type's hours. A zero MaxHours
// leaves the range open.
func leaveLabel(rules []policy.LeaveDisplayRule, cov Coverage) string {
	for _, r := range rules {
		h, ok := cov.ByType[LeaveType(r.LeaveType)]
		if !ok {
			continue
		}
		if h.LessThan(r.MinHours) {
			continue
		}
		if r.MaxHours.IsPositive() && h.GreaterThan(r.MaxHours) {
			continue
		}
		return r.Label
	}
	return ""
}
