package attendance

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/attendance-engine/generic"
	"github.com/warp/attendance-engine/policy"
)

// =============================================================================
// LEAVE COVERAGE - Which parts of a day are excused by approvals
// =============================================================================

// Coverage summarizes the approvals linked from one day's records.
type Coverage struct {
	// Approvals are the leave, trip and out approvals, deduplicated.
	Approvals []LeaveApproval `json:"approvals,omitempty"`
	// Overtime approvals never excuse a punch.
	Overtime []LeaveApproval `json:"overtime,omitempty"`

	Hours   decimal.Decimal               `json:"hours"`
	ByType  map[LeaveType]decimal.Decimal `json:"by_type,omitempty"`
	FullDay bool                          `json:"full_day"`
	HalfDay bool                          `json:"half_day"`

	spans []span
}

type span struct {
	start, end generic.ClockTime
}

// Covers reports whether clock c falls inside an approved interval.
func (c Coverage) Covers(at generic.ClockTime) bool {
	if c.FullDay {
		return true
	}
	for _, s := range c.spans {
		if at >= s.start && at < s.end {
			return true
		}
	}
	return false
}

// CoveredUntil returns the end of the approved stretch holding c, following
// back-to-back spans. A full-day coverage never ends.
func (c Coverage) CoveredUntil(at generic.ClockTime) (generic.ClockTime, bool) {
	if c.FullDay {
		return generic.MaxClock, true
	}
	end, found := at, false
	for extended := true; extended; {
		extended = false
		for _, s := range c.spans {
			if end >= s.start && end < s.end {
				end, found, extended = s.end, true, true
			}
		}
	}
	return end, found
}

// Dominant returns the kind with the most hours. Ties go to the
// alphabetically first kind.
func (c Coverage) Dominant() (LeaveType, bool) {
	var best LeaveType
	var bestHours decimal.Decimal
	found := false
	for _, k := range c.kinds() {
		h := c.ByType[k]
		if !found || h.GreaterThan(bestHours) {
			best, bestHours, found = k, h, true
		}
	}
	return best, found
}

func (c Coverage) kinds() []LeaveType {
	kinds := make([]LeaveType, 0, len(c.ByType))
	for k := range c.ByType {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// ResolveCoverage computes the day's coverage from the approvals its records
// link to. Unknown approval IDs and unvalidated manual labels are skipped.
//
// An approval spanning the whole work window counts fullDayHours; anything
// shorter counts its overlap with the window, lunch excluded. The total is
// clamped to fullDayHours.
func ResolveCoverage(
	day generic.Date,
	records []PunchRecord,
	approvals ApprovalLookup,
	hours policy.WorkHours,
	fullDayHours decimal.Decimal,
	loc *time.Location,
) Coverage {
	cov := Coverage{Hours: decimal.Zero}

	linked := make([]PunchRecord, 0, len(records))
	for _, r := range records {
		if r.Source == SourceManual && !r.Validated {
			continue
		}
		linked = append(linked, r)
	}

	for _, id := range ApprovalIDs(linked) {
		a, ok := approvals[id]
		if !ok {
			continue
		}
		if a.BizType == BizOvertime {
			cov.Overtime = append(cov.Overtime, a)
			continue
		}

		start := generic.ClockOf(day, a.Start, loc)
		end := generic.ClockOf(day, a.End, loc)
		if end <= start {
			continue
		}

		h := approvalHours(start, end, hours, fullDayHours)
		if !h.IsPositive() {
			continue
		}

		cov.Approvals = append(cov.Approvals, a)
		cov.spans = append(cov.spans, span{start: start, end: end})
		if cov.ByType == nil {
			cov.ByType = make(map[LeaveType]decimal.Decimal)
		}
		cov.ByType[a.Kind()] = decimal.Min(cov.ByType[a.Kind()].Add(h), fullDayHours)
		cov.Hours = cov.Hours.Add(h)
	}

	cov.Hours = decimal.Min(cov.Hours, fullDayHours)
	half := fullDayHours.Div(decimal.NewFromInt(2))
	cov.FullDay = cov.Hours.GreaterThanOrEqual(fullDayHours)
	cov.HalfDay = !cov.FullDay && cov.Hours.GreaterThanOrEqual(half)
	return cov
}

func approvalHours(start, end generic.ClockTime, hours policy.WorkHours, fullDayHours decimal.Decimal) decimal.Decimal {
	if start <= hours.OnDuty && end >= hours.OffDuty {
		return fullDayHours
	}
	s, e := max(start, hours.OnDuty), min(end, hours.OffDuty)
	if e <= s {
		return decimal.Zero
	}
	minutes := int(e-s) - generic.Overlap(s, e, hours.LunchStart, hours.LunchEnd)
	return generic.MinutesToHours(minutes)
}
