/*
Package calendar decides what kind of day a date is.

PURPOSE:
  Every attendance component starts by asking whether a date is a working
  day and whether it is a remote-work day for a given employee. The Resolver
  answers both from three inputs: the national holiday calendar, the
  policy's workday-swap overrides and the policy's remote-work entries.

PRECEDENCE (lowest to highest):
  1. Weekday default: Monday-Friday are workdays
  2. Holiday calendar: may turn a weekend into a workday or a weekday into
     a statutory holiday
  3. Workday swap: a custom day for the exact date always wins; it exists to
     correct bad automatic holiday data

REMOTE WORK:
  Independent of the workday decision. An entry matches a date exactly or
  through an RFC 5545 recurrence (teambition/rrule-go). When several entries
  match, the most specific scope wins: individual, then department, then
  all. Equal scopes go by list order.

SEE ALSO:
  - holidays.go: HolidayCalendar and HolidayStore
  - policy/document.go: WorkdaySwap and RemoteWork
*/
package calendar

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/teambition/rrule-go"
	"github.com/warp/attendance-engine/generic"
	"github.com/warp/attendance-engine/policy"
)

type Source string

const (
	SourceWeekday     Source = "weekday"
	SourceHoliday     Source = "holiday_calendar"
	SourceWorkdaySwap Source = "workday_swap"
)

// Scope identifies whose calendar is being resolved.
type Scope struct {
	EmployeeID   generic.EmployeeID
	DepartmentID generic.DepartmentID
}

type DayInfo struct {
	Date               generic.Date    `json:"date"`
	IsWorkday          bool            `json:"is_workday"`
	IsStatutoryHoliday bool            `json:"is_statutory_holiday"`
	HolidayName        string          `json:"holiday_name,omitempty"`
	WageMultiplier     decimal.Decimal `json:"wage_multiplier"`
	Source             Source          `json:"source"`

	IsRemote          bool               `json:"is_remote"`
	RemoteMode        policy.RemoteMode  `json:"remote_mode,omitempty"`
	RemoteWindowStart generic.ClockTime  `json:"remote_window_start,omitempty"`
	RemoteWindowEnd   generic.ClockTime  `json:"remote_window_end,omitempty"`
	RemoteScope       policy.RemoteScope `json:"remote_scope,omitempty"`
}

// RemoteCovers reports whether clock c is excused by the remote flag.
func (d DayInfo) RemoteCovers(c generic.ClockTime) bool {
	if !d.IsRemote {
		return false
	}
	if d.RemoteMode == policy.RemoteFullDay {
		return true
	}
	return c >= d.RemoteWindowStart && c < d.RemoteWindowEnd
}

// =============================================================================
// RESOLVER
// =============================================================================

type Resolver struct {
	holidays HolidayCalendar
	swaps    map[generic.Date]policy.CustomDay
	remote   []remoteEntry
}

type remoteEntry struct {
	day  policy.RemoteDay
	rule *rrule.RRule
}

// NewResolver compiles the remote-work recurrences once. holidays may be nil.
func NewResolver(holidays HolidayCalendar, swap policy.WorkdaySwap, remote policy.RemoteWork) (*Resolver, error) {
	if holidays == nil {
		holidays = HolidayMap{}
	}
	r := &Resolver{
		holidays: holidays,
		swaps:    make(map[generic.Date]policy.CustomDay),
	}

	if swap.Enabled {
		for _, cd := range swap.CustomDays {
			r.swaps[cd.Date] = cd
		}
	}

	if remote.Enabled {
		for i, rd := range remote.Days {
			entry := remoteEntry{day: rd}
			if rd.Recurrence != "" {
				rule, err := compileRecurrence(rd)
				if err != nil {
					return nil, fmt.Errorf("%w: remote_work.days[%d]: %v", generic.ErrInvalidPolicy, i, err)
				}
				entry.rule = rule
			}
			r.remote = append(r.remote, entry)
		}
	}
	return r, nil
}

func compileRecurrence(rd policy.RemoteDay) (*rrule.RRule, error) {
	opt, err := rrule.StrToROption(strings.TrimPrefix(rd.Recurrence, "RRULE:"))
	if err != nil {
		return nil, err
	}
	if !rd.Start.IsZero() {
		opt.Dtstart = rd.Start.Midnight(time.UTC)
	}
	return rrule.NewRRule(*opt)
}

// Resolve classifies date for scope.
func (r *Resolver) Resolve(date generic.Date, scope Scope) DayInfo {
	info := DayInfo{
		Date:           date,
		IsWorkday:      !date.IsWeekend(),
		WageMultiplier: decimal.NewFromInt(1),
		Source:         SourceWeekday,
	}

	if h, ok := r.holidays.Lookup(date); ok {
		info.IsWorkday = !h.Holiday
		info.IsStatutoryHoliday = h.Holiday
		info.HolidayName = h.Name
		info.Source = SourceHoliday
		if h.Holiday && h.WageMultiplier.IsPositive() {
			info.WageMultiplier = h.WageMultiplier
		}
	}

	if cd, ok := r.swaps[date]; ok {
		info.IsWorkday = cd.Type == policy.DayWorkday
		info.Source = SourceWorkdaySwap
		if info.IsWorkday {
			info.IsStatutoryHoliday = false
			info.WageMultiplier = decimal.NewFromInt(1)
		}
		if cd.Reason != "" {
			info.HolidayName = cd.Reason
		}
	}

	if rd, ok := r.matchRemote(date, scope); ok {
		info.IsRemote = true
		info.RemoteMode = rd.Mode
		info.RemoteScope = rd.Scope
		if rd.Mode == policy.RemoteHourWindow {
			info.RemoteWindowStart = rd.WindowStart
			info.RemoteWindowEnd = rd.WindowEnd
		}
	}
	return info
}

func (r *Resolver) matchRemote(date generic.Date, scope Scope) (policy.RemoteDay, bool) {
	var best policy.RemoteDay
	bestRank := 0
	for _, e := range r.remote {
		rank := scopeRank(e.day, scope)
		if rank <= bestRank || !e.occursOn(date) {
			continue
		}
		best, bestRank = e.day, rank
	}
	return best, bestRank > 0
}

// scopeRank is 0 when the entry does not apply to scope.
func scopeRank(rd policy.RemoteDay, scope Scope) int {
	switch rd.Scope {
	case policy.ScopeIndividual:
		if slices.Contains(rd.EmployeeIDs, scope.EmployeeID) {
			return 3
		}
	case policy.ScopeDepartment:
		if slices.Contains(rd.DepartmentIDs, scope.DepartmentID) {
			return 2
		}
	case policy.ScopeAll, "":
		return 1
	}
	return 0
}

func (e remoteEntry) occursOn(date generic.Date) bool {
	if e.day.Date != nil {
		return *e.day.Date == date
	}
	if e.rule == nil {
		return false
	}
	start := date.Midnight(time.UTC)
	end := start.Add(24*time.Hour - time.Nanosecond)
	return len(e.rule.Between(start, end, true)) > 0
}

