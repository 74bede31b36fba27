package calendar

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/warp/attendance-engine/generic"
)

// =============================================================================
// HOLIDAY CALENDAR - Externally supplied national calendar
// =============================================================================

// Holiday is one entry of the national calendar. Holiday=false on a weekend
// marks a make-up workday; Holiday=true on a weekday marks a statutory holiday.
type Holiday struct {
	Date           generic.Date    `json:"date"`
	Holiday        bool            `json:"holiday"`
	Name           string          `json:"name"`
	WageMultiplier decimal.Decimal `json:"wage_multiplier"`
}

// HolidayCalendar answers lookups by date. A missing entry is not an error;
// the resolver falls back to the weekday default.
type HolidayCalendar interface {
	Lookup(d generic.Date) (Holiday, bool)
}

type HolidayMap map[generic.Date]Holiday

func NewHolidayMap(entries []Holiday) HolidayMap {
	m := make(HolidayMap, len(entries))
	for _, h := range entries {
		m[h.Date] = h
	}
	return m
}

func (m HolidayMap) Lookup(d generic.Date) (Holiday, bool) {
	h, ok := m[d]
	return h, ok
}

// HolidayStore persists the calendar feed. UpsertHolidays replaces entries
// with the same date.
type HolidayStore interface {
	UpsertHolidays(ctx context.Context, entries []Holiday) error
	LoadHolidays(ctx context.Context, from, to generic.Date) ([]Holiday, error)
}

// LoadMap reads [from, to] from store into a HolidayMap.
func LoadMap(ctx context.Context, store HolidayStore, from, to generic.Date) (HolidayMap, error) {
	entries, err := store.LoadHolidays(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return NewHolidayMap(entries), nil
}
