package generic

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// DATE - A calendar day (comparable, usable as map key)
// =============================================================================

// Date is a calendar day without time-of-day or location.
type Date struct {
	y int
	m time.Month
	d int
}

const dateLayout = "2006-01-02"

// NewDate normalizes out-of-range values the way time.Date does (Jan 32 -> Feb 1).
func NewDate(year int, month time.Month, day int) Date {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return Date{y: t.Year(), m: t.Month(), d: t.Day()}
}

// DateOf returns the calendar day of t in its own location.
func DateOf(t time.Time) Date {
	return Date{y: t.Year(), m: t.Month(), d: t.Day()}
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateOf(t), nil
}

func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func Today(loc *time.Location) Date { return DateOf(time.Now().In(loc)) }

// Comparison
func (d Date) utc() time.Time            { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }
func (d Date) Before(other Date) bool    { return d.utc().Before(other.utc()) }
func (d Date) After(other Date) bool     { return d.utc().After(other.utc()) }
func (d Date) Equal(other Date) bool     { return d == other }
func (d Date) BeforeOrEqual(o Date) bool { return !d.After(o) }
func (d Date) AfterOrEqual(o Date) bool  { return !d.Before(o) }
func (d Date) IsZero() bool              { return d == Date{} }

// Arithmetic
func (d Date) AddDays(n int) Date { return NewDate(d.y, d.m, d.d+n) }

// Properties
func (d Date) Year() int              { return d.y }
func (d Date) Month() time.Month      { return d.m }
func (d Date) Day() int               { return d.d }
func (d Date) Weekday() time.Weekday  { return d.utc().Weekday() }
func (d Date) IsWeekend() bool        { wd := d.Weekday(); return wd == time.Saturday || wd == time.Sunday }
func (d Date) InMonth() Month         { return Month{Year: d.y, Month: d.m} }
func (d Date) String() string         { return d.utc().Format(dateLayout) }

// Midnight returns the start of the day in loc.
func (d Date) Midnight(loc *time.Location) time.Time {
	return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, loc)
}

// At returns the instant at clock c on this day in loc. Clocks past 24:00 land
// on the following day.
func (d Date) At(c ClockTime, loc *time.Location) time.Time {
	return d.Midnight(loc).Add(time.Duration(c) * time.Minute)
}

// MarshalText renders the zero Date as "" so it survives a round trip.
func (d Date) MarshalText() ([]byte, error) {
	if d.IsZero() {
		return []byte{}, nil
	}
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DaysBetween returns the number of days from -> to (negative if to is earlier).
func DaysBetween(from, to Date) int {
	return int(to.utc().Sub(from.utc()).Hours() / 24)
}

// =============================================================================
// MONTH - The accounting period for EmployeeStats
// =============================================================================

type Month struct {
	Year  int
	Month time.Month
}

func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q: %w", s, err)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

func (m Month) First() Date { return NewDate(m.Year, m.Month, 1) }
func (m Month) Last() Date  { return NewDate(m.Year, m.Month+1, 0) }

func (m Month) Contains(d Date) bool {
	return d.Year() == m.Year && d.Month() == m.Month
}

// Days returns every day of the month in order.
func (m Month) Days() []Date {
	var days []Date
	for d := m.First(); m.Contains(d); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}

func (m Month) String() string { return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month)) }

func (m Month) IsZero() bool { return m == Month{} }

func (m Month) MarshalText() ([]byte, error) {
	if m.IsZero() {
		return []byte{}, nil
	}
	return []byte(m.String()), nil
}

func (m *Month) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*m = Month{}
		return nil
	}
	parsed, err := ParseMonth(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// =============================================================================
// CLOCK TIME - Minutes since the work date's midnight
// =============================================================================

// ClockTime is a wall-clock time expressed as minutes since midnight of a work
// date. "24:00" is EndOfDay; values above it describe cross-day punches
// (01:30 the next morning is 25:30 for the previous work date).
type ClockTime int

const (
	EndOfDay ClockTime = 24 * 60
	MaxClock ClockTime = 48 * 60
)

func Clock(hour, minute int) ClockTime { return ClockTime(hour*60 + minute) }

// ParseClock parses "HH:MM" with hours 0-48.
func ParseClock(s string) (ClockTime, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 || h < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	c := Clock(h, m)
	if c > MaxClock {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	return c, nil
}

func MustParseClock(s string) ClockTime {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

// ClockOf returns t as minutes since midnight of day in loc. The result may be
// negative or exceed EndOfDay when t lies on a neighbouring day.
func ClockOf(day Date, t time.Time, loc *time.Location) ClockTime {
	return ClockTime(t.In(loc).Sub(day.Midnight(loc)) / time.Minute)
}

func (c ClockTime) Hour() int   { return int(c) / 60 }
func (c ClockTime) Minute() int { return int(c) % 60 }

func (c ClockTime) String() string { return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute()) }

func (c ClockTime) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *ClockTime) UnmarshalText(b []byte) error {
	parsed, err := ParseClock(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Overlap returns the minutes shared by [aStart, aEnd) and [bStart, bEnd).
func Overlap(aStart, aEnd, bStart, bEnd ClockTime) int {
	start, end := max(aStart, bStart), min(aEnd, bEnd)
	if end <= start {
		return 0
	}
	return int(end - start)
}
