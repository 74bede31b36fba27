package attendance

import (
	"github.com/shopspring/decimal"
	"github.com/warp/attendance-engine/calendar"
	"github.com/warp/attendance-engine/generic"
	"github.com/warp/attendance-engine/policy"
)

// =============================================================================
// OVERTIME AGGREGATOR
// =============================================================================

type OvertimeBucket struct {
	Checkpoint generic.ClockTime `json:"checkpoint"`
	Count      int               `json:"count"`
	Minutes    int               `json:"minutes"`
}

type OvertimeStats struct {
	// Buckets has one entry per checkpoint, in checkpoint order.
	Buckets        []OvertimeBucket `json:"buckets"`
	WorkdayMinutes int              `json:"workday_minutes"`
	WeekendMinutes int              `json:"weekend_minutes"`
	HolidayMinutes int              `json:"holiday_minutes"`
	// HolidayWeightedMinutes applies each holiday's wage multiplier.
	HolidayWeightedMinutes decimal.Decimal `json:"holiday_weighted_minutes"`
	ApprovedHours          decimal.Decimal `json:"approved_hours"`
}

// OvertimeDay is the slice of a classified day the aggregator reads.
type OvertimeDay struct {
	Info     calendar.DayInfo
	OnDuty   *generic.ClockTime
	OffDuty  *generic.ClockTime
	Approved []LeaveApproval
}

// AggregateOvertime buckets workday checkouts past the end of the work day
// under the greatest checkpoint they reached, and totals non-workday work
// separately as weekend or holiday overtime.
func AggregateOvertime(doc *policy.Document, days []OvertimeDay) OvertimeStats {
	st := OvertimeStats{
		Buckets:                make([]OvertimeBucket, len(doc.Overtime.Checkpoints)),
		HolidayWeightedMinutes: decimal.Zero,
		ApprovedHours:          decimal.Zero,
	}
	for i, cp := range doc.Overtime.Checkpoints {
		st.Buckets[i].Checkpoint = cp
	}

	for _, d := range days {
		for _, a := range d.Approved {
			st.ApprovedHours = st.ApprovedHours.Add(approvedHours(a, doc.FullDayLeaveHours))
		}

		if !d.Info.IsWorkday {
			worked := WorkedMinutes(doc.WorkHours, d.OnDuty, d.OffDuty)
			if worked == 0 {
				continue
			}
			if d.Info.IsStatutoryHoliday {
				st.HolidayMinutes += worked
				st.HolidayWeightedMinutes = st.HolidayWeightedMinutes.Add(
					d.Info.WageMultiplier.Mul(decimal.NewFromInt(int64(worked))))
			} else {
				st.WeekendMinutes += worked
			}
			continue
		}

		if d.OffDuty == nil || *d.OffDuty <= doc.WorkHours.OffDuty {
			continue
		}
		minutes := int(*d.OffDuty - doc.WorkHours.OffDuty)
		st.WorkdayMinutes += minutes
		if i := bucketIndex(doc.Overtime.Checkpoints, *d.OffDuty); i >= 0 {
			st.Buckets[i].Count++
			st.Buckets[i].Minutes += minutes
		}
	}
	return st
}

// bucketIndex returns the greatest checkpoint not after off, or -1.
func bucketIndex(checkpoints []generic.ClockTime, off generic.ClockTime) int {
	idx := -1
	for i, cp := range checkpoints {
		if cp <= off {
			idx = i
		}
	}
	return idx
}

// WorkedMinutes is on to off minus lunch, zero unless both punches exist.
func WorkedMinutes(hours policy.WorkHours, on, off *generic.ClockTime) int {
	if on == nil || off == nil || *off <= *on {
		return 0
	}
	return int(*off-*on) - generic.Overlap(*on, *off, hours.LunchStart, hours.LunchEnd)
}

// approvedHours converts an overtime approval's duration to hours. Without a
// usable duration the approved interval itself is measured.
func approvedHours(a LeaveApproval, fullDay decimal.Decimal) decimal.Decimal {
	if a.Duration.IsPositive() {
		switch a.DurationUnit {
		case UnitHour:
			return a.Duration
		case UnitHalfDay:
			return a.Duration.Mul(fullDay).Div(decimal.NewFromInt(2))
		case UnitDay:
			return a.Duration.Mul(fullDay)
		}
	}
	if a.End.After(a.Start) {
		return decimal.NewFromFloat(a.End.Sub(a.Start).Hours()).Round(2)
	}
	return decimal.Zero
}
