package attendance

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/attendance-engine/generic"
	"github.com/warp/attendance-engine/policy"
)

// =============================================================================
// FULL-ATTENDANCE EVALUATOR
// =============================================================================

type FullAttendanceResult struct {
	Eligible     bool                        `json:"eligible"`
	Bonus        decimal.Decimal             `json:"bonus"`
	Disqualified []policy.FullAttendanceRule `json:"disqualified,omitempty"`
}

// EvaluateFullAttendance checks every enabled rule independently; any single
// failing rule disqualifies. A zero threshold disqualifies on any non-zero
// value, otherwise the value must exceed the threshold.
//
// With no rules configured the verdict is true unless the month has
// absenteeism or billable lateness. With rules configured but all disabled
// the verdict is always true.
func EvaluateFullAttendance(fa policy.FullAttendance, stats *EmployeeStats) (FullAttendanceResult, error) {
	res := FullAttendanceResult{Eligible: true, Bonus: decimal.Zero}

	if len(fa.Rules) == 0 {
		res.Eligible = stats.AbsenteeismCount == 0 && stats.Late.BillableCount == 0
	}

	for _, rule := range fa.Rules {
		if !rule.Enabled {
			continue
		}
		value, err := statValue(stats, rule)
		if err != nil {
			return FullAttendanceResult{}, err
		}
		if disqualifies(value, rule.Threshold) {
			res.Eligible = false
			res.Disqualified = append(res.Disqualified, rule)
		}
	}

	if res.Eligible {
		res.Bonus = fa.Bonus
	}
	return res, nil
}

func disqualifies(value, threshold decimal.Decimal) bool {
	if threshold.IsZero() {
		return !value.IsZero()
	}
	return value.GreaterThan(threshold)
}

func statValue(stats *EmployeeStats, rule policy.FullAttendanceRule) (decimal.Decimal, error) {
	count := func(n int) decimal.Decimal { return decimal.NewFromInt(int64(n)) }

	switch rule.Type {
	case policy.StatLate:
		switch rule.Unit {
		case policy.UnitCount:
			return count(stats.Late.BillableCount), nil
		case policy.UnitMinutes:
			return count(stats.Late.BillableMinutes), nil
		case policy.UnitHours:
			return generic.MinutesToHours(stats.Late.BillableMinutes), nil
		}
	case policy.StatMissing:
		if rule.Unit == policy.UnitCount {
			return count(stats.MissingCount), nil
		}
	case policy.StatAbsenteeism:
		if rule.Unit == policy.UnitCount {
			return count(stats.AbsenteeismCount), nil
		}
	case policy.StatEarlyLeave:
		if rule.Unit == policy.UnitCount {
			return count(stats.EarlyLeaveCount), nil
		}
	case policy.StatLeave:
		lt := LeaveType(rule.LeaveType)
		switch rule.Unit {
		case policy.UnitCount:
			return count(stats.LeaveCount(lt)), nil
		case policy.UnitHours:
			return stats.LeaveHours(lt), nil
		case policy.UnitMinutes:
			return stats.LeaveHours(lt).Mul(decimal.NewFromInt(60)), nil
		}
	}
	return decimal.Zero, fmt.Errorf("%w: %s in %s", generic.ErrUnknownStat, rule.Type, rule.Unit)
}
