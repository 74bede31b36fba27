package attendance

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/attendance-engine/generic"
	"github.com/warp/attendance-engine/policy"
)

// =============================================================================
// EMPLOYEE STATS - Monthly output, recomputed from scratch every time
// =============================================================================

type LateStats struct {
	Count           int                 `json:"count"`
	Minutes         int                 `json:"minutes"`
	ForgivenCount   int                 `json:"forgiven_count"`
	BillableCount   int                 `json:"billable_count"`
	BillableMinutes int                 `json:"billable_minutes"`
	Occurrences     []ExemptionDecision `json:"occurrences"`
}

type LeaveTotal struct {
	Count int             `json:"count"`
	Hours decimal.Decimal `json:"hours"`
}

type EmployeeStats struct {
	EmployeeID      generic.EmployeeID `json:"employee_id"`
	Month           generic.Month      `json:"month"`
	PolicyVersionID generic.VersionID  `json:"policy_version_id"`

	Days []DailyStatus `json:"days"`

	Late             LateStats                `json:"late"`
	MissingCount     int                      `json:"missing_count"`
	EarlyLeaveCount  int                      `json:"early_leave_count"`
	AbsenteeismCount int                      `json:"absenteeism_count"`
	Leave            map[LeaveType]LeaveTotal `json:"leave"`
	TripDays         int                      `json:"trip_days"`
	OutDays          int                      `json:"out_days"`

	Overtime OvertimeStats   `json:"overtime"`
	Penalty  decimal.Decimal `json:"penalty"`

	FullAttendance      bool                        `json:"full_attendance"`
	FullAttendanceBonus decimal.Decimal             `json:"full_attendance_bonus"`
	Disqualified        []policy.FullAttendanceRule `json:"disqualified,omitempty"`

	ShouldAttendDays int             `json:"should_attend_days"`
	ActualAttendDays decimal.Decimal `json:"actual_attend_days"`
}

// LeaveHours totals leave hours for one type, or for every type when lt is "".
func (s *EmployeeStats) LeaveHours(lt LeaveType) decimal.Decimal {
	if lt != "" {
		return s.Leave[lt].Hours
	}
	total := decimal.Zero
	for _, t := range s.Leave {
		total = total.Add(t.Hours)
	}
	return total
}

// LeaveCount counts leave days for one type, or for every type when lt is "".
func (s *EmployeeStats) LeaveCount(lt LeaveType) int {
	if lt != "" {
		return s.Leave[lt].Count
	}
	total := 0
	for _, t := range s.Leave {
		total += t.Count
	}
	return total
}

// Snapshot is a persisted computation result. Exactly one of Stats and
// Error is set.
type Snapshot struct {
	EmployeeID      generic.EmployeeID `json:"employee_id"`
	Month           generic.Month      `json:"month"`
	PolicyVersionID generic.VersionID  `json:"policy_version_id"`
	ComputedAt      time.Time          `json:"computed_at"`
	Stats           *EmployeeStats     `json:"stats,omitempty"`
	Error           string             `json:"error,omitempty"`
}
