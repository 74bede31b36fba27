/*
Package attendance is the attendance computation engine.

PURPOSE:
  Turns raw punch events, leave approvals, the holiday calendar and one
  policy document version into per-day classifications and per-month
  EmployeeStats. Everything here is a pure function of its inputs: no I/O,
  no wall clock, no shared mutable state.

DATA FLOW (per employee-month):
  1. calendar.Resolver + ResolveCoverage classify each day
  2. EvaluateLate + AggregateOvertime consume punches and the classification
  3. TrackExemptions + CalculatePenalty fold late occurrences in date order
  4. EvaluateFullAttendance + attendance-day counting consume the totals

KEY CONCEPTS IN THIS FILE (types.go):
  - PunchRecord: One punch event, immutable once recorded
  - LeaveApproval: External leave/overtime/trip/out request, read by ID
  - Employee: Identity, department and employment window

SEE ALSO:
  - engine.go: Monthly aggregation
  - edit.go: Manual edit entry point
*/
package attendance

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/attendance-engine/generic"
)

// =============================================================================
// PUNCH RECORD
// =============================================================================

type CheckType string

const (
	OnDuty  CheckType = "OnDuty"
	OffDuty CheckType = "OffDuty"
)

type Source string

const (
	SourceDevice   Source = "device"
	SourceApproval Source = "approval"
	SourceManual   Source = "manual"
)

type TimeResult string

const (
	ResultNormal      TimeResult = "Normal"
	ResultLate        TimeResult = "Late"
	ResultEarly       TimeResult = "Early"
	ResultNotSigned   TimeResult = "NotSigned"
	ResultSeriousLate TimeResult = "SeriousLate"
	ResultAbsenteeism TimeResult = "Absenteeism"
)

// PunchRecord is one punch event. Edits replace a day's whole record set;
// a record is never mutated.
type PunchRecord struct {
	ID            string             `json:"id"`
	EmployeeID    generic.EmployeeID `json:"employee_id"`
	WorkDate      generic.Date       `json:"work_date"`
	CheckType     CheckType          `json:"check_type"`
	Source        Source             `json:"source"`
	UserCheckTime time.Time          `json:"user_check_time"`
	BaseCheckTime time.Time          `json:"base_check_time"`
	TimeResult    TimeResult         `json:"time_result"`
	ApprovalID    string             `json:"approval_id,omitempty"`
	Validated     bool               `json:"validated"`
}

// Punched reports whether the record is an actual clock-in or clock-out.
// Approval-sourced records and placeholders only carry links.
func (p PunchRecord) Punched() bool {
	if p.Source == SourceApproval {
		return false
	}
	return p.TimeResult != ResultNotSigned && p.TimeResult != ResultAbsenteeism
}

// Clock returns the punch as minutes since midnight of its work date.
// Cross-day checkouts exceed 24:00.
func (p PunchRecord) Clock(loc *time.Location) generic.ClockTime {
	return generic.ClockOf(p.WorkDate, p.UserCheckTime, loc)
}

// =============================================================================
// LEAVE APPROVAL
// =============================================================================

type BizType string

const (
	BizLeave    BizType = "leave"
	BizOvertime BizType = "overtime"
	BizTrip     BizType = "trip"
	BizOut      BizType = "out"
)

// LeaveType names a leave category. Trips and outings use their BizType as
// their LeaveType so coverage can total them alongside leave.
type LeaveType string

const (
	LeaveAnnual      LeaveType = "annual"
	LeavePersonal    LeaveType = "personal"
	LeaveSick        LeaveType = "sick"
	LeaveCompTime    LeaveType = "comp_time"
	LeaveMarriage    LeaveType = "marriage"
	LeaveMaternity   LeaveType = "maternity"
	LeavePaternity   LeaveType = "paternity"
	LeaveBereavement LeaveType = "bereavement"
	LeavePaid        LeaveType = "paid"
	LeaveTrip        LeaveType = "trip"
	LeaveOut         LeaveType = "out"
)

type DurationUnit string

const (
	UnitHour    DurationUnit = "hour"
	UnitHalfDay DurationUnit = "half_day"
	UnitDay     DurationUnit = "day"
)

type LeaveApproval struct {
	ID           string             `json:"id"`
	EmployeeID   generic.EmployeeID `json:"employee_id,omitempty"`
	BizType      BizType            `json:"biz_type"`
	LeaveType    LeaveType          `json:"leave_type,omitempty"`
	Start        time.Time          `json:"start"`
	End          time.Time          `json:"end"`
	Duration     decimal.Decimal    `json:"duration"`
	DurationUnit DurationUnit       `json:"duration_unit"`
}

// Kind is the category the approval is totalled under.
func (a LeaveApproval) Kind() LeaveType {
	switch a.BizType {
	case BizTrip:
		return LeaveTrip
	case BizOut:
		return LeaveOut
	}
	return a.LeaveType
}

// ApprovalLookup maps approval ID to approval. A missing ID is a data gap,
// never an error.
type ApprovalLookup map[string]LeaveApproval

// =============================================================================
// EMPLOYEE
// =============================================================================

type Employee struct {
	ID              generic.EmployeeID   `json:"id"`
	Name            string               `json:"name"`
	DepartmentID    generic.DepartmentID `json:"department_id,omitempty"`
	HireDate        generic.Date         `json:"hire_date"`
	TerminationDate *generic.Date        `json:"termination_date,omitempty"`
}

// EmployedOn reports whether d lies in the employment window.
func (e Employee) EmployedOn(d generic.Date) bool {
	if !e.HireDate.IsZero() && d.Before(e.HireDate) {
		return false
	}
	if e.TerminationDate != nil && d.After(*e.TerminationDate) {
		return false
	}
	return true
}
