package attendance

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/warp/attendance-engine/generic"
	"github.com/warp/attendance-engine/policy"
)

// =============================================================================
// MANUAL EDIT - Builds a replacement record set for one day
// =============================================================================

type EditLabel string

const (
	EditNormal  EditLabel = "normal"
	EditCleared EditLabel = "cleared"
	EditAbsent  EditLabel = "absent"
	EditLeave   EditLabel = "leave"
	EditTrip    EditLabel = "trip"
	EditOut     EditLabel = "out"
)

type EditRequest struct {
	EmployeeID generic.EmployeeID `json:"employee_id"`
	Date       generic.Date       `json:"date"`
	Label      EditLabel          `json:"label"`
	LeaveType  LeaveType          `json:"leave_type,omitempty"`
	OnDuty     *generic.ClockTime `json:"on_duty,omitempty"`
	OffDuty    *generic.ClockTime `json:"off_duty,omitempty"`
	ApprovalID string             `json:"approval_id,omitempty"`
}

// Editor turns an edit request into the records that replace the day. The
// host persists them with PunchStore.ReplaceDay.
type Editor struct {
	hours policy.WorkHours
	loc   *time.Location

	NewID func() string
}

func NewEditor(hours policy.WorkHours, loc *time.Location) *Editor {
	if loc == nil {
		loc = time.UTC
	}
	return &Editor{hours: hours, loc: loc, NewID: uuid.NewString}
}

// BuildDay returns the replacement record set:
//   - cleared: NotSigned placeholders for both check types
//   - absent: Absenteeism placeholders for both check types
//   - normal: signed records at the override times or the policy's work hours
//   - leave, trip, out: unsigned records linked to ApprovalID, validated only
//     when the ID resolves to an approval of the matching kind
func (ed *Editor) BuildDay(req EditRequest, approvals ApprovalLookup) ([]PunchRecord, error) {
	if err := ed.check(req); err != nil {
		return nil, err
	}

	switch req.Label {
	case EditCleared:
		return ed.placeholders(req, ResultNotSigned), nil
	case EditAbsent:
		return ed.placeholders(req, ResultAbsenteeism), nil
	case EditNormal:
		return ed.signed(req), nil
	default:
		return ed.linked(req, approvals), nil
	}
}

func (ed *Editor) check(req EditRequest) error {
	if req.EmployeeID == "" {
		return fmt.Errorf("%w: employee_id is required", generic.ErrInvalidEdit)
	}
	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", generic.ErrInvalidEdit)
	}
	switch req.Label {
	case EditNormal:
		on, off := ed.times(req)
		if off <= on {
			return fmt.Errorf("%w: off_duty %s must be after on_duty %s", generic.ErrInvalidEdit, off, on)
		}
	case EditCleared, EditAbsent, EditLeave, EditTrip, EditOut:
		if req.OnDuty != nil || req.OffDuty != nil {
			return fmt.Errorf("%w: clock overrides only apply to label %q", generic.ErrInvalidEdit, EditNormal)
		}
	default:
		return fmt.Errorf("%w: unknown label %q", generic.ErrInvalidEdit, req.Label)
	}
	return nil
}

func (ed *Editor) times(req EditRequest) (on, off generic.ClockTime) {
	on, off = ed.hours.OnDuty, ed.hours.OffDuty
	if req.OnDuty != nil {
		on = *req.OnDuty
	}
	if req.OffDuty != nil {
		off = *req.OffDuty
	}
	return on, off
}

func (ed *Editor) record(req EditRequest, ct CheckType) PunchRecord {
	base := ed.hours.OnDuty
	if ct == OffDuty {
		base = ed.hours.OffDuty
	}
	return PunchRecord{
		ID:            ed.NewID(),
		EmployeeID:    req.EmployeeID,
		WorkDate:      req.Date,
		CheckType:     ct,
		Source:        SourceManual,
		BaseCheckTime: req.Date.At(base, ed.loc),
		Validated:     true,
	}
}

func (ed *Editor) placeholders(req EditRequest, result TimeResult) []PunchRecord {
	on, off := ed.record(req, OnDuty), ed.record(req, OffDuty)
	on.TimeResult, off.TimeResult = result, result
	return []PunchRecord{on, off}
}

func (ed *Editor) signed(req EditRequest) []PunchRecord {
	onAt, offAt := ed.times(req)
	on, off := ed.record(req, OnDuty), ed.record(req, OffDuty)
	on.UserCheckTime, on.TimeResult = req.Date.At(onAt, ed.loc), ResultNormal
	off.UserCheckTime, off.TimeResult = req.Date.At(offAt, ed.loc), ResultNormal
	return []PunchRecord{on, off}
}

func (ed *Editor) linked(req EditRequest, approvals ApprovalLookup) []PunchRecord {
	validated := false
	if a, ok := approvals[req.ApprovalID]; ok && req.ApprovalID != "" {
		validated = a.BizType == labelBizType(req.Label) &&
			(a.EmployeeID == "" || a.EmployeeID == req.EmployeeID) &&
			(req.LeaveType == "" || req.Label != EditLeave || a.LeaveType == req.LeaveType)
	}

	recs := ed.placeholders(req, ResultNotSigned)
	for i := range recs {
		recs[i].ApprovalID = req.ApprovalID
		recs[i].Validated = validated
	}
	return recs
}

func labelBizType(l EditLabel) BizType {
	switch l {
	case EditTrip:
		return BizTrip
	case EditOut:
		return BizOut
	}
	return BizLeave
}
