package attendance

import (
	"context"

	"github.com/warp/attendance-engine/generic"
)

// =============================================================================
// STORES - Input feeds and output snapshots
// =============================================================================

// PunchStore holds the punch feed. ReplaceDay swaps a day's record set
// atomically; records are otherwise only appended.
type PunchStore interface {
	AppendPunches(ctx context.Context, records []PunchRecord) error
	ReplaceDay(ctx context.Context, employeeID generic.EmployeeID, date generic.Date, records []PunchRecord) error
	LoadPunches(ctx context.Context, employeeID generic.EmployeeID, from, to generic.Date) ([]PunchRecord, error)
}

// ApprovalStore is the local copy of the approval system. LoadApprovals
// silently omits unknown IDs.
type ApprovalStore interface {
	UpsertApprovals(ctx context.Context, approvals []LeaveApproval) error
	LoadApprovals(ctx context.Context, ids []string) (ApprovalLookup, error)
}

// EmployeeStore returns generic.ErrEmployeeNotFound for unknown IDs.
type EmployeeStore interface {
	SaveEmployee(ctx context.Context, emp Employee) error
	GetEmployee(ctx context.Context, id generic.EmployeeID) (*Employee, error)
	ListEmployees(ctx context.Context) ([]Employee, error)
}

// StatsStore keeps computed stats for reporting. It is a cache; punches
// and the policy version remain the source of truth.
type StatsStore interface {
	SaveSnapshot(ctx context.Context, snap Snapshot) error
	LoadSnapshots(ctx context.Context, month generic.Month) ([]Snapshot, error)
}

// ApprovalIDs returns the distinct approval IDs linked from records, in
// first-seen order.
func ApprovalIDs(records []PunchRecord) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, r := range records {
		if r.ApprovalID == "" || seen[r.ApprovalID] {
			continue
		}
		seen[r.ApprovalID] = true
		ids = append(ids, r.ApprovalID)
	}
	return ids
}
