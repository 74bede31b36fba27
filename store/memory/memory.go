// Package memory provides in-memory implementations of every store
// interface, for tests and local development.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/calendar"
	"github.com/warp/attendance-engine/generic"
	"github.com/warp/attendance-engine/policy"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

type Memory struct {
	mu sync.RWMutex

	versions []policy.Version
	active   generic.VersionID

	holidays  map[generic.Date]calendar.Holiday
	employees map[generic.EmployeeID]attendance.Employee
	punches   map[generic.EmployeeID]map[generic.Date][]attendance.PunchRecord
	punchIDs  map[string]bool
	approvals map[string]attendance.LeaveApproval
	snapshots map[snapshotKey]attendance.Snapshot
}

type snapshotKey struct {
	Month      generic.Month
	EmployeeID generic.EmployeeID
}

func New() *Memory {
	return &Memory{
		holidays:  make(map[generic.Date]calendar.Holiday),
		employees: make(map[generic.EmployeeID]attendance.Employee),
		punches:   make(map[generic.EmployeeID]map[generic.Date][]attendance.PunchRecord),
		punchIDs:  make(map[string]bool),
		approvals: make(map[string]attendance.LeaveApproval),
		snapshots: make(map[snapshotKey]attendance.Snapshot),
	}
}

var (
	_ policy.Store             = (*Memory)(nil)
	_ calendar.HolidayStore    = (*Memory)(nil)
	_ attendance.PunchStore    = (*Memory)(nil)
	_ attendance.ApprovalStore = (*Memory)(nil)
	_ attendance.EmployeeStore = (*Memory)(nil)
	_ attendance.StatsStore    = (*Memory)(nil)
)

// =============================================================================
// POLICY VERSIONS - Append-only
// =============================================================================

func (m *Memory) InsertVersion(_ context.Context, v policy.Version) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.versions {
		if existing.ID == v.ID {
			return fmt.Errorf("policy version %s already exists", v.ID)
		}
	}
	v.Document = v.Document.Clone()
	m.versions = append(m.versions, v)
	return nil
}

func (m *Memory) GetVersion(_ context.Context, id generic.VersionID) (*policy.Version, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, v := range m.versions {
		if v.ID == id {
			out := v
			out.Document = v.Document.Clone()
			return &out, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", generic.ErrPolicyNotFound, id)
}

func (m *Memory) ListVersions(_ context.Context) ([]policy.Version, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]policy.Version, len(m.versions))
	for i, v := range m.versions {
		out[i] = v
		out[i].Document = v.Document.Clone()
	}
	return out, nil
}

func (m *Memory) ActiveVersionID(_ context.Context) (generic.VersionID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active, nil
}

func (m *Memory) SetActiveVersion(_ context.Context, id generic.VersionID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, v := range m.versions {
		if v.ID == id {
			m.active = id
			return nil
		}
	}
	return fmt.Errorf("%w: %s", generic.ErrPolicyNotFound, id)
}

// =============================================================================
// HOLIDAYS
// =============================================================================

func (m *Memory) UpsertHolidays(_ context.Context, entries []calendar.Holiday) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, h := range entries {
		m.holidays[h.Date] = h
	}
	return nil
}

func (m *Memory) LoadHolidays(_ context.Context, from, to generic.Date) ([]calendar.Holiday, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []calendar.Holiday
	for d, h := range m.holidays {
		if d.AfterOrEqual(from) && d.BeforeOrEqual(to) {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func (m *Memory) SaveEmployee(_ context.Context, emp attendance.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees[emp.ID] = emp
	return nil
}

func (m *Memory) GetEmployee(_ context.Context, id generic.EmployeeID) (*attendance.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	emp, ok := m.employees[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", generic.ErrEmployeeNotFound, id)
	}
	return &emp, nil
}

func (m *Memory) ListEmployees(_ context.Context) ([]attendance.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]attendance.Employee, 0, len(m.employees))
	for _, emp := range m.employees {
		out = append(out, emp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// =============================================================================
// PUNCHES - Append, or replace a whole day
// =============================================================================

// AppendPunches skips records whose ID is already stored, so a feed can be
// replayed.
func (m *Memory) AppendPunches(_ context.Context, records []attendance.PunchRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range records {
		if r.ID == "" {
			return fmt.Errorf("%w: record without id", generic.ErrCorruptPunch)
		}
	}
	for _, r := range records {
		if m.punchIDs[r.ID] {
			continue
		}
		days := m.dayLocked(r.EmployeeID)
		days[r.WorkDate] = append(days[r.WorkDate], r)
		m.punchIDs[r.ID] = true
	}
	return nil
}

// ReplaceDay swaps the day's record set in one step. Every record must
// belong to the given employee and date.
func (m *Memory) ReplaceDay(_ context.Context, employeeID generic.EmployeeID, date generic.Date, records []attendance.PunchRecord) error {
	for _, r := range records {
		if r.EmployeeID != employeeID || r.WorkDate != date {
			return fmt.Errorf("%w: record %s is not for %s on %s", generic.ErrCorruptPunch, r.ID, employeeID, date)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	days := m.dayLocked(employeeID)
	for _, old := range days[date] {
		delete(m.punchIDs, old.ID)
	}
	days[date] = slices.Clone(records)
	for _, r := range records {
		m.punchIDs[r.ID] = true
	}
	return nil
}

func (m *Memory) LoadPunches(_ context.Context, employeeID generic.EmployeeID, from, to generic.Date) ([]attendance.PunchRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	days := m.punches[employeeID]
	var out []attendance.PunchRecord
	for d := from; d.BeforeOrEqual(to); d = d.AddDays(1) {
		out = append(out, days[d]...)
	}
	return out, nil
}

func (m *Memory) dayLocked(employeeID generic.EmployeeID) map[generic.Date][]attendance.PunchRecord {
	days, ok := m.punches[employeeID]
	if !ok {
		days = make(map[generic.Date][]attendance.PunchRecord)
		m.punches[employeeID] = days
	}
	return days
}

// =============================================================================
// APPROVALS
// =============================================================================

func (m *Memory) UpsertApprovals(_ context.Context, approvals []attendance.LeaveApproval) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range approvals {
		m.approvals[a.ID] = a
	}
	return nil
}

func (m *Memory) LoadApprovals(_ context.Context, ids []string) (attendance.ApprovalLookup, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(attendance.ApprovalLookup, len(ids))
	for _, id := range ids {
		if a, ok := m.approvals[id]; ok {
			out[id] = a
		}
	}
	return out, nil
}

// =============================================================================
// STATS SNAPSHOTS - Last write per employee-month wins
// =============================================================================

func (m *Memory) SaveSnapshot(_ context.Context, snap attendance.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[snapshotKey{Month: snap.Month, EmployeeID: snap.EmployeeID}] = snap
	return nil
}

func (m *Memory) LoadSnapshots(_ context.Context, month generic.Month) ([]attendance.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []attendance.Snapshot
	for k, s := range m.snapshots {
		if k.Month == month {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeID < out[j].EmployeeID })
	return out, nil
}
