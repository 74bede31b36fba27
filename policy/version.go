/*
version.go - Immutable policy versions and the active-version pointer

PURPOSE:
  A Document is never edited in place. Saving produces a new Version that
  stays addressable by ID forever, and the store keeps a single pointer to
  the version computations must use. Statistics record the VersionID that
  produced them, so a result can always be explained after later changes.

APPEND-ONLY CONTRACT:
  - InsertVersion(): the only write of document content
  - SetActiveVersion(): moves the pointer, never touches content
  - NO UpdateVersion() or DeleteVersion() methods exist
  Rolling back is Activate() on an older ID.

IMPLEMENTATIONS:
  - store/memory: In-memory for tests and development
  - store/sqlite: Persistent

SEE ALSO:
  - validate.go: Save rejects invalid documents before they are stored
*/
package policy

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/warp/attendance-engine/generic"
)

// =============================================================================
// VERSION
// =============================================================================

type Version struct {
	ID        generic.VersionID `json:"id"`
	Number    int               `json:"number"`
	Document  Document          `json:"document"`
	CreatedAt time.Time         `json:"created_at"`
	CreatedBy string            `json:"created_by,omitempty"`
}

// Clone returns a deep copy so callers can never mutate a stored document.
func (d Document) Clone() Document {
	out := d
	out.LateRules = slices.Clone(d.LateRules)
	out.Penalty.Ladder = slices.Clone(d.Penalty.Ladder)
	out.FullAttendance.Rules = slices.Clone(d.FullAttendance.Rules)
	out.LeaveDisplayRules = slices.Clone(d.LeaveDisplayRules)
	out.WorkdaySwap.CustomDays = slices.Clone(d.WorkdaySwap.CustomDays)
	out.Overtime.Checkpoints = slices.Clone(d.Overtime.Checkpoints)

	if d.RemoteWork.Days != nil {
		out.RemoteWork.Days = make([]RemoteDay, len(d.RemoteWork.Days))
		for i, rd := range d.RemoteWork.Days {
			c := rd
			if rd.Date != nil {
				date := *rd.Date
				c.Date = &date
			}
			c.DepartmentIDs = slices.Clone(rd.DepartmentIDs)
			c.EmployeeIDs = slices.Clone(rd.EmployeeIDs)
			out.RemoteWork.Days[i] = c
		}
	}
	return out
}

// =============================================================================
// STORE
// =============================================================================

// Store persists versions. GetVersion returns generic.ErrPolicyNotFound for
// unknown IDs; ActiveVersionID returns "" when nothing is active.
type Store interface {
	InsertVersion(ctx context.Context, v Version) error
	GetVersion(ctx context.Context, id generic.VersionID) (*Version, error)
	ListVersions(ctx context.Context) ([]Version, error)
	ActiveVersionID(ctx context.Context) (generic.VersionID, error)
	SetActiveVersion(ctx context.Context, id generic.VersionID) error
}

// =============================================================================
// MANAGER
// =============================================================================

// Manager is the only path by which a Document becomes active.
type Manager struct {
	store Store
	mu    sync.Mutex

	Now   func() time.Time
	NewID func() string
}

func NewManager(store Store) *Manager {
	return &Manager{
		store: store,
		Now:   time.Now,
		NewID: uuid.NewString,
	}
}

// Save validates doc, appends it as the next version and activates it.
// An invalid document leaves the current active version untouched.
func (m *Manager) Save(ctx context.Context, doc Document, author string) (*Version, error) {
	if err := Validate(doc); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	existing, err := m.store.ListVersions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list policy versions: %w", err)
	}

	v := Version{
		ID:        generic.VersionID(m.NewID()),
		Number:    len(existing) + 1,
		Document:  doc.Clone(),
		CreatedAt: m.Now().UTC(),
		CreatedBy: author,
	}
	if err := m.store.InsertVersion(ctx, v); err != nil {
		return nil, fmt.Errorf("failed to insert policy version: %w", err)
	}
	if err := m.store.SetActiveVersion(ctx, v.ID); err != nil {
		return nil, fmt.Errorf("failed to activate policy version: %w", err)
	}
	return &v, nil
}

// Activate points the active version at an existing ID (rollback).
func (m *Manager) Activate(ctx context.Context, id generic.VersionID) (*Version, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, err := m.store.GetVersion(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := Validate(v.Document); err != nil {
		return nil, err
	}
	if err := m.store.SetActiveVersion(ctx, id); err != nil {
		return nil, fmt.Errorf("failed to activate policy version: %w", err)
	}
	return v, nil
}

// Active returns the version computations must use.
func (m *Manager) Active(ctx context.Context) (*Version, error) {
	id, err := m.store.ActiveVersionID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read active policy version: %w", err)
	}
	if id == "" {
		return nil, generic.ErrNoActivePolicy
	}
	return m.store.GetVersion(ctx, id)
}

func (m *Manager) Get(ctx context.Context, id generic.VersionID) (*Version, error) {
	return m.store.GetVersion(ctx, id)
}

func (m *Manager) List(ctx context.Context) ([]Version, error) {
	return m.store.ListVersions(ctx)
}
