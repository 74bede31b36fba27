package policy_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/attendance-engine/factory"
	"github.com/warp/attendance-engine/generic"
	"github.com/warp/attendance-engine/policy"
	"github.com/warp/attendance-engine/store/memory"
)

func newManager() *policy.Manager {
	m := policy.NewManager(memory.New())
	n := 0
	m.NewID = func() string {
		n++
		return fmt.Sprintf("v%d", n)
	}
	m.Now = func() time.Time { return time.Date(2024, 11, 1, 9, 0, 0, 0, time.UTC) }
	return m
}

func TestManager_NoActiveVersion(t *testing.T) {
	_, err := newManager().Active(context.Background())
	assert.ErrorIs(t, err, generic.ErrNoActivePolicy)
}

func TestManager_SaveAppendsAndActivates(t *testing.T) {
	ctx := context.Background()
	m := newManager()

	v1, err := m.Save(ctx, factory.StandardOffice("hq"), "hr@example.com")
	require.NoError(t, err)
	assert.Equal(t, generic.VersionID("v1"), v1.ID)
	assert.Equal(t, 1, v1.Number)

	doc := factory.StandardOffice("hq")
	doc.FullAttendance.Bonus = decimal.NewFromInt(300)
	v2, err := m.Save(ctx, doc, "hr@example.com")
	require.NoError(t, err)
	assert.Equal(t, 2, v2.Number)

	active, err := m.Active(ctx)
	require.NoError(t, err)
	assert.Equal(t, v2.ID, active.ID)

	// Version 1 keeps its content
	old, err := m.Get(ctx, v1.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(200).Equal(old.Document.FullAttendance.Bonus))

	all, err := m.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestManager_InvalidSaveKeepsActiveVersion(t *testing.T) {
	ctx := context.Background()
	m := newManager()
	v1, err := m.Save(ctx, factory.StandardOffice("hq"), "")
	require.NoError(t, err)

	// GIVEN: A ladder with overlapping tiers
	bad := factory.StandardOffice("hq")
	bad.Penalty.Ladder[1].Min = 2

	// WHEN
	_, err = m.Save(ctx, bad, "")

	// THEN: Rejected, nothing appended, v1 still active
	assert.ErrorIs(t, err, generic.ErrInvalidPolicy)
	all, _ := m.List(ctx)
	assert.Len(t, all, 1)
	active, err := m.Active(ctx)
	require.NoError(t, err)
	assert.Equal(t, v1.ID, active.ID)
}

func TestManager_ActivateRollsBack(t *testing.T) {
	ctx := context.Background()
	m := newManager()
	v1, _ := m.Save(ctx, factory.StandardOffice("hq"), "")
	_, _ = m.Save(ctx, factory.Minimal("hq"), "")

	got, err := m.Activate(ctx, v1.ID)
	require.NoError(t, err)
	assert.Equal(t, v1.ID, got.ID)

	active, _ := m.Active(ctx)
	assert.Equal(t, v1.ID, active.ID)

	_, err = m.Activate(ctx, "missing")
	assert.ErrorIs(t, err, generic.ErrPolicyNotFound)
}

func TestManager_StoredDocumentIsImmutable(t *testing.T) {
	ctx := context.Background()
	m := newManager()
	doc := factory.StandardOffice("hq")
	v, err := m.Save(ctx, doc, "")
	require.NoError(t, err)

	doc.LateRules[0].LateThresholdTime = generic.Clock(12, 0)
	v.Document.LateRules[0].LateThresholdTime = generic.Clock(12, 0)

	stored, err := m.Get(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, generic.Clock(9, 1), stored.Document.LateRules[0].LateThresholdTime)
}
