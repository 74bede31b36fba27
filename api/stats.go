package api

import (
	"context"
	"fmt"

	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/calendar"
	"github.com/warp/attendance-engine/generic"
)

// =============================================================================
// MONTH COMPUTATION - Loads input snapshots and runs the engine
// =============================================================================

// windowStart is the first date a month's computation reads, so the
// late-rule lookback on the 1st sees the previous month's checkouts.
func windowStart(month generic.Month) generic.Date {
	return month.First().AddDays(-(attendance.LookbackDays + 1))
}

// engineFor builds an engine over the active policy version and the
// holidays the month and its lookback touch.
func (h *Handler) engineFor(ctx context.Context, month generic.Month) (*attendance.Engine, error) {
	v, err := h.Policies.Active(ctx)
	if err != nil {
		return nil, err
	}
	holidays, err := calendar.LoadMap(ctx, h.Store, windowStart(month), month.Last())
	if err != nil {
		return nil, fmt.Errorf("failed to load holidays: %w", err)
	}
	return attendance.NewEngine(*v, holidays,
		attendance.WithLocation(h.Location),
		attendance.WithLogger(h.Logger))
}

func (h *Handler) monthInput(ctx context.Context, emp attendance.Employee, month generic.Month) (attendance.MonthInput, error) {
	records, err := h.Store.LoadPunches(ctx, emp.ID, windowStart(month), month.Last())
	if err != nil {
		return attendance.MonthInput{}, fmt.Errorf("failed to load punches for %s: %w", emp.ID, err)
	}
	approvals, err := h.Store.LoadApprovals(ctx, attendance.ApprovalIDs(records))
	if err != nil {
		return attendance.MonthInput{}, fmt.Errorf("failed to load approvals for %s: %w", emp.ID, err)
	}
	return attendance.MonthInput{
		Employee:  emp,
		Month:     month,
		Records:   records,
		Approvals: approvals,
		AsOf:      h.today(),
	}, nil
}

// ComputeEmployee computes one employee-month under the active policy.
func (h *Handler) ComputeEmployee(ctx context.Context, id generic.EmployeeID, month generic.Month) (*attendance.EmployeeStats, error) {
	emp, err := h.Store.GetEmployee(ctx, id)
	if err != nil {
		return nil, err
	}
	engine, err := h.engineFor(ctx, month)
	if err != nil {
		return nil, err
	}
	in, err := h.monthInput(ctx, *emp, month)
	if err != nil {
		return nil, err
	}
	return engine.ComputeMonth(in)
}

// ComputeAll computes every employee in parallel. A failure to load one
// employee's inputs is reported in that employee's result.
func (h *Handler) ComputeAll(ctx context.Context, month generic.Month) (generic.VersionID, []attendance.BatchResult, error) {
	engine, err := h.engineFor(ctx, month)
	if err != nil {
		return "", nil, err
	}
	employees, err := h.Store.ListEmployees(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("failed to list employees: %w", err)
	}

	var (
		inputs     []attendance.MonthInput
		loadFailed []attendance.BatchResult
	)
	for _, emp := range employees {
		in, err := h.monthInput(ctx, emp, month)
		if err != nil {
			loadFailed = append(loadFailed, attendance.BatchResult{
				EmployeeID: emp.ID,
				Err:        &attendance.EvaluationError{EmployeeID: emp.ID, Err: err},
			})
			continue
		}
		inputs = append(inputs, in)
	}

	results := engine.ComputeBatch(ctx, inputs, h.Workers)
	return engine.VersionID(), append(results, loadFailed...), nil
}

// RefreshSnapshots computes month for every employee and persists each
// result. It returns how many employees failed.
func (h *Handler) RefreshSnapshots(ctx context.Context, month generic.Month) (saved, failed int, err error) {
	versionID, results, err := h.ComputeAll(ctx, month)
	if err != nil {
		return 0, 0, err
	}

	now := h.Now().UTC()
	for _, res := range results {
		snap := attendance.Snapshot{
			EmployeeID:      res.EmployeeID,
			Month:           month,
			PolicyVersionID: versionID,
			ComputedAt:      now,
			Stats:           res.Stats,
		}
		if res.Err != nil {
			snap.Error = res.Err.Error()
			failed++
		}
		if err := h.Store.SaveSnapshot(ctx, snap); err != nil {
			return saved, failed, fmt.Errorf("failed to save snapshot for %s: %w", res.EmployeeID, err)
		}
		saved++
	}
	return saved, failed, nil
}
