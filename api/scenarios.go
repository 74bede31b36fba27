/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the stores with a realistic
	month of attendance data. Each scenario activates a policy, creates
	employees and feeds punches, approvals and holidays that exercise a
	specific part of the engine.

AVAILABLE SCENARIOS (all in November 2024):

	standard-office:    Head-office rules, one punctual and one late employee
	leave-and-overtime: Annual leave, approved late nights, cross-day checkout
	holiday-swap:       Statutory holiday plus a weekend make-up workday

HOW SCENARIOS WORK:
 1. Save the scenario's policy document (becomes the active version)
 2. Create employees
 3. Feed holidays and approvals
 4. Append punch records (replays are no-ops, record IDs are fixed)

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "standard-office"}

	GET /api/stats?month=2024-11

NOTE:

	Stores are append-only, so loading a scenario never deletes data. Each
	scenario uses its own employee IDs.

SEE ALSO:
  - handlers.go: Feed handlers the loaders mirror
  - factory/presets.go: Policy documents
*/
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/calendar"
	"github.com/warp/attendance-engine/factory"
	"github.com/warp/attendance-engine/generic"
)

// scenarioMonth is the month every scenario fills.
var scenarioMonth = generic.Month{Year: 2024, Month: time.November}

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "standard-office",
		Name:        "Standard Office",
		Description: "Head-office rules: a punctual employee and one who uses the exemption quota",
		Month:       scenarioMonth.String(),
	},
	{
		ID:          "leave-and-overtime",
		Name:        "Leave and Overtime",
		Description: "Annual leave day, approved late nights and a cross-day checkout",
		Month:       scenarioMonth.String(),
	},
	{
		ID:          "holiday-swap",
		Name:        "Holiday Swap",
		Description: "Statutory holiday on Nov 11 with Saturday Nov 9 worked as a make-up day",
		Month:       scenarioMonth.String(),
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the last loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario loads a scenario by ID.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	if !knownScenario(req.ScenarioID) {
		writeError(w, http.StatusNotFound, "Unknown scenario", fmt.Errorf("scenario %q not found", req.ScenarioID))
		return
	}
	if err := h.loadScenario(r.Context(), req.ScenarioID); err != nil {
		writeDomainError(w, "Failed to load scenario", err)
		return
	}

	h.Logger.Info("scenario loaded", "scenario", req.ScenarioID)
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "loaded",
		"scenario": req.ScenarioID,
		"month":    scenarioMonth.String(),
	})
}

func knownScenario(id string) bool {
	for _, s := range scenarios {
		if s.ID == id {
			return true
		}
	}
	return false
}

func (h *Handler) loadScenario(ctx context.Context, id string) error {
	var err error
	switch id {
	case "standard-office":
		err = h.loadStandardOfficeScenario(ctx)
	case "leave-and-overtime":
		err = h.loadLeaveAndOvertimeScenario(ctx)
	case "holiday-swap":
		err = h.loadHolidaySwapScenario(ctx)
	default:
		return fmt.Errorf("unknown scenario %q", id)
	}
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.currentScenario = id
	h.mu.Unlock()
	return nil
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

// loadStandardOfficeScenario: alice is always on time; bob is late four
// Tuesdays, three within the exemption quota.
func (h *Handler) loadStandardOfficeScenario(ctx context.Context) error {
	if _, err := h.Policies.Save(ctx, factory.StandardOffice("Head office"), "scenario"); err != nil {
		return err
	}

	alice := attendance.Employee{ID: "so-alice", Name: "Alice Chen", DepartmentID: "eng", HireDate: generic.MustParseDate("2022-03-01")}
	bob := attendance.Employee{ID: "so-bob", Name: "Bob Li", DepartmentID: "ops", HireDate: generic.MustParseDate("2023-07-17")}
	if err := h.saveEmployees(ctx, alice, bob); err != nil {
		return err
	}

	lateOn := map[string]generic.ClockTime{
		"2024-11-05": generic.Clock(9, 6),
		"2024-11-12": generic.Clock(9, 10),
		"2024-11-19": generic.Clock(9, 4),
		"2024-11-26": generic.Clock(9, 35),
	}
	records := h.monthOfPunches(alice.ID, nil, func(generic.Date) (generic.ClockTime, generic.ClockTime) {
		return generic.Clock(8, 52), generic.Clock(18, 40)
	})
	records = append(records, h.monthOfPunches(bob.ID, nil, func(d generic.Date) (generic.ClockTime, generic.ClockTime) {
		if c, ok := lateOn[d.String()]; ok {
			return c, generic.Clock(18, 45)
		}
		return generic.Clock(8, 58), generic.Clock(18, 35)
	})...)
	return h.Store.AppendPunches(ctx, records)
}

// loadLeaveAndOvertimeScenario: carol takes Nov 14 as annual leave, works
// to 22:15 on Nov 20 with approval, and checks out at 01:10 after Nov 27.
func (h *Handler) loadLeaveAndOvertimeScenario(ctx context.Context) error {
	if _, err := h.Policies.Save(ctx, factory.StandardOffice("Head office"), "scenario"); err != nil {
		return err
	}

	carol := attendance.Employee{ID: "lo-carol", Name: "Carol Wang", DepartmentID: "eng", HireDate: generic.MustParseDate("2021-05-10")}
	if err := h.saveEmployees(ctx, carol); err != nil {
		return err
	}

	leaveDay := generic.MustParseDate("2024-11-14")
	approvals := []attendance.LeaveApproval{
		{
			ID: "lo-leave-1114", EmployeeID: carol.ID, BizType: attendance.BizLeave, LeaveType: attendance.LeaveAnnual,
			Start:        leaveDay.At(generic.Clock(9, 0), h.Location),
			End:          leaveDay.At(generic.Clock(18, 30), h.Location),
			Duration:     decimal.NewFromInt(1),
			DurationUnit: attendance.UnitDay,
		},
		{
			ID: "lo-ot-1120", EmployeeID: carol.ID, BizType: attendance.BizOvertime,
			Start:        generic.MustParseDate("2024-11-20").At(generic.Clock(19, 0), h.Location),
			End:          generic.MustParseDate("2024-11-20").At(generic.Clock(22, 15), h.Location),
			Duration:     decimal.RequireFromString("3.25"),
			DurationUnit: attendance.UnitHour,
		},
		{
			ID: "lo-ot-1127", EmployeeID: carol.ID, BizType: attendance.BizOvertime,
			Start:        generic.MustParseDate("2024-11-27").At(generic.Clock(19, 0), h.Location),
			End:          generic.MustParseDate("2024-11-27").At(generic.Clock(25, 10), h.Location),
			Duration:     decimal.RequireFromString("6.17"),
			DurationUnit: attendance.UnitHour,
		},
	}
	if err := h.Store.UpsertApprovals(ctx, approvals); err != nil {
		return err
	}

	skip := map[generic.Date]bool{leaveDay: true}
	records := h.monthOfPunches(carol.ID, skip, func(d generic.Date) (generic.ClockTime, generic.ClockTime) {
		switch d.String() {
		case "2024-11-20":
			return generic.Clock(8, 57), generic.Clock(22, 15)
		case "2024-11-27":
			return generic.Clock(8, 59), generic.Clock(25, 10)
		case "2024-11-28":
			return generic.Clock(10, 20), generic.Clock(18, 40)
		}
		return generic.Clock(8, 55), generic.Clock(18, 35)
	})
	overtimeOn := map[string]string{"2024-11-20": "lo-ot-1120", "2024-11-27": "lo-ot-1127"}
	for i, rec := range records {
		if rec.CheckType == attendance.OffDuty {
			records[i].ApprovalID = overtimeOn[rec.WorkDate.String()]
		}
	}
	if err := h.Store.AppendPunches(ctx, records); err != nil {
		return err
	}

	edit, err := attendance.NewEditor(factory.StandardOffice("").WorkHours, h.Location).BuildDay(attendance.EditRequest{
		EmployeeID: carol.ID,
		Date:       leaveDay,
		Label:      attendance.EditLeave,
		LeaveType:  attendance.LeaveAnnual,
		ApprovalID: approvals[0].ID,
	}, attendance.ApprovalLookup{approvals[0].ID: approvals[0]})
	if err != nil {
		return err
	}
	return h.Store.ReplaceDay(ctx, carol.ID, leaveDay, edit)
}

// loadHolidaySwapScenario: Nov 11 is a holiday that dave works anyway, and
// Saturday Nov 9 is a make-up workday he attends.
func (h *Handler) loadHolidaySwapScenario(ctx context.Context) error {
	if _, err := h.Policies.Save(ctx, factory.StandardOffice("Head office"), "scenario"); err != nil {
		return err
	}

	if err := h.Store.UpsertHolidays(ctx, []calendar.Holiday{
		{Date: generic.MustParseDate("2024-11-09"), Holiday: false, Name: "Make-up workday"},
		{Date: generic.MustParseDate("2024-11-11"), Holiday: true, Name: "Founders' Day", WageMultiplier: decimal.NewFromInt(3)},
	}); err != nil {
		return err
	}

	dave := attendance.Employee{ID: "hs-dave", Name: "Dave Zhou", DepartmentID: "ops", HireDate: generic.MustParseDate("2020-01-06")}
	if err := h.saveEmployees(ctx, dave); err != nil {
		return err
	}

	records := h.monthOfPunches(dave.ID, nil, func(generic.Date) (generic.ClockTime, generic.ClockTime) {
		return generic.Clock(8, 50), generic.Clock(18, 35)
	})
	records = append(records,
		h.punchPair(dave.ID, generic.MustParseDate("2024-11-09"), generic.Clock(8, 55), generic.Clock(18, 32))...)
	return h.Store.AppendPunches(ctx, records)
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) saveEmployees(ctx context.Context, employees ...attendance.Employee) error {
	for _, emp := range employees {
		if err := h.Store.SaveEmployee(ctx, emp); err != nil {
			return err
		}
	}
	return nil
}

// monthOfPunches punches every weekday of scenarioMonth not in skip.
func (h *Handler) monthOfPunches(
	id generic.EmployeeID,
	skip map[generic.Date]bool,
	times func(generic.Date) (on, off generic.ClockTime),
) []attendance.PunchRecord {
	var records []attendance.PunchRecord
	for _, d := range scenarioMonth.Days() {
		if d.IsWeekend() || skip[d] {
			continue
		}
		on, off := times(d)
		records = append(records, h.punchPair(id, d, on, off)...)
	}
	return records
}

func (h *Handler) punchPair(id generic.EmployeeID, d generic.Date, on, off generic.ClockTime) []attendance.PunchRecord {
	base := factory.StandardOffice("").WorkHours
	rec := func(ct attendance.CheckType, at, baseAt generic.ClockTime) attendance.PunchRecord {
		return attendance.PunchRecord{
			ID:            fmt.Sprintf("%s-%s-%s", id, d, ct),
			EmployeeID:    id,
			WorkDate:      d,
			CheckType:     ct,
			Source:        attendance.SourceDevice,
			UserCheckTime: d.At(at, h.Location),
			BaseCheckTime: d.At(baseAt, h.Location),
			TimeResult:    attendance.ResultNormal,
		}
	}
	return []attendance.PunchRecord{
		rec(attendance.OnDuty, on, base.OnDuty),
		rec(attendance.OffDuty, off, base.OffDuty),
	}
}
