/*
handlers.go - HTTP API handlers for the attendance engine

PURPOSE:
  Exposes policy management, the input feeds, manual edits and monthly
  statistics over REST. Handles HTTP request/response and JSON, and
  delegates to the policy manager, the stores and the engine.

ENDPOINTS:
  Policies:
    GET    /api/policies                List versions (active flagged)
    POST   /api/policies                Validate, append and activate a document
    POST   /api/policies/validate       Dry-run validation
    GET    /api/policies/active         The version computations use
    GET    /api/policies/{id}           One version
    POST   /api/policies/{id}/activate  Roll back/forward to a version

  Feeds:
    GET    /api/holidays?from=&to=      Holiday calendar entries
    POST   /api/holidays                Upsert calendar entries
    GET    /api/employees               List employees
    POST   /api/employees               Create or update an employee
    POST   /api/approvals               Upsert approvals
    POST   /api/punches                 Append punch records
    POST   /api/edits                   Replace one employee-day

  Stats:
    GET    /api/employees/{id}/stats?month=YYYY-MM
    GET    /api/stats?month=YYYY-MM     Every employee, computed in parallel
    GET    /api/stats/snapshots?month=  Last persisted results

ERROR HANDLING:
  Errors are returned as JSON {error, details} with status:
  - 422: Policy document validation problems (listed in "problems")
  - 400: Malformed input, corrupt punches, invalid edits
  - 404: Unknown employee or policy version, no active policy
  - 500: Internal errors

SEE ALSO:
  - stats.go: Engine construction and month computation
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/calendar"
	"github.com/warp/attendance-engine/factory"
	"github.com/warp/attendance-engine/generic"
	"github.com/warp/attendance-engine/policy"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Store is everything the API reads and writes. store/sqlite and
// store/memory both satisfy it.
type Store interface {
	policy.Store
	calendar.HolidayStore
	attendance.EmployeeStore
	attendance.PunchStore
	attendance.ApprovalStore
	attendance.StatsStore
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store    Store
	Policies *policy.Manager
	Factory  *factory.DocumentFactory
	Location *time.Location
	Workers  int
	Logger   *slog.Logger

	// Now drives the default month and holiday range.
	Now func() time.Time

	mu              sync.Mutex
	currentScenario string
}

type Option func(*Handler)

// WithLocation sets the zone punches and edits are read in.
func WithLocation(loc *time.Location) Option {
	return func(h *Handler) { h.Location = loc }
}

// WithWorkers bounds the parallel evaluations of a batch. 0 means GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(h *Handler) { h.Workers = n }
}

func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) { h.Logger = logger }
}

// NewHandler creates a new handler with the given store.
func NewHandler(store Store, opts ...Option) *Handler {
	h := &Handler{
		Store:    store,
		Policies: policy.NewManager(store),
		Factory:  factory.NewDocumentFactory(),
		Location: time.UTC,
		Logger:   slog.Default(),
		Now:      time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

var validate = newRequestValidator()

func newRequestValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// =============================================================================
// POLICY HANDLERS
// =============================================================================

// ListPolicies returns every stored version, oldest first.
func (h *Handler) ListPolicies(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	versions, err := h.Policies.List(ctx)
	if err != nil {
		writeDomainError(w, "Failed to list policies", err)
		return
	}
	activeID, err := h.Store.ActiveVersionID(ctx)
	if err != nil {
		writeDomainError(w, "Failed to read active policy", err)
		return
	}

	dtos := make([]PolicyVersionDTO, len(versions))
	for i, v := range versions {
		dtos[i] = PolicyVersionDTO{Version: v, Active: v.ID == activeID}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreatePolicy parses, validates, appends and activates a document.
func (h *Handler) CreatePolicy(w http.ResponseWriter, r *http.Request) {
	var req CreatePolicyRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	doc, err := h.Factory.Parse(req.Document)
	if err != nil {
		writeDomainError(w, "Invalid policy document", err)
		return
	}

	v, err := h.Policies.Save(r.Context(), *doc, req.CreatedBy)
	if err != nil {
		writeDomainError(w, "Failed to save policy", err)
		return
	}

	h.Logger.Info("policy version activated",
		"policy_version", v.ID,
		"number", v.Number,
		"created_by", v.CreatedBy)
	writeJSON(w, http.StatusCreated, PolicyVersionDTO{Version: *v, Active: true})
}

// ValidatePolicy reports every problem without storing anything.
func (h *Handler) ValidatePolicy(w http.ResponseWriter, r *http.Request) {
	var req CreatePolicyRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	doc, err := h.Factory.Parse(req.Document)
	var verrs policy.ValidationErrors
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, ValidationResponse{Valid: true, Document: doc})
	case errors.As(err, &verrs):
		writeJSON(w, http.StatusOK, ValidationResponse{Valid: false, Problems: verrs})
	default:
		writeDomainError(w, "Invalid policy document", err)
	}
}

func (h *Handler) GetActivePolicy(w http.ResponseWriter, r *http.Request) {
	v, err := h.Policies.Active(r.Context())
	if err != nil {
		writeDomainError(w, "Failed to get active policy", err)
		return
	}
	writeJSON(w, http.StatusOK, PolicyVersionDTO{Version: *v, Active: true})
}

func (h *Handler) GetPolicy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := generic.VersionID(chi.URLParam(r, "id"))

	v, err := h.Policies.Get(ctx, id)
	if err != nil {
		writeDomainError(w, "Failed to get policy", err)
		return
	}
	activeID, err := h.Store.ActiveVersionID(ctx)
	if err != nil {
		writeDomainError(w, "Failed to read active policy", err)
		return
	}
	writeJSON(w, http.StatusOK, PolicyVersionDTO{Version: *v, Active: v.ID == activeID})
}

// ActivatePolicy moves the active pointer to an existing version.
func (h *Handler) ActivatePolicy(w http.ResponseWriter, r *http.Request) {
	id := generic.VersionID(chi.URLParam(r, "id"))

	v, err := h.Policies.Activate(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to activate policy", err)
		return
	}

	h.Logger.Info("policy version activated", "policy_version", v.ID, "number", v.Number)
	writeJSON(w, http.StatusOK, PolicyVersionDTO{Version: *v, Active: true})
}

// =============================================================================
// HOLIDAY HANDLERS
// =============================================================================

// ListHolidays defaults to the current calendar year.
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	today := h.today()
	from := generic.NewDate(today.Year(), time.January, 1)
	to := generic.NewDate(today.Year(), time.December, 31)

	var err error
	if s := r.URL.Query().Get("from"); s != "" {
		if from, err = generic.ParseDate(s); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid from date", err)
			return
		}
	}
	if s := r.URL.Query().Get("to"); s != "" {
		if to, err = generic.ParseDate(s); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid to date", err)
			return
		}
	}

	holidays, err := h.Store.LoadHolidays(r.Context(), from, to)
	if err != nil {
		writeDomainError(w, "Failed to list holidays", err)
		return
	}
	if holidays == nil {
		holidays = []calendar.Holiday{}
	}
	writeJSON(w, http.StatusOK, holidays)
}

func (h *Handler) CreateHolidays(w http.ResponseWriter, r *http.Request) {
	var req HolidayBatchRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	entries := make([]calendar.Holiday, len(req.Holidays))
	for i, dto := range req.Holidays {
		if dto.Date.IsZero() {
			writeError(w, http.StatusBadRequest, "Invalid holiday", fmt.Errorf("holidays[%d].date is required", i))
			return
		}
		mult := decimal.Zero
		if dto.WageMultiplier != "" {
			mult = decimal.RequireFromString(dto.WageMultiplier)
		}
		entries[i] = calendar.Holiday{Date: dto.Date, Holiday: dto.Holiday, Name: dto.Name, WageMultiplier: mult}
	}

	if err := h.Store.UpsertHolidays(r.Context(), entries); err != nil {
		writeDomainError(w, "Failed to save holidays", err)
		return
	}
	writeJSON(w, http.StatusOK, FeedResponse{Accepted: len(entries)})
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all employees.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		writeDomainError(w, "Failed to list employees", err)
		return
	}
	if employees == nil {
		employees = []attendance.Employee{}
	}
	writeJSON(w, http.StatusOK, employees)
}

func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if req.TerminationDate != nil && !req.HireDate.IsZero() && req.TerminationDate.Before(req.HireDate) {
		writeError(w, http.StatusBadRequest, "Invalid employee", errors.New("termination_date is before hire_date"))
		return
	}

	emp := req.toEmployee()
	if err := h.Store.SaveEmployee(r.Context(), emp); err != nil {
		writeDomainError(w, "Failed to save employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, emp)
}

// =============================================================================
// FEED HANDLERS
// =============================================================================

func (h *Handler) CreateApprovals(w http.ResponseWriter, r *http.Request) {
	var req ApprovalBatchRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	for i, a := range req.Approvals {
		if a.ID == "" {
			writeError(w, http.StatusBadRequest, "Invalid approval", fmt.Errorf("approvals[%d].id is required", i))
			return
		}
	}

	if err := h.Store.UpsertApprovals(r.Context(), req.Approvals); err != nil {
		writeDomainError(w, "Failed to save approvals", err)
		return
	}
	writeJSON(w, http.StatusOK, FeedResponse{Accepted: len(req.Approvals)})
}

// CreatePunches appends records. Replaying a record ID is a no-op.
func (h *Handler) CreatePunches(w http.ResponseWriter, r *http.Request) {
	var req PunchBatchRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	if err := h.Store.AppendPunches(r.Context(), req.Records); err != nil {
		writeDomainError(w, "Failed to append punches", err)
		return
	}
	writeJSON(w, http.StatusOK, FeedResponse{Accepted: len(req.Records)})
}

// SubmitEdit replaces one employee-day with the records the edit implies.
func (h *Handler) SubmitEdit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req attendance.EditRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	if req.EmployeeID != "" {
		if _, err := h.Store.GetEmployee(ctx, req.EmployeeID); err != nil {
			writeDomainError(w, "Failed to get employee", err)
			return
		}
	}

	v, err := h.Policies.Active(ctx)
	if err != nil {
		writeDomainError(w, "Failed to get active policy", err)
		return
	}

	var approvals attendance.ApprovalLookup
	if req.ApprovalID != "" {
		if approvals, err = h.Store.LoadApprovals(ctx, []string{req.ApprovalID}); err != nil {
			writeDomainError(w, "Failed to load approval", err)
			return
		}
	}

	records, err := attendance.NewEditor(v.Document.WorkHours, h.Location).BuildDay(req, approvals)
	if err != nil {
		writeDomainError(w, "Invalid edit", err)
		return
	}
	if err := h.Store.ReplaceDay(ctx, req.EmployeeID, req.Date, records); err != nil {
		writeDomainError(w, "Failed to replace day", err)
		return
	}

	h.Logger.Info("attendance day edited",
		"employee_id", req.EmployeeID,
		"date", req.Date,
		"label", req.Label)
	writeJSON(w, http.StatusOK, EditResponse{EmployeeID: req.EmployeeID, Date: req.Date, Records: records})
}

// =============================================================================
// STATS HANDLERS
// =============================================================================

func (h *Handler) GetEmployeeStats(w http.ResponseWriter, r *http.Request) {
	month, ok := h.monthParam(w, r)
	if !ok {
		return
	}
	id := generic.EmployeeID(chi.URLParam(r, "id"))

	stats, err := h.ComputeEmployee(r.Context(), id, month)
	if err != nil {
		writeDomainError(w, "Failed to compute stats", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// GetMonthStats computes every employee. One employee's failure is
// reported in its result and does not fail the request.
func (h *Handler) GetMonthStats(w http.ResponseWriter, r *http.Request) {
	month, ok := h.monthParam(w, r)
	if !ok {
		return
	}

	versionID, results, err := h.ComputeAll(r.Context(), month)
	if err != nil {
		writeDomainError(w, "Failed to compute stats", err)
		return
	}

	resp := MonthStatsResponse{
		Month:           month,
		PolicyVersionID: versionID,
		Results:         make([]EmployeeResultDTO, len(results)),
	}
	for i, res := range results {
		resp.Results[i] = EmployeeResultDTO{EmployeeID: res.EmployeeID, Stats: res.Stats}
		if res.Err != nil {
			resp.Results[i].Error = res.Err.Error()
			resp.Failed++
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetSnapshots(w http.ResponseWriter, r *http.Request) {
	month, ok := h.monthParam(w, r)
	if !ok {
		return
	}

	snaps, err := h.Store.LoadSnapshots(r.Context(), month)
	if err != nil {
		writeDomainError(w, "Failed to load snapshots", err)
		return
	}
	if snaps == nil {
		snaps = []attendance.Snapshot{}
	}
	writeJSON(w, http.StatusOK, snaps)
}

func (h *Handler) today() generic.Date {
	return generic.DateOf(h.Now().In(h.Location))
}

// monthParam reads ?month=YYYY-MM, defaulting to the current month.
func (h *Handler) monthParam(w http.ResponseWriter, r *http.Request) (generic.Month, bool) {
	s := r.URL.Query().Get("month")
	if s == "" {
		return h.today().InMonth(), true
	}
	month, err := generic.ParseMonth(s)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month", err)
		return generic.Month{}, false
	}
	return month, true
}

// =============================================================================
// HELPERS
// =============================================================================

// decodeRequest decodes and validates the body, writing a 400 on failure.
func decodeRequest(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	if err := validate.Struct(dst); err != nil {
		var invalid *validator.InvalidValidationError
		if errors.As(err, &invalid) {
			return true
		}
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps engine and store errors onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	var verrs policy.ValidationErrors
	if errors.As(err, &verrs) {
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:    message,
			Details:  err.Error(),
			Problems: verrs,
		})
		return
	}
	writeError(w, statusFor(err), message, err)
}

func statusFor(err error) int {
	switch {
	case generic.IsNotFound(err):
		return http.StatusNotFound
	case generic.IsClientError(err), errors.Is(err, generic.ErrCorruptPunch):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
