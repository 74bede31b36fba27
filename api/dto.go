/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Domain types that are
  already plain data (PunchRecord, LeaveApproval, Holiday, EmployeeStats)
  go over the wire as-is; the types here wrap or reshape the rest.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

VALIDATION:
  Request types carry go-playground/validator tags, checked by decodeRequest
  before a handler sees the value.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"encoding/json"

	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/generic"
	"github.com/warp/attendance-engine/policy"
)

// =============================================================================
// POLICY
// =============================================================================

// CreatePolicyRequest carries the raw document so the factory can apply
// defaults and reject unknown fields.
type CreatePolicyRequest struct {
	CreatedBy string          `json:"created_by"`
	Document  json.RawMessage `json:"document" validate:"required"`
}

// PolicyVersionDTO is a stored version plus whether it is the active one.
type PolicyVersionDTO struct {
	policy.Version
	Active bool `json:"active"`
}

// ValidationResponse answers POST /api/policies/validate.
type ValidationResponse struct {
	Valid    bool                `json:"valid"`
	Problems []policy.FieldError `json:"problems,omitempty"`
	Document *policy.Document    `json:"document,omitempty"`
}

// =============================================================================
// EMPLOYEES
// =============================================================================

type CreateEmployeeRequest struct {
	ID              generic.EmployeeID   `json:"id" validate:"required"`
	Name            string               `json:"name" validate:"required"`
	DepartmentID    generic.DepartmentID `json:"department_id"`
	HireDate        generic.Date         `json:"hire_date"`
	TerminationDate *generic.Date        `json:"termination_date,omitempty"`
}

func (r CreateEmployeeRequest) toEmployee() attendance.Employee {
	return attendance.Employee{
		ID:              r.ID,
		Name:            r.Name,
		DepartmentID:    r.DepartmentID,
		HireDate:        r.HireDate,
		TerminationDate: r.TerminationDate,
	}
}

// =============================================================================
// FEEDS
// =============================================================================

type PunchBatchRequest struct {
	Records []attendance.PunchRecord `json:"records" validate:"required,dive"`
}

type ApprovalBatchRequest struct {
	Approvals []attendance.LeaveApproval `json:"approvals" validate:"required,dive"`
}

type HolidayBatchRequest struct {
	Holidays []HolidayDTO `json:"holidays" validate:"required,dive"`
}

// HolidayDTO mirrors calendar.Holiday with input validation.
type HolidayDTO struct {
	Date           generic.Date `json:"date"`
	Holiday        bool         `json:"holiday"`
	Name           string       `json:"name" validate:"required"`
	WageMultiplier string       `json:"wage_multiplier,omitempty" validate:"omitempty,numeric"`
}

// FeedResponse acknowledges an ingested batch.
type FeedResponse struct {
	Accepted int `json:"accepted"`
}

// EditResponse returns the records that now make up the edited day.
type EditResponse struct {
	EmployeeID generic.EmployeeID       `json:"employee_id"`
	Date       generic.Date             `json:"date"`
	Records    []attendance.PunchRecord `json:"records"`
}

// =============================================================================
// STATS
// =============================================================================

// EmployeeResultDTO is one employee's outcome within a batch.
type EmployeeResultDTO struct {
	EmployeeID generic.EmployeeID        `json:"employee_id"`
	Stats      *attendance.EmployeeStats `json:"stats,omitempty"`
	Error      string                    `json:"error,omitempty"`
}

type MonthStatsResponse struct {
	Month           generic.Month       `json:"month"`
	PolicyVersionID generic.VersionID   `json:"policy_version_id"`
	Results         []EmployeeResultDTO `json:"results"`
	Failed          int                 `json:"failed"`
}

// =============================================================================
// SCENARIOS
// =============================================================================

type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Month       string `json:"month"`
}

type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id" validate:"required"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error    string              `json:"error"`
	Details  string              `json:"details,omitempty"`
	Problems []policy.FieldError `json:"problems,omitempty"`
}
