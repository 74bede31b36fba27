/*
errors.go - Centralized error types for the attendance engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Engine packages wrap these errors with additional context.

ERROR CATEGORIES:
  1. Configuration errors - Policy documents rejected before activation
  2. Data gaps - Never errors; the engine falls back deterministically
  3. Evaluation errors - Per-employee failures that do not abort a batch
  4. Store errors - Database-level failures

USAGE:
  if errors.Is(err, generic.ErrInvalidPolicy) {
      // reject the save, keep the current active version
  }

SEE ALSO:
  - policy/validate.go: Produces ErrInvalidPolicy
  - attendance/errors.go: EvaluationError wraps ErrCorruptPunch
*/
package generic

import (
	"errors"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidPolicy is returned when a policy document fails validation.
	// An invalid document never becomes the active version.
	ErrInvalidPolicy = errors.New("invalid policy document")

	// ErrNoActivePolicy is returned when stats are requested before any policy
	// version has been saved.
	ErrNoActivePolicy = errors.New("no active policy version")

	// ErrPolicyNotFound is returned when a referenced policy version doesn't exist.
	ErrPolicyNotFound = errors.New("policy version not found")

	// ErrEmployeeNotFound is returned when a referenced employee doesn't exist.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrInvalidClock is returned for malformed "HH:MM" values.
	ErrInvalidClock = errors.New("invalid clock time")

	// ErrCorruptPunch is returned when a punch record cannot be placed on its
	// work date (wrong employee, timestamp far from the work date, missing
	// timestamp on a signed record).
	ErrCorruptPunch = errors.New("corrupt punch record")

	// ErrUnknownStat is returned when a full-attendance rule references a stat
	// the engine does not produce.
	ErrUnknownStat = errors.New("unknown statistic")

	// ErrInvalidEdit is returned for malformed manual edit requests.
	ErrInvalidEdit = errors.New("invalid manual edit")
)

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidPolicy) ||
		errors.Is(err, ErrInvalidClock) ||
		errors.Is(err, ErrInvalidEdit)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrPolicyNotFound) ||
		errors.Is(err, ErrEmployeeNotFound) ||
		errors.Is(err, ErrNoActivePolicy)
}
