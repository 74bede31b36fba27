package attendance

import (
	"fmt"

	"github.com/warp/attendance-engine/generic"
)

// EvaluationError is a per-employee computation failure. A batch reports it
// for that employee and carries on with the rest.
type EvaluationError struct {
	EmployeeID generic.EmployeeID
	Date       generic.Date
	Err        error
}

func (e *EvaluationError) Error() string {
	if e.Date.IsZero() {
		return fmt.Sprintf("employee %s: %v", e.EmployeeID, e.Err)
	}
	return fmt.Sprintf("employee %s on %s: %v", e.EmployeeID, e.Date, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	return e.Err
}
