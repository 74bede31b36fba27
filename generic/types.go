/*
Package generic provides the domain-agnostic primitives of the attendance engine.

PURPOSE:
  Attendance rules talk about calendar days, wall-clock times within a day,
  and quantities (minutes, hours, money). This package gives days and clock
  times small, comparable types so the engine packages never juggle raw
  time.Time values, and keeps quantities in decimal.Decimal.

KEY CONCEPTS IN THIS FILE (types.go):
  - Identifiers: EmployeeID, DepartmentID, VersionID
  - MinutesToHours: The one conversion every component shares

DESIGN PRINCIPLES:
  1. Precision: decimal.Decimal so penalties and half-days never drift
  2. Comparability: Date and ClockTime are plain values usable as map keys
  3. Determinism: Nothing here reads the wall clock except Today()

SEE ALSO:
  - time.go: Date, Month and ClockTime
  - errors.go: Sentinel errors
*/
package generic

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EmployeeID string
type DepartmentID string
type VersionID string

// =============================================================================
// QUANTITIES
// =============================================================================

// MinutesToHours converts whole minutes to a decimal hour count.
func MinutesToHours(minutes int) decimal.Decimal {
	return decimal.NewFromInt(int64(minutes)).Div(decimal.NewFromInt(60))
}
