/*
validate.go - Configuration error detection for Policy Documents

PURPOSE:
  A Document is checked in full before it may become the active version.
  The engine refuses to evaluate against a document that fails here; there
  is no silent defaulting at evaluation time.

TWO PASSES:
  1. Struct tags (go-playground/validator): field ranges, enums, clock bounds
  2. Rule-table checks: ladder overlap and ordering, mode/sub-mode pairing,
     required sub-fields for the chosen mode, late-rule boundaries, overtime
     checkpoint ordering, remote-work recurrences

Both passes always run so a caller sees every problem at once.

SEE ALSO:
  - version.go: Manager.Save calls Validate before appending
  - attendance/engine.go: NewEngine calls Validate again
*/
package policy

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/teambition/rrule-go"
	"github.com/warp/attendance-engine/generic"
)

// =============================================================================
// VALIDATION ERRORS
// =============================================================================

// FieldError describes one rejected field. Field is the JSON path.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is returned by Validate. errors.Is(err, generic.ErrInvalidPolicy) holds.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, len(v))
	for i, fe := range v {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return fmt.Sprintf("%s: %s", generic.ErrInvalidPolicy, strings.Join(parts, "; "))
}

func (v ValidationErrors) Unwrap() error { return generic.ErrInvalidPolicy }

func (v *ValidationErrors) add(field, format string, args ...any) {
	*v = append(*v, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// =============================================================================
// STRUCT TAG VALIDATOR
// =============================================================================

var validate *validator.Validate

func init() {
	validate = validator.New()

	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	validate.RegisterValidation("clock", validateClock)
}

func validateClock(fl validator.FieldLevel) bool {
	v := fl.Field().Int()
	return v >= 0 && v <= int64(generic.MaxClock)
}

func tagErrors(doc Document) ValidationErrors {
	var errs ValidationErrors
	err := validate.Struct(doc)
	if err == nil {
		return nil
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		errs.add("document", "%v", err)
		return errs
	}
	for _, fe := range fieldErrs {
		field := strings.TrimPrefix(fe.Namespace(), "Document.")
		switch fe.Tag() {
		case "clock":
			errs.add(field, "must be a clock time between 00:00 and 48:00")
		case "oneof":
			errs.add(field, "must be one of: %s", fe.Param())
		case "gtfield":
			errs.add(field, "must be greater than %s", fe.Param())
		case "gtefield":
			errs.add(field, "must not be before %s", fe.Param())
		case "gte":
			errs.add(field, "must be at least %s", fe.Param())
		case "lte":
			errs.add(field, "must be at most %s", fe.Param())
		case "required":
			errs.add(field, "is required")
		default:
			errs.add(field, "failed %q validation", fe.Tag())
		}
	}
	return errs
}

// =============================================================================
// VALIDATE
// =============================================================================

// Validate returns nil or ValidationErrors listing every problem in doc.
func Validate(doc Document) error {
	errs := tagErrors(doc)

	if !doc.FullDayLeaveHours.IsPositive() {
		errs.add("full_day_leave_hours", "must be positive")
	}
	validateLateRules(doc, &errs)
	validateExemption(doc.Exemption, &errs)
	validatePenalty(doc.Penalty, &errs)
	validateFullAttendance(doc.FullAttendance, &errs)
	validateLeaveDisplay(doc.LeaveDisplayRules, &errs)
	validateAttendanceDays(doc.AttendanceDays, &errs)
	validateWorkdaySwap(doc.WorkdaySwap, &errs)
	validateRemoteWork(doc.RemoteWork, &errs)
	validateOvertime(doc.Overtime, &errs)

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func validateLateRules(doc Document, errs *ValidationErrors) {
	seen := make(map[generic.ClockTime]bool)
	for i, r := range doc.LateRules {
		field := fmt.Sprintf("late_rules[%d]", i)
		if seen[r.PreviousDayCheckoutTime] {
			errs.add(field+".previous_day_checkout_time", "duplicate boundary %s", r.PreviousDayCheckoutTime)
		}
		seen[r.PreviousDayCheckoutTime] = true
		if r.LateThresholdTime > generic.EndOfDay {
			errs.add(field+".late_threshold_time", "must not be after 24:00")
		}
	}

	cd := doc.CrossDay
	if cd.Enabled {
		if cd.CheckoutAfter == 0 {
			errs.add("cross_day.checkout_after", "is required when cross-day rule is enabled")
		}
		if cd.NextDayThreshold == 0 || cd.NextDayThreshold > generic.EndOfDay {
			errs.add("cross_day.next_day_threshold", "must be between 00:01 and 24:00")
		}
	}
}

func validateExemption(e Exemption, errs *ValidationErrors) {
	if !e.Enabled {
		return
	}
	if e.Count <= 0 {
		errs.add("exemption.late_exemption_count", "must be positive when exemption is enabled")
	}
	if e.Minutes <= 0 {
		errs.add("exemption.late_exemption_minutes", "must be positive when exemption is enabled")
	}
}

func validatePenalty(p PenaltyScheme, errs *ValidationErrors) {
	if !p.Enabled {
		return
	}

	switch p.Mode {
	case PenaltyUnlimited:
		if p.SubMode != SubModePerMinute && p.SubMode != SubModeFixed {
			errs.add("penalty.sub_mode", "unlimited mode requires perMinute or fixed")
			return
		}
	case PenaltyCapped:
		if p.SubMode != SubModeLadder && p.SubMode != SubModeFixedCap {
			errs.add("penalty.sub_mode", "capped mode requires ladder or fixedCap")
			return
		}
	default:
		errs.add("penalty.mode", "is required when penalty is enabled")
		return
	}

	switch p.SubMode {
	case SubModePerMinute:
		requirePositive(p.UnitPrice, "penalty.unit_price", errs)
	case SubModeFixed:
		requirePositive(p.FixedAmount, "penalty.fixed_amount", errs)
	case SubModeFixedCap:
		requirePositive(p.UnitPrice, "penalty.unit_price", errs)
		requirePositive(p.MaxPenalty, "penalty.max_performance_penalty", errs)
	case SubModeLadder:
		requirePositive(p.MaxPenalty, "penalty.max_performance_penalty", errs)
		validateLadder(p.Ladder, errs)
	}
}

// validateLadder rejects overlapping ranges, an open-ended tier that is not
// last, and amounts that drop when the minutes grow.
func validateLadder(ladder []PenaltyTier, errs *ValidationErrors) {
	if len(ladder) == 0 {
		errs.add("penalty.ladder", "must have at least one tier in ladder mode")
		return
	}

	tiers := make([]PenaltyTier, len(ladder))
	copy(tiers, ladder)
	sort.SliceStable(tiers, func(i, j int) bool { return tiers[i].Min < tiers[j].Min })

	for i, t := range tiers {
		field := fmt.Sprintf("penalty.ladder[%d-%d]", t.Min, t.Max)
		if t.Amount.IsNegative() {
			errs.add(field+".amount", "must not be negative")
		}
		if t.OpenEnded() && i != len(tiers)-1 {
			errs.add(field, "open-ended tier must be the last tier")
		}
		if i == 0 {
			continue
		}
		prev := tiers[i-1]
		if prev.OpenEnded() || t.Min < prev.Max {
			errs.add(field, "overlaps tier [%d,%d)", prev.Min, prev.Max)
		}
		if t.Amount.LessThan(prev.Amount) {
			errs.add(field+".amount", "must not be lower than the preceding tier")
		}
	}
}

// statUnits lists the units each full-attendance stat can be read in.
var statUnits = map[StatType][]StatUnit{
	StatLate:        {UnitCount, UnitMinutes, UnitHours},
	StatMissing:     {UnitCount},
	StatAbsenteeism: {UnitCount},
	StatEarlyLeave:  {UnitCount},
	StatLeave:       {UnitCount, UnitHours, UnitMinutes},
}

func validateFullAttendance(fa FullAttendance, errs *ValidationErrors) {
	if fa.Bonus.IsNegative() {
		errs.add("full_attendance.bonus", "must not be negative")
	}
	for i, r := range fa.Rules {
		field := fmt.Sprintf("full_attendance.rules[%d]", i)
		if r.Threshold.IsNegative() {
			errs.add(field+".threshold", "must not be negative")
		}
		units, ok := statUnits[r.Type]
		if !ok {
			continue
		}
		supported := false
		for _, u := range units {
			if u == r.Unit {
				supported = true
			}
		}
		if !supported {
			errs.add(field+".unit", "%s cannot be measured in %s", r.Type, r.Unit)
		}
		if r.LeaveType != "" && r.Type != StatLeave {
			errs.add(field+".leave_type", "only applies to leave rules")
		}
	}
}

func validateLeaveDisplay(rules []LeaveDisplayRule, errs *ValidationErrors) {
	for i, r := range rules {
		if r.MaxHours.IsPositive() && r.MaxHours.LessThan(r.MinHours) {
			errs.add(fmt.Sprintf("leave_display_rules[%d].max_hours", i), "must not be below min_hours")
		}
	}
}

func validateAttendanceDays(a AttendanceDays, errs *ValidationErrors) {
	if a.ShouldAttendMode == ShouldAttendFixed && a.FixedDays == 0 {
		errs.add("attendance_days.fixed_days", "is required in fixed mode")
	}
	if a.MinWorkHoursForFullDay.IsNegative() || a.MinWorkHoursForFullDay.GreaterThan(decimal.NewFromInt(24)) {
		errs.add("attendance_days.min_work_hours_for_full_day", "must be between 0 and 24")
	}
}

func validateWorkdaySwap(s WorkdaySwap, errs *ValidationErrors) {
	seen := make(map[generic.Date]bool)
	for i, d := range s.CustomDays {
		field := fmt.Sprintf("workday_swap.custom_days[%d].date", i)
		if d.Date.IsZero() {
			errs.add(field, "is required")
			continue
		}
		if seen[d.Date] {
			errs.add(field, "duplicate date %s", d.Date)
		}
		seen[d.Date] = true
	}
}

func validateRemoteWork(r RemoteWork, errs *ValidationErrors) {
	for i, d := range r.Days {
		field := fmt.Sprintf("remote_work.days[%d]", i)
		switch {
		case d.Date != nil && d.Recurrence != "":
			errs.add(field, "date and recurrence are mutually exclusive")
		case d.Date == nil && d.Recurrence == "":
			errs.add(field, "requires a date or a recurrence")
		case d.Recurrence != "":
			if d.Start.IsZero() {
				errs.add(field+".start", "is required with a recurrence")
			}
			if _, err := rrule.StrToROption(strings.TrimPrefix(d.Recurrence, "RRULE:")); err != nil {
				errs.add(field+".recurrence", "invalid RRULE: %v", err)
			}
		}
		if d.Mode == RemoteHourWindow && d.WindowEnd <= d.WindowStart {
			errs.add(field+".window_end", "must be after window_start")
		}
		if d.Scope == ScopeDepartment && len(d.DepartmentIDs) == 0 {
			errs.add(field+".department_ids", "is required for department scope")
		}
		if d.Scope == ScopeIndividual && len(d.EmployeeIDs) == 0 {
			errs.add(field+".employee_ids", "is required for individual scope")
		}
	}
}

func validateOvertime(o Overtime, errs *ValidationErrors) {
	for i := 1; i < len(o.Checkpoints); i++ {
		if o.Checkpoints[i] <= o.Checkpoints[i-1] {
			errs.add(fmt.Sprintf("overtime.checkpoints[%d]", i), "checkpoints must be strictly increasing")
		}
	}
	if o.WeekendOvertimeThreshold.IsNegative() {
		errs.add("overtime.weekend_overtime_threshold", "must not be negative")
	}
}

func requirePositive(v decimal.Decimal, field string, errs *ValidationErrors) {
	if !v.IsPositive() {
		errs.add(field, "must be positive for the selected penalty mode")
	}
}
