package attendance

import (
	"github.com/warp/attendance-engine/generic"
	"github.com/warp/attendance-engine/policy"
)

// =============================================================================
// LATE EVALUATOR - Yesterday's checkout selects today's threshold
// =============================================================================

type LateReason string

const (
	// ReasonTable: the rule with the greatest boundary not after yesterday's checkout.
	ReasonTable LateReason = "late_rule"
	// ReasonBaseline: no qualifying checkout, the smallest-boundary rule applies.
	ReasonBaseline LateReason = "baseline"
	// ReasonCrossDay: the cross-day checkout override applied.
	ReasonCrossDay LateReason = "cross_day"
	// ReasonWorkHours: no late rules configured, on-duty time is the threshold.
	ReasonWorkHours LateReason = "work_hours"
)

type LateInput struct {
	// PreviousCheckout is the governing checkout resolved by the lookback,
	// nil when there is none.
	PreviousCheckout *generic.ClockTime
	// PreviousApproved is true when that checkout is backed by an approved
	// overtime request.
	PreviousApproved bool
	OnDuty           generic.ClockTime
	FirstDay         bool
}

type LateResult struct {
	Minutes   int               `json:"minutes"`
	Threshold generic.ClockTime `json:"threshold"`
	Rule      *policy.LateRule  `json:"rule,omitempty"`
	Reason    LateReason        `json:"reason"`
}

// EvaluateLate returns raw late minutes for one on-duty punch.
//
// The cross-day override is checked before the rule table. A threshold of
// 24:00 or later means no punch that day is late.
func EvaluateLate(doc *policy.Document, in LateInput) LateResult {
	res := selectThreshold(doc, in)
	if res.Threshold < generic.EndOfDay && in.OnDuty > res.Threshold {
		res.Minutes = int(in.OnDuty - res.Threshold)
	}
	return res
}

// LateAfter returns the minutes between resume and onDuty, lunch excluded.
// Lateness behind an approval is measured from where the approval ends.
func LateAfter(hours policy.WorkHours, resume, onDuty generic.ClockTime) int {
	if onDuty <= resume {
		return 0
	}
	return int(onDuty-resume) - generic.Overlap(resume, onDuty, hours.LunchStart, hours.LunchEnd)
}

func selectThreshold(doc *policy.Document, in LateInput) LateResult {
	prev := in.PreviousCheckout
	if in.FirstDay {
		prev = nil
	}

	cd := doc.CrossDay
	if cd.Enabled && prev != nil && *prev >= cd.CheckoutAfter && (!cd.RequireApproval || in.PreviousApproved) {
		return LateResult{Threshold: cd.NextDayThreshold, Reason: ReasonCrossDay}
	}

	if len(doc.LateRules) == 0 {
		return LateResult{Threshold: doc.WorkHours.OnDuty, Reason: ReasonWorkHours}
	}

	baseline := 0
	for i, r := range doc.LateRules {
		if r.PreviousDayCheckoutTime < doc.LateRules[baseline].PreviousDayCheckoutTime {
			baseline = i
		}
	}

	selected, reason := baseline, ReasonBaseline
	if prev != nil {
		best := -1
		for i, r := range doc.LateRules {
			if r.PreviousDayCheckoutTime > *prev {
				continue
			}
			if best < 0 || r.PreviousDayCheckoutTime > doc.LateRules[best].PreviousDayCheckoutTime {
				best = i
			}
		}
		if best >= 0 {
			selected, reason = best, ReasonTable
		}
	}

	rule := doc.LateRules[selected]
	return LateResult{Threshold: rule.LateThresholdTime, Rule: &rule, Reason: reason}
}
