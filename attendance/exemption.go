package attendance

import (
	"sort"

	"github.com/warp/attendance-engine/generic"
	"github.com/warp/attendance-engine/policy"
)

// =============================================================================
// EXEMPTION TRACKER - Sequential fold over the month's late occurrences
// =============================================================================

type LateOccurrence struct {
	Date    generic.Date      `json:"date"`
	Minutes int               `json:"minutes"`
	OnDuty  generic.ClockTime `json:"on_duty"`
}

type ExemptionDecision struct {
	LateOccurrence
	Forgiven        bool `json:"forgiven"`
	BillableMinutes int  `json:"billable_minutes"`
}

type ExemptionResult struct {
	Decisions       []ExemptionDecision `json:"decisions"`
	ForgivenCount   int                 `json:"forgiven_count"`
	BillableCount   int                 `json:"billable_count"`
	BillableMinutes int                 `json:"billable_minutes"`
	RemainingQuota  int                 `json:"remaining_quota"`
}

// TrackExemptions walks occurrences in date order. An occurrence within the
// per-use cap consumes one unit of quota and is forgiven; once the quota is
// gone, or when it exceeds the cap, its full duration is billable.
// Occurrences over the cap leave the quota untouched.
//
// Forgiveness of occurrence N depends on occurrences 1..N-1, so this must
// stay a single sequential pass.
func TrackExemptions(e policy.Exemption, occurrences []LateOccurrence) ExemptionResult {
	sorted := make([]LateOccurrence, 0, len(occurrences))
	for _, o := range occurrences {
		if o.Minutes > 0 {
			sorted = append(sorted, o)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	res := ExemptionResult{Decisions: make([]ExemptionDecision, 0, len(sorted))}
	if e.Enabled {
		res.RemainingQuota = e.Count
	}

	for _, o := range sorted {
		d := ExemptionDecision{LateOccurrence: o}
		if e.Enabled && o.Minutes <= e.Minutes && res.RemainingQuota > 0 {
			d.Forgiven = true
			res.RemainingQuota--
			res.ForgivenCount++
		} else {
			d.BillableMinutes = o.Minutes
			res.BillableCount++
			res.BillableMinutes += o.Minutes
		}
		res.Decisions = append(res.Decisions, d)
	}
	return res
}
