package attendance

import (
	"github.com/shopspring/decimal"
	"github.com/warp/attendance-engine/policy"
)

// =============================================================================
// PENALTY CALCULATOR
// =============================================================================
//
//   unlimited/perMinute  Σ minutes past ThresholdTime × UnitPrice, uncapped
//   unlimited/fixed      FixedAmount per billable occurrence past ThresholdTime
//   capped/ladder        tier amount for the month's billable minutes, clamped
//   capped/fixedCap      billable minutes × UnitPrice, clamped
//
// Unlimited modes work per occurrence; capped modes work on the monthly total.
// A zero ThresholdTime means every billable minute counts.

// CalculatePenalty maps the exemption decisions to a monetary penalty.
func CalculatePenalty(p policy.PenaltyScheme, decisions []ExemptionDecision) decimal.Decimal {
	if !p.Enabled {
		return decimal.Zero
	}

	total := 0
	for _, d := range decisions {
		total += d.BillableMinutes
	}
	if total == 0 {
		return decimal.Zero
	}

	switch p.SubMode {
	case policy.SubModePerMinute:
		minutes := 0
		for _, d := range decisions {
			minutes += minutesPastThreshold(p, d)
		}
		return p.UnitPrice.Mul(decimal.NewFromInt(int64(minutes)))

	case policy.SubModeFixed:
		count := 0
		for _, d := range decisions {
			if minutesPastThreshold(p, d) > 0 {
				count++
			}
		}
		return p.FixedAmount.Mul(decimal.NewFromInt(int64(count)))

	case policy.SubModeLadder:
		return clamp(LadderAmount(p.Ladder, total), p.MaxPenalty)

	case policy.SubModeFixedCap:
		return clamp(p.UnitPrice.Mul(decimal.NewFromInt(int64(total))), p.MaxPenalty)
	}
	return decimal.Zero
}

func minutesPastThreshold(p policy.PenaltyScheme, d ExemptionDecision) int {
	if d.BillableMinutes == 0 {
		return 0
	}
	if p.ThresholdTime == 0 {
		return d.BillableMinutes
	}
	if d.OnDuty <= p.ThresholdTime {
		return 0
	}
	return int(d.OnDuty - p.ThresholdTime)
}

// LadderAmount returns the amount of the first tier whose [Min, Max) range
// contains minutes. Minutes that fall into a gap take the highest tier lying
// entirely below them; below every tier the amount is zero.
func LadderAmount(ladder []policy.PenaltyTier, minutes int) decimal.Decimal {
	for _, t := range ladder {
		if t.Contains(minutes) {
			return t.Amount
		}
	}

	var best *policy.PenaltyTier
	for i := range ladder {
		t := ladder[i]
		if t.OpenEnded() || t.Max > minutes {
			continue
		}
		if best == nil || t.Max > best.Max {
			best = &ladder[i]
		}
	}
	if best == nil {
		return decimal.Zero
	}
	return best.Amount
}

func clamp(v, limit decimal.Decimal) decimal.Decimal {
	if limit.IsPositive() && v.GreaterThan(limit) {
		return limit
	}
	return v
}
