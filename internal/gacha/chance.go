package gacha

import "strconv"

// ComputeChance returns the % chance of the guaranteed rarity on the next
// draw at the given pity:
//   - pity <= SoftPityStart: BaseChance.
//   - otherwise: BaseChance + (min(pity, HardPityCap) - SoftPityStart) * IncrementPerPull.
//   - pity >= HardPityCap: exactly 100.
//
// The result is clamped to [0,100] and is non-decreasing in pity.
func ComputeChance(rule MercyRule, pity int) float64 {
	return clampChance(rampChance(rule, pity))
}

// rampChance is ComputeChance without the final clamp. It can exceed 100 only
// when the ramp overshoots before the hard cap, which the detector flags.
func rampChance(rule MercyRule, pity int) float64 {
	if pity >= rule.HardPityCap {
		return 100.0
	}
	if pity <= rule.SoftPityStart {
		return rule.BaseChance
	}
	extra := min(pity, rule.HardPityCap) - rule.SoftPityStart
	return rule.BaseChance + float64(extra)*rule.IncrementPerPull
}

func clampChance(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 100 {
		return 100
	}
	return c
}

// NormalizedProgress returns how far pity is through the soft→hard ramp, in
// [0,1]. It ignores BaseChance and is used for curve scaling only.
func NormalizedProgress(rule MercyRule, pity int) float64 {
	if pity <= rule.SoftPityStart {
		return 0
	}
	extra := min(pity, rule.HardPityCap) - rule.SoftPityStart
	span := max(1, rule.HardPityCap-rule.SoftPityStart)
	v := float64(extra) / float64(span)
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Reading is everything a view needs about one tier at one pity value.
type Reading struct {
	Pity     int
	Chance   float64
	Progress float64
	Anomaly  Anomaly
}

// Evaluate computes chance, progress and anomaly for pity under rule.
func Evaluate(rule MercyRule, pity int) Reading {
	return Reading{
		Pity:     pity,
		Chance:   ComputeChance(rule, pity),
		Progress: NormalizedProgress(rule, pity),
		Anomaly:  CheckAnomaly(rule, pity, rampChance(rule, pity)),
	}
}

// Outlook returns the status line shown next to the chance, e.g.
// "High chance of Legendary".
func Outlook(chance float64, rarity Rarity) string {
	switch {
	case chance >= 75.0:
		return "High chance of " + rarity.Title()
	case chance >= 40.0:
		return "Growing chance of " + rarity.Title()
	default:
		return "Low chance of " + rarity.Title()
	}
}

// Milestone describes the distance to the next threshold.
func Milestone(rule MercyRule, pity int) string {
	switch {
	case pity < rule.SoftPityStart:
		return strconv.Itoa(rule.SoftPityStart-pity) + " until soft pity"
	case pity < rule.HardPityCap:
		return strconv.Itoa(rule.HardPityCap-pity) + " until hard pity"
	default:
		return "At or beyond hard pity"
	}
}
