package gacha

import "fmt"

// Anomaly is a state the probability model says cannot happen. It is
// advisory: detection never mutates state or blocks an operation.
type Anomaly int

const (
	AnomalyNone Anomaly = iota
	AnomalyHardPityExceeded
	AnomalyChanceOverflow
)

func (a Anomaly) String() string {
	switch a {
	case AnomalyHardPityExceeded:
		return "hard_pity_exceeded"
	case AnomalyChanceOverflow:
		return "chance_overflow"
	default:
		return "none"
	}
}

// CheckAnomaly flags pity past the hard cap, or else a chance above 100%.
// Only one anomaly is reported; the pity check wins.
func CheckAnomaly(rule MercyRule, pity int, chance float64) Anomaly {
	if pity > rule.HardPityCap {
		return AnomalyHardPityExceeded
	}
	if chance > 100 {
		return AnomalyChanceOverflow
	}
	return AnomalyNone
}

// Message returns the user-facing warning for a.
func (a Anomaly) Message(cat Category, rarity Rarity) string {
	switch a {
	case AnomalyHardPityExceeded:
		return fmt.Sprintf("You have surpassed the Hard Pity Level for %s on the %s shard. "+
			"This indicates that the correct number of pulls has not been accurately recorded.",
			rarity.Title(), cat.Title())
	case AnomalyChanceOverflow:
		return fmt.Sprintf("Your %s chance for the %s shard has exceeded 100%%. "+
			"This indicates that the correct number of pulls has not been accurately recorded.",
			rarity.Title(), cat.Title())
	default:
		return ""
	}
}
