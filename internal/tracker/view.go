package tracker

import (
	"strings"

	"github.com/xtding233/gacha-mercy/internal/forecast"
	"github.com/xtding233/gacha-mercy/internal/gacha"
	"github.com/xtding233/gacha-mercy/internal/history"
	"github.com/xtding233/gacha-mercy/internal/stats"
)

// TierView is one tracked tier of a category.
type TierView struct {
	Rarity  gacha.Rarity `json:"rarity"`
	Pity    int          `json:"pity"`
	HasRule bool         `json:"has_rule"`
	Chance  float64      `json:"chance,omitempty"`
	Warning string       `json:"warning,omitempty"`
}

// View is a read-only snapshot of one category for presentation.
type View struct {
	Category  gacha.Category `json:"category"`
	Title     string         `json:"title"`
	Primary   gacha.Rarity   `json:"primary"`
	Tiers     []TierView     `json:"tiers"`
	Pity      int            `json:"pity"`
	Chance    float64        `json:"chance"`
	Progress  float64        `json:"progress"`
	Outlook   string         `json:"outlook"`
	Milestone string         `json:"milestone"`
	SoftPity  int            `json:"soft_pity"`
	HardPity  int            `json:"hard_pity"`
	Warning   string         `json:"warning,omitempty"`
	Inventory int            `json:"inventory"`

	// Forecast is the distribution of draws until the next primary hit.
	Forecast forecast.Stats `json:"forecast"`
	// WithinTen is the probability of a primary hit in the next ten draws.
	WithinTen float64 `json:"within_ten"`
}

// View returns the snapshot of cat.
func (t *Tracker) View(cat gacha.Category) (View, error) {
	prof, err := t.ledger.Rules().Profile(cat)
	if err != nil {
		return View{}, err
	}
	st, err := t.ledger.Snapshot(cat)
	if err != nil {
		return View{}, err
	}
	rule := prof.PrimaryRule()
	reading := gacha.Evaluate(rule, st.Primary())
	dist := forecast.Forecast(rule, st.Primary())

	v := View{
		Category:  cat,
		Title:     cat.Title(),
		Primary:   prof.Primary(),
		Pity:      reading.Pity,
		Chance:    reading.Chance,
		Progress:  reading.Progress,
		Outlook:   gacha.Outlook(reading.Chance, prof.Primary()),
		Milestone: gacha.Milestone(rule, reading.Pity),
		SoftPity:  rule.SoftPityStart,
		HardPity:  rule.HardPityCap,
		Inventory: t.inv.Count(cat),
		Forecast:  dist.Stats(),
		WithinTen: dist.Within(10),
	}
	for _, tier := range prof.Tiers {
		tv := TierView{Rarity: tier, Pity: st.Pity[tier]}
		if r, ok := prof.Rule(tier); ok {
			tv.HasRule = true
			tv.Chance = gacha.ComputeChance(r, tv.Pity)
			tv.Warning = tierAnomaly(prof, tier, tv.Pity).Message(cat, tier)
		}
		v.Tiers = append(v.Tiers, tv)
	}
	var warnings []string
	for i := len(v.Tiers) - 1; i >= 0; i-- {
		if w := v.Tiers[i].Warning; w != "" {
			warnings = append(warnings, w)
		}
	}
	v.Warning = strings.Join(warnings, "\n")
	return v, nil
}

// Dashboard is the cross-category summary.
type Dashboard struct {
	Stats     stats.Summary          `json:"stats"`
	LastHits  []string               `json:"last_hits"`
	Inventory map[gacha.Category]int `json:"inventory"`
	Pity      map[gacha.Category]int `json:"pity"`
	Cycles    []history.Cycle        `json:"cycles"`
	// CycleStats summarizes the lengths of the retained cycles.
	CycleStats forecast.Stats `json:"cycle_stats"`
}

// Dashboard returns totals, last hits, inventory and primary pity of every
// category.
func (t *Tracker) Dashboard() Dashboard {
	d := Dashboard{
		Stats:     t.stats.Summary(),
		Inventory: t.inv.Snapshot(),
		Pity:      make(map[gacha.Category]int),
		Cycles:    t.hist.Cycles(),
	}
	for _, r := range []gacha.Rarity{gacha.Epic, gacha.Legendary, gacha.Mythical} {
		d.LastHits = append(d.LastHits, t.stats.Label(r))
	}
	for _, cat := range t.ledger.Rules().Categories() {
		st, _ := t.ledger.Snapshot(cat)
		d.Pity[cat] = st.Primary()
	}
	lengths := make([]int, len(d.Cycles))
	for i, c := range d.Cycles {
		lengths[i] = len(c) - 1
	}
	d.CycleStats = forecast.Summarize(lengths)
	return d
}
