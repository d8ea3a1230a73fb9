package gacha

import (
	"fmt"
	"sort"
)

// MercyRule defines the soft/hard pity ramp of one guaranteed rarity.
// Example: Soft=200, Inc=5, Hard=219 → from pull #201 the chance grows by 5%
// per pull and is 100% at pull #219.
type MercyRule struct {
	BaseChance       float64 // % chance before soft pity, in [0,100]
	SoftPityStart    int     // pity after which the ramp starts
	IncrementPerPull float64 // % added per pull past SoftPityStart
	HardPityCap      int     // pity at which a hit is guaranteed
	GuaranteedRarity Rarity
}

// Validate checks the rule invariants. Violations wrap ErrConfigInvariant.
func (r MercyRule) Validate() error {
	if err := validateChance(r.BaseChance); err != nil {
		return fmt.Errorf("%w: base chance %v must be in [0,100]", ErrConfigInvariant, r.BaseChance)
	}
	if r.SoftPityStart < 0 {
		return fmt.Errorf("%w: soft pity start %d must be >= 0", ErrConfigInvariant, r.SoftPityStart)
	}
	if r.IncrementPerPull < 0 {
		return fmt.Errorf("%w: increment %v must be >= 0", ErrConfigInvariant, r.IncrementPerPull)
	}
	if r.HardPityCap <= r.SoftPityStart {
		return fmt.Errorf("%w: hard pity cap %d must exceed soft pity start %d", ErrConfigInvariant, r.HardPityCap, r.SoftPityStart)
	}
	if r.GuaranteedRarity == RarityNone {
		return fmt.Errorf("%w: guaranteed rarity is required", ErrConfigInvariant)
	}
	return nil
}

// Profile describes one category: which tiers it tracks and the mercy rule
// of each tier that has one. The highest tier is the primary tier and must
// have a rule.
type Profile struct {
	Category Category
	Tiers    []Rarity // ascending severity
	Rules    map[Rarity]MercyRule
}

// Primary returns the highest tracked tier.
func (p Profile) Primary() Rarity {
	if len(p.Tiers) == 0 {
		return RarityNone
	}
	return p.Tiers[len(p.Tiers)-1]
}

// PrimaryRule returns the rule governing the primary tier.
func (p Profile) PrimaryRule() MercyRule {
	return p.Rules[p.Primary()]
}

// Rule returns the rule of tier r, if one is defined.
func (p Profile) Rule(r Rarity) (MercyRule, bool) {
	rule, ok := p.Rules[r]
	return rule, ok
}

// Tracks reports whether the category tracks tier r.
func (p Profile) Tracks(r Rarity) bool {
	for _, t := range p.Tiers {
		if t == r {
			return true
		}
	}
	return false
}

// Validate checks tier ordering and every rule.
func (p Profile) Validate() error {
	if p.Category == "" {
		return fmt.Errorf("%w: category is required", ErrConfigInvariant)
	}
	if len(p.Tiers) == 0 {
		return fmt.Errorf("%w: %s tracks no tiers", ErrConfigInvariant, p.Category)
	}
	for i, t := range p.Tiers {
		if t == RarityNone {
			return fmt.Errorf("%w: %s tier %d is not a rarity", ErrConfigInvariant, p.Category, i)
		}
		if i > 0 && p.Tiers[i-1] >= t {
			return fmt.Errorf("%w: %s tiers must be strictly ascending", ErrConfigInvariant, p.Category)
		}
	}
	if _, ok := p.Rules[p.Primary()]; !ok {
		return fmt.Errorf("%w: %s has no rule for primary tier %s", ErrConfigInvariant, p.Category, p.Primary())
	}
	for tier, rule := range p.Rules {
		if !p.Tracks(tier) {
			return fmt.Errorf("%w: %s has a rule for untracked tier %s", ErrConfigInvariant, p.Category, tier)
		}
		if rule.GuaranteedRarity != tier {
			return fmt.Errorf("%w: %s rule for %s guarantees %s", ErrConfigInvariant, p.Category, tier, rule.GuaranteedRarity)
		}
		if err := rule.Validate(); err != nil {
			return fmt.Errorf("%s %s: %w", p.Category, tier, err)
		}
	}
	return nil
}

// RuleSet maps each category to its profile.
type RuleSet map[Category]Profile

// Profile returns the profile of cat or ErrUnknownCategory.
func (rs RuleSet) Profile(cat Category) (Profile, error) {
	p, ok := rs[cat]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q", ErrUnknownCategory, cat)
	}
	return p, nil
}

// Categories returns the configured categories, built-ins first in display
// order, then any others alphabetically.
func (rs RuleSet) Categories() []Category {
	out := make([]Category, 0, len(rs))
	seen := make(map[Category]bool, len(rs))
	for _, c := range Categories() {
		if _, ok := rs[c]; ok {
			out = append(out, c)
			seen[c] = true
		}
	}
	var extra []Category
	for c := range rs {
		if !seen[c] {
			extra = append(extra, c)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(out, extra...)
}

// Validate validates every profile.
func (rs RuleSet) Validate() error {
	if len(rs) == 0 {
		return fmt.Errorf("%w: no categories configured", ErrConfigInvariant)
	}
	for _, c := range rs.Categories() {
		p := rs[c]
		if p.Category != c {
			return fmt.Errorf("%w: profile keyed %s names %s", ErrConfigInvariant, c, p.Category)
		}
		if err := p.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// DefaultRuleSet returns the built-in mercy table.
func DefaultRuleSet() RuleSet {
	ancient := MercyRule{BaseChance: 0.5, SoftPityStart: 200, IncrementPerPull: 5.0, HardPityCap: 219, GuaranteedRarity: Legendary}
	sacred := MercyRule{BaseChance: 6.0, SoftPityStart: 12, IncrementPerPull: 2.0, HardPityCap: 59, GuaranteedRarity: Legendary}
	primal := MercyRule{BaseChance: 0.1, SoftPityStart: 200, IncrementPerPull: 10.0, HardPityCap: 210, GuaranteedRarity: Mythical}
	return RuleSet{
		Ancient: {Category: Ancient, Tiers: []Rarity{Epic, Legendary}, Rules: map[Rarity]MercyRule{Legendary: ancient}},
		Void:    {Category: Void, Tiers: []Rarity{Epic, Legendary}, Rules: map[Rarity]MercyRule{Legendary: ancient}},
		Primal:  {Category: Primal, Tiers: []Rarity{Legendary, Mythical}, Rules: map[Rarity]MercyRule{Mythical: primal}},
		Sacred:  {Category: Sacred, Tiers: []Rarity{Legendary}, Rules: map[Rarity]MercyRule{Legendary: sacred}},
	}
}
