// resolve.go
package game

import (
	"fmt"
	"sort"

	"github.com/xtding233/gacha-mercy/internal/gacha"
)

// DefaultRaw returns the built-in rule table in file form.
func DefaultRaw() RawConfig {
	return FromRuleSet(gacha.DefaultRuleSet())
}

// FromRuleSet converts a rule set into its file form.
func FromRuleSet(rs gacha.RuleSet) RawConfig {
	out := RawConfig{Version: "builtin", Categories: make(map[string]RawCategory, len(rs))}
	for cat, p := range rs {
		rc := RawCategory{Rules: make(map[string]RawRule, len(p.Rules))}
		for _, t := range p.Tiers {
			rc.Tiers = append(rc.Tiers, t.String())
		}
		for tier, r := range p.Rules {
			base, soft, inc, hard := r.BaseChance, r.SoftPityStart, r.IncrementPerPull, r.HardPityCap
			rc.Rules[tier.String()] = RawRule{Base: &base, Soft: &soft, Increment: &inc, Hard: &hard}
		}
		out.Categories[string(cat)] = rc
	}
	return out
}

// Resolve validates cfg and turns it into a rule set.
func Resolve(cfg RawConfig) (gacha.RuleSet, error) {
	if err := ValidateRaw(cfg); err != nil {
		return nil, err
	}
	rs := make(gacha.RuleSet, len(cfg.Categories))
	for name, rc := range cfg.Categories {
		cat, _ := gacha.ParseCategory(name)
		p := gacha.Profile{Category: cat, Rules: make(map[gacha.Rarity]gacha.MercyRule, len(rc.Rules))}
		for _, t := range rc.Tiers {
			r, _ := gacha.ParseRarity(t)
			p.Tiers = append(p.Tiers, r)
		}
		sort.Slice(p.Tiers, func(i, j int) bool { return p.Tiers[i] < p.Tiers[j] })
		for t, raw := range rc.Rules {
			r, _ := gacha.ParseRarity(t)
			p.Rules[r] = gacha.MercyRule{
				BaseChance:       *raw.Base,
				SoftPityStart:    *raw.Soft,
				IncrementPerPull: *raw.Increment,
				HardPityCap:      *raw.Hard,
				GuaranteedRarity: r,
			}
		}
		rs[cat] = p
	}
	if err := rs.Validate(); err != nil {
		return nil, fmt.Errorf("resolve rules: %w", err)
	}
	return rs, nil
}
