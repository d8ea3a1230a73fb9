package game

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xtding233/gacha-mercy/internal/gacha"
)

// ValidateRaw checks a merged RawConfig and reports every violation at once.
// The error wraps gacha.ErrConfigInvariant.
func ValidateRaw(cfg RawConfig) error {
	var errs []string

	if len(cfg.Categories) == 0 {
		errs = append(errs, "categories must not be empty")
	}

	names := make([]string, 0, len(cfg.Categories))
	for name := range cfg.Categories {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		rc := cfg.Categories[name]
		if strings.TrimSpace(name) == "" {
			errs = append(errs, "category name must not be empty")
			continue
		}
		// tiers
		if len(rc.Tiers) == 0 {
			errs = append(errs, fmt.Sprintf("%s.tiers must not be empty", name))
		}
		tracked := make(map[gacha.Rarity]bool, len(rc.Tiers))
		var primary gacha.Rarity
		for i, t := range rc.Tiers {
			r, err := gacha.ParseRarity(t)
			if err != nil || r == gacha.RarityNone {
				errs = append(errs, fmt.Sprintf("%s.tiers[%d]: unknown rarity %q", name, i, t))
				continue
			}
			if tracked[r] {
				errs = append(errs, fmt.Sprintf("%s.tiers[%d]: duplicate rarity %s", name, i, r))
			}
			tracked[r] = true
			primary = max(primary, r)
		}

		// rules
		ruleTiers := make([]string, 0, len(rc.Rules))
		for t := range rc.Rules {
			ruleTiers = append(ruleTiers, t)
		}
		sort.Strings(ruleTiers)
		hasPrimary := false
		for _, t := range ruleTiers {
			field := name + ".rules." + t
			r, err := gacha.ParseRarity(t)
			if err != nil || r == gacha.RarityNone {
				errs = append(errs, fmt.Sprintf("%s: unknown rarity", field))
				continue
			}
			if !tracked[r] {
				errs = append(errs, fmt.Sprintf("%s: rarity is not in %s.tiers", field, name))
			}
			if r == primary {
				hasPrimary = true
			}
			errs = append(errs, validateRule(field, rc.Rules[t])...)
		}
		if primary != gacha.RarityNone && !hasPrimary {
			errs = append(errs, fmt.Sprintf("%s.rules.%s is required (primary tier)", name, primary))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: config validation failed: %s", gacha.ErrConfigInvariant, strings.Join(errs, "; "))
	}
	return nil
}

func validateRule(field string, r RawRule) []string {
	var errs []string
	if r.Base == nil {
		errs = append(errs, field+".base is required")
	} else if *r.Base < 0 || *r.Base > 100 {
		errs = append(errs, field+".base must be in [0,100]")
	}
	if r.Soft == nil {
		errs = append(errs, field+".soft is required")
	} else if *r.Soft < 0 {
		errs = append(errs, field+".soft must be >= 0")
	}
	if r.Increment == nil {
		errs = append(errs, field+".increment is required")
	} else if *r.Increment < 0 {
		errs = append(errs, field+".increment must be >= 0")
	}
	if r.Hard == nil {
		errs = append(errs, field+".hard is required")
	} else if r.Soft != nil && *r.Hard <= *r.Soft {
		errs = append(errs, field+".hard must be > soft")
	}
	return errs
}
