package gacha

import (
	"fmt"
	"strings"
)

// Category is a loot category (shard type) with its own pity counters.
type Category string

const (
	Ancient Category = "ancient"
	Void    Category = "void"
	Primal  Category = "primal"
	Sacred  Category = "sacred"
)

// Categories lists the built-in categories in display order.
func Categories() []Category {
	return []Category{Ancient, Void, Primal, Sacred}
}

// Title returns the display name, e.g. "Ancient".
func (c Category) Title() string {
	s := string(c)
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// ParseCategory accepts "ancient", "Ancient" or "Ancient Shards".
func ParseCategory(s string) (Category, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimSuffix(s, " shards")
	s = strings.TrimSuffix(s, " shard")
	if s == "" {
		return "", fmt.Errorf("%w: empty", ErrUnknownCategory)
	}
	return Category(s), nil
}

// Rarity is a hit tier. Higher values are more severe.
type Rarity int

const (
	RarityNone Rarity = iota
	Epic
	Legendary
	Mythical
)

func (r Rarity) String() string {
	switch r {
	case Epic:
		return "epic"
	case Legendary:
		return "legendary"
	case Mythical:
		return "mythical"
	default:
		return "none"
	}
}

// Title returns the display name, "No Hit" for RarityNone.
func (r Rarity) Title() string {
	switch r {
	case Epic:
		return "Epic"
	case Legendary:
		return "Legendary"
	case Mythical:
		return "Mythical"
	default:
		return "No Hit"
	}
}

// ParseRarity accepts full names, prefixes ("legend", "myth") and single
// letters, case-insensitively. "none", "no hit" and "" parse as RarityNone.
func ParseRarity(s string) (Rarity, error) {
	r := strings.ToLower(strings.TrimSpace(s))
	switch {
	case r == "" || r == "none" || r == "no hit" || r == "nohit" || r == "n":
		return RarityNone, nil
	case strings.HasPrefix(r, "myth") || r == "m":
		return Mythical, nil
	case strings.HasPrefix(r, "legend") || r == "l":
		return Legendary, nil
	case strings.HasPrefix(r, "epic") || r == "e":
		return Epic, nil
	}
	return RarityNone, fmt.Errorf("%w: %q", ErrUnknownRarity, s)
}

func (r Rarity) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Rarity) UnmarshalText(b []byte) error {
	v, err := ParseRarity(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}
