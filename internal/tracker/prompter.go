package tracker

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xtding233/gacha-mercy/internal/gacha"
)

// HardPityChoice is the answer to a hard-pity prompt.
type HardPityChoice int

const (
	HardPityCancel HardPityChoice = iota
	HardPityRecord                // register the guaranteed hit, no inventory spent
	HardPityReset                 // zero every tier after confirmation
)

func (c HardPityChoice) String() string {
	switch c {
	case HardPityRecord:
		return "record"
	case HardPityReset:
		return "reset"
	default:
		return "cancel"
	}
}

// ParseHardPityChoice accepts "record", "reset" and "cancel" (or "").
func ParseHardPityChoice(s string) (HardPityChoice, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "record", "record hit", "r":
		return HardPityRecord, nil
	case "reset", "reset pity":
		return HardPityReset, nil
	case "", "cancel", "c":
		return HardPityCancel, nil
	}
	return HardPityCancel, fmt.Errorf("unknown hard pity choice %q", s)
}

// Prompter asks the user to disambiguate an operation. Any method may return
// gacha.ErrCancelled; the operation that asked is then discarded.
type Prompter interface {
	// PickHits returns the positions in [start,end] that were hits. size is
	// end-start+1 and never more than BlockSize.
	PickHits(size, start, end int) ([]int, error)
	// PickRarity returns the rarity of the draw at position. RarityNone
	// drops the position.
	PickRarity(position int, choices []gacha.Rarity) (gacha.Rarity, error)
	// CorrectInventory returns the real count when requested exceeds tracked.
	CorrectInventory(cat gacha.Category, tracked, requested int) (int, error)
	ConfirmReset(cat gacha.Category) (bool, error)
	ResolveHardPity(cat gacha.Category, rarity gacha.Rarity) (HardPityChoice, error)
}

// Script is a Prompter with every answer given up front. Servers build one
// per request; tests use it directly.
type Script struct {
	// Hits maps a 1-based draw position to its rarity. A single draw is
	// position 1.
	Hits map[int]gacha.Rarity
	// Inventory is the corrected count; nil declines the correction.
	Inventory *int
	Confirm   bool
	HardPity  HardPityChoice
}

var _ Prompter = (*Script)(nil)

func (s *Script) PickHits(size, start, end int) ([]int, error) {
	var out []int
	for pos, r := range s.Hits {
		if pos >= start && pos <= end && r != gacha.RarityNone {
			out = append(out, pos)
		}
	}
	sort.Ints(out)
	return out, nil
}

func (s *Script) PickRarity(position int, choices []gacha.Rarity) (gacha.Rarity, error) {
	return s.Hits[position], nil
}

func (s *Script) CorrectInventory(cat gacha.Category, tracked, requested int) (int, error) {
	if s.Inventory == nil {
		return 0, gacha.ErrCancelled
	}
	return *s.Inventory, nil
}

func (s *Script) ConfirmReset(cat gacha.Category) (bool, error) { return s.Confirm, nil }

func (s *Script) ResolveHardPity(cat gacha.Category, rarity gacha.Rarity) (HardPityChoice, error) {
	return s.HardPity, nil
}
