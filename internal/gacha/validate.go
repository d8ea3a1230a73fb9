package gacha

import (
	"errors"
	"fmt"
	"math"
)

var errChanceRange = errors.New("chance must be 0..100")

func validateChance(p float64) error {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return errChanceRange
	}
	if p < 0 || p > 100 {
		return errChanceRange
	}
	return nil
}

// validateBatch checks a batch before anything is mutated.
func validateBatch(p Profile, total int, hits []Hit) error {
	if total < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidDrawCount, total)
	}
	for _, h := range hits {
		if h.Position < 1 || h.Position > total {
			return fmt.Errorf("%w: position %d not in [1,%d]", ErrInvalidHit, h.Position, total)
		}
		if h.Rarity != RarityNone && !p.Tracks(h.Rarity) {
			return fmt.Errorf("%w: %s does not track %s", ErrUnknownRarity, p.Category, h.Rarity)
		}
	}
	return nil
}
