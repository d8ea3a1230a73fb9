package gacha

import (
	"errors"
	"fmt"
)

var (
	// ErrConfigInvariant marks a malformed mercy rule or profile. Fatal at load.
	ErrConfigInvariant = errors.New("mercy config invariant violated")

	ErrUnknownCategory  = errors.New("unknown category")
	ErrUnknownRarity    = errors.New("rarity not tracked by category")
	ErrInvalidHit       = errors.New("hit position out of range")
	ErrInvalidDrawCount = errors.New("draw count must be >= 1")

	// ErrCancelled is returned when a prompt was declined. The operation
	// that asked has not mutated anything.
	ErrCancelled = errors.New("operation cancelled")

	ErrInsufficientInventory = errors.New("insufficient inventory")
)

// InsufficientInventoryError reports a draw request larger than the tracked
// inventory, after any correction was applied.
type InsufficientInventoryError struct {
	Category  Category
	Tracked   int
	Requested int
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("insufficient %s inventory: tracked %d, requested %d", e.Category, e.Tracked, e.Requested)
}

func (e *InsufficientInventoryError) Is(target error) bool {
	return target == ErrInsufficientInventory
}
