package gacha

import (
	"fmt"
)

// Inventory is the shard counter the ledger draws from.
type Inventory interface {
	Count(cat Category) int
	Set(cat Category, n int)
	Consume(cat Category, n int)
}

// InventoryFix asks for the real inventory when a request exceeds the
// tracked count. Returning ErrCancelled aborts the operation.
type InventoryFix func(cat Category, tracked, requested int) (int, error)

// Ledger owns the pity state of every category and couples draws to the
// inventory: each draw consumes one unit. Operations are all-or-nothing.
// A Ledger is not safe for concurrent use.
type Ledger struct {
	rules  RuleSet
	states map[Category]*PityState
	inv    Inventory // optional
}

// NewLedger creates zeroed state for every category in rules. inv may be nil
// to track pity without inventory.
func NewLedger(rules RuleSet, inv Inventory) *Ledger {
	l := &Ledger{rules: rules, states: make(map[Category]*PityState, len(rules)), inv: inv}
	for cat, p := range rules {
		l.states[cat] = NewPityState(p)
	}
	return l
}

// Rules returns the rule set in use.
func (l *Ledger) Rules() RuleSet { return l.rules }

// SetRules swaps the rule set. Counters of tiers that are still tracked are
// kept; new tiers start at 0.
func (l *Ledger) SetRules(rules RuleSet) {
	next := make(map[Category]*PityState, len(rules))
	for cat, p := range rules {
		s := NewPityState(p)
		if old, ok := l.states[cat]; ok {
			s.Previous = old.Previous
			for t := range s.Pity {
				s.Pity[t] = old.Pity[t]
			}
		}
		next[cat] = s
	}
	l.rules = rules
	l.states = next
}

// Restore loads persisted counters. Negative values are clamped to 0 and
// untracked tiers ignored. Previous is set to the restored primary pity.
func (l *Ledger) Restore(cat Category, pity map[Rarity]int) error {
	s, err := l.state(cat)
	if err != nil {
		return err
	}
	for t := range s.Pity {
		if v, ok := pity[t]; ok {
			s.Pity[t] = max(v, 0)
		}
	}
	s.Previous = s.Primary()
	return nil
}

// Snapshot returns a copy of the counters of cat.
func (l *Ledger) Snapshot(cat Category) (PityState, error) {
	s, err := l.state(cat)
	if err != nil {
		return PityState{}, err
	}
	return s.Clone(), nil
}

// Reserve checks that draws units are available, asking fix for a corrected
// count when they are not. A correction is written to the inventory even if
// it is still insufficient. Nothing is consumed.
func (l *Ledger) Reserve(cat Category, draws int, fix InventoryFix) error {
	if _, err := l.state(cat); err != nil {
		return err
	}
	if l.inv == nil || draws <= 0 {
		return nil
	}
	tracked := l.inv.Count(cat)
	if draws <= tracked {
		return nil
	}
	if fix == nil {
		return &InsufficientInventoryError{Category: cat, Tracked: tracked, Requested: draws}
	}
	corrected, err := fix(cat, tracked, draws)
	if err != nil {
		return err
	}
	corrected = max(corrected, 0)
	if corrected != tracked {
		l.inv.Set(cat, corrected)
	}
	if draws > corrected {
		return &InsufficientInventoryError{Category: cat, Tracked: corrected, Requested: draws}
	}
	return nil
}

// Single applies one draw and consumes one unit.
func (l *Ledger) Single(cat Category, hit Rarity, fix InventoryFix) (PityState, error) {
	s, err := l.state(cat)
	if err != nil {
		return PityState{}, err
	}
	next := s.Clone()
	if err := next.ApplySingle(hit); err != nil {
		return PityState{}, fmt.Errorf("%s: %w", cat, err)
	}
	return l.commit(cat, next, 1, fix)
}

// Batch applies total draws with the given hits and consumes total units.
func (l *Ledger) Batch(cat Category, total int, hits []Hit, fix InventoryFix) (PityState, error) {
	s, err := l.state(cat)
	if err != nil {
		return PityState{}, err
	}
	p, _ := l.rules.Profile(cat)
	if err := validateBatch(p, total, hits); err != nil {
		return PityState{}, err
	}
	next := s.Clone()
	if err := next.ApplyBatch(total, hits); err != nil {
		return PityState{}, fmt.Errorf("%s: %w", cat, err)
	}
	return l.commit(cat, next, total, fix)
}

// RecordHit marks a hit of rarity without consuming inventory. It is used to
// resolve a missed hard-pity hit after the fact.
func (l *Ledger) RecordHit(cat Category, rarity Rarity) (PityState, error) {
	s, err := l.state(cat)
	if err != nil {
		return PityState{}, err
	}
	next := s.Clone()
	if err := next.ApplySingle(rarity); err != nil {
		return PityState{}, fmt.Errorf("%s: %w", cat, err)
	}
	*s = next
	return s.Clone(), nil
}

// Reset zeroes every tier of cat.
func (l *Ledger) Reset(cat Category) (PityState, error) {
	s, err := l.state(cat)
	if err != nil {
		return PityState{}, err
	}
	s.Reset()
	return s.Clone(), nil
}

func (l *Ledger) commit(cat Category, next PityState, draws int, fix InventoryFix) (PityState, error) {
	if err := l.Reserve(cat, draws, fix); err != nil {
		return PityState{}, err
	}
	if l.inv != nil {
		l.inv.Consume(cat, draws)
	}
	*l.states[cat] = next
	return next.Clone(), nil
}

func (l *Ledger) state(cat Category) (*PityState, error) {
	s, ok := l.states[cat]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, cat)
	}
	return s, nil
}
