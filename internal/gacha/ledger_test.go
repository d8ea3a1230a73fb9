package gacha

import (
	"errors"
	"testing"
)

type countInventory map[Category]int

func (c countInventory) Count(cat Category) int      { return c[cat] }
func (c countInventory) Set(cat Category, n int)     { c[cat] = n }
func (c countInventory) Consume(cat Category, n int) { c[cat] = max(0, c[cat]-n) }

func TestLedgerSingleConsumesInventory(t *testing.T) {
	inv := countInventory{Ancient: 3}
	l := NewLedger(DefaultRuleSet(), inv)
	if err := l.Restore(Ancient, map[Rarity]int{Epic: 4, Legendary: 5}); err != nil {
		t.Fatal(err)
	}
	got, err := l.Single(Ancient, RarityNone, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got.Pity[Legendary] != 6 {
		t.Fatalf("legendary=%d want 6", got.Pity[Legendary])
	}
	if inv[Ancient] != 2 {
		t.Fatalf("inventory=%d want 2", inv[Ancient])
	}
}

func TestLedgerScenarioD(t *testing.T) {
	inv := countInventory{Ancient: 10}
	l := NewLedger(DefaultRuleSet(), inv)
	got, err := l.Batch(Ancient, 10, []Hit{{3, Epic}, {7, Legendary}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got.Pity[Legendary] != 3 || got.Pity[Epic] != 3 {
		t.Fatalf("got %v want both 3", got.Pity)
	}
	if inv[Ancient] != 0 {
		t.Fatalf("inventory=%d want 0", inv[Ancient])
	}
}

func TestLedgerInsufficientInventoryIsAtomic(t *testing.T) {
	inv := countInventory{Void: 4}
	l := NewLedger(DefaultRuleSet(), inv)
	_, err := l.Batch(Void, 10, nil, func(cat Category, tracked, requested int) (int, error) {
		if tracked != 4 || requested != 10 {
			t.Fatalf("fix got tracked=%d requested=%d", tracked, requested)
		}
		return 8, nil
	})
	var ie *InsufficientInventoryError
	if !errors.As(err, &ie) || !errors.Is(err, ErrInsufficientInventory) {
		t.Fatalf("expected insufficient inventory, got %v", err)
	}
	if ie.Tracked != 8 || ie.Requested != 10 {
		t.Fatalf("unexpected error fields %+v", ie)
	}
	if inv[Void] != 8 {
		t.Fatalf("correction should be written; inventory=%d", inv[Void])
	}
	s, _ := l.Snapshot(Void)
	if s.Pity[Legendary] != 0 || s.Pity[Epic] != 0 {
		t.Fatalf("ledger mutated on abort: %v", s.Pity)
	}
}

func TestLedgerCorrectionAllowsDraw(t *testing.T) {
	inv := countInventory{Sacred: 0}
	l := NewLedger(DefaultRuleSet(), inv)
	_, err := l.Batch(Sacred, 10, []Hit{{5, Legendary}}, func(Category, int, int) (int, error) { return 25, nil })
	if err != nil {
		t.Fatal(err)
	}
	if inv[Sacred] != 15 {
		t.Fatalf("inventory=%d want 15", inv[Sacred])
	}
	s, _ := l.Snapshot(Sacred)
	if s.Pity[Legendary] != 5 {
		t.Fatalf("legendary=%d want 5", s.Pity[Legendary])
	}
}

func TestLedgerCancelledFix(t *testing.T) {
	inv := countInventory{Primal: 1}
	l := NewLedger(DefaultRuleSet(), inv)
	_, err := l.Single(Primal, RarityNone, func(Category, int, int) (int, error) { return 0, ErrCancelled })
	if err != nil {
		t.Fatalf("single with stock: %v", err)
	}
	// one unit is enough for a single draw, so the fix was never asked
	if inv[Primal] != 0 {
		t.Fatalf("inventory=%d want 0", inv[Primal])
	}
	_, err = l.Single(Primal, RarityNone, func(Category, int, int) (int, error) { return 0, ErrCancelled })
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
	s, _ := l.Snapshot(Primal)
	if s.Pity[Mythical] != 1 {
		t.Fatalf("mythical=%d want 1", s.Pity[Mythical])
	}
}

func TestLedgerInvalidBatchDoesNotAskFix(t *testing.T) {
	l := NewLedger(DefaultRuleSet(), countInventory{})
	_, err := l.Batch(Ancient, 5, []Hit{{9, Epic}}, func(Category, int, int) (int, error) {
		t.Fatalf("fix must not be asked for an invalid batch")
		return 0, nil
	})
	if !errors.Is(err, ErrInvalidHit) {
		t.Fatalf("expected ErrInvalidHit, got %v", err)
	}
}

func TestLedgerWithoutInventory(t *testing.T) {
	l := NewLedger(DefaultRuleSet(), nil)
	if _, err := l.Batch(Ancient, 50, nil, nil); err != nil {
		t.Fatal(err)
	}
	s, _ := l.Snapshot(Ancient)
	if s.Primary() != 50 {
		t.Fatalf("primary=%d want 50", s.Primary())
	}
}

func TestLedgerUnknownCategory(t *testing.T) {
	l := NewLedger(DefaultRuleSet(), nil)
	if _, err := l.Reset("mystery"); !errors.Is(err, ErrUnknownCategory) {
		t.Fatalf("expected ErrUnknownCategory, got %v", err)
	}
}

func TestLedgerRecordHitAndSetRules(t *testing.T) {
	inv := countInventory{Ancient: 0}
	l := NewLedger(DefaultRuleSet(), inv)
	_ = l.Restore(Ancient, map[Rarity]int{Epic: 30, Legendary: 219})
	s, err := l.RecordHit(Ancient, Legendary)
	if err != nil {
		t.Fatal(err)
	}
	if s.Pity[Epic] != 0 || s.Pity[Legendary] != 0 || s.Previous != 219 {
		t.Fatalf("unexpected state %+v", s)
	}

	_ = l.Restore(Ancient, map[Rarity]int{Epic: 3, Legendary: 9})
	rules := DefaultRuleSet()
	p := rules[Ancient]
	p.Tiers = []Rarity{Legendary}
	rules[Ancient] = p
	l.SetRules(rules)
	s, _ = l.Snapshot(Ancient)
	if len(s.Pity) != 1 || s.Pity[Legendary] != 9 {
		t.Fatalf("rules swap should keep tracked tiers only; got %v", s.Pity)
	}
}
