// Package inventory is the single shared shard counter. Every view observes
// the same instance; changes are pushed to subscribers as full snapshots.
package inventory

import (
	"github.com/xtding233/gacha-mercy/internal/gacha"
)

// Snapshot is the count of every tracked category.
type Snapshot map[gacha.Category]int

// Observer receives a snapshot after every mutation.
type Observer func(Snapshot)

// Inventory holds non-negative counts per category. It is not safe for
// concurrent use.
type Inventory struct {
	counts    map[gacha.Category]int
	observers map[int]Observer
	nextID    int
}

// New returns an inventory tracking cats, all at 0.
func New(cats ...gacha.Category) *Inventory {
	inv := &Inventory{counts: make(map[gacha.Category]int, len(cats)), observers: make(map[int]Observer)}
	for _, c := range cats {
		inv.counts[c] = 0
	}
	return inv
}

// Subscribe registers fn and returns a func that removes it. The inventory
// never keeps anything else of the subscriber.
func (inv *Inventory) Subscribe(fn Observer) (cancel func()) {
	id := inv.nextID
	inv.nextID++
	inv.observers[id] = fn
	return func() { delete(inv.observers, id) }
}

// Tracks reports whether cat has a counter.
func (inv *Inventory) Tracks(cat gacha.Category) bool {
	_, ok := inv.counts[cat]
	return ok
}

// Count returns the count of cat; untracked categories read 0.
func (inv *Inventory) Count(cat gacha.Category) int {
	return inv.counts[cat]
}

// Add increments cat by one.
func (inv *Inventory) Add(cat gacha.Category) {
	if !inv.Tracks(cat) {
		return
	}
	inv.counts[cat]++
	inv.notify()
}

// Remove decrements cat by one, never below 0.
func (inv *Inventory) Remove(cat gacha.Category) {
	if !inv.Tracks(cat) {
		return
	}
	inv.counts[cat] = max(0, inv.counts[cat]-1)
	inv.notify()
}

// Set overwrites the count of cat, clamped at 0.
func (inv *Inventory) Set(cat gacha.Category, n int) {
	if !inv.Tracks(cat) {
		return
	}
	inv.counts[cat] = max(0, n)
	inv.notify()
}

// Consume removes n units from cat, never below 0. One notification is sent.
func (inv *Inventory) Consume(cat gacha.Category, n int) {
	if !inv.Tracks(cat) || n <= 0 {
		return
	}
	inv.counts[cat] = max(0, inv.counts[cat]-n)
	inv.notify()
}

// Reset zeroes every count.
func (inv *Inventory) Reset() {
	for c := range inv.counts {
		inv.counts[c] = 0
	}
	inv.notify()
}

// Load replaces the counts of tracked categories without touching others.
func (inv *Inventory) Load(s Snapshot) {
	for c, n := range s {
		if inv.Tracks(c) {
			inv.counts[c] = max(0, n)
		}
	}
	inv.notify()
}

// Snapshot returns a copy of all counts.
func (inv *Inventory) Snapshot() Snapshot {
	out := make(Snapshot, len(inv.counts))
	for c, n := range inv.counts {
		out[c] = n
	}
	return out
}

func (inv *Inventory) notify() {
	if len(inv.observers) == 0 {
		return
	}
	snap := inv.Snapshot()
	for _, fn := range inv.observers {
		fn(snap)
	}
}
