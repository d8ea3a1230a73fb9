// Package stats keeps the lifetime draw counter and the draw index of the
// last hit per rarity.
package stats

import (
	"context"
	"fmt"

	"github.com/xtding233/gacha-mercy/internal/gacha"
	"github.com/xtding233/gacha-mercy/internal/storage"
)

var tracked = []gacha.Rarity{gacha.Epic, gacha.Legendary, gacha.Mythical}

// Recorder counts draws across every category. The zero value is not ready;
// use New.
type Recorder struct {
	total int
	last  map[gacha.Rarity]int // draw index, 1-based; absent = never
}

func New() *Recorder {
	return &Recorder{last: make(map[gacha.Rarity]int)}
}

// Total returns the lifetime draw count.
func (r *Recorder) Total() int { return r.total }

// Register counts one draw and marks it as the last hit of rarity.
func (r *Recorder) Register(rarity gacha.Rarity) {
	r.total++
	if rarity != gacha.RarityNone {
		r.last[rarity] = r.total
	}
}

// MarkHit marks the latest draw as a hit of rarity without counting a new
// draw. It records a hit the user forgot to enter.
func (r *Recorder) MarkHit(rarity gacha.Rarity) {
	if rarity == gacha.RarityNone || r.total == 0 {
		return
	}
	r.last[rarity] = r.total
}

// RegisterBatch counts n draws. Each hit marks the draw at its position
// inside the batch; for a rarity hit more than once the latest position wins.
func (r *Recorder) RegisterBatch(n int, hits []gacha.Hit) {
	if n <= 0 {
		return
	}
	base := r.total
	r.total += n
	for _, h := range hits {
		if h.Rarity == gacha.RarityNone || h.Position < 1 || h.Position > n {
			continue
		}
		if idx := base + h.Position; idx > r.last[h.Rarity] {
			r.last[h.Rarity] = idx
		}
	}
}

// Ago returns how many draws happened since the last hit of rarity.
func (r *Recorder) Ago(rarity gacha.Rarity) (int, bool) {
	idx, ok := r.last[rarity]
	if !ok || idx <= 0 || r.total <= 0 || idx > r.total {
		return 0, false
	}
	return r.total - idx, true
}

// Label renders "Legendary: 3 pulls ago" or "Legendary: no data".
func (r *Recorder) Label(rarity gacha.Rarity) string {
	n, ok := r.Ago(rarity)
	if !ok {
		return rarity.Title() + ": no data"
	}
	return fmt.Sprintf("%s: %d pulls ago", rarity.Title(), n)
}

// Summary is a read-only copy for presentation.
type Summary struct {
	Total int            `json:"total_pulls"`
	Ago   map[string]int `json:"pulls_since"`
}

func (r *Recorder) Summary() Summary {
	s := Summary{Total: r.total, Ago: make(map[string]int)}
	for _, rarity := range tracked {
		if n, ok := r.Ago(rarity); ok {
			s.Ago[rarity.String()] = n
		}
	}
	return s
}

// Load reads the counters from st. Unreadable values fall back to "no data";
// the first read error is returned alongside the partial result.
func Load(ctx context.Context, st storage.Store) (*Recorder, error) {
	r := New()
	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	total, err := storage.Int(ctx, st, storage.TotalPullsKey, 0)
	keep(err)
	r.total = max(total, 0)
	for _, rarity := range tracked {
		idx, err := storage.Int(ctx, st, storage.LastHitKey(rarity), -1)
		keep(err)
		if idx > 0 {
			r.last[rarity] = idx
		}
	}
	return r, firstErr
}

// Save writes every counter to st.
func (r *Recorder) Save(ctx context.Context, st storage.Store) error {
	if err := storage.SetInt(ctx, st, storage.TotalPullsKey, r.total); err != nil {
		return err
	}
	for _, rarity := range tracked {
		idx, ok := r.last[rarity]
		if !ok {
			idx = -1
		}
		if err := storage.SetInt(ctx, st, storage.LastHitKey(rarity), idx); err != nil {
			return err
		}
	}
	return nil
}
