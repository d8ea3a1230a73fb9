// Package history keeps the rolling window of completed pity cycles used for
// trend ("ghost line") display.
package history

import (
	"encoding/json"

	"github.com/xtding233/gacha-mercy/internal/gacha"
)

// Window is the number of completed cycles kept.
const Window = 4

// Cycle is the pity value at each draw of one finished cycle: 0,1,...,n.
type Cycle []int

// Store detects cycle completion per category and keeps the newest Window
// cycles, oldest evicted first. It is not safe for concurrent use.
type Store struct {
	cycles   []Cycle
	previous map[gacha.Category]int
}

// New returns an empty store.
func New() *Store {
	return &Store{previous: make(map[gacha.Category]int)}
}

// Seed sets the last known pity of cat without recording anything. Call it
// with persisted pity at startup so the first reset still completes a cycle.
func (s *Store) Seed(cat gacha.Category, pity int) {
	s.previous[cat] = max(pity, 0)
}

// Observe records the new pity of cat. When it drops from >0 to 0 the cycle
// 0..previous is appended and returned.
func (s *Store) Observe(cat gacha.Category, pity int) (Cycle, bool) {
	prev := s.previous[cat]
	s.previous[cat] = max(pity, 0)
	if prev <= 0 || pity != 0 {
		return nil, false
	}
	c := make(Cycle, prev+1)
	for i := range c {
		c[i] = i
	}
	s.cycles = append(s.cycles, c)
	if len(s.cycles) > Window {
		s.cycles = append([]Cycle(nil), s.cycles[len(s.cycles)-Window:]...)
	}
	return c, true
}

// Cycles returns a copy of the window, oldest first.
func (s *Store) Cycles() []Cycle {
	out := make([]Cycle, len(s.cycles))
	for i, c := range s.cycles {
		out[i] = append(Cycle(nil), c...)
	}
	return out
}

// Len returns the number of cycles held.
func (s *Store) Len() int { return len(s.cycles) }

// Marshal encodes the window as a JSON array of integer arrays.
func (s *Store) Marshal() (string, error) {
	raw := make([][]int, len(s.cycles))
	for i, c := range s.cycles {
		raw[i] = []int(c)
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Unmarshal replaces the window with the decoded data. Malformed input or a
// cycle that does not start at 0 and strictly increase leaves an empty
// window and returns false; more than Window cycles keeps the newest.
func (s *Store) Unmarshal(data string) bool {
	s.cycles = nil
	if data == "" {
		return false
	}
	var raw [][]int
	if err := json.Unmarshal([]byte(data), &raw); err != nil {
		return false
	}
	cycles := make([]Cycle, 0, len(raw))
	for _, r := range raw {
		if !wellFormed(r) {
			return false
		}
		cycles = append(cycles, Cycle(r))
	}
	if len(cycles) > Window {
		cycles = cycles[len(cycles)-Window:]
	}
	s.cycles = cycles
	return true
}

func wellFormed(c []int) bool {
	if len(c) == 0 {
		return false
	}
	if c[0] != 0 {
		return false
	}
	for i := 1; i < len(c); i++ {
		if c[i] <= c[i-1] {
			return false
		}
	}
	return true
}
