package gacha

import "sort"

// Hit is one qualifying result inside a batch. Position is 1-based.
type Hit struct {
	Position int
	Rarity   Rarity
}

// PityState holds the counters of one category. Every tracked tier shares a
// single draw stream but resets independently.
type PityState struct {
	Category Category
	Pity     map[Rarity]int // draws since the last hit of that tier or above
	Previous int            // primary-tier pity before the last update
}

// NewPityState returns zeroed counters for every tier of p.
func NewPityState(p Profile) *PityState {
	s := &PityState{Category: p.Category, Pity: make(map[Rarity]int, len(p.Tiers))}
	for _, t := range p.Tiers {
		s.Pity[t] = 0
	}
	return s
}

// Clone returns a deep copy.
func (s *PityState) Clone() PityState {
	out := PityState{Category: s.Category, Previous: s.Previous, Pity: make(map[Rarity]int, len(s.Pity))}
	for k, v := range s.Pity {
		out.Pity[k] = v
	}
	return out
}

// Tiers returns the tracked tiers in ascending severity.
func (s *PityState) Tiers() []Rarity {
	out := make([]Rarity, 0, len(s.Pity))
	for t := range s.Pity {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Primary returns the pity of the highest tracked tier.
func (s *PityState) Primary() int {
	tiers := s.Tiers()
	if len(tiers) == 0 {
		return 0
	}
	return s.Pity[tiers[len(tiers)-1]]
}

// ApplySingle records one draw.
//   - RarityNone: every tier +1.
//   - hit at t: t and every lower tier reset to 0; higher tiers are left as
//     they are (a hit never increments).
func (s *PityState) ApplySingle(hit Rarity) error {
	if hit != RarityNone {
		if _, ok := s.Pity[hit]; !ok {
			return ErrUnknownRarity
		}
	}
	s.Previous = s.Primary()
	for t := range s.Pity {
		switch {
		case hit == RarityNone:
			s.Pity[t]++
		case t <= hit:
			s.Pity[t] = 0
		}
	}
	return nil
}

// ApplyBatch records total draws at once. For each tier only the latest
// qualifying hit (same tier or more severe) counts: pity becomes
// total - position. Tiers with no qualifying hit grow by total.
//
// This is not the same as replaying ApplySingle draw by draw when several
// tiers hit in one batch; it is the batch contract.
func (s *PityState) ApplyBatch(total int, hits []Hit) error {
	if total < 1 {
		return ErrInvalidDrawCount
	}
	for _, h := range hits {
		if h.Position < 1 || h.Position > total {
			return ErrInvalidHit
		}
		if h.Rarity == RarityNone {
			continue
		}
		if _, ok := s.Pity[h.Rarity]; !ok {
			return ErrUnknownRarity
		}
	}
	s.Previous = s.Primary()
	for t := range s.Pity {
		latest := 0
		for _, h := range hits {
			if h.Rarity != RarityNone && h.Rarity >= t && h.Position > latest {
				latest = h.Position
			}
		}
		if latest > 0 {
			s.Pity[t] = total - latest
		} else {
			s.Pity[t] += total
		}
	}
	return nil
}

// Reset zeroes every tier. Calling it twice is the same as once: Previous
// only moves when a counter actually changes.
func (s *PityState) Reset() {
	dirty := false
	for _, v := range s.Pity {
		if v != 0 {
			dirty = true
			break
		}
	}
	if !dirty {
		return
	}
	s.Previous = s.Primary()
	for t := range s.Pity {
		s.Pity[t] = 0
	}
}
