// Package rpc exposes the tracker to remote callers. Service holds the
// request/response shapes shared by the HTTP and gRPC surfaces and
// serializes every call; grpc.go registers it as mercy.v1.TrackerService.
package rpc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/xtding233/gacha-mercy/internal/curve"
	"github.com/xtding233/gacha-mercy/internal/gacha"
	"github.com/xtding233/gacha-mercy/internal/tracker"
)

// ErrBadRequest marks a request that could not be decoded.
var ErrBadRequest = errors.New("bad request")

// HitRequest is one hit of a batch.
type HitRequest struct {
	Position int    `json:"position"`
	Rarity   string `json:"rarity"`
}

// Request carries every answer an operation may need, since a remote
// caller cannot be prompted.
type Request struct {
	Category  string       `json:"category"`
	Draws     int          `json:"draws,omitempty"`
	Rarity    string       `json:"rarity,omitempty"` // single draw
	Hits      []HitRequest `json:"hits,omitempty"`
	Inventory *int         `json:"inventory,omitempty"` // corrected count, when short
	Confirm   bool         `json:"confirm,omitempty"`   // reset confirmation
	HardPity  string       `json:"hard_pity,omitempty"` // record | reset | cancel
	Delta     int          `json:"delta,omitempty"`
	Theme     string       `json:"theme,omitempty"`
}

// Result is returned by every mutating call.
type Result struct {
	View            tracker.View `json:"view"`
	CompletedCycle  []int        `json:"completed_cycle,omitempty"`
	HardPityReached bool         `json:"hard_pity_reached,omitempty"`
	Resolution      string       `json:"resolution,omitempty"`
}

// Curve is the rendered grid of one category.
type Curve struct {
	Category gacha.Category `json:"category"`
	Theme    curve.Theme    `json:"theme"`
	Lines    []string       `json:"lines"`
	HTML     []string       `json:"html"`
}

// Service serializes access to one tracker.
type Service struct {
	mu sync.Mutex
	t  *tracker.Tracker
}

func NewService(t *tracker.Tracker) *Service {
	return &Service{t: t}
}

// script turns a request into a prompter for an operation of draws draws:
// 0 for a reset, 1 for a single draw (Rarity), more for a batch (Hits).
// Batch hits must name distinct positions in [1,draws]; nothing is recorded
// otherwise.
func (r Request) script(draws int, batch bool) (*tracker.Script, error) {
	s := &tracker.Script{Hits: make(map[int]gacha.Rarity), Inventory: r.Inventory, Confirm: r.Confirm}
	if r.Rarity != "" {
		if batch || draws != 1 {
			return nil, fmt.Errorf("%w: rarity is only accepted on a single draw, use hits", ErrBadRequest)
		}
		rarity, err := gacha.ParseRarity(r.Rarity)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
		}
		s.Hits[1] = rarity
	}
	if len(r.Hits) > 0 && !batch {
		return nil, fmt.Errorf("%w: hits are only accepted on a batch", ErrBadRequest)
	}
	for _, h := range r.Hits {
		if h.Position < 1 || h.Position > draws {
			return nil, fmt.Errorf("%w: position %d not in [1,%d]", gacha.ErrInvalidHit, h.Position, draws)
		}
		if _, dup := s.Hits[h.Position]; dup {
			return nil, fmt.Errorf("%w: position %d given twice", gacha.ErrInvalidHit, h.Position)
		}
		rarity, err := gacha.ParseRarity(h.Rarity)
		if err != nil {
			return nil, fmt.Errorf("%w: hit %d: %v", ErrBadRequest, h.Position, err)
		}
		s.Hits[h.Position] = rarity
	}
	choice, err := tracker.ParseHardPityChoice(r.HardPity)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	s.HardPity = choice
	return s, nil
}

func (r Request) category() (gacha.Category, error) {
	cat, err := gacha.ParseCategory(r.Category)
	if err != nil {
		return "", err
	}
	return cat, nil
}

// RecordSingle records one draw; Rarity is the result ("" for no hit).
func (s *Service) RecordSingle(ctx context.Context, req Request) (Result, error) {
	return s.record(ctx, req, 1, false, func(cat gacha.Category, p tracker.Prompter) (tracker.Outcome, error) {
		return s.t.RecordSingle(ctx, cat, p)
	})
}

// RecordBatch records req.Draws draws (10 when unset) with req.Hits.
func (s *Service) RecordBatch(ctx context.Context, req Request) (Result, error) {
	n := req.Draws
	if n == 0 {
		n = 10
	}
	if n < 1 {
		return Result{}, fmt.Errorf("%w: got %d", gacha.ErrInvalidDrawCount, n)
	}
	return s.record(ctx, req, n, true, func(cat gacha.Category, p tracker.Prompter) (tracker.Outcome, error) {
		return s.t.RecordBatch(ctx, cat, n, p)
	})
}

// Reset zeroes a category; req.Confirm must be set.
func (s *Service) Reset(ctx context.Context, req Request) (Result, error) {
	return s.record(ctx, req, 0, false, func(cat gacha.Category, p tracker.Prompter) (tracker.Outcome, error) {
		return s.t.Reset(ctx, cat, p)
	})
}

func (s *Service) record(ctx context.Context, req Request, draws int, batch bool, op func(gacha.Category, tracker.Prompter) (tracker.Outcome, error)) (Result, error) {
	cat, err := req.category()
	if err != nil {
		return Result{}, err
	}
	p, err := req.script(draws, batch)
	if err != nil {
		return Result{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out, err := op(cat, p)
	if err != nil {
		return Result{}, err
	}
	view, err := s.t.View(cat)
	if err != nil {
		return Result{}, err
	}
	res := Result{View: view, CompletedCycle: out.Cycle, HardPityReached: out.HardPityReached}
	if out.HardPityReached {
		res.Resolution = out.Resolution.String()
	}
	return res, nil
}

// View returns one category.
func (s *Service) View(ctx context.Context, req Request) (tracker.View, error) {
	cat, err := req.category()
	if err != nil {
		return tracker.View{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.t.View(cat)
}

// Views returns every category in display order.
func (s *Service) Views(ctx context.Context) ([]tracker.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []tracker.View
	for _, cat := range s.t.Rules().Categories() {
		v, err := s.t.View(cat)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *Service) Dashboard(ctx context.Context) tracker.Dashboard {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.t.Dashboard()
}

// Curve makes req.Category active (when set) and returns its grid.
func (s *Service) Curve(ctx context.Context, req Request) (Curve, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if req.Category != "" {
		cat, err := req.category()
		if err != nil {
			return Curve{}, err
		}
		if err := s.t.SetActive(cat); err != nil {
			return Curve{}, err
		}
	}
	if req.Theme != "" {
		if err := s.t.SetTheme(ctx, curve.Theme(req.Theme)); err != nil {
			return Curve{}, fmt.Errorf("%w: %v", ErrBadRequest, err)
		}
	}
	g := s.t.Curve()
	return Curve{
		Category: s.t.Active(),
		Theme:    s.t.Theme(),
		Lines:    strings.Split(g.String(), "\n"),
		HTML:     g.HTML(s.t.Theme()),
	}, nil
}

// AdjustInventory applies req.Delta, or sets req.Inventory when given.
func (s *Service) AdjustInventory(ctx context.Context, req Request) (tracker.View, error) {
	cat, err := req.category()
	if err != nil {
		return tracker.View{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if req.Inventory != nil {
		err = s.t.SetInventory(cat, *req.Inventory)
	} else {
		err = s.t.AdjustInventory(cat, req.Delta)
	}
	if err != nil {
		return tracker.View{}, err
	}
	return s.t.View(cat)
}

// SetRules swaps in reloaded rules.
func (s *Service) SetRules(rules gacha.RuleSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.t.SetRules(rules)
}
