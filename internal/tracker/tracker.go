// Package tracker wires the pity ledger to inventory, cycle history, the
// curve renderer, dashboard stats and persistence. Every user operation
// goes through a Tracker; prompts go through a Prompter supplied per call.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/xtding233/gacha-mercy/internal/curve"
	"github.com/xtding233/gacha-mercy/internal/gacha"
	"github.com/xtding233/gacha-mercy/internal/history"
	"github.com/xtding233/gacha-mercy/internal/inventory"
	"github.com/xtding233/gacha-mercy/internal/stats"
	"github.com/xtding233/gacha-mercy/internal/storage"
)

// BlockSize is how many positions a custom batch asks about at once.
const BlockSize = 10

// Options configures New. Store defaults to an in-memory store and Logger
// to log.Default().
type Options struct {
	Store    storage.Store
	Logger   *log.Logger
	Renderer curve.Renderer
	Theme    curve.Theme
}

// Tracker is not safe for concurrent use; callers serialize access.
type Tracker struct {
	ledger   *gacha.Ledger
	inv      *inventory.Inventory
	hist     *history.Store
	stats    *stats.Recorder
	store    storage.Store
	renderer curve.Renderer
	logger   *log.Logger

	theme  curve.Theme
	active gacha.Category
	grid   curve.Grid

	cancelInv func()
}

// Outcome describes the state after a recorded operation.
type Outcome struct {
	Category gacha.Category
	State    gacha.PityState
	Reading  gacha.Reading // primary tier
	Warning  string        // anomaly message, empty when none
	Cycle    history.Cycle // completed cycle, nil when none

	HardPityReached bool
	Resolution      HardPityChoice
}

// New builds a tracker for rules and restores persisted state from
// opts.Store. Read failures degrade to defaults and are logged.
func New(ctx context.Context, rules gacha.RuleSet, opts Options) (*Tracker, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	if opts.Store == nil {
		opts.Store = storage.NewMemory()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Renderer.Rows == 0 || opts.Renderer.Cols == 0 {
		opts.Renderer = curve.NewRenderer()
	}
	if opts.Theme == "" {
		opts.Theme = curve.Dark
	}

	cats := rules.Categories()
	t := &Tracker{
		inv:      inventory.New(cats...),
		hist:     history.New(),
		stats:    stats.New(),
		store:    opts.Store,
		renderer: opts.Renderer,
		logger:   opts.Logger,
		theme:    opts.Theme,
		active:   cats[0],
	}
	t.ledger = gacha.NewLedger(rules, t.inv)
	t.load(ctx)
	t.cancelInv = t.inv.Subscribe(t.saveInventory)
	t.redraw()
	return t, nil
}

// Close stops persisting inventory changes. The store is not closed.
func (t *Tracker) Close() {
	if t.cancelInv != nil {
		t.cancelInv()
		t.cancelInv = nil
	}
}

func (t *Tracker) load(ctx context.Context) {
	for _, cat := range t.ledger.Rules().Categories() {
		p := t.ledger.Rules()[cat]
		pity := make(map[gacha.Rarity]int, len(p.Tiers))
		for _, tier := range p.Tiers {
			key := storage.TierKey(cat, tier)
			if tier == p.Primary() {
				// the primary tier was stored under the short key first
				if _, ok, _ := t.store.Get(ctx, key); !ok {
					key = storage.PityKey(cat)
				}
			}
			n, err := storage.Int(ctx, t.store, key, 0)
			if err != nil {
				t.logger.Printf("load %s: %v (using 0)", key, err)
			}
			pity[tier] = n
		}
		if err := t.ledger.Restore(cat, pity); err != nil {
			t.logger.Printf("restore %s: %v", cat, err)
			continue
		}
		st, _ := t.ledger.Snapshot(cat)
		t.hist.Seed(cat, st.Primary())
		t.warn(cat, st)
	}

	raw, err := storage.String(ctx, t.store, storage.HistoryKey, "")
	if err != nil {
		t.logger.Printf("load history: %v", err)
	}
	if !t.hist.Unmarshal(raw) && raw != "" {
		t.logger.Printf("history at %s is malformed; starting empty", storage.HistoryKey)
	}

	rec, err := stats.Load(ctx, t.store)
	if err != nil {
		t.logger.Printf("load stats: %v", err)
	}
	t.stats = rec

	snap := make(inventory.Snapshot)
	for _, cat := range t.ledger.Rules().Categories() {
		n, err := storage.Int(ctx, t.store, storage.InventoryKey(cat), 0)
		if err != nil {
			t.logger.Printf("load inventory %s: %v", cat, err)
		}
		snap[cat] = n
	}
	t.inv.Load(snap)

	theme, err := storage.String(ctx, t.store, storage.ThemeKey, "")
	if err != nil {
		t.logger.Printf("load theme: %v", err)
	}
	switch curve.Theme(theme) {
	case curve.Dark, curve.Light:
		t.theme = curve.Theme(theme)
	}
}

// Rules returns the active rule set.
func (t *Tracker) Rules() gacha.RuleSet { return t.ledger.Rules() }

// Inventory exposes the shared inventory so views can subscribe to it.
func (t *Tracker) Inventory() *inventory.Inventory { return t.inv }

// Active returns the category whose curve is kept rendered.
func (t *Tracker) Active() gacha.Category { return t.active }

// SetActive switches the rendered category.
func (t *Tracker) SetActive(cat gacha.Category) error {
	if _, err := t.ledger.Rules().Profile(cat); err != nil {
		return err
	}
	t.active = cat
	t.redraw()
	return nil
}

// Curve returns the grid of the active category.
func (t *Tracker) Curve() curve.Grid { return t.grid }

// Theme returns the colour theme used for HTML output.
func (t *Tracker) Theme() curve.Theme { return t.theme }

// SetTheme changes and persists the colour theme.
func (t *Tracker) SetTheme(ctx context.Context, theme curve.Theme) error {
	if theme != curve.Dark && theme != curve.Light {
		return fmt.Errorf("unknown theme %q", theme)
	}
	t.theme = theme
	t.persist(ctx, storage.ThemeKey, string(theme))
	return nil
}

// SetRules swaps in a reloaded rule set. Counters of tiers that are still
// tracked survive.
func (t *Tracker) SetRules(rules gacha.RuleSet) error {
	if err := rules.Validate(); err != nil {
		return err
	}
	t.ledger.SetRules(rules)
	if _, ok := rules[t.active]; !ok {
		t.active = rules.Categories()[0]
	}
	t.redraw()
	return nil
}

// RecordSingle records one draw. The inventory is checked before the
// rarity is asked for.
func (t *Tracker) RecordSingle(ctx context.Context, cat gacha.Category, p Prompter) (Outcome, error) {
	prof, err := t.ledger.Rules().Profile(cat)
	if err != nil {
		return Outcome{}, err
	}
	if err := t.ledger.Reserve(cat, 1, p.CorrectInventory); err != nil {
		return Outcome{}, err
	}
	rarity, err := p.PickRarity(1, choices(prof))
	if err != nil {
		return Outcome{}, err
	}
	st, err := t.ledger.Single(cat, rarity, p.CorrectInventory)
	if err != nil {
		return Outcome{}, err
	}
	t.stats.Register(rarity)
	return t.settle(ctx, cat, st, p)
}

// RecordBatch records n draws. Hit positions are asked for in blocks of
// BlockSize and the rarity of each chosen position is asked for next.
// Nothing is applied until every answer is in.
func (t *Tracker) RecordBatch(ctx context.Context, cat gacha.Category, n int, p Prompter) (Outcome, error) {
	prof, err := t.ledger.Rules().Profile(cat)
	if err != nil {
		return Outcome{}, err
	}
	if n < 1 {
		return Outcome{}, fmt.Errorf("%w: got %d", gacha.ErrInvalidDrawCount, n)
	}
	if err := t.ledger.Reserve(cat, n, p.CorrectInventory); err != nil {
		return Outcome{}, err
	}
	hits, err := askHits(p, prof, n)
	if err != nil {
		return Outcome{}, err
	}
	st, err := t.ledger.Batch(cat, n, hits, p.CorrectInventory)
	if err != nil {
		return Outcome{}, err
	}
	t.stats.RegisterBatch(n, hits)
	return t.settle(ctx, cat, st, p)
}

// RecordTen is RecordBatch with ten draws.
func (t *Tracker) RecordTen(ctx context.Context, cat gacha.Category, p Prompter) (Outcome, error) {
	return t.RecordBatch(ctx, cat, 10, p)
}

func askHits(p Prompter, prof gacha.Profile, n int) ([]gacha.Hit, error) {
	opts := choices(prof)
	var hits []gacha.Hit
	for start := 1; start <= n; start += BlockSize {
		end := min(start+BlockSize-1, n)
		positions, err := p.PickHits(end-start+1, start, end)
		if err != nil {
			return nil, err
		}
		seen := make(map[int]bool, len(positions))
		for _, pos := range positions {
			if pos < start || pos > end {
				return nil, fmt.Errorf("%w: position %d not in [%d,%d]", gacha.ErrInvalidHit, pos, start, end)
			}
			if seen[pos] {
				continue
			}
			seen[pos] = true
			r, err := p.PickRarity(pos, opts)
			if err != nil {
				return nil, err
			}
			if r == gacha.RarityNone {
				continue
			}
			hits = append(hits, gacha.Hit{Position: pos, Rarity: r})
		}
	}
	return hits, nil
}

// choices lists the tracked tiers from most severe down, then "No Hit".
func choices(p gacha.Profile) []gacha.Rarity {
	out := make([]gacha.Rarity, 0, len(p.Tiers)+1)
	for i := len(p.Tiers) - 1; i >= 0; i-- {
		out = append(out, p.Tiers[i])
	}
	return append(out, gacha.RarityNone)
}

// Reset zeroes every tier of cat after confirmation.
func (t *Tracker) Reset(ctx context.Context, cat gacha.Category, p Prompter) (Outcome, error) {
	if _, err := t.ledger.Rules().Profile(cat); err != nil {
		return Outcome{}, err
	}
	ok, err := p.ConfirmReset(cat)
	if err != nil {
		return Outcome{}, err
	}
	if !ok {
		return Outcome{}, gacha.ErrCancelled
	}
	st, err := t.ledger.Reset(cat)
	if err != nil {
		return Outcome{}, err
	}
	return t.settle(ctx, cat, st, nil)
}

// settle runs after every committed mutation of cat: persist, detect cycle
// completion, redraw and, when p is set, resolve a reached hard pity.
func (t *Tracker) settle(ctx context.Context, cat gacha.Category, st gacha.PityState, p Prompter) (Outcome, error) {
	out := t.observe(ctx, cat, st)
	if p == nil {
		return out, nil
	}
	prof, _ := t.ledger.Rules().Profile(cat)
	rule := prof.PrimaryRule()
	if st.Primary() < rule.HardPityCap {
		return out, nil
	}
	out.HardPityReached = true
	choice, err := p.ResolveHardPity(cat, prof.Primary())
	if errors.Is(err, gacha.ErrCancelled) {
		return out, nil
	}
	if err != nil {
		return out, err
	}
	switch choice {
	case HardPityRecord:
		st, err := t.ledger.RecordHit(cat, prof.Primary())
		if err != nil {
			return out, err
		}
		t.stats.MarkHit(prof.Primary())
		resolved := t.observe(ctx, cat, st)
		resolved.HardPityReached, resolved.Resolution = true, HardPityRecord
		return resolved, nil
	case HardPityReset:
		resolved, err := t.Reset(ctx, cat, p)
		if errors.Is(err, gacha.ErrCancelled) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		resolved.HardPityReached, resolved.Resolution = true, HardPityReset
		return resolved, nil
	}
	return out, nil
}

func (t *Tracker) observe(ctx context.Context, cat gacha.Category, st gacha.PityState) Outcome {
	t.savePity(ctx, st)
	t.saveStats(ctx)

	out := Outcome{Category: cat, State: st}
	if c, ok := t.hist.Observe(cat, st.Primary()); ok {
		out.Cycle = c
		t.saveHistory(ctx)
	}
	out.Reading, out.Warning = t.warn(cat, st)
	if cat == t.active {
		t.redraw()
	}
	return out
}

// warn evaluates the primary tier and checks every tier that has a rule of
// its own. Each anomaly is logged; the returned message joins them, most
// severe tier first.
func (t *Tracker) warn(cat gacha.Category, st gacha.PityState) (gacha.Reading, string) {
	prof, err := t.ledger.Rules().Profile(cat)
	if err != nil {
		return gacha.Reading{}, ""
	}
	reading := gacha.Evaluate(prof.PrimaryRule(), st.Primary())
	var msgs []string
	for i := len(prof.Tiers) - 1; i >= 0; i-- {
		tier := prof.Tiers[i]
		a := tierAnomaly(prof, tier, st.Pity[tier])
		if a == gacha.AnomalyNone {
			continue
		}
		msg := a.Message(cat, tier)
		t.logger.Printf("anomaly %s on %s %s: %s", a, cat, tier, msg)
		msgs = append(msgs, msg)
	}
	return reading, strings.Join(msgs, "\n")
}

// tierAnomaly checks pity against the rule of tier. Tiers without a rule
// are never flagged.
func tierAnomaly(prof gacha.Profile, tier gacha.Rarity, pity int) gacha.Anomaly {
	r, ok := prof.Rule(tier)
	if !ok {
		return gacha.AnomalyNone
	}
	return gacha.Evaluate(r, pity).Anomaly
}

func (t *Tracker) redraw() {
	prof, err := t.ledger.Rules().Profile(t.active)
	if err != nil {
		t.grid = nil
		return
	}
	st, _ := t.ledger.Snapshot(t.active)
	t.grid = t.renderer.Render(prof.PrimaryRule(), st.Primary(), t.hist.Cycles())
}

// AdjustInventory adds (delta > 0) or removes (delta < 0) units one at a
// time, never going below 0.
func (t *Tracker) AdjustInventory(cat gacha.Category, delta int) error {
	if !t.inv.Tracks(cat) {
		return fmt.Errorf("%w: %q", gacha.ErrUnknownCategory, cat)
	}
	for ; delta > 0; delta-- {
		t.inv.Add(cat)
	}
	for ; delta < 0; delta++ {
		t.inv.Remove(cat)
	}
	return nil
}

// SetInventory overwrites the count of cat.
func (t *Tracker) SetInventory(cat gacha.Category, n int) error {
	if !t.inv.Tracks(cat) {
		return fmt.Errorf("%w: %q", gacha.ErrUnknownCategory, cat)
	}
	t.inv.Set(cat, n)
	return nil
}

func (t *Tracker) savePity(ctx context.Context, st gacha.PityState) {
	for tier, n := range st.Pity {
		t.persistInt(ctx, storage.TierKey(st.Category, tier), n)
	}
	t.persistInt(ctx, storage.PityKey(st.Category), st.Primary())
}

func (t *Tracker) saveStats(ctx context.Context) {
	if err := t.stats.Save(ctx, t.store); err != nil {
		t.logger.Printf("save stats: %v", err)
	}
}

func (t *Tracker) saveHistory(ctx context.Context) {
	data, err := t.hist.Marshal()
	if err != nil {
		t.logger.Printf("encode history: %v", err)
		return
	}
	t.persist(ctx, storage.HistoryKey, data)
}

// saveInventory is the inventory observer.
func (t *Tracker) saveInventory(snap inventory.Snapshot) {
	ctx := context.Background()
	for cat, n := range snap {
		t.persistInt(ctx, storage.InventoryKey(cat), n)
	}
}

func (t *Tracker) persist(ctx context.Context, key, value string) {
	if err := t.store.Set(ctx, key, value); err != nil {
		t.logger.Printf("save %s: %v", key, err)
	}
}

func (t *Tracker) persistInt(ctx context.Context, key string, n int) {
	if err := storage.SetInt(ctx, t.store, key, n); err != nil {
		t.logger.Printf("save %s: %v", key, err)
	}
}
