package game

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xtding233/gacha-mercy/internal/gacha"
)

func writeRules(t *testing.T, dir, body string) string {
	t.Helper()
	p := filepath.Join(dir, "rules.yaml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	for _, path := range []string{"", filepath.Join(t.TempDir(), "missing.yaml")} {
		rs, err := NewLoader(path).Load()
		if err != nil {
			t.Fatalf("load %q: %v", path, err)
		}
		def := gacha.DefaultRuleSet()
		if len(rs) != len(def) {
			t.Fatalf("got %d categories", len(rs))
		}
		if rs[gacha.Primal].PrimaryRule() != def[gacha.Primal].PrimaryRule() {
			t.Fatalf("primal rule mismatch: %+v", rs[gacha.Primal].PrimaryRule())
		}
	}
}

func TestLoadMergesFieldByField(t *testing.T) {
	p := writeRules(t, t.TempDir(), `
version: "2"
categories:
  Sacred Shards:
    rules:
      legendary: {soft: 20, hard: 70}
  mythic:
    tiers: [legendary]
    rules:
      legendary: {base: 1, soft: 50, increment: 3, hard: 80}
`)
	rs, err := NewLoader(p).Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	sacred := rs[gacha.Sacred].PrimaryRule()
	if sacred.SoftPityStart != 20 || sacred.HardPityCap != 70 {
		t.Fatalf("override not applied: %+v", sacred)
	}
	if sacred.BaseChance != 6.0 || sacred.IncrementPerPull != 2.0 {
		t.Fatalf("defaults lost: %+v", sacred)
	}
	if _, ok := rs[gacha.Category("mythic")]; !ok {
		t.Fatal("new category missing")
	}
	if len(rs) != 5 {
		t.Fatalf("got %d categories", len(rs))
	}
}

func TestValidateRawCollectsAllViolations(t *testing.T) {
	base, soft, inc, hard := 150.0, 30, -1.0, 30
	cfg := RawConfig{Categories: map[string]RawCategory{
		"ancient": {
			Tiers: []string{"epic", "legendary"},
			Rules: map[string]RawRule{"legendary": {Base: &base, Soft: &soft, Increment: &inc, Hard: &hard}},
		},
		"void": {
			Tiers: []string{"epic", "bogus"},
			Rules: map[string]RawRule{"mythical": {}},
		},
	}}
	err := ValidateRaw(cfg)
	if !errors.Is(err, gacha.ErrConfigInvariant) {
		t.Fatalf("want ErrConfigInvariant, got %v", err)
	}
	for _, want := range []string{
		"ancient.rules.legendary.base must be in [0,100]",
		"ancient.rules.legendary.increment must be >= 0",
		"ancient.rules.legendary.hard must be > soft",
		`void.tiers[1]: unknown rarity "bogus"`,
		"void.rules.mythical: rarity is not in void.tiers",
		"void.rules.mythical.base is required",
		"void.rules.epic is required (primary tier)",
	} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("missing %q in %v", want, err)
		}
	}
}

func TestLoadRejectsBadFile(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"unknown key": "categorys: {}\n",
		"bad yaml":    "categories: [\n",
		"invariant":   "categories:\n  sacred:\n    rules:\n      legendary: {hard: 5}\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			p := writeRules(t, dir, body)
			if _, err := NewLoader(p).Load(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLoaderCachesUntilInvalidate(t *testing.T) {
	dir := t.TempDir()
	p := writeRules(t, dir, "categories:\n  sacred:\n    rules:\n      legendary: {hard: 60}\n")
	l := NewLoader(p)
	if _, err := l.Load(); err != nil {
		t.Fatal(err)
	}
	writeRules(t, dir, "categories:\n  sacred:\n    rules:\n      legendary: {hard: 61}\n")
	rs, _ := l.Load()
	if rs[gacha.Sacred].PrimaryRule().HardPityCap != 60 {
		t.Fatal("expected cached rules")
	}
	l.Invalidate()
	rs, err := l.Load()
	if err != nil {
		t.Fatal(err)
	}
	if rs[gacha.Sacred].PrimaryRule().HardPityCap != 61 {
		t.Fatal("expected reloaded rules")
	}
}

func TestWatchRulesAppliesValidChanges(t *testing.T) {
	dir := t.TempDir()
	p := writeRules(t, dir, "categories:\n  sacred:\n    rules:\n      legendary: {hard: 60}\n")
	l := NewLoader(p)
	got := make(chan gacha.RuleSet, 1)
	w := WatchRules(l, 10*time.Millisecond, nil, func(rs gacha.RuleSet) { got <- rs })
	defer w.Stop()

	writeRules(t, dir, "categories:\n  sacred:\n    rules:\n      legendary: {hard: 75}\n")
	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(p, future, future); err != nil {
		t.Fatal(err)
	}
	select {
	case rs := <-got:
		if rs[gacha.Sacred].PrimaryRule().HardPityCap != 75 {
			t.Fatalf("unexpected rules %+v", rs[gacha.Sacred].PrimaryRule())
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not fire")
	}
}

func TestWatchRulesWithoutFile(t *testing.T) {
	if w := WatchRules(NewLoader(""), time.Second, nil, func(gacha.RuleSet) {}); w != nil {
		t.Fatal("expected nil watcher")
	}
}
