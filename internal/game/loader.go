package game

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/xtding233/gacha-mercy/internal/gacha"
	"gopkg.in/yaml.v3"
)

// Loader reads the rules file and merges it over the built-in table.
// An empty path means built-in rules only.
type Loader struct {
	path string

	mu    sync.RWMutex
	cache gacha.RuleSet
}

// NewLoader creates a loader for the rules file at path.
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Path returns the watched rules file.
func (l *Loader) Path() string { return l.path }

// Load returns the merged, validated rule set, caching it until Invalidate.
func (l *Loader) Load() (gacha.RuleSet, error) {
	l.mu.RLock()
	if l.cache != nil {
		rs := l.cache
		l.mu.RUnlock()
		return rs, nil
	}
	l.mu.RUnlock()

	merged := DefaultRaw()
	if l.path != "" {
		fileCfg, err := readYAML(l.path)
		if err != nil {
			return nil, fmt.Errorf("read rules %s: %w", l.path, err)
		}
		merged = mergeRaw(merged, fileCfg)
	}
	rs, err := Resolve(merged)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.cache = rs
	l.mu.Unlock()
	return rs, nil
}

// Invalidate clears the cache. Call after hot-reload detects changes.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = nil
}

// readYAML loads a rules file. Missing or empty files return a zero config;
// unknown keys are rejected.
func readYAML(path string) (RawConfig, error) {
	var cfg RawConfig
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return RawConfig{}, nil
		}
		return RawConfig{}, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return RawConfig{}, nil
		}
		return RawConfig{}, err
	}
	return normalize(cfg), nil
}

// normalize keys categories the way gacha.ParseCategory does, so
// "Ancient Shards" in a file overrides the built-in "ancient".
func normalize(cfg RawConfig) RawConfig {
	if len(cfg.Categories) == 0 {
		return cfg
	}
	cats := make(map[string]RawCategory, len(cfg.Categories))
	for name, c := range cfg.Categories {
		if cat, err := gacha.ParseCategory(name); err == nil {
			name = string(cat)
		}
		cats[name] = c
	}
	cfg.Categories = cats
	return cfg
}

// mergeRaw performs a deep merge: b overrides a where set. Tier lists are
// replaced wholesale; rules merge field by field.
func mergeRaw(a, b RawConfig) RawConfig {
	out := RawConfig{Version: a.Version, Notes: a.Notes, Categories: make(map[string]RawCategory, len(a.Categories))}
	if b.Version != "" {
		out.Version = b.Version
	}
	if b.Notes != "" {
		out.Notes = b.Notes
	}
	for name, c := range a.Categories {
		out.Categories[name] = copyCategory(c)
	}
	for name, bc := range b.Categories {
		oc, ok := out.Categories[name]
		if !ok {
			out.Categories[name] = copyCategory(bc)
			continue
		}
		if len(bc.Tiers) > 0 {
			oc.Tiers = append([]string(nil), bc.Tiers...)
		}
		for tier, br := range bc.Rules {
			r := oc.Rules[tier]
			if br.Base != nil {
				r.Base = br.Base
			}
			if br.Soft != nil {
				r.Soft = br.Soft
			}
			if br.Increment != nil {
				r.Increment = br.Increment
			}
			if br.Hard != nil {
				r.Hard = br.Hard
			}
			oc.Rules[tier] = r
		}
		out.Categories[name] = oc
	}
	return out
}

func copyCategory(c RawCategory) RawCategory {
	out := RawCategory{Tiers: append([]string(nil), c.Tiers...), Rules: make(map[string]RawRule, len(c.Rules))}
	for k, v := range c.Rules {
		out.Rules[k] = v
	}
	return out
}
