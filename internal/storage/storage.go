// Package storage defines the key-value persistence port and its fixed key
// namespace. Backends live in subpackages.
package storage

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/xtding233/gacha-mercy/internal/gacha"
)

// ErrClosed is returned by a store used after Close.
var ErrClosed = errors.New("storage is closed")

// Store is a string-keyed string store.
type Store interface {
	// Get returns the value of key and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

// Keys.
const (
	HistoryKey    = "pity_curve/history"
	TotalPullsKey = "stats/total_pulls"
	ThemeKey      = "ui/theme"
)

// PityKey holds the primary-tier pity of cat.
func PityKey(cat gacha.Category) string { return "pity/" + string(cat) }

// TierKey holds the pity of one tier of cat.
func TierKey(cat gacha.Category, r gacha.Rarity) string {
	return "pity/" + string(cat) + "/" + r.String()
}

// LastHitKey holds the draw index of the last hit of r.
func LastHitKey(r gacha.Rarity) string { return "hits/last_" + r.String() }

// InventoryKey holds the shard count of cat.
func InventoryKey(cat gacha.Category) string { return "inventory/" + string(cat) }

// Memory is an in-process Store. It is safe for concurrent use.
type Memory struct {
	mu     sync.RWMutex
	data   map[string]string
	closed bool
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

func (m *Memory) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return "", false, ErrClosed
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *Memory) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.data[key] = value
	return nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

// String reads key, returning def when it is absent or unreadable.
func String(ctx context.Context, s Store, key, def string) (string, error) {
	v, ok, err := s.Get(ctx, key)
	if err != nil {
		return def, err
	}
	if !ok {
		return def, nil
	}
	return v, nil
}

// Int reads key as an integer, returning def when it is absent, unreadable
// or not a number.
func Int(ctx context.Context, s Store, key string, def int) (int, error) {
	v, ok, err := s.Get(ctx, key)
	if err != nil {
		return def, err
	}
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, err
	}
	return n, nil
}

// SetInt writes n under key.
func SetInt(ctx context.Context, s Store, key string, n int) error {
	return s.Set(ctx, key, strconv.Itoa(n))
}
