package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/xtding233/gacha-mercy/internal/gacha"
)

func TestKeys(t *testing.T) {
	cases := map[string]string{
		PityKey(gacha.Ancient):                 "pity/ancient",
		TierKey(gacha.Primal, gacha.Legendary): "pity/primal/legendary",
		LastHitKey(gacha.Mythical):             "hits/last_mythical",
		InventoryKey(gacha.Void):               "inventory/void",
	}
	for got, want := range cases {
		if got != want {
			t.Fatalf("key=%q want %q", got, want)
		}
	}
}

func TestMemoryDefaults(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	if v, _ := Int(ctx, m, PityKey(gacha.Sacred), 0); v != 0 {
		t.Fatalf("absent key should return default; got %d", v)
	}
	if err := SetInt(ctx, m, PityKey(gacha.Sacred), 17); err != nil {
		t.Fatal(err)
	}
	if v, err := Int(ctx, m, PityKey(gacha.Sacred), 0); err != nil || v != 17 {
		t.Fatalf("got %d, %v", v, err)
	}
	_ = m.Set(ctx, TotalPullsKey, "garbage")
	if v, err := Int(ctx, m, TotalPullsKey, 5); err == nil || v != 5 {
		t.Fatalf("non-numeric value should degrade to default with an error; got %d, %v", v, err)
	}
	if v, _ := String(ctx, m, ThemeKey, "dark"); v != "dark" {
		t.Fatalf("theme=%q", v)
	}
}

func TestMemoryClosed(t *testing.T) {
	m := NewMemory()
	_ = m.Close()
	if err := m.Set(context.Background(), "k", "v"); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}
