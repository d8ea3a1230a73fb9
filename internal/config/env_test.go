package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Store != StoreSQLite || cfg.DBPath != "data/mercy.db" {
		t.Fatalf("unexpected store defaults: %+v", cfg)
	}
	if cfg.HTTPAddr != ":8080" || cfg.GRPCAddr != ":8081" {
		t.Fatalf("unexpected addrs: %+v", cfg)
	}
	if cfg.WatchInterval != 2*time.Second || cfg.Theme != "dark" {
		t.Fatalf("unexpected watch/theme: %+v", cfg)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MERCY_STORE", " Memory ")
	t.Setenv("MERCY_WATCH_INTERVAL", "500ms")
	t.Setenv("MERCY_THEME", "light")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Store != StoreMemory || cfg.WatchInterval != 500*time.Millisecond || cfg.Theme != "light" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	cases := []struct {
		name, key, value, want string
	}{
		{"bad duration", "MERCY_WATCH_INTERVAL", "soon", "parse env:"},
		{"unknown store", "MERCY_STORE", "redis", "unknown MERCY_STORE"},
		{"postgres without dsn", "MERCY_STORE", "postgres", "MERCY_POSTGRES_DSN"},
		{"unknown theme", "MERCY_THEME", "neon", "unknown MERCY_THEME"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			_, err := Load()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q in %v", tc.want, err)
			}
		})
	}
}
