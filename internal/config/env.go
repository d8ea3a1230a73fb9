// Package config reads process settings from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Store backends.
const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// Env is the process configuration shared by the server and the CLI.
type Env struct {
	Store         string        `env:"MERCY_STORE" envDefault:"sqlite"`
	DBPath        string        `env:"MERCY_DB_PATH" envDefault:"data/mercy.db"`
	PostgresDSN   string        `env:"MERCY_POSTGRES_DSN"`
	RulesPath     string        `env:"MERCY_RULES_PATH"`
	HTTPAddr      string        `env:"MERCY_HTTP_ADDR" envDefault:":8080"`
	GRPCAddr      string        `env:"MERCY_GRPC_ADDR" envDefault:":8081"`
	WatchInterval time.Duration `env:"MERCY_WATCH_INTERVAL" envDefault:"2s"`
	Theme         string        `env:"MERCY_THEME" envDefault:"dark"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses and validates Env.
func Load() (Env, error) {
	var cfg Env
	if err := ParseEnv(&cfg); err != nil {
		return Env{}, err
	}
	cfg.Store = strings.ToLower(strings.TrimSpace(cfg.Store))
	if err := cfg.Validate(); err != nil {
		return Env{}, err
	}
	return cfg, nil
}

// Validate checks the backend selection and intervals.
func (c Env) Validate() error {
	var errs []string
	switch c.Store {
	case StoreMemory:
	case StoreSQLite:
		if strings.TrimSpace(c.DBPath) == "" {
			errs = append(errs, "MERCY_DB_PATH is required for the sqlite store")
		}
	case StorePostgres:
		if strings.TrimSpace(c.PostgresDSN) == "" {
			errs = append(errs, "MERCY_POSTGRES_DSN is required for the postgres store")
		}
	default:
		errs = append(errs, fmt.Sprintf("unknown MERCY_STORE %q", c.Store))
	}
	if c.WatchInterval <= 0 {
		errs = append(errs, "MERCY_WATCH_INTERVAL must be positive")
	}
	switch c.Theme {
	case "dark", "light":
	default:
		errs = append(errs, fmt.Sprintf("unknown MERCY_THEME %q", c.Theme))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}
