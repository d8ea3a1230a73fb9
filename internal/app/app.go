// Package app assembles a tracker from process configuration: it opens the
// selected store, loads the rules file and restores persisted state.
package app

import (
	"context"
	"fmt"
	"log"

	"github.com/xtding233/gacha-mercy/internal/config"
	"github.com/xtding233/gacha-mercy/internal/curve"
	"github.com/xtding233/gacha-mercy/internal/game"
	"github.com/xtding233/gacha-mercy/internal/storage"
	"github.com/xtding233/gacha-mercy/internal/storage/postgres"
	"github.com/xtding233/gacha-mercy/internal/storage/sqlite"
	"github.com/xtding233/gacha-mercy/internal/tracker"
)

// App owns the store and the tracker built on it.
type App struct {
	Config  config.Env
	Store   storage.Store
	Rules   *game.Loader
	Tracker *tracker.Tracker
}

// OpenStore opens the backend named by cfg.Store.
func OpenStore(cfg config.Env) (storage.Store, error) {
	switch cfg.Store {
	case config.StoreMemory:
		return storage.NewMemory(), nil
	case config.StoreSQLite:
		return sqlite.Open(cfg.DBPath)
	case config.StorePostgres:
		return postgres.Open(cfg.PostgresDSN)
	}
	return nil, fmt.Errorf("unknown store %q", cfg.Store)
}

// New opens the store, loads the rules and restores the tracker.
func New(ctx context.Context, cfg config.Env, logger *log.Logger) (*App, error) {
	if logger == nil {
		logger = log.Default()
	}
	loader := game.NewLoader(cfg.RulesPath)
	rules, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}
	st, err := OpenStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store, err)
	}
	t, err := tracker.New(ctx, rules, tracker.Options{
		Store:  st,
		Logger: logger,
		Theme:  curve.Theme(cfg.Theme),
	})
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	logger.Printf("tracker ready: store=%s categories=%d", cfg.Store, len(rules))
	return &App{Config: cfg, Store: st, Rules: loader, Tracker: t}, nil
}

// Close detaches the tracker and closes the store.
func (a *App) Close() error {
	a.Tracker.Close()
	return a.Store.Close()
}
