package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/xtding233/gacha-mercy/internal/gacha"
	"github.com/xtding233/gacha-mercy/internal/storage"
)

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "mercy.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, ok, err := s.Get(ctx, storage.HistoryKey); err != nil || ok {
		t.Fatalf("fresh store should be empty; ok=%v err=%v", ok, err)
	}
	if err := s.Set(ctx, storage.HistoryKey, "[[0,1]]"); err != nil {
		t.Fatal(err)
	}
	if err := storage.SetInt(ctx, s, storage.PityKey(gacha.Ancient), 12); err != nil {
		t.Fatal(err)
	}
	if err := storage.SetInt(ctx, s, storage.PityKey(gacha.Ancient), 13); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	// reopen: migrations must not run twice and data must survive
	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	v, ok, err := s.Get(ctx, storage.HistoryKey)
	if err != nil || !ok || v != "[[0,1]]" {
		t.Fatalf("history=%q ok=%v err=%v", v, ok, err)
	}
	n, err := storage.Int(ctx, s, storage.PityKey(gacha.Ancient), 0)
	if err != nil || n != 13 {
		t.Fatalf("pity=%d err=%v", n, err)
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("expected error")
	}
}

func TestExtractUp(t *testing.T) {
	got := extractUp("-- +migrate Up\nCREATE TABLE a (x INT);\n-- +migrate Down\nDROP TABLE a;\n")
	if got != "\nCREATE TABLE a (x INT);\n" {
		t.Fatalf("got %q", got)
	}
	if extractUp("SELECT 1;") != "SELECT 1;" {
		t.Fatal("files without markers should be used whole")
	}
}

func TestCancelledContext(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "mercy.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Set(ctx, "k", "v"); err == nil {
		t.Fatal("expected context error")
	}
}
