package game

import (
	"log"
	"os"
	"time"

	"github.com/xtding233/gacha-mercy/internal/gacha"
)

// FileWatcher polls file modification times and triggers a callback on change.
type FileWatcher struct {
	Paths     []string
	Interval  time.Duration
	onChange  func(string) // called with path that changed
	stopCh    chan struct{}
	lastMTime map[string]time.Time
}

// NewFileWatcher creates a watcher for given paths and interval.
func NewFileWatcher(paths []string, interval time.Duration, onChange func(string)) *FileWatcher {
	return &FileWatcher{
		Paths:     paths,
		Interval:  interval,
		onChange:  onChange,
		stopCh:    make(chan struct{}),
		lastMTime: make(map[string]time.Time),
	}
}

// Start records the current mtimes, then polls in a goroutine.
func (w *FileWatcher) Start() {
	w.scanAll(true)
	ticker := time.NewTicker(w.Interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				w.scanAll(false)
			case <-w.stopCh:
				return
			}
		}
	}()
}

// Stop terminates the watcher.
func (w *FileWatcher) Stop() {
	close(w.stopCh)
}

// scanAll checks mtimes and invokes onChange for files that changed since
// the last scan. A file that appears after Start counts as a change.
func (w *FileWatcher) scanAll(prime bool) {
	for _, p := range w.Paths {
		fi, err := os.Stat(p)
		if err != nil {
			continue
		}
		mt := fi.ModTime()
		last, ok := w.lastMTime[p]
		if ok && !mt.After(last) {
			continue
		}
		w.lastMTime[p] = mt
		if !prime && w.onChange != nil {
			w.onChange(p)
		}
	}
}

// WatchRules reloads the loader's file on change and passes the new rule
// set to apply. Invalid files are logged and ignored; the previous rules
// stay active. Returns nil when the loader has no file.
func WatchRules(l *Loader, interval time.Duration, logger *log.Logger, apply func(gacha.RuleSet)) *FileWatcher {
	if l.Path() == "" {
		return nil
	}
	if logger == nil {
		logger = log.Default()
	}
	w := NewFileWatcher([]string{l.Path()}, interval, func(path string) {
		l.Invalidate()
		rs, err := l.Load()
		if err != nil {
			logger.Printf("rules reload %s ignored: %v", path, err)
			return
		}
		logger.Printf("rules reloaded from %s", path)
		apply(rs)
	})
	w.Start()
	return w
}
