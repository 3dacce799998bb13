// Package watch re-runs a callback whenever resource files under the config
// directory change.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/skuahq/skua/internal/logger"
)

// DefaultDebounce coalesces editor write bursts into one reload.
const DefaultDebounce = 200 * time.Millisecond

// Watcher watches a config directory and its kind subdirectories.
type Watcher struct {
	dir      string
	debounce time.Duration
}

func New(dir string, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{dir: dir, debounce: debounce}
}

// Run calls onChange once immediately and again after every settled burst
// of relevant file events, until ctx is done. An error from onChange is
// logged and does not stop the loop.
func (w *Watcher) Run(ctx context.Context, onChange func() error) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := w.addDirs(fw); err != nil {
		return err
	}

	fire := func() {
		if err := onChange(); err != nil {
			logger.Warn("reload failed", "err", err)
		}
	}
	fire()

	var timer *time.Timer
	var timerC <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
					if err := fw.Add(ev.Name); err != nil {
						logger.Warn("watch new dir", "dir", ev.Name, "err", err)
					}
					continue
				}
			}
			if !Relevant(ev.Name) || ev.Op == fsnotify.Chmod {
				continue
			}
			logger.Debug("config changed", "file", ev.Name, "op", ev.Op.String())
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timerC = timer.C
		case <-timerC:
			timerC = nil
			fire()
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "err", err)
		}
	}
}

func (w *Watcher) addDirs(fw *fsnotify.Watcher) error {
	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("read %s: %w", w.dir, err)
	}
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		sub := filepath.Join(w.dir, e.Name())
		if err := fw.Add(sub); err != nil {
			return fmt.Errorf("watch %s: %w", sub, err)
		}
	}
	return nil
}

// Relevant reports whether a change to path can affect the loaded catalog.
func Relevant(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") {
		return false
	}
	switch filepath.Ext(base) {
	case ".yaml", ".yml", ".json", ".jsonc":
		return true
	}
	return false
}
