package data

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDebounce coalesces the burst of events editors emit on save.
const reloadDebounce = 150 * time.Millisecond

// Loader builds a catalog from a path.
type Loader func(path string) (*Catalog, error)

// Watcher reloads a content file into a Live provider when it changes.
// A failed reload keeps the previous catalog.
type Watcher struct {
	path   string
	live   *Live
	load   Loader
	reload chan struct{}
}

// NewWatcher creates a watcher for path. A nil loader selects LoadYAML.
func NewWatcher(path string, live *Live, load Loader) *Watcher {
	if load == nil {
		load = LoadYAML
	}
	return &Watcher{
		path:   path,
		live:   live,
		load:   load,
		reload: make(chan struct{}, 1),
	}
}

// Reloaded is signalled (non-blocking) after every successful swap.
func (w *Watcher) Reloaded() <-chan struct{} {
	return w.reload
}

// Run watches the content file's directory until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating content watcher: %w", err)
	}
	defer fw.Close()

	dir := filepath.Dir(w.path)
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	slog.Info("content watcher started", "path", w.path)

	target := filepath.Clean(w.path)
	var debounce <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			slog.Info("content watcher stopping")
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			debounce = time.After(reloadDebounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("content watcher error", "error", err)

		case <-debounce:
			debounce = nil
			w.reloadNow()
		}
	}
}

func (w *Watcher) reloadNow() {
	catalog, err := w.load(w.path)
	if err != nil {
		slog.Error("content reload failed, keeping previous content", "path", w.path, "error", err)
		return
	}
	w.live.Swap(catalog)
	slog.Info("content reloaded", "path", w.path, "version", w.live.Version())

	select {
	case w.reload <- struct{}{}:
	default:
	}
}
