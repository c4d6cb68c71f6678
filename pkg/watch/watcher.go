// Package watch re-analyzes legacy artifacts as they change on disk.
package watch

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/fsnotify/fsnotify"
	"github.com/panbanda/relic/internal/scanner"
	"github.com/panbanda/relic/pkg/config"
)

// DefaultDebounce is how long a file must stay quiet before it is reported.
const DefaultDebounce = 500 * time.Millisecond

// Watcher monitors a directory tree and reports changed artifacts once
// their writes settle.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	config    *config.Config
	scanner   *scanner.Scanner
	debounce  time.Duration
	path      string
	callback  func(f scanner.File)
	out       io.Writer
	mu        sync.Mutex
	pending   map[string]time.Time
}

// NewWatcher creates a new file watcher. opts narrow which artifacts are
// reported, as with scanner.NewScanner.
func NewWatcher(path string, cfg *config.Config, debounce time.Duration, opts ...scanner.Option) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	return &Watcher{
		fsWatcher: fsWatcher,
		config:    cfg,
		scanner:   scanner.NewScanner(cfg, opts...),
		debounce:  debounce,
		path:      path,
		out:       os.Stdout,
		pending:   make(map[string]time.Time),
	}, nil
}

// SetCallback sets the function to call when an artifact changes.
func (w *Watcher) SetCallback(cb func(f scanner.File)) {
	w.callback = cb
}

// SetOutput redirects status lines, which go to stdout by default.
func (w *Watcher) SetOutput(out io.Writer) {
	w.out = out
}

// Start watches until ctx is done.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.addTree(w.path); err != nil {
		return err
	}

	cyan := color.New(color.FgCyan)
	cyan.Fprintf(w.out, "Watching for changes in %s...\n", w.path)
	cyan.Fprintln(w.out, "Press Ctrl+C to stop")

	go w.processDebounced(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watch error", "error", err)
		}
	}
}

// addTree watches root and every directory below it that is not excluded.
func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.config.ShouldExcludeDir(d.Name()) {
			return filepath.SkipDir
		}
		return w.fsWatcher.Add(path)
	})
}

// handleEvent queues writes and creates of analyzable files. New
// directories are watched as they appear.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}

	path := event.Name
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if !w.config.ShouldExcludeDir(info.Name()) {
				if err := w.addTree(path); err != nil {
					slog.Warn("watch directory", "path", path, "error", err)
				}
			}
			return
		}
	}

	if w.config.ShouldExclude(path) {
		return
	}
	if _, ok := w.scanner.ScanFile(path); !ok {
		return
	}

	w.mu.Lock()
	w.pending[path] = time.Now()
	w.mu.Unlock()
}

// processDebounced flushes settled files on a short tick.
func (w *Watcher) processDebounced(ctx context.Context) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.processPending()
		}
	}
}

// processPending reports files that have been stable for the debounce
// period, in path order.
func (w *Watcher) processPending() {
	w.mu.Lock()
	now := time.Now()
	var ready []string
	for path, lastMod := range w.pending {
		if now.Sub(lastMod) >= w.debounce {
			ready = append(ready, path)
		}
	}
	for _, path := range ready {
		delete(w.pending, path)
	}
	w.mu.Unlock()

	if w.callback == nil {
		return
	}
	slices.Sort(ready)
	for _, path := range ready {
		// The file may have been removed or replaced since it was queued.
		if f, ok := w.scanner.ScanFile(path); ok {
			w.callback(f)
		}
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	return w.fsWatcher.Close()
}

// WatchedDirs returns the watched directories.
func (w *Watcher) WatchedDirs() []string {
	return w.fsWatcher.WatchList()
}
