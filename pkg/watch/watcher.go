// Package watch re-runs an analysis whenever GDScript or scene files under a
// project root change.
package watch

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/fsnotify/fsnotify"
	"github.com/panbanda/gdcf/internal/scanner"
	"github.com/panbanda/gdcf/pkg/config"
	"github.com/panbanda/gdcf/pkg/parser"
)

// DefaultDebounce is the quiet period after the last change before the
// callback runs.
const DefaultDebounce = 500 * time.Millisecond

// Watcher monitors a project tree and batches changes into callback runs.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	scanner   *scanner.Scanner
	debounce  time.Duration
	path      string
	out       io.Writer
	logger    *slog.Logger
	callback  func(paths []string)

	mu      sync.Mutex
	pending map[string]time.Time
	dirs    map[string]struct{}
}

// NewWatcher creates a new file watcher for the tree at path. Directories
// excluded by cfg are never watched.
func NewWatcher(path string, cfg *config.Config, debounce time.Duration) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	return &Watcher{
		fsWatcher: fsWatcher,
		scanner:   scanner.NewScanner(cfg),
		debounce:  debounce,
		path:      path,
		out:       os.Stdout,
		logger:    slog.Default(),
		pending:   make(map[string]time.Time),
		dirs:      make(map[string]struct{}),
	}, nil
}

// SetCallback sets the function called with the changed paths of one batch.
// Calls never overlap.
func (w *Watcher) SetCallback(cb func(paths []string)) {
	w.callback = cb
}

// SetOutput sets where status banners are written.
func (w *Watcher) SetOutput(out io.Writer) {
	w.out = out
}

// SetLogger sets the logger for watch errors.
func (w *Watcher) SetLogger(l *slog.Logger) {
	w.logger = l
}

// Start begins watching for file changes. It blocks until ctx is done or
// the watcher is stopped.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.addTree(w.path); err != nil {
		return err
	}

	color.New(color.FgCyan).Fprintf(w.out, "Watching for changes in %s...\n", w.path)
	color.New(color.FgCyan).Fprintln(w.out, "Press Ctrl+C to stop")
	io.WriteString(w.out, "\n")

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
			w.logger.Error("watch error", "error", err)
		}
	}
}

// addTree watches root and every non-excluded directory below it.
func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.scanner.IsExcludedDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.fsWatcher.Add(path); err != nil {
			return err
		}
		w.mu.Lock()
		w.dirs[path] = struct{}{}
		w.mu.Unlock()
		return nil
	})
}

// handleEvent processes a filesystem event.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name
	if w.inExcludedDir(path) {
		return
	}

	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if err := w.addTree(path); err != nil {
				w.logger.Warn("failed to watch new directory", "path", path, "error", err)
			}
			w.schedule(path)
			return
		}
	}

	if event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename) {
		w.mu.Lock()
		_, wasDir := w.dirs[path]
		delete(w.dirs, path)
		w.mu.Unlock()
		if wasDir {
			w.schedule(path)
			return
		}
	}

	if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) &&
		!event.Op.Has(fsnotify.Remove) && !event.Op.Has(fsnotify.Rename) {
		return
	}

	if parser.DetectLanguage(path) == parser.LangUnknown {
		return
	}
	w.schedule(path)
}

func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	w.pending[path] = time.Now()
	w.mu.Unlock()
}

// inExcludedDir reports whether any directory between the root and path is
// excluded.
func (w *Watcher) inExcludedDir(path string) bool {
	rel, err := filepath.Rel(w.path, path)
	if err != nil {
		return false
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	for _, dir := range parts {
		if w.scanner.IsExcludedDir(dir) {
			return true
		}
	}
	return false
}

// processDebounced flushes pending changes once they settle.
func (w *Watcher) processDebounced(ctx context.Context) {
	interval := 100 * time.Millisecond
	if w.debounce < interval {
		interval = w.debounce
	}
	ticker := time.NewTicker(interval)
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

// processPending runs the callback with every pending path once the most
// recent change is older than the debounce period.
func (w *Watcher) processPending() {
	w.mu.Lock()
	if len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}
	now := time.Now()
	for _, changed := range w.pending {
		if now.Sub(changed) < w.debounce {
			w.mu.Unlock()
			return
		}
	}
	ready := make([]string, 0, len(w.pending))
	for path := range w.pending {
		ready = append(ready, path)
	}
	w.pending = make(map[string]time.Time)
	w.mu.Unlock()

	sort.Strings(ready)
	if w.callback != nil {
		w.runCallback(ready)
	}
}

// runCallback executes the callback for a batch of changed paths.
func (w *Watcher) runCallback(paths []string) {
	rel := make([]string, 0, len(paths))
	for _, p := range paths {
		if r, err := filepath.Rel(w.path, p); err == nil {
			p = r
		}
		rel = append(rel, filepath.ToSlash(p))
	}

	color.New(color.FgYellow).Fprintf(w.out, "\nChanged: %s\n", strings.Join(rel, ", "))
	io.WriteString(w.out, strings.Repeat("-", 40)+"\n")

	w.callback(paths)

	io.WriteString(w.out, "\n")
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	return w.fsWatcher.Close()
}

// WatchedFiles returns the list of watched directories.
func (w *Watcher) WatchedFiles() []string {
	return w.fsWatcher.WatchList()
}
