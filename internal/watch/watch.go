// Package watch re-runs a callback when a watched design file changes.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces editor write bursts into one trigger.
const DefaultDebounce = 500 * time.Millisecond

// Watcher triggers a callback when the design file is written.
type Watcher struct {
	path     string
	debounce time.Duration
	logf     func(format string, args ...interface{})
}

// Options configures a Watcher.
type Options struct {
	// Debounce is the quiet period required before a trigger fires.
	// Default DefaultDebounce.
	Debounce time.Duration
	// Logf receives progress lines. May be nil.
	Logf func(format string, args ...interface{})
}

// New creates a Watcher for the given design file.
func New(path string, opts Options) *Watcher {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logf == nil {
		opts.Logf = func(string, ...interface{}) {}
	}
	return &Watcher{path: path, debounce: opts.Debounce, logf: opts.Logf}
}

// Run watches until the context is canceled, invoking fn after each
// debounced change to the design file. Errors from fn are logged, not
// fatal; the watch continues.
func (w *Watcher) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	// Watch the directory, not the file: editors replace files on save,
	// which drops a file-level watch.
	dir := filepath.Dir(w.path)
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	target := filepath.Clean(w.path)
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				fire = timer.C
			} else {
				timer.Reset(w.debounce)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logf("watch error: %v", err)

		case <-fire:
			timer = nil
			fire = nil
			w.logf("design file changed, rerunning")
			if err := fn(ctx); err != nil {
				w.logf("run failed: %v", err)
			}
		}
	}
}
