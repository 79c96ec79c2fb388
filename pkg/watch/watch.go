// Package watch re-runs the identifier pass as source files change,
// debouncing bursts of filesystem events into single runs.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/gnana997/seltag/pkg/inject"
)

// DefaultDebounce batches editor save bursts into one run.
const DefaultDebounce = 300 * time.Millisecond

var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	".next":        true,
	"dist":         true,
	"build":        true,
}

// Watcher re-runs an injector on file change events.
type Watcher struct {
	injector *inject.Injector
	logger   *slog.Logger
	debounce time.Duration

	mu      sync.Mutex
	pending map[string]struct{}
}

// New creates a watcher. A non-positive debounce uses DefaultDebounce.
func New(injector *inject.Injector, logger *slog.Logger, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		injector: injector,
		logger:   logger,
		debounce: debounce,
		pending:  map[string]struct{}{},
	}
}

// Run watches opts.Root until ctx is cancelled, invoking onResult after
// every injection run. The first run covers the whole tree so the watcher
// starts from a converged state.
func (w *Watcher) Run(ctx context.Context, opts inject.Options, onResult func(*inject.Result)) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fsw.Close()

	if err := addDirs(fsw, opts.Root); err != nil {
		return err
	}

	filter := inject.NewFilter(opts.Root, opts.Include, opts.Exclude, w.logger)

	result, err := w.injector.Run(ctx, opts)
	if err != nil {
		return err
	}
	if onResult != nil {
		onResult(result)
	}

	flush := make(chan struct{}, 1)
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	schedule := func() {
		if timer == nil {
			timer = time.AfterFunc(w.debounce, func() {
				select {
				case flush <- struct{}{}:
				default:
				}
			})
			return
		}
		timer.Reset(w.debounce)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(fsw, event, filter, schedule)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)

		case <-flush:
			files := w.takePending()
			if len(files) == 0 {
				continue
			}
			result, err := w.injector.RunFiles(ctx, files, opts)
			if err != nil {
				if ctx.Err() != nil {
					return err
				}
				w.logger.Error("injection run failed", "error", err)
				continue
			}
			if onResult != nil {
				onResult(result)
			}
		}
	}
}

func (w *Watcher) handleEvent(fsw *fsnotify.Watcher, event fsnotify.Event, filter *inject.Filter, schedule func()) {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
		return
	}

	// New directories must be watched before anything inside them
	// changes.
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !skipDirs[filepath.Base(event.Name)] {
				if err := addDirs(fsw, event.Name); err != nil {
					w.logger.Warn("cannot watch new directory", "path", event.Name, "error", err)
				}
			}
			return
		}
	}

	if !filter.Matches(event.Name) {
		return
	}

	w.mu.Lock()
	w.pending[event.Name] = struct{}{}
	w.mu.Unlock()
	w.logger.Debug("queued change", "path", event.Name, "op", event.Op.String())
	schedule()
}

func (w *Watcher) takePending() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	files := make([]string, 0, len(w.pending))
	for f := range w.pending {
		files = append(files, f)
	}
	w.pending = map[string]struct{}{}
	return files
}

// addDirs registers root and every directory under it, skipping the
// usual build and dependency trees.
func addDirs(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if skipDirs[d.Name()] {
			return filepath.SkipDir
		}
		if err := fsw.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}
