// Package watcher re-runs the incremental update when documents under the
// input directory change.
package watcher

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/docbrief/internal/build"
)

// DefaultDebounce is the quiet period before an update runs.
const DefaultDebounce = 500 * time.Millisecond

// tempPrefix matches the atomic-write temp files of internal/storage.
const tempPrefix = ".docbrief-tmp-"

// Updater runs one incremental pass.
type Updater interface {
	Update(ctx context.Context, force bool) (*build.Result, error)
}

// RunCallback is called after every watcher-driven update.
type RunCallback func(res *build.Result, err error)

// Options configures Watch.
type Options struct {
	Root     string
	Debounce time.Duration
	// Skip reports paths whose events never trigger an update.
	Skip func(path string) bool
}

// Watch starts an fsnotify watcher on Root and runs u.Update(ctx, false)
// once events have been quiet for Debounce. Updates run on the calling
// goroutine, one at a time. A failed update is logged and reported to cb;
// watching continues. Watch returns when ctx is cancelled.
//
// New directories created at runtime are automatically added to the watch
// list.
func Watch(ctx context.Context, u Updater, opts Options, logger *slog.Logger, cb RunCallback) error {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, opts.Root); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", opts.Root), slog.Duration("debounce", opts.Debounce))

	var timer *time.Timer
	var timerCh <-chan time.Time

	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(opts.Debounce)
			timerCh = timer.C
		} else {
			timer.Reset(opts.Debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-timerCh:
			res, err := u.Update(ctx, false)
			if err != nil {
				logger.Error("watcher: update failed", slog.String("error", err.Error()))
			} else if res.Changed() {
				logger.Info("watcher: updated",
					slog.Int("added", res.Added),
					slog.Int("updated", res.Updated),
					slog.Int("removed", res.Removed))
			}
			if cb != nil {
				cb(res, err)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op == fsnotify.Chmod {
				continue
			}
			if strings.HasPrefix(filepath.Base(ev.Name), tempPrefix) {
				continue
			}
			if opts.Skip != nil && opts.Skip(ev.Name) {
				continue
			}

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					} else {
						logger.Debug("watcher: watching new dir", slog.String("path", ev.Name))
					}
				}
			}

			logger.Debug("watcher: event", slog.String("path", ev.Name), slog.String("op", ev.Op.String()))
			schedule()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
