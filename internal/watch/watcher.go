// Package watch reloads the current page when a local static build changes.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/docnav/internal/config"
	"git.home.luguber.info/inful/docnav/internal/events"
	ferrors "git.home.luguber.info/inful/docnav/internal/foundation/errors"
	"git.home.luguber.info/inful/docnav/internal/logfields"
)

// Watcher monitors a static build directory tree and publishes a debounced
// events.SourceChanged for every burst of JSON file changes.
type Watcher struct {
	root     string
	bus      *events.Bus
	debounce time.Duration
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
}

// New creates a watcher for root. Close must be called if Run is never started.
func New(root string, bus *events.Bus, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "resolve watch root").Build()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to create file watcher").Build()
	}
	if debounce <= 0 {
		debounce = config.DefaultWatchDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}
	w := &Watcher{root: abs, bus: bus, debounce: debounce, watcher: fw, logger: logger}
	if err := w.addTree(abs); err != nil {
		_ = fw.Close()
		return nil, err
	}
	return w, nil
}

// addTree watches dir and every directory below it.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return ferrors.WrapError(err, ferrors.CategoryFileSystem, "walk watch root").
				WithContext("path", path).Build()
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.watcher.Add(path); err != nil {
			return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to watch directory").
				WithContext("path", path).Build()
		}
		return nil
	})
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// Run processes file events until ctx is done. It closes the watcher on exit.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() { _ = w.watcher.Close() }()
	w.logger.Info("Watching static build", slog.String("root", w.root))

	changed := make(map[string]struct{})
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			rel, relevant := w.handle(ev)
			if !relevant {
				continue
			}
			changed[rel] = struct{}{}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			timer = nil
			paths := make([]string, 0, len(changed))
			for p := range changed {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			clear(changed)

			w.logger.Debug("Static build changed", slog.Int("files", len(paths)))
			if err := w.bus.Publish(ctx, events.SourceChanged{Paths: paths, DetectedAt: time.Now()}); err != nil {
				w.logger.Warn("Change event not delivered", logfields.Error(err))
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("Watcher error", logfields.Error(err))
		}
	}
}

// handle returns the root-relative path of a JSON change worth reloading for.
// New directories are added to the watch set.
func (w *Watcher) handle(ev fsnotify.Event) (string, bool) {
	if ev.Has(fsnotify.Create) {
		if err := w.addIfDir(ev.Name); err != nil {
			w.logger.Warn("Cannot watch new directory", logfields.Error(err))
		}
	}
	if !strings.HasSuffix(ev.Name, ".json") {
		return "", false
	}
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return "", false
	}
	rel, err := filepath.Rel(w.root, ev.Name)
	if err != nil {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func (w *Watcher) addIfDir(path string) error {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return nil
	}
	return w.addTree(path)
}
