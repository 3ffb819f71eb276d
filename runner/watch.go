package runner

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch runs once, then re-runs whenever a specification file under root
// changes, until the context is cancelled. File events are debounced so an
// editor save (often several events) triggers a single re-run.
func (r *Runner) Watch(ctx context.Context, root string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := addRecursive(watcher, root); err != nil {
		return err
	}

	if _, err := r.Run(root); err != nil {
		r.logger.Error("Run failed", slog.String("error", err.Error()))
	}

	debounce := r.cfg.Watch.Debounce
	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op.Has(fsnotify.Create) {
				// New directories need their own watch.
				if err := addRecursive(watcher, event.Name); err != nil {
					r.logger.Debug("Cannot watch new path", slog.String("path", event.Name))
				}
			}
			if !isSpecFile(event.Name) {
				continue
			}
			r.logger.Debug("Spec file changed",
				slog.String("path", event.Name), slog.String("op", event.Op.String()))
			timer.Reset(debounce)
			pending = true
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.Warn("Watcher error", slog.String("error", err.Error()))
		case <-timer.C:
			if !pending {
				continue
			}
			pending = false
			if _, err := r.Run(root); err != nil {
				r.logger.Error("Run failed", slog.String("error", err.Error()))
			}
		}
	}
}

// addRecursive watches a directory tree. A file root is watched directly;
// nested non-directories are covered by their parent's watch.
func addRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			if path == root {
				return watcher.Add(path)
			}
			return nil
		}
		return watcher.Add(path)
	})
}

// isSpecFile reports whether a changed path can affect a run.
func isSpecFile(path string) bool {
	switch filepath.Ext(path) {
	case ".yml", ".yaml":
		return true
	}
	return false
}
