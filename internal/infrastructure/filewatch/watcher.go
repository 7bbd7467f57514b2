package filewatch

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"techrank/internal/bootstrap/logging"
	"techrank/internal/errs"
)

const defaultDebounce = 250 * time.Millisecond

// ReloadFunc is called after the watched file settles. Its error is logged.
type ReloadFunc func(ctx context.Context, path string) error

// Watch calls reload whenever path is written, created or renamed into place,
// until ctx is done. It watches the parent directory so editors that replace
// the file atomically are still seen.
func Watch(ctx context.Context, path string, debounce time.Duration, reload ReloadFunc) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if reload == nil {
		return errors.New("reload func is required")
	}
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return errs.Wrapf(err, "resolve %s", path)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errs.Wrap(err, "create file watcher")
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return errs.Wrapf(err, "watch %s", filepath.Dir(abs))
	}

	logCtx := logging.WithAttrs(logging.WithComponent(ctx, "infrastructure.filewatch"), slog.String("path", abs))
	logging.Info(logCtx, "watching file")

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			logging.Debug(logCtx, "file changed", slog.String("op", event.Op.String()))
			timer.Reset(debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logging.Warn(logCtx, "file watcher error", slog.Any("err", errs.Loggable(err)))
		case <-timer.C:
			if err := reload(logCtx, abs); err != nil {
				logging.Error(logCtx, "reload failed", slog.Any("err", errs.Loggable(err)))
			}
		}
	}
}
