package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/jengzang/flight-delay-backend-go/internal/artifact"
)

// DefaultDebounce is the quiet period after the last artifact event before a
// reload runs
const DefaultDebounce = 2 * time.Second

var watchedFiles = map[string]bool{
	artifact.ModelFile:    true,
	artifact.EncodersFile: true,
	artifact.MetricsFile:  true,
}

// Watcher reloads the serving state when artifact files change
type Watcher struct {
	dir      string
	reload   func() error
	debounce time.Duration
	logger   *zap.Logger
}

// NewWatcher watches dir and calls reload after changes settle
func NewWatcher(dir string, reload func() error, debounce time.Duration, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{dir: dir, reload: reload, debounce: debounce, logger: logger}
}

// Run blocks until ctx is done or the underlying watcher fails
func (w *Watcher) Run(ctx context.Context) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.logger.Info("watching artifacts", zap.String("dir", w.dir))

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(event) {
				continue
			}
			w.logger.Debug("artifact changed", zap.String("file", event.Name), zap.String("op", event.Op.String()))
			timer.Reset(w.debounce)

		case <-timer.C:
			if err := w.reload(); err != nil {
				w.logger.Warn("reload after artifact change failed", zap.Error(err))
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("artifact watcher: %w", err)
		}
	}
}

func relevant(event fsnotify.Event) bool {
	if !watchedFiles[filepath.Base(event.Name)] {
		return false
	}
	return event.Has(fsnotify.Create) || event.Has(fsnotify.Write) || event.Has(fsnotify.Rename)
}
