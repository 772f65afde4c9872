package thresholds

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/good-yellow-bee/netwatch/internal/models"
)

// ReloadFunc applies a freshly loaded threshold set.
type ReloadFunc func(set []models.Threshold) error

// Watcher reloads a threshold file whenever it changes on disk.
type Watcher struct {
	path     string
	apply    ReloadFunc
	debounce time.Duration
	logger   *zap.Logger
}

// NewWatcher creates a watcher for path. Changes are applied through apply.
func NewWatcher(path string, apply ReloadFunc, logger *zap.Logger) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve thresholds path: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		path:     absPath,
		apply:    apply,
		debounce: 250 * time.Millisecond,
		logger:   logger.With(zap.String("component", "threshold-watcher"), zap.String("path", absPath)),
	}, nil
}

// Run watches the file until ctx is canceled.
// The parent directory is watched so that editors which replace the file
// by rename are still picked up.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}

	w.logger.Info("watching thresholds file")

	var (
		timer   *time.Timer
		pending <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			pending = timer.C

		case <-pending:
			pending = nil
			w.reload()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) reload() {
	set, err := LoadFromFile(w.path)
	if err != nil {
		w.logger.Error("reload thresholds failed, keeping current set", zap.Error(err))
		return
	}
	if err := w.apply(set); err != nil {
		w.logger.Error("apply thresholds failed, keeping current set", zap.Error(err))
		return
	}
	w.logger.Info("thresholds reloaded", zap.Int("count", len(set)))
}
