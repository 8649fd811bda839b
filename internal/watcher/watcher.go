// Package watcher runs the release check on a fixed interval for local
// serve mode.
package watcher

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dwsmith1983/tagwatch/pkg/types"
)

// DefaultInterval is used when the configured interval is not positive.
const DefaultInterval = time.Hour

// Checker runs one check-and-trigger pass.
type Checker interface {
	CheckForUpdates(ctx context.Context) (*types.CheckResult, error)
}

// Watcher launches a check on every tick. Ticks do not wait for earlier
// checks to finish.
type Watcher struct {
	checker  Checker
	interval time.Duration
	logger   *slog.Logger

	cancel context.CancelFunc
	loop   sync.WaitGroup
	checks sync.WaitGroup
}

// New creates a new Watcher.
func New(checker Checker, interval time.Duration, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Watcher{checker: checker, interval: interval, logger: logger}
}

// Start begins the ticker loop. The first check runs immediately.
func (w *Watcher) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)

	w.loop.Add(1)
	go func() {
		defer w.loop.Done()
		w.logger.Info("watcher started", "interval", w.interval)

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		w.launch(ctx)
		for {
			select {
			case <-ctx.Done():
				w.logger.Info("watcher stopping")
				return
			case <-ticker.C:
				w.launch(ctx)
			}
		}
	}()
}

// Stop cancels the loop and waits for in-flight checks, bounded by ctx.
func (w *Watcher) Stop(ctx context.Context) {
	if w.cancel != nil {
		w.cancel()
	}

	done := make(chan struct{})
	go func() {
		w.loop.Wait()
		w.checks.Wait()
		close(done)
	}()

	select {
	case <-done:
		w.logger.Info("watcher stopped")
	case <-ctx.Done():
		w.logger.Warn("watcher stop timed out")
	}
}

func (w *Watcher) launch(ctx context.Context) {
	w.checks.Add(1)
	go func() {
		defer w.checks.Done()
		res, err := w.checker.CheckForUpdates(ctx)
		if err != nil {
			w.logger.Error("scheduled check failed", "error", err)
			return
		}
		w.logger.Info("scheduled check complete",
			"status", res.Status, "tag", res.NewMarker, "previousTag", res.OldMarker)
	}()
}
