package watcher_test

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/dwsmith1983/tagwatch/internal/watcher"
	"github.com/dwsmith1983/tagwatch/pkg/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type countingChecker struct {
	calls atomic.Int32
	delay time.Duration
	err   error
}

func (c *countingChecker) CheckForUpdates(ctx context.Context) (*types.CheckResult, error) {
	c.calls.Add(1)
	if c.delay > 0 {
		select {
		case <-time.After(c.delay):
		case <-ctx.Done():
		}
	}
	return &types.CheckResult{Status: types.CheckNoUpdate}, c.err
}

func TestWatcher_RunsImmediatelyAndOnTick(t *testing.T) {
	c := &countingChecker{}
	w := watcher.New(c, 20*time.Millisecond, slog.Default())
	w.Start(context.Background())

	require.Eventually(t, func() bool { return c.calls.Load() >= 3 }, 2*time.Second, 10*time.Millisecond, "three checks")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	w.Stop(ctx)
}

func TestWatcher_TicksDoNotWaitForSlowChecks(t *testing.T) {
	c := &countingChecker{delay: 500 * time.Millisecond}
	w := watcher.New(c, 20*time.Millisecond, slog.Default())
	w.Start(context.Background())

	// Several checks start while the first is still sleeping.
	require.Eventually(t, func() bool { return c.calls.Load() >= 3 }, 300*time.Millisecond, 10*time.Millisecond, "overlapping checks")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	w.Stop(ctx)
}

func TestWatcher_ErrorsDoNotStopLoop(t *testing.T) {
	c := &countingChecker{err: errors.New("upstream down")}
	w := watcher.New(c, 20*time.Millisecond, slog.Default())
	w.Start(context.Background())

	require.Eventually(t, func() bool { return c.calls.Load() >= 2 }, 2*time.Second, 10*time.Millisecond, "checks after failure")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	w.Stop(ctx)
}

func TestWatcher_StopWithoutStart(t *testing.T) {
	w := watcher.New(&countingChecker{}, 0, nil)
	assert.NotPanics(t, func() { w.Stop(context.Background()) })
}
