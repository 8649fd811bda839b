// Package engine implements the tag comparison and deploy trigger logic.
package engine

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/dwsmith1983/tagwatch/internal/metrics"
	"github.com/dwsmith1983/tagwatch/internal/provider"
	"github.com/dwsmith1983/tagwatch/pkg/types"
)

// StatusLimit is the number of deployment records rendered by Status.
const StatusLimit = 5

// Fetcher reports the newest upstream version marker.
type Fetcher interface {
	FetchLatestMarker(ctx context.Context) (types.VersionMarker, bool)
}

// Deployer invokes the downstream deployment.
type Deployer interface {
	Trigger(ctx context.Context, marker types.VersionMarker, kind types.TriggerKind) error
}

// EventSink receives every recorded trigger event.
type EventSink interface {
	Publish(ctx context.Context, ev types.TriggerEvent) error
}

// Engine compares the upstream marker with the stored one, triggers the
// deployment on change and persists the outcome.
type Engine struct {
	store      provider.Store
	fetcher    Fetcher
	deployer   Deployer
	locker     provider.Locker
	leaseTTL   time.Duration
	sink       EventSink
	metrics    *metrics.Recorder
	tracer     trace.Tracer
	logger     *slog.Logger
	now        func() time.Time
	repository string
}

// New creates an Engine.
func New(store provider.Store, fetcher Fetcher, deployer Deployer) *Engine {
	return &Engine{
		store:      store,
		fetcher:    fetcher,
		deployer:   deployer,
		tracer:     otel.Tracer(metrics.ScopeName),
		logger:     slog.Default(),
		now:        time.Now,
		repository: types.DefaultRepository,
	}
}

// SetLogger sets the logger.
func (e *Engine) SetLogger(l *slog.Logger) { e.logger = l }

// SetClock overrides the time source.
func (e *Engine) SetClock(now func() time.Time) { e.now = now }

// SetRepository sets the repository name reported in status and events.
func (e *Engine) SetRepository(repo string) {
	if repo != "" {
		e.repository = repo
	}
}

// SetLease serializes scheduled checks through l. A zero ttl disables it.
func (e *Engine) SetLease(l provider.Locker, ttl time.Duration) {
	e.locker = l
	e.leaseTTL = ttl
}

// SetEventSink publishes every recorded event to s.
func (e *Engine) SetEventSink(s EventSink) { e.sink = s }

// SetMetrics sets the metrics recorder.
func (e *Engine) SetMetrics(r *metrics.Recorder) { e.metrics = r }

// Repository returns the watched repository name.
func (e *Engine) Repository() string { return e.repository }

func (e *Engine) get(ctx context.Context, key string) (string, bool, error) {
	v, ok, err := e.store.Get(ctx, key)
	if err != nil {
		e.metrics.StoreError(ctx, "get")
		return "", false, &StoreError{Op: "get", Key: key, Err: err}
	}
	return v, ok, nil
}

func (e *Engine) put(ctx context.Context, key, value string) error {
	if err := e.store.Put(ctx, key, value); err != nil {
		e.metrics.StoreError(ctx, "put")
		return &StoreError{Op: "put", Key: key, Err: err}
	}
	return nil
}

// recordEvent appends ev under a fresh key with the given prefix and
// forwards it to the event sink.
func (e *Engine) recordEvent(ctx context.Context, prefix string, ev types.TriggerEvent) (string, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return "", err
	}
	key := provider.EventKey(prefix, newEventID(ev.Timestamp))
	if err := e.put(ctx, key, string(data)); err != nil {
		return "", err
	}

	if e.sink != nil {
		if err := e.sink.Publish(ctx, ev); err != nil {
			e.logger.Warn("failed to publish trigger event", "key", key, "error", err)
		}
	}
	return key, nil
}

// recordFailure stores a failed attempt. Errors are logged, not returned.
func (e *Engine) recordFailure(ctx context.Context, prefix string, ev types.TriggerEvent) {
	if _, err := e.recordEvent(ctx, prefix, ev); err != nil {
		e.logger.Warn("failed to record trigger failure", "tag", ev.Tag, "error", err)
	}
}
