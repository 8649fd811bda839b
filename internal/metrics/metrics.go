// Package metrics records tagwatch counters through OpenTelemetry.
package metrics

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ScopeName is the instrumentation scope of every tagwatch instrument.
const ScopeName = "github.com/dwsmith1983/tagwatch"

// Recorder holds the tagwatch instruments. A nil *Recorder is valid and
// records nothing.
type Recorder struct {
	checks        metric.Int64Counter
	triggers      metric.Int64Counter
	fetchFailures metric.Int64Counter
	storeErrors   metric.Int64Counter
}

// New creates the instruments on mp, or on the global provider when mp is nil.
func New(mp metric.MeterProvider) (*Recorder, error) {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	m := mp.Meter(ScopeName)

	r := &Recorder{}
	var err error
	if r.checks, err = m.Int64Counter("tagwatch.checks",
		metric.WithDescription("Check-and-trigger passes by result status")); err != nil {
		return nil, err
	}
	if r.triggers, err = m.Int64Counter("tagwatch.triggers",
		metric.WithDescription("Deploy webhook attempts by trigger kind and outcome")); err != nil {
		return nil, err
	}
	if r.fetchFailures, err = m.Int64Counter("tagwatch.fetch_failures",
		metric.WithDescription("Upstream release fetches that yielded no marker")); err != nil {
		return nil, err
	}
	if r.storeErrors, err = m.Int64Counter("tagwatch.store_errors",
		metric.WithDescription("State store operations that failed")); err != nil {
		return nil, err
	}
	return r, nil
}

// Check counts one check pass.
func (r *Recorder) Check(ctx context.Context, status string) {
	if r == nil {
		return
	}
	r.checks.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

// Trigger counts one webhook attempt.
func (r *Recorder) Trigger(ctx context.Context, kind, outcome string) {
	if r == nil {
		return
	}
	r.triggers.Add(ctx, 1, metric.WithAttributes(
		attribute.String("trigger", kind),
		attribute.String("outcome", outcome),
	))
}

// FetchFailure counts one failed upstream fetch.
func (r *Recorder) FetchFailure(ctx context.Context) {
	if r == nil {
		return
	}
	r.fetchFailures.Add(ctx, 1)
}

// StoreError counts one failed store operation.
func (r *Recorder) StoreError(ctx context.Context, op string) {
	if r == nil {
		return
	}
	r.storeErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("op", op)))
}
