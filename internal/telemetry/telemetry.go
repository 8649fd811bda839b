// Package telemetry configures OpenTelemetry metric and trace export.
package telemetry

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/dwsmith1983/tagwatch/pkg/types"
)

// Telemetry owns the SDK providers. The zero value (export disabled) is valid.
type Telemetry struct {
	meters  *sdkmetric.MeterProvider
	tracers *sdktrace.TracerProvider
}

// Setup installs OTLP/gRPC exporters as the global providers when an endpoint
// is configured. Without one it returns a disabled Telemetry and the global
// no-op providers stay in place.
func Setup(ctx context.Context, cfg types.TelemetryConfig) (*Telemetry, error) {
	if cfg.OTLPEndpoint == "" {
		return &Telemetry{}, nil
	}

	metricOpts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.OTLPEndpoint)}
	traceOpts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint)}
	if cfg.Insecure {
		metricOpts = append(metricOpts, otlpmetricgrpc.WithInsecure())
		traceOpts = append(traceOpts, otlptracegrpc.WithInsecure())
	}

	metricExp, err := otlpmetricgrpc.New(ctx, metricOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP metric exporter: %w", err)
	}
	traceExp, err := otlptracegrpc.New(ctx, traceOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP trace exporter: %w", err)
	}

	t := &Telemetry{
		meters:  sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExp))),
		tracers: sdktrace.NewTracerProvider(sdktrace.WithBatcher(traceExp)),
	}
	otel.SetMeterProvider(t.meters)
	otel.SetTracerProvider(t.tracers)
	return t, nil
}

// Enabled reports whether exporters are installed.
func (t *Telemetry) Enabled() bool { return t != nil && t.meters != nil }

// Flush exports buffered telemetry. Lambdas call it at the end of each
// invocation because the sandbox may freeze before the periodic reader fires.
func (t *Telemetry) Flush(ctx context.Context) error {
	if !t.Enabled() {
		return nil
	}
	return errors.Join(t.meters.ForceFlush(ctx), t.tracers.ForceFlush(ctx))
}

// Shutdown flushes and stops the providers.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if !t.Enabled() {
		return nil
	}
	return errors.Join(t.meters.Shutdown(ctx), t.tracers.Shutdown(ctx))
}
