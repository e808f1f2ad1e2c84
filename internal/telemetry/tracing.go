// Package telemetry wires OpenTelemetry tracing and Prometheus metrics for
// tool dispatches, plan runs and HTTP requests.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// TracingConfig controls span export.
type TracingConfig struct {
	// Endpoint is the OTLP/HTTP collector address (host:port). Empty
	// disables export.
	Endpoint string `yaml:"endpoint"`

	// Insecure sends spans over plain HTTP.
	Insecure bool `yaml:"insecure"`

	// SampleRatio is the fraction of root spans sampled. Defaults to 1.
	SampleRatio float64 `yaml:"sample_ratio"`
}

func (c *TracingConfig) defaults() {
	if c.SampleRatio <= 0 || c.SampleRatio > 1 {
		c.SampleRatio = 1
	}
}

// Shutdown flushes and stops a tracer provider.
type Shutdown func(ctx context.Context) error

// SetupTracing installs a global tracer provider exporting to cfg.Endpoint.
// With no endpoint configured the global provider is left untouched and
// the returned Shutdown is a no-op.
func SetupTracing(ctx context.Context, cfg TracingConfig, service, version string) (Shutdown, error) {
	if cfg.Endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}
	cfg.defaults()

	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("telemetry: create otlp exporter: %w", err)
	}

	tp := NewTracerProvider(sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)),
		service, version, cfg.SampleRatio)
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}

// NewTracerProvider builds a provider tagged with the service identity.
func NewTracerProvider(export sdktrace.TracerProviderOption, service, version string, ratio float64) *sdktrace.TracerProvider {
	res := resource.NewSchemaless(
		attribute.String("service.name", service),
		attribute.String("service.version", version),
	)
	return sdktrace.NewTracerProvider(
		export,
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))),
	)
}
