// Package observability provides OpenTelemetry tracing setup for serve mode.
//
// Traces are exported over OTLP HTTP to whatever collector the operator
// points otlp_endpoint at (an OpenTelemetry Collector, a vendor agent,
// Jaeger). An empty endpoint disables export entirely; the spans the rest
// of the code creates then cost next to nothing.
package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/hulo-lang/hulomind/internal/log"
)

// Config for tracing setup.
type Config struct {
	// Endpoint is the OTLP HTTP collector endpoint (host:port).
	// Empty disables trace export.
	Endpoint string
	// ServiceName is the service name attached to every span.
	ServiceName string
	// Environment is the deployment environment (dev, staging, prod).
	Environment string
	// Version is the running build version.
	Version string
}

// noopShutdown is returned when tracing is disabled or degraded.
func noopShutdown(context.Context) error { return nil }

// Setup installs the global tracer provider and returns a shutdown
// function that flushes pending spans. Export failures degrade
// gracefully: the service must run even when no collector is listening.
func Setup(ctx context.Context, cfg Config, logger log.Logger) (func(context.Context) error, error) {
	if logger == nil {
		logger = log.NewNop()
	}
	if cfg.Endpoint == "" {
		logger.Debug("tracing disabled, no OTLP endpoint configured")
		return noopShutdown, nil
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(cfg.Endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		logger.Warn("failed to create OTLP exporter, tracing disabled", "error", err)
		return noopShutdown, nil
	}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.Version),
		semconv.DeploymentEnvironment(cfg.Environment),
	))
	if err != nil {
		return noopShutdown, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	logger.Debug("tracing enabled",
		"endpoint", cfg.Endpoint,
		"service", cfg.ServiceName,
		"environment", cfg.Environment,
	)

	return tp.Shutdown, nil
}
