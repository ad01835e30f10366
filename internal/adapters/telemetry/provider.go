package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/depcache/internal/build"
	"go.trai.ch/depcache/internal/core/domain"
	"go.trai.ch/zerr"
)

// ServiceName identifies depcache in exported traces.
const ServiceName = "depcache"

// Setup installs the global tracer provider. Spans are exported over OTLP/gRPC
// when an endpoint is configured and dropped otherwise.
// The returned function flushes and stops the provider.
func Setup(ctx context.Context, cfg domain.TelemetryConfig, extra ...sdktrace.SpanProcessor) (func(context.Context) error, error) {
	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", ServiceName),
			attribute.String("service.version", build.Version),
		)),
	}

	if cfg.OTLPEndpoint != "" {
		exporter, err := otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint),
			otlptracegrpc.WithInsecure(),
		)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to create trace exporter"), "endpoint", cfg.OTLPEndpoint)
		}
		opts = append(opts, sdktrace.WithBatcher(exporter))
	}

	for _, sp := range extra {
		opts = append(opts, sdktrace.WithSpanProcessor(sp))
	}

	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}
