// Package telemetry wires the node's tracer provider: every peer RPC and
// inbound HTTP request is instrumented via otelhttp, and this package decides
// where the resulting spans go.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"

	"ChordRing/internal/config"
	"ChordRing/internal/logger"
)

// InitTracer installs a global TracerProvider per cfg, tagging every span
// with the node's ring identifier and address. The returned func flushes and
// shuts down the provider; call it on graceful exit. When tracing is
// disabled the returned func is a no-op.
func InitTracer(ctx context.Context, cfg config.TelemetryConfig, serviceName, nodeID, nodeAddr string, lgr logger.Logger) (func(context.Context) error, error) {
	if !cfg.Tracing.Enabled {
		lgr.Debug("tracing disabled")
		return func(context.Context) error { return nil }, nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(serviceName),
			attribute.String("chordring.node.id", nodeID),
			attribute.String("chordring.node.addr", nodeAddr),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("build resource: %w", err)
	}

	var tp *sdktrace.TracerProvider
	switch cfg.Tracing.Exporter {
	case "stdout":
		exp, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("stdouttrace exporter: %w", err)
		}
		tp = sdktrace.NewTracerProvider(sdktrace.WithBatcher(exp), sdktrace.WithResource(res))
	case "otlp":
		exp, err := otlptracegrpc.New(ctx,
			otlptracegrpc.WithInsecure(),
			otlptracegrpc.WithEndpoint(cfg.Tracing.Endpoint),
		)
		if err != nil {
			return nil, fmt.Errorf("otlptracegrpc exporter: %w", err)
		}
		tp = sdktrace.NewTracerProvider(sdktrace.WithBatcher(exp), sdktrace.WithResource(res))
	default:
		return nil, fmt.Errorf("unsupported telemetry.tracing.exporter: %s", cfg.Tracing.Exporter)
	}

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	lgr.Info("tracing enabled", logger.F("exporter", cfg.Tracing.Exporter))
	return tp.Shutdown, nil
}
