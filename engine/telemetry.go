package engine

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// SetupTelemetry builds a real OTLP/gRPC trace and metric pipeline when
// endpoint is non-empty (grounded on original_source/otel.rs's
// opentelemetry_otlp tonic/gRPC exporter, the direct ancestor of this
// package's tracer/meter plumbing), or an SDK provider with no exporter —
// spans and metric recordings still happen, they are simply never shipped
// anywhere — when endpoint is empty. Either way the returned tracer and
// meter provider are real, never nil, so the CLI always hands vm and
// coordinator working telemetry handles (both still accept nil ones).
func SetupTelemetry(ctx context.Context, serviceName, endpoint string) (trace.Tracer, *metric.MeterProvider, func(context.Context) error, error) {
	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(serviceName),
	))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("building otel resource: %w", err)
	}

	if endpoint == "" {
		tp := sdktrace.NewTracerProvider(sdktrace.WithResource(res))
		mp := metric.NewMeterProvider(metric.WithResource(res))
		shutdown := func(ctx context.Context) error {
			if err := tp.Shutdown(ctx); err != nil {
				return err
			}
			return mp.Shutdown(ctx)
		}
		return tp.Tracer("mustermann_root_tracer"), mp, shutdown, nil
	}

	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithEndpoint(endpoint), otlptracegrpc.WithInsecure())
	if err != nil {
		return nil, nil, nil, fmt.Errorf("building otlp trace exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)

	metricExporter, err := otlpmetricgrpc.New(ctx, otlpmetricgrpc.WithEndpoint(endpoint), otlpmetricgrpc.WithInsecure())
	if err != nil {
		return nil, nil, nil, fmt.Errorf("building otlp metric exporter: %w", err)
	}
	mp := metric.NewMeterProvider(
		metric.WithResource(res),
		metric.WithReader(metric.NewPeriodicReader(metricExporter)),
	)

	shutdown := func(ctx context.Context) error {
		if err := tp.Shutdown(ctx); err != nil {
			return err
		}
		return mp.Shutdown(ctx)
	}

	return tp.Tracer("mustermann_root_tracer"), mp, shutdown, nil
}
