package tracing

import (
	"context"
	"fmt"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"log"
)

const (
	nameTracer = "notebridge-tracer"

	// Span attributes shared by the repositories.
	AttrNoteID    = attribute.Key("note.id")
	AttrNoteTitle = attribute.Key("note.title")
	AttrQuery     = attribute.Key("note.query")
	AttrEventID   = attribute.Key("event.id")
	AttrEventKind = attribute.Key("event.kind")
)

// InitTracing exports spans of service to the Jaeger collector at endpoint.
// With an empty endpoint spans go to the global no-op provider and cleanup
// does nothing.
func InitTracing(service, endpoint string) (func(), error) {
	if endpoint == "" {
		log.Println("tracing endpoint is not set, tracing disabled")
		return func() {}, nil
	}

	exporter, err := jaeger.New(
		jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(endpoint)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to init jaeger exporter: %w", err)
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(attribute.String("service.name", service)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build tracing resource for '%s': %w", service, err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	log.Printf("tracing '%s' to %s", service, endpoint)

	return func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Printf("failed to shutdown tracer provider: %v", err)
		}
	}, nil
}

func StartSpan(ctx context.Context, spanName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(nameTracer).Start(ctx, spanName, trace.WithAttributes(attrs...))
}

// EndSpan ends span, marking it failed when err is set. Meant for
// `defer func() { tracing.EndSpan(span, err) }()` with a named error result.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
