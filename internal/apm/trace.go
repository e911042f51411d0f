package apm

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Tracer starts spans for one bounded context. Every span carries the
// context name as the "module" attribute.
type Tracer interface {
	StartSpanFromContext(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, Span)
	SpanFromContext(ctx context.Context) Span
}

type openTracer struct {
	module string
	tracer trace.Tracer
}

// NewTracer uses the global provider installed by NewTraceProvider.
func NewTracer(module string) Tracer {
	return newTracer(otel.GetTracerProvider(), module)
}

func newTracer(tp trace.TracerProvider, module string) *openTracer {
	return &openTracer{
		module: module,
		tracer: tp.Tracer("naijatrade/" + module),
	}
}

func (t *openTracer) StartSpanFromContext(
	ctx context.Context, name string, opts ...trace.SpanStartOption,
) (context.Context, Span) {
	opts = append(opts, trace.WithAttributes(attribute.String("module", t.module)))
	ctx, span := t.tracer.Start(ctx, name, opts...)
	return ctx, NewSpan(span)
}

func (t *openTracer) SpanFromContext(ctx context.Context) Span {
	return NewSpan(trace.SpanFromContext(ctx))
}
