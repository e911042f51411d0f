package apm

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/naijatrade/internal/apperror"
)

// Span is the part of an otel span the services touch.
type Span interface {
	SetAttribute(value attribute.KeyValue)
	SetAttributes(values ...attribute.KeyValue)
	AddEvent(name string, options ...trace.EventOption)
	NoticeError(err error)
	End(options ...trace.SpanEndOption)
	SpanContext() trace.SpanContext
}

type traceSpan struct {
	span trace.Span
}

func NewSpan(span trace.Span) Span {
	return &traceSpan{span: span}
}

func (t *traceSpan) SetAttribute(value attribute.KeyValue) {
	t.span.SetAttributes(value)
}

func (t *traceSpan) SetAttributes(values ...attribute.KeyValue) {
	t.span.SetAttributes(values...)
}

func (t *traceSpan) AddEvent(name string, options ...trace.EventOption) {
	t.span.AddEvent(name, options...)
}

// NoticeError tags the span with the error's code, kind and HTTP status.
// Only network, server and unknown failures mark the span as failed; a
// rejected form, a missing item or a plan limit is an answer, not a fault.
func (t *traceSpan) NoticeError(err error) {
	if err == nil {
		return
	}

	kind := apperror.KindOf(err)
	attrs := []attribute.KeyValue{attribute.String("error.kind", kind.String())}
	if ae, ok := apperror.As(err); ok {
		attrs = append(attrs, attribute.String("error.code", string(ae.Code)))
		if ae.StatusCode != 0 {
			attrs = append(attrs, attribute.Int("http.status_code", ae.StatusCode))
		}
	}
	t.span.SetAttributes(attrs...)

	switch kind {
	case apperror.KindCanceled:
		t.span.AddEvent("canceled")
	case apperror.KindValidation, apperror.KindNotFound, apperror.KindEntitlement, apperror.KindForbidden, apperror.KindAuth:
		t.span.AddEvent("rejected", trace.WithAttributes(attribute.String("message", apperror.MessageOf(err))))
	default:
		t.span.RecordError(err)
		t.span.SetStatus(codes.Error, apperror.MessageOf(err))
	}
}

func (t *traceSpan) End(options ...trace.SpanEndOption) {
	t.span.End(options...)
}

func (t *traceSpan) SpanContext() trace.SpanContext {
	return t.span.SpanContext()
}
