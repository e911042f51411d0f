package apm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/fd1az/naijatrade/internal/apperror"
	"github.com/fd1az/naijatrade/internal/config"
	"github.com/fd1az/naijatrade/internal/logger"
)

func TestNewTraceProvider_DisabledIsEmpty(t *testing.T) {
	tp, err := NewTraceProvider(WithTelemetry(config.TelemetryConfig{Enabled: false, TraceProvider: "zipkin"}, logger.Nop()))
	require.NoError(t, err)
	assert.IsType(t, emptyTraceProvider{}, tp)
	assert.NoError(t, tp.Stop())
}

func TestNewTraceProvider_UnknownFallsBackToEmpty(t *testing.T) {
	tp, err := NewTraceProvider(WithProvider("jaeger", "", nil, logger.Nop()))
	require.NoError(t, err)
	assert.IsType(t, emptyTraceProvider{}, tp)
}

func TestNewTraceProvider_Console(t *testing.T) {
	tp, err := NewTraceProvider(WithTelemetry(config.TelemetryConfig{Enabled: true, ServiceName: "nt", TraceProvider: "console"}, logger.Nop()))
	require.NoError(t, err)
	assert.NoError(t, tp.Stop())
}

func TestTracer_NoticeError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus codes.Code
		wantEvent  string
		wantKind   string
	}{
		{
			name:       "server failure marks the span",
			err:        apperror.New(apperror.CodeExternalServiceError, apperror.WithStatusCode(502)),
			wantStatus: codes.Error,
			wantEvent:  "exception",
			wantKind:   "server",
		},
		{
			name:       "plan limit is recorded as a rejection",
			err:        apperror.New(apperror.CodePlanLimitExceeded, apperror.WithStatusCode(403)),
			wantStatus: codes.Unset,
			wantEvent:  "rejected",
			wantKind:   "entitlement",
		},
		{
			name:       "cancellation",
			err:        context.Canceled,
			wantStatus: codes.Unset,
			wantEvent:  "canceled",
			wantKind:   "canceled",
		},
		{
			name:       "plain error",
			err:        errors.New("boom"),
			wantStatus: codes.Error,
			wantEvent:  "exception",
			wantKind:   "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := tracetest.NewSpanRecorder()
			tr := newTracer(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec)), "signals")

			ctx, span := tr.StartSpanFromContext(context.Background(), "signals.create")
			assert.True(t, tr.SpanFromContext(ctx).SpanContext().IsValid())
			span.NoticeError(tt.err)
			span.End()

			ended := rec.Ended()
			require.Len(t, ended, 1)
			got := ended[0]
			assert.Equal(t, tt.wantStatus, got.Status().Code)
			require.NotEmpty(t, got.Events())
			assert.Equal(t, tt.wantEvent, got.Events()[0].Name)

			attrs := map[attribute.Key]attribute.Value{}
			for _, kv := range got.Attributes() {
				attrs[kv.Key] = kv.Value
			}
			assert.Equal(t, "signals", attrs["module"].AsString())
			assert.Equal(t, tt.wantKind, attrs["error.kind"].AsString())
		})
	}
}

func TestTracer_NoticeErrorNil(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tr := newTracer(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec)), "auth")

	_, span := tr.StartSpanFromContext(context.Background(), "auth.login")
	span.NoticeError(nil)
	span.End()

	require.Len(t, rec.Ended(), 1)
	assert.Empty(t, rec.Ended()[0].Events())
	assert.Equal(t, codes.Unset, rec.Ended()[0].Status().Code)
}
