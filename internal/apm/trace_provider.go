package apm

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/exporters/zipkin"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.10.0"

	"github.com/fd1az/naijatrade/internal/config"
	"github.com/fd1az/naijatrade/internal/logger"
	"github.com/fd1az/naijatrade/internal/metrics"
)

type Provider string

const (
	ZipkinProvider   Provider = "zipkin"
	OTLPGRPCProvider Provider = "otlp-grpc"
	OTLPHTTPProvider Provider = "otlp-http"
	ConsoleProvider  Provider = "console"
	EmptyProvider    Provider = ""
)

type TraceProvider interface {
	Stop() error
}

type traceProvider struct {
	tp *sdktrace.TracerProvider
}

type TracerOptions struct {
	exporter           sdktrace.SpanExporter
	tracerProviderName string
	serviceName        string
	useEmpty           bool
	err                error
}

type TracerOption func(*TracerOptions)

// WithTelemetry picks the exporter named by cfg.TraceProvider.
func WithTelemetry(cfg config.TelemetryConfig, log logger.LoggerInterface) TracerOption {
	return func(option *TracerOptions) {
		option.serviceName = cfg.ServiceName
		if !cfg.Enabled {
			useEmpty()(option)
			return
		}
		WithProvider(Provider(cfg.TraceProvider), cfg.OTLPEndpoint, metrics.ParseHeaders(cfg.OTLPHeaders), log)(option)
	}
}

func WithProvider(provider Provider, endpoint string, headers map[string]string, log logger.LoggerInterface) TracerOption {
	switch provider {
	case ZipkinProvider:
		return useZipkin(endpoint)
	case OTLPGRPCProvider:
		return useOTLPGRPC(endpoint, headers)
	case OTLPHTTPProvider:
		return useOTLPHTTP(endpoint, headers)
	case ConsoleProvider:
		return useConsole()
	}

	log.Warn(context.Background(), "TracerProvider not found, using EmptyProvider", "provider", string(provider))
	return useEmpty()
}

func useEmpty() TracerOption {
	return func(option *TracerOptions) {
		option.useEmpty = true
		option.tracerProviderName = "empty"
	}
}

func useConsole() TracerOption {
	return func(option *TracerOptions) {
		option.exporter, option.err = stdouttrace.New(stdouttrace.WithPrettyPrint())
		option.tracerProviderName = string(ConsoleProvider)
	}
}

func useZipkin(url string) TracerOption {
	return func(option *TracerOptions) {
		option.exporter, option.err = zipkin.New(url)
		option.tracerProviderName = string(ZipkinProvider)
	}
}

func useOTLPGRPC(url string, headers map[string]string) TracerOption {
	return func(option *TracerOptions) {
		option.exporter, option.err = otlptracegrpc.New(
			context.Background(),
			otlptracegrpc.WithEndpointURL(url),
			otlptracegrpc.WithHeaders(headers),
		)
		option.tracerProviderName = string(OTLPGRPCProvider)
	}
}

func useOTLPHTTP(url string, headers map[string]string) TracerOption {
	return func(option *TracerOptions) {
		option.exporter, option.err = otlptracehttp.New(
			context.Background(),
			otlptracehttp.WithEndpointURL(url),
			otlptracehttp.WithHeaders(headers),
		)
		option.tracerProviderName = string(OTLPHTTPProvider)
	}
}

// NewTraceProvider installs a global tracer provider. With no options or a
// disabled config it installs nothing.
func NewTraceProvider(options ...TracerOption) (TraceProvider, error) {
	opts := &TracerOptions{}
	if len(options) == 0 {
		useEmpty()(opts)
	}
	for _, opt := range options {
		opt(opts)
	}

	if opts.err != nil {
		return nil, fmt.Errorf("%s trace exporter: %w", opts.tracerProviderName, opts.err)
	}
	if opts.useEmpty {
		return NewEmptyTraceProvider(), nil
	}

	rsrc, _ := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(opts.serviceName),
			attribute.String("otel.provider", opts.tracerProviderName),
		))

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(opts.exporter),
		sdktrace.WithResource(rsrc),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))

	return &traceProvider{tp}, nil
}

func (o *traceProvider) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5) //nolint:gomnd
	defer cancel()

	return o.tp.Shutdown(ctx)
}
