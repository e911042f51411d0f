package query

import (
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/fd1az/naijatrade/internal/config"
	"github.com/fd1az/naijatrade/internal/logger"
)

type entryOptions struct {
	staleTime       time.Duration
	refetchInterval time.Duration
	gcTime          time.Duration
}

// Option tunes a single query.
type Option func(*entryOptions)

// StaleTime is how long fetched data counts as fresh.
func StaleTime(d time.Duration) Option {
	return func(o *entryOptions) {
		o.staleTime = d
	}
}

// RefetchInterval polls while the key has subscribers. Zero disables polling.
func RefetchInterval(d time.Duration) Option {
	return func(o *entryOptions) {
		o.refetchInterval = d
	}
}

// GCTime is how long an entry survives without subscribers.
func GCTime(d time.Duration) Option {
	return func(o *entryOptions) {
		o.gcTime = d
	}
}

func (o entryOptions) with(opts []Option) entryOptions {
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// ErrorObserver sees every failed fetch and mutation. key is nil for mutations.
type ErrorObserver func(key Key, err error)

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithDefaults sets the options applied before per-query options.
func WithDefaults(opts ...Option) ClientOption {
	return func(c *Client) {
		c.defaults = c.defaults.with(opts)
	}
}

// WithCacheConfig takes defaults from the cache config section.
func WithCacheConfig(cfg config.CacheConfig) ClientOption {
	return WithDefaults(
		StaleTime(cfg.StaleTime),
		RefetchInterval(cfg.RefetchInterval),
		GCTime(cfg.GCTime),
	)
}

// WithNow replaces the clock used for freshness checks.
func WithNow(now func() time.Time) ClientOption {
	return func(c *Client) {
		c.now = now
	}
}

// WithLogger sets the logger.
func WithLogger(log logger.LoggerInterface) ClientOption {
	return func(c *Client) {
		c.log = log
	}
}

// WithErrorObserver registers an observer. Observers run synchronously
// outside the cache lock.
func WithErrorObserver(fn ErrorObserver) ClientOption {
	return func(c *Client) {
		c.observers = append(c.observers, fn)
	}
}

// WithMeterProvider records cache counters on mp.
func WithMeterProvider(mp metric.MeterProvider) ClientOption {
	return func(c *Client) {
		c.meterProvider = mp
	}
}
