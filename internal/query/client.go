// Package query is a keyed cache of server state. Entries are refcounted by
// subscribers, polled while subscribed, invalidated by key prefix after
// mutations and collected after a grace period without subscribers.
package query

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/fd1az/naijatrade/internal/logger"
)

// ErrClosed is returned by reads on a closed client.
var ErrClosed = errors.New("query: client closed")

// Client is safe for concurrent use.
type Client struct {
	mu      sync.Mutex
	entries map[string]*entry
	seq     uint64
	nextSub uint64
	closed  bool

	ctx    context.Context
	cancel context.CancelFunc

	defaults      entryOptions
	now           func() time.Time
	log           logger.LoggerInterface
	observers     []ErrorObserver
	meterProvider metric.MeterProvider

	stats   counters
	metrics *cacheMetrics
}

// NewClient creates a client. Without options data is stale after 30s,
// polled every minute and collected five minutes after its last subscriber.
func NewClient(opts ...ClientOption) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Client{
		entries: make(map[string]*entry),
		ctx:     ctx,
		cancel:  cancel,
		defaults: entryOptions{
			staleTime:       30 * time.Second,
			refetchInterval: time.Minute,
			gcTime:          5 * time.Minute,
		},
		now: time.Now,
		log: logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.meterProvider == nil {
		c.meterProvider = otel.GetMeterProvider()
	}
	c.metrics = newCacheMetrics(c.meterProvider)
	return c
}

// Invalidate marks every entry whose key starts with one of the prefixes.
// Subscribed entries become stale and refetch at once; entries without
// subscribers are evicted so the next read is a miss.
func (c *Client) Invalidate(prefixes ...Key) {
	if len(prefixes) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, e := range c.entries {
		if !matchesAny(e.key, prefixes) {
			continue
		}
		if len(e.subs) == 0 && e.current == nil {
			c.evictLocked(e)
			continue
		}
		e.gen++
		if len(e.subs) == 0 {
			// Readers are waiting on the old call; the next read refetches.
			continue
		}
		c.startLocked(e)
		c.notifyLocked(e)
	}
}

func matchesAny(k Key, prefixes []Key) bool {
	for _, p := range prefixes {
		if k.HasPrefix(p) {
			return true
		}
	}
	return false
}

// Remove drops cached data under the prefixes. Used when the session
// changes identity. Entries without subscribers are evicted; subscribed
// entries lose their data and refetch at once, and responses issued before
// the call are discarded.
func (c *Client) Remove(prefixes ...Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		if !matchesAny(e.key, prefixes) {
			continue
		}
		if len(e.subs) == 0 {
			c.evictLocked(e)
			continue
		}
		e.data, e.hasData, e.err = nil, false, nil
		e.updatedAt = time.Time{}
		e.gen++
		e.applied = c.seq
		c.startLocked(e)
		c.notifyLocked(e)
	}
}

// Close cancels every in-flight call, drops all entries and closes the
// update channel of every open subscription.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	for _, e := range c.entries {
		for _, l := range e.subs {
			l.detach()
		}
		c.evictLocked(e)
	}
	c.cancel()
}

// Status returns the current status of key without fetching.
func (c *Client) Status(key Key) Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key.String()]
	if !ok {
		return StatusEmpty
	}
	return e.snapshot(c.now()).status
}

func (c *Client) entryLocked(key Key, fn fetchFunc, opts []Option) *entry {
	hash := key.String()
	e, ok := c.entries[hash]
	if !ok {
		ctx, cancel := context.WithCancel(c.ctx)
		e = &entry{
			key:    append(Key(nil), key...),
			hash:   hash,
			subs:   make(map[uint64]listener),
			ctx:    ctx,
			cancel: cancel,
		}
		c.entries[hash] = e
	}
	e.opts = c.defaults.with(opts)
	if fn != nil {
		e.fetch = fn
	}
	return e
}

// startLocked issues a request for e unless one from the current
// generation is already in flight, in which case that one is shared.
func (c *Client) startLocked(e *entry) *call {
	if e.current != nil && e.current.gen == e.gen {
		return e.current
	}

	c.seq++
	cl := &call{seq: c.seq, gen: e.gen, done: make(chan struct{})}
	e.current = cl
	c.stats.fetches.Add(1)
	c.metrics.fetch(e.ctx, e.key)

	fetch := e.fetch
	go c.run(e, cl, fetch)
	return cl
}

func (c *Client) run(e *entry, cl *call, fetch fetchFunc) {
	data, err := fetch(e.ctx)

	c.mu.Lock()
	cl.data, cl.err = data, err
	c.completeLocked(e, cl)
	c.mu.Unlock()
	close(cl.done)

	if err != nil && !errors.Is(err, context.Canceled) {
		c.log.Debug(e.ctx, "query fetch failed", "key", e.hash, "error", err)
		c.observe(e.key, err)
	}
}

func (c *Client) completeLocked(e *entry, cl *call) {
	if e.current == cl {
		e.current = nil
	}
	if c.entries[e.hash] != e {
		return
	}

	if cl.seq <= e.applied {
		c.stats.discarded.Add(1)
		c.metrics.discard(e.ctx, e.key)
		c.log.Debug(e.ctx, "query response superseded", "key", e.hash, "seq", cl.seq, "applied", e.applied)
		c.notifyLocked(e)
		return
	}
	e.applied = cl.seq

	if cl.err != nil {
		if !errors.Is(cl.err, context.Canceled) {
			e.err = cl.err
		}
	} else {
		e.data = cl.data
		e.hasData = true
		e.err = nil
		e.updatedAt = c.now()
		e.fetchedGen = cl.gen
	}

	c.notifyLocked(e)
	if len(e.subs) == 0 && e.current == nil {
		c.scheduleGCLocked(e)
	}
}

func (c *Client) notifyLocked(e *entry) {
	if len(e.subs) == 0 {
		return
	}
	s := e.snapshot(c.now())
	for _, l := range e.subs {
		l.deliver(s)
	}
}

func (c *Client) scheduleGCLocked(e *entry) {
	e.stopGC()
	e.gcTimer = time.AfterFunc(e.opts.gcTime, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.entries[e.hash] != e || len(e.subs) > 0 || e.current != nil {
			return
		}
		c.evictLocked(e)
	})
}

func (c *Client) evictLocked(e *entry) {
	if c.entries[e.hash] != e {
		return
	}
	delete(c.entries, e.hash)
	e.stopPolling()
	e.stopGC()
	e.cancel()
	e.subs = make(map[uint64]listener)
	c.stats.evictions.Add(1)
	c.metrics.evict(context.Background(), e.key)
}

func (c *Client) startPollingLocked(e *entry) {
	if e.pollStop != nil || e.opts.refetchInterval <= 0 {
		return
	}
	stop := make(chan struct{})
	e.pollStop = stop
	go c.poll(e, e.opts.refetchInterval, stop)
}

func (c *Client) poll(e *entry, interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-e.ctx.Done():
			return
		case <-ticker.C:
			c.mu.Lock()
			if c.entries[e.hash] == e && len(e.subs) > 0 {
				c.startLocked(e)
				c.notifyLocked(e)
			}
			c.mu.Unlock()
		}
	}
}

func (c *Client) observe(key Key, err error) {
	for _, fn := range c.observers {
		fn(key, err)
	}
}

// Stats is a point-in-time view of cache activity.
type Stats struct {
	Entries     int
	Subscribers int
	Hits        uint64
	Misses      uint64
	Fetches     uint64
	Discarded   uint64
	Evictions   uint64
}

type counters struct {
	hits      atomic.Uint64
	misses    atomic.Uint64
	fetches   atomic.Uint64
	discarded atomic.Uint64
	evictions atomic.Uint64
}

// Stats returns counters since the client was created.
func (c *Client) Stats() Stats {
	c.mu.Lock()
	entries := len(c.entries)
	subs := 0
	for _, e := range c.entries {
		subs += len(e.subs)
	}
	c.mu.Unlock()

	return Stats{
		Entries:     entries,
		Subscribers: subs,
		Hits:        c.stats.hits.Load(),
		Misses:      c.stats.misses.Load(),
		Fetches:     c.stats.fetches.Load(),
		Discarded:   c.stats.discarded.Load(),
		Evictions:   c.stats.evictions.Load(),
	}
}

type cacheMetrics struct {
	hits      metric.Int64Counter
	misses    metric.Int64Counter
	fetches   metric.Int64Counter
	discarded metric.Int64Counter
	evictions metric.Int64Counter
}

func newCacheMetrics(mp metric.MeterProvider) *cacheMetrics {
	meter := mp.Meter("naijatrade/query")
	m := &cacheMetrics{}
	m.hits, _ = meter.Int64Counter("query.cache.hits", metric.WithDescription("Reads served from fresh or stale cache"))
	m.misses, _ = meter.Int64Counter("query.cache.misses", metric.WithDescription("Reads that waited for a fetch"))
	m.fetches, _ = meter.Int64Counter("query.fetches", metric.WithDescription("Requests issued"))
	m.discarded, _ = meter.Int64Counter("query.responses.discarded", metric.WithDescription("Responses superseded by a newer request"))
	m.evictions, _ = meter.Int64Counter("query.evictions", metric.WithDescription("Entries removed from the cache"))
	return m
}

func resourceAttr(key Key) metric.AddOption {
	resource := ""
	if len(key) > 0 {
		resource = key[0]
	}
	return metric.WithAttributes(attribute.String("resource", resource))
}

func (m *cacheMetrics) hit(ctx context.Context, key Key) {
	if m.hits != nil {
		m.hits.Add(ctx, 1, resourceAttr(key))
	}
}

func (m *cacheMetrics) miss(ctx context.Context, key Key) {
	if m.misses != nil {
		m.misses.Add(ctx, 1, resourceAttr(key))
	}
}

func (m *cacheMetrics) fetch(ctx context.Context, key Key) {
	if m.fetches != nil {
		m.fetches.Add(ctx, 1, resourceAttr(key))
	}
}

func (m *cacheMetrics) discard(ctx context.Context, key Key) {
	if m.discarded != nil {
		m.discarded.Add(ctx, 1, resourceAttr(key))
	}
}

func (m *cacheMetrics) evict(ctx context.Context, key Key) {
	if m.evictions != nil {
		m.evictions.Add(ctx, 1, resourceAttr(key))
	}
}
