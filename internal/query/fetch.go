package query

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Fetcher loads the value for one key.
type Fetcher[T any] func(ctx context.Context) (T, error)

func (f Fetcher[T]) erase() fetchFunc {
	return func(ctx context.Context) (any, error) {
		return f(ctx)
	}
}

// Fetch reads key once. Fresh data is returned without a request. Data that
// is only past its stale time is returned at once and revalidated in the
// background. Empty, failed or invalidated entries wait for a request, which
// is shared with every other reader and subscriber of key.
//
// Cancelling ctx abandons the wait but not the shared request.
func Fetch[T any](ctx context.Context, c *Client, key Key, fn Fetcher[T], opts ...Option) (T, error) {
	var zero T

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return zero, ErrClosed
	}

	e := c.entryLocked(key, fn.erase(), opts)
	now := c.now()

	if e.fresh(now) {
		data := e.data
		if len(e.subs) == 0 && e.current == nil {
			c.scheduleGCLocked(e)
		}
		c.mu.Unlock()
		c.stats.hits.Add(1)
		c.metrics.hit(ctx, key)
		v, _ := data.(T)
		return v, nil
	}

	if e.expiredOnly(now) {
		data := e.data
		c.startLocked(e)
		c.notifyLocked(e)
		c.mu.Unlock()
		c.stats.hits.Add(1)
		c.metrics.hit(ctx, key)
		v, _ := data.(T)
		return v, nil
	}

	cl := c.startLocked(e)
	c.notifyLocked(e)
	c.mu.Unlock()
	c.stats.misses.Add(1)
	c.metrics.miss(ctx, key)

	select {
	case <-cl.done:
	case <-ctx.Done():
		return zero, ctx.Err()
	}
	if cl.err != nil {
		return zero, cl.err
	}
	v, _ := cl.data.(T)
	return v, nil
}

// Peek returns cached data for key without fetching.
func Peek[T any](c *Client, key Key) (State[T], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key.String()]
	if !ok {
		return State[T]{}, false
	}
	return typed[T](e.snapshot(c.now())), true
}

// Request is one key to warm with Prefetch.
type Request struct {
	Key     Key
	Fetch   func(ctx context.Context) (any, error)
	Options []Option
}

// Prefetch warms several keys concurrently and returns the first error.
func Prefetch(ctx context.Context, c *Client, reqs ...Request) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, r := range reqs {
		g.Go(func() error {
			_, err := Fetch(gctx, c, r.Key, Fetcher[any](r.Fetch), r.Options...)
			return err
		})
	}
	return g.Wait()
}

// Mutate runs a write. On success every key under the given prefixes is
// invalidated before Mutate returns, so subscribed views are already
// revalidating when the caller sees the result. On failure nothing is
// invalidated and the error observers are notified.
func Mutate[T any](ctx context.Context, c *Client, fn func(ctx context.Context) (T, error), invalidates ...Key) (T, error) {
	res, err := fn(ctx)
	if err != nil {
		c.observe(nil, err)
		return res, err
	}
	c.Invalidate(invalidates...)
	return res, nil
}
