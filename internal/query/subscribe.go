package query

import "sync"

// Subscription is a mounted observer of one key. While at least one
// subscription is open the key is polled and never collected.
type Subscription[T any] struct {
	c     *Client
	key   Key
	fetch fetchFunc
	opts  []Option

	id uint64
	e  *entry

	mu      sync.Mutex
	ch      chan State[T]
	current State[T]
	closed  bool
}

// Subscribe mounts an observer of key. The first state is delivered
// immediately; a request is issued unless the cached data is fresh.
func Subscribe[T any](c *Client, key Key, fn Fetcher[T], opts ...Option) *Subscription[T] {
	s := &Subscription[T]{
		c:     c,
		key:   key,
		fetch: fn.erase(),
		opts:  opts,
		ch:    make(chan State[T], 1),
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		s.closed = true
		close(s.ch)
		return s
	}
	s.attachLocked()

	now := c.now()
	if !s.e.fresh(now) {
		c.startLocked(s.e)
		c.notifyLocked(s.e)
	} else {
		s.deliver(s.e.snapshot(now))
	}
	return s
}

func (s *Subscription[T]) attachLocked() {
	c := s.c
	e := c.entryLocked(s.key, s.fetch, s.opts)
	c.nextSub++
	s.id = c.nextSub
	s.e = e
	e.subs[s.id] = s
	e.stopGC()
	c.startPollingLocked(e)
}

func (s *Subscription[T]) deliver(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	st := typed[T](snap)
	s.current = st
	select {
	case <-s.ch:
	default:
	}
	s.ch <- st
}

func (s *Subscription[T]) detach() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}

// Updates yields state changes. Only the latest undelivered state is kept.
// The channel is closed by Close or when the client closes.
func (s *Subscription[T]) Updates() <-chan State[T] {
	return s.ch
}

// Current returns the last delivered state.
func (s *Subscription[T]) Current() State[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Key returns the observed key.
func (s *Subscription[T]) Key() Key {
	return s.key
}

// Refetch issues a request now. It joins a request already in flight for
// the current generation. This is the manual retry after an error.
func (s *Subscription[T]) Refetch() {
	c := s.c
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || s.isClosed() {
		return
	}
	if c.entries[s.e.hash] != s.e {
		// The entry was removed underneath us; mount on a fresh one.
		s.attachLocked()
	}
	c.startLocked(s.e)
	c.notifyLocked(s.e)
}

func (s *Subscription[T]) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close unmounts the observer. The last subscriber stops polling and starts
// the GC grace period. In-flight requests are not cancelled.
func (s *Subscription[T]) Close() {
	c := s.c
	c.mu.Lock()
	defer c.mu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.ch)
	s.mu.Unlock()

	if s.e == nil {
		return
	}
	delete(s.e.subs, s.id)
	if len(s.e.subs) == 0 && c.entries[s.e.hash] == s.e {
		s.e.stopPolling()
		if s.e.current == nil {
			c.scheduleGCLocked(s.e)
		}
	}
}
