package query

import (
	"context"
	"time"
)

type fetchFunc func(ctx context.Context) (any, error)

// listener receives snapshots. Both methods are called with the client
// lock held and must not block.
type listener interface {
	deliver(snapshot)
	// detach ends the listener when the client closes.
	detach()
}

// call is one issued request. Readers that join it wait on done.
type call struct {
	seq  uint64
	gen  uint64
	done chan struct{}
	data any
	err  error
}

// entry is guarded by Client.mu.
type entry struct {
	key  Key
	hash string
	opts entryOptions

	fetch fetchFunc

	data      any
	hasData   bool
	err       error
	updatedAt time.Time

	// gen is bumped by every invalidation. Data is only fresh when it was
	// fetched by a call issued in the current generation.
	gen        uint64
	fetchedGen uint64
	applied    uint64
	current    *call

	subs     map[uint64]listener
	pollStop chan struct{}
	gcTimer  *time.Timer

	ctx    context.Context
	cancel context.CancelFunc
}

func (e *entry) fresh(now time.Time) bool {
	return e.hasData &&
		e.err == nil &&
		e.fetchedGen == e.gen &&
		now.Sub(e.updatedAt) < e.opts.staleTime
}

// expiredOnly reports whether the only thing wrong with the data is its age.
func (e *entry) expiredOnly(now time.Time) bool {
	return e.hasData && e.err == nil && e.fetchedGen == e.gen && !e.fresh(now)
}

func (e *entry) inflight() bool {
	return e.current != nil
}

func (e *entry) snapshot(now time.Time) snapshot {
	s := snapshot{
		data:      e.data,
		hasData:   e.hasData,
		err:       e.err,
		updatedAt: e.updatedAt,
		fetching:  e.inflight(),
	}
	switch {
	case e.err != nil:
		s.status = StatusError
	case !e.hasData && e.inflight():
		s.status = StatusLoading
	case !e.hasData:
		s.status = StatusEmpty
	case e.fresh(now):
		s.status = StatusFresh
	default:
		s.status = StatusStale
	}
	return s
}

func (e *entry) stopPolling() {
	if e.pollStop != nil {
		close(e.pollStop)
		e.pollStop = nil
	}
}

func (e *entry) stopGC() {
	if e.gcTimer != nil {
		e.gcTimer.Stop()
		e.gcTimer = nil
	}
}
