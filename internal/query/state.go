package query

import "time"

// Status is the lifecycle state of a cache entry.
type Status int

const (
	// StatusEmpty means nothing was fetched yet and nothing is in flight.
	StatusEmpty Status = iota
	// StatusLoading means the first fetch is in flight.
	StatusLoading
	// StatusFresh means data is within its stale time and not invalidated.
	StatusFresh
	// StatusStale means data exists but is expired, invalidated or being revalidated.
	StatusStale
	// StatusError means the last fetch failed. Data keeps the last good value.
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusEmpty:
		return "empty"
	case StatusLoading:
		return "loading"
	case StatusFresh:
		return "fresh"
	case StatusStale:
		return "stale"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// State is a snapshot of one key as seen by a subscriber.
type State[T any] struct {
	Status    Status
	Data      T
	HasData   bool
	Err       error
	UpdatedAt time.Time
	// Fetching is true while a request for the key is in flight.
	Fetching bool
}

type snapshot struct {
	status    Status
	data      any
	hasData   bool
	err       error
	updatedAt time.Time
	fetching  bool
}

func typed[T any](s snapshot) State[T] {
	st := State[T]{
		Status:    s.status,
		HasData:   s.hasData,
		Err:       s.err,
		UpdatedAt: s.updatedAt,
		Fetching:  s.fetching,
	}
	if v, ok := s.data.(T); ok {
		st.Data = v
	}
	return st
}
