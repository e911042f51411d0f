package app

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/fd1az/naijatrade/business/signals/domain"
	"github.com/fd1az/naijatrade/internal/apm"
	"github.com/fd1az/naijatrade/internal/query"
)

// Cache keys owned by the signals context.
var (
	KeySignals          = query.Key{"signals"}
	KeySignalStats      = query.Key{"signal-stats"}
	KeyAdminSignals     = query.Key{"admin-signals"}
	KeyAdminSignalStats = query.Key{"admin-signal-stats"}
)

// AdminPageSize is how many signals the admin table loads.
const AdminPageSize = 100

// mutationKeys is invalidated after every successful write.
var mutationKeys = []query.Key{KeySignals, KeySignalStats, KeyAdminSignals, KeyAdminSignalStats}

// Service serves signal reads from the cache and runs writes.
type Service struct {
	api     SignalsAPI
	queries *query.Client
	tracer  apm.Tracer
}

// NewService creates a Service.
func NewService(api SignalsAPI, queries *query.Client) *Service {
	return &Service{api: api, queries: queries, tracer: apm.NewTracer("signals")}
}

// ListKey is the cache key for one filter set.
func ListKey(f domain.Filter) query.Key {
	return KeySignals.Append(f)
}

func (s *Service) fetchList(f domain.Filter) query.Fetcher[domain.SignalList] {
	return func(ctx context.Context) (domain.SignalList, error) {
		return s.api.FetchSignals(ctx, f)
	}
}

// Signals reads one page.
func (s *Service) Signals(ctx context.Context, f domain.Filter) (domain.SignalList, error) {
	return query.Fetch(ctx, s.queries, ListKey(f), s.fetchList(f))
}

// WatchSignals subscribes to one page.
func (s *Service) WatchSignals(f domain.Filter) *query.Subscription[domain.SignalList] {
	return query.Subscribe(s.queries, ListKey(f), s.fetchList(f))
}

// Stats reads the performance summary.
func (s *Service) Stats(ctx context.Context) (domain.Stats, error) {
	return query.Fetch(ctx, s.queries, KeySignalStats, s.api.FetchSignalStats)
}

// WatchStats subscribes to the performance summary.
func (s *Service) WatchStats() *query.Subscription[domain.Stats] {
	return query.Subscribe(s.queries, KeySignalStats, s.api.FetchSignalStats)
}

// WatchAdminSignals subscribes to the admin table.
func (s *Service) WatchAdminSignals() *query.Subscription[domain.SignalList] {
	return query.Subscribe(s.queries, KeyAdminSignals, s.fetchList(domain.Filter{Limit: AdminPageSize}))
}

// WatchAdminStats subscribes to the admin header numbers.
func (s *Service) WatchAdminStats() *query.Subscription[domain.Stats] {
	return query.Subscribe(s.queries, KeyAdminSignalStats, s.api.FetchSignalStats)
}

// Create publishes a signal.
func (s *Service) Create(ctx context.Context, form *domain.Form) (domain.Signal, error) {
	ctx, span := s.tracer.StartSpanFromContext(ctx, "signals.create")
	defer span.End()

	sig, err := query.Mutate(ctx, s.queries, func(ctx context.Context) (domain.Signal, error) {
		return s.api.CreateSignal(ctx, form)
	}, mutationKeys...)
	if err != nil {
		span.NoticeError(err)
	}
	return sig, err
}

// Update applies patch to signal id.
func (s *Service) Update(ctx context.Context, id string, patch domain.Patch) (domain.Signal, error) {
	ctx, span := s.tracer.StartSpanFromContext(ctx, "signals.update")
	defer span.End()
	span.SetAttribute(attribute.String("signal.id", id))

	sig, err := query.Mutate(ctx, s.queries, func(ctx context.Context) (domain.Signal, error) {
		return s.api.UpdateSignal(ctx, id, patch)
	}, mutationKeys...)
	if err != nil {
		span.NoticeError(err)
	}
	return sig, err
}

// Delete removes signal id.
func (s *Service) Delete(ctx context.Context, id string) error {
	ctx, span := s.tracer.StartSpanFromContext(ctx, "signals.delete")
	defer span.End()
	span.SetAttribute(attribute.String("signal.id", id))

	_, err := query.Mutate(ctx, s.queries, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.api.DeleteSignal(ctx, id)
	}, mutationKeys...)
	if err != nil {
		span.NoticeError(err)
	}
	return err
}
