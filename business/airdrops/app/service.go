package app

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/fd1az/naijatrade/business/airdrops/domain"
	"github.com/fd1az/naijatrade/internal/apm"
	"github.com/fd1az/naijatrade/internal/query"
)

// Cache keys owned by the airdrops context.
var (
	KeyAirdrops           = query.Key{"airdrops"}
	KeyAirdrop            = query.Key{"airdrop"}
	KeyAdminAirdrops      = query.Key{"admin-airdrops"}
	KeyAdminAirdropsStats = query.Key{"admin-airdrops-stats"}
)

// AdminPageSize is how many airdrops the admin table loads.
const AdminPageSize = 100

// Service serves airdrop reads from the cache and runs writes.
type Service struct {
	api     AirdropsAPI
	queries *query.Client
	tracer  apm.Tracer
}

// NewService creates a Service.
func NewService(api AirdropsAPI, queries *query.Client) *Service {
	return &Service{api: api, queries: queries, tracer: apm.NewTracer("airdrops")}
}

// ListKey is the cache key for one filter set.
func ListKey(f domain.Filter) query.Key {
	return KeyAirdrops.Append(f)
}

// ItemKey is the cache key for one airdrop.
func ItemKey(id string) query.Key {
	return KeyAirdrop.Append(id)
}

func invalidates(id string) []query.Key {
	keys := []query.Key{KeyAirdrops, KeyAdminAirdrops, KeyAdminAirdropsStats}
	if id != "" {
		keys = append(keys, ItemKey(id))
	}
	return keys
}

func (s *Service) fetchList(f domain.Filter) query.Fetcher[domain.AirdropList] {
	return func(ctx context.Context) (domain.AirdropList, error) {
		return s.api.FetchAirdrops(ctx, f)
	}
}

func (s *Service) fetchItem(id string) query.Fetcher[domain.Airdrop] {
	return func(ctx context.Context) (domain.Airdrop, error) {
		return s.api.FetchAirdrop(ctx, id)
	}
}

// Airdrops reads one page.
func (s *Service) Airdrops(ctx context.Context, f domain.Filter) (domain.AirdropList, error) {
	return query.Fetch(ctx, s.queries, ListKey(f), s.fetchList(f))
}

// WatchAirdrops subscribes to one page.
func (s *Service) WatchAirdrops(f domain.Filter) *query.Subscription[domain.AirdropList] {
	return query.Subscribe(s.queries, ListKey(f), s.fetchList(f))
}

// Airdrop reads one airdrop.
func (s *Service) Airdrop(ctx context.Context, id string) (domain.Airdrop, error) {
	return query.Fetch(ctx, s.queries, ItemKey(id), s.fetchItem(id))
}

// WatchAirdrop subscribes to one airdrop.
func (s *Service) WatchAirdrop(id string) *query.Subscription[domain.Airdrop] {
	return query.Subscribe(s.queries, ItemKey(id), s.fetchItem(id))
}

// WatchAdminAirdrops subscribes to the admin table.
func (s *Service) WatchAdminAirdrops() *query.Subscription[domain.AirdropList] {
	return query.Subscribe(s.queries, KeyAdminAirdrops, s.fetchList(domain.Filter{Limit: AdminPageSize}))
}

// WatchAdminStats loads a single row to read the total.
func (s *Service) WatchAdminStats() *query.Subscription[domain.AirdropList] {
	return query.Subscribe(s.queries, KeyAdminAirdropsStats, s.fetchList(domain.Filter{Limit: 1}))
}

// Create publishes an airdrop.
func (s *Service) Create(ctx context.Context, form *domain.Form) (domain.Airdrop, error) {
	ctx, span := s.tracer.StartSpanFromContext(ctx, "airdrops.create")
	defer span.End()

	a, err := query.Mutate(ctx, s.queries, func(ctx context.Context) (domain.Airdrop, error) {
		return s.api.CreateAirdrop(ctx, form)
	}, invalidates("")...)
	if err != nil {
		span.NoticeError(err)
	}
	return a, err
}

// Update applies patch to airdrop id.
func (s *Service) Update(ctx context.Context, id string, patch domain.Patch) (domain.Airdrop, error) {
	ctx, span := s.tracer.StartSpanFromContext(ctx, "airdrops.update")
	defer span.End()
	span.SetAttribute(attribute.String("airdrop.id", id))

	a, err := query.Mutate(ctx, s.queries, func(ctx context.Context) (domain.Airdrop, error) {
		return s.api.UpdateAirdrop(ctx, id, patch)
	}, invalidates(id)...)
	if err != nil {
		span.NoticeError(err)
	}
	return a, err
}

// Delete removes airdrop id.
func (s *Service) Delete(ctx context.Context, id string) error {
	ctx, span := s.tracer.StartSpanFromContext(ctx, "airdrops.delete")
	defer span.End()
	span.SetAttribute(attribute.String("airdrop.id", id))

	_, err := query.Mutate(ctx, s.queries, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.api.DeleteAirdrop(ctx, id)
	}, invalidates(id)...)
	if err != nil {
		span.NoticeError(err)
	}
	return err
}
