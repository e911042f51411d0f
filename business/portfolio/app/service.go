package app

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/fd1az/naijatrade/business/portfolio/domain"
	"github.com/fd1az/naijatrade/internal/apm"
	"github.com/fd1az/naijatrade/internal/query"
	"github.com/fd1az/naijatrade/internal/store"
)

// Cache keys owned by the portfolio context. A single plan lives under
// KeyDcaPlans so plan writes refresh the list and the detail together.
var (
	KeyPortfolio = query.Key{"portfolio"}
	KeyDcaPlans  = query.Key{"dca-plans"}
)

// Service serves holdings and DCA plans from the cache and runs writes.
type Service struct {
	api     PortfolioAPI
	queries *query.Client
	ui      *store.UIState
	tracer  apm.Tracer
}

// NewService creates a Service. ui may be nil.
func NewService(api PortfolioAPI, queries *query.Client, ui *store.UIState) *Service {
	return &Service{api: api, queries: queries, ui: ui, tracer: apm.NewTracer("portfolio")}
}

// DcaPlanKey is the cache key for one plan.
func DcaPlanKey(id string) query.Key {
	return KeyDcaPlans.Append(id)
}

// Portfolio reads the caller's holdings and totals.
func (s *Service) Portfolio(ctx context.Context) (domain.Summary, error) {
	return query.Fetch(ctx, s.queries, KeyPortfolio, s.api.FetchPortfolio)
}

// WatchPortfolio subscribes to the caller's holdings and totals.
func (s *Service) WatchPortfolio() *query.Subscription[domain.Summary] {
	return query.Subscribe(s.queries, KeyPortfolio, s.api.FetchPortfolio)
}

// LivePortfolio reads the portfolio and reprices it from the last prices the
// scanner loaded.
func (s *Service) LivePortfolio(ctx context.Context) (domain.Summary, error) {
	sum, err := s.Portfolio(ctx)
	if err != nil || s.ui == nil {
		return sum, err
	}
	return sum.Revalue(s.ui.View().Prices), nil
}

func (s *Service) write(ctx context.Context, op, id string, fn func(context.Context) (domain.Created, error), keys ...query.Key) (domain.Created, error) {
	ctx, span := s.tracer.StartSpanFromContext(ctx, op)
	defer span.End()
	if id != "" {
		span.SetAttribute(attribute.String("id", id))
	}

	out, err := query.Mutate(ctx, s.queries, fn, keys...)
	if err != nil {
		span.NoticeError(err)
	}
	return out, err
}

func (s *Service) remove(ctx context.Context, op, id string, fn func(context.Context, string) error, keys ...query.Key) error {
	_, err := s.write(ctx, op, id, func(ctx context.Context) (domain.Created, error) {
		return domain.Created{ID: id}, fn(ctx, id)
	}, keys...)
	return err
}

// CreatePortfolio creates the caller's portfolio. A blank name uses the default.
func (s *Service) CreatePortfolio(ctx context.Context, name string) (domain.Created, error) {
	return s.write(ctx, "portfolio.create", "", func(ctx context.Context) (domain.Created, error) {
		return s.api.CreatePortfolio(ctx, name)
	}, KeyPortfolio)
}

// AddHolding records a holding.
func (s *Service) AddHolding(ctx context.Context, form *domain.HoldingForm) (domain.Created, error) {
	return s.write(ctx, "portfolio.holdings.add", "", func(ctx context.Context) (domain.Created, error) {
		return s.api.AddHolding(ctx, form)
	}, KeyPortfolio)
}

// UpdateHolding applies patch to holding id.
func (s *Service) UpdateHolding(ctx context.Context, id string, patch domain.HoldingPatch) (domain.Created, error) {
	return s.write(ctx, "portfolio.holdings.update", id, func(ctx context.Context) (domain.Created, error) {
		return s.api.UpdateHolding(ctx, id, patch)
	}, KeyPortfolio)
}

// DeleteHolding removes holding id.
func (s *Service) DeleteHolding(ctx context.Context, id string) error {
	return s.remove(ctx, "portfolio.holdings.delete", id, s.api.DeleteHolding, KeyPortfolio)
}

// DcaPlans reads the caller's plans.
func (s *Service) DcaPlans(ctx context.Context) ([]domain.Plan, error) {
	return query.Fetch(ctx, s.queries, KeyDcaPlans, s.api.FetchDcaPlans)
}

// WatchDcaPlans subscribes to the caller's plans.
func (s *Service) WatchDcaPlans() *query.Subscription[[]domain.Plan] {
	return query.Subscribe(s.queries, KeyDcaPlans, s.api.FetchDcaPlans)
}

func (s *Service) fetchPlan(id string) query.Fetcher[domain.Plan] {
	return func(ctx context.Context) (domain.Plan, error) {
		return s.api.FetchDcaPlan(ctx, id)
	}
}

// DcaPlan reads one plan with its entries and totals.
func (s *Service) DcaPlan(ctx context.Context, id string) (domain.Plan, error) {
	return query.Fetch(ctx, s.queries, DcaPlanKey(id), s.fetchPlan(id))
}

// WatchDcaPlan subscribes to one plan.
func (s *Service) WatchDcaPlan(id string) *query.Subscription[domain.Plan] {
	return query.Subscribe(s.queries, DcaPlanKey(id), s.fetchPlan(id))
}

// CreateDcaPlan adds a plan.
func (s *Service) CreateDcaPlan(ctx context.Context, form *domain.PlanForm) (domain.Created, error) {
	return s.write(ctx, "dca.plans.create", "", func(ctx context.Context) (domain.Created, error) {
		return s.api.CreateDcaPlan(ctx, form)
	}, KeyDcaPlans)
}

// UpdateDcaPlan applies patch to plan id.
func (s *Service) UpdateDcaPlan(ctx context.Context, id string, patch domain.PlanPatch) (domain.Created, error) {
	return s.write(ctx, "dca.plans.update", id, func(ctx context.Context) (domain.Created, error) {
		return s.api.UpdateDcaPlan(ctx, id, patch)
	}, KeyDcaPlans)
}

// PauseDcaPlan sets plan id active or paused.
func (s *Service) PauseDcaPlan(ctx context.Context, id string, paused bool) (domain.Created, error) {
	return s.UpdateDcaPlan(ctx, id, *new(domain.PlanPatch).SetActive(!paused))
}

// DeleteDcaPlan removes plan id and its entries.
func (s *Service) DeleteDcaPlan(ctx context.Context, id string) error {
	return s.remove(ctx, "dca.plans.delete", id, s.api.DeleteDcaPlan, KeyDcaPlans)
}

// AddDcaEntry records a purchase against plan planID.
func (s *Service) AddDcaEntry(ctx context.Context, planID string, form *domain.EntryForm) (domain.Created, error) {
	return s.write(ctx, "dca.entries.add", planID, func(ctx context.Context) (domain.Created, error) {
		return s.api.AddDcaEntry(ctx, planID, form)
	}, KeyDcaPlans)
}

// DeleteDcaEntry removes entry id.
func (s *Service) DeleteDcaEntry(ctx context.Context, id string) error {
	return s.remove(ctx, "dca.entries.delete", id, s.api.DeleteDcaEntry, KeyDcaPlans)
}
