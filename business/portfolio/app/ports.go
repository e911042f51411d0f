package app

import (
	"context"

	"github.com/fd1az/naijatrade/business/portfolio/domain"
)

// PortfolioAPI is the backend surface of holdings and DCA plans.
type PortfolioAPI interface {
	FetchPortfolio(ctx context.Context) (domain.Summary, error)
	CreatePortfolio(ctx context.Context, name string) (domain.Created, error)
	AddHolding(ctx context.Context, form *domain.HoldingForm) (domain.Created, error)
	UpdateHolding(ctx context.Context, id string, patch domain.HoldingPatch) (domain.Created, error)
	DeleteHolding(ctx context.Context, id string) error

	FetchDcaPlans(ctx context.Context) ([]domain.Plan, error)
	FetchDcaPlan(ctx context.Context, id string) (domain.Plan, error)
	CreateDcaPlan(ctx context.Context, form *domain.PlanForm) (domain.Created, error)
	UpdateDcaPlan(ctx context.Context, id string, patch domain.PlanPatch) (domain.Created, error)
	DeleteDcaPlan(ctx context.Context, id string) error
	AddDcaEntry(ctx context.Context, planID string, form *domain.EntryForm) (domain.Created, error)
	DeleteDcaEntry(ctx context.Context, id string) error
}
