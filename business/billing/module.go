// Package billing implements plans, subscriptions and payments.
package billing

import (
	"context"

	"github.com/fd1az/naijatrade/business/billing/app"
	billingDI "github.com/fd1az/naijatrade/business/billing/di"
	"github.com/fd1az/naijatrade/business/billing/infra/rest"
	"github.com/fd1az/naijatrade/internal/api"
	"github.com/fd1az/naijatrade/internal/di"
	"github.com/fd1az/naijatrade/internal/monolith"
	"github.com/fd1az/naijatrade/internal/query"
)

// Module implements the billing bounded context.
type Module struct{}

// RegisterServices registers all billing services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, billingDI.BillingAPI, func(sr di.ServiceRegistry) app.BillingAPI {
		return rest.NewClient(sr.Get(monolith.ServiceAPI).(api.Requester))
	})

	di.RegisterToken(c, billingDI.BillingService, func(sr di.ServiceRegistry) *app.Service {
		return app.NewService(billingDI.GetBillingAPI(sr), sr.Get(monolith.ServiceQueries).(*query.Client))
	})

	return nil
}

// Startup warms the plan catalogs, which rarely change and gate most views.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	if err := billingDI.GetBillingService(mono.Services()).WarmPlans(ctx); err != nil {
		mono.Logger().Warn(ctx, "plan catalogs not loaded", "error", err)
	}
	mono.Logger().Info(ctx, "billing module started")
	return nil
}
