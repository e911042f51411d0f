// Package portfolio implements the holdings and DCA tracking context.
package portfolio

import (
	"context"

	"github.com/fd1az/naijatrade/business/portfolio/app"
	portfolioDI "github.com/fd1az/naijatrade/business/portfolio/di"
	"github.com/fd1az/naijatrade/business/portfolio/infra/rest"
	"github.com/fd1az/naijatrade/internal/api"
	"github.com/fd1az/naijatrade/internal/di"
	"github.com/fd1az/naijatrade/internal/monolith"
	"github.com/fd1az/naijatrade/internal/query"
	"github.com/fd1az/naijatrade/internal/store"
)

// Module implements the portfolio bounded context.
type Module struct{}

func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, portfolioDI.PortfolioAPI, func(sr di.ServiceRegistry) app.PortfolioAPI {
		return rest.NewClient(sr.Get(monolith.ServiceAPI).(api.Requester))
	})
	di.RegisterToken(c, portfolioDI.PortfolioService, func(sr di.ServiceRegistry) *app.Service {
		return app.NewService(
			portfolioDI.GetPortfolioAPI(sr),
			sr.Get(monolith.ServiceQueries).(*query.Client),
			sr.Get(monolith.ServiceUI).(*store.UIState),
		)
	})
	return nil
}

func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	mono.Logger().Debug(ctx, "portfolio module started")
	return nil
}
