// Package insights implements the news, DeFi yields, P2P comparison and
// savings calculator context.
package insights

import (
	"context"

	"github.com/fd1az/naijatrade/business/insights/app"
	insightsDI "github.com/fd1az/naijatrade/business/insights/di"
	"github.com/fd1az/naijatrade/business/insights/infra/rest"
	"github.com/fd1az/naijatrade/internal/api"
	"github.com/fd1az/naijatrade/internal/di"
	"github.com/fd1az/naijatrade/internal/monolith"
	"github.com/fd1az/naijatrade/internal/query"
)

// Module implements the insights bounded context.
type Module struct{}

func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, insightsDI.InsightsAPI, func(sr di.ServiceRegistry) app.InsightsAPI {
		return rest.NewClient(sr.Get(monolith.ServiceAPI).(api.Requester))
	})
	di.RegisterToken(c, insightsDI.InsightsService, func(sr di.ServiceRegistry) *app.Service {
		return app.NewService(insightsDI.GetInsightsAPI(sr), sr.Get(monolith.ServiceQueries).(*query.Client))
	})
	return nil
}

func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	mono.Logger().Debug(ctx, "insights module started")
	return nil
}
