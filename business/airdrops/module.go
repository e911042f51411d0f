// Package airdrops implements the airdrop feed bounded context.
package airdrops

import (
	"context"

	"github.com/fd1az/naijatrade/business/airdrops/app"
	airdropsDI "github.com/fd1az/naijatrade/business/airdrops/di"
	"github.com/fd1az/naijatrade/business/airdrops/infra/rest"
	"github.com/fd1az/naijatrade/internal/api"
	"github.com/fd1az/naijatrade/internal/di"
	"github.com/fd1az/naijatrade/internal/monolith"
	"github.com/fd1az/naijatrade/internal/query"
)

// Module implements the airdrops bounded context.
type Module struct{}

func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, airdropsDI.AirdropsAPI, func(sr di.ServiceRegistry) app.AirdropsAPI {
		return rest.NewClient(sr.Get(monolith.ServiceAPI).(api.Requester))
	})
	di.RegisterToken(c, airdropsDI.AirdropsService, func(sr di.ServiceRegistry) *app.Service {
		return app.NewService(airdropsDI.GetAirdropsAPI(sr), sr.Get(monolith.ServiceQueries).(*query.Client))
	})
	return nil
}

func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	mono.Logger().Debug(ctx, "airdrops module started")
	return nil
}
