// Package ngxradar implements the Nigerian Exchange stock radar context.
package ngxradar

import (
	"context"

	"github.com/fd1az/naijatrade/business/ngxradar/app"
	radarDI "github.com/fd1az/naijatrade/business/ngxradar/di"
	"github.com/fd1az/naijatrade/business/ngxradar/infra/rest"
	"github.com/fd1az/naijatrade/internal/api"
	"github.com/fd1az/naijatrade/internal/di"
	"github.com/fd1az/naijatrade/internal/monolith"
	"github.com/fd1az/naijatrade/internal/query"
)

// Module implements the ngxradar bounded context.
type Module struct{}

func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, radarDI.RadarAPI, func(sr di.ServiceRegistry) app.NGXAPI {
		return rest.NewClient(sr.Get(monolith.ServiceAPI).(api.Requester))
	})
	di.RegisterToken(c, radarDI.RadarService, func(sr di.ServiceRegistry) *app.Service {
		return app.NewService(radarDI.GetRadarAPI(sr), sr.Get(monolith.ServiceQueries).(*query.Client))
	})
	return nil
}

func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	mono.Logger().Debug(ctx, "ngxradar module started")
	return nil
}
