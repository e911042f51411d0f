// Package signals implements the trading signals bounded context.
package signals

import (
	"context"

	"github.com/fd1az/naijatrade/business/signals/app"
	signalsDI "github.com/fd1az/naijatrade/business/signals/di"
	"github.com/fd1az/naijatrade/business/signals/infra/rest"
	"github.com/fd1az/naijatrade/internal/api"
	"github.com/fd1az/naijatrade/internal/di"
	"github.com/fd1az/naijatrade/internal/monolith"
	"github.com/fd1az/naijatrade/internal/query"
)

// Module implements the signals bounded context.
type Module struct{}

// RegisterServices registers all signals services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, signalsDI.SignalsAPI, func(sr di.ServiceRegistry) app.SignalsAPI {
		return rest.NewClient(sr.Get(monolith.ServiceAPI).(api.Requester))
	})

	di.RegisterToken(c, signalsDI.SignalsService, func(sr di.ServiceRegistry) *app.Service {
		return app.NewService(signalsDI.GetSignalsAPI(sr), sr.Get(monolith.ServiceQueries).(*query.Client))
	})

	return nil
}

// Startup initializes the signals module.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	mono.Logger().Info(ctx, "signals module started")
	return nil
}
