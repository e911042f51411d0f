// Package arbscanner implements the crypto P2P arbitrage scanner context.
package arbscanner

import (
	"context"

	"github.com/fd1az/naijatrade/business/arbscanner/app"
	scannerDI "github.com/fd1az/naijatrade/business/arbscanner/di"
	"github.com/fd1az/naijatrade/business/arbscanner/infra/rest"
	"github.com/fd1az/naijatrade/internal/api"
	"github.com/fd1az/naijatrade/internal/di"
	"github.com/fd1az/naijatrade/internal/monolith"
	"github.com/fd1az/naijatrade/internal/query"
	"github.com/fd1az/naijatrade/internal/store"
)

// Module implements the arbscanner bounded context.
type Module struct{}

// RegisterServices registers all arbscanner services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, scannerDI.ScannerAPI, func(sr di.ServiceRegistry) app.ScannerAPI {
		return rest.NewClient(sr.Get(monolith.ServiceAPI).(api.Requester))
	})

	di.RegisterToken(c, scannerDI.ScannerService, func(sr di.ServiceRegistry) *app.Service {
		return app.NewService(
			scannerDI.GetScannerAPI(sr),
			sr.Get(monolith.ServiceQueries).(*query.Client),
			sr.Get(monolith.ServiceUI).(*store.UIState),
		)
	})

	return nil
}

// Startup initializes the arbscanner module.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	mono.Logger().Info(ctx, "arbscanner module started", "crypto", mono.UI().SelectedCrypto())
	return nil
}
