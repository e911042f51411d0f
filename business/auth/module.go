// Package auth implements sign-in, registration and token refresh.
package auth

import (
	"context"

	"github.com/fd1az/naijatrade/business/auth/app"
	authDI "github.com/fd1az/naijatrade/business/auth/di"
	"github.com/fd1az/naijatrade/business/auth/infra/rest"
	"github.com/fd1az/naijatrade/internal/api"
	"github.com/fd1az/naijatrade/internal/config"
	"github.com/fd1az/naijatrade/internal/di"
	"github.com/fd1az/naijatrade/internal/logger"
	"github.com/fd1az/naijatrade/internal/monolith"
	"github.com/fd1az/naijatrade/internal/query"
	"github.com/fd1az/naijatrade/internal/store"
)

// Module implements the auth bounded context.
type Module struct{}

// RegisterServices registers all auth services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, authDI.AuthAPI, func(sr di.ServiceRegistry) app.AuthAPI {
		return rest.NewClient(sr.Get(monolith.ServiceAPI).(api.Requester))
	})

	di.RegisterToken(c, authDI.AuthService, func(sr di.ServiceRegistry) *app.Service {
		cfg := sr.Get(monolith.ServiceConfig).(*config.Config)
		return app.NewService(
			authDI.GetAuthAPI(sr),
			sr.Get(monolith.ServiceSession).(*store.Session),
			sr.Get(monolith.ServiceQueries).(*query.Client),
			sr.Get(monolith.ServiceLogger).(logger.LoggerInterface),
			cfg.Features.GoogleSignInEnabled(),
		)
	})

	di.RegisterToken(c, authDI.Refresher, func(sr di.ServiceRegistry) *app.Refresher {
		return app.NewRefresher(authDI.GetAuthService(sr), sr.Get(monolith.ServiceLogger).(logger.LoggerInterface))
	})

	return nil
}

// Startup schedules token refresh. The refresher stops when ctx is done.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	schedule := mono.Config().Session.RefreshSchedule
	if schedule == "" {
		mono.Logger().Info(ctx, "auth module started", "refresh", "disabled")
		return nil
	}
	if err := authDI.GetRefresher(mono.Services()).Start(ctx, schedule); err != nil {
		return err
	}
	mono.Logger().Info(ctx, "auth module started")
	return nil
}
