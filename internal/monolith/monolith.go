// Package monolith provides the application container and module interface.
package monolith

import (
	"context"
	"errors"

	"github.com/fd1az/naijatrade/internal/api"
	"github.com/fd1az/naijatrade/internal/apperror"
	"github.com/fd1az/naijatrade/internal/asset"
	"github.com/fd1az/naijatrade/internal/capability"
	"github.com/fd1az/naijatrade/internal/config"
	"github.com/fd1az/naijatrade/internal/di"
	"github.com/fd1az/naijatrade/internal/logger"
	"github.com/fd1az/naijatrade/internal/query"
	"github.com/fd1az/naijatrade/internal/store"
)

// Service names registered in the container.
const (
	ServiceConfig        = "config"
	ServiceLogger        = "logger"
	ServiceAPI           = "api"
	ServiceQueries       = "queries"
	ServiceSession       = "session"
	ServiceUI            = "ui"
	ServiceAssetRegistry = "assetRegistry"
	ServiceAdSlot        = "adSlot"
	ServiceInstall       = "installPrompt"
)

// Monolith is the main application container providing access to shared infrastructure.
type Monolith interface {
	Config() *config.Config
	Logger() logger.LoggerInterface
	API() api.Requester
	Queries() *query.Client
	Session() *store.Session
	UI() *store.UIState
	AssetRegistry() *asset.Registry
	Services() di.ServiceRegistry
}

// Module represents a bounded context module that can register services and start up.
type Module interface {
	RegisterServices(di.Container) error
	Startup(context.Context, Monolith) error
}

// Deps overrides pieces of shared infrastructure. Zero fields are built from config.
type Deps struct {
	Requester api.Requester
	Persister store.Persister
	Install   capability.InstallPrompt
	Query     []query.ClientOption
}

// App implements the Monolith interface.
type App struct {
	config        *config.Config
	logger        logger.LoggerInterface
	requester     api.Requester
	queries       *query.Client
	session       *store.Session
	ui            *store.UIState
	persister     store.Persister
	assetRegistry *asset.Registry
	container     di.Container
}

// New wires the shared infrastructure. The stored session, if any, is
// restored before New returns.
func New(ctx context.Context, cfg *config.Config, log logger.LoggerInterface, version string, deps Deps) (*App, error) {
	a := &App{
		config:        cfg,
		logger:        log,
		assetRegistry: asset.DefaultRegistry(),
		container:     di.NewContainer(),
	}

	a.persister = deps.Persister
	if a.persister == nil {
		if cfg.Session.Persist {
			p, err := store.OpenSQLite(cfg.Session.StorePath)
			if err != nil {
				return nil, err
			}
			a.persister = p
		} else {
			a.persister = store.NewMemoryPersister()
		}
	}

	a.session = store.NewSession(a.persister, log)
	if _, err := a.session.Restore(ctx); err != nil {
		log.Warn(ctx, "stored session could not be restored", "error", err)
	}

	var prefs store.Preferences
	if p, ok := a.persister.(store.Preferences); ok {
		prefs = p
	}
	a.ui = store.NewUIState(cfg.UI.DefaultCrypto, prefs, log)
	a.ui.Restore(ctx)

	a.requester = deps.Requester
	if a.requester == nil {
		c, err := api.NewFromConfig(cfg.API, version, log, api.WithTokenSource(a.session))
		if err != nil {
			a.Close()
			return nil, err
		}
		a.requester = c
	}

	qopts := []query.ClientOption{
		query.WithCacheConfig(cfg.Cache),
		query.WithLogger(log),
		query.WithErrorObserver(a.logoutOnUnauthenticated),
	}
	a.queries = query.NewClient(append(qopts, deps.Query...)...)

	// Cached data belongs to the identity that fetched it.
	a.session.OnChange(func(s store.Snapshot) {
		if !s.Authenticated() {
			a.queries.Remove(query.Key{})
		}
	})

	install := deps.Install
	if install == nil {
		install = capability.NoopInstallPrompt{}
	}

	a.container.Register(ServiceConfig, cfg)
	a.container.Register(ServiceLogger, log)
	a.container.Register(ServiceAPI, a.requester)
	a.container.Register(ServiceQueries, a.queries)
	a.container.Register(ServiceSession, a.session)
	a.container.Register(ServiceUI, a.ui)
	a.container.Register(ServiceAssetRegistry, a.assetRegistry)
	a.container.Register(ServiceAdSlot, capability.AdSlotFromConfig(cfg.Features))
	a.container.Register(ServiceInstall, install)

	return a, nil
}

func (a *App) logoutOnUnauthenticated(key query.Key, err error) {
	if apperror.KindOf(err) != apperror.KindAuth {
		return
	}
	if !a.session.Snapshot().Authenticated() {
		return
	}
	a.logger.Info(context.Background(), "session rejected by server, signing out", "key", key.String())
	a.session.Logout(context.Background())
}

func (a *App) Config() *config.Config {
	return a.config
}

func (a *App) Logger() logger.LoggerInterface {
	return a.logger
}

func (a *App) API() api.Requester {
	return a.requester
}

func (a *App) Queries() *query.Client {
	return a.queries
}

func (a *App) Session() *store.Session {
	return a.session
}

func (a *App) UI() *store.UIState {
	return a.ui
}

func (a *App) AssetRegistry() *asset.Registry {
	return a.assetRegistry
}

func (a *App) Services() di.ServiceRegistry {
	return a.container
}

// Container returns the DI container for module registration.
func (a *App) Container() di.Container {
	return a.container
}

// Ping reports whether the session store is usable.
func (a *App) Ping(ctx context.Context) error {
	if p, ok := a.persister.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}

// RegisterModules registers all provided modules.
func (a *App) RegisterModules(modules ...Module) error {
	for _, m := range modules {
		if err := m.RegisterServices(a.container); err != nil {
			return err
		}
	}
	return nil
}

// StartModules starts all provided modules.
func (a *App) StartModules(ctx context.Context, modules ...Module) error {
	for _, m := range modules {
		if err := m.Startup(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

// Close closes all resources.
func (a *App) Close() error {
	var errs []error
	if a.queries != nil {
		a.queries.Close()
	}
	if c, ok := a.persister.(interface{ Close() error }); ok {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
