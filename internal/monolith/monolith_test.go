package monolith

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fd1az/naijatrade/internal/api"
	"github.com/fd1az/naijatrade/internal/apperror"
	"github.com/fd1az/naijatrade/internal/config"
	"github.com/fd1az/naijatrade/internal/di"
	"github.com/fd1az/naijatrade/internal/logger"
	"github.com/fd1az/naijatrade/internal/query"
	"github.com/fd1az/naijatrade/internal/store"
)

type stubRequester struct{}

func (stubRequester) Do(context.Context, string, string, api.RequestOptions, any) error { return nil }

func testConfig() *config.Config {
	return &config.Config{
		API:   config.APIConfig{BaseURL: "http://localhost:8000/api/v1", Timeout: time.Second},
		Cache: config.CacheConfig{StaleTime: time.Minute, GCTime: time.Minute},
		UI:    config.UIConfig{DefaultCrypto: "USDT"},
	}
}

func newApp(t *testing.T, p store.Persister) *App {
	t.Helper()
	a, err := New(context.Background(), testConfig(), logger.Nop(), "test", Deps{
		Requester: stubRequester{},
		Persister: p,
	})
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func TestNew_RestoresSessionAndRegistersServices(t *testing.T) {
	ctx := context.Background()
	p := store.NewMemoryPersister()
	require.NoError(t, p.Save(ctx, store.Persisted{
		Tokens:  store.Tokens{AccessToken: "a", RefreshToken: "r"},
		Profile: &store.Profile{ID: "u-7", Email: "ada@example.com"},
	}))

	a := newApp(t, p)
	assert.True(t, a.Session().Snapshot().Authenticated())
	assert.Equal(t, "USDT", a.UI().SelectedCrypto())

	for _, name := range []string{ServiceConfig, ServiceLogger, ServiceAPI, ServiceQueries, ServiceSession, ServiceUI, ServiceAssetRegistry, ServiceAdSlot, ServiceInstall} {
		assert.True(t, a.Services().Has(name), name)
	}
	assert.NoError(t, a.Ping(ctx))
}

func TestUnauthenticatedQueryClearsSessionAndCache(t *testing.T) {
	ctx := context.Background()
	a := newApp(t, store.NewMemoryPersister())
	require.NoError(t, a.Session().SetAuth(ctx, store.Profile{ID: "u-1"}, store.Tokens{AccessToken: "expired"}))

	_, err := query.Fetch(ctx, a.Queries(), query.Key{"plans", "arbscanner"}, func(context.Context) (int, error) {
		return 3, nil
	})
	require.NoError(t, err)

	_, err = query.Fetch(ctx, a.Queries(), query.Key{"signals"}, func(context.Context) (int, error) {
		return 0, apperror.New(apperror.CodeUnauthenticated, apperror.WithStatusCode(http.StatusUnauthorized))
	})
	require.Error(t, err)

	assert.False(t, a.Session().Snapshot().Authenticated())
	assert.Equal(t, query.StatusEmpty, a.Queries().Status(query.Key{"plans", "arbscanner"}))
}

func TestOtherErrorsKeepSession(t *testing.T) {
	ctx := context.Background()
	a := newApp(t, store.NewMemoryPersister())
	require.NoError(t, a.Session().SetAuth(ctx, store.Profile{ID: "u-1"}, store.Tokens{AccessToken: "ok"}))

	_, err := query.Fetch(ctx, a.Queries(), query.Key{"signals"}, func(context.Context) (int, error) {
		return 0, apperror.New(apperror.CodeForbidden, apperror.WithStatusCode(http.StatusForbidden))
	})
	require.Error(t, err)
	assert.True(t, a.Session().Snapshot().Authenticated())
}

type recordingModule struct {
	registered, started bool
}

func (m *recordingModule) RegisterServices(c di.Container) error {
	m.registered = true
	return nil
}

func (m *recordingModule) Startup(ctx context.Context, mono Monolith) error {
	m.started = mono.Queries() != nil
	return nil
}

func TestModulesLifecycle(t *testing.T) {
	a := newApp(t, store.NewMemoryPersister())
	m := &recordingModule{}
	require.NoError(t, a.RegisterModules(m))
	require.NoError(t, a.StartModules(context.Background(), m))
	assert.True(t, m.registered)
	assert.True(t, m.started)
}
