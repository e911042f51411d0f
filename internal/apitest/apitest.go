// Package apitest runs fake backends for resource service tests.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/fd1az/naijatrade/internal/api"
	"github.com/fd1az/naijatrade/internal/httpclient"
)

// Backend is a chi router mounted under /api/v1 that counts requests per route.
type Backend struct {
	chi.Router
	calls map[string]*atomic.Int32
}

// NewBackend returns an empty backend.
func NewBackend() *Backend {
	return &Backend{Router: chi.NewRouter(), calls: make(map[string]*atomic.Int32)}
}

// Handle registers h for method and pattern and counts its calls.
func (b *Backend) Handle(method, pattern string, h http.HandlerFunc) {
	n := &atomic.Int32{}
	b.calls[method+" "+pattern] = n
	b.Router.MethodFunc(method, pattern, func(w http.ResponseWriter, r *http.Request) {
		n.Add(1)
		h(w, r)
	})
}

// Calls returns how often method+pattern was hit.
func (b *Backend) Calls(method, pattern string) int {
	if n, ok := b.calls[method+" "+pattern]; ok {
		return int(n.Load())
	}
	return 0
}

// Start serves the backend and returns an adapter pointed at it.
func (b *Backend) Start(t *testing.T, opts ...api.Option) *api.Client {
	t.Helper()
	root := chi.NewRouter()
	root.Mount("/api/v1", b.Router)
	srv := httptest.NewServer(root)
	t.Cleanup(srv.Close)

	hc, err := httpclient.NewInstrumentedClient(httpclient.WithBaseURL(srv.URL + "/api/v1"))
	require.NoError(t, err)
	return api.New(hc, opts...)
}

// JSON writes v with status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Detail writes a FastAPI style error.
func Detail(w http.ResponseWriter, status int, detail any) {
	JSON(w, status, map[string]any{"detail": detail})
}

// Decode reads the request body into v. Handlers run off the test
// goroutine, so failures come back as errors.
func Decode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
