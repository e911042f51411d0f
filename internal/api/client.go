// Package api is the single configured request client for the NaijaTrade
// backend. It attaches bearer credentials and turns every failure into an
// *apperror.AppError. It never retries and never caches.
package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/sony/gobreaker/v2"

	"github.com/fd1az/naijatrade/internal/circuitbreaker"
	"github.com/fd1az/naijatrade/internal/config"
	"github.com/fd1az/naijatrade/internal/httpclient"
	"github.com/fd1az/naijatrade/internal/logger"
	"github.com/fd1az/naijatrade/internal/ratelimit"
)

// TokenSource yields the current access token, if a session exists.
type TokenSource interface {
	AccessToken() (string, bool)
}

// RequestOptions are the per-call inputs.
type RequestOptions struct {
	Params url.Values
	Body   any
	// AuthToken overrides the session token for this call only.
	AuthToken string
}

// Requester is what resource services depend on.
type Requester interface {
	Do(ctx context.Context, method, path string, opts RequestOptions, out any) error
}

// Client implements Requester over the instrumented HTTP client.
type Client struct {
	http    httpclient.Client
	tokens  TokenSource
	limiter *ratelimit.Limiter
	breaker *circuitbreaker.CircuitBreaker[*httpclient.Response]
	log     logger.LoggerInterface
}

var _ Requester = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithTokenSource attaches bearer tokens from ts.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) {
		c.tokens = ts
	}
}

// WithRateLimiter throttles outgoing calls. A nil limiter is ignored.
func WithRateLimiter(l *ratelimit.Limiter) Option {
	return func(c *Client) {
		c.limiter = l
	}
}

// WithCircuitBreaker guards calls with a breaker that counts network and 5xx failures.
func WithCircuitBreaker(cfg circuitbreaker.Config) Option {
	return func(c *Client) {
		cfg.IsFailure = countsAsFailure
		c.breaker = circuitbreaker.New[*httpclient.Response](cfg)
	}
}

// WithLogger sets the logger.
func WithLogger(log logger.LoggerInterface) Option {
	return func(c *Client) {
		c.log = log
	}
}

// New wraps an httpclient.Client.
func New(hc httpclient.Client, opts ...Option) *Client {
	c := &Client{http: hc, log: logger.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewFromConfig builds the HTTP stack from the api config section.
func NewFromConfig(cfg config.APIConfig, version string, log logger.LoggerInterface, opts ...Option) (*Client, error) {
	hc, err := httpclient.NewInstrumentedClient(
		httpclient.WithBaseURL(cfg.BaseURL),
		httpclient.WithRequestTimeout(cfg.Timeout),
		httpclient.WithProviderName("naijatrade-api"),
		httpclient.WithUserAgent("naijatrade/"+version),
		httpclient.WithRequestIDs(),
	)
	if err != nil {
		return nil, err
	}

	base := []Option{
		WithLogger(log),
		WithRateLimiter(ratelimit.New(cfg.RequestsPerMinute)),
	}
	if cfg.CircuitBreaker.Enabled {
		cbCfg := circuitbreaker.DefaultConfig("naijatrade-api")
		if cfg.CircuitBreaker.ConsecutiveFailures > 0 {
			cbCfg.ConsecutiveFailures = cfg.CircuitBreaker.ConsecutiveFailures
		}
		if cfg.CircuitBreaker.OpenTimeout > 0 {
			cbCfg.Timeout = cfg.CircuitBreaker.OpenTimeout
		}
		cbCfg.OnStateChange = func(name string, from, to gobreaker.State) {
			log.Warn(context.Background(), "api circuit breaker state changed",
				"breaker", name, "from", from.String(), "to", to.String())
		}
		base = append(base, WithCircuitBreaker(cbCfg))
	}

	return New(hc, append(base, opts...)...), nil
}

// Do sends one request and decodes a 2xx JSON body into out (which may be nil).
func (c *Client) Do(ctx context.Context, method, path string, opts RequestOptions, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return normalizeTransport(method, path, err)
	}

	req := c.http.NewRequestWithOptions(
		httpclient.WithResponseErrorHandler(normalizeResponse),
		httpclient.WithLabels(httpclient.NewLabel("method", method)),
	)

	token := opts.AuthToken
	if token == "" && c.tokens != nil {
		if t, ok := c.tokens.AccessToken(); ok {
			token = t
		}
	}
	if token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}
	if len(opts.Params) > 0 {
		req.SetQueryValues(opts.Params)
	}
	if opts.Body != nil {
		req.SetBody(opts.Body)
	}
	if out != nil {
		req.SetResult(out)
	}

	exec := func() (*httpclient.Response, error) {
		return req.Execute(ctx, method, path)
	}

	var err error
	if c.breaker != nil {
		_, err = c.breaker.Execute(exec)
	} else {
		_, err = exec()
	}
	if err != nil {
		err = normalizeTransport(method, path, err)
		c.log.Debug(ctx, "api request failed", "method", method, "path", path, "error", err)
		return err
	}
	return nil
}

// Get is Do with GET and query params.
func (c *Client) Get(ctx context.Context, path string, params url.Values, out any) error {
	return c.Do(ctx, http.MethodGet, path, RequestOptions{Params: params}, out)
}

// Post is Do with POST and a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, RequestOptions{Body: body}, out)
}

// Put is Do with PUT and a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, RequestOptions{Body: body}, out)
}

// Delete is Do with DELETE.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodDelete, path, RequestOptions{}, out)
}
