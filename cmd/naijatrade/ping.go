package main

import (
	"context"
	"net/url"

	"github.com/fd1az/naijatrade/internal/apperror"
	"github.com/fd1az/naijatrade/internal/config"
	"github.com/fd1az/naijatrade/internal/httpclient"
)

// apiPinger hits the backend's unversioned /health endpoint. It bypasses the
// API client so a tripped breaker or empty rate bucket does not hide an
// otherwise reachable server.
type apiPinger struct {
	client httpclient.Client
	url    string
}

func newAPIPinger(cfg config.APIConfig, version string) (*apiPinger, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	u.Path = "/health"
	u.RawQuery = ""

	hc, err := httpclient.NewInstrumentedClient(
		httpclient.WithRequestTimeout(cfg.Timeout),
		httpclient.WithProviderName("naijatrade-health"),
		httpclient.WithUserAgent("naijatrade/"+version),
	)
	if err != nil {
		return nil, err
	}
	return &apiPinger{client: hc, url: u.String()}, nil
}

// Ping returns nil when the backend answers 2xx.
func (p *apiPinger) Ping(ctx context.Context) error {
	resp, err := p.client.NewRequest().Get(ctx, p.url)
	if err != nil {
		return apperror.Network("health pinger", err)
	}
	if !resp.IsSuccess() {
		return apperror.New(apperror.CodeServiceUnavailable,
			apperror.WithContext("health pinger"),
			apperror.WithStatusCode(resp.StatusCode),
		)
	}
	return nil
}
