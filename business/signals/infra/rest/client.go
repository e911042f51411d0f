// Package rest maps signal operations to backend endpoints.
package rest

import (
	"context"
	"net/http"
	"net/url"

	"github.com/fd1az/naijatrade/business/signals/app"
	"github.com/fd1az/naijatrade/business/signals/domain"
	"github.com/fd1az/naijatrade/internal/api"
	"github.com/fd1az/naijatrade/internal/apperror"
)

// Client implements app.SignalsAPI.
type Client struct {
	api api.Requester
}

// NewClient creates a signals client.
func NewClient(r api.Requester) *Client {
	return &Client{api: r}
}

func (c *Client) FetchSignals(ctx context.Context, filter domain.Filter) (domain.SignalList, error) {
	var out domain.SignalList
	err := c.api.Do(ctx, http.MethodGet, "/signals", api.RequestOptions{Params: filter.Values()}, &out)
	return out, err
}

func (c *Client) FetchSignalStats(ctx context.Context) (domain.Stats, error) {
	var out domain.Stats
	err := c.api.Do(ctx, http.MethodGet, "/signals/stats", api.RequestOptions{}, &out)
	return out, err
}

func (c *Client) CreateSignal(ctx context.Context, form *domain.Form) (domain.Signal, error) {
	var out domain.Signal
	if err := form.Validate(); err != nil {
		return out, err
	}
	err := c.api.Do(ctx, http.MethodPost, "/signals", api.RequestOptions{Body: form.Payload()}, &out)
	return out, err
}

func (c *Client) UpdateSignal(ctx context.Context, id string, patch domain.Patch) (domain.Signal, error) {
	var out domain.Signal
	if id == "" {
		return out, missingID()
	}
	err := c.api.Do(ctx, http.MethodPut, "/signals/"+url.PathEscape(id), api.RequestOptions{Body: patch}, &out)
	return out, err
}

func (c *Client) DeleteSignal(ctx context.Context, id string) error {
	if id == "" {
		return missingID()
	}
	return c.api.Do(ctx, http.MethodDelete, "/signals/"+url.PathEscape(id), api.RequestOptions{}, nil)
}

func missingID() error {
	return apperror.New(apperror.CodeRequiredField, apperror.WithMessage("signal id required"))
}

var _ app.SignalsAPI = (*Client)(nil)
