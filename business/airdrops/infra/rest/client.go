// Package rest maps airdrop operations to backend endpoints.
package rest

import (
	"context"
	"net/http"
	"net/url"

	"github.com/fd1az/naijatrade/business/airdrops/app"
	"github.com/fd1az/naijatrade/business/airdrops/domain"
	"github.com/fd1az/naijatrade/internal/api"
	"github.com/fd1az/naijatrade/internal/apperror"
)

// Client implements app.AirdropsAPI.
type Client struct {
	api api.Requester
}

// NewClient creates an airdrops client.
func NewClient(r api.Requester) *Client {
	return &Client{api: r}
}

func itemPath(id string) (string, error) {
	if id == "" {
		return "", apperror.New(apperror.CodeRequiredField, apperror.WithMessage("airdrop id required"))
	}
	return "/airdrops/" + url.PathEscape(id), nil
}

func (c *Client) FetchAirdrops(ctx context.Context, filter domain.Filter) (domain.AirdropList, error) {
	var out domain.AirdropList
	err := c.api.Do(ctx, http.MethodGet, "/airdrops", api.RequestOptions{Params: filter.Values()}, &out)
	return out, err
}

func (c *Client) FetchAirdrop(ctx context.Context, id string) (domain.Airdrop, error) {
	var out domain.Airdrop
	path, err := itemPath(id)
	if err != nil {
		return out, err
	}
	err = c.api.Do(ctx, http.MethodGet, path, api.RequestOptions{}, &out)
	return out, err
}

func (c *Client) CreateAirdrop(ctx context.Context, form *domain.Form) (domain.Airdrop, error) {
	var out domain.Airdrop
	if err := form.Validate(); err != nil {
		return out, err
	}
	err := c.api.Do(ctx, http.MethodPost, "/airdrops", api.RequestOptions{Body: form}, &out)
	return out, err
}

func (c *Client) UpdateAirdrop(ctx context.Context, id string, patch domain.Patch) (domain.Airdrop, error) {
	var out domain.Airdrop
	path, err := itemPath(id)
	if err != nil {
		return out, err
	}
	err = c.api.Do(ctx, http.MethodPut, path, api.RequestOptions{Body: patch}, &out)
	return out, err
}

func (c *Client) DeleteAirdrop(ctx context.Context, id string) error {
	path, err := itemPath(id)
	if err != nil {
		return err
	}
	return c.api.Do(ctx, http.MethodDelete, path, api.RequestOptions{}, nil)
}

var _ app.AirdropsAPI = (*Client)(nil)
