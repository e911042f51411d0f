// Package rest maps arbscanner operations to backend endpoints.
package rest

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/fd1az/naijatrade/business/arbscanner/app"
	"github.com/fd1az/naijatrade/business/arbscanner/domain"
	"github.com/fd1az/naijatrade/internal/api"
	"github.com/fd1az/naijatrade/internal/apperror"
)

// Client implements app.ScannerAPI.
type Client struct {
	api api.Requester
}

// NewClient creates an arbscanner client.
func NewClient(r api.Requester) *Client {
	return &Client{api: r}
}

func (c *Client) FetchPrices(ctx context.Context, crypto string, refresh bool) (domain.PriceBoard, error) {
	var out domain.PriceBoard
	params := api.NewParams().String("crypto", strings.ToUpper(crypto)).Bool("refresh", refresh).Values()
	err := c.api.Do(ctx, http.MethodGet, "/arb/prices", api.RequestOptions{Params: params}, &out)
	return out, err
}

func (c *Client) FetchOpportunities(ctx context.Context, scan domain.Scan) (domain.OpportunityList, error) {
	var out domain.OpportunityList
	err := c.api.Do(ctx, http.MethodGet, "/arb/opportunities", api.RequestOptions{Params: scan.Values()}, &out)
	return out, err
}

func (c *Client) Calculate(ctx context.Context, form *domain.CalculateForm) (domain.Calculation, error) {
	var out domain.Calculation
	if err := form.Validate(); err != nil {
		return out, err
	}
	err := c.api.Do(ctx, http.MethodPost, "/arb/calculate", api.RequestOptions{Body: form}, &out)
	return out, err
}

func (c *Client) FetchExchanges(ctx context.Context) (domain.Catalog, error) {
	var out domain.Catalog
	err := c.api.Do(ctx, http.MethodGet, "/arb/exchanges", api.RequestOptions{}, &out)
	return out, err
}

func (c *Client) FetchFees(ctx context.Context) (domain.FeeTable, error) {
	var out domain.FeeTable
	err := c.api.Do(ctx, http.MethodGet, "/arb/fees", api.RequestOptions{}, &out)
	return out, err
}

func (c *Client) FetchAlerts(ctx context.Context) ([]domain.Alert, error) {
	var out []domain.Alert
	err := c.api.Do(ctx, http.MethodGet, "/arb/alerts", api.RequestOptions{}, &out)
	return out, err
}

func (c *Client) CreateAlert(ctx context.Context, form *domain.AlertForm) (domain.Alert, error) {
	var out domain.Alert
	if err := form.Validate(); err != nil {
		return out, err
	}
	err := c.api.Do(ctx, http.MethodPost, "/arb/alerts", api.RequestOptions{Body: form}, &out)
	return out, err
}

func (c *Client) UpdateAlert(ctx context.Context, id string, patch domain.AlertPatch) (domain.Alert, error) {
	var out domain.Alert
	if id == "" {
		return out, missingID()
	}
	err := c.api.Do(ctx, http.MethodPut, "/arb/alerts/"+url.PathEscape(id), api.RequestOptions{Body: patch}, &out)
	return out, err
}

func (c *Client) DeleteAlert(ctx context.Context, id string) error {
	if id == "" {
		return missingID()
	}
	return c.api.Do(ctx, http.MethodDelete, "/arb/alerts/"+url.PathEscape(id), api.RequestOptions{}, nil)
}

func missingID() error {
	return apperror.New(apperror.CodeRequiredField, apperror.WithMessage("alert id required"))
}

var _ app.ScannerAPI = (*Client)(nil)
