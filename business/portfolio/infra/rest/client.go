// Package rest maps portfolio and DCA operations to backend endpoints.
package rest

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/fd1az/naijatrade/business/portfolio/app"
	"github.com/fd1az/naijatrade/business/portfolio/domain"
	"github.com/fd1az/naijatrade/internal/api"
	"github.com/fd1az/naijatrade/internal/validate"
)

// Client implements app.PortfolioAPI.
type Client struct {
	api api.Requester
}

// NewClient creates a portfolio client.
func NewClient(r api.Requester) *Client {
	return &Client{api: r}
}

func (c *Client) FetchPortfolio(ctx context.Context) (domain.Summary, error) {
	var out domain.Summary
	err := c.api.Do(ctx, http.MethodGet, "/portfolio", api.RequestOptions{}, &out)
	return out, err
}

// CreatePortfolio sends the name as a query parameter with no body.
func (c *Client) CreatePortfolio(ctx context.Context, name string) (domain.Created, error) {
	var out domain.Created
	name = strings.TrimSpace(name)
	if name == "" {
		name = domain.DefaultPortfolioName
	}
	params := api.NewParams().String("name", name).Values()
	err := c.api.Do(ctx, http.MethodPost, "/portfolio", api.RequestOptions{Params: params}, &out)
	return out, err
}

func (c *Client) AddHolding(ctx context.Context, form *domain.HoldingForm) (domain.Created, error) {
	var out domain.Created
	if err := form.Validate(); err != nil {
		return out, err
	}
	err := c.api.Do(ctx, http.MethodPost, "/portfolio/holdings", api.RequestOptions{Body: form}, &out)
	return out, err
}

func (c *Client) UpdateHolding(ctx context.Context, id string, patch domain.HoldingPatch) (domain.Created, error) {
	var out domain.Created
	if err := requireID("holding", id); err != nil {
		return out, err
	}
	if err := patch.Validate(); err != nil {
		return out, err
	}
	err := c.api.Do(ctx, http.MethodPut, "/portfolio/holdings/"+url.PathEscape(id), api.RequestOptions{Body: patch}, &out)
	return out, err
}

func (c *Client) DeleteHolding(ctx context.Context, id string) error {
	if err := requireID("holding", id); err != nil {
		return err
	}
	return c.api.Do(ctx, http.MethodDelete, "/portfolio/holdings/"+url.PathEscape(id), api.RequestOptions{}, nil)
}

func (c *Client) FetchDcaPlans(ctx context.Context) ([]domain.Plan, error) {
	var out domain.PlanList
	err := c.api.Do(ctx, http.MethodGet, "/dca/plans", api.RequestOptions{}, &out)
	return out.Plans, err
}

func (c *Client) FetchDcaPlan(ctx context.Context, id string) (domain.Plan, error) {
	var out domain.Plan
	if err := requireID("dca_plan", id); err != nil {
		return out, err
	}
	err := c.api.Do(ctx, http.MethodGet, "/dca/plans/"+url.PathEscape(id), api.RequestOptions{}, &out)
	return out, err
}

func (c *Client) CreateDcaPlan(ctx context.Context, form *domain.PlanForm) (domain.Created, error) {
	var out domain.Created
	if err := form.Validate(); err != nil {
		return out, err
	}
	err := c.api.Do(ctx, http.MethodPost, "/dca/plans", api.RequestOptions{Body: form}, &out)
	return out, err
}

func (c *Client) UpdateDcaPlan(ctx context.Context, id string, patch domain.PlanPatch) (domain.Created, error) {
	var out domain.Created
	if err := requireID("dca_plan", id); err != nil {
		return out, err
	}
	if err := patch.Validate(); err != nil {
		return out, err
	}
	err := c.api.Do(ctx, http.MethodPut, "/dca/plans/"+url.PathEscape(id), api.RequestOptions{Body: patch}, &out)
	return out, err
}

func (c *Client) DeleteDcaPlan(ctx context.Context, id string) error {
	if err := requireID("dca_plan", id); err != nil {
		return err
	}
	return c.api.Do(ctx, http.MethodDelete, "/dca/plans/"+url.PathEscape(id), api.RequestOptions{}, nil)
}

func (c *Client) AddDcaEntry(ctx context.Context, planID string, form *domain.EntryForm) (domain.Created, error) {
	var out domain.Created
	if err := requireID("dca_entry", planID); err != nil {
		return out, err
	}
	if err := form.Validate(); err != nil {
		return out, err
	}
	path := "/dca/plans/" + url.PathEscape(planID) + "/entries"
	err := c.api.Do(ctx, http.MethodPost, path, api.RequestOptions{Body: form}, &out)
	return out, err
}

func (c *Client) DeleteDcaEntry(ctx context.Context, id string) error {
	if err := requireID("dca_entry", id); err != nil {
		return err
	}
	return c.api.Do(ctx, http.MethodDelete, "/dca/entries/"+url.PathEscape(id), api.RequestOptions{}, nil)
}

func requireID(form, id string) error {
	return validate.New(form).NotBlank("id", id).Err()
}

var _ app.PortfolioAPI = (*Client)(nil)
