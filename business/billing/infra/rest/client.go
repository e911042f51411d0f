// Package rest maps billing operations to backend endpoints.
package rest

import (
	"context"
	"net/http"
	"net/url"

	"github.com/fd1az/naijatrade/business/billing/app"
	"github.com/fd1az/naijatrade/business/billing/domain"
	"github.com/fd1az/naijatrade/internal/api"
	"github.com/fd1az/naijatrade/internal/apperror"
	"github.com/fd1az/naijatrade/internal/validate"
)

// Client implements app.BillingAPI.
type Client struct {
	api api.Requester
}

// NewClient creates a billing client.
func NewClient(r api.Requester) *Client {
	return &Client{api: r}
}

func (c *Client) FetchPlans(ctx context.Context, product domain.Product) (domain.Catalog, error) {
	var out domain.Catalog
	if err := checkProduct(product); err != nil {
		return out, err
	}
	err := c.api.Do(ctx, http.MethodGet, "/plans/"+url.PathEscape(string(product)), api.RequestOptions{}, &out)
	return out, err
}

func (c *Client) FetchSubscriptions(ctx context.Context) ([]domain.Subscription, error) {
	var out []domain.Subscription
	err := c.api.Do(ctx, http.MethodGet, "/subscriptions", api.RequestOptions{}, &out)
	return out, err
}

func (c *Client) FetchSubscription(ctx context.Context, product domain.Product) (domain.Subscription, error) {
	var out domain.Subscription
	if err := checkProduct(product); err != nil {
		return out, err
	}
	err := c.api.Do(ctx, http.MethodGet, "/subscriptions/"+url.PathEscape(string(product)), api.RequestOptions{}, &out)
	return out, err
}

func (c *Client) FetchLimits(ctx context.Context, product domain.Product) (domain.UserLimits, error) {
	var out domain.UserLimits
	if err := checkProduct(product); err != nil {
		return out, err
	}
	err := c.api.Do(ctx, http.MethodGet, "/subscriptions/"+url.PathEscape(string(product))+"/limits", api.RequestOptions{}, &out)
	return out, err
}

func (c *Client) InitializePayment(ctx context.Context, form *domain.CheckoutForm) (domain.Checkout, error) {
	var out domain.Checkout
	if err := form.Validate(); err != nil {
		return out, err
	}
	err := c.api.Do(ctx, http.MethodPost, "/payments/initialize", api.RequestOptions{Body: form}, &out)
	return out, err
}

func (c *Client) VerifyPayment(ctx context.Context, reference string) (domain.Payment, error) {
	var out domain.Payment
	if reference == "" {
		return out, apperror.RequiredField("reference")
	}
	body := map[string]string{"reference": reference}
	err := c.api.Do(ctx, http.MethodPost, "/payments/verify", api.RequestOptions{Body: body}, &out)
	return out, err
}

func (c *Client) CancelSubscription(ctx context.Context, product domain.Product) (string, error) {
	if err := checkProduct(product); err != nil {
		return "", err
	}
	var out struct {
		Message string `json:"message"`
	}
	err := c.api.Do(ctx, http.MethodPost, "/subscriptions/"+url.PathEscape(string(product))+"/cancel", api.RequestOptions{}, &out)
	return out.Message, err
}

func checkProduct(p domain.Product) error {
	return validate.New("product").
		Required("product", p != "").
		Check("product", p == "" || p.Valid(), "is not a known product").
		Err()
}

var _ app.BillingAPI = (*Client)(nil)
