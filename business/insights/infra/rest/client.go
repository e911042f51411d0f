// Package rest maps news, DeFi, P2P, naira rate and calculator reads to
// backend endpoints.
package rest

import (
	"context"
	"net/http"

	"github.com/fd1az/naijatrade/business/insights/domain"
	"github.com/fd1az/naijatrade/internal/api"
)

// Client implements app.InsightsAPI.
type Client struct {
	api api.Requester
}

// NewClient creates an insights client.
func NewClient(r api.Requester) *Client {
	return &Client{api: r}
}

func (c *Client) FetchNews(ctx context.Context, f domain.NewsFilter) (domain.NewsFeed, error) {
	var out domain.NewsFeed
	err := c.api.Do(ctx, http.MethodGet, "/news/feed", api.RequestOptions{Params: f.Values()}, &out)
	return out, err
}

func (c *Client) FetchNewsSources(ctx context.Context) ([]string, error) {
	var out struct {
		Sources []string `json:"sources"`
	}
	err := c.api.Do(ctx, http.MethodGet, "/news/sources", api.RequestOptions{}, &out)
	return out.Sources, err
}

func (c *Client) FetchDefiYields(ctx context.Context, f domain.YieldFilter) (domain.Yields, error) {
	var out domain.Yields
	if err := f.Validate(); err != nil {
		return out, err
	}
	err := c.api.Do(ctx, http.MethodGet, "/defi/yields", api.RequestOptions{Params: f.Values()}, &out)
	return out, err
}

func (c *Client) FetchDefiChains(ctx context.Context) ([]string, error) {
	var out struct {
		Chains []string `json:"chains"`
	}
	err := c.api.Do(ctx, http.MethodGet, "/defi/chains", api.RequestOptions{}, &out)
	return out.Chains, err
}

func (c *Client) CompareP2P(ctx context.Context, crypto string) (domain.Comparison, error) {
	var out domain.Comparison
	params := domain.CompareRequest{Crypto: crypto}.Values()
	err := c.api.Do(ctx, http.MethodGet, "/p2p/compare", api.RequestOptions{Params: params}, &out)
	return out, err
}

func (c *Client) CompareAllP2P(ctx context.Context) (domain.ComparisonOverview, error) {
	var out domain.ComparisonOverview
	err := c.api.Do(ctx, http.MethodGet, "/p2p/compare/all", api.RequestOptions{}, &out)
	return out, err
}

func (c *Client) FetchNairaRates(ctx context.Context) (domain.NairaRates, error) {
	var out domain.NairaRates
	err := c.api.Do(ctx, http.MethodGet, "/naira/rates", api.RequestOptions{}, &out)
	return out, err
}

func (c *Client) FetchInvestmentRates(ctx context.Context) (domain.Rates, error) {
	var out domain.Rates
	err := c.api.Do(ctx, http.MethodGet, "/calculator/rates", api.RequestOptions{}, &out)
	return out, err
}

func (c *Client) CompareInvestments(ctx context.Context, form *domain.CompareForm) (domain.SavingsComparison, error) {
	var out domain.SavingsComparison
	if err := form.Validate(); err != nil {
		return out, err
	}
	body := *form
	if body.Duration == "" {
		body.Duration = domain.DefaultDuration
	}
	err := c.api.Do(ctx, http.MethodPost, "/calculator/compare", api.RequestOptions{Body: body}, &out)
	return out, err
}
