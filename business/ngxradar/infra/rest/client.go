// Package rest maps stock radar operations to backend endpoints.
package rest

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/fd1az/naijatrade/business/ngxradar/app"
	"github.com/fd1az/naijatrade/business/ngxradar/domain"
	"github.com/fd1az/naijatrade/internal/api"
	"github.com/fd1az/naijatrade/internal/validate"
)

// Client implements app.NGXAPI.
type Client struct {
	api api.Requester
}

// NewClient creates a stock radar client.
func NewClient(r api.Requester) *Client {
	return &Client{api: r}
}

func (c *Client) FetchMarketSummary(ctx context.Context) (domain.MarketSummary, error) {
	var out domain.MarketSummary
	err := c.api.Do(ctx, http.MethodGet, "/ngx/summary", api.RequestOptions{}, &out)
	return out, err
}

func (c *Client) FetchStocks(ctx context.Context, f domain.StockFilter) ([]domain.Stock, error) {
	var out []domain.Stock
	err := c.api.Do(ctx, http.MethodGet, "/ngx/stocks", api.RequestOptions{Params: f.Values()}, &out)
	return out, err
}

func (c *Client) FetchStock(ctx context.Context, symbol string) (domain.StockDetail, error) {
	var out domain.StockDetail
	symbol = domain.NormalizeSymbol(symbol)
	if err := domain.ValidateSymbol("stock", symbol); err != nil {
		return out, err
	}
	err := c.api.Do(ctx, http.MethodGet, "/ngx/stocks/"+url.PathEscape(symbol), api.RequestOptions{}, &out)
	return out, err
}

func (c *Client) FetchSectors(ctx context.Context) ([]string, error) {
	var out []string
	err := c.api.Do(ctx, http.MethodGet, "/ngx/sectors", api.RequestOptions{}, &out)
	return out, err
}

func (c *Client) FetchMovers(ctx context.Context, kind domain.Mover, limit int) ([]domain.Stock, error) {
	var out []domain.Stock
	err := validate.New("movers").
		OneOf("kind", string(kind), string(domain.MoverGainers), string(domain.MoverLosers), string(domain.MoverActive)).
		Required("kind", kind != "").
		Err()
	if err != nil {
		return out, err
	}
	if limit <= 0 {
		limit = domain.DefaultMoverLimit
	}
	params := api.NewParams().Int("limit", limit).Values()
	err = c.api.Do(ctx, http.MethodGet, "/ngx/"+string(kind), api.RequestOptions{Params: params}, &out)
	return out, err
}

func (c *Client) Screen(ctx context.Context, f domain.ScreenerFilters) (domain.ScreenerResult, error) {
	var out domain.ScreenerResult
	if err := f.Validate(); err != nil {
		return out, err
	}
	err := c.api.Do(ctx, http.MethodGet, "/ngx/screener", api.RequestOptions{Params: f.Values()}, &out)
	return out, err
}

func (c *Client) FetchWatchlists(ctx context.Context) ([]domain.Watchlist, error) {
	var out []domain.Watchlist
	err := c.api.Do(ctx, http.MethodGet, "/ngx/watchlists", api.RequestOptions{}, &out)
	return out, err
}

func (c *Client) CreateWatchlist(ctx context.Context, name string) (domain.Watchlist, error) {
	var out domain.Watchlist
	name = strings.TrimSpace(name)
	if name == "" {
		name = domain.DefaultWatchlistName
	}
	body := map[string]string{"name": name}
	err := c.api.Do(ctx, http.MethodPost, "/ngx/watchlists", api.RequestOptions{Body: body}, &out)
	return out, err
}

func (c *Client) DeleteWatchlist(ctx context.Context, id string) error {
	if err := requireID("watchlist", id); err != nil {
		return err
	}
	return c.api.Do(ctx, http.MethodDelete, "/ngx/watchlists/"+url.PathEscape(id), api.RequestOptions{}, nil)
}

func (c *Client) AddToWatchlist(ctx context.Context, id, symbol string) error {
	symbol = domain.NormalizeSymbol(symbol)
	err := validate.New("watchlist").NotBlank("id", id).NotBlank("symbol", symbol).Err()
	if err != nil {
		return err
	}
	body := map[string]string{"symbol": symbol}
	return c.api.Do(ctx, http.MethodPost, "/ngx/watchlists/"+url.PathEscape(id)+"/stocks", api.RequestOptions{Body: body}, nil)
}

func (c *Client) RemoveFromWatchlist(ctx context.Context, id, symbol string) error {
	symbol = domain.NormalizeSymbol(symbol)
	err := validate.New("watchlist").NotBlank("id", id).NotBlank("symbol", symbol).Err()
	if err != nil {
		return err
	}
	path := "/ngx/watchlists/" + url.PathEscape(id) + "/stocks/" + url.PathEscape(symbol)
	return c.api.Do(ctx, http.MethodDelete, path, api.RequestOptions{}, nil)
}

func (c *Client) FetchStockAlerts(ctx context.Context, activeOnly bool) ([]domain.StockAlert, error) {
	var out []domain.StockAlert
	// The server defaults to active only, so false has to be sent.
	params := url.Values{"active_only": {strconv.FormatBool(activeOnly)}}
	err := c.api.Do(ctx, http.MethodGet, "/ngx/alerts", api.RequestOptions{Params: params}, &out)
	return out, err
}

func (c *Client) CreateStockAlert(ctx context.Context, form *domain.StockAlertForm) (domain.StockAlert, error) {
	var out domain.StockAlert
	if err := form.Validate(); err != nil {
		return out, err
	}
	err := c.api.Do(ctx, http.MethodPost, "/ngx/alerts", api.RequestOptions{Body: form}, &out)
	return out, err
}

func (c *Client) DeleteStockAlert(ctx context.Context, id string) error {
	if err := requireID("stock_alert", id); err != nil {
		return err
	}
	return c.api.Do(ctx, http.MethodDelete, "/ngx/alerts/"+url.PathEscape(id), api.RequestOptions{}, nil)
}

func (c *Client) ToggleStockAlert(ctx context.Context, id string) (domain.StockAlert, error) {
	var out domain.StockAlert
	if err := requireID("stock_alert", id); err != nil {
		return out, err
	}
	err := c.api.Do(ctx, http.MethodPost, "/ngx/alerts/"+url.PathEscape(id)+"/toggle", api.RequestOptions{}, &out)
	return out, err
}

func (c *Client) FetchDividends(ctx context.Context, f domain.DividendFilter) ([]domain.Dividend, error) {
	var out []domain.Dividend
	err := c.api.Do(ctx, http.MethodGet, "/ngx/dividends", api.RequestOptions{Params: f.Values()}, &out)
	return out, err
}

func (c *Client) FetchDividendCalendar(ctx context.Context) (domain.DividendCalendar, error) {
	var out domain.DividendCalendar
	err := c.api.Do(ctx, http.MethodGet, "/ngx/dividends/calendar", api.RequestOptions{}, &out)
	return out, err
}

func requireID(form, id string) error {
	return validate.New(form).NotBlank("id", id).Err()
}

var _ app.NGXAPI = (*Client)(nil)
