package app

import (
	"context"

	"github.com/fd1az/naijatrade/business/ngxradar/domain"
)

// NGXAPI is the backend surface of the stock radar.
type NGXAPI interface {
	FetchMarketSummary(ctx context.Context) (domain.MarketSummary, error)
	FetchStocks(ctx context.Context, f domain.StockFilter) ([]domain.Stock, error)
	FetchStock(ctx context.Context, symbol string) (domain.StockDetail, error)
	FetchSectors(ctx context.Context) ([]string, error)
	FetchMovers(ctx context.Context, kind domain.Mover, limit int) ([]domain.Stock, error)
	Screen(ctx context.Context, f domain.ScreenerFilters) (domain.ScreenerResult, error)

	FetchWatchlists(ctx context.Context) ([]domain.Watchlist, error)
	CreateWatchlist(ctx context.Context, name string) (domain.Watchlist, error)
	DeleteWatchlist(ctx context.Context, id string) error
	AddToWatchlist(ctx context.Context, id, symbol string) error
	RemoveFromWatchlist(ctx context.Context, id, symbol string) error

	FetchStockAlerts(ctx context.Context, activeOnly bool) ([]domain.StockAlert, error)
	CreateStockAlert(ctx context.Context, form *domain.StockAlertForm) (domain.StockAlert, error)
	DeleteStockAlert(ctx context.Context, id string) error
	ToggleStockAlert(ctx context.Context, id string) (domain.StockAlert, error)

	FetchDividends(ctx context.Context, f domain.DividendFilter) ([]domain.Dividend, error)
	FetchDividendCalendar(ctx context.Context) (domain.DividendCalendar, error)
}
