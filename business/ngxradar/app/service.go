package app

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/fd1az/naijatrade/business/ngxradar/domain"
	"github.com/fd1az/naijatrade/internal/apm"
	"github.com/fd1az/naijatrade/internal/query"
)

// Cache keys owned by the stock radar context.
var (
	KeySummary          = query.Key{"ngx-market-summary"}
	KeyStocks           = query.Key{"ngx-stocks"}
	KeyStock            = query.Key{"ngx-stock"}
	KeySectors          = query.Key{"ngx-sectors"}
	KeyMovers           = query.Key{"ngx-movers"}
	KeyScreener         = query.Key{"ngx-screener"}
	KeyWatchlists       = query.Key{"ngx-watchlists"}
	KeyAlerts           = query.Key{"ngx-alerts"}
	KeyDividends        = query.Key{"ngx-dividends"}
	KeyDividendCalendar = query.Key{"ngx-dividend-calendar"}
)

const (
	// MarketRefetch is how often market data polls while watched.
	MarketRefetch = time.Minute
	// SectorsStaleTime covers the sector list.
	SectorsStaleTime = time.Hour
)

// Service serves stock radar reads from the cache and runs watchlist and
// alert writes.
type Service struct {
	api     NGXAPI
	queries *query.Client
	tracer  apm.Tracer
}

// NewService creates a Service.
func NewService(api NGXAPI, queries *query.Client) *Service {
	return &Service{api: api, queries: queries, tracer: apm.NewTracer("ngxradar")}
}

func StocksKey(f domain.StockFilter) query.Key {
	return KeyStocks.Append(f)
}

func StockKey(symbol string) query.Key {
	return KeyStock.Append(domain.NormalizeSymbol(symbol))
}

func MoversKey(kind domain.Mover, limit int) query.Key {
	return KeyMovers.Append(kind, limit)
}

func ScreenerKey(f domain.ScreenerFilters) query.Key {
	return KeyScreener.Append(f)
}

func AlertsKey(activeOnly bool) query.Key {
	return KeyAlerts.Append(activeOnly)
}

func DividendsKey(f domain.DividendFilter) query.Key {
	return KeyDividends.Append(f)
}

// Summary reads the market summary.
func (s *Service) Summary(ctx context.Context) (domain.MarketSummary, error) {
	return query.Fetch(ctx, s.queries, KeySummary, s.api.FetchMarketSummary, query.RefetchInterval(MarketRefetch))
}

// WatchSummary subscribes to the market summary. It polls every minute.
func (s *Service) WatchSummary() *query.Subscription[domain.MarketSummary] {
	return query.Subscribe(s.queries, KeySummary, s.api.FetchMarketSummary, query.RefetchInterval(MarketRefetch))
}

func (s *Service) fetchStocks(f domain.StockFilter) query.Fetcher[[]domain.Stock] {
	return func(ctx context.Context) ([]domain.Stock, error) {
		return s.api.FetchStocks(ctx, f)
	}
}

// Stocks reads one page of listed stocks.
func (s *Service) Stocks(ctx context.Context, f domain.StockFilter) ([]domain.Stock, error) {
	return query.Fetch(ctx, s.queries, StocksKey(f), s.fetchStocks(f))
}

func (s *Service) fetchStock(symbol string) query.Fetcher[domain.StockDetail] {
	return func(ctx context.Context) (domain.StockDetail, error) {
		return s.api.FetchStock(ctx, symbol)
	}
}

// Stock reads one stock with its history.
func (s *Service) Stock(ctx context.Context, symbol string) (domain.StockDetail, error) {
	return query.Fetch(ctx, s.queries, StockKey(symbol), s.fetchStock(symbol))
}

// WatchStock subscribes to one stock.
func (s *Service) WatchStock(symbol string) *query.Subscription[domain.StockDetail] {
	return query.Subscribe(s.queries, StockKey(symbol), s.fetchStock(symbol))
}

// Sectors reads the sector list.
func (s *Service) Sectors(ctx context.Context) ([]string, error) {
	return query.Fetch(ctx, s.queries, KeySectors, s.api.FetchSectors, query.StaleTime(SectorsStaleTime))
}

func (s *Service) fetchMovers(kind domain.Mover, limit int) query.Fetcher[[]domain.Stock] {
	return func(ctx context.Context) ([]domain.Stock, error) {
		return s.api.FetchMovers(ctx, kind, limit)
	}
}

// Movers reads one ranked list. A non-positive limit uses the default.
func (s *Service) Movers(ctx context.Context, kind domain.Mover, limit int) ([]domain.Stock, error) {
	if limit <= 0 {
		limit = domain.DefaultMoverLimit
	}
	return query.Fetch(ctx, s.queries, MoversKey(kind, limit), s.fetchMovers(kind, limit), query.RefetchInterval(MarketRefetch))
}

func (s *Service) fetchScreen(f domain.ScreenerFilters) query.Fetcher[domain.ScreenerResult] {
	return func(ctx context.Context) (domain.ScreenerResult, error) {
		return s.api.Screen(ctx, f)
	}
}

// Screen reads one screener page.
func (s *Service) Screen(ctx context.Context, f domain.ScreenerFilters) (domain.ScreenerResult, error) {
	return query.Fetch(ctx, s.queries, ScreenerKey(f), s.fetchScreen(f), query.RefetchInterval(MarketRefetch))
}

// WatchScreen subscribes to one screener page. It polls every minute.
func (s *Service) WatchScreen(f domain.ScreenerFilters) *query.Subscription[domain.ScreenerResult] {
	return query.Subscribe(s.queries, ScreenerKey(f), s.fetchScreen(f), query.RefetchInterval(MarketRefetch))
}

// Watchlists reads the caller's watchlists.
func (s *Service) Watchlists(ctx context.Context) ([]domain.Watchlist, error) {
	return query.Fetch(ctx, s.queries, KeyWatchlists, s.api.FetchWatchlists)
}

// WatchWatchlists subscribes to the caller's watchlists.
func (s *Service) WatchWatchlists() *query.Subscription[[]domain.Watchlist] {
	return query.Subscribe(s.queries, KeyWatchlists, s.api.FetchWatchlists)
}

// CreateWatchlist adds a watchlist. A blank name uses the default.
func (s *Service) CreateWatchlist(ctx context.Context, name string) (domain.Watchlist, error) {
	ctx, span := s.tracer.StartSpanFromContext(ctx, "ngxradar.watchlists.create")
	defer span.End()

	w, err := query.Mutate(ctx, s.queries, func(ctx context.Context) (domain.Watchlist, error) {
		return s.api.CreateWatchlist(ctx, name)
	}, KeyWatchlists)
	if err != nil {
		span.NoticeError(err)
	}
	return w, err
}

// DeleteWatchlist removes watchlist id.
func (s *Service) DeleteWatchlist(ctx context.Context, id string) error {
	return s.watchlistWrite(ctx, "ngxradar.watchlists.delete", id, "", func(ctx context.Context) error {
		return s.api.DeleteWatchlist(ctx, id)
	})
}

// AddToWatchlist puts symbol on watchlist id.
func (s *Service) AddToWatchlist(ctx context.Context, id, symbol string) error {
	return s.watchlistWrite(ctx, "ngxradar.watchlists.add", id, symbol, func(ctx context.Context) error {
		return s.api.AddToWatchlist(ctx, id, symbol)
	})
}

// RemoveFromWatchlist takes symbol off watchlist id.
func (s *Service) RemoveFromWatchlist(ctx context.Context, id, symbol string) error {
	return s.watchlistWrite(ctx, "ngxradar.watchlists.remove", id, symbol, func(ctx context.Context) error {
		return s.api.RemoveFromWatchlist(ctx, id, symbol)
	})
}

func (s *Service) watchlistWrite(ctx context.Context, op, id, symbol string, fn func(context.Context) error) error {
	ctx, span := s.tracer.StartSpanFromContext(ctx, op)
	defer span.End()
	span.SetAttribute(attribute.String("watchlist.id", id))
	if symbol != "" {
		span.SetAttribute(attribute.String("symbol", domain.NormalizeSymbol(symbol)))
	}

	_, err := query.Mutate(ctx, s.queries, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	}, KeyWatchlists)
	if err != nil {
		span.NoticeError(err)
	}
	return err
}

func (s *Service) fetchAlerts(activeOnly bool) query.Fetcher[[]domain.StockAlert] {
	return func(ctx context.Context) ([]domain.StockAlert, error) {
		return s.api.FetchStockAlerts(ctx, activeOnly)
	}
}

// Alerts reads the caller's stock alerts.
func (s *Service) Alerts(ctx context.Context, activeOnly bool) ([]domain.StockAlert, error) {
	return query.Fetch(ctx, s.queries, AlertsKey(activeOnly), s.fetchAlerts(activeOnly))
}

// WatchAlerts subscribes to the caller's stock alerts.
func (s *Service) WatchAlerts(activeOnly bool) *query.Subscription[[]domain.StockAlert] {
	return query.Subscribe(s.queries, AlertsKey(activeOnly), s.fetchAlerts(activeOnly))
}

// CreateAlert adds a stock alert.
func (s *Service) CreateAlert(ctx context.Context, form *domain.StockAlertForm) (domain.StockAlert, error) {
	ctx, span := s.tracer.StartSpanFromContext(ctx, "ngxradar.alerts.create")
	defer span.End()

	a, err := query.Mutate(ctx, s.queries, func(ctx context.Context) (domain.StockAlert, error) {
		return s.api.CreateStockAlert(ctx, form)
	}, KeyAlerts)
	if err != nil {
		span.NoticeError(err)
	}
	return a, err
}

// ToggleAlert flips alert id on the server and returns the new state.
func (s *Service) ToggleAlert(ctx context.Context, id string) (domain.StockAlert, error) {
	ctx, span := s.tracer.StartSpanFromContext(ctx, "ngxradar.alerts.toggle")
	defer span.End()
	span.SetAttribute(attribute.String("alert.id", id))

	a, err := query.Mutate(ctx, s.queries, func(ctx context.Context) (domain.StockAlert, error) {
		return s.api.ToggleStockAlert(ctx, id)
	}, KeyAlerts)
	if err != nil {
		span.NoticeError(err)
	}
	return a, err
}

// DeleteAlert removes alert id.
func (s *Service) DeleteAlert(ctx context.Context, id string) error {
	ctx, span := s.tracer.StartSpanFromContext(ctx, "ngxradar.alerts.delete")
	defer span.End()
	span.SetAttribute(attribute.String("alert.id", id))

	_, err := query.Mutate(ctx, s.queries, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.api.DeleteStockAlert(ctx, id)
	}, KeyAlerts)
	if err != nil {
		span.NoticeError(err)
	}
	return err
}

func (s *Service) fetchDividends(f domain.DividendFilter) query.Fetcher[[]domain.Dividend] {
	return func(ctx context.Context) ([]domain.Dividend, error) {
		return s.api.FetchDividends(ctx, f)
	}
}

// Dividends reads declared dividends.
func (s *Service) Dividends(ctx context.Context, f domain.DividendFilter) ([]domain.Dividend, error) {
	return query.Fetch(ctx, s.queries, DividendsKey(f), s.fetchDividends(f))
}

// DividendCalendar reads upcoming and recent payouts.
func (s *Service) DividendCalendar(ctx context.Context) (domain.DividendCalendar, error) {
	return query.Fetch(ctx, s.queries, KeyDividendCalendar, s.api.FetchDividendCalendar)
}

// WatchDividendCalendar subscribes to upcoming and recent payouts.
func (s *Service) WatchDividendCalendar() *query.Subscription[domain.DividendCalendar] {
	return query.Subscribe(s.queries, KeyDividendCalendar, s.api.FetchDividendCalendar)
}

// Dashboard loads the summary, sectors and every ranked list together.
func (s *Service) Dashboard(ctx context.Context) error {
	reqs := []query.Request{
		{Key: KeySummary, Fetch: erase(s.api.FetchMarketSummary), Options: []query.Option{query.RefetchInterval(MarketRefetch)}},
		{Key: KeySectors, Fetch: erase(s.api.FetchSectors), Options: []query.Option{query.StaleTime(SectorsStaleTime)}},
	}
	for _, kind := range []domain.Mover{domain.MoverGainers, domain.MoverLosers, domain.MoverActive} {
		reqs = append(reqs, query.Request{
			Key:     MoversKey(kind, domain.DefaultMoverLimit),
			Fetch:   erase(s.fetchMovers(kind, domain.DefaultMoverLimit)),
			Options: []query.Option{query.RefetchInterval(MarketRefetch)},
		})
	}
	return query.Prefetch(ctx, s.queries, reqs...)
}

func erase[T any](fn func(context.Context) (T, error)) func(context.Context) (any, error) {
	return func(ctx context.Context) (any, error) {
		return fn(ctx)
	}
}
