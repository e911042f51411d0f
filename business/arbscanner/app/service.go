package app

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fd1az/naijatrade/business/arbscanner/domain"
	"github.com/fd1az/naijatrade/internal/apm"
	"github.com/fd1az/naijatrade/internal/query"
	"github.com/fd1az/naijatrade/internal/store"
)

// Cache keys owned by the arbscanner context.
var (
	KeyPrices        = query.Key{"prices"}
	KeyOpportunities = query.Key{"opportunities"}
	KeyExchanges     = query.Key{"exchanges"}
	KeyFees          = query.Key{"fees"}
	KeyAlerts        = query.Key{"alerts"}
)

const (
	// LiveRefetch is how often prices and opportunities poll while watched.
	LiveRefetch = time.Minute
	// ReferenceStaleTime covers the exchange list and fee table.
	ReferenceStaleTime = time.Hour
)

// Service serves scanner reads from the cache and runs alert writes. Every
// price board it loads is published to the shared price store.
type Service struct {
	api     ScannerAPI
	queries *query.Client
	ui      *store.UIState
	tracer  apm.Tracer
}

// NewService creates a Service. ui may be nil.
func NewService(api ScannerAPI, queries *query.Client, ui *store.UIState) *Service {
	return &Service{api: api, queries: queries, ui: ui, tracer: apm.NewTracer("arbscanner")}
}

// PricesKey is the cache key for one crypto's board.
func PricesKey(crypto string) query.Key {
	return KeyPrices.Append(strings.ToUpper(crypto))
}

// OpportunitiesKey is the cache key for one scan.
func OpportunitiesKey(scan domain.Scan) query.Key {
	return KeyOpportunities.Append(scan)
}

func (s *Service) publish(board domain.PriceBoard) {
	if s.ui == nil {
		return
	}
	at := board.UpdatedAt
	if at.IsZero() {
		at = time.Now()
	}
	s.ui.SetPrices(board.Quotes(), at)
}

func (s *Service) fetchPrices(crypto string) query.Fetcher[domain.PriceBoard] {
	return func(ctx context.Context) (domain.PriceBoard, error) {
		board, err := s.api.FetchPrices(ctx, crypto, false)
		if err == nil {
			s.publish(board)
		}
		return board, err
	}
}

func (s *Service) fetchOpportunities(scan domain.Scan) query.Fetcher[domain.OpportunityList] {
	return func(ctx context.Context) (domain.OpportunityList, error) {
		return s.api.FetchOpportunities(ctx, scan)
	}
}

// Prices reads the board for crypto.
func (s *Service) Prices(ctx context.Context, crypto string) (domain.PriceBoard, error) {
	return query.Fetch(ctx, s.queries, PricesKey(crypto), s.fetchPrices(crypto), query.RefetchInterval(LiveRefetch))
}

// WatchPrices subscribes to the board for crypto. It polls every minute.
func (s *Service) WatchPrices(crypto string) *query.Subscription[domain.PriceBoard] {
	return query.Subscribe(s.queries, PricesKey(crypto), s.fetchPrices(crypto), query.RefetchInterval(LiveRefetch))
}

// RefreshPrices makes the server bypass its price cache, then revalidates
// every view of crypto's board and opportunities.
func (s *Service) RefreshPrices(ctx context.Context, crypto string) (domain.PriceBoard, error) {
	ctx, span := s.tracer.StartSpanFromContext(ctx, "arbscanner.refresh_prices")
	defer span.End()
	span.SetAttribute(attribute.String("crypto", crypto))

	board, err := query.Mutate(ctx, s.queries, func(ctx context.Context) (domain.PriceBoard, error) {
		return s.api.FetchPrices(ctx, crypto, true)
	}, PricesKey(crypto), KeyOpportunities)
	if err != nil {
		span.NoticeError(err)
		return board, err
	}
	s.publish(board)
	return board, nil
}

// Opportunities reads one scan.
func (s *Service) Opportunities(ctx context.Context, scan domain.Scan) (domain.OpportunityList, error) {
	return query.Fetch(ctx, s.queries, OpportunitiesKey(scan), s.fetchOpportunities(scan), query.RefetchInterval(LiveRefetch))
}

// WatchOpportunities subscribes to one scan. It polls every minute.
func (s *Service) WatchOpportunities(scan domain.Scan) *query.Subscription[domain.OpportunityList] {
	return query.Subscribe(s.queries, OpportunitiesKey(scan), s.fetchOpportunities(scan), query.RefetchInterval(LiveRefetch))
}

// Exchanges reads the supported exchanges and cryptos.
func (s *Service) Exchanges(ctx context.Context) (domain.Catalog, error) {
	return query.Fetch(ctx, s.queries, KeyExchanges, s.api.FetchExchanges, query.StaleTime(ReferenceStaleTime))
}

// WatchExchanges subscribes to the supported exchanges and cryptos.
func (s *Service) WatchExchanges() *query.Subscription[domain.Catalog] {
	return query.Subscribe(s.queries, KeyExchanges, s.api.FetchExchanges, query.StaleTime(ReferenceStaleTime))
}

// Fees reads the fee table.
func (s *Service) Fees(ctx context.Context) (domain.FeeTable, error) {
	return query.Fetch(ctx, s.queries, KeyFees, s.api.FetchFees, query.StaleTime(ReferenceStaleTime))
}

// Calculate prices a route on the server.
func (s *Service) Calculate(ctx context.Context, form *domain.CalculateForm) (domain.Calculation, error) {
	ctx, span := s.tracer.StartSpanFromContext(ctx, "arbscanner.calculate")
	defer span.End()

	out, err := query.Mutate(ctx, s.queries, func(ctx context.Context) (domain.Calculation, error) {
		return s.api.Calculate(ctx, form)
	})
	if err != nil {
		span.NoticeError(err)
	}
	return out, err
}

// Estimate prices a route locally from the cached fee table.
func (s *Service) Estimate(ctx context.Context, crypto string, buy, sell domain.ExchangePrice, amount decimal.Decimal) (domain.Calculation, error) {
	fees, err := s.Fees(ctx)
	if err != nil {
		return domain.Calculation{}, err
	}
	return domain.NewProfitCalculator(fees).Calculate(crypto, buy, sell, amount), nil
}

// Alerts reads the caller's alerts.
func (s *Service) Alerts(ctx context.Context) ([]domain.Alert, error) {
	return query.Fetch(ctx, s.queries, KeyAlerts, s.api.FetchAlerts)
}

// WatchAlerts subscribes to the caller's alerts.
func (s *Service) WatchAlerts() *query.Subscription[[]domain.Alert] {
	return query.Subscribe(s.queries, KeyAlerts, s.api.FetchAlerts)
}

// CreateAlert adds an alert.
func (s *Service) CreateAlert(ctx context.Context, form *domain.AlertForm) (domain.Alert, error) {
	ctx, span := s.tracer.StartSpanFromContext(ctx, "arbscanner.alerts.create")
	defer span.End()

	a, err := query.Mutate(ctx, s.queries, func(ctx context.Context) (domain.Alert, error) {
		return s.api.CreateAlert(ctx, form)
	}, KeyAlerts)
	if err != nil {
		span.NoticeError(err)
	}
	return a, err
}

// UpdateAlert applies patch to alert id.
func (s *Service) UpdateAlert(ctx context.Context, id string, patch domain.AlertPatch) (domain.Alert, error) {
	ctx, span := s.tracer.StartSpanFromContext(ctx, "arbscanner.alerts.update")
	defer span.End()
	span.SetAttribute(attribute.String("alert.id", id))

	a, err := query.Mutate(ctx, s.queries, func(ctx context.Context) (domain.Alert, error) {
		return s.api.UpdateAlert(ctx, id, patch)
	}, KeyAlerts)
	if err != nil {
		span.NoticeError(err)
	}
	return a, err
}

// ToggleAlert flips an alert's active flag.
func (s *Service) ToggleAlert(ctx context.Context, a domain.Alert) (domain.Alert, error) {
	return s.UpdateAlert(ctx, a.ID, *new(domain.AlertPatch).SetActive(!a.IsActive))
}

// DeleteAlert removes alert id.
func (s *Service) DeleteAlert(ctx context.Context, id string) error {
	ctx, span := s.tracer.StartSpanFromContext(ctx, "arbscanner.alerts.delete")
	defer span.End()
	span.SetAttribute(attribute.String("alert.id", id))

	_, err := query.Mutate(ctx, s.queries, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.api.DeleteAlert(ctx, id)
	}, KeyAlerts)
	if err != nil {
		span.NoticeError(err)
	}
	return err
}
