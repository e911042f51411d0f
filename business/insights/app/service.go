package app

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/fd1az/naijatrade/business/insights/domain"
	"github.com/fd1az/naijatrade/internal/apm"
	"github.com/fd1az/naijatrade/internal/query"
)

// Cache keys owned by the insights context.
var (
	KeyNews        = query.Key{"news-feed"}
	KeyNewsSources = query.Key{"news-sources"}
	KeyYields      = query.Key{"defi-yields"}
	KeyChains      = query.Key{"defi-chains"}
	KeyP2P         = query.Key{"p2p-comparison"}
	KeyP2PAll      = query.Key{"p2p-comparison-all"}
	KeyNairaRates  = query.Key{"naira-rates"}
	KeyRates       = query.Key{"calculator-rates"}
	KeySavings     = query.Key{"savings-calculator"}
)

const (
	// P2PRefetch is how often comparisons poll while watched.
	P2PRefetch = time.Minute
	// ReferenceStaleTime covers sources, chains and investment rates.
	ReferenceStaleTime = time.Hour
	// NairaRefetch matches the backend's five minute rate cache.
	NairaRefetch = 5 * time.Minute
)

// Service serves the research screens from the cache.
type Service struct {
	api     InsightsAPI
	queries *query.Client
	tracer  apm.Tracer
}

// NewService creates a Service.
func NewService(api InsightsAPI, queries *query.Client) *Service {
	return &Service{api: api, queries: queries, tracer: apm.NewTracer("insights")}
}

func NewsKey(f domain.NewsFilter) query.Key {
	return KeyNews.Append(f)
}

func YieldsKey(f domain.YieldFilter) query.Key {
	return KeyYields.Append(f)
}

func P2PKey(crypto string) query.Key {
	return KeyP2P.Append(normalizeCrypto(crypto))
}

func SavingsKey(f *domain.CompareForm) query.Key {
	duration := f.Duration
	if duration == "" {
		duration = domain.DefaultDuration
	}
	return KeySavings.Append(f.AmountNGN.String(), duration)
}

func normalizeCrypto(c string) string {
	c = strings.ToUpper(strings.TrimSpace(c))
	if c == "" {
		return "USDT"
	}
	return c
}

func (s *Service) fetchNews(f domain.NewsFilter) query.Fetcher[domain.NewsFeed] {
	return func(ctx context.Context) (domain.NewsFeed, error) {
		return s.api.FetchNews(ctx, f)
	}
}

// News reads one page of the feed.
func (s *Service) News(ctx context.Context, f domain.NewsFilter) (domain.NewsFeed, error) {
	return query.Fetch(ctx, s.queries, NewsKey(f), s.fetchNews(f))
}

// WatchNews subscribes to one page of the feed.
func (s *Service) WatchNews(f domain.NewsFilter) *query.Subscription[domain.NewsFeed] {
	return query.Subscribe(s.queries, NewsKey(f), s.fetchNews(f))
}

// NewsSources reads the publishers present in the feed.
func (s *Service) NewsSources(ctx context.Context) ([]string, error) {
	return query.Fetch(ctx, s.queries, KeyNewsSources, s.api.FetchNewsSources, query.StaleTime(ReferenceStaleTime))
}

func (s *Service) fetchYields(f domain.YieldFilter) query.Fetcher[domain.Yields] {
	return func(ctx context.Context) (domain.Yields, error) {
		return s.api.FetchDefiYields(ctx, f)
	}
}

// Yields reads one page of stablecoin pools.
func (s *Service) Yields(ctx context.Context, f domain.YieldFilter) (domain.Yields, error) {
	return query.Fetch(ctx, s.queries, YieldsKey(f), s.fetchYields(f))
}

// WatchYields subscribes to one page of stablecoin pools.
func (s *Service) WatchYields(f domain.YieldFilter) *query.Subscription[domain.Yields] {
	return query.Subscribe(s.queries, YieldsKey(f), s.fetchYields(f))
}

// Chains reads the chains that have pools.
func (s *Service) Chains(ctx context.Context) ([]string, error) {
	return query.Fetch(ctx, s.queries, KeyChains, s.api.FetchDefiChains, query.StaleTime(ReferenceStaleTime))
}

func (s *Service) fetchComparison(crypto string) query.Fetcher[domain.Comparison] {
	return func(ctx context.Context) (domain.Comparison, error) {
		return s.api.CompareP2P(ctx, crypto)
	}
}

// Compare reads the exchange ranking for crypto. A blank crypto means USDT.
func (s *Service) Compare(ctx context.Context, crypto string) (domain.Comparison, error) {
	crypto = normalizeCrypto(crypto)
	return query.Fetch(ctx, s.queries, P2PKey(crypto), s.fetchComparison(crypto), query.RefetchInterval(P2PRefetch))
}

// WatchCompare subscribes to the exchange ranking for crypto. It polls every
// minute.
func (s *Service) WatchCompare(crypto string) *query.Subscription[domain.Comparison] {
	crypto = normalizeCrypto(crypto)
	return query.Subscribe(s.queries, P2PKey(crypto), s.fetchComparison(crypto), query.RefetchInterval(P2PRefetch))
}

// CompareAll reads the digest for every supported crypto.
func (s *Service) CompareAll(ctx context.Context) (domain.ComparisonOverview, error) {
	return query.Fetch(ctx, s.queries, KeyP2PAll, s.api.CompareAllP2P, query.RefetchInterval(P2PRefetch))
}

// WatchCompareAll subscribes to the digest for every supported crypto.
func (s *Service) WatchCompareAll() *query.Subscription[domain.ComparisonOverview] {
	return query.Subscribe(s.queries, KeyP2PAll, s.api.CompareAllP2P, query.RefetchInterval(P2PRefetch))
}

// NairaRates reads the official and parallel naira board.
func (s *Service) NairaRates(ctx context.Context) (domain.NairaRates, error) {
	return query.Fetch(ctx, s.queries, KeyNairaRates, s.api.FetchNairaRates, query.RefetchInterval(NairaRefetch))
}

// WatchNairaRates subscribes to the naira board. It polls every five minutes.
func (s *Service) WatchNairaRates() *query.Subscription[domain.NairaRates] {
	return query.Subscribe(s.queries, KeyNairaRates, s.api.FetchNairaRates, query.RefetchInterval(NairaRefetch))
}

// Rates reads the investment rate catalogue.
func (s *Service) Rates(ctx context.Context) (domain.Rates, error) {
	return query.Fetch(ctx, s.queries, KeyRates, s.api.FetchInvestmentRates, query.StaleTime(ReferenceStaleTime))
}

// WatchRates subscribes to the investment rate catalogue.
func (s *Service) WatchRates() *query.Subscription[domain.Rates] {
	return query.Subscribe(s.queries, KeyRates, s.api.FetchInvestmentRates, query.StaleTime(ReferenceStaleTime))
}

// CompareInvestments reads the server's projection for the form. Invalid
// forms fail without a request and leave nothing cached.
func (s *Service) CompareInvestments(ctx context.Context, form *domain.CompareForm) (domain.SavingsComparison, error) {
	ctx, span := s.tracer.StartSpanFromContext(ctx, "insights.savings.compare")
	defer span.End()
	span.SetAttribute(attribute.String("duration", form.Duration))

	if err := form.Validate(); err != nil {
		span.NoticeError(err)
		return domain.SavingsComparison{}, err
	}
	f := *form
	out, err := query.Fetch(ctx, s.queries, SavingsKey(&f), func(ctx context.Context) (domain.SavingsComparison, error) {
		return s.api.CompareInvestments(ctx, &f)
	})
	if err != nil {
		span.NoticeError(err)
	}
	return out, err
}

// Project computes the comparison locally from the cached rate catalogue.
func (s *Service) Project(ctx context.Context, form *domain.CompareForm) (domain.SavingsComparison, error) {
	if err := form.Validate(); err != nil {
		return domain.SavingsComparison{}, err
	}
	rates, err := s.Rates(ctx)
	if err != nil {
		return domain.SavingsComparison{}, err
	}
	return domain.Project(rates, form), nil
}

// Overview loads the first news page, the P2P digest and the rate
// catalogue together.
func (s *Service) Overview(ctx context.Context) error {
	first := domain.NewNewsFilter()
	return query.Prefetch(ctx, s.queries,
		query.Request{Key: NewsKey(first), Fetch: erase(s.fetchNews(first))},
		query.Request{Key: KeyP2PAll, Fetch: erase(s.api.CompareAllP2P), Options: []query.Option{query.RefetchInterval(P2PRefetch)}},
		query.Request{Key: KeyRates, Fetch: erase(s.api.FetchInvestmentRates), Options: []query.Option{query.StaleTime(ReferenceStaleTime)}},
	)
}

func erase[T any](fn func(context.Context) (T, error)) func(context.Context) (any, error) {
	return func(ctx context.Context) (any, error) {
		return fn(ctx)
	}
}
