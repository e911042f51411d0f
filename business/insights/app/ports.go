package app

import (
	"context"

	"github.com/fd1az/naijatrade/business/insights/domain"
)

// InsightsAPI is the backend surface of the research screens.
type InsightsAPI interface {
	FetchNews(ctx context.Context, f domain.NewsFilter) (domain.NewsFeed, error)
	FetchNewsSources(ctx context.Context) ([]string, error)

	FetchDefiYields(ctx context.Context, f domain.YieldFilter) (domain.Yields, error)
	FetchDefiChains(ctx context.Context) ([]string, error)

	CompareP2P(ctx context.Context, crypto string) (domain.Comparison, error)
	CompareAllP2P(ctx context.Context) (domain.ComparisonOverview, error)

	FetchNairaRates(ctx context.Context) (domain.NairaRates, error)

	FetchInvestmentRates(ctx context.Context) (domain.Rates, error)
	CompareInvestments(ctx context.Context, form *domain.CompareForm) (domain.SavingsComparison, error)
}
