// Package domain contains the market news feed, DeFi stablecoin yields, P2P
// rate comparisons and the savings calculator.
package domain

import (
	"net/url"
	"strconv"

	"github.com/fd1az/naijatrade/internal/api"
)

// News categories.
const (
	CategoryCrypto  = "crypto"
	CategoryStocks  = "stocks"
	CategoryNigeria = "nigeria"
)

const (
	NewsPageSize = 12
	MaxNewsLimit = 50
)

// NewsItem is one headline.
type NewsItem struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Source      string    `json:"source"`
	URL         string    `json:"url"`
	Summary     string    `json:"summary,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	Category    string    `json:"category"`
	PublishedAt *api.Time `json:"published_at"`
	FetchedAt   *api.Time `json:"fetched_at"`
}

// NewsFilter selects one page of the feed.
type NewsFilter struct {
	Category string
	Source   string
	Limit    int
	Offset   int
}

// NewNewsFilter returns the first page of every category.
func NewNewsFilter() NewsFilter {
	return NewsFilter{Limit: NewsPageSize}
}

// Next moves the filter one page forward.
func (f NewsFilter) Next() NewsFilter {
	f.Offset += f.pageSize()
	return f
}

func (f NewsFilter) pageSize() int {
	if f.Limit <= 0 {
		return NewsPageSize
	}
	return min(f.Limit, MaxNewsLimit)
}

func (f NewsFilter) Values() url.Values {
	v := api.NewParams().
		String("category", f.Category).
		String("source", f.Source).
		Int("limit", f.pageSize()).
		Values()
	// offset 0 is meaningful so it is always sent
	v.Set("offset", strconv.Itoa(max(f.Offset, 0)))
	return v
}

// NewsFeed is one page of headlines.
type NewsFeed struct {
	Items   []NewsItem `json:"items"`
	Total   int        `json:"total"`
	Sources []string   `json:"sources"`
}

// HasMore reports whether a page follows the one fetched with f.
func (n NewsFeed) HasMore(f NewsFilter) bool {
	return f.Offset+f.pageSize() < n.Total
}
