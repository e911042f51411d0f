// Package domain contains NGX stocks, the screener, watchlists, stock alerts
// and dividends.
package domain

import (
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/naijatrade/internal/api"
	"github.com/fd1az/naijatrade/internal/validate"
)

// Stock is one listed equity with its latest trading data.
type Stock struct {
	ID            string              `json:"id"`
	Symbol        string              `json:"symbol"`
	Name          string              `json:"name"`
	Sector        string              `json:"sector,omitempty"`
	CurrentPrice  decimal.NullDecimal `json:"current_price"`
	Change        decimal.NullDecimal `json:"change"`
	ChangePercent decimal.NullDecimal `json:"change_percent"`
	Volume        *int64              `json:"volume"`
	MarketCap     decimal.NullDecimal `json:"market_cap"`
	PERatio       decimal.NullDecimal `json:"pe_ratio"`
	DividendYield decimal.NullDecimal `json:"dividend_yield"`
	High52w       decimal.NullDecimal `json:"high_52w"`
	Low52w        decimal.NullDecimal `json:"low_52w"`
	IsActive      bool                `json:"is_active"`
}

// Direction is -1, 0 or 1 following the day's change.
func (s Stock) Direction() int {
	if !s.ChangePercent.Valid {
		return 0
	}
	return s.ChangePercent.Decimal.Sign()
}

// RangePosition places the current price within the 52 week range, from 0
// at the low to 100 at the high. ok is false when any input is missing or
// the range is flat.
func (s Stock) RangePosition() (pct decimal.Decimal, ok bool) {
	if !s.CurrentPrice.Valid || !s.High52w.Valid || !s.Low52w.Valid {
		return decimal.Zero, false
	}
	span := s.High52w.Decimal.Sub(s.Low52w.Decimal)
	if !span.IsPositive() {
		return decimal.Zero, false
	}
	return s.CurrentPrice.Decimal.Sub(s.Low52w.Decimal).Div(span).Mul(decimal.NewFromInt(100)).Round(1), true
}

// StockPrice is one day of trading.
type StockPrice struct {
	Date   api.Date            `json:"date"`
	Open   decimal.NullDecimal `json:"open_price"`
	High   decimal.NullDecimal `json:"high_price"`
	Low    decimal.NullDecimal `json:"low_price"`
	Close  decimal.Decimal     `json:"close_price"`
	Volume *int64              `json:"volume"`
}

// StockDetail is a stock with its price history, oldest first.
type StockDetail struct {
	Stock
	Prices []StockPrice `json:"prices"`
}

// Since returns the closes on or after from.
func (d StockDetail) Since(from time.Time) []StockPrice {
	var out []StockPrice
	for _, p := range d.Prices {
		if !p.Date.Before(from) {
			out = append(out, p)
		}
	}
	return out
}

// MarketSummary is the day's All Share Index snapshot.
type MarketSummary struct {
	ASI              decimal.Decimal `json:"asi"`
	ASIChange        decimal.Decimal `json:"asi_change"`
	ASIChangePercent decimal.Decimal `json:"asi_change_percent"`
	MarketCap        decimal.Decimal `json:"market_cap"`
	Volume           int64           `json:"volume"`
	Value            decimal.Decimal `json:"value"`
	Deals            int             `json:"deals"`
	Date             api.Date        `json:"date"`
	TopGainers       []Stock         `json:"top_gainers"`
	TopLosers        []Stock         `json:"top_losers"`
	MostActive       []Stock         `json:"most_active"`
}

// StockFilter selects a page of the stock list.
type StockFilter struct {
	Sector string
	Limit  int
	Offset int
}

// Values encodes the filter as query parameters.
func (f StockFilter) Values() url.Values {
	return api.NewParams().
		String("sector", f.Sector).
		Int("limit", f.Limit).
		Int("offset", f.Offset).
		Values()
}

// Mover is one of the ranked stock lists.
type Mover string

const (
	MoverGainers Mover = "gainers"
	MoverLosers  Mover = "losers"
	MoverActive  Mover = "active"
)

// DefaultMoverLimit is how many stocks a ranked list shows.
const DefaultMoverLimit = 10

// Screener bounds.
const (
	DefaultScreenerLimit = 50
	MaxScreenerLimit     = 200
)

// Sort orders accepted by the screener.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// ScreenerFilters narrows the stock list. Nil bounds are not applied.
type ScreenerFilters struct {
	Sector           string           `json:"sector,omitempty"`
	MinPrice         *decimal.Decimal `json:"min_price,omitempty"`
	MaxPrice         *decimal.Decimal `json:"max_price,omitempty"`
	MinChangePercent *decimal.Decimal `json:"min_change_percent,omitempty"`
	MaxChangePercent *decimal.Decimal `json:"max_change_percent,omitempty"`
	MinVolume        int              `json:"min_volume,omitempty"`
	MinMarketCap     *decimal.Decimal `json:"min_market_cap,omitempty"`
	MaxPERatio       *decimal.Decimal `json:"max_pe_ratio,omitempty"`
	MinDividendYield *decimal.Decimal `json:"min_dividend_yield,omitempty"`
	SortBy           string           `json:"sort_by"`
	SortOrder        string           `json:"sort_order"`
	Limit            int              `json:"limit"`
	Offset           int              `json:"offset"`
}

// NewScreenerFilters sorts by symbol ascending with the default page size.
func NewScreenerFilters() ScreenerFilters {
	return ScreenerFilters{SortBy: "symbol", SortOrder: SortAsc, Limit: DefaultScreenerLimit}
}

// PriceRange bounds the current price. Nil leaves a side open.
func (f ScreenerFilters) PriceRange(lo, hi *decimal.Decimal) ScreenerFilters {
	f.MinPrice, f.MaxPrice = lo, hi
	return f
}

// Sorted sorts by field; an empty order keeps the current one.
func (f ScreenerFilters) Sorted(field, order string) ScreenerFilters {
	f.SortBy = field
	if order != "" {
		f.SortOrder = strings.ToLower(order)
	}
	return f
}

// Page moves to page n (zero based) of the current size.
func (f ScreenerFilters) Page(n int) ScreenerFilters {
	if f.Limit == 0 {
		f.Limit = DefaultScreenerLimit
	}
	f.Offset = n * f.Limit
	return f
}

// Validate checks bounds before the request is sent.
func (f ScreenerFilters) Validate() error {
	v := validate.New("screener")
	v.OneOf("sort_order", f.SortOrder, SortAsc, SortDesc)
	v.Check("limit", f.Limit >= 0 && f.Limit <= MaxScreenerLimit, "must be between 0 and 200")
	v.Check("offset", f.Offset >= 0, "must not be negative")
	if f.MinPrice != nil && f.MaxPrice != nil {
		v.Check("max_price", !f.MaxPrice.LessThan(*f.MinPrice), "must not be below min_price")
	}
	if f.MinChangePercent != nil && f.MaxChangePercent != nil {
		v.Check("max_change_percent", !f.MaxChangePercent.LessThan(*f.MinChangePercent), "must not be below min_change_percent")
	}
	return v.Err()
}

// Values encodes the filters as query parameters.
func (f ScreenerFilters) Values() url.Values {
	return api.NewParams().
		String("sector", f.Sector).
		Decimal("min_price", f.MinPrice).
		Decimal("max_price", f.MaxPrice).
		Decimal("min_change_percent", f.MinChangePercent).
		Decimal("max_change_percent", f.MaxChangePercent).
		Int("min_volume", f.MinVolume).
		Decimal("min_market_cap", f.MinMarketCap).
		Decimal("max_pe_ratio", f.MaxPERatio).
		Decimal("min_dividend_yield", f.MinDividendYield).
		String("sort_by", f.SortBy).
		String("sort_order", f.SortOrder).
		Int("limit", f.Limit).
		Int("offset", f.Offset).
		Values()
}

// ScreenerResult is one screener page and the filters the server applied.
type ScreenerResult struct {
	Stocks         []Stock         `json:"stocks"`
	Total          int             `json:"total"`
	FiltersApplied ScreenerFilters `json:"filters_applied"`
}

// Pages is the page count at the applied page size.
func (r ScreenerResult) Pages() int {
	limit := r.FiltersApplied.Limit
	if limit <= 0 {
		limit = DefaultScreenerLimit
	}
	return (r.Total + limit - 1) / limit
}
