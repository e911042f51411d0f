package domain

import (
	"net/url"

	"github.com/shopspring/decimal"

	"github.com/fd1az/naijatrade/internal/api"
)

// Dividend is one declared payout.
type Dividend struct {
	ID                string          `json:"id"`
	StockSymbol       string          `json:"stock_symbol"`
	StockName         string          `json:"stock_name"`
	DividendType      string          `json:"dividend_type"`
	AmountPerShare    decimal.Decimal `json:"amount_per_share"`
	QualificationDate *api.Date       `json:"qualification_date,omitempty"`
	PaymentDate       *api.Date       `json:"payment_date,omitempty"`
	Year              *int            `json:"year,omitempty"`
}

// Yield is the payout as a percentage of price.
func (d Dividend) Yield(price decimal.Decimal) decimal.Decimal {
	if !price.IsPositive() {
		return decimal.Zero
	}
	return d.AmountPerShare.Div(price).Mul(decimal.NewFromInt(100)).Round(2)
}

// DividendFilter selects dividends.
type DividendFilter struct {
	Symbol   string
	Upcoming bool
	Limit    int
}

// Values encodes the filter as query parameters.
func (f DividendFilter) Values() url.Values {
	return api.NewParams().
		String("symbol", NormalizeSymbol(f.Symbol)).
		Bool("upcoming", f.Upcoming).
		Int("limit", f.Limit).
		Values()
}

// DividendCalendar splits payouts around today.
type DividendCalendar struct {
	Upcoming []Dividend `json:"upcoming"`
	Recent   []Dividend `json:"recent"`
}
