// Package domain contains exchange prices, arbitrage opportunities and alerts.
package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/naijatrade/internal/store"
)

// Supported cryptos on the price board.
var Cryptos = []string{"USDT", "BTC", "ETH"}

// DataSource says where an exchange price came from.
type DataSource string

const (
	SourceLive   DataSource = "live"
	SourceCached DataSource = "cached"
	SourceSample DataSource = "sample"
)

// ExchangePrice is one exchange's quote for a crypto in naira.
type ExchangePrice struct {
	Exchange      string              `json:"exchange"`
	DisplayName   string              `json:"display_name"`
	Crypto        string              `json:"crypto"`
	Fiat          string              `json:"fiat"`
	BuyPrice      decimal.Decimal     `json:"buy_price"`
	SellPrice     decimal.Decimal     `json:"sell_price"`
	Spread        decimal.Decimal     `json:"spread"`
	SpreadPercent decimal.Decimal     `json:"spread_percent"`
	Volume24h     decimal.NullDecimal `json:"volume_24h"`
	DataSource    DataSource          `json:"data_source,omitempty"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// PriceBoard is every exchange's quote for one crypto.
type PriceBoard struct {
	Crypto           string            `json:"crypto"`
	Fiat             string            `json:"fiat"`
	Exchanges        []ExchangePrice   `json:"exchanges"`
	BestBuy          *ExchangePrice    `json:"best_buy,omitempty"`
	BestSell         *ExchangePrice    `json:"best_sell,omitempty"`
	ExchangeStatuses map[string]string `json:"exchange_statuses,omitempty"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// Quotes converts the board for the shared price store.
func (b PriceBoard) Quotes() []store.PriceQuote {
	out := make([]store.PriceQuote, 0, len(b.Exchanges))
	for _, p := range b.Exchanges {
		crypto := p.Crypto
		if crypto == "" {
			crypto = b.Crypto
		}
		out = append(out, store.PriceQuote{Exchange: p.Exchange, Crypto: strings.ToUpper(crypto), Buy: p.BuyPrice, Sell: p.SellPrice})
	}
	return out
}

// Degraded lists exchanges whose status is anything but "ok".
func (b PriceBoard) Degraded() []string {
	var out []string
	for name, st := range b.ExchangeStatuses {
		if st != "ok" {
			out = append(out, name)
		}
	}
	return out
}

// BestRoute is the cheapest place to buy and the best place to sell. It uses
// the server's picks and falls back to scanning the board.
func (b PriceBoard) BestRoute() (buy, sell ExchangePrice, ok bool) {
	if b.BestBuy != nil && b.BestSell != nil {
		return *b.BestBuy, *b.BestSell, true
	}
	if len(b.Exchanges) < 2 {
		return ExchangePrice{}, ExchangePrice{}, false
	}
	buy, sell = b.Exchanges[0], b.Exchanges[0]
	for _, p := range b.Exchanges[1:] {
		if p.BuyPrice.LessThan(buy.BuyPrice) {
			buy = p
		}
		if p.SellPrice.GreaterThan(sell.SellPrice) {
			sell = p
		}
	}
	return buy, sell, buy.Exchange != sell.Exchange
}

// Spread is the gap between buying on one exchange and selling on another.
type Spread struct {
	BuyPrice  decimal.Decimal
	SellPrice decimal.Decimal
	Absolute  decimal.Decimal // sell - buy
	Percent   decimal.Decimal // (sell - buy) / buy * 100
	Direction SpreadDirection
}

// SpreadDirection indicates whether the route makes money before fees.
type SpreadDirection string

const (
	SpreadPositive SpreadDirection = "POSITIVE"
	SpreadNegative SpreadDirection = "NEGATIVE"
	SpreadNone     SpreadDirection = "NONE"
)

// CalculateSpread computes the gross spread of buying at buy and selling at sell.
func CalculateSpread(buy, sell decimal.Decimal) Spread {
	absolute := sell.Sub(buy)
	pct := decimal.Zero
	if !buy.IsZero() {
		pct = absolute.Div(buy).Mul(decimal.NewFromInt(100))
	}

	var direction SpreadDirection
	switch {
	case absolute.IsPositive():
		direction = SpreadPositive
	case absolute.IsNegative():
		direction = SpreadNegative
	default:
		direction = SpreadNone
	}

	return Spread{
		BuyPrice:  buy,
		SellPrice: sell,
		Absolute:  absolute,
		Percent:   pct,
		Direction: direction,
	}
}
