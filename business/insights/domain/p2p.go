package domain

import (
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

// ComparedCryptos are the cryptos the comparator offers.
var ComparedCryptos = []string{"USDT", "BTC", "ETH"}

// Quote is one exchange's P2P price for a crypto.
type Quote struct {
	Exchange      string              `json:"exchange"`
	DisplayName   string              `json:"display_name"`
	Crypto        string              `json:"crypto"`
	BuyPrice      decimal.Decimal     `json:"buy_price"`
	SellPrice     decimal.Decimal     `json:"sell_price"`
	Spread        decimal.Decimal     `json:"spread"`
	SpreadPercent decimal.Decimal     `json:"spread_percent"`
	Volume24h     decimal.NullDecimal `json:"volume_24h"`
}

// Name returns the display name, falling back to the exchange id.
func (q Quote) Name() string {
	if q.DisplayName != "" {
		return q.DisplayName
	}
	return q.Exchange
}

// Comparison ranks every exchange for one crypto.
type Comparison struct {
	Crypto           string          `json:"crypto"`
	CheapestBuy      *Quote          `json:"cheapest_buy"`
	BestSell         *Quote          `json:"best_sell"`
	MaxSpread        decimal.Decimal `json:"max_spread"`
	MaxSpreadPercent decimal.Decimal `json:"max_spread_percent"`
	BuyRanked        []Quote         `json:"buy_ranked"`
	SellRanked       []Quote         `json:"sell_ranked"`
	AllExchanges     []Quote         `json:"all_exchanges"`
	UpdatedAt        string          `json:"updated_at,omitempty"`
}

// Profitable reports whether buying at the cheapest exchange and selling at
// the best one leaves a positive spread.
func (c Comparison) Profitable() bool {
	return c.CheapestBuy != nil && c.BestSell != nil && c.MaxSpread.IsPositive()
}

// CompareRequest selects the crypto to compare.
type CompareRequest struct {
	Crypto string
}

func (r CompareRequest) Values() url.Values {
	crypto := strings.ToUpper(strings.TrimSpace(r.Crypto))
	if crypto == "" {
		crypto = "USDT"
	}
	return url.Values{"crypto": {crypto}}
}

// ComparisonSummary is the per-crypto digest of the all-cryptos view.
type ComparisonSummary struct {
	CheapestBuy      *Quote          `json:"cheapest_buy"`
	BestSell         *Quote          `json:"best_sell"`
	MaxSpread        decimal.Decimal `json:"max_spread"`
	MaxSpreadPercent decimal.Decimal `json:"max_spread_percent"`
	ExchangeCount    int             `json:"exchange_count"`
}

// ComparisonOverview digests every supported crypto.
type ComparisonOverview struct {
	Comparisons map[string]ComparisonSummary `json:"comparisons"`
	Cryptos     []string                     `json:"cryptos"`
}

// Widest returns the crypto with the largest spread percentage. Ties go to
// the earlier entry in Cryptos.
func (o ComparisonOverview) Widest() (string, ComparisonSummary, bool) {
	var (
		best  string
		found ComparisonSummary
		ok    bool
	)
	for _, c := range o.Cryptos {
		s, exists := o.Comparisons[c]
		if !exists {
			continue
		}
		if !ok || s.MaxSpreadPercent.GreaterThan(found.MaxSpreadPercent) {
			best, found, ok = c, s, true
		}
	}
	return best, found, ok
}
