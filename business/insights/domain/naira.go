package domain

import (
	"maps"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/fd1az/naijatrade/internal/api"
)

// NairaCurrencies is the display order of the rate board.
var NairaCurrencies = []string{"USD", "GBP", "EUR"}

// wideGapPercent is the parallel premium above which the gap is flagged.
var wideGapPercent = decimal.NewFromInt(5)

// CurrencyRate is one foreign currency against the naira, at the CBN
// official rate and on the parallel market.
type CurrencyRate struct {
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	Flag          string          `json:"flag"`
	Official      decimal.Decimal `json:"official"`
	Parallel      decimal.Decimal `json:"parallel"`
	Buy           decimal.Decimal `json:"buy"`
	Sell          decimal.Decimal `json:"sell"`
	Spread        decimal.Decimal `json:"spread"`
	SpreadPercent decimal.Decimal `json:"spread_percent"`
}

// BuyRate is the dealer buy price, or the parallel rate when dealers did
// not quote one.
func (r CurrencyRate) BuyRate() decimal.Decimal {
	if r.Buy.IsZero() {
		return r.Parallel
	}
	return r.Buy
}

// SellRate is the dealer sell price, or the parallel rate.
func (r CurrencyRate) SellRate() decimal.Decimal {
	if r.Sell.IsZero() {
		return r.Parallel
	}
	return r.Sell
}

// WideGap reports a parallel premium over the official rate above 5%.
func (r CurrencyRate) WideGap() bool {
	return r.SpreadPercent.GreaterThan(wideGapPercent)
}

// NairaRates is the official and parallel rate board.
type NairaRates struct {
	Currencies map[string]CurrencyRate `json:"currencies"`
	Source     string                  `json:"source"`
	UpdatedAt  *api.Time               `json:"updated_at"`
}

// Ordered returns USD, GBP and EUR first, then any other currency by code.
// A rate without a code takes its map key.
func (n NairaRates) Ordered() []CurrencyRate {
	codes := make([]string, 0, len(n.Currencies))
	for _, code := range NairaCurrencies {
		if _, ok := n.Currencies[code]; ok {
			codes = append(codes, code)
		}
	}
	for _, code := range slices.Sorted(maps.Keys(n.Currencies)) {
		if !slices.Contains(NairaCurrencies, code) {
			codes = append(codes, code)
		}
	}

	out := make([]CurrencyRate, 0, len(codes))
	for _, code := range codes {
		r := n.Currencies[code]
		if r.Code == "" {
			r.Code = code
		}
		out = append(out, r)
	}
	return out
}
