package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	arbDomain "github.com/fd1az/naijatrade/business/arbscanner/domain"
	insightsDomain "github.com/fd1az/naijatrade/business/insights/domain"
	ngxDomain "github.com/fd1az/naijatrade/business/ngxradar/domain"
	"github.com/fd1az/naijatrade/internal/apperror"
	"github.com/fd1az/naijatrade/internal/config"
)

func TestPrintReport(t *testing.T) {
	color.NoColor = true

	buy := arbDomain.ExchangePrice{Exchange: "binance_p2p", BuyPrice: decimal.NewFromInt(1580), SellPrice: decimal.NewFromInt(1575)}
	sell := arbDomain.ExchangePrice{Exchange: "quidax", BuyPrice: decimal.NewFromInt(1600), SellPrice: decimal.NewFromInt(1598)}

	r := marketReport{
		Crypto:  "USDT",
		TakenAt: time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC),
		Prices: arbDomain.PriceBoard{
			Crypto:    "USDT",
			Exchanges: []arbDomain.ExchangePrice{buy, sell},
			BestBuy:   &buy,
			BestSell:  &sell,
		},
		Opportunities: arbDomain.OpportunityList{Opportunities: []arbDomain.Opportunity{{
			Crypto:             "USDT",
			BuyExchange:        "binance_p2p",
			SellExchange:       "quidax",
			GrossSpreadPercent: decimal.RequireFromString("1.14"),
			NetProfit:          decimal.NewFromInt(750),
			IsProfitable:       true,
		}}},
		P2P: insightsDomain.ComparisonOverview{
			Cryptos: []string{"USDT"},
			Comparisons: map[string]insightsDomain.ComparisonSummary{
				"USDT": {MaxSpreadPercent: decimal.RequireFromString("1.2")},
			},
		},
		NGXErr: apperror.New(apperror.CodeServiceUnavailable, apperror.WithMessage("NGX data is delayed.")),
	}

	var buf bytes.Buffer
	printReport(&buf, r)
	out := buf.String()

	assert.Contains(t, out, "2025-03-01 09:30:00")
	assert.Contains(t, out, "PRICES (USDT/NGN)")
	assert.Contains(t, out, "Binance P2P")
	assert.Contains(t, out, "Binance P2P → Quidax")
	assert.Contains(t, out, "1 of 1 routes clear fees.")
	assert.Contains(t, out, "Widest spread: USDT")
	assert.Contains(t, out, "NGX data is delayed.")
	assert.NotContains(t, out, "ASI ")
}

func TestPrintReport_EmptySections(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	printReport(&buf, marketReport{Crypto: "BTC", NGX: ngxDomain.MarketSummary{}})
	out := buf.String()

	assert.Contains(t, out, "No exchange prices yet.")
	assert.Contains(t, out, "No opportunities right now.")
	assert.Contains(t, out, "No P2P data yet.")
}

func TestAPIPinger(t *testing.T) {
	var healthy atomic.Bool
	healthy.Store(true)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			http.NotFound(w, r)
			return
		}
		if !healthy.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	}))
	defer srv.Close()

	pinger, err := newAPIPinger(config.APIConfig{BaseURL: srv.URL + "/api/v1", Timeout: time.Second}, "test")
	require.NoError(t, err)

	require.NoError(t, pinger.Ping(context.Background()))

	healthy.Store(false)
	err = pinger.Ping(context.Background())
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeServiceUnavailable))
}
