package asset_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/naijatrade/internal/asset"
)

func TestAmount_Basic(t *testing.T) {
	half := asset.NewAmount(asset.BTC, decimal.RequireFromString("0.5"))

	if half.IsZero() {
		t.Error("expected non-zero amount")
	}
	if half.String() != "0.5 BTC" {
		t.Errorf("expected '0.5 BTC', got '%s'", half.String())
	}
}

func TestAmount_AddSub(t *testing.T) {
	one := asset.NewAmount(asset.USDT, decimal.NewFromInt(1))
	two := asset.NewAmount(asset.USDT, decimal.NewFromInt(2))

	sum, err := one.Add(two)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !sum.Decimal().Equal(decimal.NewFromInt(3)) {
		t.Errorf("expected 3, got %s", sum.Decimal())
	}

	if _, err := one.Sub(two); !errors.Is(err, asset.ErrNegativeResult) {
		t.Errorf("expected ErrNegativeResult, got %v", err)
	}
}

func TestAmount_CannotMixAssets(t *testing.T) {
	usdt := asset.NewAmount(asset.USDT, decimal.NewFromInt(1))
	btc := asset.NewAmount(asset.BTC, decimal.NewFromInt(1))

	if _, err := usdt.Add(btc); !errors.Is(err, asset.ErrAssetMismatch) {
		t.Errorf("expected ErrAssetMismatch, got %v", err)
	}
}

func TestParseString(t *testing.T) {
	tests := []struct {
		name    string
		asset   *asset.Asset
		in      string
		wantErr error
	}{
		{"naira ok", asset.NGN, "50000.25", nil},
		{"naira too precise", asset.NGN, "1.005", asset.ErrTooManyDecimals},
		{"btc satoshi", asset.BTC, "0.00000001", nil},
		{"negative", asset.USDT, "-1", asset.ErrNegativeAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := asset.ParseString(tt.asset, tt.in)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ParseString(%q) error = %v, want %v", tt.in, err, tt.wantErr)
			}
		})
	}
	if _, err := asset.ParseString(asset.NGN, "abc"); err == nil {
		t.Error("expected error for non-numeric input")
	}
}

func TestPrice_Convert(t *testing.T) {
	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	p := asset.NewPrice(asset.USDT, asset.NGN, decimal.NewFromInt(1580), at)

	got, err := p.Convert(asset.NewAmount(asset.USDT, decimal.NewFromInt(100)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.String() != "158000 NGN" {
		t.Errorf("expected '158000 NGN', got '%s'", got)
	}
	if p.Pair() != "USDT/NGN" {
		t.Errorf("unexpected pair %s", p.Pair())
	}
	if !p.IsStale(at.Add(2*time.Minute), time.Minute) {
		t.Error("expected stale price")
	}

	if _, err := p.Convert(asset.NewAmount(asset.BTC, decimal.NewFromInt(1))); !errors.Is(err, asset.ErrAssetMismatch) {
		t.Errorf("expected ErrAssetMismatch, got %v", err)
	}
}

func TestRegistry(t *testing.T) {
	r := asset.DefaultRegistry()

	if !r.Has("usdt") {
		t.Error("expected usdt to resolve case-insensitively")
	}
	cryptos := r.Cryptos()
	if len(cryptos) != 3 || cryptos[0].Symbol() != "BTC" {
		t.Errorf("unexpected cryptos %v", cryptos)
	}
	if asset.SupportedCrypto("NGN") {
		t.Error("NGN is fiat")
	}

	names := map[string]string{
		"binance_p2p":  "Binance P2P",
		"bybit_p2p":    "Bybit P2P",
		"quidax":       "Quidax",
		"new_exchange": "New Exchange",
		"roqqu":        "Roqqu",
	}
	for id, want := range names {
		if got := r.ExchangeName(id); got != want {
			t.Errorf("ExchangeName(%q) = %q, want %q", id, got, want)
		}
	}
	if len(r.Exchanges()) != len(asset.WellKnownExchanges) {
		t.Errorf("expected %d exchanges", len(asset.WellKnownExchanges))
	}

	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate register")
		}
	}()
	r.Register(asset.NewAsset("btc", asset.KindCrypto, 8))
}
