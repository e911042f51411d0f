package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_SetAuthAndLogout(t *testing.T) {
	ctx := context.Background()
	s := NewSession(nil, nil)

	var seen []bool
	s.OnChange(func(snap Snapshot) { seen = append(seen, snap.Authenticated()) })

	_, ok := s.AccessToken()
	assert.False(t, ok)

	require.NoError(t, s.SetAuth(ctx, Profile{ID: "u-1", Email: "ada@example.com", FirstName: "Ada"}, Tokens{AccessToken: "a1", RefreshToken: "r1"}))
	tok, ok := s.AccessToken()
	assert.True(t, ok)
	assert.Equal(t, "a1", tok)
	assert.Equal(t, "Ada", s.Snapshot().Profile.DisplayName())
	assert.False(t, s.Snapshot().IsAdmin())

	require.NoError(t, s.SetTokens(ctx, Tokens{AccessToken: "a2", RefreshToken: "r2"}))
	assert.Equal(t, "ada@example.com", s.Snapshot().Profile.Email)
	rt, _ := s.RefreshToken()
	assert.Equal(t, "r2", rt)

	s.Logout(ctx)
	s.Logout(ctx)
	assert.False(t, s.Snapshot().Authenticated())
	assert.Nil(t, s.Snapshot().Profile)
	assert.Equal(t, []bool{true, true, false}, seen)
}

func TestSession_RestoreFromSQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "session.db")

	p, err := OpenSQLite(path)
	require.NoError(t, err)
	s := NewSession(p, nil)
	require.NoError(t, s.SetAuth(ctx, Profile{ID: "u-7", Email: "admin@naijatrade.test", IsAdmin: true}, Tokens{AccessToken: "tok", RefreshToken: "ref"}))
	require.NoError(t, p.Close())

	p2, err := OpenSQLite(path)
	require.NoError(t, err)
	defer p2.Close()

	s2 := NewSession(p2, nil)
	ok, err := s2.Restore(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	snap := s2.Snapshot()
	assert.Equal(t, "tok", snap.Tokens.AccessToken)
	assert.Equal(t, "ref", snap.Tokens.RefreshToken)
	require.NotNil(t, snap.Profile)
	assert.Equal(t, "u-7", snap.Profile.ID)
	assert.True(t, snap.IsAdmin())

	s2.Logout(ctx)
	s3 := NewSession(p2, nil)
	ok, err = s3.Restore(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLitePersister_Preferences(t *testing.T) {
	ctx := context.Background()
	p, err := OpenSQLite(filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	defer p.Close()

	_, ok, err := p.Preference(ctx, prefSelectedCrypto)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, p.SetPreference(ctx, prefSelectedCrypto, "BTC"))
	require.NoError(t, p.SetPreference(ctx, prefSelectedCrypto, "ETH"))
	v, ok, err := p.Preference(ctx, prefSelectedCrypto)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "ETH", v)
}

func TestUIState(t *testing.T) {
	ctx := context.Background()
	prefs := NewMemoryPersister()
	u := NewUIState("", prefs, nil)
	assert.Equal(t, "USDT", u.SelectedCrypto())

	var changes int
	u.OnChange(func(UIView) { changes++ })

	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	u.SetPrices([]PriceQuote{
		{Exchange: "binance_p2p", Crypto: "USDT", Buy: decimal.RequireFromString("1580.5"), Sell: decimal.RequireFromString("1575")},
		{Exchange: "bybit_p2p", Crypto: "BTC", Buy: decimal.RequireFromString("150000000")},
	}, at)

	v := u.View()
	require.Len(t, v.Prices, 1)
	assert.Equal(t, "binance_p2p", v.Prices[0].Exchange)
	assert.Equal(t, at, v.LastUpdate)

	u.SelectCrypto(ctx, " btc ")
	u.SelectCrypto(ctx, "BTC")
	v = u.View()
	assert.Equal(t, "BTC", v.SelectedCrypto)
	assert.Empty(t, v.Prices)
	assert.True(t, v.LastUpdate.IsZero())
	assert.Equal(t, 2, changes)

	u.SetPrices([]PriceQuote{{Exchange: "quidax", Crypto: "ETH"}}, at)
	assert.True(t, u.View().LastUpdate.IsZero())
	assert.Equal(t, 2, changes)

	restored := NewUIState("USDT", prefs, nil)
	restored.Restore(ctx)
	assert.Equal(t, "BTC", restored.SelectedCrypto())
}
