package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/naijatrade/internal/logger"
)

const prefSelectedCrypto = "selected_crypto"

// PriceQuote is one exchange's last loaded price for the selected crypto.
type PriceQuote struct {
	Exchange string
	Crypto   string
	Buy      decimal.Decimal
	Sell     decimal.Decimal
}

// UIView is a copy of UI state.
type UIView struct {
	SelectedCrypto string
	Prices         []PriceQuote
	LastUpdate     time.Time
}

// UIState is shared between views that show the same crypto.
type UIState struct {
	mu        sync.RWMutex
	view      UIView
	prefs     Preferences
	observers []func(UIView)
	log       logger.LoggerInterface
}

// NewUIState starts with defaultCrypto selected. prefs may be nil.
func NewUIState(defaultCrypto string, prefs Preferences, log logger.LoggerInterface) *UIState {
	if defaultCrypto == "" {
		defaultCrypto = "USDT"
	}
	if log == nil {
		log = logger.Nop()
	}
	return &UIState{
		view:  UIView{SelectedCrypto: strings.ToUpper(defaultCrypto)},
		prefs: prefs,
		log:   log,
	}
}

// Restore applies a persisted crypto selection.
func (u *UIState) Restore(ctx context.Context) {
	if u.prefs == nil {
		return
	}
	v, ok, err := u.prefs.Preference(ctx, prefSelectedCrypto)
	if err != nil {
		u.log.Warn(ctx, "ui preferences not loaded", "error", err)
		return
	}
	if ok && v != "" {
		u.mu.Lock()
		u.view.SelectedCrypto = v
		u.mu.Unlock()
	}
}

// View returns the current state.
func (u *UIState) View() UIView {
	u.mu.RLock()
	defer u.mu.RUnlock()
	v := u.view
	v.Prices = append([]PriceQuote(nil), u.view.Prices...)
	return v
}

// SelectedCrypto returns the crypto symbol views should load.
func (u *UIState) SelectedCrypto() string {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.view.SelectedCrypto
}

// SelectCrypto changes the selection and clears prices for the old one.
func (u *UIState) SelectCrypto(ctx context.Context, crypto string) {
	crypto = strings.ToUpper(strings.TrimSpace(crypto))
	if crypto == "" {
		return
	}

	u.mu.Lock()
	if u.view.SelectedCrypto == crypto {
		u.mu.Unlock()
		return
	}
	u.view.SelectedCrypto = crypto
	u.view.Prices = nil
	u.view.LastUpdate = time.Time{}
	v := u.view
	u.mu.Unlock()

	if u.prefs != nil {
		if err := u.prefs.SetPreference(ctx, prefSelectedCrypto, crypto); err != nil {
			u.log.Warn(ctx, "crypto selection not persisted", "error", err)
		}
	}
	u.notify(v)
}

// SetPrices records the last loaded prices. Quotes for another crypto are
// ignored, so a board for a different crypto leaves the state untouched.
func (u *UIState) SetPrices(quotes []PriceQuote, at time.Time) {
	u.mu.Lock()
	kept := make([]PriceQuote, 0, len(quotes))
	for _, q := range quotes {
		if strings.EqualFold(q.Crypto, u.view.SelectedCrypto) {
			kept = append(kept, q)
		}
	}
	if len(kept) == 0 && len(quotes) > 0 {
		u.mu.Unlock()
		return
	}
	u.view.Prices = kept
	u.view.LastUpdate = at
	v := u.view
	v.Prices = append([]PriceQuote(nil), kept...)
	u.mu.Unlock()

	u.notify(v)
}

// OnChange registers an observer.
func (u *UIState) OnChange(fn func(UIView)) {
	u.mu.Lock()
	u.observers = append(u.observers, fn)
	u.mu.Unlock()
}

func (u *UIState) notify(v UIView) {
	u.mu.RLock()
	obs := append([]func(UIView){}, u.observers...)
	u.mu.RUnlock()
	for _, fn := range obs {
		fn(v)
	}
}
