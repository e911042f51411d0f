package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/naijatrade/internal/validate"
)

// DefaultAlertSpread is the threshold new alerts start with.
var DefaultAlertSpread = decimal.NewFromInt(1)

// Alert notifies the user when an opportunity clears a spread threshold.
// An empty Crypto matches every crypto; empty exchange lists match every
// exchange.
type Alert struct {
	ID               string          `json:"id"`
	UserID           string          `json:"user_id"`
	Crypto           string          `json:"crypto,omitempty"`
	MinSpreadPercent decimal.Decimal `json:"min_spread_percent"`
	BuyExchanges     []string        `json:"buy_exchanges,omitempty"`
	SellExchanges    []string        `json:"sell_exchanges,omitempty"`
	IsActive         bool            `json:"is_active"`
	NotifyTelegram   bool            `json:"notify_telegram"`
	NotifyEmail      bool            `json:"notify_email"`
	CreatedAt        time.Time       `json:"created_at"`
}

// Matches reports whether o would trigger the alert.
func (a Alert) Matches(o Opportunity) bool {
	if !a.IsActive {
		return false
	}
	if a.Crypto != "" && !strings.EqualFold(a.Crypto, o.Crypto) {
		return false
	}
	if len(a.BuyExchanges) > 0 && !contains(a.BuyExchanges, o.BuyExchange) {
		return false
	}
	if len(a.SellExchanges) > 0 && !contains(a.SellExchanges, o.SellExchange) {
		return false
	}
	return o.GrossSpreadPercent.GreaterThanOrEqual(a.MinSpreadPercent)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// AlertForm creates an alert.
type AlertForm struct {
	Crypto           string          `json:"crypto,omitempty"`
	MinSpreadPercent decimal.Decimal `json:"min_spread_percent"`
	BuyExchanges     []string        `json:"buy_exchanges,omitempty"`
	SellExchanges    []string        `json:"sell_exchanges,omitempty"`
	NotifyTelegram   bool            `json:"notify_telegram"`
	NotifyEmail      bool            `json:"notify_email"`
}

// NewAlertForm starts with the default threshold and Telegram delivery.
func NewAlertForm() *AlertForm {
	return &AlertForm{MinSpreadPercent: DefaultAlertSpread, NotifyTelegram: true}
}

func (f *AlertForm) SetCrypto(c string) *AlertForm {
	f.Crypto = strings.ToUpper(strings.TrimSpace(c))
	return f
}

func (f *AlertForm) SetMinSpread(pct decimal.Decimal) *AlertForm {
	f.MinSpreadPercent = pct
	return f
}

func (f *AlertForm) SetExchanges(buy, sell []string) *AlertForm {
	f.BuyExchanges, f.SellExchanges = buy, sell
	return f
}

func (f *AlertForm) SetNotify(telegram, email bool) *AlertForm {
	f.NotifyTelegram, f.NotifyEmail = telegram, email
	return f
}

// Validate rejects negative thresholds and alerts that notify nobody.
func (f *AlertForm) Validate() error {
	v := validate.New("alert")
	v.Check("min_spread_percent", !f.MinSpreadPercent.IsNegative(), "must not be negative")
	v.Check("notify_telegram", f.NotifyTelegram || f.NotifyEmail, "or notify_email must be enabled")
	if f.Crypto != "" {
		v.OneOf("crypto", f.Crypto, Cryptos...)
	}
	return v.Err()
}

// AlertPatch updates an alert. Nil fields are untouched.
type AlertPatch struct {
	Crypto           *string          `json:"crypto,omitempty"`
	MinSpreadPercent *decimal.Decimal `json:"min_spread_percent,omitempty"`
	BuyExchanges     []string         `json:"buy_exchanges,omitempty"`
	SellExchanges    []string         `json:"sell_exchanges,omitempty"`
	IsActive         *bool            `json:"is_active,omitempty"`
	NotifyTelegram   *bool            `json:"notify_telegram,omitempty"`
	NotifyEmail      *bool            `json:"notify_email,omitempty"`
}

func (p *AlertPatch) SetActive(on bool) *AlertPatch {
	p.IsActive = &on
	return p
}

func (p *AlertPatch) SetMinSpread(pct decimal.Decimal) *AlertPatch {
	p.MinSpreadPercent = &pct
	return p
}

func (p *AlertPatch) SetCrypto(c string) *AlertPatch {
	c = strings.ToUpper(c)
	p.Crypto = &c
	return p
}

// Empty reports whether the patch changes nothing.
func (p AlertPatch) Empty() bool {
	return p.Crypto == nil && p.MinSpreadPercent == nil && p.BuyExchanges == nil &&
		p.SellExchanges == nil && p.IsActive == nil && p.NotifyTelegram == nil && p.NotifyEmail == nil
}
