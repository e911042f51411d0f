package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/naijatrade/internal/validate"
)

// AlertType is what a stock alert watches.
type AlertType string

const (
	AlertPriceAbove    AlertType = "price_above"
	AlertPriceBelow    AlertType = "price_below"
	AlertPercentChange AlertType = "percent_change"
)

// Label is the short description shown next to the target.
func (t AlertType) Label() string {
	switch t {
	case AlertPriceAbove:
		return "Price above"
	case AlertPriceBelow:
		return "Price below"
	case AlertPercentChange:
		return "Change exceeds"
	}
	return string(t)
}

// StockAlert fires once when its condition is met.
type StockAlert struct {
	ID             string              `json:"id"`
	StockSymbol    string              `json:"stock_symbol"`
	StockName      string              `json:"stock_name"`
	AlertType      AlertType           `json:"alert_type"`
	TargetValue    decimal.Decimal     `json:"target_value"`
	CurrentPrice   decimal.NullDecimal `json:"current_price"`
	IsActive       bool                `json:"is_active"`
	IsTriggered    bool                `json:"is_triggered"`
	TriggeredAt    *time.Time          `json:"triggered_at,omitempty"`
	NotifyTelegram bool                `json:"notify_telegram"`
	NotifyEmail    bool                `json:"notify_email"`
	CreatedAt      time.Time           `json:"created_at"`
}

// Met reports whether the alert's condition holds for price, given the
// day's change percent.
func (a StockAlert) Met(price, changePercent decimal.Decimal) bool {
	switch a.AlertType {
	case AlertPriceAbove:
		return price.GreaterThanOrEqual(a.TargetValue)
	case AlertPriceBelow:
		return price.LessThanOrEqual(a.TargetValue)
	case AlertPercentChange:
		return changePercent.Abs().GreaterThanOrEqual(a.TargetValue.Abs())
	}
	return false
}

// StockAlertForm creates a stock alert.
type StockAlertForm struct {
	Symbol         string          `json:"symbol"`
	AlertType      AlertType       `json:"alert_type"`
	TargetValue    decimal.Decimal `json:"target_value"`
	NotifyTelegram bool            `json:"notify_telegram"`
	NotifyEmail    bool            `json:"notify_email"`
}

// NewStockAlertForm starts with Telegram delivery.
func NewStockAlertForm(symbol string, t AlertType, target decimal.Decimal) *StockAlertForm {
	return &StockAlertForm{Symbol: NormalizeSymbol(symbol), AlertType: t, TargetValue: target, NotifyTelegram: true}
}

func (f *StockAlertForm) SetNotify(telegram, email bool) *StockAlertForm {
	f.NotifyTelegram, f.NotifyEmail = telegram, email
	return f
}

// Validate requires a symbol, a known type and a usable target.
func (f *StockAlertForm) Validate() error {
	v := validate.New("stock_alert")
	v.NotBlank("symbol", f.Symbol)
	v.Required("alert_type", f.AlertType != "")
	v.OneOf("alert_type", string(f.AlertType), string(AlertPriceAbove), string(AlertPriceBelow), string(AlertPercentChange))
	if f.AlertType == AlertPercentChange {
		v.Check("target_value", !f.TargetValue.IsZero(), "must not be zero")
	} else {
		v.Positive("target_value", f.TargetValue)
	}
	return v.Err()
}
