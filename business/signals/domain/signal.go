// Package domain contains the trading signal types.
package domain

import (
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/naijatrade/internal/api"
	"github.com/fd1az/naijatrade/internal/validate"
)

// Status is the lifecycle state of a signal.
type Status string

const (
	StatusOpen      Status = "open"
	StatusClosed    Status = "closed"
	StatusCancelled Status = "cancelled"
)

// Result is the outcome recorded when a signal closes.
type Result string

const (
	ResultWin       Result = "win"
	ResultLoss      Result = "loss"
	ResultBreakeven Result = "breakeven"
)

// Direction of the trade.
type Direction string

const (
	DirectionLong  Direction = "long"
	DirectionShort Direction = "short"
	DirectionBuy   Direction = "buy"
	DirectionSell  Direction = "sell"
)

// AssetType is what the signal trades.
type AssetType string

const (
	AssetCrypto AssetType = "crypto"
	AssetStock  AssetType = "stock"
)

// Signal is a published trading call.
type Signal struct {
	ID            string           `json:"id"`
	AssetType     AssetType        `json:"asset_type"`
	AssetSymbol   string           `json:"asset_symbol"`
	Direction     Direction        `json:"direction"`
	EntryPrice    decimal.Decimal  `json:"entry_price"`
	TargetPrice   *decimal.Decimal `json:"target_price,omitempty"`
	StopLoss      *decimal.Decimal `json:"stop_loss,omitempty"`
	Reasoning     string           `json:"reasoning,omitempty"`
	Timeframe     string           `json:"timeframe,omitempty"`
	Status        Status           `json:"status"`
	Result        Result           `json:"result,omitempty"`
	ResultPercent *decimal.Decimal `json:"result_percent,omitempty"`
	IsPremium     bool             `json:"is_premium"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// SignalList is the collection envelope.
type SignalList struct {
	Signals []Signal `json:"signals"`
	Total   int      `json:"total"`
}

// Has reports whether id is in the page.
func (l SignalList) Has(id string) bool {
	for _, s := range l.Signals {
		if s.ID == id {
			return true
		}
	}
	return false
}

// Stats summarises signal performance.
type Stats struct {
	TotalSignals  int             `json:"total_signals"`
	OpenSignals   int             `json:"open_signals"`
	ClosedSignals int             `json:"closed_signals"`
	WinRate       decimal.Decimal `json:"win_rate"`
	AvgReturn     decimal.Decimal `json:"avg_return"`
}

// Filter selects a page of signals.
type Filter struct {
	Status    Status
	AssetType AssetType
	Limit     int
	Offset    int
}

// Values encodes the filter as query parameters.
func (f Filter) Values() url.Values {
	return api.NewParams().
		String("status", string(f.Status)).
		String("asset_type", string(f.AssetType)).
		Int("limit", f.Limit).
		Int("offset", f.Offset).
		Values()
}

// Form is the create payload.
type Form struct {
	assetType   AssetType
	assetSymbol string
	direction   Direction
	entryPrice  *decimal.Decimal
	targetPrice *decimal.Decimal
	stopLoss    *decimal.Decimal
	reasoning   string
	timeframe   string
	isPremium   bool
}

// NewForm starts a crypto signal form.
func NewForm() *Form {
	return &Form{assetType: AssetCrypto}
}

func (f *Form) SetAssetType(t AssetType) *Form { f.assetType = t; return f }

// SetAssetSymbol stores the symbol upper-cased.
func (f *Form) SetAssetSymbol(s string) *Form {
	f.assetSymbol = strings.ToUpper(strings.TrimSpace(s))
	return f
}

func (f *Form) SetDirection(d Direction) *Form         { f.direction = d; return f }
func (f *Form) SetEntryPrice(p decimal.Decimal) *Form  { f.entryPrice = &p; return f }
func (f *Form) SetTargetPrice(p decimal.Decimal) *Form { f.targetPrice = &p; return f }
func (f *Form) SetStopLoss(p decimal.Decimal) *Form    { f.stopLoss = &p; return f }
func (f *Form) SetReasoning(r string) *Form            { f.reasoning = r; return f }
func (f *Form) SetTimeframe(t string) *Form            { f.timeframe = t; return f }
func (f *Form) SetPremium(p bool) *Form                { f.isPremium = p; return f }

// Validate checks required fields.
func (f *Form) Validate() error {
	v := validate.New("signal").
		NotBlank("asset_symbol", f.assetSymbol).
		Required("entry_price", f.entryPrice != nil).
		Required("direction", f.direction != "")
	if f.entryPrice != nil {
		v.Positive("entry_price", *f.entryPrice)
	}
	return v.Err()
}

// Payload is the request body.
func (f *Form) Payload() map[string]any {
	body := map[string]any{
		"asset_type":   f.assetType,
		"asset_symbol": f.assetSymbol,
		"direction":    f.direction,
		"is_premium":   f.isPremium,
	}
	if f.entryPrice != nil {
		body["entry_price"] = *f.entryPrice
	}
	if f.targetPrice != nil {
		body["target_price"] = *f.targetPrice
	}
	if f.stopLoss != nil {
		body["stop_loss"] = *f.stopLoss
	}
	if f.reasoning != "" {
		body["reasoning"] = f.reasoning
	}
	if f.timeframe != "" {
		body["timeframe"] = f.timeframe
	}
	return body
}

// Patch is a partial update. Unset fields are left alone by the server.
type Patch struct {
	Status        *Status          `json:"status,omitempty"`
	Result        *Result          `json:"result,omitempty"`
	ResultPercent *decimal.Decimal `json:"result_percent,omitempty"`
	TargetPrice   *decimal.Decimal `json:"target_price,omitempty"`
	StopLoss      *decimal.Decimal `json:"stop_loss,omitempty"`
	Reasoning     *string          `json:"reasoning,omitempty"`
}

func (p *Patch) SetStatus(s Status) *Patch { p.Status = &s; return p }
func (p *Patch) SetResult(r Result) *Patch { p.Result = &r; return p }
func (p *Patch) SetResultPercent(v decimal.Decimal) *Patch {
	p.ResultPercent = &v
	return p
}
func (p *Patch) SetTargetPrice(v decimal.Decimal) *Patch { p.TargetPrice = &v; return p }
func (p *Patch) SetStopLoss(v decimal.Decimal) *Patch    { p.StopLoss = &v; return p }
func (p *Patch) SetReasoning(r string) *Patch            { p.Reasoning = &r; return p }

// Empty reports whether nothing is set.
func (p Patch) Empty() bool {
	return p.Status == nil && p.Result == nil && p.ResultPercent == nil &&
		p.TargetPrice == nil && p.StopLoss == nil && p.Reasoning == nil
}
