// Package domain contains crypto holdings and dollar-cost-averaging plans.
package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/naijatrade/internal/store"
	"github.com/fd1az/naijatrade/internal/validate"
)

// Cryptos that can be held or averaged into.
var Cryptos = []string{"USDT", "BTC", "ETH"}

// DefaultPortfolioName names a portfolio created without one.
const DefaultPortfolioName = "My Portfolio"

var hundred = decimal.NewFromInt(100)

// Created is the reference the server returns for a new or updated record.
type Created struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Holding is an amount of crypto bought at a naira price. The valuation
// fields are null when the server has no live price.
type Holding struct {
	ID              string              `json:"id"`
	PortfolioID     string              `json:"portfolio_id"`
	Crypto          string              `json:"crypto"`
	Amount          decimal.Decimal     `json:"amount"`
	BuyPriceNGN     decimal.Decimal     `json:"buy_price_ngn"`
	Notes           string              `json:"notes,omitempty"`
	AddedAt         time.Time           `json:"added_at"`
	CurrentPriceNGN decimal.NullDecimal `json:"current_price_ngn"`
	CurrentValueNGN decimal.NullDecimal `json:"current_value_ngn"`
	CostBasisNGN    decimal.NullDecimal `json:"cost_basis_ngn"`
	PnLNGN          decimal.NullDecimal `json:"pnl_ngn"`
	PnLPercent      decimal.NullDecimal `json:"pnl_percent"`
}

// CostBasis is amount times buy price.
func (h Holding) CostBasis() decimal.Decimal {
	return h.Amount.Mul(h.BuyPriceNGN)
}

// Priced values the holding at price.
func (h Holding) Priced(price decimal.Decimal) Holding {
	cost := h.CostBasis()
	value := h.Amount.Mul(price)
	pnl := value.Sub(cost)

	h.CurrentPriceNGN = decimal.NewNullDecimal(price)
	h.CurrentValueNGN = decimal.NewNullDecimal(value)
	h.CostBasisNGN = decimal.NewNullDecimal(cost)
	h.PnLNGN = decimal.NewNullDecimal(pnl)
	h.PnLPercent = decimal.NullDecimal{}
	if cost.IsPositive() {
		h.PnLPercent = decimal.NewNullDecimal(pnl.Div(cost).Mul(hundred).Round(2))
	}
	return h
}

// Portfolio is the caller's single portfolio.
type Portfolio struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	Holdings  []Holding `json:"holdings"`
}

// Allocation is one crypto's share of the portfolio value.
type Allocation struct {
	Crypto  string          `json:"crypto"`
	Value   decimal.Decimal `json:"value"`
	Percent decimal.Decimal `json:"percent"`
}

// Summary is the portfolio with its totals.
type Summary struct {
	Portfolio       Portfolio       `json:"portfolio"`
	TotalValueNGN   decimal.Decimal `json:"total_value_ngn"`
	TotalCostNGN    decimal.Decimal `json:"total_cost_ngn"`
	TotalPnLNGN     decimal.Decimal `json:"total_pnl_ngn"`
	TotalPnLPercent decimal.Decimal `json:"total_pnl_percent"`
	Allocation      []Allocation    `json:"allocation"`
}

// Empty reports whether there is nothing to show.
func (s Summary) Empty() bool {
	return len(s.Portfolio.Holdings) == 0
}

// Revalue reprices holdings from the last loaded exchange quotes, using the
// best sell price per crypto, and recomputes the totals. Holdings without a
// quote keep the server's valuation.
func (s Summary) Revalue(quotes []store.PriceQuote) Summary {
	best := make(map[string]decimal.Decimal)
	for _, q := range quotes {
		c := strings.ToUpper(q.Crypto)
		if cur, ok := best[c]; !ok || q.Sell.GreaterThan(cur) {
			best[c] = q.Sell
		}
	}

	out := s
	out.Portfolio.Holdings = make([]Holding, len(s.Portfolio.Holdings))
	for i, h := range s.Portfolio.Holdings {
		if p, ok := best[strings.ToUpper(h.Crypto)]; ok && p.IsPositive() {
			h = h.Priced(p)
		}
		out.Portfolio.Holdings[i] = h
	}
	return out.totals()
}

func (s Summary) totals() Summary {
	s.TotalValueNGN, s.TotalCostNGN = decimal.Zero, decimal.Zero
	for _, h := range s.Portfolio.Holdings {
		s.TotalCostNGN = s.TotalCostNGN.Add(h.CostBasis())
		if h.CurrentValueNGN.Valid {
			s.TotalValueNGN = s.TotalValueNGN.Add(h.CurrentValueNGN.Decimal)
		}
	}
	s.TotalPnLNGN = s.TotalValueNGN.Sub(s.TotalCostNGN)
	s.TotalPnLPercent = decimal.Zero
	if s.TotalCostNGN.IsPositive() {
		s.TotalPnLPercent = s.TotalPnLNGN.Div(s.TotalCostNGN).Mul(hundred).Round(2)
	}

	s.Allocation = make([]Allocation, 0, len(s.Portfolio.Holdings))
	for _, h := range s.Portfolio.Holdings {
		v := h.CostBasis()
		if h.CurrentValueNGN.Valid {
			v = h.CurrentValueNGN.Decimal
		}
		pct := decimal.Zero
		if s.TotalValueNGN.IsPositive() {
			pct = v.Div(s.TotalValueNGN).Mul(hundred).Round(2)
		}
		s.Allocation = append(s.Allocation, Allocation{Crypto: h.Crypto, Value: v, Percent: pct})
	}
	return s
}

// HoldingForm adds a holding.
type HoldingForm struct {
	Crypto      string          `json:"crypto"`
	Amount      decimal.Decimal `json:"amount"`
	BuyPriceNGN decimal.Decimal `json:"buy_price_ngn"`
	Notes       string          `json:"notes,omitempty"`
}

// NewHoldingForm starts a holding of amount crypto bought at price.
func NewHoldingForm(crypto string, amount, price decimal.Decimal) *HoldingForm {
	return &HoldingForm{Crypto: strings.ToUpper(strings.TrimSpace(crypto)), Amount: amount, BuyPriceNGN: price}
}

func (f *HoldingForm) SetNotes(n string) *HoldingForm {
	f.Notes = strings.TrimSpace(n)
	return f
}

// Validate requires a crypto, a positive amount and a positive price.
func (f *HoldingForm) Validate() error {
	return validate.New("holding").
		NotBlank("crypto", f.Crypto).
		OneOf("crypto", f.Crypto, Cryptos...).
		Positive("amount", f.Amount).
		Positive("buy_price_ngn", f.BuyPriceNGN).
		Err()
}

// HoldingPatch updates a holding. Nil fields are untouched.
type HoldingPatch struct {
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	BuyPriceNGN *decimal.Decimal `json:"buy_price_ngn,omitempty"`
	Notes       *string          `json:"notes,omitempty"`
}

func (p *HoldingPatch) SetAmount(v decimal.Decimal) *HoldingPatch {
	p.Amount = &v
	return p
}

func (p *HoldingPatch) SetBuyPrice(v decimal.Decimal) *HoldingPatch {
	p.BuyPriceNGN = &v
	return p
}

func (p *HoldingPatch) SetNotes(v string) *HoldingPatch {
	p.Notes = &v
	return p
}

// Validate rejects non-positive amounts and prices.
func (p HoldingPatch) Validate() error {
	v := validate.New("holding")
	if p.Amount != nil {
		v.Positive("amount", *p.Amount)
	}
	if p.BuyPriceNGN != nil {
		v.Positive("buy_price_ngn", *p.BuyPriceNGN)
	}
	return v.Err()
}
