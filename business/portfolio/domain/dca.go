package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/naijatrade/internal/api"
	"github.com/fd1az/naijatrade/internal/validate"
)

// Frequency is how often a plan buys.
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

// Frequencies lists the accepted values in display order.
var Frequencies = []string{string(FrequencyDaily), string(FrequencyWeekly), string(FrequencyMonthly)}

// Next is the buy date that follows from.
func (f Frequency) Next(from time.Time) time.Time {
	switch f {
	case FrequencyDaily:
		return from.AddDate(0, 0, 1)
	case FrequencyMonthly:
		return from.AddDate(0, 1, 0)
	default:
		return from.AddDate(0, 0, 7)
	}
}

// CryptoAmountScale is the precision crypto amounts are rounded to.
const CryptoAmountScale = 8

// Entry is one recorded purchase.
type Entry struct {
	ID              string          `json:"id"`
	PlanID          string          `json:"plan_id"`
	Date            api.Date        `json:"date"`
	AmountNGN       decimal.Decimal `json:"amount_ngn"`
	PricePerUnitNGN decimal.Decimal `json:"price_per_unit_ngn"`
	CryptoAmount    decimal.Decimal `json:"crypto_amount"`
	Exchange        string          `json:"exchange,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// Plan is a recurring buy schedule and its recorded entries. Totals are
// filled by the server when it returns a single plan.
type Plan struct {
	ID               string              `json:"id"`
	UserID           string              `json:"user_id"`
	Name             string              `json:"name"`
	Crypto           string              `json:"crypto"`
	TargetAmountNGN  decimal.NullDecimal `json:"target_amount_ngn"`
	Frequency        Frequency           `json:"frequency"`
	StartDate        *api.Date           `json:"start_date,omitempty"`
	IsActive         bool                `json:"is_active"`
	CreatedAt        time.Time           `json:"created_at"`
	Entries          []Entry             `json:"entries"`
	TotalInvestedNGN decimal.NullDecimal `json:"total_invested_ngn"`
	TotalCrypto      decimal.NullDecimal `json:"total_crypto"`
	AvgCostNGN       decimal.NullDecimal `json:"avg_cost_ngn"`
	CurrentPriceNGN  decimal.NullDecimal `json:"current_price_ngn"`
	CurrentValueNGN  decimal.NullDecimal `json:"current_value_ngn"`
	PnLNGN           decimal.NullDecimal `json:"pnl_ngn"`
	PnLPercent       decimal.NullDecimal `json:"pnl_percent"`
}

// PlanStats is the average-cost summary of a plan's entries.
type PlanStats struct {
	Invested    decimal.Decimal
	Crypto      decimal.Decimal
	AvgCost     decimal.Decimal
	Value       decimal.NullDecimal
	PnL         decimal.NullDecimal
	PnLPercent  decimal.NullDecimal
	TargetShare decimal.NullDecimal
}

// Stats computes the plan's totals from its entries, valued at current
// when it is valid.
func (p Plan) Stats(current decimal.NullDecimal) PlanStats {
	var st PlanStats
	for _, e := range p.Entries {
		st.Invested = st.Invested.Add(e.AmountNGN)
		st.Crypto = st.Crypto.Add(e.CryptoAmount)
	}
	if st.Crypto.IsPositive() {
		st.AvgCost = st.Invested.Div(st.Crypto).Round(2)
	}
	if current.Valid {
		value := st.Crypto.Mul(current.Decimal)
		pnl := value.Sub(st.Invested)
		st.Value = decimal.NewNullDecimal(value.Round(2))
		st.PnL = decimal.NewNullDecimal(pnl.Round(2))
		if st.Invested.IsPositive() {
			st.PnLPercent = decimal.NewNullDecimal(pnl.Div(st.Invested).Mul(hundred).Round(2))
		}
	}
	if p.TargetAmountNGN.Valid && p.TargetAmountNGN.Decimal.IsPositive() {
		st.TargetShare = decimal.NewNullDecimal(st.Invested.Div(p.TargetAmountNGN.Decimal).Mul(hundred).Round(1))
	}
	return st
}

// LastEntry is the most recent purchase by date.
func (p Plan) LastEntry() (Entry, bool) {
	var last Entry
	found := false
	for _, e := range p.Entries {
		if !found || e.Date.After(last.Date.Time) {
			last, found = e, true
		}
	}
	return last, found
}

// PlanList wraps the plans endpoint.
type PlanList struct {
	Plans []Plan `json:"plans"`
}

// PlanForm creates a plan.
type PlanForm struct {
	Name            string           `json:"name"`
	Crypto          string           `json:"crypto"`
	TargetAmountNGN *decimal.Decimal `json:"target_amount_ngn,omitempty"`
	Frequency       Frequency        `json:"frequency"`
	StartDate       *api.Date        `json:"start_date,omitempty"`
}

// NewPlanForm starts a weekly plan.
func NewPlanForm(name, crypto string) *PlanForm {
	return &PlanForm{Name: strings.TrimSpace(name), Crypto: strings.ToUpper(strings.TrimSpace(crypto)), Frequency: FrequencyWeekly}
}

func (f *PlanForm) SetTarget(v decimal.Decimal) *PlanForm {
	f.TargetAmountNGN = &v
	return f
}

func (f *PlanForm) SetFrequency(v Frequency) *PlanForm {
	f.Frequency = v
	return f
}

func (f *PlanForm) SetStartDate(t time.Time) *PlanForm {
	d := api.NewDate(t)
	f.StartDate = &d
	return f
}

// Validate requires a name and a crypto.
func (f *PlanForm) Validate() error {
	v := validate.New("dca_plan")
	v.NotBlank("name", f.Name)
	v.NotBlank("crypto", f.Crypto)
	v.OneOf("crypto", f.Crypto, Cryptos...)
	v.OneOf("frequency", string(f.Frequency), Frequencies...)
	if f.TargetAmountNGN != nil {
		v.Positive("target_amount_ngn", *f.TargetAmountNGN)
	}
	return v.Err()
}

// PlanPatch updates a plan. Nil fields are untouched.
type PlanPatch struct {
	Name            *string          `json:"name,omitempty"`
	TargetAmountNGN *decimal.Decimal `json:"target_amount_ngn,omitempty"`
	Frequency       *Frequency       `json:"frequency,omitempty"`
	IsActive        *bool            `json:"is_active,omitempty"`
}

func (p *PlanPatch) SetName(v string) *PlanPatch {
	p.Name = &v
	return p
}

func (p *PlanPatch) SetTarget(v decimal.Decimal) *PlanPatch {
	p.TargetAmountNGN = &v
	return p
}

func (p *PlanPatch) SetFrequency(v Frequency) *PlanPatch {
	p.Frequency = &v
	return p
}

func (p *PlanPatch) SetActive(v bool) *PlanPatch {
	p.IsActive = &v
	return p
}

// Validate checks the fields that are set.
func (p PlanPatch) Validate() error {
	v := validate.New("dca_plan")
	if p.Name != nil {
		v.NotBlank("name", *p.Name)
	}
	if p.Frequency != nil {
		v.OneOf("frequency", string(*p.Frequency), Frequencies...)
	}
	if p.TargetAmountNGN != nil {
		v.Positive("target_amount_ngn", *p.TargetAmountNGN)
	}
	return v.Err()
}

// EntryForm records a purchase.
type EntryForm struct {
	Date            api.Date        `json:"date"`
	AmountNGN       decimal.Decimal `json:"amount_ngn"`
	PricePerUnitNGN decimal.Decimal `json:"price_per_unit_ngn"`
	CryptoAmount    decimal.Decimal `json:"crypto_amount"`
	Exchange        string          `json:"exchange,omitempty"`
	Notes           string          `json:"notes,omitempty"`
}

// NewEntryForm records spending amount naira at price on day. The crypto
// amount is derived from the two.
func NewEntryForm(day time.Time, amount, price decimal.Decimal) *EntryForm {
	f := &EntryForm{Date: api.NewDate(day), AmountNGN: amount, PricePerUnitNGN: price}
	if price.IsPositive() {
		f.CryptoAmount = amount.Div(price).Round(CryptoAmountScale)
	}
	return f
}

func (f *EntryForm) SetCryptoAmount(v decimal.Decimal) *EntryForm {
	f.CryptoAmount = v
	return f
}

func (f *EntryForm) SetExchange(v string) *EntryForm {
	f.Exchange = strings.TrimSpace(v)
	return f
}

func (f *EntryForm) SetNotes(v string) *EntryForm {
	f.Notes = strings.TrimSpace(v)
	return f
}

// Validate requires a date and positive amounts.
func (f *EntryForm) Validate() error {
	return validate.New("dca_entry").
		Required("date", !f.Date.IsZero()).
		Positive("amount_ngn", f.AmountNGN).
		Positive("price_per_unit_ngn", f.PricePerUnitNGN).
		Positive("crypto_amount", f.CryptoAmount).
		Err()
}
