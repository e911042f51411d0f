// Package domain contains the subscription and payment model.
package domain

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/naijatrade/internal/validate"
)

// Product is a paid product line.
type Product string

const (
	ProductArbScanner Product = "arbscanner"
	ProductNGXRadar   Product = "ngxradar"
	ProductBundle     Product = "bundle"
)

// Products lists every product the backend accepts.
var Products = []Product{ProductArbScanner, ProductNGXRadar, ProductBundle}

// Valid reports whether p is a known product.
func (p Product) Valid() bool {
	for _, known := range Products {
		if p == known {
			return true
		}
	}
	return false
}

// Plan is a subscription tier.
type Plan string

const (
	PlanFree     Plan = "free"
	PlanStarter  Plan = "starter"
	PlanBasic    Plan = "basic"
	PlanPro      Plan = "pro"
	PlanBusiness Plan = "business"
	PlanInvestor Plan = "investor"
)

// Rank orders plans across products. Starter and basic are the entry paid
// tiers, business and investor the top ones. Unknown plans rank below free.
func (p Plan) Rank() int {
	switch p {
	case PlanFree:
		return 0
	case PlanStarter, PlanBasic:
		return 1
	case PlanPro:
		return 2
	case PlanBusiness, PlanInvestor:
		return 3
	default:
		return -1
	}
}

// AtLeast reports whether p grants everything required grants.
func (p Plan) AtLeast(required Plan) bool {
	return p.Rank() >= required.Rank()
}

// Paid reports whether p costs money.
func (p Plan) Paid() bool {
	return p.Rank() > 0
}

// Cycle is a billing period.
type Cycle string

const (
	CycleMonthly   Cycle = "monthly"
	CycleQuarterly Cycle = "quarterly"
	CycleYearly    Cycle = "yearly"
)

// Discount is the advertised percentage saved against paying monthly.
func (c Cycle) Discount() int {
	switch c {
	case CycleQuarterly:
		return 17
	case CycleYearly:
		return 25
	default:
		return 0
	}
}

// Months is the length of the cycle.
func (c Cycle) Months() int {
	switch c {
	case CycleQuarterly:
		return 3
	case CycleYearly:
		return 12
	default:
		return 1
	}
}

// SubscriptionStatus is the lifecycle state of a subscription.
type SubscriptionStatus string

const (
	StatusActive    SubscriptionStatus = "active"
	StatusCancelled SubscriptionStatus = "cancelled"
	StatusExpired   SubscriptionStatus = "expired"
	StatusTrial     SubscriptionStatus = "trial"
)

// Unlimited is the limit value meaning no cap.
const Unlimited = -1

// IsUnlimited reports whether a numeric limit is uncapped.
func IsUnlimited(n int) bool {
	return n == Unlimited
}

// Limits are a plan's feature caps. Values are heterogeneous on the wire:
// counts, crypto lists, "all", tier names and flags.
type Limits map[string]json.RawMessage

// Int returns a numeric limit.
func (l Limits) Int(name string) (int, bool) {
	raw, ok := l[name]
	if !ok {
		return 0, false
	}
	var n int
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, false
	}
	return n, true
}

// Allows reports whether used more items fit under the named limit. Missing
// limits allow nothing.
func (l Limits) Allows(name string, used int) bool {
	n, ok := l.Int(name)
	if !ok {
		return false
	}
	return IsUnlimited(n) || used < n
}

// Flag returns a boolean feature switch. Missing flags are off.
func (l Limits) Flag(name string) bool {
	raw, ok := l[name]
	if !ok {
		return false
	}
	var b bool
	return json.Unmarshal(raw, &b) == nil && b
}

// String returns a textual limit such as a screener tier.
func (l Limits) String(name string) string {
	raw, ok := l[name]
	if !ok {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

// AllowsCrypto checks the "cryptos" limit, which is either a list of symbols
// or the string "all". Plans without the limit allow every crypto.
func (l Limits) AllowsCrypto(symbol string) bool {
	raw, ok := l["cryptos"]
	if !ok {
		return true
	}
	var all string
	if json.Unmarshal(raw, &all) == nil {
		return all == "all"
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return false
	}
	for _, s := range list {
		if strings.EqualFold(s, symbol) {
			return true
		}
	}
	return false
}

// PlanInfo is one purchasable tier.
type PlanInfo struct {
	Name   Plan                      `json:"name"`
	Prices map[Cycle]decimal.Decimal `json:"prices"`
	Limits Limits                    `json:"limits"`
}

// Price returns the NGN price for cycle.
func (p PlanInfo) Price(c Cycle) decimal.Decimal {
	return p.Prices[c]
}

// MonthlyEquivalent spreads the cycle price over its months.
func (p PlanInfo) MonthlyEquivalent(c Cycle) decimal.Decimal {
	return p.Price(c).Div(decimal.NewFromInt(int64(c.Months()))).Round(0)
}

// Catalog is the plan list for a product.
type Catalog struct {
	Product Product    `json:"product"`
	Plans   []PlanInfo `json:"plans"`
}

// Find returns the named plan.
func (c Catalog) Find(name Plan) (PlanInfo, bool) {
	for _, p := range c.Plans {
		if p.Name == name {
			return p, true
		}
	}
	return PlanInfo{}, false
}

// Subscription is the caller's subscription to one product. Users without a
// subscription get a free, active record with an empty ID.
type Subscription struct {
	ID           string              `json:"id"`
	Product      Product             `json:"product"`
	Plan         Plan                `json:"plan"`
	Status       SubscriptionStatus  `json:"status"`
	PriceNGN     decimal.NullDecimal `json:"price_ngn"`
	BillingCycle Cycle               `json:"billing_cycle,omitempty"`
	StartedAt    *time.Time          `json:"started_at,omitempty"`
	ExpiresAt    *time.Time          `json:"expires_at,omitempty"`
	IsActive     bool                `json:"is_active"`
}

// Implicit reports whether the record is the free default rather than a
// stored subscription.
func (s Subscription) Implicit() bool {
	return s.ID == ""
}

// Cancellable reports whether cancelling would change anything.
func (s Subscription) Cancellable() bool {
	return !s.Implicit() && s.Plan.Paid() && s.Status == StatusActive
}

// DaysLeft is the number of whole days until expiry, or -1 without one.
func (s Subscription) DaysLeft(now time.Time) int {
	if s.ExpiresAt == nil {
		return -1
	}
	d := s.ExpiresAt.Sub(now)
	if d <= 0 {
		return 0
	}
	return int(d.Hours() / 24)
}

// UserLimits are the limits in force for the caller.
type UserLimits struct {
	Product Product `json:"product"`
	Plan    Plan    `json:"plan"`
	Limits  Limits  `json:"limits"`
}

// Checkout is an initialized payment. The user completes it at
// AuthorizationURL and the app confirms it with Reference.
type Checkout struct {
	Reference        string `json:"reference"`
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
}

// Payment is a verified payment.
type Payment struct {
	ID        string          `json:"id"`
	AmountNGN decimal.Decimal `json:"amount_ngn"`
	Status    string          `json:"status"`
	Reference string          `json:"reference"`
	PaidAt    *time.Time      `json:"paid_at,omitempty"`
}

// CheckoutForm starts a payment for an upgrade.
type CheckoutForm struct {
	Product      Product `json:"product"`
	Plan         Plan    `json:"plan"`
	BillingCycle Cycle   `json:"billing_cycle"`
}

// NewCheckoutForm defaults to monthly billing.
func NewCheckoutForm(product Product, plan Plan) *CheckoutForm {
	return &CheckoutForm{Product: product, Plan: plan, BillingCycle: CycleMonthly}
}

func (f *CheckoutForm) SetCycle(c Cycle) *CheckoutForm {
	f.BillingCycle = c
	return f
}

// Validate rejects unknown products and free plans.
func (f *CheckoutForm) Validate() error {
	v := validate.New("checkout")
	v.Required("product", f.Product != "")
	v.Required("plan", f.Plan != "")
	if f.Product != "" {
		v.Check("product", f.Product.Valid(), "is not a known product")
	}
	if f.Plan != "" {
		v.Check("plan", f.Plan.Paid(), "cannot be purchased")
	}
	v.OneOf("billing_cycle", string(f.BillingCycle), string(CycleMonthly), string(CycleQuarterly), string(CycleYearly))
	return v.Err()
}
