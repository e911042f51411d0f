package billing_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fd1az/naijatrade/business/billing/app"
	"github.com/fd1az/naijatrade/business/billing/domain"
	"github.com/fd1az/naijatrade/business/billing/infra/rest"
	"github.com/fd1az/naijatrade/internal/apitest"
	"github.com/fd1az/naijatrade/internal/apperror"
	"github.com/fd1az/naijatrade/internal/query"
)

type billingBackend struct {
	*apitest.Backend
	mu      sync.Mutex
	subs    map[domain.Product]domain.Subscription
	pending map[string]domain.CheckoutForm
	seq     int
}

func newBillingBackend() *billingBackend {
	b := &billingBackend{
		Backend: apitest.NewBackend(),
		subs:    make(map[domain.Product]domain.Subscription),
		pending: make(map[string]domain.CheckoutForm),
	}
	b.Handle(http.MethodGet, "/plans/{product}", b.plans)
	b.Handle(http.MethodGet, "/subscriptions", b.list)
	b.Handle(http.MethodGet, "/subscriptions/{product}", b.get)
	b.Handle(http.MethodGet, "/subscriptions/{product}/limits", b.limits)
	b.Handle(http.MethodPost, "/payments/initialize", b.initialize)
	b.Handle(http.MethodPost, "/payments/verify", b.verify)
	b.Handle(http.MethodPost, "/subscriptions/{product}/cancel", b.cancel)
	return b
}

func raw(v any) json.RawMessage {
	out, _ := json.Marshal(v)
	return out
}

func limitsFor(plan domain.Plan) domain.Limits {
	if plan == domain.PlanFree {
		return domain.Limits{"alerts_per_day": raw(3), "exchanges": raw(3), "cryptos": raw([]string{"USDT"})}
	}
	return domain.Limits{"alerts_per_day": raw(-1), "exchanges": raw(-1), "cryptos": raw("all")}
}

func (b *billingBackend) plans(w http.ResponseWriter, r *http.Request) {
	apitest.JSON(w, http.StatusOK, domain.Catalog{
		Product: domain.Product(chi.URLParam(r, "product")),
		Plans: []domain.PlanInfo{
			{Name: domain.PlanFree, Prices: map[domain.Cycle]decimal.Decimal{domain.CycleMonthly: decimal.Zero}, Limits: limitsFor(domain.PlanFree)},
			{Name: domain.PlanPro, Prices: map[domain.Cycle]decimal.Decimal{
				domain.CycleMonthly:   decimal.NewFromInt(10000),
				domain.CycleQuarterly: decimal.NewFromInt(25000),
				domain.CycleYearly:    decimal.NewFromInt(90000),
			}, Limits: limitsFor(domain.PlanPro)},
		},
	})
}

func (b *billingBackend) current(p domain.Product) domain.Subscription {
	if s, ok := b.subs[p]; ok {
		return s
	}
	return domain.Subscription{Product: p, Plan: domain.PlanFree, Status: domain.StatusActive, IsActive: true}
}

func (b *billingBackend) list(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []domain.Subscription{}
	for _, s := range b.subs {
		out = append(out, s)
	}
	apitest.JSON(w, http.StatusOK, out)
}

func (b *billingBackend) get(w http.ResponseWriter, r *http.Request) {
	p := domain.Product(chi.URLParam(r, "product"))
	if p == domain.ProductBundle {
		apitest.JSON(w, http.StatusForbidden, map[string]any{"detail": map[string]any{
			"error": "plan_required", "message": "Bundle requires a paid plan",
			"current_plan": "free", "required_plan": "pro",
		}})
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	apitest.JSON(w, http.StatusOK, b.current(p))
}

func (b *billingBackend) limits(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.current(domain.Product(chi.URLParam(r, "product")))
	apitest.JSON(w, http.StatusOK, domain.UserLimits{Product: s.Product, Plan: s.Plan, Limits: limitsFor(s.Plan)})
}

func (b *billingBackend) initialize(w http.ResponseWriter, r *http.Request) {
	var form domain.CheckoutForm
	if err := apitest.Decode(r, &form); err != nil {
		apitest.Detail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	ref := fmt.Sprintf("NTT-%012d", b.seq)
	b.pending[ref] = form
	apitest.JSON(w, http.StatusOK, domain.Checkout{
		Reference: ref, AuthorizationURL: "https://checkout.paystack.test/" + ref, AccessCode: "ac",
	})
}

func (b *billingBackend) verify(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Reference string `json:"reference"`
	}
	if err := apitest.Decode(r, &body); err != nil {
		apitest.Detail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	form, ok := b.pending[body.Reference]
	if !ok {
		apitest.Detail(w, http.StatusNotFound, "Payment not found")
		return
	}
	delete(b.pending, body.Reference)
	now := time.Now().UTC()
	expires := now.AddDate(0, form.BillingCycle.Months(), 0)
	b.subs[form.Product] = domain.Subscription{
		ID: "sub-" + string(form.Product), Product: form.Product, Plan: form.Plan,
		Status: domain.StatusActive, BillingCycle: form.BillingCycle,
		StartedAt: &now, ExpiresAt: &expires, IsActive: true,
	}
	apitest.JSON(w, http.StatusOK, domain.Payment{
		ID: "pay-1", AmountNGN: decimal.NewFromInt(10000), Status: "success", Reference: body.Reference, PaidAt: &now,
	})
}

func (b *billingBackend) cancel(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p := domain.Product(chi.URLParam(r, "product"))
	s, ok := b.subs[p]
	if !ok {
		apitest.Detail(w, http.StatusNotFound, "Subscription not found")
		return
	}
	s.Status = domain.StatusCancelled
	b.subs[p] = s
	apitest.JSON(w, http.StatusOK, map[string]string{"message": "Subscription cancelled."})
}

func newService(t *testing.T, b *billingBackend) (*app.Service, *query.Client) {
	t.Helper()
	qc := query.NewClient(query.WithDefaults(query.StaleTime(time.Minute), query.RefetchInterval(0)))
	t.Cleanup(qc.Close)
	return app.NewService(rest.NewClient(b.Start(t)), qc), qc
}

func TestUpgradeFlowRefreshesSubscriptionAndLimits(t *testing.T) {
	b := newBillingBackend()
	svc, qc := newService(t, b)
	ctx := context.Background()
	arb := domain.ProductArbScanner

	catalog, err := svc.Plans(ctx, arb)
	require.NoError(t, err)
	pro, ok := catalog.Find(domain.PlanPro)
	require.True(t, ok)
	assert.True(t, pro.Price(domain.CycleYearly).Equal(decimal.NewFromInt(90000)))

	sub, err := svc.Subscription(ctx, arb)
	require.NoError(t, err)
	assert.True(t, sub.Implicit())
	assert.Equal(t, domain.PlanFree, sub.Plan)

	limits, err := svc.Limits(ctx, arb)
	require.NoError(t, err)
	assert.False(t, limits.Limits.AllowsCrypto("BTC"))

	checkout, err := svc.Checkout(ctx, domain.NewCheckoutForm(arb, domain.PlanPro).SetCycle(domain.CycleQuarterly))
	require.NoError(t, err)
	assert.Contains(t, checkout.AuthorizationURL, checkout.Reference)
	assert.Equal(t, query.StatusFresh, qc.Status(app.SubscriptionKey(arb)))

	payment, err := svc.VerifyPayment(ctx, checkout.Reference)
	require.NoError(t, err)
	assert.Equal(t, "success", payment.Status)

	assert.Equal(t, query.StatusFresh, qc.Status(app.PlansKey(arb)))
	assert.NotEqual(t, query.StatusFresh, qc.Status(app.SubscriptionKey(arb)))
	assert.NotEqual(t, query.StatusFresh, qc.Status(app.LimitsKey(arb)))

	sub, err = svc.Subscription(ctx, arb)
	require.NoError(t, err)
	assert.Equal(t, domain.PlanPro, sub.Plan)
	assert.Equal(t, domain.CycleQuarterly, sub.BillingCycle)

	limits, err = svc.Limits(ctx, arb)
	require.NoError(t, err)
	assert.True(t, limits.Limits.AllowsCrypto("BTC"))

	ok, err = svc.Entitled(ctx, arb, domain.PlanStarter)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Equal(t, 1, b.Calls(http.MethodGet, "/plans/{product}"))
	assert.Equal(t, 2, b.Calls(http.MethodGet, "/subscriptions/{product}"))
}

func TestCancelKeepsLimits(t *testing.T) {
	b := newBillingBackend()
	svc, qc := newService(t, b)
	ctx := context.Background()
	ngx := domain.ProductNGXRadar

	checkout, err := svc.Checkout(ctx, domain.NewCheckoutForm(ngx, domain.PlanPro))
	require.NoError(t, err)
	_, err = svc.VerifyPayment(ctx, checkout.Reference)
	require.NoError(t, err)

	subs, err := svc.Subscriptions(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.True(t, subs[0].Cancellable())
	_, err = svc.Limits(ctx, ngx)
	require.NoError(t, err)

	msg, err := svc.Cancel(ctx, ngx)
	require.NoError(t, err)
	assert.NotEmpty(t, msg)
	assert.Equal(t, query.StatusFresh, qc.Status(app.LimitsKey(ngx)))
	assert.NotEqual(t, query.StatusFresh, qc.Status(app.KeySubscriptions))

	subs, err = svc.Subscriptions(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, subs[0].Status)
	assert.False(t, subs[0].Cancellable())
}

func TestVerifyUnknownReferenceInvalidatesNothing(t *testing.T) {
	b := newBillingBackend()
	svc, qc := newService(t, b)
	ctx := context.Background()

	_, err := svc.Subscriptions(ctx)
	require.NoError(t, err)

	_, err = svc.VerifyPayment(ctx, "NTT-NOPE")
	require.Error(t, err)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	assert.Equal(t, query.StatusFresh, qc.Status(app.KeySubscriptions))

	_, err = svc.VerifyPayment(ctx, "")
	assert.True(t, apperror.HasCode(err, apperror.CodeRequiredField))
}

func TestCheckoutValidation(t *testing.T) {
	b := newBillingBackend()
	svc, _ := newService(t, b)
	ctx := context.Background()

	_, err := svc.Checkout(ctx, domain.NewCheckoutForm(domain.ProductArbScanner, domain.PlanFree))
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidInput))

	_, err = svc.Checkout(ctx, domain.NewCheckoutForm("", domain.PlanPro))
	assert.True(t, apperror.HasCode(err, apperror.CodeRequiredField))

	_, err = svc.Checkout(ctx, domain.NewCheckoutForm(domain.ProductArbScanner, domain.PlanPro).SetCycle("weekly"))
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidInput))

	_, err = svc.Plans(ctx, "crypto")
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	assert.Zero(t, b.Calls(http.MethodPost, "/payments/initialize"))
	assert.Zero(t, b.Calls(http.MethodGet, "/plans/{product}"))
}

func TestServerGatingSurfacesEntitlement(t *testing.T) {
	b := newBillingBackend()
	svc, _ := newService(t, b)

	_, err := svc.Subscription(context.Background(), domain.ProductBundle)
	require.Error(t, err)
	assert.Equal(t, apperror.KindEntitlement, apperror.KindOf(err))

	ent, ok := apperror.EntitlementOf(err)
	require.True(t, ok)
	assert.Equal(t, "pro", ent.RequiredPlan)
	assert.Equal(t, "Bundle requires a paid plan", ent.Message)
}

func TestCheckLimit(t *testing.T) {
	b := newBillingBackend()
	svc, _ := newService(t, b)
	ctx := context.Background()

	require.NoError(t, svc.CheckLimit(ctx, domain.ProductArbScanner, "alerts_per_day", 2))

	err := svc.CheckLimit(ctx, domain.ProductArbScanner, "alerts_per_day", 3)
	ent, ok := apperror.EntitlementOf(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodePlanLimitExceeded, ent.Code)
	assert.Equal(t, "free", ent.CurrentPlan)
	assert.Equal(t, "3", ent.Limit)

	assert.Error(t, svc.CheckLimit(ctx, domain.ProductArbScanner, "history_days", 0))
}

func TestWarmPlans(t *testing.T) {
	b := newBillingBackend()
	svc, qc := newService(t, b)

	require.NoError(t, svc.WarmPlans(context.Background()))
	assert.Equal(t, query.StatusFresh, qc.Status(app.PlansKey(domain.ProductArbScanner)))
	assert.Equal(t, query.StatusFresh, qc.Status(app.PlansKey(domain.ProductNGXRadar)))
}

func TestPlanHelpers(t *testing.T) {
	assert.Equal(t, 0, domain.CycleMonthly.Discount())
	assert.Equal(t, 17, domain.CycleQuarterly.Discount())
	assert.Equal(t, 25, domain.CycleYearly.Discount())
	assert.Equal(t, 0, domain.Cycle("weekly").Discount())

	assert.True(t, domain.PlanBasic.AtLeast(domain.PlanStarter))
	assert.True(t, domain.PlanInvestor.AtLeast(domain.PlanBusiness))
	assert.False(t, domain.PlanStarter.AtLeast(domain.PlanPro))
	assert.False(t, domain.Plan("gold").AtLeast(domain.PlanFree))

	assert.True(t, domain.IsUnlimited(-1))
	l := domain.Limits{"exchanges": raw(-1), "alerts": raw(2), "portfolio": raw(true), "screener": raw("basic")}
	assert.True(t, l.Allows("exchanges", 1000))
	assert.True(t, l.Allows("alerts", 1))
	assert.False(t, l.Allows("alerts", 2))
	assert.True(t, l.Flag("portfolio"))
	assert.False(t, l.Flag("api_access"))
	assert.Equal(t, "basic", l.String("screener"))
	assert.True(t, l.AllowsCrypto("ETH"))

	pro := domain.PlanInfo{Prices: map[domain.Cycle]decimal.Decimal{domain.CycleYearly: decimal.NewFromInt(90000)}}
	assert.True(t, pro.MonthlyEquivalent(domain.CycleYearly).Equal(decimal.NewFromInt(7500)))

	exp := time.Now().Add(49 * time.Hour)
	assert.Equal(t, 2, domain.Subscription{ExpiresAt: &exp}.DaysLeft(time.Now()))
	assert.Equal(t, -1, domain.Subscription{}.DaysLeft(time.Now()))
}
