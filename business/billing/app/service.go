package app

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/fd1az/naijatrade/business/billing/domain"
	"github.com/fd1az/naijatrade/internal/apm"
	"github.com/fd1az/naijatrade/internal/apperror"
	"github.com/fd1az/naijatrade/internal/query"
)

// Cache keys owned by the billing context.
var (
	KeyPlans         = query.Key{"plans"}
	KeySubscriptions = query.Key{"subscriptions"}
	KeySubscription  = query.Key{"subscription"}
	KeyLimits        = query.Key{"limits"}
)

const (
	PlansStaleTime        = time.Hour
	SubscriptionStaleTime = time.Minute
)

// Service serves plan and subscription reads from the cache and runs payments.
type Service struct {
	api     BillingAPI
	queries *query.Client
	tracer  apm.Tracer
}

// NewService creates a Service.
func NewService(api BillingAPI, queries *query.Client) *Service {
	return &Service{api: api, queries: queries, tracer: apm.NewTracer("billing")}
}

// PlansKey is the cache key for a product's catalog.
func PlansKey(p domain.Product) query.Key {
	return KeyPlans.Append(string(p))
}

func SubscriptionKey(p domain.Product) query.Key {
	return KeySubscription.Append(string(p))
}

func LimitsKey(p domain.Product) query.Key {
	return KeyLimits.Append(string(p))
}

func (s *Service) fetchPlans(p domain.Product) query.Fetcher[domain.Catalog] {
	return func(ctx context.Context) (domain.Catalog, error) {
		return s.api.FetchPlans(ctx, p)
	}
}

func (s *Service) fetchSubscription(p domain.Product) query.Fetcher[domain.Subscription] {
	return func(ctx context.Context) (domain.Subscription, error) {
		return s.api.FetchSubscription(ctx, p)
	}
}

func (s *Service) fetchLimits(p domain.Product) query.Fetcher[domain.UserLimits] {
	return func(ctx context.Context) (domain.UserLimits, error) {
		return s.api.FetchLimits(ctx, p)
	}
}

// Plans reads the plan catalog of a product.
func (s *Service) Plans(ctx context.Context, p domain.Product) (domain.Catalog, error) {
	return query.Fetch(ctx, s.queries, PlansKey(p), s.fetchPlans(p), query.StaleTime(PlansStaleTime))
}

// WatchPlans subscribes to the plan catalog of a product.
func (s *Service) WatchPlans(p domain.Product) *query.Subscription[domain.Catalog] {
	return query.Subscribe(s.queries, PlansKey(p), s.fetchPlans(p), query.StaleTime(PlansStaleTime))
}

// WarmPlans loads the catalog of every purchasable product concurrently.
func (s *Service) WarmPlans(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, p := range []domain.Product{domain.ProductArbScanner, domain.ProductNGXRadar} {
		g.Go(func() error {
			_, err := s.Plans(gctx, p)
			return err
		})
	}
	return g.Wait()
}

// Subscriptions reads every subscription of the caller.
func (s *Service) Subscriptions(ctx context.Context) ([]domain.Subscription, error) {
	return query.Fetch(ctx, s.queries, KeySubscriptions, s.api.FetchSubscriptions, query.StaleTime(SubscriptionStaleTime))
}

// WatchSubscriptions subscribes to every subscription of the caller.
func (s *Service) WatchSubscriptions() *query.Subscription[[]domain.Subscription] {
	return query.Subscribe(s.queries, KeySubscriptions, s.api.FetchSubscriptions, query.StaleTime(SubscriptionStaleTime))
}

// Subscription reads the caller's subscription to one product.
func (s *Service) Subscription(ctx context.Context, p domain.Product) (domain.Subscription, error) {
	return query.Fetch(ctx, s.queries, SubscriptionKey(p), s.fetchSubscription(p), query.StaleTime(SubscriptionStaleTime))
}

// WatchSubscription subscribes to the caller's subscription to one product.
func (s *Service) WatchSubscription(p domain.Product) *query.Subscription[domain.Subscription] {
	return query.Subscribe(s.queries, SubscriptionKey(p), s.fetchSubscription(p), query.StaleTime(SubscriptionStaleTime))
}

// Limits reads the limits in force for one product.
func (s *Service) Limits(ctx context.Context, p domain.Product) (domain.UserLimits, error) {
	return query.Fetch(ctx, s.queries, LimitsKey(p), s.fetchLimits(p), query.StaleTime(SubscriptionStaleTime))
}

// WatchLimits subscribes to the limits in force for one product.
func (s *Service) WatchLimits(p domain.Product) *query.Subscription[domain.UserLimits] {
	return query.Subscribe(s.queries, LimitsKey(p), s.fetchLimits(p), query.StaleTime(SubscriptionStaleTime))
}

// Entitled reports whether the caller's plan for p is at least required.
func (s *Service) Entitled(ctx context.Context, p domain.Product, required domain.Plan) (bool, error) {
	sub, err := s.Subscription(ctx, p)
	if err != nil {
		return false, err
	}
	return sub.IsActive && sub.Plan.AtLeast(required), nil
}

// CheckLimit fails with a plan_limit_exceeded error when used items already
// fill the named limit. The server enforces the same limit; this lets views
// show the upgrade prompt before sending a doomed write.
func (s *Service) CheckLimit(ctx context.Context, p domain.Product, name string, used int) error {
	ul, err := s.Limits(ctx, p)
	if err != nil {
		return err
	}
	if ul.Limits.Allows(name, used) {
		return nil
	}
	n, _ := ul.Limits.Int(name)
	return apperror.New(apperror.CodePlanLimitExceeded,
		apperror.WithMessage("Your "+string(ul.Plan)+" plan allows "+strconv.Itoa(n)+" "+name),
		apperror.WithContext(string(p)),
		apperror.WithField(apperror.FieldCurrentPlan, string(ul.Plan)),
		apperror.WithField(apperror.FieldLimit, strconv.Itoa(n)),
	)
}

// Checkout starts a payment. Nothing is cached until the payment is verified.
func (s *Service) Checkout(ctx context.Context, form *domain.CheckoutForm) (domain.Checkout, error) {
	ctx, span := s.tracer.StartSpanFromContext(ctx, "billing.checkout")
	defer span.End()
	span.SetAttribute(attribute.String("billing.product", string(form.Product)))
	span.SetAttribute(attribute.String("billing.plan", string(form.Plan)))

	out, err := query.Mutate(ctx, s.queries, func(ctx context.Context) (domain.Checkout, error) {
		return s.api.InitializePayment(ctx, form)
	})
	if err != nil {
		span.NoticeError(err)
	}
	return out, err
}

// VerifyPayment confirms a payment and refreshes everything the upgrade touches.
func (s *Service) VerifyPayment(ctx context.Context, reference string) (domain.Payment, error) {
	ctx, span := s.tracer.StartSpanFromContext(ctx, "billing.verify")
	defer span.End()
	span.SetAttribute(attribute.String("billing.reference", reference))

	out, err := query.Mutate(ctx, s.queries, func(ctx context.Context) (domain.Payment, error) {
		return s.api.VerifyPayment(ctx, reference)
	}, KeySubscriptions, KeySubscription, KeyLimits)
	if err != nil {
		span.NoticeError(err)
	}
	return out, err
}

// Cancel cancels the subscription to p. Access lasts until the period ends,
// so limits are left alone.
func (s *Service) Cancel(ctx context.Context, p domain.Product) (string, error) {
	ctx, span := s.tracer.StartSpanFromContext(ctx, "billing.cancel")
	defer span.End()
	span.SetAttribute(attribute.String("billing.product", string(p)))

	msg, err := query.Mutate(ctx, s.queries, func(ctx context.Context) (string, error) {
		return s.api.CancelSubscription(ctx, p)
	}, KeySubscriptions, KeySubscription)
	if err != nil {
		span.NoticeError(err)
	}
	return msg, err
}
