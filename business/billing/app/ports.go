// Package app contains the billing application service and its ports.
package app

import (
	"context"

	"github.com/fd1az/naijatrade/business/billing/domain"
)

// BillingAPI is the REST surface for plans, subscriptions and payments.
type BillingAPI interface {
	FetchPlans(ctx context.Context, product domain.Product) (domain.Catalog, error)
	FetchSubscriptions(ctx context.Context) ([]domain.Subscription, error)
	FetchSubscription(ctx context.Context, product domain.Product) (domain.Subscription, error)
	FetchLimits(ctx context.Context, product domain.Product) (domain.UserLimits, error)
	InitializePayment(ctx context.Context, form *domain.CheckoutForm) (domain.Checkout, error)
	VerifyPayment(ctx context.Context, reference string) (domain.Payment, error)
	CancelSubscription(ctx context.Context, product domain.Product) (string, error)
}
