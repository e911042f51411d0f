// Package app contains the arbscanner application service and its ports.
package app

import (
	"context"

	"github.com/fd1az/naijatrade/business/arbscanner/domain"
)

// ScannerAPI is the REST surface under /arb.
type ScannerAPI interface {
	FetchPrices(ctx context.Context, crypto string, refresh bool) (domain.PriceBoard, error)
	FetchOpportunities(ctx context.Context, scan domain.Scan) (domain.OpportunityList, error)
	Calculate(ctx context.Context, form *domain.CalculateForm) (domain.Calculation, error)
	FetchExchanges(ctx context.Context) (domain.Catalog, error)
	FetchFees(ctx context.Context) (domain.FeeTable, error)

	FetchAlerts(ctx context.Context) ([]domain.Alert, error)
	CreateAlert(ctx context.Context, form *domain.AlertForm) (domain.Alert, error)
	UpdateAlert(ctx context.Context, id string, patch domain.AlertPatch) (domain.Alert, error)
	DeleteAlert(ctx context.Context, id string) error
}
