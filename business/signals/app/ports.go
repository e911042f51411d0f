// Package app contains the signals application service and its ports.
package app

import (
	"context"

	"github.com/fd1az/naijatrade/business/signals/domain"
)

// SignalsAPI is the REST surface for signals.
type SignalsAPI interface {
	FetchSignals(ctx context.Context, filter domain.Filter) (domain.SignalList, error)
	FetchSignalStats(ctx context.Context) (domain.Stats, error)
	CreateSignal(ctx context.Context, form *domain.Form) (domain.Signal, error)
	UpdateSignal(ctx context.Context, id string, patch domain.Patch) (domain.Signal, error)
	DeleteSignal(ctx context.Context, id string) error
}
