// Package app contains the airdrops application service and its ports.
package app

import (
	"context"

	"github.com/fd1az/naijatrade/business/airdrops/domain"
)

// AirdropsAPI is the REST surface for airdrops.
type AirdropsAPI interface {
	FetchAirdrops(ctx context.Context, filter domain.Filter) (domain.AirdropList, error)
	FetchAirdrop(ctx context.Context, id string) (domain.Airdrop, error)
	CreateAirdrop(ctx context.Context, form *domain.Form) (domain.Airdrop, error)
	UpdateAirdrop(ctx context.Context, id string, patch domain.Patch) (domain.Airdrop, error)
	DeleteAirdrop(ctx context.Context, id string) error
}
