// Package di contains dependency injection tokens for the billing context.
package di

import (
	"github.com/fd1az/naijatrade/business/billing/app"
	"github.com/fd1az/naijatrade/internal/di"
)

// Public service tokens - exposed to other modules
var (
	BillingService = di.NewToken[*app.Service]("billing.Service")
)

// Private dependency tokens - internal to billing module
var (
	BillingAPI = di.NewToken[app.BillingAPI]("billing:api")
)

func GetBillingService(c di.ServiceRegistry) *app.Service {
	return di.GetToken(c, BillingService)
}

func GetBillingAPI(c di.ServiceRegistry) app.BillingAPI {
	return di.GetToken(c, BillingAPI)
}
