// Package di contains dependency injection tokens for the signals context.
package di

import (
	"github.com/fd1az/naijatrade/business/signals/app"
	"github.com/fd1az/naijatrade/internal/di"
)

// Public service tokens - exposed to other modules
var (
	SignalsService = di.NewToken[*app.Service]("signals.Service")
)

// Private dependency tokens - internal to signals module
var (
	SignalsAPI = di.NewToken[app.SignalsAPI]("signals:api")
)

func GetSignalsService(c di.ServiceRegistry) *app.Service {
	return di.GetToken(c, SignalsService)
}

func GetSignalsAPI(c di.ServiceRegistry) app.SignalsAPI {
	return di.GetToken(c, SignalsAPI)
}
