// Package di contains dependency injection tokens for the airdrops context.
package di

import (
	"github.com/fd1az/naijatrade/business/airdrops/app"
	"github.com/fd1az/naijatrade/internal/di"
)

var (
	AirdropsService = di.NewToken[*app.Service]("airdrops.Service")
	AirdropsAPI     = di.NewToken[app.AirdropsAPI]("airdrops:api")
)

func GetAirdropsService(c di.ServiceRegistry) *app.Service {
	return di.GetToken(c, AirdropsService)
}

func GetAirdropsAPI(c di.ServiceRegistry) app.AirdropsAPI {
	return di.GetToken(c, AirdropsAPI)
}
