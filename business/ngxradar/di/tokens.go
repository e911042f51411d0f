// Package di contains dependency injection tokens for the stock radar context.
package di

import (
	"github.com/fd1az/naijatrade/business/ngxradar/app"
	"github.com/fd1az/naijatrade/internal/di"
)

var (
	RadarService = di.NewToken[*app.Service]("ngxradar.Service")
	RadarAPI     = di.NewToken[app.NGXAPI]("ngxradar:api")
)

func GetRadarService(c di.ServiceRegistry) *app.Service {
	return di.GetToken(c, RadarService)
}

func GetRadarAPI(c di.ServiceRegistry) app.NGXAPI {
	return di.GetToken(c, RadarAPI)
}
