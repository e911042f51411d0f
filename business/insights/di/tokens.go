// Package di contains dependency injection tokens for the insights context.
package di

import (
	"github.com/fd1az/naijatrade/business/insights/app"
	"github.com/fd1az/naijatrade/internal/di"
)

var (
	InsightsService = di.NewToken[*app.Service]("insights.Service")
	InsightsAPI     = di.NewToken[app.InsightsAPI]("insights:api")
)

func GetInsightsService(c di.ServiceRegistry) *app.Service {
	return di.GetToken(c, InsightsService)
}

func GetInsightsAPI(c di.ServiceRegistry) app.InsightsAPI {
	return di.GetToken(c, InsightsAPI)
}
