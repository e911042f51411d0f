// Package di contains dependency injection tokens for the portfolio context.
package di

import (
	"github.com/fd1az/naijatrade/business/portfolio/app"
	"github.com/fd1az/naijatrade/internal/di"
)

var (
	PortfolioService = di.NewToken[*app.Service]("portfolio.Service")
	PortfolioAPI     = di.NewToken[app.PortfolioAPI]("portfolio:api")
)

func GetPortfolioService(c di.ServiceRegistry) *app.Service {
	return di.GetToken(c, PortfolioService)
}

func GetPortfolioAPI(c di.ServiceRegistry) app.PortfolioAPI {
	return di.GetToken(c, PortfolioAPI)
}
