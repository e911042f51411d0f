// Package di contains dependency injection tokens for the auth context.
package di

import (
	"github.com/fd1az/naijatrade/business/auth/app"
	"github.com/fd1az/naijatrade/internal/di"
)

// Public service tokens - exposed to other modules
var (
	AuthService = di.NewToken[*app.Service]("auth.Service")
)

// Private dependency tokens - internal to auth module
var (
	AuthAPI   = di.NewToken[app.AuthAPI]("auth:api")
	Refresher = di.NewToken[*app.Refresher]("auth:refresher")
)

func GetAuthService(c di.ServiceRegistry) *app.Service {
	return di.GetToken(c, AuthService)
}

func GetAuthAPI(c di.ServiceRegistry) app.AuthAPI {
	return di.GetToken(c, AuthAPI)
}

func GetRefresher(c di.ServiceRegistry) *app.Refresher {
	return di.GetToken(c, Refresher)
}
