// Package di contains dependency injection tokens for the arbscanner context.
package di

import (
	"github.com/fd1az/naijatrade/business/arbscanner/app"
	"github.com/fd1az/naijatrade/internal/di"
)

// Public service tokens - exposed to other modules
var (
	ScannerService = di.NewToken[*app.Service]("arbscanner.Service")
)

// Private dependency tokens - internal to arbscanner module
var (
	ScannerAPI = di.NewToken[app.ScannerAPI]("arbscanner:api")
)

func GetScannerService(c di.ServiceRegistry) *app.Service {
	return di.GetToken(c, ScannerService)
}

func GetScannerAPI(c di.ServiceRegistry) app.ScannerAPI {
	return di.GetToken(c, ScannerAPI)
}
