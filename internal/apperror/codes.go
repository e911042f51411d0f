package apperror

// Code represents a unique error code for the application
type Code string

// General error codes
const (
	// Validation
	CodeRequiredField   Code = "REQUIRED_FIELD"
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeInvalidFormat   Code = "INVALID_FORMAT"
	CodeValidationError Code = "VALIDATION_ERROR"
	CodeNotFound        Code = "NOT_FOUND"
	CodeConflict        Code = "CONFLICT"

	// Configuration
	CodeConfigurationError Code = "CONFIGURATION_ERROR"

	// Transport and upstream
	CodeNetworkError         Code = "NETWORK_ERROR"
	CodeExternalServiceError Code = "EXTERNAL_SERVICE_ERROR"
	CodeServiceTimeout       Code = "SERVICE_TIMEOUT"
	CodeServiceUnavailable   Code = "SERVICE_UNAVAILABLE"
	CodeRateLimitExceeded    Code = "RATE_LIMIT_EXCEEDED"
	CodeInvalidResponse      Code = "INVALID_RESPONSE"

	// System errors
	CodeInternalError Code = "INTERNAL_ERROR"
	CodeUnknownError  Code = "UNKNOWN_ERROR"
)

// Session and access codes
const (
	CodeUnauthenticated Code = "UNAUTHENTICATED"
	CodeForbidden       Code = "FORBIDDEN"
	CodeSessionExpired  Code = "SESSION_EXPIRED"

	// Entitlement gating, mirrored from the server's detail.error values
	CodePlanLimitExceeded Code = "PLAN_LIMIT_EXCEEDED"
	CodePlanRequired      Code = "PLAN_REQUIRED"
	CodeCryptoNotAllowed  Code = "CRYPTO_NOT_ALLOWED"
)

// Client infrastructure codes
const (
	// WebSocket push channel
	CodeWebSocketConnectionError Code = "WEBSOCKET_CONNECTION_ERROR"
	CodeWebSocketClosed          Code = "WEBSOCKET_CLOSED"
	CodeWebSocketSendError       Code = "WEBSOCKET_SEND_ERROR"

	// Session persistence
	CodeSessionStoreError Code = "SESSION_STORE_ERROR"

	// Circuit breaker
	CodeCircuitOpen Code = "CIRCUIT_OPEN"

	// Views
	CodeViewCrashed Code = "VIEW_CRASHED"
)

// Field keys carried by entitlement errors.
const (
	FieldCurrentPlan  = "current_plan"
	FieldRequiredPlan = "required_plan"
	FieldLimit        = "limit"
	FieldServerCode   = "error"
)
