package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	CodeRequiredField:   "Required field is missing",
	CodeInvalidInput:    "Invalid input provided",
	CodeInvalidFormat:   "Invalid data format",
	CodeValidationError: "Validation error",
	CodeNotFound:        "Resource not found",
	CodeConflict:        "Resource already exists",

	CodeConfigurationError: "Configuration error",

	CodeNetworkError:         "Failed to reach the server",
	CodeExternalServiceError: "The server returned an error",
	CodeServiceTimeout:       "Request timed out",
	CodeServiceUnavailable:   "Service temporarily unavailable",
	CodeRateLimitExceeded:    "Too many requests, slow down",
	CodeInvalidResponse:      "Unexpected response from the server",

	CodeInternalError: "Internal error",
	CodeUnknownError:  "An unknown error occurred",

	CodeUnauthenticated: "Please sign in to continue",
	CodeForbidden:       "You do not have access to this resource",
	CodeSessionExpired:  "Your session has expired",

	CodePlanLimitExceeded: "You have reached your plan limit.",
	CodePlanRequired:      "Upgrade your plan to use this feature.",
	CodeCryptoNotAllowed:  "This feature is not available on your plan.",

	CodeWebSocketConnectionError: "WebSocket connection error",
	CodeWebSocketClosed:          "WebSocket connection closed",
	CodeWebSocketSendError:       "Failed to send WebSocket message",

	CodeSessionStoreError: "Session storage error",

	CodeCircuitOpen: "Server is failing, requests paused",

	CodeViewCrashed: "An unexpected error occurred. Please try again.",
}

// DefaultMessage returns the table message for code.
func DefaultMessage(code Code) string {
	return messages[code]
}

// MessageOf returns the message to show a user for err.
func MessageOf(err error) string {
	if appErr, ok := As(err); ok && appErr.Message != "" {
		return appErr.Message
	}
	return err.Error()
}
