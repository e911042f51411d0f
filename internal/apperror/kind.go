package apperror

import (
	"context"
	"errors"
)

// Kind groups codes by how a view should react to them.
type Kind int

const (
	KindNone Kind = iota
	KindNetwork
	KindAuth
	KindEntitlement
	KindForbidden
	KindValidation
	KindNotFound
	KindServer
	KindCanceled
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindNetwork:
		return "network"
	case KindAuth:
		return "auth"
	case KindEntitlement:
		return "entitlement"
	case KindForbidden:
		return "forbidden"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindServer:
		return "server"
	case KindCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// KindOf classifies err.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	if errors.Is(err, context.Canceled) {
		return KindCanceled
	}

	appErr, ok := As(err)
	if !ok {
		if errors.Is(err, context.DeadlineExceeded) {
			return KindNetwork
		}
		return KindUnknown
	}

	switch appErr.Code {
	case CodeNetworkError, CodeServiceTimeout, CodeCircuitOpen:
		return KindNetwork
	case CodeUnauthenticated, CodeSessionExpired:
		return KindAuth
	case CodePlanLimitExceeded, CodePlanRequired, CodeCryptoNotAllowed:
		return KindEntitlement
	case CodeForbidden:
		return KindForbidden
	case CodeValidationError, CodeRequiredField, CodeInvalidInput, CodeInvalidFormat, CodeConflict:
		return KindValidation
	case CodeNotFound:
		return KindNotFound
	case CodeExternalServiceError, CodeServiceUnavailable, CodeRateLimitExceeded, CodeInvalidResponse:
		return KindServer
	default:
		return KindUnknown
	}
}

// Entitlement is the upgrade prompt payload of a gated 403.
type Entitlement struct {
	Code         Code
	Message      string
	CurrentPlan  string
	RequiredPlan string
	Limit        string
}

// EntitlementOf returns the gating details when err is an entitlement error.
func EntitlementOf(err error) (Entitlement, bool) {
	if KindOf(err) != KindEntitlement {
		return Entitlement{}, false
	}
	appErr, _ := As(err)
	return Entitlement{
		Code:         appErr.Code,
		Message:      appErr.Message,
		CurrentPlan:  appErr.Field(FieldCurrentPlan),
		RequiredPlan: appErr.Field(FieldRequiredPlan),
		Limit:        appErr.Field(FieldLimit),
	}, true
}
