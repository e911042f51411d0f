package apperror

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DefaultsFromCode(t *testing.T) {
	err := New(CodePlanLimitExceeded)

	assert.Equal(t, "You have reached your plan limit.", err.Message)
	assert.Equal(t, http.StatusForbidden, err.StatusCode)
	assert.False(t, err.Timestamp.IsZero())
}

func TestWithMessage_EmptyKeepsDefault(t *testing.T) {
	err := New(CodeNotFound, WithMessage(""))
	assert.Equal(t, "Resource not found", err.Message)
}

func TestIs_MatchesByCode(t *testing.T) {
	err := fmt.Errorf("load signals: %w", New(CodeNotFound, WithContext("signal 7")))

	assert.True(t, errors.Is(err, New(CodeNotFound)))
	assert.False(t, errors.Is(err, New(CodeForbidden)))
	assert.True(t, HasCode(err, CodeNotFound))
	assert.Equal(t, CodeNotFound, GetCode(err))
	assert.Equal(t, CodeUnknownError, GetCode(errors.New("plain")))
}

func TestWrap_KeepsExistingAppError(t *testing.T) {
	orig := New(CodeConflict)
	wrapped := Wrap(orig, CodeInternalError, "register")

	require.Same(t, orig, wrapped)
	assert.Equal(t, "register", wrapped.Context)
	assert.Nil(t, Wrap(nil, CodeInternalError, ""))
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindNone},
		{"network", Network("GET /signals", errors.New("dial tcp")), KindNetwork},
		{"timeout", New(CodeServiceTimeout), KindNetwork},
		{"unauthenticated", New(CodeUnauthenticated), KindAuth},
		{"plan limit", New(CodePlanLimitExceeded), KindEntitlement},
		{"plan required", New(CodePlanRequired), KindEntitlement},
		{"crypto", New(CodeCryptoNotAllowed), KindEntitlement},
		{"forbidden", New(CodeForbidden), KindForbidden},
		{"required field", RequiredField("asset_symbol"), KindValidation},
		{"not found", New(CodeNotFound), KindNotFound},
		{"server", New(CodeExternalServiceError), KindServer},
		{"canceled", Network("GET /x", context.Canceled), KindCanceled},
		{"deadline", context.DeadlineExceeded, KindNetwork},
		{"plain", errors.New("x"), KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestEntitlementOf(t *testing.T) {
	err := New(CodePlanLimitExceeded,
		WithMessage("Free plan allows 3 alerts"),
		WithField(FieldCurrentPlan, "free"),
		WithField(FieldRequiredPlan, "pro"),
		WithField(FieldLimit, "3"),
	)

	ent, ok := EntitlementOf(fmt.Errorf("create alert: %w", err))
	require.True(t, ok)
	assert.Equal(t, CodePlanLimitExceeded, ent.Code)
	assert.Equal(t, "Free plan allows 3 alerts", ent.Message)
	assert.Equal(t, "free", ent.CurrentPlan)
	assert.Equal(t, "pro", ent.RequiredPlan)
	assert.Equal(t, "3", ent.Limit)

	_, ok = EntitlementOf(New(CodeForbidden))
	assert.False(t, ok)
}

func TestError_String(t *testing.T) {
	err := New(CodeNetworkError, WithContext("GET /arb/prices"), WithCause(errors.New("connection refused")))
	assert.Equal(t, "NETWORK_ERROR: Failed to reach the server (GET /arb/prices): connection refused", err.Error())
}
