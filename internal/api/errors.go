package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/fd1az/naijatrade/internal/apperror"
	"github.com/fd1az/naijatrade/internal/circuitbreaker"
	"github.com/fd1az/naijatrade/internal/httpclient"
)

// Server-side entitlement codes found in detail.error.
const (
	ServerPlanLimitExceeded = "plan_limit_exceeded"
	ServerPlanRequired      = "plan_required"
	ServerCryptoNotAllowed  = "crypto_not_allowed"
)

// errorBody covers the envelopes the backend sends:
//
//	{"detail": "Signal not found"}
//	{"detail": {"error": "plan_limit_exceeded", "message": "...", "current_plan": "free", "limit": 3}}
//	{"detail": [{"loc": ["body", "amount"], "msg": "field required"}]}
//	{"error": "...", "message": "..."}
type errorBody struct {
	Detail  json.RawMessage `json:"detail"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

type structuredDetail struct {
	Error        string          `json:"error"`
	Message      string          `json:"message"`
	CurrentPlan  string          `json:"current_plan"`
	RequiredPlan string          `json:"required_plan"`
	Limit        json.RawMessage `json:"limit"`
}

type validationItem struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

type parsedError struct {
	serverCode   string
	message      string
	currentPlan  string
	requiredPlan string
	limit        string
}

func parseErrorBody(body []byte) parsedError {
	var eb errorBody
	if len(body) == 0 || json.Unmarshal(body, &eb) != nil {
		return parsedError{message: strings.TrimSpace(string(body))}
	}

	p := parsedError{serverCode: eb.Error, message: eb.Message}
	if len(eb.Detail) == 0 {
		return p
	}

	var s string
	if json.Unmarshal(eb.Detail, &s) == nil {
		p.message = s
		return p
	}

	var sd structuredDetail
	if json.Unmarshal(eb.Detail, &sd) == nil && (sd.Error != "" || sd.Message != "") {
		p.serverCode = sd.Error
		p.message = sd.Message
		p.currentPlan = sd.CurrentPlan
		p.requiredPlan = sd.RequiredPlan
		p.limit = rawScalar(sd.Limit)
		return p
	}

	var items []validationItem
	if json.Unmarshal(eb.Detail, &items) == nil && len(items) > 0 {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			msgs = append(msgs, formatValidationItem(it))
		}
		p.message = strings.Join(msgs, "; ")
	}
	return p
}

func formatValidationItem(it validationItem) string {
	parts := make([]string, 0, len(it.Loc))
	for _, l := range it.Loc {
		if s, ok := l.(string); ok && s == "body" {
			continue
		}
		parts = append(parts, fmt.Sprint(l))
	}
	if len(parts) == 0 {
		return it.Msg
	}
	return strings.Join(parts, ".") + ": " + it.Msg
}

func rawScalar(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var n json.Number
	if json.Unmarshal(raw, &n) == nil {
		return n.String()
	}
	return string(raw)
}

// normalizeResponse is the httpclient error handler for every API call.
func normalizeResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode < 400 {
		return nil
	}

	p := parseErrorBody(body)
	code := codeForStatus(resp.StatusCode, p.serverCode)

	return apperror.New(code,
		apperror.WithMessage(p.message),
		apperror.WithStatusCode(resp.StatusCode),
		apperror.WithContext(resp.Request.Method+" "+resp.Request.URL.Path),
		apperror.WithField(apperror.FieldServerCode, p.serverCode),
		apperror.WithField(apperror.FieldCurrentPlan, p.currentPlan),
		apperror.WithField(apperror.FieldRequiredPlan, p.requiredPlan),
		apperror.WithField(apperror.FieldLimit, p.limit),
	)
}

func codeForStatus(status int, serverCode string) apperror.Code {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return apperror.CodeValidationError
	case http.StatusUnauthorized:
		return apperror.CodeUnauthenticated
	case http.StatusForbidden:
		switch serverCode {
		case ServerPlanLimitExceeded:
			return apperror.CodePlanLimitExceeded
		case ServerPlanRequired:
			return apperror.CodePlanRequired
		case ServerCryptoNotAllowed:
			return apperror.CodeCryptoNotAllowed
		}
		return apperror.CodeForbidden
	case http.StatusNotFound:
		return apperror.CodeNotFound
	case http.StatusConflict:
		return apperror.CodeConflict
	case http.StatusTooManyRequests:
		return apperror.CodeRateLimitExceeded
	case http.StatusServiceUnavailable:
		return apperror.CodeServiceUnavailable
	case http.StatusGatewayTimeout:
		return apperror.CodeServiceTimeout
	}
	if status >= 500 {
		return apperror.CodeExternalServiceError
	}
	return apperror.CodeValidationError
}

// normalizeTransport maps errors that never produced a response.
func normalizeTransport(method, path string, err error) error {
	if _, ok := apperror.As(err); ok {
		return err
	}

	route := method + " " + path

	var decodeErr *httpclient.DecodeError
	if errors.As(err, &decodeErr) {
		return apperror.New(apperror.CodeInvalidResponse,
			apperror.WithContext(route),
			apperror.WithCause(err),
			apperror.WithStatusCode(decodeErr.StatusCode),
		)
	}

	if circuitbreaker.IsOpen(err) {
		return apperror.New(apperror.CodeCircuitOpen, apperror.WithContext(route), apperror.WithCause(err))
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return apperror.New(apperror.CodeServiceTimeout,
			apperror.WithContext(route),
			apperror.WithCause(err),
			apperror.WithStatusCode(0),
		)
	}

	return apperror.Network(route, err)
}

// countsAsFailure tells the breaker which errors mean the server is unhealthy.
func countsAsFailure(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	if appErr, ok := apperror.As(err); ok {
		return appErr.StatusCode >= 500
	}
	var decodeErr *httpclient.DecodeError
	return !errors.As(err, &decodeErr)
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	if appErr, ok := apperror.As(err); ok {
		return appErr.StatusCode
	}
	return 0
}
