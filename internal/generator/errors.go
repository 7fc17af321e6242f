package generator

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType classifies a generation failure so callers can decide between
// retrying, surfacing a credential problem, or falling back to curated content.
type ErrorType string

const (
	ErrAuth            ErrorType = "AUTH_ERROR"
	ErrRateLimit       ErrorType = "RATE_LIMIT"
	ErrNetwork         ErrorType = "NETWORK_ERROR"
	ErrInvalidResponse ErrorType = "INVALID_RESPONSE"
	ErrUnknown         ErrorType = "UNKNOWN"
)

// Error is the classified failure every gateway operation returns.
type Error struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(t ErrorType, message string, err error) *Error {
	return &Error{Type: t, Message: message, Err: err}
}

// IsType reports whether err is (or wraps) a gateway error of the given type.
func IsType(err error, t ErrorType) bool {
	var genErr *Error
	return errors.As(err, &genErr) && genErr.Type == t
}

// classifyStatus maps an HTTP status from a provider to an error type.
// 401/403 are credential problems, 429 is throttling, every other non-2xx
// is treated as a transport-level failure.
func classifyStatus(provider string, status int) *Error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return newError(ErrAuth, fmt.Sprintf("%s rejected the API key", provider), nil)
	case status == http.StatusTooManyRequests:
		return newError(ErrRateLimit, fmt.Sprintf("%s is throttling requests", provider), nil)
	default:
		return newError(ErrNetwork, fmt.Sprintf("%s returned status %d", provider, status), nil)
	}
}
