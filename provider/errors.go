package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode categorizes provider failures.
type ErrorCode string

const (
	// CodeAuth covers invalid or missing credentials.
	CodeAuth ErrorCode = "authentication"

	// CodeRateLimited covers quota and rate-limit rejections.
	CodeRateLimited ErrorCode = "rate_limited"

	// CodeTimeout covers a caller deadline elapsing mid-request.
	CodeTimeout ErrorCode = "timeout"

	// CodeInvalidRequest covers malformed requests, e.g. a bad model name.
	CodeInvalidRequest ErrorCode = "invalid_request"

	// CodeUnclassified covers everything else.
	CodeUnclassified ErrorCode = "unclassified"
)

// Error represents a failure from a chat provider.
type Error struct {
	Provider   string
	Code       ErrorCode
	StatusCode int
	Message    string
	Cause      error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s error (%s, status %d): %s",
			e.Provider, e.Code, e.StatusCode, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s error (%s): %s: %v",
			e.Provider, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s error (%s): %s", e.Provider, e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// ClassifyStatus maps an HTTP status code to an error code.
func ClassifyStatus(status int) ErrorCode {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return CodeAuth
	case http.StatusTooManyRequests:
		return CodeRateLimited
	case http.StatusBadRequest, http.StatusNotFound,
		http.StatusUnprocessableEntity:
		return CodeInvalidRequest
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return CodeTimeout
	default:
		return CodeUnclassified
	}
}

// WrapTransport converts a transport-level failure into an Error.
// Context deadline expiry becomes CodeTimeout so callers can report
// it as a request timeout rather than a generic failure.
func WrapTransport(providerName string, err error) *Error {
	code := CodeUnclassified
	msg := "request failed"
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		code = CodeTimeout
		msg = "deadline elapsed before the response completed"
	case errors.Is(err, context.Canceled):
		code = CodeTimeout
		msg = "request canceled"
	}
	return &Error{
		Provider: providerName,
		Code:     code,
		Message:  msg,
		Cause:    err,
	}
}

func classify(code ErrorCode) func(error) bool {
	return func(err error) bool {
		var pe *Error
		if err == nil {
			return false
		}
		if errors.As(err, &pe) {
			return pe.Code == code
		}
		return false
	}
}

// Predicates for common handling patterns.
var (
	IsAuth           = classify(CodeAuth)
	IsRateLimited    = classify(CodeRateLimited)
	IsTimeout        = classify(CodeTimeout)
	IsInvalidRequest = classify(CodeInvalidRequest)
)

// Label returns a short human-readable label for an error, suitable
// for console display.
func Label(err error) string {
	var pe *Error
	if !errors.As(err, &pe) {
		return "Unexpected Error"
	}
	switch pe.Code {
	case CodeAuth:
		return "Authentication Error"
	case CodeRateLimited:
		return "Rate Limit Error"
	case CodeTimeout:
		return "Request Timeout"
	case CodeInvalidRequest:
		return "Invalid Request"
	default:
		return "Unexpected Error"
	}
}
