// Package apperrors defines the typed error taxonomy shared by the cart,
// checkout and order-submission components.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies an application error. The kind, not the message, decides
// retry eligibility and the HTTP status the facade reports.
type Kind string

const (
	KindValidation  Kind = "validation"
	KindAuth        Kind = "auth"
	KindNetwork     Kind = "network"
	KindTimeout     Kind = "timeout"
	KindServer      Kind = "server"
	KindRateLimited Kind = "rate_limited"
	KindCancelled   Kind = "cancelled"
)

// FieldViolation names one violated validation rule. Validation errors
// always carry every violation at once, never a partial message.
type FieldViolation struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// Error is the application error type.
type Error struct {
	Kind     Kind             `json:"kind"`
	Message  string           `json:"message"`
	Status   int              `json:"status,omitempty"`   // upstream HTTP status, when one exists
	Fields   []FieldViolation `json:"fields,omitempty"`   // populated for validation errors
	Attempts int              `json:"attempts,omitempty"` // populated on terminal submission failures
	Err      error            `json:"-"`
}

func (e *Error) Error() string {
	if len(e.Fields) > 0 {
		parts := make([]string, 0, len(e.Fields))
		for _, f := range e.Fields {
			parts = append(parts, f.Field+": "+f.Message)
		}
		return fmt.Sprintf("%s (%s)", e.Message, strings.Join(parts, "; "))
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches errors by kind so callers can compare against the sentinel
// errors below with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinels for errors.Is comparisons.
var (
	ErrValidation  = &Error{Kind: KindValidation, Message: "validation failed"}
	ErrAuth        = &Error{Kind: KindAuth, Message: "authentication required"}
	ErrNetwork     = &Error{Kind: KindNetwork, Message: "network failure"}
	ErrTimeout     = &Error{Kind: KindTimeout, Message: "request timed out"}
	ErrServer      = &Error{Kind: KindServer, Message: "upstream server error"}
	ErrRateLimited = &Error{Kind: KindRateLimited, Message: "rate limited"}
	ErrCancelled   = &Error{Kind: KindCancelled, Message: "operation cancelled"}
)

// Validation builds a validation error carrying the full violation list.
func Validation(message string, fields ...FieldViolation) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

// Auth builds an authentication error.
func Auth(message string) *Error {
	return &Error{Kind: KindAuth, Message: message}
}

// Network wraps a transport failure.
func Network(err error) *Error {
	return &Error{Kind: KindNetwork, Message: "network failure", Err: err}
}

// Timeout wraps a deadline failure.
func Timeout(err error) *Error {
	return &Error{Kind: KindTimeout, Message: "request timed out", Err: err}
}

// Cancelled marks a caller-initiated abort. Not a failure to log as one.
func Cancelled() *Error {
	return &Error{Kind: KindCancelled, Message: "operation cancelled"}
}

// FromStatus classifies an upstream HTTP response status.
func FromStatus(status int, body string) *Error {
	msg := strings.TrimSpace(body)
	if msg == "" {
		msg = http.StatusText(status)
	}
	switch {
	case status == http.StatusTooManyRequests:
		return &Error{Kind: KindRateLimited, Message: msg, Status: status}
	case status >= 500:
		return &Error{Kind: KindServer, Message: msg, Status: status}
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &Error{Kind: KindAuth, Message: msg, Status: status}
	default:
		return &Error{Kind: KindValidation, Message: msg, Status: status}
	}
}

// KindOf reports the kind of err, or the empty kind for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Retryable reports whether err is transient: network and timeout failures,
// upstream 5xx responses, and 429 rate limiting. Everything else fails on
// first occurrence.
func Retryable(err error) bool {
	switch KindOf(err) {
	case KindNetwork, KindTimeout, KindServer, KindRateLimited:
		return true
	}
	return false
}

// HTTPStatus maps an application error onto the status the facade reports.
func HTTPStatus(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindTimeout:
		return http.StatusGatewayTimeout
	case KindCancelled:
		return 499 // client closed request
	default:
		return http.StatusBadGateway
	}
}
