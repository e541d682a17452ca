// Package apperrors defines the failure kinds surfaced by the screenshot
// pipeline and how they map onto HTTP status codes.
package apperrors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Kind categorises a failure.
type Kind string

const (
	KindInvalidArgument Kind = "invalid_argument"
	KindNavigation      Kind = "navigation_error"
	KindTimeout         Kind = "timeout"
	KindCaptureFailed   Kind = "capture_failed"
	KindInternal        Kind = "internal_error"
	KindUnauthorized    Kind = "unauthorized"
	KindRateLimited     Kind = "rate_limited"
)

// statusByKind is consulted by StatusCode. Kinds missing here render as 500.
var statusByKind = map[Kind]int{
	KindInvalidArgument: http.StatusBadRequest,
	KindUnauthorized:    http.StatusUnauthorized,
	KindCaptureFailed:   http.StatusUnprocessableEntity,
	KindRateLimited:     http.StatusTooManyRequests,
	KindNavigation:      http.StatusBadGateway,
	KindTimeout:         http.StatusGatewayTimeout,
	KindInternal:        http.StatusInternalServerError,
}

// Error is a categorised application error. Message describes what the
// service was doing; Cause keeps the originating error so its text and
// identity survive propagation.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// StatusCode returns the HTTP status associated with the error's kind.
func (e *Error) StatusCode() int {
	if code, ok := statusByKind[e.Kind]; ok {
		return code
	}
	return http.StatusInternalServerError
}

// New creates an Error of the given kind.
func New(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// InvalidArgument builds a KindInvalidArgument error from a format string.
func InvalidArgument(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// Navigation wraps a failure to load the target URL.
func Navigation(cause error) *Error {
	return &Error{Kind: KindNavigation, Message: "navigation failed", Cause: cause}
}

// Timeout wraps a deadline expiry during the named step.
func Timeout(step string, cause error) *Error {
	return &Error{Kind: KindTimeout, Message: step + " timed out", Cause: cause}
}

// CaptureFailed reports a capture that produced no bytes.
func CaptureFailed(message string) *Error {
	return &Error{Kind: KindCaptureFailed, Message: message}
}

// Internal wraps an unexpected failure from the browser capability.
func Internal(message string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: message, Cause: cause}
}

// Classify wraps err for the named step. Deadline expiries become
// KindTimeout regardless of step; everything else gets fallback. Errors
// that are already *Error pass through unchanged.
func Classify(step string, err error, fallback Kind) error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Timeout(step, err)
	}
	return New(fallback, step+" failed", err)
}

// KindOf extracts the kind from err, defaulting to KindInternal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// StatusCode extracts the HTTP status for err.
func StatusCode(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.StatusCode()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}
