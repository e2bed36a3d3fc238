// Package apperror defines the error taxonomy shared by every layer of the
// fulfillment core. Services return *Error values; handlers map the Kind to an
// HTTP status without ever exposing internal details (stack traces, SQL, etc.).
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure so callers can decide how to react.
// ConcurrencyConflict and InsufficientStock are expected, retryable business
// conditions; everything else indicates a caller or programmer error.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindInvalidArgument
	KindValidation
	KindInsufficientStock
	KindConflict
	KindForbidden
	KindInvalidStateTransition
	KindConcurrencyConflict
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindInvalidArgument:
		return "invalid_argument"
	case KindValidation:
		return "validation_failed"
	case KindInsufficientStock:
		return "insufficient_stock"
	case KindConflict:
		return "conflict"
	case KindForbidden:
		return "forbidden"
	case KindInvalidStateTransition:
		return "invalid_state_transition"
	case KindConcurrencyConflict:
		return "concurrency_conflict"
	default:
		return "internal"
	}
}

// Error carries a Kind plus a human-readable message, optionally wrapping a
// lower-level cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...interface{}) *Error {
	return newf(KindNotFound, format, args...)
}

func InvalidArgument(format string, args ...interface{}) *Error {
	return newf(KindInvalidArgument, format, args...)
}

func Validation(format string, args ...interface{}) *Error {
	return newf(KindValidation, format, args...)
}

func InsufficientStock(format string, args ...interface{}) *Error {
	return newf(KindInsufficientStock, format, args...)
}

func Conflict(format string, args ...interface{}) *Error {
	return newf(KindConflict, format, args...)
}

func Forbidden(format string, args ...interface{}) *Error {
	return newf(KindForbidden, format, args...)
}

func InvalidStateTransition(format string, args ...interface{}) *Error {
	return newf(KindInvalidStateTransition, format, args...)
}

func ConcurrencyConflict(format string, args ...interface{}) *Error {
	return newf(KindConcurrencyConflict, format, args...)
}

// Internal wraps an unexpected low-level error.
func Internal(err error, format string, args ...interface{}) *Error {
	return &Error{Kind: KindInternal, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the Kind from any error in the chain. Non-taxonomy errors
// report KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind anywhere in its chain.
func Is(err error, kind Kind) bool { return KindOf(err) == kind }

// Retryable reports whether the caller may automatically retry the whole
// business operation. Only expected race conditions qualify; a retry on any
// other kind would repeat the same failure.
func Retryable(err error) bool {
	switch KindOf(err) {
	case KindConcurrencyConflict, KindInsufficientStock:
		return true
	}
	return false
}

// HTTPStatus maps an error to the status code the transport layer should use.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidArgument:
		return http.StatusBadRequest
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindInsufficientStock, KindConflict, KindConcurrencyConflict:
		return http.StatusConflict
	case KindForbidden:
		return http.StatusForbidden
	case KindInvalidStateTransition:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Response is the canonical JSON error envelope for all 4xx/5xx replies.
type Response struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

// ToResponse builds the client-safe envelope. Internal errors are masked.
func ToResponse(err error) Response {
	kind := KindOf(err)
	if kind == KindInternal {
		return Response{Code: kind.String(), Detail: "internal server error"}
	}
	var e *Error
	errors.As(err, &e)
	return Response{Code: kind.String(), Detail: e.Message}
}

// ValidationResponse wraps per-field validation failures.
type ValidationResponse struct {
	Code   string            `json:"code"`
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidationResponse(fields map[string]string) *ValidationResponse {
	return &ValidationResponse{
		Code:   KindValidation.String(),
		Detail: "validation failed",
		Fields: fields,
	}
}
