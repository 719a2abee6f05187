// Package dErrors provides code-tagged domain errors.
//
// Services return these so transports can map failures to a status without
// string matching. Stores return pkg/platform/sentinel errors instead;
// services translate at the boundary.
package dErrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a domain failure.
type Code string

const (
	// CodeValidation marks missing or malformed request data.
	CodeValidation Code = "validation"
	// CodeInvalidInput marks a value that failed parsing at a trust boundary.
	CodeInvalidInput Code = "invalid_input"
	// CodeNotFound marks an unknown process, document, sector or code.
	CodeNotFound Code = "not_found"
	// CodePermissionDenied marks a policy-evaluator refusal.
	CodePermissionDenied Code = "permission_denied"
	// CodeUnauthenticated marks a missing or unverifiable actor identity.
	CodeUnauthenticated Code = "unauthenticated"
	// CodeInvalidState marks an operation applied to an entity in the wrong
	// state: routing an archived process, double-signing, editing a locked
	// signed document.
	CodeInvalidState Code = "invalid_state"
	// CodeConflict marks a uniqueness or concurrent-update violation.
	CodeConflict Code = "conflict"
	// CodeInternal marks an opaque infrastructure failure after rollback.
	CodeInternal Code = "internal"
)

// Error is a domain error carrying a classification code.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New builds a domain error with the given code and message.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error, preserving the
// cause for errors.Is/As chains.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) carries the code.
func HasCode(err error, code Code) bool {
	var de *Error
	for errors.As(err, &de) {
		if de.Code == code {
			return true
		}
		err = de.cause
	}
	return false
}

// CodeOf returns the outermost code of err, or CodeInternal for untyped errors.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// ToHTTPStatus maps a code to the HTTP status used by the transport layer.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeValidation, CodeInvalidInput:
		return http.StatusBadRequest
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodePermissionDenied:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict, CodeInvalidState:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
