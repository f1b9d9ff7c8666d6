// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package apperr

import (
	"errors"
	"net/http"
)

// Kind identifies the class of a failure.
type Kind int

const (
	KindInternal Kind = iota
	KindAuthenticationRequired
	KindAuthorizationDenied
	KindValidationFailed
	KindNotFound
	KindConflict
	KindRateLimited
)

func (k Kind) String() string {
	switch k {
	case KindAuthenticationRequired:
		return "authentication"
	case KindAuthorizationDenied:
		return "authorization"
	case KindValidationFailed:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindRateLimited:
		return "rate_limit"
	default:
		return "internal"
	}
}

// Status returns the HTTP status code for the kind.
func (k Kind) Status() int {
	switch k {
	case KindAuthenticationRequired:
		return http.StatusUnauthorized
	case KindAuthorizationDenied:
		return http.StatusForbidden
	case KindValidationFailed:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified application error. Field is set for validation
// failures, Resource for not-found errors and Reason for conflicts.
type Error struct {
	Kind     Kind
	Message  string
	Field    string
	Resource string
	Reason   string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func AuthenticationRequired() error {
	return &Error{Kind: KindAuthenticationRequired, Message: "authentication required"}
}

func AuthorizationDenied(message string) error {
	if message == "" {
		message = "permission denied"
	}
	return &Error{Kind: KindAuthorizationDenied, Message: message}
}

func ValidationFailed(field, message string) error {
	return &Error{Kind: KindValidationFailed, Field: field, Message: message}
}

func NotFound(resource string) error {
	return &Error{Kind: KindNotFound, Resource: resource, Message: resource + " not found"}
}

func Conflict(reason string) error {
	return &Error{Kind: KindConflict, Reason: reason, Message: reason}
}

func RateLimited() error {
	return &Error{Kind: KindRateLimited, Message: "too many requests"}
}

// Internal wraps an unexpected failure. The message is what clients see;
// err is only logged.
func Internal(message string, err error) error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// As extracts the classified error from err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the kind of err, KindInternal when unclassified.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTPStatus maps err to a response status code.
func HTTPStatus(err error) int {
	return KindOf(err).Status()
}

// PublicMessage is the message safe to show to clients. Unclassified
// errors never leak their text.
func PublicMessage(err error) string {
	e, ok := As(err)
	if !ok {
		return "internal server error"
	}
	return e.Message
}
