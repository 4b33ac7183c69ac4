package util

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind groups errors by how the caller is expected to react.
type Kind string

const (
	KindAuth       Kind = "auth"
	KindValidation Kind = "validation"
	KindNetwork    Kind = "network"
	KindServer     Kind = "server"
	KindInternal   Kind = "internal"
)

// ErrSessionInvalidated is returned when a token refresh failed and the
// session has been cleared. Callers should send the user back to login.
var ErrSessionInvalidated = NewDomainError(KindAuth, "SESSION_INVALIDATED", "session expired, please log in again", http.StatusUnauthorized, nil)

// DomainError standardizes application errors.
type DomainError struct {
	Kind       Kind
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches on kind and code so wrapped copies of a sentinel still compare equal.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

// NewDomainError constructs a DomainError.
func NewDomainError(kind Kind, code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Kind: kind, Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(KindValidation, "VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

func NewAuthError(message string, err error) error {
	return &DomainError{
		Kind:       KindAuth,
		Code:       "UNAUTHORIZED",
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
		Err:        err,
	}
}

func NewForbidden(message string) error {
	return NewDomainError(KindAuth, "FORBIDDEN", message, http.StatusForbidden, nil)
}

// NewNetworkError wraps a transport failure. No HTTP status is available.
func NewNetworkError(message string, err error) error {
	return &DomainError{
		Kind:    KindNetwork,
		Code:    "NETWORK_ERROR",
		Message: message,
		Err:     err,
	}
}

// NewServerError builds an error from a non-2xx response. detail is the
// server-supplied explanation and wins over fallback when present.
func NewServerError(status int, detail, fallback string) error {
	message := detail
	if message == "" {
		message = fallback
	}
	code := "SERVER_ERROR"
	switch status {
	case http.StatusBadRequest:
		code = "BAD_REQUEST"
	case http.StatusNotFound:
		code = "NOT_FOUND"
	case http.StatusConflict:
		code = "CONFLICT"
	case http.StatusUnauthorized:
		code = "UNAUTHORIZED"
	case http.StatusForbidden:
		code = "FORBIDDEN"
	}
	return &DomainError{
		Kind:       KindServer,
		Code:       code,
		Message:    message,
		HTTPStatus: status,
	}
}

func NewInternalError(err error) error {
	return internalError(err)
}

func internalError(err error) *DomainError {
	return &DomainError{
		Kind:       KindInternal,
		Code:       "INTERNAL_ERROR",
		Message:    "internal error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return internalError(err)
}

func MapError(err error) error {
	return ToDomainError(err)
}

// KindOf reports the kind of err, KindInternal for unclassified errors.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	return ToDomainError(err).Kind
}

// UserMessage returns the text to show a person for err. Causes are left
// out on purpose; they go to the log.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	return ToDomainError(err).Message
}

// StatusOf returns the HTTP status attached to err, or 0.
func StatusOf(err error) int {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.HTTPStatus
	}
	return 0
}
