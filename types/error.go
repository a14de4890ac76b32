package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode represents a unified error code across the module.
type ErrorCode string

// Provider construction error codes
const (
	// ErrConfiguration covers malformed service keys, missing credentials and
	// any other problem the caller has to fix in its configuration.
	ErrConfiguration ErrorCode = "CONFIGURATION"
	// ErrAuthentication is returned when the OAuth token endpoint rejects
	// the client credentials or answers with something unusable.
	ErrAuthentication ErrorCode = "AUTHENTICATION"
	// ErrInvalidUsage marks API misuse, e.g. calling methods on a provider
	// that was not built by a constructor.
	ErrInvalidUsage ErrorCode = "INVALID_USAGE"
)

// Error represents a structured error with code, message, and metadata.
type Error struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	HTTPStatus int       `json:"http_status,omitempty"`
	StatusText string    `json:"status_text,omitempty"`
	Body       string    `json:"body,omitempty"`
	Retryable  bool      `json:"retryable"`
	Cause      error     `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// NewConfigurationError reports a configuration problem.
func NewConfigurationError(message string) *Error {
	return NewError(ErrConfiguration, message)
}

// NewAuthenticationError reports a non-success answer of the OAuth token
// endpoint. The status code, status text and raw body are kept for diagnostics.
func NewAuthenticationError(status int, statusText, body string) *Error {
	msg := fmt.Sprintf("OAuth token request failed: %d %s", status, statusText)
	if b := strings.TrimSpace(body); b != "" {
		msg += " - " + b
	}
	return &Error{
		Code:       ErrAuthentication,
		Message:    msg,
		HTTPStatus: status,
		StatusText: statusText,
		Body:       body,
	}
}

// NewInvalidUsageError reports API misuse.
func NewInvalidUsageError(message string) *Error {
	return NewError(ErrInvalidUsage, message)
}

// WithCause adds a cause to the error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithHTTPStatus sets the HTTP status code.
func (e *Error) WithHTTPStatus(status int) *Error {
	e.HTTPStatus = status
	return e
}

// WithRetryable marks the error as retryable.
func (e *Error) WithRetryable(retryable bool) *Error {
	e.Retryable = retryable
	return e
}

// AsError extracts a *Error from an error chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsErrorCode reports whether err carries the given code anywhere in its chain.
func IsErrorCode(err error, code ErrorCode) bool {
	e, ok := AsError(err)
	return ok && e.Code == code
}

// IsConfigurationError reports whether err is a configuration error.
func IsConfigurationError(err error) bool { return IsErrorCode(err, ErrConfiguration) }

// IsAuthenticationError reports whether err is an authentication error.
func IsAuthenticationError(err error) bool { return IsErrorCode(err, ErrAuthentication) }

// IsInvalidUsageError reports whether err is an invalid usage error.
func IsInvalidUsageError(err error) bool { return IsErrorCode(err, ErrInvalidUsage) }
