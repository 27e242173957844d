package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// Common errors
var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict")
	ErrNetwork            = errors.New("network error")
	ErrRateLimited        = errors.New("too many requests")
	ErrInternalServer     = errors.New("internal server error")
	ErrBadRequest         = errors.New("bad request")
	ErrServiceUnavailable = errors.New("service unavailable")
)

// Error represents a custom error type
type Error struct {
	Code    string
	Message string
	Err     error
}

// Error returns the error message
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a new error with a message
func New(message string) error {
	return &Error{
		Message: message,
	}
}

// Wrap wraps an error with additional message
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return &Error{
		Message: message,
		Err:     err,
	}
}

// WrapWithCode wraps an error with a code and message
func WrapWithCode(err error, code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// GetCode returns the error code if it exists
func GetCode(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// GetMessage returns the error message
func GetMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsNotFound returns true if the error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalidInput returns true if the input was rejected before reaching the backend
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsUnauthorized returns true if the error is an unauthorized error
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsForbidden returns true if the error is a forbidden error
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

// IsInternalServer returns true if the error is an internal server error
func IsInternalServer(err error) bool {
	return errors.Is(err, ErrInternalServer)
}

// IsBadRequest returns true if the error is a bad request error
func IsBadRequest(err error) bool {
	return errors.Is(err, ErrBadRequest)
}

// IsServiceUnavailable returns true if the error is a service unavailable error
func IsServiceUnavailable(err error) bool {
	return errors.Is(err, ErrServiceUnavailable)
}

// IsNetwork reports transport failures: explicit ErrNetwork, net.Error, DNS and
// timeout errors.
func IsNetwork(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNetwork) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}

// Retryable reports whether repeating the same request may succeed.
func Retryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	if IsNotFound(err) || IsInvalidInput(err) || IsUnauthorized(err) || IsForbidden(err) ||
		IsBadRequest(err) || errors.Is(err, ErrConflict) {
		return false
	}
	return true
}

// IsClientFault reports errors caused by the request itself rather than by the backend.
func IsClientFault(err error) bool {
	return IsNotFound(err) || IsInvalidInput(err) || IsUnauthorized(err) ||
		IsForbidden(err) || IsBadRequest(err) || errors.Is(err, ErrConflict)
}

// UserMessage converts an error into the text shown in a dismissible alert.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	msg := strings.ToLower(err.Error())

	switch {
	case IsNetwork(err) ||
		strings.Contains(msg, "network") ||
		strings.Contains(msg, "failed to fetch") ||
		strings.Contains(msg, "timed out") ||
		strings.Contains(msg, "connection refused"):
		return "No internet connection. Please check your network and try again."
	case strings.Contains(msg, "invalid credentials") ||
		strings.Contains(msg, "invalid login credentials") ||
		strings.Contains(msg, "wrong password"):
		return "Incorrect email or password. Please try again."
	case strings.Contains(msg, "user not found"):
		return "We couldn't find an account with this email."
	case strings.Contains(msg, "email not confirmed") || strings.Contains(msg, "email not verified"):
		return "Please verify your email to continue."
	case IsUnauthorized(err) ||
		strings.Contains(msg, "invalid session") ||
		strings.Contains(msg, "session not found"):
		return "Session expired. Please log in again."
	case errors.Is(err, ErrRateLimited) ||
		strings.Contains(msg, "too many") ||
		strings.Contains(msg, "rate limit"):
		return "Too many attempts. Please wait a moment."
	case IsInvalidInput(err):
		return GetMessage(err)
	case IsNotFound(err):
		return "This item no longer exists."
	}

	return "Something went wrong. Please try again."
}
