// Package model defines the core data structures and the error taxonomy shared by
// the gateway, the poller and the command layer.
package model

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error codes derived from HTTP status of a failed API call
const (
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodePaymentRequired = "PAYMENT_REQUIRED"
	ErrCodeForbidden       = "FORBIDDEN"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeConflict        = "CONFLICT"
	ErrCodeUnprocessable   = "UNPROCESSABLE"
	ErrCodeRateLimit       = "RATE_LIMITED"
	ErrCodeInternal        = "SERVER_ERROR"
	ErrCodeMaintenance     = "MAINTENANCE"
)

// HTTPToErrorCode maps HTTP status codes to error codes
var HTTPToErrorCode = map[int]string{
	http.StatusBadRequest:          ErrCodeBadRequest,
	http.StatusUnauthorized:        ErrCodeUnauthorized,
	http.StatusPaymentRequired:     ErrCodePaymentRequired,
	http.StatusForbidden:           ErrCodeForbidden,
	http.StatusNotFound:            ErrCodeNotFound,
	http.StatusConflict:            ErrCodeConflict,
	http.StatusUnprocessableEntity: ErrCodeUnprocessable,
	http.StatusTooManyRequests:     ErrCodeRateLimit,
	http.StatusInternalServerError: ErrCodeInternal,
	http.StatusServiceUnavailable:  ErrCodeMaintenance,
}

// ErrorCodeFromHTTP returns the error code for an HTTP status
func ErrorCodeFromHTTP(status int) string {
	if code, ok := HTTPToErrorCode[status]; ok {
		return code
	}
	if status >= 400 && status < 500 {
		return ErrCodeBadRequest
	}
	return ErrCodeInternal
}

// Sentinel errors
var (
	// ErrNotAuthenticated is returned by every authenticated operation when no
	// credential is available. No request is sent in that case.
	ErrNotAuthenticated = errors.New("not authenticated, please login first")

	// ErrInsufficientCredits marks a rejected search caused by an empty balance
	ErrInsufficientCredits = errors.New("insufficient credits")

	// ErrPollTimeout marks a search that stayed non-terminal for every allowed attempt
	ErrPollTimeout = errors.New("search timed out")
)

// TransportError is a network-layer failure: connection refused or reset,
// request timeout, or a response body that cannot be decoded.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("network error: %v", e.Err)
	}
	return fmt.Sprintf("network error during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// APIError is an application-level failure reported by the service
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("HTTP %d error", e.StatusCode)
	}
	return e.Message
}

// Code returns the error code for the response status
func (e *APIError) Code() string {
	return ErrorCodeFromHTTP(e.StatusCode)
}

// Is reports insufficient-credit failures as ErrInsufficientCredits
func (e *APIError) Is(target error) bool {
	if target != ErrInsufficientCredits {
		return false
	}
	return e.StatusCode == http.StatusPaymentRequired ||
		strings.Contains(strings.ToLower(e.Message), "insufficient credits")
}

// SubmitError is returned when the service refuses to start a search job
type SubmitError struct {
	Err error
}

func (e *SubmitError) Error() string {
	return fmt.Sprintf("search rejected: %v", e.Err)
}

func (e *SubmitError) Unwrap() error {
	return e.Err
}

// PollTimeoutError is returned when the attempt bound is exhausted
type PollTimeoutError struct {
	JobID    string
	Attempts int
}

func (e *PollTimeoutError) Error() string {
	return fmt.Sprintf("search %s timed out after %d status checks", e.JobID, e.Attempts)
}

func (e *PollTimeoutError) Is(target error) bool {
	return target == ErrPollTimeout
}

// RemoteJobFailedError is returned when the service reports the job as failed
type RemoteJobFailedError struct {
	JobID   string
	Message string
}

func (e *RemoteJobFailedError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("search %s failed on the server", e.JobID)
	}
	return fmt.Sprintf("search %s failed: %s", e.JobID, e.Message)
}

// ValidationError reports a bad flag or argument value
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// IsTransport reports whether err is a network-layer failure
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsValidation reports whether err is a validation failure
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
