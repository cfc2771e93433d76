// Package errors provides centralized error definitions and error handling utilities
// for Mosaic. It defines the error kinds produced while fetching feed sources,
// the aggregate error surfaced by fail-fast aggregation, and classification helpers.
//
// # Error Types
//
// Source errors describe why a single fetch failed:
//   - TransportError: the request never produced a response (network, DNS, reset)
//   - StatusError: the response carried a non-success status code
//   - FormatError: the response body could not be decoded
//
// AggregateError wraps the first source error observed by a fail-fast
// aggregate fetch, naming the source it came from.
//
// # Usage
//
//	err := errors.NewStatusError("http://feeds/banners", 503)
//
//	var statusErr *errors.StatusError
//	if errors.As(err, &statusErr) { ... }
//
//	if errors.Is(err, errors.ErrInjectedFault) { ... }
//	if errors.IsRetryable(err) { ... }
//
// # Error Classification
//
// Errors can be classified by severity and behavior:
//   - Retryable: transient errors that may succeed on a new fetch
//   - UserFacing: errors safe to display in the list view
//   - Severity: Debug, Info, Warning, Error, Critical
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityDebug is for errors that are useful for debugging but not critical.
	SeverityDebug Severity = iota
	// SeverityInfo is for informational errors that don't indicate a problem.
	SeverityInfo
	// SeverityWarning is for errors that might indicate a problem but aren't critical.
	SeverityWarning
	// SeverityError is for errors that indicate a real problem.
	SeverityError
	// SeverityCritical is for errors that require immediate attention.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Fetch-related sentinel errors
var (
	// ErrInjectedFault is returned when the fault injector aborts an aggregate fetch.
	ErrInjectedFault = New("simulated network error")
	// ErrUnknownCategory indicates a source category that is not one of the fixed five.
	ErrUnknownCategory = New("unknown source category")
	// ErrEmptyResponse indicates a source returned no body at all.
	ErrEmptyResponse = New("empty response body")
)

// Store-related sentinel errors
var (
	// ErrStoreStopped is returned by Dispatch after the store has been stopped.
	ErrStoreStopped = New("store is stopped")
	// ErrStoreRunning is returned when Start is called twice.
	ErrStoreRunning = New("store already running")
)

// General sentinel errors
var (
	// ErrInvalidInput indicates that input validation failed.
	ErrInvalidInput = New("invalid input")
)

// -----------------------------------------------------------------------------
// Base Error Interface
// -----------------------------------------------------------------------------

// MosaicError is the base interface for all typed Mosaic errors.
// It extends the standard error interface with additional methods for
// error handling and classification.
type MosaicError interface {
	error

	// Unwrap returns the underlying error, if any.
	Unwrap() error

	// Severity returns the severity level of this error.
	Severity() Severity

	// IsRetryable returns true if the error is transient and a new fetch
	// may succeed.
	IsRetryable() bool

	// IsUserFacing returns true if the error message is safe to display
	// to end users.
	IsUserFacing() bool
}

// -----------------------------------------------------------------------------
// Base Error Implementation
// -----------------------------------------------------------------------------

// baseError provides common functionality for all error types.
type baseError struct {
	message    string
	cause      error
	severity   Severity
	retryable  bool
	userFacing bool
}

// Error returns the error message.
func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error.
func (e *baseError) Unwrap() error {
	return e.cause
}

// Severity returns the error severity.
func (e *baseError) Severity() Severity {
	return e.severity
}

// IsRetryable returns whether the error is retryable.
func (e *baseError) IsRetryable() bool {
	return e.retryable
}

// IsUserFacing returns whether the error is safe to show users.
func (e *baseError) IsUserFacing() bool {
	return e.userFacing
}

// -----------------------------------------------------------------------------
// Source Errors
// -----------------------------------------------------------------------------

// TransportError represents a request that never produced a response.
//
// Example:
//
//	err := errors.NewTransportError("http://feeds/users", dialErr)
//	fmt.Println(err) // "transport error [url=http://feeds/users]: request failed: dial tcp: ..."
type TransportError struct {
	baseError
	URL string
}

// NewTransportError creates a new TransportError.
func NewTransportError(url string, cause error) *TransportError {
	return &TransportError{
		baseError: baseError{
			message:    "request failed",
			cause:      cause,
			severity:   SeverityError,
			retryable:  true,
			userFacing: true,
		},
		URL: url,
	}
}

// Error returns the formatted error message.
func (e *TransportError) Error() string {
	return formatWithContext("transport error", e.baseError, contextPart("url", e.URL))
}

// StatusError represents a response with a non-success status code.
type StatusError struct {
	baseError
	URL  string
	Code int
}

// NewStatusError creates a new StatusError. Server errors (5xx) and 429 are
// classified as retryable.
func NewStatusError(url string, code int) *StatusError {
	return &StatusError{
		baseError: baseError{
			message:    fmt.Sprintf("unexpected status %d %s", code, http.StatusText(code)),
			severity:   SeverityError,
			retryable:  code >= 500 || code == http.StatusTooManyRequests,
			userFacing: true,
		},
		URL:  url,
		Code: code,
	}
}

// Error returns the formatted error message.
func (e *StatusError) Error() string {
	return formatWithContext("status error", e.baseError, contextPart("url", e.URL))
}

// FormatError represents a response body that could not be decoded.
type FormatError struct {
	baseError
	Source string
}

// NewFormatError creates a new FormatError.
func NewFormatError(source, message string, cause error) *FormatError {
	return &FormatError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			retryable:  false,
			userFacing: true,
		},
		Source: source,
	}
}

// Error returns the formatted error message.
func (e *FormatError) Error() string {
	return formatWithContext("format error", e.baseError, contextPart("source", e.Source))
}

// -----------------------------------------------------------------------------
// Aggregate Error
// -----------------------------------------------------------------------------

// AggregateError is returned by a fail-fast aggregate fetch. It carries the
// first cause observed and the source that produced it.
//
// Example:
//
//	var aggErr *errors.AggregateError
//	if errors.As(err, &aggErr) {
//	    log.Warn("fetch aborted", "source", aggErr.Source)
//	}
type AggregateError struct {
	baseError
	Source string
}

// NewAggregateError creates a new AggregateError. Source may be empty when the
// failure did not originate from a single source (for example an injected fault).
func NewAggregateError(source string, cause error) *AggregateError {
	retryable := false
	var me MosaicError
	if As(cause, &me) {
		retryable = me.IsRetryable()
	}
	if Is(cause, ErrInjectedFault) {
		retryable = true
	}
	return &AggregateError{
		baseError: baseError{
			message:    "aggregate fetch failed",
			cause:      cause,
			severity:   SeverityError,
			retryable:  retryable,
			userFacing: true,
		},
		Source: source,
	}
}

// Error returns the formatted error message.
func (e *AggregateError) Error() string {
	return formatWithContext("aggregate error", e.baseError, contextPart("source", e.Source))
}

// Reason returns the message of the root cause, which is what the list view
// shows to the user.
func (e *AggregateError) Reason() string {
	if e.cause == nil {
		return e.message
	}
	return Reason(e.cause)
}

// -----------------------------------------------------------------------------
// Semantic Errors
// -----------------------------------------------------------------------------

// ValidationError represents invalid input or state.
type ValidationError struct {
	baseError
	Field string
	Value any
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		baseError: baseError{
			message:    message,
			cause:      ErrInvalidInput,
			severity:   SeverityWarning,
			retryable:  false,
			userFacing: true,
		},
	}
}

// WithField adds the field name to the error context.
func (e *ValidationError) WithField(field string) *ValidationError {
	e.Field = field
	return e
}

// WithValue adds the invalid value to the error context.
func (e *ValidationError) WithValue(value any) *ValidationError {
	e.Value = value
	return e
}

// Error returns the formatted error message.
func (e *ValidationError) Error() string {
	var parts []string
	if e.Field != "" {
		parts = append(parts, fmt.Sprintf("field=%s", e.Field))
	}
	if e.Value != nil {
		parts = append(parts, fmt.Sprintf("value=%v", e.Value))
	}
	if len(parts) == 0 {
		return "validation error: " + e.message
	}
	return fmt.Sprintf("validation error [%s]: %s", strings.Join(parts, ", "), e.message)
}

// -----------------------------------------------------------------------------
// Formatting helpers
// -----------------------------------------------------------------------------

func contextPart(key, value string) string {
	if value == "" {
		return ""
	}
	return key + "=" + value
}

func formatWithContext(prefix string, base baseError, parts ...string) string {
	var filtered []string
	for _, p := range parts {
		if p != "" {
			filtered = append(filtered, p)
		}
	}
	if len(filtered) > 0 {
		prefix = fmt.Sprintf("%s [%s]", prefix, strings.Join(filtered, ", "))
	}
	if base.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, base.message, base.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, base.message)
}

// -----------------------------------------------------------------------------
// Classification Helpers
// -----------------------------------------------------------------------------

// IsRetryable returns true if the error is transient and a new fetch may succeed.
// This checks for:
//   - Errors implementing MosaicError with IsRetryable() returning true
//   - Errors wrapping ErrInjectedFault
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var mosaicErr MosaicError
	if As(err, &mosaicErr) {
		return mosaicErr.IsRetryable()
	}

	return Is(err, ErrInjectedFault)
}

// IsUserFacing returns true if the error message is safe to display to end users.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}

	var mosaicErr MosaicError
	if As(err, &mosaicErr) {
		return mosaicErr.IsUserFacing()
	}

	return Is(err, ErrInjectedFault)
}

// GetSeverity returns the severity level of the error.
// Returns SeverityError for errors that don't implement MosaicError.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDebug
	}

	var mosaicErr MosaicError
	if As(err, &mosaicErr) {
		return mosaicErr.Severity()
	}

	return SeverityError
}

// IsSourceError returns true if the error is a TransportError, StatusError or FormatError.
func IsSourceError(err error) bool {
	if err == nil {
		return false
	}

	var transport *TransportError
	var status *StatusError
	var format *FormatError

	return As(err, &transport) || As(err, &status) || As(err, &format)
}

// Reason returns a short message for err suitable for the list view: the
// innermost typed error's message, or the error text itself.
func Reason(err error) string {
	if err == nil {
		return ""
	}

	var aggErr *AggregateError
	if As(err, &aggErr) && aggErr.cause != nil {
		return Reason(aggErr.cause)
	}
	var status *StatusError
	if As(err, &status) {
		return status.message
	}
	var transport *TransportError
	if As(err, &transport) {
		if transport.cause != nil {
			return Reason(transport.cause)
		}
		return transport.message
	}
	var format *FormatError
	if As(err, &format) {
		return format.message
	}
	return err.Error()
}

// -----------------------------------------------------------------------------
// Convenience Constructors
// -----------------------------------------------------------------------------

// Wrap wraps an error with additional context message.
// Unlike fmt.Errorf with %w, this is a no-op for nil errors.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
