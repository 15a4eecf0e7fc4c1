package errors

import (
	stderrors "errors"
	"fmt"
)

// SearchError is the structured error type for docsearch.
// It provides rich context for error handling, logging, and user presentation.
type SearchError struct {
	// Code is the unique error code (e.g., "ERR_401_INVALID_QUERY").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, IO, Network, etc.).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Retryable indicates if the operation can be retried.
	Retryable bool
}

// Error implements the error interface.
func (e *SearchError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *SearchError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
// This enables errors.Is() to work with SearchError.
func (e *SearchError) Is(target error) bool {
	if t, ok := target.(*SearchError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *SearchError) WithDetail(key, value string) *SearchError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// New creates a new SearchError with the given code and message.
// Category, severity, and retryable flag are derived from the code.
func New(code string, message string, cause error) *SearchError {
	return &SearchError{
		Code:      code,
		Message:   message,
		Category:  categoryFromCode(code),
		Severity:  severityFromCode(code),
		Cause:     cause,
		Retryable: isRetryableCode(code),
	}
}

// Wrap creates a SearchError from an existing error.
// The error's message becomes the SearchError message.
func Wrap(code string, err error) *SearchError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// InvalidQuery creates an empty/whitespace-query validation error.
func InvalidQuery(message string) *SearchError {
	return New(ErrCodeInvalidQuery, message, nil)
}

// ModelUnavailable creates an embedding-provider-down error.
// These are retryable and degrade the dense path rather than failing a query.
func ModelUnavailable(message string, cause error) *SearchError {
	return New(ErrCodeModelUnavailable, message, cause)
}

// CacheCorrupt creates a cache deserialization error. Never surfaced to
// callers: the cache manager treats it as stale and rebuilds.
func CacheCorrupt(message string, cause error) *SearchError {
	return New(ErrCodeCacheCorrupt, message, cause)
}

// IndexUnbuilt creates a fatal startup error: no cache and no corpus.
func IndexUnbuilt(message string, cause error) *SearchError {
	return New(ErrCodeIndexUnbuilt, message, cause)
}

// EnginesUnavailable creates the per-query fatal error for when both
// retrieval engines failed.
func EnginesUnavailable(message string, cause error) *SearchError {
	return New(ErrCodeEnginesUnavailable, message, cause)
}

// IsRetryable checks if an error is retryable.
// Returns true if the error chain contains a SearchError with the
// Retryable flag set.
func IsRetryable(err error) bool {
	var se *SearchError
	if stderrors.As(err, &se) {
		return se.Retryable
	}
	return false
}

// IsFatal checks if an error has fatal severity.
// Fatal errors should abort the current operation.
func IsFatal(err error) bool {
	var se *SearchError
	if stderrors.As(err, &se) {
		return se.Severity == SeverityFatal
	}
	return false
}

// GetCode extracts the error code from a SearchError anywhere in the
// chain. Returns empty string if none is found.
func GetCode(err error) string {
	var se *SearchError
	if stderrors.As(err, &se) {
		return se.Code
	}
	return ""
}
