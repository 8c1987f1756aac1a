package errors

import (
	"errors"
	"fmt"
)

// DeckError is the structured error type for deckforge.
// It provides context for error handling, logging, and degradation
// decisions in the pipeline.
type DeckError struct {
	// Code is the unique error code (e.g., "ERR_204_NOT_INDEXED").
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
func (e *DeckError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *DeckError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
func (e *DeckError) Is(target error) bool {
	if t, ok := target.(*DeckError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *DeckError) WithDetail(key, value string) *DeckError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithRetryable overrides the retryable flag derived from the code.
func (e *DeckError) WithRetryable(retryable bool) *DeckError {
	e.Retryable = retryable
	return e
}

// New creates a new DeckError with the given code and message.
// Category, severity, and retryable flag are derived from the code.
func New(code string, message string, cause error) *DeckError {
	return &DeckError{
		Code:      code,
		Message:   message,
		Category:  categoryFromCode(code),
		Severity:  severityFromCode(code),
		Cause:     cause,
		Retryable: isRetryableCode(code),
	}
}

// Wrap creates a DeckError from an existing error.
// The wrapped error's message becomes the DeckError message.
func Wrap(code string, err error) *DeckError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// NotIndexed creates the recoverable "collection was never indexed" error.
func NotIndexed(collection string) *DeckError {
	return New(ErrCodeNotIndexed,
		fmt.Sprintf("collection %q has not been indexed", collection), nil).
		WithDetail("collection", collection)
}

// EmptyResponse creates the error for an inference call that returned nothing.
func EmptyResponse(provider string) *DeckError {
	return New(ErrCodeEmptyResponse,
		fmt.Sprintf("empty response from %s", provider), nil)
}

// MalformedPayload creates the error for a response with no extractable JSON.
func MalformedPayload(message string, cause error) *DeckError {
	return New(ErrCodeMalformedPayload, message, cause)
}

// TransientIO creates a retryable network/storage error.
func TransientIO(message string, cause error) *DeckError {
	return New(ErrCodeNetworkTimeout, message, cause)
}

// ConfigError creates a configuration-related error.
func ConfigError(message string, cause error) *DeckError {
	return New(ErrCodeConfigInvalid, message, cause)
}

// CredentialMissing creates the error for absent external credentials.
// It is a warning: callers surface a descriptive placeholder payload
// instead of aborting.
func CredentialMissing(what string) *DeckError {
	return New(ErrCodeCredentialMissing,
		fmt.Sprintf("%s is not configured", what), nil)
}

// IsRetryable checks if an error (anywhere in the chain) is retryable.
func IsRetryable(err error) bool {
	var de *DeckError
	if errors.As(err, &de) {
		return de.Retryable
	}
	return false
}

// IsFatal checks if an error has fatal severity.
// Fatal errors abort the whole pipeline run.
func IsFatal(err error) bool {
	var de *DeckError
	if errors.As(err, &de) {
		return de.Severity == SeverityFatal
	}
	return false
}

// HasCode reports whether err carries the given deckforge error code.
func HasCode(err error, code string) bool {
	var de *DeckError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// GetCode extracts the error code, or empty string for foreign errors.
func GetCode(err error) string {
	var de *DeckError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}
