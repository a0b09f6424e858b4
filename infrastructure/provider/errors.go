package provider

import (
	"errors"
	"fmt"
)

// ErrUnknownProvider indicates a provider setting named a backend the
// factory cannot build.
var ErrUnknownProvider = errors.New("unknown provider")

// ProviderError wraps a backend failure with the operation that failed
// and the HTTP status when one was observed.
type ProviderError struct {
	Operation  string
	StatusCode int
	Message    string
	Err        error
}

// NewProviderError creates a ProviderError.
func NewProviderError(operation string, statusCode int, message string, err error) *ProviderError {
	return &ProviderError{
		Operation:  operation,
		StatusCode: statusCode,
		Message:    message,
		Err:        err,
	}
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("provider %s failed (status %d): %s", e.Operation, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("provider %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the underlying error.
func (e *ProviderError) Unwrap() error {
	return e.Err
}
