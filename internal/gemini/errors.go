package gemini

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrMissingCredential is returned before any network activity when no API key is configured
var ErrMissingCredential = errors.New("gemini: API key is not configured")

// ProviderError is a non-2xx answer from the provider
type ProviderError struct {
	StatusCode int
	StatusText string
	Body       []byte
}

// Error implements the error interface
func (e *ProviderError) Error() string {
	return fmt.Sprintf("gemini API error [%d]: %s", e.StatusCode, e.StatusText)
}

// IsRetriable reports whether another attempt may succeed
func (e *ProviderError) IsRetriable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// TransportError wraps a failure to reach the provider at all
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("failed to send request to gemini: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsRetriable reports true; the request never produced an answer
func (e *TransportError) IsRetriable() bool { return true }
