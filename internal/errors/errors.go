package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/aashari/go-report-analyzer/internal/logger"
	"github.com/aashari/go-report-analyzer/internal/utils"
)

// ErrorType represents different types of errors
type ErrorType string

const (
	ErrorTypeMethodNotAllowed ErrorType = "method_not_allowed"
	ErrorTypeConfiguration    ErrorType = "configuration_error"
	ErrorTypeExternal         ErrorType = "external_error"
	ErrorTypeBlocked          ErrorType = "blocked_error"
	ErrorTypeMalformed        ErrorType = "malformed_response"
	ErrorTypeInternal         ErrorType = "internal_error"
)

// Messages returned to callers. Provider internals never leak past these.
const (
	MsgMethodNotAllowed  = "Method Not Allowed"
	MsgMissingCredential = "The Gemini API key is not configured on the server."
	MsgBlocked           = "The analysis was blocked due to safety restrictions."
	MsgMalformed         = "The API response is invalid or empty."
	msgProviderPrefix    = "Error from the Gemini API: "
)

// APIError represents a structured API error
type APIError struct {
	Type       ErrorType
	Message    string
	StatusCode int
	Cause      error
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// Unwrap exposes the underlying cause
func (e *APIError) Unwrap() error {
	return e.Cause
}

// ErrorResponse is the JSON body written for every failure
type ErrorResponse struct {
	Error string `json:"error" example:"Method Not Allowed"`
}

// NewAPIError creates a new APIError
func NewAPIError(errorType ErrorType, statusCode int, message string) *APIError {
	return &APIError{
		Type:       errorType,
		Message:    message,
		StatusCode: statusCode,
	}
}

// WithCause attaches the error that triggered e
func (e *APIError) WithCause(cause error) *APIError {
	e.Cause = cause
	return e
}

// NewMethodNotAllowedError is returned for anything but POST
func NewMethodNotAllowedError() *APIError {
	return NewAPIError(ErrorTypeMethodNotAllowed, http.StatusMethodNotAllowed, MsgMethodNotAllowed)
}

// NewConfigurationError creates a configuration error
func NewConfigurationError(message string) *APIError {
	return NewAPIError(ErrorTypeConfiguration, http.StatusInternalServerError, message)
}

// NewMissingCredentialError reports an absent provider credential
func NewMissingCredentialError() *APIError {
	return NewConfigurationError(MsgMissingCredential)
}

// NewProviderError propagates the provider's status code with a generic message
func NewProviderError(statusCode int, statusText string) *APIError {
	if statusCode < 400 || statusCode > 599 {
		statusCode = http.StatusBadGateway
	}
	return NewAPIError(ErrorTypeExternal, statusCode, msgProviderPrefix+statusText)
}

// NewBlockedError is returned when the provider refused the prompt
func NewBlockedError() *APIError {
	return NewAPIError(ErrorTypeBlocked, http.StatusBadRequest, MsgBlocked)
}

// NewMalformedResponseError is returned when the provider answered with nothing usable
func NewMalformedResponseError() *APIError {
	return NewAPIError(ErrorTypeMalformed, http.StatusInternalServerError, MsgMalformed)
}

// NewInternalError wraps an unexpected failure, exposing only its message
func NewInternalError(err error) *APIError {
	return NewAPIError(ErrorTypeInternal, http.StatusInternalServerError, err.Error()).WithCause(err)
}

// AsAPIError converts any error into an APIError, defaulting to internal
func AsAPIError(err error) *APIError {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr
	}
	return NewInternalError(err)
}

// HandleError writes {"error": message} with the error's status code and logs it
func HandleError(ctx context.Context, w http.ResponseWriter, err error) {
	apiErr := AsAPIError(err)

	w.Header().Set(utils.HeaderContentType, utils.ContentTypeJSON)
	w.WriteHeader(apiErr.StatusCode)

	if jsonBytes, jsonErr := json.Marshal(ErrorResponse{Error: apiErr.Message}); jsonErr == nil {
		_, _ = w.Write(jsonBytes)
	} else {
		logger.Error(ctx, "Error marshaling error response", jsonErr)
		_, _ = w.Write([]byte(`{"error":"Internal server error"}`))
	}

	logger.Warn(ctx, "API error",
		"status_code", apiErr.StatusCode,
		"error_type", string(apiErr.Type),
		"error_message", apiErr.Message,
		"error_cause", fmt.Sprintf("%v", apiErr.Cause),
	)
}
