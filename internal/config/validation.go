package config

import (
	"fmt"
	"strings"

	"github.com/aashari/go-report-analyzer/internal/errors"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks struct tags and returns a configuration APIError
func (c *Config) Validate() *errors.APIError {
	if err := validate.Struct(c); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// formatValidationError formats validator errors into APIError
func formatValidationError(err error) *errors.APIError {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		var messages []string
		for _, e := range validationErrors {
			messages = append(messages, formatFieldError(e))
		}
		return errors.NewConfigurationError(fmt.Sprintf("Configuration validation failed: %s", strings.Join(messages, "; ")))
	}
	return errors.NewConfigurationError(fmt.Sprintf("Configuration validation failed: %s", err.Error()))
}

// formatFieldError formats a single field validation error
func formatFieldError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("field '%s' is required", e.Namespace())
	case "min", "max":
		return fmt.Sprintf("field '%s' must be %s %s", e.Namespace(), e.Tag(), e.Param())
	case "oneof":
		return fmt.Sprintf("field '%s' must be one of: %s", e.Namespace(), e.Param())
	case "url":
		return fmt.Sprintf("field '%s' must be a valid URL", e.Namespace())
	default:
		return fmt.Sprintf("field '%s' failed validation: %s", e.Namespace(), e.Tag())
	}
}
