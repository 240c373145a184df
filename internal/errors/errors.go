// Package errors provides error types and handling for envstack.
// It includes coded application errors so callers can react to the
// failure class without matching on message text.
package errors

import (
	"errors"
	"fmt"
)

// AppError represents an application error with an associated error code.
type AppError struct {
	// Code is an error code string for programmatic handling
	Code string
	// Message is a user-friendly error message
	Message string
	// Path is the dotted config path a validation error refers to, if any
	Path string
	// Cause is the underlying error (for error wrapping)
	Cause error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error for error unwrapping.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is allows errors.Is to work with AppError.
func (e *AppError) Is(target error) bool {
	if t, ok := target.(*AppError); ok {
		return e.Code != "" && e.Code == t.Code
	}
	return false
}

// Predefined error codes.
const (
	// ErrCodeConfigValidation marks a config that fails its schema (missing
	// section or type mismatch). Always fatal before any deployment call.
	ErrCodeConfigValidation = "CONFIG_VALIDATION"
	// ErrCodeConfigLoad marks a config or catalog file that is absent or unparseable.
	ErrCodeConfigLoad = "CONFIG_LOAD"
	// ErrCodeHandlerRegistration marks an extension or event handler that lacks
	// a required capability.
	ErrCodeHandlerRegistration = "HANDLER_REGISTRATION"
	// ErrCodeBindingResolution marks a child parameter that cannot be bound.
	ErrCodeBindingResolution = "BINDING_RESOLUTION"
	// ErrCodeDeploymentAPI marks a failed CloudFormation call.
	ErrCodeDeploymentAPI = "DEPLOYMENT_API"
	// ErrCodeNotificationChannel marks a failure while managing the SNS/SQS session.
	ErrCodeNotificationChannel = "NOTIFICATION_CHANNEL"
)

// NewValidationError creates a config validation error for the given dotted path.
func NewValidationError(path, message string) *AppError {
	return &AppError{
		Code:    ErrCodeConfigValidation,
		Message: message,
		Path:    path,
	}
}

// NewLoadError creates a config load error.
func NewLoadError(message string, cause error) *AppError {
	return &AppError{
		Code:    ErrCodeConfigLoad,
		Message: message,
		Cause:   cause,
	}
}

// NewRegistrationError creates a handler registration error.
func NewRegistrationError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeHandlerRegistration,
		Message: message,
	}
}

// NewBindingError creates a binding resolution error for a child parameter.
func NewBindingError(parameter, message string) *AppError {
	return &AppError{
		Code:    ErrCodeBindingResolution,
		Message: message,
		Path:    parameter,
	}
}

// NewDeploymentError creates a deployment API error carrying the stack name and phase.
func NewDeploymentError(stackName, phase string, cause error) *AppError {
	return &AppError{
		Code:    ErrCodeDeploymentAPI,
		Message: fmt.Sprintf("stack %s: %s failed", stackName, phase),
		Cause:   cause,
	}
}

// NewChannelError creates a notification channel error.
func NewChannelError(message string, cause error) *AppError {
	return &AppError{
		Code:    ErrCodeNotificationChannel,
		Message: message,
		Cause:   cause,
	}
}

// GetErrorCode extracts the error code from an error.
// Returns empty string if the error is not an AppError.
func GetErrorCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// GetErrorPath extracts the config path from an error.
// Returns empty string if the error is not an AppError or carries no path.
func GetErrorPath(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Path
	}
	return ""
}

// GetErrorMessage extracts a user-friendly message from an error.
func GetErrorMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
