package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a specific error type for assistant operations.
type ErrorCode string

const (
	// ErrCodeGateway indicates a transport or non-2xx failure from a model call.
	ErrCodeGateway ErrorCode = "GATEWAY_ERROR"
	// ErrCodeExtraction indicates a model reply was not parseable as the expected shape.
	ErrCodeExtraction ErrorCode = "EXTRACTION_ERROR"
	// ErrCodeResolution indicates no datetime could be derived from any extraction pass.
	ErrCodeResolution ErrorCode = "RESOLUTION_FAILED"
	// ErrCodeProvider indicates the calendar provider rejected a payload.
	ErrCodeProvider ErrorCode = "PROVIDER_ERROR"
	// ErrCodeUnauthorized indicates authentication failure.
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	// ErrCodeInvalidArgument indicates invalid input parameters.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
)

// AssistantError represents a structured error for assistant operations.
type AssistantError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *AssistantError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *AssistantError) Unwrap() error {
	return e.Cause
}

// Gateway creates a gateway error.
func Gateway(msg string, cause error) *AssistantError {
	return &AssistantError{Code: ErrCodeGateway, Message: msg, Cause: cause}
}

// Extraction creates an extraction error.
func Extraction(msg string, cause error) *AssistantError {
	return &AssistantError{Code: ErrCodeExtraction, Message: msg, Cause: cause}
}

// Resolution creates a resolution failure.
func Resolution(msg string) *AssistantError {
	return &AssistantError{Code: ErrCodeResolution, Message: msg}
}

// Provider creates a provider error.
func Provider(msg string, cause error) *AssistantError {
	return &AssistantError{Code: ErrCodeProvider, Message: msg, Cause: cause}
}

// Unauthorized creates an unauthorized error.
func Unauthorized(msg string) *AssistantError {
	return &AssistantError{Code: ErrCodeUnauthorized, Message: msg}
}

// InvalidArgument creates an invalid argument error.
func InvalidArgument(msg string) *AssistantError {
	return &AssistantError{Code: ErrCodeInvalidArgument, Message: msg}
}

// IsCode checks if an error carries a specific code.
func IsCode(err error, code ErrorCode) bool {
	var ae *AssistantError
	if errors.As(err, &ae) {
		return ae.Code == code
	}
	return false
}

// GetCodeFromError extracts the error code from any error.
// Returns the provided default code if the error is not an AssistantError.
func GetCodeFromError(err error, defaultCode ErrorCode) ErrorCode {
	var ae *AssistantError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return defaultCode
}
