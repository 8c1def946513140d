package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error types for different domains
type ErrorType string

const (
	ErrorTypeValidation    ErrorType = "VALIDATION_ERROR"
	ErrorTypeConnection    ErrorType = "CONNECTION_ERROR"
	ErrorTypeSerialization ErrorType = "SERIALIZATION_ERROR"
	ErrorTypeConfiguration ErrorType = "CONFIGURATION_ERROR"
	ErrorTypeNotFound      ErrorType = "NOT_FOUND_ERROR"
	ErrorTypeInternal      ErrorType = "INTERNAL_ERROR"
)

// Common application errors
var (
	ErrNotFound        = errors.New("resource not found")
	ErrBadRequest      = errors.New("bad request")
	ErrInternalServer  = errors.New("internal server error")
	ErrInvalidInput    = errors.New("invalid input")
	ErrNotConfigured   = errors.New("not configured")
	ErrEnvironmentGone = errors.New("environment not found")
)

// AppError represents a custom application error with context
type AppError struct {
	Type      ErrorType              `json:"type"`
	Message   string                 `json:"message"`
	Code      string                 `json:"code,omitempty"`
	HTTPCode  int                    `json:"-"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Cause     error                  `json:"-"`
	Component string                 `json:"component,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError creates a new application error
func NewAppError(errorType ErrorType, message string, httpCode int) *AppError {
	return &AppError{
		Type:     errorType,
		Message:  message,
		HTTPCode: httpCode,
		Details:  make(map[string]interface{}),
	}
}

// WithCode adds an error code
func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

// WithCause adds the underlying cause
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithComponent adds the component name
func (e *AppError) WithComponent(component string) *AppError {
	e.Component = component
	return e
}

// WithDetail adds a detail field
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewValidationError creates a validation error (bad request shape)
func NewValidationError(message string) *AppError {
	return NewAppError(ErrorTypeValidation, message, http.StatusBadRequest)
}

// NewConnectionError reports an unreachable or unusable database
func NewConnectionError(message string) *AppError {
	return NewAppError(ErrorTypeConnection, message, http.StatusInternalServerError)
}

// NewSerializationError reports a document set that could not be converted
func NewSerializationError(message string) *AppError {
	return NewAppError(ErrorTypeSerialization, message, http.StatusInternalServerError)
}

// NewConfigurationError reports missing or invalid server configuration
func NewConfigurationError(message string) *AppError {
	return NewAppError(ErrorTypeConfiguration, message, http.StatusInternalServerError).WithCause(ErrNotConfigured)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrorTypeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

// NewInternalError creates an internal server error
func NewInternalError(message string) *AppError {
	return NewAppError(ErrorTypeInternal, message, http.StatusInternalServerError)
}

// ValidationError represents validation errors for multiple fields
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// ValidationErrors represents a collection of validation errors
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

// Error implements the error interface
func (ve *ValidationErrors) Error() string {
	if len(ve.Errors) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", ve.Errors[0].Message)
}

// NewValidationErrors creates a new validation errors instance
func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{
		Errors: make([]ValidationError, 0),
	}
}

// Add adds a validation error
func (ve *ValidationErrors) Add(field, message string, value interface{}) *ValidationErrors {
	ve.Errors = append(ve.Errors, ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	})
	return ve
}

// HasErrors returns true if there are validation errors
func (ve *ValidationErrors) HasErrors() bool {
	return len(ve.Errors) > 0
}

// ToAppError converts validation errors to an AppError
func (ve *ValidationErrors) ToAppError() *AppError {
	if !ve.HasErrors() {
		return nil
	}

	appErr := NewValidationError("validation failed")
	appErr.Details["validation_errors"] = ve.Errors
	return appErr
}

// CollectionFailure records why a single collection dropped out of a batch.
type CollectionFailure struct {
	Collection string
	Err        error
}

// PartialFailure collects per-collection failures of a batch that still
// produced a result for the remaining collections.
type PartialFailure struct {
	Failures []CollectionFailure
}

// Add records a failed collection.
func (pf *PartialFailure) Add(collection string, err error) {
	pf.Failures = append(pf.Failures, CollectionFailure{Collection: collection, Err: err})
}

// HasFailures reports whether any collection failed.
func (pf *PartialFailure) HasFailures() bool {
	return pf != nil && len(pf.Failures) > 0
}

// Collections lists the failed collection names in the order they failed.
func (pf *PartialFailure) Collections() []string {
	names := make([]string, 0, len(pf.Failures))
	for _, f := range pf.Failures {
		names = append(names, f.Collection)
	}
	return names
}

// Error implements the error interface
func (pf *PartialFailure) Error() string {
	if !pf.HasFailures() {
		return "partial failure"
	}
	return fmt.Sprintf("%d collection(s) failed: %s", len(pf.Failures), strings.Join(pf.Collections(), ", "))
}

// Helper functions for common error scenarios

// WrapError wraps an error with context
func WrapError(err error, message string) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewInternalError(message).WithCause(err)
}

// HTTPStatus maps an error to the status code it should be reported with.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.HTTPCode != 0 {
		return appErr.HTTPCode
	}
	var ve *ValidationErrors
	if errors.As(err, &ve) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func isType(err error, t ErrorType) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == t
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return isType(err, ErrorTypeNotFound) || errors.Is(err, ErrNotFound) || errors.Is(err, ErrEnvironmentGone)
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	var ve *ValidationErrors
	return isType(err, ErrorTypeValidation) || errors.As(err, &ve)
}

// IsConnection checks if an error is a connection error
func IsConnection(err error) bool {
	return isType(err, ErrorTypeConnection)
}

// IsSerialization checks if an error is a serialization error
func IsSerialization(err error) bool {
	return isType(err, ErrorTypeSerialization)
}

// IsConfiguration checks if an error is a configuration error
func IsConfiguration(err error) bool {
	return isType(err, ErrorTypeConfiguration) || errors.Is(err, ErrNotConfigured)
}
