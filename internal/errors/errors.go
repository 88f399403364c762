package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeSchema      ErrorType = "SCHEMA"
	ErrTypeParsing     ErrorType = "PARSING"
	ErrTypeValidation  ErrorType = "VALIDATION"
	ErrTypeEmptyResult ErrorType = "EMPTY_RESULT"
	ErrTypeStorage     ErrorType = "STORAGE"
	ErrTypeConfig      ErrorType = "CONFIG"
	ErrTypeNotFound    ErrorType = "NOT_FOUND"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// Helper functions for common error types

// NewMissingColumnsError reports required columns absent from the input table.
// The message names every missing column so the user can fix the file in one pass.
func NewMissingColumnsError(columns []string) *AppError {
	return NewAppError(ErrTypeSchema,
		fmt.Sprintf("input is missing required columns: %s", strings.Join(columns, ", ")), nil).
		WithContext("columns", columns)
}

// NewNoYearColumnsError reports that no wide-format year column was detected.
func NewNoYearColumnsError() *AppError {
	return NewAppError(ErrTypeSchema,
		"no year columns found (expected names like 'Y2010', 'Y2018')", nil)
}

// NewParsingError creates a parsing-related error
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewValidationError creates a validation error
func NewValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewEmptyResultError reports that no metric produced any data; nothing is written.
func NewEmptyResultError() *AppError {
	return NewAppError(ErrTypeEmptyResult, "no metric produced any rows, nothing to write", nil)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("%s not found", resource), nil)
}

// IsType reports whether err is (or wraps) an AppError of the given type.
func IsType(err error, errType ErrorType) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type == errType
	}
	return false
}
