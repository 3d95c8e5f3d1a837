// Package errors provides structured error types for the extraction
// pipeline. All errors include a category, code, message, and retryable
// flag for consistent error handling across components.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies errors by pipeline component.
type ErrorCategory string

const (
	ErrCategorySchema     ErrorCategory = "SCHEMA"
	ErrCategoryQuery      ErrorCategory = "QUERY"
	ErrCategoryExport     ErrorCategory = "EXPORT"
	ErrCategoryStorage    ErrorCategory = "STORAGE"
	ErrCategoryDecode     ErrorCategory = "DECODE"
	ErrCategoryConnection ErrorCategory = "CONNECTION"
	ErrCategoryInternal   ErrorCategory = "INTERNAL"
)

// Error codes for each category.
const (
	// Schema codes
	CodeEmptyType     = "EMPTY_TYPE"
	CodeInvalidSchema = "INVALID_SCHEMA"

	// Export codes
	CodeUnloadFailed = "UNLOAD_FAILED"
	CodeMissingRole  = "MISSING_ROLE"

	// Storage codes
	CodeInvalidPath    = "INVALID_PATH_FORMAT"
	CodeListFailed     = "LIST_FAILED"
	CodeDownloadFailed = "DOWNLOAD_FAILED"
	CodeDeleteFailed   = "DELETE_FAILED"

	// Decode codes
	CodeUnreadableFile = "UNREADABLE_FILE"

	// Connection codes
	CodeCredentialsFailed = "CREDENTIALS_FAILED"
	CodeConnectFailed     = "CONNECT_FAILED"

	// Internal codes
	CodeUnexpected = "UNEXPECTED"
)

// ExtractError is the structured error type used throughout the pipeline.
type ExtractError struct {
	Category  ErrorCategory
	Code      string
	Message   string
	Cause     error
	Retryable bool
}

// Error returns a formatted error string.
func (e *ExtractError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *ExtractError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches this error's category and code.
func (e *ExtractError) Is(target error) bool {
	var t *ExtractError
	if errors.As(target, &t) {
		return e.Category == t.Category && e.Code == t.Code
	}
	return false
}

// New creates a new ExtractError.
func New(category ErrorCategory, code, message string) *ExtractError {
	return &ExtractError{
		Category:  category,
		Code:      code,
		Message:   message,
		Retryable: isRetryable(category, code),
	}
}

// Wrap creates a new ExtractError wrapping an existing error.
func Wrap(category ErrorCategory, code, message string, cause error) *ExtractError {
	return &ExtractError{
		Category:  category,
		Code:      code,
		Message:   message,
		Cause:     cause,
		Retryable: isRetryable(category, code),
	}
}

// IsRetryable checks whether an error (or its chain) is retryable.
func IsRetryable(err error) bool {
	var ee *ExtractError
	if errors.As(err, &ee) {
		return ee.Retryable
	}
	return false
}

// GetCategory extracts the error category from an error chain.
// Returns empty string if the error is not an ExtractError.
func GetCategory(err error) ErrorCategory {
	var ee *ExtractError
	if errors.As(err, &ee) {
		return ee.Category
	}
	return ""
}

// GetCode extracts the error code from an error chain.
// Returns empty string if the error is not an ExtractError.
func GetCode(err error) string {
	var ee *ExtractError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return ""
}

// isRetryable determines whether an error code describes a transient
// condition. Unload and path errors are never retryable: the run is
// aborted and the caller starts over with a fresh staging path.
func isRetryable(category ErrorCategory, code string) bool {
	switch {
	case category == ErrCategoryStorage && code == CodeDownloadFailed:
		return true
	case category == ErrCategoryStorage && code == CodeListFailed:
		return true
	case category == ErrCategoryConnection && code == CodeConnectFailed:
		return true
	default:
		return false
	}
}

// Convenience constructors for common errors.

func NewSchemaError(code, message string) *ExtractError {
	return New(ErrCategorySchema, code, message)
}

func NewExportError(message string, cause error) *ExtractError {
	return Wrap(ErrCategoryExport, CodeUnloadFailed, message, cause)
}

func NewStorageError(code, message string, cause error) *ExtractError {
	return Wrap(ErrCategoryStorage, code, message, cause)
}

func NewConnectionError(code, message string, cause error) *ExtractError {
	return Wrap(ErrCategoryConnection, code, message, cause)
}

func NewInternalError(message string, cause error) *ExtractError {
	return Wrap(ErrCategoryInternal, CodeUnexpected, message, cause)
}
