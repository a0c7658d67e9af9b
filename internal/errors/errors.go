package errors

import (
	"fmt"
)

// DexError is the structured error type for filedex.
// It carries an origin tag (code and category) and a human-readable
// message; callers branch on category only, there are no structured
// recovery fields.
type DexError struct {
	// Code is the unique error code (e.g., "ERR_201_FILE_ACCESS").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (IO, Store, Engine, ...).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Cause is the underlying error that caused this error.
	Cause error
}

// Error implements the error interface.
func (e *DexError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *DexError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
// This enables errors.Is() to work with DexError.
func (e *DexError) Is(target error) bool {
	if t, ok := target.(*DexError); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a new DexError with the given code and message.
// Category and severity are derived from the code.
func New(code string, message string, cause error) *DexError {
	return &DexError{
		Code:     code,
		Message:  message,
		Category: categoryFromCode(code),
		Severity: severityFromCode(code),
		Cause:    cause,
	}
}

// Wrap creates a DexError from an existing error.
// The error's message becomes the DexError message.
func Wrap(code string, err error) *DexError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// IOError creates a file access error.
func IOError(message string, cause error) *DexError {
	return New(ErrCodeFileAccess, message, cause)
}

// StoreError creates a state store transaction error.
func StoreError(message string, cause error) *DexError {
	return New(ErrCodeStoreTxn, message, cause)
}

// EngineError creates a search engine error.
func EngineError(message string, cause error) *DexError {
	return New(ErrCodeIndexWrite, message, cause)
}

// QueryError creates a query parse error carrying the parser diagnostic.
func QueryError(message string, cause error) *DexError {
	return New(ErrCodeQueryParse, message, cause)
}

// InternalError creates an internal error.
func InternalError(message string, cause error) *DexError {
	return New(ErrCodeInternal, message, cause)
}

// GetCategory extracts the category from an error.
// Returns CategoryInternal if the error is not a DexError.
func GetCategory(err error) Category {
	if de, ok := err.(*DexError); ok {
		return de.Category
	}
	return CategoryInternal
}

// GetCode extracts the error code from a DexError.
// Returns empty string if not a DexError.
func GetCode(err error) string {
	if de, ok := err.(*DexError); ok {
		return de.Code
	}
	return ""
}

// IsFatal checks if an error has fatal severity.
// Fatal errors abort startup before the command loop runs.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	if de, ok := err.(*DexError); ok {
		return de.Severity == SeverityFatal
	}
	return false
}
