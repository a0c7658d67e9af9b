// Package errors provides structured error handling for filedex.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: IO errors (file read, metadata access)
//   - 3XX: State store errors (transactions, commit)
//   - 4XX: Search engine errors (index, writer, reader)
//   - 5XX: Query errors (parse failures, validation)
//   - 6XX: Internal errors
package errors

// Category defines error categories for classification.
// Callers distinguish failures by category only.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryIO indicates file and metadata I/O errors.
	CategoryIO Category = "IO"
	// CategoryStore indicates state store transaction errors.
	CategoryStore Category = "STORE"
	// CategoryEngine indicates search engine errors.
	CategoryEngine Category = "ENGINE"
	// CategoryQuery indicates query parse and validation errors.
	CategoryQuery Category = "QUERY"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed but the session can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigInvalid = "ERR_101_CONFIG_INVALID"
	ErrCodeConfigRead    = "ERR_102_CONFIG_READ"

	// IO errors (200-299)
	ErrCodeFileAccess  = "ERR_201_FILE_ACCESS"
	ErrCodeFileRead    = "ERR_202_FILE_READ"
	ErrCodeNotAFile    = "ERR_203_NOT_A_FILE"
	ErrCodeLockHeld    = "ERR_204_LOCK_HELD"

	// State store errors (300-399)
	ErrCodeStoreOpen   = "ERR_301_STORE_OPEN"
	ErrCodeStoreTxn    = "ERR_302_STORE_TXN"
	ErrCodeStoreCommit = "ERR_303_STORE_COMMIT"
	ErrCodeStoreCodec  = "ERR_304_STORE_CODEC"

	// Search engine errors (400-499)
	ErrCodeIndexOpen   = "ERR_401_INDEX_OPEN"
	ErrCodeIndexWrite  = "ERR_402_INDEX_WRITE"
	ErrCodeIndexCommit = "ERR_403_INDEX_COMMIT"
	ErrCodeIndexRead   = "ERR_404_INDEX_READ"

	// Query errors (500-599)
	ErrCodeQueryParse = "ERR_501_QUERY_PARSE"

	// Internal errors (600-699)
	ErrCodeInternal = "ERR_601_INTERNAL"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 5 {
		return CategoryInternal
	}
	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryIO
	case '3':
		return CategoryStore
	case '4':
		return CategoryEngine
	case '5':
		return CategoryQuery
	default:
		return CategoryInternal
	}
}

// severityFromCode extracts severity from error code.
// Open and lock failures are fatal: they occur before the command loop.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeStoreOpen, ErrCodeIndexOpen, ErrCodeLockHeld, ErrCodeConfigInvalid, ErrCodeConfigRead:
		return SeverityFatal
	default:
		return SeverityError
	}
}
