// Package errors provides structured error handling for draftenv.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Argument and settings errors
//   - 2XX: IO errors (file, lock)
//   - 3XX: Document errors (parse, unsupported value shapes)
//   - 4XX: Migration invariant errors
//   - 5XX: Validation errors (interactive answers)
//   - 9XX: Internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryArgument indicates a bad argument or setting.
	CategoryArgument Category = "ARGUMENT"
	// CategoryIO indicates file and lock I/O errors.
	CategoryIO Category = "IO"
	// CategoryDocument indicates malformed or unsupported configuration documents.
	CategoryDocument Category = "DOCUMENT"
	// CategoryInvariant indicates a migration step precondition failure.
	CategoryInvariant Category = "INVARIANT"
	// CategoryValidation indicates user input validation errors.
	CategoryValidation Category = "VALIDATION"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal aborts the current orchestrator phase.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed but the caller may recover.
	SeverityError Severity = "ERROR"
)

// Error codes organized by category.
const (
	// Argument errors (100-199)
	ErrCodeInvalidArgument = "ERR_101_INVALID_ARGUMENT"
	ErrCodeInvalidSettings = "ERR_102_INVALID_SETTINGS"

	// IO errors (200-299)
	ErrCodeIO           = "ERR_201_IO"
	ErrCodeFileNotFound = "ERR_202_FILE_NOT_FOUND"
	ErrCodeLockBusy     = "ERR_203_LOCK_BUSY"

	// Document errors (300-399)
	ErrCodeParse            = "ERR_301_PARSE"
	ErrCodeUnsupportedValue = "ERR_302_UNSUPPORTED_VALUE"

	// Invariant errors (400-499)
	ErrCodeInvariant = "ERR_401_INVARIANT"

	// Validation errors (500-599)
	ErrCodeValidation = "ERR_501_VALIDATION"

	// Internal errors (900-999)
	ErrCodeInternal = "ERR_901_INTERNAL"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	// "ERR_301_PARSE" -> '3'
	switch code[4] {
	case '1':
		return CategoryArgument
	case '2':
		return CategoryIO
	case '3':
		return CategoryDocument
	case '4':
		return CategoryInvariant
	case '5':
		return CategoryValidation
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
// Only validation errors are recoverable; they are handled by re-prompting.
func severityFromCode(code string) Severity {
	if categoryFromCode(code) == CategoryValidation {
		return SeverityError
	}
	return SeverityFatal
}
