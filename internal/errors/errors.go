package errors

import (
	stderrors "errors"
	"fmt"
)

// DraftError is the structured error type for draftenv.
// It carries enough context for logging, CLI rendering and errors.Is matching.
type DraftError struct {
	// Code is the unique error code (e.g., "ERR_301_PARSE").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category derived from the code.
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Suggestion is an actionable suggestion for the user.
	Suggestion string
}

// Error implements the error interface.
func (e *DraftError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *DraftError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
func (e *DraftError) Is(target error) bool {
	if t, ok := target.(*DraftError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *DraftError) WithDetail(key, value string) *DraftError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
func (e *DraftError) WithSuggestion(suggestion string) *DraftError {
	e.Suggestion = suggestion
	return e
}

// New creates a new DraftError with the given code and message.
// Category and severity are derived from the code.
func New(code string, message string, cause error) *DraftError {
	return &DraftError{
		Code:     code,
		Message:  message,
		Category: categoryFromCode(code),
		Severity: severityFromCode(code),
		Cause:    cause,
	}
}

// Wrap creates a DraftError from an existing error.
// The error's message becomes the DraftError message.
func Wrap(code string, err error) *DraftError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// IOError creates an error for unreadable or unwritable files.
func IOError(message string, cause error) *DraftError {
	return New(ErrCodeIO, message, cause)
}

// ParseError creates an error for a malformed structured document.
func ParseError(message string, cause error) *DraftError {
	return New(ErrCodeParse, message, cause)
}

// InvariantError creates an error for a failed migration step precondition.
func InvariantError(message string) *DraftError {
	return New(ErrCodeInvariant, message, nil)
}

// ValidationError creates an error for a rejected interactive answer.
func ValidationError(message string) *DraftError {
	return New(ErrCodeValidation, message, nil)
}

// UnsupportedValueError creates an error for a configuration value whose
// shape cannot be handled. The offending key path is kept as a detail.
func UnsupportedValueError(path string, value any) *DraftError {
	return New(ErrCodeUnsupportedValue,
		fmt.Sprintf("unsupported value of type %T at %q", value, path), nil).
		WithDetail("path", path)
}

// InvalidArgument creates an error for a bad argument.
func InvalidArgument(message string) *DraftError {
	return New(ErrCodeInvalidArgument, message, nil)
}

// InternalError creates an internal error.
func InternalError(message string, cause error) *DraftError {
	return New(ErrCodeInternal, message, cause)
}

// As returns the first DraftError in err's chain.
func As(err error) (*DraftError, bool) {
	var de *DraftError
	if stderrors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// IsFatal checks if an error has fatal severity.
// Errors that are not DraftErrors are treated as fatal.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	if de, ok := As(err); ok {
		return de.Severity == SeverityFatal
	}
	return true
}

// GetCode extracts the error code from a DraftError in the chain.
// Returns empty string if there is none.
func GetCode(err error) string {
	if de, ok := As(err); ok {
		return de.Code
	}
	return ""
}

// GetCategory extracts the category from a DraftError in the chain.
func GetCategory(err error) Category {
	if de, ok := As(err); ok {
		return de.Category
	}
	return ""
}

// HasCode reports whether err's chain contains a DraftError with code.
func HasCode(err error, code string) bool {
	return stderrors.Is(err, &DraftError{Code: code})
}
