package errors

import (
	stderrors "errors"
	"fmt"
)

// Error is a coded error. Category and Severity come from the code.
type Error struct {
	Code       string
	Message    string
	Category   Category
	Severity   Severity
	Details    map[string]string
	Cause      error
	Suggestion string
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches any *Error with the same code, so New(code, "", nil) works as
// a sentinel for errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// WithDetail attaches a key/value shown on the CLI and logged.
func (e *Error) WithDetail(key, value string) *Error {
	if e.Details == nil {
		e.Details = map[string]string{}
	}
	e.Details[key] = value
	return e
}

// WithSuggestion replaces the code's default hint.
func (e *Error) WithSuggestion(suggestion string) *Error {
	e.Suggestion = suggestion
	return e
}

// Hint returns the suggestion, falling back to the code's default.
func (e *Error) Hint() string {
	if e.Suggestion != "" {
		return e.Suggestion
	}
	return lookup(e.Code).hint
}

// New builds a coded error wrapping cause, which may be nil.
func New(code, message string, cause error) *Error {
	info := lookup(code)
	return &Error{
		Code:     code,
		Message:  message,
		Category: info.category,
		Severity: info.severity,
		Cause:    cause,
	}
}

// As returns the outermost *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// GetCode returns the code of the outermost *Error in err, or "".
func GetCode(err error) string {
	if e, ok := As(err); ok {
		return e.Code
	}
	return ""
}
