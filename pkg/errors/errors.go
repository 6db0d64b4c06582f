// Package errors provides the structured error type shared by every layer of
// the lexicon service.  Domain, application, infrastructure and transport code
// all return *AppError so that error classification survives layer crossings
// and the HTTP layer can derive status codes without string matching.
package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// stackDepth caps the number of frames captured per error.
const stackDepth = 24

func captureStack(skip int) string {
	pcs := make([]uintptr, stackDepth)
	n := runtime.Callers(skip+2, pcs)
	if n == 0 {
		return ""
	}
	frames := runtime.CallersFrames(pcs[:n])
	var sb strings.Builder
	for {
		f, more := frames.Next()
		if !strings.Contains(f.File, "runtime/") {
			fmt.Fprintf(&sb, "\n\t%s:%d %s", f.File, f.Line, f.Function)
		}
		if !more {
			break
		}
	}
	return sb.String()
}

// AppError is the canonical structured error.  It satisfies the standard error
// interface and supports errors.Is / errors.As / errors.Unwrap across wraps.
type AppError struct {
	// Code classifies the failure; see codes.go.
	Code ErrorCode

	// Message is the human-readable description, safe for API responses.
	Message string

	// Detail carries supplementary debugging context (ids, parameters).
	Detail string

	// Cause is the wrapped lower-level error, if any.
	Cause error

	// Stack is the call stack captured at construction time.  It is excluded
	// from Error() output; the logging middleware reads it directly.
	Stack string
}

// Error implements the error interface.
// Format: "[<code>] <message>: <detail>", detail omitted when empty.
func (e *AppError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Detail)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the wrapped cause, enabling errors.Is / errors.As traversal.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetail returns a shallow copy of e with Detail set.  Safe on nil.
func (e *AppError) WithDetail(detail string) *AppError {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Detail = detail
	return &clone
}

// WithCause returns a shallow copy of e with Cause set.  Safe on nil.
func (e *AppError) WithCause(err error) *AppError {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Cause = err
	return &clone
}

// New constructs a fresh AppError with the given code and message.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Stack:   captureStack(1),
	}
}

// Newf constructs an AppError with a formatted message.
func Newf(code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Stack:   captureStack(1),
	}
}

// Wrap constructs an AppError that wraps err.  Returns nil when err is nil so
// it can be used inline on the return path.  When err already carries an
// AppError and code is the generic ErrCodeInternal, the original code is
// preserved so classification is not lost while adding context.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	if code == ErrCodeInternal {
		var ae *AppError
		if errors.As(err, &ae) {
			code = ae.Code
		}
	}
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
		Stack:   captureStack(1),
	}
}

// IsCode reports whether any error in err's chain carries the given code.
func IsCode(err error, code ErrorCode) bool {
	var ae *AppError
	for err != nil {
		if errors.As(err, &ae) && ae.Code == code {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// IsNotFound reports whether err's chain carries any of the not-found codes.
// Per the service error taxonomy a not-found is a valid empty result, never a
// process-level failure.
func IsNotFound(err error) bool {
	var ae *AppError
	for err != nil {
		if errors.As(err, &ae) {
			switch ae.Code {
			case ErrCodeNotFound, ErrCodeConceptNotFound, ErrCodeDiagnosisNotFound, ErrCodeMappingNotFound:
				return true
			}
		}
		err = errors.Unwrap(err)
	}
	return false
}

// IsValidation reports whether err's chain carries a validation/bad-input code.
func IsValidation(err error) bool {
	return IsCode(err, ErrCodeValidation) || IsCode(err, ErrCodeBadRequest) ||
		IsCode(err, ErrCodeClaimInvalid) || IsCode(err, ErrCodeContextInvalid)
}

// IsUnavailable reports whether err's chain indicates a degraded or
// unreachable external dependency.  The claim pipeline treats these as
// "no result for this step", not as fatal errors.
func IsUnavailable(err error) bool {
	return IsCode(err, ErrCodeServiceUnavailable) || IsCode(err, ErrCodeExternalService) ||
		IsCode(err, ErrCodeMapperUnavailable) || IsCode(err, ErrCodeValidatorUnavailable) ||
		IsCode(err, ErrCodeTimeout)
}

// GetCode extracts the ErrorCode from the first AppError in err's chain,
// falling back to ErrCodeInternal for foreign errors.
func GetCode(err error) ErrorCode {
	if err == nil {
		return ""
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ErrCodeInternal
}

// NotFound constructs a generic ErrCodeNotFound AppError.
func NotFound(message string) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: message,
		Stack:   captureStack(1),
	}
}

// InvalidParam constructs an ErrCodeValidation AppError.
func InvalidParam(message string) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: message,
		Stack:   captureStack(1),
	}
}

// Internal constructs an ErrCodeInternal AppError.  Log the underlying cause
// before or after calling this; Internal itself carries no cause.
func Internal(message string) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: message,
		Stack:   captureStack(1),
	}
}

// Unavailable constructs an ErrCodeServiceUnavailable AppError.
func Unavailable(message string) *AppError {
	return &AppError{
		Code:    ErrCodeServiceUnavailable,
		Message: message,
		Stack:   captureStack(1),
	}
}
