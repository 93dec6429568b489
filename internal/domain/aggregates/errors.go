package aggregates

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode classifies a failed estimate operation. Callers branch on the
// code, never on the message.
type ErrorCode string

const (
	CodeValidation         ErrorCode = "validation"
	CodeNotFound           ErrorCode = "not_found"
	CodeConflict           ErrorCode = "conflict"
	CodeInvariantViolation ErrorCode = "invariant_violation"
	CodePreconditionFailed ErrorCode = "precondition_failed"
	CodeRetryable          ErrorCode = "retryable"
	CodeInternal           ErrorCode = "internal"
)

// Transient reports whether repeating the same write may succeed.
func (c ErrorCode) Transient() bool { return c == CodeRetryable }

// Fatal reports whether the caller's request can never succeed as sent.
// Reconciliation runs return these instead of producing alerts.
func (c ErrorCode) Fatal() bool {
	switch c {
	case CodeValidation, CodeNotFound, CodePreconditionFailed:
		return true
	}
	return false
}

// Error is the typed failure returned by services and aggregates. Row level
// problems inside a run never become an Error; they become alerts.
type Error struct {
	Code    ErrorCode
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		if e.Message != "" {
			b.WriteString(": ")
		}
	}
	b.WriteString(e.Message)
	if b.Len() == 0 {
		return string(e.Code)
	}
	fmt.Fprintf(&b, " (%s)", e.Code)
	return b.String()
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches another *Error by code alone, so errors.Is(err, &Error{Code: CodeNotFound})
// works without caring about the operation.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return t.Op == "" && t.Message == "" && t.Cause == nil && t.Code == e.Code
}

func NewError(code ErrorCode, op, message string, cause error) error {
	return &Error{
		Code:    code,
		Op:      strings.TrimSpace(op),
		Message: strings.TrimSpace(message),
		Cause:   cause,
	}
}

// Wrap tags err with code, keeping it as the cause. Wrap(nil) is nil.
func Wrap(code ErrorCode, op string, err error) error {
	if err == nil {
		return nil
	}
	return NewError(code, op, err.Error(), err)
}

func Validationf(op, format string, args ...any) error {
	return NewError(CodeValidation, op, fmt.Sprintf(format, args...), nil)
}

func NotFoundf(op, format string, args ...any) error {
	return NewError(CodeNotFound, op, fmt.Sprintf(format, args...), nil)
}

func Conflictf(op, format string, args ...any) error {
	return NewError(CodeConflict, op, fmt.Sprintf(format, args...), nil)
}

func Preconditionf(op, format string, args ...any) error {
	return NewError(CodePreconditionFailed, op, fmt.Sprintf(format, args...), nil)
}

// NotConfigured is returned by services and aggregates built without a dependency.
func NotConfigured(op, what string) error {
	return NewError(CodeInternal, op, what+" not configured", nil)
}

func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code && code != ""
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) && e != nil {
		return e.Code
	}
	return ""
}
