package apierr

import (
	"errors"
	"fmt"
	"net/http"

	domainagg "github.com/yungbote/tenderbridge-backend/internal/domain/aggregates"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// From classifies err for the HTTP layer. Aggregate error codes map onto
// statuses; anything unclassified is a 500 carrying fallbackCode.
func From(err error, fallbackCode string) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	switch domainagg.CodeOf(err) {
	case domainagg.CodeValidation:
		return New(http.StatusBadRequest, string(domainagg.CodeValidation), err)
	case domainagg.CodeNotFound:
		return New(http.StatusNotFound, string(domainagg.CodeNotFound), err)
	case domainagg.CodeConflict:
		return New(http.StatusConflict, string(domainagg.CodeConflict), err)
	case domainagg.CodePreconditionFailed, domainagg.CodeInvariantViolation:
		return New(http.StatusPreconditionFailed, string(domainagg.CodeOf(err)), err)
	case domainagg.CodeRetryable:
		return New(http.StatusServiceUnavailable, string(domainagg.CodeRetryable), err)
	}
	return New(http.StatusInternalServerError, fallbackCode, err)
}
