package apierr

import (
	"errors"
	"fmt"
	"net/http"

	perr "github.com/dryad-restoration/dryad-backend/internal/pkg/errors"
)

// Error carries the HTTP status and machine code a handler should respond with.
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

// From maps a service error onto an API error. Errors that are already
// *Error pass through; sentinels get their canonical status.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	switch {
	case errors.Is(err, perr.ErrNotFound):
		return New(http.StatusNotFound, "not_found", err)
	case errors.Is(err, perr.ErrInvalidArgument):
		return New(http.StatusBadRequest, "invalid_argument", err)
	case errors.Is(err, perr.ErrInvalidReference):
		return New(http.StatusUnprocessableEntity, "invalid_reference", err)
	case errors.Is(err, perr.ErrConflict):
		return New(http.StatusConflict, "conflict", err)
	case errors.Is(err, perr.ErrForbidden):
		return New(http.StatusForbidden, "forbidden", err)
	case errors.Is(err, perr.ErrUnauthorized):
		return New(http.StatusUnauthorized, "unauthorized", err)
	default:
		return New(http.StatusInternalServerError, "internal", err)
	}
}
