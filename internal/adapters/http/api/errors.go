package api

import (
	"errors"
	"net/http"

	repository "github.com/okian/osmelo/internal/adapters/repository"
	service "github.com/okian/osmelo/internal/app"
	"github.com/okian/osmelo/internal/domain/model"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
)

// opError tags an error with the handler operation that produced it.
type opError struct {
	op   string
	kind error
	err  error
}

func (e *opError) Error() string {
	switch {
	case e.err == nil:
		return e.op + ": " + e.kind.Error()
	case e.kind == nil:
		return e.op + ": " + e.err.Error()
	default:
		return e.op + ": " + e.kind.Error() + ": " + e.err.Error()
	}
}

func (e *opError) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.kind != nil {
		out = append(out, e.kind)
	}
	if e.err != nil {
		out = append(out, e.err)
	}
	return out
}

// NewKind returns an error of the given kind raised by op.
func NewKind(op string, kind error) error {
	return &opError{op: op, kind: kind}
}

// WrapKind wraps err with op and kind. Both remain visible to errors.Is.
func WrapKind(op string, kind, err error) error {
	return &opError{op: op, kind: kind, err: err}
}

// Wrap annotates err with op.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &opError{op: op, err: err}
}

// classify maps an error to its HTTP status, error code and offending field.
func classify(err error) (status int, code, field string) {
	var inv *model.InvalidInputError
	switch {
	case errors.As(err, &inv):
		return http.StatusBadRequest, "invalid_input", inv.Field
	case errors.Is(err, model.ErrInvalidInput), errors.Is(err, ErrBadRequest), errors.Is(err, service.ErrInvalidLimit):
		return http.StatusBadRequest, "bad_request", ""
	case errors.Is(err, service.ErrDuplicateMatch):
		return http.StatusConflict, "duplicate", ""
	case errors.Is(err, repository.ErrStorageUnavailable):
		return http.StatusServiceUnavailable, "storage_unavailable", ""
	default:
		return http.StatusInternalServerError, "internal_error", ""
	}
}
