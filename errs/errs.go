// Package errs defines the error kinds the API surfaces to callers and the
// single place they are mapped to HTTP status codes. Services wrap these
// sentinels with context via fmt.Errorf("...: %w", errs.ErrNotFound) so
// handlers can classify any error with errors.Is.
package errs

import (
	"errors"
	"net/http"
)

var (
	// ErrUnauthorized means the principal holds no role entitled to the action.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden means the principal is role-eligible in general but not for
	// this specific resource instance.
	ErrForbidden = errors.New("forbidden")

	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrDuplicateItem    = errors.New("item already in cart")
	ErrEmptyCart        = errors.New("cart is empty")
	ErrMethodNotAllowed = errors.New("method not allowed")
)

// HTTPStatus maps an error to the status code reported to the caller.
// Unknown errors map to 500.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	// duplicate cart adds surface as a validation failure, same as empty
	// carts and malformed input
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrEmptyCart), errors.Is(err, ErrDuplicateItem):
		return http.StatusBadRequest
	case errors.Is(err, ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}
