// Package errdef defines the errors services return to signal a client error. The HTTP layer maps
// each of them onto a status code, anything else is treated as an internal error.
package errdef

import (
	"errors"
	"fmt"
	"net/http"
)

// Status returns the HTTP status code err maps onto. Errors not created by this package are
// internal server errors. Joined errors map onto the first matching kind in the order below.
func Status(err error) int {
	switch {
	case IsBadRequest(err):
		return http.StatusBadRequest
	case IsUnauthorized(err):
		return http.StatusUnauthorized
	case IsForbidden(err):
		return http.StatusForbidden
	case IsNotFound(err):
		return http.StatusNotFound
	case IsDuplicated(err), IsConflict(err):
		return http.StatusConflict
	case IsUnsupportedMediaType(err):
		return http.StatusUnsupportedMediaType
	default:
		return http.StatusInternalServerError
	}
}

func NewForbidden(format string, a ...any) error {
	return forbidden{fmt.Errorf(format, a...)}
}

type forbidden struct{ error }

func IsForbidden(err error) bool {
	var e forbidden
	return errors.As(err, &e)
}

func NewBadRequest(format string, a ...any) error {
	return badRequest{fmt.Errorf(format, a...)}
}

type badRequest struct{ error }

func IsBadRequest(err error) bool {
	var e badRequest
	return errors.As(err, &e)
}

func NewDuplicated(format string, a ...any) error {
	return duplicated{fmt.Errorf(format, a...)}
}

type duplicated struct{ error }

func IsDuplicated(err error) bool {
	var e duplicated
	return errors.As(err, &e)
}

func NewUnauthorized(format string, a ...any) error {
	return unauthorized{fmt.Errorf(format, a...)}
}

type unauthorized struct{ error }

func IsUnauthorized(err error) bool {
	var e unauthorized
	return errors.As(err, &e)
}

// NewNotFound is also used for resources the user isn't allowed to see, so their existence isn't
// leaked.
func NewNotFound(format string, a ...any) error {
	return notFound{fmt.Errorf(format, a...)}
}

type notFound struct{ error }

func IsNotFound(err error) bool {
	var e notFound
	return errors.As(err, &e)
}

// NewConflict signals a request that clashes with the current state, like a second pending
// submission of an object to the same target.
func NewConflict(format string, a ...any) error {
	return conflict{fmt.Errorf(format, a...)}
}

type conflict struct{ error }

func IsConflict(err error) bool {
	var e conflict
	return errors.As(err, &e)
}

// NewUnsupportedMediaType creates an error representing a request body of the wrong content type.
func NewUnsupportedMediaType(format string, a ...any) error {
	return unsupportedMediaType{fmt.Errorf(format, a...)}
}

type unsupportedMediaType struct{ error }

// IsUnsupportedMediaType returns true if err is an error representing an unsupported media type.
func IsUnsupportedMediaType(err error) bool {
	var e unsupportedMediaType
	return errors.As(err, &e)
}
