// Package apperrors defines the business error kinds shared by handlers and
// repositories. Handlers translate these into the response envelope; nothing
// below the handler layer writes HTTP status codes.
package apperrors

import (
	"errors"
	"net/http"
)

var (
	// ErrNotFound covers both "does not exist" and "exists but owned by
	// another user" so that resource existence never leaks across accounts.
	ErrNotFound = errors.New("resource not found")

	// ErrConflict reports a duplicate username or email on registration.
	ErrConflict = errors.New("resource already exists")

	// ErrInvalidCredentials is returned for unknown-user and wrong-password
	// alike; callers must not be able to tell the two apart.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrUnauthenticated means the request carried no valid session.
	ErrUnauthenticated = errors.New("not logged in")

	ErrValidation   = errors.New("invalid request")
	ErrTokenInvalid = errors.New("invalid reset token")
	ErrTokenExpired = errors.New("reset token expired")
	ErrSamePassword = errors.New("new password must differ from the current password")
)

// Status maps a business error to its HTTP status code. Unknown errors map
// to 500 so internal failures never surface their own message.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrValidation), errors.Is(err, ErrTokenInvalid),
		errors.Is(err, ErrTokenExpired), errors.Is(err, ErrSamePassword):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the client-safe message for err. Anything outside the
// taxonomy gets a generic message so internals are never echoed back.
func Message(err error) string {
	for _, known := range []error{
		ErrNotFound, ErrConflict, ErrInvalidCredentials, ErrUnauthenticated,
		ErrValidation, ErrTokenInvalid, ErrTokenExpired, ErrSamePassword,
	} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return "internal server error"
}
