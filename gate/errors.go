package gate

import "errors"

// Errors returned by Gate.Authorize.
var (
	// ErrUnauthenticated means no subject was supplied.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden means the subject's profile lacks the permission.
	ErrForbidden = errors.New("forbidden")
)
