package services

import "errors"

// Error taxonomy shared by all services. Handlers translate these into HTTP
// statuses with errors.Is; anything unrecognized degrades to a generic 500.
var (
	// ErrValidation covers missing or malformed input.
	ErrValidation = errors.New("invalid or missing input")
	// ErrConflict is returned when an email is already registered.
	ErrConflict = errors.New("email is already in use")
	// ErrBadCredentials is the single login failure: the caller cannot tell
	// an unknown email from a wrong password.
	ErrBadCredentials = errors.New("invalid email or password")
	// ErrForbidden means authenticated but not entitled.
	ErrForbidden = errors.New("operation not allowed")
	// ErrNotFound means the referenced record does not exist.
	ErrNotFound = errors.New("not found")
)
