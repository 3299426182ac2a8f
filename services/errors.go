package services

import (
	"errors"
	"fmt"

	"github.com/cppla/serene/store"
)

var (
	// ErrNotFound aliases the store sentinel so callers need only this package.
	ErrNotFound = store.ErrNotFound

	ErrValidation          = errors.New("validation failed")
	ErrAlreadyCheckedIn    = errors.New("already checked in today")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrEmailTaken          = errors.New("email already registered")
	ErrUsernameTaken       = errors.New("username already taken")
	ErrUnsupportedProvider = errors.New("unsupported oauth provider")
	ErrInvalidState        = errors.New("invalid or expired oauth state")
)

func validationErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
