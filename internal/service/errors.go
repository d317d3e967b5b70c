package service

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by every service. Handlers map them to HTTP statuses.
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrSessionExpired  = errors.New("session expired")
	// ErrNotFound also covers ownership mismatches, which are never reported distinctly.
	ErrNotFound        = errors.New("not found")
	ErrPayloadTooLarge = errors.New("payload too large")
	ErrValidation      = errors.New("validation error")
)

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
