package errors

import (
	"errors"
	"fmt"
)

// Common error types for the auth client
var (
	// Storage errors
	ErrNotFound          = errors.New("not found")
	ErrStorageBackend    = errors.New("unknown storage backend")
	ErrSealedValue       = errors.New("sealed value could not be opened")
	ErrMissingPassphrase = errors.New("secure storage passphrase is required")

	// Token errors
	ErrNotJWT       = errors.New("token is not a JWT")
	ErrTokenExpired = errors.New("token expired")

	// Transport errors
	ErrNetwork = errors.New("network error")

	// OAuth errors
	ErrOAuthCancelled  = errors.New("authentication was cancelled")
	ErrOAuthDismissed  = errors.New("authentication window dismissed")
	ErrInvalidRedirect = errors.New("invalid redirect URL")

	// General errors
	ErrInvalidRequest = errors.New("invalid request")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// New creates a plain error, mirroring the standard library so callers need a single import
func New(text string) error {
	return errors.New(text)
}
