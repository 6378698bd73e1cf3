package service

import (
	"errors"
	"fmt"
)

// Error kinds surfaced to the transport layer. Every operation fails with
// exactly one of these (possibly wrapped); callers branch with errors.Is/As.
var (
	// ErrUnauthorized means the request carried no resolvable caller identity.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound covers both a genuinely absent record and a record owned by
	// another client; the two cases are deliberately indistinguishable.
	ErrNotFound = errors.New("file not found")

	// ErrStoreUnavailable means an object storage call failed.
	ErrStoreUnavailable = errors.New("object storage unavailable")

	// ErrInternal covers database and other infrastructure failures.
	ErrInternal = errors.New("internal error")
)

// ValidationError reports a missing or malformed input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid input: %s %s", e.Field, e.Reason)
}

func newValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
