package store

import "errors"

var (
	// ErrNotFound means the referenced id does not exist
	ErrNotFound = errors.New("record not found")
	// ErrForbidden means the record exists but the caller is not its owner
	ErrForbidden = errors.New("caller does not own this record")
	// ErrConflict means a per-owner uniqueness constraint was violated
	ErrConflict = errors.New("record already exists")
)

// ValidationError represents malformed input: empty title, bad color format,
// unknown enum value, page size out of range. Always recoverable by the
// caller correcting the input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// authorize is the ownership gate: every single-record read and every
// mutation passes through it after the existence check, so a missing record
// always surfaces as ErrNotFound and a foreign one as ErrForbidden.
func authorize(ownerID, callerID string) error {
	if ownerID != callerID {
		return ErrForbidden
	}
	return nil
}
