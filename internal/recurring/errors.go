package recurring

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound covers both a missing id and an id owned by another user.
	ErrNotFound = errors.New("recurring transaction not found")

	// ErrInactive is returned when manual generation targets a deactivated
	// record.
	ErrInactive = errors.New("recurring transaction is inactive")

	// ErrCursorConflict means the stored cursor no longer matches the one
	// read at the start of a catch-up: a concurrent call advanced it first.
	ErrCursorConflict = errors.New("recurring transaction cursor changed concurrently")
)

// ValidationError carries one message per rejected field, joined for the
// response body.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	if len(e.Messages) == 0 {
		return "invalid data"
	}
	return strings.Join(e.Messages, ", ")
}
