package errors

import "errors"

var (
	ErrNotFound = errors.New("appointment not found")

	// ErrNotCheckable means the appointment is not in a state that can be
	// checked in (already checked in, or cancelled).
	ErrNotCheckable = errors.New("appointment cannot be checked in")

	ErrAlreadyCancelled = errors.New("appointment is already cancelled")

	ErrInvalidID = errors.New("invalid id format")
)
