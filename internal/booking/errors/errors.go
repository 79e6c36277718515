package errors

import "errors"

var (
	ErrSlotNotFound = errors.New("slot not found")

	ErrLockNotFound = errors.New("slot lock not found")

	ErrLockExpired = errors.New("slot lock expired")

	// ErrAttemptExists signals a duplicate booking_attempt_id insert; the
	// caller decides whether it is an idempotent replay or a stale row.
	ErrAttemptExists = errors.New("booking attempt already holds a lock")

	ErrAdmissionHeld = errors.New("slot admission is held by another request")

	ErrInvalidID = errors.New("invalid id format")
)
