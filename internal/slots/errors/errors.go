package errors

import "errors"

var (
	ErrSlotNotFound = errors.New("slot not found")

	// ErrSlotHasBookings blocks deletion of a slot with confirmed
	// appointments; cancelling those comes first.
	ErrSlotHasBookings = errors.New("slot has confirmed bookings")

	ErrDuplicateSlot = errors.New("slot already exists for this day and number")

	ErrInvalidID = errors.New("invalid id format")
)
