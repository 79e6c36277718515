package model

import "time"

// SlotLock is a soft reservation of one seat in a slot, pending payment.
// It stops counting toward capacity the instant expires_at passes, whether
// or not the row has been physically deleted yet.
type SlotLock struct {
	ID               string    `json:"lock_id" bson:"_id"`
	SlotID           string    `json:"slot_id" bson:"slot_id"`
	HospitalID       string    `json:"hospital_id" bson:"hospital_id"`
	BookingAttemptID string    `json:"booking_attempt_id" bson:"booking_attempt_id"`
	ExpiresAt        time.Time `json:"expires_at" bson:"expires_at"`
	CreatedAt        time.Time `json:"created_at" bson:"created_at"`
}

// AdmissionLock is a short-lived per-slot mutex document. Whoever inserts it
// first owns slot admission until release or TTL; a duplicate key error means
// another request holds it.
type AdmissionLock struct {
	ID        string    `bson:"_id"`
	ExpiresAt time.Time `bson:"expires_at"`
	CreatedAt time.Time `bson:"created_at"`
}

type LockSlotRequest struct {
	SlotID           string `json:"slot_id" validate:"required,mongodb"`
	BookingAttemptID string `json:"booking_attempt_id,omitempty" validate:"omitempty,uuid4"`
}

type SlotLockResult struct {
	LockID           string      `json:"lock_id"`
	BookingAttemptID string      `json:"booking_attempt_id"`
	ExpiresAt        time.Time   `json:"expires_at"`
	Slot             SlotSummary `json:"slot"`
}
