package model

import (
	"time"
)

// Slot is one bookable time window of a hospital's day. The (hospital_id,
// date, slot_number) triple is unique; slot_number restarts at 1 each day.
type Slot struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	HospitalID  string    `json:"hospital_id" bson:"hospital_id" validate:"required,mongodb"`
	Date        string    `json:"date" bson:"date" validate:"required,datetime=2006-01-02"`
	SlotNumber  int       `json:"slot_number" bson:"slot_number" validate:"required,min=1"`
	StartTime   time.Time `json:"start_time" bson:"start_time" validate:"required"`
	EndTime     time.Time `json:"end_time" bson:"end_time" validate:"required,gtfield=StartTime"`
	MaxCapacity int       `json:"max_capacity" bson:"max_capacity" validate:"required,min=1,max=200"`
	// BookedCount is maintained by the reservation engine only, inside the
	// same transaction that inserts or cancels the appointment it summarizes.
	BookedCount int       `json:"booked_count" bson:"booked_count"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// SlotGenerationRequest describes a bulk generation run: one slot per
// duration interval between start_time and end_time for every date in range.
type SlotGenerationRequest struct {
	HospitalID  string `json:"hospital_id" validate:"required,mongodb"`
	StartDate   string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate     string `json:"end_date" validate:"required,datetime=2006-01-02"`
	StartTime   string `json:"start_time" validate:"required,clock_time"`
	EndTime     string `json:"end_time" validate:"required,clock_time"`
	DurationMin int    `json:"duration_min" validate:"required,min=5,max=480"`
	MaxCapacity int    `json:"max_capacity" validate:"required,min=1,max=200"`
}

type SlotGenerationResult struct {
	SlotsCreated int `json:"slots_created"`
	Days         int `json:"days"`
}

// SlotAvailability is the public read shape for the booking flow. Its
// accounting must match the engine's capacity check exactly: a lock counts
// while expires_at > now, nothing else.
type SlotAvailability struct {
	SlotID         string    `json:"slot_id" bson:"_id"`
	HospitalID     string    `json:"hospital_id" bson:"hospital_id"`
	Date           string    `json:"date" bson:"date"`
	SlotNumber     int       `json:"slot_number" bson:"slot_number"`
	StartTime      time.Time `json:"start_time" bson:"start_time"`
	EndTime        time.Time `json:"end_time" bson:"end_time"`
	MaxCapacity    int       `json:"max_capacity" bson:"max_capacity"`
	BookedCount    int       `json:"booked_count" bson:"booked_count"`
	ActiveLocks    int       `json:"active_locks" bson:"active_locks"`
	AvailableCount int       `json:"available_count" bson:"available_count"`
	IsFull         bool      `json:"is_full" bson:"is_full"`
}

// SlotSummary is the denormalized slot view returned with a lock so the
// client can render the pending reservation without a second read.
type SlotSummary struct {
	ID         string    `json:"id"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	SlotNumber int       `json:"slot_number"`
}
