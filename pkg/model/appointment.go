package model

import (
	"time"

	"clinicore/pkg/config"
)

// Appointment is the durable record of a confirmed booking. It is only ever
// created by the reservation engine, in the same transaction that consumes
// the originating slot lock.
type Appointment struct {
	ID            string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	AppointmentID string    `json:"appointment_id" bson:"appointment_id" validate:"required,uuid4"`
	HospitalID    string    `json:"hospital_id" bson:"hospital_id" validate:"required,mongodb"`
	SlotID        string    `json:"slot_id" bson:"slot_id" validate:"required,mongodb"`
	SlotNumber    int       `json:"slot_number" bson:"slot_number" validate:"required,min=1"`
	SlotStartTime time.Time `json:"slot_start_time" bson:"slot_start_time" validate:"required"`
	SlotEndTime   time.Time `json:"slot_end_time" bson:"slot_end_time" validate:"required"`
	PatientName   string    `json:"patient_name" bson:"patient_name" validate:"required,min=2,max=100"`
	PatientEmail  string    `json:"patient_email" bson:"patient_email" validate:"required,email"`
	PatientPhone  string    `json:"patient_phone" bson:"patient_phone" validate:"required,e164"`
	HealthIssue   string    `json:"health_issue,omitempty" bson:"health_issue,omitempty" validate:"omitempty,max=500"`
	Status        string    `json:"status" bson:"status" validate:"required,oneof=booked checked_in cancelled"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
	CheckedInAt   time.Time `json:"checked_in_at,omitempty" bson:"checked_in_at,omitempty" validate:"omitempty"`
}

type ConfirmBookingRequest struct {
	LockID       string `json:"lock_id" validate:"required,uuid4"`
	PatientName  string `json:"patient_name" validate:"required,min=2,max=100"`
	PatientEmail string `json:"patient_email" validate:"required,email"`
	PatientPhone string `json:"patient_phone" validate:"required"`
	HealthIssue  string `json:"health_issue,omitempty" validate:"omitempty,max=500"`
}

type BookingConfirmation struct {
	AppointmentID string      `json:"appointment_id"`
	Slot          SlotSummary `json:"slot"`
	Status        string      `json:"status"`
}

func (a *Appointment) IsTerminal() bool {
	return a.Status == config.StatusCancelled
}
