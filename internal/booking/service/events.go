package service

import (
	"context"
	"time"

	"clinicore/pkg/kafka"
	"clinicore/pkg/logger"
)

// EventPublisher is what the engine needs from the messaging layer. A nil
// publisher disables events without branching at every call site.
type EventPublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

const EventAppointmentConfirmed = "appointment.confirmed"

// AppointmentEvent is the payload published to the appointments topic after
// a confirm commits. Keyed by hospital so per-hospital ordering holds.
type AppointmentEvent struct {
	Event         string    `json:"event"`
	AppointmentID string    `json:"appointment_id"`
	HospitalID    string    `json:"hospital_id"`
	SlotID        string    `json:"slot_id"`
	SlotStartTime time.Time `json:"slot_start_time"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func publishAppointmentEvent(ctx context.Context, log *logger.Logger, publisher EventPublisher, event AppointmentEvent) {
	if publisher == nil {
		return
	}

	msg, err := kafka.NewJSONMessage(event.HospitalID, event)
	if err != nil {
		log.Error("Failed to encode appointment event", "event", event.Event, "error", err)
		return
	}

	// Booking already committed; event delivery is best effort.
	if err := publisher.Publish(ctx, msg); err != nil {
		log.Error("Failed to publish appointment event",
			"event", event.Event,
			"appointment_id", event.AppointmentID,
			"error", err,
		)
	}
}
