package service

import (
	"context"
	"time"

	"clinicore/pkg/kafka"
	"clinicore/pkg/logger"
)

// EventPublisher is what the service needs from the messaging layer. A nil
// publisher disables events without branching at every call site.
type EventPublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

const EventAppointmentCancelled = "appointment.cancelled"

// AppointmentEvent mirrors the confirmed-event payload published by the
// booking service, so downstream consumers decode one shape per topic.
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

	// Cancellation already committed; event delivery is best effort.
	if err := publisher.Publish(ctx, msg); err != nil {
		log.Error("Failed to publish appointment event",
			"event", event.Event,
			"appointment_id", event.AppointmentID,
			"error", err,
		)
	}
}
