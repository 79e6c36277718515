package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/mongo"

	appointmenterrors "clinicore/internal/appointments/errors"
	"clinicore/internal/appointments/repository"
	"clinicore/pkg/config"
	apperrors "clinicore/pkg/errors"
	"clinicore/pkg/model"
)

type AppointmentService interface {
	Today(ctx context.Context, hospitalID string) ([]*model.Appointment, error)
	GetByID(ctx context.Context, appointmentID string) (*model.Appointment, error)
	CheckIn(ctx context.Context, appointmentID string) error
	Cancel(ctx context.Context, appointmentID string) error
}

type appointmentService struct {
	repo      repository.AppointmentRepository
	validate  *validator.Validate
	publisher EventPublisher
	cfg       *config.Config
}

func NewAppointmentService(repo repository.AppointmentRepository, publisher EventPublisher, cfg *config.Config) AppointmentService {
	return &appointmentService{
		repo:      repo,
		validate:  validator.New(),
		publisher: publisher,
		cfg:       cfg,
	}
}

func (s *appointmentService) Today(ctx context.Context, hospitalID string) ([]*model.Appointment, error) {
	if err := s.validate.Var(hospitalID, "required,mongodb"); err != nil {
		return nil, apperrors.InvalidInput("hospital_id must be a valid MongoDB ObjectID")
	}

	now := time.Now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1)

	appointments, err := s.repo.FindToday(ctx, hospitalID, dayStart, dayEnd)
	if err != nil {
		return nil, apperrors.Internal("Failed to list today's appointments", err)
	}
	return appointments, nil
}

func (s *appointmentService) GetByID(ctx context.Context, appointmentID string) (*model.Appointment, error) {
	if err := s.validate.Var(appointmentID, "required,uuid4"); err != nil {
		return nil, apperrors.InvalidInput("Appointment ID must be a valid UUID")
	}

	appointment, err := s.repo.FindByAppointmentID(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, appointmenterrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Appointment", appointmentID)
		}
		return nil, apperrors.Internal("Failed to find appointment", err)
	}
	return appointment, nil
}

func (s *appointmentService) CheckIn(ctx context.Context, appointmentID string) error {
	if err := s.validate.Var(appointmentID, "required,uuid4"); err != nil {
		return apperrors.InvalidInput("Appointment ID must be a valid UUID")
	}

	err := s.repo.MarkCheckedIn(ctx, appointmentID, time.Now().UTC())
	if err != nil {
		switch {
		case errors.Is(err, appointmenterrors.ErrNotFound):
			return apperrors.NotFoundWithID("Appointment", appointmentID)
		case errors.Is(err, appointmenterrors.ErrNotCheckable):
			return apperrors.Conflict("Appointment is already checked in or cancelled")
		default:
			return apperrors.Internal("Failed to check in appointment", err)
		}
	}

	s.cfg.Log.Info("Appointment checked in", "appointment_id", appointmentID)
	return nil
}

// Cancel flips the status and gives the seat back to the slot in one
// transaction. It never touches the lock ledger: capacity freed by a cancel
// becomes visible to lockSlot through booked_count alone.
func (s *appointmentService) Cancel(ctx context.Context, appointmentID string) error {
	if err := s.validate.Var(appointmentID, "required,uuid4"); err != nil {
		return apperrors.InvalidInput("Appointment ID must be a valid UUID")
	}

	var cancelled *model.Appointment
	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		appointment, err := s.repo.FindByAppointmentID(sessCtx, appointmentID)
		if err != nil {
			if errors.Is(err, appointmenterrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Appointment", appointmentID)
			}
			return apperrors.Internal("Failed to find appointment", err)
		}

		if err := s.repo.MarkCancelled(sessCtx, appointmentID); err != nil {
			if errors.Is(err, appointmenterrors.ErrAlreadyCancelled) {
				return apperrors.Conflict("Appointment is already cancelled")
			}
			return apperrors.Internal("Failed to cancel appointment", err)
		}

		if err := s.repo.DecrementSlotBooked(sessCtx, appointment.SlotID); err != nil {
			return apperrors.Internal("Failed to release slot capacity", err)
		}

		cancelled = appointment
		return nil
	})
	if err != nil {
		if appErr := apperrors.AsAppError(err); appErr != nil {
			return appErr
		}
		return apperrors.Internal("Failed to cancel appointment", err)
	}

	s.cfg.Log.Info("Appointment cancelled", "appointment_id", appointmentID)

	publishAppointmentEvent(ctx, s.cfg.Log, s.publisher, AppointmentEvent{
		Event:         EventAppointmentCancelled,
		AppointmentID: cancelled.AppointmentID,
		HospitalID:    cancelled.HospitalID,
		SlotID:        cancelled.SlotID,
		SlotStartTime: cancelled.SlotStartTime,
		OccurredAt:    time.Now().UTC(),
	})
	return nil
}
