package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"

	bookingerrors "clinicore/internal/booking/errors"
	"clinicore/internal/booking/repository"
	"clinicore/internal/booking/validator"
	"clinicore/pkg/config"
	dbmongo "clinicore/pkg/db/mongo"
	apperrors "clinicore/pkg/errors"
	"clinicore/pkg/model"
)

// ReservationEngine owns the slot capacity invariant: for every slot,
// booked_count plus the number of unexpired locks never exceeds
// max_capacity. All writes that touch that sum go through here.
type ReservationEngine interface {
	LockSlot(ctx context.Context, req *model.LockSlotRequest) (*model.SlotLockResult, error)
	ReleaseLock(ctx context.Context, lockID string) error
	ConfirmBooking(ctx context.Context, req *model.ConfirmBookingRequest) (*model.BookingConfirmation, error)
	Availability(ctx context.Context, hospitalID, date string) ([]*model.SlotAvailability, error)
}

type reservationEngine struct {
	slots        repository.SlotStore
	locks        repository.LockLedger
	admission    repository.AdmissionGate
	appointments repository.AppointmentWriter
	tx           dbmongo.TransactionManager
	validator    *validator.BookingValidator
	publisher    EventPublisher
	cfg          *config.Config
}

func NewReservationEngine(
	slots repository.SlotStore,
	locks repository.LockLedger,
	admission repository.AdmissionGate,
	appointments repository.AppointmentWriter,
	tx dbmongo.TransactionManager,
	validator *validator.BookingValidator,
	publisher EventPublisher,
	cfg *config.Config,
) ReservationEngine {
	return &reservationEngine{
		slots:        slots,
		locks:        locks,
		admission:    admission,
		appointments: appointments,
		tx:           tx,
		validator:    validator,
		publisher:    publisher,
		cfg:          cfg,
	}
}

func (s *reservationEngine) LockSlot(ctx context.Context, req *model.LockSlotRequest) (*model.SlotLockResult, error) {
	if err := s.validator.ValidateLock(req); err != nil {
		return nil, apperrors.Validation("Invalid lock request", map[string]any{"errors": err.Error()})
	}

	if req.BookingAttemptID == "" {
		req.BookingAttemptID = uuid.NewString()
	}

	// Replay fast path: a live lock for this attempt is returned as-is
	// without touching admission, so retries never contend with themselves.
	if existing, err := s.findLiveByAttempt(ctx, req.BookingAttemptID); err != nil {
		return nil, apperrors.Internal("Failed to check booking attempt", err)
	} else if existing != nil {
		if existing.SlotID != req.SlotID {
			return nil, apperrors.Conflict("Booking attempt already holds a lock on a different slot")
		}
		return s.lockResult(ctx, existing)
	}

	if err := s.admission.Acquire(ctx, req.SlotID, s.cfg.AdmissionLockTTL); err != nil {
		if errors.Is(err, bookingerrors.ErrAdmissionHeld) {
			return nil, apperrors.Conflict("Slot is being booked by another request, please retry")
		}
		return nil, apperrors.Internal("Failed to acquire slot admission", err)
	}
	defer func() {
		if releaseErr := s.admission.Release(ctx, req.SlotID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release slot admission", "slot_id", req.SlotID, "error", releaseErr)
		}
	}()

	now := time.Now().UTC()

	// Locks are counted before booked_count is read. A confirm that commits
	// between the two reads moves a unit from the ledger into booked_count,
	// so this order can only overcount the sum and reject, never overbook.
	liveLocks, err := s.locks.CountLiveBySlot(ctx, req.SlotID, now)
	if err != nil {
		return nil, apperrors.Internal("Failed to count slot locks", err)
	}

	slot, err := s.slots.FindByID(ctx, req.SlotID)
	if err != nil {
		switch {
		case errors.Is(err, bookingerrors.ErrSlotNotFound):
			return nil, apperrors.NotFoundWithID("Slot", req.SlotID)
		case errors.Is(err, bookingerrors.ErrInvalidID):
			return nil, apperrors.InvalidInput("slot_id must be a valid MongoDB ObjectID")
		default:
			return nil, apperrors.Internal("Failed to find slot", err)
		}
	}

	if slot.BookedCount+int(liveLocks) >= slot.MaxCapacity {
		return nil, apperrors.SlotFull(req.SlotID)
	}

	lock := &model.SlotLock{
		ID:               uuid.NewString(),
		SlotID:           slot.ID,
		HospitalID:       slot.HospitalID,
		BookingAttemptID: req.BookingAttemptID,
		ExpiresAt:        now.Add(s.cfg.LockTTL),
		CreatedAt:        now,
	}

	if err := s.insertLock(ctx, lock, now); err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Slot lock acquired",
		"lock_id", lock.ID,
		"slot_id", slot.ID,
		"hospital_id", slot.HospitalID,
		"booking_attempt_id", lock.BookingAttemptID,
		"expires_at", lock.ExpiresAt,
	)

	return &model.SlotLockResult{
		LockID:           lock.ID,
		BookingAttemptID: lock.BookingAttemptID,
		ExpiresAt:        lock.ExpiresAt,
		Slot:             slotSummary(slot),
	}, nil
}

// insertLock handles the unique booking_attempt_id index. A duplicate key
// against a live lock is an idempotent replay already handled by the fast
// path, so here it can only mean a stale expired row: evict it and retry
// exactly once.
func (s *reservationEngine) insertLock(ctx context.Context, lock *model.SlotLock, now time.Time) error {
	err := s.locks.Insert(ctx, lock)
	if err == nil {
		return nil
	}
	if !errors.Is(err, bookingerrors.ErrAttemptExists) {
		return apperrors.Internal("Failed to create slot lock", err)
	}

	existing, ferr := s.locks.FindByAttemptID(ctx, lock.BookingAttemptID)
	if ferr != nil && !errors.Is(ferr, bookingerrors.ErrLockNotFound) {
		return apperrors.Internal("Failed to resolve duplicate booking attempt", ferr)
	}
	if existing != nil {
		if existing.ExpiresAt.After(now) {
			return apperrors.Conflict("Booking attempt already holds a lock")
		}
		if _, derr := s.locks.Delete(ctx, existing.ID); derr != nil {
			return apperrors.Internal("Failed to evict expired slot lock", derr)
		}
	}

	if err := s.locks.Insert(ctx, lock); err != nil {
		if errors.Is(err, bookingerrors.ErrAttemptExists) {
			return apperrors.Conflict("Booking attempt already holds a lock")
		}
		return apperrors.Internal("Failed to create slot lock", err)
	}
	return nil
}

func (s *reservationEngine) findLiveByAttempt(ctx context.Context, attemptID string) (*model.SlotLock, error) {
	existing, err := s.locks.FindByAttemptID(ctx, attemptID)
	if err != nil {
		if errors.Is(err, bookingerrors.ErrLockNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if !existing.ExpiresAt.After(time.Now().UTC()) {
		return nil, nil
	}
	return existing, nil
}

func (s *reservationEngine) lockResult(ctx context.Context, lock *model.SlotLock) (*model.SlotLockResult, error) {
	slot, err := s.slots.FindByID(ctx, lock.SlotID)
	if err != nil {
		return nil, apperrors.Internal("Failed to load slot for existing lock", err)
	}
	return &model.SlotLockResult{
		LockID:           lock.ID,
		BookingAttemptID: lock.BookingAttemptID,
		ExpiresAt:        lock.ExpiresAt,
		Slot:             slotSummary(slot),
	}, nil
}

// ReleaseLock frees a pending reservation. Releasing a lock that no longer
// exists is a success: the caller's goal state is already reached whether
// the lock expired, was swept, or was released twice.
func (s *reservationEngine) ReleaseLock(ctx context.Context, lockID string) error {
	if err := s.validator.ValidateRelease(lockID); err != nil {
		return apperrors.Validation("Invalid lock id", map[string]any{"errors": err.Error()})
	}

	deleted, err := s.locks.Delete(ctx, lockID)
	if err != nil {
		return apperrors.Internal("Failed to release slot lock", err)
	}

	s.cfg.Log.Info("Slot lock released", "lock_id", lockID, "existed", deleted)
	return nil
}

func (s *reservationEngine) ConfirmBooking(ctx context.Context, req *model.ConfirmBookingRequest) (*model.BookingConfirmation, error) {
	if err := s.validator.ValidateConfirm(req); err != nil {
		return nil, apperrors.Validation("Invalid confirmation request", map[string]any{"errors": err.Error()})
	}

	var (
		appointment *model.Appointment
		summary     model.SlotSummary
	)

	err := s.tx.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		now := time.Now().UTC()

		lock, err := s.locks.FindByID(sessCtx, req.LockID)
		if err != nil {
			if errors.Is(err, bookingerrors.ErrLockNotFound) {
				return apperrors.NotFoundWithID("Slot lock", req.LockID)
			}
			return apperrors.Internal("Failed to find slot lock", err)
		}
		if !lock.ExpiresAt.After(now) {
			return apperrors.LockExpired(req.LockID)
		}

		slot, err := s.slots.FindByID(sessCtx, lock.SlotID)
		if err != nil {
			if errors.Is(err, bookingerrors.ErrSlotNotFound) {
				return apperrors.NotFoundWithID("Slot", lock.SlotID)
			}
			return apperrors.Internal("Failed to find slot", err)
		}

		appointment = &model.Appointment{
			AppointmentID: uuid.NewString(),
			HospitalID:    slot.HospitalID,
			SlotID:        slot.ID,
			SlotNumber:    slot.SlotNumber,
			SlotStartTime: slot.StartTime,
			SlotEndTime:   slot.EndTime,
			PatientName:   req.PatientName,
			PatientEmail:  req.PatientEmail,
			PatientPhone:  req.PatientPhone,
			HealthIssue:   req.HealthIssue,
			Status:        config.StatusBooked,
			CreatedAt:     now,
		}
		summary = slotSummary(slot)

		if _, err := s.appointments.Insert(sessCtx, appointment); err != nil {
			return apperrors.Internal("Failed to create appointment", err)
		}
		if err := s.slots.IncrementBooked(sessCtx, slot.ID, 1); err != nil {
			return apperrors.Internal("Failed to update slot booked count", err)
		}
		// Deleting the lock inside the transaction is what makes confirm
		// consume it exactly once: a concurrent confirm of the same lock
		// conflicts here and aborts.
		deleted, err := s.locks.Delete(sessCtx, lock.ID)
		if err != nil {
			return apperrors.Internal("Failed to consume slot lock", err)
		}
		if !deleted {
			return apperrors.NotFoundWithID("Slot lock", req.LockID)
		}

		return nil
	})
	if err != nil {
		if appErr := apperrors.AsAppError(err); appErr != nil {
			return nil, appErr
		}
		return nil, apperrors.Internal("Failed to confirm booking", err)
	}

	s.cfg.Log.Info("Booking confirmed",
		"appointment_id", appointment.AppointmentID,
		"slot_id", appointment.SlotID,
		"hospital_id", appointment.HospitalID,
	)

	publishAppointmentEvent(ctx, s.cfg.Log, s.publisher, AppointmentEvent{
		Event:         EventAppointmentConfirmed,
		AppointmentID: appointment.AppointmentID,
		HospitalID:    appointment.HospitalID,
		SlotID:        appointment.SlotID,
		SlotStartTime: appointment.SlotStartTime,
		OccurredAt:    time.Now().UTC(),
	})

	return &model.BookingConfirmation{
		AppointmentID: appointment.AppointmentID,
		Slot:          summary,
		Status:        appointment.Status,
	}, nil
}

func (s *reservationEngine) Availability(ctx context.Context, hospitalID, date string) ([]*model.SlotAvailability, error) {
	if hospitalID == "" {
		return nil, apperrors.InvalidInput("Hospital ID cannot be empty")
	}
	if date != "" {
		if _, err := time.Parse(config.DateLayout, date); err != nil {
			return nil, apperrors.InvalidInput("date must be in YYYY-MM-DD format")
		}
	}

	slots, err := s.slots.ListAvailability(ctx, hospitalID, date, time.Now().UTC())
	if err != nil {
		if errors.Is(err, bookingerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Hospital ID must be a valid MongoDB ObjectID")
		}
		return nil, apperrors.Internal("Failed to list slot availability", err)
	}
	return slots, nil
}

func slotSummary(slot *model.Slot) model.SlotSummary {
	return model.SlotSummary{
		ID:         slot.ID,
		StartTime:  slot.StartTime,
		EndTime:    slot.EndTime,
		SlotNumber: slot.SlotNumber,
	}
}
