package service

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	appointmenterrors "clinicore/internal/appointments/errors"
	"clinicore/pkg/config"
	mongotx "clinicore/pkg/db/mongo"
	apperrors "clinicore/pkg/errors"
	"clinicore/pkg/kafka"
	"clinicore/pkg/logger"
	"clinicore/pkg/model"
)

const testAppointmentID = "0b5c9e1a-7a53-4f36-9d5c-3f6f1f8a2b4d"

// Mock repository for testing
type mockAppointmentRepository struct {
	findFunc          func(ctx context.Context, appointmentID string) (*model.Appointment, error)
	findTodayFunc     func(ctx context.Context, hospitalID string, dayStart, dayEnd time.Time) ([]*model.Appointment, error)
	markCheckedInFunc func(ctx context.Context, appointmentID string, at time.Time) error
	markCancelledFunc func(ctx context.Context, appointmentID string) error
	decrementFunc     func(ctx context.Context, slotID string) error
}

func (m *mockAppointmentRepository) FindByAppointmentID(ctx context.Context, appointmentID string) (*model.Appointment, error) {
	if m.findFunc != nil {
		return m.findFunc(ctx, appointmentID)
	}
	return &model.Appointment{
		AppointmentID: appointmentID,
		SlotID:        "64f1a2b3c4d5e6f7a8b9c0d1",
		Status:        config.StatusBooked,
	}, nil
}

func (m *mockAppointmentRepository) FindToday(ctx context.Context, hospitalID string, dayStart, dayEnd time.Time) ([]*model.Appointment, error) {
	if m.findTodayFunc != nil {
		return m.findTodayFunc(ctx, hospitalID, dayStart, dayEnd)
	}
	return []*model.Appointment{}, nil
}

func (m *mockAppointmentRepository) MarkCheckedIn(ctx context.Context, appointmentID string, at time.Time) error {
	if m.markCheckedInFunc != nil {
		return m.markCheckedInFunc(ctx, appointmentID, at)
	}
	return nil
}

func (m *mockAppointmentRepository) MarkCancelled(ctx context.Context, appointmentID string) error {
	if m.markCancelledFunc != nil {
		return m.markCancelledFunc(ctx, appointmentID)
	}
	return nil
}

func (m *mockAppointmentRepository) DecrementSlotBooked(ctx context.Context, slotID string) error {
	if m.decrementFunc != nil {
		return m.decrementFunc(ctx, slotID)
	}
	return nil
}

func (m *mockAppointmentRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(mongo.NewSessionContext(ctx, nil))
}

type capturingPublisher struct {
	messages []kafka.Message
}

func (p *capturingPublisher) Publish(ctx context.Context, msg kafka.Message) error {
	p.messages = append(p.messages, msg)
	return nil
}

func newTestService(repo *mockAppointmentRepository, publisher EventPublisher) AppointmentService {
	log := logger.New(logger.Config{
		Level:     "error",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})

	cfg := &config.Config{
		Log:          log,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	return NewAppointmentService(repo, publisher, cfg)
}

func TestToday_DayWindow(t *testing.T) {
	var gotStart, gotEnd time.Time
	repo := &mockAppointmentRepository{
		findTodayFunc: func(ctx context.Context, hospitalID string, dayStart, dayEnd time.Time) ([]*model.Appointment, error) {
			gotStart, gotEnd = dayStart, dayEnd
			return []*model.Appointment{}, nil
		},
	}
	service := newTestService(repo, nil)

	_, err := service.Today(context.Background(), "64f1a2b3c4d5e6f7a8b9c0d2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotEnd.Sub(gotStart) != 24*time.Hour {
		t.Errorf("expected a 24h window, got %s", gotEnd.Sub(gotStart))
	}
	if gotStart.Hour() != 0 || gotStart.Minute() != 0 {
		t.Errorf("expected window starting at midnight UTC, got %s", gotStart)
	}
}

func TestToday_InvalidHospitalID(t *testing.T) {
	service := newTestService(&mockAppointmentRepository{}, nil)

	_, err := service.Today(context.Background(), "not-an-id")
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeInvalidInput {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestCheckIn_Conflict(t *testing.T) {
	repo := &mockAppointmentRepository{
		markCheckedInFunc: func(ctx context.Context, appointmentID string, at time.Time) error {
			return appointmenterrors.ErrNotCheckable
		},
	}
	service := newTestService(repo, nil)

	err := service.CheckIn(context.Background(), testAppointmentID)
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestCheckIn_NotFound(t *testing.T) {
	repo := &mockAppointmentRepository{
		markCheckedInFunc: func(ctx context.Context, appointmentID string, at time.Time) error {
			return fmt.Errorf("%w: %s", appointmenterrors.ErrNotFound, appointmentID)
		},
	}
	service := newTestService(repo, nil)

	err := service.CheckIn(context.Background(), testAppointmentID)
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCancel_ReleasesSlotCapacity(t *testing.T) {
	var decremented string
	repo := &mockAppointmentRepository{
		decrementFunc: func(ctx context.Context, slotID string) error {
			decremented = slotID
			return nil
		},
	}
	service := newTestService(repo, nil)

	if err := service.Cancel(context.Background(), testAppointmentID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decremented != "64f1a2b3c4d5e6f7a8b9c0d1" {
		t.Errorf("expected slot decrement, got %q", decremented)
	}
}

func TestCancel_PublishesCancelledEvent(t *testing.T) {
	publisher := &capturingPublisher{}
	service := newTestService(&mockAppointmentRepository{}, publisher)

	if err := service.Cancel(context.Background(), testAppointmentID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(publisher.messages) != 1 {
		t.Fatalf("expected 1 event, got %d", len(publisher.messages))
	}
	var event AppointmentEvent
	if err := json.Unmarshal(publisher.messages[0].Value, &event); err != nil {
		t.Fatalf("failed to decode event: %v", err)
	}
	if event.Event != EventAppointmentCancelled {
		t.Errorf("expected %q event, got %q", EventAppointmentCancelled, event.Event)
	}
	if event.AppointmentID != testAppointmentID {
		t.Errorf("expected appointment %q, got %q", testAppointmentID, event.AppointmentID)
	}
}

func TestCancel_AlreadyCancelled(t *testing.T) {
	var decremented bool
	repo := &mockAppointmentRepository{
		markCancelledFunc: func(ctx context.Context, appointmentID string) error {
			return appointmenterrors.ErrAlreadyCancelled
		},
		decrementFunc: func(ctx context.Context, slotID string) error {
			decremented = true
			return nil
		},
	}
	service := newTestService(repo, nil)

	err := service.Cancel(context.Background(), testAppointmentID)
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
	if decremented {
		t.Error("slot must not be decremented for an already cancelled appointment")
	}
}

func TestGetByID_RequiresUUID(t *testing.T) {
	service := newTestService(&mockAppointmentRepository{}, nil)

	_, err := service.GetByID(context.Background(), "123")
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeInvalidInput {
		t.Fatalf("expected invalid input, got %v", err)
	}
}
