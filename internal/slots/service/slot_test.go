package service

import (
	"context"
	"testing"
	"time"

	sloterrors "clinicore/internal/slots/errors"
	"clinicore/internal/slots/validator"
	"clinicore/pkg/config"
	apperrors "clinicore/pkg/errors"
	"clinicore/pkg/logger"
	"clinicore/pkg/model"
)

// Mock repository for testing
type mockSlotRepository struct {
	insertManyFunc     func(ctx context.Context, slots []*model.Slot) (int, error)
	findByHospitalFunc func(ctx context.Context, hospitalID, date string, limit int, offset int64) ([]*model.Slot, error)
	countFunc          func(ctx context.Context, hospitalID, date string) (int64, error)
	deleteByIDFunc     func(ctx context.Context, id string) error
	deleteByDayFunc    func(ctx context.Context, hospitalID, date string) (int64, error)
}

func (m *mockSlotRepository) InsertMany(ctx context.Context, slots []*model.Slot) (int, error) {
	if m.insertManyFunc != nil {
		return m.insertManyFunc(ctx, slots)
	}
	return len(slots), nil
}

func (m *mockSlotRepository) FindByID(ctx context.Context, id string) (*model.Slot, error) {
	return nil, sloterrors.ErrSlotNotFound
}

func (m *mockSlotRepository) FindByHospital(ctx context.Context, hospitalID, date string, limit int, offset int64) ([]*model.Slot, error) {
	if m.findByHospitalFunc != nil {
		return m.findByHospitalFunc(ctx, hospitalID, date, limit, offset)
	}
	return []*model.Slot{}, nil
}

func (m *mockSlotRepository) CountByHospital(ctx context.Context, hospitalID, date string) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx, hospitalID, date)
	}
	return 0, nil
}

func (m *mockSlotRepository) DeleteByID(ctx context.Context, id string) error {
	if m.deleteByIDFunc != nil {
		return m.deleteByIDFunc(ctx, id)
	}
	return nil
}

func (m *mockSlotRepository) DeleteByDay(ctx context.Context, hospitalID, date string) (int64, error) {
	if m.deleteByDayFunc != nil {
		return m.deleteByDayFunc(ctx, hospitalID, date)
	}
	return 0, nil
}

func newTestService(repo *mockSlotRepository) SlotService {
	log := logger.New(logger.Config{
		Level:     "error",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})

	cfg := &config.Config{
		Log:                    log,
		MaxSlotRangeDays:       60,
		DefaultSlotDurationMin: 30,
		DefaultSlotCapacity:    1,
		ReadTimeout:            5 * time.Second,
		WriteTimeout:           5 * time.Second,
	}

	return NewSlotService(repo, validator.NewSlotValidator(log), cfg)
}

func generationRequest() *model.SlotGenerationRequest {
	return &model.SlotGenerationRequest{
		HospitalID:  "64f1a2b3c4d5e6f7a8b9c0d2",
		StartDate:   "2026-09-14",
		EndDate:     "2026-09-14",
		StartTime:   "09:00",
		EndTime:     "12:00",
		DurationMin: 30,
		MaxCapacity: 3,
	}
}

func TestGenerate_SlotsPerDay(t *testing.T) {
	var captured []*model.Slot
	repo := &mockSlotRepository{
		insertManyFunc: func(ctx context.Context, slots []*model.Slot) (int, error) {
			captured = slots
			return len(slots), nil
		},
	}
	service := newTestService(repo)

	req := generationRequest()
	req.EndDate = "2026-09-16"

	result, err := service.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 3 hours / 30 min = 6 slots per day, 3 days
	if result.SlotsCreated != 18 {
		t.Errorf("expected 18 slots, got %d", result.SlotsCreated)
	}
	if result.Days != 3 {
		t.Errorf("expected 3 days, got %d", result.Days)
	}

	// Numbering restarts each day
	byDay := make(map[string][]*model.Slot)
	for _, slot := range captured {
		byDay[slot.Date] = append(byDay[slot.Date], slot)
	}
	for date, slots := range byDay {
		if len(slots) != 6 {
			t.Errorf("day %s: expected 6 slots, got %d", date, len(slots))
		}
		for i, slot := range slots {
			if slot.SlotNumber != i+1 {
				t.Errorf("day %s slot %d: expected number %d, got %d", date, i, i+1, slot.SlotNumber)
			}
			if slot.BookedCount != 0 {
				t.Errorf("day %s: new slot has booked count %d", date, slot.BookedCount)
			}
		}
	}
}

func TestGenerate_DropsPartialTrailingInterval(t *testing.T) {
	var captured []*model.Slot
	repo := &mockSlotRepository{
		insertManyFunc: func(ctx context.Context, slots []*model.Slot) (int, error) {
			captured = slots
			return len(slots), nil
		},
	}
	service := newTestService(repo)

	// 09:00-21:15 with 30 min slots: the 21:00 slot would end at 21:30,
	// past the window, so the last full slot starts at 20:45.
	req := generationRequest()
	req.StartTime = "09:00"
	req.EndTime = "21:15"
	req.DurationMin = 30

	result, err := service.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 12h15m window fits 24 whole 30-minute slots
	if result.SlotsCreated != 24 {
		t.Errorf("expected 24 slots, got %d", result.SlotsCreated)
	}

	last := captured[len(captured)-1]
	if got := last.StartTime.Format("15:04"); got != "20:30" {
		t.Errorf("expected last slot to start at 20:30, got %s", got)
	}
	if got := last.EndTime.Format("15:04"); got != "21:00" {
		t.Errorf("expected last slot to end at 21:00, got %s", got)
	}
}

func TestGenerate_ExactFitKeepsFinalSlot(t *testing.T) {
	var captured []*model.Slot
	repo := &mockSlotRepository{
		insertManyFunc: func(ctx context.Context, slots []*model.Slot) (int, error) {
			captured = slots
			return len(slots), nil
		},
	}
	service := newTestService(repo)

	// A slot ending exactly at the window end is kept: 20:30-21:00 fits
	// a window ending at 21:00.
	req := generationRequest()
	req.StartTime = "20:30"
	req.EndTime = "21:00"

	result, err := service.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.SlotsCreated != 1 {
		t.Fatalf("expected 1 slot, got %d", result.SlotsCreated)
	}
	if got := captured[0].EndTime.Format("15:04"); got != "21:00" {
		t.Errorf("expected slot to end at 21:00, got %s", got)
	}
}

func TestGenerate_InvalidRanges(t *testing.T) {
	service := newTestService(&mockSlotRepository{})

	tests := []struct {
		name   string
		mutate func(*model.SlotGenerationRequest)
	}{
		{
			name: "start date after end date",
			mutate: func(req *model.SlotGenerationRequest) {
				req.StartDate = "2026-09-20"
				req.EndDate = "2026-09-14"
			},
		},
		{
			name: "start time after end time",
			mutate: func(req *model.SlotGenerationRequest) {
				req.StartTime = "18:00"
				req.EndTime = "09:00"
			},
		},
		{
			name: "start time equals end time",
			mutate: func(req *model.SlotGenerationRequest) {
				req.StartTime = "09:00"
				req.EndTime = "09:00"
			},
		},
		{
			name: "window shorter than one slot",
			mutate: func(req *model.SlotGenerationRequest) {
				req.StartTime = "09:00"
				req.EndTime = "09:20"
				req.DurationMin = 30
			},
		},
		{
			name: "range beyond maximum days",
			mutate: func(req *model.SlotGenerationRequest) {
				req.StartDate = "2026-01-01"
				req.EndDate = "2026-12-31"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := generationRequest()
			tt.mutate(req)

			_, err := service.Generate(context.Background(), req)
			appErr := apperrors.AsAppError(err)
			if appErr == nil {
				t.Fatalf("expected range error, got %v", err)
			}
			if appErr.Code != apperrors.CodeInvalidRange {
				t.Errorf("expected code %s, got %s", apperrors.CodeInvalidRange, appErr.Code)
			}
			if appErr.StatusCode() != 400 {
				t.Errorf("expected status 400, got %d", appErr.StatusCode())
			}
		})
	}
}

func TestGenerate_FieldValidation(t *testing.T) {
	service := newTestService(&mockSlotRepository{})

	tests := []struct {
		name   string
		mutate func(*model.SlotGenerationRequest)
	}{
		{
			name:   "missing hospital id",
			mutate: func(req *model.SlotGenerationRequest) { req.HospitalID = "" },
		},
		{
			name:   "malformed date",
			mutate: func(req *model.SlotGenerationRequest) { req.StartDate = "14-09-2026" },
		},
		{
			name:   "malformed clock time",
			mutate: func(req *model.SlotGenerationRequest) { req.StartTime = "9am" },
		},
		{
			name:   "zero capacity after defaults",
			mutate: func(req *model.SlotGenerationRequest) { req.MaxCapacity = -1 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := generationRequest()
			tt.mutate(req)

			_, err := service.Generate(context.Background(), req)
			appErr := apperrors.AsAppError(err)
			if appErr == nil {
				t.Fatalf("expected validation error, got %v", err)
			}
			if appErr.Code != apperrors.CodeValidation {
				t.Errorf("expected code %s, got %s", apperrors.CodeValidation, appErr.Code)
			}
		})
	}
}

func TestGenerate_AppliesDefaults(t *testing.T) {
	var captured []*model.Slot
	repo := &mockSlotRepository{
		insertManyFunc: func(ctx context.Context, slots []*model.Slot) (int, error) {
			captured = slots
			return len(slots), nil
		},
	}
	service := newTestService(repo)

	req := generationRequest()
	req.DurationMin = 0
	req.MaxCapacity = 0

	_, err := service.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(captured) == 0 {
		t.Fatal("expected slots to be generated")
	}
	if captured[0].MaxCapacity != 1 {
		t.Errorf("expected default capacity 1, got %d", captured[0].MaxCapacity)
	}
	if got := captured[0].EndTime.Sub(captured[0].StartTime); got != 30*time.Minute {
		t.Errorf("expected default 30 minute duration, got %s", got)
	}
}

func TestDelete_SlotHasBookings(t *testing.T) {
	repo := &mockSlotRepository{
		deleteByIDFunc: func(ctx context.Context, id string) error {
			return sloterrors.ErrSlotHasBookings
		},
	}
	service := newTestService(repo)

	err := service.Delete(context.Background(), "64f1a2b3c4d5e6f7a8b9c0d1")
	appErr := apperrors.AsAppError(err)
	if appErr == nil {
		t.Fatalf("expected conflict, got %v", err)
	}
	if appErr.Code != apperrors.CodeConflict {
		t.Errorf("expected code %s, got %s", apperrors.CodeConflict, appErr.Code)
	}
	if appErr.StatusCode() != 409 {
		t.Errorf("expected status 409, got %d", appErr.StatusCode())
	}
}

func TestDelete_NotFound(t *testing.T) {
	repo := &mockSlotRepository{
		deleteByIDFunc: func(ctx context.Context, id string) error {
			return sloterrors.ErrSlotNotFound
		},
	}
	service := newTestService(repo)

	err := service.Delete(context.Background(), "64f1a2b3c4d5e6f7a8b9c0d1")
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeleteByDay_RequiresDate(t *testing.T) {
	service := newTestService(&mockSlotRepository{})

	_, err := service.DeleteByDay(context.Background(), "64f1a2b3c4d5e6f7a8b9c0d2", "")
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeInvalidInput {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestDeleteByDay_ReportsDeleted(t *testing.T) {
	repo := &mockSlotRepository{
		deleteByDayFunc: func(ctx context.Context, hospitalID, date string) (int64, error) {
			return 5, nil
		},
	}
	service := newTestService(repo)

	deleted, err := service.DeleteByDay(context.Background(), "64f1a2b3c4d5e6f7a8b9c0d2", "2026-09-14")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted != 5 {
		t.Errorf("expected 5 deleted, got %d", deleted)
	}
}
