package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	sloterrors "clinicore/internal/slots/errors"
	"clinicore/internal/slots/repository"
	"clinicore/internal/slots/validator"
	"clinicore/pkg/config"
	apperrors "clinicore/pkg/errors"
	"clinicore/pkg/model"
)

type SlotService interface {
	Generate(ctx context.Context, req *model.SlotGenerationRequest) (*model.SlotGenerationResult, error)
	GetByHospital(ctx context.Context, hospitalID, date string, limit int, offset int64) ([]*model.Slot, int64, error)
	Delete(ctx context.Context, id string) error
	DeleteByDay(ctx context.Context, hospitalID, date string) (int64, error)
}

type slotService struct {
	repo      repository.SlotRepository
	validator *validator.SlotValidator
	cfg       *config.Config
}

func NewSlotService(repo repository.SlotRepository, validator *validator.SlotValidator, cfg *config.Config) SlotService {
	return &slotService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *slotService) Generate(ctx context.Context, req *model.SlotGenerationRequest) (*model.SlotGenerationResult, error) {
	s.applyDefaults(req)

	if err := s.validator.ValidateGeneration(req); err != nil {
		return nil, apperrors.Validation("Invalid slot generation request", map[string]any{"errors": err.Error()})
	}

	startDate, _ := time.Parse(config.DateLayout, req.StartDate)
	endDate, _ := time.Parse(config.DateLayout, req.EndDate)
	startClock, _ := time.Parse(config.ClockLayout, req.StartTime)
	endClock, _ := time.Parse(config.ClockLayout, req.EndTime)

	if startDate.After(endDate) {
		return nil, apperrors.InvalidRange("start_date must not be after end_date")
	}
	days := int(endDate.Sub(startDate).Hours()/24) + 1
	if days > s.cfg.MaxSlotRangeDays {
		return nil, apperrors.InvalidRange(fmt.Sprintf("date range spans %d days, maximum is %d", days, s.cfg.MaxSlotRangeDays))
	}
	if !endClock.After(startClock) {
		return nil, apperrors.InvalidRange("end_time must be after start_time")
	}

	duration := time.Duration(req.DurationMin) * time.Minute
	if endClock.Sub(startClock) < duration {
		return nil, apperrors.InvalidRange("time window is shorter than one slot duration")
	}

	slots := buildSlots(req, startDate, endDate, startClock, endClock, duration)

	created, err := s.repo.InsertMany(ctx, slots)
	if err != nil {
		if errors.Is(err, sloterrors.ErrDuplicateSlot) {
			return nil, apperrors.Conflict("Some slots already exist for this range").WithDetails(map[string]any{
				"slots_created": created,
			})
		}
		return nil, apperrors.Internal("Failed to create slots", err)
	}

	s.cfg.Log.Info("Slots generated",
		"hospital_id", req.HospitalID,
		"slots_created", created,
		"days", days,
	)

	return &model.SlotGenerationResult{
		SlotsCreated: created,
		Days:         days,
	}, nil
}

// buildSlots lays one slot per whole duration interval per day. A trailing
// interval that would cross the window end is dropped: a 30 minute slot at
// 20:45 does not fit a window ending at 21:00. Slot numbers restart at 1
// each day.
func buildSlots(req *model.SlotGenerationRequest, startDate, endDate, startClock, endClock time.Time, duration time.Duration) []*model.Slot {
	var slots []*model.Slot

	for day := startDate; !day.After(endDate); day = day.AddDate(0, 0, 1) {
		dayStart := time.Date(day.Year(), day.Month(), day.Day(),
			startClock.Hour(), startClock.Minute(), 0, 0, time.UTC)
		dayEnd := time.Date(day.Year(), day.Month(), day.Day(),
			endClock.Hour(), endClock.Minute(), 0, 0, time.UTC)

		slotNumber := 1
		for cursor := dayStart; !cursor.Add(duration).After(dayEnd); cursor = cursor.Add(duration) {
			slots = append(slots, &model.Slot{
				HospitalID:  req.HospitalID,
				Date:        day.Format(config.DateLayout),
				SlotNumber:  slotNumber,
				StartTime:   cursor,
				EndTime:     cursor.Add(duration),
				MaxCapacity: req.MaxCapacity,
				BookedCount: 0,
			})
			slotNumber++
		}
	}

	return slots
}

func (s *slotService) applyDefaults(req *model.SlotGenerationRequest) {
	if req.DurationMin == 0 {
		req.DurationMin = s.cfg.DefaultSlotDurationMin
	}
	if req.MaxCapacity == 0 {
		req.MaxCapacity = s.cfg.DefaultSlotCapacity
	}
}

func (s *slotService) GetByHospital(ctx context.Context, hospitalID, date string, limit int, offset int64) ([]*model.Slot, int64, error) {
	if hospitalID == "" {
		return nil, 0, apperrors.InvalidInput("Hospital ID cannot be empty")
	}
	if date != "" {
		if err := s.validator.ValidateDate(date); err != nil {
			return nil, 0, apperrors.InvalidInput("date must be in YYYY-MM-DD format")
		}
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	slots, err := s.repo.FindByHospital(ctx, hospitalID, date, limit, offset)
	if err != nil {
		return nil, 0, apperrors.Internal("Failed to list slots", err)
	}

	total, err := s.repo.CountByHospital(ctx, hospitalID, date)
	if err != nil {
		return nil, 0, apperrors.Internal("Failed to count slots", err)
	}

	return slots, total, nil
}

func (s *slotService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Slot ID cannot be empty")
	}

	err := s.repo.DeleteByID(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, sloterrors.ErrSlotNotFound):
			return apperrors.NotFoundWithID("Slot", id)
		case errors.Is(err, sloterrors.ErrSlotHasBookings):
			return apperrors.Conflict("Slot has confirmed bookings and cannot be deleted")
		case errors.Is(err, sloterrors.ErrInvalidID):
			return apperrors.InvalidInput("Slot ID must be a valid MongoDB ObjectID")
		default:
			return apperrors.Internal("Failed to delete slot", err)
		}
	}

	s.cfg.Log.Info("Slot deleted", "id", id)
	return nil
}

// DeleteByDay removes a day's unbooked slots. Booked ones are skipped, not
// an error: the caller clears what it can and sees how many went.
func (s *slotService) DeleteByDay(ctx context.Context, hospitalID, date string) (int64, error) {
	if hospitalID == "" {
		return 0, apperrors.InvalidInput("Hospital ID cannot be empty")
	}
	if err := s.validator.ValidateDate(date); err != nil {
		return 0, apperrors.InvalidInput("date must be in YYYY-MM-DD format")
	}

	deleted, err := s.repo.DeleteByDay(ctx, hospitalID, date)
	if err != nil {
		return 0, apperrors.Internal("Failed to delete slots for day", err)
	}

	s.cfg.Log.Info("Slots deleted for day",
		"hospital_id", hospitalID,
		"date", date,
		"deleted", deleted,
	)
	return deleted, nil
}
