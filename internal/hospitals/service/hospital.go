package service

import (
	"context"
	"errors"

	hospitalerrors "clinicore/internal/hospitals/errors"
	"clinicore/internal/hospitals/repository"
	"clinicore/internal/hospitals/validator"
	"clinicore/pkg/config"
	apperrors "clinicore/pkg/errors"
	"clinicore/pkg/model"
	"clinicore/pkg/sanitizer"
)

type HospitalService interface {
	Create(ctx context.Context, hospital *model.Hospital) error
	GetByID(ctx context.Context, id string) (*model.Hospital, error)
	GetAll(ctx context.Context, city string, limit int, offset int64) ([]*model.Hospital, int64, error)
	Update(ctx context.Context, id string, update *model.HospitalUpdate) error
	Delete(ctx context.Context, id string) error
}

type hospitalService struct {
	repo      repository.HospitalRepository
	validator *validator.HospitalValidator
	cfg       *config.Config
}

func NewHospitalService(repo repository.HospitalRepository, validator *validator.HospitalValidator, cfg *config.Config) HospitalService {
	return &hospitalService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *hospitalService) Create(ctx context.Context, hospital *model.Hospital) error {
	if err := s.validator.Validate(hospital); err != nil {
		return apperrors.Validation("Invalid hospital", map[string]any{"errors": err.Error()})
	}

	if err := s.repo.Create(ctx, hospital); err != nil {
		if errors.Is(err, hospitalerrors.ErrDuplicateName) {
			return apperrors.Conflict("Hospital with this name already exists in the city")
		}
		return apperrors.Internal("Failed to create hospital", err)
	}

	s.cfg.Log.Info("Hospital created", "id", hospital.ID, "name", hospital.Name, "city", hospital.City)
	return nil
}

func (s *hospitalService) GetByID(ctx context.Context, id string) (*model.Hospital, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Hospital ID cannot be empty")
	}

	hospital, err := s.repo.FindByID(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, hospitalerrors.ErrNotFound):
			return nil, apperrors.NotFoundWithID("Hospital", id)
		case errors.Is(err, hospitalerrors.ErrInvalidID):
			return nil, apperrors.InvalidInput("Hospital ID must be a valid MongoDB ObjectID")
		default:
			return nil, apperrors.Internal("Failed to find hospital", err)
		}
	}
	return hospital, nil
}

func (s *hospitalService) GetAll(ctx context.Context, city string, limit int, offset int64) ([]*model.Hospital, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var (
		hospitals []*model.Hospital
		total     int64
		err       error
	)

	if city != "" {
		city = sanitizer.NormalizeCity(city)
		hospitals, err = s.repo.FindByCity(ctx, city, limit, offset)
		if err == nil {
			total, err = s.repo.CountByCity(ctx, city)
		}
	} else {
		hospitals, err = s.repo.FindAll(ctx, limit, offset)
		if err == nil {
			total, err = s.repo.Count(ctx)
		}
	}
	if err != nil {
		return nil, 0, apperrors.Internal("Failed to list hospitals", err)
	}

	return hospitals, total, nil
}

func (s *hospitalService) Update(ctx context.Context, id string, update *model.HospitalUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Hospital ID cannot be empty")
	}

	if err := s.validator.ValidateUpdate(update); err != nil {
		return apperrors.Validation("Invalid hospital update", map[string]any{"errors": err.Error()})
	}

	if err := s.repo.Update(ctx, id, update); err != nil {
		switch {
		case errors.Is(err, hospitalerrors.ErrNotFound):
			return apperrors.NotFoundWithID("Hospital", id)
		case errors.Is(err, hospitalerrors.ErrInvalidID):
			return apperrors.InvalidInput("Hospital ID must be a valid MongoDB ObjectID")
		default:
			return apperrors.Internal("Failed to update hospital", err)
		}
	}

	s.cfg.Log.Info("Hospital updated", "id", id)
	return nil
}

func (s *hospitalService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Hospital ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, hospitalerrors.ErrNotFound):
			return apperrors.NotFoundWithID("Hospital", id)
		case errors.Is(err, hospitalerrors.ErrInvalidID):
			return apperrors.InvalidInput("Hospital ID must be a valid MongoDB ObjectID")
		default:
			return apperrors.Internal("Failed to delete hospital", err)
		}
	}

	s.cfg.Log.Info("Hospital deleted", "id", id)
	return nil
}
