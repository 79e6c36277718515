package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	hospitalerrors "clinicore/internal/hospitals/errors"
	"clinicore/internal/hospitals/validator"
	"clinicore/pkg/config"
	apperrors "clinicore/pkg/errors"
	"clinicore/pkg/logger"
	"clinicore/pkg/model"
)

// Mock repository for testing
type mockHospitalRepository struct {
	createFunc     func(ctx context.Context, hospital *model.Hospital) error
	findByIDFunc   func(ctx context.Context, id string) (*model.Hospital, error)
	findByCityFunc func(ctx context.Context, city string, limit int, offset int64) ([]*model.Hospital, error)
	deleteFunc     func(ctx context.Context, id string) error
}

func (m *mockHospitalRepository) Create(ctx context.Context, hospital *model.Hospital) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, hospital)
	}
	hospital.ID = "64f1a2b3c4d5e6f7a8b9c0d2"
	return nil
}

func (m *mockHospitalRepository) FindByID(ctx context.Context, id string) (*model.Hospital, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return &model.Hospital{ID: id}, nil
}

func (m *mockHospitalRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Hospital, error) {
	return []*model.Hospital{}, nil
}

func (m *mockHospitalRepository) FindByCity(ctx context.Context, city string, limit int, offset int64) ([]*model.Hospital, error) {
	if m.findByCityFunc != nil {
		return m.findByCityFunc(ctx, city, limit, offset)
	}
	return []*model.Hospital{}, nil
}

func (m *mockHospitalRepository) Count(ctx context.Context) (int64, error) {
	return 0, nil
}

func (m *mockHospitalRepository) CountByCity(ctx context.Context, city string) (int64, error) {
	return 0, nil
}

func (m *mockHospitalRepository) Update(ctx context.Context, id string, update *model.HospitalUpdate) error {
	return nil
}

func (m *mockHospitalRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func newTestService(repo *mockHospitalRepository) HospitalService {
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

	return NewHospitalService(repo, validator.NewHospitalValidator(log), cfg)
}

func TestCreate_NormalizesFields(t *testing.T) {
	var captured *model.Hospital
	repo := &mockHospitalRepository{
		createFunc: func(ctx context.Context, hospital *model.Hospital) error {
			captured = hospital
			return nil
		},
	}
	service := newTestService(repo)

	hospital := &model.Hospital{
		Name:  "  City  Care Hospital ",
		City:  "  Bengaluru ",
		Phone: "+1 415 555 2671",
	}
	if err := service.Create(context.Background(), hospital); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if captured.Name != "City Care Hospital" {
		t.Errorf("name not normalized: %q", captured.Name)
	}
	if captured.City != "Bengaluru" {
		t.Errorf("city not normalized: %q", captured.City)
	}
	if captured.Phone != "+14155552671" {
		t.Errorf("phone not normalized: %q", captured.Phone)
	}
}

func TestCreate_ValidationFailure(t *testing.T) {
	service := newTestService(&mockHospitalRepository{})

	err := service.Create(context.Background(), &model.Hospital{Name: "X"})
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreate_DuplicateName(t *testing.T) {
	repo := &mockHospitalRepository{
		createFunc: func(ctx context.Context, hospital *model.Hospital) error {
			return fmt.Errorf("%w: %s", hospitalerrors.ErrDuplicateName, hospital.Name)
		},
	}
	service := newTestService(repo)

	err := service.Create(context.Background(), &model.Hospital{Name: "City Care", City: "Pune"})
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo := &mockHospitalRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Hospital, error) {
			return nil, fmt.Errorf("%w: %s", hospitalerrors.ErrNotFound, id)
		},
	}
	service := newTestService(repo)

	_, err := service.GetByID(context.Background(), "64f1a2b3c4d5e6f7a8b9c0d2")
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGetAll_CityFilterNormalized(t *testing.T) {
	var gotCity string
	repo := &mockHospitalRepository{
		findByCityFunc: func(ctx context.Context, city string, limit int, offset int64) ([]*model.Hospital, error) {
			gotCity = city
			return []*model.Hospital{}, nil
		},
	}
	service := newTestService(repo)

	_, _, err := service.GetAll(context.Background(), "  Pune ", 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotCity != "Pune" {
		t.Errorf("expected trimmed city Pune, got %q", gotCity)
	}
}

func TestDelete_InvalidID(t *testing.T) {
	repo := &mockHospitalRepository{
		deleteFunc: func(ctx context.Context, id string) error {
			return fmt.Errorf("%w: %s", hospitalerrors.ErrInvalidID, id)
		},
	}
	service := newTestService(repo)

	err := service.Delete(context.Background(), "abc")
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeInvalidInput {
		t.Fatalf("expected invalid input, got %v", err)
	}
}
