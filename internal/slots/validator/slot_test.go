package validator

import (
	"testing"

	"clinicore/pkg/logger"
	"clinicore/pkg/model"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{
		Level:     "error",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})
}

func TestValidateGeneration_ClockTimeTag(t *testing.T) {
	v := NewSlotValidator(testLogger())

	base := model.SlotGenerationRequest{
		HospitalID:  "64f1a2b3c4d5e6f7a8b9c0d2",
		StartDate:   "2026-09-14",
		EndDate:     "2026-09-14",
		StartTime:   "09:00",
		EndTime:     "17:00",
		DurationMin: 30,
		MaxCapacity: 2,
	}

	tests := []struct {
		name      string
		startTime string
		wantErr   bool
	}{
		{name: "valid", startTime: "09:00", wantErr: false},
		{name: "midnight", startTime: "00:00", wantErr: false},
		{name: "twelve hour clock", startTime: "9:00am", wantErr: true},
		{name: "missing minutes", startTime: "09", wantErr: true},
		{name: "out of range hour", startTime: "25:00", wantErr: true},
		{name: "with seconds", startTime: "09:00:00", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base
			req.StartTime = tt.startTime
			err := v.ValidateGeneration(&req)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateGeneration() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateDate(t *testing.T) {
	v := NewSlotValidator(testLogger())

	if err := v.ValidateDate("2026-09-14"); err != nil {
		t.Errorf("unexpected error for valid date: %v", err)
	}
	if err := v.ValidateDate("14/09/2026"); err == nil {
		t.Error("expected error for slash-separated date")
	}
	if err := v.ValidateDate("2026-13-01"); err == nil {
		t.Error("expected error for impossible month")
	}
}
