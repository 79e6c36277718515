package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"clinicore/pkg/logger"
	"clinicore/pkg/model"
	"clinicore/pkg/sanitizer"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// BookingValidator checks the public reservation requests before they reach
// the engine. Patient contact details are normalized in place as a side
// effect of a successful ValidateConfirm.
type BookingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	v := validator.New()

	log.Info("Booking validator initialized successfully")

	return &BookingValidator{
		validate: v,
		logger:   log,
	}
}

func (v *BookingValidator) ValidateLock(req *model.LockSlotRequest) error {
	req.SlotID = sanitizer.TrimAndNormalize(req.SlotID)
	req.BookingAttemptID = strings.ToLower(sanitizer.TrimAndNormalize(req.BookingAttemptID))

	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	return nil
}

func (v *BookingValidator) ValidateRelease(lockID string) error {
	if err := v.validate.Var(lockID, "required,uuid4"); err != nil {
		return ValidationErrors{
			ValidationError{
				Field:   "LockID",
				Message: "lock_id must be a valid UUID",
			},
		}
	}
	return nil
}

func (v *BookingValidator) ValidateConfirm(req *model.ConfirmBookingRequest) error {
	req.LockID = strings.ToLower(sanitizer.TrimAndNormalize(req.LockID))
	req.PatientName = sanitizer.NormalizeName(req.PatientName)
	req.PatientEmail = sanitizer.NormalizeEmail(req.PatientEmail)
	req.HealthIssue = sanitizer.TrimAndNormalize(req.HealthIssue)

	phone := sanitizer.NormalizePhone(req.PatientPhone)
	if phone == "" {
		return ValidationErrors{
			ValidationError{
				Field:   "PatientPhone",
				Message: "patient_phone must be a valid phone number",
			},
		}
	}
	req.PatientPhone = phone

	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	return nil
}

func (v *BookingValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "uuid4":
			message = fmt.Sprintf("%s must be a valid UUID", err.Field())
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", err.Field())
		case "e164":
			message = fmt.Sprintf("%s must be in E.164 format (e.g., +14155550123)", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
