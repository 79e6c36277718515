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

type HospitalValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewHospitalValidator(log *logger.Logger) *HospitalValidator {
	return &HospitalValidator{
		validate: validator.New(),
		logger:   log,
	}
}

func (v *HospitalValidator) Validate(hospital *model.Hospital) error {
	hospital.Name = sanitizer.NormalizeName(hospital.Name)
	hospital.City = sanitizer.NormalizeCity(hospital.City)
	hospital.Address = sanitizer.TrimAndNormalize(hospital.Address)
	if hospital.Phone != "" {
		phone := sanitizer.NormalizePhone(hospital.Phone)
		if phone == "" {
			return ValidationErrors{
				ValidationError{
					Field:   "Phone",
					Message: "phone must be a valid phone number",
				},
			}
		}
		hospital.Phone = phone
	}

	if err := v.validate.Struct(hospital); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	return nil
}

func (v *HospitalValidator) ValidateUpdate(update *model.HospitalUpdate) error {
	if update.Name != "" {
		update.Name = sanitizer.NormalizeName(update.Name)
	}
	if update.City != "" {
		update.City = sanitizer.NormalizeCity(update.City)
	}
	if update.Address != "" {
		update.Address = sanitizer.TrimAndNormalize(update.Address)
	}
	if update.Phone != "" {
		phone := sanitizer.NormalizePhone(update.Phone)
		if phone == "" {
			return ValidationErrors{
				ValidationError{
					Field:   "Phone",
					Message: "phone must be a valid phone number",
				},
			}
		}
		update.Phone = phone
	}

	if err := v.validate.Struct(update); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	return nil
}

func (v *HospitalValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
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
		case "e164":
			message = fmt.Sprintf("%s must be in E.164 format (e.g., +14155550123)", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
