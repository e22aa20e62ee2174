package feedback

import (
	"lead_feedback_backend/internal/feedback/domain"
	"lead_feedback_backend/platform/validator"

	govalidator "github.com/go-playground/validator/v10"
)

// RegisterValidations adds the feedback-specific validator rules.
func RegisterValidations(val *validator.Validator) error {
	return val.RegisterValidation("feedbackstatus", func(fl govalidator.FieldLevel) bool {
		return domain.IsKnownStatus(fl.Field().String())
	})
}
