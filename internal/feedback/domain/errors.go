package domain

import "lead_feedback_backend/platform/apperr"

// Error codes specific to feedback ingestion.
const (
	CodeDuplicateFeedback = "DUPLICATE_FEEDBACK"
	CodeInvalidReference  = "INVALID_REFERENCE"
)

// ErrDuplicateFeedback reports that the (lead, broker) pair already has feedback.
func ErrDuplicateFeedback() *apperr.Error {
	return apperr.Conflict("feedback already exists for this lead and broker combination").
		WithCode(CodeDuplicateFeedback)
}

// ErrInvalidReference reports that a referenced lead or broker row does not exist.
func ErrInvalidReference(cause error) *apperr.Error {
	return apperr.Wrap(apperr.KindValidation, "invalid lead or broker reference", cause).
		WithCode(CodeInvalidReference)
}
