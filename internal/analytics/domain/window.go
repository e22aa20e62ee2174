package domain

import (
	"time"

	"lead_feedback_backend/platform/apperr"
)

// DefaultWindow is the trailing period used when no start is given.
const DefaultWindow = 30 * 24 * time.Hour

// Window is the inclusive [Start, End] range an analytics query covers.
type Window struct {
	Start time.Time
	End   time.Time
}

// ResolveWindow fills in missing bounds relative to now. A missing end is now,
// a missing start is DefaultWindow before the end.
func ResolveWindow(start, end *time.Time, now time.Time) (Window, error) {
	w := Window{End: now}
	if end != nil {
		w.End = *end
	}
	w.Start = w.End.Add(-DefaultWindow)
	if start != nil {
		w.Start = *start
	}
	if w.Start.After(w.End) {
		return Window{}, apperr.Validation("startDate must not be after endDate").WithCode(apperr.CodeValidation)
	}
	return w, nil
}
