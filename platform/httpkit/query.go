package httpkit

import (
	"strings"
	"time"

	"lead_feedback_backend/platform/apperr"
)

const dateOnlyLayout = "2006-01-02"

// ParseTimeParam parses a query parameter holding an RFC 3339 timestamp or a
// plain YYYY-MM-DD date. Blank input yields nil. With endOfDay set, a plain
// date covers the whole day.
func ParseTimeParam(raw string, endOfDay bool) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(dateOnlyLayout, raw)
	if err != nil {
		return nil, apperr.Validation("dates must be RFC 3339 timestamps or YYYY-MM-DD").WithCode(apperr.CodeValidation)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
