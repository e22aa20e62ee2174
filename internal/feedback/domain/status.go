package domain

// Status is the lead's progress as reported by the broker.
type Status string

const (
	StatusNew           Status = "new"
	StatusContacted     Status = "contacted"
	StatusBooked        Status = "booked"
	StatusFirstMeeting  Status = "first-meeting"
	StatusSecondMeeting Status = "second-meeting"
	StatusSubmitted     Status = "submitted"
	StatusIssued        Status = "issued"
	StatusFailed        Status = "failed"
)

var orderedStatuses = []Status{
	StatusNew,
	StatusContacted,
	StatusBooked,
	StatusFirstMeeting,
	StatusSecondMeeting,
	StatusSubmitted,
	StatusIssued,
	StatusFailed,
}

var knownStatuses = func() map[Status]struct{} {
	m := make(map[Status]struct{}, len(orderedStatuses))
	for _, s := range orderedStatuses {
		m[s] = struct{}{}
	}
	return m
}()

// IsKnownStatus reports whether raw is one of the accepted status values.
func IsKnownStatus(raw string) bool {
	_, ok := knownStatuses[Status(raw)]
	return ok
}

// Statuses returns the accepted statuses in pipeline order.
func Statuses() []Status {
	out := make([]Status, len(orderedStatuses))
	copy(out, orderedStatuses)
	return out
}
