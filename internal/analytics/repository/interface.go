package repository

import (
	"context"
	"time"

	"lead_feedback_backend/internal/analytics/domain"
)

// Filter scopes analytics reads to a submission window and optionally a broker.
type Filter struct {
	Start            time.Time
	End              time.Time
	BrokerExternalID *string
}

// Overview is the raw system overview row.
type Overview struct {
	TotalFeedback     int
	TotalLeads        int
	ActiveBrokers     int
	AverageRating     float64
	AvgCompletionTime float64
}

// IssueCount is the number of occurrences of one issue tag.
type IssueCount struct {
	Issue string
	Count int
}

// StatusCount is the number of feedback rows with one status.
type StatusCount struct {
	Status string
	Count  int
}

// ResponseTimes summarises non-null form completion times.
type ResponseTimes struct {
	Average float64
	Min     int
	Max     int
	Count   int
}

// Repository is the read-only analytics store. Implementations take no locks.
type Repository interface {
	Overview(ctx context.Context, f Filter) (Overview, error)
	RatingCounts(ctx context.Context, f Filter) (map[int]int, error)
	IssueCounts(ctx context.Context, f Filter, limit int) ([]IssueCount, error)
	StatusCounts(ctx context.Context, f Filter) ([]StatusCount, error)
	ScoreGroups(ctx context.Context, f Filter) ([]domain.ScoreGroup, error)
	ResponseTimes(ctx context.Context, f Filter) (ResponseTimes, error)
}
