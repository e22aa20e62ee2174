package transport

import (
	"time"

	"github.com/google/uuid"
)

// ListBrokersRequest filters and pages active brokers.
type ListBrokersRequest struct {
	Location string `form:"location" validate:"omitempty,max=255"`
	Company  string `form:"company" validate:"omitempty,max=255"`
	Page     int    `form:"page" validate:"omitempty,min=1"`
	Limit    int    `form:"limit" validate:"omitempty,min=1,max=100"`
}

// LeaderboardRequest selects the ranking metric and size.
type LeaderboardRequest struct {
	Metric string `form:"metric" validate:"omitempty,oneof=rating feedback"`
	Limit  int    `form:"limit" validate:"omitempty,min=1,max=100"`
}

// BrokerAnalyticsRequest optionally bounds the analytics window.
type BrokerAnalyticsRequest struct {
	StartDate string `form:"startDate"`
	EndDate   string `form:"endDate"`
}

// BrokerResponse is a broker with its maintained feedback aggregate.
type BrokerResponse struct {
	ID                 uuid.UUID `json:"id"`
	ExternalID         string    `json:"externalId"`
	Name               string    `json:"name"`
	Email              string    `json:"email"`
	Phone              *string   `json:"phone,omitempty"`
	Company            *string   `json:"company,omitempty"`
	Location           *string   `json:"location,omitempty"`
	TotalFeedbackCount int       `json:"totalFeedbackCount"`
	AverageRating      float64   `json:"averageRating"`
	IsActive           bool      `json:"isActive"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// BrokerListResponse is one page of brokers.
type BrokerListResponse struct {
	Items      []BrokerResponse `json:"items"`
	Total      int              `json:"total"`
	Page       int              `json:"page"`
	PageSize   int              `json:"pageSize"`
	TotalPages int              `json:"totalPages"`
}

// BrokerStats summarises a broker's feedback within the requested window.
type BrokerStats struct {
	TotalFeedback     int     `json:"totalFeedback"`
	AverageRating     float64 `json:"averageRating"`
	AvgCompletionTime float64 `json:"avgCompletionTime"`
}

// BrokerAnalyticsResponse is a broker with its windowed feedback analytics.
type BrokerAnalyticsResponse struct {
	Broker             BrokerResponse `json:"broker"`
	Stats              BrokerStats    `json:"stats"`
	RatingDistribution map[int]int    `json:"ratingDistribution"`
}

// LeaderboardEntry is one ranked broker.
type LeaderboardEntry struct {
	Rank   int            `json:"rank"`
	Broker BrokerResponse `json:"broker"`
}

// LeaderboardResponse is the ranked list of brokers.
type LeaderboardResponse struct {
	Metric  string             `json:"metric"`
	Entries []LeaderboardEntry `json:"entries"`
}

// ReconcileAcceptedResponse confirms that aggregate reconciliation was queued.
type ReconcileAcceptedResponse struct {
	Status string `json:"status"`
}
