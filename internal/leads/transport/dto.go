package transport

import (
	"time"

	"github.com/google/uuid"
)

// SearchLeadsRequest filters and pages the lead directory.
type SearchLeadsRequest struct {
	InsuranceType string `form:"insuranceType" validate:"omitempty,max=100"`
	Urgency       string `form:"urgency" validate:"omitempty,max=50"`
	Source        string `form:"source" validate:"omitempty,max=100"`
	MinScore      *int   `form:"minScore" validate:"omitempty,min=0,max=100"`
	MaxScore      *int   `form:"maxScore" validate:"omitempty,min=0,max=100"`
	StartDate     string `form:"startDate"`
	EndDate       string `form:"endDate"`
	Page          int    `form:"page" validate:"omitempty,min=1"`
	Limit         int    `form:"limit" validate:"omitempty,min=1,max=100"`
}

// LeadResponse is a lead as exposed by the directory.
type LeadResponse struct {
	ID            uuid.UUID `json:"id"`
	ExternalID    string    `json:"externalId"`
	Name          string    `json:"name"`
	Email         *string   `json:"email,omitempty"`
	Phone         *string   `json:"phone,omitempty"`
	Location      *string   `json:"location,omitempty"`
	InsuranceType *string   `json:"insuranceType,omitempty"`
	Urgency       *string   `json:"urgency,omitempty"`
	IncomeRange   *string   `json:"incomeRange,omitempty"`
	Age           *int      `json:"age,omitempty"`
	Score         int       `json:"score"`
	Source        *string   `json:"source,omitempty"`
	GeneratedAt   time.Time `json:"generatedAt"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// LeadListResponse is one page of leads.
type LeadListResponse struct {
	Items      []LeadResponse `json:"items"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	TotalPages int            `json:"totalPages"`
}

// LeadFeedbackStats summarises the feedback recorded about a lead.
type LeadFeedbackStats struct {
	Count         int        `json:"count"`
	AverageRating float64    `json:"averageRating"`
	LastFeedback  *time.Time `json:"lastFeedback"`
}

// LeadAnalyticsResponse is a lead together with its feedback summary.
type LeadAnalyticsResponse struct {
	Lead     LeadResponse      `json:"lead"`
	Feedback LeadFeedbackStats `json:"feedback"`
}
