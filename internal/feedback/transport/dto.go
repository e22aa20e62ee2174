package transport

import (
	"time"

	"github.com/google/uuid"
)

// SubmitFeedbackRequest is the public feedback form payload.
type SubmitFeedbackRequest struct {
	LeadID             string   `json:"leadId" validate:"required,max=50"`
	BrokerID           string   `json:"brokerId" validate:"required,max=50"`
	Rating             int      `json:"rating" validate:"required,min=1,max=5"`
	Status             string   `json:"status" validate:"required,feedbackstatus"`
	Issues             []string `json:"issues,omitempty" validate:"omitempty,max=20,dive,max=100"`
	Comments           string   `json:"comments,omitempty" validate:"max=2000"`
	LeadScore          *int     `json:"leadScore,omitempty"`
	FormCompletionTime *int     `json:"formCompletionTime,omitempty" validate:"omitempty,min=0"`
	SessionID          *string  `json:"sessionId,omitempty" validate:"omitempty,max=100"`
	TouchDevice        bool     `json:"touchDevice"`
}

// SubmitFeedbackResponse confirms a committed submission.
type SubmitFeedbackResponse struct {
	FeedbackID       uuid.UUID `json:"feedbackId"`
	ExternalLeadID   string    `json:"leadId"`
	ExternalBrokerID string    `json:"brokerId"`
	SubmittedAt      time.Time `json:"submittedAt"`
}

// ListBrokerFeedbackRequest carries pagination for a broker's feedback.
type ListBrokerFeedbackRequest struct {
	Page  int `form:"page" validate:"omitempty,min=1"`
	Limit int `form:"limit" validate:"omitempty,min=1,max=100"`
}

// ListRecentRequest carries the size of the recent feedback list.
type ListRecentRequest struct {
	Limit int `form:"limit" validate:"omitempty,min=1,max=100"`
}

// FeedbackResponse is a feedback entry with its lead and broker.
type FeedbackResponse struct {
	ID                 uuid.UUID `json:"id"`
	Rating             int       `json:"rating"`
	Status             string    `json:"status"`
	Issues             []string  `json:"issues"`
	Comments           string    `json:"comments"`
	LeadScore          *int      `json:"leadScore,omitempty"`
	FormCompletionTime *int      `json:"formCompletionTime,omitempty"`
	SessionID          *string   `json:"sessionId,omitempty"`
	TouchDevice        bool      `json:"touchDevice"`
	SubmittedAt        time.Time `json:"submittedAt"`
	Lead               LeadRef   `json:"lead"`
	Broker             BrokerRef `json:"broker"`
}

// LeadRef identifies the lead a feedback entry is about.
type LeadRef struct {
	ExternalID string `json:"externalId"`
	Name       string `json:"name"`
	Score      int    `json:"score"`
}

// BrokerRef identifies the broker who left a feedback entry.
type BrokerRef struct {
	ExternalID string  `json:"externalId"`
	Name       string  `json:"name"`
	Company    *string `json:"company,omitempty"`
}

// FeedbackListResponse wraps a page of feedback.
type FeedbackListResponse struct {
	Items      []FeedbackResponse `json:"items"`
	Total      int                `json:"total"`
	Page       int                `json:"page"`
	PageSize   int                `json:"pageSize"`
	TotalPages int                `json:"totalPages"`
}

// RecentFeedbackResponse wraps the newest feedback entries.
type RecentFeedbackResponse struct {
	Items []FeedbackResponse `json:"items"`
}
