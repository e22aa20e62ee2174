package service

import (
	"net/netip"

	"lead_feedback_backend/internal/feedback/domain"
	"lead_feedback_backend/internal/feedback/repository"
	"lead_feedback_backend/internal/feedback/transport"

	"github.com/google/uuid"
)

func toInsertParams(leadID, brokerID uuid.UUID, sub domain.Submission) repository.InsertParams {
	params := repository.InsertParams{
		LeadID:             leadID,
		BrokerID:           brokerID,
		Rating:             sub.Rating,
		Status:             string(sub.Status),
		Issues:             sub.Issues,
		Comments:           sub.Comments,
		LeadScore:          sub.LeadScore,
		FormCompletionTime: sub.FormCompletionTime,
		SessionID:          sub.SessionID,
		UserAgent:          sub.UserAgent,
		TouchDevice:        sub.TouchDevice,
		IPAddress:          clientIP(sub.ClientIP),
	}
	if !sub.SubmittedAt.IsZero() {
		at := sub.SubmittedAt
		params.SubmittedAt = &at
	}
	return params
}

// clientIP drops addresses the inet column would reject.
func clientIP(raw *string) *string {
	if raw == nil {
		return nil
	}
	addr, err := netip.ParseAddr(*raw)
	if err != nil {
		return nil
	}
	value := addr.String()
	return &value
}

func toResponse(v repository.FeedbackView) transport.FeedbackResponse {
	issues := v.Issues
	if issues == nil {
		issues = []string{}
	}
	return transport.FeedbackResponse{
		ID:                 v.ID,
		Rating:             v.Rating,
		Status:             v.Status,
		Issues:             issues,
		Comments:           v.Comments,
		LeadScore:          v.LeadScore,
		FormCompletionTime: v.FormCompletionTime,
		SessionID:          v.SessionID,
		TouchDevice:        v.TouchDevice,
		SubmittedAt:        v.SubmittedAt,
		Lead: transport.LeadRef{
			ExternalID: v.LeadExternalID,
			Name:       v.LeadName,
			Score:      v.LeadCurrentScore,
		},
		Broker: transport.BrokerRef{
			ExternalID: v.BrokerExternalID,
			Name:       v.BrokerName,
			Company:    v.BrokerCompany,
		},
	}
}

func toListResponseWithPagination(items []repository.FeedbackView, total int, page int, pageSize int) transport.FeedbackListResponse {
	responses := make([]transport.FeedbackResponse, len(items))
	for i, item := range items {
		responses[i] = toResponse(item)
	}
	totalPages := 0
	if pageSize > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}
	return transport.FeedbackListResponse{
		Items:      responses,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}
