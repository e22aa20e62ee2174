package service

import (
	"context"
	"strings"
	"time"

	"lead_feedback_backend/internal/leads/repository"
	"lead_feedback_backend/internal/leads/transport"
	"lead_feedback_backend/platform/apperr"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// SearchParams is a directory search after request parsing.
type SearchParams struct {
	InsuranceType string
	Urgency       string
	Source        string
	MinScore      *int
	MaxScore      *int
	GeneratedFrom *time.Time
	GeneratedTo   *time.Time
	Page          int
	PageSize      int
}

// Service provides read access to the lead directory.
type Service struct {
	repo repository.Reader
}

// New creates a new leads service.
func New(repo repository.Reader) *Service {
	return &Service{repo: repo}
}

// GetLead returns the lead with the given external id.
func (s *Service) GetLead(ctx context.Context, externalID string) (transport.LeadResponse, error) {
	lead, err := s.repo.GetByExternalID(ctx, strings.TrimSpace(externalID))
	if err != nil {
		return transport.LeadResponse{}, err
	}
	return toLeadResponse(lead), nil
}

// GetLeadAnalytics returns a lead with its feedback count, mean rating and
// most recent feedback time.
func (s *Service) GetLeadAnalytics(ctx context.Context, externalID string) (transport.LeadAnalyticsResponse, error) {
	lead, err := s.repo.GetByExternalID(ctx, strings.TrimSpace(externalID))
	if err != nil {
		return transport.LeadAnalyticsResponse{}, err
	}

	stats, err := s.repo.FeedbackStats(ctx, lead.ID)
	if err != nil {
		return transport.LeadAnalyticsResponse{}, err
	}

	return transport.LeadAnalyticsResponse{
		Lead: toLeadResponse(lead),
		Feedback: transport.LeadFeedbackStats{
			Count:         stats.Count,
			AverageRating: stats.AverageRating,
			LastFeedback:  stats.LastFeedback,
		},
	}, nil
}

// SearchLeads returns one page of leads matching the filters, newest first.
func (s *Service) SearchLeads(ctx context.Context, p SearchParams) (transport.LeadListResponse, error) {
	if p.MinScore != nil && p.MaxScore != nil && *p.MinScore > *p.MaxScore {
		return transport.LeadListResponse{}, apperr.Validation("minScore must not exceed maxScore").WithCode(apperr.CodeValidation)
	}
	if p.GeneratedFrom != nil && p.GeneratedTo != nil && p.GeneratedFrom.After(*p.GeneratedTo) {
		return transport.LeadListResponse{}, apperr.Validation("startDate must not be after endDate").WithCode(apperr.CodeValidation)
	}

	page := p.Page
	if page < 1 {
		page = 1
	}
	pageSize := p.PageSize
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	params := repository.ListParams{
		InsuranceType: optional(p.InsuranceType),
		Urgency:       optional(p.Urgency),
		Source:        optional(p.Source),
		MinScore:      p.MinScore,
		MaxScore:      p.MaxScore,
		GeneratedFrom: p.GeneratedFrom,
		GeneratedTo:   p.GeneratedTo,
		Offset:        (page - 1) * pageSize,
		Limit:         pageSize,
	}

	leads, total, err := s.repo.List(ctx, params)
	if err != nil {
		return transport.LeadListResponse{}, err
	}

	items := make([]transport.LeadResponse, len(leads))
	for i, lead := range leads {
		items[i] = toLeadResponse(lead)
	}

	return transport.LeadListResponse{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: (total + pageSize - 1) / pageSize,
	}, nil
}

func optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

func toLeadResponse(l repository.Lead) transport.LeadResponse {
	return transport.LeadResponse{
		ID:            l.ID,
		ExternalID:    l.ExternalID,
		Name:          l.Name,
		Email:         l.Email,
		Phone:         l.Phone,
		Location:      l.Location,
		InsuranceType: l.InsuranceType,
		Urgency:       l.Urgency,
		IncomeRange:   l.IncomeRange,
		Age:           l.Age,
		Score:         l.Score,
		Source:        l.Source,
		GeneratedAt:   l.GeneratedAt,
		CreatedAt:     l.CreatedAt,
		UpdatedAt:     l.UpdatedAt,
	}
}
