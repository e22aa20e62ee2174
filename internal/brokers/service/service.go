package service

import (
	"context"
	"strings"
	"time"

	"lead_feedback_backend/internal/brokers/repository"
	"lead_feedback_backend/internal/brokers/transport"
	"lead_feedback_backend/platform/apperr"
	"lead_feedback_backend/platform/logger"

	"golang.org/x/sync/errgroup"
)

const (
	defaultPageSize         = 20
	maxPageSize             = 100
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
)

// StatsReconcileEnqueuer queues a recomputation of every broker aggregate.
type StatsReconcileEnqueuer interface {
	EnqueueBrokerStatsReconcile(ctx context.Context, requestedBy string) error
}

// ListParams is an active-broker listing after request parsing.
type ListParams struct {
	Location string
	Company  string
	Page     int
	PageSize int
}

// Service provides read access to the broker directory.
type Service struct {
	repo       repository.Reader
	reconciler StatsReconcileEnqueuer
	log        *logger.Logger
}

// New creates a new brokers service. reconciler may be nil when no job queue
// is configured.
func New(repo repository.Reader, reconciler StatsReconcileEnqueuer, log *logger.Logger) *Service {
	return &Service{repo: repo, reconciler: reconciler, log: log}
}

// GetBroker returns the broker with the given external id.
func (s *Service) GetBroker(ctx context.Context, externalID string) (transport.BrokerResponse, error) {
	broker, err := s.repo.GetByExternalID(ctx, strings.TrimSpace(externalID))
	if err != nil {
		return transport.BrokerResponse{}, err
	}
	return toBrokerResponse(broker), nil
}

// GetBrokerAnalytics returns the broker with feedback statistics and a
// zero-filled rating distribution computed from the ledger. Nil bounds leave
// that side of the window open.
func (s *Service) GetBrokerAnalytics(ctx context.Context, externalID string, start, end *time.Time) (transport.BrokerAnalyticsResponse, error) {
	if start != nil && end != nil && start.After(*end) {
		return transport.BrokerAnalyticsResponse{}, apperr.Validation("startDate must not be after endDate").WithCode(apperr.CodeValidation)
	}

	broker, err := s.repo.GetByExternalID(ctx, strings.TrimSpace(externalID))
	if err != nil {
		return transport.BrokerAnalyticsResponse{}, err
	}

	var (
		stats  repository.WindowStats
		counts map[int]int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats, err = s.repo.WindowStats(gctx, broker.ID, start, end)
		return err
	})
	g.Go(func() (err error) {
		counts, err = s.repo.RatingCounts(gctx, broker.ID, start, end)
		return err
	})
	if err := g.Wait(); err != nil {
		return transport.BrokerAnalyticsResponse{}, err
	}

	distribution := make(map[int]int, 5)
	for rating := 1; rating <= 5; rating++ {
		distribution[rating] = counts[rating]
	}

	return transport.BrokerAnalyticsResponse{
		Broker: toBrokerResponse(broker),
		Stats: transport.BrokerStats{
			TotalFeedback:     stats.TotalFeedback,
			AverageRating:     stats.AverageRating,
			AvgCompletionTime: stats.AvgCompletionTime,
		},
		RatingDistribution: distribution,
	}, nil
}

// ListActiveBrokers returns one page of active brokers, best rated first.
func (s *Service) ListActiveBrokers(ctx context.Context, p ListParams) (transport.BrokerListResponse, error) {
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

	brokers, total, err := s.repo.ListActive(ctx, repository.ListParams{
		Location: optional(p.Location),
		Company:  optional(p.Company),
		Offset:   (page - 1) * pageSize,
		Limit:    pageSize,
	})
	if err != nil {
		return transport.BrokerListResponse{}, err
	}

	items := make([]transport.BrokerResponse, len(brokers))
	for i, b := range brokers {
		items[i] = toBrokerResponse(b)
	}

	return transport.BrokerListResponse{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: (total + pageSize - 1) / pageSize,
	}, nil
}

// Leaderboard ranks active brokers with at least one feedback by mean rating
// or by feedback volume.
func (s *Service) Leaderboard(ctx context.Context, metric string, limit int) (transport.LeaderboardResponse, error) {
	switch metric {
	case "":
		metric = repository.MetricRating
	case repository.MetricRating, repository.MetricFeedback:
	default:
		return transport.LeaderboardResponse{}, apperr.Validation("metric must be rating or feedback").WithCode(apperr.CodeValidation)
	}
	if limit < 1 {
		limit = defaultLeaderboardLimit
	}
	if limit > maxLeaderboardLimit {
		limit = maxLeaderboardLimit
	}

	brokers, err := s.repo.Leaderboard(ctx, metric, limit)
	if err != nil {
		return transport.LeaderboardResponse{}, err
	}

	entries := make([]transport.LeaderboardEntry, len(brokers))
	for i, b := range brokers {
		entries[i] = transport.LeaderboardEntry{Rank: i + 1, Broker: toBrokerResponse(b)}
	}
	return transport.LeaderboardResponse{Metric: metric, Entries: entries}, nil
}

// CanReconcile reports whether aggregate reconciliation can be queued.
func (s *Service) CanReconcile() bool {
	return s.reconciler != nil
}

// RequestStatsReconcile queues a recomputation of every broker aggregate on
// behalf of requestedBy.
func (s *Service) RequestStatsReconcile(ctx context.Context, requestedBy string) error {
	if s.reconciler == nil {
		return apperr.Unavailable("job queue is not configured").WithCode(apperr.CodeTransientFailure)
	}
	if err := s.reconciler.EnqueueBrokerStatsReconcile(ctx, requestedBy); err != nil {
		s.log.WithContext(ctx).Error("failed to enqueue broker stats reconcile", "error", err)
		return apperr.Wrap(apperr.KindUnavailable, "failed to queue reconciliation", err).WithCode(apperr.CodeTransientFailure)
	}
	s.log.WithContext(ctx).Info("broker stats reconcile queued", "requestedBy", requestedBy)
	return nil
}

func optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

func toBrokerResponse(b repository.Broker) transport.BrokerResponse {
	return transport.BrokerResponse{
		ID:                 b.ID,
		ExternalID:         b.ExternalID,
		Name:               b.Name,
		Email:              b.Email,
		Phone:              b.Phone,
		Company:            b.Company,
		Location:           b.Location,
		TotalFeedbackCount: b.TotalFeedbackCount,
		AverageRating:      b.AverageRating,
		IsActive:           b.IsActive,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}
}
