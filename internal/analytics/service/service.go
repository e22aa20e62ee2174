package service

import (
	"context"
	"strings"
	"time"

	"lead_feedback_backend/internal/analytics/domain"
	"lead_feedback_backend/internal/analytics/repository"
	"lead_feedback_backend/internal/analytics/transport"
	"lead_feedback_backend/platform/config"
	"lead_feedback_backend/platform/logger"
	"lead_feedback_backend/platform/metrics"

	"golang.org/x/sync/errgroup"
)

const (
	defaultIssueLimit   = 10
	maxIssueLimit       = 100
	dashboardIssueLimit = 5
)

// Query is a caller's analytics request before window defaults are applied.
type Query struct {
	Start            *time.Time
	End              *time.Time
	BrokerExternalID string
	Limit            int
}

// Service computes analytics over committed feedback. It holds no state
// besides its collaborators and is safe for concurrent use.
type Service struct {
	repo    repository.Repository
	log     *logger.Logger
	metrics *metrics.Manager
	timeout time.Duration
	now     func() time.Time
}

// New creates a new analytics service.
func New(repo repository.Repository, cfg config.AnalyticsConfig, m *metrics.Manager, log *logger.Logger) *Service {
	return &Service{
		repo:    repo,
		log:     log,
		metrics: m,
		timeout: cfg.GetAnalyticsTimeout(),
		now:     time.Now,
	}
}

func (s *Service) begin(ctx context.Context, op string, q Query) (context.Context, func(), repository.Filter, domain.Window, error) {
	started := time.Now()
	window, err := domain.ResolveWindow(q.Start, q.End, s.now())
	if err != nil {
		return ctx, func() {}, repository.Filter{}, domain.Window{}, err
	}

	filter := repository.Filter{Start: window.Start, End: window.End}
	if broker := strings.TrimSpace(q.BrokerExternalID); broker != "" {
		filter.BrokerExternalID = &broker
	}

	cancel := func() {}
	if s.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
	}
	done := func() {
		cancel()
		s.metrics.RecordAnalytics(op, time.Since(started))
	}
	return ctx, done, filter, window, nil
}

// Overview returns feedback totals for the window and system-wide lead and broker counts.
func (s *Service) Overview(ctx context.Context, q Query) (transport.OverviewResponse, error) {
	ctx, done, filter, window, err := s.begin(ctx, "overview", q)
	if err != nil {
		return transport.OverviewResponse{}, err
	}
	defer done()
	return s.overview(ctx, filter, window)
}

// RatingTrend returns the number of feedback rows for every rating 1..5.
func (s *Service) RatingTrend(ctx context.Context, q Query) (map[int]int, error) {
	ctx, done, filter, _, err := s.begin(ctx, "ratings", q)
	if err != nil {
		return nil, err
	}
	defer done()
	return s.ratings(ctx, filter)
}

// Issues returns the most frequent issue tags in the window.
func (s *Service) Issues(ctx context.Context, q Query) ([]transport.IssueCount, error) {
	ctx, done, filter, _, err := s.begin(ctx, "issues", q)
	if err != nil {
		return nil, err
	}
	defer done()
	return s.issues(ctx, filter, issueLimit(q.Limit))
}

// StatusDistribution returns feedback counts per status, most common first.
func (s *Service) StatusDistribution(ctx context.Context, q Query) ([]transport.StatusCount, error) {
	ctx, done, filter, _, err := s.begin(ctx, "statuses", q)
	if err != nil {
		return nil, err
	}
	defer done()
	return s.statuses(ctx, filter)
}

// LeadScoreCorrelation returns the five lead-score buckets in ascending order.
func (s *Service) LeadScoreCorrelation(ctx context.Context, q Query) ([]transport.ScoreBucket, error) {
	ctx, done, filter, _, err := s.begin(ctx, "lead_scores", q)
	if err != nil {
		return nil, err
	}
	defer done()
	return s.leadScores(ctx, filter)
}

// ResponseTimes returns statistics over recorded form completion times.
func (s *Service) ResponseTimes(ctx context.Context, q Query) (transport.ResponseTimeStats, error) {
	ctx, done, filter, _, err := s.begin(ctx, "response_times", q)
	if err != nil {
		return transport.ResponseTimeStats{}, err
	}
	defer done()
	return s.responseTimes(ctx, filter)
}

// Dashboard computes every analytics view for the window concurrently.
func (s *Service) Dashboard(ctx context.Context, q Query) (transport.DashboardResponse, error) {
	ctx, done, filter, window, err := s.begin(ctx, "dashboard", q)
	if err != nil {
		return transport.DashboardResponse{}, err
	}
	defer done()

	var out transport.DashboardResponse
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.Overview, err = s.overview(gctx, filter, window)
		return err
	})
	g.Go(func() (err error) {
		out.Ratings, err = s.ratings(gctx, filter)
		return err
	})
	g.Go(func() (err error) {
		out.TopIssues, err = s.issues(gctx, filter, dashboardIssueLimit)
		return err
	})
	g.Go(func() (err error) {
		out.Statuses, err = s.statuses(gctx, filter)
		return err
	})
	g.Go(func() (err error) {
		out.LeadScores, err = s.leadScores(gctx, filter)
		return err
	})
	g.Go(func() (err error) {
		out.ResponseTimes, err = s.responseTimes(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		s.log.WithContext(ctx).DatabaseError("analytics.dashboard", err)
		return transport.DashboardResponse{}, err
	}

	out.GeneratedAt = s.now().UTC()
	return out, nil
}

// FeedbackAnalytics returns the summary, rating and status distributions and
// the ten most common issues for the window.
func (s *Service) FeedbackAnalytics(ctx context.Context, q Query) (transport.FeedbackAnalyticsResponse, error) {
	ctx, done, filter, window, err := s.begin(ctx, "feedback_analytics", q)
	if err != nil {
		return transport.FeedbackAnalyticsResponse{}, err
	}
	defer done()

	var (
		overview transport.OverviewResponse
		out      transport.FeedbackAnalyticsResponse
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		overview, err = s.overview(gctx, filter, window)
		return err
	})
	g.Go(func() (err error) {
		out.RatingDistribution, err = s.ratings(gctx, filter)
		return err
	})
	g.Go(func() (err error) {
		out.StatusDistribution, err = s.statuses(gctx, filter)
		return err
	})
	g.Go(func() (err error) {
		out.CommonIssues, err = s.issues(gctx, filter, defaultIssueLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return transport.FeedbackAnalyticsResponse{}, err
	}

	out.Summary = transport.FeedbackSummary{
		TotalFeedback: overview.TotalFeedback,
		AverageRating: overview.AverageRating,
		Period:        overview.Period,
	}
	return out, nil
}

func (s *Service) overview(ctx context.Context, filter repository.Filter, window domain.Window) (transport.OverviewResponse, error) {
	o, err := s.repo.Overview(ctx, filter)
	if err != nil {
		return transport.OverviewResponse{}, err
	}
	return transport.OverviewResponse{
		TotalFeedback:     o.TotalFeedback,
		TotalLeads:        o.TotalLeads,
		ActiveBrokers:     o.ActiveBrokers,
		AverageRating:     o.AverageRating,
		AvgCompletionTime: o.AvgCompletionTime,
		Period:            transport.Period{StartDate: window.Start, EndDate: window.End},
	}, nil
}

func (s *Service) ratings(ctx context.Context, filter repository.Filter) (map[int]int, error) {
	counts, err := s.repo.RatingCounts(ctx, filter)
	if err != nil {
		return nil, err
	}
	return domain.ZeroFillRatings(counts), nil
}

func (s *Service) issues(ctx context.Context, filter repository.Filter, limit int) ([]transport.IssueCount, error) {
	rows, err := s.repo.IssueCounts(ctx, filter, limit)
	if err != nil {
		return nil, err
	}
	out := make([]transport.IssueCount, len(rows))
	for i, r := range rows {
		out[i] = transport.IssueCount{Issue: r.Issue, Count: r.Count}
	}
	return out, nil
}

func (s *Service) statuses(ctx context.Context, filter repository.Filter) ([]transport.StatusCount, error) {
	rows, err := s.repo.StatusCounts(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]transport.StatusCount, len(rows))
	for i, r := range rows {
		out[i] = transport.StatusCount{Status: r.Status, Count: r.Count}
	}
	return out, nil
}

func (s *Service) leadScores(ctx context.Context, filter repository.Filter) ([]transport.ScoreBucket, error) {
	groups, err := s.repo.ScoreGroups(ctx, filter)
	if err != nil {
		return nil, err
	}
	buckets := domain.Bucketize(groups)
	out := make([]transport.ScoreBucket, len(buckets))
	for i, b := range buckets {
		out[i] = transport.ScoreBucket{
			Range:         b.Label(),
			Min:           b.Min,
			Max:           b.Max,
			Count:         b.Count,
			AverageRating: b.AverageRating,
		}
	}
	return out, nil
}

func (s *Service) responseTimes(ctx context.Context, filter repository.Filter) (transport.ResponseTimeStats, error) {
	rt, err := s.repo.ResponseTimes(ctx, filter)
	if err != nil {
		return transport.ResponseTimeStats{}, err
	}
	return transport.ResponseTimeStats{
		AverageTime:    rt.Average,
		MinTime:        rt.Min,
		MaxTime:        rt.Max,
		TotalResponses: rt.Count,
	}, nil
}

func issueLimit(requested int) int {
	if requested < 1 {
		return defaultIssueLimit
	}
	if requested > maxIssueLimit {
		return maxIssueLimit
	}
	return requested
}
