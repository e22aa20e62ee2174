package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lead_feedback_backend/internal/feedback/domain"
	"lead_feedback_backend/internal/feedback/repository"
	"lead_feedback_backend/internal/feedback/transport"
	"lead_feedback_backend/platform/apperr"
	"lead_feedback_backend/platform/config"
	"lead_feedback_backend/platform/db"
	"lead_feedback_backend/platform/logger"
	"lead_feedback_backend/platform/metrics"
	"lead_feedback_backend/platform/sanitize"
)

const (
	defaultPageSize    = 20
	maxPageSize        = 100
	defaultRecentLimit = 10
	maxRecentLimit     = 100
)

// Service runs the feedback submission workflow and feedback reads.
type Service struct {
	repo          repository.Repository
	log           *logger.Logger
	metrics       *metrics.Manager
	submitTimeout time.Duration
}

// New creates a new feedback service.
func New(repo repository.Repository, cfg config.FeedbackConfig, m *metrics.Manager, log *logger.Logger) *Service {
	return &Service{
		repo:          repo,
		log:           log,
		metrics:       m,
		submitTimeout: cfg.GetSubmissionTimeout(),
	}
}

type submissionResult struct {
	feedback      repository.Feedback
	leadCreated   bool
	brokerCreated bool
	stats         repository.BrokerStats
}

// Submit records one broker's feedback about one lead. Lead and broker are
// resolved (or created as placeholders), the feedback is appended and the
// broker aggregate is recomputed, all in a single transaction.
func (s *Service) Submit(ctx context.Context, sub domain.Submission) (transport.SubmitFeedbackResponse, error) {
	started := time.Now()

	sub.Comments = sanitize.Text(sub.Comments)
	sub = sub.Normalize()
	if err := sub.Validate(); err != nil {
		s.metrics.RecordSubmission(metrics.OutcomeValidation, time.Since(started))
		return transport.SubmitFeedbackResponse{}, err
	}

	if s.submitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.submitTimeout)
		defer cancel()
	}

	var result submissionResult
	err := s.repo.InTx(ctx, func(tx repository.TxStore) error {
		lead, leadCreated, err := tx.ResolveOrCreateLead(ctx, sub.ExternalLeadID)
		if err != nil {
			return err
		}
		broker, brokerCreated, err := tx.ResolveOrCreateBroker(ctx, sub.ExternalBrokerID)
		if err != nil {
			return err
		}

		fb, err := tx.InsertFeedback(ctx, toInsertParams(lead.ID, broker.ID, sub))
		if err != nil {
			return err
		}

		stats, err := tx.RefreshBrokerStats(ctx, broker.ID)
		if err != nil {
			return err
		}

		result = submissionResult{feedback: fb, leadCreated: leadCreated, brokerCreated: brokerCreated, stats: stats}
		return nil
	})

	log := s.log.WithContext(ctx)
	if err != nil {
		err = classifySubmitError(ctx, err)
		outcome := submissionOutcome(err)
		s.metrics.RecordSubmission(outcome, time.Since(started))

		switch outcome {
		case metrics.OutcomeTransient, metrics.OutcomeInternal:
			log.DatabaseError("feedback.submit", err)
		default:
			log.FeedbackRejected(apperr.GetCode(err), sub.ExternalLeadID, sub.ExternalBrokerID)
		}
		return transport.SubmitFeedbackResponse{}, err
	}

	s.metrics.RecordSubmission(metrics.OutcomeSuccess, time.Since(started))
	if result.leadCreated {
		s.metrics.RecordPlaceholder("lead")
		log.PlaceholderCreated("lead", sub.ExternalLeadID)
	}
	if result.brokerCreated {
		s.metrics.RecordPlaceholder("broker")
		log.PlaceholderCreated("broker", sub.ExternalBrokerID)
	}
	log.Info("feedback submitted",
		"feedback_id", result.feedback.ID,
		"lead_external_id", sub.ExternalLeadID,
		"broker_external_id", sub.ExternalBrokerID,
		"rating", result.feedback.Rating,
		"broker_feedback_count", result.stats.TotalFeedbackCount,
	)

	return transport.SubmitFeedbackResponse{
		FeedbackID:       result.feedback.ID,
		ExternalLeadID:   sub.ExternalLeadID,
		ExternalBrokerID: sub.ExternalBrokerID,
		SubmittedAt:      result.feedback.SubmittedAt,
	}, nil
}

// GetByLead returns the most recent feedback recorded for a lead.
func (s *Service) GetByLead(ctx context.Context, externalLeadID string) (transport.FeedbackResponse, error) {
	view, err := s.repo.GetLatestByLeadExternalID(ctx, externalLeadID)
	if err != nil {
		return transport.FeedbackResponse{}, err
	}
	return toResponse(view), nil
}

// ListByBroker returns one page of a broker's feedback, newest first.
func (s *Service) ListByBroker(ctx context.Context, externalBrokerID string, req transport.ListBrokerFeedbackRequest) (transport.FeedbackListResponse, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.Limit
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	items, total, err := s.repo.ListByBrokerExternalID(ctx, externalBrokerID, pageSize, (page-1)*pageSize)
	if err != nil {
		return transport.FeedbackListResponse{}, err
	}
	return toListResponseWithPagination(items, total, page, pageSize), nil
}

// ListRecent returns the newest feedback across all brokers.
func (s *Service) ListRecent(ctx context.Context, req transport.ListRecentRequest) (transport.RecentFeedbackResponse, error) {
	limit := req.Limit
	if limit < 1 {
		limit = defaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}

	items, err := s.repo.ListRecent(ctx, limit)
	if err != nil {
		return transport.RecentFeedbackResponse{}, err
	}

	responses := make([]transport.FeedbackResponse, len(items))
	for i, item := range items {
		responses[i] = toResponse(item)
	}
	return transport.RecentFeedbackResponse{Items: responses}, nil
}

// ReconcileBrokerStats recomputes every broker aggregate through the same
// code path used by submissions, one transaction per broker. It returns the
// number of brokers refreshed and the joined errors of those that failed.
func (s *Service) ReconcileBrokerStats(ctx context.Context) (int, error) {
	ids, err := s.repo.ListBrokerIDs(ctx)
	if err != nil {
		return 0, err
	}

	refreshed := 0
	var errs []error
	for _, id := range ids {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		err := s.repo.InTx(ctx, func(tx repository.TxStore) error {
			_, err := tx.RefreshBrokerStats(ctx, id)
			return err
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("broker %s: %w", id, err))
			continue
		}
		refreshed++
	}

	s.metrics.RecordBrokerStatsReconciled(refreshed)
	return refreshed, errors.Join(errs...)
}

func classifySubmitError(ctx context.Context, err error) error {
	switch apperr.GetKind(err) {
	case apperr.KindValidation, apperr.KindConflict, apperr.KindUnavailable:
		return err
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return apperr.Wrap(apperr.KindUnavailable, "feedback submission timed out", err).
			WithOp("feedback.submit").
			WithCode(apperr.CodeTransientFailure)
	}
	return db.WrapError("feedback.submit", err)
}

func submissionOutcome(err error) string {
	switch apperr.GetCode(err) {
	case domain.CodeDuplicateFeedback:
		return metrics.OutcomeDuplicate
	case domain.CodeInvalidReference:
		return metrics.OutcomeInvalidReference
	case apperr.CodeValidation:
		return metrics.OutcomeValidation
	case apperr.CodeTransientFailure:
		return metrics.OutcomeTransient
	default:
		return metrics.OutcomeInternal
	}
}
