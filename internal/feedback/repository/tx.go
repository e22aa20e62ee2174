package repository

import (
	"context"
	"errors"
	"fmt"

	"lead_feedback_backend/internal/feedback/domain"
	"lead_feedback_backend/platform/apperr"
	"lead_feedback_backend/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// resolveAttempts bounds the insert/re-read loop of the entity resolver.
const resolveAttempts = 3

type txStore struct {
	tx pgx.Tx
}

var _ TxStore = (*txStore)(nil)

// ResolveOrCreateLead looks up a lead by external id and inserts a
// placeholder when absent. A concurrent creator's row is re-read rather than
// surfaced as a conflict.
func (s *txStore) ResolveOrCreateLead(ctx context.Context, externalID string) (Lead, bool, error) {
	for attempt := 0; attempt < resolveAttempts; attempt++ {
		lead, err := scanLead(s.tx.QueryRow(ctx, selectLeadByExternalIDQuery, externalID))
		if err == nil {
			return lead, false, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return Lead{}, false, db.WrapError("feedback.resolve_lead", fmt.Errorf("select lead: %w", err))
		}

		lead, err = scanLead(s.tx.QueryRow(ctx, insertPlaceholderLeadQuery,
			externalID, domain.PlaceholderLeadName, domain.PlaceholderLeadScore, domain.PlaceholderLeadSource))
		if err == nil {
			return lead, true, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return Lead{}, false, db.WrapError("feedback.resolve_lead", fmt.Errorf("insert placeholder lead: %w", err))
		}
	}

	return Lead{}, false, apperr.Internal("lead could not be resolved after a concurrent insert").
		WithOp("feedback.resolve_lead").
		WithCode(apperr.CodeIntegrityFailure)
}

// ResolveOrCreateBroker is the broker counterpart of ResolveOrCreateLead.
// When the synthesized email belongs to another broker the insert is retried
// with a suffixed email.
func (s *txStore) ResolveOrCreateBroker(ctx context.Context, externalID string) (Broker, bool, error) {
	email := domain.PlaceholderBrokerEmail(externalID)
	for attempt := 0; attempt < resolveAttempts; attempt++ {
		broker, err := scanBroker(s.tx.QueryRow(ctx, selectBrokerByExternalIDQuery, externalID))
		if err == nil {
			return broker, false, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return Broker{}, false, db.WrapError("feedback.resolve_broker", fmt.Errorf("select broker: %w", err))
		}

		broker, err = s.insertPlaceholderBroker(ctx, externalID, email)
		switch {
		case err == nil:
			return broker, true, nil
		case errors.Is(err, pgx.ErrNoRows):
			// external id taken concurrently, re-read on the next pass
		case db.IsUniqueViolation(err):
			email = domain.PlaceholderBrokerEmailWithSuffix(externalID, uuid.NewString()[:8])
		default:
			return Broker{}, false, db.WrapError("feedback.resolve_broker", fmt.Errorf("insert placeholder broker: %w", err))
		}
	}

	return Broker{}, false, apperr.Internal("broker could not be resolved after repeated insert conflicts").
		WithOp("feedback.resolve_broker").
		WithCode(apperr.CodeIntegrityFailure)
}

// insertPlaceholderBroker runs the insert under a savepoint so a unique
// violation on email leaves the outer transaction usable.
func (s *txStore) insertPlaceholderBroker(ctx context.Context, externalID, email string) (Broker, error) {
	sp, err := s.tx.Begin(ctx)
	if err != nil {
		return Broker{}, fmt.Errorf("begin savepoint: %w", err)
	}

	broker, err := scanBroker(sp.QueryRow(ctx, insertPlaceholderBrokerQuery, externalID, domain.PlaceholderBrokerName, email))
	if err != nil {
		_ = sp.Rollback(ctx)
		return Broker{}, err
	}
	if err := sp.Commit(ctx); err != nil {
		return Broker{}, fmt.Errorf("release savepoint: %w", err)
	}
	return broker, nil
}

// InsertFeedback validates and appends one ledger row.
func (s *txStore) InsertFeedback(ctx context.Context, p InsertParams) (Feedback, error) {
	if err := domain.ValidateRating(p.Rating); err != nil {
		return Feedback{}, err
	}
	if err := domain.ValidateStatus(p.Status); err != nil {
		return Feedback{}, err
	}

	issues := p.Issues
	if issues == nil {
		issues = []string{}
	}

	var fb Feedback
	err := s.tx.QueryRow(ctx, insertFeedbackQuery,
		p.LeadID, p.BrokerID, p.Rating, p.Status, issues, p.Comments, p.LeadScore,
		p.FormCompletionTime, p.SessionID, p.UserAgent, p.TouchDevice, p.IPAddress, p.SubmittedAt,
	).Scan(
		&fb.ID, &fb.LeadID, &fb.BrokerID, &fb.Rating, &fb.Status, &fb.Issues, &fb.Comments, &fb.LeadScore,
		&fb.FormCompletionTime, &fb.SessionID, &fb.UserAgent, &fb.TouchDevice, &fb.SubmittedAt, &fb.CreatedAt,
	)
	if err == nil {
		return fb, nil
	}

	switch {
	case errors.Is(err, pgx.ErrNoRows), db.IsUniqueViolation(err):
		return Feedback{}, domain.ErrDuplicateFeedback()
	case db.IsForeignKeyViolation(err):
		return Feedback{}, domain.ErrInvalidReference(err)
	case db.IsCheckViolation(err):
		return Feedback{}, apperr.Wrap(apperr.KindValidation, "feedback violates a data constraint", err).
			WithCode(apperr.CodeValidation)
	default:
		return Feedback{}, db.WrapError("feedback.insert", fmt.Errorf("insert feedback: %w", err))
	}
}

// RefreshBrokerStats recomputes count and mean rating for one broker under
// a row lock, so concurrent submissions for the same broker both land.
func (s *txStore) RefreshBrokerStats(ctx context.Context, brokerID uuid.UUID) (BrokerStats, error) {
	var lockedID uuid.UUID
	if err := s.tx.QueryRow(ctx, lockBrokerQuery, brokerID).Scan(&lockedID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return BrokerStats{}, domain.ErrInvalidReference(err)
		}
		return BrokerStats{}, db.WrapError("feedback.refresh_broker_stats", fmt.Errorf("lock broker: %w", err))
	}

	var stats BrokerStats
	if err := s.tx.QueryRow(ctx, refreshBrokerStatsQuery, brokerID).Scan(&stats.TotalFeedbackCount, &stats.AverageRating); err != nil {
		return BrokerStats{}, db.WrapError("feedback.refresh_broker_stats", fmt.Errorf("refresh broker stats: %w", err))
	}
	return stats, nil
}

func scanLead(row pgx.Row) (Lead, error) {
	var l Lead
	err := row.Scan(&l.ID, &l.ExternalID, &l.Name, &l.Score, &l.GeneratedAt)
	return l, err
}

func scanBroker(row pgx.Row) (Broker, error) {
	var b Broker
	err := row.Scan(&b.ID, &b.ExternalID, &b.Name, &b.Email, &b.IsActive, &b.TotalFeedbackCount, &b.AverageRating)
	return b, err
}
