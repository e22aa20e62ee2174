package repository

import (
	"context"
	"errors"
	"fmt"

	"lead_feedback_backend/platform/apperr"
	"lead_feedback_backend/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const feedbackNotFoundMessage = "no feedback found for this lead"

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new feedback repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// InTx runs fn inside a READ COMMITTED transaction.
func (r *Repo) InTx(ctx context.Context, fn func(tx TxStore) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return db.WrapError("feedback.begin", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&txStore{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return db.WrapError("feedback.commit", err)
	}
	return nil
}

// GetLatestByLeadExternalID returns the most recent feedback for a lead.
func (r *Repo) GetLatestByLeadExternalID(ctx context.Context, externalLeadID string) (FeedbackView, error) {
	row := r.pool.QueryRow(ctx, getLatestByLeadExternalIDQuery, externalLeadID)
	view, err := scanFeedbackView(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return FeedbackView{}, apperr.NotFound(feedbackNotFoundMessage)
		}
		return FeedbackView{}, db.WrapError("feedback.get_by_lead", fmt.Errorf("get feedback by lead: %w", err))
	}
	return view, nil
}

// ListByBrokerExternalID pages through a broker's feedback, newest first.
func (r *Repo) ListByBrokerExternalID(ctx context.Context, externalBrokerID string, limit, offset int) ([]FeedbackView, int, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, brokerExistsQuery, externalBrokerID).Scan(&exists); err != nil {
		return nil, 0, db.WrapError("feedback.list_by_broker", fmt.Errorf("check broker exists: %w", err))
	}
	if !exists {
		return nil, 0, apperr.NotFound("broker not found")
	}

	var total int
	if err := r.pool.QueryRow(ctx, countByBrokerExternalIDQuery, externalBrokerID).Scan(&total); err != nil {
		return nil, 0, db.WrapError("feedback.list_by_broker", fmt.Errorf("count broker feedback: %w", err))
	}

	rows, err := r.pool.Query(ctx, listByBrokerExternalIDQuery, externalBrokerID, limit, offset)
	if err != nil {
		return nil, 0, db.WrapError("feedback.list_by_broker", fmt.Errorf("list broker feedback: %w", err))
	}
	defer rows.Close()

	items, err := scanFeedbackViews(rows)
	if err != nil {
		return nil, 0, db.WrapError("feedback.list_by_broker", err)
	}
	return items, total, nil
}

// ListRecent returns the newest feedback across all brokers.
func (r *Repo) ListRecent(ctx context.Context, limit int) ([]FeedbackView, error) {
	rows, err := r.pool.Query(ctx, listRecentQuery, limit)
	if err != nil {
		return nil, db.WrapError("feedback.list_recent", fmt.Errorf("list recent feedback: %w", err))
	}
	defer rows.Close()

	items, err := scanFeedbackViews(rows)
	if err != nil {
		return nil, db.WrapError("feedback.list_recent", err)
	}
	return items, nil
}

// ListBrokerIDs returns every broker id, for aggregate reconciliation.
func (r *Repo) ListBrokerIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, listBrokerIDsQuery)
	if err != nil {
		return nil, db.WrapError("feedback.list_broker_ids", fmt.Errorf("list broker ids: %w", err))
	}
	defer rows.Close()

	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, db.WrapError("feedback.list_broker_ids", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, db.WrapError("feedback.list_broker_ids", err)
	}
	return ids, nil
}

func scanFeedbackView(row pgx.Row) (FeedbackView, error) {
	var v FeedbackView
	err := row.Scan(
		&v.ID, &v.LeadID, &v.BrokerID, &v.Rating, &v.Status, &v.Issues, &v.Comments, &v.LeadScore,
		&v.FormCompletionTime, &v.SessionID, &v.UserAgent, &v.TouchDevice, &v.SubmittedAt, &v.CreatedAt,
		&v.LeadExternalID, &v.LeadName, &v.LeadCurrentScore, &v.BrokerExternalID, &v.BrokerName, &v.BrokerCompany,
	)
	if v.Issues == nil {
		v.Issues = []string{}
	}
	return v, err
}

func scanFeedbackViews(rows pgx.Rows) ([]FeedbackView, error) {
	items := make([]FeedbackView, 0)
	for rows.Next() {
		v, err := scanFeedbackView(rows)
		if err != nil {
			return nil, fmt.Errorf("scan feedback: %w", err)
		}
		items = append(items, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feedback: %w", err)
	}
	return items, nil
}
