package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"lead_feedback_backend/platform/apperr"
	"lead_feedback_backend/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const leadNotFoundMessage = "lead not found"

// Lead is a generated sales lead.
type Lead struct {
	ID            uuid.UUID
	ExternalID    string
	Name          string
	Email         *string
	Phone         *string
	Location      *string
	InsuranceType *string
	Urgency       *string
	IncomeRange   *string
	Age           *int
	Score         int
	Source        *string
	GeneratedAt   time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// FeedbackStats summarises the feedback recorded about one lead.
type FeedbackStats struct {
	Count         int
	AverageRating float64
	LastFeedback  *time.Time
}

// ListParams filters and pages the lead directory.
type ListParams struct {
	InsuranceType *string
	Urgency       *string
	Source        *string
	MinScore      *int
	MaxScore      *int
	GeneratedFrom *time.Time
	GeneratedTo   *time.Time
	Offset        int
	Limit         int
}

// Reader is the read-only lead directory store.
type Reader interface {
	GetByExternalID(ctx context.Context, externalID string) (Lead, error)
	FeedbackStats(ctx context.Context, leadID uuid.UUID) (FeedbackStats, error)
	List(ctx context.Context, params ListParams) ([]Lead, int, error)
}

// Repository implements Reader with PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new leads repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ Reader = (*Repository)(nil)

const leadColumns = `
	id, external_id, name, email, phone, location, insurance_type, urgency, income_range, age,
	score, source, generated_at, created_at, updated_at`

func scanLead(row pgx.Row) (Lead, error) {
	var l Lead
	err := row.Scan(
		&l.ID, &l.ExternalID, &l.Name, &l.Email, &l.Phone, &l.Location, &l.InsuranceType, &l.Urgency,
		&l.IncomeRange, &l.Age, &l.Score, &l.Source, &l.GeneratedAt, &l.CreatedAt, &l.UpdatedAt,
	)
	return l, err
}

// GetByExternalID returns the lead with the given external id.
func (r *Repository) GetByExternalID(ctx context.Context, externalID string) (Lead, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE external_id = $1`, externalID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lead{}, apperr.NotFound(leadNotFoundMessage)
		}
		return Lead{}, db.WrapError("leads.get", fmt.Errorf("get lead: %w", err))
	}
	return lead, nil
}

// FeedbackStats returns the count, mean rating and latest submission for a lead.
func (r *Repository) FeedbackStats(ctx context.Context, leadID uuid.UUID) (FeedbackStats, error) {
	var stats FeedbackStats
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*)::int, COALESCE(AVG(rating)::float8, 0), MAX(submitted_at)
		FROM feedback
		WHERE lead_id = $1`, leadID).Scan(&stats.Count, &stats.AverageRating, &stats.LastFeedback)
	if err != nil {
		return FeedbackStats{}, db.WrapError("leads.feedback_stats", fmt.Errorf("lead feedback stats: %w", err))
	}
	return stats, nil
}

// List returns one page of leads matching params, newest first, with the total match count.
func (r *Repository) List(ctx context.Context, params ListParams) ([]Lead, int, error) {
	whereClause, args, argIdx := buildLeadListWhere(params)

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM leads WHERE "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, db.WrapError("leads.list", fmt.Errorf("count leads: %w", err))
	}

	args = append(args, params.Limit, params.Offset)
	query := fmt.Sprintf(`
		SELECT %s
		FROM leads
		WHERE %s
		ORDER BY generated_at DESC, id
		LIMIT $%d OFFSET $%d`, leadColumns, whereClause, argIdx, argIdx+1)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, db.WrapError("leads.list", fmt.Errorf("list leads: %w", err))
	}
	defer rows.Close()

	leads := make([]Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, 0, db.WrapError("leads.list", err)
		}
		leads = append(leads, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, db.WrapError("leads.list", err)
	}
	return leads, total, nil
}

func buildLeadListWhere(params ListParams) (string, []interface{}, int) {
	whereClauses := []string{"TRUE"}
	args := []interface{}{}
	argIdx := 1

	add := func(predicate string, value interface{}) {
		whereClauses = append(whereClauses, fmt.Sprintf(predicate, argIdx))
		args = append(args, value)
		argIdx++
	}

	if params.InsuranceType != nil {
		add("insurance_type = $%d", *params.InsuranceType)
	}
	if params.Urgency != nil {
		add("urgency = $%d", *params.Urgency)
	}
	if params.Source != nil {
		add("source = $%d", *params.Source)
	}
	if params.MinScore != nil {
		add("score >= $%d", *params.MinScore)
	}
	if params.MaxScore != nil {
		add("score <= $%d", *params.MaxScore)
	}
	if params.GeneratedFrom != nil {
		add("generated_at >= $%d", *params.GeneratedFrom)
	}
	if params.GeneratedTo != nil {
		add("generated_at <= $%d", *params.GeneratedTo)
	}

	return strings.Join(whereClauses, " AND "), args, argIdx
}
