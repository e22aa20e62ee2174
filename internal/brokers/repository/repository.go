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

const brokerNotFoundMessage = "broker not found"

// Leaderboard metrics.
const (
	MetricRating   = "rating"
	MetricFeedback = "feedback"
)

// Broker is a broker row including its maintained feedback aggregate.
type Broker struct {
	ID                 uuid.UUID
	ExternalID         string
	Name               string
	Email              string
	Phone              *string
	Company            *string
	Location           *string
	TotalFeedbackCount int
	AverageRating      float64
	IsActive           bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// WindowStats summarises a broker's feedback within an optional window.
type WindowStats struct {
	TotalFeedback     int
	AverageRating     float64
	AvgCompletionTime float64
}

// ListParams filters and pages active brokers.
type ListParams struct {
	Location *string
	Company  *string
	Offset   int
	Limit    int
}

// Reader is the read-only broker directory store. Nothing here writes the
// aggregate columns.
type Reader interface {
	GetByExternalID(ctx context.Context, externalID string) (Broker, error)
	WindowStats(ctx context.Context, brokerID uuid.UUID, start, end *time.Time) (WindowStats, error)
	RatingCounts(ctx context.Context, brokerID uuid.UUID, start, end *time.Time) (map[int]int, error)
	ListActive(ctx context.Context, params ListParams) ([]Broker, int, error)
	Leaderboard(ctx context.Context, metric string, limit int) ([]Broker, error)
}

// Repository implements Reader with PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new brokers repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ Reader = (*Repository)(nil)

const brokerColumns = `
	id, external_id, name, email, phone, company, location,
	total_feedback_count, average_rating, is_active, created_at, updated_at`

const brokerWindowPredicate = `
	f.broker_id = $1
	AND ($2::timestamptz IS NULL OR f.submitted_at >= $2)
	AND ($3::timestamptz IS NULL OR f.submitted_at <= $3)`

func scanBroker(row pgx.Row) (Broker, error) {
	var b Broker
	err := row.Scan(
		&b.ID, &b.ExternalID, &b.Name, &b.Email, &b.Phone, &b.Company, &b.Location,
		&b.TotalFeedbackCount, &b.AverageRating, &b.IsActive, &b.CreatedAt, &b.UpdatedAt,
	)
	return b, err
}

func scanBrokers(rows pgx.Rows) ([]Broker, error) {
	brokers := make([]Broker, 0)
	for rows.Next() {
		b, err := scanBroker(rows)
		if err != nil {
			return nil, fmt.Errorf("scan broker: %w", err)
		}
		brokers = append(brokers, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate brokers: %w", err)
	}
	return brokers, nil
}

// GetByExternalID returns the broker with the given external id.
func (r *Repository) GetByExternalID(ctx context.Context, externalID string) (Broker, error) {
	broker, err := scanBroker(r.pool.QueryRow(ctx, `SELECT `+brokerColumns+` FROM brokers WHERE external_id = $1`, externalID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Broker{}, apperr.NotFound(brokerNotFoundMessage)
		}
		return Broker{}, db.WrapError("brokers.get", fmt.Errorf("get broker: %w", err))
	}
	return broker, nil
}

// WindowStats computes feedback totals for a broker from the ledger.
func (r *Repository) WindowStats(ctx context.Context, brokerID uuid.UUID, start, end *time.Time) (WindowStats, error) {
	var s WindowStats
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*)::int,
			COALESCE(AVG(f.rating)::float8, 0),
			COALESCE(AVG(f.form_completion_time)::float8, 0)
		FROM feedback f
		WHERE`+brokerWindowPredicate, brokerID, start, end).Scan(&s.TotalFeedback, &s.AverageRating, &s.AvgCompletionTime)
	if err != nil {
		return WindowStats{}, db.WrapError("brokers.window_stats", fmt.Errorf("broker window stats: %w", err))
	}
	return s, nil
}

// RatingCounts returns the broker's feedback count per rating present.
func (r *Repository) RatingCounts(ctx context.Context, brokerID uuid.UUID, start, end *time.Time) (map[int]int, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT f.rating, COUNT(*)::int
		FROM feedback f
		WHERE`+brokerWindowPredicate+`
		GROUP BY f.rating
		ORDER BY f.rating`, brokerID, start, end)
	if err != nil {
		return nil, db.WrapError("brokers.rating_counts", fmt.Errorf("broker rating counts: %w", err))
	}
	defer rows.Close()

	counts := make(map[int]int)
	for rows.Next() {
		var rating, count int
		if err := rows.Scan(&rating, &count); err != nil {
			return nil, db.WrapError("brokers.rating_counts", err)
		}
		counts[rating] = count
	}
	if err := rows.Err(); err != nil {
		return nil, db.WrapError("brokers.rating_counts", err)
	}
	return counts, nil
}

// ListActive returns one page of active brokers, best rated first.
func (r *Repository) ListActive(ctx context.Context, params ListParams) ([]Broker, int, error) {
	whereClause, args, argIdx := buildActiveBrokerWhere(params)

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM brokers WHERE "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, db.WrapError("brokers.list", fmt.Errorf("count brokers: %w", err))
	}

	args = append(args, params.Limit, params.Offset)
	query := fmt.Sprintf(`
		SELECT %s
		FROM brokers
		WHERE %s
		ORDER BY average_rating DESC, total_feedback_count DESC, external_id ASC
		LIMIT $%d OFFSET $%d`, brokerColumns, whereClause, argIdx, argIdx+1)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, db.WrapError("brokers.list", fmt.Errorf("list brokers: %w", err))
	}
	defer rows.Close()

	brokers, err := scanBrokers(rows)
	if err != nil {
		return nil, 0, db.WrapError("brokers.list", err)
	}
	return brokers, total, nil
}

// Leaderboard ranks active brokers that have received feedback.
func (r *Repository) Leaderboard(ctx context.Context, metric string, limit int) ([]Broker, error) {
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s
		FROM brokers
		WHERE is_active AND total_feedback_count > 0
		ORDER BY %s, external_id ASC
		LIMIT $1`, brokerColumns, leaderboardOrder(metric)), limit)
	if err != nil {
		return nil, db.WrapError("brokers.leaderboard", fmt.Errorf("broker leaderboard: %w", err))
	}
	defer rows.Close()

	brokers, err := scanBrokers(rows)
	if err != nil {
		return nil, db.WrapError("brokers.leaderboard", err)
	}
	return brokers, nil
}

func leaderboardOrder(metric string) string {
	if metric == MetricFeedback {
		return "total_feedback_count DESC, average_rating DESC"
	}
	return "average_rating DESC, total_feedback_count DESC"
}

func buildActiveBrokerWhere(params ListParams) (string, []interface{}, int) {
	whereClauses := []string{"is_active"}
	args := []interface{}{}
	argIdx := 1

	addILike := func(column string, value string) {
		whereClauses = append(whereClauses, fmt.Sprintf("%s ILIKE $%d", column, argIdx))
		args = append(args, "%"+escapeLike(value)+"%")
		argIdx++
	}

	if params.Location != nil {
		addILike("location", *params.Location)
	}
	if params.Company != nil {
		addILike("company", *params.Company)
	}

	return strings.Join(whereClauses, " AND "), args, argIdx
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(value string) string {
	return likeEscaper.Replace(value)
}
