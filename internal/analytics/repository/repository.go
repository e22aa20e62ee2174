package repository

import (
	"context"
	"fmt"

	"lead_feedback_backend/internal/analytics/domain"
	"lead_feedback_backend/platform/db"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repo implements Repository with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new analytics repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

func windowArgs(f Filter) []any {
	return []any{f.Start, f.End, f.BrokerExternalID}
}

// Overview returns windowed feedback totals plus unwindowed lead and broker counts.
func (r *Repo) Overview(ctx context.Context, f Filter) (Overview, error) {
	var o Overview
	err := r.pool.QueryRow(ctx, overviewQuery, windowArgs(f)...).Scan(
		&o.TotalFeedback, &o.TotalLeads, &o.ActiveBrokers, &o.AverageRating, &o.AvgCompletionTime,
	)
	if err != nil {
		return Overview{}, db.WrapError("analytics.overview", fmt.Errorf("query overview: %w", err))
	}
	return o, nil
}

// RatingCounts returns the number of feedback rows per rating present in the window.
func (r *Repo) RatingCounts(ctx context.Context, f Filter) (map[int]int, error) {
	rows, err := r.pool.Query(ctx, ratingCountsQuery, windowArgs(f)...)
	if err != nil {
		return nil, db.WrapError("analytics.ratings", fmt.Errorf("query ratings: %w", err))
	}
	defer rows.Close()

	counts := make(map[int]int)
	for rows.Next() {
		var rating, count int
		if err := rows.Scan(&rating, &count); err != nil {
			return nil, db.WrapError("analytics.ratings", err)
		}
		counts[rating] = count
	}
	if err := rows.Err(); err != nil {
		return nil, db.WrapError("analytics.ratings", err)
	}
	return counts, nil
}

// IssueCounts returns the most frequent issue tags, most common first.
func (r *Repo) IssueCounts(ctx context.Context, f Filter, limit int) ([]IssueCount, error) {
	args := append(windowArgs(f), limit)
	rows, err := r.pool.Query(ctx, issueCountsQuery, args...)
	if err != nil {
		return nil, db.WrapError("analytics.issues", fmt.Errorf("query issues: %w", err))
	}
	defer rows.Close()

	items := make([]IssueCount, 0)
	for rows.Next() {
		var item IssueCount
		if err := rows.Scan(&item.Issue, &item.Count); err != nil {
			return nil, db.WrapError("analytics.issues", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, db.WrapError("analytics.issues", err)
	}
	return items, nil
}

// StatusCounts returns the number of feedback rows per status, most common first.
func (r *Repo) StatusCounts(ctx context.Context, f Filter) ([]StatusCount, error) {
	rows, err := r.pool.Query(ctx, statusCountsQuery, windowArgs(f)...)
	if err != nil {
		return nil, db.WrapError("analytics.statuses", fmt.Errorf("query statuses: %w", err))
	}
	defer rows.Close()

	items := make([]StatusCount, 0)
	for rows.Next() {
		var item StatusCount
		if err := rows.Scan(&item.Status, &item.Count); err != nil {
			return nil, db.WrapError("analytics.statuses", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, db.WrapError("analytics.statuses", err)
	}
	return items, nil
}

// ScoreGroups returns feedback counts and rating sums grouped by lead score.
func (r *Repo) ScoreGroups(ctx context.Context, f Filter) ([]domain.ScoreGroup, error) {
	rows, err := r.pool.Query(ctx, scoreGroupsQuery, windowArgs(f)...)
	if err != nil {
		return nil, db.WrapError("analytics.lead_scores", fmt.Errorf("query lead scores: %w", err))
	}
	defer rows.Close()

	groups := make([]domain.ScoreGroup, 0)
	for rows.Next() {
		var g domain.ScoreGroup
		if err := rows.Scan(&g.Score, &g.Count, &g.RatingSum); err != nil {
			return nil, db.WrapError("analytics.lead_scores", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, db.WrapError("analytics.lead_scores", err)
	}
	return groups, nil
}

// ResponseTimes returns statistics over feedback with a recorded completion time.
func (r *Repo) ResponseTimes(ctx context.Context, f Filter) (ResponseTimes, error) {
	var rt ResponseTimes
	err := r.pool.QueryRow(ctx, responseTimesQuery, windowArgs(f)...).Scan(&rt.Average, &rt.Min, &rt.Max, &rt.Count)
	if err != nil {
		return ResponseTimes{}, db.WrapError("analytics.response_times", fmt.Errorf("query response times: %w", err))
	}
	return rt, nil
}
