package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"lead_feedback_backend/internal/analytics/domain"
	"lead_feedback_backend/internal/analytics/repository"
)

type row struct {
	brokerExternalID string
	rating           int
	status           string
	issues           []string
	leadScore        *int
	leadCurrentScore int
	completionTime   *int
	submittedAt      time.Time
}

// memRepo evaluates analytics queries over an in-memory ledger.
type memRepo struct {
	mu            sync.Mutex
	rows          []row
	totalLeads    int
	activeBrokers int
	err           error
	calls         int
}

func (r *memRepo) add(rw row) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, rw)
}

func (r *memRepo) matching(f repository.Filter) []row {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++

	out := make([]row, 0)
	for _, rw := range r.rows {
		if rw.submittedAt.Before(f.Start) || rw.submittedAt.After(f.End) {
			continue
		}
		if f.BrokerExternalID != nil && rw.brokerExternalID != *f.BrokerExternalID {
			continue
		}
		out = append(out, rw)
	}
	return out
}

func (r *memRepo) Overview(_ context.Context, f repository.Filter) (repository.Overview, error) {
	if r.err != nil {
		return repository.Overview{}, r.err
	}
	rows := r.matching(f)
	o := repository.Overview{TotalFeedback: len(rows), TotalLeads: r.totalLeads, ActiveBrokers: r.activeBrokers}
	if len(rows) == 0 {
		return o, nil
	}
	ratingSum, timeSum, timeCount := 0, 0, 0
	for _, rw := range rows {
		ratingSum += rw.rating
		if rw.completionTime != nil {
			timeSum += *rw.completionTime
			timeCount++
		}
	}
	o.AverageRating = float64(ratingSum) / float64(len(rows))
	if timeCount > 0 {
		o.AvgCompletionTime = float64(timeSum) / float64(timeCount)
	}
	return o, nil
}

func (r *memRepo) RatingCounts(_ context.Context, f repository.Filter) (map[int]int, error) {
	if r.err != nil {
		return nil, r.err
	}
	counts := make(map[int]int)
	for _, rw := range r.matching(f) {
		counts[rw.rating]++
	}
	return counts, nil
}

func (r *memRepo) IssueCounts(_ context.Context, f repository.Filter, limit int) ([]repository.IssueCount, error) {
	if r.err != nil {
		return nil, r.err
	}
	counts := make(map[string]int)
	for _, rw := range r.matching(f) {
		for _, issue := range rw.issues {
			if tag := strings.TrimSpace(issue); tag != "" {
				counts[tag]++
			}
		}
	}
	out := make([]repository.IssueCount, 0, len(counts))
	for issue, count := range counts {
		out = append(out, repository.IssueCount{Issue: issue, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Issue < out[j].Issue
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memRepo) StatusCounts(_ context.Context, f repository.Filter) ([]repository.StatusCount, error) {
	if r.err != nil {
		return nil, r.err
	}
	counts := make(map[string]int)
	for _, rw := range r.matching(f) {
		counts[rw.status]++
	}
	out := make([]repository.StatusCount, 0, len(counts))
	for status, count := range counts {
		out = append(out, repository.StatusCount{Status: status, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Status < out[j].Status
	})
	return out, nil
}

func (r *memRepo) ScoreGroups(_ context.Context, f repository.Filter) ([]domain.ScoreGroup, error) {
	if r.err != nil {
		return nil, r.err
	}
	groups := make(map[int]*domain.ScoreGroup)
	for _, rw := range r.matching(f) {
		score := rw.leadCurrentScore
		if rw.leadScore != nil {
			score = *rw.leadScore
		}
		g, ok := groups[score]
		if !ok {
			g = &domain.ScoreGroup{Score: score}
			groups[score] = g
		}
		g.Count++
		g.RatingSum += rw.rating
	}
	out := make([]domain.ScoreGroup, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	return out, nil
}

func (r *memRepo) ResponseTimes(_ context.Context, f repository.Filter) (repository.ResponseTimes, error) {
	if r.err != nil {
		return repository.ResponseTimes{}, r.err
	}
	var rt repository.ResponseTimes
	sum := 0
	for _, rw := range r.matching(f) {
		if rw.completionTime == nil {
			continue
		}
		v := *rw.completionTime
		if rt.Count == 0 || v < rt.Min {
			rt.Min = v
		}
		if v > rt.Max {
			rt.Max = v
		}
		sum += v
		rt.Count++
	}
	if rt.Count > 0 {
		rt.Average = float64(sum) / float64(rt.Count)
	}
	return rt, nil
}
