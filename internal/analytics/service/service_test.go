package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"lead_feedback_backend/internal/analytics/repository"
	"lead_feedback_backend/internal/analytics/transport"
	"lead_feedback_backend/platform/apperr"
	"lead_feedback_backend/platform/db"
	"lead_feedback_backend/platform/logger"
	"lead_feedback_backend/platform/metrics"

	"github.com/prometheus/client_golang/prometheus"
)

type analyticsConfig struct{ timeout time.Duration }

func (c analyticsConfig) GetAnalyticsTimeout() time.Duration { return c.timeout }

var fixedNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestService(repo *memRepo) *Service {
	m := metrics.NewManager(metrics.WithRegistry(prometheus.NewRegistry()))
	svc := New(repo, analyticsConfig{timeout: time.Second}, m, logger.Discard())
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func intPtr(v int) *int { return &v }

func daysAgo(n int) time.Time { return fixedNow.Add(-time.Duration(n) * 24 * time.Hour) }

func TestEmptyWindowReturnsZeroedStructures(t *testing.T) {
	svc := newTestService(&memRepo{totalLeads: 3, activeBrokers: 2})
	ctx := context.Background()

	overview, err := svc.Overview(ctx, Query{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if overview.TotalFeedback != 0 || overview.AverageRating != 0 || overview.TotalLeads != 3 || overview.ActiveBrokers != 2 {
		t.Fatalf("unexpected overview %+v", overview)
	}

	ratings, err := svc.RatingTrend(ctx, Query{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for r := 1; r <= 5; r++ {
		if count, ok := ratings[r]; !ok || count != 0 {
			t.Fatalf("expected rating %d to be present and zero, got %v", r, ratings)
		}
	}

	issues, err := svc.Issues(ctx, Query{})
	if err != nil || issues == nil || len(issues) != 0 {
		t.Fatalf("expected empty non-nil issues, got %v (%v)", issues, err)
	}

	buckets, err := svc.LeadScoreCorrelation(ctx, Query{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(buckets) != 5 {
		t.Fatalf("expected 5 buckets, got %d", len(buckets))
	}
	for _, b := range buckets {
		if b.Count != 0 || b.AverageRating != 0 {
			t.Fatalf("expected zeroed bucket, got %+v", b)
		}
	}

	times, err := svc.ResponseTimes(ctx, Query{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if times != (transport.ResponseTimeStats{}) {
		t.Fatalf("expected zeroed response times, got %+v", times)
	}
}

func TestDefaultWindowIsTrailingThirtyDays(t *testing.T) {
	repo := &memRepo{}
	repo.add(row{rating: 5, status: "new", submittedAt: daysAgo(1)})
	repo.add(row{rating: 1, status: "new", submittedAt: daysAgo(45)})
	svc := newTestService(repo)

	overview, err := svc.Overview(context.Background(), Query{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if overview.TotalFeedback != 1 || overview.AverageRating != 5 {
		t.Fatalf("expected only the recent row, got %+v", overview)
	}
	if !overview.Period.EndDate.Equal(fixedNow) || !overview.Period.StartDate.Equal(daysAgo(30)) {
		t.Fatalf("unexpected period %+v", overview.Period)
	}
}

func TestInvertedWindowIsRejected(t *testing.T) {
	svc := newTestService(&memRepo{})
	start, end := daysAgo(1), daysAgo(2)

	_, err := svc.Overview(context.Background(), Query{Start: &start, End: &end})
	if !apperr.HasCode(err, apperr.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestIssueAnalysisCountsAndLimits(t *testing.T) {
	repo := &memRepo{}
	repo.add(row{rating: 4, status: "new", issues: []string{"a", "b"}, submittedAt: daysAgo(1)})
	repo.add(row{rating: 3, status: "new", issues: []string{"a", "  "}, submittedAt: daysAgo(2)})
	svc := newTestService(repo)
	ctx := context.Background()

	issues, err := svc.Issues(ctx, Query{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(issues) != 2 || issues[0] != (transport.IssueCount{Issue: "a", Count: 2}) || issues[1] != (transport.IssueCount{Issue: "b", Count: 1}) {
		t.Fatalf("unexpected issues %+v", issues)
	}

	limited, err := svc.Issues(ctx, Query{Limit: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(limited) != 1 || limited[0].Issue != "a" {
		t.Fatalf("expected only a, got %+v", limited)
	}
}

func TestIssueTiesAreBrokenAlphabetically(t *testing.T) {
	repo := &memRepo{}
	repo.add(row{rating: 4, status: "new", issues: []string{"zeta", "alpha"}, submittedAt: daysAgo(1)})
	svc := newTestService(repo)

	issues, err := svc.Issues(context.Background(), Query{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if issues[0].Issue != "alpha" || issues[1].Issue != "zeta" {
		t.Fatalf("expected alphabetical tie break, got %+v", issues)
	}
}

func TestLeadScoreBucketBoundaries(t *testing.T) {
	repo := &memRepo{}
	repo.add(row{rating: 5, status: "new", leadScore: intPtr(20), submittedAt: daysAgo(1)})
	repo.add(row{rating: 3, status: "new", leadScore: intPtr(21), submittedAt: daysAgo(1)})
	repo.add(row{rating: 1, status: "new", leadScore: intPtr(40), submittedAt: daysAgo(1)})
	repo.add(row{rating: 4, status: "new", leadCurrentScore: 95, submittedAt: daysAgo(1)})
	svc := newTestService(repo)

	buckets, err := svc.LeadScoreCorrelation(context.Background(), Query{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []transport.ScoreBucket{
		{Range: "0-20", Min: 0, Max: 20, Count: 1, AverageRating: 5},
		{Range: "21-40", Min: 21, Max: 40, Count: 2, AverageRating: 2},
		{Range: "41-60", Min: 41, Max: 60},
		{Range: "61-80", Min: 61, Max: 80},
		{Range: "81-100", Min: 81, Max: 100, Count: 1, AverageRating: 4},
	}
	for i := range want {
		if buckets[i] != want[i] {
			t.Fatalf("bucket %d: expected %+v, got %+v", i, want[i], buckets[i])
		}
	}
}

func TestResponseTimesExcludeMissingCompletionTimes(t *testing.T) {
	repo := &memRepo{}
	repo.add(row{rating: 4, status: "new", completionTime: intPtr(30), submittedAt: daysAgo(1)})
	repo.add(row{rating: 4, status: "new", submittedAt: daysAgo(1)})
	svc := newTestService(repo)

	times, err := svc.ResponseTimes(context.Background(), Query{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if times.TotalResponses != 1 || times.AverageTime != 30 || times.MinTime != 30 || times.MaxTime != 30 {
		t.Fatalf("unexpected response times %+v", times)
	}
}

func TestBrokerFilterScopesWindowedViews(t *testing.T) {
	repo := &memRepo{}
	repo.add(row{brokerExternalID: "B1", rating: 5, status: "booked", submittedAt: daysAgo(1)})
	repo.add(row{brokerExternalID: "B2", rating: 1, status: "failed", submittedAt: daysAgo(1)})
	svc := newTestService(repo)

	ratings, err := svc.RatingTrend(context.Background(), Query{BrokerExternalID: " B1 "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ratings[5] != 1 || ratings[1] != 0 {
		t.Fatalf("expected only B1's rating, got %v", ratings)
	}
}

func TestStatusDistributionOrderedByCount(t *testing.T) {
	repo := &memRepo{}
	repo.add(row{rating: 5, status: "booked", submittedAt: daysAgo(1)})
	repo.add(row{rating: 4, status: "contacted", submittedAt: daysAgo(1)})
	repo.add(row{rating: 3, status: "contacted", submittedAt: daysAgo(1)})
	svc := newTestService(repo)

	statuses, err := svc.StatusDistribution(context.Background(), Query{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(statuses) != 2 || statuses[0].Status != "contacted" || statuses[0].Count != 2 {
		t.Fatalf("unexpected statuses %+v", statuses)
	}
}

func TestDashboardCombinesViews(t *testing.T) {
	repo := &memRepo{totalLeads: 2, activeBrokers: 1}
	for i := 0; i < 7; i++ {
		repo.add(row{rating: 4, status: "new", issues: []string{string(rune('a' + i))}, submittedAt: daysAgo(1)})
	}
	svc := newTestService(repo)

	dash, err := svc.Dashboard(context.Background(), Query{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dash.Overview.TotalFeedback != 7 || dash.Ratings[4] != 7 {
		t.Fatalf("unexpected dashboard %+v", dash)
	}
	if len(dash.TopIssues) != 5 {
		t.Fatalf("expected top 5 issues, got %d", len(dash.TopIssues))
	}
	if len(dash.LeadScores) != 5 || !dash.GeneratedAt.Equal(fixedNow) {
		t.Fatalf("unexpected dashboard metadata %+v", dash)
	}
}

func TestFeedbackAnalyticsSummary(t *testing.T) {
	repo := &memRepo{}
	repo.add(row{rating: 5, status: "booked", submittedAt: daysAgo(1)})
	repo.add(row{rating: 3, status: "contacted", submittedAt: daysAgo(1)})
	svc := newTestService(repo)

	out, err := svc.FeedbackAnalytics(context.Background(), Query{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Summary.TotalFeedback != 2 || out.Summary.AverageRating != 4 {
		t.Fatalf("unexpected summary %+v", out.Summary)
	}
	if out.RatingDistribution[5] != 1 || out.RatingDistribution[3] != 1 || len(out.StatusDistribution) != 2 {
		t.Fatalf("unexpected distributions %+v", out)
	}
}

func TestStoreFailuresPropagate(t *testing.T) {
	repo := &memRepo{err: apperr.Unavailable("connection reset").WithCode(apperr.CodeTransientFailure)}
	svc := newTestService(repo)

	if _, err := svc.Dashboard(context.Background(), Query{}); !apperr.HasCode(err, apperr.CodeTransientFailure) {
		t.Fatalf("expected transient failure, got %v", err)
	}
}

func TestExportJSON(t *testing.T) {
	repo := &memRepo{}
	repo.add(row{rating: 5, status: "booked", issues: []string{"slow"}, submittedAt: daysAgo(1)})
	svc := newTestService(repo)

	file, err := svc.Export(context.Background(), Query{}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if file.Filename != "analytics-export-2026-06-15.json" || file.ContentType != "application/json" {
		t.Fatalf("unexpected file metadata %+v", file)
	}

	var doc transport.ExportDocument
	if err := json.Unmarshal(file.Body, &doc); err != nil {
		t.Fatalf("decode export: %v", err)
	}
	if doc.Overview.TotalFeedback != 1 || doc.Ratings[5] != 1 || len(doc.Issues) != 1 || len(doc.Status) != 1 {
		t.Fatalf("unexpected export %+v", doc)
	}
}

func TestExportCSVEscapesFreeText(t *testing.T) {
	repo := &memRepo{}
	repo.add(row{rating: 2, status: "new", issues: []string{`late, "very" late`}, submittedAt: daysAgo(1)})
	svc := newTestService(repo)

	file, err := svc.Export(context.Background(), Query{}, FormatCSV)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasSuffix(file.Filename, ".csv") {
		t.Fatalf("unexpected filename %s", file.Filename)
	}
	if !strings.Contains(string(file.Body), `Issues,"late, ""very"" late",1`) {
		t.Fatalf("expected escaped issue row, got:\n%s", file.Body)
	}

	records, err := csv.NewReader(strings.NewReader(string(file.Body))).ReadAll()
	if err != nil {
		t.Fatalf("csv does not parse back: %v", err)
	}
	if records[0][0] != "Type" || records[0][1] != "Metric" || records[0][2] != "Value" {
		t.Fatalf("unexpected header %v", records[0])
	}
	for _, rec := range records {
		if len(rec) != 3 {
			t.Fatalf("expected three columns, got %v", rec)
		}
	}
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	svc := newTestService(&memRepo{})

	if _, err := svc.Export(context.Background(), Query{}, "xml"); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAnalyticsTimeoutIsTransient(t *testing.T) {
	svc := newTestService(&memRepo{})
	svc.timeout = time.Nanosecond
	svc.repo = &slowRepo{memRepo: &memRepo{}}

	_, err := svc.Overview(context.Background(), Query{})
	if !apperr.HasCode(err, apperr.CodeTransientFailure) {
		t.Fatalf("expected transient failure, got %v", err)
	}
}

// slowRepo blocks until the context ends, then fails the way the store does.
type slowRepo struct {
	*memRepo
}

func (r *slowRepo) Overview(ctx context.Context, _ repository.Filter) (repository.Overview, error) {
	<-ctx.Done()
	return repository.Overview{}, db.WrapError("analytics.overview", ctx.Err())
}
