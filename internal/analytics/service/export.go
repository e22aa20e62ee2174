package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"lead_feedback_backend/internal/analytics/transport"
	"lead_feedback_backend/platform/apperr"

	"golang.org/x/sync/errgroup"
)

// Export formats.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// ExportFile is a rendered export ready to be downloaded or archived.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportData composes the overview, rating trend, issue analysis and status
// distribution into one document.
func (s *Service) ExportData(ctx context.Context, q Query) (transport.ExportDocument, error) {
	ctx, done, filter, window, err := s.begin(ctx, "export", q)
	if err != nil {
		return transport.ExportDocument{}, err
	}
	defer done()

	var doc transport.ExportDocument
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		doc.Overview, err = s.overview(gctx, filter, window)
		return err
	})
	g.Go(func() (err error) {
		doc.Ratings, err = s.ratings(gctx, filter)
		return err
	})
	g.Go(func() (err error) {
		doc.Issues, err = s.issues(gctx, filter, issueLimit(q.Limit))
		return err
	})
	g.Go(func() (err error) {
		doc.Status, err = s.statuses(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return transport.ExportDocument{}, err
	}

	doc.ExportedAt = s.now().UTC()
	return doc, nil
}

// Export renders the export document in the requested format.
func (s *Service) Export(ctx context.Context, q Query, format string) (ExportFile, error) {
	if format == "" {
		format = FormatJSON
	}
	if format != FormatJSON && format != FormatCSV {
		return ExportFile{}, apperr.Validation("format must be json or csv").WithCode(apperr.CodeValidation)
	}

	doc, err := s.ExportData(ctx, q)
	if err != nil {
		return ExportFile{}, err
	}
	return Render(doc, format)
}

// Render encodes doc as JSON or CSV.
func Render(doc transport.ExportDocument, format string) (ExportFile, error) {
	switch format {
	case FormatCSV:
		body, err := RenderCSV(doc)
		if err != nil {
			return ExportFile{}, apperr.Wrap(apperr.KindInternal, "failed to render csv export", err)
		}
		return ExportFile{
			Filename:    ExportFilename(doc.ExportedAt, FormatCSV),
			ContentType: "text/csv; charset=utf-8",
			Body:        body,
		}, nil
	default:
		body, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return ExportFile{}, apperr.Wrap(apperr.KindInternal, "failed to render json export", err)
		}
		return ExportFile{
			Filename:    ExportFilename(doc.ExportedAt, FormatJSON),
			ContentType: "application/json",
			Body:        body,
		}, nil
	}
}

// RenderCSV flattens doc into Type,Metric,Value rows. Free-text fields are
// quoted by the csv writer when they contain separators, quotes or newlines.
func RenderCSV(doc transport.ExportDocument) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	records := [][]string{
		{"Type", "Metric", "Value"},
		{"Overview", "Total Feedback", strconv.Itoa(doc.Overview.TotalFeedback)},
		{"Overview", "Total Leads", strconv.Itoa(doc.Overview.TotalLeads)},
		{"Overview", "Active Brokers", strconv.Itoa(doc.Overview.ActiveBrokers)},
		{"Overview", "Average Rating", formatFloat(doc.Overview.AverageRating)},
		{"Overview", "Avg Completion Time", formatFloat(doc.Overview.AvgCompletionTime)},
	}
	for rating := 1; rating <= 5; rating++ {
		records = append(records, []string{"Ratings", fmt.Sprintf("%d Star", rating), strconv.Itoa(doc.Ratings[rating])})
	}
	for _, issue := range doc.Issues {
		records = append(records, []string{"Issues", issue.Issue, strconv.Itoa(issue.Count)})
	}
	for _, status := range doc.Status {
		records = append(records, []string{"Status", status.Status, strconv.Itoa(status.Count)})
	}

	if err := w.WriteAll(records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportFilename names an export file after its generation date.
func ExportFilename(at time.Time, format string) string {
	return fmt.Sprintf("analytics-export-%s.%s", at.UTC().Format("2006-01-02"), format)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
