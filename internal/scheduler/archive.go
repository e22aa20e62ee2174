package scheduler

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"lead_feedback_backend/internal/adapters/storage"
	analyticsservice "lead_feedback_backend/internal/analytics/service"
	"lead_feedback_backend/internal/analytics/transport"
	"lead_feedback_backend/platform/logger"
)

// ExportSource composes the analytics export document.
type ExportSource interface {
	ExportData(ctx context.Context, q analyticsservice.Query) (transport.ExportDocument, error)
}

// ExportArchiver renders the trailing-window analytics export and stores a
// copy of each format in object storage.
type ExportArchiver struct {
	source  ExportSource
	storage storage.StorageService
	bucket  string
	log     *logger.Logger
}

func NewExportArchiver(source ExportSource, store storage.StorageService, bucket string, log *logger.Logger) *ExportArchiver {
	return &ExportArchiver{source: source, storage: store, bucket: bucket, log: log}
}

// Archive uploads the export in each requested format and returns the stored
// object keys. An empty format list archives both JSON and CSV.
func (a *ExportArchiver) Archive(ctx context.Context, formats []string) ([]string, error) {
	if len(formats) == 0 {
		formats = []string{analyticsservice.FormatJSON, analyticsservice.FormatCSV}
	}

	doc, err := a.source.ExportData(ctx, analyticsservice.Query{})
	if err != nil {
		return nil, err
	}

	if err := a.storage.EnsureBucketExists(ctx, a.bucket); err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(formats))
	for _, format := range formats {
		if format != analyticsservice.FormatJSON && format != analyticsservice.FormatCSV {
			return keys, fmt.Errorf("unsupported archive format %q", format)
		}
		file, err := analyticsservice.Render(doc, format)
		if err != nil {
			return keys, err
		}
		key := ArchiveKey(doc.ExportedAt, file.Filename)
		if err := a.storage.PutObject(ctx, a.bucket, key, file.ContentType, bytes.NewReader(file.Body), int64(len(file.Body))); err != nil {
			return keys, err
		}
		keys = append(keys, key)
	}

	a.log.Info("analytics export archived", "bucket", a.bucket, "objects", len(keys))
	return keys, nil
}

// ArchiveKey places filename under the exports/YYYY/MM/DD/ prefix of at.
func ArchiveKey(at time.Time, filename string) string {
	return fmt.Sprintf("exports/%s/%s", at.UTC().Format("2006/01/02"), filename)
}
