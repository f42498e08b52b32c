//go:build gcloud

package runrecorder

import (
	"context"
	"log/slog"
	"time"

	"cloud.google.com/go/bigquery"

	"github.com/tidemark-app/tidemark-scheduling/internal/domain"
)

type bigQueryRecord struct {
	RecordedAt       time.Time `bigquery:"recorded_at"`
	RunID            string    `bigquery:"run_id"`
	UserID           string    `bigquery:"user_id"`
	Day              time.Time `bigquery:"day"`
	PlacedCount      int64     `bigquery:"placed_count"`
	UnplacedCount    int64     `bigquery:"unplaced_count"`
	MissedCount      int64     `bigquery:"missed_count"`
	InvalidatedCount int64     `bigquery:"invalidated_count"`
	DurationMs       int64     `bigquery:"duration_ms"`
}

type bigQueryRecorder struct {
	client   *bigquery.Client
	inserter *bigquery.Inserter
	dataset  string
	table    string
}

func NewRecorder(ctx context.Context, cfg *Config) (domain.RunResultRecorder, error) {
	if cfg.Disabled {
		slog.InfoContext(ctx, "run result recording disabled")
		return NewNoopRecorder(), nil
	}

	if cfg.BigQueryProjectID == "" {
		slog.WarnContext(ctx, "BigQuery project ID not configured, run result recording disabled")
		return NewNoopRecorder(), nil
	}

	client, err := bigquery.NewClient(ctx, cfg.BigQueryProjectID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create BigQuery client, run result recording disabled",
			slog.String("error", err.Error()),
			slog.String("project_id", cfg.BigQueryProjectID),
		)
		return NewNoopRecorder(), nil
	}

	table := client.Dataset(cfg.BigQueryDataset).Table(cfg.BigQueryTable)
	inserter := table.Inserter()

	slog.InfoContext(ctx, "run result recorder initialized",
		slog.String("type", "bigquery"),
		slog.String("project_id", cfg.BigQueryProjectID),
		slog.String("dataset", cfg.BigQueryDataset),
		slog.String("table", cfg.BigQueryTable),
	)

	return &bigQueryRecorder{
		client:   client,
		inserter: inserter,
		dataset:  cfg.BigQueryDataset,
		table:    cfg.BigQueryTable,
	}, nil
}

func (r *bigQueryRecorder) RecordRunResult(ctx context.Context, record domain.RunResultRecord) error {
	row := &bigQueryRecord{
		RecordedAt:       time.Now(),
		RunID:            record.RunID,
		UserID:           record.UserID,
		Day:              record.Day,
		PlacedCount:      int64(record.PlacedCount),
		UnplacedCount:    int64(record.UnplacedCount),
		MissedCount:      int64(record.MissedCount),
		InvalidatedCount: int64(record.InvalidatedCount),
		DurationMs:       record.DurationMs,
	}

	if err := r.inserter.Put(ctx, []*bigQueryRecord{row}); err != nil {
		slog.WarnContext(ctx, "failed to insert run result to BigQuery",
			slog.String("error", err.Error()),
			slog.String("run_id", record.RunID),
		)
	}

	return nil
}

func (r *bigQueryRecorder) Flush(ctx context.Context) error {
	return nil
}

func (r *bigQueryRecorder) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}
