package domain

import (
	"context"
	"time"
)

// RunResultRecord captures the outcome of one reconciliation run for
// analytics.
type RunResultRecord struct {
	RunID            string
	UserID           string
	Day              time.Time
	PlacedCount      int
	UnplacedCount    int
	MissedCount      int
	InvalidatedCount int
	DurationMs       int64
}

// RunResultRecorder sinks run outcomes to an analytics backend.
type RunResultRecorder interface {
	RecordRunResult(ctx context.Context, record RunResultRecord) error
	Flush(ctx context.Context) error
	Close() error
}
