package runrecorder

import (
	"context"

	"github.com/tidemark-app/tidemark-scheduling/internal/domain"
)

type noopRecorder struct{}

func NewNoopRecorder() domain.RunResultRecorder {
	return &noopRecorder{}
}

func (n *noopRecorder) RecordRunResult(_ context.Context, _ domain.RunResultRecord) error {
	return nil
}

func (n *noopRecorder) Flush(_ context.Context) error {
	return nil
}

func (n *noopRecorder) Close() error {
	return nil
}
