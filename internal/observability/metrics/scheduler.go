package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	schedulerMeterName = "scheduler.service"
)

type SchedulerMetrics struct {
	runsTotal            metric.Int64Counter
	itemsPlaced          metric.Int64Counter
	itemsUnplaced        metric.Int64Counter
	instancesInvalidated metric.Int64Counter
	instancesMissed      metric.Int64Counter
	placementDuration    metric.Float64Histogram
	runDuration          metric.Float64Histogram
	streakRefreshes      metric.Int64Counter
}

func NewSchedulerMetrics() (*SchedulerMetrics, error) {
	meter := otel.Meter(schedulerMeterName)

	runsTotal, err := meter.Int64Counter(
		"scheduler_runs_total",
		metric.WithDescription("Total number of reconciliation runs"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, err
	}

	itemsPlaced, err := meter.Int64Counter(
		"scheduler_items_placed_total",
		metric.WithDescription("Total number of backlog items placed"),
		metric.WithUnit("{item}"),
	)
	if err != nil {
		return nil, err
	}

	itemsUnplaced, err := meter.Int64Counter(
		"scheduler_items_unplaced_total",
		metric.WithDescription("Total number of backlog items that could not be placed"),
		metric.WithUnit("{item}"),
	)
	if err != nil {
		return nil, err
	}

	instancesInvalidated, err := meter.Int64Counter(
		"scheduler_instances_invalidated_total",
		metric.WithDescription("Total number of instances invalidated by overlap resolution"),
		metric.WithUnit("{instance}"),
	)
	if err != nil {
		return nil, err
	}

	instancesMissed, err := meter.Int64Counter(
		"scheduler_instances_missed_total",
		metric.WithDescription("Total number of instances marked missed"),
		metric.WithUnit("{instance}"),
	)
	if err != nil {
		return nil, err
	}

	placementDuration, err := meter.Float64Histogram(
		"scheduler_placement_duration_seconds",
		metric.WithDescription("Time spent in the placement pass"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(
			0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5,
		),
	)
	if err != nil {
		return nil, err
	}

	runDuration, err := meter.Float64Histogram(
		"scheduler_run_duration_seconds",
		metric.WithDescription("Whole reconciliation run duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(
			0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60,
		),
	)
	if err != nil {
		return nil, err
	}

	streakRefreshes, err := meter.Int64Counter(
		"scheduler_streak_refreshes_total",
		metric.WithDescription("Total number of habit streak refreshes"),
		metric.WithUnit("{habit}"),
	)
	if err != nil {
		return nil, err
	}

	return &SchedulerMetrics{
		runsTotal:            runsTotal,
		itemsPlaced:          itemsPlaced,
		itemsUnplaced:        itemsUnplaced,
		instancesInvalidated: instancesInvalidated,
		instancesMissed:      instancesMissed,
		placementDuration:    placementDuration,
		runDuration:          runDuration,
		streakRefreshes:      streakRefreshes,
	}, nil
}

func (m *SchedulerMetrics) RecordRun(ctx context.Context, outcome string) {
	m.runsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
	))
}

func (m *SchedulerMetrics) RecordItemsPlaced(ctx context.Context, count int) {
	m.itemsPlaced.Add(ctx, int64(count))
}

func (m *SchedulerMetrics) RecordItemsUnplaced(ctx context.Context, reason string, count int) {
	m.itemsUnplaced.Add(ctx, int64(count), metric.WithAttributes(
		attribute.String("reason", reason),
	))
}

func (m *SchedulerMetrics) RecordInstancesInvalidated(ctx context.Context, count int) {
	m.instancesInvalidated.Add(ctx, int64(count))
}

func (m *SchedulerMetrics) RecordInstancesMissed(ctx context.Context, count int) {
	m.instancesMissed.Add(ctx, int64(count))
}

func (m *SchedulerMetrics) RecordPlacementDuration(ctx context.Context, duration time.Duration) {
	m.placementDuration.Record(ctx, duration.Seconds())
}

func (m *SchedulerMetrics) RecordRunDuration(ctx context.Context, duration time.Duration) {
	m.runDuration.Record(ctx, duration.Seconds())
}

func (m *SchedulerMetrics) RecordStreakRefresh(ctx context.Context, outcome string) {
	m.streakRefreshes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
	))
}
