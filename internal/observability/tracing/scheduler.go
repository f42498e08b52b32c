package tracing

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const schedulerTracerName = "github.com/tidemark-app/tidemark-scheduling/internal/service/reconcile"

func SchedulerTracer() trace.Tracer {
	return otel.Tracer(schedulerTracerName)
}

func StartRunSpan(ctx context.Context, userID string, day time.Time) (context.Context, trace.Span) {
	return SchedulerTracer().Start(ctx, "scheduler.run",
		trace.WithAttributes(
			attribute.String("run.user_id", userID),
			attribute.String("run.day", day.Format(time.RFC3339)),
		),
	)
}

func StartPlacementSpan(ctx context.Context, itemCount, windowCount int) (context.Context, trace.Span) {
	return SchedulerTracer().Start(ctx, "scheduler.placement",
		trace.WithAttributes(
			attribute.Int("placement.item_count", itemCount),
			attribute.Int("placement.window_count", windowCount),
		),
	)
}

func StartOverlapSpan(ctx context.Context, instanceCount int) (context.Context, trace.Span) {
	return SchedulerTracer().Start(ctx, "scheduler.overlap_resolution",
		trace.WithAttributes(
			attribute.Int("overlap.instance_count", instanceCount),
		),
	)
}

func StartStreakSpan(ctx context.Context, habitID string) (context.Context, trace.Span) {
	return SchedulerTracer().Start(ctx, "scheduler.streak_refresh",
		trace.WithAttributes(
			attribute.String("streak.habit_id", habitID),
		),
	)
}

func RecordRunResult(span trace.Span, placed, unplaced, missed, invalidated int, err error) {
	span.SetAttributes(
		attribute.Int("run.placed_count", placed),
		attribute.Int("run.unplaced_count", unplaced),
		attribute.Int("run.missed_count", missed),
		attribute.Int("run.invalidated_count", invalidated),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
}

func RecordStreakResult(span trace.Span, current, longest int, err error) {
	span.SetAttributes(
		attribute.Int("streak.current", current),
		attribute.Int("streak.longest", longest),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
}
