package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tidemark-app/tidemark-scheduling/internal/config"
	"github.com/tidemark-app/tidemark-scheduling/internal/domain"
	"github.com/tidemark-app/tidemark-scheduling/internal/observability/metrics"
	"github.com/tidemark-app/tidemark-scheduling/internal/observability/tracing"
	"github.com/tidemark-app/tidemark-scheduling/internal/service/reconcile"
)

type SchedulerHandler struct {
	reconcileService *reconcile.Service
	config           *config.Config
	schedulerMetrics *metrics.SchedulerMetrics
	resultRecorder   domain.RunResultRecorder
}

func NewSchedulerHandler(
	reconcileService *reconcile.Service,
	cfg *config.Config,
	schedulerMetrics *metrics.SchedulerMetrics,
	resultRecorder domain.RunResultRecorder,
) *SchedulerHandler {
	return &SchedulerHandler{
		reconcileService: reconcileService,
		config:           cfg,
		schedulerMetrics: schedulerMetrics,
		resultRecorder:   resultRecorder,
	}
}

// HandleRun triggers a reconciliation run for one user. The optional `now`
// query parameter injects a virtual clock for replay and testing.
func (h *SchedulerHandler) HandleRun(c *gin.Context) {
	ctx := c.Request.Context()

	userID := c.Query("user_id")
	if userID == "" {
		respondError(c, http.StatusBadRequest, "user_id is required")
		return
	}

	tz := c.Query("tz")
	if tz == "" {
		tz = h.config.Scheduler.DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		respondError(c, http.StatusBadRequest, "unknown timezone: "+tz)
		return
	}

	now := time.Now()
	if nowStr := c.Query("now"); nowStr != "" {
		parsed, err := time.Parse(time.RFC3339, nowStr)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid now time format, expected RFC3339")
			return
		}
		now = parsed
		slog.InfoContext(ctx, "using virtual time",
			slog.Time("virtual_now", now),
		)
	}

	runID := c.GetHeader("X-Run-ID")
	if runID == "" {
		runID = uuid.NewString()
	}

	runCtx, span := tracing.StartRunSpan(ctx, userID, now.In(loc))
	defer span.End()
	runStart := time.Now()

	result, err := h.reconcileService.Run(runCtx, reconcile.Request{
		UserID:   userID,
		Now:      now,
		Location: loc,
		RunID:    runID,
	})

	runDuration := time.Since(runStart)
	if h.schedulerMetrics != nil {
		h.schedulerMetrics.RecordRunDuration(runCtx, runDuration)
	}

	if err != nil {
		tracing.RecordRunResult(span, 0, 0, 0, 0, err)

		if errors.Is(err, domain.ErrRunInProgress) {
			if h.schedulerMetrics != nil {
				h.schedulerMetrics.RecordRun(runCtx, "contention")
			}
			respondError(c, http.StatusConflict, "a run is already in progress for this user")
			return
		}

		if h.schedulerMetrics != nil {
			h.schedulerMetrics.RecordRun(runCtx, "error")
		}
		slog.ErrorContext(ctx, "reconciliation run failed",
			slog.String("user_id", userID),
			slog.String("run_id", runID),
			slog.String("error", err.Error()),
		)
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	tracing.RecordRunResult(span,
		len(result.Placements), len(result.Unplaced),
		len(result.MissedIDs), len(result.InvalidatedIDs), nil)
	if h.schedulerMetrics != nil {
		h.schedulerMetrics.RecordRun(runCtx, "success")
	}

	if h.resultRecorder != nil {
		record := domain.RunResultRecord{
			RunID:            runID,
			UserID:           userID,
			Day:              result.Day,
			PlacedCount:      len(result.Placements),
			UnplacedCount:    len(result.Unplaced),
			MissedCount:      len(result.MissedIDs),
			InvalidatedCount: len(result.InvalidatedIDs),
			DurationMs:       runDuration.Milliseconds(),
		}
		if err := h.resultRecorder.RecordRunResult(runCtx, record); err != nil {
			slog.WarnContext(ctx, "failed to record run result",
				slog.String("run_id", runID),
				slog.String("error", err.Error()),
			)
		}
	}

	c.JSON(http.StatusOK, result)
}

// HandleStreakRefresh recomputes one habit's streak from its completion
// history.
func (h *SchedulerHandler) HandleStreakRefresh(c *gin.Context) {
	ctx := c.Request.Context()

	habitID := c.Param("habitID")
	if habitID == "" {
		respondError(c, http.StatusBadRequest, "habitID is required")
		return
	}

	streakCtx, span := tracing.StartStreakSpan(ctx, habitID)
	defer span.End()

	streakMetrics, err := h.reconcileService.RefreshStreak(streakCtx, habitID)
	if err != nil {
		tracing.RecordStreakResult(span, 0, 0, err)

		if errors.Is(err, domain.ErrHabitNotFound) {
			if h.schedulerMetrics != nil {
				h.schedulerMetrics.RecordStreakRefresh(streakCtx, "not_found")
			}
			respondError(c, http.StatusNotFound, "habit not found")
			return
		}

		if h.schedulerMetrics != nil {
			h.schedulerMetrics.RecordStreakRefresh(streakCtx, "error")
		}
		slog.ErrorContext(ctx, "streak refresh failed",
			slog.String("habit_id", habitID),
			slog.String("error", err.Error()),
		)
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	tracing.RecordStreakResult(span, streakMetrics.Current, streakMetrics.Longest, nil)
	if h.schedulerMetrics != nil {
		h.schedulerMetrics.RecordStreakRefresh(streakCtx, "success")
	}

	c.JSON(http.StatusOK, streakMetrics)
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"error":   "processing_error",
		"message": message,
	})
}
