// Package reconcile orchestrates a user's reconciliation run: mark overdue
// instances missed, place the backlog, resolve overlaps, persist the
// outcome.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/tidemark-app/tidemark-scheduling/internal/domain"
	"github.com/tidemark-app/tidemark-scheduling/internal/observability/metrics"
	"github.com/tidemark-app/tidemark-scheduling/internal/service/overlap"
	"github.com/tidemark-app/tidemark-scheduling/internal/service/placement"
	"github.com/tidemark-app/tidemark-scheduling/internal/service/practice"
	"github.com/tidemark-app/tidemark-scheduling/internal/service/slotgrid"
	"github.com/tidemark-app/tidemark-scheduling/internal/service/streak"
	"github.com/tidemark-app/tidemark-scheduling/internal/service/syncpair"
)

type Service struct {
	repo             domain.ScheduleRepository
	lock             domain.RunLock
	engine           *placement.Engine
	schedulerMetrics *metrics.SchedulerMetrics
	startGrace       time.Duration
	lockTTL          time.Duration
}

func NewService(
	repo domain.ScheduleRepository,
	lock domain.RunLock,
	engine *placement.Engine,
	schedulerMetrics *metrics.SchedulerMetrics,
	startGrace time.Duration,
	lockTTL time.Duration,
) *Service {
	return &Service{
		repo:             repo,
		lock:             lock,
		engine:           engine,
		schedulerMetrics: schedulerMetrics,
		startGrace:       startGrace,
		lockTTL:          lockTTL,
	}
}

// Run executes the full reconciliation pass for one user. The per-user lock
// guarantees a single authoritative pass; contention surfaces as
// domain.ErrRunInProgress so the caller can retry.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	release, err := s.lock.Acquire(ctx, req.UserID, s.lockTTL)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := release(ctx); err != nil {
			slog.WarnContext(ctx, "failed to release run lock",
				slog.String("user_id", req.UserID),
				slog.String("error", err.Error()),
			)
		}
	}()

	localNow := req.Now.In(req.Location)
	y, m, d := localNow.Date()
	dayStart := time.Date(y, m, d, 0, 0, 0, 0, req.Location)
	dayEnd := dayStart.Add(24 * time.Hour)

	// Mark overdue instances missed before rebuilding the day
	cutoff := req.Now.Add(-s.startGrace)
	missedIDs, err := s.repo.MarkMissedBefore(ctx, req.UserID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("mark missed instances: %w", err)
	}
	if len(missedIDs) > 0 {
		slog.InfoContext(ctx, "marked overdue instances missed",
			slog.String("user_id", req.UserID),
			slog.Int("missed_count", len(missedIDs)),
		)
		if s.schedulerMetrics != nil {
			s.schedulerMetrics.RecordInstancesMissed(ctx, len(missedIDs))
		}
	}

	windows, err := s.repo.ListWindows(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("list windows: %w", err)
	}
	backlog, err := s.repo.ListBacklog(ctx, req.UserID, dayStart)
	if err != nil {
		return nil, fmt.Errorf("list backlog: %w", err)
	}
	existing, err := s.repo.ListInstancesInRange(ctx, req.UserID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("list instances: %w", err)
	}

	slog.DebugContext(ctx, "loaded reconciliation inputs",
		slog.String("user_id", req.UserID),
		slog.Int("window_count", len(windows)),
		slog.Int("backlog_count", len(backlog)),
		slog.Int("existing_count", len(existing)),
	)

	fixed, syncItems := splitSyncItems(backlog)

	placementStart := time.Now()
	placed := s.engine.Place(ctx, fixed, windows, dayStart, req.Location)
	if s.schedulerMetrics != nil {
		s.schedulerMetrics.RecordPlacementDuration(ctx, time.Since(placementStart))
	}

	s.stampPracticeContexts(ctx, placed.Placements, fixed, existing)

	existingTypes, err := s.repo.HabitTypesByInstance(ctx, existing)
	if err != nil {
		return nil, fmt.Errorf("resolve habit types: %w", err)
	}

	syncPlacements, syncUnplaced := s.placeSyncItems(ctx, syncItems, windows, existing, existingTypes, dayStart, req.Location)
	placed.Placements = append(placed.Placements, syncPlacements...)
	placed.Unplaced = append(placed.Unplaced, syncUnplaced...)

	newInstances := s.buildInstances(req, fixed, syncItems, placed.Placements)
	if len(newInstances) > 0 {
		if err := s.repo.SaveInstances(ctx, newInstances); err != nil {
			return nil, fmt.Errorf("save placements: %w", err)
		}
	}

	invalidatedIDs, err := s.resolveOverlaps(ctx, req, existing, existingTypes, newInstances, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	if s.schedulerMetrics != nil {
		s.schedulerMetrics.RecordItemsPlaced(ctx, len(placed.Placements))
		byReason := make(map[domain.UnplacedReason]int)
		for _, u := range placed.Unplaced {
			byReason[u.Reason]++
		}
		for reason, count := range byReason {
			s.schedulerMetrics.RecordItemsUnplaced(ctx, string(reason), count)
		}
		s.schedulerMetrics.RecordInstancesInvalidated(ctx, len(invalidatedIDs))
	}

	slog.InfoContext(ctx, "reconciliation run completed",
		slog.String("user_id", req.UserID),
		slog.String("run_id", req.RunID),
		slog.Int("placed_count", len(placed.Placements)),
		slog.Int("unplaced_count", len(placed.Unplaced)),
		slog.Int("missed_count", len(missedIDs)),
		slog.Int("invalidated_count", len(invalidatedIDs)),
	)

	return &Result{
		RunID:          req.RunID,
		Day:            dayStart,
		Placements:     placed.Placements,
		Unplaced:       placed.Unplaced,
		MissedIDs:      missedIDs,
		InvalidatedIDs: invalidatedIDs,
	}, nil
}

// RefreshStreak recomputes a habit's streak from its completion history and
// writes the metrics back to the habit summary.
func (s *Service) RefreshStreak(ctx context.Context, habitID string) (domain.StreakMetrics, error) {
	habit, err := s.repo.GetHabit(ctx, habitID)
	if err != nil {
		return domain.StreakMetrics{}, fmt.Errorf("load habit: %w", err)
	}
	completions, err := s.repo.ListCompletions(ctx, habitID)
	if err != nil {
		return domain.StreakMetrics{}, fmt.Errorf("load completions: %w", err)
	}

	streakMetrics := streak.Compute(completions, habit.Recurrence, habit.RecurrenceDays)

	if err := s.repo.UpdateHabitStreak(ctx, habitID, streakMetrics); err != nil {
		return domain.StreakMetrics{}, fmt.Errorf("update habit streak: %w", err)
	}

	slog.DebugContext(ctx, "habit streak refreshed",
		slog.String("habit_id", habitID),
		slog.Int("current", streakMetrics.Current),
		slog.Int("longest", streakMetrics.Longest),
	)
	return streakMetrics, nil
}

func splitSyncItems(backlog []domain.SchedulableItem) (fixed, syncItems []domain.SchedulableItem) {
	fixed = make([]domain.SchedulableItem, 0, len(backlog))
	syncItems = make([]domain.SchedulableItem, 0)
	for _, item := range backlog {
		if item.SourceType == domain.SourceHabit && item.HabitType.SyncFamily() {
			syncItems = append(syncItems, item)
		} else {
			fixed = append(fixed, item)
		}
	}
	return fixed, syncItems
}

// stampPracticeContexts selects and records the practice context for every
// placed practice habit.
func (s *Service) stampPracticeContexts(
	ctx context.Context,
	placements []domain.Placement,
	items []domain.SchedulableItem,
	existing []domain.ScheduleInstance,
) {
	practiceItems := make(map[string]domain.SchedulableItem)
	for _, item := range items {
		if item.SourceType == domain.SourceHabit && item.IsPractice {
			practiceItems[item.ID] = item
		}
	}
	if len(practiceItems) == 0 {
		return
	}

	for i := range placements {
		item, ok := practiceItems[placements[i].ItemID]
		if !ok {
			continue
		}

		candidates, err := s.repo.ListPracticeContexts(ctx, item.ID)
		if err != nil {
			slog.WarnContext(ctx, "failed to load practice contexts, skipping stamp",
				slog.String("item_id", item.ID),
				slog.String("error", err.Error()),
			)
			continue
		}
		if len(candidates) == 0 {
			continue
		}

		input := practice.Input{
			CandidateIDs:    make([]string, 0, len(candidates)),
			EventCounts:     make(map[string]int, len(candidates)),
			TaskCounts:      make(map[string]int, len(candidates)),
			LastPracticedAt: make(map[string]time.Time, len(candidates)),
			LastContextUsed: lastPracticeContext(existing, item.ID),
			WindowStart:     placements[i].Start,
		}
		for _, c := range candidates {
			input.CandidateIDs = append(input.CandidateIDs, c.ID)
			input.EventCounts[c.ID] = c.EventCount
			if c.Actionable {
				input.TaskCounts[c.ID] = 1
			}
			if c.LastPracticed != nil {
				input.LastPracticedAt[c.ID] = *c.LastPracticed
			}
		}

		placements[i].PracticeContextID = practice.Select(input)
	}
}

// lastPracticeContext finds the most recently updated instance of the habit
// that carries a practice context.
func lastPracticeContext(existing []domain.ScheduleInstance, habitID string) string {
	var latest *domain.ScheduleInstance
	for i := range existing {
		inst := &existing[i]
		if inst.SourceID != habitID || inst.PracticeContextID == "" {
			continue
		}
		if latest == nil || inst.UpdatedAt.After(latest.UpdatedAt) {
			latest = inst
		}
	}
	if latest == nil {
		return ""
	}
	return latest.PracticeContextID
}

// placeSyncItems derives each sync habit's span from its overlap with the
// day's SYNC/ASYNC partner instances.
func (s *Service) placeSyncItems(
	ctx context.Context,
	items []domain.SchedulableItem,
	windows []domain.Window,
	existing []domain.ScheduleInstance,
	existingTypes map[string]domain.HabitType,
	dayStart time.Time,
	loc *time.Location,
) ([]domain.Placement, []domain.UnplacedItem) {
	if len(items) == 0 {
		return nil, nil
	}

	windowsByID := make(map[string]domain.Window, len(windows))
	for _, w := range windows {
		windowsByID[w.ID] = w
	}

	candidates := make([]syncpair.Candidate, 0, len(existing))
	for _, inst := range existing {
		if inst.Status == domain.StatusCanceled {
			continue
		}
		if !existingTypes[inst.ID].SyncFamily() {
			continue
		}
		candidates = append(candidates, syncpair.Candidate{
			ID:    inst.ID,
			Start: inst.StartUTC,
			End:   inst.EndUTC,
		})
	}

	placements := make([]domain.Placement, 0, len(items))
	unplaced := make([]domain.UnplacedItem, 0)
	for _, item := range items {
		win, ok := windowsByID[item.WindowID]
		if !ok {
			unplaced = append(unplaced, domain.UnplacedItem{ItemID: item.ID, Reason: domain.ReasonNoWindow})
			continue
		}
		winStart, winEnd, boundsOK := windowBoundsOnDay(win, dayStart, loc)
		if !boundsOK {
			unplaced = append(unplaced, domain.UnplacedItem{ItemID: item.ID, Reason: domain.ReasonNoWindow})
			continue
		}

		minDuration := time.Duration(item.DurationMin) * time.Minute
		pairing := syncpair.ComputeSyncDuration(winStart, winEnd, minDuration, candidates)
		if pairing.Empty() {
			slog.DebugContext(ctx, "sync habit found no qualifying overlap",
				slog.String("item_id", item.ID),
				slog.String("window_id", item.WindowID),
			)
			unplaced = append(unplaced, domain.UnplacedItem{ItemID: item.ID, Reason: domain.ReasonNoSlot})
			continue
		}

		placements = append(placements, domain.Placement{
			ItemID:            item.ID,
			WindowID:          item.WindowID,
			Start:             pairing.Start,
			End:               pairing.End,
			PairedInstanceIDs: pairing.PairedIDs,
		})
	}
	return placements, unplaced
}

func (s *Service) buildInstances(
	req Request,
	fixed, syncItems []domain.SchedulableItem,
	placements []domain.Placement,
) []domain.ScheduleInstance {
	itemsByID := make(map[string]domain.SchedulableItem, len(fixed)+len(syncItems))
	for _, item := range fixed {
		itemsByID[item.ID] = item
	}
	for _, item := range syncItems {
		itemsByID[item.ID] = item
	}

	instances := make([]domain.ScheduleInstance, 0, len(placements))
	for _, p := range placements {
		item := itemsByID[p.ItemID]
		instances = append(instances, domain.ScheduleInstance{
			ID:                uuid.NewString(),
			UserID:            req.UserID,
			SourceType:        item.SourceType,
			SourceID:          item.ID,
			WindowID:          p.WindowID,
			StartUTC:          p.Start.UTC(),
			EndUTC:            p.End.UTC(),
			Status:            domain.StatusScheduled,
			PracticeContextID: p.PracticeContextID,
			UpdatedAt:         req.Now.UTC(),
		})
	}
	return instances
}

// resolveOverlaps rebuilds the day timeline including the fresh placements
// and cancels the deterministic losers.
func (s *Service) resolveOverlaps(
	ctx context.Context,
	req Request,
	existing []domain.ScheduleInstance,
	existingTypes map[string]domain.HabitType,
	fresh []domain.ScheduleInstance,
	dayStart, dayEnd time.Time,
) ([]string, error) {
	all := make([]domain.ScheduleInstance, 0, len(existing)+len(fresh))
	all = append(all, existing...)
	all = append(all, fresh...)

	freshTypes, err := s.repo.HabitTypesByInstance(ctx, fresh)
	if err != nil {
		return nil, fmt.Errorf("resolve habit types for placements: %w", err)
	}
	types := make(map[string]domain.HabitType, len(existingTypes)+len(freshTypes))
	for id, t := range existingTypes {
		types[id] = t
	}
	for id, t := range freshTypes {
		types[id] = t
	}

	timeline := overlap.BuildTimeline(all, dayStart, dayEnd, types)
	losers := overlap.ResolveChain(timeline)
	if len(losers) == 0 {
		return nil, nil
	}

	invalidated := make([]string, 0, len(losers))
	for id := range losers {
		invalidated = append(invalidated, id)
	}
	sort.Strings(invalidated)

	if err := s.repo.CancelInstances(ctx, invalidated); err != nil {
		return nil, fmt.Errorf("cancel invalidated instances: %w", err)
	}

	slog.InfoContext(ctx, "overlap resolution invalidated instances",
		slog.String("user_id", req.UserID),
		slog.Int("invalidated_count", len(invalidated)),
	)
	return invalidated, nil
}

// windowBoundsOnDay mirrors the slot grid's bound resolution for sync
// pairing, clamped to the day.
func windowBoundsOnDay(win domain.Window, dayStart time.Time, loc *time.Location) (time.Time, time.Time, bool) {
	start, end, ok := slotgrid.WindowBounds(win, dayStart, loc)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	dayEnd := dayStart.Add(24 * time.Hour)
	if start.Before(dayStart) {
		start = dayStart
	}
	if end.After(dayEnd) {
		end = dayEnd
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}
