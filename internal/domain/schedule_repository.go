package domain

import (
	"context"
	"time"
)

// ScheduleRepository is the persistence port for the reconciliation run.
type ScheduleRepository interface {
	// MarkMissedBefore flips scheduled, non-locked instances whose start is
	// strictly before cutoff to missed and returns the affected ids.
	MarkMissedBefore(ctx context.Context, userID string, cutoff time.Time) ([]string, error)

	// ListWindows returns the user's declared availability windows.
	ListWindows(ctx context.Context, userID string) ([]Window, error)

	// ListBacklog returns due, non-locked, non-terminal items for the given
	// day ordered by weight descending.
	ListBacklog(ctx context.Context, userID string, day time.Time) ([]SchedulableItem, error)

	// ListInstancesInRange returns non-canceled instances intersecting
	// [start, end).
	ListInstancesInRange(ctx context.Context, userID string, start, end time.Time) ([]ScheduleInstance, error)

	// SaveInstances persists newly placed instances.
	SaveInstances(ctx context.Context, instances []ScheduleInstance) error

	// CancelInstances marks the given instances canceled.
	CancelInstances(ctx context.Context, ids []string) error

	// HabitTypesByInstance maps instance ids to the habit type of their
	// source habit; non-habit instances map to the empty type.
	HabitTypesByInstance(ctx context.Context, instances []ScheduleInstance) (map[string]HabitType, error)

	// GetHabit loads a habit or returns ErrHabitNotFound.
	GetHabit(ctx context.Context, habitID string) (*Habit, error)

	// ListCompletions returns all completions for a habit.
	ListCompletions(ctx context.Context, habitID string) ([]HabitCompletion, error)

	// UpdateHabitStreak writes computed streak metrics back to the habit.
	UpdateHabitStreak(ctx context.Context, habitID string, metrics StreakMetrics) error

	// ListPracticeContexts returns practice context candidates for a habit.
	ListPracticeContexts(ctx context.Context, habitID string) ([]PracticeContext, error)
}
