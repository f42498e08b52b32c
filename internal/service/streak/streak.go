// Package streak computes consecutive-completion streaks for habits from
// their completion history and recurrence rule.
package streak

import (
	"sort"
	"time"

	"github.com/tidemark-app/tidemark-scheduling/internal/domain"
)

// graceWindow extends each expected interval; a completion landing slightly
// late still continues the streak.
const graceWindow = 12 * time.Hour

// Compute walks the habit's completion history chronologically and returns
// the current and longest streaks. A streak continues while the gap between
// consecutive completions stays within the recurrence interval plus the
// grace window. Zero completions yields zero metrics.
func Compute(rows []domain.HabitCompletion, recurrence string, recurrenceDays []int) domain.StreakMetrics {
	instants := completionInstants(rows)
	if len(instants) == 0 {
		return domain.StreakMetrics{}
	}

	current, longest := 1, 1
	for i := 1; i < len(instants); i++ {
		prev, cur := instants[i-1], instants[i]
		if cur.Equal(prev) {
			// Duplicate records of the same completion
			continue
		}
		deadline := nextDeadline(prev, recurrence, recurrenceDays).Add(graceWindow)
		if cur.After(deadline) {
			current = 1
		} else {
			current++
		}
		if current > longest {
			longest = current
		}
	}

	last := instants[len(instants)-1]
	return domain.StreakMetrics{
		Current:         current,
		Longest:         longest,
		LastCompletedAt: &last,
	}
}

// completionInstants derives sorted completion instants: the explicit
// timestamp when present, otherwise midnight UTC of the completion day.
// Rows with neither are skipped.
func completionInstants(rows []domain.HabitCompletion) []time.Time {
	instants := make([]time.Time, 0, len(rows))
	for _, row := range rows {
		if row.CompletedAt != nil && !row.CompletedAt.IsZero() {
			instants = append(instants, row.CompletedAt.UTC())
			continue
		}
		if row.CompletionDay == "" {
			continue
		}
		day, err := time.ParseInLocation("2006-01-02", row.CompletionDay, time.UTC)
		if err != nil {
			continue
		}
		instants = append(instants, day)
	}
	sort.Slice(instants, func(i, j int) bool {
		return instants[i].Before(instants[j])
	})
	return instants
}
