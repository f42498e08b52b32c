package domain

import "time"

// Habit is the slice of a habit record the engine needs for streaks and
// sync pairing.
type Habit struct {
	ID              string     `json:"id" gorm:"primaryKey;column:id"`
	UserID          string     `json:"user_id" gorm:"column:user_id;index"`
	Type            HabitType  `json:"type" gorm:"column:type"`
	Recurrence      string     `json:"recurrence" gorm:"column:recurrence"`
	RecurrenceDays  []int      `json:"recurrence_days,omitempty" gorm:"serializer:json;column:recurrence_days"`
	MinDurationMin  int        `json:"min_duration_min" gorm:"column:min_duration_min"`
	CurrentStreak   int        `json:"current_streak" gorm:"column:current_streak"`
	LongestStreak   int        `json:"longest_streak" gorm:"column:longest_streak"`
	LastCompletedAt *time.Time `json:"last_completed_at,omitempty" gorm:"column:last_completed_at"`
}

func (Habit) TableName() string {
	return "habits"
}

// HabitCompletion is one recorded completion. CompletedAt may be absent for
// rows written before instants were tracked; CompletionDay (a "YYYY-MM-DD"
// date) is the fallback, interpreted as midnight UTC.
type HabitCompletion struct {
	ID            string     `json:"id" gorm:"primaryKey;column:id"`
	HabitID       string     `json:"habit_id" gorm:"column:habit_id;index"`
	CompletedAt   *time.Time `json:"completed_at,omitempty" gorm:"column:completed_at"`
	CompletionDay string     `json:"completion_day" gorm:"column:completion_day"`
}

func (HabitCompletion) TableName() string {
	return "habit_completions"
}

// StreakMetrics is the outcome of a streak computation.
type StreakMetrics struct {
	Current         int        `json:"current"`
	Longest         int        `json:"longest"`
	LastCompletedAt *time.Time `json:"last_completed_at,omitempty"`
}
