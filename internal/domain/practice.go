package domain

import "time"

// PracticeContext is one candidate context for a practice habit session,
// e.g. a piece, exercise, or project the session could focus on.
type PracticeContext struct {
	ID            string     `json:"id" gorm:"primaryKey;column:id"`
	HabitID       string     `json:"habit_id" gorm:"column:habit_id;index"`
	EventCount    int        `json:"event_count" gorm:"column:event_count"`
	LastPracticed *time.Time `json:"last_practiced,omitempty" gorm:"column:last_practiced"`
	Actionable    bool       `json:"actionable" gorm:"column:actionable"`
}

func (PracticeContext) TableName() string {
	return "practice_contexts"
}
