package domain

import "time"

// InstanceStatus is the lifecycle state of a schedule instance.
type InstanceStatus string

const (
	StatusScheduled InstanceStatus = "scheduled"
	StatusCompleted InstanceStatus = "completed"
	StatusMissed    InstanceStatus = "missed"
	StatusCanceled  InstanceStatus = "canceled"
)

func (s InstanceStatus) String() string {
	return string(s)
}

// Terminal reports whether the status excludes the instance from further
// reconciliation.
func (s InstanceStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCanceled
}

// ScheduleInstance is a concrete occupancy of time on a user's timeline.
type ScheduleInstance struct {
	ID                string         `json:"id" gorm:"primaryKey;column:id"`
	UserID            string         `json:"user_id" gorm:"column:user_id;index"`
	SourceType        SourceType     `json:"source_type" gorm:"column:source_type"`
	SourceID          string         `json:"source_id" gorm:"column:source_id"`
	WindowID          string         `json:"window_id" gorm:"column:window_id"`
	StartUTC          time.Time      `json:"start_utc" gorm:"column:start_utc;index"`
	EndUTC            time.Time      `json:"end_utc" gorm:"column:end_utc"`
	Status            InstanceStatus `json:"status" gorm:"column:status"`
	Locked            bool           `json:"locked" gorm:"column:locked"`
	PracticeContextID string         `json:"practice_context_id,omitempty" gorm:"column:practice_context_id"`
	UpdatedAt         time.Time      `json:"updated_at" gorm:"column:updated_at"`
}

func (ScheduleInstance) TableName() string {
	return "schedule_instances"
}

// Overlaps reports whether two instances intersect as half-open intervals.
func (i *ScheduleInstance) Overlaps(other *ScheduleInstance) bool {
	return i.StartUTC.Before(other.EndUTC) && other.StartUTC.Before(i.EndUTC)
}
