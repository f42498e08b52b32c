package domain

import "time"

// SourceType identifies what kind of backlog entry an item came from.
type SourceType string

const (
	SourceHabit   SourceType = "habit"
	SourceProject SourceType = "project"
	SourceTask    SourceType = "task"
)

func (s SourceType) String() string {
	return string(s)
}

// HabitType distinguishes plain habits from synchronized ones. SYNC and
// ASYNC habits derive their span from overlap with other instances and may
// legally co-occur with each other.
type HabitType string

const (
	HabitPlain HabitType = "HABIT"
	HabitSync  HabitType = "SYNC"
	HabitAsync HabitType = "ASYNC"
)

// SyncFamily reports whether the type participates in sync pairing and is
// exempt from overlap conflicts against its own kind.
func (h HabitType) SyncFamily() bool {
	return h == HabitSync || h == HabitAsync
}

// SchedulableItem is one backlog entry awaiting placement. Weight is
// precomputed upstream; the placement engine only orders by it.
type SchedulableItem struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	SourceType  SourceType `json:"source_type"`
	Title       string     `json:"title"`
	Energy      Energy     `json:"energy"`
	DurationMin int        `json:"duration_min"`
	Weight      float64    `json:"weight"`
	HabitType   HabitType  `json:"habit_type,omitempty"`
	WindowID    string     `json:"window_id,omitempty"`
	IsPractice  bool       `json:"is_practice,omitempty"`
}

// Placement is a successful assignment of an item to a span inside a window.
type Placement struct {
	ItemID            string    `json:"item_id"`
	WindowID          string    `json:"window_id"`
	Start             time.Time `json:"start"`
	End               time.Time `json:"end"`
	PracticeContextID string    `json:"practice_context_id,omitempty"`
	PairedInstanceIDs []string  `json:"paired_instance_ids,omitempty"`
}

// UnplacedReason explains why an item could not be placed.
type UnplacedReason string

const (
	// ReasonNoWindow means no window qualifies for the item's energy level,
	// or the item's energy is unschedulable.
	ReasonNoWindow UnplacedReason = "no-window"
	// ReasonNoSlot means qualifying windows exist but none has a contiguous
	// free run long enough.
	ReasonNoSlot UnplacedReason = "no-slot"
)

// UnplacedItem is a placement failure. It is an output of a run, never an
// error.
type UnplacedItem struct {
	ItemID string         `json:"item_id"`
	Reason UnplacedReason `json:"reason"`
}
