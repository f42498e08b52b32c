package domain

import "time"

// Window is a declared availability window. Start and End are local wall
// clock values in "HH:MM" form; the concrete instants on a given day are
// resolved by the slot grid using the caller's location.
type Window struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	Label       string `json:"label"`
	Energy      Energy `json:"energy"`
	StartLocal  string `json:"start_local"`
	EndLocal    string `json:"end_local"`
	FromPrevDay bool   `json:"from_prev_day"`
}

// Slot is one fixed-size cell of a window's grid for a concrete day.
// FreeMin counts the remaining unconsumed minutes within the slot.
type Slot struct {
	WindowID string
	Index    int
	Start    time.Time
	FreeMin  int
}
