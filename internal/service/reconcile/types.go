package reconcile

import (
	"time"

	"github.com/tidemark-app/tidemark-scheduling/internal/domain"
)

// Request describes one reconciliation run. Now is the caller-supplied
// reference instant; Location is the user's timezone and must be explicit.
type Request struct {
	UserID   string
	Now      time.Time
	Location *time.Location
	RunID    string
}

// Result is the outcome of one reconciliation run.
type Result struct {
	RunID          string                `json:"run_id"`
	Day            time.Time             `json:"day"`
	Placements     []domain.Placement    `json:"placements"`
	Unplaced       []domain.UnplacedItem `json:"unplaced"`
	MissedIDs      []string              `json:"missed_ids"`
	InvalidatedIDs []string              `json:"invalidated_ids"`
}
