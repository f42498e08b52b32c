// Package syncpair derives the scheduled span of a SYNC habit from its
// overlap with partner instances instead of a fixed duration.
package syncpair

import (
	"sort"
	"time"
)

// Candidate is one partner interval a sync habit could pair with.
type Candidate struct {
	ID    string
	Start time.Time
	End   time.Time
}

// Pairing is the accepted contiguous run. A zero Pairing means no run
// reached the minimum duration.
type Pairing struct {
	Start     time.Time
	End       time.Time
	PairedIDs []string
}

func (p Pairing) Empty() bool {
	return p.Start.IsZero()
}

// ComputeSyncDuration scans candidates clipped to the sync window in
// chronological order, accumulating a contiguous run; touching intervals
// extend the run, a gap resets it. The first run whose span reaches
// minDuration is returned together with the ids that compose it. A
// degenerate window or no qualifying run yields a zero Pairing.
func ComputeSyncDuration(windowStart, windowEnd time.Time, minDuration time.Duration, candidates []Candidate) Pairing {
	if !windowEnd.After(windowStart) || minDuration <= 0 {
		return Pairing{}
	}

	clipped := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		start, end := c.Start, c.End
		if start.Before(windowStart) {
			start = windowStart
		}
		if end.After(windowEnd) {
			end = windowEnd
		}
		if end.After(start) {
			clipped = append(clipped, Candidate{ID: c.ID, Start: start, End: end})
		}
	}
	if len(clipped) == 0 {
		return Pairing{}
	}

	sort.SliceStable(clipped, func(i, j int) bool {
		if !clipped[i].Start.Equal(clipped[j].Start) {
			return clipped[i].Start.Before(clipped[j].Start)
		}
		return clipped[i].ID < clipped[j].ID
	})

	var (
		runStart time.Time
		runEnd   time.Time
		runIDs   []string
	)
	for _, c := range clipped {
		if runIDs == nil || c.Start.After(runEnd) {
			// Gap: start a fresh run at this candidate
			runStart, runEnd = c.Start, c.End
			runIDs = []string{c.ID}
		} else {
			if c.End.After(runEnd) {
				runEnd = c.End
			}
			runIDs = append(runIDs, c.ID)
		}
		if runEnd.Sub(runStart) >= minDuration {
			return Pairing{Start: runStart, End: runEnd, PairedIDs: runIDs}
		}
	}
	return Pairing{}
}
