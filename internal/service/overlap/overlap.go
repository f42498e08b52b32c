// Package overlap builds a day timeline from schedule instances, detects
// illegal overlaps, and resolves conflict chains deterministically.
package overlap

import (
	"sort"
	"time"

	"github.com/tidemark-app/tidemark-scheduling/internal/domain"
)

// Entry is one timeline element: an instance tagged with the habit type of
// its source habit, or the empty type for non-habit instances.
type Entry struct {
	Instance  domain.ScheduleInstance
	HabitType domain.HabitType
}

// hardBlocker reports whether the entry occupies its span exclusively.
// Everything outside the SYNC/ASYNC family blocks.
func (e Entry) hardBlocker() bool {
	return !e.HabitType.SyncFamily()
}

// Pair is one illegal overlap between two timeline entries. A precedes B in
// timeline order.
type Pair struct {
	A Entry
	B Entry
}

// BuildTimeline returns the non-canceled instances intersecting
// [rangeStart, rangeEnd), each tagged via habitTypes, ordered by start then
// id.
func BuildTimeline(instances []domain.ScheduleInstance, rangeStart, rangeEnd time.Time, habitTypes map[string]domain.HabitType) []Entry {
	timeline := make([]Entry, 0, len(instances))
	for _, inst := range instances {
		if inst.Status == domain.StatusCanceled {
			continue
		}
		if !inst.StartUTC.Before(rangeEnd) || !inst.EndUTC.After(rangeStart) {
			continue
		}
		timeline = append(timeline, Entry{
			Instance:  inst,
			HabitType: habitTypes[inst.ID],
		})
	}
	sort.SliceStable(timeline, func(i, j int) bool {
		if !timeline[i].Instance.StartUTC.Equal(timeline[j].Instance.StartUTC) {
			return timeline[i].Instance.StartUTC.Before(timeline[j].Instance.StartUTC)
		}
		return timeline[i].Instance.ID < timeline[j].Instance.ID
	})
	return timeline
}

// DetectIllegalOverlaps returns every conflicting pair in the timeline.
// SYNC/ASYNC entries may co-occur with each other; any other intersecting
// pair is illegal. Pairs come out ordered by the earlier entry's position.
func DetectIllegalOverlaps(timeline []Entry) []Pair {
	var pairs []Pair
	for i := 0; i < len(timeline); i++ {
		for j := i + 1; j < len(timeline); j++ {
			if !timeline[j].Instance.StartUTC.Before(timeline[i].Instance.EndUTC) {
				break
			}
			if !timeline[i].hardBlocker() && !timeline[j].hardBlocker() {
				continue
			}
			pairs = append(pairs, Pair{A: timeline[i], B: timeline[j]})
		}
	}
	return pairs
}

// ResolveChain removes losers one at a time until no illegal overlap
// remains among the survivors, and returns the removed instance ids.
// Removing a loser can dissolve secondary conflicts, so each round
// re-detects before choosing the next loser. Losers are reported, never
// mutated here.
func ResolveChain(timeline []Entry) map[string]struct{} {
	losers := make(map[string]struct{})
	survivors := make([]Entry, len(timeline))
	copy(survivors, timeline)

	for {
		pairs := DetectIllegalOverlaps(survivors)
		if len(pairs) == 0 {
			return losers
		}

		loserID := chooseLoser(pairs[0])
		losers[loserID] = struct{}{}

		next := survivors[:0]
		for _, e := range survivors {
			if e.Instance.ID != loserID {
				next = append(next, e)
			}
		}
		survivors = next
	}
}

// chooseLoser applies the deterministic loser rules to one conflicting
// pair: a SYNC/ASYNC entry always yields to a hard blocker; a locked
// instance never loses to an unlocked one; otherwise the earlier-updated
// instance loses, with the larger id losing on an exact tie.
func chooseLoser(p Pair) string {
	a, b := p.A, p.B

	if !a.hardBlocker() && b.hardBlocker() {
		return a.Instance.ID
	}
	if a.hardBlocker() && !b.hardBlocker() {
		return b.Instance.ID
	}

	if a.Instance.Locked != b.Instance.Locked {
		if a.Instance.Locked {
			return b.Instance.ID
		}
		return a.Instance.ID
	}

	if !a.Instance.UpdatedAt.Equal(b.Instance.UpdatedAt) {
		if a.Instance.UpdatedAt.Before(b.Instance.UpdatedAt) {
			return a.Instance.ID
		}
		return b.Instance.ID
	}

	if a.Instance.ID > b.Instance.ID {
		return a.Instance.ID
	}
	return b.Instance.ID
}
