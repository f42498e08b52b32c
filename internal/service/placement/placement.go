// Package placement implements the deterministic greedy scheduler that
// assigns backlog items to window slot grids by energy and weight.
package placement

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/tidemark-app/tidemark-scheduling/internal/domain"
	"github.com/tidemark-app/tidemark-scheduling/internal/service/slotgrid"
)

// Result carries the outcome of one placement pass. Every input item
// appears in exactly one of the two lists.
type Result struct {
	Placements []domain.Placement
	Unplaced   []domain.UnplacedItem
}

// Engine places items into window slot grids. Slot state lives only for
// the duration of a single Place call.
type Engine struct {
	slotMinutes int
}

func NewEngine(slotMinutes int) *Engine {
	if slotMinutes <= 0 {
		slotMinutes = slotgrid.DefaultSlotMinutes
	}
	return &Engine{slotMinutes: slotMinutes}
}

// candidate is a window with its materialized grid for the day.
type candidate struct {
	window domain.Window
	start  time.Time
	slots  []domain.Slot
}

// Place runs the greedy energy/weight pass for one day. Items are consumed
// in (energy desc, weight desc, id asc) order; each item takes the first
// contiguous free run in the lowest-energy window that can host it.
func (e *Engine) Place(ctx context.Context, items []domain.SchedulableItem, windows []domain.Window, date time.Time, loc *time.Location) Result {
	candidates := e.buildCandidates(windows, date, loc)

	ordered := make([]domain.SchedulableItem, len(items))
	copy(ordered, items)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Energy != ordered[j].Energy {
			return ordered[i].Energy > ordered[j].Energy
		}
		if ordered[i].Weight != ordered[j].Weight {
			return ordered[i].Weight > ordered[j].Weight
		}
		return ordered[i].ID < ordered[j].ID
	})

	result := Result{
		Placements: make([]domain.Placement, 0, len(ordered)),
		Unplaced:   make([]domain.UnplacedItem, 0),
	}

	for _, item := range ordered {
		placement, reason := e.placeOne(item, candidates)
		if reason != "" {
			slog.DebugContext(ctx, "item not placed",
				slog.String("item_id", item.ID),
				slog.String("reason", string(reason)),
			)
			result.Unplaced = append(result.Unplaced, domain.UnplacedItem{ItemID: item.ID, Reason: reason})
			continue
		}
		result.Placements = append(result.Placements, placement)
	}
	return result
}

// buildCandidates materializes a fresh slot grid per window. Grids are
// never shared across Place calls, so a run always starts from clean
// occupancy.
func (e *Engine) buildCandidates(windows []domain.Window, date time.Time, loc *time.Location) []*candidate {
	candidates := make([]*candidate, 0, len(windows))
	for _, win := range windows {
		slots := slotgrid.Generate(win, date, loc, e.slotMinutes)
		if len(slots) == 0 {
			continue
		}
		candidates = append(candidates, &candidate{
			window: win,
			start:  slots[0].Start,
			slots:  slots,
		})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if !candidates[i].start.Equal(candidates[j].start) {
			return candidates[i].start.Before(candidates[j].start)
		}
		return candidates[i].window.ID < candidates[j].window.ID
	})
	return candidates
}

func (e *Engine) placeOne(item domain.SchedulableItem, candidates []*candidate) (domain.Placement, domain.UnplacedReason) {
	if !item.Energy.Schedulable() || item.DurationMin <= 0 {
		return domain.Placement{}, domain.ReasonNoWindow
	}

	eligible := make([]*candidate, 0, len(candidates))
	for _, c := range candidates {
		if item.WindowID != "" && c.window.ID != item.WindowID {
			continue
		}
		if c.window.Energy.CanHost(item.Energy) {
			eligible = append(eligible, c)
		}
	}
	if len(eligible) == 0 {
		return domain.Placement{}, domain.ReasonNoWindow
	}

	// Prefer the lowest-energy window that can host the item, so high-energy
	// capacity stays available for demanding work.
	sort.SliceStable(eligible, func(i, j int) bool {
		if eligible[i].window.Energy != eligible[j].window.Energy {
			return eligible[i].window.Energy < eligible[j].window.Energy
		}
		if !eligible[i].start.Equal(eligible[j].start) {
			return eligible[i].start.Before(eligible[j].start)
		}
		return eligible[i].window.ID < eligible[j].window.ID
	})

	for _, c := range eligible {
		if idx, ok := findFirstFit(c.slots, item.DurationMin); ok {
			start := c.slots[idx].Start.Add(time.Duration(e.slotMinutes-c.slots[idx].FreeMin) * time.Minute)
			consume(c.slots, idx, item.DurationMin)
			return domain.Placement{
				ItemID:   item.ID,
				WindowID: c.window.ID,
				Start:    start,
				End:      start.Add(time.Duration(item.DurationMin) * time.Minute),
			}, ""
		}
	}
	return domain.Placement{}, domain.ReasonNoSlot
}

// findFirstFit scans for the first slot index from which a contiguous run
// of free minutes reaches durationMin. A fully drained slot breaks the run.
// Consumption always drains runs front to back, so the free remainder of a
// partially drained slot sits at its tail and only ever heads a run.
func findFirstFit(slots []domain.Slot, durationMin int) (int, bool) {
	for i := range slots {
		free := 0
		for j := i; j < len(slots); j++ {
			if slots[j].FreeMin == 0 {
				break
			}
			free += slots[j].FreeMin
			if free >= durationMin {
				return i, true
			}
		}
	}
	return 0, false
}

// consume drains durationMin minutes from the run starting at idx.
func consume(slots []domain.Slot, idx, durationMin int) {
	remaining := durationMin
	for j := idx; j < len(slots) && remaining > 0; j++ {
		take := slots[j].FreeMin
		if take > remaining {
			take = remaining
		}
		slots[j].FreeMin -= take
		remaining -= take
	}
}
