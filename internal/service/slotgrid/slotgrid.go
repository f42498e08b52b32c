// Package slotgrid expands availability windows into fixed-size slot grids
// for a concrete day.
package slotgrid

import (
	"strconv"
	"strings"
	"time"

	"github.com/tidemark-app/tidemark-scheduling/internal/domain"
)

// DefaultSlotMinutes is the grid granularity used by the placement engine.
const DefaultSlotMinutes = 5

// WindowBounds resolves the concrete start and end instants of a window on
// the given day in the given location. Windows flagged FromPrevDay are
// anchored to the previous calendar day; an end at or before the start means
// the window crosses midnight and the end rolls forward 24 hours. Malformed
// clock strings yield ok=false.
func WindowBounds(win domain.Window, date time.Time, loc *time.Location) (start, end time.Time, ok bool) {
	startMin, ok := parseClock(win.StartLocal)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	endMin, ok := parseClock(win.EndLocal)
	if !ok {
		return time.Time{}, time.Time{}, false
	}

	anchor := date.In(loc)
	y, m, d := anchor.Date()
	if win.FromPrevDay {
		anchor = time.Date(y, m, d, 0, 0, 0, 0, loc).AddDate(0, 0, -1)
		y, m, d = anchor.Date()
	}

	start = time.Date(y, m, d, 0, startMin, 0, 0, loc)
	end = time.Date(y, m, d, 0, endMin, 0, 0, loc)
	if !end.After(start) {
		end = end.Add(24 * time.Hour)
	}
	return start, end, true
}

// Generate produces the slot grid of a window for the given day. The
// resolved span is clamped to the day itself, and only whole slots are
// emitted. A malformed window or a span clamped to nothing yields an empty
// grid rather than an error; one bad window must not abort a run.
func Generate(win domain.Window, date time.Time, loc *time.Location, slotMinutes int) []domain.Slot {
	if slotMinutes <= 0 {
		slotMinutes = DefaultSlotMinutes
	}

	start, end, ok := WindowBounds(win, date, loc)
	if !ok {
		return nil
	}

	y, m, d := date.In(loc).Date()
	dayStart := time.Date(y, m, d, 0, 0, 0, 0, loc)
	dayEnd := dayStart.Add(24 * time.Hour)

	if start.Before(dayStart) {
		start = dayStart
	}
	if end.After(dayEnd) {
		end = dayEnd
	}
	if !end.After(start) {
		return nil
	}

	slotSize := time.Duration(slotMinutes) * time.Minute
	slots := make([]domain.Slot, 0, int(end.Sub(start)/slotSize))
	for idx, cursor := 0, start; !cursor.Add(slotSize).After(end); idx, cursor = idx+1, cursor.Add(slotSize) {
		slots = append(slots, domain.Slot{
			WindowID: win.ID,
			Index:    idx,
			Start:    cursor,
			FreeMin:  slotMinutes,
		})
	}
	return slots
}

// parseClock converts a "HH:MM" wall clock string into minutes past
// midnight.
func parseClock(s string) (int, bool) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, false
	}
	hh, err := strconv.Atoi(parts[0])
	if err != nil || hh < 0 || hh > 23 {
		return 0, false
	}
	mm, err := strconv.Atoi(parts[1])
	if err != nil || mm < 0 || mm > 59 {
		return 0, false
	}
	return hh*60 + mm, true
}
