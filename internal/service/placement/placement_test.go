package placement

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/tidemark-app/tidemark-scheduling/internal/domain"
)

var testDate = time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

func TestEngine_Place_LowestSufficientWindowPreferred(t *testing.T) {
	windows := []domain.Window{
		{ID: "w-low", Energy: domain.EnergyLow, StartLocal: "09:00", EndLocal: "10:00"},
		{ID: "w-high", Energy: domain.EnergyHigh, StartLocal: "10:00", EndLocal: "11:00"},
	}
	items := []domain.SchedulableItem{
		{ID: "task-high", Energy: domain.EnergyHigh, DurationMin: 45, Weight: 1},
		{ID: "task-low", Energy: domain.EnergyLow, DurationMin: 30, Weight: 1},
	}

	engine := NewEngine(5)
	result := engine.Place(context.Background(), items, windows, testDate, time.UTC)

	if len(result.Unplaced) != 0 {
		t.Fatalf("Place() unplaced = %v, want none", result.Unplaced)
	}
	if len(result.Placements) != 2 {
		t.Fatalf("Place() placements = %d, want 2", len(result.Placements))
	}

	byItem := make(map[string]domain.Placement)
	for _, p := range result.Placements {
		byItem[p.ItemID] = p
	}
	if got := byItem["task-high"].WindowID; got != "w-high" {
		t.Errorf("Place() task-high window = %q, want %q", got, "w-high")
	}
	if got := byItem["task-low"].WindowID; got != "w-low" {
		t.Errorf("Place() task-low window = %q, want %q", got, "w-low")
	}
}

func TestEngine_Place_Conservation(t *testing.T) {
	windows := []domain.Window{
		{ID: "w1", Energy: domain.EnergyMedium, StartLocal: "09:00", EndLocal: "12:00"},
	}
	items := []domain.SchedulableItem{
		{ID: "a", Energy: domain.EnergyMedium, DurationMin: 45, Weight: 3},
		{ID: "b", Energy: domain.EnergyLow, DurationMin: 30, Weight: 2},
		{ID: "c", Energy: domain.EnergyLow, DurationMin: 25, Weight: 1},
	}

	engine := NewEngine(5)
	result := engine.Place(context.Background(), items, windows, testDate, time.UTC)

	if len(result.Placements) != 3 {
		t.Fatalf("Place() placements = %d, want 3", len(result.Placements))
	}
	durations := map[string]int{"a": 45, "b": 30, "c": 25}
	for _, p := range result.Placements {
		want := time.Duration(durations[p.ItemID]) * time.Minute
		if got := p.End.Sub(p.Start); got != want {
			t.Errorf("Place() %s span = %v, want %v", p.ItemID, got, want)
		}
	}
	// No two placements in the same window may overlap
	for i := range result.Placements {
		for j := i + 1; j < len(result.Placements); j++ {
			a, b := result.Placements[i], result.Placements[j]
			if a.WindowID != b.WindowID {
				continue
			}
			if a.Start.Before(b.End) && b.Start.Before(a.End) {
				t.Errorf("Place() placements %s and %s overlap: [%v,%v) vs [%v,%v)",
					a.ItemID, b.ItemID, a.Start, a.End, b.Start, b.End)
			}
		}
	}
}

func TestEngine_Place_Exhaustiveness(t *testing.T) {
	windows := []domain.Window{
		{ID: "w1", Energy: domain.EnergyLow, StartLocal: "09:00", EndLocal: "09:30"},
	}
	items := []domain.SchedulableItem{
		{ID: "fits", Energy: domain.EnergyLow, DurationMin: 30, Weight: 2},
		{ID: "too-long", Energy: domain.EnergyLow, DurationMin: 60, Weight: 1},
		{ID: "too-demanding", Energy: domain.EnergyHigh, DurationMin: 15, Weight: 1},
		{ID: "unknown-energy", Energy: domain.EnergyUnschedulable, DurationMin: 15, Weight: 1},
	}

	engine := NewEngine(5)
	result := engine.Place(context.Background(), items, windows, testDate, time.UTC)

	seen := make(map[string]int)
	for _, p := range result.Placements {
		seen[p.ItemID]++
	}
	for _, u := range result.Unplaced {
		seen[u.ItemID]++
	}
	for _, item := range items {
		if seen[item.ID] != 1 {
			t.Errorf("Place() item %s appeared %d times across outputs, want 1", item.ID, seen[item.ID])
		}
	}

	reasons := make(map[string]domain.UnplacedReason)
	for _, u := range result.Unplaced {
		reasons[u.ItemID] = u.Reason
	}
	if reasons["too-long"] != domain.ReasonNoSlot {
		t.Errorf("Place() too-long reason = %q, want %q", reasons["too-long"], domain.ReasonNoSlot)
	}
	if reasons["too-demanding"] != domain.ReasonNoWindow {
		t.Errorf("Place() too-demanding reason = %q, want %q", reasons["too-demanding"], domain.ReasonNoWindow)
	}
	if reasons["unknown-energy"] != domain.ReasonNoWindow {
		t.Errorf("Place() unknown-energy reason = %q, want %q", reasons["unknown-energy"], domain.ReasonNoWindow)
	}
}

func TestEngine_Place_Deterministic(t *testing.T) {
	windows := []domain.Window{
		{ID: "w2", Energy: domain.EnergyHigh, StartLocal: "10:00", EndLocal: "12:00"},
		{ID: "w1", Energy: domain.EnergyMedium, StartLocal: "09:00", EndLocal: "11:00"},
	}
	items := []domain.SchedulableItem{
		{ID: "b", Energy: domain.EnergyMedium, DurationMin: 30, Weight: 2},
		{ID: "a", Energy: domain.EnergyMedium, DurationMin: 30, Weight: 2},
		{ID: "c", Energy: domain.EnergyHigh, DurationMin: 60, Weight: 1},
	}

	engine := NewEngine(5)
	first := engine.Place(context.Background(), items, windows, testDate, time.UTC)
	second := engine.Place(context.Background(), items, windows, testDate, time.UTC)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Place() not deterministic:\nfirst  = %+v\nsecond = %+v", first, second)
	}
}

func TestEngine_Place_EqualWeightTieBreaksByID(t *testing.T) {
	windows := []domain.Window{
		{ID: "w1", Energy: domain.EnergyLow, StartLocal: "09:00", EndLocal: "09:30"},
	}
	// Only one of the two fits; the lexicographically smaller id wins the tie.
	items := []domain.SchedulableItem{
		{ID: "beta", Energy: domain.EnergyLow, DurationMin: 30, Weight: 1},
		{ID: "alpha", Energy: domain.EnergyLow, DurationMin: 30, Weight: 1},
	}

	engine := NewEngine(5)
	result := engine.Place(context.Background(), items, windows, testDate, time.UTC)

	if len(result.Placements) != 1 || result.Placements[0].ItemID != "alpha" {
		t.Fatalf("Place() placements = %+v, want alpha placed", result.Placements)
	}
	if len(result.Unplaced) != 1 || result.Unplaced[0].ItemID != "beta" {
		t.Fatalf("Place() unplaced = %+v, want beta unplaced", result.Unplaced)
	}
}

func TestEngine_Place_PartialSlotResumesWherePreviousEnded(t *testing.T) {
	windows := []domain.Window{
		{ID: "w1", Energy: domain.EnergyLow, StartLocal: "09:00", EndLocal: "10:00"},
	}
	items := []domain.SchedulableItem{
		{ID: "first", Energy: domain.EnergyLow, DurationMin: 17, Weight: 2},
		{ID: "second", Energy: domain.EnergyLow, DurationMin: 13, Weight: 1},
	}

	engine := NewEngine(5)
	result := engine.Place(context.Background(), items, windows, testDate, time.UTC)

	if len(result.Placements) != 2 {
		t.Fatalf("Place() placements = %d, want 2", len(result.Placements))
	}
	byItem := make(map[string]domain.Placement)
	for _, p := range result.Placements {
		byItem[p.ItemID] = p
	}
	if !byItem["second"].Start.Equal(byItem["first"].End) {
		t.Errorf("Place() second start = %v, want %v", byItem["second"].Start, byItem["first"].End)
	}
}

func TestEngine_Place_PinnedWindowOnly(t *testing.T) {
	windows := []domain.Window{
		{ID: "w1", Energy: domain.EnergyHigh, StartLocal: "09:00", EndLocal: "10:00"},
		{ID: "w2", Energy: domain.EnergyHigh, StartLocal: "10:00", EndLocal: "11:00"},
	}
	items := []domain.SchedulableItem{
		{ID: "pinned", Energy: domain.EnergyLow, DurationMin: 30, Weight: 1, WindowID: "w2"},
	}

	engine := NewEngine(5)
	result := engine.Place(context.Background(), items, windows, testDate, time.UTC)

	if len(result.Placements) != 1 {
		t.Fatalf("Place() placements = %d, want 1", len(result.Placements))
	}
	if got := result.Placements[0].WindowID; got != "w2" {
		t.Errorf("Place() window = %q, want %q", got, "w2")
	}
}

func TestEngine_Place_NoWindows(t *testing.T) {
	items := []domain.SchedulableItem{
		{ID: "a", Energy: domain.EnergyLow, DurationMin: 30, Weight: 1},
	}

	engine := NewEngine(5)
	result := engine.Place(context.Background(), items, nil, testDate, time.UTC)

	if len(result.Unplaced) != 1 || result.Unplaced[0].Reason != domain.ReasonNoWindow {
		t.Fatalf("Place() unplaced = %+v, want one no-window entry", result.Unplaced)
	}
}
