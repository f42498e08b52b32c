package slotgrid

import (
	"testing"
	"time"

	"github.com/tidemark-app/tidemark-scheduling/internal/domain"
)

func mustLoc(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Fatalf("LoadLocation(%q) error = %v", name, err)
	}
	return loc
}

func TestGenerate_FillsWholeSlots(t *testing.T) {
	loc := time.UTC
	date := time.Date(2024, 3, 10, 0, 0, 0, 0, loc)
	win := domain.Window{ID: "w1", StartLocal: "09:00", EndLocal: "10:02"}

	slots := Generate(win, date, loc, 5)

	// 62 minutes hold twelve whole 5-minute slots
	if len(slots) != 12 {
		t.Fatalf("Generate() len = %d, want 12", len(slots))
	}
	wantStart := time.Date(2024, 3, 10, 9, 0, 0, 0, loc)
	if !slots[0].Start.Equal(wantStart) {
		t.Errorf("Generate() first start = %v, want %v", slots[0].Start, wantStart)
	}
	wantLast := time.Date(2024, 3, 10, 9, 55, 0, 0, loc)
	if !slots[11].Start.Equal(wantLast) {
		t.Errorf("Generate() last start = %v, want %v", slots[11].Start, wantLast)
	}
	for i, s := range slots {
		if s.FreeMin != 5 {
			t.Errorf("Generate() slot %d FreeMin = %d, want 5", i, s.FreeMin)
		}
		if s.WindowID != "w1" {
			t.Errorf("Generate() slot %d WindowID = %q, want %q", i, s.WindowID, "w1")
		}
		if s.Index != i {
			t.Errorf("Generate() slot %d Index = %d", i, s.Index)
		}
	}
}

func TestGenerate_MidnightCrossingClampsToDay(t *testing.T) {
	loc := time.UTC
	date := time.Date(2024, 3, 10, 0, 0, 0, 0, loc)
	win := domain.Window{ID: "w1", StartLocal: "22:00", EndLocal: "02:00"}

	slots := Generate(win, date, loc, 5)

	// End rolls to next-day 02:00 and is clamped at midnight, leaving 22:00-24:00
	if len(slots) != 24 {
		t.Fatalf("Generate() len = %d, want 24", len(slots))
	}
	wantStart := time.Date(2024, 3, 10, 22, 0, 0, 0, loc)
	if !slots[0].Start.Equal(wantStart) {
		t.Errorf("Generate() first start = %v, want %v", slots[0].Start, wantStart)
	}
	wantLast := time.Date(2024, 3, 10, 23, 55, 0, 0, loc)
	if !slots[len(slots)-1].Start.Equal(wantLast) {
		t.Errorf("Generate() last start = %v, want %v", slots[len(slots)-1].Start, wantLast)
	}
}

func TestGenerate_FromPrevDayKeepsMorningTail(t *testing.T) {
	loc := time.UTC
	date := time.Date(2024, 3, 10, 0, 0, 0, 0, loc)
	win := domain.Window{ID: "w1", StartLocal: "22:00", EndLocal: "06:00", FromPrevDay: true}

	slots := Generate(win, date, loc, 5)

	// Anchored to 2024-03-09 22:00, crossing into the 10th; clamp keeps 00:00-06:00
	if len(slots) != 72 {
		t.Fatalf("Generate() len = %d, want 72", len(slots))
	}
	wantStart := time.Date(2024, 3, 10, 0, 0, 0, 0, loc)
	if !slots[0].Start.Equal(wantStart) {
		t.Errorf("Generate() first start = %v, want %v", slots[0].Start, wantStart)
	}
	wantLast := time.Date(2024, 3, 10, 5, 55, 0, 0, loc)
	if !slots[len(slots)-1].Start.Equal(wantLast) {
		t.Errorf("Generate() last start = %v, want %v", slots[len(slots)-1].Start, wantLast)
	}
}

func TestGenerate_FromPrevDayFullyBeforeDayIsEmpty(t *testing.T) {
	loc := time.UTC
	date := time.Date(2024, 3, 10, 0, 0, 0, 0, loc)
	win := domain.Window{ID: "w1", StartLocal: "08:00", EndLocal: "12:00", FromPrevDay: true}

	if slots := Generate(win, date, loc, 5); len(slots) != 0 {
		t.Errorf("Generate() len = %d, want 0", len(slots))
	}
}

func TestGenerate_MalformedClockYieldsEmpty(t *testing.T) {
	loc := time.UTC
	date := time.Date(2024, 3, 10, 0, 0, 0, 0, loc)

	cases := []struct {
		name       string
		start, end string
	}{
		{"garbage start", "9am", "10:00"},
		{"missing colon", "0900", "10:00"},
		{"hour out of range", "25:00", "26:00"},
		{"minute out of range", "09:61", "10:00"},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			win := domain.Window{ID: "w1", StartLocal: tc.start, EndLocal: tc.end}
			if slots := Generate(win, date, loc, 5); len(slots) != 0 {
				t.Errorf("Generate() len = %d, want 0", len(slots))
			}
		})
	}
}

func TestGenerate_LocalWallClockInNonUTCZone(t *testing.T) {
	loc := mustLoc(t, "America/New_York")
	date := time.Date(2024, 3, 12, 0, 0, 0, 0, loc)
	win := domain.Window{ID: "w1", StartLocal: "09:00", EndLocal: "09:30"}

	slots := Generate(win, date, loc, 5)

	if len(slots) != 6 {
		t.Fatalf("Generate() len = %d, want 6", len(slots))
	}
	// 09:00 local is 13:00 UTC under EDT
	wantUTC := time.Date(2024, 3, 12, 13, 0, 0, 0, time.UTC)
	if !slots[0].Start.Equal(wantUTC) {
		t.Errorf("Generate() first start = %v, want instant %v", slots[0].Start, wantUTC)
	}
}

func TestWindowBounds_EndBeforeStartRollsForward(t *testing.T) {
	loc := time.UTC
	date := time.Date(2024, 3, 10, 0, 0, 0, 0, loc)
	win := domain.Window{ID: "w1", StartLocal: "23:00", EndLocal: "23:00"}

	start, end, ok := WindowBounds(win, date, loc)
	if !ok {
		t.Fatal("WindowBounds() ok = false, want true")
	}
	if got := end.Sub(start); got != 24*time.Hour {
		t.Errorf("WindowBounds() span = %v, want 24h", got)
	}
}
