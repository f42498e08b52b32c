package overlap

import (
	"testing"
	"time"

	"github.com/tidemark-app/tidemark-scheduling/internal/domain"
)

func at(h, m int) time.Time {
	return time.Date(2024, 3, 10, h, m, 0, 0, time.UTC)
}

func inst(id string, start, end time.Time, updatedMin int) domain.ScheduleInstance {
	return domain.ScheduleInstance{
		ID:        id,
		StartUTC:  start,
		EndUTC:    end,
		Status:    domain.StatusScheduled,
		UpdatedAt: at(0, updatedMin),
	}
}

func TestBuildTimeline_FiltersAndOrders(t *testing.T) {
	canceled := inst("canceled", at(9, 0), at(10, 0), 0)
	canceled.Status = domain.StatusCanceled

	instances := []domain.ScheduleInstance{
		inst("late", at(11, 0), at(12, 0), 0),
		canceled,
		inst("early", at(9, 0), at(10, 0), 0),
		inst("outside", at(20, 0), at(21, 0), 0),
	}

	timeline := BuildTimeline(instances, at(8, 0), at(14, 0), map[string]domain.HabitType{
		"early": domain.HabitSync,
	})

	if len(timeline) != 2 {
		t.Fatalf("BuildTimeline() len = %d, want 2", len(timeline))
	}
	if timeline[0].Instance.ID != "early" || timeline[1].Instance.ID != "late" {
		t.Errorf("BuildTimeline() order = [%s, %s], want [early, late]",
			timeline[0].Instance.ID, timeline[1].Instance.ID)
	}
	if timeline[0].HabitType != domain.HabitSync {
		t.Errorf("BuildTimeline() early type = %q, want %q", timeline[0].HabitType, domain.HabitSync)
	}
	if timeline[1].HabitType != domain.HabitType("") {
		t.Errorf("BuildTimeline() late type = %q, want empty", timeline[1].HabitType)
	}
}

func TestDetectIllegalOverlaps_SyncFamilyMayCoOccur(t *testing.T) {
	timeline := BuildTimeline([]domain.ScheduleInstance{
		inst("sync-a", at(10, 0), at(11, 0), 1),
		inst("async-b", at(10, 30), at(11, 30), 2),
	}, at(0, 0), at(23, 59), map[string]domain.HabitType{
		"sync-a":  domain.HabitSync,
		"async-b": domain.HabitAsync,
	})

	if pairs := DetectIllegalOverlaps(timeline); len(pairs) != 0 {
		t.Errorf("DetectIllegalOverlaps() = %d pairs, want 0", len(pairs))
	}
}

func TestDetectIllegalOverlaps_SyncAgainstHardBlocker(t *testing.T) {
	timeline := BuildTimeline([]domain.ScheduleInstance{
		inst("sync-a", at(10, 0), at(11, 0), 1),
		inst("plain-b", at(10, 30), at(11, 30), 2),
	}, at(0, 0), at(23, 59), map[string]domain.HabitType{
		"sync-a":  domain.HabitSync,
		"plain-b": domain.HabitPlain,
	})

	pairs := DetectIllegalOverlaps(timeline)
	if len(pairs) != 1 {
		t.Fatalf("DetectIllegalOverlaps() = %d pairs, want 1", len(pairs))
	}
	if pairs[0].A.Instance.ID != "sync-a" || pairs[0].B.Instance.ID != "plain-b" {
		t.Errorf("DetectIllegalOverlaps() pair = (%s, %s)", pairs[0].A.Instance.ID, pairs[0].B.Instance.ID)
	}
}

func TestDetectIllegalOverlaps_TouchingIntervalsDoNotConflict(t *testing.T) {
	timeline := BuildTimeline([]domain.ScheduleInstance{
		inst("a", at(10, 0), at(11, 0), 1),
		inst("b", at(11, 0), at(12, 0), 2),
	}, at(0, 0), at(23, 59), nil)

	if pairs := DetectIllegalOverlaps(timeline); len(pairs) != 0 {
		t.Errorf("DetectIllegalOverlaps() = %d pairs, want 0 for touching intervals", len(pairs))
	}
}

func TestResolveChain_SyncLosesToHardBlocker(t *testing.T) {
	timeline := BuildTimeline([]domain.ScheduleInstance{
		inst("sync-a", at(10, 0), at(11, 0), 9),
		inst("project-b", at(10, 30), at(11, 30), 1),
	}, at(0, 0), at(23, 59), map[string]domain.HabitType{
		"sync-a": domain.HabitSync,
	})

	losers := ResolveChain(timeline)
	if len(losers) != 1 {
		t.Fatalf("ResolveChain() losers = %v, want 1", losers)
	}
	if _, ok := losers["sync-a"]; !ok {
		t.Errorf("ResolveChain() losers = %v, want sync-a despite its later update", losers)
	}
}

func TestResolveChain_EarlierUpdatedLoses(t *testing.T) {
	timeline := BuildTimeline([]domain.ScheduleInstance{
		inst("stale", at(10, 0), at(11, 0), 1),
		inst("fresh", at(10, 30), at(11, 30), 5),
	}, at(0, 0), at(23, 59), nil)

	losers := ResolveChain(timeline)
	if _, ok := losers["stale"]; !ok || len(losers) != 1 {
		t.Errorf("ResolveChain() losers = %v, want exactly {stale}", losers)
	}
}

func TestResolveChain_LockedNeverLoses(t *testing.T) {
	locked := inst("locked", at(10, 0), at(11, 0), 1)
	locked.Locked = true

	timeline := BuildTimeline([]domain.ScheduleInstance{
		locked,
		inst("fresh", at(10, 30), at(11, 30), 9),
	}, at(0, 0), at(23, 59), nil)

	losers := ResolveChain(timeline)
	if _, ok := losers["fresh"]; !ok || len(losers) != 1 {
		t.Errorf("ResolveChain() losers = %v, want exactly {fresh}", losers)
	}
}

func TestResolveChain_UpdateTieLargerIDLoses(t *testing.T) {
	timeline := BuildTimeline([]domain.ScheduleInstance{
		inst("aaa", at(10, 0), at(11, 0), 3),
		inst("zzz", at(10, 30), at(11, 30), 3),
	}, at(0, 0), at(23, 59), nil)

	losers := ResolveChain(timeline)
	if _, ok := losers["zzz"]; !ok || len(losers) != 1 {
		t.Errorf("ResolveChain() losers = %v, want exactly {zzz}", losers)
	}
}

func TestResolveChain_ChainDissolvesAfterRemoval(t *testing.T) {
	// a-b conflict and b-c conflict, but a and c never intersect. Removing
	// the stalest entries must stop as soon as survivors are clean.
	timeline := BuildTimeline([]domain.ScheduleInstance{
		inst("a", at(10, 0), at(11, 0), 1),
		inst("b", at(10, 30), at(11, 30), 2),
		inst("c", at(11, 15), at(12, 0), 3),
	}, at(0, 0), at(23, 59), nil)

	losers := ResolveChain(timeline)

	// a loses to b (earlier update), then b loses to c, leaving c alone.
	if len(losers) != 2 {
		t.Fatalf("ResolveChain() losers = %v, want 2", losers)
	}
	for _, id := range []string{"a", "b"} {
		if _, ok := losers[id]; !ok {
			t.Errorf("ResolveChain() losers = %v, missing %s", losers, id)
		}
	}
}

func TestResolveChain_SurvivorsAreConflictFree(t *testing.T) {
	timeline := BuildTimeline([]domain.ScheduleInstance{
		inst("a", at(9, 0), at(10, 30), 4),
		inst("b", at(10, 0), at(11, 0), 2),
		inst("c", at(10, 45), at(12, 0), 6),
		inst("d", at(11, 30), at(13, 0), 1),
	}, at(0, 0), at(23, 59), nil)

	losers := ResolveChain(timeline)

	survivors := make([]Entry, 0, len(timeline))
	for _, e := range timeline {
		if _, gone := losers[e.Instance.ID]; !gone {
			survivors = append(survivors, e)
		}
	}
	if pairs := DetectIllegalOverlaps(survivors); len(pairs) != 0 {
		t.Errorf("DetectIllegalOverlaps() after resolution = %d pairs, want 0", len(pairs))
	}
}

func TestResolveChain_Deterministic(t *testing.T) {
	build := func() []Entry {
		return BuildTimeline([]domain.ScheduleInstance{
			inst("a", at(9, 0), at(10, 30), 4),
			inst("b", at(10, 0), at(11, 0), 2),
			inst("c", at(10, 45), at(12, 0), 6),
		}, at(0, 0), at(23, 59), nil)
	}

	first := ResolveChain(build())
	for i := 0; i < 5; i++ {
		got := ResolveChain(build())
		if len(got) != len(first) {
			t.Fatalf("ResolveChain() = %v on repeat, first = %v", got, first)
		}
		for id := range first {
			if _, ok := got[id]; !ok {
				t.Fatalf("ResolveChain() = %v on repeat, first = %v", got, first)
			}
		}
	}
}
