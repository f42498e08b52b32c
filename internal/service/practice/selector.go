// Package practice selects which context a practice habit occurrence
// attaches to, using a deterministic multi-key score.
package practice

import (
	"sort"
	"time"
)

// defaultStalenessDays scores a never-practiced context as if it had been
// idle this long.
const defaultStalenessDays = 30

// Input carries everything the selector needs; all history is supplied by
// the caller, the selector holds no state.
type Input struct {
	CandidateIDs    []string
	EventCounts     map[string]int
	TaskCounts      map[string]int
	LastPracticedAt map[string]time.Time
	LastContextUsed string
	WindowStart     time.Time
}

type scored struct {
	id           string
	contextScore int
	recencyScore int
	staleness    time.Duration
	penalized    bool
	actionable   bool
}

// Select returns the winning context id, or "" when no non-empty candidate
// exists. Keys are compared in strict priority order: engagement score,
// recency score, raw staleness, rotation penalty, actionability, then the
// lexicographically smallest id.
func Select(in Input) string {
	ids := make([]string, 0, len(in.CandidateIDs))
	for _, id := range in.CandidateIDs {
		if id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return ""
	}
	sort.Strings(ids)

	soleActionable := soleActionableID(ids, in.TaskCounts)

	best := evaluate(ids[0], in, soleActionable)
	for _, id := range ids[1:] {
		cand := evaluate(id, in, soleActionable)
		if better(cand, best) {
			best = cand
		}
	}
	return best.id
}

func evaluate(id string, in Input, soleActionable string) scored {
	staleness := time.Duration(defaultStalenessDays) * 24 * time.Hour
	if last, ok := in.LastPracticedAt[id]; ok && !last.IsZero() {
		staleness = in.WindowStart.Sub(last)
		if staleness < 0 {
			staleness = 0
		}
	}
	days := int(staleness / (24 * time.Hour))

	penalized := id == in.LastContextUsed && id != soleActionable

	return scored{
		id:           id,
		contextScore: in.EventCounts[id] * 10,
		recencyScore: days * 5,
		staleness:    staleness,
		penalized:    penalized,
		actionable:   in.TaskCounts[id] > 0,
	}
}

// better reports whether a strictly beats b. Candidates arrive in
// lexicographic order, so keeping the incumbent on full ties realizes the
// final tie-break.
func better(a, b scored) bool {
	if a.contextScore != b.contextScore {
		return a.contextScore > b.contextScore
	}
	if a.recencyScore != b.recencyScore {
		return a.recencyScore > b.recencyScore
	}
	if a.staleness != b.staleness {
		return a.staleness > b.staleness
	}
	if a.penalized != b.penalized {
		return !a.penalized
	}
	if a.actionable != b.actionable {
		return a.actionable
	}
	return false
}

// soleActionableID returns the only candidate with schedulable tasks, or ""
// when zero or several qualify. The rotation penalty is waived for it so a
// single-option rotation is never starved.
func soleActionableID(ids []string, taskCounts map[string]int) string {
	sole := ""
	for _, id := range ids {
		if taskCounts[id] > 0 {
			if sole != "" {
				return ""
			}
			sole = id
		}
	}
	return sole
}
