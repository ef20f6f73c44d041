package domain

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"example.com/practice/internal/calendar"
)

// ComputeStreak derives the subject's login streak statistics from the full
// login history. A subject with no history yields zero-valued statistics,
// not an error. Store read errors propagate unchanged; the degrade-to-zero
// behaviour for dashboards belongs to the caller, not the engine.
func (e *Engine) ComputeStreak(ctx context.Context, subjectID string, loc *time.Location) (StreakStats, error) {
	if strings.TrimSpace(subjectID) == "" {
		return StreakStats{}, fmt.Errorf("%w: subject id is required", ErrInvalidInput)
	}
	if loc == nil {
		return StreakStats{}, fmt.Errorf("%w: reference location is required", ErrInvalidInput)
	}

	events, err := e.store.FindLoginEvents(ctx, subjectID)
	if err != nil {
		return StreakStats{}, err
	}

	days := make([]calendar.DayKey, 0, len(events))
	for _, at := range events {
		key, err := calendar.DayKeyOf(at, loc)
		if err != nil {
			return StreakStats{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		days = append(days, key)
	}

	today, err := calendar.DayKeyOf(e.now(), loc)
	if err != nil {
		return StreakStats{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	return computeStreak(days, today), nil
}

// computeStreak is the single shared streak implementation. It is pure:
// raw login days in, statistics out, no hidden state.
func computeStreak(days []calendar.DayKey, today calendar.DayKey) StreakStats {
	unique := dedupeDescending(days)
	if len(unique) == 0 {
		return StreakStats{}
	}

	mostRecent := unique[0]
	stats := StreakStats{
		LastActiveDay: &mostRecent,
		ActiveToday:   mostRecent == today,
	}

	// Current run: walk backwards from today (or yesterday when the subject
	// has not logged in yet today). The first gap ends the run.
	expected := today
	if !stats.ActiveToday {
		expected = today.Prev()
	}
	for _, day := range unique {
		if day > expected {
			// Newer than expected cannot happen after dedup and sort;
			// skip rather than corrupt the walk.
			continue
		}
		if day < expected {
			break
		}
		stats.CurrentStreak++
		expected = expected.Prev()
	}

	// Longest run ever: only pairwise day differences matter.
	longest, run := 1, 1
	for i := 1; i < len(unique); i++ {
		if unique[i-1] == unique[i].Next() {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}

	// The in-progress run may not have surfaced in the pairwise scan yet.
	if stats.CurrentStreak > longest {
		longest = stats.CurrentStreak
	}
	stats.LongestStreak = longest
	return stats
}

// dedupeDescending collapses raw login days to unique keys, most recent
// first. Duplicate rows from racing same-day inserts vanish here.
func dedupeDescending(days []calendar.DayKey) []calendar.DayKey {
	seen := make(map[calendar.DayKey]struct{}, len(days))
	unique := make([]calendar.DayKey, 0, len(days))
	for _, day := range days {
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		unique = append(unique, day)
	}
	sort.Slice(unique, func(i, j int) bool { return unique[i] > unique[j] })
	return unique
}
