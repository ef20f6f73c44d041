package domain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"example.com/practice/internal/calendar"
)

// WeeklyCount returns the subject's practice records for one item inside the
// current Monday-through-Sunday window, inclusive on both ends. An empty
// window is not an error; the range is still populated.
func (e *Engine) WeeklyCount(ctx context.Context, subjectID, itemID string, loc *time.Location) (ItemWeekStats, time.Time, time.Time, error) {
	if strings.TrimSpace(subjectID) == "" {
		return ItemWeekStats{}, time.Time{}, time.Time{}, fmt.Errorf("%w: subject id is required", ErrInvalidInput)
	}
	if strings.TrimSpace(itemID) == "" {
		return ItemWeekStats{}, time.Time{}, time.Time{}, fmt.Errorf("%w: item id is required", ErrInvalidInput)
	}

	weekStart, weekEnd, err := calendar.WeekWindow(e.now(), loc)
	if err != nil {
		return ItemWeekStats{}, time.Time{}, time.Time{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	records, err := e.store.FindPracticeRecords(ctx, subjectID, RecordFilter{
		ItemID: itemID,
		From:   weekStart,
		To:     weekEnd,
	})
	if err != nil {
		return ItemWeekStats{}, time.Time{}, time.Time{}, err
	}

	stats := ItemWeekStats{ItemID: itemID, Records: records, Count: len(records)}
	for _, record := range records {
		if stats.DisplayName == "" {
			stats.DisplayName = record.DisplayName
		}
		if record.PerformedAt.After(stats.LastPerformed) {
			stats.LastPerformed = record.PerformedAt
		}
	}
	return stats, weekStart, weekEnd, nil
}

// WeeklyCountAll groups every practice record inside the current week window
// by item. Each record is visited exactly once, so the per-item counts sum
// to TotalActivities.
func (e *Engine) WeeklyCountAll(ctx context.Context, subjectID string, loc *time.Location) (WeekSummary, error) {
	if strings.TrimSpace(subjectID) == "" {
		return WeekSummary{}, fmt.Errorf("%w: subject id is required", ErrInvalidInput)
	}

	weekStart, weekEnd, err := calendar.WeekWindow(e.now(), loc)
	if err != nil {
		return WeekSummary{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	records, err := e.store.FindPracticeRecords(ctx, subjectID, RecordFilter{
		From: weekStart,
		To:   weekEnd,
	})
	if err != nil {
		return WeekSummary{}, err
	}

	summary := WeekSummary{
		Items:     make(map[string]ItemWeekStats, len(records)),
		WeekStart: weekStart,
		WeekEnd:   weekEnd,
	}
	for _, record := range records {
		stats := summary.Items[record.ItemID]
		stats.ItemID = record.ItemID
		if stats.DisplayName == "" {
			stats.DisplayName = record.DisplayName
		}
		stats.Count++
		if record.PerformedAt.After(stats.LastPerformed) {
			stats.LastPerformed = record.PerformedAt
		}
		stats.Records = append(stats.Records, record)
		summary.Items[record.ItemID] = stats
		summary.TotalActivities++
	}
	return summary, nil
}
