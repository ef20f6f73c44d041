package domain_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/practice/internal/domain"
	"example.com/practice/internal/persistence/memory"
)

func seedPractice(t *testing.T, store domain.RecordStore, itemID, name string, at time.Time) {
	t.Helper()
	require.NoError(t, store.InsertPracticeRecord(context.Background(), domain.PracticeRecord{
		ID:              itemID + at.Format("150405"),
		SubjectID:       "subject-1",
		ItemID:          itemID,
		ItemKind:        domain.KindPose,
		DisplayName:     name,
		PerformedAt:     at,
		DurationSeconds: 600,
		Status:          domain.CompletionComplete,
	}))
}

func TestWeeklyCountAllGroupsByItem(t *testing.T) {
	// Wednesday June 11th; the window is Monday the 9th through Sunday the 15th.
	now := time.Date(2025, time.June, 11, 14, 0, 0, 0, time.UTC)
	store := memory.NewStore()
	engine := fixedEngine(store, now)
	ctx := context.Background()

	seedPractice(t, store, "pose-tree", "Tree Pose", now.Add(-2*time.Hour))
	seedPractice(t, store, "pose-tree", "Tree Pose", now.AddDate(0, 0, -1))
	seedPractice(t, store, "seq-sun-a", "Sun Salutation A", now.AddDate(0, 0, -2))
	// Outside the window: the preceding Sunday.
	seedPractice(t, store, "pose-tree", "Tree Pose", time.Date(2025, time.June, 8, 10, 0, 0, 0, time.UTC))

	summary, err := engine.WeeklyCountAll(ctx, "subject-1", time.UTC)
	require.NoError(t, err)

	require.Equal(t, 3, summary.TotalActivities)
	require.Len(t, summary.Items, 2)
	require.Equal(t, time.Date(2025, time.June, 9, 0, 0, 0, 0, time.UTC), summary.WeekStart)
	require.Equal(t, time.Sunday, summary.WeekEnd.Weekday())

	tree := summary.Items["pose-tree"]
	require.Equal(t, 2, tree.Count)
	require.Equal(t, "Tree Pose", tree.DisplayName)
	require.Equal(t, now.Add(-2*time.Hour), tree.LastPerformed)
	require.Len(t, tree.Records, 2)

	sun := summary.Items["seq-sun-a"]
	require.Equal(t, 1, sun.Count)

	// Per-item counts must sum to the total.
	total := 0
	for _, item := range summary.Items {
		total += item.Count
	}
	require.Equal(t, summary.TotalActivities, total)
}

func TestWeeklyCountSingleItem(t *testing.T) {
	now := time.Date(2025, time.June, 11, 14, 0, 0, 0, time.UTC)
	store := memory.NewStore()
	engine := fixedEngine(store, now)

	seedPractice(t, store, "pose-tree", "Tree Pose", now.Add(-time.Hour))
	seedPractice(t, store, "pose-tree", "Tree Pose", now.AddDate(0, 0, -2))
	seedPractice(t, store, "seq-sun-a", "Sun Salutation A", now.Add(-30*time.Minute))

	stats, weekStart, weekEnd, err := engine.WeeklyCount(context.Background(), "subject-1", "pose-tree", time.UTC)
	require.NoError(t, err)
	require.Equal(t, 2, stats.Count)
	require.Equal(t, "Tree Pose", stats.DisplayName)
	require.Equal(t, now.Add(-time.Hour), stats.LastPerformed)
	require.Equal(t, time.Monday, weekStart.Weekday())
	require.Equal(t, time.Sunday, weekEnd.Weekday())
}

func TestWeeklyCountEmptyWeekStillPopulatesRange(t *testing.T) {
	now := time.Date(2025, time.June, 11, 14, 0, 0, 0, time.UTC)
	engine := fixedEngine(memory.NewStore(), now)

	summary, err := engine.WeeklyCountAll(context.Background(), "subject-1", time.UTC)
	require.NoError(t, err)
	require.Zero(t, summary.TotalActivities)
	require.Empty(t, summary.Items)
	require.False(t, summary.WeekStart.IsZero())
	require.False(t, summary.WeekEnd.IsZero())

	stats, weekStart, _, err := engine.WeeklyCount(context.Background(), "subject-1", "pose-tree", time.UTC)
	require.NoError(t, err)
	require.Zero(t, stats.Count)
	require.False(t, weekStart.IsZero())
}

func TestWeeklyCountIncludesWindowEdges(t *testing.T) {
	now := time.Date(2025, time.June, 11, 14, 0, 0, 0, time.UTC)
	store := memory.NewStore()
	engine := fixedEngine(store, now)

	// Monday at exactly midnight and Sunday just before the next week.
	seedPractice(t, store, "pose-tree", "Tree Pose", time.Date(2025, time.June, 9, 0, 0, 0, 0, time.UTC))
	seedPractice(t, store, "pose-tree", "Tree Pose", time.Date(2025, time.June, 15, 23, 59, 59, 0, time.UTC))

	stats, _, _, err := engine.WeeklyCount(context.Background(), "subject-1", "pose-tree", time.UTC)
	require.NoError(t, err)
	require.Equal(t, 2, stats.Count)
}

func TestWeeklyCountValidatesInput(t *testing.T) {
	engine := fixedEngine(memory.NewStore(), time.Now().UTC())
	ctx := context.Background()

	_, _, _, err := engine.WeeklyCount(ctx, "", "pose-tree", time.UTC)
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, _, _, err = engine.WeeklyCount(ctx, "subject-1", "", time.UTC)
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = engine.WeeklyCountAll(ctx, "subject-1", nil)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}
