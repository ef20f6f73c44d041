//go:build integration

package postgres

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	postgrescontainer "github.com/testcontainers/testcontainers-go/modules/postgres"

	"example.com/practice/internal/domain"
)

func TestRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()

	pg, err := postgrescontainer.RunContainer(ctx,
		postgrescontainer.WithDatabase("practice"),
		postgrescontainer.WithUsername("platform"),
		postgrescontainer.WithPassword("platform"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	connStr, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, waitForDatabase(ctx, connStr))

	runMigrations(t, ctx, connStr)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })

	repo := NewRepository(pool)
	subjectID := uuid.NewString()
	now := time.Now().UTC().Truncate(time.Microsecond)

	// Login events: range query is inclusive on both bounds.
	require.NoError(t, repo.InsertLoginEvent(ctx, subjectID, now))
	require.NoError(t, repo.InsertLoginEvent(ctx, subjectID, now.AddDate(0, 0, -1)))

	all, err := repo.FindLoginEvents(ctx, subjectID)
	require.NoError(t, err)
	require.Len(t, all, 2)

	ranged, err := repo.FindLoginEventsInRange(ctx, subjectID, now, now)
	require.NoError(t, err)
	require.Len(t, ranged, 1)

	// Practice records: filtered find and range-scoped delete.
	record := domain.PracticeRecord{
		ID:              uuid.NewString(),
		SubjectID:       subjectID,
		ItemID:          "pose-tree",
		ItemKind:        domain.KindPose,
		DisplayName:     "Tree Pose",
		PerformedAt:     now,
		DurationSeconds: 300,
		Status:          domain.CompletionComplete,
		Difficulty:      domain.DifficultyModerate,
		Notes:           "solid balance",
		CreatedAt:       now,
	}
	require.NoError(t, repo.InsertPracticeRecord(ctx, record))

	older := record
	older.ID = uuid.NewString()
	older.PerformedAt = now.AddDate(0, 0, -3)
	older.Difficulty = ""
	older.Notes = ""
	require.NoError(t, repo.InsertPracticeRecord(ctx, older))

	found, err := repo.FindPracticeRecords(ctx, subjectID, domain.RecordFilter{ItemID: "pose-tree"})
	require.NoError(t, err)
	require.Len(t, found, 2)
	require.Equal(t, older.ID, found[0].ID, "records ordered by performed_at ascending")
	require.Equal(t, domain.DifficultyModerate, found[1].Difficulty)

	windowed, err := repo.FindPracticeRecords(ctx, subjectID, domain.RecordFilter{
		ItemID: "pose-tree",
		From:   now.Add(-time.Hour),
		To:     now.Add(time.Hour),
	})
	require.NoError(t, err)
	require.Len(t, windowed, 1)
	require.Equal(t, record.ID, windowed[0].ID)

	// Delete scoped to today's window must leave the older record alone.
	deleted, err := repo.DeletePracticeRecords(ctx, subjectID, "pose-tree", now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, err)
	require.Equal(t, 1, deleted)

	remaining, err := repo.FindPracticeRecords(ctx, subjectID, domain.RecordFilter{ItemID: "pose-tree"})
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	require.Equal(t, older.ID, remaining[0].ID)
}

func TestRepositoryMapsTimeouts(t *testing.T) {
	ctx := context.Background()

	pg, err := postgrescontainer.RunContainer(ctx,
		postgrescontainer.WithDatabase("practice"),
		postgrescontainer.WithUsername("platform"),
		postgrescontainer.WithPassword("platform"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	connStr, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, waitForDatabase(ctx, connStr))
	runMigrations(t, ctx, connStr)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })

	repo := NewRepository(pool)

	expired, cancel := context.WithDeadline(ctx, time.Now().Add(-time.Second))
	defer cancel()

	_, err = repo.FindLoginEvents(expired, uuid.NewString())
	require.ErrorIs(t, err, domain.ErrTimeout)
}

func runMigrations(t *testing.T, ctx context.Context, connStr string) {
	files := []string{
		"../../../db/postgres/migrations/0001_init.up.sql",
	}

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	defer pool.Close()

	for _, rel := range files {
		path := resolvePath(t, rel)
		contents, readErr := os.ReadFile(path)
		require.NoError(t, readErr)

		_, execErr := pool.Exec(ctx, string(contents))
		require.NoError(t, execErr)
	}
}

func resolvePath(t *testing.T, rel string) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	return filepath.Join(filepath.Dir(file), rel)
}

func waitForDatabase(ctx context.Context, connStr string) error {
	deadline := time.Now().Add(30 * time.Second)
	for {
		pool, err := pgxpool.New(ctx, connStr)
		if err == nil {
			err = pool.Ping(ctx)
			pool.Close()
			if err == nil {
				return nil
			}
		}
		if time.Now().After(deadline) {
			return err
		}
		time.Sleep(time.Second)
	}
}
