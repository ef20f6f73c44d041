// Package postgres provides the pgx-backed RecordStore implementation.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/practice/internal/domain"
	"example.com/practice/internal/observability"
)

// Repository persists login events and practice records in Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// InsertLoginEvent implements domain.RecordStore.
func (r *Repository) InsertLoginEvent(ctx context.Context, subjectID string, occurredAt time.Time) error {
	const stmt = `INSERT INTO login_events (event_id, subject_id, occurred_at) VALUES ($1,$2,$3)`

	_, err := r.pool.Exec(ctx, stmt, uuid.NewString(), subjectID, occurredAt)
	if err != nil {
		return mapError(err)
	}
	observability.RecordLoginPersisted(occurredAt)
	return nil
}

// FindLoginEvents implements domain.RecordStore.
func (r *Repository) FindLoginEvents(ctx context.Context, subjectID string) ([]time.Time, error) {
	const query = `SELECT occurred_at FROM login_events WHERE subject_id=$1 ORDER BY occurred_at DESC`
	return r.queryLoginEvents(ctx, query, subjectID)
}

// FindLoginEventsInRange implements domain.RecordStore. Both bounds are
// inclusive.
func (r *Repository) FindLoginEventsInRange(ctx context.Context, subjectID string, from, to time.Time) ([]time.Time, error) {
	const query = `SELECT occurred_at FROM login_events
        WHERE subject_id=$1 AND occurred_at BETWEEN $2 AND $3 ORDER BY occurred_at DESC`
	return r.queryLoginEvents(ctx, query, subjectID, from, to)
}

func (r *Repository) queryLoginEvents(ctx context.Context, query string, args ...interface{}) ([]time.Time, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	events := make([]time.Time, 0)
	for rows.Next() {
		var at time.Time
		if err := rows.Scan(&at); err != nil {
			return nil, mapError(err)
		}
		events = append(events, at)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return events, nil
}

// InsertPracticeRecord implements domain.RecordStore.
func (r *Repository) InsertPracticeRecord(ctx context.Context, record domain.PracticeRecord) error {
	const stmt = `INSERT INTO practice_records
        (record_id, subject_id, item_id, item_kind, display_name, performed_at, duration_seconds, completion_status, difficulty_rating, notes, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`

	_, err := r.pool.Exec(ctx, stmt,
		record.ID,
		record.SubjectID,
		record.ItemID,
		string(record.ItemKind),
		record.DisplayName,
		record.PerformedAt,
		record.DurationSeconds,
		string(record.Status),
		nullIfEmpty(string(record.Difficulty)),
		nullIfEmpty(record.Notes),
		record.CreatedAt,
	)
	if err != nil {
		return mapError(err)
	}
	observability.RecordPracticePersisted(record.PerformedAt)
	return nil
}

// FindPracticeRecords implements domain.RecordStore. Filter bounds are
// inclusive; a zero bound or empty item ID is ignored.
func (r *Repository) FindPracticeRecords(ctx context.Context, subjectID string, filter domain.RecordFilter) ([]domain.PracticeRecord, error) {
	query := `SELECT record_id, subject_id, item_id, item_kind, display_name, performed_at, duration_seconds, completion_status, COALESCE(difficulty_rating, ''), COALESCE(notes, ''), created_at
        FROM practice_records WHERE subject_id=$1`
	args := []interface{}{subjectID}

	if filter.ItemID != "" {
		args = append(args, filter.ItemID)
		query += fmt.Sprintf(" AND item_id=$%d", len(args))
	}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		query += fmt.Sprintf(" AND performed_at >= $%d", len(args))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		query += fmt.Sprintf(" AND performed_at <= $%d", len(args))
	}
	query += " ORDER BY performed_at ASC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	records := make([]domain.PracticeRecord, 0)
	for rows.Next() {
		var rec domain.PracticeRecord
		var kind, status, difficulty string
		if err := rows.Scan(&rec.ID, &rec.SubjectID, &rec.ItemID, &kind, &rec.DisplayName, &rec.PerformedAt, &rec.DurationSeconds, &status, &difficulty, &rec.Notes, &rec.CreatedAt); err != nil {
			return nil, mapError(err)
		}
		rec.ItemKind = domain.ItemKind(kind)
		rec.Status = domain.CompletionStatus(status)
		rec.Difficulty = domain.DifficultyRating(difficulty)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return records, nil
}

// DeletePracticeRecords implements domain.RecordStore. Only rows whose
// performed_at falls inside [from, to] are removed.
func (r *Repository) DeletePracticeRecords(ctx context.Context, subjectID, itemID string, from, to time.Time) (int, error) {
	const stmt = `DELETE FROM practice_records
        WHERE subject_id=$1 AND item_id=$2 AND performed_at BETWEEN $3 AND $4`

	tag, err := r.pool.Exec(ctx, stmt, subjectID, itemID, from, to)
	if err != nil {
		return 0, mapError(err)
	}
	return int(tag.RowsAffected()), nil
}

func nullIfEmpty(value string) interface{} {
	if value == "" {
		return nil
	}
	return value
}

// mapError folds infrastructure failures onto the domain error taxonomy so
// callers never depend on pgx error types.
func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", domain.ErrTimeout, err)
	default:
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
}
