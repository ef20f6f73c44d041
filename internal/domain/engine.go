package domain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"example.com/practice/internal/calendar"
)

// Engine orchestrates the engagement workflows. It is stateless between
// calls; all state lives in the RecordStore, so one Engine is safe for
// concurrent use across subjects.
type Engine struct {
	store RecordStore
	now   func() time.Time
}

// Option configures optional Engine behaviour.
type Option func(*Engine)

// WithClock overrides the time source. Tests use this to pin "today".
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine constructs an Engine backed by the provided store.
func NewEngine(store RecordStore, opts ...Option) *Engine {
	e := &Engine{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RecordLogin records that the subject was active on the calendar day
// containing at, unless a login event already exists inside that day window.
// Returns whether a new event was inserted.
//
// Two concurrent calls for the same subject and day may both observe
// "absent" and both insert; downstream readers deduplicate by day key, so
// the duplicate row never inflates streak math.
func (e *Engine) RecordLogin(ctx context.Context, subjectID string, at time.Time, loc *time.Location) (bool, error) {
	if strings.TrimSpace(subjectID) == "" {
		return false, fmt.Errorf("%w: subject id is required", ErrInvalidInput)
	}
	start, end, err := calendar.DayWindow(at, loc)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	existing, err := e.store.FindLoginEventsInRange(ctx, subjectID, start, end)
	if err != nil {
		return false, err
	}
	if len(existing) > 0 {
		return false, nil
	}

	if err := e.store.InsertLoginEvent(ctx, subjectID, at); err != nil {
		return false, err
	}
	return true, nil
}

// RecordPracticeInput carries a completed practice session from the caller.
type RecordPracticeInput struct {
	SubjectID       string
	ItemID          string
	ItemKind        ItemKind
	DisplayName     string
	PerformedAt     time.Time
	DurationSeconds int
	Status          CompletionStatus
	Difficulty      DifficultyRating
	Notes           string
	Location        *time.Location
}

func (in RecordPracticeInput) validate() error {
	if strings.TrimSpace(in.SubjectID) == "" {
		return fmt.Errorf("%w: subject id is required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.ItemID) == "" {
		return fmt.Errorf("%w: item id is required", ErrInvalidInput)
	}
	if !in.ItemKind.Valid() {
		return fmt.Errorf("%w: unknown item kind %q", ErrInvalidInput, in.ItemKind)
	}
	if strings.TrimSpace(in.DisplayName) == "" {
		return fmt.Errorf("%w: display name is required", ErrInvalidInput)
	}
	if in.PerformedAt.IsZero() {
		return fmt.Errorf("%w: performed_at is required", ErrInvalidInput)
	}
	if in.DurationSeconds <= 0 {
		return fmt.Errorf("%w: duration must be > 0", ErrInvalidInput)
	}
	if !in.Status.Valid() {
		return fmt.Errorf("%w: unknown completion status %q", ErrInvalidInput, in.Status)
	}
	if !in.Difficulty.Valid() {
		return fmt.Errorf("%w: unknown difficulty %q", ErrInvalidInput, in.Difficulty)
	}
	if in.Location == nil {
		return fmt.Errorf("%w: reference location is required", ErrInvalidInput)
	}
	return nil
}

// RecordPractice inserts a practice record unless one already exists for the
// same subject and item inside the day containing PerformedAt. The replay
// flag reports whether an existing record satisfied the call.
func (e *Engine) RecordPractice(ctx context.Context, in RecordPracticeInput) (*PracticeRecord, bool, error) {
	if err := in.validate(); err != nil {
		return nil, false, err
	}

	start, end, err := calendar.DayWindow(in.PerformedAt, in.Location)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	existing, err := e.store.FindPracticeRecords(ctx, in.SubjectID, RecordFilter{
		ItemID: in.ItemID,
		From:   start,
		To:     end,
	})
	if err != nil {
		return nil, false, err
	}
	if len(existing) > 0 {
		replay := existing[0]
		return &replay, true, nil
	}

	record := PracticeRecord{
		ID:              uuid.NewString(),
		SubjectID:       in.SubjectID,
		ItemID:          in.ItemID,
		ItemKind:        in.ItemKind,
		DisplayName:     in.DisplayName,
		PerformedAt:     in.PerformedAt,
		DurationSeconds: in.DurationSeconds,
		Status:          in.Status,
		Difficulty:      in.Difficulty,
		Notes:           in.Notes,
		CreatedAt:       e.now(),
	}
	if err := e.store.InsertPracticeRecord(ctx, record); err != nil {
		return nil, false, err
	}
	return &record, false, nil
}

// UndoTodayPractice deletes the subject's practice records for itemID whose
// PerformedAt falls inside the current day window. Records outside that
// exact range are never touched, so history survives the undo.
func (e *Engine) UndoTodayPractice(ctx context.Context, subjectID, itemID string, loc *time.Location) (bool, error) {
	if strings.TrimSpace(subjectID) == "" {
		return false, fmt.Errorf("%w: subject id is required", ErrInvalidInput)
	}
	if strings.TrimSpace(itemID) == "" {
		return false, fmt.Errorf("%w: item id is required", ErrInvalidInput)
	}
	start, end, err := calendar.DayWindow(e.now(), loc)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	deleted, err := e.store.DeletePracticeRecords(ctx, subjectID, itemID, start, end)
	if err != nil {
		return false, err
	}
	return deleted > 0, nil
}
