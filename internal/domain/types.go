// Package domain implements the practice engagement engine: idempotent
// day recording, login streak computation, and weekly practice aggregation.
package domain

import (
	"context"
	"time"

	"example.com/practice/internal/calendar"
)

// ItemKind discriminates the practiced item variants. The record shape is
// identical across kinds.
type ItemKind string

const (
	KindPose     ItemKind = "pose"
	KindSequence ItemKind = "sequence"
	KindSeries   ItemKind = "series"
)

// Valid reports whether the kind is one of the known variants.
func (k ItemKind) Valid() bool {
	switch k {
	case KindPose, KindSequence, KindSeries:
		return true
	}
	return false
}

// CompletionStatus describes how a practice session ended.
type CompletionStatus string

const (
	CompletionComplete CompletionStatus = "complete"
	CompletionPartial  CompletionStatus = "partial"
	CompletionSkipped  CompletionStatus = "skipped"
)

// Valid reports whether the status is one of the known values.
func (s CompletionStatus) Valid() bool {
	switch s {
	case CompletionComplete, CompletionPartial, CompletionSkipped:
		return true
	}
	return false
}

// DifficultyRating is an optional self-reported rating.
type DifficultyRating string

const (
	DifficultyEasy      DifficultyRating = "easy"
	DifficultyModerate  DifficultyRating = "moderate"
	DifficultyChallenge DifficultyRating = "challenging"
)

// Valid reports whether the rating is empty or one of the known values.
func (d DifficultyRating) Valid() bool {
	switch d {
	case "", DifficultyEasy, DifficultyModerate, DifficultyChallenge:
		return true
	}
	return false
}

// PracticeRecord is the canonical completed-practice event. Historical
// records are immutable; only records inside the current day window may be
// deleted (the undo flow).
type PracticeRecord struct {
	ID              string
	SubjectID       string
	ItemID          string
	ItemKind        ItemKind
	DisplayName     string
	PerformedAt     time.Time
	DurationSeconds int
	Status          CompletionStatus
	Difficulty      DifficultyRating
	Notes           string
	CreatedAt       time.Time
}

// RecordFilter narrows a practice record query. Zero-valued fields are
// ignored; From/To bound PerformedAt inclusively when both are set.
type RecordFilter struct {
	ItemID string
	From   time.Time
	To     time.Time
}

// StreakStats is the derived login streak view for one subject.
type StreakStats struct {
	CurrentStreak int
	LongestStreak int
	LastActiveDay *calendar.DayKey
	ActiveToday   bool
}

// ItemWeekStats aggregates one item's activity inside a week window.
type ItemWeekStats struct {
	ItemID        string
	DisplayName   string
	Count         int
	LastPerformed time.Time
	Records       []PracticeRecord
}

// WeekSummary aggregates every practiced item inside a week window. The
// per-item counts always sum to TotalActivities.
type WeekSummary struct {
	TotalActivities int
	Items           map[string]ItemWeekStats
	WeekStart       time.Time
	WeekEnd         time.Time
}

// RecordStore is the durable collaborator holding login events and practice
// records. Implementations map infrastructure failures onto the domain error
// taxonomy (ErrStoreUnavailable, ErrTimeout).
type RecordStore interface {
	InsertLoginEvent(ctx context.Context, subjectID string, occurredAt time.Time) error
	FindLoginEvents(ctx context.Context, subjectID string) ([]time.Time, error)
	FindLoginEventsInRange(ctx context.Context, subjectID string, from, to time.Time) ([]time.Time, error)

	InsertPracticeRecord(ctx context.Context, record PracticeRecord) error
	FindPracticeRecords(ctx context.Context, subjectID string, filter RecordFilter) ([]PracticeRecord, error)
	DeletePracticeRecords(ctx context.Context, subjectID, itemID string, from, to time.Time) (int, error)
}
