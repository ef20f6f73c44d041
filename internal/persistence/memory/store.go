// Package memory provides an in-memory RecordStore for unit tests and local
// development.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"example.com/practice/internal/domain"
)

// Store keeps login events and practice records in process memory, guarded
// by a single mutex. Query results are copies; callers cannot mutate stored
// state through them.
type Store struct {
	mu      sync.RWMutex
	logins  map[string][]time.Time
	records map[string][]domain.PracticeRecord
}

// NewStore constructs an empty Store.
func NewStore() *Store {
	return &Store{
		logins:  make(map[string][]time.Time),
		records: make(map[string][]domain.PracticeRecord),
	}
}

// InsertLoginEvent implements domain.RecordStore.
func (s *Store) InsertLoginEvent(ctx context.Context, subjectID string, occurredAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logins[subjectID] = append(s.logins[subjectID], occurredAt)
	return nil
}

// FindLoginEvents implements domain.RecordStore.
func (s *Store) FindLoginEvents(ctx context.Context, subjectID string) ([]time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]time.Time, len(s.logins[subjectID]))
	copy(out, s.logins[subjectID])
	return out, nil
}

// FindLoginEventsInRange implements domain.RecordStore.
func (s *Store) FindLoginEventsInRange(ctx context.Context, subjectID string, from, to time.Time) ([]time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]time.Time, 0)
	for _, at := range s.logins[subjectID] {
		if inRange(at, from, to) {
			out = append(out, at)
		}
	}
	return out, nil
}

// InsertPracticeRecord implements domain.RecordStore.
func (s *Store) InsertPracticeRecord(ctx context.Context, record domain.PracticeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.SubjectID] = append(s.records[record.SubjectID], record)
	return nil
}

// FindPracticeRecords implements domain.RecordStore.
func (s *Store) FindPracticeRecords(ctx context.Context, subjectID string, filter domain.RecordFilter) ([]domain.PracticeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.PracticeRecord, 0)
	for _, record := range s.records[subjectID] {
		if filter.ItemID != "" && record.ItemID != filter.ItemID {
			continue
		}
		if !filter.From.IsZero() && record.PerformedAt.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && record.PerformedAt.After(filter.To) {
			continue
		}
		out = append(out, record)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PerformedAt.Before(out[j].PerformedAt) })
	return out, nil
}

// DeletePracticeRecords implements domain.RecordStore.
func (s *Store) DeletePracticeRecords(ctx context.Context, subjectID, itemID string, from, to time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := make([]domain.PracticeRecord, 0, len(s.records[subjectID]))
	deleted := 0
	for _, record := range s.records[subjectID] {
		if record.ItemID == itemID && inRange(record.PerformedAt, from, to) {
			deleted++
			continue
		}
		kept = append(kept, record)
	}
	s.records[subjectID] = kept
	return deleted, nil
}

func inRange(at, from, to time.Time) bool {
	return !at.Before(from) && !at.After(to)
}
