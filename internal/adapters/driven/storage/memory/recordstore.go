package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/archibald-labs/archisync/internal/core/domain"
	"github.com/archibald-labs/archisync/internal/core/ports/driven"
)

// Ensure RecordStore implements the interface.
var _ driven.RecordStore = (*RecordStore)(nil)

// RecordStore is an in-memory implementation of driven.RecordStore.
type RecordStore struct {
	mu      sync.RWMutex
	records map[domain.EntityType]map[string]domain.StoredRecord
}

// NewRecordStore creates a new in-memory record store.
func NewRecordStore() *RecordStore {
	return &RecordStore{
		records: make(map[domain.EntityType]map[string]domain.StoredRecord),
	}
}

// Get retrieves a record.
func (s *RecordStore) Get(_ context.Context, entityType domain.EntityType, key string) (*domain.StoredRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[entityType][key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyRecord(rec), nil
}

// Save inserts or fully replaces a record.
func (s *RecordStore) Save(_ context.Context, record *domain.StoredRecord) error {
	if record == nil || record.Key == "" {
		return domain.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	byKey, ok := s.records[record.Type]
	if !ok {
		byKey = make(map[string]domain.StoredRecord)
		s.records[record.Type] = byKey
	}
	byKey[record.Key] = *copyRecord(*record)
	return nil
}

// Touch bumps last_sync_at of an existing record.
func (s *RecordStore) Touch(_ context.Context, entityType domain.EntityType, key string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[entityType][key]
	if !ok {
		return domain.ErrNotFound
	}
	rec.LastSyncAt = at
	s.records[entityType][key] = rec
	return nil
}

// List returns records matching the filter, ordered by key.
func (s *RecordStore) List(
	_ context.Context,
	entityType domain.EntityType,
	filter domain.RecordFilter,
) ([]domain.StoredRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.StoredRecord
	for _, rec := range s.records[entityType] {
		if filter.Matches(&rec) {
			out = append(out, *copyRecord(rec))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })

	return page(out, filter.Offset, filter.Limit), nil
}

// Count returns the number of stored records of a type.
func (s *RecordStore) Count(_ context.Context, entityType domain.EntityType) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records[entityType]), nil
}

// ChangedSince returns records updated at or after since, newest first.
func (s *RecordStore) ChangedSince(
	_ context.Context,
	entityType domain.EntityType,
	since time.Time,
	limit int,
) ([]domain.StoredRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.StoredRecord
	for _, rec := range s.records[entityType] {
		if !rec.UpdatedAt.Before(since) {
			out = append(out, *copyRecord(rec))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].Key < out[j].Key
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})

	return page(out, 0, limit), nil
}

// DeleteStale removes records last seen before the cutoff.
func (s *RecordStore) DeleteStale(_ context.Context, entityType domain.EntityType, before time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := 0
	for key, rec := range s.records[entityType] {
		if rec.LastSyncAt.Before(before) {
			delete(s.records[entityType], key)
			deleted++
		}
	}
	return deleted, nil
}

func copyRecord(rec domain.StoredRecord) *domain.StoredRecord {
	rec.Fields = rec.Fields.Clone()
	return &rec
}

func page[T any](items []T, offset, limit int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return nil
		}
		items = items[offset:]
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}
