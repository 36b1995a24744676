package services

import (
	"context"
	"fmt"
	"time"

	"github.com/archibald-labs/archisync/internal/core/domain"
	"github.com/archibald-labs/archisync/internal/core/ports/driven"
	"github.com/archibald-labs/archisync/internal/core/ports/driving"
)

// Ensure RecordService implements the interface.
var _ driving.RecordQuery = (*RecordService)(nil)

// RecordService provides read access to synced records.
type RecordService struct {
	records driven.RecordStore
}

// NewRecordService creates a new record service.
func NewRecordService(records driven.RecordStore) *RecordService {
	return &RecordService{records: records}
}

// Get retrieves one record by natural key.
func (s *RecordService) Get(ctx context.Context, entityType domain.EntityType, key string) (*domain.StoredRecord, error) {
	if err := checkType(entityType); err != nil {
		return nil, err
	}
	return s.records.Get(ctx, entityType, key)
}

// List returns records matching the filter.
func (s *RecordService) List(
	ctx context.Context,
	entityType domain.EntityType,
	filter domain.RecordFilter,
) ([]domain.StoredRecord, error) {
	if err := checkType(entityType); err != nil {
		return nil, err
	}
	if filter.Limit < 0 || filter.Offset < 0 {
		return nil, fmt.Errorf("%w: negative limit or offset", domain.ErrInvalidInput)
	}
	return s.records.List(ctx, entityType, filter)
}

// RecentChanges returns records updated since the given time, newest first.
func (s *RecordService) RecentChanges(
	ctx context.Context,
	entityType domain.EntityType,
	since time.Time,
	limit int,
) ([]domain.StoredRecord, error) {
	if err := checkType(entityType); err != nil {
		return nil, err
	}
	return s.records.ChangedSince(ctx, entityType, since, limit)
}

// Count returns the number of stored records of a type.
func (s *RecordService) Count(ctx context.Context, entityType domain.EntityType) (int, error) {
	if err := checkType(entityType); err != nil {
		return 0, err
	}
	return s.records.Count(ctx, entityType)
}

func checkType(t domain.EntityType) error {
	if !t.IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrUnsupportedType, t)
	}
	return nil
}
