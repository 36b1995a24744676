package driven

import (
	"context"
	"time"

	"github.com/archibald-labs/archisync/internal/core/domain"
)

// RecordStore persists entity records keyed by entity type and natural key.
// Single-record writes are atomic.
type RecordStore interface {
	// Get retrieves a record. Returns domain.ErrNotFound if absent.
	Get(ctx context.Context, entityType domain.EntityType, key string) (*domain.StoredRecord, error)

	// Save inserts or fully replaces a record, including its hash and timestamps.
	Save(ctx context.Context, record *domain.StoredRecord) error

	// Touch bumps last_sync_at without writing business fields.
	Touch(ctx context.Context, entityType domain.EntityType, key string, at time.Time) error

	// List returns records matching the filter, ordered by key.
	List(ctx context.Context, entityType domain.EntityType, filter domain.RecordFilter) ([]domain.StoredRecord, error)

	// Count returns the number of stored records of a type.
	Count(ctx context.Context, entityType domain.EntityType) (int, error)

	// ChangedSince returns records updated at or after since, newest first.
	ChangedSince(ctx context.Context, entityType domain.EntityType, since time.Time, limit int) ([]domain.StoredRecord, error)

	// DeleteStale removes records whose last_sync_at is before the cutoff.
	// Returns the number of records removed.
	DeleteStale(ctx context.Context, entityType domain.EntityType, before time.Time) (int, error)
}
