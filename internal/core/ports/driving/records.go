package driving

import (
	"context"
	"time"

	"github.com/archibald-labs/archisync/internal/core/domain"
)

// RecordQuery reads synced records.
type RecordQuery interface {
	// Get retrieves one record by natural key.
	Get(ctx context.Context, entityType domain.EntityType, key string) (*domain.StoredRecord, error)

	// List returns records matching the filter.
	List(ctx context.Context, entityType domain.EntityType, filter domain.RecordFilter) ([]domain.StoredRecord, error)

	// RecentChanges returns records updated since the given time, newest first.
	RecentChanges(ctx context.Context, entityType domain.EntityType, since time.Time, limit int) ([]domain.StoredRecord, error)

	// Count returns the number of stored records of a type.
	Count(ctx context.Context, entityType domain.EntityType) (int, error)
}
