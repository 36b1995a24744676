package driving

import (
	"context"

	"github.com/archibald-labs/archisync/internal/core/domain"
)

// SyncOrchestrator runs the decode, normalise, filter and upsert pipeline
// for entity exports.
type SyncOrchestrator interface {
	// Sync runs the pipeline for one entity type.
	// Returns domain.ErrSyncInProgress if the type is already syncing.
	// A failed or partial run still returns its result alongside any error.
	Sync(ctx context.Context, entityType domain.EntityType, opts SyncOptions) (*domain.SyncResult, error)

	// SyncAll runs every entity pipeline concurrently, then the matchers
	// whose two sides completed.
	SyncAll(ctx context.Context, opts SyncOptions) ([]*domain.SyncResult, error)

	// Status returns sync status for an entity type.
	Status(ctx context.Context, entityType domain.EntityType) (*SyncStatus, error)
}

// SyncOptions tunes a single sync run.
type SyncOptions struct {
	// Trigger records what started the run. Defaults to manual.
	Trigger domain.SyncTrigger

	// Path overrides the located export file.
	Path string

	// ShouldStop is polled every few records. Returning true ends the run
	// after the record in flight, with status partial.
	ShouldStop func() bool

	// SkipMatching disables the matcher run after a completed sync.
	SkipMatching bool
}

// SyncStatus represents the current state of a sync operation.
type SyncStatus struct {
	// EntityType identifies the pipeline.
	EntityType domain.EntityType

	// SessionID identifies the running session.
	SessionID string

	// Running indicates if sync is currently in progress.
	Running bool

	// Counts holds the tallies so far.
	Counts domain.SyncCounts

	// PagesRead is the number of pages decoded so far.
	PagesRead int

	// TotalPages is the page count of the export.
	TotalPages int
}
