package driving

import (
	"context"

	"github.com/archibald-labs/archisync/internal/core/domain"
)

// Scheduler runs entity syncs at configured intervals.
type Scheduler interface {
	// Start begins running scheduled tasks.
	// Blocks until context is cancelled or Stop is called.
	Start(ctx context.Context) error

	// Stop gracefully stops all running tasks.
	Stop() error

	// Tasks returns the persisted state of every scheduled sync.
	Tasks(ctx context.Context) ([]domain.ScheduledTask, error)

	// Runs returns the latest scheduled runs for an entity type, newest first.
	Runs(ctx context.Context, entityType domain.EntityType, limit int) ([]domain.ScheduledRun, error)
}
