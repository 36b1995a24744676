package driven

import (
	"context"

	"github.com/archibald-labs/archisync/internal/core/domain"
)

// SessionStore persists sync session history.
type SessionStore interface {
	// Save creates or updates a session based on ID.
	Save(ctx context.Context, session *domain.SyncSession) error

	// Get retrieves a session. Returns domain.ErrNotFound if absent.
	Get(ctx context.Context, id string) (*domain.SyncSession, error)

	// List returns recent sessions of an entity type, most recent first.
	// An empty entity type lists all types. A limit of 0 means no limit.
	List(ctx context.Context, entityType domain.EntityType, limit int) ([]domain.SyncSession, error)

	// LastCompleted returns the most recent completed session of a type.
	// Returns domain.ErrNotFound if there is none.
	LastCompleted(ctx context.Context, entityType domain.EntityType) (*domain.SyncSession, error)

	// Prune removes finalised sessions beyond the retention limit.
	// Keeps the most recent 'keep' sessions per entity type.
	Prune(ctx context.Context, keep int) error
}
