package driving

import (
	"context"

	"github.com/archibald-labs/archisync/internal/core/domain"
)

// SessionTracker records the lifecycle of sync sessions.
type SessionTracker interface {
	// StartSession opens a running session and returns its ID.
	StartSession(ctx context.Context, entityType domain.EntityType, trigger domain.SyncTrigger) (string, error)

	// RecordProgress replaces the counts of a running session.
	// Returns domain.ErrSessionFinalised once the session has ended.
	RecordProgress(ctx context.Context, id string, counts domain.SyncCounts) error

	// CompleteSession finalises a session exactly once.
	CompleteSession(ctx context.Context, id string, status domain.SessionStatus, counts domain.SyncCounts, errMsg string) error

	// SetChecksum attaches the export checksum to a running session.
	SetChecksum(ctx context.Context, id, checksum string) error

	// Get retrieves one session.
	Get(ctx context.Context, id string) (*domain.SyncSession, error)

	// LastCompleted returns the most recent completed session of a type.
	// Returns domain.ErrNotFound when the type never completed.
	LastCompleted(ctx context.Context, entityType domain.EntityType) (*domain.SyncSession, error)

	// GetHistory returns recent sessions, most recent first.
	GetHistory(ctx context.Context, entityType domain.EntityType, limit int) ([]domain.SyncSession, error)

	// GetMetrics aggregates the history of an entity type.
	GetMetrics(ctx context.Context, entityType domain.EntityType) (*domain.SessionMetrics, error)
}
