package driven

import (
	"context"

	"github.com/archibald-labs/archisync/internal/core/domain"
)

// MatchStore persists match associations. The triple
// (pair, source key, target key) identifies an association.
type MatchStore interface {
	// Upsert writes an association. An existing automatic association is
	// updated in place; an existing manual one is left untouched.
	// Returns true if a new row was inserted.
	Upsert(ctx context.Context, assoc *domain.MatchAssociation) (bool, error)

	// Get retrieves one association. Returns domain.ErrNotFound if absent.
	Get(ctx context.Context, pair domain.PairType, sourceKey, targetKey string) (*domain.MatchAssociation, error)

	// ListBySource returns the associations of a source record, best first.
	ListBySource(ctx context.Context, pair domain.PairType, sourceKey string) ([]domain.MatchAssociation, error)

	// ListByTarget returns the associations of a target record, best first.
	ListByTarget(ctx context.Context, pair domain.PairType, targetKey string) ([]domain.MatchAssociation, error)

	// List returns every association of a pair.
	List(ctx context.Context, pair domain.PairType) ([]domain.MatchAssociation, error)

	// Delete removes one association regardless of origin.
	Delete(ctx context.Context, pair domain.PairType, sourceKey, targetKey string) error
}
