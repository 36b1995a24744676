package driving

import (
	"context"

	"github.com/archibald-labs/archisync/internal/core/domain"
)

// Matcher links records across entity types.
type Matcher interface {
	// Match runs every tier for a pair and persists the associations.
	// Safe to call at any time; it only reads committed records.
	Match(ctx context.Context, pair domain.PairType) (*domain.MatchResult, error)

	// Associations returns the associations of a source record, best first.
	Associations(ctx context.Context, pair domain.PairType, sourceKey string) ([]domain.MatchAssociation, error)

	// AssociationsForTarget returns the associations pointing at a target record.
	AssociationsForTarget(ctx context.Context, pair domain.PairType, targetKey string) ([]domain.MatchAssociation, error)

	// LinkManual records an operator association with confidence 1.0.
	// Both records must exist.
	LinkManual(ctx context.Context, pair domain.PairType, sourceKey, targetKey string) (*domain.MatchAssociation, error)

	// UnlinkManual removes an operator association.
	UnlinkManual(ctx context.Context, pair domain.PairType, sourceKey, targetKey string) error
}
