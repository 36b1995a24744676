package driven

import "github.com/archibald-labs/archisync/internal/core/domain"

// EntityCatalog describes how each entity type is decoded and stored.
type EntityCatalog interface {
	// Layout returns the page-cycle layout of an entity type.
	Layout(entityType domain.EntityType) (domain.Layout, error)

	// Policy returns the delta-store policy of an entity type,
	// with configuration overrides applied.
	Policy(entityType domain.EntityType) (domain.EntityPolicy, error)
}
