// Package domain defines the core business entities for archisync.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - EntityType: One of the six ERP export kinds (customers, products, ...)
//   - Layout: The page-cycle shape of an export
//   - ParsedRecord / StoredRecord: A decoded row and its persisted form
//   - MatchAssociation: A scored link between records of two entity types
//   - SyncSession: The audit entry for one pipeline run
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
