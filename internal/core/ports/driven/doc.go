// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - RecordStore: Persisted entity records with content hashes
//   - MatchStore: Cross-entity match associations
//   - SessionStore: Sync session history
//   - EntityCatalog: Page-cycle layouts and per-type policies
//   - PDFLocator: Finds the latest export for an entity type
//   - PDFOpener: Opens an export as a sequence of page tables
//   - FieldNormaliser: Converts raw cells into canonical values
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - ReviewExporter: Writes unmatched and low-confidence associations for review.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or pipeline package
package driven
