// Package entities is the catalogue of ERP export layouts.
//
// Each entity type has a fixed page cycle: the columns of one record are
// spread over 3 to 8 consecutive pages, and the cycle repeats until the end
// of the file. A layout names, per field, the page offset inside the cycle,
// the header texts that identify its column, and an index fallback for the
// exports whose header row cannot be read.
//
// The catalogue also owns the default delta-store policy of each type.
// Policies can be overridden per type from configuration.
package entities
