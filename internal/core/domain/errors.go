package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown entity type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrSyncInProgress indicates a sync is already running for the entity type.
	ErrSyncInProgress = errors.New("sync in progress")

	// Pipeline Errors.

	// ErrDecode indicates a page could not be extracted or yielded no table.
	// The session that hit it is finalised as failed.
	ErrDecode = errors.New("decode failed")

	// ErrSessionFinalised indicates an update to a session that already
	// reached a terminal status.
	ErrSessionFinalised = errors.New("session already finalised")

	// ErrExportNotFound indicates no PDF export is available for the entity type.
	ErrExportNotFound = errors.New("export not found")

	// Matching Errors.

	// ErrUnknownPair indicates an unrecognised match pair.
	ErrUnknownPair = errors.New("unknown match pair")

	// ErrNotManual indicates an operator action on an automatic association.
	ErrNotManual = errors.New("association is not a manual link")
)
