package domain

import "time"

// SessionStatus is the lifecycle state of a sync session.
type SessionStatus string

// Session statuses. Every status except running is terminal.
const (
	SessionRunning   SessionStatus = "running"
	SessionCompleted SessionStatus = "completed"
	SessionFailed    SessionStatus = "failed"
	SessionPartial   SessionStatus = "partial"
	SessionSkipped   SessionStatus = "skipped"
)

// IsTerminal returns true once the session can no longer change.
func (s SessionStatus) IsTerminal() bool {
	return s != SessionRunning && s != ""
}

// IsValid returns true if the status is recognised.
func (s SessionStatus) IsValid() bool {
	switch s {
	case SessionRunning, SessionCompleted, SessionFailed, SessionPartial, SessionSkipped:
		return true
	default:
		return false
	}
}

// SyncTrigger records what started a sync.
type SyncTrigger string

// Sync triggers.
const (
	TriggerScheduled SyncTrigger = "scheduled"
	TriggerManual    SyncTrigger = "manual"
	TriggerForced    SyncTrigger = "forced"
	TriggerWatch     SyncTrigger = "watch"
)

// SyncCounts tallies what a pipeline did with its records.
type SyncCounts struct {
	// Processed counts records that reached the delta store.
	Processed int

	// Created counts inserted records.
	Created int

	// Updated counts records whose significant fields changed.
	Updated int

	// Deleted counts stale records removed after a completed run.
	Deleted int

	// Skipped counts records whose content hash was unchanged.
	Skipped int

	// Filtered counts garbage rows dropped before the store.
	Filtered int

	// Partial counts records built from a short cycle page.
	Partial int
}

// Add accumulates another set of counts.
func (c *SyncCounts) Add(o SyncCounts) {
	c.Processed += o.Processed
	c.Created += o.Created
	c.Updated += o.Updated
	c.Deleted += o.Deleted
	c.Skipped += o.Skipped
	c.Filtered += o.Filtered
	c.Partial += o.Partial
}

// SyncSession is the audit entry for one pipeline run.
type SyncSession struct {
	// ID is the unique identifier (UUID).
	ID string

	// EntityType is the export that was synced.
	EntityType EntityType

	// Status is running until the session is finalised.
	Status SessionStatus

	// Trigger records what started the run.
	Trigger SyncTrigger

	// StartedAt is when the session was opened.
	StartedAt time.Time

	// EndedAt is when the session was finalised. Zero while running.
	EndedAt time.Time

	// Counts holds the record tallies.
	Counts SyncCounts

	// Error contains the failure message, if any.
	Error string

	// FileChecksum is the digest of the PDF that was decoded.
	FileChecksum string
}

// Duration returns the wall time of a finalised session.
func (s *SyncSession) Duration() time.Duration {
	if s.EndedAt.IsZero() {
		return 0
	}
	return s.EndedAt.Sub(s.StartedAt)
}

// SessionMetrics aggregates the history of one entity type.
type SessionMetrics struct {
	// EntityType is the entity the metrics describe.
	EntityType EntityType

	// TotalSessions counts finalised sessions considered.
	TotalSessions int

	// SuccessRate is completed sessions over total, in [0, 1].
	SuccessRate float64

	// AvgDurationMs is the mean duration of considered sessions.
	AvgDurationMs int64

	// LastStatus is the status of the most recent finalised session.
	LastStatus SessionStatus

	// LastError is the most recent non-empty error message.
	LastError string

	// LastSuccessAt is when the most recent completed session ended.
	LastSuccessAt time.Time

	// ConsecutiveFailures counts failed sessions since the last success.
	ConsecutiveFailures int
}

// SyncResult is returned to callers of a sync.
type SyncResult struct {
	// SessionID identifies the recorded session.
	SessionID string

	// EntityType is the export that was synced.
	EntityType EntityType

	// Status is the terminal session status.
	Status SessionStatus

	// Counts holds the record tallies.
	Counts SyncCounts

	// DurationMs is the wall time of the run.
	DurationMs int64

	// Error contains the failure message, if any.
	Error string
}
