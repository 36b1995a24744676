package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/archibald-labs/archisync/internal/core/domain"
	"github.com/archibald-labs/archisync/internal/core/ports/driven"
	"github.com/archibald-labs/archisync/internal/core/ports/driving"
	"github.com/archibald-labs/archisync/internal/logger"
)

// Ensure SessionTracker implements the interface.
var _ driving.SessionTracker = (*SessionTracker)(nil)

// metricsWindow bounds the history GetMetrics aggregates.
const metricsWindow = 100

// SessionTracker records sync sessions and aggregates their health.
type SessionTracker struct {
	store driven.SessionStore
	keep  int
}

// NewSessionTracker creates a tracker that keeps the newest keep sessions
// per entity type. A keep of zero disables pruning.
func NewSessionTracker(store driven.SessionStore, keep int) *SessionTracker {
	return &SessionTracker{store: store, keep: keep}
}

// StartSession opens a running session.
func (t *SessionTracker) StartSession(
	ctx context.Context,
	entityType domain.EntityType,
	trigger domain.SyncTrigger,
) (string, error) {
	if !entityType.IsValid() {
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedType, entityType)
	}
	if trigger == "" {
		trigger = domain.TriggerManual
	}

	session := &domain.SyncSession{
		ID:         uuid.New().String(),
		EntityType: entityType,
		Status:     domain.SessionRunning,
		Trigger:    trigger,
		StartedAt:  time.Now(),
	}
	if err := t.store.Save(ctx, session); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}

	logger.Debug("session %s started for %s (%s)", session.ID, entityType, trigger)
	return session.ID, nil
}

// RecordProgress replaces the counts of a running session.
func (t *SessionTracker) RecordProgress(ctx context.Context, id string, counts domain.SyncCounts) error {
	session, err := t.running(ctx, id)
	if err != nil {
		return err
	}
	session.Counts = counts
	if err := t.store.Save(ctx, session); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// SetChecksum attaches the export checksum to a running session.
func (t *SessionTracker) SetChecksum(ctx context.Context, id, checksum string) error {
	session, err := t.running(ctx, id)
	if err != nil {
		return err
	}
	session.FileChecksum = checksum
	if err := t.store.Save(ctx, session); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// CompleteSession finalises a session exactly once.
func (t *SessionTracker) CompleteSession(
	ctx context.Context,
	id string,
	status domain.SessionStatus,
	counts domain.SyncCounts,
	errMsg string,
) error {
	if !status.IsValid() || !status.IsTerminal() {
		return fmt.Errorf("%w: status %q is not terminal", domain.ErrInvalidInput, status)
	}

	session, err := t.running(ctx, id)
	if err != nil {
		return err
	}

	session.Status = status
	session.Counts = counts
	session.Error = errMsg
	session.EndedAt = time.Now()
	if err := t.store.Save(ctx, session); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	logger.Info("%s sync %s in %s: %d processed, %d created, %d updated, %d deleted, %d skipped",
		session.EntityType, status, session.Duration().Round(time.Millisecond),
		counts.Processed, counts.Created, counts.Updated, counts.Deleted, counts.Skipped)

	if t.keep > 0 {
		if err := t.store.Prune(ctx, t.keep); err != nil {
			logger.Warn("failed to prune session history: %v", err)
		}
	}
	return nil
}

// Get retrieves one session.
func (t *SessionTracker) Get(ctx context.Context, id string) (*domain.SyncSession, error) {
	return t.store.Get(ctx, id)
}

// LastCompleted returns the most recent completed session of a type.
func (t *SessionTracker) LastCompleted(ctx context.Context, entityType domain.EntityType) (*domain.SyncSession, error) {
	return t.store.LastCompleted(ctx, entityType)
}

// GetHistory returns recent sessions, most recent first.
// An empty entity type returns every type.
func (t *SessionTracker) GetHistory(ctx context.Context, entityType domain.EntityType, limit int) ([]domain.SyncSession, error) {
	if entityType != "" && !entityType.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedType, entityType)
	}
	return t.store.List(ctx, entityType, limit)
}

// GetMetrics aggregates the recent history of an entity type.
//
// Running and skipped sessions are ignored. Consecutive failures count
// failed sessions since the most recent completed one; partial sessions
// neither break nor extend the streak.
func (t *SessionTracker) GetMetrics(ctx context.Context, entityType domain.EntityType) (*domain.SessionMetrics, error) {
	sessions, err := t.GetHistory(ctx, entityType, metricsWindow)
	if err != nil {
		return nil, err
	}

	m := &domain.SessionMetrics{EntityType: entityType}

	var completed int
	var totalMs int64
	streakOpen := true

	// Newest first.
	for i := range sessions {
		s := &sessions[i]
		if s.Status == domain.SessionRunning || s.Status == domain.SessionSkipped {
			continue
		}

		m.TotalSessions++
		totalMs += s.Duration().Milliseconds()
		if m.LastStatus == "" {
			m.LastStatus = s.Status
		}
		if m.LastError == "" && s.Error != "" {
			m.LastError = s.Error
		}

		switch s.Status {
		case domain.SessionCompleted:
			completed++
			if m.LastSuccessAt.IsZero() {
				m.LastSuccessAt = s.EndedAt
			}
			streakOpen = false
		case domain.SessionFailed:
			if streakOpen {
				m.ConsecutiveFailures++
			}
		}
	}

	if m.TotalSessions > 0 {
		m.SuccessRate = float64(completed) / float64(m.TotalSessions)
		m.AvgDurationMs = totalMs / int64(m.TotalSessions)
	}
	return m, nil
}

// running loads a session and checks it has not been finalised.
func (t *SessionTracker) running(ctx context.Context, id string) (*domain.SyncSession, error) {
	session, err := t.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if session.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionFinalised, id)
	}
	return session, nil
}
