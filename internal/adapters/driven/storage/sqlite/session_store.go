package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/archibald-labs/archisync/internal/core/domain"
	"github.com/archibald-labs/archisync/internal/core/ports/driven"
)

// sessionStore implements driven.SessionStore.
type sessionStore struct {
	store *Store
}

var _ driven.SessionStore = (*sessionStore)(nil)

const sessionColumns = `id, entity_type, status, sync_trigger, started_at, ended_at,
	processed, created, updated, deleted, skipped, filtered, partial, error, file_checksum`

// Save creates or updates a session based on ID.
func (s *sessionStore) Save(ctx context.Context, session *domain.SyncSession) error {
	if session == nil || session.ID == "" {
		return domain.ErrInvalidInput
	}

	c := session.Counts
	_, err := s.store.exec(ctx, `
		INSERT INTO sync_sessions (`+sessionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			ended_at = excluded.ended_at,
			processed = excluded.processed,
			created = excluded.created,
			updated = excluded.updated,
			deleted = excluded.deleted,
			skipped = excluded.skipped,
			filtered = excluded.filtered,
			partial = excluded.partial,
			error = excluded.error,
			file_checksum = excluded.file_checksum
	`, session.ID, session.EntityType, session.Status, session.Trigger,
		formatTime(session.StartedAt), formatNullableTime(session.EndedAt),
		c.Processed, c.Created, c.Updated, c.Deleted, c.Skipped, c.Filtered, c.Partial,
		nullString(session.Error), nullString(session.FileChecksum))
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// Get retrieves a session.
func (s *sessionStore) Get(ctx context.Context, id string) (*domain.SyncSession, error) {
	row := s.store.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sync_sessions WHERE id = ?`, id)

	session, err := scanSession(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return session, err
}

// List returns recent sessions, most recent first.
func (s *sessionStore) List(ctx context.Context, entityType domain.EntityType, limit int) ([]domain.SyncSession, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT `+sessionColumns+` FROM sync_sessions
		WHERE ? = '' OR entity_type = ?
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`, entityType, entityType, sqlLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var sessions []domain.SyncSession //nolint:prealloc // size unknown from query
	for rows.Next() {
		session, err := scanSession(rows.Scan)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sessions: %w", err)
	}
	return sessions, nil
}

// LastCompleted returns the most recent completed session of a type.
func (s *sessionStore) LastCompleted(ctx context.Context, entityType domain.EntityType) (*domain.SyncSession, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT `+sessionColumns+` FROM sync_sessions
		WHERE entity_type = ? AND status = ?
		ORDER BY started_at DESC, id DESC
		LIMIT 1
	`, entityType, domain.SessionCompleted)

	session, err := scanSession(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return session, err
}

// Prune keeps the most recent 'keep' finalised sessions per entity type.
// Running sessions are never pruned.
func (s *sessionStore) Prune(ctx context.Context, keep int) error {
	_, err := s.store.exec(ctx, `
		DELETE FROM sync_sessions
		WHERE status != ? AND id NOT IN (
			SELECT id FROM (
				SELECT id, ROW_NUMBER() OVER (
					PARTITION BY entity_type ORDER BY started_at DESC, id DESC
				) AS rn
				FROM sync_sessions
				WHERE status != ?
			) WHERE rn <= ?
		)
	`, domain.SessionRunning, domain.SessionRunning, keep)
	if err != nil {
		return fmt.Errorf("pruning sessions: %w", err)
	}
	return nil
}

func scanSession(scan func(dest ...any) error) (*domain.SyncSession, error) {
	var session domain.SyncSession
	var startedAt string
	var endedAt, errMsg, checksum sql.NullString
	c := &session.Counts

	if err := scan(&session.ID, &session.EntityType, &session.Status, &session.Trigger,
		&startedAt, &endedAt,
		&c.Processed, &c.Created, &c.Updated, &c.Deleted, &c.Skipped, &c.Filtered, &c.Partial,
		&errMsg, &checksum); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning session: %w", err)
	}

	session.StartedAt = parseTime(startedAt)
	session.EndedAt = parseNullableTime(endedAt)
	session.Error = errMsg.String
	session.FileChecksum = checksum.String
	return &session, nil
}
