package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/archibald-labs/archisync/internal/core/domain"
	"github.com/archibald-labs/archisync/internal/core/ports/driven"
)

// matchStore implements driven.MatchStore.
type matchStore struct {
	store *Store
}

var _ driven.MatchStore = (*matchStore)(nil)

const matchColumns = `id, pair, source_key, target_key, confidence, strategy,
	created_by, low_confidence, created_at, updated_at`

// Upsert writes an association. Manual rows are never overwritten by
// automatic ones.
func (s *matchStore) Upsert(ctx context.Context, assoc *domain.MatchAssociation) (bool, error) {
	if assoc == nil || assoc.SourceKey == "" || assoc.TargetKey == "" {
		return false, domain.ErrInvalidInput
	}

	now := formatTime(time.Now())
	var inserted bool

	err := s.store.inTx(ctx, func(tx *sql.Tx) error {
		inserted = false

		var createdBy string
		err := tx.QueryRowContext(ctx, `
			SELECT created_by FROM match_associations
			WHERE pair = ? AND source_key = ? AND target_key = ?
		`, assoc.Pair, assoc.SourceKey, assoc.TargetKey).Scan(&createdBy)

		switch {
		case errors.Is(err, sql.ErrNoRows):
			_, err = tx.ExecContext(ctx, `
				INSERT INTO match_associations (`+matchColumns+`)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			`, assoc.ID, assoc.Pair, assoc.SourceKey, assoc.TargetKey, assoc.Confidence,
				assoc.Strategy, assoc.CreatedBy, boolToInt(assoc.LowConfidence), now, now)
			inserted = err == nil
			return err
		case err != nil:
			return err
		case domain.CreatedBy(createdBy) == domain.CreatedByManual && !assoc.IsManual():
			return nil
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE match_associations SET
				confidence = ?, strategy = ?, created_by = ?, low_confidence = ?, updated_at = ?
			WHERE pair = ? AND source_key = ? AND target_key = ?
		`, assoc.Confidence, assoc.Strategy, assoc.CreatedBy, boolToInt(assoc.LowConfidence), now,
			assoc.Pair, assoc.SourceKey, assoc.TargetKey)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("upserting association: %w", err)
	}
	return inserted, nil
}

// Get retrieves one association.
func (s *matchStore) Get(
	ctx context.Context,
	pair domain.PairType,
	sourceKey, targetKey string,
) (*domain.MatchAssociation, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT `+matchColumns+` FROM match_associations
		WHERE pair = ? AND source_key = ? AND target_key = ?
	`, pair, sourceKey, targetKey)

	assoc, err := scanAssociation(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return assoc, err
}

// ListBySource returns the associations of a source record, best first.
func (s *matchStore) ListBySource(
	ctx context.Context,
	pair domain.PairType,
	sourceKey string,
) ([]domain.MatchAssociation, error) {
	return s.query(ctx, `
		SELECT `+matchColumns+` FROM match_associations
		WHERE pair = ? AND source_key = ?
		ORDER BY confidence DESC, source_key, target_key
	`, pair, sourceKey)
}

// ListByTarget returns the associations of a target record, best first.
func (s *matchStore) ListByTarget(
	ctx context.Context,
	pair domain.PairType,
	targetKey string,
) ([]domain.MatchAssociation, error) {
	return s.query(ctx, `
		SELECT `+matchColumns+` FROM match_associations
		WHERE pair = ? AND target_key = ?
		ORDER BY confidence DESC, source_key, target_key
	`, pair, targetKey)
}

// List returns every association of a pair.
func (s *matchStore) List(ctx context.Context, pair domain.PairType) ([]domain.MatchAssociation, error) {
	return s.query(ctx, `
		SELECT `+matchColumns+` FROM match_associations
		WHERE pair = ?
		ORDER BY confidence DESC, source_key, target_key
	`, pair)
}

// Delete removes one association regardless of origin.
func (s *matchStore) Delete(ctx context.Context, pair domain.PairType, sourceKey, targetKey string) error {
	result, err := s.store.exec(ctx, `
		DELETE FROM match_associations
		WHERE pair = ? AND source_key = ? AND target_key = ?
	`, pair, sourceKey, targetKey)
	if err != nil {
		return fmt.Errorf("deleting association: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *matchStore) query(ctx context.Context, query string, args ...any) ([]domain.MatchAssociation, error) {
	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying associations: %w", err)
	}
	defer rows.Close()

	var assocs []domain.MatchAssociation //nolint:prealloc // size unknown from query
	for rows.Next() {
		assoc, err := scanAssociation(rows.Scan)
		if err != nil {
			return nil, err
		}
		assocs = append(assocs, *assoc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating associations: %w", err)
	}
	return assocs, nil
}

func scanAssociation(scan func(dest ...any) error) (*domain.MatchAssociation, error) {
	var assoc domain.MatchAssociation
	var lowConfidence int
	var createdAt, updatedAt string

	if err := scan(&assoc.ID, &assoc.Pair, &assoc.SourceKey, &assoc.TargetKey, &assoc.Confidence,
		&assoc.Strategy, &assoc.CreatedBy, &lowConfidence, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning association: %w", err)
	}

	assoc.LowConfidence = lowConfidence == 1
	assoc.CreatedAt = parseTime(createdAt)
	assoc.UpdatedAt = parseTime(updatedAt)
	return &assoc, nil
}
