package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/archibald-labs/archisync/internal/core/domain"
	"github.com/archibald-labs/archisync/internal/core/ports/driven"
)

// recordStore implements driven.RecordStore over the per-entity tables.
type recordStore struct {
	store *Store
}

var _ driven.RecordStore = (*recordStore)(nil)

// Get retrieves a record.
func (s *recordStore) Get(ctx context.Context, entityType domain.EntityType, key string) (*domain.StoredRecord, error) {
	table, err := recordTable(entityType)
	if err != nil {
		return nil, err
	}

	//nolint:gosec // table name from closed set
	row := s.store.db.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT key, fields, content_hash, last_sync_at, created_at, updated_at
		FROM %s WHERE key = ?
	`, table), key)

	rec, err := scanRecord(row.Scan, entityType)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return rec, err
}

// Save inserts or fully replaces a record.
func (s *recordStore) Save(ctx context.Context, record *domain.StoredRecord) error {
	if record == nil || record.Key == "" {
		return domain.ErrInvalidInput
	}
	table, err := recordTable(record.Type)
	if err != nil {
		return err
	}

	fieldsJSON, err := json.Marshal(record.Fields)
	if err != nil {
		return fmt.Errorf("marshalling fields: %w", err)
	}

	//nolint:gosec // table name from closed set
	_, err = s.store.exec(ctx, fmt.Sprintf(`
		INSERT INTO %s (key, fields, content_hash, last_sync_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			fields = excluded.fields,
			content_hash = excluded.content_hash,
			last_sync_at = excluded.last_sync_at,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at
	`, table), record.Key, string(fieldsJSON), record.ContentHash,
		formatTime(record.LastSyncAt), formatTime(record.CreatedAt), formatTime(record.UpdatedAt))
	if err != nil {
		return fmt.Errorf("saving %s record: %w", record.Type, err)
	}
	return nil
}

// Touch bumps last_sync_at without writing business fields.
func (s *recordStore) Touch(ctx context.Context, entityType domain.EntityType, key string, at time.Time) error {
	table, err := recordTable(entityType)
	if err != nil {
		return err
	}

	//nolint:gosec // table name from closed set
	result, err := s.store.exec(ctx, fmt.Sprintf(
		"UPDATE %s SET last_sync_at = ? WHERE key = ?", table), formatTime(at), key)
	if err != nil {
		return fmt.Errorf("touching %s record: %w", entityType, err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List returns records matching the filter, ordered by key.
// Key prefix and paging run in SQL unless field filters apply.
func (s *recordStore) List(
	ctx context.Context,
	entityType domain.EntityType,
	filter domain.RecordFilter,
) ([]domain.StoredRecord, error) {
	table, err := recordTable(entityType)
	if err != nil {
		return nil, err
	}

	limit, offset := filter.Limit, filter.Offset
	if len(filter.FieldEquals) > 0 {
		limit, offset = 0, 0
	}

	//nolint:gosec // table name from closed set
	rows, err := s.store.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT key, fields, content_hash, last_sync_at, created_at, updated_at
		FROM %s
		WHERE substr(key, 1, ?) = ?
		ORDER BY key
		LIMIT ? OFFSET ?
	`, table), len(filter.KeyPrefix), filter.KeyPrefix, sqlLimit(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("querying %s records: %w", entityType, err)
	}
	defer rows.Close()

	var records []domain.StoredRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		rec, err := scanRecord(rows.Scan, entityType)
		if err != nil {
			return nil, err
		}
		if filter.Matches(rec) {
			records = append(records, *rec)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s records: %w", entityType, err)
	}

	if len(filter.FieldEquals) > 0 {
		records = pageRecords(records, filter.Offset, filter.Limit)
	}
	return records, nil
}

// Count returns the number of stored records of a type.
func (s *recordStore) Count(ctx context.Context, entityType domain.EntityType) (int, error) {
	table, err := recordTable(entityType)
	if err != nil {
		return 0, err
	}

	var count int
	//nolint:gosec // table name from closed set
	if err := s.store.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting %s records: %w", entityType, err)
	}
	return count, nil
}

// ChangedSince returns records updated at or after since, newest first.
func (s *recordStore) ChangedSince(
	ctx context.Context,
	entityType domain.EntityType,
	since time.Time,
	limit int,
) ([]domain.StoredRecord, error) {
	table, err := recordTable(entityType)
	if err != nil {
		return nil, err
	}

	//nolint:gosec // table name from closed set
	rows, err := s.store.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT key, fields, content_hash, last_sync_at, created_at, updated_at
		FROM %s
		WHERE updated_at >= ?
		ORDER BY updated_at DESC, key
		LIMIT ?
	`, table), formatTime(since), sqlLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("querying changed %s records: %w", entityType, err)
	}
	defer rows.Close()

	var records []domain.StoredRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		rec, err := scanRecord(rows.Scan, entityType)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating changed %s records: %w", entityType, err)
	}
	return records, nil
}

// DeleteStale removes records whose last_sync_at is before the cutoff.
func (s *recordStore) DeleteStale(ctx context.Context, entityType domain.EntityType, before time.Time) (int, error) {
	table, err := recordTable(entityType)
	if err != nil {
		return 0, err
	}

	//nolint:gosec // table name from closed set
	result, err := s.store.exec(ctx, fmt.Sprintf(
		"DELETE FROM %s WHERE last_sync_at < ?", table), formatTime(before))
	if err != nil {
		return 0, fmt.Errorf("deleting stale %s records: %w", entityType, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted %s records: %w", entityType, err)
	}
	return int(n), nil
}

// scanRecord scans a record row through the given scan function,
// which may come from *sql.Row or *sql.Rows.
func scanRecord(scan func(dest ...any) error, entityType domain.EntityType) (*domain.StoredRecord, error) {
	rec := domain.StoredRecord{Type: entityType}
	var fieldsJSON, lastSync, createdAt, updatedAt string

	if err := scan(&rec.Key, &fieldsJSON, &rec.ContentHash, &lastSync, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning %s record: %w", entityType, err)
	}

	if err := json.Unmarshal([]byte(fieldsJSON), &rec.Fields); err != nil {
		return nil, fmt.Errorf("unmarshalling fields: %w", err)
	}
	if rec.Fields == nil {
		rec.Fields = domain.Fields{}
	}
	rec.LastSyncAt = parseTime(lastSync)
	rec.CreatedAt = parseTime(createdAt)
	rec.UpdatedAt = parseTime(updatedAt)

	return &rec, nil
}

func pageRecords(records []domain.StoredRecord, offset, limit int) []domain.StoredRecord {
	if offset >= len(records) {
		return nil
	}
	records = records[offset:]
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records
}
