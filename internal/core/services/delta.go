package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/archibald-labs/archisync/internal/contenthash"
	"github.com/archibald-labs/archisync/internal/core/domain"
	"github.com/archibald-labs/archisync/internal/core/ports/driven"
)

// DeltaStore folds parsed records into the record store, writing only
// when the significant fields changed.
type DeltaStore struct {
	records driven.RecordStore
}

// NewDeltaStore creates a delta store over a record store.
func NewDeltaStore(records driven.RecordStore) *DeltaStore {
	return &DeltaStore{records: records}
}

// Upsert inserts, updates or skips a record.
//
// A record whose hash matches the stored one is skipped: only its
// last_sync_at is bumped so stale deletion still sees it. With
// AlwaysOverwrite the hash comparison is bypassed.
func (d *DeltaStore) Upsert(
	ctx context.Context,
	policy domain.EntityPolicy,
	rec domain.ParsedRecord,
	syncedAt time.Time,
) (domain.UpsertOutcome, error) {
	if rec.Key == "" {
		return "", fmt.Errorf("%w: record without key", domain.ErrInvalidInput)
	}

	hash := contenthash.Compute(rec.Fields, policy.SignificantFields)

	existing, err := d.records.Get(ctx, rec.Type, rec.Key)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return "", fmt.Errorf("get record: %w", err)
	}

	if existing == nil {
		stored := &domain.StoredRecord{
			Type:        rec.Type,
			Key:         rec.Key,
			Fields:      rec.Fields.Clone(),
			ContentHash: hash,
			LastSyncAt:  syncedAt,
			CreatedAt:   syncedAt,
			UpdatedAt:   syncedAt,
		}
		if err := d.records.Save(ctx, stored); err != nil {
			return "", fmt.Errorf("insert record: %w", err)
		}
		return domain.OutcomeInserted, nil
	}

	if !policy.AlwaysOverwrite && existing.ContentHash == hash {
		if err := d.records.Touch(ctx, rec.Type, rec.Key, syncedAt); err != nil {
			return "", fmt.Errorf("touch record: %w", err)
		}
		return domain.OutcomeSkipped, nil
	}

	stored := &domain.StoredRecord{
		Type:        rec.Type,
		Key:         rec.Key,
		Fields:      rec.Fields.Clone(),
		ContentHash: hash,
		LastSyncAt:  syncedAt,
		CreatedAt:   existing.CreatedAt,
		UpdatedAt:   syncedAt,
	}
	if err := d.records.Save(ctx, stored); err != nil {
		return "", fmt.Errorf("update record: %w", err)
	}
	return domain.OutcomeUpdated, nil
}

// DeleteStale removes records of a type not seen since the cutoff.
func (d *DeltaStore) DeleteStale(ctx context.Context, entityType domain.EntityType, before time.Time) (int, error) {
	n, err := d.records.DeleteStale(ctx, entityType, before)
	if err != nil {
		return 0, fmt.Errorf("delete stale: %w", err)
	}
	return n, nil
}
