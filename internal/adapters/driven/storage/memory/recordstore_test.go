package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archibald-labs/archisync/internal/core/domain"
)

func storedCustomer(key, name string, seen time.Time) *domain.StoredRecord {
	return &domain.StoredRecord{
		Type:        domain.EntityCustomers,
		Key:         key,
		Fields:      domain.Fields{domain.FieldCustomerID: key, "nome": name},
		ContentHash: "h-" + key,
		LastSyncAt:  seen,
		CreatedAt:   seen,
		UpdatedAt:   seen,
	}
}

func TestRecordStore_SaveAndGet(t *testing.T) {
	store := NewRecordStore()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.Save(ctx, storedCustomer("C1", "Fresis", now)))

	got, err := store.Get(ctx, domain.EntityCustomers, "C1")
	require.NoError(t, err)
	assert.Equal(t, "Fresis", got.Fields.Get("nome"))

	// Mutating the returned copy leaves the store intact.
	got.Fields["nome"] = "changed"
	again, err := store.Get(ctx, domain.EntityCustomers, "C1")
	require.NoError(t, err)
	assert.Equal(t, "Fresis", again.Fields.Get("nome"))
}

func TestRecordStore_Get_NotFound(t *testing.T) {
	store := NewRecordStore()
	_, err := store.Get(context.Background(), domain.EntityOrders, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRecordStore_Save_RejectsEmptyKey(t *testing.T) {
	store := NewRecordStore()
	err := store.Save(context.Background(), &domain.StoredRecord{Type: domain.EntityCustomers})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRecordStore_Touch(t *testing.T) {
	store := NewRecordStore()
	ctx := context.Background()
	old := time.Now().Add(-time.Hour)
	require.NoError(t, store.Save(ctx, storedCustomer("C1", "A", old)))

	now := time.Now()
	require.NoError(t, store.Touch(ctx, domain.EntityCustomers, "C1", now))

	got, err := store.Get(ctx, domain.EntityCustomers, "C1")
	require.NoError(t, err)
	assert.True(t, got.LastSyncAt.Equal(now))
	assert.True(t, got.UpdatedAt.Equal(old), "touch must not change updated_at")

	assert.ErrorIs(t, store.Touch(ctx, domain.EntityCustomers, "nope", now), domain.ErrNotFound)
}

func TestRecordStore_ListAndCount(t *testing.T) {
	store := NewRecordStore()
	ctx := context.Background()
	now := time.Now()
	for _, k := range []string{"C3", "C1", "C2", "X9"} {
		require.NoError(t, store.Save(ctx, storedCustomer(k, "n"+k, now)))
	}

	all, err := store.List(ctx, domain.EntityCustomers, domain.RecordFilter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "C1", all[0].Key)
	assert.Equal(t, "X9", all[3].Key)

	prefixed, err := store.List(ctx, domain.EntityCustomers, domain.RecordFilter{KeyPrefix: "C", Offset: 1, Limit: 1})
	require.NoError(t, err)
	require.Len(t, prefixed, 1)
	assert.Equal(t, "C2", prefixed[0].Key)

	count, err := store.Count(ctx, domain.EntityCustomers)
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	count, err = store.Count(ctx, domain.EntityInvoices)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRecordStore_ChangedSince(t *testing.T) {
	store := NewRecordStore()
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	require.NoError(t, store.Save(ctx, storedCustomer("old", "o", base)))
	require.NoError(t, store.Save(ctx, storedCustomer("mid", "m", base.Add(30*time.Minute))))
	require.NoError(t, store.Save(ctx, storedCustomer("new", "n", base.Add(50*time.Minute))))

	changed, err := store.ChangedSince(ctx, domain.EntityCustomers, base.Add(10*time.Minute), 0)
	require.NoError(t, err)
	require.Len(t, changed, 2)
	assert.Equal(t, "new", changed[0].Key)
	assert.Equal(t, "mid", changed[1].Key)

	limited, err := store.ChangedSince(ctx, domain.EntityCustomers, base, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestRecordStore_DeleteStale(t *testing.T) {
	store := NewRecordStore()
	ctx := context.Background()
	cutoff := time.Now()

	require.NoError(t, store.Save(ctx, storedCustomer("gone", "g", cutoff.Add(-time.Minute))))
	require.NoError(t, store.Save(ctx, storedCustomer("kept", "k", cutoff)))

	deleted, err := store.DeleteStale(ctx, domain.EntityCustomers, cutoff)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	_, err = store.Get(ctx, domain.EntityCustomers, "gone")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = store.Get(ctx, domain.EntityCustomers, "kept")
	assert.NoError(t, err)
}

func TestPage(t *testing.T) {
	items := []int{1, 2, 3, 4}
	assert.Equal(t, []int{1, 2, 3, 4}, page(items, 0, 0))
	assert.Equal(t, []int{2, 3}, page(items, 1, 2))
	assert.Nil(t, page(items, 4, 1))
	assert.Equal(t, []int{4}, page(items, 3, 10))
}
