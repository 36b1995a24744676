package cli

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archibald-labs/archisync/internal/adapters/driven/storage/memory"
	"github.com/archibald-labs/archisync/internal/core/domain"
	"github.com/archibald-labs/archisync/internal/core/services"
)

func newRecordServices(t *testing.T) *Services {
	t.Helper()
	store := memory.NewRecordStore()
	now := time.Now()

	recs := []domain.StoredRecord{
		{Type: domain.EntityOrders, Key: "1001", Fields: domain.Fields{"order_number": "A-1", "id_profilo_cliente": "C1"},
			CreatedAt: now.Add(-72 * time.Hour), UpdatedAt: now.Add(-48 * time.Hour)},
		{Type: domain.EntityOrders, Key: "1002", Fields: domain.Fields{"order_number": "A-2", "id_profilo_cliente": "C2"},
			CreatedAt: now.Add(-72 * time.Hour), UpdatedAt: now.Add(-time.Hour)},
		{Type: domain.EntityOrders, Key: "2001", Fields: domain.Fields{"order_number": "", "id_profilo_cliente": "C1"},
			CreatedAt: now, UpdatedAt: now},
	}
	for i := range recs {
		recs[i].LastSyncAt = now
		require.NoError(t, store.Save(context.Background(), &recs[i]))
	}
	return &Services{Records: services.NewRecordService(store)}
}

func TestRecordsGetCmd(t *testing.T) {
	out, err := execute(t, newRecordServices(t), "records", "get", "orders", "1001")

	require.NoError(t, err)
	assert.Contains(t, out, "orders 1001")
	assert.Contains(t, out, "order_number: A-1")
}

func TestRecordsGetCmd_NotFound(t *testing.T) {
	_, err := execute(t, newRecordServices(t), "records", "get", "orders", "9999")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRecordsListCmd(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
		not  []string
	}{
		{"all", nil, []string{"1001", "1002", "2001"}, nil},
		{"prefix", []string{"--prefix", "10"}, []string{"1001", "1002"}, []string{"2001"}},
		{"where", []string{"--where", "id_profilo_cliente=C1"}, []string{"1001", "2001"}, []string{"1002"}},
		{"paged", []string{"-n", "1", "--offset", "1"}, []string{"1002"}, []string{"1001", "2001"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"records", "list", "orders"}, tt.args...)
			out, err := execute(t, newRecordServices(t), args...)

			require.NoError(t, err)
			for _, key := range tt.want {
				assert.Contains(t, out, key+"  ")
			}
			for _, key := range tt.not {
				assert.NotContains(t, out, key+"  ")
			}
		})
	}
}

func TestRecordsListCmd_BadWhere(t *testing.T) {
	_, err := execute(t, newRecordServices(t), "records", "list", "orders", "--where", "novalue")
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRecordsChangesCmd(t *testing.T) {
	out, err := execute(t, newRecordServices(t), "records", "changes", "orders", "--since", "24h")

	require.NoError(t, err)
	assert.Contains(t, out, "2001  ")
	assert.Contains(t, out, "1002  ")
	assert.NotContains(t, out, "1001  ")
}

func TestRecordsCountCmd(t *testing.T) {
	out, err := execute(t, newRecordServices(t), "records", "count")

	require.NoError(t, err)
	assert.Regexp(t, `orders\s+3`, out)
	assert.Regexp(t, `invoices\s+0`, out)
}

func TestParseSince(t *testing.T) {
	now := time.Date(2026, 2, 10, 12, 0, 0, 0, time.Local)

	got, err := parseSince("36h", now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(-36*time.Hour), got)

	got, err = parseSince("2026-01-31", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 31, 0, 0, 0, 0, time.Local), got)

	_, err = parseSince("last week", now)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}
