package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archibald-labs/archisync/internal/adapters/driven/storage/memory"
	"github.com/archibald-labs/archisync/internal/core/domain"
)

func TestNewSettingsService(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)

	require.NotNil(t, service)
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)

	settings, err := service.Get()

	require.NoError(t, err)
	require.NotNil(t, settings)

	defaults := domain.DefaultSettings()
	assert.Equal(t, defaults.Inbox.Dir, settings.Inbox.Dir)
	assert.Equal(t, defaults.Sync.StopCheckInterval, settings.Sync.StopCheckInterval)
	assert.Equal(t, defaults.Sync.HistoryKeep, settings.Sync.HistoryKeep)
	assert.Equal(t, defaults.Match.WindowDays, settings.Match.WindowDays)
	assert.Equal(t, defaults.Match.VariantCodes, settings.Match.VariantCodes)
	assert.Equal(t, defaults.Watch.MinInterval, settings.Watch.MinInterval)
	assert.Equal(t, defaults.Schedule, settings.Schedule)
	assert.Empty(t, settings.Entities)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("inbox.dir", "/srv/exports")
	_ = store.Set("inbox.files.orders", "Ordini.pdf")
	_ = store.Set("sync.stop_check_interval", 50)
	_ = store.Set("sync.detect_cycle_size", true)
	_ = store.Set("match.window_days", 14)
	_ = store.Set("match.variant_codes", []any{"K2=6", "k9=12", "broken", "K0=0"})
	_ = store.Set("watch.min_interval_seconds", 5)
	_ = store.Set("entities.delivery_notes.always_overwrite", false)

	service := NewSettingsService(store)

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, "/srv/exports", settings.Inbox.Dir)
	assert.Equal(t, "Ordini.pdf", settings.Inbox.Files[domain.EntityOrders])
	assert.Equal(t, 50, settings.Sync.StopCheckInterval)
	assert.True(t, settings.Sync.DetectCycleSize)
	assert.Equal(t, 14, settings.Match.WindowDays)
	assert.Equal(t, map[string]int{"K2": 6, "K9": 12}, settings.Match.VariantCodes)
	assert.Equal(t, 5*time.Second, settings.Watch.MinInterval)

	o, ok := settings.Entities[domain.EntityDeliveryNotes]
	require.True(t, ok)
	require.NotNil(t, o.AlwaysOverwrite)
	assert.False(t, *o.AlwaysOverwrite)
	assert.Nil(t, o.DeleteStale)
}

func TestSettingsService_Get_Schedule(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("scheduler.orders.interval", "15m")
	_ = store.Set("scheduler.prices.enabled", false)
	_ = store.Set("scheduler.invoices.interval", "not a duration")

	service := NewSettingsService(store)

	settings, err := service.Get()
	require.NoError(t, err)

	defaults := domain.DefaultSettings().Schedule
	assert.Equal(t, 15*time.Minute, settings.Schedule.Intervals[domain.EntityOrders])
	assert.Zero(t, settings.Schedule.Intervals[domain.EntityPrices])
	assert.Equal(t, defaults.Intervals[domain.EntityInvoices], settings.Schedule.Intervals[domain.EntityInvoices])
	assert.True(t, settings.Schedule.Enabled)
}

func TestSettingsService_Save_RoundTrip(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)

	settings := domain.DefaultSettings()
	settings.Inbox.Dir = "/data/inbox"
	settings.Sync.SkipUnchangedFiles = false
	settings.Match.WindowDays = 45
	settings.Schedule.Intervals[domain.EntityOrders] = 30 * time.Minute
	overwrite := true
	settings.Entities[domain.EntityInvoices] = domain.EntityOverrides{AlwaysOverwrite: &overwrite}

	require.NoError(t, service.Save(&settings))

	loaded, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, "/data/inbox", loaded.Inbox.Dir)
	assert.False(t, loaded.Sync.SkipUnchangedFiles)
	assert.Equal(t, 45, loaded.Match.WindowDays)
	assert.Equal(t, 30*time.Minute, loaded.Schedule.Intervals[domain.EntityOrders])
	require.NotNil(t, loaded.Entities[domain.EntityInvoices].AlwaysOverwrite)
	assert.True(t, *loaded.Entities[domain.EntityInvoices].AlwaysOverwrite)
	assert.Equal(t, []string{"K2=5", "K3=1"}, store.GetStringSlice("match.variant_codes"))
}

func TestSettingsService_Save_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*domain.Settings)
	}{
		{"empty inbox", func(s *domain.Settings) { s.Inbox.Dir = "" }},
		{"zero stop interval", func(s *domain.Settings) { s.Sync.StopCheckInterval = 0 }},
		{"window too large", func(s *domain.Settings) { s.Match.WindowDays = 400 }},
		{"negative schedule", func(s *domain.Settings) { s.Schedule.Intervals[domain.EntityOrders] = -time.Hour }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewConfigStore()
			service := NewSettingsService(store)

			settings := domain.DefaultSettings()
			tt.modify(&settings)

			err := service.Save(&settings)
			require.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Empty(t, store.Keys(""))
		})
	}
}

func TestSettingsService_SetInboxDir(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)

	require.NoError(t, service.SetInboxDir("/tmp/pdf"))
	assert.Equal(t, "/tmp/pdf", store.GetString("inbox.dir"))

	err := service.SetInboxDir("  ")
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettingsService_SetWindowDays(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)

	require.NoError(t, service.SetWindowDays(10))
	assert.Equal(t, 10, store.GetInt("match.window_days"))

	require.ErrorIs(t, service.SetWindowDays(0), domain.ErrInvalidInput)
	assert.Equal(t, 10, store.GetInt("match.window_days"))
}

func TestSettingsService_SetVariantCode(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)

	require.NoError(t, service.SetVariantCode(" k7 ", 24))
	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, 24, settings.Match.VariantCodes["K7"])

	require.NoError(t, service.SetVariantCode("K7", 0))
	settings, err = service.Get()
	require.NoError(t, err)
	assert.NotContains(t, settings.Match.VariantCodes, "K7")

	require.ErrorIs(t, service.SetVariantCode("", 5), domain.ErrInvalidInput)
	require.ErrorIs(t, service.SetVariantCode("K8", -1), domain.ErrInvalidInput)
}

func TestSettingsService_SetEntityPolicy(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)

	deleteStale := false
	require.NoError(t, service.SetEntityPolicy(domain.EntityProducts, nil, &deleteStale))

	_, exists := store.Get("entities.products.always_overwrite")
	assert.False(t, exists)
	val, exists := store.Get("entities.products.delete_stale")
	require.True(t, exists)
	assert.Equal(t, false, val)

	err := service.SetEntityPolicy(domain.EntityType("widgets"), nil, &deleteStale)
	require.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestSettingsService_Validate(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)

	require.NoError(t, service.Validate())

	_ = store.Set("history.keep", -3)
	require.ErrorIs(t, service.Validate(), domain.ErrInvalidInput)
}

func TestSettingsService_GetDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())
	assert.Equal(t, domain.DefaultSettings(), service.GetDefaults())
}
