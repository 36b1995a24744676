package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()

	assert.Equal(t, DefaultStopCheckInterval, s.Sync.StopCheckInterval)
	assert.Equal(t, 30, s.Match.WindowDays)
	assert.Equal(t, 30*24*time.Hour, s.Match.Window())
	assert.Equal(t, 5, s.Match.VariantCodes["K2"])
	assert.Equal(t, 1, s.Match.VariantCodes["K3"])
	assert.Len(t, s.Inbox.Files, len(AllEntityTypes()))
	assert.True(t, s.Sync.SkipUnchangedFiles)
}

func TestEntityOverrides_ApplyTo(t *testing.T) {
	base := EntityPolicy{KeyField: "id", AlwaysOverwrite: false, DeleteStale: true}
	yes, no := true, false

	t.Run("no overrides", func(t *testing.T) {
		assert.Equal(t, base, EntityOverrides{}.ApplyTo(base))
	})

	t.Run("both overridden", func(t *testing.T) {
		got := EntityOverrides{AlwaysOverwrite: &yes, DeleteStale: &no}.ApplyTo(base)
		assert.True(t, got.AlwaysOverwrite)
		assert.False(t, got.DeleteStale)
		assert.Equal(t, "id", got.KeyField)
	})
}

func TestScheduleSettings_Interval(t *testing.T) {
	s := DefaultSettings().Schedule
	assert.True(t, s.Enabled)
	assert.Equal(t, time.Hour, s.Interval(EntityOrders))
	assert.Equal(t, 24*time.Hour, s.Interval(EntityCustomers))

	s.Intervals[EntityPrices] = 0
	assert.Zero(t, s.Interval(EntityPrices))
	assert.Zero(t, ScheduleSettings{}.Interval(EntityOrders))
}
