package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultSyncIntervals(t *testing.T) {
	intervals := DefaultSyncIntervals()

	assert.Len(t, intervals, len(AllEntityTypes()))
	assert.Equal(t, time.Hour, intervals[EntityOrders])
	assert.Equal(t, 24*time.Hour, intervals[EntityCustomers])
	assert.Equal(t, 6*time.Hour, intervals[EntityInvoices])
}

func TestScheduledTask_Due(t *testing.T) {
	now := time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		task ScheduledTask
		want bool
	}{
		{"never ran", ScheduledTask{Enabled: true, Interval: time.Hour}, true},
		{"past due", ScheduledTask{Enabled: true, Interval: time.Hour, NextRun: now.Add(-time.Minute)}, true},
		{"exactly due", ScheduledTask{Enabled: true, Interval: time.Hour, NextRun: now}, true},
		{"not yet", ScheduledTask{Enabled: true, Interval: time.Hour, NextRun: now.Add(time.Minute)}, false},
		{"disabled", ScheduledTask{Interval: time.Hour}, false},
		{"zero interval", ScheduledTask{Enabled: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.task.Due(now))
		})
	}
}

func TestScheduledRun_Duration(t *testing.T) {
	start := time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)
	run := ScheduledRun{StartedAt: start, EndedAt: start.Add(90 * time.Second)}
	assert.Equal(t, 90*time.Second, run.Duration())
}

func TestSyncTaskID_RoundTrip(t *testing.T) {
	for _, et := range AllEntityTypes() {
		id := SyncTaskID(et)
		got, ok := EntityFromTaskID(id)
		assert.True(t, ok, id)
		assert.Equal(t, et, got)
	}

	assert.Equal(t, "sync:delivery_notes", SyncTaskID(EntityDeliveryNotes))

	_, ok := EntityFromTaskID("backup")
	assert.False(t, ok)
	_, ok = EntityFromTaskID("sync:widgets")
	assert.False(t, ok)
}
