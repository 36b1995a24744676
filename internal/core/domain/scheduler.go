package domain

import (
	"strings"
	"time"
)

// ScheduledTask is the persisted state of the periodic sync of one entity
// type. The cadence itself comes from ScheduleSettings; the task carries
// what must survive a restart.
type ScheduledTask struct {
	// ID is the task identifier, see SyncTaskID.
	ID string

	EntityType EntityType
	Interval   time.Duration
	Enabled    bool

	LastRun time.Time
	NextRun time.Time

	// LastStatus is the terminal status of the last scheduled session.
	LastStatus SessionStatus

	// LastError holds the error of the last run, empty on success.
	LastError string

	LastSuccess time.Time
}

// Due reports whether the task should run at now. A task that never ran
// is due immediately.
func (t ScheduledTask) Due(now time.Time) bool {
	return t.Enabled && t.Interval > 0 && !t.NextRun.After(now)
}

// ScheduledRun records one sync started by the scheduler.
type ScheduledRun struct {
	TaskID string

	// SessionID links the run to its sync session. Empty when the
	// session could not be opened.
	SessionID string

	Status    SessionStatus
	StartedAt time.Time
	EndedAt   time.Time
	Processed int
	Error     string
}

// Duration is the wall time of the run.
func (r ScheduledRun) Duration() time.Duration {
	return r.EndedAt.Sub(r.StartedAt)
}

const syncTaskPrefix = "sync:"

// SyncTaskID returns the scheduler task ID that syncs an entity type.
func SyncTaskID(t EntityType) string {
	return syncTaskPrefix + string(t)
}

// EntityFromTaskID is the inverse of SyncTaskID.
func EntityFromTaskID(id string) (EntityType, bool) {
	name, ok := strings.CutPrefix(id, syncTaskPrefix)
	if !ok {
		return "", false
	}
	t := EntityType(name)
	return t, t.IsValid()
}

// DefaultSyncIntervals returns the default sync cadence per entity type.
// Transactional exports change during the day, master data rarely does.
func DefaultSyncIntervals() map[EntityType]time.Duration {
	return map[EntityType]time.Duration{
		EntityCustomers:     24 * time.Hour,
		EntityProducts:      24 * time.Hour,
		EntityPrices:        24 * time.Hour,
		EntityOrders:        time.Hour,
		EntityDeliveryNotes: time.Hour,
		EntityInvoices:      6 * time.Hour,
	}
}
