package driven

import (
	"context"

	"github.com/archibald-labs/archisync/internal/core/domain"
)

// SchedulerStore keeps the scheduled sync of each entity type across
// restarts, together with a bounded log of past runs.
type SchedulerStore interface {
	// GetTask returns the task with the given ID, or nil and no error
	// when it does not exist.
	GetTask(ctx context.Context, taskID string) (*domain.ScheduledTask, error)

	// ListTasks returns every task ordered by ID.
	ListTasks(ctx context.Context) ([]domain.ScheduledTask, error)

	// SaveTask inserts or replaces a task.
	SaveTask(ctx context.Context, task *domain.ScheduledTask) error

	// RecordRun appends a run to the log.
	RecordRun(ctx context.Context, run *domain.ScheduledRun) error

	// Runs returns the latest runs of a task, newest first. A limit of
	// zero returns all of them.
	Runs(ctx context.Context, taskID string, limit int) ([]domain.ScheduledRun, error)

	// PruneRuns keeps the latest keep runs of each task.
	PruneRuns(ctx context.Context, keep int) error
}
