package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/archibald-labs/archisync/internal/core/domain"
	"github.com/archibald-labs/archisync/internal/core/ports/driven"
)

// Ensure SchedulerStore implements the interface.
var _ driven.SchedulerStore = (*SchedulerStore)(nil)

// SchedulerStore is an in-memory implementation of driven.SchedulerStore.
// Runs are kept per task in insertion order.
type SchedulerStore struct {
	mu    sync.RWMutex
	tasks map[string]domain.ScheduledTask
	runs  map[string][]domain.ScheduledRun
}

// NewSchedulerStore creates a new in-memory scheduler store.
func NewSchedulerStore() *SchedulerStore {
	return &SchedulerStore{
		tasks: make(map[string]domain.ScheduledTask),
		runs:  make(map[string][]domain.ScheduledRun),
	}
}

// GetTask returns a copy of the task, or nil when it does not exist.
func (s *SchedulerStore) GetTask(_ context.Context, taskID string) (*domain.ScheduledTask, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, ok := s.tasks[taskID]
	if !ok {
		return nil, nil //nolint:nilnil // absent task is not an error
	}
	return &task, nil
}

// ListTasks returns every task ordered by ID.
func (s *SchedulerStore) ListTasks(_ context.Context) ([]domain.ScheduledTask, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks := make([]domain.ScheduledTask, 0, len(s.tasks))
	for _, task := range s.tasks {
		tasks = append(tasks, task)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks, nil
}

// SaveTask inserts or replaces a task.
func (s *SchedulerStore) SaveTask(_ context.Context, task *domain.ScheduledTask) error {
	if task == nil || task.ID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[task.ID] = *task
	return nil
}

// RecordRun appends a run to the task's log.
func (s *SchedulerStore) RecordRun(_ context.Context, run *domain.ScheduledRun) error {
	if run == nil || run.TaskID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.TaskID] = append(s.runs[run.TaskID], *run)
	return nil
}

// Runs returns the latest runs of a task, newest first.
func (s *SchedulerStore) Runs(_ context.Context, taskID string, limit int) ([]domain.ScheduledRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.runs[taskID]
	out := make([]domain.ScheduledRun, 0, len(stored))
	for i := len(stored) - 1; i >= 0; i-- {
		out = append(out, stored[i])
	}
	return page(out, 0, limit), nil
}

// PruneRuns keeps the latest keep runs of each task.
func (s *SchedulerStore) PruneRuns(_ context.Context, keep int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, runs := range s.runs {
		if len(runs) > keep {
			s.runs[id] = append([]domain.ScheduledRun(nil), runs[len(runs)-keep:]...)
		}
	}
	return nil
}
