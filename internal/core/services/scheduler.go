package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/archibald-labs/archisync/internal/core/domain"
	"github.com/archibald-labs/archisync/internal/core/ports/driven"
	"github.com/archibald-labs/archisync/internal/core/ports/driving"
	"github.com/archibald-labs/archisync/internal/logger"
)

// Ensure Scheduler implements the interface.
var _ driving.Scheduler = (*Scheduler)(nil)

var schedLog = logger.For("scheduler")

// Scheduler tick and run log defaults.
const (
	schedulerTick = time.Minute
	runLogKeep    = 100
)

// Scheduler runs the periodic sync of each entity type.
// Task state lives in the store so cadence survives restarts.
type Scheduler struct {
	schedule domain.ScheduleSettings
	store    driven.SchedulerStore
	syncOrch driving.SyncOrchestrator
	tick     time.Duration
	now      func() time.Time

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup

	// inFlight prevents a slow sync from being started twice.
	inFlight map[domain.EntityType]bool
}

// NewScheduler creates a scheduler for the given schedule.
func NewScheduler(
	schedule domain.ScheduleSettings,
	store driven.SchedulerStore,
	syncOrch driving.SyncOrchestrator,
) *Scheduler {
	return &Scheduler{
		schedule: schedule,
		store:    store,
		syncOrch: syncOrch,
		tick:     schedulerTick,
		now:      time.Now,
		inFlight: make(map[domain.EntityType]bool),
	}
}

// Start begins the scheduler loop. This method blocks until Stop is called
// or ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	if !s.schedule.Enabled {
		schedLog.Info("disabled")
		return nil
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	if err := s.reconcile(ctx); err != nil {
		schedLog.Warn("failed to reconcile tasks: %v", err)
	}

	return s.loop(ctx)
}

// Stop gracefully shuts down the scheduler and waits for running syncs.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

// Tasks returns one task per entity type. Types the scheduler has never
// persisted are reported from the schedule without touching the store.
func (s *Scheduler) Tasks(ctx context.Context) ([]domain.ScheduledTask, error) {
	stored, err := s.store.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	byID := make(map[string]domain.ScheduledTask, len(stored))
	for _, task := range stored {
		byID[task.ID] = task
	}

	tasks := make([]domain.ScheduledTask, 0, len(domain.AllEntityTypes()))
	for _, t := range domain.AllEntityTypes() {
		task, ok := byID[domain.SyncTaskID(t)]
		if !ok {
			task = s.newTask(t)
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

// Runs returns the latest scheduled runs of an entity type.
func (s *Scheduler) Runs(ctx context.Context, entityType domain.EntityType, limit int) ([]domain.ScheduledRun, error) {
	if !entityType.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedType, entityType)
	}
	if limit < 0 {
		return nil, fmt.Errorf("%w: negative limit", domain.ErrInvalidInput)
	}
	return s.store.Runs(ctx, domain.SyncTaskID(entityType), limit)
}

// reconcile brings the stored task of every entity type in line with the
// schedule. A changed interval restarts the countdown from now.
func (s *Scheduler) reconcile(ctx context.Context) error {
	var errs []error
	for _, t := range domain.AllEntityTypes() {
		if err := s.reconcileTask(ctx, t); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", t, err))
		}
	}
	return errors.Join(errs...)
}

func (s *Scheduler) reconcileTask(ctx context.Context, t domain.EntityType) error {
	task, err := s.store.GetTask(ctx, domain.SyncTaskID(t))
	if err != nil {
		return err
	}

	want := s.newTask(t)
	switch {
	case task == nil:
		task = &want
	case task.Interval != want.Interval:
		task.Interval = want.Interval
		task.NextRun = want.NextRun
		task.Enabled = want.Enabled
	case task.Enabled == want.Enabled:
		return nil
	default:
		task.Enabled = want.Enabled
	}
	return s.store.SaveTask(ctx, task)
}

func (s *Scheduler) newTask(t domain.EntityType) domain.ScheduledTask {
	interval := s.schedule.Interval(t)
	return domain.ScheduledTask{
		ID:         domain.SyncTaskID(t),
		EntityType: t,
		Interval:   interval,
		Enabled:    interval > 0,
		NextRun:    s.now().Add(interval),
	}
}

func (s *Scheduler) loop(ctx context.Context) error {
	s.runDue(ctx)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stopCh:
			return nil
		case <-ticker.C:
			s.runDue(ctx)
		}
	}
}

// runDue starts every task that is due.
func (s *Scheduler) runDue(ctx context.Context) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		schedLog.Warn("failed to list tasks: %v", err)
		return
	}

	now := s.now()
	for i := range tasks {
		if tasks[i].Due(now) {
			s.launch(ctx, tasks[i])
		}
	}
}

// launch runs one task in the background unless its entity type is
// already syncing on behalf of the scheduler.
func (s *Scheduler) launch(ctx context.Context, task domain.ScheduledTask) {
	entityType, ok := domain.EntityFromTaskID(task.ID)
	if !ok {
		schedLog.Warn("unknown task ID: %s", task.ID)
		return
	}

	s.mu.Lock()
	if s.inFlight[entityType] {
		s.mu.Unlock()
		return
	}
	s.inFlight[entityType] = true
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			delete(s.inFlight, entityType)
			s.mu.Unlock()
		}()

		run := s.execute(ctx, entityType)
		task.EntityType = entityType
		s.finish(context.WithoutCancel(ctx), &task, run)
	}()
}

// execute syncs one entity type and describes the outcome as a run.
func (s *Scheduler) execute(ctx context.Context, entityType domain.EntityType) *domain.ScheduledRun {
	run := &domain.ScheduledRun{
		TaskID:    domain.SyncTaskID(entityType),
		StartedAt: s.now(),
		Status:    domain.SessionCompleted,
	}

	if s.syncOrch != nil {
		result, err := s.syncOrch.Sync(ctx, entityType, driving.SyncOptions{
			Trigger: domain.TriggerScheduled,
		})
		if result != nil {
			run.SessionID = result.SessionID
			run.Status = result.Status
			run.Processed = result.Counts.Processed
		}
		switch {
		case errors.Is(err, domain.ErrSyncInProgress):
			// Another trigger got there first.
			run.Status = domain.SessionSkipped
		case err != nil:
			run.Error = err.Error()
			if result == nil {
				run.Status = domain.SessionFailed
			}
			schedLog.Warn("%s failed: %v", entityType, err)
		}
	}

	run.EndedAt = s.now()
	return run
}

// finish persists the task state and the run. Bookkeeping errors are
// logged; they never fail the sync.
func (s *Scheduler) finish(ctx context.Context, task *domain.ScheduledTask, run *domain.ScheduledRun) {
	task.LastRun = run.StartedAt
	task.NextRun = run.EndedAt.Add(task.Interval)
	task.LastStatus = run.Status
	task.LastError = run.Error
	if run.Error == "" {
		task.LastSuccess = run.EndedAt
	}

	if err := s.store.SaveTask(ctx, task); err != nil {
		schedLog.Warn("failed to save task %s: %v", task.ID, err)
	}
	if err := s.store.RecordRun(ctx, run); err != nil {
		schedLog.Warn("failed to record run of %s: %v", task.ID, err)
	}
	if err := s.store.PruneRuns(ctx, runLogKeep); err != nil {
		schedLog.Warn("failed to prune run log: %v", err)
	}
}
