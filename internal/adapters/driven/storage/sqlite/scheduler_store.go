package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/archibald-labs/archisync/internal/core/domain"
	"github.com/archibald-labs/archisync/internal/core/ports/driven"
)

// schedulerStore implements driven.SchedulerStore.
type schedulerStore struct {
	store *Store
}

var _ driven.SchedulerStore = (*schedulerStore)(nil)

const (
	taskColumns = `id, entity_type, interval_seconds, enabled,
	last_run, next_run, last_status, last_error, last_success`

	runColumns = `task_id, session_id, status, started_at, ended_at, processed, error`
)

// GetTask returns the task, or nil and no error when it does not exist.
func (s *schedulerStore) GetTask(ctx context.Context, taskID string) (*domain.ScheduledTask, error) {
	row := s.store.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM scheduled_tasks WHERE id = ?`, taskID)

	task, err := scanTask(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil //nolint:nilnil // absent task is not an error
	}
	return task, err
}

// ListTasks returns every task ordered by ID.
func (s *schedulerStore) ListTasks(ctx context.Context) ([]domain.ScheduledTask, error) {
	rows, err := s.store.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM scheduled_tasks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying scheduled tasks: %w", err)
	}
	defer rows.Close()

	var tasks []domain.ScheduledTask //nolint:prealloc // size unknown from query
	for rows.Next() {
		task, err := scanTask(rows.Scan)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating scheduled tasks: %w", err)
	}
	return tasks, nil
}

// SaveTask inserts or replaces a task.
func (s *schedulerStore) SaveTask(ctx context.Context, task *domain.ScheduledTask) error {
	if task == nil || task.ID == "" {
		return domain.ErrInvalidInput
	}

	_, err := s.store.exec(ctx, `
		INSERT OR REPLACE INTO scheduled_tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, task.ID, task.EntityType, int64(task.Interval/time.Second), boolToInt(task.Enabled),
		formatNullableTime(task.LastRun), formatNullableTime(task.NextRun),
		nullString(string(task.LastStatus)), nullString(task.LastError),
		formatNullableTime(task.LastSuccess))
	if err != nil {
		return fmt.Errorf("saving scheduled task %s: %w", task.ID, err)
	}
	return nil
}

// RecordRun appends a run to the log.
func (s *schedulerStore) RecordRun(ctx context.Context, run *domain.ScheduledRun) error {
	if run == nil || run.TaskID == "" {
		return domain.ErrInvalidInput
	}

	_, err := s.store.exec(ctx, `
		INSERT INTO scheduled_runs (`+runColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)
	`, run.TaskID, nullString(run.SessionID), run.Status,
		formatTime(run.StartedAt), formatTime(run.EndedAt),
		run.Processed, nullString(run.Error))
	if err != nil {
		return fmt.Errorf("recording run of %s: %w", run.TaskID, err)
	}
	return nil
}

// Runs returns the latest runs of a task, newest first.
func (s *schedulerStore) Runs(ctx context.Context, taskID string, limit int) ([]domain.ScheduledRun, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT `+runColumns+` FROM scheduled_runs
		WHERE task_id = ?
		ORDER BY seq DESC
		LIMIT ?
	`, taskID, sqlLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.ScheduledRun //nolint:prealloc // size unknown from query
	for rows.Next() {
		var run domain.ScheduledRun
		var sessionID, errMsg sql.NullString
		var startedAt, endedAt string
		if err := rows.Scan(&run.TaskID, &sessionID, &run.Status,
			&startedAt, &endedAt, &run.Processed, &errMsg); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		run.SessionID = sessionID.String
		run.StartedAt = parseTime(startedAt)
		run.EndedAt = parseTime(endedAt)
		run.Error = errMsg.String
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return runs, nil
}

// PruneRuns keeps the latest keep runs of each task.
func (s *schedulerStore) PruneRuns(ctx context.Context, keep int) error {
	_, err := s.store.exec(ctx, `
		DELETE FROM scheduled_runs
		WHERE seq NOT IN (
			SELECT seq FROM (
				SELECT seq, ROW_NUMBER() OVER (PARTITION BY task_id ORDER BY seq DESC) AS rn
				FROM scheduled_runs
			) WHERE rn <= ?
		)
	`, keep)
	if err != nil {
		return fmt.Errorf("pruning runs: %w", err)
	}
	return nil
}

func scanTask(scan func(dest ...any) error) (*domain.ScheduledTask, error) {
	var task domain.ScheduledTask
	var seconds int64
	var enabled int
	var lastRun, nextRun, lastStatus, lastError, lastSuccess sql.NullString

	if err := scan(&task.ID, &task.EntityType, &seconds, &enabled,
		&lastRun, &nextRun, &lastStatus, &lastError, &lastSuccess); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning scheduled task: %w", err)
	}

	task.Interval = time.Duration(seconds) * time.Second
	task.Enabled = enabled == 1
	task.LastRun = parseNullableTime(lastRun)
	task.NextRun = parseNullableTime(nextRun)
	task.LastStatus = domain.SessionStatus(lastStatus.String)
	task.LastError = lastError.String
	task.LastSuccess = parseNullableTime(lastSuccess)
	return &task, nil
}
