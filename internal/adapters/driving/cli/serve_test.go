package cli

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archibald-labs/archisync/internal/core/domain"
)

// mockScheduler implements driving.Scheduler for testing.
type mockScheduler struct {
	startErr error
	started  bool
	stopped  bool
}

func (m *mockScheduler) Start(context.Context) error {
	m.started = true
	return m.startErr
}

func (m *mockScheduler) Stop() error {
	m.stopped = true
	return nil
}

func (m *mockScheduler) Tasks(context.Context) ([]domain.ScheduledTask, error) {
	return nil, nil
}

func (m *mockScheduler) Runs(context.Context, domain.EntityType, int) ([]domain.ScheduledRun, error) {
	return nil, nil
}

// mockRunner implements Runner for testing.
type mockRunner struct {
	err   error
	calls int
}

func (m *mockRunner) Run(context.Context) error {
	m.calls++
	return m.err
}

func TestWatchCmd_NotConfigured(t *testing.T) {
	_, err := execute(t, &Services{}, "watch")
	require.ErrorIs(t, err, errNotConfigured)
}

func TestWatchCmd_Runs(t *testing.T) {
	runner := &mockRunner{}

	out, err := execute(t, &Services{Watcher: runner}, "watch")

	require.NoError(t, err)
	assert.Equal(t, 1, runner.calls)
	assert.Contains(t, out, "Watching inbox")
}

func TestWatchCmd_Error(t *testing.T) {
	runner := &mockRunner{err: errors.New("inbox missing")}

	_, err := execute(t, &Services{Watcher: runner}, "watch")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "watch failed: inbox missing")
}

func TestServeCmd_NotConfigured(t *testing.T) {
	_, err := execute(t, &Services{}, "serve")
	require.ErrorIs(t, err, errNotConfigured)
}

func TestServeCmd_SchedulerFailureStopsEverything(t *testing.T) {
	sched := &mockScheduler{startErr: errors.New("store closed")}
	runner := &mockRunner{}

	_, err := execute(t, &Services{Scheduler: sched, Watcher: runner}, "serve")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "store closed")
	assert.True(t, sched.started)
	assert.True(t, sched.stopped)
	assert.Equal(t, 1, runner.calls)
}
