package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fiberdesk/fiberdesk/internal/directory"
)

var fixtureTime = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type refreshSource struct {
	*directory.MemorySource
	invalidated int
	invalidErr  error
	leadsErr    error
}

func (s *refreshSource) Invalidate(context.Context) error {
	s.invalidated++
	return s.invalidErr
}

func (s *refreshSource) Leads(ctx context.Context) ([]directory.Lead, error) {
	if s.leadsErr != nil {
		return nil, s.leadsErr
	}
	return s.MemorySource.Leads(ctx)
}

func refreshTask(t *testing.T, payload DirectoryRefreshPayload) *asynq.Task {
	t.Helper()
	task, err := NewDirectoryRefreshTask(payload)
	require.NoError(t, err)
	return task
}

func TestNewDirectoryRefreshTaskDefaultsReason(t *testing.T) {
	task := refreshTask(t, DirectoryRefreshPayload{})
	assert.Equal(t, TaskDirectoryRefresh, task.Type())

	var payload DirectoryRefreshPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, "schedule", payload.Reason)
}

func TestDirectoryRefreshInvalidatesAndWarms(t *testing.T) {
	src := &refreshSource{MemorySource: directory.Fixtures(fixtureTime)}
	job := NewDirectoryRefreshJob(src, nil, nil)

	err := job.Handle(context.Background(), refreshTask(t, DirectoryRefreshPayload{Reason: "manual", RequestedBy: "admin@fiberdesk.local"}))
	require.NoError(t, err)
	assert.Equal(t, 1, src.invalidated)
}

func TestDirectoryRefreshStopsOnInvalidateError(t *testing.T) {
	boom := errors.New("redis down")
	src := &refreshSource{MemorySource: directory.Fixtures(fixtureTime), invalidErr: boom}
	job := NewDirectoryRefreshJob(src, nil, nil)

	err := job.Handle(context.Background(), refreshTask(t, DirectoryRefreshPayload{Reason: "manual"}))
	assert.ErrorIs(t, err, boom)
}

func TestDirectoryRefreshReportsWarmFailure(t *testing.T) {
	boom := errors.New("upstream down")
	src := &refreshSource{MemorySource: directory.Fixtures(fixtureTime), leadsErr: boom}
	job := NewDirectoryRefreshJob(src, nil, nil)

	err := job.Handle(context.Background(), refreshTask(t, DirectoryRefreshPayload{Reason: "manual"}))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, src.invalidated)
}

func TestDirectoryRefreshBadPayloadSkipsRetry(t *testing.T) {
	src := &refreshSource{MemorySource: directory.Fixtures(fixtureTime)}
	job := NewDirectoryRefreshJob(src, nil, nil)

	err := job.Handle(context.Background(), asynq.NewTask(TaskDirectoryRefresh, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.Zero(t, src.invalidated)
}

func TestClientEnqueueDirectoryRefresh(t *testing.T) {
	mr := miniredis.RunT(t)
	client := NewClient(asynq.RedisClientOpt{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	info, err := client.EnqueueDirectoryRefresh(context.Background(), DirectoryRefreshPayload{Reason: "manual"})
	require.NoError(t, err)
	assert.Equal(t, QueueDefault, info.Queue)
	assert.Equal(t, TaskDirectoryRefresh, info.Type)
}
