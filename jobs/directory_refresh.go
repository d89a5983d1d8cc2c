package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/fiberdesk/fiberdesk/internal/directory"
	jobmetrics "github.com/fiberdesk/fiberdesk/internal/jobs"
)

// RefreshableSource is a directory source whose cache can be dropped.
type RefreshableSource interface {
	directory.Source
	Invalidate(ctx context.Context) error
}

// DirectoryRefreshJob drops the cached directory and loads every collection
// again so the next page view is served warm.
type DirectoryRefreshJob struct {
	Source  RefreshableSource
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewDirectoryRefreshJob wires dependencies for the refresh handler.
func NewDirectoryRefreshJob(source RefreshableSource, logger *slog.Logger, metrics *jobmetrics.Metrics) *DirectoryRefreshJob {
	return &DirectoryRefreshJob{Source: source, Logger: logger, Metrics: metrics}
}

// Handle processes TaskDirectoryRefresh tasks.
func (j *DirectoryRefreshJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil || j.Source == nil {
		return errors.New("directory refresh: handler not configured")
	}
	var payload DirectoryRefreshPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("directory refresh: decode payload: %w", asynq.SkipRetry)
	}

	tracker := j.Metrics.Track(TaskDirectoryRefresh)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.String("reason", payload.Reason))
	if payload.RequestedBy != "" {
		logger = logger.With(slog.String("requested_by", payload.RequestedBy))
	}
	logger.Info("refreshing directory cache")

	if err := j.Source.Invalidate(ctx); err != nil {
		logger.Error("invalidate directory cache", slog.Any("error", err))
		return err
	}
	return j.warm(ctx, logger)
}

func (j *DirectoryRefreshJob) warm(ctx context.Context, logger *slog.Logger) error {
	steps := []struct {
		name string
		load func(context.Context) (int, error)
	}{
		{"customers", func(ctx context.Context) (int, error) { v, err := j.Source.Customers(ctx); return len(v), err }},
		{"engineers", func(ctx context.Context) (int, error) { v, err := j.Source.Engineers(ctx); return len(v), err }},
		{"complaints", func(ctx context.Context) (int, error) { v, err := j.Source.Complaints(ctx); return len(v), err }},
		{"plans", func(ctx context.Context) (int, error) { v, err := j.Source.Plans(ctx); return len(v), err }},
		{"leads", func(ctx context.Context) (int, error) { v, err := j.Source.Leads(ctx); return len(v), err }},
	}
	for _, step := range steps {
		n, err := step.load(ctx)
		if err != nil {
			logger.Error("warm collection", slog.String("collection", step.name), slog.Any("error", err))
			return err
		}
		j.Metrics.AddWarmed(step.name, n)
	}
	logger.Info("directory cache warmed")
	return nil
}

func (j *DirectoryRefreshJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
