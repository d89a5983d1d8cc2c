package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskDirectoryRefresh invalidates and re-warms the directory cache.
	TaskDirectoryRefresh = "directory:refresh"
)

// DirectoryRefreshPayload describes why a refresh was requested.
type DirectoryRefreshPayload struct {
	Reason      string `json:"reason"`
	RequestedBy string `json:"requested_by,omitempty"`
}

// NewDirectoryRefreshTask constructs an Asynq task.
func NewDirectoryRefreshTask(payload DirectoryRefreshPayload) (*asynq.Task, error) {
	if payload.Reason == "" {
		payload.Reason = "schedule"
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDirectoryRefresh, data), nil
}
