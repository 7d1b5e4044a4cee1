package model

import (
	"time"
)

// TaskRunStatus represents the final state of an executed task.
type TaskRunStatus string

const (
	// TaskRunStatusDone indicates the task finished successfully.
	TaskRunStatusDone TaskRunStatus = "done"
	// TaskRunStatusFailed indicates the task failed.
	TaskRunStatusFailed TaskRunStatus = "failed"
)

// TaskRun represents a single executed task invocation.
type TaskRun struct {
	ID         string
	Task       string
	Status     TaskRunStatus
	ExitCode   int
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}
