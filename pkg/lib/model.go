package lib

import (
	"errors"
	"time"

	"github.com/slok/tsk/internal/model"
)

// Sentinel errors returned by the SDK. Inspect with [errors.Is].
var (
	// ErrUnknownTask is returned when a task name doesn't match any known task.
	ErrUnknownTask = errors.New("unknown task")
	// ErrToolNotFound is returned when a delegated executable can't be resolved.
	ErrToolNotFound = errors.New("tool not found")
	// ErrUnsupportedPlatform is returned when the toolchain has no installer
	// for the current operating system.
	ErrUnsupportedPlatform = errors.New("unsupported platform")
	// ErrNotValid is returned on invalid input, configuration or manifest.
	ErrNotValid = errors.New("not valid")
)

// Task describes a runnable project task.
type Task struct {
	// Name is the task identifier used with [Client.RunTask].
	Name string
	// Description is the human-readable task description.
	Description string
	// Requires lists the tasks that run before this one net of memoization.
	Requires []string
}

// RunStatus represents the final state of an executed task.
type RunStatus string

const (
	// RunStatusDone indicates the task finished successfully.
	RunStatusDone RunStatus = "done"
	// RunStatusFailed indicates the task failed.
	RunStatusFailed RunStatus = "failed"
)

// TaskRun is one recorded task execution.
type TaskRun struct {
	// ID is the unique identifier (ULID) assigned when the run is recorded.
	ID string
	// Task is the executed task name.
	Task string
	// Status is the final run state.
	Status RunStatus
	// ExitCode is the exit code the run maps to (0 on success).
	ExitCode int
	// Error is the failure message. Empty for successful runs.
	Error string
	// StartedAt is when the task started.
	StartedAt time.Time
	// FinishedAt is when the task finished.
	FinishedAt time.Time
}

// Environment is a read-only snapshot of the project environment state.
type Environment struct {
	// Name is the environment name.
	Name string
	// Path is the environment directory.
	Path string
	// ManifestPath is the manifest the environment is created from.
	ManifestPath string
	// Present reports whether the environment directory exists.
	Present bool
}

// CheckStatus represents the status of a preflight check.
type CheckStatus string

const (
	// CheckStatusOK indicates the check passed.
	CheckStatusOK CheckStatus = "ok"
	// CheckStatusWarning indicates the check passed with a warning.
	CheckStatusWarning CheckStatus = "warning"
	// CheckStatusError indicates the check failed.
	CheckStatusError CheckStatus = "error"
)

// CheckResult represents the result of a single preflight check.
type CheckResult struct {
	// ID is a unique identifier for the check (e.g. "toolchain_present").
	ID string
	// Message is a human-readable description of the result.
	Message string
	// Status is the check status.
	Status CheckStatus
}

// ExitCode maps an error returned by [Client.RunTask] to the exit code the
// tsk CLI would surface: the failing tool's own code, 127 for a missing
// tool, 2 for an unknown task, 1 for anything else and 0 for nil.
func ExitCode(err error) int {
	return model.ExitCode(err)
}

// --- Internal conversion helpers ---

func fromInternalTask(t model.Task) Task {
	return Task{
		Name:        t.Name,
		Description: t.Description,
		Requires:    append([]string{}, t.Requires...),
	}
}

func fromInternalTaskList(ts []model.Task) []Task {
	result := make([]Task, len(ts))
	for i, t := range ts {
		result[i] = fromInternalTask(t)
	}
	return result
}

func fromInternalTaskRun(r model.TaskRun) TaskRun {
	return TaskRun{
		ID:         r.ID,
		Task:       r.Task,
		Status:     RunStatus(r.Status),
		ExitCode:   r.ExitCode,
		Error:      r.Error,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
	}
}

func fromInternalTaskRunList(rs []model.TaskRun) []TaskRun {
	result := make([]TaskRun, len(rs))
	for i, r := range rs {
		result[i] = fromInternalTaskRun(r)
	}
	return result
}

func fromInternalCheckResults(results []model.CheckResult) []CheckResult {
	out := make([]CheckResult, len(results))
	for i, r := range results {
		out[i] = CheckResult{
			ID:      r.ID,
			Message: r.Message,
			Status:  CheckStatus(r.Status),
		}
	}
	return out
}

// mapError translates internal sentinels to their public counterparts while
// keeping the original message and chain.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, model.ErrUnknownTask):
		return joinErrors(err, ErrUnknownTask)
	case errors.Is(err, model.ErrToolNotFound):
		return joinErrors(err, ErrToolNotFound)
	case errors.Is(err, model.ErrUnsupportedPlatform):
		return joinErrors(err, ErrUnsupportedPlatform)
	case errors.Is(err, model.ErrNotValid):
		return joinErrors(err, ErrNotValid)
	default:
		return err
	}
}

func joinErrors(original, sentinel error) error {
	return &mappedError{original: original, sentinel: sentinel}
}

type mappedError struct {
	original error
	sentinel error
}

func (e *mappedError) Error() string { return e.original.Error() }

func (e *mappedError) Is(target error) bool {
	return target == e.sentinel
}

func (e *mappedError) Unwrap() error { return e.original }
