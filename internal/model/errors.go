package model

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyExists is returned when a resource already exists.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotValid is returned when a resource is not valid.
	ErrNotValid = errors.New("not valid")
	// ErrUnknownTask is returned when a task name doesn't match any known task.
	ErrUnknownTask = errors.New("unknown task")
	// ErrToolNotFound is returned when a delegated executable can't be resolved.
	ErrToolNotFound = errors.New("tool not found")
	// ErrUnsupportedPlatform is returned when the toolchain has no installer
	// for the current operating system.
	ErrUnsupportedPlatform = errors.New("unsupported platform")
)

// ToolError is returned when a delegated tool exits with a non-zero status.
// The tool's own output already went to the user's streams, so the error only
// carries what is needed to propagate the failure.
type ToolError struct {
	Tool     string
	Args     []string
	ExitCode int
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("%s exited with code %d", e.Tool, e.ExitCode)
}

// Exit codes surfaced by the CLI.
const (
	// ExitCodeOK is the success exit code.
	ExitCodeOK = 0
	// ExitCodeError is the generic failure exit code.
	ExitCodeError = 1
	// ExitCodeUnknownTask is returned for task names that don't exist.
	ExitCodeUnknownTask = 2
	// ExitCodeToolNotFound mirrors the shell's command-not-found code.
	ExitCodeToolNotFound = 127
)

// ExitCode maps an error chain to the process exit code: delegated tool
// failures keep the tool's own code, missing tools map to 127, unknown
// tasks to 2 and anything else to 1.
func ExitCode(err error) int {
	if err == nil {
		return ExitCodeOK
	}

	var toolErr *ToolError
	switch {
	case errors.As(err, &toolErr):
		return toolErr.ExitCode
	case errors.Is(err, ErrToolNotFound):
		return ExitCodeToolNotFound
	case errors.Is(err, ErrUnknownTask):
		return ExitCodeUnknownTask
	}

	return ExitCodeError
}
