package lib

import (
	"context"
	"fmt"
	"io"

	"github.com/slok/tsk/internal/provision"
	"github.com/slok/tsk/internal/runner"
)

// RunTaskOpts configures a task run.
//
// Pass nil to [Client.RunTask] to use defaults (client streams, no extra
// env, process stdin for prompting tasks).
type RunTaskOpts struct {
	// Env contains extra environment variables passed to delegated tools
	// for this run only.
	Env map[string]string
	// Stdin is the input stream for prompting tasks (bump). Nil means the
	// process standard input.
	Stdin io.Reader
	// Stdout receives delegated tool output. Nil means the client's Stdout.
	Stdout io.Writer
	// Stderr receives delegated tool error output. Nil means the client's
	// Stderr.
	Stderr io.Writer
}

// Tasks returns the project task set in help order.
func (c *Client) Tasks() []Task {
	return fromInternalTaskList(c.registry.List())
}

// RunTask runs a task after its requirement chain, leaf first, each
// requirement at most once. Execution aborts on the first failing step.
//
// Returns [ErrUnknownTask] for names outside the task set and
// [ErrToolNotFound] when a delegated executable can't be resolved. A
// delegated tool's non-zero exit surfaces as an error whose [ExitCode] is
// the tool's own. The run is recorded in the history database (best
// effort).
func (c *Client) RunTask(ctx context.Context, name string, opts *RunTaskOpts) error {
	req := runner.Request{
		Task:   name,
		Stdout: c.stdout,
		Stderr: c.stderr,
	}

	if opts != nil {
		req.Env = opts.Env
		if opts.Stdin != nil {
			req.Stdin = opts.Stdin
		}
		if opts.Stdout != nil {
			req.Stdout = opts.Stdout
		}
		if opts.Stderr != nil {
			req.Stderr = opts.Stderr
		}
	}

	return mapError(c.runner.Run(ctx, req))
}

// History returns recorded task runs, newest first. A limit <= 0 returns
// all records.
func (c *Client) History(ctx context.Context, limit int) ([]TaskRun, error) {
	runs, err := c.history.ListRuns(ctx, limit)
	if err != nil {
		return nil, mapError(fmt.Errorf("could not list runs: %w", err))
	}

	return fromInternalTaskRunList(runs), nil
}

// Doctor runs preflight checks for the project setup: platform support,
// toolchain and environment presence, manifest validity and delegated tool
// resolution.
//
// Returns a slice of [CheckResult] describing each check's outcome.
func (c *Client) Doctor(ctx context.Context) []CheckResult {
	results := c.provisioner.Check(ctx, provision.CheckRequest{
		EnvName:      c.envName,
		ManifestPath: c.manifestPath,
		Tools:        c.registry.Tools(),
	})

	return fromInternalCheckResults(results)
}

// Environment returns a snapshot of the project environment state.
func (c *Client) Environment(ctx context.Context) (*Environment, error) {
	env, err := c.provisioner.Status(ctx, c.envName)
	if err != nil {
		return nil, mapError(err)
	}

	return &Environment{
		Name:         env.Name,
		Path:         env.Path,
		ManifestPath: c.manifestPath,
		Present:      env.Present,
	}, nil
}

// RemoveEnvironment deletes the project environment directory. Removing an
// absent environment is not an error.
func (c *Client) RemoveEnvironment(ctx context.Context) error {
	return mapError(c.provisioner.RemoveEnvironment(ctx, c.envName))
}
