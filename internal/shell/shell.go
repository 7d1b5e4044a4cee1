package shell

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"

	"github.com/slok/tsk/internal/model"
)

// Command describes a single external process invocation.
type Command struct {
	// Path is the executable to run: either an absolute path into an
	// environment's bin directory or a bare name resolved through PATH.
	Path string
	Args []string
	// Dir is the working directory, empty means the current directory.
	Dir string
	// Env is extra environment merged over the current process environment.
	Env map[string]string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Runner runs external commands and maps their failures to the model error
// taxonomy: a missing executable is model.ErrToolNotFound and a non-zero
// exit is a *model.ToolError carrying the tool's code. Tool output is never
// captured or rewritten, it goes straight to the command's streams.
type Runner interface {
	Run(ctx context.Context, cmd Command) error
}

// OSRunner runs commands as real OS processes.
type OSRunner struct{}

var _ Runner = OSRunner{}

func (OSRunner) Run(ctx context.Context, c Command) error {
	if c.Path == "" {
		return fmt.Errorf("command path is required: %w", model.ErrNotValid)
	}

	// LookPath stats absolute paths directly and resolves bare names through
	// PATH, so both tool layouts fail the same way when missing.
	if _, err := exec.LookPath(c.Path); err != nil {
		return fmt.Errorf("%q: %w", c.Path, model.ErrToolNotFound)
	}

	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), envToList(c.Env)...)
	}

	// Wire up streams.
	if c.Stdin != nil {
		cmd.Stdin = c.Stdin
	}
	if c.Stdout != nil {
		cmd.Stdout = c.Stdout
	}
	if c.Stderr != nil {
		cmd.Stderr = c.Stderr
	}

	err := cmd.Run()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return &model.ToolError{
				Tool:     filepath.Base(c.Path),
				Args:     c.Args,
				ExitCode: exitErr.ExitCode(),
			}
		}
		return fmt.Errorf("could not run %q: %w", c.Path, err)
	}

	return nil
}

func envToList(env map[string]string) []string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	list := make([]string, 0, len(env))
	for _, k := range keys {
		list = append(list, fmt.Sprintf("%s=%s", k, env[k]))
	}

	return list
}
