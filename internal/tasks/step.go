package tasks

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/slok/tsk/internal/browser"
	"github.com/slok/tsk/internal/log"
	"github.com/slok/tsk/internal/model"
	"github.com/slok/tsk/internal/prompt"
	"github.com/slok/tsk/internal/provision"
	"github.com/slok/tsk/internal/shell"
	"github.com/slok/tsk/internal/toolchain"
)

// RunContext carries per-invocation state across a task's steps: the user's
// streams, extra environment for delegated tools and the values collected by
// prompt steps for later argument expansion.
type RunContext struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Env    map[string]string
	Values map[string]string
}

// Step is a single unit of work inside a task. Steps run strictly in
// declaration order and the first failure aborts the task.
type Step interface {
	Describe() string
	Run(ctx context.Context, rc *RunContext) error
}

// StepFunc is a convenience adapter to allow the use of ordinary functions as Steps.
type StepFunc struct {
	Desc string
	Func func(ctx context.Context, rc *RunContext) error
}

func (s StepFunc) Describe() string { return s.Desc }

func (s StepFunc) Run(ctx context.Context, rc *RunContext) error { return s.Func(ctx, rc) }

// toolStep invokes a delegated tool from the environment's bin directory.
// The tool's streams are the invocation's streams, its output is never
// captured or rewritten.
type toolStep struct {
	shell   shell.Runner
	conda   *toolchain.Conda
	envName string
	dir     string
	tool    string
	args    []string
}

func (s toolStep) Describe() string { return s.tool + " " + strings.Join(s.args, " ") }

func (s toolStep) Run(ctx context.Context, rc *RunContext) error {
	args, err := expandArgs(s.args, rc.Values)
	if err != nil {
		return err
	}

	return s.shell.Run(ctx, shell.Command{
		Path:   s.conda.EnvTool(s.envName, s.tool),
		Args:   args,
		Dir:    s.dir,
		Env:    rc.Env,
		Stdin:  rc.Stdin,
		Stdout: rc.Stdout,
		Stderr: rc.Stderr,
	})
}

// promptStep blocks asking for one line of input and stores the answer for
// later placeholder expansion.
type promptStep struct {
	prompter prompt.Prompter
	question string
	key      string
}

func (s promptStep) Describe() string { return fmt.Sprintf("ask %q", s.question) }

func (s promptStep) Run(_ context.Context, rc *RunContext) error {
	answer, err := s.prompter.Ask(s.question, rc.Stdin, rc.Stdout)
	if err != nil {
		return fmt.Errorf("could not read %q: %w", s.question, err)
	}

	rc.Values[s.key] = answer
	return nil
}

// browseStep opens a generated HTML report in the user's browser. Not being
// able to pop a browser never fails the task.
type browseStep struct {
	opener browser.Opener
	logger log.Logger
	dir    string
	path   string
}

func (s browseStep) Describe() string { return "open " + s.path }

func (s browseStep) Run(_ context.Context, _ *RunContext) error {
	path := filepath.Join(s.dir, s.path)
	if err := s.opener.Open(path); err != nil {
		s.logger.Warningf("Could not open %s in a browser: %v", path, err)
	}
	return nil
}

// cleanStep removes build artifact paths, glob patterns included. Absent
// paths are not an error, genuine filesystem errors are.
type cleanStep struct {
	logger   log.Logger
	dir      string
	patterns []string
}

func (s cleanStep) Describe() string { return "remove " + strings.Join(s.patterns, " ") }

func (s cleanStep) Run(ctx context.Context, _ *RunContext) error {
	for _, pattern := range s.patterns {
		if err := ctx.Err(); err != nil {
			return err
		}

		matches, err := filepath.Glob(filepath.Join(s.dir, pattern))
		if err != nil {
			return fmt.Errorf("bad artifact pattern %q: %w", pattern, err)
		}

		for _, match := range matches {
			if err := os.RemoveAll(match); err != nil {
				return fmt.Errorf("could not remove %s: %w", match, err)
			}
			s.logger.Debugf("Removed %s", match)
		}
	}

	return nil
}

// ensureToolchainStep provisions the base toolchain.
type ensureToolchainStep struct {
	provisioner provision.Provisioner
}

func (s ensureToolchainStep) Describe() string { return "ensure base toolchain" }

func (s ensureToolchainStep) Run(ctx context.Context, _ *RunContext) error {
	return s.provisioner.EnsureToolchain(ctx)
}

// ensureEnvStep provisions the project environment.
type ensureEnvStep struct {
	provisioner  provision.Provisioner
	envName      string
	manifestPath string
}

func (s ensureEnvStep) Describe() string { return fmt.Sprintf("ensure environment %q", s.envName) }

func (s ensureEnvStep) Run(ctx context.Context, _ *RunContext) error {
	return s.provisioner.EnsureEnvironment(ctx, s.envName, s.manifestPath)
}

var placeholderRegexp = regexp.MustCompile(`\{[A-Za-z_][A-Za-z0-9_]*\}`)

// expandArgs replaces {key} placeholders with values collected by prompt
// steps. A placeholder without a value is an error, not a literal argument.
func expandArgs(args []string, values map[string]string) ([]string, error) {
	expanded := make([]string, 0, len(args))
	for _, arg := range args {
		for k, v := range values {
			arg = strings.ReplaceAll(arg, "{"+k+"}", v)
		}

		if placeholder := placeholderRegexp.FindString(arg); placeholder != "" {
			return nil, fmt.Errorf("unresolved placeholder %s in argument %q: %w", placeholder, arg, model.ErrNotValid)
		}

		expanded = append(expanded, arg)
	}

	return expanded, nil
}
