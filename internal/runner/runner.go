package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/slok/tsk/internal/log"
	"github.com/slok/tsk/internal/model"
	"github.com/slok/tsk/internal/storage"
	"github.com/slok/tsk/internal/tasks"
)

// ServiceConfig is the configuration of Service.
type ServiceConfig struct {
	Registry *tasks.Registry
	// History records finished task runs. Optional, nothing is recorded
	// when unset.
	History storage.RunRepository
	Logger  log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Registry == nil {
		return fmt.Errorf("task registry is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "runner.Service"})

	return nil
}

// Service executes tasks: the requirement chain resolves leaf first, each
// task runs at most once per invocation and the first failure stops the run.
type Service struct {
	registry *tasks.Registry
	history  storage.RunRepository
	logger   log.Logger
}

// NewService returns a new task runner service.
func NewService(cfg ServiceConfig) (*Service, error) {
	err := cfg.defaults()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &Service{
		registry: cfg.Registry,
		history:  cfg.History,
		logger:   cfg.Logger,
	}, nil
}

// Request is a task execution request.
type Request struct {
	// Task is the name of the task to run, requirements included.
	Task string
	// Stdin, Stdout and Stderr are handed to the task's steps.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	// Env is extra environment passed through to delegated tools.
	Env map[string]string
}

func (r *Request) defaults() error {
	if r.Task == "" {
		return fmt.Errorf("task name is required")
	}

	if r.Stdin == nil {
		r.Stdin = os.Stdin
	}

	if r.Stdout == nil {
		r.Stdout = os.Stdout
	}

	if r.Stderr == nil {
		r.Stderr = os.Stderr
	}

	return nil
}

// Run executes the requested task after its requirements.
func (s *Service) Run(ctx context.Context, req Request) error {
	err := req.defaults()
	if err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}

	chain, err := s.registry.Resolve(req.Task)
	if err != nil {
		return err
	}

	for _, task := range chain {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := s.runTask(ctx, task, &req); err != nil {
			return fmt.Errorf("task %q failed: %w", task.Name, err)
		}
	}

	return nil
}

func (s *Service) runTask(ctx context.Context, task *tasks.Task, req *Request) error {
	logger := s.logger.WithValues(log.Kv{"task": task.Name})
	logger.Infof("Running task")

	rc := &tasks.RunContext{
		Stdin:  req.Stdin,
		Stdout: req.Stdout,
		Stderr: req.Stderr,
		Env:    req.Env,
		Values: map[string]string{},
	}

	startedAt := time.Now().UTC()
	var runErr error
	for _, step := range task.Steps {
		logger.Debugf("Step: %s", step.Describe())
		runErr = step.Run(ctx, rc)
		if runErr != nil {
			break
		}
	}

	s.record(ctx, task.Name, startedAt, runErr)

	return runErr
}

// record stores the finished run. History failures never fail the task
// itself.
func (s *Service) record(ctx context.Context, taskName string, startedAt time.Time, runErr error) {
	if s.history == nil {
		return
	}

	run := model.TaskRun{
		ID:         ulid.Make().String(),
		Task:       taskName,
		Status:     model.TaskRunStatusDone,
		StartedAt:  startedAt,
		FinishedAt: time.Now().UTC(),
	}
	if runErr != nil {
		run.Status = model.TaskRunStatusFailed
		run.ExitCode = model.ExitCode(runErr)
		run.Error = runErr.Error()
	}

	err := s.history.CreateRun(ctx, run)
	if err != nil {
		s.logger.Warningf("Could not record run of task %q: %v", taskName, err)
	}
}
