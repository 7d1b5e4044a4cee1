package runner_test

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/slok/tsk/internal/model"
	"github.com/slok/tsk/internal/runner"
	"github.com/slok/tsk/internal/storage/storagemock"
	"github.com/slok/tsk/internal/tasks"
)

func recordingTask(calls *[]string, name string, stepErr error, requires ...string) *tasks.Task {
	return &tasks.Task{
		Task: model.Task{Name: name, Description: name + " task.", Requires: requires},
		Steps: []tasks.Step{tasks.StepFunc{
			Desc: name,
			Func: func(_ context.Context, _ *tasks.RunContext) error {
				*calls = append(*calls, name)
				return stepErr
			},
		}},
	}
}

func TestServiceRun(t *testing.T) {
	tests := map[string]struct {
		taskSet  func(calls *[]string) []*tasks.Task
		task     string
		expCalls []string
		expErr   bool
		expCode  int
	}{
		"A requirement chain should run leaf first": {
			taskSet: func(calls *[]string) []*tasks.Task {
				return []*tasks.Task{
					recordingTask(calls, "a", nil),
					recordingTask(calls, "b", nil, "a"),
					recordingTask(calls, "c", nil, "b"),
				}
			},
			task:     "c",
			expCalls: []string{"a", "b", "c"},
		},

		"A shared requirement should run only once": {
			taskSet: func(calls *[]string) []*tasks.Task {
				return []*tasks.Task{
					recordingTask(calls, "a", nil),
					recordingTask(calls, "b", nil, "a"),
					recordingTask(calls, "c", nil, "a"),
					recordingTask(calls, "d", nil, "b", "c"),
				}
			},
			task:     "d",
			expCalls: []string{"a", "b", "c", "d"},
		},

		"A failing task should stop the chain with its exit code": {
			taskSet: func(calls *[]string) []*tasks.Task {
				return []*tasks.Task{
					recordingTask(calls, "a", nil),
					recordingTask(calls, "b", &model.ToolError{Tool: "pytest", ExitCode: 3}, "a"),
					recordingTask(calls, "c", nil, "b"),
				}
			},
			task:     "c",
			expCalls: []string{"a", "b"},
			expErr:   true,
			expCode:  3,
		},

		"An unknown task should fail without running anything": {
			taskSet: func(calls *[]string) []*tasks.Task {
				return []*tasks.Task{recordingTask(calls, "a", nil)}
			},
			task:     "ghost",
			expCalls: []string{},
			expErr:   true,
			expCode:  model.ExitCodeUnknownTask,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			calls := []string{}
			reg, err := tasks.New(test.taskSet(&calls)...)
			require.NoError(err)

			svc, err := runner.NewService(runner.ServiceConfig{Registry: reg})
			require.NoError(err)

			err = svc.Run(context.Background(), runner.Request{Task: test.task})

			if test.expErr {
				require.Error(err)
				assert.Equal(test.expCode, model.ExitCode(err))
			} else {
				require.NoError(err)
			}
			assert.Equal(test.expCalls, calls)
		})
	}
}

func TestServiceRunStreams(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	task := &tasks.Task{
		Task: model.Task{Name: "a", Description: "Writes to the request streams."},
		Steps: []tasks.Step{tasks.StepFunc{
			Desc: "write",
			Func: func(_ context.Context, rc *tasks.RunContext) error {
				fmt.Fprint(rc.Stdout, "out")
				fmt.Fprint(rc.Stderr, "err")
				return nil
			},
		}},
	}

	reg, err := tasks.New(task)
	require.NoError(err)
	svc, err := runner.NewService(runner.ServiceConfig{Registry: reg})
	require.NoError(err)

	var stdout, stderr bytes.Buffer
	err = svc.Run(context.Background(), runner.Request{Task: "a", Stdout: &stdout, Stderr: &stderr})

	require.NoError(err)
	assert.Equal("out", stdout.String())
	assert.Equal("err", stderr.String())
}

func TestServiceRunValuesDoNotLeakAcrossTasks(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	taskA := &tasks.Task{
		Task: model.Task{Name: "a", Description: "Stores a value."},
		Steps: []tasks.Step{tasks.StepFunc{
			Desc: "store",
			Func: func(_ context.Context, rc *tasks.RunContext) error {
				rc.Values["version"] = "1.2.3"
				return nil
			},
		}},
	}

	leaked := false
	taskB := &tasks.Task{
		Task: model.Task{Name: "b", Description: "Checks for leaked values.", Requires: []string{"a"}},
		Steps: []tasks.Step{tasks.StepFunc{
			Desc: "check",
			Func: func(_ context.Context, rc *tasks.RunContext) error {
				_, leaked = rc.Values["version"]
				return nil
			},
		}},
	}

	reg, err := tasks.New(taskA, taskB)
	require.NoError(err)
	svc, err := runner.NewService(runner.ServiceConfig{Registry: reg})
	require.NoError(err)

	require.NoError(svc.Run(context.Background(), runner.Request{Task: "b"}))
	assert.False(leaked)
}

func TestServiceRunHistory(t *testing.T) {
	tests := map[string]struct {
		taskSet   func(calls *[]string) []*tasks.Task
		task      string
		mock      func(m *storagemock.MockRunRepository, runs *[]model.TaskRun)
		expErr    bool
		expRuns   int
		assertRun func(t *testing.T, runs []model.TaskRun)
	}{
		"A successful chain should record one done run per task": {
			taskSet: func(calls *[]string) []*tasks.Task {
				return []*tasks.Task{
					recordingTask(calls, "a", nil),
					recordingTask(calls, "b", nil, "a"),
				}
			},
			task: "b",
			mock: func(m *storagemock.MockRunRepository, runs *[]model.TaskRun) {
				m.On("CreateRun", mock.Anything, mock.Anything).Times(2).Return(nil).Run(func(args mock.Arguments) {
					*runs = append(*runs, args.Get(1).(model.TaskRun))
				})
			},
			expRuns: 2,
			assertRun: func(t *testing.T, runs []model.TaskRun) {
				assert.Equal(t, "a", runs[0].Task)
				assert.Equal(t, "b", runs[1].Task)
				for _, run := range runs {
					assert.Len(t, run.ID, 26)
					assert.Equal(t, model.TaskRunStatusDone, run.Status)
					assert.Equal(t, 0, run.ExitCode)
					assert.Empty(t, run.Error)
					assert.False(t, run.FinishedAt.Before(run.StartedAt))
				}
			},
		},

		"A failed task should record a failed run with the exit code": {
			taskSet: func(calls *[]string) []*tasks.Task {
				return []*tasks.Task{
					recordingTask(calls, "a", nil),
					recordingTask(calls, "b", &model.ToolError{Tool: "flake8", ExitCode: 1}, "a"),
				}
			},
			task: "b",
			mock: func(m *storagemock.MockRunRepository, runs *[]model.TaskRun) {
				m.On("CreateRun", mock.Anything, mock.Anything).Times(2).Return(nil).Run(func(args mock.Arguments) {
					*runs = append(*runs, args.Get(1).(model.TaskRun))
				})
			},
			expErr:  true,
			expRuns: 2,
			assertRun: func(t *testing.T, runs []model.TaskRun) {
				assert.Equal(t, model.TaskRunStatusDone, runs[0].Status)
				assert.Equal(t, model.TaskRunStatusFailed, runs[1].Status)
				assert.Equal(t, 1, runs[1].ExitCode)
				assert.Contains(t, runs[1].Error, "flake8")
			},
		},

		"A history write failure should not fail the run": {
			taskSet: func(calls *[]string) []*tasks.Task {
				return []*tasks.Task{recordingTask(calls, "a", nil)}
			},
			task: "a",
			mock: func(m *storagemock.MockRunRepository, _ *[]model.TaskRun) {
				m.On("CreateRun", mock.Anything, mock.Anything).Once().Return(fmt.Errorf("db locked"))
			},
			expRuns: 0,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)

			calls := []string{}
			reg, err := tasks.New(test.taskSet(&calls)...)
			require.NoError(err)

			repo := storagemock.NewMockRunRepository(t)
			runs := []model.TaskRun{}
			test.mock(repo, &runs)

			svc, err := runner.NewService(runner.ServiceConfig{Registry: reg, History: repo})
			require.NoError(err)

			err = svc.Run(context.Background(), runner.Request{Task: test.task})

			if test.expErr {
				require.Error(err)
			} else {
				require.NoError(err)
			}

			require.Len(runs, test.expRuns)
			if test.assertRun != nil {
				test.assertRun(t, runs)
			}
		})
	}
}

func TestNewServiceValidation(t *testing.T) {
	tests := map[string]struct {
		config func(t *testing.T) runner.ServiceConfig
		expErr bool
	}{
		"A configuration with a registry should work": {
			config: func(t *testing.T) runner.ServiceConfig {
				reg, err := tasks.New()
				require.NoError(t, err)
				return runner.ServiceConfig{Registry: reg}
			},
		},

		"A missing registry should fail": {
			config: func(_ *testing.T) runner.ServiceConfig { return runner.ServiceConfig{} },
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			_, err := runner.NewService(test.config(t))

			if test.expErr {
				assert.Error(err)
			} else {
				assert.NoError(err)
			}
		})
	}
}
