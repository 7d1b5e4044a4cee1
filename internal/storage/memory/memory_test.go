package memory_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/tsk/internal/model"
	"github.com/slok/tsk/internal/storage/memory"
)

func testRun(id, task string, startedAt time.Time) model.TaskRun {
	return model.TaskRun{
		ID:         id,
		Task:       task,
		Status:     model.TaskRunStatusDone,
		StartedAt:  startedAt,
		FinishedAt: startedAt.Add(time.Second),
	}
}

func TestRepository(t *testing.T) {
	t0 := time.Date(2025, 11, 3, 10, 0, 0, 0, time.UTC)

	tests := map[string]struct {
		actions func(ctx context.Context, t *testing.T, repo *memory.Repository) error
		expErr  bool
	}{
		"Recording a run should make it listable": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) error {
				err := repo.CreateRun(ctx, testRun("run-1", "test", t0))
				require.NoError(t, err)

				runs, err := repo.ListRuns(ctx, 0)
				require.NoError(t, err)
				require.Len(t, runs, 1)
				assert.Equal(t, "run-1", runs[0].ID)
				assert.Equal(t, "test", runs[0].Task)

				return nil
			},
		},

		"Recording a duplicate id should fail": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) error {
				err := repo.CreateRun(ctx, testRun("run-1", "test", t0))
				require.NoError(t, err)

				err = repo.CreateRun(ctx, testRun("run-1", "lint", t0))
				assert.True(t, errors.Is(err, model.ErrAlreadyExists))

				return err
			},
			expErr: true,
		},

		"Listing should return runs newest first": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) error {
				for i := 0; i < 3; i++ {
					err := repo.CreateRun(ctx, testRun(fmt.Sprintf("run-%d", i), "test", t0.Add(time.Duration(i)*time.Minute)))
					require.NoError(t, err)
				}

				runs, err := repo.ListRuns(ctx, 0)
				require.NoError(t, err)
				require.Len(t, runs, 3)
				assert.Equal(t, "run-2", runs[0].ID)
				assert.Equal(t, "run-1", runs[1].ID)
				assert.Equal(t, "run-0", runs[2].ID)

				return nil
			},
		},

		"Listing with a limit should return only the newest runs": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) error {
				for i := 0; i < 5; i++ {
					err := repo.CreateRun(ctx, testRun(fmt.Sprintf("run-%d", i), "test", t0.Add(time.Duration(i)*time.Minute)))
					require.NoError(t, err)
				}

				runs, err := repo.ListRuns(ctx, 2)
				require.NoError(t, err)
				require.Len(t, runs, 2)
				assert.Equal(t, "run-4", runs[0].ID)
				assert.Equal(t, "run-3", runs[1].ID)

				return nil
			},
		},

		"Listing empty repository should return empty slice": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) error {
				runs, err := repo.ListRuns(ctx, 10)
				require.NoError(t, err)
				assert.Empty(t, runs)

				return nil
			},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			repo, err := memory.NewRepository(memory.RepositoryConfig{})
			require.NoError(t, err)

			err = test.actions(context.Background(), t, repo)

			if test.expErr {
				assert.Error(err)
			} else {
				assert.NoError(err)
			}
		})
	}
}
