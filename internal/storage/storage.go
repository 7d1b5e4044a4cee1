package storage

import (
	"context"

	"github.com/slok/tsk/internal/model"
)

// RunRepository is the interface for task run history persistence.
type RunRepository interface {
	CreateRun(ctx context.Context, r model.TaskRun) error
	ListRuns(ctx context.Context, limit int) ([]model.TaskRun, error)
}
