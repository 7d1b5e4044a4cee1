package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/slok/tsk/internal/log"
	"github.com/slok/tsk/internal/model"
)

// RepositoryConfig is the configuration for the memory run repository.
type RepositoryConfig struct {
	Logger log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.Memory"})
	return nil
}

// Repository is an in-memory implementation of storage.RunRepository.
// Records live only for the process lifetime; the CLI falls back to it when
// the history database can't be opened.
type Repository struct {
	runs   []model.TaskRun
	mu     sync.RWMutex
	logger log.Logger
}

// NewRepository creates a new memory run repository.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Repository{logger: cfg.Logger}, nil
}

// CreateRun records an executed task.
func (r *Repository) CreateRun(ctx context.Context, run model.TaskRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.runs {
		if existing.ID == run.ID {
			return fmt.Errorf("run with id %s: %w", run.ID, model.ErrAlreadyExists)
		}
	}

	r.runs = append(r.runs, run)
	r.logger.Debugf("Recorded run in repository: %s", run.ID)

	return nil
}

// ListRuns returns recorded runs, newest first. A limit <= 0 returns all.
func (r *Repository) ListRuns(ctx context.Context, limit int) ([]model.TaskRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	runs := make([]model.TaskRun, 0, len(r.runs))
	for i := len(r.runs) - 1; i >= 0; i-- {
		runs = append(runs, r.runs[i])
	}

	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}

	return runs, nil
}
