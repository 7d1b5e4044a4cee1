package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/slok/tsk/internal/log"
	"github.com/slok/tsk/internal/model"
	"github.com/slok/tsk/internal/storage/sqlite/migrations"
)

// RepositoryConfig is the configuration for the SQLite run repository.
type RepositoryConfig struct {
	DBPath string
	Logger log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.DBPath == "" {
		return fmt.Errorf("db path is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.SQLite"})
	return nil
}

// Repository is a SQLite implementation of storage.RunRepository.
type Repository struct {
	db     *sql.DB
	logger log.Logger
}

// NewRepository creates a new SQLite run repository.
func NewRepository(ctx context.Context, cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	dir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("could not create db directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)", cfg.DBPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	migrator, err := migrations.NewMigrator(db, cfg.Logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("could not create migrator: %w", err)
	}
	if err := migrator.Up(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not run migrations: %w", err)
	}

	cfg.Logger.Debugf("SQLite repository initialized at %s", cfg.DBPath)

	return &Repository{db: db, logger: cfg.Logger}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error { return r.db.Close() }

// CreateRun records an executed task.
func (r *Repository) CreateRun(ctx context.Context, run model.TaskRun) error {
	query := `
		INSERT INTO runs (id, task, status, exit_code, error, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		run.ID,
		run.Task,
		run.Status,
		run.ExitCode,
		run.Error,
		run.StartedAt.Unix(),
		run.FinishedAt.Unix(),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: runs.") {
			return fmt.Errorf("run already exists: %w", model.ErrAlreadyExists)
		}
		return fmt.Errorf("could not insert run: %w", err)
	}

	r.logger.Debugf("Recorded run in repository: %s", run.ID)
	return nil
}

// ListRuns returns recorded runs, newest first. A limit <= 0 returns all.
func (r *Repository) ListRuns(ctx context.Context, limit int) ([]model.TaskRun, error) {
	query := `
		SELECT id, task, status, exit_code, error, started_at, finished_at
		FROM runs
		ORDER BY started_at DESC, id DESC
	`

	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("could not query runs: %w", err)
	}
	defer rows.Close()

	var runs []model.TaskRun
	for rows.Next() {
		var run model.TaskRun
		var startedAt, finishedAt int64

		err := rows.Scan(
			&run.ID,
			&run.Task,
			&run.Status,
			&run.ExitCode,
			&run.Error,
			&startedAt,
			&finishedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}

		run.StartedAt = timeFromUnix(startedAt)
		run.FinishedAt = timeFromUnix(finishedAt)
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return runs, nil
}

func timeFromUnix(unix int64) time.Time { return time.Unix(unix, 0).UTC() }
