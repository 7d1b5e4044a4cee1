package lib

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/slok/tsk/internal/conventions"
	"github.com/slok/tsk/internal/log"
	"github.com/slok/tsk/internal/provision"
	"github.com/slok/tsk/internal/runner"
	"github.com/slok/tsk/internal/shell"
	"github.com/slok/tsk/internal/storage"
	storageio "github.com/slok/tsk/internal/storage/io"
	"github.com/slok/tsk/internal/storage/sqlite"
	"github.com/slok/tsk/internal/tasks"
	"github.com/slok/tsk/internal/toolchain"
)

// Config configures the SDK client.
//
// All fields are optional and have sensible defaults. At minimum, an empty
// Config{} automates the project in the current directory with tsk data
// under ~/.tsk.
type Config struct {
	// ProjectRoot is the directory of the automated project.
	// Default: ".".
	ProjectRoot string

	// EnvName is the project environment name.
	// Default: the manifest's name field, falling back to the project
	// directory name when no manifest is readable.
	EnvName string

	// ManifestPath is the environment manifest location.
	// Default: <ProjectRoot>/environment.yml.
	ManifestPath string

	// DataDir is the base directory for tsk data (toolchain, environments,
	// installer cache, run history).
	// Default: ~/.tsk.
	DataDir string

	// DBPath is the run history SQLite database path.
	// Default: <DataDir>/tsk.db.
	DBPath string

	// Logger receives structured log output from the SDK.
	// Default: noop (silent). See the log sub-package for the interface.
	Logger log.Logger

	// Stdout receives delegated tool and installer output.
	// Default: os.Stdout.
	Stdout io.Writer

	// Stderr receives delegated tool and installer error output.
	// Default: os.Stderr.
	Stderr io.Writer
}

func (c *Config) defaults() error {
	if c.ProjectRoot == "" {
		c.ProjectRoot = "."
	}

	if c.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("could not get user home dir: %w", err)
		}
		c.DataDir = filepath.Join(home, conventions.DefaultDataDir)
	}

	if c.DBPath == "" {
		c.DBPath = conventions.DBPath(c.DataDir)
	}

	if c.ManifestPath == "" {
		c.ManifestPath = filepath.Join(c.ProjectRoot, conventions.DefaultManifestFile)
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	if c.Stdout == nil {
		c.Stdout = os.Stdout
	}
	if c.Stderr == nil {
		c.Stderr = os.Stderr
	}

	return nil
}

// Client is the main SDK entry point for driving project tasks
// programmatically.
//
// Create a Client with [New] and release its resources with [Client.Close].
type Client struct {
	provisioner  *provision.Service
	registry     *tasks.Registry
	runner       *runner.Service
	history      storage.RunRepository
	envName      string
	manifestPath string
	stdout       io.Writer
	stderr       io.Writer
	logger       log.Logger
	closeFn      func() error
}

// New creates a new SDK client wired for one project, backed by a SQLite
// run history database.
//
// The caller must call [Client.Close] when done to release the database
// connection. Typically used with defer:
//
//	client, err := lib.New(ctx, lib.Config{})
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
func New(ctx context.Context, cfg Config) (*Client, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	manifestPath := cfg.ManifestPath
	if !filepath.IsAbs(manifestPath) {
		abs, err := filepath.Abs(manifestPath)
		if err != nil {
			return nil, fmt.Errorf("could not resolve manifest path: %w", err)
		}
		manifestPath = abs
	}

	manifests := storageio.NewEnvManifestYAMLRepository(os.DirFS("/"))

	// Environment name: explicit config, then the manifest, then the
	// project directory name.
	envName := cfg.EnvName
	if envName == "" {
		manifest, err := manifests.GetManifest(ctx, manifestPath)
		if err == nil {
			envName = manifest.Name
		}
	}
	if envName == "" {
		absRoot, err := filepath.Abs(cfg.ProjectRoot)
		if err != nil {
			return nil, fmt.Errorf("could not resolve project root: %w", err)
		}
		envName = filepath.Base(absRoot)
	}

	conda, err := toolchain.NewConda(toolchain.CondaConfig{
		Home:    conventions.CondaHome(cfg.DataDir),
		EnvsDir: conventions.EnvsHome(cfg.DataDir),
	})
	if err != nil {
		return nil, fmt.Errorf("could not create toolchain layout: %w", err)
	}

	fetcher, err := toolchain.NewFetcher(toolchain.FetcherConfig{
		CacheDir:     conventions.CacheHome(cfg.DataDir),
		StatusWriter: cfg.Stderr,
		Logger:       cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create installer fetcher: %w", err)
	}

	shellRunner := shell.OSRunner{}

	provisioner, err := provision.NewService(provision.ServiceConfig{
		Conda:     conda,
		Fetcher:   fetcher,
		Shell:     shellRunner,
		Manifests: manifests,
		Stdout:    cfg.Stdout,
		Stderr:    cfg.Stderr,
		Logger:    cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create provisioner: %w", err)
	}

	registry, err := tasks.NewProjectRegistry(tasks.RegistryConfig{
		Conda:        conda,
		Provisioner:  provisioner,
		Shell:        shellRunner,
		ProjectRoot:  cfg.ProjectRoot,
		EnvName:      envName,
		ManifestPath: manifestPath,
		Logger:       cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create task registry: %w", err)
	}

	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: cfg.DBPath,
		Logger: cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create repository: %w", err)
	}

	svc, err := runner.NewService(runner.ServiceConfig{
		Registry: registry,
		History:  repo,
		Logger:   cfg.Logger,
	})
	if err != nil {
		_ = repo.Close()
		return nil, fmt.Errorf("could not create task runner: %w", err)
	}

	return &Client{
		provisioner:  provisioner,
		registry:     registry,
		runner:       svc,
		history:      repo,
		envName:      envName,
		manifestPath: manifestPath,
		stdout:       cfg.Stdout,
		stderr:       cfg.Stderr,
		logger:       cfg.Logger,
		closeFn:      repo.Close,
	}, nil
}

// Close releases resources held by the client, including the database
// connection. After Close returns, the client must not be used.
func (c *Client) Close() error {
	if c.closeFn != nil {
		return c.closeFn()
	}
	return nil
}
