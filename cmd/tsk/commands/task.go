package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/tsk/internal/conventions"
	"github.com/slok/tsk/internal/model"
	"github.com/slok/tsk/internal/provision"
	"github.com/slok/tsk/internal/runner"
	"github.com/slok/tsk/internal/shell"
	"github.com/slok/tsk/internal/storage"
	storageio "github.com/slok/tsk/internal/storage/io"
	"github.com/slok/tsk/internal/storage/memory"
	"github.com/slok/tsk/internal/storage/sqlite"
	"github.com/slok/tsk/internal/tasks"
	"github.com/slok/tsk/internal/toolchain"
)

type TaskCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	task     model.Task
	envSpecs []string
}

// NewTaskCommand returns a command that runs the given task after its
// requirements.
func NewTaskCommand(rootCmd *RootCommand, app *kingpin.Application, task model.Task) *TaskCommand {
	c := &TaskCommand{rootCmd: rootCmd, task: task}

	c.Cmd = app.Command(task.Name, task.Description)
	c.addTaskFlags()

	return c
}

// NewEnvEnsureCommand returns the default subcommand of env, the environment
// creation task.
func NewEnvEnsureCommand(rootCmd *RootCommand, parent *kingpin.CmdClause, task model.Task) *TaskCommand {
	c := &TaskCommand{rootCmd: rootCmd, task: task}

	c.Cmd = parent.Command("ensure", task.Description).Default()
	c.addTaskFlags()

	return c
}

func (c *TaskCommand) addTaskFlags() {
	c.Cmd.Flag("env", "Environment variables for delegated tools (KEY=VALUE or KEY from current environment). Can be repeated.").Short('e').StringsVar(&c.envSpecs)
}

func (c TaskCommand) Name() string { return c.Cmd.FullCommand() }

func (c TaskCommand) Run(ctx context.Context) error {
	cmdEnv, err := parseEnvSpecs(c.envSpecs)
	if err != nil {
		return fmt.Errorf("invalid --env value: %w", err)
	}

	tk, err := newToolkit(ctx, c.rootCmd)
	if err != nil {
		return err
	}

	svc, err := newTaskRunner(ctx, c.rootCmd, tk)
	if err != nil {
		return err
	}

	return svc.Run(ctx, runner.Request{
		Task:   c.task.Name,
		Stdin:  c.rootCmd.Stdin,
		Stdout: c.rootCmd.Stdout,
		Stderr: c.rootCmd.Stderr,
		Env:    cmdEnv,
	})
}

// toolkit bundles the wired project services the commands run on.
type toolkit struct {
	Conda        *toolchain.Conda
	Provisioner  *provision.Service
	Registry     *tasks.Registry
	EnvName      string
	ManifestPath string
}

// newToolkit wires the project services from the root configuration.
func newToolkit(ctx context.Context, rootCmd *RootCommand) (*toolkit, error) {
	logger := rootCmd.Logger
	shellRunner := shell.OSRunner{}

	conda, err := toolchain.NewConda(toolchain.CondaConfig{
		Home:    rootCmd.CondaHome,
		EnvsDir: rootCmd.EnvsDir,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create toolchain layout: %w", err)
	}

	fetcher, err := toolchain.NewFetcher(toolchain.FetcherConfig{
		CacheDir:     rootCmd.CacheDir,
		StatusWriter: rootCmd.Stderr,
		Logger:       logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create installer fetcher: %w", err)
	}

	manifests := storageio.NewEnvManifestYAMLRepository(os.DirFS("/"))

	manifestPath, envName, err := resolveProject(ctx, rootCmd, manifests)
	if err != nil {
		return nil, err
	}

	provisioner, err := provision.NewService(provision.ServiceConfig{
		Conda:     conda,
		Fetcher:   fetcher,
		Shell:     shellRunner,
		Manifests: manifests,
		Stdout:    rootCmd.Stdout,
		Stderr:    rootCmd.Stderr,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create provisioner: %w", err)
	}

	registry, err := tasks.NewProjectRegistry(tasks.RegistryConfig{
		Conda:        conda,
		Provisioner:  provisioner,
		Shell:        shellRunner,
		ProjectRoot:  rootCmd.ProjectRoot,
		EnvName:      envName,
		ManifestPath: manifestPath,
		Logger:       logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create task registry: %w", err)
	}

	return &toolkit{
		Conda:        conda,
		Provisioner:  provisioner,
		Registry:     registry,
		EnvName:      envName,
		ManifestPath: manifestPath,
	}, nil
}

// resolveProject returns the manifest path and the environment name. The
// manifest defaults to environment.yml in the project root, the environment
// name to the manifest's name field and, with no readable manifest, to the
// project directory name.
func resolveProject(ctx context.Context, rootCmd *RootCommand, manifests *storageio.EnvManifestYAMLRepository) (string, string, error) {
	manifestPath := rootCmd.ManifestPath
	if manifestPath == "" {
		manifestPath = filepath.Join(rootCmd.ProjectRoot, conventions.DefaultManifestFile)
	}
	if !filepath.IsAbs(manifestPath) {
		abs, err := filepath.Abs(manifestPath)
		if err != nil {
			return "", "", fmt.Errorf("could not resolve manifest path: %w", err)
		}
		manifestPath = abs
	}

	envName := rootCmd.EnvName
	if envName == "" {
		manifest, err := manifests.GetManifest(ctx, manifestPath)
		if err == nil {
			envName = manifest.Name
		}
	}
	if envName == "" {
		absRoot, err := filepath.Abs(rootCmd.ProjectRoot)
		if err != nil {
			return "", "", fmt.Errorf("could not resolve project root: %w", err)
		}
		envName = filepath.Base(absRoot)
		rootCmd.Logger.Debugf("No environment name configured and no readable manifest, using %q", envName)
	}

	return manifestPath, envName, nil
}

// newTaskRunner wires the task runner on top of the toolkit. Run history is
// best effort, a failing database never blocks a task.
func newTaskRunner(ctx context.Context, rootCmd *RootCommand, tk *toolkit) (*runner.Service, error) {
	var history storage.RunRepository
	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: rootCmd.DBPath,
		Logger: rootCmd.Logger,
	})
	if err != nil {
		rootCmd.Logger.Warningf("Run history not persisted, could not open database: %v", err)
		history, err = memory.NewRepository(memory.RepositoryConfig{Logger: rootCmd.Logger})
		if err != nil {
			return nil, fmt.Errorf("could not create memory repository: %w", err)
		}
	} else {
		history = repo
	}

	svc, err := runner.NewService(runner.ServiceConfig{
		Registry: tk.Registry,
		History:  history,
		Logger:   rootCmd.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create task runner: %w", err)
	}

	return svc, nil
}
