package commands

import (
	"context"
	"io"
	"path/filepath"

	"github.com/alecthomas/kingpin/v2"
	"k8s.io/client-go/util/homedir"

	"github.com/slok/tsk/internal/conventions"
	"github.com/slok/tsk/internal/log"
)

const (
	// LoggerTypeDefault is the logger default type.
	LoggerTypeDefault = "default"
	// LoggerTypeJSON is the logger json type.
	LoggerTypeJSON = "json"
)

// Command represents an application command, all commands that want to be executed
// should implement and setup on main.
type Command interface {
	Name() string
	Run(ctx context.Context) error
}

// RootCommand represents the root command configuration and global configuration
// for all the commands.
type RootCommand struct {
	// Global flags.
	Debug      bool
	NoLog      bool
	NoColor    bool
	LoggerType string

	// Project flags.
	ProjectRoot  string
	EnvName      string
	CondaHome    string
	EnvsDir      string
	CacheDir     string
	ManifestPath string
	DBPath       string

	// Global instances.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger log.Logger
}

// NewRootCommand initializes the main root configuration.
func NewRootCommand(app *kingpin.Application) *RootCommand {
	c := &RootCommand{}

	app.Flag("debug", "Enable debug mode.").BoolVar(&c.Debug)
	app.Flag("no-log", "Disable logger.").BoolVar(&c.NoLog)
	app.Flag("no-color", "Disable logger color.").BoolVar(&c.NoColor)
	app.Flag("logger", "Selects the logger type.").Default(LoggerTypeDefault).EnumVar(&c.LoggerType, LoggerTypeDefault, LoggerTypeJSON)

	dataDir := filepath.Join(homedir.HomeDir(), conventions.DefaultDataDir)
	app.Flag("project-root", "Path to the project being automated.").Envar("TSK_PROJECT_ROOT").Default(".").StringVar(&c.ProjectRoot)
	app.Flag("env-name", "Project environment name. Defaults to the manifest's name field.").Envar("TSK_ENV_NAME").StringVar(&c.EnvName)
	app.Flag("conda-home", "Base toolchain install directory.").Envar("TSK_CONDA_HOME").Default(conventions.CondaHome(dataDir)).StringVar(&c.CondaHome)
	app.Flag("envs-dir", "Directory holding the managed environments.").Envar("TSK_ENVS_DIR").Default(conventions.EnvsHome(dataDir)).StringVar(&c.EnvsDir)
	app.Flag("cache-dir", "Installer download cache directory.").Envar("TSK_CACHE_DIR").Default(conventions.CacheHome(dataDir)).StringVar(&c.CacheDir)
	app.Flag("manifest", "Path to the environment manifest. Defaults to environment.yml in the project root.").Envar("TSK_MANIFEST").StringVar(&c.ManifestPath)
	app.Flag("db-path", "Path to the SQLite run history database file.").Envar("TSK_DB_PATH").Default(conventions.DBPath(dataDir)).StringVar(&c.DBPath)

	return c
}
