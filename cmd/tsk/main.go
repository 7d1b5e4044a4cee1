package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/oklog/run"
	"github.com/sirupsen/logrus"

	"github.com/slok/tsk/cmd/tsk/commands"
	"github.com/slok/tsk/internal/log"
	loglogrus "github.com/slok/tsk/internal/log/logrus"
	"github.com/slok/tsk/internal/model"
	"github.com/slok/tsk/internal/tasks"
)

const (
	// Version is the application version (set via ldflags).
	Version = "dev"
)

// Run runs the main application.
func Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) (err error) {
	app := kingpin.New("tsk", "Task automation for conda based Python projects.")
	app.DefaultEnvars()
	rootCmd := commands.NewRootCommand(app)

	cmds := map[string]commands.Command{}

	// Every project task is a top level command. The env task becomes a
	// command group so the environment can also be removed.
	for _, task := range tasks.ProjectTasks() {
		if task.Name == tasks.TaskEnv {
			envCmd := app.Command(tasks.TaskEnv, "Manage the project environment.")
			ensureCmd := commands.NewEnvEnsureCommand(rootCmd, envCmd, task)
			rmCmd := commands.NewEnvRmCommand(rootCmd, envCmd)
			cmds[ensureCmd.Name()] = ensureCmd
			cmds[rmCmd.Name()] = rmCmd
			continue
		}

		taskCmd := commands.NewTaskCommand(rootCmd, app, task)
		cmds[taskCmd.Name()] = taskCmd
	}

	// Setup utility commands (registers flags).
	tasksCmd := commands.NewTasksCommand(rootCmd, app)
	doctorCmd := commands.NewDoctorCommand(rootCmd, app)
	historyCmd := commands.NewHistoryCommand(rootCmd, app)
	cmds[tasksCmd.Name()] = tasksCmd
	cmds[doctorCmd.Name()] = doctorCmd
	cmds[historyCmd.Name()] = historyCmd

	// Parse command. Bad usage exits the same way an unknown task does.
	cmdName, err := app.Parse(args[1:])
	if err != nil {
		return fmt.Errorf("invalid command configuration (%s): %w", err, model.ErrUnknownTask)
	}

	// Set standard input/output.
	rootCmd.Stdin = stdin
	rootCmd.Stdout = stdout
	rootCmd.Stderr = stderr

	// Auto-suppress logging for commands that produce structured output (table/JSON)
	// to prevent log noise from mixing with printer output in the terminal.
	// Users can still enable logging with --debug.
	printerCommands := map[string]bool{
		"tasks":   true,
		"history": true,
	}
	if printerCommands[cmdName] && !rootCmd.Debug {
		rootCmd.NoLog = true
	}

	// Set logger.
	rootCmd.Logger = getLogger(ctx, *rootCmd)

	var g run.Group

	// OS signals.
	{
		signalCtx, signalCancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
		defer signalCancel()

		g.Add(
			func() error {
				<-signalCtx.Done()
				rootCmd.Logger.Debugf("Termination signal received")
				return nil
			},
			func(_ error) {
				signalCancel()
			},
		)
	}

	// Execute command.
	{
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		g.Add(
			func() error {
				err := cmds[cmdName].Run(ctx)
				if err != nil {
					return fmt.Errorf("%q command failed: %w", cmdName, err)
				}
				return nil
			},
			func(_ error) {
				cancel()
			},
		)
	}

	return g.Run()
}

// getLogger returns the application logger.
func getLogger(ctx context.Context, config commands.RootCommand) log.Logger {
	if config.NoLog {
		return log.Noop
	}

	// If logger not disabled use logrus logger.
	logrusLog := logrus.New()
	logrusLog.Out = config.Stderr // By default logger goes to stderr (so it can split stdout prints).
	logrusLogEntry := logrus.NewEntry(logrusLog)

	if config.Debug {
		logrusLogEntry.Logger.SetLevel(logrus.DebugLevel)
	}

	// Log format.
	switch config.LoggerType {
	case commands.LoggerTypeDefault:
		logrusLogEntry.Logger.SetFormatter(&logrus.TextFormatter{
			ForceColors:   !config.NoColor,
			DisableColors: config.NoColor,
		})
	case commands.LoggerTypeJSON:
		logrusLogEntry.Logger.SetFormatter(&logrus.JSONFormatter{})
	}

	logger := loglogrus.NewLogrus(logrusLogEntry).WithValues(log.Kv{
		"version": Version,
	})

	logger.Debugf("Debug level is enabled") // Will log only when debug enabled.

	return logger
}

func main() {
	ctx := context.Background()
	err := Run(ctx, os.Args, os.Stdin, os.Stdout, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(model.ExitCode(err))
	}
}
