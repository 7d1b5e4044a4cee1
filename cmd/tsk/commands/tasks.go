package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/tsk/internal/printer"
	"github.com/slok/tsk/internal/tasks"
)

type TasksCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	format string
}

// NewTasksCommand returns the tasks command. It is the application default,
// running the binary without arguments prints the task listing.
func NewTasksCommand(rootCmd *RootCommand, app *kingpin.Application) *TasksCommand {
	c := &TasksCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("tasks", "List the available tasks.").Default()
	c.Cmd.Flag("format", "Output format (table, json).").Default("table").EnumVar(&c.format, "table", "json")

	return c
}

func (c TasksCommand) Name() string { return c.Cmd.FullCommand() }

func (c TasksCommand) Run(ctx context.Context) error {
	var p printer.Printer
	switch c.format {
	case "json":
		p = printer.NewJSONPrinter(c.rootCmd.Stdout)
	default: // table
		p = printer.NewTablePrinter(c.rootCmd.Stdout)
	}

	if err := p.PrintTasks(tasks.ProjectTasks()); err != nil {
		return fmt.Errorf("could not print tasks: %w", err)
	}

	return nil
}
