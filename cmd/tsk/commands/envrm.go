package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/tsk/internal/printer"
)

type EnvRmCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand
}

// NewEnvRmCommand returns the env rm command.
func NewEnvRmCommand(rootCmd *RootCommand, parent *kingpin.CmdClause) *EnvRmCommand {
	c := &EnvRmCommand{rootCmd: rootCmd}

	c.Cmd = parent.Command("rm", "Remove the project environment.")

	return c
}

func (c EnvRmCommand) Name() string { return c.Cmd.FullCommand() }

func (c EnvRmCommand) Run(ctx context.Context) error {
	tk, err := newToolkit(ctx, c.rootCmd)
	if err != nil {
		return err
	}

	err = tk.Provisioner.RemoveEnvironment(ctx, tk.EnvName)
	if err != nil {
		return fmt.Errorf("could not remove environment: %w", err)
	}

	// Print success message.
	p := printer.NewTablePrinter(c.rootCmd.Stdout)
	if err := p.PrintMessage(fmt.Sprintf("Removed environment: %s", tk.EnvName)); err != nil {
		return fmt.Errorf("could not print message: %w", err)
	}

	return nil
}
