package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/tsk/internal/model"
	"github.com/slok/tsk/internal/provision"
)

type DoctorCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand
}

// NewDoctorCommand returns the doctor command.
func NewDoctorCommand(rootCmd *RootCommand, app *kingpin.Application) *DoctorCommand {
	c := &DoctorCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("doctor", "Run preflight checks for the project setup.")

	return c
}

func (c DoctorCommand) Name() string { return c.Cmd.FullCommand() }

func (c DoctorCommand) Run(ctx context.Context) error {
	out := c.rootCmd.Stdout

	tk, err := newToolkit(ctx, c.rootCmd)
	if err != nil {
		return err
	}

	results := tk.Provisioner.Check(ctx, provision.CheckRequest{
		EnvName:      tk.EnvName,
		ManifestPath: tk.ManifestPath,
		Tools:        tk.Registry.Tools(),
	})

	// Print results.
	totalErrors := 0
	totalWarnings := 0

	fmt.Fprintf(out, "Checking project %q...\n", tk.EnvName)
	for _, r := range results {
		icon := getStatusIcon(r.Status)
		fmt.Fprintf(out, "  %s %-20s %s\n", icon, r.ID, r.Message)

		switch r.Status {
		case model.CheckStatusError:
			totalErrors++
		case model.CheckStatusWarning:
			totalWarnings++
		}
	}

	// Summary.
	fmt.Fprintln(out)
	if totalErrors == 0 && totalWarnings == 0 {
		fmt.Fprintln(out, "All checks passed!")
	} else {
		var summary []string
		if totalErrors > 0 {
			summary = append(summary, fmt.Sprintf("%d error(s)", totalErrors))
		}
		if totalWarnings > 0 {
			summary = append(summary, fmt.Sprintf("%d warning(s)", totalWarnings))
		}
		fmt.Fprintf(out, "%s\n", strings.Join(summary, ", "))
	}

	// Warnings are fixable by running tasks, only errors block.
	if totalErrors > 0 {
		return fmt.Errorf("preflight checks failed with %d error(s)", totalErrors)
	}

	return nil
}

func getStatusIcon(status model.CheckStatus) string {
	switch status {
	case model.CheckStatusOK:
		return "OK"
	case model.CheckStatusWarning:
		return "!!"
	case model.CheckStatusError:
		return "XX"
	default:
		return "??"
	}
}
