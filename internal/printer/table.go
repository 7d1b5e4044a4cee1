package printer

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/slok/tsk/internal/model"
)

// TablePrinter prints task information in a table format.
type TablePrinter struct {
	writer io.Writer
}

// NewTablePrinter creates a new table printer.
func NewTablePrinter(w io.Writer) *TablePrinter {
	return &TablePrinter{writer: w}
}

// PrintTasks prints the available tasks in a table format.
func (t *TablePrinter) PrintTasks(tasks []model.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	// Print header
	fmt.Fprintln(tw, "TASK\tREQUIRES\tDESCRIPTION")

	// Print rows
	for _, task := range tasks {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", task.Name, strings.Join(task.Requires, ", "), task.Description)
	}

	return nil
}

// PrintRuns prints task run history in a table format.
func (t *TablePrinter) PrintRuns(runs []model.TaskRun) error {
	if len(runs) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	// Print header
	fmt.Fprintln(tw, "TASK\tSTATUS\tEXIT\tDURATION\tSTARTED\tAGE")

	// Print rows
	for _, run := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\n",
			run.Task,
			run.Status,
			run.ExitCode,
			FormatDuration(run.FinishedAt.Sub(run.StartedAt)),
			FormatTimestamp(run.StartedAt),
			TimeAgo(run.StartedAt),
		)
	}

	return nil
}

// PrintMessage prints a simple text message.
func (t *TablePrinter) PrintMessage(msg string) error {
	fmt.Fprintln(t.writer, msg)
	return nil
}
