package printer

import (
	"encoding/json"
	"io"
	"time"

	"github.com/slok/tsk/internal/model"
)

// JSONPrinter prints task information in JSON format.
type JSONPrinter struct {
	writer io.Writer
}

// NewJSONPrinter creates a new JSON printer.
func NewJSONPrinter(w io.Writer) *JSONPrinter {
	return &JSONPrinter{writer: w}
}

// taskItem represents a task in the listing output.
type taskItem struct {
	Name        string   `json:"name"`
	Requires    []string `json:"requires,omitempty"`
	Description string   `json:"description"`
}

// runItem represents a task run in the history output.
type runItem struct {
	ID         string    `json:"id"`
	Task       string    `json:"task"`
	Status     string    `json:"status"`
	ExitCode   int       `json:"exit_code"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// messageOutput represents a simple message output.
type messageOutput struct {
	Message string `json:"message"`
}

// PrintTasks prints the available tasks in JSON format.
func (j *JSONPrinter) PrintTasks(tasks []model.Task) error {
	items := make([]taskItem, len(tasks))
	for i, task := range tasks {
		items[i] = taskItem{
			Name:        task.Name,
			Requires:    task.Requires,
			Description: task.Description,
		}
	}

	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(items)
}

// PrintRuns prints task run history in JSON format.
func (j *JSONPrinter) PrintRuns(runs []model.TaskRun) error {
	items := make([]runItem, len(runs))
	for i, run := range runs {
		items[i] = runItem{
			ID:         run.ID,
			Task:       run.Task,
			Status:     string(run.Status),
			ExitCode:   run.ExitCode,
			Error:      run.Error,
			StartedAt:  run.StartedAt.UTC(),
			FinishedAt: run.FinishedAt.UTC(),
		}
	}

	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(items)
}

// PrintMessage prints a simple message in JSON format.
func (j *JSONPrinter) PrintMessage(msg string) error {
	output := messageOutput{Message: msg}
	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}
