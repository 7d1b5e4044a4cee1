package printer

import "github.com/slok/tsk/internal/model"

// Printer knows how to print task information in different formats.
type Printer interface {
	PrintTasks(tasks []model.Task) error
	PrintRuns(runs []model.TaskRun) error
	PrintMessage(msg string) error
}
