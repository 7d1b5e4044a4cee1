package model

import (
	"fmt"
)

// Task represents a runnable project task: a name, what it does and the
// tasks that must have run before it. The step sequence itself lives in the
// task registry, the model only carries what every layer needs to know.
type Task struct {
	Name        string
	Description string
	Requires    []string
}

// Validate validates the task definition.
func (t *Task) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("task name is required: %w", ErrNotValid)
	}

	if t.Description == "" {
		return fmt.Errorf("task %q description is required: %w", t.Name, ErrNotValid)
	}

	for _, req := range t.Requires {
		if req == t.Name {
			return fmt.Errorf("task %q requires itself: %w", t.Name, ErrNotValid)
		}
	}

	return nil
}
