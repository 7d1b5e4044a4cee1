package prompt

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/slok/tsk/internal/model"
)

// Prompter asks the user for a single line of input. Asking blocks until the
// answer arrives, there is no timeout.
type Prompter interface {
	Ask(question string, in io.Reader, out io.Writer) (string, error)
}

// LinePrompter writes the question to out and reads one newline-terminated
// answer from in.
type LinePrompter struct{}

var _ Prompter = LinePrompter{}

func (LinePrompter) Ask(question string, in io.Reader, out io.Writer) (string, error) {
	fmt.Fprintf(out, "%s: ", question)

	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("could not read answer: %w", err)
		}
		return "", fmt.Errorf("no answer given: %w", model.ErrNotValid)
	}

	answer := strings.TrimSpace(scanner.Text())
	if answer == "" {
		return "", fmt.Errorf("empty answer: %w", model.ErrNotValid)
	}

	return answer, nil
}
