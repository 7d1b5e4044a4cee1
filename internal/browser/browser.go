package browser

import (
	"io"

	"github.com/pkg/browser"
)

func init() {
	// The spawned browser's chatter would mix with task output.
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard
}

// Opener opens a local file in the user's default browser. Callers treat
// failures as non-fatal: not being able to pop a browser never fails a task.
type Opener interface {
	Open(path string) error
}

// DefaultOpener opens files with the operating system's default handler.
type DefaultOpener struct{}

var _ Opener = DefaultOpener{}

func (DefaultOpener) Open(path string) error {
	return browser.OpenFile(path)
}
