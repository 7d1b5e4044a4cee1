package testutils

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
)

// RunTSK executes the tsk binary with the given arguments and per-test
// environment overrides, capturing both output streams. The inherited
// environment comes first so overrides win: in Go's exec.Cmd, when duplicate
// keys exist, the last one wins. The logger is disabled so stderr only
// carries real errors.
func RunTSK(ctx context.Context, env []string, binary string, args ...string) (stdout, stderr []byte, err error) {
	var outData, errData bytes.Buffer
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Stdout = &outData
	cmd.Stderr = &errData

	newEnv := append([]string{}, os.Environ()...)
	newEnv = append(newEnv, "TSK_NO_LOG=true")
	newEnv = append(newEnv, env...)
	cmd.Env = newEnv

	err = cmd.Run()

	return outData.Bytes(), errData.Bytes(), err
}

// ExitCode unwraps the exit status from a binary run error. A nil error is
// exit 0, anything that is not an *exec.ExitError is -1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}

	return -1
}
