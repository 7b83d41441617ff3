package pgcmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// Runner executes a Command and waits for it to exit.
type Runner interface {
	Run(ctx context.Context, cmd Command) error
}

// ExitError reports a command that ran but exited with a non-zero status.
type ExitError struct {
	Command string
	Code    int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with status %d", e.Command, e.Code)
}

// ExecRunner runs commands as child processes attached to the given streams.
type ExecRunner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewExecRunner returns a runner wired to the current process's streams.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

// Run starts cmd and blocks until it exits. A non-zero exit is returned as
// *ExitError; failing to start at all is returned as a wrapped error.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) error {
	argv := cmd.Argv()

	c := exec.CommandContext(ctx, argv[0], argv[1:]...)
	c.Env = append(os.Environ(), cmd.Env...)
	c.Stdin = r.Stdin
	c.Stdout = r.Stdout
	c.Stderr = r.Stderr

	err := c.Run()
	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		if code < 0 {
			// killed by a signal
			code = 1
		}
		return &ExitError{Command: cmd.Name, Code: code}
	}
	return fmt.Errorf("failed to run %s: %w", argv[0], err)
}
