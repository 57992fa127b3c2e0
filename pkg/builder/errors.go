package builder

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// Exit codes returned by the builder CLI.
const (
	ExitSuccess     = 0
	ExitFailure     = 1
	ExitUsage       = 2
	ExitInterrupted = 130
)

// ErrInterrupted is returned when the operator interrupts a running action.
var ErrInterrupted = eris.New("interrupted")

// UsageError describes an invalid combination of command line flags. It's
// rejected before any action runs.
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string {
	return e.Msg
}

// ToolNotFoundError reports a required tool missing from PATH.
type ToolNotFoundError struct {
	Tool string
}

func (e *ToolNotFoundError) Error() string {
	return fmt.Sprintf("Required tool not found on PATH: %s", e.Tool)
}

// ExecutableNotFoundError is returned by run and debug when nothing has been built yet.
type ExecutableNotFoundError struct {
	Path string
}

func (e *ExecutableNotFoundError) Error() string {
	return fmt.Sprintf("Executable not found: %s (build first)", e.Path)
}

// CommandFailedError carries the exit code of a child process that exited non-zero.
// Code is -1 if the child was terminated by a signal.
type CommandFailedError struct {
	Command []string
	Code    int
}

func (e *CommandFailedError) Error() string {
	if e.Code < 0 {
		return fmt.Sprintf("%s was terminated", strings.Join(e.Command, " "))
	}
	return fmt.Sprintf("%s exited with code %d", strings.Join(e.Command, " "), e.Code)
}

// ExitCode maps an action result to the process exit code. The code of a failed
// child process is passed through unchanged.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var (
		usage  *UsageError
		failed *CommandFailedError
	)
	switch {
	case eris.Is(err, ErrInterrupted):
		return ExitInterrupted
	case errors.As(err, &usage):
		return ExitUsage
	case errors.As(err, &failed):
		if failed.Code < 0 {
			return ExitFailure
		}
		return failed.Code
	default:
		return ExitFailure
	}
}
