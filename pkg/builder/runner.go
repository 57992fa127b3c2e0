package builder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// Command describes a single external process invocation.
type Command struct {
	Name string
	Args []string
	// Dir is the working directory; empty means the current one.
	Dir string
}

// Argv returns the executable followed by its arguments.
func (c Command) Argv() []string {
	return append([]string{c.Name}, c.Args...)
}

func (c Command) String() string {
	return strings.Join(c.Argv(), " ")
}

// Runner executes external commands.
type Runner interface {
	Run(ctx context.Context, cmd Command) error
}

// ExecRunner runs commands as child processes that share the builder's stdio.
type ExecRunner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// DryRun only prints the commands, nothing is executed.
	DryRun bool
	// WaitDelay is how long an interrupted child gets to exit before it's killed.
	// Zero means DefaultWaitDelay; an interrupted child is always killed eventually.
	WaitDelay time.Duration
}

// DefaultWaitDelay is used when ExecRunner.WaitDelay isn't positive.
const DefaultWaitDelay = 3 * time.Second

// Run echoes the command line and executes it. A non-zero exit is returned as
// a *CommandFailedError; cancellation of ctx is returned as ErrInterrupted.
func (r *ExecRunner) Run(ctx context.Context, c Command) error {
	if ctx.Err() != nil {
		return ErrInterrupted
	}

	fmt.Fprintln(r.Stdout, "+", c.String())
	Log(ctx).Debug().
		Str("dir", c.Dir).
		Bool("dry", r.DryRun).
		Msgf("spawning %s", c.Name)

	if r.DryRun {
		return nil
	}

	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Stdin = r.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	// forward the interrupt instead of killing the child right away
	cmd.Cancel = func() error {
		return cmd.Process.Signal(os.Interrupt)
	}
	cmd.WaitDelay = r.WaitDelay
	if cmd.WaitDelay <= 0 {
		cmd.WaitDelay = DefaultWaitDelay
	}

	err := cmd.Run()
	if ctx.Err() != nil {
		return ErrInterrupted
	}
	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &CommandFailedError{Command: c.Argv(), Code: exitErr.ExitCode()}
	}

	return eris.Wrapf(err, "Failed to run %s", c.Name)
}
