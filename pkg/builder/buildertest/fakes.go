// Package buildertest provides fake tool lookups and runners for tests.
package buildertest

import (
	"context"
	"os/exec"
	"sync"

	"github.com/SwyrWolf/DmxRasterizer/pkg/builder"
)

// Locator resolves every tool except the ones listed in Missing.
type Locator struct {
	Missing map[string]bool

	mu      sync.Mutex
	lookups []string
}

// NewLocator returns a Locator that can't find the given tools.
func NewLocator(missing ...string) *Locator {
	l := &Locator{Missing: make(map[string]bool)}
	for _, tool := range missing {
		l.Missing[tool] = true
	}
	return l
}

func (l *Locator) LookPath(name string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.lookups = append(l.lookups, name)
	if l.Missing[name] {
		return "", &exec.Error{Name: name, Err: exec.ErrNotFound}
	}
	return "/usr/bin/" + name, nil
}

// Lookups returns the looked up tool names in order.
func (l *Locator) Lookups() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]string(nil), l.lookups...)
}

// Runner records commands instead of executing them. Results maps a command
// name to the error its run returns.
type Runner struct {
	Results map[string]error

	mu       sync.Mutex
	commands []builder.Command
}

func NewRunner() *Runner {
	return &Runner{Results: make(map[string]error)}
}

// Fail makes every run of name return a *builder.CommandFailedError with code.
func (r *Runner) Fail(name string, code int) *Runner {
	r.Results[name] = &builder.CommandFailedError{Command: []string{name}, Code: code}
	return r
}

func (r *Runner) Run(ctx context.Context, cmd builder.Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.commands = append(r.commands, cmd)
	return r.Results[cmd.Name]
}

// Commands returns the recorded commands in order.
func (r *Runner) Commands() []builder.Command {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]builder.Command(nil), r.commands...)
}

// Names returns the executable of every recorded command.
func (r *Runner) Names() []string {
	names := []string{}
	for _, cmd := range r.Commands() {
		names = append(names, cmd.Name)
	}
	return names
}
