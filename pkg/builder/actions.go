package builder

import (
	"context"
	"os"
	"path/filepath"
	"runtime"

	"github.com/rotisserie/eris"
)

// Profile selects the build type passed to the generator.
type Profile int

const (
	ProfileRelease Profile = iota
	ProfileDebug
)

func (p Profile) String() string {
	switch p {
	case ProfileRelease:
		return "Release"
	case ProfileDebug:
		return "Debug"
	default:
		return "Unknown"
	}
}

// Paths holds the build directory and the location of the compiled executable.
type Paths struct {
	BuildDir   string
	Executable string
}

// NewPaths places the executable name inside buildDir. On Windows, ".exe" is
// appended to names without an extension.
func NewPaths(buildDir, exeName string) Paths {
	if runtime.GOOS == "windows" && filepath.Ext(exeName) == "" {
		exeName += ".exe"
	}

	exe := filepath.Join(buildDir, exeName)
	if filepath.Base(exe) == exe {
		// keep exec from searching PATH for a bare name
		exe = "." + string(filepath.Separator) + exe
	}

	return Paths{
		BuildDir:   buildDir,
		Executable: exe,
	}
}

// Tools names the external programs the builder delegates to.
type Tools struct {
	Generator string
	Executor  string
	Debugger  string
}

// Toolchain is the compiler pair forced by the setup mode.
type Toolchain struct {
	CC  string
	CXX string
}

// Options is the read-only configuration of a Builder.
type Options struct {
	Paths     Paths
	Tools     Tools
	Toolchain Toolchain
	// Backend is the generator's build system backend (-G).
	Backend string
	// GeneratorArgs are appended to every configure command.
	GeneratorArgs []string
}

// Builder implements the configure, build, run and debug actions.
type Builder struct {
	opts    Options
	locator ToolLocator
	runner  Runner
}

func New(opts Options, locator ToolLocator, runner Runner) *Builder {
	return &Builder{
		opts:    opts,
		locator: locator,
		runner:  runner,
	}
}

// ConfigureCommand returns the generator invocation for the given profile.
func (b *Builder) ConfigureCommand(profile Profile, altToolchain bool) Command {
	args := []string{
		"-G", b.opts.Backend,
		"-B", b.opts.Paths.BuildDir,
		"-DCMAKE_BUILD_TYPE=" + profile.String(),
	}

	if altToolchain {
		args = append(args,
			"-DCMAKE_C_COMPILER="+b.opts.Toolchain.CC,
			"-DCMAKE_CXX_COMPILER="+b.opts.Toolchain.CXX,
		)
	}

	args = append(args, b.opts.GeneratorArgs...)
	return Command{Name: b.opts.Tools.Generator, Args: args}
}

// Configure generates the build files in the build directory. The executor is
// checked as well so a missing tool is reported before anything runs.
func (b *Builder) Configure(ctx context.Context, profile Profile, altToolchain bool) error {
	if err := EnsureAvailable(ctx, b.locator, b.opts.Tools.Generator); err != nil {
		return err
	}
	if err := EnsureAvailable(ctx, b.locator, b.opts.Tools.Executor); err != nil {
		return err
	}

	return b.runner.Run(ctx, b.ConfigureCommand(profile, altToolchain))
}

// Build runs the executor in the build directory. A missing or unconfigured
// build directory is left for the executor to report.
func (b *Builder) Build(ctx context.Context) error {
	if err := EnsureAvailable(ctx, b.locator, b.opts.Tools.Executor); err != nil {
		return err
	}

	return b.runner.Run(ctx, Command{
		Name: b.opts.Tools.Executor,
		Args: []string{"-C", b.opts.Paths.BuildDir},
	})
}

// RunExecutable starts the compiled program without arguments.
func (b *Builder) RunExecutable(ctx context.Context) error {
	if err := b.checkExecutable(); err != nil {
		return err
	}

	return b.runner.Run(ctx, Command{Name: b.opts.Paths.Executable})
}

// DebugExecutable starts the compiled program under the debugger.
func (b *Builder) DebugExecutable(ctx context.Context) error {
	if err := EnsureAvailable(ctx, b.locator, b.opts.Tools.Debugger); err != nil {
		return err
	}
	if err := b.checkExecutable(); err != nil {
		return err
	}

	return b.runner.Run(ctx, Command{
		Name: b.opts.Tools.Debugger,
		Args: []string{b.opts.Paths.Executable},
	})
}

func (b *Builder) checkExecutable() error {
	path := b.opts.Paths.Executable
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}

	if eris.Is(err, os.ErrNotExist) {
		return &ExecutableNotFoundError{Path: path}
	}
	return eris.Wrapf(err, "Failed to check %s", path)
}
