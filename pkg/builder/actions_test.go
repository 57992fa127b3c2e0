package builder_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SwyrWolf/DmxRasterizer/pkg/builder"
	"github.com/SwyrWolf/DmxRasterizer/pkg/builder/buildertest"
)

func testOptions(buildDir string) builder.Options {
	return builder.Options{
		Paths: builder.NewPaths(buildDir, "dmxrasterizer"),
		Tools: builder.Tools{
			Generator: "cmake",
			Executor:  "ninja",
			Debugger:  "lldb",
		},
		Toolchain: builder.Toolchain{CC: "clang", CXX: "clang++"},
		Backend:   "Ninja",
	}
}

func writeExecutable(t *testing.T, opts builder.Options) {
	t.Helper()
	require.NoError(t, os.MkdirAll(opts.Paths.BuildDir, 0o755))
	require.NoError(t, os.WriteFile(opts.Paths.Executable, []byte("#!/bin/sh\n"), 0o755))
}

func count(args []string, want string) int {
	n := 0
	for _, arg := range args {
		if arg == want {
			n++
		}
	}
	return n
}

func TestNewPaths(t *testing.T) {
	paths := builder.NewPaths("build", "dmxrasterizer")
	assert.Equal(t, "build", paths.BuildDir)
	assert.Equal(t, "build", filepath.Dir(paths.Executable))
	assert.True(t, strings.HasPrefix(filepath.Base(paths.Executable), "dmxrasterizer"))

	paths = builder.NewPaths(".", "app.bin")
	assert.Equal(t, "."+string(filepath.Separator)+"app.bin", paths.Executable)
}

func TestConfigureCommand(t *testing.T) {
	b := builder.New(testOptions("build"), buildertest.NewLocator(), buildertest.NewRunner())

	cmd := b.ConfigureCommand(builder.ProfileRelease, false)
	assert.Equal(t, "cmake", cmd.Name)
	assert.Equal(t, []string{"-G", "Ninja", "-B", "build", "-DCMAKE_BUILD_TYPE=Release"}, cmd.Args)
	assert.Empty(t, cmd.Dir)

	cmd = b.ConfigureCommand(builder.ProfileDebug, false)
	assert.Equal(t, 1, count(cmd.Args, "-DCMAKE_BUILD_TYPE=Debug"))
	assert.Zero(t, count(cmd.Args, "-DCMAKE_C_COMPILER=clang"))
	assert.Zero(t, count(cmd.Args, "-DCMAKE_CXX_COMPILER=clang++"))

	cmd = b.ConfigureCommand(builder.ProfileDebug, true)
	assert.Equal(t, 1, count(cmd.Args, "-DCMAKE_C_COMPILER=clang"))
	assert.Equal(t, 1, count(cmd.Args, "-DCMAKE_CXX_COMPILER=clang++"))
	assert.Equal(t, 1, count(cmd.Args, "-DCMAKE_BUILD_TYPE=Debug"))
}

func TestConfigureCommandExtraArgs(t *testing.T) {
	opts := testOptions("build")
	opts.GeneratorArgs = []string{"-DENABLE_SPOUT=OFF", "--fresh"}
	b := builder.New(opts, buildertest.NewLocator(), buildertest.NewRunner())

	cmd := b.ConfigureCommand(builder.ProfileDebug, true)
	assert.Equal(t, []string{
		"-G", "Ninja",
		"-B", "build",
		"-DCMAKE_BUILD_TYPE=Debug",
		"-DCMAKE_C_COMPILER=clang",
		"-DCMAKE_CXX_COMPILER=clang++",
		"-DENABLE_SPOUT=OFF",
		"--fresh",
	}, cmd.Args)
}

func TestConfigureChecksToolsFirst(t *testing.T) {
	for _, missing := range []string{"cmake", "ninja"} {
		t.Run(missing, func(t *testing.T) {
			locator := buildertest.NewLocator(missing)
			runner := buildertest.NewRunner()
			b := builder.New(testOptions("build"), locator, runner)

			err := b.Configure(context.Background(), builder.ProfileRelease, false)

			var toolErr *builder.ToolNotFoundError
			require.True(t, errors.As(err, &toolErr))
			assert.Equal(t, missing, toolErr.Tool)
			assert.Empty(t, runner.Commands())
		})
	}
}

func TestConfigure(t *testing.T) {
	locator := buildertest.NewLocator()
	runner := buildertest.NewRunner()
	b := builder.New(testOptions("build"), locator, runner)

	require.NoError(t, b.Configure(context.Background(), builder.ProfileDebug, true))
	assert.Equal(t, []string{"cmake", "ninja"}, locator.Lookups())
	require.Len(t, runner.Commands(), 1)
	assert.Equal(t, b.ConfigureCommand(builder.ProfileDebug, true), runner.Commands()[0])
}

func TestConfigurePropagatesFailure(t *testing.T) {
	runner := buildertest.NewRunner().Fail("cmake", 2)
	b := builder.New(testOptions("build"), buildertest.NewLocator(), runner)

	err := b.Configure(context.Background(), builder.ProfileRelease, false)
	assert.Equal(t, 2, builder.ExitCode(err))
}

func TestBuild(t *testing.T) {
	locator := buildertest.NewLocator()
	runner := buildertest.NewRunner()
	b := builder.New(testOptions("out"), locator, runner)

	require.NoError(t, b.Build(context.Background()))
	assert.Equal(t, []string{"ninja"}, locator.Lookups())
	assert.Equal(t, []builder.Command{{Name: "ninja", Args: []string{"-C", "out"}}}, runner.Commands())
}

func TestBuildMissingExecutor(t *testing.T) {
	runner := buildertest.NewRunner()
	b := builder.New(testOptions("build"), buildertest.NewLocator("ninja"), runner)

	err := b.Build(context.Background())
	assert.Equal(t, "Required tool not found on PATH: ninja", err.Error())
	assert.Empty(t, runner.Commands())
}

func TestBuildWithoutConfigure(t *testing.T) {
	// the executor reports the missing build files itself
	runner := buildertest.NewRunner().Fail("ninja", 1)
	b := builder.New(testOptions(filepath.Join(t.TempDir(), "missing")), buildertest.NewLocator(), runner)

	err := b.Build(context.Background())
	var failed *builder.CommandFailedError
	require.True(t, errors.As(err, &failed))
	assert.Equal(t, 1, failed.Code)
	assert.Len(t, runner.Commands(), 1)
}

func TestRunExecutableMissing(t *testing.T) {
	dirs := map[string]string{
		"no build dir":    filepath.Join(t.TempDir(), "build"),
		"empty build dir": t.TempDir(),
	}

	for name, dir := range dirs {
		t.Run(name, func(t *testing.T) {
			opts := testOptions(dir)
			runner := buildertest.NewRunner()
			b := builder.New(opts, buildertest.NewLocator(), runner)

			err := b.RunExecutable(context.Background())

			var exeErr *builder.ExecutableNotFoundError
			require.True(t, errors.As(err, &exeErr))
			assert.Equal(t, opts.Paths.Executable, exeErr.Path)
			assert.Contains(t, err.Error(), "build first")
			assert.Empty(t, runner.Commands())
		})
	}
}

func TestRunExecutable(t *testing.T) {
	opts := testOptions(t.TempDir())
	writeExecutable(t, opts)
	runner := buildertest.NewRunner()
	b := builder.New(opts, buildertest.NewLocator(), runner)

	require.NoError(t, b.RunExecutable(context.Background()))
	assert.Equal(t, []builder.Command{{Name: opts.Paths.Executable}}, runner.Commands())
}

func TestDebugExecutableMissing(t *testing.T) {
	opts := testOptions(filepath.Join(t.TempDir(), "build"))
	runner := buildertest.NewRunner()
	b := builder.New(opts, buildertest.NewLocator(), runner)

	err := b.DebugExecutable(context.Background())

	var exeErr *builder.ExecutableNotFoundError
	require.True(t, errors.As(err, &exeErr))
	assert.Empty(t, runner.Commands())
}

func TestDebugExecutableMissingDebugger(t *testing.T) {
	opts := testOptions(t.TempDir())
	writeExecutable(t, opts)
	runner := buildertest.NewRunner()
	b := builder.New(opts, buildertest.NewLocator("lldb"), runner)

	err := b.DebugExecutable(context.Background())

	var toolErr *builder.ToolNotFoundError
	require.True(t, errors.As(err, &toolErr))
	assert.Equal(t, "lldb", toolErr.Tool)
	assert.Empty(t, runner.Commands())
}

func TestDebugExecutable(t *testing.T) {
	opts := testOptions(t.TempDir())
	writeExecutable(t, opts)
	runner := buildertest.NewRunner().Fail("lldb", 7)
	b := builder.New(opts, buildertest.NewLocator(), runner)

	err := b.DebugExecutable(context.Background())
	assert.Equal(t, 7, builder.ExitCode(err))
	assert.Equal(t, []builder.Command{{Name: "lldb", Args: []string{opts.Paths.Executable}}}, runner.Commands())
}
