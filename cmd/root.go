package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/SwyrWolf/DmxRasterizer/pkg/builder"
	"github.com/SwyrWolf/DmxRasterizer/pkg/config"
	"github.com/SwyrWolf/DmxRasterizer/pkg/console"
)

// Env holds the process' streams and the collaborators used by the actions.
// Nil collaborators are replaced with the real implementations.
type Env struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	Locator    builder.ToolLocator
	Runner     builder.Runner
	LoadConfig func(path string) (*config.Config, error)
}

// DefaultEnv uses the standard streams, the system PATH and real child processes.
func DefaultEnv() Env {
	return Env{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

type rootOptions struct {
	modes      builder.ModeFlags
	configPath string
	verbose    bool
	dryRun     bool
}

// exitStatus is returned by the root command once an action has been dispatched.
type exitStatus struct {
	code int
}

func (e *exitStatus) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

var modeFlagNames = []string{
	builder.ModeRelease.Flag(),
	builder.ModeDebug.Flag(),
	builder.ModeRunDebugger.Flag(),
	builder.ModeRun.Flag(),
	builder.ModeSetup.Flag(),
}

func newRootCmd(env Env) *cobra.Command {
	opts := rootOptions{}
	rootCmd := &cobra.Command{
		Use:   "builder (--release | --debug | --rundb | --run | --setup)",
		Short: "Build/run helper for dmxrasterizer",
		Long: `This command configures the project with cmake, builds it with ninja and
runs the resulting executable, either directly or under lldb.
Exactly one mode flag has to be passed.`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoot(cmd.Context(), env, opts)
		},
	}

	flags := rootCmd.Flags()
	flags.BoolVar(&opts.modes.Release, "release", false, "configure + build Release")
	flags.BoolVar(&opts.modes.Debug, "debug", false, "configure + build Debug")
	flags.BoolVar(&opts.modes.RunDebugger, "rundb", false, "run the executable under the debugger")
	flags.BoolVar(&opts.modes.Run, "run", false, "run the executable")
	flags.BoolVar(&opts.modes.Setup, "setup", false, "configure Debug using clang/clang++ (no build)")
	flags.StringVarP(&opts.configPath, "config", "c", "", "config file (default "+config.DefaultFile+" if present)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "print debug messages")
	flags.BoolVarP(&opts.dryRun, "dry", "n", false, "dry run; only print the commands, don't execute anything")

	rootCmd.MarkFlagsMutuallyExclusive(modeFlagNames...)
	rootCmd.MarkFlagsOneRequired(modeFlagNames...)
	return rootCmd
}

func runRoot(ctx context.Context, env Env, opts rootOptions) error {
	mode, err := builder.ParseMode(opts.modes)
	if err != nil {
		return err
	}

	level := zerolog.InfoLevel
	if opts.verbose {
		level = zerolog.DebugLevel
	}
	logger := console.NewLogger(env.Stderr, console.Options{Level: level, Verbose: opts.verbose})

	loadConfig := env.LoadConfig
	if loadConfig == nil {
		loadConfig = config.Load
	}
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to parse config")
		return &exitStatus{code: builder.ExitFailure}
	}

	if !opts.verbose {
		level = cfg.LogLevel()
	}
	logger = console.NewLogger(env.Stderr, console.Options{
		Level:   level,
		JSON:    cfg.Log.JSON,
		Verbose: opts.verbose,
	})

	builderOpts, err := cfg.Options()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to parse config")
		return &exitStatus{code: builder.ExitFailure}
	}

	locator := env.Locator
	if locator == nil {
		locator = builder.PathLocator{}
	}
	runner := env.Runner
	if runner == nil {
		runner = &builder.ExecRunner{
			Stdin:     env.Stdin,
			Stdout:    env.Stdout,
			Stderr:    env.Stderr,
			DryRun:    opts.dryRun,
			WaitDelay: cfg.Process.WaitDelay,
		}
	}

	ctx = builder.WithLogger(ctx, &logger)
	err = builder.Dispatch(ctx, builder.New(builderOpts, locator, runner), mode)
	if err == nil {
		return nil
	}

	report(&logger, err)
	return &exitStatus{code: builder.ExitCode(err)}
}

func report(logger *zerolog.Logger, err error) {
	var (
		toolErr   *builder.ToolNotFoundError
		exeErr    *builder.ExecutableNotFoundError
		failedErr *builder.CommandFailedError
	)

	switch {
	case eris.Is(err, builder.ErrInterrupted):
		logger.Warn().Msg("Interrupted")
	case errors.As(err, &toolErr):
		logger.Error().Str("tool", toolErr.Tool).Msg(err.Error())
	case errors.As(err, &exeErr):
		logger.Error().Str("path", exeErr.Path).Msg(err.Error())
	case errors.As(err, &failedErr):
		logger.Error().Int("code", failedErr.Code).Msg(err.Error())
	default:
		logger.Error().Err(err).Msg("Failed")
	}
}

// Run parses args, performs the selected action and returns the exit code.
func Run(ctx context.Context, args []string, env Env) int {
	rootCmd := newRootCmd(env)
	rootCmd.SetArgs(args)
	rootCmd.SetIn(env.Stdin)
	rootCmd.SetOut(env.Stdout)
	rootCmd.SetErr(env.Stderr)

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return builder.ExitSuccess
	}

	var status *exitStatus
	if errors.As(err, &status) {
		return status.code
	}

	// nothing has been run yet; the flags were invalid
	fmt.Fprintf(env.Stderr, "Error: %s\n%s", err, rootCmd.UsageString())
	return builder.ExitUsage
}

// Execute runs the builder with the process' arguments and exits.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	go func() {
		// a second signal gets the default handling and terminates the builder
		<-ctx.Done()
		stop()
	}()

	code := Run(ctx, os.Args[1:], DefaultEnv())
	stop()
	os.Exit(code)
}
