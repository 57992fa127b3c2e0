package builder

import (
	"context"
	"fmt"
)

var banners = map[Mode]string{
	ModeRelease:     "Generating Release Build!",
	ModeDebug:       "Generating Debug Build!",
	ModeRunDebugger: "Running Program (debugger)",
	ModeRun:         "Running Program",
	ModeSetup:       "Generating Debug Build with clang Setup!",
}

// Dispatch performs the action selected by mode. Every action is
// all-or-nothing: the first failure is returned unchanged.
func Dispatch(ctx context.Context, b *Builder, mode Mode) error {
	banner, ok := banners[mode]
	if !ok {
		return &UsageError{Msg: fmt.Sprintf("unknown mode %s", mode)}
	}

	Log(ctx).Info().Str("mode", mode.Flag()).Msg(banner)

	switch mode {
	case ModeRelease:
		return configureAndBuild(ctx, b, ProfileRelease)
	case ModeDebug:
		return configureAndBuild(ctx, b, ProfileDebug)
	case ModeSetup:
		return b.Configure(ctx, ProfileDebug, true)
	case ModeRun:
		return b.RunExecutable(ctx)
	case ModeRunDebugger:
		return b.DebugExecutable(ctx)
	}

	return nil
}

func configureAndBuild(ctx context.Context, b *Builder, profile Profile) error {
	if err := b.Configure(ctx, profile, false); err != nil {
		return err
	}

	return b.Build(ctx)
}
