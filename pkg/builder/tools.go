package builder

import (
	"context"
	"os/exec"
)

// ToolLocator resolves tool names to executables.
type ToolLocator interface {
	LookPath(name string) (string, error)
}

// PathLocator searches the system PATH.
type PathLocator struct{}

func (PathLocator) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// EnsureAvailable fails with a *ToolNotFoundError if tool can't be resolved.
func EnsureAvailable(ctx context.Context, locator ToolLocator, tool string) error {
	path, err := locator.LookPath(tool)
	if err != nil {
		Log(ctx).Debug().Err(err).Str("tool", tool).Msg("lookup failed")
		return &ToolNotFoundError{Tool: tool}
	}

	Log(ctx).Debug().Str("tool", tool).Str("path", path).Msgf("found %s", tool)
	return nil
}
