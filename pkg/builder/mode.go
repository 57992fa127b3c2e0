package builder

import (
	"fmt"
	"strings"
)

// Mode is the single operation selected for an invocation.
type Mode int

const (
	ModeRelease Mode = iota + 1
	ModeDebug
	ModeRun
	ModeRunDebugger
	ModeSetup
)

var modeFlags = map[Mode]string{
	ModeRelease:     "release",
	ModeDebug:       "debug",
	ModeRun:         "run",
	ModeRunDebugger: "rundb",
	ModeSetup:       "setup",
}

// Flag returns the command line flag (without dashes) selecting m.
func (m Mode) Flag() string {
	return modeFlags[m]
}

func (m Mode) String() string {
	if name, ok := modeFlags[m]; ok {
		return name
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ModeFlags mirrors the mutually exclusive mode flags of the CLI.
type ModeFlags struct {
	Release     bool
	Debug       bool
	Run         bool
	RunDebugger bool
	Setup       bool
}

// ParseMode returns the one selected mode. Selecting none or several modes
// is rejected with a *UsageError.
func ParseMode(f ModeFlags) (Mode, error) {
	selected := make([]Mode, 0, 1)
	for _, item := range []struct {
		set  bool
		mode Mode
	}{
		{f.Release, ModeRelease},
		{f.Debug, ModeDebug},
		{f.RunDebugger, ModeRunDebugger},
		{f.Run, ModeRun},
		{f.Setup, ModeSetup},
	} {
		if item.set {
			selected = append(selected, item.mode)
		}
	}

	switch len(selected) {
	case 1:
		return selected[0], nil
	case 0:
		return 0, &UsageError{Msg: "one of --release, --debug, --rundb, --run or --setup is required"}
	default:
		names := make([]string, len(selected))
		for idx, mode := range selected {
			names[idx] = "--" + mode.Flag()
		}
		return 0, &UsageError{Msg: strings.Join(names, ", ") + " are mutually exclusive"}
	}
}
