package console

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/mitchellh/colorstring"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// ConsoleWriter renders zerolog's JSON events as short coloured lines.
type ConsoleWriter struct {
	Out     io.Writer
	Verbose bool
	NoColor bool

	buffer strings.Builder
	lock   sync.Mutex
}

func NewConsoleWriter(out io.Writer) *ConsoleWriter {
	return &ConsoleWriter{Out: out}
}

func (w *ConsoleWriter) Write(p []byte) (n int, err error) {
	w.lock.Lock()
	defer w.lock.Unlock()

	var evt map[string]interface{}
	d := json.NewDecoder(bytes.NewReader(p))
	d.UseNumber()
	err = d.Decode(&evt)
	if err != nil {
		return n, eris.Wrapf(err, "cannot decode event: %s", p)
	}

	w.buffer.Reset()
	if _, ok := evt["mode"]; ok {
		w.buffer.WriteString("[blue][bold]==>[reset] ")
	}

	switch evt["level"] {
	case "fatal", "panic", "error":
		w.buffer.WriteString("[red]")
	case "warn":
		w.buffer.WriteString("[yellow]")
	case "debug", "trace":
		w.buffer.WriteString("[blue]")
	default:
		w.buffer.WriteString("[green]")
	}

	if evt["level"] == "error" {
		w.buffer.WriteString("Error: ")
	}

	msg, _ := evt["message"].(string)

	if path, ok := evt["path"].(string); ok && filepath.IsAbs(path) {
		// simplify the path
		if wd, err := os.Getwd(); err == nil {
			if relPath, err := filepath.Rel(wd, path); err == nil {
				msg = strings.ReplaceAll(msg, path, relPath)
			}
		}
	}

	w.buffer.WriteString(msg)

	if errorDetails, ok := evt["error"].(string); ok {
		w.buffer.WriteString("\n")
		w.buffer.WriteString(errorDetails)
	}

	if w.Verbose {
		names := make([]string, 0, len(evt))
		for name := range evt {
			names = append(names, name)
		}
		sort.Strings(names)

		w.buffer.WriteString("\n")
		for _, name := range names {
			w.buffer.WriteString(fmt.Sprintf("  %s: %+v\n", name, evt[name]))
		}
	}

	w.buffer.WriteString("[reset]\n")

	c := colorstring.Colorize{
		Colors:  colorstring.DefaultColors,
		Disable: w.NoColor,
		Reset:   false,
	}
	if _, err := io.WriteString(w.Out, c.Color(w.buffer.String())); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Options controls the logger created by NewLogger.
type Options struct {
	Level   zerolog.Level
	JSON    bool
	Verbose bool
}

// NewLogger returns the builder's logger writing to out. Errors are rendered
// with eris so wrapped causes show up in the output.
func NewLogger(out io.Writer, opts Options) zerolog.Logger {
	zerolog.ErrorMarshalFunc = func(err error) interface{} {
		return eris.ToString(err, opts.Verbose)
	}

	var w io.Writer = out
	if !opts.JSON {
		cw := NewConsoleWriter(out)
		cw.Verbose = opts.Verbose
		cw.NoColor = os.Getenv("NO_COLOR") != ""
		w = cw
	}

	return zerolog.New(w).Level(opts.Level).With().Timestamp().Logger()
}
