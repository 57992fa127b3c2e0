package config

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigtoml"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"mvdan.cc/sh/v3/shell"

	"github.com/SwyrWolf/DmxRasterizer/pkg/builder"
)

// DefaultFile is loaded from the working directory if it exists.
const DefaultFile = "builder.toml"

// Config describes all configuration options
type Config struct {
	BuildDir   string `default:"build" usage:"Directory for the generated build files and artifacts"`
	Executable string `default:"dmxrasterizer" usage:"Name of the compiled program inside the build directory"`
	Tools      struct {
		Generator string `default:"cmake" usage:"Build file generator"`
		Executor  string `default:"ninja" usage:"Build executor"`
		Debugger  string `default:"lldb" usage:"Debugger used by --rundb"`
	}
	Generator struct {
		Backend string `default:"Ninja" usage:"Generator backend passed with -G"`
		Args    string `usage:"Additional generator arguments (shell syntax)"`
	}
	Toolchain struct {
		CC  string `default:"clang" usage:"C compiler forced by --setup"`
		CXX string `default:"clang++" usage:"C++ compiler forced by --setup"`
	}
	Process struct {
		WaitDelay time.Duration `default:"3s" usage:"Grace period for an interrupted child before it's killed"`
	}
	Log struct {
		Level string `default:"info"`
		JSON  bool   `default:"false" usage:"Output JSONND instead of pretty console messages"`
	}
}

var logLevels = map[string]zerolog.Level{
	"trace":   zerolog.TraceLevel,
	"debug":   zerolog.DebugLevel,
	"info":    zerolog.InfoLevel,
	"warn":    zerolog.WarnLevel,
	"warning": zerolog.WarnLevel,
	"error":   zerolog.ErrorLevel,
}

// Loader initializes an empty config object and returns a new Loader for this object.
// Values are read from the defaults, the given TOML files and BUILDER_* env vars.
// Command line flags are handled by the CLI, not by the loader.
func Loader(files ...string) (*Config, *aconfig.Loader) {
	cfg := Config{}
	return &cfg, aconfig.LoaderFor(&cfg, aconfig.Config{
		SkipFlags: true,
		EnvPrefix: "BUILDER",
		Files:     files,
		FileDecoders: map[string]aconfig.FileDecoder{
			".toml": aconfigtoml.New(),
		},
	})
}

// Load reads the configuration. An explicit path must exist; without one,
// DefaultFile is used if present.
func Load(path string) (*Config, error) {
	files := []string{}
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, eris.Wrapf(err, "Failed to open config %s", path)
		}
		files = append(files, path)
	} else {
		_, err := os.Stat(DefaultFile)
		if err == nil {
			files = append(files, DefaultFile)
		} else if !eris.Is(err, os.ErrNotExist) {
			return nil, eris.Wrapf(err, "Failed to check %s", DefaultFile)
		}
	}

	cfg, loader := Loader(files...)
	if err := loader.Load(); err != nil {
		return nil, eris.Wrap(err, "Failed to load config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate verifies that all config fields have valid values
func (cfg *Config) Validate() error {
	if cfg.BuildDir == "" {
		return eris.New("build_dir must not be empty")
	}
	if cfg.Executable == "" {
		return eris.New("executable must not be empty")
	}

	for name, value := range map[string]string{
		"tools.generator":   cfg.Tools.Generator,
		"tools.executor":    cfg.Tools.Executor,
		"tools.debugger":    cfg.Tools.Debugger,
		"generator.backend": cfg.Generator.Backend,
		"toolchain.cc":      cfg.Toolchain.CC,
		"toolchain.cxx":     cfg.Toolchain.CXX,
	} {
		if value == "" {
			return eris.Errorf("%s must not be empty", name)
		}
	}

	if cfg.Process.WaitDelay <= 0 {
		return eris.Errorf("Invalid value for process.wait_delay: %s", cfg.Process.WaitDelay)
	}

	if _, ok := logLevels[cfg.Log.Level]; !ok {
		return eris.Errorf("Invalid value for log.level: %s", cfg.Log.Level)
	}

	if _, err := cfg.GeneratorArgs(); err != nil {
		return err
	}

	return nil
}

// LogLevel converts the .Log.Level field to a zerolog.Level
func (cfg *Config) LogLevel() zerolog.Level {
	return logLevels[cfg.Log.Level]
}

// GeneratorArgs splits .Generator.Args like a POSIX shell would.
func (cfg *Config) GeneratorArgs() ([]string, error) {
	if cfg.Generator.Args == "" {
		return nil, nil
	}

	args, err := shell.Fields(cfg.Generator.Args, nil)
	if err != nil {
		return nil, eris.Wrapf(err, "Invalid value for generator.args: %s", cfg.Generator.Args)
	}
	return args, nil
}

// Paths derives the build directory and executable location.
func (cfg *Config) Paths() builder.Paths {
	return builder.NewPaths(cfg.BuildDir, cfg.Executable)
}

// Options converts the configuration into the builder's read-only options.
func (cfg *Config) Options() (builder.Options, error) {
	args, err := cfg.GeneratorArgs()
	if err != nil {
		return builder.Options{}, err
	}

	return builder.Options{
		Paths: cfg.Paths(),
		Tools: builder.Tools{
			Generator: cfg.Tools.Generator,
			Executor:  cfg.Tools.Executor,
			Debugger:  cfg.Tools.Debugger,
		},
		Toolchain: builder.Toolchain{
			CC:  cfg.Toolchain.CC,
			CXX: cfg.Toolchain.CXX,
		},
		Backend:       cfg.Generator.Backend,
		GeneratorArgs: args,
	}, nil
}
