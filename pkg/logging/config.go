package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ugoscholars/scholardb/pkg/constants"
)

// Config holds logger configuration options
type Config struct {
	// Level is the minimum level: trace, debug, info, warn, error or off
	Level string

	// Format is json, console or auto (console on a terminal)
	Format string

	// Output is stderr, stdout, discard or a log file path. A file is
	// appended to and its directory created.
	Output string

	// TimeFormat is the console timestamp layout
	TimeFormat string

	// NoColor disables color output in console mode
	NoColor bool

	// AddCaller includes file:line in log output
	AddCaller bool

	// Fields are attached to every entry, for example the host a
	// scheduled consolidation runs on
	Fields map[string]any
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() *Config {
	return &Config{
		Level:      "info",
		Format:     "auto",
		Output:     "stderr",
		TimeFormat: time.TimeOnly,
		NoColor:    os.Getenv("NO_COLOR") != "",
	}
}

// FromEnv reads SCHOLARDB_LOG_* variables, falling back to the unprefixed
// LOG_* names and then to DefaultConfig.
func FromEnv() *Config {
	cfg := DefaultConfig()
	if v := env("LOG_LEVEL"); v != "" {
		cfg.Level = v
	} else if os.Getenv("DEBUG") != "" {
		cfg.Level = "debug"
	}
	if v := env("LOG_FORMAT"); v != "" {
		cfg.Format = v
	}
	if v := env("LOG_OUTPUT"); v != "" {
		cfg.Output = v
	}
	cfg.AddCaller = env("LOG_CALLER") == "true"
	if v := env("LOG_FIELDS"); v != "" {
		cfg.Fields = make(map[string]any)
		for _, pair := range strings.Split(v, ",") {
			if key, value, ok := strings.Cut(pair, "="); ok {
				cfg.Fields[strings.TrimSpace(key)] = strings.TrimSpace(value)
			}
		}
	}
	return cfg
}

func env(name string) string {
	if v := os.Getenv(constants.EnvPrefix + "_" + name); v != "" {
		return v
	}
	return os.Getenv(name)
}

// NewLoggerFromConfig creates a logger from cfg. A nil cfg means DefaultConfig.
func NewLoggerFromConfig(cfg *Config) zerolog.Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	switch {
	case strings.EqualFold(cfg.Level, "warning"):
		level = zerolog.WarnLevel
	case strings.EqualFold(cfg.Level, "off"), strings.EqualFold(cfg.Level, "none"):
		level = zerolog.Disabled
	case err != nil || cfg.Level == "":
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	logCtx := zerolog.New(writer(cfg)).Level(level).With().Timestamp()
	if cfg.AddCaller || level <= zerolog.DebugLevel {
		logCtx = logCtx.Caller()
	}
	for k, v := range cfg.Fields {
		logCtx = addField(logCtx, k, v)
	}
	return logCtx.Logger()
}

// Configure replaces the default logger.
func Configure(cfg *Config) {
	SetDefault(NewLoggerFromConfig(cfg))
}

// ConfigureFromEnv replaces the default logger with one built by FromEnv.
func ConfigureFromEnv() {
	Configure(FromEnv())
}

func writer(cfg *Config) io.Writer {
	out, terminal := output(cfg.Output)

	switch strings.ToLower(cfg.Format) {
	case "json":
		return out
	case "console", "pretty":
	default:
		if !terminal {
			return out
		}
	}

	layout := cfg.TimeFormat
	if layout == "" {
		layout = time.TimeOnly
	}
	return zerolog.ConsoleWriter{Out: out, TimeFormat: layout, NoColor: cfg.NoColor}
}

// output opens the destination and reports whether it is an interactive stderr.
func output(dest string) (io.Writer, bool) {
	switch strings.ToLower(dest) {
	case "", "stderr":
		return os.Stderr, stderrIsTerminal()
	case "stdout":
		return os.Stdout, false
	case "discard", "none":
		return io.Discard, false
	}

	if err := os.MkdirAll(filepath.Dir(dest), constants.DirPermissions); err != nil {
		return os.Stderr, stderrIsTerminal()
	}
	f, err := os.OpenFile(dest, os.O_CREATE|os.O_APPEND|os.O_WRONLY, constants.FilePermissions)
	if err != nil {
		return os.Stderr, stderrIsTerminal()
	}
	return f, false
}
