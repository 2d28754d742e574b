// Package logging provides structured logging for scholardb using zerolog.
// Console output is used when stderr is a terminal and JSON otherwise, so the
// same binary can run interactively or under a scheduler.
//
// Example usage:
//
//	log := logging.Default()
//	log.Info().Str("sheet", "ACC C1").Int("records", 42).Msg("Read sheet")
//
//	ctx := logging.WithLogger(context.Background(), log)
//	ctx = logging.WithSheet(ctx, "C2")
//	logging.FromContext(ctx).Warn().Msg("No name column, skipping")
package logging

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// defaultLogger is used when no logger travels in the context.
var defaultLogger = NewLoggerFromConfig(FromEnv())

// Default returns the default global logger.
func Default() *zerolog.Logger {
	return &defaultLogger
}

// SetDefault sets the default global logger.
func SetDefault(logger zerolog.Logger) {
	defaultLogger = logger
	log.Logger = logger
}

// Debug starts a new debug level log event.
func Debug() *zerolog.Event { return defaultLogger.Debug() }

// Info starts a new info level log event.
func Info() *zerolog.Event { return defaultLogger.Info() }

// Warn starts a new warning level log event.
func Warn() *zerolog.Event { return defaultLogger.Warn() }

// Error starts a new error level log event.
func Error() *zerolog.Event { return defaultLogger.Error() }

// Err starts an error level event carrying err.
func Err(err error) *zerolog.Event { return defaultLogger.Err(err) }

func stderrIsTerminal() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
