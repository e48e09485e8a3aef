// Package logger provides a zerolog wrapper with defaults suited to a CLI:
// logs go to stderr so stdout stays reserved for the analysis result.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the project-wide logging type
type Logger = zerolog.Logger

// Options configures the logger
type Options struct {
	Level  string
	Format string
	Writer io.Writer
	RunID  string
}

// FromEnv builds Options from CODEBASE_GUIDE_LOG_* variables.
// Unset values default to warn level in console format.
func FromEnv() Options {
	return Options{
		Level:  strings.ToLower(envOr("CODEBASE_GUIDE_LOG_LEVEL", "warn")),
		Format: strings.ToLower(envOr("CODEBASE_GUIDE_LOG_FORMAT", "console")),
	}
}

// New builds a logger from opt
func New(opt Options) Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	var w io.Writer = os.Stderr
	if opt.Writer != nil {
		w = opt.Writer
	}
	if opt.Format != "json" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}

	ctx := zerolog.New(w).Level(parseLevel(opt.Level)).With().Timestamp()
	if opt.RunID != "" {
		ctx = ctx.Str("run_id", opt.RunID)
	}
	return ctx.Logger()
}

// Nop returns a disabled logger, handy for tests
func Nop() Logger {
	return zerolog.Nop()
}

// Named returns a child logger with a component field
func Named(l Logger, component string) Logger {
	if component == "" {
		return l
	}
	return l.With().Str("component", component).Logger()
}

// parseLevel supports string-only levels
func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.WarnLevel
	}
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
