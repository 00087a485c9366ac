// Package logger provides structured logging built on zerolog.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Logger wraps a configured zerolog.Logger.
type Logger struct {
	logger zerolog.Logger
}

// New builds a logger from the configured level, format ("json" or
// "console") and output ("stdout", "stderr" or a file path).
func New(level, format, output string) *Logger {
	zerolog.SetGlobalLevel(parseLevel(level))

	writer := resolveWriter(output)
	if format == "console" {
		writer = zerolog.ConsoleWriter{Out: writer}
	}

	return &Logger{
		logger: zerolog.New(writer).With().Timestamp().Caller().Logger(),
	}
}

func resolveWriter(output string) io.Writer {
	switch output {
	case "", "stdout":
		return os.Stdout
	case "stderr":
		return os.Stderr
	default:
		file, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
		if err != nil {
			// Losing log output silently is worse than falling back.
			fallback := zerolog.New(os.Stderr)
			fallback.Error().Err(err).Str("path", output).
				Msg("Failed to open log file, falling back to stdout")
			return os.Stdout
		}
		return file
	}
}

func parseLevel(level string) zerolog.Level {
	parsed, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || parsed == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return parsed
}

// Component returns a child logger tagged with a subsystem name.
func (l *Logger) Component(name string) *Logger {
	return &Logger{logger: l.logger.With().Str("component", name).Logger()}
}

func (l *Logger) Debug() *zerolog.Event {
	return l.logger.Debug()
}

func (l *Logger) Info() *zerolog.Event {
	return l.logger.Info()
}

func (l *Logger) Warn() *zerolog.Event {
	return l.logger.Warn()
}

func (l *Logger) Error() *zerolog.Event {
	return l.logger.Error()
}

func (l *Logger) Fatal() *zerolog.Event {
	return l.logger.Fatal()
}

// With creates a child logger context for additional fields.
func (l *Logger) With() zerolog.Context {
	return l.logger.With()
}

// GetLogger exposes the underlying zerolog.Logger.
func (l *Logger) GetLogger() zerolog.Logger {
	return l.logger
}
