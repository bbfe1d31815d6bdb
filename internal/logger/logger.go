// Package logger is the structured logger shared by the server and the CLI.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Environments with special output handling.
const (
	EnvDevelopment = "development"
	EnvTest        = "test"
)

// Logger wraps zerolog.Logger and provides structured logging capabilities.
type Logger struct {
	zlog zerolog.Logger
}

// New creates a Logger writing to stdout for the given environment.
func New(env string) *Logger {
	return NewWithWriter(env, os.Stdout)
}

// NewWithWriter creates a Logger writing to w. Development output is
// pretty-printed at debug level; the test environment only logs warnings and
// above; everything else is JSON at info level.
func NewWithWriter(env string, w io.Writer) *Logger {
	// JSON output unless running in development
	output := w
	if env == EnvDevelopment {
		// Pretty console output for development
		output = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
		}
	}

	// Configure global settings
	zerolog.TimeFieldFormat = time.RFC3339

	// Create logger with the level for this environment
	zlog := zerolog.New(output).
		Level(levelFor(env)).
		With().
		Timestamp().
		Logger()

	return &Logger{zlog: zlog}
}

// levelFor picks the minimum log level for an environment.
func levelFor(env string) zerolog.Level {
	switch env {
	case EnvDevelopment:
		return zerolog.DebugLevel
	case EnvTest:
		return zerolog.WarnLevel
	default:
		return zerolog.InfoLevel
	}
}

// Nop returns a Logger that discards everything.
func Nop() *Logger {
	return &Logger{zlog: zerolog.Nop()}
}

// Debug logs a debug message with optional fields.
func (l *Logger) Debug(msg string, fields map[string]interface{}) {
	withFields(l.zlog.Debug(), fields).Msg(msg)
}

// Info logs an info message with optional fields.
func (l *Logger) Info(msg string, fields map[string]interface{}) {
	withFields(l.zlog.Info(), fields).Msg(msg)
}

// Warn logs a warning message with optional fields.
func (l *Logger) Warn(msg string, fields map[string]interface{}) {
	withFields(l.zlog.Warn(), fields).Msg(msg)
}

// Error logs an error message with an error and optional fields.
func (l *Logger) Error(msg string, err error, fields map[string]interface{}) {
	withFields(l.zlog.Error().Err(err), fields).Msg(msg)
}

// Fatal logs a fatal message and exits the application.
func (l *Logger) Fatal(msg string, err error, fields map[string]interface{}) {
	withFields(l.zlog.Fatal().Err(err), fields).Msg(msg)
}

// withFields attaches structured fields to an event, skipping empty maps.
func withFields(event *zerolog.Event, fields map[string]interface{}) *zerolog.Event {
	if len(fields) > 0 {
		event = event.Fields(fields)
	}
	return event
}

// With creates a child logger with additional context fields.
func (l *Logger) With(fields map[string]interface{}) *Logger {
	return &Logger{zlog: l.zlog.With().Fields(fields).Logger()}
}

// WithRequestID creates a child logger with a request ID field.
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{
		zlog: l.zlog.With().Str("request_id", requestID).Logger(),
	}
}

// GetZerolog returns the underlying zerolog.Logger for advanced usage.
func (l *Logger) GetZerolog() *zerolog.Logger {
	return &l.zlog
}
