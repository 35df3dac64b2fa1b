// Package logging provides the leveled, field-carrying logger used across
// the firmware.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// LogLevel represents the severity level of a log message.
type LogLevel int

const (
	// LogLevelDebug is for detailed debugging information.
	LogLevelDebug LogLevel = iota
	// LogLevelInfo is for general informational messages.
	LogLevelInfo
	// LogLevelWarn is for warning messages.
	LogLevelWarn
	// LogLevelError is for error messages.
	LogLevelError
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLogLevel parses a string into a LogLevel. Unknown strings map to
// LogLevelInfo.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LogLevelDebug
	case "info":
		return LogLevelInfo
	case "warn", "warning":
		return LogLevelWarn
	case "error":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

func (l LogLevel) slogLevel() slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Config configures a logger.
type Config struct {
	// Level is the minimum log level to output.
	Level LogLevel
	// Output is where logs are written. Defaults to os.Stderr.
	Output io.Writer
}

// DefaultConfig returns the default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  LogLevelInfo,
		Output: os.Stderr,
	}
}

// state is shared between a logger and the loggers derived from it.
type state struct {
	mu       sync.Mutex
	level    *slog.LevelVar
	disabled bool
}

// Logger writes leveled, printf-style messages with attached fields.
// Derived loggers share level and enablement with their parent.
type Logger struct {
	st   *state
	slog *slog.Logger
}

// New creates a logger writing text records to cfg.Output.
func New(cfg Config) *Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}
	level := new(slog.LevelVar)
	level.Set(cfg.Level.slogLevel())
	handler := slog.NewTextHandler(cfg.Output, &slog.HandlerOptions{Level: level})
	return &Logger{
		st:   &state{level: level},
		slog: slog.New(handler),
	}
}

// NullLogger is a logger that discards all output.
var NullLogger = &Logger{
	st:   &state{level: new(slog.LevelVar), disabled: true},
	slog: slog.New(slog.NewTextHandler(io.Discard, nil)),
}

// WithField returns a new logger with the given field added.
func (l *Logger) WithField(key string, value any) *Logger {
	return l.with(key, value)
}

// WithFields returns a new logger with the given fields added.
func (l *Logger) WithFields(fields map[string]any) *Logger {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return l.with(args...)
}

// WithComponent returns a new logger with the component field set.
func (l *Logger) WithComponent(component string) *Logger {
	return l.WithField("component", component)
}

func (l *Logger) with(args ...any) *Logger {
	return &Logger{st: l.st, slog: l.slog.With(args...)}
}

// SetLevel sets the minimum log level.
func (l *Logger) SetLevel(level LogLevel) {
	l.st.level.Set(level.slogLevel())
}

// Disable disables all logging.
func (l *Logger) Disable() {
	l.st.mu.Lock()
	defer l.st.mu.Unlock()
	l.st.disabled = true
}

// Enable enables logging.
func (l *Logger) Enable() {
	l.st.mu.Lock()
	defer l.st.mu.Unlock()
	l.st.disabled = false
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, args ...any) {
	l.log(slog.LevelDebug, msg, args...)
}

// Info logs an info message.
func (l *Logger) Info(msg string, args ...any) {
	l.log(slog.LevelInfo, msg, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, args ...any) {
	l.log(slog.LevelWarn, msg, args...)
}

// Error logs an error message.
func (l *Logger) Error(msg string, args ...any) {
	l.log(slog.LevelError, msg, args...)
}

// Slog returns the underlying slog logger, carrying the logger's fields.
func (l *Logger) Slog() *slog.Logger {
	return l.slog
}

// log writes a message if the level is enabled.
func (l *Logger) log(level slog.Level, msg string, args ...any) {
	l.st.mu.Lock()
	disabled := l.st.disabled
	l.st.mu.Unlock()

	ctx := context.Background()
	if disabled || !l.slog.Enabled(ctx, level) {
		return
	}

	// Format message with args if provided
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	l.slog.Log(ctx, level, msg)
}

// OpenFile opens path for appending log records.
func OpenFile(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return f, nil
}
