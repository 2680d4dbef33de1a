package logging

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/okabelab/graymeter/internal/config"
)

var logger = newLogger()

// newLogger builds the process-wide slog logger with a tint handler.
// LOG_LEVEL selects the minimum level (debug, info, warn, error); color is
// suppressed when NO_COLOR is set.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(config.Get("LOG_LEVEL", "info")) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.RFC3339,
		NoColor:    os.Getenv("NO_COLOR") != "",
	}))
}

// Debug logs at debug level with structured key/value pairs.
func Debug(msg string, args ...any) {
	logger.Debug(msg, args...)
}

// Info logs at info level with structured key/value pairs.
func Info(msg string, args ...any) {
	logger.Info(msg, args...)
}

// Warn logs at warn level with structured key/value pairs.
func Warn(msg string, args ...any) {
	logger.Warn(msg, args...)
}

// Error logs at error level with structured key/value pairs.
func Error(msg string, args ...any) {
	logger.Error(msg, args...)
}

// DebugWithComponent logs at debug level tagged with a component.
func DebugWithComponent(component, msg string, args ...any) {
	logger.Debug(msg, append([]any{"component", component}, args...)...)
}

// InfoWithComponent logs at info level tagged with a component.
func InfoWithComponent(component, msg string, args ...any) {
	logger.Info(msg, append([]any{"component", component}, args...)...)
}

// WarnWithComponent logs at warn level tagged with a component.
func WarnWithComponent(component, msg string, args ...any) {
	logger.Warn(msg, append([]any{"component", component}, args...)...)
}

// ErrorWithComponent logs at error level tagged with a component.
func ErrorWithComponent(component, msg string, args ...any) {
	logger.Error(msg, append([]any{"component", component}, args...)...)
}
