package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	defaultLogger *slog.Logger
)

// Options controls the global logger.
type Options struct {
	Level string
	JSON  bool

	// File enables size-based rotation alongside stdout.
	File       string
	MaxSizeMB  int
	MaxBackups int
}

// Init initializes the global logger
func Init(opts Options) error {
	var out io.Writer = os.Stdout
	if opts.File != "" {
		rot, err := newRotatingWriter(opts)
		if err != nil {
			return err
		}
		out = io.MultiWriter(os.Stdout, rot)
	}

	defaultLogger = New(out, opts.Level, opts.JSON)
	slog.SetDefault(defaultLogger)
	return nil
}

// New builds a redacting logger writing to w.
func New(w io.Writer, level string, json bool) *slog.Logger {
	var handler slog.Handler

	hopts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}

	if json {
		handler = slog.NewJSONHandler(w, hopts)
	} else {
		handler = slog.NewTextHandler(w, hopts)
	}

	return slog.New(NewRedactingHandler(handler))
}

func newRotatingWriter(opts Options) (*lumberjack.Logger, error) {
	if opts.MaxSizeMB <= 0 {
		opts.MaxSizeMB = 10
	}
	if opts.MaxBackups <= 0 {
		opts.MaxBackups = 5
	}

	if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	return &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
	}, nil
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Get returns the default logger
func Get() *slog.Logger {
	if defaultLogger == nil {
		defaultLogger = New(os.Stdout, "info", false)
	}
	return defaultLogger
}

// WithContext returns a logger with context values
func WithContext(ctx context.Context) *slog.Logger {
	if id, ok := ctx.Value(RequestIDKey{}).(string); ok && id != "" {
		return Get().With("request_id", id)
	}
	return Get()
}

// RequestIDKey is the context key carrying the per-request id.
type RequestIDKey struct{}

// Info logs at info level
func Info(msg string, args ...any) {
	Get().Info(msg, args...)
}

// Debug logs at debug level
func Debug(msg string, args ...any) {
	Get().Debug(msg, args...)
}

// Warn logs at warn level
func Warn(msg string, args ...any) {
	Get().Warn(msg, args...)
}

// Error logs at error level
func Error(msg string, args ...any) {
	Get().Error(msg, args...)
}

// Fatal logs at error level and exits
func Fatal(msg string, args ...any) {
	Get().Error(msg, args...)
	os.Exit(1)
}

// With returns a logger with the given attributes
func With(args ...any) *slog.Logger {
	return Get().With(args...)
}
