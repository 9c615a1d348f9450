// Package log provides structured logging for go-ptz.
// It wraps slog with sensible defaults for production use.
package log

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	logger *slog.Logger
	once   sync.Once
	mu     sync.RWMutex
)

// Options controls how the global logger is built.
type Options struct {
	Level  string    // "debug", "info", "warn", "error"
	Format string    // "text" or "json"; empty picks json when GO_ENV=production
	Output io.Writer // defaults to os.Stdout
}

// Init initializes the global logger with the specified level.
// Valid levels: "debug", "info", "warn", "error"
func Init(level string) {
	once.Do(func() {
		Setup(Options{Level: level})
	})
}

// Setup replaces the global logger. Unlike Init it may be called more than
// once, which the daemon does after its config file has been read.
func Setup(opts Options) {
	hopts := &slog.HandlerOptions{
		Level: ParseLevel(opts.Level),
	}

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	format := strings.ToLower(opts.Format)
	if format == "" && os.Getenv("GO_ENV") == "production" {
		format = "json"
	}

	var l *slog.Logger
	if format == "json" {
		l = slog.New(slog.NewJSONHandler(out, hopts))
	} else {
		l = slog.New(slog.NewTextHandler(out, hopts))
	}

	mu.Lock()
	logger = l
	mu.Unlock()
	slog.SetDefault(l)
}

// ParseLevel maps a level name to a slog level. Unknown names mean info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Discard returns a logger that drops everything. Useful in tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// L returns the global logger instance.
func L() *slog.Logger {
	mu.RLock()
	l := logger
	mu.RUnlock()
	if l == nil {
		Init("info")
		mu.RLock()
		l = logger
		mu.RUnlock()
	}
	return l
}

// Debug logs at debug level.
func Debug(msg string, args ...any) {
	L().Debug(msg, args...)
}

// Info logs at info level.
func Info(msg string, args ...any) {
	L().Info(msg, args...)
}

// Warn logs at warn level.
func Warn(msg string, args ...any) {
	L().Warn(msg, args...)
}

// Error logs at error level.
func Error(msg string, args ...any) {
	L().Error(msg, args...)
}

// With returns a logger with the given attributes.
func With(args ...any) *slog.Logger {
	return L().With(args...)
}
