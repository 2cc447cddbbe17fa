// Package logging provides structured logging using Go's slog package.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

const (
	// BookKey is the context key for the book code being processed.
	BookKey ContextKey = "book"
)

var (
	// defaultLogger is the global logger instance.
	defaultLogger *slog.Logger
)

func init() {
	// Initialize with a default logger (text format, Info level)
	InitLogger(LevelInfo, FormatText)
}

// Level represents a log level.
type Level int

const (
	// LevelDebug is for debug messages.
	LevelDebug Level = iota
	// LevelInfo is for informational messages.
	LevelInfo
	// LevelWarn is for warning messages.
	LevelWarn
	// LevelError is for error messages.
	LevelError
)

// Format represents a log output format.
type Format int

const (
	// FormatJSON outputs logs in JSON format.
	FormatJSON Format = iota
	// FormatText outputs logs in human-readable text format.
	FormatText
)

// InitLogger initializes the global logger with the specified level and format.
func InitLogger(level Level, format Format) {
	InitLoggerTo(os.Stderr, level, format)
}

// InitLoggerTo initializes the global logger writing to the given sink.
// Tests use this to capture diagnostics.
func InitLoggerTo(w io.Writer, level Level, format Format) {
	var slogLevel slog.Level
	switch level {
	case LevelDebug:
		slogLevel = slog.LevelDebug
	case LevelInfo:
		slogLevel = slog.LevelInfo
	case LevelWarn:
		slogLevel = slog.LevelWarn
	case LevelError:
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: slogLevel,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Customize timestamp format
			if a.Key == slog.TimeKey {
				return slog.String(slog.TimeKey, a.Value.Time().Format(time.RFC3339))
			}
			return a
		},
	}

	var handler slog.Handler
	if format == FormatJSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	defaultLogger = slog.New(handler)
	slog.SetDefault(defaultLogger)
}

// GetLogger returns the global logger instance.
func GetLogger() *slog.Logger {
	return defaultLogger
}

// WithBook adds the current book code to the context.
func WithBook(ctx context.Context, book string) context.Context {
	return context.WithValue(ctx, BookKey, book)
}

// GetBook retrieves the book code from the context.
func GetBook(ctx context.Context) string {
	if book, ok := ctx.Value(BookKey).(string); ok {
		return book
	}
	return ""
}

// LoggerFromContext returns a logger with context values attached.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	logger := defaultLogger
	if book := GetBook(ctx); book != "" {
		logger = logger.With("book", book)
	}
	return logger
}

// Helper functions for common logging patterns

// Debug logs a debug message with optional key-value pairs.
func Debug(msg string, args ...any) {
	defaultLogger.Debug(msg, args...)
}

// Info logs an info message with optional key-value pairs.
func Info(msg string, args ...any) {
	defaultLogger.Info(msg, args...)
}

// Warn logs a warning message with optional key-value pairs.
func Warn(msg string, args ...any) {
	defaultLogger.Warn(msg, args...)
}

// Error logs an error message with optional key-value pairs.
func Error(msg string, args ...any) {
	defaultLogger.Error(msg, args...)
}

// SourceLine logs a diagnostic anchored to a file and 1-based line number.
func SourceLine(level Level, msg, path string, line int, args ...any) {
	allArgs := []any{
		"path", path,
		"line", line,
	}
	allArgs = append(allArgs, args...)
	switch level {
	case LevelDebug:
		defaultLogger.Debug(msg, allArgs...)
	case LevelWarn:
		defaultLogger.Warn(msg, allArgs...)
	case LevelError:
		defaultLogger.Error(msg, allArgs...)
	default:
		defaultLogger.Info(msg, allArgs...)
	}
}

// Verse logs a diagnostic anchored to a book/chapter/verse reference.
func Verse(level Level, msg, book string, chapter, verse int, args ...any) {
	allArgs := []any{
		"book", book,
		"chapter", chapter,
		"verse", verse,
	}
	allArgs = append(allArgs, args...)
	switch level {
	case LevelDebug:
		defaultLogger.Debug(msg, allArgs...)
	case LevelWarn:
		defaultLogger.Warn(msg, allArgs...)
	case LevelError:
		defaultLogger.Error(msg, allArgs...)
	default:
		defaultLogger.Info(msg, allArgs...)
	}
}
