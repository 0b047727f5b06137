// Package logger provides a simple, clean logging interface.
package logger

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Logger defines the logging interface used across the service.
type Logger interface {
	Info(ctx context.Context, msg string, fields ...Field)
	Error(ctx context.Context, msg string, fields ...Field)
	Debug(ctx context.Context, msg string, fields ...Field)
	Warn(ctx context.Context, msg string, fields ...Field)
	Fatal(ctx context.Context, msg string, fields ...Field)

	Named(name string) Logger
}

// Field represents a key-value pair for structured logging.
type Field struct {
	Key   string
	Value interface{}
}

// Field constructors.
func String(key, val string) Field                { return Field{Key: key, Value: val} }
func Int(key string, val int) Field               { return Field{Key: key, Value: val} }
func Float64(key string, val float64) Field       { return Field{Key: key, Value: val} }
func Bool(key string, val bool) Field             { return Field{Key: key, Value: val} }
func Duration(key string, d time.Duration) Field  { return Field{Key: key, Value: d} }
func Any(key string, val interface{}) Field       { return Field{Key: key, Value: val} }
func Error(err error) Field                       { return Field{Key: "error", Value: err} }

// slogLogger implements Logger using slog.
type slogLogger struct {
	l *slog.Logger
}

func (s *slogLogger) Named(name string) Logger {
	return &slogLogger{l: s.l.WithGroup(name)}
}

func (s *slogLogger) log(ctx context.Context, level slog.Level, msg string, fields []Field) {
	attrs := make([]slog.Attr, len(fields))
	for i, f := range fields {
		attrs[i] = slog.Any(f.Key, f.Value)
	}
	s.l.LogAttrs(ctx, level, msg, attrs...)
}

func (s *slogLogger) Info(ctx context.Context, msg string, fields ...Field) {
	s.log(ctx, slog.LevelInfo, msg, fields)
}

func (s *slogLogger) Error(ctx context.Context, msg string, fields ...Field) {
	s.log(ctx, slog.LevelError, msg, fields)
}

func (s *slogLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	s.log(ctx, slog.LevelDebug, msg, fields)
}

func (s *slogLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	s.log(ctx, slog.LevelWarn, msg, fields)
}

func (s *slogLogger) Fatal(ctx context.Context, msg string, fields ...Field) {
	s.log(ctx, slog.LevelError, msg, fields)
	os.Exit(1)
}

var global Logger
var levelVar slog.LevelVar

// Init initializes the global logger writing text to stdout at info level.
func Init() error {
	levelVar.Set(slog.LevelInfo)
	h := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: &levelVar})
	global = &slogLogger{l: slog.New(h)}
	return nil
}

// Get returns the global logger.
func Get() Logger {
	if global == nil {
		// The logger must be explicitly initialized by the application.
		panic("logger not initialized; call logger.Init() first")
	}
	return global
}

// Named creates a named logger off the global one.
func Named(name string) Logger {
	return Get().Named(name)
}

// Sync flushes buffered log entries.
func Sync() error {
	// slog does not buffer; nothing to flush.
	return nil
}

// SetLevel updates the current logging level for the global handler.
func SetLevel(level slog.Level) { levelVar.Set(level) }

// SetLevelString parses and sets the logging level.
// Accepts: debug, info, warn/warning, error (case-insensitive).
func SetLevelString(level string) error {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		SetLevel(slog.LevelDebug)
	case "", "info":
		SetLevel(slog.LevelInfo)
	case "warn", "warning":
		SetLevel(slog.LevelWarn)
	case "error":
		SetLevel(slog.LevelError)
	default:
		return fmt.Errorf("unknown log level: %s", level)
	}
	return nil
}
