// Package xlog is a thin structured logging layer over log/slog with a
// process-wide default logger and helpers for the attributes this module
// logs most.
package xlog

import (
	"context"
	"log/slog"
	"os"
	"sync/atomic"

	"gopkg.in/natefinch/lumberjack.v2"
)

var defaultLogger atomic.Pointer[Logger]

func init() {
	defaultLogger.Store(NewText(LevelInfo))
}

const (
	LevelDebug slog.Level = slog.LevelDebug
	LevelInfo  slog.Level = slog.LevelInfo
	LevelWarn  slog.Level = slog.LevelWarn
	LevelError slog.Level = slog.LevelError
)

var (
	Int      = slog.Int
	Any      = slog.Any
	Bool     = slog.Bool
	Str      = slog.String
	Uint64   = slog.Uint64
	Duration = slog.Duration
)

func Err(e error) slog.Attr {
	return slog.Any("error", e)
}
func Session(id string) slog.Attr {
	return slog.String("session", id)
}
func Cmd(text string) slog.Attr {
	return slog.String("command", text)
}

func Debug(msg string, fields ...slog.Attr) {
	Default().Debug(msg, fields...)
}
func Info(msg string, fields ...slog.Attr) {
	Default().Info(msg, fields...)
}
func Warn(msg string, fields ...slog.Attr) {
	Default().Warn(msg, fields...)
}
func Error(msg string, fields ...slog.Attr) {
	Default().Error(msg, fields...)
}

type Logger struct {
	s *slog.Logger
}

func NewText(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{s: slog.New(handler)}
}

func NewJSON(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{s: slog.New(handler)}
}

// NewFile logs JSON to a size-rotated file.
func NewFile(level slog.Level, path string) *Logger {
	out := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    50, // megabytes
		MaxBackups: 5,
		Compress:   true,
	}
	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{s: slog.New(handler)}
}

func Default() *Logger {
	return defaultLogger.Load()
}
func SetDefault(l *Logger) {
	defaultLogger.Store(l)
}
func With(args ...any) *Logger {
	return Default().With(args...)
}

func (l *Logger) With(args ...any) *Logger {
	return &Logger{s: l.s.With(args...)}
}
func (l *Logger) Debug(msg string, fields ...slog.Attr) {
	l.s.LogAttrs(context.Background(), slog.LevelDebug, msg, fields...)
}
func (l *Logger) Info(msg string, fields ...slog.Attr) {
	l.s.LogAttrs(context.Background(), slog.LevelInfo, msg, fields...)
}
func (l *Logger) Warn(msg string, fields ...slog.Attr) {
	l.s.LogAttrs(context.Background(), slog.LevelWarn, msg, fields...)
}
func (l *Logger) Error(msg string, fields ...slog.Attr) {
	l.s.LogAttrs(context.Background(), slog.LevelError, msg, fields...)
}
