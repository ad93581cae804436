package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, err error, args ...any)
	Debug(msg string, args ...any)
	With(args ...any) Logger
}

type MafiaLogger struct {
	logger *slog.Logger
}

// New returns a debug-level logger writing to stdout, tagged with loggerName.
func New(loggerName string) Logger {
	return NewWithOptions(loggerName, os.Stdout, slog.LevelDebug)
}

func NewWithOptions(loggerName string, w io.Writer, level slog.Level) Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: true,
	})
	attrs := []slog.Attr{slog.String("logger", loggerName)}
	h := handler.WithAttrs(attrs)
	return MafiaLogger{slog.New(h)}
}

// Discard drops everything. Useful for tests and for quiet sub-components.
func Discard() Logger {
	return NewWithOptions("discard", io.Discard, slog.LevelError+1)
}

// ParseLevel maps debug/info/warn/error onto slog levels, defaulting to info.
func ParseLevel(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
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

func (ml MafiaLogger) Info(msg string, args ...any) {
	ml.logger.Info(msg, args...)
}

func (ml MafiaLogger) Warn(msg string, args ...any) {
	ml.logger.Warn(msg, args...)
}

func (ml MafiaLogger) Error(msg string, err error, args ...any) {
	if err != nil {
		args = append(args, slog.String("error", err.Error()))
	}
	ml.logger.Error(msg, args...)
}

func (ml MafiaLogger) Debug(msg string, args ...any) {
	ml.logger.Debug(msg, args...)
}

func (ml MafiaLogger) With(args ...any) Logger {
	return MafiaLogger{ml.logger.With(args...)}
}
