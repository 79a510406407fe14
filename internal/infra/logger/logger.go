package logger

import (
	"io"
	"log/slog"
	"os"
)

func New(env string) *slog.Logger {
	return NewWithWriter(env, os.Stdout)
}

// NewWithWriter — то же, но в произвольный writer (тесты, файл).
func NewWithWriter(env string, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if env == "dev" {
		level = slog.LevelDebug
	}
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(h).With("service", "monument-calc")
}

// Component добавляет имя подсистемы к записям.
func Component(log *slog.Logger, name string) *slog.Logger {
	return log.With("component", name)
}
