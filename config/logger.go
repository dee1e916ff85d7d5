package config

import (
	"io"
	"log/slog"
	"time"

	"github.com/lmittmann/tint"
)

// Level converts LogLevel to a slog.Level; unknown values mean info.
func (c Config) Level() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// NewLogger writes JSON in production and colourised text elsewhere.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	if c.IsProduction() {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: c.Level()}))
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      c.Level(),
		TimeFormat: time.Kitchen,
	}))
}
