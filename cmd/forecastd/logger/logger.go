// Package logger builds the structured logger forecastd uses throughout
// its HTTP service, selecting handler and level from configuration.
package logger

import (
	"log/slog"
	"os"

	"github.com/lindqvist-sales/forecastd/cmd/forecastd/config"
)

// New builds a *slog.Logger from cfg.LogFormat ("text" or "json") and
// cfg.LogLevel ("debug", "info", "warn", "error"). Unrecognized levels
// fall back to info; unrecognized formats fall back to text.
func New(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLevel(cfg.LogLevel),
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
