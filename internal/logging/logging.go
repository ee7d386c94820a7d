package logging

import (
	"log/slog"
	"os"
)

// New builds the logger used across the CLI and the pipeline. DEBUG=true
// in the environment lowers the level.
func New() *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv("DEBUG") == "true" {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return logger
}
