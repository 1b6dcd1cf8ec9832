package logging

import (
	"log/slog"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Setup installs the process-wide slog logger writing to a rolling log
// file. Terminal-facing progress output stays on stdout; the log file
// carries the structured record of what the run did, including
// best-effort persistence failures.
func Setup(filename string, level slog.Level, maxSizeMB, maxBackups, maxAgeDays int) *slog.Logger {
	writer := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
		Compress:   true,
	}
	logger := slog.New(slog.NewTextHandler(writer, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

// ParseLevel maps a config string onto a slog level, defaulting to Info.
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
