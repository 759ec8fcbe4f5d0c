// Package logging configures the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/natefinch/lumberjack"
)

// Rotation settings for file output.
const (
	MaxSizeMB  = 20
	MaxBackups = 5
	MaxAgeDays = 30
)

// ParseLevel maps debug|info|warn|error to a slog level. Unknown values are info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// New builds a logger. With an empty file it writes text to stderr; otherwise
// JSON to a rotating file.
// The returned closer releases the file and is a no-op for stderr.
func New(level, file string) (*slog.Logger, io.Closer) {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	if file == "" {
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), nopCloser{}
	}
	writer := &lumberjack.Logger{
		Filename:   file,
		MaxSize:    MaxSizeMB,
		MaxBackups: MaxBackups,
		MaxAge:     MaxAgeDays,
		Compress:   true,
	}
	return slog.New(slog.NewJSONHandler(writer, opts)), writer
}

// Setup builds a logger with New and installs it as the slog default.
func Setup(level, file string) io.Closer {
	logger, closer := New(level, file)
	slog.SetDefault(logger)
	return closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
