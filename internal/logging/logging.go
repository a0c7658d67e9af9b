// Package logging provides structured file-based logging for filedex.
//
// Logs are written as JSON lines under the data directory so that stderr
// stays reserved for operator-facing diagnostics from the shell.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Config contains logging configuration.
type Config struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `yaml:"level"`
	// MaxSizeMB is the maximum size in MB before rotation (default: 10).
	MaxSizeMB int `yaml:"max_size_mb"`
	// MaxFiles is the maximum number of rotated files to keep (default: 5).
	MaxFiles int `yaml:"max_files"`
	// WriteToStderr whether to also write to stderr (default: false).
	WriteToStderr bool `yaml:"write_to_stderr"`
}

// DefaultConfig returns sensible defaults for file logging.
func DefaultConfig() Config {
	return Config{
		Level:         "info",
		MaxSizeMB:     10,
		MaxFiles:      5,
		WriteToStderr: false,
	}
}

// LogPath returns the log file path under the given data directory.
func LogPath(dataDir string) string {
	return filepath.Join(dataDir, "logs", "filedex.log")
}

// Setup initializes file-based logging under dataDir and returns the
// configured logger and a cleanup function that closes the log file.
func Setup(dataDir string, cfg Config) (*slog.Logger, func(), error) {
	writer, err := NewRotatingWriter(LogPath(dataDir), cfg.MaxSizeMB, cfg.MaxFiles)
	if err != nil {
		return nil, nil, err
	}

	var output io.Writer = writer
	if cfg.WriteToStderr {
		output = io.MultiWriter(writer, os.Stderr)
	}

	handler := slog.NewJSONHandler(output, &slog.HandlerOptions{
		Level: parseLevel(cfg.Level),
	})

	logger := slog.New(handler)

	cleanup := func() {
		_ = writer.Close()
	}

	return logger, cleanup, nil
}

// parseLevel converts string level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
