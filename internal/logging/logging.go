// Package logging configures the process logger: text records to the console
// and to an append-only log file.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// LevelCritical marks fatal conditions, above slog.LevelError.
const LevelCritical = slog.Level(12)

// DefaultFileName is created next to the executable unless overridden.
const DefaultFileName = "log.txt"

// Options configures Setup.
type Options struct {
	Name     string    // value of the "logger" attribute
	Level    string    // debug, info, warn, error
	FilePath string    // empty disables the file sink
	Console  io.Writer // defaults to os.Stderr
}

// Setup builds a logger writing to the console and, if configured, the log
// file. The returned close function releases the file.
func Setup(opts Options) (*slog.Logger, func() error, error) {
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	w := console
	closeFn := func() error { return nil }

	if opts.FilePath != "" {
		if dir := filepath.Dir(opts.FilePath); dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, nil, fmt.Errorf("create log directory: %w", err)
			}
		}
		f, err := os.OpenFile(opts.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = io.MultiWriter(console, f)
		closeFn = f.Close
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:       ParseLevel(opts.Level),
		ReplaceAttr: replaceLevel,
	})

	logger := slog.New(handler)
	if opts.Name != "" {
		logger = logger.With("logger", opts.Name)
	}
	return logger, closeFn, nil
}

// DefaultFilePath returns DefaultFileName in the executable's directory,
// falling back to the working directory.
func DefaultFilePath() string {
	exe, err := os.Executable()
	if err != nil {
		return DefaultFileName
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Join(filepath.Dir(exe), DefaultFileName)
}

// ParseLevel maps a level name to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "critical":
		return LevelCritical
	default:
		return slog.LevelInfo
	}
}

// Critical logs msg at LevelCritical on the default logger.
func Critical(msg string, args ...any) {
	slog.Default().Log(context.Background(), LevelCritical, msg, args...)
}

func replaceLevel(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 && a.Key == slog.LevelKey {
		if level, ok := a.Value.Any().(slog.Level); ok && level >= LevelCritical {
			a.Value = slog.StringValue("CRITICAL")
		}
	}
	return a
}
