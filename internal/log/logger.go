// Package log configures the process-wide slog logger and names the
// attribute vocabulary shared by every call site.
package log

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Options controls how the process logger is built.
type Options struct {
	Level  slog.Level
	Format string // "text" or "json"
	Output io.Writer
}

// FromEnv reads LOG_LEVEL and LOG_FORMAT. Unset or unknown values fall
// back to info-level text on stdout.
func FromEnv() Options {
	opts := Options{Level: slog.LevelInfo, Format: "text", Output: os.Stdout}
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		opts.Level = slog.LevelDebug
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	}
	if strings.EqualFold(os.Getenv("LOG_FORMAT"), "json") {
		opts.Format = "json"
	}
	return opts
}

// Setup builds the logger, installs it as the slog default and returns
// it for direct use.
func Setup(opts Options) *slog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	var handler slog.Handler
	if opts.Format == "json" {
		handler = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: opts.Level})
	} else {
		handler = slog.NewTextHandler(out, &slog.HandlerOptions{Level: opts.Level})
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
