// Package logging sets up the host tool's structured logger and bridges the
// core debug writer into it.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"rollclock/core"
)

// Options holds logger configuration
type Options struct {
	Level      slog.Level
	JSON       bool
	SetDefault bool
	Output     io.Writer
}

// Option configures a logger
type Option func(*Options)

// WithLevel parses level ("debug", "info", "warn", "error"). Unknown values
// fall back to info and are reported on the default logger.
func WithLevel(level string) Option {
	return func(o *Options) {
		var l slog.Level
		if err := l.UnmarshalText([]byte(level)); err != nil {
			slog.Default().Error("failed to parse log level",
				slog.String("input", level),
				slog.String("default", "info"),
				slog.Any("error", err),
			)
			l = slog.LevelInfo
		}
		o.Level = l
	}
}

// WithJSON selects JSON output instead of text
func WithJSON(json bool) Option {
	return func(o *Options) {
		o.JSON = json
	}
}

// WithSetDefault controls whether the logger becomes slog's default
func WithSetDefault(setDefault bool) Option {
	return func(o *Options) {
		o.SetDefault = setDefault
	}
}

// WithOutput redirects log output (stderr by default)
func WithOutput(w io.Writer) Option {
	return func(o *Options) {
		o.Output = w
	}
}

// NewLogger creates a configured logger
func NewLogger(opts ...Option) *slog.Logger {
	options := &Options{
		Level:      slog.LevelInfo,
		SetDefault: true,
		Output:     os.Stderr,
	}
	for _, opt := range opts {
		opt(options)
	}

	handlerOpts := &slog.HandlerOptions{Level: options.Level}
	var h slog.Handler = slog.NewTextHandler(options.Output, handlerOpts)
	if options.JSON {
		h = slog.NewJSONHandler(options.Output, handlerOpts)
	}

	logger := slog.New(h)
	if options.SetDefault {
		slog.SetDefault(logger)
	}
	return logger
}

// BridgeCoreDebug routes core debug output to logger at debug level, and
// enables it only if the logger would emit it.
func BridgeCoreDebug(logger *slog.Logger) {
	core.SetDebugWriter(func(msg string) {
		logger.Debug(strings.TrimSpace(msg), slog.String("source", "core"))
	})
	core.SetDebugEnabled(logger.Enabled(context.Background(), slog.LevelDebug))
}
