// Package logger provides a thin structured-logging wrapper around log/slog,
// tailored to a long-lived control-plane client process rather than an
// inbound HTTP server.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Logger wraps *slog.Logger. It exists so the rest of the module depends on
// a small, stable surface instead of slog directly, and so attribute helpers
// in this package compose naturally with it.
type Logger struct {
	*slog.Logger
}

// Option configures a Logger constructed by New.
type Option func(*options)

type options struct {
	level     slog.Level
	output    io.Writer
	json      bool
	addSource bool
}

// WithLevel sets the minimum level logged.
func WithLevel(level slog.Level) Option {
	return func(o *options) { o.level = level }
}

// WithOutput sets the destination writer. Defaults to os.Stderr.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		if w != nil {
			o.output = w
		}
	}
}

// WithJSONFormatter switches the handler to JSON output, suited for
// container log collection.
func WithJSONFormatter() Option {
	return func(o *options) { o.json = true }
}

// WithSource adds the caller's file:line to every record.
func WithSource() Option {
	return func(o *options) { o.addSource = true }
}

// WithDevelopment configures a human-readable text logger at Debug level
// with source locations, for running outside a container.
func WithDevelopment() Option {
	return func(o *options) {
		o.level = slog.LevelDebug
		o.json = false
		o.addSource = true
	}
}

// WithProduction configures a JSON logger at Info level without source
// locations, matching what a container log collector expects.
func WithProduction() Option {
	return func(o *options) {
		o.level = slog.LevelInfo
		o.json = true
		o.addSource = false
	}
}

// New builds a Logger from the given options. Defaults to a JSON handler at
// Info level writing to stderr.
func New(opts ...Option) *Logger {
	o := &options{
		level:  slog.LevelInfo,
		output: os.Stderr,
		json:   true,
	}
	for _, opt := range opts {
		opt(o)
	}

	handlerOpts := &slog.HandlerOptions{
		Level:     o.level,
		AddSource: o.addSource,
	}

	var h slog.Handler
	if o.json {
		h = slog.NewJSONHandler(o.output, handlerOpts)
	} else {
		h = slog.NewTextHandler(o.output, handlerOpts)
	}

	return &Logger{Logger: slog.New(h)}
}

// With returns a Logger with the given attributes bound to every subsequent
// record, preserving the wrapper type across the call.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

// WithGroup returns a Logger whose subsequent attributes are nested under
// the given group name.
func (l *Logger) WithGroup(name string) *Logger {
	return &Logger{Logger: l.Logger.WithGroup(name)}
}

// WithContext extracts no values by default; it exists as the hook point for
// callers that want request-scoped attributes pulled from ctx. Discarded
// context values are a SPEC_FULL simplification: this runtime has no HTTP
// request context to harvest from, only the invocation envelope, which the
// caller can bind directly via With.
func (l *Logger) WithContext(_ context.Context) *Logger {
	return l
}

// SetAsDefault installs l as the default logger observed by slog's
// package-level functions.
func (l *Logger) SetAsDefault() {
	slog.SetDefault(l.Logger)
}

// NewNop returns a Logger that discards everything, for tests and for
// callers that have not configured logging.
func NewNop() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}
