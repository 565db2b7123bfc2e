package godbc

import (
	"context"
	"errors"
	"log/slog"
	"runtime"

	"github.com/golangcan/godbc/dbc"
	"github.com/golangcan/godbc/internal/codepage"
	"github.com/golangcan/godbc/internal/types"
)

// ErrEmptyInput is returned when Load is given no bytes at all.
var ErrEmptyInput = errors.New("empty DBC input")

// ErrUnknownCodePage is returned for code page labels that name no
// supported encoding.
var ErrUnknownCodePage = codepage.ErrUnknownCodePage

// LevelTrace is a custom log level more verbose than Debug.
// Use for per-item iteration logging (tokens, signals, attributes).
// Enable with: &slog.HandlerOptions{Level: slog.Level(-8)}
const LevelTrace = types.LevelTrace

// Option configures Load, LoadAll, Format and DecodeDocument. Options that
// do not apply to a call are ignored.
type Option func(*config)

type config struct {
	logger      *slog.Logger
	codePage    string
	outCodePage string
	lossy       bool
	diagConfig  dbc.DiagnosticConfig
	concurrency int
}

func newConfig(opts []Option) config {
	cfg := config{
		codePage:    codepage.UTF8.Name(),
		outCodePage: codepage.UTF8.Name(),
		diagConfig:  dbc.DefaultConfig(),
		concurrency: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithLogger sets the logger for debug/trace output.
// If not set, no logging occurs (zero overhead).
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithCodePage sets the code page of DBC input, e.g. "windows-1252" or
// "gbk". The default is UTF-8. A UTF-8 byte order mark overrides it.
func WithCodePage(label string) Option {
	return func(c *config) { c.codePage = label }
}

// WithOutputCodePage sets the code page Format encodes to. The default
// is UTF-8.
func WithOutputCodePage(label string) Option {
	return func(c *config) { c.outCodePage = label }
}

// WithLossyDecoding replaces undecodable input with U+FFFD and reports an
// undecodable-bytes warning instead of failing with an EncodingError.
func WithLossyDecoding() Option {
	return func(c *config) { c.lossy = true }
}

// WithDiagnosticConfig sets strictness and diagnostic filtering.
func WithDiagnosticConfig(cfg dbc.DiagnosticConfig) Option {
	return func(c *config) { c.diagConfig = cfg }
}

// WithStrict is shorthand for WithDiagnosticConfig(dbc.StrictConfig()):
// every reported warning fails the load.
func WithStrict() Option {
	return func(c *config) { c.diagConfig = dbc.StrictConfig() }
}

// WithConcurrency bounds the number of inputs LoadAll processes at once.
// Values below one mean runtime.NumCPU().
func WithConcurrency(n int) Option {
	return func(c *config) {
		if n < 1 {
			n = runtime.NumCPU()
		}
		c.concurrency = n
	}
}

// logEnabled returns true if logging is enabled at the given level.
func logEnabled(logger *slog.Logger, level slog.Level) bool {
	return logger != nil && logger.Enabled(context.Background(), level)
}
