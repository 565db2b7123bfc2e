// Package types provides internal types shared across godbc packages.
package types

import (
	"context"
	"log/slog"
	"sort"
)

// LevelTrace is a custom log level more verbose than Debug.
// Use for per-item iteration logging (tokens, signals, attributes).
// Enable with: &slog.HandlerOptions{Level: slog.Level(-8)}
const LevelTrace = slog.Level(-8)

// ctx is a package-level context for logging.
var ctx = context.Background()

// Logger wraps slog.Logger with nil-safe helpers.
type Logger struct {
	L *slog.Logger
}

// Enabled returns true if logging is enabled at the given level.
func (l *Logger) Enabled(level slog.Level) bool {
	return l.L != nil && l.L.Enabled(ctx, level)
}

// Log emits a log message if logging is enabled.
func (l *Logger) Log(level slog.Level, msg string, attrs ...slog.Attr) {
	if l.L != nil && l.L.Enabled(ctx, level) {
		l.L.LogAttrs(ctx, level, msg, attrs...)
	}
}

// TraceEnabled returns true if trace-level logging is enabled.
func (l *Logger) TraceEnabled() bool {
	return l.Enabled(LevelTrace)
}

// Trace emits a trace-level log.
func (l *Logger) Trace(msg string, attrs ...slog.Attr) {
	l.Log(LevelTrace, msg, attrs...)
}

// ComponentLogger returns logger scoped to a pipeline component, or nil.
func ComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(slog.String("component", component))
}

// ByteOffset is a byte position in source text.
type ByteOffset uint32

// Span represents a range in source text.
type Span struct {
	Start ByteOffset // inclusive
	End   ByteOffset // exclusive
}

// Synthetic is a span for constructs that did not come from DBC text,
// such as fragments built from a structured document.
var Synthetic = Span{Start: 0, End: 0}

// NewSpan creates a new span.
func NewSpan(start, end ByteOffset) Span {
	return Span{Start: start, End: end}
}

// Len returns the length of the span in bytes.
func (s Span) Len() ByteOffset {
	return s.End - s.Start
}

// IsSynthetic returns true if this is a synthetic span.
func (s Span) IsSynthetic() bool {
	return s.Start == 0 && s.End == 0
}

// LineTable maps byte offsets to 1-based line and column numbers.
// Line starts are appended as the lexer crosses line endings, so the
// table only ever covers text that has already been scanned.
type LineTable struct {
	starts []ByteOffset
}

// NewLineTable returns a table whose first line starts at offset 0.
func NewLineTable() *LineTable {
	return &LineTable{starts: []ByteOffset{0}}
}

// AddLine records that a new line begins at offset.
func (t *LineTable) AddLine(offset ByteOffset) {
	if n := len(t.starts); n > 0 && t.starts[n-1] >= offset {
		return
	}
	t.starts = append(t.starts, offset)
}

// Position returns the 1-based line and column of offset.
func (t *LineTable) Position(offset ByteOffset) (line, column int) {
	idx := sort.Search(len(t.starts), func(i int) bool {
		return t.starts[i] > offset
	}) - 1
	if idx < 0 {
		idx = 0
	}
	return idx + 1, int(offset-t.starts[idx]) + 1
}

// LineStart returns the offset at which the given 1-based line starts.
func (t *LineTable) LineStart(line int) ByteOffset {
	if line < 1 || line > len(t.starts) {
		return 0
	}
	return t.starts[line-1]
}
