package types

import (
	"fmt"
	"slices"
	"strings"
)

// Severity indicates how serious a diagnostic is.
// Lower values are more severe.
type Severity int

const (
	SeverityFatal   Severity = 0 // Lexing or parsing cannot produce a model
	SeveritySevere  Severity = 1 // Structurally impossible model, validation aborts
	SeverityError   Severity = 2 // Able to continue, should correct
	SeverityMinor   Severity = 3 // Minor issue, should correct
	SeverityStyle   Severity = 4 // Style recommendation
	SeverityWarning Severity = 5 // Reference dropped or section skipped
	SeverityInfo    Severity = 6 // Informational notice
)

func (s Severity) String() string {
	switch s {
	case SeverityFatal:
		return "fatal"
	case SeveritySevere:
		return "severe"
	case SeverityError:
		return "error"
	case SeverityMinor:
		return "minor"
	case SeverityStyle:
		return "style"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return fmt.Sprintf("Severity(%d)", s)
	}
}

// StrictnessLevel controls which diagnostics are reported.
type StrictnessLevel int

const (
	StrictnessStrict     StrictnessLevel = 0 // Report everything
	StrictnessNormal     StrictnessLevel = 5 // Default, report warnings and above
	StrictnessPermissive StrictnessLevel = 3 // Report only hard problems
	StrictnessSilent     StrictnessLevel = 7 // Report nothing optional
)

func (l StrictnessLevel) String() string {
	switch l {
	case StrictnessStrict:
		return "strict"
	case StrictnessNormal:
		return "normal"
	case StrictnessPermissive:
		return "permissive"
	case StrictnessSilent:
		return "silent"
	default:
		return fmt.Sprintf("StrictnessLevel(%d)", l)
	}
}

// Diagnostic represents an issue found while loading a DBC database.
type Diagnostic struct {
	Severity Severity
	Code     string // e.g., "duplicate-message-id", "comment-dangling"
	Message  string
	Entity   string // entity the issue is about, e.g. "BO_ 100" or "SG_ 100 RPM"
	Line     int    // 1-based line number, 0 if not applicable
	Column   int    // 1-based column, 0 if not applicable
}

// String returns a human-readable representation of the diagnostic.
// Format: "[severity] line:col: entity: message" with missing parts omitted.
func (d Diagnostic) String() string {
	var b strings.Builder
	b.WriteByte('[')
	b.WriteString(d.Severity.String())
	b.WriteByte(']')
	b.WriteByte(' ')
	if d.Line > 0 {
		fmt.Fprintf(&b, "%d", d.Line)
		if d.Column > 0 {
			fmt.Fprintf(&b, ":%d", d.Column)
		}
		b.WriteString(": ")
	}
	if d.Entity != "" {
		b.WriteString(d.Entity)
		b.WriteString(": ")
	}
	b.WriteString(d.Message)
	return b.String()
}

// IsWarning reports whether the diagnostic never aborts a load on its own.
func (d Diagnostic) IsWarning() bool {
	return d.Severity > SeveritySevere
}

// SpanDiagnostic is a diagnostic from the lexer or parser, located by
// byte span. It is converted to a Diagnostic with line and column once
// the line table for the source is known.
type SpanDiagnostic struct {
	Severity Severity
	Code     string
	Span     Span
	Message  string
}

// Locate converts d to a Diagnostic positioned with lines. A nil table or
// a synthetic span leaves the position at zero.
func (d SpanDiagnostic) Locate(lines *LineTable) Diagnostic {
	out := Diagnostic{Severity: d.Severity, Code: d.Code, Message: d.Message}
	if lines != nil && !d.Span.IsSynthetic() {
		out.Line, out.Column = lines.Position(d.Span.Start)
	}
	return out
}

// DiagnosticConfig controls strictness and diagnostic filtering.
type DiagnosticConfig struct {
	// Level sets the base strictness level.
	// Diagnostics with severity > Level are suppressed.
	Level StrictnessLevel

	// FailAt sets the severity threshold for failure.
	// If any reported diagnostic has severity <= FailAt, loading fails.
	// Fatal and severe diagnostics always fail regardless of this value.
	FailAt Severity

	// Overrides change severity for specific diagnostic codes.
	// Only warnings can be overridden; hard errors keep their severity.
	Overrides map[string]Severity

	// Ignore lists diagnostic codes to suppress entirely.
	// Supports glob patterns (e.g., "attribute-*").
	Ignore []string
}

// DefaultConfig returns the default diagnostic configuration.
func DefaultConfig() DiagnosticConfig {
	return DiagnosticConfig{
		Level:  StrictnessNormal,
		FailAt: SeveritySevere,
	}
}

// StrictConfig returns a configuration in which every reported warning
// fails the load.
func StrictConfig() DiagnosticConfig {
	return DiagnosticConfig{
		Level:  StrictnessStrict,
		FailAt: SeverityWarning,
	}
}

// PermissiveConfig returns a configuration for vendor files full of
// extensions and stale references.
//
// Ignored codes:
//   - section-unsupported: vendor tools add CAT_DEF_, FILTER and friends
//   - *-dangling: comments and attributes left behind by deleted signals
func PermissiveConfig() DiagnosticConfig {
	return DiagnosticConfig{
		Level:  StrictnessPermissive,
		FailAt: SeveritySevere,
		Ignore: []string{
			DiagSectionUnsupported,
			"*-dangling",
		},
	}
}

// Effective returns the severity for code after applying overrides.
// Fatal and severe diagnostics are never downgraded.
func (c DiagnosticConfig) Effective(code string, sev Severity) Severity {
	if sev <= SeveritySevere {
		return sev
	}
	if override, ok := c.Overrides[code]; ok && override > SeveritySevere {
		return override
	}
	return sev
}

// ShouldReport returns true if a diagnostic with the given code and severity
// should be reported under this configuration. Fatal and severe diagnostics
// are always reported.
func (c DiagnosticConfig) ShouldReport(code string, sev Severity) bool {
	if sev <= SeveritySevere {
		return true
	}
	if slices.ContainsFunc(c.Ignore, func(pattern string) bool {
		return MatchGlob(pattern, code)
	}) {
		return false
	}

	sev = c.Effective(code, sev)

	if c.Level >= StrictnessSilent {
		return false
	}

	if c.Level == StrictnessStrict {
		return true
	}

	return int(sev) <= int(c.Level)
}

// ShouldFail returns true if a diagnostic with the given severity should
// cause loading to fail.
func (c DiagnosticConfig) ShouldFail(sev Severity) bool {
	return sev <= SeveritySevere || sev <= c.FailAt
}

// MatchGlob performs simple glob matching with * wildcard.
func MatchGlob(pattern, s string) bool {
	if pattern == "*" {
		return true
	}
	if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
		return strings.HasPrefix(s, prefix)
	}
	if suffix, ok := strings.CutPrefix(pattern, "*"); ok {
		return strings.HasSuffix(s, suffix)
	}
	return pattern == s
}
