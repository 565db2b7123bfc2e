package resolver

import (
	"fmt"
	"log/slog"

	"github.com/golangcan/godbc/dbc"
	"github.com/golangcan/godbc/internal/ast"
	"github.com/golangcan/godbc/internal/types"
)

type signalKey struct {
	message uint32
	name    string
}

// resolverContext holds the indexes and working state shared by the phases.
type resolverContext struct {
	File  *ast.File
	Lines *types.LineTable // nil for input without source text
	DB    *dbc.Database

	Messages     map[uint32]*dbc.Message
	MessageNames map[string]*dbc.Message
	Signals      map[signalKey]*dbc.Signal
	Nodes        map[string]*dbc.Node
	ValueTables  map[string]*dbc.ValueTable
	EnvVars      map[string]*dbc.EnvVar
	SignalTypes  map[string]*dbc.SignalType
	AttrDefs     map[string]*dbc.AttributeDefinition

	// ExtendedMessages holds messages with at least one SG_MUL_VAL_ entry.
	ExtendedMessages map[*dbc.Message]bool
	// ExplicitRanges holds signals whose ranges come from SG_MUL_VAL_.
	ExplicitRanges map[*dbc.Signal]bool

	diagConfig  types.DiagnosticConfig
	diagnostics []types.Diagnostic
	firstErr    *dbc.ValidationError

	types.Logger
}

func newResolverContext(file *ast.File, lines *types.LineTable, logger *slog.Logger, diagConfig types.DiagnosticConfig) *resolverContext {
	signals := 0
	for _, m := range file.Messages {
		signals += len(m.Signals)
	}
	return &resolverContext{
		File:  file,
		Lines: lines,
		DB: &dbc.Database{
			Version:    file.Version,
			NewSymbols: file.NewSymbols,
			BitTiming:  file.BitTiming,
		},
		Messages:         make(map[uint32]*dbc.Message, len(file.Messages)),
		MessageNames:     make(map[string]*dbc.Message, len(file.Messages)),
		Signals:          make(map[signalKey]*dbc.Signal, signals),
		Nodes:            make(map[string]*dbc.Node, len(file.Nodes)),
		ValueTables:      make(map[string]*dbc.ValueTable, len(file.ValueTables)),
		EnvVars:          make(map[string]*dbc.EnvVar, len(file.EnvVars)),
		SignalTypes:      make(map[string]*dbc.SignalType, len(file.SignalTypes)),
		AttrDefs:         make(map[string]*dbc.AttributeDefinition, len(file.AttributeDefs)),
		ExtendedMessages: make(map[*dbc.Message]bool),
		ExplicitRanges:   make(map[*dbc.Signal]bool),
		diagConfig:       diagConfig,
		Logger:           types.Logger{L: logger},
	}
}

// LookupSignal returns the signal name of message id, or nil.
func (c *resolverContext) LookupSignal(id uint32, name string) *dbc.Signal {
	return c.Signals[signalKey{id, name}]
}

// position converts span to a 1-based line and column, or zeros when the
// span has no source text behind it.
func (c *resolverContext) position(span types.Span) (int, int) {
	if c.Lines == nil || span.IsSynthetic() {
		return 0, 0
	}
	return c.Lines.Position(span.Start)
}

// HardError records a structurally impossible state. The first one becomes
// the error returned by Resolve; all of them are reported.
func (c *resolverContext) HardError(code string, entity dbc.Ref, span types.Span, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	line, col := c.position(span)
	c.diagnostics = append(c.diagnostics, types.Diagnostic{
		Severity: types.SeveritySevere,
		Code:     code,
		Message:  msg,
		Entity:   entity.String(),
		Line:     line,
		Column:   col,
	})
	if c.firstErr == nil {
		c.firstErr = &dbc.ValidationError{Code: code, Entity: entity, Message: msg}
	}
	c.Log(slog.LevelDebug, "validation error", slog.String("code", code),
		slog.String("entity", entity.String()))
}

// Warn records a referential problem, filtered by the diagnostic config.
// A reported warning at or above the fail threshold fails the load.
func (c *resolverContext) Warn(code string, entity dbc.Ref, span types.Span, format string, args ...any) {
	if !c.diagConfig.ShouldReport(code, types.SeverityWarning) {
		return
	}
	sev := c.diagConfig.Effective(code, types.SeverityWarning)
	msg := fmt.Sprintf(format, args...)
	line, col := c.position(span)
	c.diagnostics = append(c.diagnostics, types.Diagnostic{
		Severity: sev,
		Code:     code,
		Message:  msg,
		Entity:   entity.String(),
		Line:     line,
		Column:   col,
	})
	if c.firstErr == nil && c.diagConfig.ShouldFail(sev) {
		c.firstErr = &dbc.ValidationError{Code: code, Entity: entity, Message: msg}
	}
}

// Diagnostics returns all diagnostics collected during resolution.
func (c *resolverContext) Diagnostics() []types.Diagnostic {
	return c.diagnostics
}
