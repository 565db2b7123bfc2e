// Package resolver validates a parsed DBC file and builds the immutable
// database model.
//
// # Resolution Phases
//
// The resolver executes the following phases in order:
//
//  1. Registration: index nodes, value tables, signal types, attribute
//     definitions, messages, signals and environment variables; reject
//     duplicates
//  2. References: attach every deferred reference (comments, attributes,
//     value descriptions, signal types, groups, extended multiplexing) to
//     the indexed entity, dropping dangling ones with a warning
//  3. Checks: bit ranges, float sizes, multiplexing and value uniqueness
//
// Hard errors do not stop the phases; every problem is reported, and the
// first hard error is returned in place of a database.
//
// # Usage
//
//	db, diags, err := resolver.Resolve(file, lines, logger, config)
package resolver

import (
	"log/slog"
	"slices"

	"github.com/golangcan/godbc/dbc"
	"github.com/golangcan/godbc/internal/ast"
	"github.com/golangcan/godbc/internal/types"
)

// Resolve validates file and returns the sealed database. lines locates
// diagnostics in the source text and may be nil. When a hard error (or, in
// strict configurations, a warning) is found, the database is nil and the
// error is a *dbc.ValidationError. Diagnostics are returned in both cases.
func Resolve(file *ast.File, lines *types.LineTable, logger *slog.Logger, diagConfig types.DiagnosticConfig) (*dbc.Database, []types.Diagnostic, error) {
	ctx := newResolverContext(file, lines, logger, diagConfig)

	ctx.Log(slog.LevelDebug, "starting phase", slog.String("phase", "register"))
	registerEntities(ctx)
	ctx.Log(slog.LevelDebug, "phase complete", slog.String("phase", "register"),
		slog.Int("messages", len(ctx.Messages)),
		slog.Int("signals", len(ctx.Signals)))

	ctx.Log(slog.LevelDebug, "starting phase", slog.String("phase", "references"))
	resolveReferences(ctx)

	ctx.Log(slog.LevelDebug, "starting phase", slog.String("phase", "checks"))
	checkModel(ctx)

	if ctx.firstErr != nil {
		ctx.Log(slog.LevelDebug, "validation failed",
			slog.String("code", ctx.firstErr.Code),
			slog.Int("diagnostics", len(ctx.diagnostics)))
		return nil, ctx.Diagnostics(), ctx.firstErr
	}

	db := ctx.DB
	slices.SortStableFunc(db.Messages, func(a, b *dbc.Message) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})

	ctx.Log(slog.LevelInfo, "validation complete",
		slog.Int("nodes", len(db.Nodes)),
		slog.Int("messages", len(db.Messages)),
		slog.Int("diagnostics", len(ctx.diagnostics)))

	return dbc.Seal(db), ctx.Diagnostics(), nil
}
