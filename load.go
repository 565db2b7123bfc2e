package godbc

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/golangcan/godbc/dbc"
	"github.com/golangcan/godbc/internal/codepage"
	"github.com/golangcan/godbc/internal/parser"
	"github.com/golangcan/godbc/internal/resolver"
	"github.com/golangcan/godbc/internal/types"
)

// Result is the outcome of a load: the validated database and every
// diagnostic reported along the way.
//
// Load never returns a nil Result. When it fails, Database is nil and
// Diagnostics still holds what was found before the failure.
type Result struct {
	Database    *dbc.Database
	Diagnostics []dbc.Diagnostic
}

// Load runs the full pipeline over DBC bytes: decoding, tokenizing,
// parsing and validation.
//
// The error is one of *dbc.EncodingError, *dbc.LexError, *dbc.ParseError
// or *dbc.ValidationError, matched with errors.As; ErrEmptyInput; or an
// ErrUnknownCodePage wrap for a bad WithCodePage label.
//
// Example:
//
//	res, err := godbc.Load(data,
//	    godbc.WithCodePage("gbk"),
//	    godbc.WithLogger(slog.Default()),
//	)
func Load(data []byte, opts ...Option) (*Result, error) {
	cfg := newConfig(opts)
	return load(data, cfg)
}

func load(data []byte, cfg config) (*Result, error) {
	res := &Result{}
	if len(data) == 0 {
		return res, ErrEmptyInput
	}
	logger := cfg.logger
	cp, err := codepage.Lookup(cfg.codePage)
	if err != nil {
		return res, err
	}

	dec := codepage.Decoder{
		CodePage: cp,
		Lossy:    cfg.lossy,
		Logger:   types.Logger{L: types.ComponentLogger(logger, "codepage")},
	}
	text, reps, err := dec.Decode(data)
	if err != nil {
		return res, err
	}
	for _, d := range codepage.Diagnostics(reps, cp) {
		if err := res.report(d, cfg.diagConfig); err != nil {
			return res, err
		}
	}

	p := parser.New([]byte(text), types.ComponentLogger(logger, "parser"), cfg.diagConfig)
	file := p.ParseFile()
	lines := p.Lines()
	if err := res.reportSyntax(file.Diagnostics, p.SyntaxErrors(), lines, cfg.diagConfig); err != nil {
		if logEnabled(logger, slog.LevelDebug) {
			logger.LogAttrs(context.Background(), slog.LevelDebug, "parse failed",
				slog.String("error", err.Error()))
		}
		return res, err
	}

	db, diags, err := resolver.Resolve(file, lines, types.ComponentLogger(logger, "resolver"), cfg.diagConfig)
	res.Diagnostics = append(res.Diagnostics, diags...)
	if err != nil {
		return res, err
	}
	res.Database = db
	return res, nil
}

// report records a warning from a phase before validation and returns a
// ValidationError when the configuration says it fails the load.
func (r *Result) report(d dbc.Diagnostic, cfg dbc.DiagnosticConfig) error {
	if !cfg.ShouldReport(d.Code, d.Severity) {
		return nil
	}
	d.Severity = cfg.Effective(d.Code, d.Severity)
	r.Diagnostics = append(r.Diagnostics, d)
	if cfg.ShouldFail(d.Severity) {
		return &dbc.ValidationError{Code: d.Code, Entity: dbc.NetworkRef(), Message: d.Message}
	}
	return nil
}

// reportSyntax records lexer and parser diagnostics. Every one is
// reported; the error returned is the first lex error if there is one,
// otherwise the first parse error, otherwise the first warning the
// configuration fails on.
func (r *Result) reportSyntax(spanDiags []types.SpanDiagnostic, syntax []parser.SyntaxError, lines *types.LineTable, cfg dbc.DiagnosticConfig) error {
	var lexErr, warnErr error
	for _, sd := range spanDiags {
		d := sd.Locate(lines)
		if d.Severity == dbc.SeverityFatal {
			r.Diagnostics = append(r.Diagnostics, d)
			if d.Code == dbc.DiagLexError && lexErr == nil {
				lexErr = &dbc.LexError{Line: d.Line, Column: d.Column, Message: d.Message}
			}
			continue
		}
		if err := r.report(d, cfg); err != nil && warnErr == nil {
			warnErr = err
		}
	}
	switch {
	case lexErr != nil:
		return lexErr
	case len(syntax) > 0:
		first := syntax[0]
		line, col := lines.Position(first.Span.Start)
		return &dbc.ParseError{Line: line, Column: col, Expected: first.Expected, Found: first.Found}
	}
	return warnErr
}

// BatchResult is the outcome of one input of LoadAll.
type BatchResult struct {
	Name   string
	Result *Result // nil when the input could not be read
	Err    error
}

// LoadAll loads every input of sources. Inputs are independent and run in
// parallel, bounded by WithConcurrency; results keep the order in which
// the sources list their inputs. A source that cannot be listed yields a
// single BatchResult carrying the listing error. Inputs not started
// before ctx is cancelled report ctx.Err().
func LoadAll(ctx context.Context, sources []Source, opts ...Option) []BatchResult {
	cfg := newConfig(opts)
	logger := cfg.logger

	type job struct {
		src  Source
		name string
	}
	var (
		jobs    []job
		results []BatchResult
	)
	for _, src := range sources {
		names, err := src.ListFiles()
		if err != nil {
			results = append(results, BatchResult{Name: src.String(), Err: err})
			continue
		}
		for _, name := range names {
			jobs = append(jobs, job{src: src, name: name})
			results = append(results, BatchResult{Name: name})
		}
	}

	if logEnabled(logger, slog.LevelInfo) {
		logger.LogAttrs(ctx, slog.LevelInfo, "batch loading",
			slog.Int("inputs", len(jobs)),
			slog.Int("concurrency", cfg.concurrency))
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, cfg.concurrency)
	next := 0
	for i := range results {
		if results[i].Err != nil {
			continue
		}
		j := jobs[next]
		next++
		wg.Add(1)
		go func(out *BatchResult) {
			defer wg.Done()

			select {
			case <-ctx.Done():
				out.Err = ctx.Err()
				return
			case sem <- struct{}{}:
			}
			defer func() { <-sem }()

			if err := ctx.Err(); err != nil {
				out.Err = err
				return
			}

			data, err := j.src.ReadFile(j.name)
			if err != nil {
				out.Err = fmt.Errorf("read %s: %w", j.name, err)
				return
			}
			inputCfg := cfg
			inputCfg.logger = inputLogger(logger, j.name)
			out.Result, out.Err = load(data, inputCfg)
		}(&results[i])
	}
	wg.Wait()

	if logEnabled(logger, slog.LevelInfo) {
		failed := 0
		for _, r := range results {
			if r.Err != nil {
				failed++
			}
		}
		logger.LogAttrs(ctx, slog.LevelInfo, "batch loading complete",
			slog.Int("inputs", len(results)),
			slog.Int("failed", failed))
	}
	return results
}

func inputLogger(logger *slog.Logger, name string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(slog.String("input", name))
}
