// Package parser provides DBC parsing into an AST.
//
// The parser is a recursive-descent parser over the DBC section grammar with
// a three-token lookahead. It never stops at the first problem:
//   - Unsupported or unknown sections are skipped with a section-unsupported
//     warning, so files with vendor extensions still parse.
//   - A malformed statement inside a recognised section records a fatal
//     parse-error diagnostic. The parser then resynchronises at the next
//     section keyword that starts a line and keeps going.
//
// Callers decide what to do with the accumulated diagnostics once the whole
// input has been consumed.
package parser

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/golangcan/godbc/internal/ast"
	"github.com/golangcan/godbc/internal/lexer"
	"github.com/golangcan/godbc/internal/types"
)

// noNode is the placeholder DBC writes where a node name is required but
// no node applies.
const noNode = "Vector__XXX"

// SyntaxError describes a malformed statement: what the grammar expected at
// Span and what was found there instead.
type SyntaxError struct {
	Span     types.Span
	Expected string
	Found    string
}

// Parser converts a token stream into an ast.File with diagnostics.
type Parser struct {
	source       []byte
	lex          *lexer.Lexer
	buf          [3]lexer.Token // lookahead buffer: buf[0]=current, buf[1]=peek(1), buf[2]=peek(2)
	prevEnd      types.ByteOffset
	file         *ast.File
	diagnostics  []types.SpanDiagnostic
	syntaxErrors []SyntaxError
	diagConfig   types.DiagnosticConfig
	types.Logger
}

// New returns a Parser that lexes the source and prepares for parsing.
// Pass nil for logger to disable logging.
func New(source []byte, logger *slog.Logger, diagConfig types.DiagnosticConfig) *Parser {
	lex := lexer.New(source, types.ComponentLogger(logger, "lexer"))
	p := &Parser{
		source:     source,
		lex:        lex,
		file:       &ast.File{},
		diagConfig: diagConfig,
		Logger:     types.Logger{L: logger},
	}
	p.buf[0] = lex.NextToken()
	p.buf[1] = lex.NextToken()
	p.buf[2] = lex.NextToken()
	p.Log(slog.LevelDebug, "parser initialized")
	return p
}

// Lines returns the line table of the source. It is complete once
// ParseFile has returned.
func (p *Parser) Lines() *types.LineTable {
	return p.lex.Lines()
}

// SyntaxErrors returns the malformed statements found, in source order.
func (p *Parser) SyntaxErrors() []SyntaxError {
	return p.syntaxErrors
}

// ParseFile parses the whole input. Lexer and parser diagnostics are
// collected in the file's Diagnostics.
func (p *Parser) ParseFile() *ast.File {
	for !p.isEOF() {
		if err := p.parseStatement(); err != nil {
			p.recordParseError(*err)
			p.recoverToSection()
		}
	}

	p.file.Diagnostics = append(p.lex.Diagnostics(), p.diagnostics...)

	p.Log(slog.LevelDebug, "parsing complete",
		slog.Int("messages", len(p.file.Messages)),
		slog.Int("comments", len(p.file.Comments)),
		slog.Int("attributes", len(p.file.Attributes)),
		slog.Int("diagnostics", len(p.file.Diagnostics)))

	return p.file
}

func (p *Parser) parseStatement() *SyntaxError {
	tok := p.peek()
	if p.TraceEnabled() {
		p.Trace("statement", slog.String("keyword", tok.Kind.String()),
			slog.Int("offset", int(tok.Span.Start)))
	}

	switch tok.Kind {
	case lexer.TokKwVersion:
		return p.parseVersion()
	case lexer.TokKwNewSymbols:
		return p.parseNewSymbols()
	case lexer.TokKwBitTiming:
		return p.parseBitTiming()
	case lexer.TokKwNodes:
		return p.parseNodes()
	case lexer.TokKwValueTable:
		return p.parseValueTable()
	case lexer.TokKwMessage:
		return p.parseMessage()
	case lexer.TokKwMessageTx:
		return p.parseMessageTransmitters()
	case lexer.TokKwEnvVar:
		return p.parseEnvVar()
	case lexer.TokKwEnvVarData, lexer.TokKwEvData:
		return p.parseEnvVarData()
	case lexer.TokKwSignalType:
		return p.parseSignalType()
	case lexer.TokKwSignalTypeRef:
		return p.parseSignalTypeRef()
	case lexer.TokKwComment:
		return p.parseComment()
	case lexer.TokKwAttrDef:
		return p.parseAttributeDef(false)
	case lexer.TokKwAttrDefRel:
		return p.parseAttributeDef(true)
	case lexer.TokKwAttrDefault, lexer.TokKwAttrDefaultRel:
		return p.parseAttributeDefault()
	case lexer.TokKwAttr:
		return p.parseAttribute()
	case lexer.TokKwAttrRel:
		return p.parseRelationAttribute()
	case lexer.TokKwValues:
		return p.parseValueDescriptions()
	case lexer.TokKwSignalGroup:
		return p.parseSignalGroup()
	case lexer.TokKwSignalValType:
		return p.parseSignalValueType()
	case lexer.TokKwMuxValues:
		return p.parseMuxValues()
	case lexer.TokKwSignal:
		err := p.errorf("BO_ before SG_")
		p.advance()
		return err
	case lexer.TokKwNewSymbolsDesc, lexer.TokKwCategoryDef, lexer.TokKwCategory,
		lexer.TokKwFilter, lexer.TokKwSignalTypeVal, lexer.TokKwAttrDefSigType,
		lexer.TokKwAttrSigType, lexer.TokKwSigTypeValType, lexer.TokKwNodeSignalRel,
		lexer.TokKwNodeEnvVarRel, lexer.TokKwNodeMessageRel, lexer.TokIdent:
		p.skipUnsupported()
		return nil
	}
	err := p.errorf("section keyword")
	p.advance()
	return err
}

// skipUnsupported skips a statement the parser has no model for: up to and
// including the terminating ';', or up to the next section keyword that
// starts a line.
func (p *Parser) skipUnsupported() {
	tok := p.advance()
	name := p.text(tok.Span)
	p.emitDiagnostic(types.DiagSectionUnsupported, types.SeverityWarning, tok.Span,
		fmt.Sprintf("unsupported section %s skipped", name))
	p.Log(slog.LevelDebug, "skipping unsupported section", slog.String("keyword", name))
	for !p.isEOF() {
		if p.atSectionStart() {
			return
		}
		if p.advance().Kind == lexer.TokSemicolon {
			return
		}
	}
}

// recoverToSection skips tokens until the next section keyword that starts
// a line.
func (p *Parser) recoverToSection() {
	for !p.isEOF() && !p.atSectionStart() {
		p.advance()
	}
}

func (p *Parser) atSectionStart() bool {
	tok := p.peek()
	return tok.LineStart && tok.Kind.IsKeyword()
}

// atColumnOne reports whether the current token is the first thing on its
// line, in the first column.
func (p *Parser) atColumnOne() bool {
	tok := p.peek()
	if !tok.LineStart {
		return false
	}
	_, col := p.lex.Lines().Position(tok.Span.Start)
	return col == 1
}

func (p *Parser) isEOF() bool {
	return p.peek().Kind == lexer.TokEOF
}

func (p *Parser) peek() lexer.Token {
	return p.buf[0]
}

func (p *Parser) peekNth(n int) lexer.Token {
	return p.buf[n]
}

func (p *Parser) advance() lexer.Token {
	tok := p.buf[0]
	p.prevEnd = tok.Span.End
	p.buf[0] = p.buf[1]
	p.buf[1] = p.buf[2]
	p.buf[2] = p.lex.NextToken()
	return tok
}

func (p *Parser) check(kind lexer.TokenKind) bool {
	return p.peek().Kind == kind
}

// accept consumes the current token if it has the given kind.
func (p *Parser) accept(kind lexer.TokenKind) bool {
	if p.check(kind) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expect(kind lexer.TokenKind) (lexer.Token, *SyntaxError) {
	if p.check(kind) {
		return p.advance(), nil
	}
	return lexer.Token{}, p.errorf("%s", kind)
}

func (p *Parser) text(span types.Span) string {
	return string(p.source[span.Start:span.End])
}

// describe renders a token for "found ..." messages.
func (p *Parser) describe(tok lexer.Token) string {
	switch tok.Kind {
	case lexer.TokEOF:
		return tok.Kind.String()
	case lexer.TokIdent, lexer.TokNumber, lexer.TokNegativeNumber, lexer.TokFloat, lexer.TokQuotedString:
		return fmt.Sprintf("%s %s", tok.Kind, strconv.Quote(p.text(tok.Span)))
	case lexer.TokError:
		return "malformed token"
	}
	return tok.Kind.String()
}

// errorf builds a syntax error at the current token. The format describes
// what was expected.
func (p *Parser) errorf(format string, args ...any) *SyntaxError {
	tok := p.peek()
	return &SyntaxError{
		Span:     tok.Span,
		Expected: fmt.Sprintf(format, args...),
		Found:    p.describe(tok),
	}
}

// emitDiagnostic records a diagnostic if the current config reports it.
func (p *Parser) emitDiagnostic(code string, severity types.Severity, span types.Span, message string) {
	if !p.diagConfig.ShouldReport(code, severity) {
		return
	}
	p.diagnostics = append(p.diagnostics, types.SpanDiagnostic{
		Severity: severity,
		Code:     code,
		Span:     span,
		Message:  message,
	})
}

// recordParseError appends a structural parse error unconditionally.
// Parse errors bypass ShouldReport() filtering because they indicate
// a syntax problem that must be reported at any strictness level.
func (p *Parser) recordParseError(err SyntaxError) {
	p.syntaxErrors = append(p.syntaxErrors, err)
	p.diagnostics = append(p.diagnostics, types.SpanDiagnostic{
		Severity: types.SeverityFatal,
		Code:     types.DiagParseError,
		Span:     err.Span,
		Message:  fmt.Sprintf("expected %s, found %s", err.Expected, err.Found),
	})
}

// spanFrom returns the span from the start of tok to the end of the last
// consumed token.
func (p *Parser) spanFrom(tok lexer.Token) types.Span {
	return types.NewSpan(tok.Span.Start, max(p.prevEnd, tok.Span.End))
}

func (p *Parser) parseIdent() (ast.Ident, *SyntaxError) {
	tok, err := p.expect(lexer.TokIdent)
	if err != nil {
		return ast.Ident{}, err
	}
	return ast.NewIdent(p.text(tok.Span), tok.Span), nil
}

func (p *Parser) parseString() (string, *SyntaxError) {
	tok, err := p.expect(lexer.TokQuotedString)
	if err != nil {
		return "", err
	}
	return lexer.Unquote(p.text(tok.Span)), nil
}

func (p *Parser) parseUint(bits int, what string) (uint64, *SyntaxError) {
	if !p.check(lexer.TokNumber) {
		return 0, p.errorf("%s", what)
	}
	v, err := strconv.ParseUint(p.text(p.peek().Span), 10, bits)
	if err != nil {
		return 0, p.errorf("%s (%d-bit unsigned)", what, bits)
	}
	p.advance()
	return v, nil
}

func (p *Parser) parseU32(what string) (uint32, *SyntaxError) {
	v, err := p.parseUint(32, what)
	return uint32(v), err
}

// parseInt parses a signed 64-bit integer: an optional '+' or '-' token
// followed by an integer literal.
func (p *Parser) parseInt(what string) (int64, *SyntaxError) {
	neg := false
	if p.check(lexer.TokMinus) || p.check(lexer.TokPlus) {
		neg = p.advance().Kind == lexer.TokMinus
	}
	if !p.check(lexer.TokNumber) && !p.check(lexer.TokNegativeNumber) {
		return 0, p.errorf("%s", what)
	}
	v, err := strconv.ParseInt(p.text(p.peek().Span), 10, 64)
	if err != nil {
		return 0, p.errorf("%s (64-bit integer)", what)
	}
	p.advance()
	if neg {
		v = -v
	}
	return v, nil
}

// parseFloat parses any numeric literal, with an optional sign token.
func (p *Parser) parseFloat(what string) (float64, *SyntaxError) {
	neg := false
	if p.check(lexer.TokMinus) || p.check(lexer.TokPlus) {
		neg = p.advance().Kind == lexer.TokMinus
	}
	if !p.peek().Kind.IsNumber() {
		return 0, p.errorf("%s", what)
	}
	v, err := strconv.ParseFloat(p.text(p.peek().Span), 64)
	if err != nil {
		return 0, p.errorf("%s (finite 64-bit float)", what)
	}
	p.advance()
	if neg {
		v = -v
	}
	return v, nil
}

// parseNodeList reads comma- or space-separated node names that continue
// the current line. Vector__XXX entries are dropped.
func (p *Parser) parseNodeList() []string {
	var nodes []string
	for p.check(lexer.TokIdent) && !p.peek().LineStart {
		name := p.text(p.advance().Span)
		if name != noNode {
			nodes = append(nodes, name)
		}
		p.accept(lexer.TokComma)
	}
	return nodes
}
