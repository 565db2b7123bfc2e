package lexer

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/golangcan/godbc/internal/types"
)

// Lexer tokenizes DBC source text. It is lazy: each call to NextToken scans
// exactly one token, and line starts are recorded as they are crossed.
type Lexer struct {
	source      []byte
	pos         int
	lineStart   bool
	lines       *types.LineTable
	diagnostics []types.SpanDiagnostic
	types.Logger
}

// New returns a Lexer that tokenizes the given source bytes.
func New(source []byte, logger *slog.Logger) *Lexer {
	l := &Lexer{
		source:    source,
		lineStart: true,
		lines:     types.NewLineTable(),
		Logger:    types.Logger{L: logger},
	}
	l.Log(slog.LevelDebug, "lexer initialized", slog.Int("bytes", len(source)))
	return l
}

// Source returns the text being tokenized.
func (l *Lexer) Source() []byte {
	return l.source
}

// Lines returns the line table built so far.
func (l *Lexer) Lines() *types.LineTable {
	return l.lines
}

// Diagnostics returns a copy of all collected diagnostics.
func (l *Lexer) Diagnostics() []types.SpanDiagnostic {
	return slices.Clone(l.diagnostics)
}

// Text returns the source text of tok.
func (l *Lexer) Text(tok Token) string {
	return string(l.source[tok.Span.Start:tok.Span.End])
}

func (l *Lexer) traceToken(tok Token) {
	if l.TraceEnabled() {
		l.Trace("token",
			slog.String("kind", tok.Kind.String()),
			slog.Int("start", int(tok.Span.Start)),
			slog.Int("end", int(tok.Span.End)))
	}
}

// tokenize consumes all source text and returns the token stream
// along with any diagnostics generated during lexing.
func (l *Lexer) tokenize() ([]Token, []types.SpanDiagnostic) {
	estimatedTokens := max(len(l.source)/5, 64)
	tokens := make([]Token, 0, estimatedTokens)
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Kind == TokEOF {
			break
		}
	}
	l.Log(slog.LevelDebug, "tokenization complete",
		slog.Int("tokens", len(tokens)),
		slog.Int("diagnostics", len(l.diagnostics)))
	return tokens, l.diagnostics
}

// NextToken advances the lexer and returns the next token.
// Returns TokEOF when all input is consumed, and keeps returning it.
func (l *Lexer) NextToken() Token {
	for {
		tok, retry := l.nextToken()
		if retry {
			continue
		}
		return tok
	}
}

func (l *Lexer) peek() (byte, bool) {
	if l.pos >= len(l.source) {
		return 0, false
	}
	return l.source[l.pos], true
}

func (l *Lexer) peekAt(offset int) (byte, bool) {
	idx := l.pos + offset
	if idx >= len(l.source) {
		return 0, false
	}
	return l.source[idx], true
}

func (l *Lexer) advance() (byte, bool) {
	if l.pos >= len(l.source) {
		return 0, false
	}
	b := l.source[l.pos]
	l.pos++
	return b, true
}

// newline consumes a CR, LF or CRLF line ending and records the next line.
func (l *Lexer) newline() {
	b, _ := l.advance()
	if b == '\r' {
		if next, ok := l.peek(); ok && next == '\n' {
			l.advance()
		}
	}
	l.lines.AddLine(types.ByteOffset(l.pos))
	l.lineStart = true
}

func (l *Lexer) skipWhitespace() {
	for {
		b, ok := l.peek()
		if !ok {
			return
		}
		switch b {
		case ' ', '\t', '\f', '\v':
			l.advance()
		case '\r', '\n':
			l.newline()
		case '/':
			if next, ok := l.peekAt(1); ok && next == '/' {
				l.skipToEOL()
				continue
			}
			return
		default:
			return
		}
	}
}

// skipToEOL skips to the end of the line, leaving the line ending in place.
func (l *Lexer) skipToEOL() {
	for {
		b, ok := l.peek()
		if !ok || b == '\n' || b == '\r' {
			return
		}
		l.advance()
	}
}

func (l *Lexer) error(span types.Span, message string) {
	l.diagnostics = append(l.diagnostics, types.SpanDiagnostic{
		Severity: types.SeverityFatal,
		Code:     types.DiagLexError,
		Span:     span,
		Message:  message,
	})
}

func (l *Lexer) spanFrom(start int) types.Span {
	return types.Span{
		Start: types.ByteOffset(start),
		End:   types.ByteOffset(l.pos),
	}
}

func (l *Lexer) token(kind TokenKind, start int) Token {
	tok := Token{
		Kind:      kind,
		Span:      l.spanFrom(start),
		LineStart: l.lineStart,
	}
	l.lineStart = false
	l.traceToken(tok)
	return tok
}

func (l *Lexer) single(kind TokenKind, start int) (Token, bool) {
	l.advance()
	return l.token(kind, start), false
}

// nextToken scans one token. Returns (token, retry) where retry=true means
// the caller should loop after skipping an invalid character.
func (l *Lexer) nextToken() (Token, bool) {
	l.skipWhitespace()

	start := l.pos
	b, ok := l.peek()
	if !ok {
		return l.token(TokEOF, start), false
	}

	switch b {
	case ':':
		return l.single(TokColon, start)
	case ';':
		return l.single(TokSemicolon, start)
	case ',':
		return l.single(TokComma, start)
	case '|':
		return l.single(TokPipe, start)
	case '@':
		return l.single(TokAt, start)
	case '+':
		return l.single(TokPlus, start)
	case '(':
		return l.single(TokLParen, start)
	case ')':
		return l.single(TokRParen, start)
	case '[':
		return l.single(TokLBracket, start)
	case ']':
		return l.single(TokRBracket, start)
	case '"':
		return l.scanQuotedString(), false
	case '-':
		if l.startsNumber(1) {
			return l.scanNumber(), false
		}
		return l.single(TokMinus, start)
	}

	if l.startsNumber(0) {
		return l.scanNumber(), false
	}

	if isIdentStart(b) {
		return l.scanIdentifierOrKeyword(), false
	}

	l.advance()
	l.error(l.spanFrom(start), fmt.Sprintf("unexpected character: 0x%02x", b))
	return Token{}, true
}

// startsNumber reports whether a number literal begins offset bytes ahead:
// a digit, or a '.' followed by a digit.
func (l *Lexer) startsNumber(offset int) bool {
	b, ok := l.peekAt(offset)
	if !ok {
		return false
	}
	if isDigit(b) {
		return true
	}
	if b == '.' {
		next, ok := l.peekAt(offset + 1)
		return ok && isDigit(next)
	}
	return false
}

func (l *Lexer) scanIdentifierOrKeyword() Token {
	start := l.pos
	l.advance()
	for {
		b, ok := l.peek()
		if ok && b == '-' {
			// ECU-1: a hyphen joins two identifier runs.
			if next, ok := l.peekAt(1); ok && isIdentPart(next) {
				l.advance()
				continue
			}
		}
		if !ok || !isIdentPart(b) {
			break
		}
		l.advance()
	}

	text := string(l.source[start:l.pos])
	if kind, ok := LookupKeyword(text); ok {
		return l.token(kind, start)
	}
	return l.token(TokIdent, start)
}

// scanNumber scans [-]digits[.digits][(e|E)[+|-]digits].
func (l *Lexer) scanNumber() Token {
	start := l.pos
	negative := false
	if b, _ := l.peek(); b == '-' {
		negative = true
		l.advance()
	}
	l.skipDigits()

	isFloat := false
	if b, ok := l.peek(); ok && b == '.' {
		isFloat = true
		l.advance()
		l.skipDigits()
	}
	if b, ok := l.peek(); ok && (b == 'e' || b == 'E') {
		sign := 0
		if s, ok := l.peekAt(1); ok && (s == '+' || s == '-') {
			sign = 1
		}
		if d, ok := l.peekAt(1 + sign); ok && isDigit(d) {
			isFloat = true
			l.pos += 1 + sign
			l.skipDigits()
		}
	}

	switch {
	case isFloat:
		return l.token(TokFloat, start)
	case negative:
		return l.token(TokNegativeNumber, start)
	default:
		return l.token(TokNumber, start)
	}
}

func (l *Lexer) skipDigits() {
	for {
		b, ok := l.peek()
		if !ok || !isDigit(b) {
			return
		}
		l.advance()
	}
}

func (l *Lexer) scanQuotedString() Token {
	start := l.pos
	l.advance() // consume opening quote

	for {
		b, ok := l.peek()
		if !ok {
			l.error(l.spanFrom(start), "unterminated string literal")
			return l.token(TokError, start)
		}
		switch b {
		case '"':
			l.advance()
			return l.token(TokQuotedString, start)
		case '\\':
			l.advance()
			if next, ok := l.peek(); ok && (next == '"' || next == '\\') {
				l.advance()
			}
		case '\r', '\n':
			lineStart := l.lineStart
			l.newline()
			l.lineStart = lineStart
		default:
			l.advance()
		}
	}
}

// Unquote returns the value of a quoted string token's text: the
// surrounding quotes removed, \" and \\ unescaped, and CRLF or CR line
// endings normalized to LF. Other backslash sequences are kept verbatim.
func Unquote(raw string) string {
	if len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"' {
		raw = raw[1 : len(raw)-1]
	}
	if !strings.ContainsAny(raw, "\\\r") {
		return raw
	}
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case c == '\\' && i+1 < len(raw) && (raw[i+1] == '"' || raw[i+1] == '\\'):
			b.WriteByte(raw[i+1])
			i++
		case c == '\r':
			b.WriteByte('\n')
			if i+1 < len(raw) && raw[i+1] == '\n' {
				i++
			}
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Quote renders s as a DBC string literal, escaping '\' and '"'.
func Quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		if s[i] == '"' || s[i] == '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	b.WriteByte('"')
	return b.String()
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isIdentStart(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '_'
}

func isIdentPart(b byte) bool {
	return isIdentStart(b) || isDigit(b)
}
