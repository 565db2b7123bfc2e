package lexer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/golangcan/godbc/internal/types"
)

func tokenKinds(source string) []TokenKind {
	lexer := New([]byte(source), nil)
	tokens, _ := lexer.tokenize()
	kinds := make([]TokenKind, len(tokens))
	for i, t := range tokens {
		kinds[i] = t.Kind
	}
	return kinds
}

func tokenTexts(source string) []string {
	lexer := New([]byte(source), nil)
	tokens, _ := lexer.tokenize()
	var texts []string
	for _, t := range tokens {
		if t.Kind != TokEOF {
			texts = append(texts, source[t.Span.Start:t.Span.End])
		}
	}
	return texts
}

func TestEmptyInput(t *testing.T) {
	require.Equal(t, []TokenKind{TokEOF}, tokenKinds(""))
	require.Equal(t, []TokenKind{TokEOF}, tokenKinds(" \r\n\t// only a comment\n"))
}

func TestPunctuation(t *testing.T) {
	kinds := tokenKinds(": ; , | @ + - ( ) [ ]")
	expected := []TokenKind{
		TokColon, TokSemicolon, TokComma, TokPipe, TokAt, TokPlus,
		TokMinus, TokLParen, TokRParen, TokLBracket, TokRBracket, TokEOF,
	}
	require.Equal(t, expected, kinds)
}

func TestNumbers(t *testing.T) {
	tests := []struct {
		src  string
		kind TokenKind
	}{
		{"0", TokNumber},
		{"4294967295", TokNumber},
		{"-1", TokNegativeNumber},
		{"0.25", TokFloat},
		{"-12.5", TokFloat},
		{"1e3", TokFloat},
		{"1.5E-07", TokFloat},
		{"-3e+2", TokFloat},
		{".5", TokFloat},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			require.Equal(t, []TokenKind{tt.kind, TokEOF}, tokenKinds(tt.src))
			require.Equal(t, []string{tt.src}, tokenTexts(tt.src))
		})
	}
}

func TestSignalLine(t *testing.T) {
	src := ` SG_ RPM m1M : 0|16@1+ (0.25,-10) [0|16383.75] "rpm" ECU,Gateway`
	require.Equal(t, []string{
		"SG_", "RPM", "m1M", ":", "0", "|", "16", "@", "1", "+",
		"(", "0.25", ",", "-10", ")", "[", "0", "|", "16383.75", "]",
		`"rpm"`, "ECU", ",", "Gateway",
	}, tokenTexts(src))

	kinds := tokenKinds("@0- @1+")
	require.Equal(t, []TokenKind{TokAt, TokNumber, TokMinus, TokAt, TokNumber, TokPlus, TokEOF}, kinds)
}

func TestHyphenatedIdentifiers(t *testing.T) {
	require.Equal(t, []string{"BU_", ":", "ECU-1", "Gate-Way_2", "A-b-c"},
		tokenTexts("BU_: ECU-1 Gate-Way_2 A-b-c"))
	require.Equal(t, []TokenKind{TokIdent, TokEOF}, tokenKinds("ECU-1"))

	// A hyphen not followed by an identifier byte stays a separate token.
	require.Equal(t, []string{"Sel", "-", "-1", "ECU", "-"}, tokenTexts("Sel- -1 ECU-"))
}

func TestKeywords(t *testing.T) {
	kinds := tokenKinds("VERSION NS_ BS_ BU_ BO_ SG_ CM_ BA_DEF_DEF_REL_ SG_MUL_VAL_ VAL_ VAL_TABLE_ Vector__XXX")
	expected := []TokenKind{
		TokKwVersion, TokKwNewSymbols, TokKwBitTiming, TokKwNodes,
		TokKwMessage, TokKwSignal, TokKwComment, TokKwAttrDefaultRel,
		TokKwMuxValues, TokKwValues, TokKwValueTable, TokIdent, TokEOF,
	}
	require.Equal(t, expected, kinds)
}

func TestKeywordText(t *testing.T) {
	for _, kw := range keywords {
		text, ok := KeywordText(kw.kind)
		require.True(t, ok)
		require.Equal(t, kw.text, text)
		require.True(t, kw.kind.IsKeyword())
	}
	require.Equal(t, "BO_TX_BU_", TokKwMessageTx.String())
	require.Equal(t, "';'", TokSemicolon.String())
}

func TestLineStart(t *testing.T) {
	lexer := New([]byte("BO_ 1 A: 8 X\r\n SG_ s : 0|8@1+ (1,0) [0|0] \"\" X\rBU_:"), nil)
	tokens, diags := lexer.tokenize()
	require.Empty(t, diags)

	var starts []string
	for _, tok := range tokens {
		if tok.LineStart && tok.Kind != TokEOF {
			starts = append(starts, lexer.Text(tok))
		}
	}
	require.Equal(t, []string{"BO_", "SG_", "BU_"}, starts)

	last := tokens[len(tokens)-2]
	line, col := lexer.Lines().Position(last.Span.Start)
	require.Equal(t, 3, line)
	require.Equal(t, 4, col)
}

func TestStrings(t *testing.T) {
	lexer := New([]byte(`CM_ "say \"hi\" C:\\temp"; "a\nb"`), nil)
	tokens, diags := lexer.tokenize()
	require.Empty(t, diags)
	require.Equal(t, TokQuotedString, tokens[1].Kind)
	require.Equal(t, `say "hi" C:\temp`, Unquote(lexer.Text(tokens[1])))
	require.Equal(t, `a\nb`, Unquote(lexer.Text(tokens[3])))
}

func TestMultilineString(t *testing.T) {
	lexer := New([]byte("CM_ \"line one\r\nline two\";\nBU_:"), nil)
	tokens, diags := lexer.tokenize()
	require.Empty(t, diags)
	require.Equal(t, "line one\nline two", Unquote(lexer.Text(tokens[1])))
	require.True(t, tokens[3].LineStart)
	line, _ := lexer.Lines().Position(tokens[3].Span.Start)
	require.Equal(t, 3, line)
}

func TestQuoteRoundTrip(t *testing.T) {
	for _, s := range []string{"", "plain", `with "quotes"`, `back\slash`, "multi\nline"} {
		require.Equal(t, s, Unquote(Quote(s)))
	}
	require.Equal(t, `"a\"b\\c"`, Quote(`a"b\c`))
}

func TestUnterminatedString(t *testing.T) {
	lexer := New([]byte("VERSION \"1.0\nBU_: A"), nil)
	tokens, diags := lexer.tokenize()
	require.Len(t, diags, 1)
	require.Equal(t, types.SeverityFatal, diags[0].Severity)
	require.Equal(t, types.DiagLexError, diags[0].Code)
	require.Equal(t, "unterminated string literal", diags[0].Message)
	require.Equal(t, types.ByteOffset(8), diags[0].Span.Start)
	require.Equal(t, TokError, tokens[1].Kind)
	require.Equal(t, TokEOF, tokens[len(tokens)-1].Kind)
}

func TestUnexpectedCharacter(t *testing.T) {
	lexer := New([]byte("BU_: A # B"), nil)
	tokens, diags := lexer.tokenize()
	require.Len(t, diags, 1)
	require.Contains(t, diags[0].Message, "0x23")
	require.Equal(t, []TokenKind{TokKwNodes, TokColon, TokIdent, TokIdent, TokEOF},
		[]TokenKind{tokens[0].Kind, tokens[1].Kind, tokens[2].Kind, tokens[3].Kind, tokens[4].Kind})
}

func TestLazyEOF(t *testing.T) {
	lexer := New([]byte("NS_"), nil)
	require.Equal(t, TokKwNewSymbols, lexer.NextToken().Kind)
	require.Equal(t, TokEOF, lexer.NextToken().Kind)
	require.Equal(t, TokEOF, lexer.NextToken().Kind)
}
