// Package lexer provides tokenization for DBC source text.
package lexer

import (
	"github.com/golangcan/godbc/internal/types"
)

// Token is a token with kind and source span.
type Token struct {
	Kind TokenKind
	Span types.Span
	// LineStart is set on the first token of a source line. The parser uses
	// it to find section boundaries when recovering from errors.
	LineStart bool
}

// TokenKind identifies a token type.
type TokenKind int

const (
	// === Special ===

	// TokError is a lexical error.
	TokError TokenKind = iota
	// TokEOF is end of input.
	TokEOF

	// === Identifiers and literals ===

	// TokIdent is a C-style identifier that is not a section keyword.
	TokIdent
	// TokNumber is an unsigned decimal integer.
	TokNumber
	// TokNegativeNumber is a negative decimal integer.
	TokNegativeNumber
	// TokFloat is a decimal number with a fraction or exponent, optionally negative.
	TokFloat
	// TokQuotedString is a double-quoted string literal.
	TokQuotedString

	// === Punctuation ===

	// TokColon is ':'.
	TokColon
	// TokSemicolon is ';'.
	TokSemicolon
	// TokComma is ','.
	TokComma
	// TokPipe is '|'.
	TokPipe
	// TokAt is '@'.
	TokAt
	// TokPlus is '+'.
	TokPlus
	// TokMinus is '-'.
	TokMinus
	// TokLParen is '('.
	TokLParen
	// TokRParen is ')'.
	TokRParen
	// TokLBracket is '['.
	TokLBracket
	// TokRBracket is ']'.
	TokRBracket

	// === Section keywords ===

	TokKwVersion
	TokKwNewSymbols     // NS_
	TokKwNewSymbolsDesc // NS_DESC_
	TokKwBitTiming      // BS_
	TokKwNodes          // BU_
	TokKwValueTable     // VAL_TABLE_
	TokKwMessage        // BO_
	TokKwSignal         // SG_
	TokKwMessageTx      // BO_TX_BU_
	TokKwEnvVar         // EV_
	TokKwEnvVarData     // ENVVAR_DATA_
	TokKwEvData         // EV_DATA_
	TokKwSignalType     // SGTYPE_
	TokKwSignalTypeVal  // SGTYPE_VAL_
	TokKwSignalTypeRef  // SIG_TYPE_REF_
	TokKwComment        // CM_
	TokKwAttrDef        // BA_DEF_
	TokKwAttrDefSigType // BA_DEF_SGTYPE_
	TokKwAttrDefRel     // BA_DEF_REL_
	TokKwAttrDefault    // BA_DEF_DEF_
	TokKwAttrDefaultRel // BA_DEF_DEF_REL_
	TokKwAttr           // BA_
	TokKwAttrSigType    // BA_SGTYPE_
	TokKwAttrRel        // BA_REL_
	TokKwValues         // VAL_
	TokKwSignalGroup    // SIG_GROUP_
	TokKwSignalValType  // SIG_VALTYPE_
	TokKwSigTypeValType // SIGTYPE_VALTYPE_
	TokKwMuxValues      // SG_MUL_VAL_
	TokKwCategoryDef    // CAT_DEF_
	TokKwCategory       // CAT_
	TokKwFilter         // FILTER
	TokKwNodeSignalRel  // BU_SG_REL_
	TokKwNodeEnvVarRel  // BU_EV_REL_
	TokKwNodeMessageRel // BU_BO_REL_
)

// String returns the token kind as it is shown in diagnostics.
func (k TokenKind) String() string {
	switch k {
	case TokError:
		return "error"
	case TokEOF:
		return "end of input"
	case TokIdent:
		return "identifier"
	case TokNumber:
		return "integer"
	case TokNegativeNumber:
		return "negative integer"
	case TokFloat:
		return "number"
	case TokQuotedString:
		return "string"
	case TokColon:
		return "':'"
	case TokSemicolon:
		return "';'"
	case TokComma:
		return "','"
	case TokPipe:
		return "'|'"
	case TokAt:
		return "'@'"
	case TokPlus:
		return "'+'"
	case TokMinus:
		return "'-'"
	case TokLParen:
		return "'('"
	case TokRParen:
		return "')'"
	case TokLBracket:
		return "'['"
	case TokRBracket:
		return "']'"
	}
	if text, ok := KeywordText(k); ok {
		return text
	}
	return "unknown"
}

// IsKeyword returns true if this token is a section keyword.
func (k TokenKind) IsKeyword() bool {
	return k >= TokKwVersion && k <= TokKwNodeMessageRel
}

// IsNumber returns true for integer and float literals.
func (k TokenKind) IsNumber() bool {
	return k == TokNumber || k == TokNegativeNumber || k == TokFloat
}

// IsName returns true for tokens usable where a DBC name is expected.
// Section keywords are excluded: a keyword always starts a new statement.
func (k TokenKind) IsName() bool {
	return k == TokIdent
}
