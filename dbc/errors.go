package dbc

import (
	"errors"
	"fmt"
)

// ErrNotValidated is returned when a database that did not come out of the
// validator is handed to the formatter or document mapper.
var ErrNotValidated = errors.New("database has not been validated")

// EncodingError reports bytes that cannot be decoded from, or text that
// cannot be encoded to, a code page.
type EncodingError struct {
	Op       string // "decode" or "encode"
	CodePage string
	Offset   int  // decode: byte offset of the first undecodable sequence
	Char     rune // encode: the unencodable character
	Position int  // encode: byte offset of Char in the text
}

func (e *EncodingError) Error() string {
	if e.Op == "encode" {
		return fmt.Sprintf("encode %s: character %q (U+%04X) at position %d has no representation",
			e.CodePage, e.Char, e.Char, e.Position)
	}
	return fmt.Sprintf("decode %s: undecodable byte sequence at offset %d", e.CodePage, e.Offset)
}

// LexError reports malformed input the tokenizer could not scan.
type LexError struct {
	Line    int
	Column  int
	Message string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lex error at %d:%d: %s", e.Line, e.Column, e.Message)
}

// ParseError reports an unexpected token inside a recognised section.
type ParseError struct {
	Line     int
	Column   int
	Expected string
	Found    string
}

func (e *ParseError) Error() string {
	if e.Found == "" {
		return fmt.Sprintf("parse error at %d:%d: expected %s", e.Line, e.Column, e.Expected)
	}
	return fmt.Sprintf("parse error at %d:%d: expected %s, found %s", e.Line, e.Column, e.Expected, e.Found)
}

// ValidationError reports a structurally impossible database: duplicate
// identifiers, bit-range overflow, multiplexing violations or attribute
// values outside their declared domain.
type ValidationError struct {
	Code    string
	Entity  Ref
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Code, e.Entity, e.Message)
}
