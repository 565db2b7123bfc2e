package godbc

import (
	"github.com/golangcan/godbc/dbc"
	"github.com/golangcan/godbc/document"
	"github.com/golangcan/godbc/internal/codepage"
	"github.com/golangcan/godbc/internal/format"
	"github.com/golangcan/godbc/internal/types"
)

// Format renders a validated database as canonical DBC text, encoded in
// the code page set by WithOutputCodePage. A character the code page
// cannot represent fails with a *dbc.EncodingError; a database that did
// not come out of Load or DecodeDocument fails with dbc.ErrNotValidated.
func Format(db *dbc.Database, opts ...Option) ([]byte, error) {
	cfg := newConfig(opts)
	cp, err := codepage.Lookup(cfg.outCodePage)
	if err != nil {
		return nil, err
	}
	text, err := format.Format(db, types.ComponentLogger(cfg.logger, "format"))
	if err != nil {
		return nil, err
	}
	if cp.IsUTF8() {
		return text, nil
	}
	return codepage.Encode(string(text), cp)
}

// EncodeDocument serializes a validated database as a structured
// document. indent is the number of spaces per level; zero is compact.
func EncodeDocument(db *dbc.Database, form DocumentFormat, indent int) ([]byte, error) {
	doc, err := document.FromDatabase(db)
	if err != nil {
		return nil, err
	}
	return document.Marshal(doc, form, indent)
}

// DecodeDocument parses a structured document and validates it exactly as
// Load validates DBC text. Documents are always UTF-8; the code page
// options do not apply.
//
// The error is document.ErrInvalidDocument (wrapped) for malformed input,
// or a *dbc.ValidationError. As with Load, the Result is never nil.
func DecodeDocument(data []byte, form DocumentFormat, opts ...Option) (*Result, error) {
	cfg := newConfig(opts)
	res := &Result{}
	if len(data) == 0 {
		return res, ErrEmptyInput
	}
	doc, err := document.Unmarshal(data, form)
	if err != nil {
		return res, err
	}
	db, diags, err := document.ToDatabase(doc, document.Options{
		Logger:           cfg.logger,
		DiagnosticConfig: &cfg.diagConfig,
	})
	res.Diagnostics = diags
	if err != nil {
		return res, err
	}
	res.Database = db
	return res, nil
}

// Recode converts DBC bytes from one code page to another without parsing
// them. Decoding is strict.
func Recode(data []byte, from, to string) ([]byte, error) {
	src, err := codepage.Lookup(from)
	if err != nil {
		return nil, err
	}
	dst, err := codepage.Lookup(to)
	if err != nil {
		return nil, err
	}
	return codepage.Recode(data, src, dst)
}
