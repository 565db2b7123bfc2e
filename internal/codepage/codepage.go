// Package codepage converts DBC bytes between legacy code pages and UTF-8.
//
// Labels follow the WHATWG encoding registry (utf-8, windows-1252, gbk,
// gb18030, big5, shift_jis, euc-kr, ...), extended with the DOS code pages
// and Windows aliases that CAN tooling still writes.
package codepage

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"

	"github.com/golangcan/godbc/dbc"
	"github.com/golangcan/godbc/internal/types"
)

// ErrUnknownCodePage is returned by Lookup for labels that name no supported
// encoding.
var ErrUnknownCodePage = errors.New("unknown code page")

// bom is the UTF-8 byte order mark.
var bom = []byte{0xEF, 0xBB, 0xBF}

// extraLabels covers names outside the WHATWG registry.
var extraLabels = map[string]struct {
	name string
	enc  encoding.Encoding
}{
	"cp437":  {"ibm437", charmap.CodePage437},
	"ibm437": {"ibm437", charmap.CodePage437},
	"cp850":  {"ibm850", charmap.CodePage850},
	"ibm850": {"ibm850", charmap.CodePage850},
	"cp852":  {"ibm852", charmap.CodePage852},
	"ibm852": {"ibm852", charmap.CodePage852},
	"cp936":  {"gbk", simplifiedchinese.GBK},
	"cp1252": {"windows-1252", charmap.Windows1252},
}

// CodePage is a resolved character encoding.
type CodePage struct {
	name string
	enc  encoding.Encoding
}

// UTF8 is the canonical code page.
var UTF8 = CodePage{name: "utf-8", enc: unicode.UTF8}

// Name returns the canonical label of the code page.
func (c CodePage) Name() string {
	if c.name == "" {
		return UTF8.name
	}
	return c.name
}

// IsUTF8 reports whether the code page is UTF-8.
func (c CodePage) IsUTF8() bool {
	return c.enc == nil || c.enc == unicode.UTF8
}

// Lookup resolves a code page label. Matching is case-insensitive and
// ignores surrounding whitespace. An empty label means UTF-8.
func Lookup(label string) (CodePage, error) {
	key := strings.ToLower(strings.TrimSpace(label))
	if key == "" {
		return UTF8, nil
	}
	if e, ok := extraLabels[key]; ok {
		return CodePage{name: e.name, enc: e.enc}, nil
	}
	enc, err := htmlindex.Get(key)
	if err != nil {
		return CodePage{}, fmt.Errorf("%w: %q", ErrUnknownCodePage, label)
	}
	name, err := htmlindex.Name(enc)
	if err != nil {
		name = key
	}
	if enc == unicode.UTF8 {
		return UTF8, nil
	}
	// DBC syntax is ASCII; encodings that are not ASCII supersets cannot carry it.
	if strings.HasPrefix(name, "utf-16") || name == "replacement" {
		return CodePage{}, fmt.Errorf("%w: %q is not ASCII compatible", ErrUnknownCodePage, label)
	}
	return CodePage{name: name, enc: enc}, nil
}

// Replacement records an undecodable byte sequence that lossy decoding
// replaced with U+FFFD.
type Replacement struct {
	Offset int // byte offset in the input
	Len    int // number of input bytes replaced
}

// Diagnostics converts replacements into undecodable-bytes warnings.
func Diagnostics(reps []Replacement, cp CodePage) []types.Diagnostic {
	if len(reps) == 0 {
		return nil
	}
	out := make([]types.Diagnostic, 0, len(reps))
	for _, r := range reps {
		out = append(out, types.Diagnostic{
			Severity: types.SeverityWarning,
			Code:     types.DiagUndecodable,
			Message: fmt.Sprintf("%d byte(s) at offset %d have no mapping in %s, replaced with U+FFFD",
				r.Len, r.Offset, cp.Name()),
		})
	}
	return out
}

// Decoder converts input bytes to text.
type Decoder struct {
	CodePage CodePage
	Lossy    bool
	types.Logger
}

// Decode converts data to UTF-8 text. A leading UTF-8 byte order mark is
// stripped, and marks the rest of the input as UTF-8 whatever code page was
// requested.
//
// In strict mode the first undecodable sequence fails the conversion with a
// *dbc.EncodingError. In lossy mode each such sequence becomes U+FFFD and is
// reported as a Replacement.
func (d *Decoder) Decode(data []byte) (string, []Replacement, error) {
	cp := d.CodePage
	base := 0
	if bytes.HasPrefix(data, bom) {
		data = data[len(bom):]
		base = len(bom)
		if !cp.IsUTF8() {
			d.Log(slog.LevelDebug, "byte order mark overrides code page",
				slog.String("requested", cp.Name()))
		}
		cp = UTF8
	}

	if cp.IsUTF8() {
		if utf8.Valid(data) {
			return string(data), nil, nil
		}
		text, reps := decodeUTF8(data, base)
		return d.finish(text, reps, cp)
	}

	dec := cp.enc.NewDecoder()
	out, err := dec.Bytes(data)
	if err == nil && !bytes.ContainsRune(out, utf8.RuneError) {
		d.Log(slog.LevelDebug, "decoded",
			slog.String("codepage", cp.Name()),
			slog.Int("bytes", len(data)))
		return string(out), nil, nil
	}
	text, reps := decodeSlow(cp.enc, data, base)
	return d.finish(text, reps, cp)
}

func (d *Decoder) finish(text string, reps []Replacement, cp CodePage) (string, []Replacement, error) {
	if len(reps) == 0 {
		return text, nil, nil
	}
	if !d.Lossy {
		return "", nil, &dbc.EncodingError{Op: "decode", CodePage: cp.Name(), Offset: reps[0].Offset}
	}
	d.Log(slog.LevelDebug, "lossy decode",
		slog.String("codepage", cp.Name()),
		slog.Int("replacements", len(reps)))
	return text, reps, nil
}

func decodeUTF8(data []byte, base int) (string, []Replacement) {
	var b strings.Builder
	b.Grow(len(data))
	var reps []Replacement
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size <= 1 {
			reps = appendReplacement(reps, base+i)
			b.WriteRune(utf8.RuneError)
			i++
			continue
		}
		b.WriteRune(r)
		i += size
	}
	return b.String(), reps
}

// decodeSlow walks data one character at a time, trying the shortest byte
// sequence that decodes to a single character. Bytes that start no valid
// sequence are replaced individually.
func decodeSlow(enc encoding.Encoding, data []byte, base int) (string, []Replacement) {
	dec := enc.NewDecoder()
	var b strings.Builder
	b.Grow(len(data))
	var reps []Replacement
	for i := 0; i < len(data); {
		if data[i] < utf8.RuneSelf {
			b.WriteByte(data[i])
			i++
			continue
		}
		size := 0
		for n := 1; n <= 4 && i+n <= len(data); n++ {
			out, err := dec.Bytes(data[i : i+n])
			if err != nil {
				continue
			}
			r, rs := utf8.DecodeRune(out)
			if r != utf8.RuneError && rs == len(out) {
				b.Write(out)
				size = n
				break
			}
		}
		if size == 0 {
			reps = appendReplacement(reps, base+i)
			b.WriteRune(utf8.RuneError)
			size = 1
		}
		i += size
	}
	return b.String(), reps
}

// appendReplacement merges adjacent undecodable bytes into one replacement.
func appendReplacement(reps []Replacement, offset int) []Replacement {
	if n := len(reps); n > 0 && reps[n-1].Offset+reps[n-1].Len == offset {
		reps[n-1].Len++
		return reps
	}
	return append(reps, Replacement{Offset: offset, Len: 1})
}

// Encode converts text to the code page. The first character without a
// representation fails the conversion with a *dbc.EncodingError carrying the
// character and its byte position in text.
func Encode(text string, cp CodePage) ([]byte, error) {
	if cp.IsUTF8() {
		return []byte(text), nil
	}
	enc := cp.enc.NewEncoder()
	out, err := enc.String(text)
	if err == nil {
		return []byte(out), nil
	}
	for pos, r := range text {
		if _, rerr := enc.String(string(r)); rerr != nil {
			return nil, &dbc.EncodingError{Op: "encode", CodePage: cp.Name(), Char: r, Position: pos}
		}
	}
	return nil, fmt.Errorf("encode %s: %w", cp.Name(), err)
}

// Recode converts data from one code page to another. Decoding is strict.
func Recode(data []byte, from, to CodePage) ([]byte, error) {
	d := Decoder{CodePage: from}
	text, _, err := d.Decode(data)
	if err != nil {
		return nil, err
	}
	return Encode(text, to)
}
