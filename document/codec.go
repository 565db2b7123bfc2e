package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/golangcan/godbc/dbc"
)

// Format selects the serialization of a document.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	default:
		return fmt.Sprintf("Format(%d)", f)
	}
}

// ParseFormat returns the Format named by s ("json", "yaml" or "yml").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return 0, fmt.Errorf("unknown document format %q", s)
}

// ErrInvalidDocument is returned for documents that cannot be decoded or
// that name values outside the model's enumerations.
var ErrInvalidDocument = errors.New("invalid document")

// Marshal serializes doc. indent is the number of spaces per nesting level;
// zero produces compact JSON and the encoder's default YAML indentation.
func Marshal(doc *Document, format Format, indent int) ([]byte, error) {
	switch format {
	case FormatJSON:
		var (
			data []byte
			err  error
		)
		if indent > 0 {
			data, err = json.MarshalIndent(doc, "", strings.Repeat(" ", indent))
		} else {
			data, err = json.Marshal(doc)
		}
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		if indent > 0 {
			enc.SetIndent(indent)
		}
		if err := enc.Encode(doc); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("unknown document format %s", format)
}

// Unmarshal parses a serialized document. Unknown keys are rejected.
func Unmarshal(data []byte, format Format) (*Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrInvalidDocument)
	}
	doc := new(Document)
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(doc); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(doc); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
		}
	default:
		return nil, fmt.Errorf("unknown document format %s", format)
	}
	return doc, nil
}

// Scalar is an attribute value: a number or a string. Integers are carried
// exactly; floats always serialize with a fraction or exponent so that the
// two stay distinct.
type Scalar dbc.Value

// Value returns the model value.
func (s Scalar) Value() dbc.Value { return dbc.Value(s) }

func (s Scalar) MarshalJSON() ([]byte, error) {
	switch s.Kind {
	case dbc.ValueInt:
		return strconv.AppendInt(nil, s.Int, 10), nil
	case dbc.ValueFloat:
		if math.IsNaN(s.Float) || math.IsInf(s.Float, 0) {
			return nil, fmt.Errorf("attribute value %v has no JSON representation", s.Float)
		}
		return []byte(formatFloat(s.Float)), nil
	}
	return json.Marshal(s.String)
}

func (s *Scalar) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}
	switch v := v.(type) {
	case string:
		*s = Scalar(dbc.StringValue(v))
		return nil
	case json.Number:
		return s.setNumber(v.String())
	}
	return fmt.Errorf("attribute value must be a number or a string, got %s", data)
}

func (s Scalar) MarshalYAML() (any, error) {
	switch s.Kind {
	case dbc.ValueInt:
		return s.Int, nil
	case dbc.ValueFloat:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: formatFloat(s.Float)}, nil
	}
	return s.String, nil
}

func (s *Scalar) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: attribute value must be a number or a string", node.Line)
	}
	switch node.ShortTag() {
	case "!!str":
		*s = Scalar(dbc.StringValue(node.Value))
		return nil
	case "!!int":
		var n int64
		if err := node.Decode(&n); err == nil {
			*s = Scalar(dbc.IntValue(n))
			return nil
		}
		fallthrough
	case "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return err
		}
		*s = Scalar(dbc.FloatValue(f))
		return nil
	}
	return fmt.Errorf("line %d: attribute value must be a number or a string, got %s", node.Line, node.ShortTag())
}

func (s *Scalar) setNumber(text string) error {
	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		*s = Scalar(dbc.IntValue(n))
		return nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return fmt.Errorf("invalid number %q: %w", text, err)
	}
	*s = Scalar(dbc.FloatValue(f))
	return nil
}

func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}
