package dbc

import (
	"math"
	"slices"
	"strconv"
)

// Value is an attribute value: an integer, a float or a string.
type Value struct {
	Kind   ValueKind
	Int    int64
	Float  float64
	String string
}

// IntValue returns an integer Value.
func IntValue(v int64) Value { return Value{Kind: ValueInt, Int: v} }

// FloatValue returns a float Value.
func FloatValue(v float64) Value { return Value{Kind: ValueFloat, Float: v} }

// StringValue returns a string Value.
func StringValue(s string) Value { return Value{Kind: ValueString, String: s} }

// Number returns the numeric value and whether the value is numeric.
func (v Value) Number() (float64, bool) {
	switch v.Kind {
	case ValueInt:
		return float64(v.Int), true
	case ValueFloat:
		return v.Float, true
	}
	return 0, false
}

func (v Value) GoString() string {
	switch v.Kind {
	case ValueInt:
		return strconv.FormatInt(v.Int, 10)
	case ValueFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	default:
		return strconv.Quote(v.String)
	}
}

// AttributeType is the value domain declared by BA_DEF_.
type AttributeType struct {
	Kind     AttributeKind
	IntMin   int64    // AttrInt, AttrHex
	IntMax   int64    // AttrInt, AttrHex
	FloatMin float64  // AttrFloat
	FloatMax float64  // AttrFloat
	Enum     []string // AttrEnum
}

// Bounded reports whether a numeric domain restricts its values.
// DBC editors write "0 0" for an unrestricted range.
func (t AttributeType) Bounded() bool {
	switch t.Kind {
	case AttrInt, AttrHex:
		return t.IntMin != 0 || t.IntMax != 0
	case AttrFloat:
		return t.FloatMin != 0 || t.FloatMax != 0
	}
	return false
}

// Normalize converts v to the canonical shape for the domain and reports
// whether v conforms to it. Integers are widened to floats in FLOAT domains,
// integral floats narrowed in INT and HEX domains, and ENUM values may be
// given by index or by label.
func (t AttributeType) Normalize(v Value) (Value, bool) {
	switch t.Kind {
	case AttrInt, AttrHex:
		n, ok := asInt(v)
		if !ok {
			return v, false
		}
		if t.Bounded() && (n < t.IntMin || n > t.IntMax) {
			return v, false
		}
		return IntValue(n), true
	case AttrFloat:
		f, ok := v.Number()
		if !ok {
			return v, false
		}
		if t.Bounded() && (f < t.FloatMin || f > t.FloatMax) {
			return v, false
		}
		return FloatValue(f), true
	case AttrString:
		if v.Kind != ValueString {
			return v, false
		}
		return v, true
	case AttrEnum:
		if v.Kind == ValueString {
			return v, slices.Contains(t.Enum, v.String)
		}
		n, ok := asInt(v)
		if !ok || n < 0 || n >= int64(len(t.Enum)) {
			return v, false
		}
		return IntValue(n), true
	}
	return v, false
}

// Label returns the enum label for v, if the domain is an ENUM.
func (t AttributeType) Label(v Value) (string, bool) {
	if t.Kind != AttrEnum {
		return "", false
	}
	if v.Kind == ValueString {
		return v.String, slices.Contains(t.Enum, v.String)
	}
	n, ok := asInt(v)
	if !ok || n < 0 || n >= int64(len(t.Enum)) {
		return "", false
	}
	return t.Enum[n], true
}

func asInt(v Value) (int64, bool) {
	switch v.Kind {
	case ValueInt:
		return v.Int, true
	case ValueFloat:
		if v.Float != math.Trunc(v.Float) || math.Abs(v.Float) > 1<<53 {
			return 0, false
		}
		return int64(v.Float), true
	}
	return 0, false
}

// AttributeDefinition is a BA_DEF_ or BA_DEF_REL_ declaration together with
// its BA_DEF_DEF_ default, if any.
type AttributeDefinition struct {
	Name    string
	Object  ObjectKind
	Type    AttributeType
	Default *Value
}

// AttributeValue is an attribute assigned to a single entity (BA_).
type AttributeValue struct {
	Name  string
	Value Value
}

// RelationAttribute is an attribute assigned to a node relation (BA_REL_).
type RelationAttribute struct {
	Name      string
	Object    ObjectKind // ObjectNodeEnvVar, ObjectNodeMessage or ObjectNodeSignal
	Node      string
	MessageID uint32 // ObjectNodeMessage, ObjectNodeSignal
	Signal    string // ObjectNodeSignal
	EnvVar    string // ObjectNodeEnvVar
	Value     Value
}

// Ref returns a reference to the related entity.
func (r RelationAttribute) Ref() Ref {
	return Ref{Kind: r.Object, Node: r.Node, MessageID: r.MessageID, Signal: r.Signal, EnvVar: r.EnvVar}
}

func findAttribute(attrs []AttributeValue, name string) (Value, bool) {
	for _, a := range attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return Value{}, false
}
