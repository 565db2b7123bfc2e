// Package ast holds the in-progress database built by the parser or by the
// document mapper. Every fragment keeps its source span. References between
// fragments are by id or name only; the resolver links them.
package ast

import (
	"github.com/golangcan/godbc/dbc"
	"github.com/golangcan/godbc/internal/types"
)

// Ident is a name with source location.
type Ident struct {
	Name string
	Span types.Span
}

// NewIdent creates a new identifier.
func NewIdent(name string, span types.Span) Ident {
	return Ident{Name: name, Span: span}
}

// File is the append-only collection of fragments read from one DBC
// source, in source order within each kind.
type File struct {
	Version    string
	NewSymbols []string
	BitTiming  *dbc.BitTiming
	Nodes      []Ident

	ValueTables       []ValueTable
	Messages          []Message
	Transmitters      []MessageTransmitters
	EnvVars           []EnvVar
	EnvVarData        []EnvVarData
	SignalTypes       []SignalType
	SignalTypeRefs    []SignalTypeRef
	Comments          []Comment
	AttributeDefs     []AttributeDef
	AttributeDefaults []AttributeDefault
	Attributes        []Attribute
	ValueDescriptions []ValueDescriptions
	SignalGroups      []SignalGroup
	SignalValueTypes  []SignalValueType
	MuxValues         []MuxValues

	Diagnostics []types.SpanDiagnostic
}

// ValueEntry is one raw value and label pair.
type ValueEntry struct {
	Value int64
	Label string
	Span  types.Span
}

// ValueTable is a VAL_TABLE_ statement.
type ValueTable struct {
	Name    Ident
	Entries []ValueEntry
	Span    types.Span
}

// Message is a BO_ statement with its SG_ lines.
type Message struct {
	ID          uint32
	Name        Ident
	Size        uint32
	Transmitter string // "" for Vector__XXX
	Signals     []Signal
	Span        types.Span
}

// MuxIndicator is the multiplexer field of an SG_ line.
type MuxIndicator struct {
	Switch      bool // trailing 'M'
	Multiplexed bool // leading 'm<n>'
	Value       uint64
}

// Signal is an SG_ line.
type Signal struct {
	Name      Ident
	Mux       MuxIndicator
	StartBit  uint32
	Size      uint32
	ByteOrder dbc.ByteOrder
	Signed    bool
	Factor    float64
	Offset    float64
	Min       float64
	Max       float64
	Unit      string
	Receivers []string // nil for Vector__XXX
	Span      types.Span
}

// MessageTransmitters is a BO_TX_BU_ statement.
type MessageTransmitters struct {
	MessageID    uint32
	Transmitters []string
	Span         types.Span
}

// EnvVar is an EV_ statement. AccessCode is the hexadecimal suffix of
// DUMMY_NODE_VECTOR; its 0x8000 bit marks a string variable.
type EnvVar struct {
	Name       Ident
	TypeCode   uint64
	Min        float64
	Max        float64
	Unit       string
	Initial    float64
	ID         uint32
	AccessCode uint64
	Nodes      []string
	Span       types.Span
}

// EnvVarData is an ENVVAR_DATA_ or EV_DATA_ statement.
type EnvVarData struct {
	Name string
	Size uint32
	Span types.Span
}

// SignalType is an SGTYPE_ statement.
type SignalType struct {
	Name       Ident
	Size       uint32
	ByteOrder  dbc.ByteOrder
	Signed     bool
	Factor     float64
	Offset     float64
	Min        float64
	Max        float64
	Unit       string
	Default    float64
	ValueTable string
	Span       types.Span
}

// SignalTypeRef is a SIG_TYPE_REF_ statement.
type SignalTypeRef struct {
	MessageID uint32
	Signal    string
	Type      string
	Span      types.Span
}

// Comment is a CM_ statement. Target.Kind is ObjectNetwork for the
// database comment.
type Comment struct {
	Target dbc.Ref
	Text   string
	Span   types.Span
}

// AttributeDef is a BA_DEF_ or BA_DEF_REL_ statement.
type AttributeDef struct {
	Name   Ident
	Object dbc.ObjectKind
	Type   dbc.AttributeType
	Span   types.Span
}

// AttributeDefault is a BA_DEF_DEF_ or BA_DEF_DEF_REL_ statement.
type AttributeDefault struct {
	Name  string
	Value dbc.Value
	Span  types.Span
}

// Attribute is a BA_ or BA_REL_ statement.
type Attribute struct {
	Name   string
	Target dbc.Ref
	Value  dbc.Value
	Span   types.Span
}

// ValueDescriptions is a VAL_ statement for a signal or an environment
// variable.
type ValueDescriptions struct {
	Target  dbc.Ref
	Entries []ValueEntry
	Span    types.Span
}

// SignalGroup is a SIG_GROUP_ statement.
type SignalGroup struct {
	MessageID   uint32
	Name        Ident
	Repetitions uint32
	Signals     []string
	Span        types.Span
}

// SignalValueType is a SIG_VALTYPE_ statement.
type SignalValueType struct {
	MessageID uint32
	Signal    string
	Code      uint64 // 0 integer, 1 IEEE float, 2 IEEE double
	Span      types.Span
}

// MuxValues is an SG_MUL_VAL_ statement.
type MuxValues struct {
	MessageID uint32
	Signal    string
	Switch    string
	Ranges    []dbc.MuxRange
	Span      types.Span
}
