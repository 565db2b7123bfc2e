// Package dbc defines the validated CAN database model: nodes, messages,
// bit-packed signals with their multiplexing roles, value tables,
// environment variables, comments and attributes.
//
// A *Database returned by the loader is an immutable snapshot. It may be
// read concurrently by any number of goroutines; callers must not modify it.
// Empty collections are always nil.
package dbc

import (
	"fmt"
	"slices"
)

// IndependentSignalsID is the pseudo message Vector tools use to hold
// signals that are not mapped to any frame (VECTOR__INDEPENDENT_SIG_MSG).
const IndependentSignalsID uint32 = 0xC0000000

// ExtendedIDFlag marks a 29-bit extended frame identifier.
const ExtendedIDFlag uint32 = 0x80000000

// Database is a validated DBC file.
type Database struct {
	Version              string
	NewSymbols           []string
	BitTiming            *BitTiming
	Nodes                []*Node
	ValueTables          []*ValueTable
	Messages             []*Message // ascending by ID
	EnvVars              []*EnvVar
	SignalTypes          []*SignalType
	Comment              string
	Attributes           []AttributeValue
	AttributeDefinitions []*AttributeDefinition
	RelationAttributes   []RelationAttribute

	sealed bool
}

// Seal marks db as a validated snapshot. It is called by the validator once
// every invariant has been checked; nothing else should call it.
func Seal(db *Database) *Database {
	db.sealed = true
	return db
}

// Validated reports whether db is a sealed, validated snapshot.
func (db *Database) Validated() bool {
	return db != nil && db.sealed
}

// BitTiming is the obsolete BS_ section payload.
type BitTiming struct {
	Baudrate uint64
	BTR1     uint64
	BTR2     uint64
}

// Node is a network participant (BU_).
type Node struct {
	Name       string
	Comment    string
	Attributes []AttributeValue
}

// ValueDescription maps a raw value to a label.
type ValueDescription struct {
	Value int64
	Label string
}

// ValueTable is a named, reusable set of value descriptions (VAL_TABLE_).
type ValueTable struct {
	Name    string
	Entries []ValueDescription
}

// Label returns the label for raw value v.
func (t *ValueTable) Label(v int64) (string, bool) {
	return lookupLabel(t.Entries, v)
}

// Message is a frame definition (BO_).
type Message struct {
	ID           uint32
	Name         string
	Size         uint32 // bytes
	Transmitter  string // empty when the file says Vector__XXX
	Transmitters []string
	Signals      []*Signal // declaration order
	SignalGroups []*SignalGroup
	Comment      string
	Attributes   []AttributeValue
}

// IsExtended reports whether the message uses a 29-bit identifier.
func (m *Message) IsExtended() bool {
	return m.ID&ExtendedIDFlag != 0
}

// FrameID returns the bus identifier with the extended flag removed.
func (m *Message) FrameID() uint32 {
	return m.ID &^ ExtendedIDFlag
}

// Signal returns the named signal, or nil.
func (m *Message) Signal(name string) *Signal {
	for _, s := range m.Signals {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// Switch returns the message's multiplexor switch when there is exactly one
// plain switch signal, or nil.
func (m *Message) Switch() *Signal {
	var found *Signal
	for _, s := range m.Signals {
		if s.Multiplex.Role == MuxSwitch {
			if found != nil {
				return nil
			}
			found = s
		}
	}
	return found
}

// ImpliedRange reports whether sig's extended multiplexing is exactly what
// its m<n> indicator gives: a single n-n range under the message's only
// switch.
func (m *Message) ImpliedRange(sig *Signal) bool {
	mux := sig.Multiplex
	if mux.Role != MuxExtended || len(mux.Ranges) != 1 {
		return false
	}
	sw := m.Switch()
	r := mux.Ranges[0]
	return sw != nil && mux.Switch == sw.Name && r.Min == r.Max && r.Min == mux.Value
}

// NeedsMuxValues reports whether sig must carry an SG_MUL_VAL_ entry to
// read back unchanged. A plain m<n> signal with an implied range still
// needs one when no other entry marks the message as extended-multiplexed.
func (m *Message) NeedsMuxValues(sig *Signal) bool {
	if sig.Multiplex.Role != MuxExtended {
		return false
	}
	if !m.ImpliedRange(sig) {
		return true
	}
	if sig.Multiplex.Selector {
		return false
	}
	for _, o := range m.Signals {
		if o.Multiplex.Role == MuxExtended && !m.ImpliedRange(o) {
			return false
		}
	}
	return true
}

// Attribute returns the value explicitly assigned to this message.
func (m *Message) Attribute(name string) (Value, bool) {
	return findAttribute(m.Attributes, name)
}

// Signal is a bit-packed field within a message (SG_).
type Signal struct {
	Name              string
	StartBit          uint32
	Size              uint32 // bits
	ByteOrder         ByteOrder
	ValueType         ValueType
	Factor            float64
	Offset            float64
	Min               float64
	Max               float64
	Unit              string
	Receivers         []string // empty when the file says Vector__XXX
	Multiplex         Multiplex
	Type              string // SIG_TYPE_REF_
	ValueDescriptions []ValueDescription
	Comment           string
	Attributes        []AttributeValue
}

// Physical converts a raw value with the signal's linear scale.
func (s *Signal) Physical(raw float64) float64 {
	return raw*s.Factor + s.Offset
}

// Label returns the value description for raw value v.
func (s *Signal) Label(v int64) (string, bool) {
	return lookupLabel(s.ValueDescriptions, v)
}

// Attribute returns the value explicitly assigned to this signal.
func (s *Signal) Attribute(name string) (Value, bool) {
	return findAttribute(s.Attributes, name)
}

// Multiplex is a signal's multiplexing role. Which fields are meaningful
// depends on Role:
//
//	MuxNone, MuxSwitch  no fields
//	MuxMultiplexed      Value
//	MuxExtended         Switch, Ranges, Selector
type Multiplex struct {
	Role     MuxRole
	Value    uint64
	Switch   string
	Ranges   []MuxRange
	Selector bool // an m<n>M signal, itself a switch for deeper levels
}

// IsSwitch reports whether other signals may name this one as their switch.
func (m Multiplex) IsSwitch() bool {
	return m.Role == MuxSwitch || (m.Role == MuxExtended && m.Selector)
}

// Selects reports whether the signal is present when its switch reads raw.
func (m Multiplex) Selects(raw uint64) bool {
	switch m.Role {
	case MuxMultiplexed:
		return m.Value == raw
	case MuxExtended:
		return slices.ContainsFunc(m.Ranges, func(r MuxRange) bool { return r.Contains(raw) })
	}
	return true
}

// MuxRange is an inclusive range of switch values.
type MuxRange struct {
	Min uint64
	Max uint64
}

// Contains reports whether v lies in the range.
func (r MuxRange) Contains(v uint64) bool {
	return v >= r.Min && v <= r.Max
}

// Overlaps reports whether the two ranges share at least one value.
func (r MuxRange) Overlaps(o MuxRange) bool {
	return r.Min <= o.Max && o.Min <= r.Max
}

// SignalGroup is a named set of signals of one message (SIG_GROUP_).
type SignalGroup struct {
	Name        string
	Repetitions uint32
	Signals     []string
}

// EnvVar is an environment variable (EV_).
type EnvVar struct {
	Name              string
	Type              EnvVarType
	Min               float64
	Max               float64
	Unit              string
	Initial           float64
	ID                uint32
	Access            EnvAccess
	Nodes             []string
	DataSize          uint32 // ENVVAR_DATA_, EnvData only
	ValueDescriptions []ValueDescription
	Comment           string
	Attributes        []AttributeValue
}

// SignalType is a reusable signal template (SGTYPE_).
type SignalType struct {
	Name       string
	Size       uint32
	ByteOrder  ByteOrder
	ValueType  ValueType
	Factor     float64
	Offset     float64
	Min        float64
	Max        float64
	Unit       string
	Default    float64
	ValueTable string
}

// Message returns the message with the given id, or nil.
func (db *Database) Message(id uint32) *Message {
	idx, ok := slices.BinarySearchFunc(db.Messages, id, func(m *Message, id uint32) int {
		switch {
		case m.ID < id:
			return -1
		case m.ID > id:
			return 1
		}
		return 0
	})
	if !ok {
		return nil
	}
	return db.Messages[idx]
}

// MessageByName returns the message with the given name, or nil.
func (db *Database) MessageByName(name string) *Message {
	for _, m := range db.Messages {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// Node returns the named node, or nil.
func (db *Database) Node(name string) *Node {
	for _, n := range db.Nodes {
		if n.Name == name {
			return n
		}
	}
	return nil
}

// EnvVar returns the named environment variable, or nil.
func (db *Database) EnvVar(name string) *EnvVar {
	for _, e := range db.EnvVars {
		if e.Name == name {
			return e
		}
	}
	return nil
}

// ValueTable returns the named value table, or nil.
func (db *Database) ValueTable(name string) *ValueTable {
	for _, t := range db.ValueTables {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// SignalType returns the named signal type, or nil.
func (db *Database) SignalType(name string) *SignalType {
	for _, t := range db.SignalTypes {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// AttributeDefinition returns the named attribute definition, or nil.
func (db *Database) AttributeDefinition(name string) *AttributeDefinition {
	for _, d := range db.AttributeDefinitions {
		if d.Name == name {
			return d
		}
	}
	return nil
}

// EffectiveAttribute returns the value of attribute name for the entity ref.
// A value assigned to the entity takes precedence over the definition's
// default. The second result is false when neither exists.
func (db *Database) EffectiveAttribute(ref Ref, name string) (Value, bool) {
	if attrs := db.attributesOf(ref); attrs != nil {
		if v, ok := findAttribute(attrs, name); ok {
			return v, true
		}
	}
	if ref.Kind.IsRelation() {
		for _, ra := range db.RelationAttributes {
			if ra.Name == name && ra.Ref() == ref {
				return ra.Value, true
			}
		}
	}
	if def := db.AttributeDefinition(name); def != nil && def.Object == ref.Kind && def.Default != nil {
		return *def.Default, true
	}
	return Value{}, false
}

func (db *Database) attributesOf(ref Ref) []AttributeValue {
	switch ref.Kind {
	case ObjectNetwork:
		return db.Attributes
	case ObjectNode:
		if n := db.Node(ref.Node); n != nil {
			return n.Attributes
		}
	case ObjectMessage:
		if m := db.Message(ref.MessageID); m != nil {
			return m.Attributes
		}
	case ObjectSignal:
		if m := db.Message(ref.MessageID); m != nil {
			if s := m.Signal(ref.Signal); s != nil {
				return s.Attributes
			}
		}
	case ObjectEnvVar:
		if e := db.EnvVar(ref.EnvVar); e != nil {
			return e.Attributes
		}
	}
	return nil
}

// Ref identifies an entity of the database: the network itself, a node,
// a message, a signal, an environment variable or a node relation.
type Ref struct {
	Kind      ObjectKind
	Node      string
	MessageID uint32
	Signal    string
	EnvVar    string
}

// NetworkRef returns a reference to the database itself.
func NetworkRef() Ref { return Ref{Kind: ObjectNetwork} }

// NodeRef returns a reference to a node.
func NodeRef(name string) Ref { return Ref{Kind: ObjectNode, Node: name} }

// MessageRef returns a reference to a message.
func MessageRef(id uint32) Ref { return Ref{Kind: ObjectMessage, MessageID: id} }

// SignalRef returns a reference to a signal.
func SignalRef(id uint32, name string) Ref {
	return Ref{Kind: ObjectSignal, MessageID: id, Signal: name}
}

// EnvVarRef returns a reference to an environment variable.
func EnvVarRef(name string) Ref { return Ref{Kind: ObjectEnvVar, EnvVar: name} }

// String renders the reference in DBC notation, e.g. "SG_ 100 RPM".
func (r Ref) String() string {
	switch r.Kind {
	case ObjectNetwork:
		return "network"
	case ObjectNode:
		return "BU_ " + r.Node
	case ObjectMessage:
		return fmt.Sprintf("BO_ %d", r.MessageID)
	case ObjectSignal:
		return fmt.Sprintf("SG_ %d %s", r.MessageID, r.Signal)
	case ObjectEnvVar:
		return "EV_ " + r.EnvVar
	case ObjectNodeEnvVar:
		return fmt.Sprintf("BU_EV_REL_ %s %s", r.Node, r.EnvVar)
	case ObjectNodeMessage:
		return fmt.Sprintf("BU_BO_REL_ %s %d", r.Node, r.MessageID)
	case ObjectNodeSignal:
		return fmt.Sprintf("BU_SG_REL_ %s SG_ %d %s", r.Node, r.MessageID, r.Signal)
	}
	return r.Kind.String()
}

func lookupLabel(entries []ValueDescription, v int64) (string, bool) {
	for _, e := range entries {
		if e.Value == v {
			return e.Label, true
		}
	}
	return "", false
}
