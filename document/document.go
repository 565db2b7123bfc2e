// Package document maps a validated database to and from a structured
// document that serializes as JSON or YAML.
//
// Every field of the database model has exactly one document key, in
// lowerCamelCase. Messages are ordered by id; signals, nodes, value tables,
// environment variables and attribute lists keep their declaration order.
// Enumerated fields (byte order, value type, multiplex role, object kind)
// are written with the names produced by their String methods.
//
// Decoding a document goes through the same validator as DBC text, so a
// document can never produce a database that the text path would reject:
//
//	doc, err := document.FromDatabase(db)
//	data, err := document.Marshal(doc, document.FormatJSON, 2)
//	...
//	doc, err = document.Unmarshal(data, document.FormatJSON)
//	db, diags, err := document.ToDatabase(doc, document.Options{})
package document

// Document is the structured form of a database.
type Document struct {
	Version              string                `json:"version,omitempty" yaml:"version,omitempty"`
	NewSymbols           []string              `json:"newSymbols,omitempty" yaml:"newSymbols,omitempty"`
	BitTiming            *BitTiming            `json:"bitTiming,omitempty" yaml:"bitTiming,omitempty"`
	Nodes                []Node                `json:"nodes,omitempty" yaml:"nodes,omitempty"`
	ValueTables          []ValueTable          `json:"valueTables,omitempty" yaml:"valueTables,omitempty"`
	Messages             []Message             `json:"messages,omitempty" yaml:"messages,omitempty"`
	EnvVars              []EnvVar              `json:"envVars,omitempty" yaml:"envVars,omitempty"`
	SignalTypes          []SignalType          `json:"signalTypes,omitempty" yaml:"signalTypes,omitempty"`
	Comment              string                `json:"comment,omitempty" yaml:"comment,omitempty"`
	Attributes           []Attribute           `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	AttributeDefinitions []AttributeDefinition `json:"attributeDefinitions,omitempty" yaml:"attributeDefinitions,omitempty"`
	RelationAttributes   []RelationAttribute   `json:"relationAttributes,omitempty" yaml:"relationAttributes,omitempty"`
}

// BitTiming holds the obsolete BS_ values.
type BitTiming struct {
	Baudrate uint64 `json:"baudrate" yaml:"baudrate"`
	BTR1     uint64 `json:"btr1" yaml:"btr1"`
	BTR2     uint64 `json:"btr2" yaml:"btr2"`
}

// Node holds a network participant.
type Node struct {
	Name       string      `json:"name" yaml:"name"`
	Comment    string      `json:"comment,omitempty" yaml:"comment,omitempty"`
	Attributes []Attribute `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// ValueDescription holds a raw value and its label.
type ValueDescription struct {
	Value int64  `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// ValueTable holds a named value table.
type ValueTable struct {
	Name    string             `json:"name" yaml:"name"`
	Entries []ValueDescription `json:"entries,omitempty" yaml:"entries,omitempty"`
}

// Message holds a frame definition. Length is in bytes.
type Message struct {
	ID           uint32        `json:"id" yaml:"id"`
	Name         string        `json:"name" yaml:"name"`
	Length       uint32        `json:"length" yaml:"length"`
	Transmitter  string        `json:"transmitter,omitempty" yaml:"transmitter,omitempty"`
	Transmitters []string      `json:"transmitters,omitempty" yaml:"transmitters,omitempty"`
	Signals      []Signal      `json:"signals,omitempty" yaml:"signals,omitempty"`
	SignalGroups []SignalGroup `json:"signalGroups,omitempty" yaml:"signalGroups,omitempty"`
	Comment      string        `json:"comment,omitempty" yaml:"comment,omitempty"`
	Attributes   []Attribute   `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// Signal holds a bit-packed field. Start and Length are in bits.
type Signal struct {
	Name              string             `json:"name" yaml:"name"`
	Start             uint32             `json:"start" yaml:"start"`
	Length            uint32             `json:"length" yaml:"length"`
	ByteOrder         string             `json:"byteOrder" yaml:"byteOrder"`
	ValueType         string             `json:"valueType" yaml:"valueType"`
	Factor            float64            `json:"factor" yaml:"factor"`
	Offset            float64            `json:"offset" yaml:"offset"`
	Min               float64            `json:"min" yaml:"min"`
	Max               float64            `json:"max" yaml:"max"`
	Unit              string             `json:"unit" yaml:"unit"`
	Receivers         []string           `json:"receivers,omitempty" yaml:"receivers,omitempty"`
	Multiplex         *Multiplex         `json:"multiplex,omitempty" yaml:"multiplex,omitempty"`
	Type              string             `json:"type,omitempty" yaml:"type,omitempty"`
	ValueDescriptions []ValueDescription `json:"valueDescriptions,omitempty" yaml:"valueDescriptions,omitempty"`
	Comment           string             `json:"comment,omitempty" yaml:"comment,omitempty"`
	Attributes        []Attribute        `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// Multiplex holds a signal's multiplexing role. Plain signals omit it.
type Multiplex struct {
	Role     string  `json:"role" yaml:"role"`
	Value    uint64  `json:"value,omitempty" yaml:"value,omitempty"`
	Switch   string  `json:"switch,omitempty" yaml:"switch,omitempty"`
	Ranges   []Range `json:"ranges,omitempty" yaml:"ranges,omitempty"`
	Selector bool    `json:"selector,omitempty" yaml:"selector,omitempty"`
}

// Range holds an inclusive range of switch values.
type Range struct {
	Min uint64 `json:"min" yaml:"min"`
	Max uint64 `json:"max" yaml:"max"`
}

// SignalGroup holds a named set of signals of one message.
type SignalGroup struct {
	Name        string   `json:"name" yaml:"name"`
	Repetitions uint32   `json:"repetitions" yaml:"repetitions"`
	Signals     []string `json:"signals,omitempty" yaml:"signals,omitempty"`
}

// EnvVar holds an environment variable.
type EnvVar struct {
	Name              string             `json:"name" yaml:"name"`
	Type              string             `json:"type" yaml:"type"`
	Min               float64            `json:"min" yaml:"min"`
	Max               float64            `json:"max" yaml:"max"`
	Unit              string             `json:"unit" yaml:"unit"`
	Initial           float64            `json:"initial" yaml:"initial"`
	ID                uint32             `json:"id" yaml:"id"`
	Access            string             `json:"access" yaml:"access"`
	Nodes             []string           `json:"nodes,omitempty" yaml:"nodes,omitempty"`
	DataSize          uint32             `json:"dataSize,omitempty" yaml:"dataSize,omitempty"`
	ValueDescriptions []ValueDescription `json:"valueDescriptions,omitempty" yaml:"valueDescriptions,omitempty"`
	Comment           string             `json:"comment,omitempty" yaml:"comment,omitempty"`
	Attributes        []Attribute        `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// SignalType holds a reusable signal template.
type SignalType struct {
	Name       string  `json:"name" yaml:"name"`
	Length     uint32  `json:"length" yaml:"length"`
	ByteOrder  string  `json:"byteOrder" yaml:"byteOrder"`
	ValueType  string  `json:"valueType" yaml:"valueType"`
	Factor     float64 `json:"factor" yaml:"factor"`
	Offset     float64 `json:"offset" yaml:"offset"`
	Min        float64 `json:"min" yaml:"min"`
	Max        float64 `json:"max" yaml:"max"`
	Unit       string  `json:"unit" yaml:"unit"`
	Default    float64 `json:"default" yaml:"default"`
	ValueTable string  `json:"valueTable,omitempty" yaml:"valueTable,omitempty"`
}

// Attribute holds an attribute value assigned to one entity.
type Attribute struct {
	Name  string `json:"name" yaml:"name"`
	Value Scalar `json:"value" yaml:"value"`
}

// AttributeDefinition holds an attribute declaration. Min and Max are
// omitted for unbounded numeric domains.
type AttributeDefinition struct {
	Name    string   `json:"name" yaml:"name"`
	Object  string   `json:"object" yaml:"object"`
	Type    string   `json:"type" yaml:"type"`
	Min     *Scalar  `json:"min,omitempty" yaml:"min,omitempty"`
	Max     *Scalar  `json:"max,omitempty" yaml:"max,omitempty"`
	Enum    []string `json:"enum,omitempty" yaml:"enum,omitempty"`
	Default *Scalar  `json:"default,omitempty" yaml:"default,omitempty"`
}

// RelationAttribute holds an attribute value assigned to a node relation.
type RelationAttribute struct {
	Name      string `json:"name" yaml:"name"`
	Object    string `json:"object" yaml:"object"`
	Node      string `json:"node" yaml:"node"`
	MessageID uint32 `json:"messageId,omitempty" yaml:"messageId,omitempty"`
	Signal    string `json:"signal,omitempty" yaml:"signal,omitempty"`
	EnvVar    string `json:"envVar,omitempty" yaml:"envVar,omitempty"`
	Value     Scalar `json:"value" yaml:"value"`
}
