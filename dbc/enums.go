package dbc

import "fmt"

// ByteOrder is the bit layout of a signal within the message payload.
type ByteOrder int

const (
	// LittleEndian is Intel byte order, written as '1'.
	LittleEndian ByteOrder = iota
	// BigEndian is Motorola byte order, written as '0'.
	BigEndian
)

func (b ByteOrder) String() string {
	switch b {
	case LittleEndian:
		return "little_endian"
	case BigEndian:
		return "big_endian"
	default:
		return fmt.Sprintf("ByteOrder(%d)", b)
	}
}

// ParseByteOrder returns the ByteOrder named by s, as produced by String.
func ParseByteOrder(s string) (ByteOrder, bool) {
	switch s {
	case "little_endian":
		return LittleEndian, true
	case "big_endian":
		return BigEndian, true
	}
	return 0, false
}

// ValueType is how the raw bits of a signal are interpreted.
type ValueType int

const (
	Unsigned ValueType = iota
	Signed
	Float32
	Float64
)

func (v ValueType) String() string {
	switch v {
	case Unsigned:
		return "unsigned"
	case Signed:
		return "signed"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	default:
		return fmt.Sprintf("ValueType(%d)", v)
	}
}

// IsFloat reports whether the raw value is an IEEE 754 float.
func (v ValueType) IsFloat() bool {
	return v == Float32 || v == Float64
}

// ParseValueType returns the ValueType named by s, as produced by String.
func ParseValueType(s string) (ValueType, bool) {
	switch s {
	case "unsigned":
		return Unsigned, true
	case "signed":
		return Signed, true
	case "float32":
		return Float32, true
	case "float64":
		return Float64, true
	}
	return 0, false
}

// MuxRole is the part a signal plays in message multiplexing.
type MuxRole int

const (
	// MuxNone is a plain signal, present in every frame.
	MuxNone MuxRole = iota
	// MuxSwitch selects which multiplexed siblings are present ('M').
	MuxSwitch
	// MuxMultiplexed is present when the message's switch equals Value ('m<n>').
	MuxMultiplexed
	// MuxExtended is present when the named switch falls in one of Ranges (SG_MUL_VAL_).
	MuxExtended
)

func (r MuxRole) String() string {
	switch r {
	case MuxNone:
		return "none"
	case MuxSwitch:
		return "switch"
	case MuxMultiplexed:
		return "multiplexed"
	case MuxExtended:
		return "extended"
	default:
		return fmt.Sprintf("MuxRole(%d)", r)
	}
}

// ParseMuxRole returns the MuxRole named by s, as produced by String.
func ParseMuxRole(s string) (MuxRole, bool) {
	switch s {
	case "", "none":
		return MuxNone, true
	case "switch":
		return MuxSwitch, true
	case "multiplexed":
		return MuxMultiplexed, true
	case "extended":
		return MuxExtended, true
	}
	return 0, false
}

// EnvVarType is the value type of an environment variable.
type EnvVarType int

const (
	EnvInteger EnvVarType = iota
	EnvFloat
	EnvString
	EnvData
)

func (t EnvVarType) String() string {
	switch t {
	case EnvInteger:
		return "integer"
	case EnvFloat:
		return "float"
	case EnvString:
		return "string"
	case EnvData:
		return "data"
	default:
		return fmt.Sprintf("EnvVarType(%d)", t)
	}
}

// ParseEnvVarType returns the EnvVarType named by s, as produced by String.
func ParseEnvVarType(s string) (EnvVarType, bool) {
	switch s {
	case "integer":
		return EnvInteger, true
	case "float":
		return EnvFloat, true
	case "string":
		return EnvString, true
	case "data":
		return EnvData, true
	}
	return 0, false
}

// EnvAccess is the access type of an environment variable
// (the low bits of DUMMY_NODE_VECTOR<n>).
type EnvAccess int

const (
	AccessUnrestricted EnvAccess = 0
	AccessRead         EnvAccess = 1
	AccessWrite        EnvAccess = 2
	AccessReadWrite    EnvAccess = 3
)

func (a EnvAccess) String() string {
	switch a {
	case AccessUnrestricted:
		return "unrestricted"
	case AccessRead:
		return "read"
	case AccessWrite:
		return "write"
	case AccessReadWrite:
		return "read_write"
	default:
		return fmt.Sprintf("EnvAccess(%d)", a)
	}
}

// ParseEnvAccess returns the EnvAccess named by s, as produced by String.
func ParseEnvAccess(s string) (EnvAccess, bool) {
	switch s {
	case "unrestricted":
		return AccessUnrestricted, true
	case "read":
		return AccessRead, true
	case "write":
		return AccessWrite, true
	case "read_write":
		return AccessReadWrite, true
	}
	return 0, false
}

// ObjectKind identifies the kind of entity an attribute or comment applies to.
type ObjectKind int

const (
	ObjectNetwork ObjectKind = iota
	ObjectNode
	ObjectMessage
	ObjectSignal
	ObjectEnvVar
	ObjectNodeEnvVar  // BU_EV_REL_
	ObjectNodeMessage // BU_BO_REL_
	ObjectNodeSignal  // BU_SG_REL_
)

func (k ObjectKind) String() string {
	switch k {
	case ObjectNetwork:
		return "network"
	case ObjectNode:
		return "node"
	case ObjectMessage:
		return "message"
	case ObjectSignal:
		return "signal"
	case ObjectEnvVar:
		return "env_var"
	case ObjectNodeEnvVar:
		return "node_env_var"
	case ObjectNodeMessage:
		return "node_message"
	case ObjectNodeSignal:
		return "node_signal"
	default:
		return fmt.Sprintf("ObjectKind(%d)", k)
	}
}

// IsRelation reports whether the kind is a node relation (BA_DEF_REL_).
func (k ObjectKind) IsRelation() bool {
	return k >= ObjectNodeEnvVar
}

// ParseObjectKind returns the ObjectKind named by s, as produced by String.
func ParseObjectKind(s string) (ObjectKind, bool) {
	for k := ObjectNetwork; k <= ObjectNodeSignal; k++ {
		if k.String() == s {
			return k, true
		}
	}
	return 0, false
}

// AttributeKind is the value domain of an attribute definition.
type AttributeKind int

const (
	AttrInt AttributeKind = iota
	AttrHex
	AttrFloat
	AttrString
	AttrEnum
)

func (k AttributeKind) String() string {
	switch k {
	case AttrInt:
		return "INT"
	case AttrHex:
		return "HEX"
	case AttrFloat:
		return "FLOAT"
	case AttrString:
		return "STRING"
	case AttrEnum:
		return "ENUM"
	default:
		return fmt.Sprintf("AttributeKind(%d)", k)
	}
}

// ParseAttributeKind returns the AttributeKind for a DBC type keyword.
func ParseAttributeKind(s string) (AttributeKind, bool) {
	for k := AttrInt; k <= AttrEnum; k++ {
		if k.String() == s {
			return k, true
		}
	}
	return 0, false
}

// ValueKind is the shape of an attribute value.
type ValueKind int

const (
	ValueInt ValueKind = iota
	ValueFloat
	ValueString
)

func (k ValueKind) String() string {
	switch k {
	case ValueInt:
		return "int"
	case ValueFloat:
		return "float"
	case ValueString:
		return "string"
	default:
		return fmt.Sprintf("ValueKind(%d)", k)
	}
}
