package dbc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBitSpan(t *testing.T) {
	tests := []struct {
		name      string
		sig       Signal
		size      uint32
		wantFirst uint64
		wantEnd   uint64
		fits      bool
	}{
		{"intel byte 0", Signal{StartBit: 0, Size: 8}, 1, 0, 8, true},
		{"intel overflow", Signal{StartBit: 60, Size: 8}, 1, 60, 68, false},
		{"intel full frame", Signal{StartBit: 0, Size: 64}, 8, 0, 64, true},
		{"motorola msb of byte 0", Signal{StartBit: 7, Size: 8, ByteOrder: BigEndian}, 1, 0, 8, true},
		{"motorola crosses bytes", Signal{StartBit: 7, Size: 16, ByteOrder: BigEndian}, 2, 0, 16, true},
		{"motorola overflow", Signal{StartBit: 0, Size: 2, ByteOrder: BigEndian}, 1, 7, 9, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, end := tt.sig.BitSpan()
			require.Equal(t, tt.wantFirst, first)
			require.Equal(t, tt.wantEnd, end)
			require.Equal(t, tt.fits, tt.sig.FitsIn(tt.size))
		})
	}
}

func TestSignalOverlaps(t *testing.T) {
	a := &Signal{StartBit: 0, Size: 8}
	b := &Signal{StartBit: 8, Size: 8}
	c := &Signal{StartBit: 7, Size: 8, ByteOrder: BigEndian}
	require.False(t, a.Overlaps(b))
	require.True(t, a.Overlaps(c))
	require.False(t, b.Overlaps(c))
}

func TestMultiplexSelects(t *testing.T) {
	m := Multiplex{Role: MuxMultiplexed, Value: 3}
	require.True(t, m.Selects(3))
	require.False(t, m.Selects(4))

	ext := Multiplex{Role: MuxExtended, Switch: "Mode", Ranges: []MuxRange{{1, 2}, {5, 9}}}
	require.True(t, ext.Selects(7))
	require.False(t, ext.Selects(3))
	require.True(t, Multiplex{}.Selects(42))

	require.True(t, MuxRange{1, 3}.Overlaps(MuxRange{3, 4}))
	require.False(t, MuxRange{1, 2}.Overlaps(MuxRange{3, 4}))
}

func TestLookups(t *testing.T) {
	rpm := &Signal{Name: "RPM"}
	db := &Database{
		Nodes:    []*Node{{Name: "ECU"}},
		Messages: []*Message{{ID: 1, Name: "A"}, {ID: 100, Name: "Engine", Signals: []*Signal{rpm}}, {ID: 0x80000123, Name: "Ext"}},
		AttributeDefinitions: []*AttributeDefinition{{
			Name:    "GenMsgCycleTime",
			Object:  ObjectMessage,
			Type:    AttributeType{Kind: AttrInt, IntMin: 0, IntMax: 1000},
			Default: &Value{Kind: ValueInt, Int: 100},
		}},
	}
	db.Messages[1].Attributes = []AttributeValue{{Name: "GenMsgCycleTime", Value: IntValue(10)}}

	require.Equal(t, "Engine", db.Message(100).Name)
	require.Nil(t, db.Message(2))
	require.Equal(t, uint32(100), db.MessageByName("Engine").ID)
	require.Same(t, rpm, db.Message(100).Signal("RPM"))
	require.NotNil(t, db.Node("ECU"))
	require.True(t, db.Message(0x80000123).IsExtended())
	require.Equal(t, uint32(0x123), db.Message(0x80000123).FrameID())

	v, ok := db.EffectiveAttribute(MessageRef(100), "GenMsgCycleTime")
	require.True(t, ok)
	require.Equal(t, IntValue(10), v)

	v, ok = db.EffectiveAttribute(MessageRef(1), "GenMsgCycleTime")
	require.True(t, ok)
	require.Equal(t, IntValue(100), v)

	_, ok = db.EffectiveAttribute(NodeRef("ECU"), "GenMsgCycleTime")
	require.False(t, ok)
}

func TestRefString(t *testing.T) {
	require.Equal(t, "BO_ 100", MessageRef(100).String())
	require.Equal(t, "SG_ 100 RPM", SignalRef(100, "RPM").String())
	require.Equal(t, "BU_ ECU", NodeRef("ECU").String())
	require.Equal(t, "network", NetworkRef().String())
}

func TestAttributeNormalize(t *testing.T) {
	intType := AttributeType{Kind: AttrInt, IntMin: 0, IntMax: 10}
	v, ok := intType.Normalize(FloatValue(5))
	require.True(t, ok)
	require.Equal(t, IntValue(5), v)
	_, ok = intType.Normalize(IntValue(11))
	require.False(t, ok)
	_, ok = intType.Normalize(FloatValue(2.5))
	require.False(t, ok)

	unbounded := AttributeType{Kind: AttrInt}
	_, ok = unbounded.Normalize(IntValue(-99999))
	require.True(t, ok)

	floatType := AttributeType{Kind: AttrFloat, FloatMin: -1, FloatMax: 1}
	v, ok = floatType.Normalize(IntValue(1))
	require.True(t, ok)
	require.Equal(t, FloatValue(1), v)

	enumType := AttributeType{Kind: AttrEnum, Enum: []string{"No", "Yes"}}
	_, ok = enumType.Normalize(IntValue(1))
	require.True(t, ok)
	_, ok = enumType.Normalize(StringValue("Yes"))
	require.True(t, ok)
	_, ok = enumType.Normalize(IntValue(2))
	require.False(t, ok)
	label, ok := enumType.Label(IntValue(1))
	require.True(t, ok)
	require.Equal(t, "Yes", label)

	strType := AttributeType{Kind: AttrString}
	_, ok = strType.Normalize(IntValue(1))
	require.False(t, ok)
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Code: DiagDuplicateMessageID, Entity: MessageRef(100), Message: "message id 100 declared twice"}
	require.Equal(t, "duplicate-message-id: BO_ 100: message id 100 declared twice", err.Error())
}
