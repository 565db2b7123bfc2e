package integration

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/golangcan/godbc/dbc"
)

func TestSignalLayout(t *testing.T) {
	tests := []struct {
		file, message, signal string
		start, size           uint32
		order                 dbc.ByteOrder
		valueType             dbc.ValueType
		factor, offset        float64
		min, max              float64
		unit                  string
		receivers             []string
	}{
		{"powertrain.dbc", "ECM_Engine1", "EngineSpeed", 0, 16, dbc.LittleEndian, dbc.Unsigned, 0.125, 0, 0, 8191.875, "rpm", []string{"TCM", "ABS", "Gateway"}},
		{"powertrain.dbc", "ECM_Engine1", "EngineTorque", 39, 12, dbc.BigEndian, dbc.Signed, 0.5, 0, -1024, 1023.5, "Nm", []string{"TCM"}},
		{"powertrain.dbc", "TCM_Status", "ShiftActive", 6, 1, dbc.LittleEndian, dbc.Unsigned, 1, 0, 0, 1, "", []string{"ECM"}},
		{"chassis.dbc", "ESP_Dynamics", "YawRate", 0, 32, dbc.LittleEndian, dbc.Float32, 1, 0, -200, 200, "deg/s", []string{"Cluster"}},
		{"chassis.dbc", "Cluster_Odometer", "Odometer", 0, 64, dbc.LittleEndian, dbc.Float64, 1, 0, 0, 0, "km", []string{"ABS"}},
		{"body.dbc", "BCM_Climate", "CabinTemp", 0, 8, dbc.LittleEndian, dbc.Unsigned, 0.5, -40, -40, 87.5, "°C", []string{"Cluster"}},
	}
	for _, tt := range tests {
		t.Run(tt.signal, func(t *testing.T) {
			sig := getSignal(t, tt.file, tt.message, tt.signal)
			require.Equal(t, tt.start, sig.StartBit)
			require.Equal(t, tt.size, sig.Size)
			require.Equal(t, tt.order, sig.ByteOrder)
			require.Equal(t, tt.valueType, sig.ValueType)
			require.Equal(t, tt.factor, sig.Factor)
			require.Equal(t, tt.offset, sig.Offset)
			require.Equal(t, tt.min, sig.Min)
			require.Equal(t, tt.max, sig.Max)
			require.Equal(t, tt.unit, sig.Unit)
			require.Equal(t, tt.receivers, sig.Receivers)
		})
	}
}

func TestBigEndianBitSpan(t *testing.T) {
	sig := getSignal(t, "powertrain.dbc", "ECM_Engine1", "EngineTorque")
	require.True(t, sig.FitsIn(8))
	require.False(t, sig.FitsIn(5))
}

func TestMultiplexing(t *testing.T) {
	db := getFile(t, "powertrain.dbc").Database
	msg := db.MessageByName("OBD_Response")
	require.NotNil(t, msg)
	require.True(t, msg.IsExtended())
	require.Equal(t, uint32(0x18DAF110), msg.FrameID())

	tests := []struct {
		signal string
		want   dbc.Multiplex
	}{
		{"Service", dbc.Multiplex{Role: dbc.MuxSwitch}},
		{"Pid", dbc.Multiplex{Role: dbc.MuxExtended, Value: 1, Switch: "Service", Selector: true,
			Ranges: []dbc.MuxRange{{Min: 1, Max: 1}}}},
		{"VehicleSpeed", dbc.Multiplex{Role: dbc.MuxExtended, Value: 13, Switch: "Pid",
			Ranges: []dbc.MuxRange{{Min: 13, Max: 13}}}},
		{"IntakeTemp", dbc.Multiplex{Role: dbc.MuxExtended, Value: 15, Switch: "Pid",
			Ranges: []dbc.MuxRange{{Min: 15, Max: 15}}}},
		{"DtcCount", dbc.Multiplex{Role: dbc.MuxExtended, Value: 3, Switch: "Service",
			Ranges: []dbc.MuxRange{{Min: 3, Max: 3}}}},
	}
	for _, tt := range tests {
		t.Run(tt.signal, func(t *testing.T) {
			require.Equal(t, tt.want, msg.Signal(tt.signal).Multiplex)
		})
	}

	require.True(t, msg.Signal("VehicleSpeed").Multiplex.Selects(13))
	require.False(t, msg.Signal("VehicleSpeed").Multiplex.Selects(15))
}

func TestAttributes(t *testing.T) {
	db := getFile(t, "powertrain.dbc").Database

	tests := []struct {
		name string
		ref  dbc.Ref
		attr string
		want dbc.Value
	}{
		{"network", dbc.NetworkRef(), "BusType", dbc.StringValue("CAN")},
		{"explicit cycle", dbc.MessageRef(256), "GenMsgCycleTime", dbc.IntValue(10)},
		{"default cycle", dbc.MessageRef(0x80000000 | 0x18DAF110), "GenMsgCycleTime", dbc.IntValue(0)},
		{"enum by index", dbc.MessageRef(0x80000000 | 0x18DAF110), "GenMsgSendType", dbc.IntValue(1)},
		{"enum default by label", dbc.MessageRef(256), "GenMsgSendType", dbc.StringValue("Cyclic")},
		{"hex", dbc.NodeRef("ECM"), "NmStationAddress", dbc.IntValue(16)},
		{"float widened", dbc.SignalRef(256, "CoolantTemp"), "GenSigStartValue", dbc.FloatValue(40)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := db.EffectiveAttribute(tt.ref, tt.attr)
			require.True(t, ok)
			require.Equal(t, tt.want, got)
		})
	}

	def := db.AttributeDefinition("GenMsgSendType")
	require.NotNil(t, def)
	label, ok := def.Type.Label(dbc.IntValue(1))
	require.True(t, ok)
	require.Equal(t, "Event", label)
}

func TestCommentsAndValueDescriptions(t *testing.T) {
	db := getFile(t, "powertrain.dbc").Database
	require.Equal(t, "Powertrain CAN, 500 kbit/s", db.Comment)
	require.Equal(t, "Transmission control module", db.Node("TCM").Comment)
	require.Equal(t, "Engine status, sent every 10 ms", db.Message(256).Comment)

	gear := getSignal(t, "powertrain.dbc", "TCM_Status", "GearActual")
	label, ok := gear.Label(7)
	require.True(t, ok)
	require.Equal(t, "Invalid", label)

	table := db.ValueTable("GearPosition")
	require.NotNil(t, table)
	label, ok = table.Label(3)
	require.True(t, ok)
	require.Equal(t, "Drive", label)

	body := getFile(t, "body.dbc").Database
	require.Equal(t, "Türsteuergerät", body.Node("BCM").Comment)
}

func TestChassisExtras(t *testing.T) {
	db := getFile(t, "chassis.dbc").Database

	wheels := db.Message(512)
	require.Equal(t, []string{"ABS", "ESP"}, wheels.Transmitters)
	require.Len(t, wheels.SignalGroups, 1)
	require.Equal(t, []string{"WheelSpeedFL", "WheelSpeedFR"}, wheels.SignalGroups[0].Signals)
	require.Equal(t, "WheelSpeed", wheels.Signal("WheelSpeedFL").Type)

	st := db.SignalType("WheelSpeed")
	require.NotNil(t, st)
	require.Equal(t, "Validity", st.ValueTable)

	tests := []struct {
		name   string
		typ    dbc.EnvVarType
		access dbc.EnvAccess
	}{
		{"ServiceMode", dbc.EnvInteger, dbc.AccessUnrestricted},
		{"CalibrationFactor", dbc.EnvFloat, dbc.AccessReadWrite},
		{"VariantCode", dbc.EnvString, dbc.AccessRead},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := db.EnvVar(tt.name)
			require.NotNil(t, ev)
			require.Equal(t, tt.typ, ev.Type)
			require.Equal(t, tt.access, ev.Access)
		})
	}

	require.Len(t, db.RelationAttributes, 1)
	rel := db.RelationAttributes[0]
	require.Equal(t, "GenSigTimeout", rel.Name)
	require.Equal(t, dbc.IntValue(100), rel.Value)
}
