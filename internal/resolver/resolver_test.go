package resolver

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/golangcan/godbc/dbc"
	"github.com/golangcan/godbc/internal/parser"
	"github.com/golangcan/godbc/internal/testutil"
	"github.com/golangcan/godbc/internal/types"
)

func resolve(t *testing.T, source string, cfg types.DiagnosticConfig) (*dbc.Database, []types.Diagnostic, error) {
	t.Helper()
	p := parser.New([]byte(source), nil, cfg)
	f := p.ParseFile()
	require.Empty(t, p.SyntaxErrors(), "fixture must parse")
	return Resolve(f, p.Lines(), nil, cfg)
}

func mustResolve(t *testing.T, source string) (*dbc.Database, []types.Diagnostic) {
	t.Helper()
	db, diags, err := resolve(t, source, types.DefaultConfig())
	require.NoError(t, err)
	require.True(t, db.Validated())
	return db, diags
}

func validationError(t *testing.T, source string) *dbc.ValidationError {
	t.Helper()
	db, _, err := resolve(t, source, types.DefaultConfig())
	require.Nil(t, db)
	var verr *dbc.ValidationError
	require.True(t, errors.As(err, &verr), "want *dbc.ValidationError, got %v", err)
	return verr
}

func codes(diags []types.Diagnostic) []string {
	var out []string
	for _, d := range diags {
		out = append(out, d.Code)
	}
	return out
}

func TestResolveEmpty(t *testing.T) {
	db, diags := mustResolve(t, "")
	require.Empty(t, diags)
	require.Nil(t, db.Messages)
	require.Nil(t, db.Nodes)
}

func TestResolveEngine(t *testing.T) {
	db, diags := mustResolve(t, `VERSION "2"
BU_: ECU1 ECU2
BO_ 300 Brake: 2 ECU2
 SG_ Pressure : 0|16@1+ (0.1,0) [0|6553.5] "bar" ECU1
BO_ 100 Engine: 8 ECU1
 SG_ RPM : 0|16@1+ (0.25,0) [0|16383.75] "rpm" ECU2
 SG_ Temp : 16|8@1- (1,-40) [-40|215] "degC" ECU2
BO_TX_BU_ 100 : ECU1, ECU2;
CM_ BO_ 100 "engine frame";
CM_ SG_ 100 RPM "speed";
BA_DEF_ BO_ "GenMsgCycleTime" INT 0 1000;
BA_DEF_DEF_ "GenMsgCycleTime" 100;
BA_ "GenMsgCycleTime" BO_ 100 20;
VAL_ 100 Temp 0 "Cold" 1 "Warm" ;
SIG_GROUP_ 100 Grp 1 : RPM Temp;
`)
	require.Empty(t, diags)
	require.Equal(t, "2", db.Version)
	require.Len(t, db.Messages, 2)
	require.Equal(t, uint32(100), db.Messages[0].ID, "messages sorted by id")

	engine := db.Message(100)
	require.Equal(t, "engine frame", engine.Comment)
	require.Equal(t, []string{"ECU1", "ECU2"}, engine.Transmitters)
	require.Equal(t, "speed", engine.Signal("RPM").Comment)
	require.Equal(t, dbc.Signed, engine.Signal("Temp").ValueType)
	label, ok := engine.Signal("Temp").Label(1)
	require.True(t, ok)
	require.Equal(t, "Warm", label)
	require.Equal(t, []string{"RPM", "Temp"}, engine.SignalGroups[0].Signals)

	v, ok := db.EffectiveAttribute(dbc.MessageRef(100), "GenMsgCycleTime")
	require.True(t, ok)
	require.Equal(t, dbc.IntValue(20), v)
	v, ok = db.EffectiveAttribute(dbc.MessageRef(300), "GenMsgCycleTime")
	require.True(t, ok)
	require.Equal(t, dbc.IntValue(100), v)
}

func TestDuplicateMessageID(t *testing.T) {
	err := validationError(t, `BO_ 100 A: 8 X
BO_ 100 B: 8 X
`)
	require.Equal(t, types.DiagDuplicateMessageID, err.Code)
	require.Equal(t, dbc.MessageRef(100), err.Entity)
}

func TestDuplicateNames(t *testing.T) {
	tests := []struct {
		name   string
		source string
		code   string
	}{
		{"message name", "BO_ 1 A: 8 X\nBO_ 2 A: 8 X\n", types.DiagDuplicateMessageName},
		{"signal", "BO_ 1 A: 8 X\n SG_ S : 0|1@1+ (1,0) [0|1] \"\" X\n SG_ S : 1|1@1+ (1,0) [0|1] \"\" X\n", types.DiagDuplicateSignal},
		{"node", "BU_: A B A\n", types.DiagDuplicateNode},
		{"value table", "VAL_TABLE_ T 0 \"a\" ;\nVAL_TABLE_ T 1 \"b\" ;\n", types.DiagDuplicateValueTable},
		{"value", "VAL_TABLE_ T 0 \"a\" 0 \"b\" ;\n", types.DiagDuplicateValue},
		{"env var", "EV_ E: 0 [0|1] \"\" 0 1 DUMMY_NODE_VECTOR0 X;\nEV_ E: 0 [0|1] \"\" 0 2 DUMMY_NODE_VECTOR0 X;\n", types.DiagDuplicateEnvVar},
		{"attribute definition", "BA_DEF_ \"A\" STRING;\nBA_DEF_ BO_ \"A\" INT 0 1;\n", types.DiagDuplicateAttributeDef},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.code, validationError(t, tt.source).Code)
		})
	}
}

func TestBitRangeOverflow(t *testing.T) {
	err := validationError(t, `BO_ 100 Short: 1 X
 SG_ Wide : 60|8@1+ (1,0) [0|255] "" X
`)
	require.Equal(t, types.DiagBitRangeOverflow, err.Code)
	require.Equal(t, dbc.SignalRef(100, "Wide"), err.Entity)
}

func TestBitRangeByteOrder(t *testing.T) {
	// Motorola start bit 7 is the MSB of byte 0, so 16 bits fill two bytes.
	mustResolve(t, `BO_ 1 M: 2 X
 SG_ S : 7|16@0+ (1,0) [0|0] "" X
`)
	// Motorola start bit 0 is the LSB of byte 0; 16 bits need a third byte.
	err := validationError(t, `BO_ 1 M: 2 X
 SG_ S : 0|16@0+ (1,0) [0|0] "" X
`)
	require.Equal(t, types.DiagBitRangeOverflow, err.Code)
}

func TestIndependentSignalsExempt(t *testing.T) {
	db, _ := mustResolve(t, `BO_ 3221225472 VECTOR__INDEPENDENT_SIG_MSG: 0 Vector__XXX
 SG_ Loose : 0|16@1+ (1,0) [0|0] "" Vector__XXX
`)
	require.Len(t, db.Message(dbc.IndependentSignalsID).Signals, 1)
}

func TestFloatSize(t *testing.T) {
	err := validationError(t, `BO_ 1 F: 8 X
 SG_ S : 0|16@1- (1,0) [0|0] "" X
SIG_VALTYPE_ 1 S : 1;
`)
	require.Equal(t, types.DiagFloatSizeInvalid, err.Code)

	db, _ := mustResolve(t, `BO_ 1 F: 8 X
 SG_ S : 0|64@1- (1,0) [0|0] "" X
SIG_VALTYPE_ 1 S : 2;
`)
	require.Equal(t, dbc.Float64, db.Message(1).Signal("S").ValueType)
}

const muxMessage = `BO_ 200 Mux: 8 X
 SG_ Sel M : 0|8@1+ (1,0) [0|255] "" X
 SG_ A m1 : 8|8@1+ (1,0) [0|0] "" X
 SG_ B m1 : 16|8@1+ (1,0) [0|0] "" X
`

func TestPlainMultiplexSameValueAccepted(t *testing.T) {
	db, _ := mustResolve(t, muxMessage)
	msg := db.Message(200)
	require.Equal(t, msg.Signal("Sel"), msg.Switch())
	a := msg.Signal("A").Multiplex
	require.Equal(t, dbc.MuxMultiplexed, a.Role)
	require.Equal(t, uint64(1), a.Value)
	require.True(t, a.Selects(1))
	require.False(t, a.Selects(2))
}

func TestExtendedMultiplexOverlap(t *testing.T) {
	err := validationError(t, muxMessage+`SG_MUL_VAL_ 200 A Sel 0-3;
SG_MUL_VAL_ 200 B Sel 3-5;
`)
	require.Equal(t, types.DiagMultiplexRangeOverlap, err.Code)
	require.Equal(t, dbc.SignalRef(200, "B"), err.Entity)
}

func TestImpliedRangesShareValue(t *testing.T) {
	for name, src := range map[string]string{
		"mux ranges":       testutil.MuxRangesDBC,
		"mux shared value": testutil.MuxSharedValueDBC,
	} {
		t.Run(name, func(t *testing.T) {
			db, _ := mustResolve(t, src)
			msg := db.Message(200)
			for _, n := range []string{"A", "B"} {
				sig := msg.Signal(n)
				require.Equal(t, dbc.Multiplex{Role: dbc.MuxExtended, Value: 3, Switch: "Sel",
					Ranges: []dbc.MuxRange{{Min: 3, Max: 3}}}, sig.Multiplex)
				require.True(t, msg.ImpliedRange(sig))
			}
		})
	}

	// Explicit entries for both siblings describe the same database and load
	// the same way.
	db, _ := mustResolve(t, testutil.MuxSharedValueDBC+"SG_MUL_VAL_ 200 B Sel 3-3;\n")
	require.True(t, db.Message(200).ImpliedRange(db.Message(200).Signal("B")))
}

func TestMultiplexorCycle(t *testing.T) {
	err := validationError(t, `BO_ 200 Mux: 8 X
 SG_ A m1M : 0|8@1+ (1,0) [0|255] "" X
 SG_ B m2M : 8|8@1+ (1,0) [0|255] "" X
SG_MUL_VAL_ 200 A B 2-2;
SG_MUL_VAL_ 200 B A 1-1;
`)
	require.Equal(t, types.DiagMultiplexCycle, err.Code)
	require.Equal(t, dbc.SignalRef(200, "A"), err.Entity)
	require.Contains(t, err.Message, "A -> B")
}

func TestExtendedMultiplex(t *testing.T) {
	db, _ := mustResolve(t, `BO_ 200 Mux: 8 X
 SG_ Sel M : 0|8@1+ (1,0) [0|255] "" X
 SG_ Sub m1M : 8|8@1+ (1,0) [0|255] "" X
 SG_ Deep m3 : 16|8@1+ (1,0) [0|0] "" X
 SG_ Plain m2 : 24|8@1+ (1,0) [0|0] "" X
SG_MUL_VAL_ 200 Sub Sel 1-1, 4-6;
SG_MUL_VAL_ 200 Deep Sub 3-3;
`)
	msg := db.Message(200)

	sub := msg.Signal("Sub").Multiplex
	require.Equal(t, dbc.MuxExtended, sub.Role)
	require.True(t, sub.Selector)
	require.True(t, sub.IsSwitch())
	require.Equal(t, "Sel", sub.Switch)
	require.Equal(t, []dbc.MuxRange{{Min: 1, Max: 1}, {Min: 4, Max: 6}}, sub.Ranges)
	require.True(t, sub.Selects(5))

	deep := msg.Signal("Deep").Multiplex
	require.Equal(t, "Sub", deep.Switch)
	require.False(t, deep.Selector)

	plain := msg.Signal("Plain").Multiplex
	require.Equal(t, dbc.MuxExtended, plain.Role)
	require.Equal(t, "Sel", plain.Switch)
	require.Equal(t, []dbc.MuxRange{{Min: 2, Max: 2}}, plain.Ranges)
}

func TestSelectorWithoutRanges(t *testing.T) {
	db, _ := mustResolve(t, `BO_ 1 M: 8 X
 SG_ Sel M : 0|8@1+ (1,0) [0|0] "" X
 SG_ Sub m2M : 8|8@1+ (1,0) [0|0] "" X
`)
	sub := db.Message(1).Signal("Sub").Multiplex
	require.Equal(t, dbc.Multiplex{Role: dbc.MuxExtended, Value: 2, Switch: "Sel",
		Ranges: []dbc.MuxRange{{Min: 2, Max: 2}}, Selector: true}, sub)
}

func TestMultiplexorErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		code   string
	}{
		{"missing", "BO_ 1 M: 8 X\n SG_ A m1 : 0|8@1+ (1,0) [0|0] \"\" X\n", types.DiagMultiplexorMissing},
		{"ambiguous", "BO_ 1 M: 8 X\n SG_ S1 M : 0|8@1+ (1,0) [0|0] \"\" X\n SG_ S2 M : 8|8@1+ (1,0) [0|0] \"\" X\n SG_ A m1 : 16|8@1+ (1,0) [0|0] \"\" X\n", types.DiagMultiplexorAmbiguous},
		{"unknown switch", muxMessage + "SG_MUL_VAL_ 200 A Nope 1-1;\n", types.DiagMultiplexorUnknown},
		{"switch not multiplexor", muxMessage + "SG_MUL_VAL_ 200 A B 1-1;\n", types.DiagMultiplexorUnknown},
		{"inverted range", muxMessage + "SG_MUL_VAL_ 200 A Sel 5-1;\n", types.DiagMultiplexRangeInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.code, validationError(t, tt.source).Code)
		})
	}
}

func TestDanglingReferencesWarn(t *testing.T) {
	db, diags := mustResolve(t, `BO_ 1 M: 8 X
 SG_ S : 0|8@1+ (1,0) [0|0] "" X
CM_ SG_ 1 Gone "lost";
CM_ BU_ Nobody "lost";
BA_DEF_ SG_ "A" INT 0 10;
BA_ "A" SG_ 2 S 1;
BA_ "Undefined" 1;
VAL_ 1 Gone 0 "x" ;
SIG_VALTYPE_ 9 S : 1;
BO_TX_BU_ 7 : X;
`)
	require.Equal(t, []string{
		types.DiagTransmitterDangling,
		types.DiagValueDescDangling,
		types.DiagValueTypeDangling,
		types.DiagCommentDangling,
		types.DiagCommentDangling,
		types.DiagAttributeDangling,
		types.DiagAttributeUnknown,
	}, codes(diags))
	for _, d := range diags {
		require.Equal(t, types.SeverityWarning, d.Severity)
		require.Positive(t, d.Line)
	}
	require.Empty(t, db.Message(1).Signal("S").Comment)
	require.Nil(t, db.Message(1).Signal("S").Attributes)
}

func TestStrictFailsOnWarning(t *testing.T) {
	src := "BO_ 1 M: 8 X\nCM_ BO_ 2 \"lost\";\n"
	db, diags, err := resolve(t, src, types.StrictConfig())
	require.Nil(t, db)
	var verr *dbc.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, types.DiagCommentDangling, verr.Code)
	require.Len(t, diags, 1)

	db, diags, err = resolve(t, src, types.PermissiveConfig())
	require.NoError(t, err)
	require.NotNil(t, db)
	require.Empty(t, diags)
}

func TestAttributeDomains(t *testing.T) {
	base := `BU_: N
BO_ 1 M: 8 N
BA_DEF_ BO_ "Cycle" INT 0 100;
BA_DEF_ BU_ "Mode" ENUM "Off","On";
BA_DEF_ "Unbounded" FLOAT 0 0;
`
	db, diags := mustResolve(t, base+`BA_ "Cycle" BO_ 1 50;
BA_ "Mode" BU_ N "On";
BA_ "Unbounded" -1e9;
`)
	require.Empty(t, diags)
	v, _ := db.Message(1).Attribute("Cycle")
	require.Equal(t, dbc.IntValue(50), v)
	require.Equal(t, dbc.StringValue("On"), db.Node("N").Attributes[0].Value)
	require.Equal(t, dbc.FloatValue(-1e9), db.Attributes[0].Value)

	err := validationError(t, base+"BA_ \"Cycle\" BO_ 1 101;\n")
	require.Equal(t, types.DiagAttributeOutOfDomain, err.Code)
	require.Equal(t, dbc.MessageRef(1), err.Entity)

	err = validationError(t, base+"BA_ \"Mode\" BU_ N 2;\n")
	require.Equal(t, types.DiagAttributeOutOfDomain, err.Code)

	err = validationError(t, "BA_DEF_ \"X\" INT 5 1;\n")
	require.Equal(t, types.DiagAttributeDomainInvalid, err.Code)
}

func TestAttributeDuplicateAndMismatch(t *testing.T) {
	db, diags := mustResolve(t, `BO_ 1 M: 8 X
BA_DEF_ BO_ "Cycle" INT 0 0;
BA_ "Cycle" BO_ 1 10;
BA_ "Cycle" BO_ 1 20;
BA_ "Cycle" 5;
`)
	require.Equal(t, []string{types.DiagAttributeDuplicate, types.DiagAttributeKindMismatch}, codes(diags))
	require.Equal(t, []dbc.AttributeValue{{Name: "Cycle", Value: dbc.IntValue(20)}}, db.Message(1).Attributes)
	require.Nil(t, db.Attributes)
}

func TestCommentDuplicate(t *testing.T) {
	db, diags := mustResolve(t, "BO_ 1 M: 8 X\nCM_ BO_ 1 \"a\";\nCM_ BO_ 1 \"b\";\n")
	require.Equal(t, []string{types.DiagCommentDuplicate}, codes(diags))
	require.Equal(t, "b", db.Message(1).Comment)
}

func TestEnvVars(t *testing.T) {
	db, diags := mustResolve(t, `BU_: N
EV_ I: 0 [0|10] "" 1 1 DUMMY_NODE_VECTOR1 N;
EV_ S: 0 [0|0] "" 0 2 DUMMY_NODE_VECTOR8003 N;
EV_ D: 0 [0|0] "" 0 3 DUMMY_NODE_VECTOR0 N;
ENVVAR_DATA_ D: 8;
VAL_ I 0 "zero" ;
BA_DEF_REL_ BU_EV_REL_ "Rel" INT 0 10;
BA_REL_ "Rel" BU_EV_REL_ N I 3;
`)
	require.Empty(t, diags)
	i := db.EnvVar("I")
	require.Equal(t, dbc.EnvInteger, i.Type)
	require.Equal(t, dbc.AccessRead, i.Access)
	require.Equal(t, []dbc.ValueDescription{{Value: 0, Label: "zero"}}, i.ValueDescriptions)

	s := db.EnvVar("S")
	require.Equal(t, dbc.EnvString, s.Type)
	require.Equal(t, dbc.AccessReadWrite, s.Access)

	d := db.EnvVar("D")
	require.Equal(t, dbc.EnvData, d.Type)
	require.Equal(t, uint32(8), d.DataSize)

	ref := dbc.Ref{Kind: dbc.ObjectNodeEnvVar, Node: "N", EnvVar: "I"}
	v, ok := db.EffectiveAttribute(ref, "Rel")
	require.True(t, ok)
	require.Equal(t, dbc.IntValue(3), v)
}

func TestSignalTypes(t *testing.T) {
	db, diags := mustResolve(t, `VAL_TABLE_ T 0 "a" ;
SGTYPE_ Speed : 16@1+ (0.1,0) [0|100] "km/h" 0, T;
SGTYPE_ Other : 8@1+ (1,0) [0|1] "" 0, Missing;
BO_ 1 M: 8 X
 SG_ S : 0|16@1+ (0.1,0) [0|100] "km/h" X
SIG_TYPE_REF_ 1 S : Speed;
SIG_TYPE_REF_ 1 S : Nope;
`)
	require.Equal(t, []string{types.DiagValueTableDangling, types.DiagSignalTypeDangling}, codes(diags))
	require.Equal(t, "Speed", db.Message(1).Signal("S").Type)
	require.Equal(t, "T", db.SignalType("Speed").ValueTable)
	require.Empty(t, db.SignalType("Other").ValueTable)
}

func TestDiagnosticsCarryPosition(t *testing.T) {
	_, diags, err := resolve(t, "BO_ 1 A: 8 X\n\nBO_ 1 B: 8 X\n", types.DefaultConfig())
	require.Error(t, err)
	require.Len(t, diags, 1)
	require.Equal(t, 3, diags[0].Line)
	require.Equal(t, 1, diags[0].Column)
	require.Equal(t, "BO_ 1", diags[0].Entity)
	require.Equal(t, types.SeveritySevere, diags[0].Severity)
}
