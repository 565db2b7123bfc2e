package testutil

// EngineDBC is the smallest useful database: one message with one signal.
const EngineDBC = `VERSION ""

BU_: ECU1

BO_ 100 Engine: 8 ECU1
 SG_ RPM : 0|16@1+ (0.25,0) [0|16383.75] "rpm" Vector__XXX
`

// FullDBC exercises every section the parser understands.
const FullDBC = `VERSION "1.2.3"

NS_ :
	NS_DESC_
	CM_
	BA_DEF_
	BA_
	VAL_
	SG_MUL_VAL_

BS_: 500:1,2

BU_: ECU1 ECU2 Gateway

VAL_TABLE_ OnOff 1 "On" 0 "Off" ;
VAL_TABLE_ Gear 0 "P" 1 "R" 2 "N" 3 "D" ;

BO_ 100 Engine: 8 ECU1
 SG_ RPM : 0|16@1+ (0.25,0) [0|16383.75] "rpm" ECU2,Gateway
 SG_ Temp : 16|8@1- (1,-40) [-40|215] "degC" ECU2
 SG_ Torque : 31|8@0- (0.5,0) [-64|63.5] "Nm" Vector__XXX
 SG_ Ratio : 32|32@1- (1,0) [0|1] "" ECU2

BO_ 2147484160 Diag: 8 Gateway
 SG_ Mode M : 0|8@1+ (1,0) [0|255] "" ECU1
 SG_ Page m1M : 8|8@1+ (1,0) [0|255] "" ECU1
 SG_ Volts m1 : 16|16@1+ (0.001,0) [0|65.535] "V" ECU1
 SG_ Amps m2 : 16|16@1- (0.01,0) [-327.68|327.67] "A" ECU1
 SG_ Deep m4 : 32|8@1+ (1,0) [0|255] "" ECU1

BO_ 3221225472 VECTOR__INDEPENDENT_SIG_MSG: 0 Vector__XXX
 SG_ Loose : 0|64@1+ (1,0) [0|0] "" Vector__XXX

BO_TX_BU_ 100 : ECU1,Gateway;

EV_ Speed: 1 [0|250.5] "km/h" 10 7 DUMMY_NODE_VECTOR1 ECU1,ECU2;
EV_ Name: 0 [0|0] "" 0 8 DUMMY_NODE_VECTOR8003 Vector__XXX;
EV_ Blob: 0 [0|0] "" 0 9 DUMMY_NODE_VECTOR0 ECU1;

ENVVAR_DATA_ Blob: 16;

SGTYPE_ Percent : 8@1+ (0.5,0) [0|100] "%" 0, OnOff;

CM_ "Test network
with a second line";
CM_ BU_ ECU1 "Engine \"main\" controller";
CM_ BO_ 100 "Engine status";
CM_ SG_ 100 RPM "Crankshaft speed";
CM_ EV_ Speed "Vehicle speed";

BA_DEF_ "BusType" STRING ;
BA_DEF_ BU_ "NodeLayer" ENUM "App","Diag";
BA_DEF_ BO_ "GenMsgCycleTime" INT 0 65535;
BA_DEF_ SG_ "GenSigStartValue" FLOAT -1e6 1e6;
BA_DEF_ EV_ "EvPrio" HEX 0 255;
BA_DEF_REL_ BU_SG_REL_ "SigTimeout" INT 0 10000;
BA_DEF_DEF_ "BusType" "CAN";
BA_DEF_DEF_ "GenMsgCycleTime" 100;
BA_DEF_DEF_REL_ "SigTimeout" 500;
BA_ "BusType" "CAN FD";
BA_ "NodeLayer" BU_ Gateway 1;
BA_ "GenMsgCycleTime" BO_ 100 10;
BA_ "GenSigStartValue" SG_ 100 Temp 40.5;
BA_ "EvPrio" EV_ Speed 16;
BA_REL_ "SigTimeout" BU_SG_REL_ ECU2 SG_ 100 RPM 250;

VAL_ 100 Temp 0 "Cold" 100 "Hot" ;
VAL_ Speed 0 "Stopped" ;

SIG_TYPE_REF_ 100 Temp : Percent;

SIG_GROUP_ 100 Powertrain 1 : RPM Temp;

SIG_VALTYPE_ 100 Ratio : 1;

SG_MUL_VAL_ 2147484160 Page Mode 1-1;
SG_MUL_VAL_ 2147484160 Volts Page 1-1;
SG_MUL_VAL_ 2147484160 Amps Page 2-3;
SG_MUL_VAL_ 2147484160 Deep Mode 4-4, 6-8;
`

// MuxRangesDBC mixes plain m<n> signals sharing a multiplexor value with an
// SG_MUL_VAL_ range under the same switch.
const MuxRangesDBC = `VERSION ""

BU_: X

BO_ 200 Mux: 8 X
 SG_ Sel M : 0|8@1+ (1,0) [0|255] "" X
 SG_ A m3 : 8|8@1+ (1,0) [0|0] "" X
 SG_ B m3 : 16|8@1+ (1,0) [0|0] "" X
 SG_ C m5 : 24|8@1+ (1,0) [0|0] "" X

SG_MUL_VAL_ 200 C Sel 5-6;
`

// MuxSharedValueDBC has a single SG_MUL_VAL_ entry that repeats what its
// m<n> indicator says.
const MuxSharedValueDBC = `VERSION ""

BU_: X

BO_ 200 Mux: 8 X
 SG_ Sel M : 0|8@1+ (1,0) [0|255] "" X
 SG_ A m3 : 8|8@1+ (1,0) [0|0] "" X
 SG_ B m3 : 16|8@1+ (1,0) [0|0] "" X

SG_MUL_VAL_ 200 A Sel 3-3;
`
