// Package format renders a validated database as canonical DBC text.
//
// The output has a fixed section order and a fixed field order within each
// section. Strings are quoted with '"', escaping '\' and '"'. Numbers use
// the shortest decimal that parses back to the same float64. Lines end in
// LF. Formatting the result of parsing and validating formatted text again
// yields identical bytes.
package format

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/golangcan/godbc/dbc"
	"github.com/golangcan/godbc/internal/lexer"
	"github.com/golangcan/godbc/internal/types"
)

// noNode is written where a node name is required but none applies.
const noNode = "Vector__XXX"

// Format returns the canonical text of db.
func Format(db *dbc.Database, logger *slog.Logger) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, db, logger); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write renders db to w. It returns dbc.ErrNotValidated for a database that
// did not come out of the validator.
func Write(w io.Writer, db *dbc.Database, logger *slog.Logger) error {
	if !db.Validated() {
		return dbc.ErrNotValidated
	}
	f := &formatter{db: db, Logger: types.Logger{L: logger}}
	f.render()
	out := append(bytes.TrimRight(f.buf.Bytes(), "\n"), '\n')
	f.Log(slog.LevelDebug, "formatted database",
		slog.Int("messages", len(db.Messages)),
		slog.Int("bytes", len(out)))
	_, err := w.Write(out)
	return err
}

type formatter struct {
	db  *dbc.Database
	buf bytes.Buffer
	// block counts lines written since the last section break.
	block int
	types.Logger
}

func (f *formatter) line(format string, args ...any) {
	fmt.Fprintf(&f.buf, format, args...)
	f.buf.WriteByte('\n')
	f.block++
}

// section ends the current block with a blank line if it wrote anything.
func (f *formatter) section() {
	if f.block > 0 {
		f.buf.WriteByte('\n')
		f.block = 0
	}
}

func (f *formatter) render() {
	db := f.db
	f.line("VERSION %s", quote(db.Version))
	f.section()

	f.line("NS_ :")
	for _, s := range db.NewSymbols {
		f.line("\t%s", s)
	}
	f.section()

	if bt := db.BitTiming; bt != nil {
		f.line("BS_: %d:%d,%d", bt.Baudrate, bt.BTR1, bt.BTR2)
	} else {
		f.line("BS_:")
	}
	f.section()

	nodes := make([]string, len(db.Nodes))
	for i, n := range db.Nodes {
		nodes[i] = n.Name
	}
	f.line("BU_:%s", prefixEach(nodes))
	f.section()

	for _, t := range db.ValueTables {
		f.line("VAL_TABLE_ %s%s ;", t.Name, formatEntries(t.Entries))
	}
	f.section()

	for _, m := range db.Messages {
		f.writeMessage(m)
		f.section()
	}

	for _, m := range db.Messages {
		if len(m.Transmitters) > 0 {
			f.line("BO_TX_BU_ %d : %s;", m.ID, strings.Join(m.Transmitters, ","))
		}
	}
	f.section()

	f.writeEnvVars()
	f.writeSignalTypes()
	f.writeComments()
	f.writeAttributeDefinitions()
	f.writeAttributeValues()
	f.writeValueDescriptions()
	f.writeSignalExtras()
}

func (f *formatter) writeMessage(m *dbc.Message) {
	f.line("BO_ %d %s: %d %s", m.ID, m.Name, m.Size, nodeOrPlaceholder(m.Transmitter))
	for _, s := range m.Signals {
		mux := muxIndicator(s.Multiplex)
		if mux != "" {
			mux += " "
		}
		f.line("\tSG_ %s %s: %d|%d@%s%s (%s,%s) [%s|%s] %s %s",
			s.Name, mux, s.StartBit, s.Size,
			byteOrder(s.ByteOrder), sign(s.ValueType),
			formatFloat(s.Factor), formatFloat(s.Offset),
			formatFloat(s.Min), formatFloat(s.Max),
			quote(s.Unit), nodeList(s.Receivers))
	}
}

// muxIndicator renders the SG_ multiplexer field. Extended-multiplexed
// signals carry the first value of their ranges.
func muxIndicator(m dbc.Multiplex) string {
	switch m.Role {
	case dbc.MuxSwitch:
		return "M"
	case dbc.MuxMultiplexed:
		return "m" + strconv.FormatUint(m.Value, 10)
	case dbc.MuxExtended:
		v := m.Value
		if len(m.Ranges) > 0 {
			v = m.Ranges[0].Min
		}
		s := "m" + strconv.FormatUint(v, 10)
		if m.Selector {
			s += "M"
		}
		return s
	}
	return ""
}

// Environment variable access flag for string variables.
const envAccessString = 0x8000

func (f *formatter) writeEnvVars() {
	for _, ev := range f.db.EnvVars {
		typ, access := 0, int(ev.Access)
		switch ev.Type {
		case dbc.EnvFloat:
			typ = 1
		case dbc.EnvString:
			access |= envAccessString
		}
		f.line("EV_ %s: %d [%s|%s] %s %s %d DUMMY_NODE_VECTOR%X %s;",
			ev.Name, typ, formatFloat(ev.Min), formatFloat(ev.Max), quote(ev.Unit),
			formatFloat(ev.Initial), ev.ID, access, nodeList(ev.Nodes))
	}
	f.section()

	for _, ev := range f.db.EnvVars {
		if ev.Type == dbc.EnvData {
			f.line("ENVVAR_DATA_ %s: %d;", ev.Name, ev.DataSize)
		}
	}
	f.section()
}

func (f *formatter) writeSignalTypes() {
	for _, st := range f.db.SignalTypes {
		table := ""
		if st.ValueTable != "" {
			table = ", " + st.ValueTable
		}
		f.line("SGTYPE_ %s : %d@%s%s (%s,%s) [%s|%s] %s %s%s;",
			st.Name, st.Size, byteOrder(st.ByteOrder), sign(st.ValueType),
			formatFloat(st.Factor), formatFloat(st.Offset),
			formatFloat(st.Min), formatFloat(st.Max),
			quote(st.Unit), formatFloat(st.Default), table)
	}
	f.section()
}

func (f *formatter) writeComments() {
	db := f.db
	if db.Comment != "" {
		f.line("CM_ %s;", quote(db.Comment))
	}
	for _, n := range db.Nodes {
		if n.Comment != "" {
			f.line("CM_ BU_ %s %s;", n.Name, quote(n.Comment))
		}
	}
	for _, m := range db.Messages {
		if m.Comment != "" {
			f.line("CM_ BO_ %d %s;", m.ID, quote(m.Comment))
		}
		for _, s := range m.Signals {
			if s.Comment != "" {
				f.line("CM_ SG_ %d %s %s;", m.ID, s.Name, quote(s.Comment))
			}
		}
	}
	for _, ev := range db.EnvVars {
		if ev.Comment != "" {
			f.line("CM_ EV_ %s %s;", ev.Name, quote(ev.Comment))
		}
	}
	f.section()
}

func (f *formatter) writeAttributeDefinitions() {
	for _, rel := range []bool{false, true} {
		for _, d := range f.db.AttributeDefinitions {
			if d.Object.IsRelation() != rel {
				continue
			}
			keyword := "BA_DEF_"
			if rel {
				keyword = "BA_DEF_REL_"
			}
			f.line("%s %s%s %s;", keyword, objectPrefix(d.Object), quote(d.Name), formatType(d.Type))
		}
		f.section()
	}
	for _, rel := range []bool{false, true} {
		for _, d := range f.db.AttributeDefinitions {
			if d.Object.IsRelation() != rel || d.Default == nil {
				continue
			}
			keyword := "BA_DEF_DEF_"
			if rel {
				keyword = "BA_DEF_DEF_REL_"
			}
			f.line("%s %s %s;", keyword, quote(d.Name), formatValue(*d.Default))
		}
		f.section()
	}
}

func (f *formatter) writeAttributeValues() {
	db := f.db
	attrs := func(prefix string, list []dbc.AttributeValue) {
		for _, a := range list {
			f.line("BA_ %s %s%s;", quote(a.Name), prefix, formatValue(a.Value))
		}
	}
	attrs("", db.Attributes)
	for _, n := range db.Nodes {
		attrs("BU_ "+n.Name+" ", n.Attributes)
	}
	for _, m := range db.Messages {
		attrs(fmt.Sprintf("BO_ %d ", m.ID), m.Attributes)
		for _, s := range m.Signals {
			attrs(fmt.Sprintf("SG_ %d %s ", m.ID, s.Name), s.Attributes)
		}
	}
	for _, ev := range db.EnvVars {
		attrs("EV_ "+ev.Name+" ", ev.Attributes)
	}
	f.section()

	for _, ra := range db.RelationAttributes {
		var target string
		switch ra.Object {
		case dbc.ObjectNodeEnvVar:
			target = fmt.Sprintf("BU_EV_REL_ %s %s", ra.Node, ra.EnvVar)
		case dbc.ObjectNodeMessage:
			target = fmt.Sprintf("BU_BO_REL_ %s %d", ra.Node, ra.MessageID)
		case dbc.ObjectNodeSignal:
			target = fmt.Sprintf("BU_SG_REL_ %s SG_ %d %s", ra.Node, ra.MessageID, ra.Signal)
		}
		f.line("BA_REL_ %s %s %s;", quote(ra.Name), target, formatValue(ra.Value))
	}
	f.section()
}

func (f *formatter) writeValueDescriptions() {
	for _, m := range f.db.Messages {
		for _, s := range m.Signals {
			if len(s.ValueDescriptions) > 0 {
				f.line("VAL_ %d %s%s ;", m.ID, s.Name, formatEntries(s.ValueDescriptions))
			}
		}
	}
	for _, ev := range f.db.EnvVars {
		if len(ev.ValueDescriptions) > 0 {
			f.line("VAL_ %s%s ;", ev.Name, formatEntries(ev.ValueDescriptions))
		}
	}
	f.section()
}

// writeSignalExtras writes SIG_TYPE_REF_, SIG_GROUP_, SIG_VALTYPE_ and
// SG_MUL_VAL_.
func (f *formatter) writeSignalExtras() {
	msgs := f.db.Messages
	for _, m := range msgs {
		for _, s := range m.Signals {
			if s.Type != "" {
				f.line("SIG_TYPE_REF_ %d %s : %s;", m.ID, s.Name, s.Type)
			}
		}
	}
	f.section()

	for _, m := range msgs {
		for _, g := range m.SignalGroups {
			f.line("SIG_GROUP_ %d %s %d :%s;", m.ID, g.Name, g.Repetitions, prefixEach(g.Signals))
		}
	}
	f.section()

	for _, m := range msgs {
		for _, s := range m.Signals {
			switch s.ValueType {
			case dbc.Float32:
				f.line("SIG_VALTYPE_ %d %s : 1;", m.ID, s.Name)
			case dbc.Float64:
				f.line("SIG_VALTYPE_ %d %s : 2;", m.ID, s.Name)
			}
		}
	}
	f.section()

	for _, m := range msgs {
		for _, s := range m.Signals {
			if !m.NeedsMuxValues(s) {
				continue
			}
			mux := s.Multiplex
			ranges := make([]string, len(mux.Ranges))
			for i, r := range mux.Ranges {
				ranges[i] = fmt.Sprintf("%d-%d", r.Min, r.Max)
			}
			f.line("SG_MUL_VAL_ %d %s %s %s;", m.ID, s.Name, mux.Switch, strings.Join(ranges, ", "))
		}
	}
	f.section()
}

func objectPrefix(k dbc.ObjectKind) string {
	switch k {
	case dbc.ObjectNode:
		return "BU_ "
	case dbc.ObjectMessage:
		return "BO_ "
	case dbc.ObjectSignal:
		return "SG_ "
	case dbc.ObjectEnvVar:
		return "EV_ "
	case dbc.ObjectNodeEnvVar:
		return "BU_EV_REL_ "
	case dbc.ObjectNodeMessage:
		return "BU_BO_REL_ "
	case dbc.ObjectNodeSignal:
		return "BU_SG_REL_ "
	}
	return ""
}

func formatType(t dbc.AttributeType) string {
	switch t.Kind {
	case dbc.AttrInt, dbc.AttrHex:
		return fmt.Sprintf("%s %d %d", t.Kind, t.IntMin, t.IntMax)
	case dbc.AttrFloat:
		return fmt.Sprintf("%s %s %s", t.Kind, formatFloat(t.FloatMin), formatFloat(t.FloatMax))
	case dbc.AttrEnum:
		labels := make([]string, len(t.Enum))
		for i, l := range t.Enum {
			labels[i] = quote(l)
		}
		return "ENUM " + strings.Join(labels, ",")
	}
	return t.Kind.String()
}

func formatValue(v dbc.Value) string {
	switch v.Kind {
	case dbc.ValueInt:
		return strconv.FormatInt(v.Int, 10)
	case dbc.ValueFloat:
		return formatFloat(v.Float)
	}
	return quote(v.String)
}

func formatEntries(entries []dbc.ValueDescription) string {
	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, " %d %s", e.Value, quote(e.Label))
	}
	return b.String()
}

// formatFloat returns the shortest decimal that round-trips to v. Values
// outside [1e-6, 1e21) use exponent notation.
func formatFloat(v float64) string {
	if a := math.Abs(v); a != 0 && (a < 1e-6 || a >= 1e21) {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func quote(s string) string {
	return lexer.Quote(s)
}

func byteOrder(o dbc.ByteOrder) string {
	if o == dbc.BigEndian {
		return "0"
	}
	return "1"
}

func sign(t dbc.ValueType) string {
	if t == dbc.Unsigned {
		return "+"
	}
	return "-"
}

func nodeOrPlaceholder(name string) string {
	if name == "" {
		return noNode
	}
	return name
}

func nodeList(nodes []string) string {
	if len(nodes) == 0 {
		return noNode
	}
	return strings.Join(nodes, ",")
}

// prefixEach returns the names each preceded by a space.
func prefixEach(names []string) string {
	var b strings.Builder
	for _, n := range names {
		b.WriteByte(' ')
		b.WriteString(n)
	}
	return b.String()
}
