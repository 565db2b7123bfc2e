package document

import (
	"slices"

	"github.com/golangcan/godbc/dbc"
)

// FromDatabase builds the document for a validated database.
func FromDatabase(db *dbc.Database) (*Document, error) {
	if !db.Validated() {
		return nil, dbc.ErrNotValidated
	}
	doc := &Document{
		Version:    db.Version,
		NewSymbols: slices.Clone(db.NewSymbols),
		Comment:    db.Comment,
		Attributes: fromAttributes(db.Attributes),
	}
	if bt := db.BitTiming; bt != nil {
		doc.BitTiming = &BitTiming{Baudrate: bt.Baudrate, BTR1: bt.BTR1, BTR2: bt.BTR2}
	}
	for _, n := range db.Nodes {
		doc.Nodes = append(doc.Nodes, Node{
			Name:       n.Name,
			Comment:    n.Comment,
			Attributes: fromAttributes(n.Attributes),
		})
	}
	for _, t := range db.ValueTables {
		doc.ValueTables = append(doc.ValueTables, ValueTable{
			Name:    t.Name,
			Entries: fromEntries(t.Entries),
		})
	}
	for _, m := range db.Messages {
		doc.Messages = append(doc.Messages, fromMessage(m))
	}
	for _, e := range db.EnvVars {
		doc.EnvVars = append(doc.EnvVars, EnvVar{
			Name:              e.Name,
			Type:              e.Type.String(),
			Min:               e.Min,
			Max:               e.Max,
			Unit:              e.Unit,
			Initial:           e.Initial,
			ID:                e.ID,
			Access:            e.Access.String(),
			Nodes:             slices.Clone(e.Nodes),
			DataSize:          e.DataSize,
			ValueDescriptions: fromEntries(e.ValueDescriptions),
			Comment:           e.Comment,
			Attributes:        fromAttributes(e.Attributes),
		})
	}
	for _, t := range db.SignalTypes {
		doc.SignalTypes = append(doc.SignalTypes, SignalType{
			Name:       t.Name,
			Length:     t.Size,
			ByteOrder:  t.ByteOrder.String(),
			ValueType:  t.ValueType.String(),
			Factor:     t.Factor,
			Offset:     t.Offset,
			Min:        t.Min,
			Max:        t.Max,
			Unit:       t.Unit,
			Default:    t.Default,
			ValueTable: t.ValueTable,
		})
	}
	for _, d := range db.AttributeDefinitions {
		doc.AttributeDefinitions = append(doc.AttributeDefinitions, fromDefinition(d))
	}
	for _, ra := range db.RelationAttributes {
		doc.RelationAttributes = append(doc.RelationAttributes, RelationAttribute{
			Name:      ra.Name,
			Object:    ra.Object.String(),
			Node:      ra.Node,
			MessageID: ra.MessageID,
			Signal:    ra.Signal,
			EnvVar:    ra.EnvVar,
			Value:     Scalar(ra.Value),
		})
	}
	return doc, nil
}

func fromMessage(m *dbc.Message) Message {
	out := Message{
		ID:           m.ID,
		Name:         m.Name,
		Length:       m.Size,
		Transmitter:  m.Transmitter,
		Transmitters: slices.Clone(m.Transmitters),
		Comment:      m.Comment,
		Attributes:   fromAttributes(m.Attributes),
	}
	for _, s := range m.Signals {
		out.Signals = append(out.Signals, Signal{
			Name:              s.Name,
			Start:             s.StartBit,
			Length:            s.Size,
			ByteOrder:         s.ByteOrder.String(),
			ValueType:         s.ValueType.String(),
			Factor:            s.Factor,
			Offset:            s.Offset,
			Min:               s.Min,
			Max:               s.Max,
			Unit:              s.Unit,
			Receivers:         slices.Clone(s.Receivers),
			Multiplex:         fromMultiplex(s.Multiplex),
			Type:              s.Type,
			ValueDescriptions: fromEntries(s.ValueDescriptions),
			Comment:           s.Comment,
			Attributes:        fromAttributes(s.Attributes),
		})
	}
	for _, g := range m.SignalGroups {
		out.SignalGroups = append(out.SignalGroups, SignalGroup{
			Name:        g.Name,
			Repetitions: g.Repetitions,
			Signals:     slices.Clone(g.Signals),
		})
	}
	return out
}

func fromMultiplex(mux dbc.Multiplex) *Multiplex {
	if mux.Role == dbc.MuxNone {
		return nil
	}
	out := &Multiplex{Role: mux.Role.String()}
	switch mux.Role {
	case dbc.MuxMultiplexed:
		out.Value = mux.Value
	case dbc.MuxExtended:
		out.Value = mux.Value
		out.Switch = mux.Switch
		out.Selector = mux.Selector
		for _, r := range mux.Ranges {
			out.Ranges = append(out.Ranges, Range{Min: r.Min, Max: r.Max})
		}
	}
	return out
}

func fromDefinition(d *dbc.AttributeDefinition) AttributeDefinition {
	out := AttributeDefinition{
		Name:   d.Name,
		Object: d.Object.String(),
		Type:   d.Type.Kind.String(),
		Enum:   slices.Clone(d.Type.Enum),
	}
	if d.Type.Bounded() {
		var lo, hi dbc.Value
		if d.Type.Kind == dbc.AttrFloat {
			lo, hi = dbc.FloatValue(d.Type.FloatMin), dbc.FloatValue(d.Type.FloatMax)
		} else {
			lo, hi = dbc.IntValue(d.Type.IntMin), dbc.IntValue(d.Type.IntMax)
		}
		out.Min, out.Max = (*Scalar)(&lo), (*Scalar)(&hi)
	}
	if d.Default != nil {
		v := Scalar(*d.Default)
		out.Default = &v
	}
	return out
}

func fromAttributes(attrs []dbc.AttributeValue) []Attribute {
	if len(attrs) == 0 {
		return nil
	}
	out := make([]Attribute, len(attrs))
	for i, a := range attrs {
		out[i] = Attribute{Name: a.Name, Value: Scalar(a.Value)}
	}
	return out
}

func fromEntries(entries []dbc.ValueDescription) []ValueDescription {
	if len(entries) == 0 {
		return nil
	}
	out := make([]ValueDescription, len(entries))
	for i, e := range entries {
		out[i] = ValueDescription{Value: e.Value, Label: e.Label}
	}
	return out
}
