package resolver

import (
	"log/slog"

	"github.com/golangcan/godbc/dbc"
	"github.com/golangcan/godbc/internal/ast"
	"github.com/golangcan/godbc/internal/types"
)

// registerEntities indexes every declared entity. A duplicate is a hard
// error and only the first declaration is kept.
func registerEntities(ctx *resolverContext) {
	registerNodes(ctx)
	registerValueTables(ctx)
	registerSignalTypes(ctx)
	registerAttributeDefinitions(ctx)
	registerMessages(ctx)
	registerEnvVars(ctx)
}

func registerNodes(ctx *resolverContext) {
	for _, id := range ctx.File.Nodes {
		if _, dup := ctx.Nodes[id.Name]; dup {
			ctx.HardError(types.DiagDuplicateNode, dbc.NodeRef(id.Name), id.Span,
				"node %s declared more than once", id.Name)
			continue
		}
		n := &dbc.Node{Name: id.Name}
		ctx.Nodes[id.Name] = n
		ctx.DB.Nodes = append(ctx.DB.Nodes, n)
	}
}

func registerValueTables(ctx *resolverContext) {
	for _, vt := range ctx.File.ValueTables {
		name := vt.Name.Name
		if _, dup := ctx.ValueTables[name]; dup {
			ctx.HardError(types.DiagDuplicateValueTable, dbc.NetworkRef(), vt.Name.Span,
				"value table %s declared more than once", name)
			continue
		}
		t := &dbc.ValueTable{
			Name:    name,
			Entries: convertEntries(ctx, dbc.NetworkRef(), "value table "+name, vt.Entries),
		}
		ctx.ValueTables[name] = t
		ctx.DB.ValueTables = append(ctx.DB.ValueTables, t)
	}
}

// convertEntries copies value descriptions and rejects a raw value that is
// labelled twice.
func convertEntries(ctx *resolverContext, owner dbc.Ref, what string, entries []ast.ValueEntry) []dbc.ValueDescription {
	if len(entries) == 0 {
		return nil
	}
	seen := make(map[int64]struct{}, len(entries))
	out := make([]dbc.ValueDescription, 0, len(entries))
	for _, e := range entries {
		if _, dup := seen[e.Value]; dup {
			ctx.HardError(types.DiagDuplicateValue, owner, e.Span,
				"%s: raw value %d described more than once", what, e.Value)
			continue
		}
		seen[e.Value] = struct{}{}
		out = append(out, dbc.ValueDescription{Value: e.Value, Label: e.Label})
	}
	return out
}

func registerSignalTypes(ctx *resolverContext) {
	for _, st := range ctx.File.SignalTypes {
		name := st.Name.Name
		if _, dup := ctx.SignalTypes[name]; dup {
			ctx.HardError(types.DiagDuplicateSignalType, dbc.NetworkRef(), st.Name.Span,
				"signal type %s declared more than once", name)
			continue
		}
		t := &dbc.SignalType{
			Name:       name,
			Size:       st.Size,
			ByteOrder:  st.ByteOrder,
			ValueType:  valueType(st.Signed),
			Factor:     st.Factor,
			Offset:     st.Offset,
			Min:        st.Min,
			Max:        st.Max,
			Unit:       st.Unit,
			Default:    st.Default,
			ValueTable: st.ValueTable,
		}
		ctx.SignalTypes[name] = t
		ctx.DB.SignalTypes = append(ctx.DB.SignalTypes, t)
	}
}

func registerAttributeDefinitions(ctx *resolverContext) {
	for _, def := range ctx.File.AttributeDefs {
		name := def.Name.Name
		if _, dup := ctx.AttrDefs[name]; dup {
			ctx.HardError(types.DiagDuplicateAttributeDef, dbc.NetworkRef(), def.Name.Span,
				"attribute %s defined more than once", name)
			continue
		}
		typ := def.Type
		switch {
		case (typ.Kind == dbc.AttrInt || typ.Kind == dbc.AttrHex) && typ.IntMin > typ.IntMax:
			ctx.HardError(types.DiagAttributeDomainInvalid, dbc.NetworkRef(), def.Span,
				"attribute %s: minimum %d exceeds maximum %d", name, typ.IntMin, typ.IntMax)
		case typ.Kind == dbc.AttrFloat && typ.FloatMin > typ.FloatMax:
			ctx.HardError(types.DiagAttributeDomainInvalid, dbc.NetworkRef(), def.Span,
				"attribute %s: minimum %g exceeds maximum %g", name, typ.FloatMin, typ.FloatMax)
		}
		if len(typ.Enum) == 0 {
			typ.Enum = nil
		}
		d := &dbc.AttributeDefinition{Name: name, Object: def.Object, Type: typ}
		ctx.AttrDefs[name] = d
		ctx.DB.AttributeDefinitions = append(ctx.DB.AttributeDefinitions, d)
	}
}

func registerMessages(ctx *resolverContext) {
	for i := range ctx.File.Messages {
		m := &ctx.File.Messages[i]
		ref := dbc.MessageRef(m.ID)
		if _, dup := ctx.Messages[m.ID]; dup {
			ctx.HardError(types.DiagDuplicateMessageID, ref, m.Span,
				"message id %d declared more than once", m.ID)
			continue
		}
		if other, dup := ctx.MessageNames[m.Name.Name]; dup {
			ctx.HardError(types.DiagDuplicateMessageName, ref, m.Name.Span,
				"message name %s already used by message %d", m.Name.Name, other.ID)
			continue
		}
		msg := &dbc.Message{
			ID:          m.ID,
			Name:        m.Name.Name,
			Size:        m.Size,
			Transmitter: m.Transmitter,
		}
		ctx.Messages[m.ID] = msg
		ctx.MessageNames[msg.Name] = msg
		ctx.DB.Messages = append(ctx.DB.Messages, msg)

		for j := range m.Signals {
			registerSignal(ctx, msg, &m.Signals[j])
		}

		if ctx.TraceEnabled() {
			ctx.Trace("registered message",
				slog.String("name", msg.Name),
				slog.Uint64("id", uint64(msg.ID)),
				slog.Int("signals", len(msg.Signals)))
		}
	}
}

func registerSignal(ctx *resolverContext, msg *dbc.Message, s *ast.Signal) {
	key := signalKey{msg.ID, s.Name.Name}
	if _, dup := ctx.Signals[key]; dup {
		ctx.HardError(types.DiagDuplicateSignal, dbc.SignalRef(msg.ID, s.Name.Name), s.Name.Span,
			"signal %s declared more than once in message %s", s.Name.Name, msg.Name)
		return
	}
	sig := &dbc.Signal{
		Name:      s.Name.Name,
		StartBit:  s.StartBit,
		Size:      s.Size,
		ByteOrder: s.ByteOrder,
		ValueType: valueType(s.Signed),
		Factor:    s.Factor,
		Offset:    s.Offset,
		Min:       s.Min,
		Max:       s.Max,
		Unit:      s.Unit,
		Receivers: s.Receivers,
		Multiplex: multiplexFromIndicator(s.Mux),
	}
	ctx.Signals[key] = sig
	msg.Signals = append(msg.Signals, sig)
}

// multiplexFromIndicator maps the SG_ multiplexer field to a role. An m<n>M
// signal is an extended-multiplexed selector whose switch is resolved later.
func multiplexFromIndicator(mux ast.MuxIndicator) dbc.Multiplex {
	switch {
	case mux.Switch && mux.Multiplexed:
		return dbc.Multiplex{Role: dbc.MuxExtended, Value: mux.Value, Selector: true}
	case mux.Switch:
		return dbc.Multiplex{Role: dbc.MuxSwitch}
	case mux.Multiplexed:
		return dbc.Multiplex{Role: dbc.MuxMultiplexed, Value: mux.Value}
	}
	return dbc.Multiplex{}
}

func valueType(signed bool) dbc.ValueType {
	if signed {
		return dbc.Signed
	}
	return dbc.Unsigned
}

// Environment variable type codes and the access code flag that marks a
// string variable.
const (
	envTypeInteger = 0
	envTypeFloat   = 1
	envTypeString  = 2
	envAccessStr   = 0x8000
)

func registerEnvVars(ctx *resolverContext) {
	for _, ev := range ctx.File.EnvVars {
		name := ev.Name.Name
		ref := dbc.EnvVarRef(name)
		if _, dup := ctx.EnvVars[name]; dup {
			ctx.HardError(types.DiagDuplicateEnvVar, ref, ev.Name.Span,
				"environment variable %s declared more than once", name)
			continue
		}
		v := &dbc.EnvVar{
			Name:    name,
			Min:     ev.Min,
			Max:     ev.Max,
			Unit:    ev.Unit,
			Initial: ev.Initial,
			ID:      ev.ID,
			Access:  dbc.EnvAccess(ev.AccessCode & 3),
			Nodes:   ev.Nodes,
		}
		switch {
		case ev.AccessCode&envAccessStr != 0 || ev.TypeCode == envTypeString:
			v.Type = dbc.EnvString
		case ev.TypeCode == envTypeFloat:
			v.Type = dbc.EnvFloat
		case ev.TypeCode == envTypeInteger:
			v.Type = dbc.EnvInteger
		default:
			ctx.Warn(types.DiagValueTypeInvalid, ref, ev.Span,
				"unknown environment variable type %d, assuming integer", ev.TypeCode)
			v.Type = dbc.EnvInteger
		}
		ctx.EnvVars[name] = v
		ctx.DB.EnvVars = append(ctx.DB.EnvVars, v)
	}
}
