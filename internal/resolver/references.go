package resolver

import (
	"slices"

	"github.com/golangcan/godbc/dbc"
	"github.com/golangcan/godbc/internal/ast"
	"github.com/golangcan/godbc/internal/types"
)

// resolveReferences attaches deferred references to the indexed entities.
// References to entities that do not exist are dropped with a warning.
func resolveReferences(ctx *resolverContext) {
	resolveTransmitters(ctx)
	resolveEnvVarData(ctx)
	resolveSignalTypes(ctx)
	resolveValueDescriptions(ctx)
	resolveSignalValueTypes(ctx)
	resolveSignalGroups(ctx)
	resolveComments(ctx)
	resolveAttributeDefaults(ctx)
	resolveAttributes(ctx)
	resolveMuxValues(ctx)
}

func resolveTransmitters(ctx *resolverContext) {
	for _, tx := range ctx.File.Transmitters {
		msg := ctx.Messages[tx.MessageID]
		if msg == nil {
			ctx.Warn(types.DiagTransmitterDangling, dbc.MessageRef(tx.MessageID), tx.Span,
				"transmitters for unknown message dropped")
			continue
		}
		for _, name := range tx.Transmitters {
			if !slices.Contains(msg.Transmitters, name) {
				msg.Transmitters = append(msg.Transmitters, name)
			}
		}
	}
}

func resolveEnvVarData(ctx *resolverContext) {
	for _, d := range ctx.File.EnvVarData {
		ev := ctx.EnvVars[d.Name]
		if ev == nil {
			ctx.Warn(types.DiagEnvVarDataDangling, dbc.EnvVarRef(d.Name), d.Span,
				"data size for unknown environment variable dropped")
			continue
		}
		ev.Type = dbc.EnvData
		ev.DataSize = d.Size
	}
}

func resolveSignalTypes(ctx *resolverContext) {
	for _, st := range ctx.DB.SignalTypes {
		if st.ValueTable != "" && ctx.ValueTables[st.ValueTable] == nil {
			ctx.Warn(types.DiagValueTableDangling, dbc.NetworkRef(), types.Synthetic,
				"signal type %s: unknown value table %s dropped", st.Name, st.ValueTable)
			st.ValueTable = ""
		}
	}
	for _, r := range ctx.File.SignalTypeRefs {
		ref := dbc.SignalRef(r.MessageID, r.Signal)
		sig := ctx.LookupSignal(r.MessageID, r.Signal)
		switch {
		case sig == nil:
			ctx.Warn(types.DiagSignalTypeDangling, ref, r.Span,
				"signal type reference to unknown signal dropped")
		case ctx.SignalTypes[r.Type] == nil:
			ctx.Warn(types.DiagSignalTypeDangling, ref, r.Span,
				"reference to unknown signal type %s dropped", r.Type)
		default:
			sig.Type = r.Type
		}
	}
}

func resolveValueDescriptions(ctx *resolverContext) {
	for _, vd := range ctx.File.ValueDescriptions {
		switch vd.Target.Kind {
		case dbc.ObjectSignal:
			sig := ctx.LookupSignal(vd.Target.MessageID, vd.Target.Signal)
			if sig == nil {
				ctx.Warn(types.DiagValueDescDangling, vd.Target, vd.Span,
					"value descriptions for unknown signal dropped")
				continue
			}
			sig.ValueDescriptions = convertEntries(ctx, vd.Target, "value descriptions", vd.Entries)
		case dbc.ObjectEnvVar:
			ev := ctx.EnvVars[vd.Target.EnvVar]
			if ev == nil {
				ctx.Warn(types.DiagValueDescDangling, vd.Target, vd.Span,
					"value descriptions for unknown environment variable dropped")
				continue
			}
			ev.ValueDescriptions = convertEntries(ctx, vd.Target, "value descriptions", vd.Entries)
		}
	}
}

// SIG_VALTYPE_ codes.
const (
	sigValInteger = 0
	sigValFloat32 = 1
	sigValFloat64 = 2
)

func resolveSignalValueTypes(ctx *resolverContext) {
	for _, vt := range ctx.File.SignalValueTypes {
		ref := dbc.SignalRef(vt.MessageID, vt.Signal)
		sig := ctx.LookupSignal(vt.MessageID, vt.Signal)
		if sig == nil {
			ctx.Warn(types.DiagValueTypeDangling, ref, vt.Span,
				"value type for unknown signal dropped")
			continue
		}
		switch vt.Code {
		case sigValInteger:
		case sigValFloat32:
			sig.ValueType = dbc.Float32
		case sigValFloat64:
			sig.ValueType = dbc.Float64
		default:
			ctx.Warn(types.DiagValueTypeInvalid, ref, vt.Span,
				"unknown value type %d ignored", vt.Code)
		}
	}
}

func resolveSignalGroups(ctx *resolverContext) {
	for _, g := range ctx.File.SignalGroups {
		ref := dbc.MessageRef(g.MessageID)
		msg := ctx.Messages[g.MessageID]
		if msg == nil {
			ctx.Warn(types.DiagSignalGroupDangling, ref, g.Span,
				"signal group %s for unknown message dropped", g.Name.Name)
			continue
		}
		group := &dbc.SignalGroup{Name: g.Name.Name, Repetitions: g.Repetitions}
		for _, name := range g.Signals {
			if msg.Signal(name) == nil {
				ctx.Warn(types.DiagSignalGroupMember, ref, g.Span,
					"signal group %s: unknown signal %s dropped", g.Name.Name, name)
				continue
			}
			group.Signals = append(group.Signals, name)
		}
		msg.SignalGroups = append(msg.SignalGroups, group)
	}
}

// commentSlot returns the comment field of the referenced entity, or nil.
func (c *resolverContext) commentSlot(ref dbc.Ref) *string {
	switch ref.Kind {
	case dbc.ObjectNetwork:
		return &c.DB.Comment
	case dbc.ObjectNode:
		if n := c.Nodes[ref.Node]; n != nil {
			return &n.Comment
		}
	case dbc.ObjectMessage:
		if m := c.Messages[ref.MessageID]; m != nil {
			return &m.Comment
		}
	case dbc.ObjectSignal:
		if s := c.LookupSignal(ref.MessageID, ref.Signal); s != nil {
			return &s.Comment
		}
	case dbc.ObjectEnvVar:
		if e := c.EnvVars[ref.EnvVar]; e != nil {
			return &e.Comment
		}
	}
	return nil
}

func resolveComments(ctx *resolverContext) {
	for _, cm := range ctx.File.Comments {
		slot := ctx.commentSlot(cm.Target)
		if slot == nil {
			ctx.Warn(types.DiagCommentDangling, cm.Target, cm.Span,
				"comment on unknown %s dropped", cm.Target.Kind)
			continue
		}
		if *slot != "" {
			ctx.Warn(types.DiagCommentDuplicate, cm.Target, cm.Span,
				"comment replaces an earlier comment")
		}
		*slot = cm.Text
	}
}

func resolveAttributeDefaults(ctx *resolverContext) {
	for _, d := range ctx.File.AttributeDefaults {
		def := ctx.AttrDefs[d.Name]
		if def == nil {
			ctx.Warn(types.DiagAttributeUnknown, dbc.NetworkRef(), d.Span,
				"default for undefined attribute %s dropped", d.Name)
			continue
		}
		v, ok := def.Type.Normalize(d.Value)
		if !ok {
			ctx.HardError(types.DiagAttributeOutOfDomain, dbc.NetworkRef(), d.Span,
				"default %#v of attribute %s outside %s domain", d.Value, d.Name, def.Type.Kind)
			continue
		}
		def.Default = &v
	}
}

// attributeSlot returns the attribute list of the referenced entity, or nil.
func (c *resolverContext) attributeSlot(ref dbc.Ref) *[]dbc.AttributeValue {
	switch ref.Kind {
	case dbc.ObjectNetwork:
		return &c.DB.Attributes
	case dbc.ObjectNode:
		if n := c.Nodes[ref.Node]; n != nil {
			return &n.Attributes
		}
	case dbc.ObjectMessage:
		if m := c.Messages[ref.MessageID]; m != nil {
			return &m.Attributes
		}
	case dbc.ObjectSignal:
		if s := c.LookupSignal(ref.MessageID, ref.Signal); s != nil {
			return &s.Attributes
		}
	case dbc.ObjectEnvVar:
		if e := c.EnvVars[ref.EnvVar]; e != nil {
			return &e.Attributes
		}
	}
	return nil
}

// relationExists reports whether both ends of a node relation exist.
func (c *resolverContext) relationExists(ref dbc.Ref) bool {
	if c.Nodes[ref.Node] == nil {
		return false
	}
	switch ref.Kind {
	case dbc.ObjectNodeEnvVar:
		return c.EnvVars[ref.EnvVar] != nil
	case dbc.ObjectNodeMessage:
		return c.Messages[ref.MessageID] != nil
	case dbc.ObjectNodeSignal:
		return c.LookupSignal(ref.MessageID, ref.Signal) != nil
	}
	return false
}

func resolveAttributes(ctx *resolverContext) {
	for _, a := range ctx.File.Attributes {
		resolveAttribute(ctx, a)
	}
}

func resolveAttribute(ctx *resolverContext, a ast.Attribute) {
	def := ctx.AttrDefs[a.Name]
	if def == nil {
		ctx.Warn(types.DiagAttributeUnknown, a.Target, a.Span,
			"value of undefined attribute %s dropped", a.Name)
		return
	}
	if def.Object != a.Target.Kind {
		ctx.Warn(types.DiagAttributeKindMismatch, a.Target, a.Span,
			"attribute %s is defined for %s, value dropped", a.Name, def.Object)
		return
	}
	v, ok := def.Type.Normalize(a.Value)
	if !ok {
		ctx.HardError(types.DiagAttributeOutOfDomain, a.Target, a.Span,
			"value %#v of attribute %s outside %s domain", a.Value, a.Name, def.Type.Kind)
		return
	}

	if a.Target.Kind.IsRelation() {
		if !ctx.relationExists(a.Target) {
			ctx.Warn(types.DiagAttributeDangling, a.Target, a.Span,
				"attribute %s on unknown relation dropped", a.Name)
			return
		}
		ra := dbc.RelationAttribute{
			Name:      a.Name,
			Object:    a.Target.Kind,
			Node:      a.Target.Node,
			MessageID: a.Target.MessageID,
			Signal:    a.Target.Signal,
			EnvVar:    a.Target.EnvVar,
			Value:     v,
		}
		rels := ctx.DB.RelationAttributes
		if i := slices.IndexFunc(rels, func(r dbc.RelationAttribute) bool {
			return r.Name == a.Name && r.Ref() == a.Target
		}); i >= 0 {
			ctx.Warn(types.DiagAttributeDuplicate, a.Target, a.Span,
				"attribute %s assigned more than once, last value kept", a.Name)
			rels[i] = ra
			return
		}
		ctx.DB.RelationAttributes = append(rels, ra)
		return
	}

	slot := ctx.attributeSlot(a.Target)
	if slot == nil {
		ctx.Warn(types.DiagAttributeDangling, a.Target, a.Span,
			"attribute %s on unknown %s dropped", a.Name, a.Target.Kind)
		return
	}
	if i := slices.IndexFunc(*slot, func(av dbc.AttributeValue) bool { return av.Name == a.Name }); i >= 0 {
		ctx.Warn(types.DiagAttributeDuplicate, a.Target, a.Span,
			"attribute %s assigned more than once, last value kept", a.Name)
		(*slot)[i].Value = v
		return
	}
	*slot = append(*slot, dbc.AttributeValue{Name: a.Name, Value: v})
}

// resolveMuxValues applies SG_MUL_VAL_ entries. The named signal becomes
// extended-multiplexed under the named switch; several entries for one
// signal accumulate their ranges.
func resolveMuxValues(ctx *resolverContext) {
	for _, mv := range ctx.File.MuxValues {
		ref := dbc.SignalRef(mv.MessageID, mv.Signal)
		msg := ctx.Messages[mv.MessageID]
		sig := ctx.LookupSignal(mv.MessageID, mv.Signal)
		if msg == nil || sig == nil {
			ctx.Warn(types.DiagMultiplexDangling, ref, mv.Span,
				"multiplex ranges for unknown signal dropped")
			continue
		}
		sw := msg.Signal(mv.Switch)
		switch {
		case sw == nil:
			ctx.HardError(types.DiagMultiplexorUnknown, ref, mv.Span,
				"switch %s is not a signal of message %s", mv.Switch, msg.Name)
			continue
		case sw == sig:
			ctx.HardError(types.DiagMultiplexorUnknown, ref, mv.Span,
				"signal names itself as its switch")
			continue
		case !sw.Multiplex.IsSwitch():
			ctx.HardError(types.DiagMultiplexorUnknown, ref, mv.Span,
				"switch %s is not a multiplexor", mv.Switch)
			continue
		}
		valid := true
		for _, r := range mv.Ranges {
			if r.Min > r.Max {
				ctx.HardError(types.DiagMultiplexRangeInvalid, ref, mv.Span,
					"range %d-%d has minimum above maximum", r.Min, r.Max)
				valid = false
			}
		}
		if !valid {
			continue
		}

		mux := &sig.Multiplex
		if ctx.ExplicitRanges[sig] && mux.Switch != mv.Switch {
			ctx.HardError(types.DiagMultiplexorAmbiguous, ref, mv.Span,
				"signal multiplexed by both %s and %s", mux.Switch, mv.Switch)
			continue
		}
		selector := mux.Role == dbc.MuxSwitch || (mux.Role == dbc.MuxExtended && mux.Selector)
		if !ctx.ExplicitRanges[sig] {
			mux.Ranges = nil
		}
		mux.Role = dbc.MuxExtended
		mux.Switch = mv.Switch
		mux.Selector = selector
		mux.Ranges = append(mux.Ranges, mv.Ranges...)
		if len(mux.Ranges) > 0 {
			mux.Value = mux.Ranges[0].Min
		}
		ctx.ExplicitRanges[sig] = true
		ctx.ExtendedMessages[msg] = true
	}
}
