package document

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/golangcan/godbc/dbc"
	"github.com/golangcan/godbc/internal/ast"
	"github.com/golangcan/godbc/internal/resolver"
	"github.com/golangcan/godbc/internal/types"
)

// Options configures ToDatabase.
type Options struct {
	// Logger receives validator logs. nil disables logging.
	Logger *slog.Logger
	// DiagnosticConfig controls reporting and failure thresholds. nil means
	// dbc.DefaultConfig().
	DiagnosticConfig *dbc.DiagnosticConfig
}

// SIG_VALTYPE_ codes and environment variable encodings, as written in
// DBC text.
const (
	sigValFloat32 = 1
	sigValFloat64 = 2

	envTypeInteger = 0
	envTypeFloat   = 1
	envAccessStr   = 0x8000
)

// ToDatabase validates doc and returns the sealed database. The document is
// translated into the same intermediate form the DBC parser produces, so
// the checks and diagnostics are those of a text load. Diagnostics carry
// no line positions.
func ToDatabase(doc *Document, opts Options) (*dbc.Database, []dbc.Diagnostic, error) {
	if doc == nil {
		return nil, nil, fmt.Errorf("%w: nil document", ErrInvalidDocument)
	}
	file, err := toFile(doc)
	if err != nil {
		return nil, nil, err
	}
	cfg := dbc.DefaultConfig()
	if opts.DiagnosticConfig != nil {
		cfg = *opts.DiagnosticConfig
	}
	logger := types.ComponentLogger(opts.Logger, "document")
	return resolver.Resolve(file, nil, logger, cfg)
}

// toFile lowers doc into parser fragments. Only enumeration names are
// checked here; everything else is left to the validator.
func toFile(doc *Document) (*ast.File, error) {
	f := &ast.File{
		Version:    doc.Version,
		NewSymbols: nonEmpty(doc.NewSymbols),
	}
	if bt := doc.BitTiming; bt != nil {
		f.BitTiming = &dbc.BitTiming{Baudrate: bt.Baudrate, BTR1: bt.BTR1, BTR2: bt.BTR2}
	}
	addComment(f, dbc.NetworkRef(), doc.Comment)
	addAttributes(f, dbc.NetworkRef(), doc.Attributes)

	for _, n := range doc.Nodes {
		f.Nodes = append(f.Nodes, ast.Ident{Name: n.Name})
		addComment(f, dbc.NodeRef(n.Name), n.Comment)
		addAttributes(f, dbc.NodeRef(n.Name), n.Attributes)
	}
	for _, t := range doc.ValueTables {
		f.ValueTables = append(f.ValueTables, ast.ValueTable{
			Name:    ast.Ident{Name: t.Name},
			Entries: toEntries(t.Entries),
		})
	}
	for i := range doc.Messages {
		if err := addMessage(f, &doc.Messages[i]); err != nil {
			return nil, err
		}
	}
	for i := range doc.EnvVars {
		if err := addEnvVar(f, &doc.EnvVars[i]); err != nil {
			return nil, err
		}
	}
	for _, t := range doc.SignalTypes {
		order, err := parseByteOrder(t.ByteOrder)
		if err != nil {
			return nil, fmt.Errorf("signal type %s: %w", t.Name, err)
		}
		vt, err := parseValueType(t.ValueType)
		if err != nil {
			return nil, fmt.Errorf("signal type %s: %w", t.Name, err)
		}
		f.SignalTypes = append(f.SignalTypes, ast.SignalType{
			Name:       ast.Ident{Name: t.Name},
			Size:       t.Length,
			ByteOrder:  order,
			Signed:     vt == dbc.Signed,
			Factor:     t.Factor,
			Offset:     t.Offset,
			Min:        t.Min,
			Max:        t.Max,
			Unit:       t.Unit,
			Default:    t.Default,
			ValueTable: t.ValueTable,
		})
	}
	for i := range doc.AttributeDefinitions {
		if err := addDefinition(f, &doc.AttributeDefinitions[i]); err != nil {
			return nil, err
		}
	}
	for _, ra := range doc.RelationAttributes {
		kind, ok := dbc.ParseObjectKind(ra.Object)
		if !ok || !kind.IsRelation() {
			return nil, fmt.Errorf("%w: attribute %s: unknown relation %q", ErrInvalidDocument, ra.Name, ra.Object)
		}
		f.Attributes = append(f.Attributes, ast.Attribute{
			Name: ra.Name,
			Target: dbc.Ref{
				Kind:      kind,
				Node:      ra.Node,
				MessageID: ra.MessageID,
				Signal:    ra.Signal,
				EnvVar:    ra.EnvVar,
			},
			Value: ra.Value.Value(),
		})
	}
	return f, nil
}

func addMessage(f *ast.File, m *Message) error {
	msg := ast.Message{
		ID:          m.ID,
		Name:        ast.Ident{Name: m.Name},
		Size:        m.Length,
		Transmitter: m.Transmitter,
	}
	if len(m.Transmitters) > 0 {
		f.Transmitters = append(f.Transmitters, ast.MessageTransmitters{
			MessageID:    m.ID,
			Transmitters: nonEmpty(m.Transmitters),
		})
	}
	addComment(f, dbc.MessageRef(m.ID), m.Comment)
	addAttributes(f, dbc.MessageRef(m.ID), m.Attributes)

	layout := muxLayout(m)
	for i := range m.Signals {
		s := &m.Signals[i]
		sig, err := toSignal(f, m.ID, s, layout.NeedsMuxValues(layout.Signals[i]))
		if err != nil {
			return fmt.Errorf("message %d signal %s: %w", m.ID, s.Name, err)
		}
		msg.Signals = append(msg.Signals, sig)

		ref := dbc.SignalRef(m.ID, s.Name)
		if s.Type != "" {
			f.SignalTypeRefs = append(f.SignalTypeRefs, ast.SignalTypeRef{MessageID: m.ID, Signal: s.Name, Type: s.Type})
		}
		if len(s.ValueDescriptions) > 0 {
			f.ValueDescriptions = append(f.ValueDescriptions, ast.ValueDescriptions{
				Target:  ref,
				Entries: toEntries(s.ValueDescriptions),
			})
		}
		addComment(f, ref, s.Comment)
		addAttributes(f, ref, s.Attributes)
	}
	for _, g := range m.SignalGroups {
		f.SignalGroups = append(f.SignalGroups, ast.SignalGroup{
			MessageID:   m.ID,
			Name:        ast.Ident{Name: g.Name},
			Repetitions: g.Repetitions,
			Signals:     nonEmpty(g.Signals),
		})
	}
	f.Messages = append(f.Messages, msg)
	return nil
}

// muxLayout mirrors the multiplex roles of a message's signals in the model
// so SG_MUL_VAL_ fragments follow the same rules as the DBC writer.
func muxLayout(m *Message) *dbc.Message {
	out := &dbc.Message{ID: m.ID, Signals: make([]*dbc.Signal, len(m.Signals))}
	for i := range m.Signals {
		s := &m.Signals[i]
		sig := &dbc.Signal{Name: s.Name}
		if mx := s.Multiplex; mx != nil {
			role, _ := dbc.ParseMuxRole(mx.Role)
			sig.Multiplex = dbc.Multiplex{Role: role, Value: mx.Value, Switch: mx.Switch, Selector: mx.Selector}
			for _, r := range mx.Ranges {
				sig.Multiplex.Ranges = append(sig.Multiplex.Ranges, dbc.MuxRange{Min: r.Min, Max: r.Max})
			}
		}
		out.Signals[i] = sig
	}
	return out
}

// toSignal converts one signal. A float value type and extended
// multiplexing are expressed as the SIG_VALTYPE_ and SG_MUL_VAL_ fragments
// a DBC file would carry; muxValues is false for ranges the m<n> indicator
// already implies.
func toSignal(f *ast.File, id uint32, s *Signal, muxValues bool) (ast.Signal, error) {
	order, err := parseByteOrder(s.ByteOrder)
	if err != nil {
		return ast.Signal{}, err
	}
	vt, err := parseValueType(s.ValueType)
	if err != nil {
		return ast.Signal{}, err
	}
	switch vt {
	case dbc.Float32:
		f.SignalValueTypes = append(f.SignalValueTypes, ast.SignalValueType{MessageID: id, Signal: s.Name, Code: sigValFloat32})
	case dbc.Float64:
		f.SignalValueTypes = append(f.SignalValueTypes, ast.SignalValueType{MessageID: id, Signal: s.Name, Code: sigValFloat64})
	}

	sig := ast.Signal{
		Name:      ast.Ident{Name: s.Name},
		StartBit:  s.Start,
		Size:      s.Length,
		ByteOrder: order,
		Signed:    vt == dbc.Signed,
		Factor:    s.Factor,
		Offset:    s.Offset,
		Min:       s.Min,
		Max:       s.Max,
		Unit:      s.Unit,
		Receivers: nonEmpty(s.Receivers),
	}
	if s.Multiplex == nil {
		return sig, nil
	}
	role, ok := dbc.ParseMuxRole(s.Multiplex.Role)
	if !ok {
		return ast.Signal{}, fmt.Errorf("%w: unknown multiplex role %q", ErrInvalidDocument, s.Multiplex.Role)
	}
	switch role {
	case dbc.MuxSwitch:
		sig.Mux = ast.MuxIndicator{Switch: true}
	case dbc.MuxMultiplexed:
		sig.Mux = ast.MuxIndicator{Multiplexed: true, Value: s.Multiplex.Value}
	case dbc.MuxExtended:
		sig.Mux = ast.MuxIndicator{Multiplexed: true, Value: s.Multiplex.Value, Switch: s.Multiplex.Selector}
		if !muxValues {
			break
		}
		mv := ast.MuxValues{MessageID: id, Signal: s.Name, Switch: s.Multiplex.Switch}
		for _, r := range s.Multiplex.Ranges {
			mv.Ranges = append(mv.Ranges, dbc.MuxRange{Min: r.Min, Max: r.Max})
		}
		if len(mv.Ranges) > 0 {
			sig.Mux.Value = mv.Ranges[0].Min
		}
		f.MuxValues = append(f.MuxValues, mv)
	}
	return sig, nil
}

func addEnvVar(f *ast.File, e *EnvVar) error {
	typ, ok := dbc.ParseEnvVarType(orDefault(e.Type, dbc.EnvInteger.String()))
	if !ok {
		return fmt.Errorf("%w: environment variable %s: unknown type %q", ErrInvalidDocument, e.Name, e.Type)
	}
	access, ok := dbc.ParseEnvAccess(orDefault(e.Access, dbc.AccessUnrestricted.String()))
	if !ok {
		return fmt.Errorf("%w: environment variable %s: unknown access %q", ErrInvalidDocument, e.Name, e.Access)
	}
	ev := ast.EnvVar{
		Name:       ast.Ident{Name: e.Name},
		TypeCode:   envTypeInteger,
		Min:        e.Min,
		Max:        e.Max,
		Unit:       e.Unit,
		Initial:    e.Initial,
		ID:         e.ID,
		AccessCode: uint64(access),
		Nodes:      nonEmpty(e.Nodes),
	}
	switch typ {
	case dbc.EnvFloat:
		ev.TypeCode = envTypeFloat
	case dbc.EnvString:
		ev.AccessCode |= envAccessStr
	case dbc.EnvData:
		f.EnvVarData = append(f.EnvVarData, ast.EnvVarData{Name: e.Name, Size: e.DataSize})
	}
	f.EnvVars = append(f.EnvVars, ev)

	ref := dbc.EnvVarRef(e.Name)
	if len(e.ValueDescriptions) > 0 {
		f.ValueDescriptions = append(f.ValueDescriptions, ast.ValueDescriptions{
			Target:  ref,
			Entries: toEntries(e.ValueDescriptions),
		})
	}
	addComment(f, ref, e.Comment)
	addAttributes(f, ref, e.Attributes)
	return nil
}

func addDefinition(f *ast.File, d *AttributeDefinition) error {
	object, ok := dbc.ParseObjectKind(d.Object)
	if !ok {
		return fmt.Errorf("%w: attribute %s: unknown object kind %q", ErrInvalidDocument, d.Name, d.Object)
	}
	kind, ok := dbc.ParseAttributeKind(d.Type)
	if !ok {
		return fmt.Errorf("%w: attribute %s: unknown type %q", ErrInvalidDocument, d.Name, d.Type)
	}
	typ := dbc.AttributeType{Kind: kind}
	switch kind {
	case dbc.AttrInt, dbc.AttrHex:
		lo, hi, err := intBounds(d)
		if err != nil {
			return err
		}
		typ.IntMin, typ.IntMax = lo, hi
	case dbc.AttrFloat:
		if d.Min != nil {
			typ.FloatMin, _ = d.Min.Value().Number()
		}
		if d.Max != nil {
			typ.FloatMax, _ = d.Max.Value().Number()
		}
	case dbc.AttrEnum:
		typ.Enum = nonEmpty(d.Enum)
	}
	f.AttributeDefs = append(f.AttributeDefs, ast.AttributeDef{
		Name:   ast.Ident{Name: d.Name},
		Object: object,
		Type:   typ,
	})
	if d.Default != nil {
		f.AttributeDefaults = append(f.AttributeDefaults, ast.AttributeDefault{Name: d.Name, Value: d.Default.Value()})
	}
	return nil
}

func intBounds(d *AttributeDefinition) (int64, int64, error) {
	var bounds [2]int64
	for i, s := range []*Scalar{d.Min, d.Max} {
		if s == nil {
			continue
		}
		v, ok := dbc.AttributeType{Kind: dbc.AttrInt}.Normalize(s.Value())
		if !ok {
			return 0, 0, fmt.Errorf("%w: attribute %s: bound %#v is not an integer", ErrInvalidDocument, d.Name, s.Value())
		}
		bounds[i] = v.Int
	}
	return bounds[0], bounds[1], nil
}

func addComment(f *ast.File, target dbc.Ref, text string) {
	if text == "" {
		return
	}
	f.Comments = append(f.Comments, ast.Comment{Target: target, Text: text})
}

func addAttributes(f *ast.File, target dbc.Ref, attrs []Attribute) {
	for _, a := range attrs {
		f.Attributes = append(f.Attributes, ast.Attribute{Name: a.Name, Target: target, Value: a.Value.Value()})
	}
}

func toEntries(entries []ValueDescription) []ast.ValueEntry {
	if len(entries) == 0 {
		return nil
	}
	out := make([]ast.ValueEntry, len(entries))
	for i, e := range entries {
		out[i] = ast.ValueEntry{Value: e.Value, Label: e.Label}
	}
	return out
}

// parseByteOrder and parseValueType accept an empty name as the DBC
// default, little endian and unsigned.
func parseByteOrder(s string) (dbc.ByteOrder, error) {
	order, ok := dbc.ParseByteOrder(orDefault(s, dbc.LittleEndian.String()))
	if !ok {
		return 0, fmt.Errorf("%w: unknown byte order %q", ErrInvalidDocument, s)
	}
	return order, nil
}

func parseValueType(s string) (dbc.ValueType, error) {
	vt, ok := dbc.ParseValueType(orDefault(s, dbc.Unsigned.String()))
	if !ok {
		return 0, fmt.Errorf("%w: unknown value type %q", ErrInvalidDocument, s)
	}
	return vt, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// nonEmpty copies s so the database never aliases the document, and maps
// an empty slice to nil.
func nonEmpty[S ~[]E, E any](s S) S {
	if len(s) == 0 {
		return nil
	}
	return slices.Clone(s)
}
