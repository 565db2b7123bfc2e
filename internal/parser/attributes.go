package parser

import (
	"math"
	"strconv"

	"github.com/golangcan/godbc/dbc"
	"github.com/golangcan/godbc/internal/ast"
	"github.com/golangcan/godbc/internal/lexer"
)

// parseComment parses: CM_ [target] "text" ;
func (p *Parser) parseComment() *SyntaxError {
	start := p.advance()
	target, err := p.parseTarget()
	if err != nil {
		return err
	}
	text, err := p.parseString()
	if err != nil {
		return err
	}
	if _, err := p.expect(lexer.TokSemicolon); err != nil {
		return err
	}
	p.file.Comments = append(p.file.Comments, ast.Comment{
		Target: target, Text: text, Span: p.spanFrom(start),
	})
	return nil
}

// parseTarget parses the optional entity of CM_ and BA_:
//
//	BU_ node | BO_ id | SG_ id signal | EV_ name
//
// No entity keyword means the network itself.
func (p *Parser) parseTarget() (dbc.Ref, *SyntaxError) {
	switch p.peek().Kind {
	case lexer.TokKwNodes:
		p.advance()
		name, err := p.parseIdent()
		return dbc.NodeRef(name.Name), err
	case lexer.TokKwMessage:
		p.advance()
		id, err := p.parseU32("message id")
		return dbc.MessageRef(id), err
	case lexer.TokKwSignal:
		p.advance()
		id, sig, err := p.parseSignalRef()
		return dbc.SignalRef(id, sig), err
	case lexer.TokKwEnvVar:
		p.advance()
		name, err := p.parseIdent()
		return dbc.EnvVarRef(name.Name), err
	}
	return dbc.NetworkRef(), nil
}

// parseAttributeDef parses BA_DEF_ [object] "name" type ; and, when rel is
// set, BA_DEF_REL_ relation "name" type ;
func (p *Parser) parseAttributeDef(rel bool) *SyntaxError {
	start := p.advance()
	object := dbc.ObjectNetwork
	kind := p.peek().Kind
	switch {
	case rel && kind == lexer.TokKwNodeEnvVarRel:
		object = dbc.ObjectNodeEnvVar
	case rel && kind == lexer.TokKwNodeMessageRel:
		object = dbc.ObjectNodeMessage
	case rel && kind == lexer.TokKwNodeSignalRel:
		object = dbc.ObjectNodeSignal
	case rel:
		return p.errorf("BU_EV_REL_, BU_BO_REL_ or BU_SG_REL_")
	case kind == lexer.TokKwNodes:
		object = dbc.ObjectNode
	case kind == lexer.TokKwMessage:
		object = dbc.ObjectMessage
	case kind == lexer.TokKwSignal:
		object = dbc.ObjectSignal
	case kind == lexer.TokKwEnvVar:
		object = dbc.ObjectEnvVar
	}
	if object != dbc.ObjectNetwork {
		p.advance()
	}

	nameTok := p.peek()
	name, err := p.parseString()
	if err != nil {
		return err
	}
	typ, err := p.parseAttributeType()
	if err != nil {
		return err
	}
	if _, err := p.expect(lexer.TokSemicolon); err != nil {
		return err
	}
	p.file.AttributeDefs = append(p.file.AttributeDefs, ast.AttributeDef{
		Name:   ast.NewIdent(name, nameTok.Span),
		Object: object,
		Type:   typ,
		Span:   p.spanFrom(start),
	})
	return nil
}

// parseAttributeType parses the value domain of a definition:
//
//	INT min max | HEX min max | FLOAT min max | STRING | ENUM "a", "b", ...
//
// Omitted numeric bounds mean an unrestricted range.
func (p *Parser) parseAttributeType() (dbc.AttributeType, *SyntaxError) {
	var typ dbc.AttributeType
	if !p.check(lexer.TokIdent) {
		return typ, p.errorf("attribute type INT, HEX, FLOAT, STRING or ENUM")
	}
	kind, ok := dbc.ParseAttributeKind(p.text(p.peek().Span))
	if !ok {
		return typ, p.errorf("attribute type INT, HEX, FLOAT, STRING or ENUM")
	}
	p.advance()
	typ.Kind = kind

	switch kind {
	case dbc.AttrInt, dbc.AttrHex:
		if p.check(lexer.TokSemicolon) {
			return typ, nil
		}
		var err *SyntaxError
		if typ.IntMin, err = p.parseIntBound("minimum"); err != nil {
			return typ, err
		}
		if typ.IntMax, err = p.parseIntBound("maximum"); err != nil {
			return typ, err
		}
	case dbc.AttrFloat:
		if p.check(lexer.TokSemicolon) {
			return typ, nil
		}
		var err *SyntaxError
		if typ.FloatMin, err = p.parseFloat("minimum"); err != nil {
			return typ, err
		}
		if typ.FloatMax, err = p.parseFloat("maximum"); err != nil {
			return typ, err
		}
	case dbc.AttrEnum:
		for p.check(lexer.TokQuotedString) {
			label, _ := p.parseString()
			typ.Enum = append(typ.Enum, label)
			p.accept(lexer.TokComma)
		}
	}
	return typ, nil
}

// parseIntBound parses an INT or HEX bound. Some editors write integral
// bounds as floats ("0.0"); those are accepted.
func (p *Parser) parseIntBound(what string) (int64, *SyntaxError) {
	tok := p.peek()
	if tok.Kind != lexer.TokFloat {
		return p.parseInt(what)
	}
	f, err := p.parseFloat(what)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return 0, &SyntaxError{Span: tok.Span, Expected: what + " (integer)", Found: p.describe(tok)}
	}
	return int64(f), nil
}

// parseValue parses an attribute value: a quoted string or a number.
// Integer literals that do not fit 64 bits are kept as floats.
func (p *Parser) parseValue() (dbc.Value, *SyntaxError) {
	if p.check(lexer.TokQuotedString) {
		s, err := p.parseString()
		return dbc.StringValue(s), err
	}
	neg := false
	if p.check(lexer.TokMinus) || p.check(lexer.TokPlus) {
		neg = p.advance().Kind == lexer.TokMinus
	}
	tok := p.peek()
	if !tok.Kind.IsNumber() {
		return dbc.Value{}, p.errorf("attribute value")
	}
	text := p.text(tok.Span)
	if tok.Kind != lexer.TokFloat {
		if v, err := strconv.ParseInt(text, 10, 64); err == nil {
			p.advance()
			if neg {
				v = -v
			}
			return dbc.IntValue(v), nil
		}
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return dbc.Value{}, p.errorf("attribute value (finite number)")
	}
	p.advance()
	if neg {
		f = -f
	}
	return dbc.FloatValue(f), nil
}

// parseAttributeDefault parses: BA_DEF_DEF_ "name" value ; and the
// BA_DEF_DEF_REL_ form, which has the same shape.
func (p *Parser) parseAttributeDefault() *SyntaxError {
	start := p.advance()
	name, err := p.parseString()
	if err != nil {
		return err
	}
	v, err := p.parseValue()
	if err != nil {
		return err
	}
	if _, err := p.expect(lexer.TokSemicolon); err != nil {
		return err
	}
	p.file.AttributeDefaults = append(p.file.AttributeDefaults, ast.AttributeDefault{
		Name: name, Value: v, Span: p.spanFrom(start),
	})
	return nil
}

// parseAttribute parses: BA_ "name" [target] value ;
func (p *Parser) parseAttribute() *SyntaxError {
	start := p.advance()
	name, err := p.parseString()
	if err != nil {
		return err
	}
	target, err := p.parseTarget()
	if err != nil {
		return err
	}
	v, err := p.parseValue()
	if err != nil {
		return err
	}
	if _, err := p.expect(lexer.TokSemicolon); err != nil {
		return err
	}
	p.file.Attributes = append(p.file.Attributes, ast.Attribute{
		Name: name, Target: target, Value: v, Span: p.spanFrom(start),
	})
	return nil
}

// parseRelationAttribute parses:
//
//	BA_REL_ "name" BU_EV_REL_ node env value ;
//	BA_REL_ "name" BU_BO_REL_ node id value ;
//	BA_REL_ "name" BU_SG_REL_ node SG_ id signal value ;
func (p *Parser) parseRelationAttribute() *SyntaxError {
	start := p.advance()
	name, err := p.parseString()
	if err != nil {
		return err
	}
	kind := p.peek().Kind
	if kind != lexer.TokKwNodeEnvVarRel && kind != lexer.TokKwNodeMessageRel && kind != lexer.TokKwNodeSignalRel {
		return p.errorf("BU_EV_REL_, BU_BO_REL_ or BU_SG_REL_")
	}
	p.advance()
	node, err := p.parseIdent()
	if err != nil {
		return err
	}

	target := dbc.Ref{Node: node.Name}
	switch kind {
	case lexer.TokKwNodeEnvVarRel:
		ev, err := p.parseIdent()
		if err != nil {
			return err
		}
		target.Kind = dbc.ObjectNodeEnvVar
		target.EnvVar = ev.Name
	case lexer.TokKwNodeMessageRel:
		id, err := p.parseU32("message id")
		if err != nil {
			return err
		}
		target.Kind = dbc.ObjectNodeMessage
		target.MessageID = id
	default:
		if _, err := p.expect(lexer.TokKwSignal); err != nil {
			return err
		}
		id, sig, err := p.parseSignalRef()
		if err != nil {
			return err
		}
		target.Kind = dbc.ObjectNodeSignal
		target.MessageID = id
		target.Signal = sig
	}

	v, err := p.parseValue()
	if err != nil {
		return err
	}
	if _, err := p.expect(lexer.TokSemicolon); err != nil {
		return err
	}
	p.file.Attributes = append(p.file.Attributes, ast.Attribute{
		Name: name, Target: target, Value: v, Span: p.spanFrom(start),
	})
	return nil
}
