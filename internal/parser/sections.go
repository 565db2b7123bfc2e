package parser

import (
	"strconv"
	"strings"

	"github.com/golangcan/godbc/dbc"
	"github.com/golangcan/godbc/internal/ast"
	"github.com/golangcan/godbc/internal/lexer"
)

// accessPrefix precedes the hexadecimal access code of an EV_ statement.
const accessPrefix = "DUMMY_NODE_VECTOR"

// parseVersion parses: VERSION "text"
func (p *Parser) parseVersion() *SyntaxError {
	p.advance()
	v, err := p.parseString()
	if err != nil {
		return err
	}
	p.file.Version = v
	return nil
}

// parseNewSymbols parses: NS_ : symbol*
//
// The symbol list has no terminator. It ends at a token in the first column
// or at a token followed by ':', which starts the next section.
func (p *Parser) parseNewSymbols() *SyntaxError {
	p.advance()
	if _, err := p.expect(lexer.TokColon); err != nil {
		return err
	}
	for !p.isEOF() {
		tok := p.peek()
		if p.atColumnOne() || p.peekNth(1).Kind == lexer.TokColon {
			break
		}
		if tok.Kind != lexer.TokIdent && !tok.Kind.IsKeyword() {
			break
		}
		p.file.NewSymbols = append(p.file.NewSymbols, p.text(tok.Span))
		p.advance()
	}
	return nil
}

// parseBitTiming parses: BS_ : [baudrate : btr1 , btr2]
func (p *Parser) parseBitTiming() *SyntaxError {
	p.advance()
	if _, err := p.expect(lexer.TokColon); err != nil {
		return err
	}
	if !p.check(lexer.TokNumber) || p.peek().LineStart {
		return nil
	}
	baud, err := p.parseUint(64, "baudrate")
	if err != nil {
		return err
	}
	if _, err := p.expect(lexer.TokColon); err != nil {
		return err
	}
	btr1, err := p.parseUint(64, "BTR1")
	if err != nil {
		return err
	}
	if !p.accept(lexer.TokComma) && !p.accept(lexer.TokColon) {
		return p.errorf("',' between BTR1 and BTR2")
	}
	btr2, err := p.parseUint(64, "BTR2")
	if err != nil {
		return err
	}
	p.file.BitTiming = &dbc.BitTiming{Baudrate: baud, BTR1: btr1, BTR2: btr2}
	return nil
}

// parseNodes parses: BU_ : name*
func (p *Parser) parseNodes() *SyntaxError {
	p.advance()
	if _, err := p.expect(lexer.TokColon); err != nil {
		return err
	}
	for p.check(lexer.TokIdent) && !p.atColumnOne() {
		tok := p.advance()
		p.file.Nodes = append(p.file.Nodes, ast.NewIdent(p.text(tok.Span), tok.Span))
		p.accept(lexer.TokComma)
	}
	return nil
}

// parseValueEntries parses: (integer "label")*
func (p *Parser) parseValueEntries() ([]ast.ValueEntry, *SyntaxError) {
	var entries []ast.ValueEntry
	for !p.check(lexer.TokSemicolon) {
		start := p.peek()
		v, err := p.parseInt("raw value or ';'")
		if err != nil {
			return nil, err
		}
		label, err := p.parseString()
		if err != nil {
			return nil, err
		}
		entries = append(entries, ast.ValueEntry{Value: v, Label: label, Span: p.spanFrom(start)})
	}
	p.advance()
	return entries, nil
}

// parseValueTable parses: VAL_TABLE_ name (integer "label")* ;
func (p *Parser) parseValueTable() *SyntaxError {
	start := p.advance()
	name, err := p.parseIdent()
	if err != nil {
		return err
	}
	entries, err := p.parseValueEntries()
	if err != nil {
		return err
	}
	p.file.ValueTables = append(p.file.ValueTables, ast.ValueTable{
		Name: name, Entries: entries, Span: p.spanFrom(start),
	})
	return nil
}

// parseMessage parses: BO_ id name : size transmitter, followed by its SG_
// lines. A malformed signal line is recorded and skipped; the remaining
// signal lines still belong to the message.
func (p *Parser) parseMessage() *SyntaxError {
	start := p.advance()
	id, err := p.parseU32("message id")
	if err != nil {
		return err
	}
	name, err := p.parseIdent()
	if err != nil {
		return err
	}
	if _, err := p.expect(lexer.TokColon); err != nil {
		return err
	}
	size, err := p.parseU32("message size")
	if err != nil {
		return err
	}
	tx, err := p.parseIdent()
	if err != nil {
		return err
	}
	msg := ast.Message{ID: id, Name: name, Size: size, Span: p.spanFrom(start)}
	if tx.Name != noNode {
		msg.Transmitter = tx.Name
	}

	for p.check(lexer.TokKwSignal) {
		sig, err := p.parseSignal()
		if err != nil {
			p.recordParseError(*err)
			p.recoverToSection()
			continue
		}
		msg.Signals = append(msg.Signals, sig)
	}
	p.file.Messages = append(p.file.Messages, msg)
	return nil
}

// parseMuxIndicator decodes M, m<n> and m<n>M.
func parseMuxIndicator(text string) (ast.MuxIndicator, bool) {
	var mux ast.MuxIndicator
	if text == "M" {
		mux.Switch = true
		return mux, true
	}
	rest, ok := strings.CutPrefix(text, "m")
	if !ok {
		return mux, false
	}
	if trimmed, found := strings.CutSuffix(rest, "M"); found {
		mux.Switch = true
		rest = trimmed
	}
	v, err := strconv.ParseUint(rest, 10, 64)
	if err != nil {
		return mux, false
	}
	mux.Multiplexed = true
	mux.Value = v
	return mux, true
}

// parseLayout parses: size @ byte_order sign. The byte order digit is 0 for
// Motorola and 1 for Intel; the sign is '+' or '-'.
func (p *Parser) parseLayout() (size uint32, order dbc.ByteOrder, signed bool, err *SyntaxError) {
	size, err = p.parseU32("signal size")
	if err != nil {
		return
	}
	if _, err = p.expect(lexer.TokAt); err != nil {
		return
	}
	switch {
	case p.check(lexer.TokNumber) && p.text(p.peek().Span) == "0":
		order = dbc.BigEndian
	case p.check(lexer.TokNumber) && p.text(p.peek().Span) == "1":
		order = dbc.LittleEndian
	default:
		err = p.errorf("byte order 0 or 1")
		return
	}
	p.advance()
	switch {
	case p.accept(lexer.TokPlus):
	case p.accept(lexer.TokMinus):
		signed = true
	default:
		err = p.errorf("value type '+' or '-'")
	}
	return
}

// parseScale parses: ( factor , offset ) [ [ min | max ] ]. A missing range
// reads as 0|0.
func (p *Parser) parseScale() (factor, offset, lo, hi float64, err *SyntaxError) {
	if _, err = p.expect(lexer.TokLParen); err != nil {
		return
	}
	if factor, err = p.parseFloat("factor"); err != nil {
		return
	}
	if _, err = p.expect(lexer.TokComma); err != nil {
		return
	}
	if offset, err = p.parseFloat("offset"); err != nil {
		return
	}
	if _, err = p.expect(lexer.TokRParen); err != nil {
		return
	}
	if !p.accept(lexer.TokLBracket) {
		return
	}
	if lo, err = p.parseFloat("minimum"); err != nil {
		return
	}
	if _, err = p.expect(lexer.TokPipe); err != nil {
		return
	}
	if hi, err = p.parseFloat("maximum"); err != nil {
		return
	}
	_, err = p.expect(lexer.TokRBracket)
	return
}

// parseSignal parses:
//
//	SG_ name [mux] : start | size @ order sign ( factor , offset ) [ min | max ] "unit" receivers
//
// The range and the unit may be left out.
func (p *Parser) parseSignal() (ast.Signal, *SyntaxError) {
	start := p.advance()
	var sig ast.Signal
	name, err := p.parseIdent()
	if err != nil {
		return sig, err
	}
	sig.Name = name

	if p.check(lexer.TokIdent) {
		mux, ok := parseMuxIndicator(p.text(p.peek().Span))
		if !ok {
			return sig, p.errorf("multiplexer indicator M, m<n> or m<n>M")
		}
		p.advance()
		sig.Mux = mux
	}
	if _, err := p.expect(lexer.TokColon); err != nil {
		return sig, err
	}
	if sig.StartBit, err = p.parseU32("start bit"); err != nil {
		return sig, err
	}
	if _, err := p.expect(lexer.TokPipe); err != nil {
		return sig, err
	}
	if sig.Size, sig.ByteOrder, sig.Signed, err = p.parseLayout(); err != nil {
		return sig, err
	}
	if sig.Factor, sig.Offset, sig.Min, sig.Max, err = p.parseScale(); err != nil {
		return sig, err
	}
	if p.check(lexer.TokQuotedString) {
		if sig.Unit, err = p.parseString(); err != nil {
			return sig, err
		}
	}
	sig.Receivers = p.parseNodeList()
	sig.Span = p.spanFrom(start)
	return sig, nil
}

// parseMessageTransmitters parses: BO_TX_BU_ id : node (, node)* ;
func (p *Parser) parseMessageTransmitters() *SyntaxError {
	start := p.advance()
	id, err := p.parseU32("message id")
	if err != nil {
		return err
	}
	if _, err := p.expect(lexer.TokColon); err != nil {
		return err
	}
	var nodes []string
	for p.check(lexer.TokIdent) {
		if name := p.text(p.advance().Span); name != noNode {
			nodes = append(nodes, name)
		}
		p.accept(lexer.TokComma)
	}
	if _, err := p.expect(lexer.TokSemicolon); err != nil {
		return err
	}
	p.file.Transmitters = append(p.file.Transmitters, ast.MessageTransmitters{
		MessageID: id, Transmitters: nodes, Span: p.spanFrom(start),
	})
	return nil
}

// parseEnvVar parses:
//
//	EV_ name : type [ min | max ] "unit" initial id DUMMY_NODE_VECTOR<hex> node (, node)* ;
func (p *Parser) parseEnvVar() *SyntaxError {
	start := p.advance()
	var ev ast.EnvVar
	var err *SyntaxError
	if ev.Name, err = p.parseIdent(); err != nil {
		return err
	}
	if _, err := p.expect(lexer.TokColon); err != nil {
		return err
	}
	if ev.TypeCode, err = p.parseUint(16, "environment variable type 0, 1 or 2"); err != nil {
		return err
	}
	if _, err := p.expect(lexer.TokLBracket); err != nil {
		return err
	}
	if ev.Min, err = p.parseFloat("minimum"); err != nil {
		return err
	}
	if _, err := p.expect(lexer.TokPipe); err != nil {
		return err
	}
	if ev.Max, err = p.parseFloat("maximum"); err != nil {
		return err
	}
	if _, err := p.expect(lexer.TokRBracket); err != nil {
		return err
	}
	if ev.Unit, err = p.parseString(); err != nil {
		return err
	}
	if ev.Initial, err = p.parseFloat("initial value"); err != nil {
		return err
	}
	if ev.ID, err = p.parseU32("environment variable id"); err != nil {
		return err
	}
	if !p.check(lexer.TokIdent) {
		return p.errorf("%s<access>", accessPrefix)
	}
	hex, ok := strings.CutPrefix(p.text(p.peek().Span), accessPrefix)
	code, perr := strconv.ParseUint(hex, 16, 16)
	if !ok || perr != nil {
		return p.errorf("%s<access>", accessPrefix)
	}
	p.advance()
	ev.AccessCode = code

	for p.check(lexer.TokIdent) {
		if name := p.text(p.advance().Span); name != noNode {
			ev.Nodes = append(ev.Nodes, name)
		}
		p.accept(lexer.TokComma)
	}
	if _, err := p.expect(lexer.TokSemicolon); err != nil {
		return err
	}
	ev.Span = p.spanFrom(start)
	p.file.EnvVars = append(p.file.EnvVars, ev)
	return nil
}

// parseEnvVarData parses: ENVVAR_DATA_ name : size ;
func (p *Parser) parseEnvVarData() *SyntaxError {
	start := p.advance()
	name, err := p.parseIdent()
	if err != nil {
		return err
	}
	if _, err := p.expect(lexer.TokColon); err != nil {
		return err
	}
	size, err := p.parseU32("data size")
	if err != nil {
		return err
	}
	if _, err := p.expect(lexer.TokSemicolon); err != nil {
		return err
	}
	p.file.EnvVarData = append(p.file.EnvVarData, ast.EnvVarData{
		Name: name.Name, Size: size, Span: p.spanFrom(start),
	})
	return nil
}

// parseSignalType parses:
//
//	SGTYPE_ name : size @ order sign ( factor , offset ) [ min | max ] "unit" default , value_table ;
func (p *Parser) parseSignalType() *SyntaxError {
	start := p.advance()
	var st ast.SignalType
	var err *SyntaxError
	if st.Name, err = p.parseIdent(); err != nil {
		return err
	}
	if _, err := p.expect(lexer.TokColon); err != nil {
		return err
	}
	if st.Size, st.ByteOrder, st.Signed, err = p.parseLayout(); err != nil {
		return err
	}
	if st.Factor, st.Offset, st.Min, st.Max, err = p.parseScale(); err != nil {
		return err
	}
	if st.Unit, err = p.parseString(); err != nil {
		return err
	}
	if st.Default, err = p.parseFloat("default value"); err != nil {
		return err
	}
	if p.accept(lexer.TokComma) && p.check(lexer.TokIdent) {
		st.ValueTable = p.text(p.advance().Span)
	}
	if _, err := p.expect(lexer.TokSemicolon); err != nil {
		return err
	}
	st.Span = p.spanFrom(start)
	p.file.SignalTypes = append(p.file.SignalTypes, st)
	return nil
}

// parseSignalRef parses: message_id signal_name
func (p *Parser) parseSignalRef() (uint32, string, *SyntaxError) {
	id, err := p.parseU32("message id")
	if err != nil {
		return 0, "", err
	}
	name, err := p.parseIdent()
	if err != nil {
		return 0, "", err
	}
	return id, name.Name, nil
}

// parseSignalTypeRef parses: SIG_TYPE_REF_ id signal : type ;
func (p *Parser) parseSignalTypeRef() *SyntaxError {
	start := p.advance()
	id, sig, err := p.parseSignalRef()
	if err != nil {
		return err
	}
	if _, err := p.expect(lexer.TokColon); err != nil {
		return err
	}
	typ, err := p.parseIdent()
	if err != nil {
		return err
	}
	if _, err := p.expect(lexer.TokSemicolon); err != nil {
		return err
	}
	p.file.SignalTypeRefs = append(p.file.SignalTypeRefs, ast.SignalTypeRef{
		MessageID: id, Signal: sig, Type: typ.Name, Span: p.spanFrom(start),
	})
	return nil
}

// parseValueDescriptions parses the signal form VAL_ id signal entries ;
// and the environment variable form VAL_ name entries ;
func (p *Parser) parseValueDescriptions() *SyntaxError {
	start := p.advance()
	var target dbc.Ref
	switch {
	case p.check(lexer.TokNumber):
		id, sig, err := p.parseSignalRef()
		if err != nil {
			return err
		}
		target = dbc.SignalRef(id, sig)
	case p.check(lexer.TokIdent):
		target = dbc.EnvVarRef(p.text(p.advance().Span))
	default:
		return p.errorf("message id or environment variable name")
	}
	entries, err := p.parseValueEntries()
	if err != nil {
		return err
	}
	p.file.ValueDescriptions = append(p.file.ValueDescriptions, ast.ValueDescriptions{
		Target: target, Entries: entries, Span: p.spanFrom(start),
	})
	return nil
}

// parseSignalGroup parses: SIG_GROUP_ id name repetitions : signal* ;
func (p *Parser) parseSignalGroup() *SyntaxError {
	start := p.advance()
	var g ast.SignalGroup
	var err *SyntaxError
	if g.MessageID, err = p.parseU32("message id"); err != nil {
		return err
	}
	if g.Name, err = p.parseIdent(); err != nil {
		return err
	}
	if g.Repetitions, err = p.parseU32("repetitions"); err != nil {
		return err
	}
	if _, err := p.expect(lexer.TokColon); err != nil {
		return err
	}
	for p.check(lexer.TokIdent) {
		g.Signals = append(g.Signals, p.text(p.advance().Span))
		p.accept(lexer.TokComma)
	}
	if _, err := p.expect(lexer.TokSemicolon); err != nil {
		return err
	}
	g.Span = p.spanFrom(start)
	p.file.SignalGroups = append(p.file.SignalGroups, g)
	return nil
}

// parseSignalValueType parses: SIG_VALTYPE_ id signal : code ;
func (p *Parser) parseSignalValueType() *SyntaxError {
	start := p.advance()
	id, sig, err := p.parseSignalRef()
	if err != nil {
		return err
	}
	p.accept(lexer.TokColon)
	code, err := p.parseUint(8, "value type 0, 1 or 2")
	if err != nil {
		return err
	}
	if _, err := p.expect(lexer.TokSemicolon); err != nil {
		return err
	}
	p.file.SignalValueTypes = append(p.file.SignalValueTypes, ast.SignalValueType{
		MessageID: id, Signal: sig, Code: code, Span: p.spanFrom(start),
	})
	return nil
}

// parseMuxValues parses: SG_MUL_VAL_ id signal switch min-max (, min-max)* ;
//
// The lexer reads "3-5" as 3 followed by the negative number -5, so the
// upper bound arrives either as '-' and a number or as a negative number.
func (p *Parser) parseMuxValues() *SyntaxError {
	start := p.advance()
	id, sig, err := p.parseSignalRef()
	if err != nil {
		return err
	}
	sw, err := p.parseIdent()
	if err != nil {
		return err
	}
	mv := ast.MuxValues{MessageID: id, Signal: sig, Switch: sw.Name}
	for {
		lo, err := p.parseUint(64, "range minimum")
		if err != nil {
			return err
		}
		var hi uint64
		switch {
		case p.check(lexer.TokNegativeNumber):
			v, perr := strconv.ParseUint(strings.TrimPrefix(p.text(p.peek().Span), "-"), 10, 64)
			if perr != nil {
				return p.errorf("range maximum")
			}
			p.advance()
			hi = v
		case p.accept(lexer.TokMinus):
			if hi, err = p.parseUint(64, "range maximum"); err != nil {
				return err
			}
		default:
			return p.errorf("'-' between range bounds")
		}
		mv.Ranges = append(mv.Ranges, dbc.MuxRange{Min: lo, Max: hi})
		if !p.accept(lexer.TokComma) {
			break
		}
	}
	if _, err := p.expect(lexer.TokSemicolon); err != nil {
		return err
	}
	mv.Span = p.spanFrom(start)
	p.file.MuxValues = append(p.file.MuxValues, mv)
	return nil
}
