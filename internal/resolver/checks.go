package resolver

import (
	"log/slog"
	"strings"

	"github.com/golangcan/godbc/dbc"
	"github.com/golangcan/godbc/internal/graph"
	"github.com/golangcan/godbc/internal/types"
)

// checkModel verifies per-message structure: multiplexing, bit ranges and
// float sizes.
func checkModel(ctx *resolverContext) {
	for _, msg := range ctx.DB.Messages {
		checkMultiplexing(ctx, msg)
		checkSignals(ctx, msg)
	}
}

func checkSignals(ctx *resolverContext, msg *dbc.Message) {
	for _, sig := range msg.Signals {
		ref := dbc.SignalRef(msg.ID, sig.Name)
		if msg.ID != dbc.IndependentSignalsID && !sig.FitsIn(msg.Size) {
			first, end := sig.BitSpan()
			ctx.HardError(types.DiagBitRangeOverflow, ref, ctx.signalSpan(msg, sig),
				"bits %d..%d exceed the %d-byte message", first, end-1, msg.Size)
		}
		switch {
		case sig.ValueType == dbc.Float32 && sig.Size != 32:
			ctx.HardError(types.DiagFloatSizeInvalid, ref, ctx.signalSpan(msg, sig),
				"IEEE float signal must be 32 bits, not %d", sig.Size)
		case sig.ValueType == dbc.Float64 && sig.Size != 64:
			ctx.HardError(types.DiagFloatSizeInvalid, ref, ctx.signalSpan(msg, sig),
				"IEEE double signal must be 64 bits, not %d", sig.Size)
		}
	}
}

// checkMultiplexing completes and verifies the multiplex roles of a
// message's signals.
//
// A plain m<n> signal needs exactly one M switch in its message. In a
// message that uses SG_MUL_VAL_, and for m<n>M selectors without an
// SG_MUL_VAL_ entry, such signals are rewritten as extended-multiplexed
// signals with the single range n-n under that switch. Ranges that such an
// indicator does not imply must not overlap under the same switch.
func checkMultiplexing(ctx *resolverContext, msg *dbc.Message) {
	var switches []*dbc.Signal
	for _, sig := range msg.Signals {
		if sig.Multiplex.Role == dbc.MuxSwitch {
			switches = append(switches, sig)
		}
	}
	extended := ctx.ExtendedMessages[msg]

	for _, sig := range msg.Signals {
		mux := &sig.Multiplex
		pending := mux.Role == dbc.MuxExtended && !ctx.ExplicitRanges[sig]
		if mux.Role != dbc.MuxMultiplexed && !pending {
			continue
		}
		ref := dbc.SignalRef(msg.ID, sig.Name)
		switch len(switches) {
		case 0:
			ctx.HardError(types.DiagMultiplexorMissing, ref, ctx.signalSpan(msg, sig),
				"multiplexed signal in a message without a multiplexor")
			continue
		case 1:
		default:
			ctx.HardError(types.DiagMultiplexorAmbiguous, ref, ctx.signalSpan(msg, sig),
				"message has %d multiplexors; SG_MUL_VAL_ is required to choose one", len(switches))
			continue
		}
		if pending || extended {
			v := mux.Value
			mux.Role = dbc.MuxExtended
			mux.Switch = switches[0].Name
			mux.Ranges = []dbc.MuxRange{{Min: v, Max: v}}
		}
	}

	checkRangeOverlap(ctx, msg)
	checkSwitchCycles(ctx, msg)

	if ctx.TraceEnabled() {
		ctx.Trace("checked multiplexing",
			slog.String("message", msg.Name),
			slog.Int("switches", len(switches)),
			slog.Bool("extended", extended))
	}
}

// checkRangeOverlap rejects two signals whose SG_MUL_VAL_ ranges under the
// same switch claim a common value. Ranges implied by an m<n> indicator are
// not compared; several signals may share one multiplexor value.
func checkRangeOverlap(ctx *resolverContext, msg *dbc.Message) {
	bySwitch := make(map[string][]*dbc.Signal)
	for _, sig := range msg.Signals {
		if sig.Multiplex.Role == dbc.MuxExtended && !msg.ImpliedRange(sig) {
			bySwitch[sig.Multiplex.Switch] = append(bySwitch[sig.Multiplex.Switch], sig)
		}
	}
	for _, sig := range msg.Signals {
		if sig.Multiplex.Role != dbc.MuxExtended || msg.ImpliedRange(sig) {
			continue
		}
		for _, other := range bySwitch[sig.Multiplex.Switch] {
			if other == sig {
				break
			}
			if r, o, ok := firstOverlap(sig.Multiplex.Ranges, other.Multiplex.Ranges); ok {
				ctx.HardError(types.DiagMultiplexRangeOverlap, dbc.SignalRef(msg.ID, sig.Name),
					ctx.signalSpan(msg, sig),
					"range %d-%d overlaps range %d-%d of %s under switch %s",
					r.Min, r.Max, o.Min, o.Max, other.Name, sig.Multiplex.Switch)
				break
			}
		}
	}
}

// checkSwitchCycles rejects selectors that, through SG_MUL_VAL_, end up
// switching themselves.
func checkSwitchCycles(ctx *resolverContext, msg *dbc.Message) {
	g := graph.New(len(msg.Signals))
	for _, sig := range msg.Signals {
		if sig.Multiplex.Role == dbc.MuxExtended {
			g.AddEdge(sig.Name, sig.Multiplex.Switch)
		}
	}
	for _, cycle := range g.FindCycles() {
		sig := msg.Signal(cycle[0])
		ctx.HardError(types.DiagMultiplexCycle, dbc.SignalRef(msg.ID, sig.Name),
			ctx.signalSpan(msg, sig),
			"multiplexor chain %s loops back on itself", strings.Join(cycle, " -> "))
	}
}

func firstOverlap(a, b []dbc.MuxRange) (dbc.MuxRange, dbc.MuxRange, bool) {
	for _, r := range a {
		for _, o := range b {
			if r.Overlaps(o) {
				return r, o, true
			}
		}
	}
	return dbc.MuxRange{}, dbc.MuxRange{}, false
}

// signalSpan returns the source span of a signal's SG_ line.
func (c *resolverContext) signalSpan(msg *dbc.Message, sig *dbc.Signal) types.Span {
	for i := range c.File.Messages {
		m := &c.File.Messages[i]
		if m.ID != msg.ID {
			continue
		}
		for j := range m.Signals {
			if m.Signals[j].Name.Name == sig.Name {
				return m.Signals[j].Span
			}
		}
	}
	return types.Synthetic
}
