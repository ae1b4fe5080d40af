// Package acquire implements the zero-cross armed sampling sequencer.
//
// The interrupt side calls TryArm (zero-cross edge) and OnConversionComplete
// (ADC done). The main loop calls Completed, processes the cycle and then
// Release. The sample buffer is owned by the interrupt side while a cycle is
// in flight and by the main loop between Completed and Release; the two
// atomic flags are the only state both sides write.
package acquire

import (
	"sync/atomic"
)

// Hardware is the ADC/timer surface driven by the sequencer.
type Hardware interface {
	// StartConversion selects the channel for the next conversion.
	StartConversion(ch Channel)
	// EnableTrigger starts the sampling timer and ADC auto-trigger.
	EnableTrigger()
	// DisableTrigger stops the sampling timer and ADC auto-trigger.
	DisableTrigger()
}

// Cycle is a completed acquisition. The slices alias the acquisition buffer
// and stay valid until Release.
type Cycle struct {
	Voltage []uint16
	Current []uint16
	Offset  uint16
}

// Acquisition owns the sample buffer, the sequencer state and the handshake
// flags of one measurement channel pair.
type Acquisition struct {
	hw  Hardware
	buf *SampleBuffer

	state    atomic.Uint32
	ready    atomic.Bool // readyForNewSample
	complete atomic.Bool // sampleComplete

	edgeCmds [4]Command
	convCmds [4]Command
}

// New creates an acquisition with room for capacity voltage/current pairs.
// capacity must be at least 3 so the estimator has interior samples.
func New(hw Hardware, capacity int) *Acquisition {
	if capacity < 3 {
		panic("acquire: capacity must be at least 3")
	}
	a := &Acquisition{
		hw:  hw,
		buf: NewSampleBuffer(capacity),
	}
	a.state.Store(uint32(Idle))
	a.ready.Store(true)
	return a
}

// TryArm handles a zero-cross edge. It starts a new cycle and returns true
// only if the previous cycle has been released; otherwise the edge is dropped.
func (a *Acquisition) TryArm() bool {
	if !a.ready.CompareAndSwap(true, false) {
		return false
	}
	s := a.State()
	if s != Idle {
		a.ready.Store(true)
		return false
	}
	a.complete.Store(false)

	next, cmds := Transition(a.edgeCmds[:0], s, Event{Kind: EventEdge, Capacity: a.buf.Cap()})
	// The buffer is rewound before the new state becomes visible to the
	// conversion handler.
	if len(cmds) > 0 && cmds[0].Op == CmdResetBuffer {
		a.buf.Reset()
		cmds = cmds[1:]
	}
	a.state.Store(uint32(next))
	a.apply(cmds, 0)
	return true
}

// OnConversionComplete consumes one ADC result. Results arriving while idle
// are ignored.
func (a *Acquisition) OnConversionComplete(value uint16) {
	s := a.State()
	if s == Idle {
		return
	}
	next, cmds := Transition(a.convCmds[:0], s, Event{
		Kind:     EventConversionComplete,
		Pairs:    a.buf.Len(),
		Capacity: a.buf.Cap(),
	})
	// The state moves before any side effect so the next conversion, or the
	// next cycle, never observes the old state.
	a.state.Store(uint32(next))
	a.apply(cmds, value)
}

func (a *Acquisition) apply(cmds []Command, value uint16) {
	for _, c := range cmds {
		switch c.Op {
		case CmdResetBuffer:
			a.buf.Reset()
		case CmdStoreVoltage:
			_ = a.buf.PutVoltage(value)
		case CmdStoreCurrent:
			_, _ = a.buf.PutCurrent(value)
		case CmdStoreOffset:
			a.buf.PutOffset(value)
		case CmdStartConversion:
			a.hw.StartConversion(c.Channel)
		case CmdEnableTrigger:
			a.hw.EnableTrigger()
		case CmdDisableTrigger:
			a.hw.DisableTrigger()
		case CmdSignalComplete:
			a.complete.Store(true)
		}
	}
}

// Completed returns the finished cycle if one is waiting.
func (a *Acquisition) Completed() (Cycle, bool) {
	if !a.complete.Load() {
		return Cycle{}, false
	}
	return Cycle{
		Voltage: a.buf.Voltage(),
		Current: a.buf.Current(),
		Offset:  a.buf.Offset(),
	}, true
}

// Release hands the buffer back to the interrupt side and re-arms the
// zero-cross gate. Call it after the cycle's results are published.
func (a *Acquisition) Release() {
	a.complete.Store(false)
	a.ready.Store(true)
}

// State returns the sequencer state.
func (a *Acquisition) State() State {
	return State(a.state.Load())
}

// Ready reports whether the next zero-cross edge will start a cycle.
func (a *Acquisition) Ready() bool {
	return a.ready.Load()
}

// SampleComplete reports whether a finished cycle is waiting for the consumer.
func (a *Acquisition) SampleComplete() bool {
	return a.complete.Load()
}

// Capacity returns the number of pairs per cycle.
func (a *Acquisition) Capacity() int {
	return a.buf.Cap()
}
