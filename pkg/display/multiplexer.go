package display

import "sync/atomic"

// Pin is a digital output. machine.Pin satisfies it.
type Pin interface {
	High()
	Low()
}

// ShiftRegister are the control lines of a 74HC595 style register.
type ShiftRegister struct {
	Data  Pin
	Clock Pin
	Latch Pin
}

// Multiplexer lights one digit per Refresh call. Show may be called from any
// goroutine; Refresh must only be called from the refresh tick.
type Multiplexer struct {
	sr     ShiftRegister
	digits [Digits]Pin // Active low enables, leftmost first

	frame atomic.Uint32
	pos   int
}

// NewMultiplexer drives the register lines low, disables every digit and
// shows NoSignal.
func NewMultiplexer(sr ShiftRegister, digits [Digits]Pin) *Multiplexer {
	m := &Multiplexer{sr: sr, digits: digits}
	sr.Data.Low()
	sr.Clock.Low()
	sr.Latch.Low()
	m.disableAll()
	m.Show(NoSignal)
	return m
}

// Show replaces the displayed frame.
func (m *Multiplexer) Show(f Frame) {
	m.frame.Store(f.pack())
}

// Frame returns the displayed frame.
func (m *Multiplexer) Frame() Frame {
	return unpack(m.frame.Load())
}

// Position returns the digit the next Refresh will light.
func (m *Multiplexer) Position() int {
	return m.pos
}

// Refresh shifts out the segment byte of the current digit, blanks all
// digits, latches the byte and enables the current digit only.
func (m *Multiplexer) Refresh() {
	f := m.Frame()
	m.shiftOut(f[m.pos])
	m.disableAll()
	m.sr.Latch.High()
	m.sr.Latch.Low()
	m.digits[m.pos].Low()
	m.pos = (m.pos + 1) % Digits
}

// shiftOut sends b MSB first with one clock pulse per bit.
func (m *Multiplexer) shiftOut(b uint8) {
	for i := 7; i >= 0; i-- {
		if b&(1<<i) != 0 {
			m.sr.Data.High()
		} else {
			m.sr.Data.Low()
		}
		m.sr.Clock.High()
		m.sr.Clock.Low()
	}
}

func (m *Multiplexer) disableAll() {
	for _, d := range m.digits {
		d.High()
	}
}
