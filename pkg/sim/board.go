package sim

import (
	"context"
	"time"

	"github.com/itohio/goemon/pkg/acquire"
)

var _ acquire.Hardware = (*Board)(nil)

// Stats counts board events.
type Stats struct {
	Edges       uint64 // Rising zero crossings seen
	Dropped     uint64 // Edges that arrived while a cycle was in flight
	Conversions uint64 // ADC conversions completed
}

// Board simulates the ADC, the sampling timer and the zero-cross input.
// All interrupt handlers run on the goroutine calling Step, so they never
// nest, the same way interrupts behave on a single-core MCU.
type Board struct {
	wave   Waveform
	period time.Duration // ADC trigger period

	acq *acquire.Acquisition

	now      time.Duration
	channel  acquire.Channel
	pending  bool
	enabled  bool
	lastSign bool // Voltage above offset at the previous step
	stats    Stats
}

// NewBoard creates a board sampling wave every period.
func NewBoard(wave Waveform, period time.Duration) *Board {
	return &Board{
		wave:     wave,
		period:   period,
		lastSign: wave.VoltageSignal(0) >= 0,
	}
}

// Attach connects the acquisition whose handlers the board invokes.
func (b *Board) Attach(a *acquire.Acquisition) {
	b.acq = a
}

// StartConversion selects the channel for the next timer-triggered conversion.
func (b *Board) StartConversion(ch acquire.Channel) {
	b.channel = ch
	b.pending = true
}

// EnableTrigger starts the sampling timer.
func (b *Board) EnableTrigger() {
	b.enabled = true
}

// DisableTrigger stops the sampling timer.
func (b *Board) DisableTrigger() {
	b.enabled = false
	b.pending = false
}

// Step advances simulated time by one sampling period: a pending conversion
// completes first, then a rising zero crossing in the elapsed interval fires
// the edge handler.
func (b *Board) Step() {
	b.now += b.period

	if b.enabled && b.pending {
		b.pending = false
		b.stats.Conversions++
		if b.acq != nil {
			b.acq.OnConversionComplete(b.wave.Sample(b.channel, b.now))
		}
	}

	sign := b.wave.VoltageSignal(b.now) >= 0
	if sign && !b.lastSign {
		b.stats.Edges++
		if b.acq != nil && !b.acq.TryArm() {
			b.stats.Dropped++
		}
	}
	b.lastSign = sign
}

// Advance runs Step until d of simulated time has passed.
func (b *Board) Advance(d time.Duration) {
	for end := b.now + d; b.now+b.period <= end; {
		b.Step()
	}
}

// Run advances the board in real time until ctx is cancelled, catching up
// once per tick.
func (b *Board) Run(ctx context.Context, tick time.Duration) {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for b.now+b.period <= time.Since(start) {
				b.Step()
			}
		}
	}
}

// Now returns the simulated time.
func (b *Board) Now() time.Duration {
	return b.now
}

// Stats returns the event counters.
func (b *Board) Stats() Stats {
	return b.stats
}

// Triggered reports whether the sampling timer is running.
func (b *Board) Triggered() bool {
	return b.enabled
}
