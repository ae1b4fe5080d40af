//go:build tinygo

package main

import (
	"machine"
	"sync/atomic"

	"github.com/itohio/goemon/pkg/acquire"
)

// adcHardware paces conversions from the main loop. The SAMD21 port of
// machine has no ADC-complete interrupt, so a conversion "completes" when the
// loop services a due sampling tick.
type adcHardware struct {
	adcs    [3]machine.ADC
	channel atomic.Uint32
	pending atomic.Bool
	enabled atomic.Bool
}

var _ acquire.Hardware = (*adcHardware)(nil)

func (h *adcHardware) StartConversion(ch acquire.Channel) {
	h.channel.Store(uint32(ch))
	h.pending.Store(true)
}

func (h *adcHardware) EnableTrigger() {
	h.enabled.Store(true)
}

func (h *adcHardware) DisableTrigger() {
	h.enabled.Store(false)
	h.pending.Store(false)
}

// convert reads the selected channel if a conversion is due and armed.
func (h *adcHardware) convert() (uint16, bool) {
	if !h.enabled.Load() || !h.pending.CompareAndSwap(true, false) {
		return 0, false
	}
	// Get returns a left-aligned 16-bit value
	return h.adcs[h.channel.Load()].Get() >> (16 - ADC_RESOLUTION), true
}
