// Package sim is a simulated energy monitor board: a line waveform source,
// a zero-cross comparator and a timer-paced ADC that drive the real
// acquisition pipeline without hardware.
package sim

import (
	"time"

	"github.com/chewxy/math32"

	"github.com/itohio/goemon/pkg/acquire"
	"github.com/itohio/goemon/pkg/config"
)

// adcMax is the full-scale count of the simulated 10-bit ADC.
const adcMax = 1023

// Waveform describes the sensed line signals in ADC counts.
type Waveform struct {
	Frequency        float32 // Hz
	VoltageAmplitude float32 // Counts around Offset
	CurrentAmplitude float32 // Counts around Offset
	PhaseShift       float32 // Current lag in radians
	Offset           float32 // Midpoint reference in counts
	Noise            float32 // Peak noise in counts
}

// NewWaveform creates a waveform from the mock configuration.
func NewWaveform(cfg config.MockConfig) Waveform {
	return Waveform{
		Frequency:        float32(cfg.LineFrequency),
		VoltageAmplitude: float32(cfg.VoltageAmplitude),
		CurrentAmplitude: float32(cfg.CurrentAmplitude),
		PhaseShift:       float32(cfg.PhaseShift),
		Offset:           float32(cfg.Offset),
		Noise:            float32(cfg.NoiseLevel),
	}
}

// phase returns the line phase in radians at t.
func (w Waveform) phase(t time.Duration) float32 {
	cycles := float32(t.Seconds()) * w.Frequency
	return 2 * math32.Pi * (cycles - math32.Floor(cycles))
}

// VoltageSignal is the noiseless voltage channel relative to the offset.
func (w Waveform) VoltageSignal(t time.Duration) float32 {
	return w.VoltageAmplitude * math32.Sin(w.phase(t))
}

// CurrentSignal is the noiseless current channel relative to the offset.
func (w Waveform) CurrentSignal(t time.Duration) float32 {
	return w.CurrentAmplitude * math32.Sin(w.phase(t)-w.PhaseShift)
}

// Sample returns the ADC reading of ch at t.
func (w Waveform) Sample(ch acquire.Channel, t time.Duration) uint16 {
	var v float32
	switch ch {
	case acquire.ChannelVoltage:
		v = w.VoltageSignal(t)
	case acquire.ChannelCurrent:
		v = w.CurrentSignal(t)
	}
	return toCounts(w.Offset + v + w.noise(t, ch))
}

// noise is a deterministic wobble built from incommensurate sines.
func (w Waveform) noise(t time.Duration, ch acquire.Channel) float32 {
	if w.Noise == 0 {
		return 0
	}
	x := float32(t.Microseconds()) + 977*float32(ch)
	return w.Noise * 0.5 * (math32.Sin(x*0.0131) + math32.Sin(x*0.0077+1.3))
}

func toCounts(v float32) uint16 {
	v = math32.Floor(v + 0.5)
	if v < 0 {
		return 0
	}
	if v > adcMax {
		return adcMax
	}
	return uint16(v)
}
