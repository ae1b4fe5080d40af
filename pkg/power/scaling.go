package power

// Scaling holds the hardware constants that turn offset-corrected ADC counts
// into physical units.
type Scaling struct {
	VRef         float64 // ADC reference (V)
	Bits         uint8   // ADC resolution
	DividerRatio float64 // Line voltage / ADC input voltage
	ShuntOhms    float64 // Current shunt resistance
	AmpGain      float64 // Instrumentation amplifier gain
}

// DefaultScaling returns the reference board constants: 5 V AVcc, 10-bit ADC,
// 1:21 divider, 0.545 ohm shunt, gain 2.10.
func DefaultScaling() Scaling {
	return Scaling{
		VRef:         5.0,
		Bits:         10,
		DividerRatio: 21,
		ShuntOhms:    0.545,
		AmpGain:      2.10,
	}
}

// VoltsPerCount is the ADC step size at the ADC input.
func (s Scaling) VoltsPerCount() float64 {
	return adcToVoltage(1, s.VRef, s.Bits)
}

// LineVolts converts voltage-channel counts to line volts.
func (s Scaling) LineVolts(counts float64) float64 {
	return voltageDivider(adcToVoltage(counts, s.VRef, s.Bits), s.DividerRatio)
}

// ShuntAmps converts current-channel counts to line amps.
func (s Scaling) ShuntAmps(counts float64) float64 {
	return shuntCurrent(adcToVoltage(counts, s.VRef, s.Bits), s.ShuntOhms, s.AmpGain)
}

// PeakMilliamps converts current-channel counts to line milliamps.
func (s Scaling) PeakMilliamps(counts float64) float64 {
	return s.ShuntAmps(counts) * 1000
}

// PowerWatts converts a voltage-count by current-count product to watts.
func (s Scaling) PowerWatts(countProduct float64) float64 {
	return countProduct * s.LineVolts(1) * s.ShuntAmps(1)
}

// adcToVoltage converts ADC counts to volts at the ADC pin.
func adcToVoltage(counts, vref float64, bits uint8) float64 {
	if bits == 0 {
		bits = 10
	}
	full := float64(uint32(1)<<bits - 1)
	return counts / full * vref
}

// voltageDivider calculates the input voltage from the divided output voltage.
func voltageDivider(vout, ratio float64) float64 {
	return vout * ratio
}

// shuntCurrent converts the amplified shunt voltage to current.
// Formula: I = V_out / (gain * R_shunt)
func shuntCurrent(vout, ohms, gain float64) float64 {
	if ohms <= 0 || gain <= 0 {
		return 0
	}
	return vout / (ohms * gain)
}
