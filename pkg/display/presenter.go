package display

import (
	"math"

	"github.com/itohio/goemon/pkg/power"
)

// Quantity selects the measurement shown by the presenter.
type Quantity uint8

const (
	QuantityPower   Quantity = iota // W, one decimal
	QuantityVoltage                 // V, one decimal
	QuantityCurrent                 // mA, two decimals
	quantityCount
)

func (q Quantity) String() string {
	switch q {
	case QuantityPower:
		return "power"
	case QuantityVoltage:
		return "voltage"
	case QuantityCurrent:
		return "current"
	}
	return "unknown"
}

// Decimals returns the preferred number of decimal places.
func (q Quantity) Decimals() uint8 {
	if q == QuantityCurrent {
		return 2
	}
	return 1
}

// Presenter rotates through power, voltage and current, one quantity per call.
type Presenter struct {
	next Quantity
}

// Next returns the frame for the next quantity in rotation. Without
// published metrics it returns NoSignal and the rotation does not advance.
func (p *Presenter) Next(m power.Metrics, ready bool) (Frame, Quantity) {
	if !ready {
		return NoSignal, p.next
	}
	q := p.next
	p.next = (p.next + 1) % quantityCount

	var v float64
	switch q {
	case QuantityPower:
		v = m.AveragePower
	case QuantityVoltage:
		v = m.RMSVoltage
	case QuantityCurrent:
		v = m.PeakCurrent
	}
	magnitude, dp := Fit(v, q.Decimals())
	return Encode(magnitude, dp), q
}

// Fit scales value to at most decimals places so that it fits four digits,
// dropping decimals as needed. Values too large even without decimals
// saturate at MaxValue; negative values and NaN show as zero.
func Fit(value float64, decimals uint8) (uint16, uint8) {
	if !(value > 0) {
		return 0, decimals
	}
	for d := int(decimals); d >= 0; d-- {
		scaled := math.Round(value * math.Pow10(d))
		if scaled <= MaxValue {
			return uint16(scaled), uint8(d)
		}
	}
	return MaxValue, 0
}
