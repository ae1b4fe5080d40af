// Package power turns a completed acquisition cycle into average power, RMS
// voltage and peak current, and publishes the result to consumers.
package power

import (
	"math"

	"github.com/itohio/goemon/pkg/acquire"
)

// Metrics is one published measurement. It is replaced wholesale on every
// publish and never modified afterwards.
type Metrics struct {
	AveragePower float64 // W
	RMSVoltage   float64 // V
	PeakCurrent  float64 // mA
	Raw          Raw
	Seq          uint64 // Publish sequence number, starting at 1
}

// Raw holds the unscaled results in ADC counts.
type Raw struct {
	PowerCounts  float64 // Mean interpolated V*I product (counts^2)
	RMSCounts    float64 // RMS of corrected voltage
	PeakCounts   int32   // Largest corrected current sample
	TroughCounts int32   // Most negative corrected current sample
	Samples      int     // Pairs used
	Offset       uint16
}

// Estimator computes Metrics from completed cycles.
type Estimator struct {
	scaling Scaling
}

// NewEstimator creates an estimator using the given scaling constants.
func NewEstimator(s Scaling) *Estimator {
	return &Estimator{scaling: s}
}

// Scaling returns the estimator's scaling constants.
func (e *Estimator) Scaling() Scaling {
	return e.scaling
}

// Estimate computes the metrics of one cycle. Cycles with fewer than three
// pairs have no interior samples and yield zero values.
//
// Samples are offset-corrected as signed values, so readings below the
// offset contribute negative terms instead of wrapping. Average power uses
// the interior pairs only: the voltage is interpolated to the current sample
// instant and the current to the voltage sample instant, and both products
// are averaged.
func (e *Estimator) Estimate(c acquire.Cycle) Metrics {
	raw := EstimateRaw(c)
	return Metrics{
		AveragePower: e.scaling.PowerWatts(raw.PowerCounts),
		RMSVoltage:   e.scaling.LineVolts(raw.RMSCounts),
		PeakCurrent:  e.scaling.PeakMilliamps(float64(raw.PeakCounts)),
		Raw:          raw,
	}
}

// EstimateRaw computes the unscaled results of one cycle.
func EstimateRaw(c acquire.Cycle) Raw {
	n := min(len(c.Voltage), len(c.Current))
	raw := Raw{Samples: n, Offset: c.Offset}
	if n < 3 {
		return raw
	}

	off := int32(c.Offset)
	v := func(i int) int64 { return int64(int32(c.Voltage[i]) - off) }
	cur := func(i int) int64 { return int64(int32(c.Current[i]) - off) }

	// Both interpolations are kept doubled so the halves stay exact:
	// 2*(v[i]*iBar[i] + vBar[i]*c[i]) = v[i]*(c[i-1]+c[i]) + (v[i]+v[i+1])*c[i]
	var powerSum int64
	for i := 1; i < n-1; i++ {
		powerSum += v(i)*(cur(i-1)+cur(i)) + (v(i)+v(i+1))*cur(i)
	}

	var squares int64
	peak, trough := int32(math.MinInt32), int32(math.MaxInt32)
	for i := range n {
		vi := v(i)
		squares += vi * vi

		ci := int32(cur(i))
		peak = max(peak, ci)
		trough = min(trough, ci)
	}

	raw.PowerCounts = float64(powerSum) / float64(4*(n-2))
	raw.RMSCounts = math.Sqrt(float64(squares) / float64(n))
	raw.PeakCounts = peak
	raw.TroughCounts = trough
	return raw
}
