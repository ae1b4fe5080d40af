package power

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScaling_ReferencePoints(t *testing.T) {
	s := DefaultScaling()
	shunt := 0.545 * 2.10

	assert.InDelta(t, 5.0/1023, s.VoltsPerCount(), 1e-12)
	assert.InDelta(t, 105.0, s.LineVolts(1023), 1e-9)
	assert.InDelta(t, 52.5, s.LineVolts(511.5), 1e-9)
	assert.InDelta(t, 5.0/shunt, s.ShuntAmps(1023), 1e-9)
	assert.InDelta(t, 5000.0/shunt, s.PeakMilliamps(1023), 1e-6)
	assert.InDelta(t, 105*5.0/shunt, s.PowerWatts(1023*1023), 1e-6)
	assert.Zero(t, s.LineVolts(0))
}

func TestScaling_Negative(t *testing.T) {
	s := DefaultScaling()
	assert.InDelta(t, -s.LineVolts(100), s.LineVolts(-100), 1e-12)
	assert.InDelta(t, -s.PeakMilliamps(100), s.PeakMilliamps(-100), 1e-12)
}

func TestScaling_Resolution(t *testing.T) {
	tests := []struct {
		name string
		bits uint8
		want float64
	}{
		{name: "8 bit", bits: 8, want: 5.0 / 255},
		{name: "10 bit", bits: 10, want: 5.0 / 1023},
		{name: "12 bit", bits: 12, want: 5.0 / 4095},
		{name: "unset defaults to 10 bit", bits: 0, want: 5.0 / 1023},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Scaling{VRef: 5, Bits: tt.bits}
			assert.InDelta(t, tt.want, s.VoltsPerCount(), 1e-12)
		})
	}
}

func TestScaling_ZeroShunt(t *testing.T) {
	s := DefaultScaling()
	s.ShuntOhms = 0
	assert.Zero(t, s.ShuntAmps(100))
	assert.Zero(t, s.PowerWatts(100))
}
