// Package timing computes the compare-match values of the hardware timers that
// pace ADC sampling and display refresh.
package timing

import (
	"fmt"
	"time"
)

// Error is a string-constant error.
type Error string

func (e Error) Error() string {
	return string(e)
}

const ErrCompareRange = Error("compare value out of range")

// Timer describes a clear-on-compare-match hardware timer.
type Timer struct {
	ClockHz   uint32 // Timer input clock before prescaling
	Prescaler uint16
	Bits      uint8 // Counter width (8 or 16)
}

// CompareValue returns the compare register value that makes the timer fire
// every period. The counter runs from 0 to the compare value inclusive, so the
// result is ticks-1, rounded to the nearest tick.
func (t Timer) CompareValue(period time.Duration) (uint16, error) {
	if t.ClockHz == 0 || t.Prescaler == 0 {
		return 0, fmt.Errorf("timer clock %d Hz / %d: %w", t.ClockHz, t.Prescaler, ErrCompareRange)
	}
	tick := float64(t.Prescaler) / float64(t.ClockHz)
	ticks := int64(period.Seconds()/tick + 0.5)
	limit := int64(1)<<t.bits() - 1
	if ticks < 1 || ticks-1 > limit {
		return 0, fmt.Errorf("period %v needs %d ticks (max %d): %w", period, ticks, limit+1, ErrCompareRange)
	}
	return uint16(ticks - 1), nil
}

// Period returns the actual firing period for a compare value.
func (t Timer) Period(compare uint16) time.Duration {
	if t.ClockHz == 0 {
		return 0
	}
	ns := (uint64(compare) + 1) * uint64(t.Prescaler) * uint64(time.Second) / uint64(t.ClockHz)
	return time.Duration(ns)
}

// Quantize returns the period the timer really produces when asked for the
// given one.
func (t Timer) Quantize(period time.Duration) (time.Duration, error) {
	cmp, err := t.CompareValue(period)
	if err != nil {
		return 0, err
	}
	return t.Period(cmp), nil
}

func (t Timer) bits() uint8 {
	if t.Bits == 0 || t.Bits > 16 {
		return 16
	}
	return t.Bits
}

// Cycle returns how long one acquisition cycle of pairs voltage/current pairs
// plus the trailing offset conversion takes at the given sampling period.
func Cycle(pairs int, period time.Duration) time.Duration {
	return time.Duration(2*pairs+1) * period
}
