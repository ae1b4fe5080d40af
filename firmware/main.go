//go:build tinygo

//go:generate tinygo flash -target=xiao

package main

import (
	"machine"
	"time"

	"github.com/itohio/goemon/pkg/acquire"
	"github.com/itohio/goemon/pkg/display"
	"github.com/itohio/goemon/pkg/monitor"
	"github.com/itohio/goemon/pkg/power"
)

var (
	hw  adcHardware
	acq *acquire.Acquisition
	mux *display.Multiplexer
	mon *monitor.Monitor

	// Timing
	lastSample  time.Time
	lastRefresh time.Time
	lastReport  time.Time
)

func main() {
	// Configure ADC pins with the report resolution
	adcConfig := machine.ADCConfig{
		Reference:  ADC_REFERENCE_MV,
		Resolution: ADC_RESOLUTION,
	}
	for i, pin := range []machine.Pin{PIN_VOLTAGE_ADC, PIN_CURRENT_ADC, PIN_OFFSET_ADC} {
		pin.Configure(machine.PinConfig{Mode: machine.PinAnalog})
		hw.adcs[i] = machine.ADC{Pin: pin}
		hw.adcs[i].Configure(adcConfig)
	}

	// Display outputs
	for _, pin := range []machine.Pin{
		PIN_SHIFT_DATA, PIN_SHIFT_CLOCK, PIN_SHIFT_LATCH,
		PIN_DIGIT1, PIN_DIGIT2, PIN_DIGIT3, PIN_DIGIT4,
	} {
		pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	}
	mux = display.NewMultiplexer(
		display.ShiftRegister{Data: PIN_SHIFT_DATA, Clock: PIN_SHIFT_CLOCK, Latch: PIN_SHIFT_LATCH},
		[display.Digits]display.Pin{PIN_DIGIT1, PIN_DIGIT2, PIN_DIGIT3, PIN_DIGIT4},
	)

	machine.Serial.Configure(machine.UARTConfig{
		BaudRate: UART_BAUD_RATE,
	})

	acq = acquire.New(&hw, SAMPLE_BUFFER_SIZE)
	mon = monitor.New(acq, power.NewEstimator(power.Scaling{
		VRef:         ADC_REFERENCE_MV / 1000.0,
		Bits:         ADC_RESOLUTION,
		DividerRatio: VOLTAGE_DIVIDER_RATIO,
		ShuntOhms:    CURRENT_SHUNT_OHMS,
		AmpGain:      CURRENT_AMP_GAIN,
	}), power.NewStore(), monitor.Options{
		Report:  machine.Serial,
		Display: mux,
	})

	// Zero-cross edges arm a cycle; extra edges are dropped by TryArm
	PIN_ZERO_CROSS.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	err := PIN_ZERO_CROSS.SetInterrupt(machine.PinRising, func(machine.Pin) {
		acq.TryArm()
	})
	if err != nil {
		println("zero-cross interrupt:", err.Error())
	}

	now := time.Now()
	lastSample, lastRefresh, lastReport = now, now, now

	// Main loop
	for {
		now = time.Now()

		if now.Sub(lastSample) >= SAMPLE_PERIOD_US*time.Microsecond {
			if value, ok := hw.convert(); ok {
				acq.OnConversionComplete(value)
			}
			lastSample = now
		}

		// Conversions are paced by this loop, so nothing slow may run while a
		// cycle is in flight. A cycle is shorter than the refresh period.
		if mon.Sampling() {
			continue
		}

		mon.Poll()

		if now.Sub(lastRefresh) >= REFRESH_PERIOD_MS*time.Millisecond {
			mux.Refresh()
			lastRefresh = now
		}

		if now.Sub(lastReport) >= REPORT_PERIOD_MS*time.Millisecond {
			mon.Tick()
			lastReport = now
		}
	}
}
