//go:build tinygo

package main

import "machine"

const (
	// Sampling configuration
	SAMPLE_BUFFER_SIZE = 37  // Voltage/current pairs per cycle
	SAMPLE_PERIOD_US   = 108 // One conversion per tick
	REFRESH_PERIOD_MS  = 10  // One display digit per tick
	REPORT_PERIOD_MS   = 1000

	// ADC configuration
	ADC_REFERENCE_MV = 3300 // Reference voltage in millivolts
	ADC_RESOLUTION   = 10   // Counts are reported at 10 bits (0-1023)

	// Analog front end
	VOLTAGE_DIVIDER_RATIO = 21
	CURRENT_SHUNT_OHMS    = 0.545
	CURRENT_AMP_GAIN      = 2.10

	// ADC pins: channel 0 voltage, 1 current, 2 offset reference
	PIN_VOLTAGE_ADC = machine.A0
	PIN_CURRENT_ADC = machine.A1
	PIN_OFFSET_ADC  = machine.A2

	// Zero-cross comparator output, rising edge
	PIN_ZERO_CROSS = machine.D3

	// 74HC595 segment shift register
	PIN_SHIFT_DATA  = machine.D4
	PIN_SHIFT_CLOCK = machine.D5
	PIN_SHIFT_LATCH = machine.D6

	// Active-low digit enables, leftmost first
	PIN_DIGIT1 = machine.D7
	PIN_DIGIT2 = machine.D8
	PIN_DIGIT3 = machine.D9
	PIN_DIGIT4 = machine.D10

	// Serial configuration
	// A measurement record is ~70 bytes once per second; 9600 baud 8N1 moves
	// 960 bytes/sec.
	UART_BAUD_RATE = 9600
)
