// Package display drives a 4-digit multiplexed 7-segment display through a
// serial-in shift register.
package display

// Segment bits of one digit byte.
const (
	SegA  uint8 = 1 << iota // Top
	SegB                    // Upper right
	SegC                    // Lower right
	SegD                    // Bottom
	SegE                    // Lower left
	SegF                    // Upper left
	SegG                    // Middle
	SegDP                   // Decimal point
)

// Digits is the number of digit positions, leftmost first.
const Digits = 4

// MaxValue is the largest magnitude that fits the display.
const MaxValue = 9999

var digitPatterns = [10]uint8{
	SegA | SegB | SegC | SegD | SegE | SegF,        // 0
	SegB | SegC,                                    // 1
	SegA | SegB | SegG | SegE | SegD,               // 2
	SegA | SegB | SegG | SegC | SegD,               // 3
	SegF | SegG | SegB | SegC,                      // 4
	SegA | SegF | SegG | SegC | SegD,               // 5
	SegA | SegF | SegG | SegE | SegD | SegC,        // 6
	SegA | SegB | SegC,                             // 7
	SegA | SegB | SegC | SegD | SegE | SegF | SegG, // 8
	SegA | SegB | SegC | SegD | SegF | SegG,        // 9
}

// Frame holds the segment byte of every digit, position 0 leftmost.
type Frame [Digits]uint8

// NoSignal is shown until the first measurement is published.
var NoSignal = Frame{SegDP, SegDP, SegDP, SegDP}

// Encode renders magnitude as four decimal digits. decimalPos counts from
// the right: 1 lights the decimal point of the units digit, 4 that of the
// leftmost digit, 0 none. Magnitudes above MaxValue keep their low four
// digits.
func Encode(magnitude uint16, decimalPos uint8) Frame {
	var f Frame
	div := uint16(1000)
	for p := range Digits {
		f[p] = digitPatterns[(magnitude/div)%10]
		div /= 10
	}
	if decimalPos > 0 && decimalPos <= Digits {
		f[Digits-int(decimalPos)] |= SegDP
	}
	return f
}

// Decode recovers the digits and decimal position of an encoded frame.
// ok is false if a digit byte is not a decimal pattern or more than one
// decimal point is lit.
func Decode(f Frame) (digits [Digits]uint8, decimalPos uint8, ok bool) {
	for p, b := range f {
		if b&SegDP != 0 {
			if decimalPos != 0 {
				return digits, 0, false
			}
			decimalPos = uint8(Digits - p)
		}
		d, found := patternDigit(b &^ SegDP)
		if !found {
			return digits, 0, false
		}
		digits[p] = d
	}
	return digits, decimalPos, true
}

// Value returns the magnitude of decoded digits.
func Value(digits [Digits]uint8) uint16 {
	var v uint16
	for _, d := range digits {
		v = v*10 + uint16(d)
	}
	return v
}

func patternDigit(b uint8) (uint8, bool) {
	for d, p := range digitPatterns {
		if p == b {
			return uint8(d), true
		}
	}
	return 0, false
}

func (f Frame) pack() uint32 {
	return uint32(f[0])<<24 | uint32(f[1])<<16 | uint32(f[2])<<8 | uint32(f[3])
}

func unpack(v uint32) Frame {
	return Frame{uint8(v >> 24), uint8(v >> 16), uint8(v >> 8), uint8(v)}
}
