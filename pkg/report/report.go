// Package report writes published metrics as a line-oriented text record and
// parses that text back on the host side.
package report

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/itohio/goemon/pkg/power"
)

// Error is a string-constant error.
type Error string

func (e Error) Error() string {
	return string(e)
}

const ErrMalformed = Error("malformed report line")

const (
	lineEnd       = "\r\n"
	separator     = "---"
	noSignalLine  = "No Signal Detected"
	waitingLine   = "Waiting for trigger..."
	powerLabel    = "Average Power"
	voltageLabel  = "RMS Voltage"
	currentLabel  = "Peak Current"
	powerUnit     = "W"
	voltageUnit   = "V"
	currentUnit   = "mA"
	labelValueSep = " = "
)

// Record is one report as seen by the host.
type Record struct {
	AveragePower float64 // W
	RMSVoltage   float64 // V
	PeakCurrent  float64 // mA
	NoSignal     bool
}

// Write emits one report. Without published metrics it writes the no-signal
// status lines instead of values.
func Write(w io.Writer, m power.Metrics, ready bool) error {
	var err error
	if ready {
		_, err = fmt.Fprintf(w,
			powerLabel+" = %.1f "+powerUnit+lineEnd+
				voltageLabel+" = %.1f "+voltageUnit+lineEnd+
				currentLabel+" = %.1f "+currentUnit+lineEnd+
				separator+lineEnd,
			m.AveragePower, m.RMSVoltage, m.PeakCurrent)
	} else {
		_, err = io.WriteString(w, noSignalLine+lineEnd+waitingLine+lineEnd+separator+lineEnd)
	}
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// Scanner reads records from a report stream.
type Scanner struct {
	sc *bufio.Scanner

	rec      Record
	have     uint8 // Bit per value line seen in the current record
	noSignal bool
	line     int
}

const (
	havePower uint8 = 1 << iota
	haveVoltage
	haveCurrent
	haveAll = havePower | haveVoltage | haveCurrent
)

// NewScanner creates a scanner reading from r.
func NewScanner(r io.Reader) *Scanner {
	return &Scanner{sc: bufio.NewScanner(r)}
}

// Next returns the next complete record. A malformed line or an incomplete
// record yields an error wrapping ErrMalformed; the partial record is
// dropped and the following call resumes with the next record. At the end
// of the stream Next returns io.EOF.
func (s *Scanner) Next() (Record, error) {
	for s.sc.Scan() {
		s.line++
		line := strings.TrimSpace(s.sc.Text())
		if line == "" {
			continue
		}

		if line == separator {
			rec, complete := s.rec, s.noSignal || s.have == haveAll
			s.reset()
			if !complete {
				return Record{}, fmt.Errorf("line %d: incomplete record: %w", s.line, ErrMalformed)
			}
			return rec, nil
		}

		if err := s.parseLine(line); err != nil {
			s.reset()
			return Record{}, fmt.Errorf("line %d %q: %w", s.line, line, err)
		}
	}
	if err := s.sc.Err(); err != nil {
		return Record{}, fmt.Errorf("failed to read report stream: %w", err)
	}
	return Record{}, io.EOF
}

func (s *Scanner) reset() {
	s.rec = Record{}
	s.have = 0
	s.noSignal = false
}

func (s *Scanner) parseLine(line string) error {
	switch line {
	case noSignalLine, waitingLine:
		if s.have != 0 {
			return ErrMalformed
		}
		s.noSignal = true
		s.rec.NoSignal = true
		return nil
	}
	if s.noSignal {
		return ErrMalformed
	}

	label, rest, ok := strings.Cut(line, labelValueSep)
	if !ok {
		return ErrMalformed
	}
	var unit string
	var dst *float64
	var bit uint8
	switch label {
	case powerLabel:
		unit, dst, bit = powerUnit, &s.rec.AveragePower, havePower
	case voltageLabel:
		unit, dst, bit = voltageUnit, &s.rec.RMSVoltage, haveVoltage
	case currentLabel:
		unit, dst, bit = currentUnit, &s.rec.PeakCurrent, haveCurrent
	default:
		return ErrMalformed
	}

	value, ok := strings.CutSuffix(rest, " "+unit)
	if !ok {
		return fmt.Errorf("expected unit %s: %w", unit, ErrMalformed)
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("invalid %s value %q: %w", strings.ToLower(label), value, ErrMalformed)
	}
	*dst = v
	s.have |= bit
	return nil
}

