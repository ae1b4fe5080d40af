// Package link connects the host to an energy monitor: it reads the device's
// report stream from a serial port, or runs a simulated device in process.
package link

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"go.bug.st/serial"

	"github.com/itohio/goemon/pkg/report"
)

const (
	// DefaultBaudRate is the report link speed of the monitor firmware.
	DefaultBaudRate = 9600
	// DefaultBufferSize is the default size of the records channel.
	DefaultBufferSize = 16
)

// Record is one report received from the device.
type Record struct {
	Timestamp time.Time
	report.Record
}

// Port represents a serial port.
type Port struct {
	Name        string
	Description string
}

// Opener opens a serial port. serial.Open satisfies it.
type Opener func(name string, mode *serial.Mode) (serial.Port, error)

// Serial represents a connection to the monitor over a serial port.
type Serial struct {
	port     string
	baudRate int
	bufSize  int
	open     Opener

	conn      serial.Port
	records   chan Record
	mu        sync.RWMutex
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool
	used      bool // records belongs to an earlier connection
}

// New creates a new Serial device with the specified port, baud rate, and
// buffer size.
func New(port string, baudRate int, bufSize int) *Serial {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	if bufSize == 0 {
		bufSize = DefaultBufferSize
	}

	return &Serial{
		port:     port,
		baudRate: baudRate,
		bufSize:  bufSize,
		open:     serial.Open,
		records:  make(chan Record, bufSize),
	}
}

// WithOpener replaces the function used to open the port.
func (d *Serial) WithOpener(open Opener) *Serial {
	d.open = open
	return d
}

// Ports returns a list of available serial ports.
func Ports() ([]Port, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	result := make([]Port, 0, len(ports))
	for _, name := range ports {
		result = append(result, Port{
			Name:        name,
			Description: name,
		})
	}

	return result, nil
}

// Mode returns the 8N1 line settings for baudRate.
func Mode(baudRate int) *serial.Mode {
	return &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
}

// Connect opens the serial port and starts reading records.
func (d *Serial) Connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connected {
		return ErrAlreadyConnected
	}

	port, err := d.open(d.port, Mode(d.baudRate))
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", d.port, err)
	}

	// Each connection gets its own context and records channel; the previous
	// channel was closed by its reader.
	if d.used {
		d.records = make(chan Record, d.bufSize)
	}
	d.used = true
	d.ctx, d.cancel = context.WithCancel(context.Background())
	d.conn = port
	d.connected = true

	d.wg.Add(1)
	go func(ctx context.Context, records chan Record) {
		defer d.wg.Done()
		defer close(records)
		readRecords(ctx, port, records)
	}(d.ctx, d.records)

	return nil
}

// Close closes the port and waits for the reader to stop. The reader closes
// the records channel on its way out.
func (d *Serial) Close() error {
	d.mu.Lock()
	if !d.connected {
		d.mu.Unlock()
		return nil
	}

	d.cancel()

	var err error
	if d.conn != nil {
		if err = d.conn.Close(); err != nil {
			Logf("Error closing serial port: %v", err)
			err = fmt.Errorf("failed to close serial port %s: %w", d.port, err)
		}
		d.conn = nil
	}
	d.connected = false
	d.mu.Unlock()

	d.wg.Wait()

	return err
}

// Records returns the channel of the current connection. It is closed when
// the device is closed or the port stops delivering data.
func (d *Serial) Records() <-chan Record {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.records
}

// Flush drops bytes received but not yet read, so the next record starts
// fresh.
func (d *Serial) Flush() error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if !d.connected {
		return ErrNotConnected
	}
	if err := d.conn.ResetInputBuffer(); err != nil {
		return fmt.Errorf("failed to flush serial port %s: %w", d.port, err)
	}
	return nil
}

// IsConnected returns whether the device is currently connected.
func (d *Serial) IsConnected() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.connected
}

// readRecords parses the report stream from r into out until r fails or ctx
// is cancelled. Malformed records are logged and skipped. An overlong line
// restarts the parser on the rest of the stream.
func readRecords(ctx context.Context, r io.Reader, out chan<- Record) {
	s := report.NewScanner(r)
	for {
		rec, err := s.Next()
		if err != nil {
			if errors.Is(err, report.ErrMalformed) {
				Logf("Skipping report: %v", err)
				continue
			}
			if errors.Is(err, bufio.ErrTooLong) && ctx.Err() == nil {
				Logf("Resynchronising report stream: %v", err)
				s = report.NewScanner(r)
				continue
			}
			if !errors.Is(err, io.EOF) && ctx.Err() == nil {
				Logf("Error reading reports: %v", err)
			}
			return
		}

		select {
		case out <- Record{Timestamp: time.Now(), Record: rec}:
		case <-ctx.Done():
			return
		default:
			Logf("Records channel full, dropping record")
		}
	}
}
