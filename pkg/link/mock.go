package link

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/itohio/goemon/pkg/acquire"
	"github.com/itohio/goemon/pkg/config"
	"github.com/itohio/goemon/pkg/monitor"
	"github.com/itohio/goemon/pkg/power"
	"github.com/itohio/goemon/pkg/sim"
)

// boardTick is how often the simulated board catches up with real time.
const boardTick = time.Millisecond

// Mock runs the complete acquisition pipeline on a simulated board and
// delivers its report stream like a real device.
type Mock struct {
	cfg *config.Config

	records   chan Record
	mu        sync.RWMutex
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool
	used      bool // records belongs to an earlier connection

	pr    *io.PipeReader
	pw    *io.PipeWriter
	store *power.Store
}

// NewMock creates a simulated device. A nil cfg uses config.Default().
func NewMock(cfg *config.Config) *Mock {
	if cfg == nil {
		cfg = config.Default()
	}

	return &Mock{
		cfg:     cfg,
		records: make(chan Record, DefaultBufferSize),
		store:   power.NewStore(),
	}
}

// Connect starts the simulated board, the monitor main loop and the report
// reader.
func (m *Mock) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected {
		return ErrAlreadyConnected
	}

	board := sim.NewBoard(sim.NewWaveform(m.cfg.Mock), m.cfg.Sampling.Period)
	acq := acquire.New(board, m.cfg.Sampling.BufferSize)
	board.Attach(acq)

	m.pr, m.pw = io.Pipe()
	mon := monitor.New(acq, power.NewEstimator(m.cfg.Scaling.Power()), m.store, monitor.Options{
		Report:         m.pw,
		ReportInterval: m.cfg.Report.Interval,
	})

	if m.used {
		m.records = make(chan Record, DefaultBufferSize)
	}
	m.used = true
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.connected = true

	ctx, pr, records := m.ctx, m.pr, m.records
	m.wg.Add(3)
	go func() {
		defer m.wg.Done()
		board.Run(ctx, boardTick)
	}()
	go func() {
		defer m.wg.Done()
		mon.Run(ctx)
	}()
	go func() {
		defer m.wg.Done()
		defer close(records)
		readRecords(ctx, pr, records)
	}()

	return nil
}

// Close stops the simulation and waits until the records channel is closed.
func (m *Mock) Close() error {
	m.mu.Lock()
	if !m.connected {
		m.mu.Unlock()
		return nil
	}

	m.cancel()
	m.pw.Close()
	m.pr.Close()
	m.connected = false
	m.mu.Unlock()

	m.wg.Wait()

	return nil
}

// Records returns the channel of the current connection. It is closed by
// Close.
func (m *Mock) Records() <-chan Record {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.records
}

// Flush is a no-op for the simulated device.
func (m *Mock) Flush() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.connected {
		return ErrNotConnected
	}
	return nil
}

// IsConnected returns whether the device is currently connected.
func (m *Mock) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

// Store returns the simulated device's metrics store.
func (m *Mock) Store() *power.Store {
	return m.store
}
