// Package monitor is the main loop of the energy monitor: it drains completed
// acquisition cycles into the estimator, publishes the metrics, re-arms the
// zero-cross gate and feeds the report and display consumers.
package monitor

import (
	"context"
	"io"
	"time"

	"github.com/itohio/goemon/pkg/acquire"
	"github.com/itohio/goemon/pkg/display"
	"github.com/itohio/goemon/pkg/power"
	"github.com/itohio/goemon/pkg/report"
)

const (
	DefaultPollInterval   = time.Millisecond
	DefaultReportInterval = time.Second
)

// Options configures the consumers of a Monitor. Nil sinks are skipped.
type Options struct {
	Report         io.Writer            // Serial report sink
	Display        *display.Multiplexer // Seven-segment display
	ReportInterval time.Duration        // Report and display rotation cadence
	RefreshPeriod  time.Duration        // Display multiplexing tick; 0 leaves refresh to the caller
	PollInterval   time.Duration        // Completed-cycle poll cadence
}

// Monitor owns the consumer side of one acquisition.
type Monitor struct {
	acq   *acquire.Acquisition
	est   *power.Estimator
	store *power.Store

	opts      Options
	presenter display.Presenter
}

// New creates a monitor. The store may be shared with other readers.
func New(acq *acquire.Acquisition, est *power.Estimator, store *power.Store, opts Options) *Monitor {
	if opts.ReportInterval <= 0 {
		opts.ReportInterval = DefaultReportInterval
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	return &Monitor{
		acq:   acq,
		est:   est,
		store: store,
		opts:  opts,
	}
}

// Store returns the metrics store.
func (m *Monitor) Store() *power.Store {
	return m.store
}

// Poll processes a completed cycle if one is waiting: estimate, publish,
// then release the buffer and re-arm the zero-cross gate. It returns true if
// a cycle was processed.
func (m *Monitor) Poll() bool {
	cycle, ok := m.acq.Completed()
	if !ok {
		return false
	}
	m.store.Publish(m.est.Estimate(cycle))
	m.acq.Release()
	return true
}

// Sampling reports whether a cycle is in flight. A loop that paces
// conversions itself must not do slow work while it returns true.
func (m *Monitor) Sampling() bool {
	return m.acq.State() != acquire.Idle
}

// Tick runs the report cadence: one report record and the next display
// rotation step.
func (m *Monitor) Tick() {
	latest, ready := m.store.Latest()

	if m.opts.Report != nil {
		if err := report.Write(m.opts.Report, latest, ready); err != nil {
			Logf("Failed to send report: %v", err)
		}
	}
	if m.opts.Display != nil {
		f, _ := m.presenter.Next(latest, ready)
		m.opts.Display.Show(f)
	}
}

// Run is the main loop. It polls for completed cycles, emits a report every
// ReportInterval and, if RefreshPeriod is set, multiplexes the display. It
// returns when ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) error {
	poll := time.NewTicker(m.opts.PollInterval)
	defer poll.Stop()
	tick := time.NewTicker(m.opts.ReportInterval)
	defer tick.Stop()

	var refresh <-chan time.Time
	if m.opts.Display != nil && m.opts.RefreshPeriod > 0 {
		t := time.NewTicker(m.opts.RefreshPeriod)
		defer t.Stop()
		refresh = t.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-poll.C:
			m.Poll()
		case <-tick.C:
			m.Tick()
		case <-refresh:
			m.opts.Display.Refresh()
		}
	}
}
