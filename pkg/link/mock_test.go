package link

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/goemon/pkg/config"
)

func fastConfig() *config.Config {
	cfg := config.Default()
	cfg.Report.Interval = 40 * time.Millisecond
	return cfg
}

func TestMock_ConnectTwice(t *testing.T) {
	muteLogger(t)
	m := NewMock(fastConfig())

	assert.ErrorIs(t, m.Flush(), ErrNotConnected)
	require.NoError(t, m.Connect())
	defer m.Close()

	assert.True(t, m.IsConnected())
	assert.NoError(t, m.Flush())
	assert.ErrorIs(t, m.Connect(), ErrAlreadyConnected)
}

func TestMock_DeliversMeasurements(t *testing.T) {
	muteLogger(t)
	m := NewMock(fastConfig())
	require.NoError(t, m.Connect())
	defer m.Close()

	deadline := time.After(5 * time.Second)
	for {
		select {
		case r := <-m.Records():
			if r.NoSignal {
				continue
			}
			assert.Greater(t, r.RMSVoltage, 0.0)
			assert.Greater(t, r.PeakCurrent, 0.0)
			assert.True(t, m.Store().Ready())
			return
		case <-deadline:
			t.Fatal("no measurement record received")
		}
	}
}

func TestNewMock_NilConfig(t *testing.T) {
	m := NewMock(nil)
	assert.Equal(t, config.Default(), m.cfg)
	assert.False(t, m.IsConnected())
	assert.NoError(t, m.Close())
}

func TestMock_CloseEndsRecords(t *testing.T) {
	muteLogger(t)
	m := NewMock(fastConfig())
	require.NoError(t, m.Connect())

	records := m.Records()
	var got []Record
	done := make(chan struct{})
	go func() {
		defer close(done)
		for r := range records {
			got = append(got, r)
			if len(got) == 3 {
				assert.NoError(t, m.Close())
			}
		}
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("records channel did not close")
	}

	require.GreaterOrEqual(t, len(got), 3)
	cfg := fastConfig()
	for i, r := range got {
		assert.False(t, r.Timestamp.IsZero(), "record %d", i)
		if r.NoSignal {
			assert.Zero(t, r.AveragePower, "record %d", i)
			continue
		}
		assert.Greater(t, r.AveragePower, 0.0, "record %d", i)
		assert.Greater(t, r.RMSVoltage, 0.0, "record %d", i)
		assert.Greater(t, r.PeakCurrent, 0.0, "record %d", i)
		// One cycle spans most of a half period, so RMS lands near A/√2
		wantV := cfg.Scaling.Power().LineVolts(cfg.Mock.VoltageAmplitude) / math.Sqrt2
		assert.InEpsilon(t, wantV, r.RMSVoltage, 0.1, "record %d", i)
	}
	assert.False(t, m.IsConnected())
}

func TestMock_Reconnect(t *testing.T) {
	muteLogger(t)
	m := NewMock(fastConfig())

	for round := range 2 {
		require.NoError(t, m.Connect(), "round %d", round)
		records := m.Records()

		select {
		case _, ok := <-records:
			assert.True(t, ok, "round %d: records channel closed early", round)
		case <-time.After(5 * time.Second):
			t.Fatalf("round %d: no record received", round)
		}

		require.NoError(t, m.Close(), "round %d", round)
		for range records {
		}
		assert.False(t, m.IsConnected())
	}
}
