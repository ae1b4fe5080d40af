package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/goemon/pkg/power"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.NotNil(t, cfg)
	assert.Equal(t, "/dev/ttyUSB0", cfg.Serial.Port)
	assert.Equal(t, 9600, cfg.Serial.BaudRate)
	assert.Equal(t, 37, cfg.Sampling.BufferSize)
	assert.Equal(t, 108*time.Microsecond, cfg.Sampling.Period)
	assert.Equal(t, uint32(2000000), cfg.Sampling.ClockHz)
	assert.Equal(t, 10*time.Millisecond, cfg.Display.RefreshPeriod)
	assert.Equal(t, time.Second, cfg.Report.Interval)
	assert.Equal(t, 5.0, cfg.Scaling.VRef)
	assert.Equal(t, uint8(10), cfg.Scaling.ResolutionBits)
	assert.Equal(t, float64(21), cfg.Scaling.DividerRatio)
	assert.Equal(t, 0.545, cfg.Scaling.ShuntOhms)
	assert.Equal(t, 2.10, cfg.Scaling.AmpGain)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileNotExists(t *testing.T) {
	cfg, err := Load("nonexistent.yaml")
	require.NoError(t, err)
	assert.NotNil(t, cfg)
	assert.Equal(t, 37, cfg.Sampling.BufferSize)
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	yamlContent := `
serial:
  port: "/dev/ttyACM0"
  baud_rate: 115200

sampling:
  buffer_size: 64
  period: 100us

display:
  refresh_period: 5ms

report:
  interval: 2s

scaling:
  vref: 3.3
  resolution_bits: 12
  divider_ratio: 30
  shunt_ohms: 0.1
  amp_gain: 20

mock:
  line_frequency: 50
  voltage_amplitude: 1500
`

	_, err = tmpfile.WriteString(yamlContent)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	require.NoError(t, err)

	assert.Equal(t, "/dev/ttyACM0", cfg.Serial.Port)
	assert.Equal(t, 115200, cfg.Serial.BaudRate)
	assert.Equal(t, 64, cfg.Sampling.BufferSize)
	assert.Equal(t, 100*time.Microsecond, cfg.Sampling.Period)
	assert.Equal(t, 5*time.Millisecond, cfg.Display.RefreshPeriod)
	assert.Equal(t, 2*time.Second, cfg.Report.Interval)
	assert.Equal(t, 3.3, cfg.Scaling.VRef)
	assert.Equal(t, uint8(12), cfg.Scaling.ResolutionBits)
	assert.Equal(t, float64(30), cfg.Scaling.DividerRatio)
	assert.Equal(t, float64(50), cfg.Mock.LineFrequency)
	assert.Equal(t, float64(1500), cfg.Mock.VoltageAmplitude)
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	_, err = tmpfile.WriteString("invalid: yaml: content: [")
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_PartialYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	_, err = tmpfile.WriteString("serial:\n  port: \"/dev/ttyACM0\"\n")
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	require.NoError(t, err)

	// Should use defaults for missing fields
	assert.Equal(t, "/dev/ttyACM0", cfg.Serial.Port)
	assert.Equal(t, 9600, cfg.Serial.BaudRate)
	assert.Equal(t, 37, cfg.Sampling.BufferSize)
	assert.Equal(t, float64(21), cfg.Scaling.DividerRatio)
}

func TestLoad_RejectsSmallBuffer(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	_, err = tmpfile.WriteString("sampling:\n  buffer_size: 2\n")
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "buffer_size")
	assert.Nil(t, cfg)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"buffer too small", func(c *Config) { c.Sampling.BufferSize = 2 }},
		{"negative period", func(c *Config) { c.Sampling.Period = -time.Microsecond }},
		{"zero refresh", func(c *Config) { c.Display.RefreshPeriod = 0 }},
		{"zero report interval", func(c *Config) { c.Report.Interval = 0 }},
		{"negative average window", func(c *Config) { c.Report.AverageRecords = -1 }},
		{"zero vref", func(c *Config) { c.Scaling.VRef = 0 }},
		{"zero shunt", func(c *Config) { c.Scaling.ShuntOhms = 0 }},
		{"zero gain", func(c *Config) { c.Scaling.AmpGain = 0 }},
		{"resolution too wide", func(c *Config) { c.Scaling.ResolutionBits = 24 }},
		{"sampling period overflows timer", func(c *Config) { c.Sampling.Period = time.Second }},
		{"refresh period overflows timer", func(c *Config) { c.Display.RefreshPeriod = time.Second }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSave(t *testing.T) {
	cfg := Default()
	cfg.Serial.Port = "/dev/ttyUSB1"
	cfg.Sampling.BufferSize = 50
	cfg.Report.Interval = 500 * time.Millisecond

	tmpfile, err := os.CreateTemp("", "test_save_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	err = cfg.Save(tmpfile.Name())
	require.NoError(t, err)

	loaded, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB1", loaded.Serial.Port)
	assert.Equal(t, 50, loaded.Sampling.BufferSize)
	assert.Equal(t, 500*time.Millisecond, loaded.Report.Interval)
	assert.Equal(t, cfg.Sampling.Period, loaded.Sampling.Period)
}

func TestTimers(t *testing.T) {
	cfg := Default()

	ocr, err := cfg.SamplingTimer().CompareValue(cfg.Sampling.Period)
	require.NoError(t, err)
	assert.Equal(t, uint16(215), ocr)

	ocr, err = cfg.RefreshTimer().CompareValue(cfg.Display.RefreshPeriod)
	require.NoError(t, err)
	assert.Equal(t, uint16(19), ocr)
}

func TestScalingConfig_Power(t *testing.T) {
	s := Default().Scaling.Power()
	assert.Equal(t, power.DefaultScaling(), s)
}
