package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/itohio/goemon/pkg/power"
	"github.com/itohio/goemon/pkg/timing"
)

// Config represents the application configuration.
type Config struct {
	Serial   SerialConfig   `yaml:"serial"`
	Sampling SamplingConfig `yaml:"sampling"`
	Display  DisplayConfig  `yaml:"display"`
	Report   ReportConfig   `yaml:"report"`
	Scaling  ScalingConfig  `yaml:"scaling"`
	Mock     MockConfig     `yaml:"mock"`
}

// SerialConfig contains serial port configuration.
type SerialConfig struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"`
}

// SamplingConfig describes the acquisition cycle.
type SamplingConfig struct {
	BufferSize int           `yaml:"buffer_size"` // Voltage/current pairs per cycle
	Period     time.Duration `yaml:"period"`      // ADC trigger period (one conversion per tick)
	ClockHz    uint32        `yaml:"clock_hz"`    // Timer input clock
	Prescaler  uint16        `yaml:"prescaler"`   // Sampling timer prescaler
}

// DisplayConfig contains display multiplexing parameters.
type DisplayConfig struct {
	RefreshPeriod time.Duration `yaml:"refresh_period"` // One digit per refresh tick
	Prescaler     uint16        `yaml:"prescaler"`      // Refresh timer prescaler
}

// ReportConfig contains the serial report cadence.
type ReportConfig struct {
	Interval       time.Duration `yaml:"interval"`
	AverageRecords int           `yaml:"average_records"` // Host-side moving average window (0 = disabled)
}

// ScalingConfig holds the hardware constants that turn ADC counts into
// physical units.
type ScalingConfig struct {
	VRef           float64 `yaml:"vref"`            // ADC reference (V)
	ResolutionBits uint8   `yaml:"resolution_bits"` // ADC resolution
	DividerRatio   float64 `yaml:"divider_ratio"`   // Line voltage / ADC input voltage
	ShuntOhms      float64 `yaml:"shunt_ohms"`      // Current shunt resistance
	AmpGain        float64 `yaml:"amp_gain"`        // Instrumentation amplifier gain
}

// MockConfig contains simulated line parameters.
type MockConfig struct {
	LineFrequency    float64 `yaml:"line_frequency"`    // Hz
	VoltageAmplitude float64 `yaml:"voltage_amplitude"` // ADC counts around the offset
	CurrentAmplitude float64 `yaml:"current_amplitude"` // ADC counts around the offset
	PhaseShift       float64 `yaml:"phase_shift"`       // Current lag in radians
	Offset           float64 `yaml:"offset"`            // Midpoint reference in ADC counts
	NoiseLevel       float64 `yaml:"noise_level"`       // Peak noise in ADC counts
}

// Default returns the reference configuration.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Port:     "/dev/ttyUSB0",
			BaudRate: 9600,
		},
		Sampling: SamplingConfig{
			BufferSize: 37,
			Period:     108 * time.Microsecond,
			ClockHz:    2000000,
			Prescaler:  1,
		},
		Display: DisplayConfig{
			RefreshPeriod: 10 * time.Millisecond,
			Prescaler:     1024,
		},
		Report: ReportConfig{
			Interval: time.Second,
		},
		Scaling: ScalingConfig{
			VRef:           5.0,
			ResolutionBits: 10,
			DividerRatio:   21,
			ShuntOhms:      0.545,
			AmpGain:        2.10,
		},
		Mock: MockConfig{
			LineFrequency:    60,
			VoltageAmplitude: 380,
			CurrentAmplitude: 250,
			PhaseShift:       0,
			Offset:           512,
			NoiseLevel:       2,
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", filename, err)
	}

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate rejects configurations the acquisition pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Sampling.BufferSize < 3 {
		return fmt.Errorf("sampling.buffer_size must be at least 3, got %d", c.Sampling.BufferSize)
	}
	if c.Sampling.Period <= 0 {
		return fmt.Errorf("sampling.period must be positive, got %v", c.Sampling.Period)
	}
	if c.Display.RefreshPeriod <= 0 {
		return fmt.Errorf("display.refresh_period must be positive, got %v", c.Display.RefreshPeriod)
	}
	if c.Report.Interval <= 0 {
		return fmt.Errorf("report.interval must be positive, got %v", c.Report.Interval)
	}
	if c.Report.AverageRecords < 0 {
		return fmt.Errorf("report.average_records must not be negative, got %d", c.Report.AverageRecords)
	}
	if _, err := c.SamplingTimer().CompareValue(c.Sampling.Period); err != nil {
		return fmt.Errorf("sampling.period: %w", err)
	}
	if _, err := c.RefreshTimer().CompareValue(c.Display.RefreshPeriod); err != nil {
		return fmt.Errorf("display.refresh_period: %w", err)
	}
	s := c.Scaling
	if s.VRef <= 0 || s.ResolutionBits == 0 || s.ResolutionBits > 16 || s.DividerRatio <= 0 || s.ShuntOhms <= 0 || s.AmpGain <= 0 {
		return fmt.Errorf("scaling constants must be positive (resolution 1..16 bits): %+v", s)
	}
	return nil
}

// SamplingTimer returns the 16-bit timer that paces ADC conversions.
func (c *Config) SamplingTimer() timing.Timer {
	return timing.Timer{ClockHz: c.Sampling.ClockHz, Prescaler: c.Sampling.Prescaler, Bits: 16}
}

// RefreshTimer returns the 8-bit timer that paces display multiplexing. It
// shares the sampling timer's clock.
func (c *Config) RefreshTimer() timing.Timer {
	return timing.Timer{ClockHz: c.Sampling.ClockHz, Prescaler: c.Display.Prescaler, Bits: 8}
}

// Power returns the scaling constants in the form the estimator uses.
func (s ScalingConfig) Power() power.Scaling {
	return power.Scaling{
		VRef:         s.VRef,
		Bits:         s.ResolutionBits,
		DividerRatio: s.DividerRatio,
		ShuntOhms:    s.ShuntOhms,
		AmpGain:      s.AmpGain,
	}
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}
	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = def.Serial.BaudRate
	}

	if c.Sampling.BufferSize == 0 {
		c.Sampling.BufferSize = def.Sampling.BufferSize
	}
	if c.Sampling.Period == 0 {
		c.Sampling.Period = def.Sampling.Period
	}
	if c.Sampling.ClockHz == 0 {
		c.Sampling.ClockHz = def.Sampling.ClockHz
	}
	if c.Sampling.Prescaler == 0 {
		c.Sampling.Prescaler = def.Sampling.Prescaler
	}

	if c.Display.RefreshPeriod == 0 {
		c.Display.RefreshPeriod = def.Display.RefreshPeriod
	}
	if c.Display.Prescaler == 0 {
		c.Display.Prescaler = def.Display.Prescaler
	}

	if c.Report.Interval == 0 {
		c.Report.Interval = def.Report.Interval
	}

	if c.Scaling.VRef == 0 {
		c.Scaling.VRef = def.Scaling.VRef
	}
	if c.Scaling.ResolutionBits == 0 {
		c.Scaling.ResolutionBits = def.Scaling.ResolutionBits
	}
	if c.Scaling.DividerRatio == 0 {
		c.Scaling.DividerRatio = def.Scaling.DividerRatio
	}
	if c.Scaling.ShuntOhms == 0 {
		c.Scaling.ShuntOhms = def.Scaling.ShuntOhms
	}
	if c.Scaling.AmpGain == 0 {
		c.Scaling.AmpGain = def.Scaling.AmpGain
	}

	if c.Mock.LineFrequency == 0 {
		c.Mock.LineFrequency = def.Mock.LineFrequency
	}
	if c.Mock.Offset == 0 {
		c.Mock.Offset = def.Mock.Offset
	}
}
