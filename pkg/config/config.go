package config

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/itohio/golttb/pkg/motion"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Data        DataConfig   `yaml:"data"`
	Channel     string       `yaml:"channel"`
	Percentages []int        `yaml:"percentages"` // Integer percent convention: m = max(2, n*p/100)
	Ratios      []float64    `yaml:"ratios"`      // Fractional convention: m = max(2, floor(n*r))
	Serial      SerialConfig `yaml:"serial"`
	Mock        MockConfig   `yaml:"mock"`
}

// DataConfig contains input and output file locations.
type DataConfig struct {
	Original  string `yaml:"original"`   // Full-resolution motion file
	Reference string `yaml:"reference"`  // Glob of externally downsampled files named <prefix>-<percent>.dat
	OutputDir string `yaml:"output_dir"` // Where exported files are written
}

// SerialConfig contains serial port configuration.
type SerialConfig struct {
	Port           string        `yaml:"port"`
	BaudRate       int           `yaml:"baud_rate"`
	BufferSize     int           `yaml:"buffer_size"`
	ConnectRetries uint64        `yaml:"connect_retries"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"` // Upper bound on the whole retry sequence
}

// MockConfig contains mock device configuration.
type MockConfig struct {
	SampleRate  time.Duration `yaml:"sample_rate"`
	Amplitude   float64       `yaml:"amplitude"`    // Peak of the base sine in raw units
	Period      time.Duration `yaml:"period"`       // Period of the base sine
	NoiseLevel  float64       `yaml:"noise_level"`  // Noise standard deviation in raw units
	SpikeEvery  int           `yaml:"spike_every"`  // Emit a spike every N samples (0 = never)
	SpikeHeight float64       `yaml:"spike_height"` // Spike height in raw units
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Data: DataConfig{
			Original:  "data/motion.dat",
			Reference: "data/motion-*.dat",
			OutputDir: "data",
		},
		Channel:     "ax",
		Percentages: []int{80, 50, 20, 10, 5, 1},
		Ratios:      []float64{0.8, 0.5, 0.2, 0.1, 0.05, 0.01},
		Serial: SerialConfig{
			Port:           "/dev/ttyACM0",
			BaudRate:       115200,
			BufferSize:     100,
			ConnectRetries: 5,
			ConnectTimeout: 10 * time.Second,
		},
		Mock: MockConfig{
			SampleRate:  10 * time.Millisecond,
			Amplitude:   8000,
			Period:      2 * time.Second,
			NoiseLevel:  200,
			SpikeEvery:  250,
			SpikeHeight: 20000,
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

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var result *multierror.Error

	if _, err := motion.ParseChannel(c.Channel); err != nil {
		result = multierror.Append(result, fmt.Errorf("channel: %w", err))
	}
	seen := make(map[int]bool, len(c.Percentages))
	for _, p := range c.Percentages {
		if p <= 0 || p > 100 {
			result = multierror.Append(result, fmt.Errorf("percentages: %d not in (0, 100]", p))
		}
		if seen[p] {
			result = multierror.Append(result, fmt.Errorf("percentages: duplicate value %d", p))
		}
		seen[p] = true
	}
	// Exported files are named by RatioPercent, so two ratios sharing it would overwrite each other.
	names := make(map[int]float64, len(c.Ratios))
	for _, r := range c.Ratios {
		if !(r > 0 && r <= 1) {
			result = multierror.Append(result, fmt.Errorf("ratios: %v not in (0, 1]", r))
			continue
		}
		if prev, ok := names[RatioPercent(r)]; ok {
			result = multierror.Append(result, fmt.Errorf("ratios: %v and %v both export as %d%%", prev, r, RatioPercent(r)))
			continue
		}
		names[RatioPercent(r)] = r
	}
	if c.Serial.BaudRate < 0 {
		result = multierror.Append(result, fmt.Errorf("serial.baud_rate: negative value %d", c.Serial.BaudRate))
	}
	if c.Mock.SampleRate <= 0 {
		result = multierror.Append(result, fmt.Errorf("mock.sample_rate: non-positive value %v", c.Mock.SampleRate))
	}
	if c.Mock.Period < 0 {
		result = multierror.Append(result, fmt.Errorf("mock.period: negative value %v", c.Mock.Period))
	}
	if c.Mock.NoiseLevel < 0 {
		result = multierror.Append(result, fmt.Errorf("mock.noise_level: negative value %v", c.Mock.NoiseLevel))
	}
	if c.Mock.SpikeEvery < 0 {
		result = multierror.Append(result, fmt.Errorf("mock.spike_every: negative value %d", c.Mock.SpikeEvery))
	}

	return result.ErrorOrNil()
}

// RatioPercent is the whole percentage an exported ratio is named after.
func RatioPercent(ratio float64) int {
	return int(math.Round(ratio * 100))
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Data.Original == "" {
		c.Data.Original = def.Data.Original
	}
	if c.Data.Reference == "" {
		c.Data.Reference = def.Data.Reference
	}
	if c.Data.OutputDir == "" {
		c.Data.OutputDir = def.Data.OutputDir
	}

	if c.Channel == "" {
		c.Channel = def.Channel
	}
	if len(c.Percentages) == 0 {
		c.Percentages = def.Percentages
	}
	if len(c.Ratios) == 0 {
		c.Ratios = def.Ratios
	}

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}
	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = def.Serial.BaudRate
	}
	if c.Serial.BufferSize == 0 {
		c.Serial.BufferSize = def.Serial.BufferSize
	}
	if c.Serial.ConnectTimeout == 0 {
		c.Serial.ConnectTimeout = def.Serial.ConnectTimeout
	}

	if c.Mock.SampleRate == 0 {
		c.Mock.SampleRate = def.Mock.SampleRate
	}
	if c.Mock.Period == 0 {
		c.Mock.Period = def.Mock.Period
	}
}
