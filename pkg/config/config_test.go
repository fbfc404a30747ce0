package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()

	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	t.Cleanup(func() { os.Remove(tmpfile.Name()) })

	_, err = tmpfile.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	return tmpfile.Name()
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.NotNil(t, cfg)
	assert.Equal(t, "data/motion.dat", cfg.Data.Original)
	assert.Equal(t, "data/motion-*.dat", cfg.Data.Reference)
	assert.Equal(t, "ax", cfg.Channel)
	assert.Equal(t, []int{80, 50, 20, 10, 5, 1}, cfg.Percentages)
	assert.Equal(t, []float64{0.8, 0.5, 0.2, 0.1, 0.05, 0.01}, cfg.Ratios)
	assert.Equal(t, 115200, cfg.Serial.BaudRate)
	assert.Equal(t, 10*time.Millisecond, cfg.Mock.SampleRate)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileNotExists(t *testing.T) {
	cfg, err := Load("nonexistent.yaml")
	require.NoError(t, err)
	assert.NotNil(t, cfg)
	assert.Equal(t, "ax", cfg.Channel)
}

func TestLoad_ValidYAML(t *testing.T) {
	filename := writeTemp(t, `
data:
  original: "rec/imu.dat"
  reference: "rec/imu-*.dat"
  output_dir: "out"

channel: gz
percentages: [50, 10]
ratios: [0.25]

serial:
  port: "/dev/ttyUSB1"
  baud_rate: 921600
  buffer_size: 512
  connect_retries: 3
  connect_timeout: 2s

mock:
  sample_rate: 5ms
  amplitude: 1000
  period: 1s
  noise_level: 10
  spike_every: 40
  spike_height: 5000
`)

	cfg, err := Load(filename)
	require.NoError(t, err)

	assert.Equal(t, "rec/imu.dat", cfg.Data.Original)
	assert.Equal(t, "rec/imu-*.dat", cfg.Data.Reference)
	assert.Equal(t, "out", cfg.Data.OutputDir)
	assert.Equal(t, "gz", cfg.Channel)
	assert.Equal(t, []int{50, 10}, cfg.Percentages)
	assert.Equal(t, []float64{0.25}, cfg.Ratios)
	assert.Equal(t, "/dev/ttyUSB1", cfg.Serial.Port)
	assert.Equal(t, 921600, cfg.Serial.BaudRate)
	assert.Equal(t, 512, cfg.Serial.BufferSize)
	assert.Equal(t, uint64(3), cfg.Serial.ConnectRetries)
	assert.Equal(t, 2*time.Second, cfg.Serial.ConnectTimeout)
	assert.Equal(t, 5*time.Millisecond, cfg.Mock.SampleRate)
	assert.Equal(t, 40, cfg.Mock.SpikeEvery)
}

func TestLoad_InvalidYAML(t *testing.T) {
	filename := writeTemp(t, "invalid: yaml: content: [")

	cfg, err := Load(filename)
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_PartialYAML(t *testing.T) {
	filename := writeTemp(t, `
channel: gy
`)

	cfg, err := Load(filename)
	require.NoError(t, err)

	assert.Equal(t, "gy", cfg.Channel)

	// Should use defaults for missing fields
	assert.Equal(t, "data/motion.dat", cfg.Data.Original)
	assert.Equal(t, []int{80, 50, 20, 10, 5, 1}, cfg.Percentages)
	assert.Equal(t, 115200, cfg.Serial.BaudRate)
}

func TestLoad_InvalidValues(t *testing.T) {
	filename := writeTemp(t, `
channel: mx
percentages: [0, 150]
ratios: [1.5]
`)

	cfg, err := Load(filename)
	require.Error(t, err)
	assert.Nil(t, cfg)

	// Every problem is reported, not just the first.
	assert.Contains(t, err.Error(), "channel")
	assert.Contains(t, err.Error(), "0 not in (0, 100]")
	assert.Contains(t, err.Error(), "150 not in (0, 100]")
	assert.Contains(t, err.Error(), "1.5 not in (0, 1]")
}

func TestLoad_NonPositiveMockDurations(t *testing.T) {
	filename := writeTemp(t, `
mock:
  sample_rate: -10ms
  period: -1s
`)

	cfg, err := Load(filename)
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "mock.sample_rate: non-positive value -10ms")
	assert.Contains(t, err.Error(), "mock.period: negative value -1s")
}

func TestValidate_ZeroSampleRate(t *testing.T) {
	// Load fills zero from the defaults; a Config built in code does not.
	cfg := Default()
	cfg.Mock.SampleRate = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mock.sample_rate")
}

func TestLoad_DuplicateTargets(t *testing.T) {
	filename := writeTemp(t, `
percentages: [10, 5, 10]
ratios: [0.049, 0.2, 0.051]
`)

	cfg, err := Load(filename)
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "percentages: duplicate value 10")
	assert.Contains(t, err.Error(), "ratios: 0.049 and 0.051 both export as 5%")
}

func TestRatioPercent(t *testing.T) {
	assert.Equal(t, 80, RatioPercent(0.8))
	assert.Equal(t, 5, RatioPercent(0.05))
	assert.Equal(t, 5, RatioPercent(0.049))
	assert.Equal(t, 1, RatioPercent(0.01))
	assert.Equal(t, 100, RatioPercent(1))
}

func TestSave(t *testing.T) {
	cfg := Default()
	cfg.Channel = "az"
	cfg.Percentages = []int{25}

	tmpfile, err := os.CreateTemp("", "test_save_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	err = cfg.Save(tmpfile.Name())
	require.NoError(t, err)

	loaded, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.Equal(t, "az", loaded.Channel)
	assert.Equal(t, []int{25}, loaded.Percentages)
}
