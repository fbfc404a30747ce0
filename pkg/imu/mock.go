package imu

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/itohio/golttb/pkg/config"
	"github.com/itohio/golttb/pkg/motion"
)

// Mock simulates an IMU for testing and development. Each channel is a sine
// with its own phase plus noise, and every SpikeEvery samples a short spike is
// added so downsampling has salient features to keep.
type Mock struct {
	cfg *config.MockConfig

	samples   chan RawSample
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	connected bool

	// Simulation state
	simMu sync.Mutex
	rng   *rand.Rand
	index int
}

// NewMock creates a new mocked device instance. seed makes the noise reproducible.
func NewMock(cfg *config.MockConfig, seed int64) *Mock {
	if cfg == nil {
		def := config.Default().Mock
		cfg = &def
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Mock{
		cfg:     cfg,
		samples: make(chan RawSample, DefaultBufferSize),
		ctx:     ctx,
		cancel:  cancel,
		rng:     rand.New(rand.NewSource(seed)),
	}
}

// Connect starts generating samples.
func (m *Mock) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected {
		return fmt.Errorf("already connected")
	}
	if m.done != nil {
		return fmt.Errorf("mock already used")
	}
	if m.cfg.SampleRate <= 0 {
		return fmt.Errorf("non-positive sample rate %v", m.cfg.SampleRate)
	}

	m.connected = true
	m.done = make(chan struct{})

	go m.generateSamples()

	return nil
}

// Close stops the mocked device and waits for the samples channel to close.
func (m *Mock) Close() error {
	m.mu.Lock()
	if !m.connected {
		m.mu.Unlock()
		return nil
	}
	m.cancel()
	m.connected = false
	done := m.done
	m.mu.Unlock()

	<-done
	return nil
}

// Samples returns the channel for reading samples.
func (m *Mock) Samples() <-chan RawSample {
	return m.samples
}

// IsConnected returns whether the device is currently connected.
func (m *Mock) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

// generateSamples emits one record per SampleRate tick until closed.
func (m *Mock) generateSamples() {
	defer close(m.done)
	defer close(m.samples)

	ticker := time.NewTicker(m.cfg.SampleRate)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case now := <-ticker.C:
			sample := RawSample{Timestamp: now, Record: m.next()}
			select {
			case m.samples <- sample:
			case <-m.ctx.Done():
				return
			default:
				// Channel full, skip
			}
		}
	}
}

// Generate returns the next n records without a running device.
func (m *Mock) Generate(n int) []motion.Record {
	records := make([]motion.Record, n)
	for i := range records {
		records[i] = m.next()
	}
	return records
}

// next computes the record at the current simulated sample index.
func (m *Mock) next() motion.Record {
	m.simMu.Lock()
	defer m.simMu.Unlock()

	i := m.index
	m.index++

	t := float64(i) * m.cfg.SampleRate.Seconds()
	var omega float64
	if m.cfg.Period > 0 {
		omega = 2 * math.Pi / m.cfg.Period.Seconds()
	}
	spike := m.cfg.SpikeEvery > 0 && i > 0 && i%m.cfg.SpikeEvery == 0

	var rec motion.Record
	for c := range rec {
		phase := float64(c) * math.Pi / motion.Channels
		v := m.cfg.Amplitude*math.Sin(omega*t+phase) + m.rng.NormFloat64()*m.cfg.NoiseLevel
		if spike {
			// Alternate spike direction per channel.
			if c%2 == 0 {
				v += m.cfg.SpikeHeight
			} else {
				v -= m.cfg.SpikeHeight
			}
		}
		rec[c] = saturate(v)
	}
	return rec
}

// saturate rounds v and clamps it to the int16 range.
func saturate(v float64) int16 {
	v = math.Round(v)
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}
