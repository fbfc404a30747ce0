package imu

import (
	"fmt"
	"io"
	"sync"

	"github.com/cenkalti/backoff"
	"github.com/itohio/golttb/pkg/config"
	"github.com/sirupsen/logrus"
	"go.bug.st/serial"
)

// DefaultBaudRate is the default serial baud rate of the IMU logger.
const DefaultBaudRate = 115200

// Port represents a serial port.
type Port struct {
	Name        string
	Description string
}

// Ports returns a list of available serial ports.
func Ports() ([]Port, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	result := make([]Port, 0, len(ports))
	for _, name := range ports {
		result = append(result, Port{Name: name, Description: name})
	}
	return result, nil
}

// opener opens a serial port; replaced in tests.
type opener func(name string, mode *serial.Mode) (io.ReadCloser, error)

func openSerial(name string, mode *serial.Mode) (io.ReadCloser, error) {
	return serial.Open(name, mode)
}

// Serial streams binary motion records from a serial port. It is real-time:
// when the consumer falls behind, records are dropped rather than queued.
type Serial struct {
	cfg   config.SerialConfig
	log   logrus.FieldLogger
	open  opener
	retry backoff.BackOff // nil means exponential, bounded by cfg.ConnectTimeout

	samples chan RawSample
	mu      sync.Mutex
	stream  *Stream
}

// NewSerial creates a Serial device for cfg.Port.
func NewSerial(cfg config.SerialConfig, log logrus.FieldLogger) *Serial {
	if cfg.BaudRate == 0 {
		cfg.BaudRate = DefaultBaudRate
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = DefaultBufferSize
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	return &Serial{
		cfg:     cfg,
		log:     log.WithField("port", cfg.Port),
		open:    openSerial,
		samples: make(chan RawSample, cfg.BufferSize),
	}
}

// Connect opens the port, retrying with exponential backoff, and starts reading records.
func (d *Serial) Connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stream != nil {
		if d.stream.IsConnected() {
			return fmt.Errorf("already connected")
		}
		return fmt.Errorf("serial device already used")
	}

	mode := &serial.Mode{BaudRate: d.cfg.BaudRate}

	policy := d.retry
	if policy == nil {
		exp := backoff.NewExponentialBackOff()
		if d.cfg.ConnectTimeout > 0 {
			exp.MaxElapsedTime = d.cfg.ConnectTimeout
		}
		policy = exp
	}

	var port io.ReadCloser
	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		p, err := d.open(d.cfg.Port, mode)
		if err != nil {
			d.log.WithError(err).WithField("attempt", attempt).Warn("failed to open serial port")
			return err
		}
		port = p
		return nil
	}, backoff.WithMaxRetries(policy, d.cfg.ConnectRetries))
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", d.cfg.Port, err)
	}

	d.stream = newStream(port, d.samples, true, d.log)
	if err := d.stream.Connect(); err != nil {
		port.Close()
		return err
	}

	d.log.WithField("baud_rate", d.cfg.BaudRate).Info("serial port connected")
	return nil
}

// Close closes the port and stops reading samples.
func (d *Serial) Close() error {
	d.mu.Lock()
	stream := d.stream
	d.mu.Unlock()

	if stream == nil {
		return nil
	}
	if err := stream.Close(); err != nil {
		d.log.WithError(err).Warn("error closing serial port")
		return err
	}
	return nil
}

// Samples returns the channel for reading samples.
func (d *Serial) Samples() <-chan RawSample {
	return d.samples
}

// IsConnected returns whether the device is currently connected.
func (d *Serial) IsConnected() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stream != nil && d.stream.IsConnected()
}

// Dropped returns how many records were discarded because the consumer was slow.
func (d *Serial) Dropped() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stream == nil {
		return 0
	}
	return d.stream.Dropped()
}
