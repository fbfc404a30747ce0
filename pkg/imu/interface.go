package imu

import (
	"time"

	"github.com/itohio/golttb/pkg/motion"
)

// RawSample is one record received from a device, stamped on arrival.
type RawSample struct {
	Timestamp time.Time
	Record    motion.Record
}

// Device defines the interface for IMU record sources (serial, replayed or mocked).
type Device interface {
	Connect() error
	Close() error
	Samples() <-chan RawSample
	IsConnected() bool
}

var (
	_ Device = (*Serial)(nil)
	_ Device = (*Stream)(nil)
	_ Device = (*Mock)(nil)
)
