package imu

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/itohio/golttb/pkg/motion"
	"github.com/sirupsen/logrus"
)

// DefaultBufferSize is the default size for the samples channel buffer.
const DefaultBufferSize = 100

// Stream is a Device that decodes records from any reader, e.g. a recorded
// motion file or a pipe. The reader is closed by Close.
type Stream struct {
	src  io.ReadCloser
	log  logrus.FieldLogger
	drop bool // drop records when samples is full instead of blocking

	samples   chan RawSample
	mu        sync.RWMutex
	cancel    context.CancelFunc
	done      chan struct{}
	closeSrc  sync.Once
	connected bool
	dropped   uint64
}

// NewStream creates a Stream reading from src. Records are delivered without
// loss: the reader waits while the samples channel is full.
func NewStream(src io.ReadCloser, bufSize int, log logrus.FieldLogger) *Stream {
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}
	return newStream(src, make(chan RawSample, bufSize), false, log)
}

func newStream(src io.ReadCloser, samples chan RawSample, drop bool, log logrus.FieldLogger) *Stream {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Stream{
		src:     src,
		log:     log,
		drop:    drop,
		samples: samples,
	}
}

// Connect starts decoding records in the background.
func (s *Stream) Connect() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.connected {
		return fmt.Errorf("already connected")
	}
	if s.done != nil {
		return fmt.Errorf("stream already consumed")
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	s.connected = true

	go s.readSamples(ctx)

	return nil
}

// Close stops reading, closes the source and waits for the samples channel to close.
func (s *Stream) Close() error {
	s.mu.Lock()
	done, cancel := s.done, s.cancel
	s.connected = false
	s.mu.Unlock()

	if done == nil {
		return nil
	}
	cancel()

	// Closing the source unblocks a pending read.
	var err error
	s.closeSrc.Do(func() { err = s.src.Close() })
	<-done

	return err
}

// Samples returns the channel for reading samples. It is closed when the
// source is exhausted or the stream is closed.
func (s *Stream) Samples() <-chan RawSample {
	return s.samples
}

// IsConnected returns whether the stream is currently reading.
func (s *Stream) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

// Dropped returns how many records were discarded because the channel was full.
func (s *Stream) Dropped() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dropped
}

// readSamples decodes whole records until EOF, error or cancellation.
func (s *Stream) readSamples(ctx context.Context) {
	defer close(s.done)
	defer close(s.samples)
	defer func() {
		if r := recover(); r != nil {
			s.log.WithField("panic", r).Error("panic in record reader")
		}
	}()

	for index := 0; ; index++ {
		rec, err := motion.ReadRecord(s.src)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.log.WithError(err).WithField("record", index).Warn("stopped reading records")
			}
			s.mu.Lock()
			s.connected = false
			s.mu.Unlock()
			return
		}

		sample := RawSample{Timestamp: time.Now(), Record: rec}

		if !s.drop {
			select {
			case s.samples <- sample:
			case <-ctx.Done():
				return
			}
			continue
		}

		select {
		case s.samples <- sample:
		case <-ctx.Done():
			return
		default:
			s.mu.Lock()
			s.dropped++
			s.mu.Unlock()
			s.log.WithField("record", index).Debug("samples channel full, dropping record")
		}
	}
}
