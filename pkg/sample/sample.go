package sample

import (
	"context"
	"fmt"
	"time"

	"github.com/itohio/golttb/pkg/imu"
	"github.com/itohio/golttb/pkg/motion"
	"github.com/sirupsen/logrus"
)

// sendTimeout bounds how long a converter waits on a slow consumer before dropping.
const sendTimeout = time.Second

// Converter is a function type that turns a RawSample channel into a single-channel series.
type Converter func(in <-chan imu.RawSample) <-chan motion.Point

// NewExtractor creates a converter that keeps only channel c of each record and
// positions it by arrival order, starting at zero. c must be Valid.
func NewExtractor(c motion.Channel, bufSize int, log logrus.FieldLogger) Converter {
	if bufSize <= 0 {
		bufSize = 100
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	return func(in <-chan imu.RawSample) <-chan motion.Point {
		out := make(chan motion.Point, bufSize)

		go func() {
			defer close(out)

			index := 0
			for raw := range in {
				p := motion.Point{X: index, Y: raw.Record.Get(c)}
				index++

				select {
				case out <- p:
				case <-time.After(sendTimeout):
					log.WithField("channel", c).WithField("index", p.X).Warn("extractor output channel full, dropping sample")
				}
			}
		}()

		return out
	}
}

// Collect reads points from in until it is closed or limit points were read
// (limit <= 0 means no limit). On cancellation it returns what it has so far
// together with the context error.
func Collect(ctx context.Context, in <-chan motion.Point, limit int) ([]motion.Point, error) {
	var series []motion.Point
	if limit > 0 {
		series = make([]motion.Point, 0, limit)
	}

	for limit <= 0 || len(series) < limit {
		select {
		case p, ok := <-in:
			if !ok {
				return series, nil
			}
			series = append(series, p)
		case <-ctx.Done():
			return series, ctx.Err()
		}
	}
	return series, nil
}

// Capture connects dev, collects up to limit values of channel c and closes dev.
func Capture(ctx context.Context, dev imu.Device, c motion.Channel, limit int, log logrus.FieldLogger) ([]motion.Point, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %s", motion.ErrUnknownChannel, c)
	}
	if err := dev.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect device: %w", err)
	}

	points := NewExtractor(c, 0, log)(dev.Samples())
	series, err := Collect(ctx, points, limit)

	if cerr := dev.Close(); cerr != nil && err == nil {
		err = fmt.Errorf("failed to close device: %w", cerr)
	}
	// Drain so the extractor goroutine can exit.
	for range points {
	}

	return series, err
}
