package motion

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/itohio/golttb/pkg/lttb"
	"golang.org/x/sync/errgroup"
)

// Point is one channel sample positioned by its zero-based record index.
type Point = lttb.Point[int, int16]

// Column extracts channel c from records as an index-positioned series.
// It panics if c is not Valid.
func Column(records []Record, c Channel) []Point {
	series := make([]Point, len(records))
	for i, rec := range records {
		series[i] = Point{X: i, Y: rec[c]}
	}
	return series
}

// Values drops the positions of a series.
func Values(series []Point) []int16 {
	values := make([]int16, len(series))
	for i, p := range series {
		values[i] = p.Y
	}
	return values
}

// TargetFromPercent converts an integer percentage of n into a target size,
// truncating and never going below 2 or above n.
func TargetFromPercent(n, percent int) int {
	return clampTarget(n, n*percent/100)
}

// TargetFromRatio converts a fractional ratio of n into a target size,
// flooring and never going below 2 or above n.
func TargetFromRatio(n int, ratio float64) int {
	return clampTarget(n, int(math.Floor(float64(n)*ratio)))
}

func clampTarget(n, m int) int {
	m = max(m, 2)
	if n >= 2 {
		m = min(m, n)
	}
	return m
}

// DownsampleChannels downsamples every channel of records to m points independently
// and reassembles them, so record i holds each channel's i-th selected value.
// The original positions are not kept.
func DownsampleChannels(ctx context.Context, records []Record, m int) ([]Record, error) {
	columns := make([][]Point, Channels)

	g, ctx := errgroup.WithContext(ctx)
	for _, c := range AllChannels() {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out, err := lttb.Downsample(Column(records, c), m)
			if err != nil {
				return fmt.Errorf("channel %s: %w", c, err)
			}
			columns[c] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]Record, m)
	for c, col := range columns {
		for i, p := range col {
			out[i][c] = p.Y
		}
	}
	return out, nil
}

// NewColumnIter streams channel c out of an encoded record stream.
// c must be Valid.
func NewColumnIter(r io.Reader, c Channel) lttb.Iter[int, int16] {
	br := bufio.NewReader(r)
	pos := 0

	return func(count int) ([]Point, error) {
		pts := make([]Point, 0, count)
		for range count {
			rec, err := ReadRecord(br)
			if err == io.EOF {
				break
			}
			if err != nil {
				return nil, fmt.Errorf("record %d: %w", pos, err)
			}
			pts = append(pts, Point{X: pos, Y: rec[c]})
			pos++
		}
		return pts, nil
	}
}

// DownsampleFile downsamples channel c of filename to m points without loading
// the whole file.
func DownsampleFile(filename string, c Channel, m int) ([]Point, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownChannel, c)
	}

	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open motion file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat motion file: %w", err)
	}

	n, err := Count(info.Size())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}

	out, err := lttb.DownsampleIter(n, m, NewColumnIter(f, c))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return out, nil
}
