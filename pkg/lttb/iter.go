package lttb

import (
	"fmt"
	"io"
	"math"
)

// Iter returns the next count points of a series. It must return exactly count
// points unless it fails, and must not reuse the memory of a slice it returned
// on the previous call.
type Iter[P, V Number] func(count int) ([]Point[P, V], error)

// SliceIter adapts an in-memory series to Iter.
func SliceIter[P, V Number](series []Point[P, V]) Iter[P, V] {
	return func(count int) ([]Point[P, V], error) {
		if count > len(series) {
			count = len(series)
		}
		pts := series[:count:count]
		series = series[count:]
		return pts, nil
	}
}

// DownsampleIter selects the same points as Downsample but pulls the series
// from it one bucket at a time, so at most two buckets are held in memory.
// count is the total number of points it will yield.
//
// Points are checked for finiteness as they are read, so a bad point late in the
// series is only detected when reached. No partial output is returned on error.
func DownsampleIter[P, V Number](count, m int, it Iter[P, V]) ([]Point[P, V], error) {
	if err := validateSize(count, m); err != nil {
		return nil, err
	}

	r := reader[P, V]{it: it}

	if m == count {
		pts, err := r.pull(count)
		if err != nil {
			return nil, err
		}
		out := make([]Point[P, V], count)
		copy(out, pts)
		return out, nil
	}

	head, err := r.pull(1)
	if err != nil {
		return nil, err
	}

	out := make([]Point[P, V], 0, m)
	out = append(out, head[0])

	if m == 2 {
		if err := r.skip(count - 2); err != nil {
			return nil, err
		}
		tail, err := r.pull(1)
		if err != nil {
			return nil, err
		}
		return append(out, tail[0]), nil
	}

	width := float64(count-2) / float64(m-2)
	edge := func(i int) int {
		if i == m-2 {
			return count - 1
		}
		return int(math.Floor(1 + float64(i)*width))
	}

	current, err := r.pull(edge(1) - edge(0))
	if err != nil {
		return nil, err
	}

	prev := anchorOf(head[0])
	for i := 0; i < m-2; i++ {
		var (
			after []Point[P, V]
			c     anchor
		)
		if i+1 < m-2 {
			if after, err = r.pull(edge(i+2) - edge(i+1)); err != nil {
				return nil, err
			}
			for _, p := range after {
				c.x += float64(p.X)
				c.y += float64(p.Y)
			}
			c.x /= float64(len(after))
			c.y /= float64(len(after))
		} else {
			if after, err = r.pull(1); err != nil {
				return nil, err
			}
			c = anchorOf(after[0])
		}

		pick, best := 0, -1.0
		for k := range current {
			if ar := area(prev, anchorOf(current[k]), c); ar > best {
				pick, best = k, ar
			}
		}

		out = append(out, current[pick])
		prev = anchorOf(current[pick])
		current = after
	}

	// The final iteration pulled the last point into current.
	return append(out, current[0]), nil
}

// skipChunk bounds how many points skip holds at once.
const skipChunk = 4096

type reader[P, V Number] struct {
	it  Iter[P, V]
	pos int
}

func (r *reader[P, V]) pull(count int) ([]Point[P, V], error) {
	if count == 0 {
		return nil, nil
	}
	pts, err := r.it(count)
	if err != nil {
		return nil, fmt.Errorf("lttb: read points at %d: %w", r.pos, err)
	}
	if len(pts) != count {
		return nil, fmt.Errorf("lttb: read points at %d: got %d of %d: %w", r.pos, len(pts), count, io.ErrUnexpectedEOF)
	}
	for i, p := range pts {
		if err := checkPoint(r.pos+i, p); err != nil {
			return nil, err
		}
	}
	r.pos += count
	return pts, nil
}

// skip reads and checks count points without keeping them.
func (r *reader[P, V]) skip(count int) error {
	for count > 0 {
		k := min(count, skipChunk)
		if _, err := r.pull(k); err != nil {
			return err
		}
		count -= k
	}
	return nil
}
