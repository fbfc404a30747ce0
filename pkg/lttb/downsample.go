package lttb

import "math"

// bucket is a half-open index range [lo, hi) over the interior of a series.
type bucket struct {
	lo, hi int
}

// buckets partitions the interior [1, n-2] into m-2 contiguous, non-empty ranges.
// Bucket i spans [floor(1+i*size), floor(1+(i+1)*size)) with size = (n-2)/(m-2);
// the last upper bound is clamped to n-1 so rounding never drops a point.
func buckets(n, m int) []bucket {
	count := m - 2
	if count <= 0 {
		return nil
	}

	size := float64(n-2) / float64(count)
	out := make([]bucket, count)
	for i := range count {
		out[i] = bucket{
			lo: int(math.Floor(1 + float64(i)*size)),
			hi: int(math.Floor(1 + float64(i+1)*size)),
		}
	}
	out[count-1].hi = n - 1

	return out
}

// mean returns the average position and value of series[b.lo:b.hi].
func mean[P, V Number](series []Point[P, V], b bucket) anchor {
	var sx, sy float64
	for _, p := range series[b.lo:b.hi] {
		sx += float64(p.X)
		sy += float64(p.Y)
	}
	l := float64(b.hi - b.lo)
	return anchor{x: sx / l, y: sy / l}
}

// largest returns the index in b of the point forming the largest triangle with a
// and next. Ties keep the lowest index.
func largest[P, V Number](series []Point[P, V], b bucket, a, next anchor) int {
	best, bestArea := b.lo, -1.0
	for j := b.lo; j < b.hi; j++ {
		if ar := area(a, anchorOf(series[j]), next); ar > bestArea {
			best, bestArea = j, ar
		}
	}
	return best
}

// Select runs Largest-Triangle-Three-Buckets over series and returns the m
// selected input indices in increasing order. The first and last indices are
// always 0 and len(series)-1.
func Select[P, V Number](series []Point[P, V], m int) ([]int, error) {
	if err := Validate(series, m); err != nil {
		return nil, err
	}

	n := len(series)
	indices := make([]int, 0, m)
	if m == n {
		for i := range n {
			indices = append(indices, i)
		}
		return indices, nil
	}

	bs := buckets(n, m)

	// Next-anchor means depend only on raw points, so they are computed up front.
	// The last bucket looks ahead to the final point itself.
	nexts := make([]anchor, len(bs))
	for i := range bs {
		if i+1 < len(bs) {
			nexts[i] = mean(series, bs[i+1])
		} else {
			nexts[i] = anchorOf(series[n-1])
		}
	}

	indices = append(indices, 0)
	a := anchorOf(series[0])
	for i, b := range bs {
		j := largest(series, b, a, nexts[i])
		indices = append(indices, j)
		a = anchorOf(series[j])
	}
	indices = append(indices, n-1)

	return indices, nil
}

// Downsample reduces series to exactly m points that preserve its visual shape.
// Every returned point is an unchanged copy of an input point; the input is not
// modified. It fails with ErrInvalidInput, ErrInvalidTargetSize or
// ErrNonFiniteValue before doing any work.
func Downsample[P, V Number](series []Point[P, V], m int) ([]Point[P, V], error) {
	return AppendDownsample(nil, series, m)
}

// AppendDownsample is like Downsample but appends the result to dst.
// On error dst is returned unchanged.
func AppendDownsample[P, V Number](dst, series []Point[P, V], m int) ([]Point[P, V], error) {
	indices, err := Select(series, m)
	if err != nil {
		return dst, err
	}

	dst = grow(dst, m)
	for _, j := range indices {
		dst = append(dst, series[j])
	}
	return dst, nil
}

func grow[T any](s []T, n int) []T {
	if cap(s)-len(s) >= n {
		return s
	}
	out := make([]T, len(s), len(s)+n)
	copy(out, s)
	return out
}
