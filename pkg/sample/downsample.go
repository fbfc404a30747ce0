package sample

import (
	"github.com/itohio/golttb/pkg/lttb"
	"github.com/itohio/golttb/pkg/motion"
)

// DownsampleSamples reduces samples to at most maxPoints for display using LTTB,
// so peaks and troughs survive the reduction.
// Destination-based: reuses dst if it has sufficient capacity, otherwise allocates new.
// If len(samples) <= maxPoints, copies all samples to dst.
func DownsampleSamples(dst []motion.Point, samples []motion.Point, maxPoints int) ([]motion.Point, error) {
	if len(samples) <= maxPoints {
		if cap(dst) >= len(samples) {
			dst = dst[:len(samples)]
			copy(dst, samples)
			return dst, nil
		}
		result := make([]motion.Point, len(samples))
		copy(result, samples)
		return result, nil
	}

	return lttb.AppendDownsample(dst[:0], samples, maxPoints)
}
