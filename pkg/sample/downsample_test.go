package sample

import (
	"testing"

	"github.com/itohio/golttb/pkg/lttb"
	"github.com/itohio/golttb/pkg/motion"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ramp(n int) []motion.Point {
	samples := make([]motion.Point, n)
	for i := range samples {
		samples[i] = motion.Point{X: i, Y: int16(i % 17)}
	}
	return samples
}

func TestDownsampleSamples_NoDownsampling(t *testing.T) {
	samples := ramp(3)

	// Test with nil dst
	result, err := DownsampleSamples(nil, samples, 10)
	require.NoError(t, err)
	assert.Equal(t, samples, result)

	// Test with sufficient capacity dst
	dst := make([]motion.Point, 0, 10)
	result, err = DownsampleSamples(dst, samples, 10)
	require.NoError(t, err)
	assert.Equal(t, samples, result)
	// Should reuse dst
	assert.Equal(t, cap(dst), cap(result))
}

func TestDownsampleSamples_WithDownsampling(t *testing.T) {
	samples := ramp(100)

	dst := make([]motion.Point, 0, 20)
	result, err := DownsampleSamples(dst, samples, 10)
	require.NoError(t, err)
	require.Len(t, result, 10)

	// First and last samples are always kept
	assert.Equal(t, samples[0], result[0])
	assert.Equal(t, samples[99], result[9])

	want, err := lttb.Downsample(samples, 10)
	require.NoError(t, err)
	assert.Equal(t, want, result)

	// Should reuse dst if capacity sufficient
	assert.Equal(t, cap(dst), cap(result))
}

func TestDownsampleSamples_DestinationReuse(t *testing.T) {
	dst := make([]motion.Point, 0, 10)
	result1, err := DownsampleSamples(dst, ramp(2), 10)
	require.NoError(t, err)
	require.Len(t, result1, 2)

	result2, err := DownsampleSamples(result1, ramp(50), 10)
	require.NoError(t, err)
	require.Len(t, result2, 10)

	// Should reuse same underlying array
	assert.Equal(t, cap(result1), cap(result2))
}

func TestDownsampleSamples_EmptyInput(t *testing.T) {
	result, err := DownsampleSamples(nil, []motion.Point{}, 10)
	require.NoError(t, err)
	require.Equal(t, 0, len(result))
}

func TestDownsampleSamples_InvalidMaxPoints(t *testing.T) {
	_, err := DownsampleSamples(nil, ramp(10), 1)
	assert.ErrorIs(t, err, lttb.ErrInvalidTargetSize)
}
