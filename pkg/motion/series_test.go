package motion

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/itohio/golttb/pkg/lttb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wave builds n records where channel c holds c*1000 + a sawtooth of period 7.
func wave(n int) []Record {
	records := make([]Record, n)
	for i := range records {
		for c := range records[i] {
			records[i][c] = int16(c*1000 + (i*(c+1))%7)
		}
	}
	return records
}

func TestColumn(t *testing.T) {
	records := []Record{{1, 2, 3, 4, 5, 6}, {7, 8, 9, 10, 11, 12}}

	assert.Equal(t, []Point{{X: 0, Y: 3}, {X: 1, Y: 9}}, Column(records, AZ))
	assert.Equal(t, []int16{6, 12}, Values(Column(records, GZ)))
}

func TestTargetFromPercent(t *testing.T) {
	assert.Equal(t, 800, TargetFromPercent(1000, 80))
	assert.Equal(t, 10, TargetFromPercent(1000, 1))
	assert.Equal(t, 2, TargetFromPercent(50, 1))
	assert.Equal(t, 3, TargetFromPercent(7, 50))
	assert.Equal(t, 7, TargetFromPercent(7, 100))
}

func TestTargetFromRatio(t *testing.T) {
	assert.Equal(t, 800, TargetFromRatio(1000, 0.8))
	assert.Equal(t, 50, TargetFromRatio(1000, 0.05))
	assert.Equal(t, 2, TargetFromRatio(50, 0.01))
	assert.Equal(t, 9, TargetFromRatio(9, 1.5))
}

func TestDownsampleChannels(t *testing.T) {
	records := wave(200)

	out, err := DownsampleChannels(context.Background(), records, 20)
	require.NoError(t, err)
	require.Len(t, out, 20)

	for _, c := range AllChannels() {
		want, err := lttb.Downsample(Column(records, c), 20)
		require.NoError(t, err)

		got := make([]int16, len(out))
		for i, rec := range out {
			got[i] = rec.Get(c)
		}
		assert.Equal(t, Values(want), got, "channel %s", c)
	}
}

func TestDownsampleChannels_InvalidTarget(t *testing.T) {
	_, err := DownsampleChannels(context.Background(), wave(10), 11)
	assert.ErrorIs(t, err, lttb.ErrInvalidTargetSize)
}

func TestDownsampleChannels_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := DownsampleChannels(ctx, wave(10), 5)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDownsampleFile_MatchesInMemory(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "motion.dat")
	records := wave(5000)
	require.NoError(t, WriteFile(filename, records))

	for _, m := range []int{2, 3, 50, 2500, 5000} {
		got, err := DownsampleFile(filename, GX, m)
		require.NoError(t, err)

		want, err := lttb.Downsample(Column(records, GX), m)
		require.NoError(t, err)
		assert.Equal(t, want, got, "m=%d", m)
	}
}

func TestDownsampleFile_UnknownChannel(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "motion.dat")
	require.NoError(t, WriteFile(filename, wave(10)))

	_, err := DownsampleFile(filename, Channel(7), 4)
	assert.ErrorIs(t, err, ErrUnknownChannel)
	assert.Contains(t, err.Error(), "Channel(7)")
}

func TestDownsampleFile_TooShort(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "motion.dat")
	require.NoError(t, WriteFile(filename, wave(1)))

	_, err := DownsampleFile(filename, AX, 2)
	assert.ErrorIs(t, err, lttb.ErrInvalidInput)
}
