package lttb

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned when the series holds fewer than two points.
	ErrInvalidInput = errors.New("lttb: series must contain at least 2 points")
	// ErrInvalidTargetSize is returned when the target size is outside [2, n].
	ErrInvalidTargetSize = errors.New("lttb: invalid target size")
	// ErrNonFiniteValue is returned when a position or value is NaN or infinite.
	ErrNonFiniteValue = errors.New("lttb: non-finite value")
)

// Validate checks the preconditions of Downsample without doing any bucket math.
func Validate[P, V Number](series []Point[P, V], m int) error {
	if err := validateSize(len(series), m); err != nil {
		return err
	}
	for i, p := range series {
		if err := checkPoint(i, p); err != nil {
			return err
		}
	}
	return nil
}

func validateSize(n, m int) error {
	if n < 2 {
		return fmt.Errorf("%w: got %d", ErrInvalidInput, n)
	}
	if m < 2 || m > n {
		return fmt.Errorf("%w: %d not in [2, %d]", ErrInvalidTargetSize, m, n)
	}
	return nil
}

func checkPoint[P, V Number](i int, p Point[P, V]) error {
	if !isFinite(p.X) {
		return fmt.Errorf("%w: position at index %d", ErrNonFiniteValue, i)
	}
	if !isFinite(p.Y) {
		return fmt.Errorf("%w: value at index %d", ErrNonFiniteValue, i)
	}
	return nil
}
