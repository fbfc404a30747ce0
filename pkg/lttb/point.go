package lttb

import (
	"math"
	"reflect"

	"github.com/chewxy/math32"
)

// Number is any integer or floating point type usable as a position or value.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Point is a single sample: X is the position (index or timestamp), Y the measured value.
type Point[P, V Number] struct {
	X P
	Y V
}

// anchor is a triangle vertex in float64 space. It is either a selected point
// or the mean of a bucket, and is never emitted.
type anchor struct {
	x, y float64
}

func anchorOf[P, V Number](p Point[P, V]) anchor {
	return anchor{x: float64(p.X), y: float64(p.Y)}
}

// area returns twice the triangle area of (a, c, next).
func area(a, c, next anchor) float64 {
	return math.Abs((c.x-a.x)*(next.y-a.y) - (next.x-a.x)*(c.y-a.y))
}

// isFinite reports whether v is neither NaN nor infinite. Integers always are.
// The kind is taken from T so named float types are checked at their own width.
func isFinite[T Number](v T) bool {
	switch reflect.TypeFor[T]().Kind() {
	case reflect.Float32:
		f := float32(v)
		return !math32.IsNaN(f) && !math32.IsInf(f, 0)
	case reflect.Float64:
		f := float64(v)
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	}
	return true
}
