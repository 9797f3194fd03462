package utils

import (
	"math"

	"golang.org/x/exp/constraints"
)

// Min returns the smaller value between two numbers.
func Min[T constraints.Ordered](x, y T) T {
	if x < y {
		return x
	}
	return y
}

// Max returns the bigger value between two numbers.
func Max[T constraints.Ordered](x, y T) T {
	if x > y {
		return x
	}
	return y
}

// Abs returns the absolut value of x.
func Abs[T constraints.Signed | constraints.Float](x T) T {
	if x < 0 {
		return -x
	}
	return x
}

// Clamp restricts v to the [lo, hi] interval.
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	return Max(lo, Min(hi, v))
}

// Wrap folds v into the half open [0, period) interval.
// Negative values wrap around, so Wrap(-10, 360) yields 350.
func Wrap[T constraints.Float](v, period T) T {
	r := T(math.Mod(float64(v), float64(period)))
	if r < 0 {
		r += period
	}
	// -0 and values rounding up to the period both land on 0.
	if r >= period || r == 0 {
		return 0
	}
	return r
}
