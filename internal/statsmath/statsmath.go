// Package statsmath provides the small set of numeric helpers shared by the
// difficulty, progress, and reporting code.
package statsmath

import (
	"math"
	"slices"
)

// Mean returns the arithmetic mean of xs, or 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// Median returns the middle value of xs (average of the two middle values for
// an even count), or 0 for an empty slice. xs is not modified.
func Median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := slices.Clone(xs)
	slices.Sort(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 != 0 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// StdDev returns the population standard deviation of xs.
// Fewer than two samples yield 0.
func StdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := Mean(xs)
	sq := 0.0
	for _, x := range xs {
		d := x - m
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(xs)))
}

// Percentile returns the p-th percentile (0-100) of xs using linear
// interpolation between the closest ranks.
func Percentile(xs []float64, p float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := slices.Clone(xs)
	slices.Sort(sorted)

	p = ClampFloat(p, 0, 100)
	idx := (p / 100) * float64(len(sorted)-1)
	lower := int(math.Floor(idx))
	upper := int(math.Ceil(idx))
	if lower == upper {
		return sorted[lower]
	}
	return sorted[lower] + (sorted[upper]-sorted[lower])*(idx-float64(lower))
}

// MapRange clamps v into [inMin, inMax] (in either orientation) and maps it
// linearly onto [outMin, outMax].
func MapRange(v, inMin, inMax, outMin, outMax float64) float64 {
	if inMin == inMax {
		return outMin
	}
	v = ClampFloat(v, math.Min(inMin, inMax), math.Max(inMin, inMax))
	return outMin + ((v-inMin)/(inMax-inMin))*(outMax-outMin)
}

// LinearRegressionSlope fits ys against x = 0, 1, 2, ... by ordinary least
// squares and returns the slope. Fewer than two samples yield 0.
func LinearRegressionSlope(ys []float64) float64 {
	n := len(ys)
	if n < 2 {
		return 0
	}
	xMean := float64(n-1) / 2
	yMean := Mean(ys)

	var num, den float64
	for i, y := range ys {
		dx := float64(i) - xMean
		num += dx * (y - yMean)
		den += dx * dx
	}
	if den == 0 {
		return 0
	}
	return num / den
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampFloat bounds v to [lo, hi].
func ClampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
