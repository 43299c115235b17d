package statsmath

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

func TestMean(t *testing.T) {
	tests := []struct {
		name string
		in   []float64
		want float64
	}{
		{"empty", nil, 0},
		{"single", []float64{4}, 4},
		{"several", []float64{1, 2, 3, 4}, 2.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Mean(tt.in); !almostEqual(got, tt.want) {
				t.Errorf("Mean(%v) = %f, want %f", tt.in, got, tt.want)
			}
		})
	}
}

func TestMedian(t *testing.T) {
	tests := []struct {
		in   []float64
		want float64
	}{
		{nil, 0},
		{[]float64{3, 1, 2}, 2},
		{[]float64{4, 1, 3, 2}, 2.5},
	}
	for _, tt := range tests {
		if got := Median(tt.in); !almostEqual(got, tt.want) {
			t.Errorf("Median(%v) = %f, want %f", tt.in, got, tt.want)
		}
	}
}

func TestMedian_DoesNotMutateInput(t *testing.T) {
	in := []float64{3, 1, 2}
	Median(in)
	if in[0] != 3 || in[1] != 1 || in[2] != 2 {
		t.Errorf("input mutated: %v", in)
	}
}

func TestStdDev(t *testing.T) {
	if got := StdDev([]float64{5}); got != 0 {
		t.Errorf("StdDev(single) = %f, want 0", got)
	}
	// Population stddev of 2,4,4,4,5,5,7,9 is exactly 2.
	if got := StdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9}); !almostEqual(got, 2) {
		t.Errorf("StdDev = %f, want 2", got)
	}
}

func TestPercentile(t *testing.T) {
	xs := []float64{10, 20, 30, 40, 50}
	tests := []struct {
		p    float64
		want float64
	}{
		{0, 10},
		{50, 30},
		{100, 50},
		{25, 20},
		{10, 14},
	}
	for _, tt := range tests {
		if got := Percentile(xs, tt.p); !almostEqual(got, tt.want) {
			t.Errorf("Percentile(%v) = %f, want %f", tt.p, got, tt.want)
		}
	}
	if got := Percentile(nil, 50); got != 0 {
		t.Errorf("Percentile(empty) = %f, want 0", got)
	}
}

func TestMapRange(t *testing.T) {
	tests := []struct {
		name                            string
		v, inMin, inMax, outMin, outMax float64
		want                            float64
	}{
		{"midpoint", 5, 0, 10, 0, 100, 50},
		{"clamped high", 20, 0, 10, 0, 100, 100},
		{"clamped low", -3, 0, 10, 0, 100, 0},
		{"inverted input", 2000, 2000, 200, 0, 100, 0},
		{"inverted input fast", 200, 2000, 200, 0, 100, 100},
		{"inverted input clamps", 100, 2000, 200, 0, 100, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapRange(tt.v, tt.inMin, tt.inMax, tt.outMin, tt.outMax)
			if !almostEqual(got, tt.want) {
				t.Errorf("MapRange = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestLinearRegressionSlope(t *testing.T) {
	tests := []struct {
		name string
		in   []float64
		want float64
	}{
		{"empty", nil, 0},
		{"single", []float64{1}, 0},
		{"flat", []float64{0.5, 0.5, 0.5}, 0},
		{"rising", []float64{0.4, 0.6, 0.8}, 0.2},
		{"falling", []float64{0.8, 0.6, 0.4}, -0.2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LinearRegressionSlope(tt.in); !almostEqual(got, tt.want) {
				t.Errorf("LinearRegressionSlope(%v) = %f, want %f", tt.in, got, tt.want)
			}
		})
	}
}

func TestClamp(t *testing.T) {
	if Clamp(0, 1, 20) != 1 || Clamp(25, 1, 20) != 20 || Clamp(7, 1, 20) != 7 {
		t.Error("Clamp did not saturate correctly")
	}
}
