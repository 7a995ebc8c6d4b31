// Package stats holds the descriptive statistics and regression error
// metrics shared by imputation, binning and evaluation.
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DropNaN returns the non-NaN values in their original order
func DropNaN(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// StdDev calculates the sample standard deviation
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	return stat.StdDev(values, nil)
}

// Min returns the minimum value
func Min(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return floats.Min(values)
}

// Max returns the maximum value
func Max(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return floats.Max(values)
}

// Median calculates the median value, averaging the two middle values of an
// even-length input
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

// Mode returns the most frequent value. Ties resolve to the smallest value
// so the result does not depend on map iteration order.
func Mode(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	freq := make(map[float64]int)
	for _, v := range values {
		freq[v]++
	}

	maxFreq := 0
	mode := math.Inf(1)
	for v, f := range freq {
		if f > maxFreq || (f == maxFreq && v < mode) {
			maxFreq = f
			mode = v
		}
	}
	return mode
}

// Summary describes the distribution of a value series
type Summary struct {
	Mean float64
	Std  float64
	Min  float64
	Max  float64
}

// Describe summarises values, ignoring NaN
func Describe(values []float64) Summary {
	clean := DropNaN(values)
	return Summary{
		Mean: Mean(clean),
		Std:  StdDev(clean),
		Min:  Min(clean),
		Max:  Max(clean),
	}
}
