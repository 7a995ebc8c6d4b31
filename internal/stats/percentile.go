package stats

import (
	"math"
	"sort"
)

// Quantile calculates the q-th quantile (0 <= q <= 1) using linear
// interpolation between closest ranks
func Quantile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return SortedQuantile(sorted, q)
}

// SortedQuantile is Quantile over input that is already sorted ascending
func SortedQuantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q < 0 {
		q = 0
	}
	if q > 1 {
		q = 1
	}

	index := q * float64(len(sorted)-1)
	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))
	if lower == upper {
		return sorted[lower]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// Quantiles calculates several quantiles with a single sort
func Quantiles(values []float64, qs []float64) []float64 {
	results := make([]float64, len(qs))
	if len(values) == 0 {
		return results
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	for i, q := range qs {
		results[i] = SortedQuantile(sorted, q)
	}
	return results
}
