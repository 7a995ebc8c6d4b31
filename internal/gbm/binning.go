package gbm

import (
	"math"
	"sort"

	"github.com/jengzang/flight-delay-backend-go/internal/stats"
)

// missingBin marks NaN values; it never takes part in a threshold and always
// follows the right branch
const missingBin = math.MaxUint8

// buildCuts returns the ascending bin boundaries of one feature column. With
// few distinct values every midpoint is a boundary, otherwise boundaries are
// evenly spaced quantiles.
func buildCuts(column []float64, maxBins int) []float64 {
	if maxBins > missingBin {
		maxBins = missingBin
	}

	sorted := stats.DropNaN(column)
	if len(sorted) == 0 {
		return nil
	}
	sort.Float64s(sorted)

	unique := make([]float64, 0, len(sorted))
	for i, v := range sorted {
		if i == 0 || v != sorted[i-1] {
			unique = append(unique, v)
		}
	}

	if len(unique) <= maxBins {
		cuts := make([]float64, 0, len(unique)-1)
		for i := 1; i < len(unique); i++ {
			cuts = append(cuts, unique[i-1]+(unique[i]-unique[i-1])/2)
		}
		return cuts
	}

	cuts := make([]float64, 0, maxBins-1)
	for i := 1; i < maxBins; i++ {
		c := stats.SortedQuantile(sorted, float64(i)/float64(maxBins))
		if c <= unique[0] {
			continue
		}
		if len(cuts) > 0 && c <= cuts[len(cuts)-1] {
			continue
		}
		cuts = append(cuts, c)
	}
	return cuts
}

// binOf maps a raw value to its bin: the first boundary strictly above x.
// A split after bin b therefore sends x left exactly when x < cuts[b].
func binOf(cuts []float64, x float64) uint8 {
	if math.IsNaN(x) {
		return missingBin
	}
	return uint8(sort.Search(len(cuts), func(i int) bool { return x < cuts[i] }))
}

// binMatrix stores the binned training data column-major
type binMatrix struct {
	cuts [][]float64
	bins [][]uint8
}

func newBinMatrix(x [][]float64, numFeatures, maxBins int) *binMatrix {
	m := &binMatrix{
		cuts: make([][]float64, numFeatures),
		bins: make([][]uint8, numFeatures),
	}

	column := make([]float64, len(x))
	for f := 0; f < numFeatures; f++ {
		for i, row := range x {
			column[i] = row[f]
		}
		cuts := buildCuts(column, maxBins)
		binned := make([]uint8, len(x))
		for i, v := range column {
			binned[i] = binOf(cuts, v)
		}
		m.cuts[f] = cuts
		m.bins[f] = binned
	}
	return m
}

// numBins is the count of non-missing bins of feature f
func (m *binMatrix) numBins(f int) int {
	return len(m.cuts[f]) + 1
}
