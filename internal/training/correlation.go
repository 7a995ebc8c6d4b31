package training

import "github.com/jengzang/flight-delay-backend-go/internal/stats"

// Correlation is the association of one feature column with the target
type Correlation struct {
	Feature  string
	Pearson  float64
	Spearman float64
}

// TargetCorrelations correlates every column of x with y, in column order
func TargetCorrelations(x [][]float64, y []float64, names []string) []Correlation {
	out := make([]Correlation, len(names))
	col := make([]float64, len(x))
	for j, name := range names {
		for i, row := range x {
			col[i] = row[j]
		}
		out[j] = Correlation{
			Feature:  name,
			Pearson:  stats.PearsonCorrelation(col, y),
			Spearman: stats.SpearmanCorrelation(col, y),
		}
	}
	return out
}
