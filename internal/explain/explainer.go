// Package explain turns a single prediction into a ranked list of feature
// contributions.
package explain

import (
	"math"
	"sort"

	"github.com/jengzang/flight-delay-backend-go/internal/features"
	"github.com/jengzang/flight-delay-backend-go/internal/models"
)

// MaxAttributions bounds every explanation
const MaxAttributions = 8

// Explainer modes reported by the model status
const (
	ModeModel     = "model"
	ModeSimulated = "simulated"
)

// Explainer attributes a prediction to features. Implementations never fail;
// the result holds at most MaxAttributions entries ordered by descending
// absolute contribution.
type Explainer interface {
	Explain(v features.Vector, c features.Context, predicted float64) []models.Attribution
	Mode() string
}

// rank sorts by descending absolute contribution, breaking ties by canonical
// column order, and keeps the top MaxAttributions
func rank(attrs []models.Attribution) []models.Attribution {
	sort.SliceStable(attrs, func(i, j int) bool {
		ai, aj := math.Abs(attrs[i].Contribution), math.Abs(attrs[j].Contribution)
		if ai != aj {
			return ai > aj
		}
		return columnOrder(attrs[i].Feature) < columnOrder(attrs[j].Feature)
	})
	if len(attrs) > MaxAttributions {
		attrs = attrs[:MaxAttributions]
	}
	return attrs
}

func columnOrder(name string) int {
	if i, ok := features.ColumnIndex(name); ok {
		return i
	}
	return features.NumFeatures
}

func attribution(name string, v features.Vector, c features.Context, contribution float64) models.Attribution {
	return models.Attribution{
		Feature:      name,
		DisplayName:  features.DisplayName(name),
		Value:        FormatValue(name, v, c),
		Contribution: contribution,
	}
}
