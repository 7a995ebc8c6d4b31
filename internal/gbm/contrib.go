package gbm

import "fmt"

// Contribution splits one prediction into a bias and one additive term per
// feature: Bias + sum(Values) equals the prediction.
type Contribution struct {
	Bias   float64
	Values []float64
}

// Contributions attributes a prediction to features by walking each tree and
// crediting the change in expected value at every split to the split feature.
func (m *Model) Contributions(row []float64) (Contribution, error) {
	if !m.fitted {
		return Contribution{}, ErrNotFitted
	}
	if len(row) != len(m.featureNames) {
		return Contribution{}, fmt.Errorf("%w: got %d values, want %d", ErrFeatureMismatch, len(row), len(m.featureNames))
	}

	c := Contribution{Bias: m.baseScore, Values: make([]float64, len(row))}
	for ti := range m.trees {
		nodes := m.trees[ti].Nodes
		c.Bias += nodes[0].Value

		i := 0
		for !nodes[i].IsLeaf() {
			n := nodes[i]
			next := n.Right
			if row[n.Feature] < n.Threshold {
				next = n.Left
			}
			c.Values[n.Feature] += nodes[next].Value - n.Value
			i = next
		}
	}
	return c, nil
}
