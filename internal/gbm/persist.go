package gbm

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
)

// FormatVersion is the current model document version
const FormatVersion = 1

// ErrFormat is returned when a model document cannot be used
var ErrFormat = errors.New("unsupported model document")

type document struct {
	Version       int      `json:"version"`
	Params        Params   `json:"params"`
	BaseScore     float64  `json:"base_score"`
	FeatureNames  []string `json:"feature_names"`
	BestIteration int      `json:"best_iteration"`
	Fitted        bool     `json:"fitted"`
	Trees         []Tree   `json:"trees"`
}

// Save writes the model as a versioned JSON document. Floats are written in
// shortest round-trip form so a loaded model predicts bit-identically.
func (m *Model) Save(w io.Writer) error {
	if !m.fitted {
		return ErrNotFitted
	}

	doc := document{
		Version:       FormatVersion,
		Params:        m.params,
		BaseScore:     m.baseScore,
		FeatureNames:  m.featureNames,
		BestIteration: m.bestIteration,
		Fitted:        m.fitted,
		Trees:         m.trees,
	}
	if err := json.NewEncoder(w).Encode(doc); err != nil {
		return fmt.Errorf("encode model: %w", err)
	}
	return nil
}

// Load reads a model written by Save
func Load(r io.Reader, opts ...Option) (*Model, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	if doc.Version != FormatVersion {
		return nil, fmt.Errorf("%w: version %d", ErrFormat, doc.Version)
	}
	if !doc.Fitted || len(doc.FeatureNames) == 0 {
		return nil, fmt.Errorf("%w: model was never fitted", ErrFormat)
	}
	if err := validateTrees(doc.Trees, len(doc.FeatureNames)); err != nil {
		return nil, err
	}

	m := New(doc.Params, opts...)
	m.baseScore = doc.BaseScore
	m.trees = doc.Trees
	m.featureNames = doc.FeatureNames
	m.bestIteration = doc.BestIteration
	m.fitted = true

	m.logger.Debug("model loaded", zap.Int("trees", len(m.trees)), zap.Strings("features", m.featureNames))
	return m, nil
}

// validateTrees makes sure every walk terminates inside the node array
func validateTrees(trees []Tree, numFeatures int) error {
	for ti, t := range trees {
		if len(t.Nodes) == 0 {
			return fmt.Errorf("%w: tree %d is empty", ErrFormat, ti)
		}
		for ni, n := range t.Nodes {
			if n.IsLeaf() {
				continue
			}
			if n.Feature < 0 || n.Feature >= numFeatures ||
				n.Left <= ni || n.Right <= ni ||
				n.Left >= len(t.Nodes) || n.Right >= len(t.Nodes) {
				return fmt.Errorf("%w: tree %d node %d", ErrFormat, ti, ni)
			}
		}
	}
	return nil
}
