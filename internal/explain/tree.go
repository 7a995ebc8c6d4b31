package explain

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/jengzang/flight-delay-backend-go/internal/features"
	"github.com/jengzang/flight-delay-backend-go/internal/gbm"
	"github.com/jengzang/flight-delay-backend-go/internal/models"
)

// ErrUnavailable is returned when a model cannot back a tree explainer
var ErrUnavailable = errors.New("model explainer unavailable")

// Contributor is the part of a fitted model the tree explainer needs
type Contributor interface {
	Contributions(row []float64) (gbm.Contribution, error)
}

// Tree explains predictions with the additive path contributions of the
// fitted ensemble. Failures are logged and answered by the simulated table.
type Tree struct {
	model      Contributor
	fallback   *Simulated
	logger     *zap.Logger
	onFallback func(error)
}

// TreeOption configures a Tree explainer
type TreeOption func(*Tree)

// WithLogger sets the logger used to report fallbacks
func WithLogger(logger *zap.Logger) TreeOption {
	return func(t *Tree) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithFallbackHook registers a callback run on every fallback
func WithFallbackHook(fn func(error)) TreeOption {
	return func(t *Tree) { t.onFallback = fn }
}

// NewTree builds a tree explainer for a fitted model trained on the canonical
// feature columns
func NewTree(m *gbm.Model, opts ...TreeOption) (*Tree, error) {
	if m == nil || !m.Fitted() {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, gbm.ErrNotFitted)
	}
	if !features.MatchesColumns(m.FeatureNames()) {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, gbm.ErrFeatureMismatch)
	}
	return newTree(m, opts...), nil
}

func newTree(c Contributor, opts ...TreeOption) *Tree {
	t := &Tree{
		model:    c,
		fallback: NewSimulated(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Mode implements Explainer
func (*Tree) Mode() string { return ModeModel }

// Explain implements Explainer
func (t *Tree) Explain(v features.Vector, c features.Context, predicted float64) []models.Attribution {
	contrib, err := t.model.Contributions(v.Row())
	if err == nil && len(contrib.Values) != features.NumFeatures {
		err = fmt.Errorf("%w: %d contributions", gbm.ErrFeatureMismatch, len(contrib.Values))
	}
	if err != nil {
		t.logger.Warn("model attribution failed, using simulated values", zap.Error(err))
		if t.onFallback != nil {
			t.onFallback(err)
		}
		return t.fallback.Explain(v, c, predicted)
	}

	attrs := make([]models.Attribution, features.NumFeatures)
	for i, name := range features.Columns {
		attrs[i] = attribution(name, v, c, contrib.Values[i])
	}
	return rank(attrs)
}
