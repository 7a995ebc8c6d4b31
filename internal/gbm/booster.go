package gbm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/jengzang/flight-delay-backend-go/internal/stats"
)

var (
	// ErrNotFitted is returned when a model is used before Fit or Load
	ErrNotFitted = errors.New("model is not fitted")
	// ErrFeatureMismatch is returned when input width differs from the
	// feature names the model was trained with
	ErrFeatureMismatch = errors.New("feature count mismatch")
	// ErrInvalidInput is returned by Fit for unusable training data
	ErrInvalidInput = errors.New("invalid training data")
)

// Model is a boosted ensemble of regression trees
type Model struct {
	params        Params
	baseScore     float64
	trees         []Tree
	featureNames  []string
	bestIteration int
	fitted        bool

	logger *zap.Logger
}

// Option configures a Model
type Option func(*Model)

// WithLogger sets the logger used for training progress
func WithLogger(logger *zap.Logger) Option {
	return func(m *Model) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// New creates an untrained model
func New(params Params, opts ...Option) *Model {
	m := &Model{params: params, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// EvalSet is a held-out set monitored for early stopping
type EvalSet struct {
	X [][]float64
	Y []float64
}

// Params returns the hyperparameters
func (m *Model) Params() Params { return m.params }

// Fitted reports whether the model can predict
func (m *Model) Fitted() bool { return m.fitted }

// BaseScore returns the initial prediction shared by every row
func (m *Model) BaseScore() float64 { return m.baseScore }

// NumTrees returns the size of the ensemble
func (m *Model) NumTrees() int { return len(m.trees) }

// BestIteration returns the zero-based round with the best validation score,
// or the last round when no validation set was used
func (m *Model) BestIteration() int { return m.bestIteration }

// FeatureNames returns a copy of the feature names used at fit time
func (m *Model) FeatureNames() []string {
	out := make([]string, len(m.featureNames))
	copy(out, m.featureNames)
	return out
}

// Fit trains the ensemble. When eval is given and early stopping is enabled,
// training stops after EarlyStoppingRounds rounds without improvement of the
// validation RMSE and the ensemble is cut back to the best round.
func (m *Model) Fit(ctx context.Context, x [][]float64, y []float64, names []string, eval *EvalSet) error {
	if err := m.params.Validate(); err != nil {
		return err
	}
	if err := validateTraining(x, y, names); err != nil {
		return err
	}
	if eval != nil {
		if len(eval.X) != len(eval.Y) || len(eval.X) == 0 {
			eval = nil
		} else if err := checkWidth(eval.X, len(names)); err != nil {
			return fmt.Errorf("eval set: %w", err)
		}
	}

	start := time.Now()
	p := m.params
	n, nf := len(x), len(names)
	data := newBinMatrix(x, nf, p.MaxBins)
	rng := rand.New(rand.NewPCG(p.Seed, p.Seed^0x9e3779b97f4a7c15))

	base := stats.Mean(y)
	pred := make([]float64, n)
	for i := range pred {
		pred[i] = base
	}
	var evalPred []float64
	if eval != nil {
		evalPred = make([]float64, len(eval.Y))
		for i := range evalPred {
			evalPred[i] = base
		}
	}

	g := &grower{
		params:  p,
		data:    data,
		grad:    make([]float64, n),
		hess:    make([]float64, n),
		workers: p.workers(),
	}
	for i := range g.hess {
		g.hess[i] = 1
	}

	trees := make([]Tree, 0, p.NumTrees)
	bestRound, bestScore := -1, math.Inf(1)
	allRows := make([]int, n)
	for i := range allRows {
		allRows[i] = i
	}

	for round := 0; round < p.NumTrees; round++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		for i := range g.grad {
			g.grad[i] = pred[i] - y[i]
		}
		rows := sampleRows(rng, allRows, p.Subsample)
		g.features = sampleColumns(rng, nf, p.ColSample)

		tree := g.grow(rows)
		trees = append(trees, tree)
		for i, row := range x {
			pred[i] += tree.predict(row)
		}

		var evalRMSE float64
		if eval != nil {
			for i, row := range eval.X {
				evalPred[i] += tree.predict(row)
			}
			evalRMSE = stats.RMSE(eval.Y, evalPred)
			if evalRMSE < bestScore {
				bestRound, bestScore = round, evalRMSE
			}
		}

		if p.LogEvery > 0 && (round+1)%p.LogEvery == 0 {
			fields := []zap.Field{
				zap.Int("round", round+1),
				zap.Float64("train_rmse", stats.RMSE(y, pred)),
			}
			if eval != nil {
				fields = append(fields, zap.Float64("valid_rmse", evalRMSE))
			}
			m.logger.Info("boosting progress", fields...)
		}

		if eval != nil && p.EarlyStoppingRounds > 0 && round-bestRound >= p.EarlyStoppingRounds {
			m.logger.Info("early stopping",
				zap.Int("round", round+1),
				zap.Int("best_iteration", bestRound),
				zap.Float64("best_rmse", bestScore),
			)
			break
		}
	}

	if eval != nil && p.EarlyStoppingRounds > 0 && bestRound >= 0 {
		trees = trees[:bestRound+1]
	}

	m.baseScore = base
	m.trees = trees
	m.featureNames = append([]string(nil), names...)
	m.bestIteration = len(trees) - 1
	if eval != nil && bestRound >= 0 {
		m.bestIteration = bestRound
	}
	m.fitted = true

	m.logger.Info("model fitted",
		zap.Int("rows", n),
		zap.Int("trees", len(trees)),
		zap.Int("best_iteration", m.bestIteration),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

func validateTraining(x [][]float64, y []float64, names []string) error {
	if len(x) == 0 {
		return fmt.Errorf("%w: no rows", ErrInvalidInput)
	}
	if len(x) != len(y) {
		return fmt.Errorf("%w: %d rows, %d targets", ErrInvalidInput, len(x), len(y))
	}
	if len(names) == 0 {
		return fmt.Errorf("%w: no feature names", ErrInvalidInput)
	}
	for i, v := range y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: target %d is not finite", ErrInvalidInput, i)
		}
	}
	return checkWidth(x, len(names))
}

func checkWidth(x [][]float64, width int) error {
	for i, row := range x {
		if len(row) != width {
			return fmt.Errorf("%w: row %d has %d values, want %d", ErrFeatureMismatch, i, len(row), width)
		}
	}
	return nil
}

func sampleRows(rng *rand.Rand, all []int, fraction float64) []int {
	if fraction >= 1 {
		return all
	}
	rows := make([]int, 0, int(float64(len(all))*fraction)+1)
	for _, r := range all {
		if rng.Float64() < fraction {
			rows = append(rows, r)
		}
	}
	if len(rows) == 0 {
		return all
	}
	return rows
}

func sampleColumns(rng *rand.Rand, n int, fraction float64) []int {
	k := int(math.Round(fraction * float64(n)))
	if k < 1 {
		k = 1
	}
	if k > n {
		k = n
	}
	cols := rng.Perm(n)[:k]
	sort.Ints(cols)
	return cols
}

// Predict returns one prediction per row
func (m *Model) Predict(x [][]float64) ([]float64, error) {
	if !m.fitted {
		return nil, ErrNotFitted
	}
	if err := checkWidth(x, len(m.featureNames)); err != nil {
		return nil, err
	}

	out := make([]float64, len(x))
	for i, row := range x {
		out[i] = m.predictRow(row)
	}
	return out, nil
}

// PredictOne returns the prediction for a single row
func (m *Model) PredictOne(row []float64) (float64, error) {
	if !m.fitted {
		return 0, ErrNotFitted
	}
	if len(row) != len(m.featureNames) {
		return 0, fmt.Errorf("%w: got %d values, want %d", ErrFeatureMismatch, len(row), len(m.featureNames))
	}
	return m.predictRow(row), nil
}

func (m *Model) predictRow(row []float64) float64 {
	out := m.baseScore
	for i := range m.trees {
		out += m.trees[i].predict(row)
	}
	return out
}

// Importance is the share of total split gain attributed to a feature
type Importance struct {
	Feature string  `json:"feature"`
	Score   float64 `json:"importance"`
}

// FeatureImportance returns the gain share of every feature, highest first.
// Scores sum to 1 unless the ensemble never split.
func (m *Model) FeatureImportance() ([]Importance, error) {
	if !m.fitted {
		return nil, ErrNotFitted
	}

	gains := make([]float64, len(m.featureNames))
	var total float64
	for _, t := range m.trees {
		for _, n := range t.Nodes {
			if !n.IsLeaf() {
				gains[n.Feature] += n.Gain
				total += n.Gain
			}
		}
	}

	out := make([]Importance, len(m.featureNames))
	for i, name := range m.featureNames {
		score := 0.0
		if total > 0 {
			score = gains[i] / total
		}
		out[i] = Importance{Feature: name, Score: score}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Feature < out[j].Feature
	})
	return out, nil
}
