// Package service holds the serving side: the hot-swappable prediction state,
// the artifact watcher and scheduled retraining.
package service

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/jengzang/flight-delay-backend-go/internal/features"
	"github.com/jengzang/flight-delay-backend-go/internal/heuristic"
	"github.com/jengzang/flight-delay-backend-go/internal/models"
	"github.com/jengzang/flight-delay-backend-go/internal/telemetry"
)

// StateLoader builds a complete serving state
type StateLoader interface {
	Load() (*State, error)
}

// Predictor answers prediction requests from the current State
type Predictor struct {
	state     atomic.Pointer[State]
	loader    StateLoader
	estimator *heuristic.Estimator
	logger    *zap.Logger
	metrics   *telemetry.Metrics
	reloadMu  sync.Mutex
}

// PredictorOption configures a Predictor
type PredictorOption func(*Predictor)

// WithEstimator replaces the probability estimator
func WithEstimator(e *heuristic.Estimator) PredictorOption {
	return func(p *Predictor) { p.estimator = e }
}

// WithLogger sets the predictor logger
func WithLogger(logger *zap.Logger) PredictorOption {
	return func(p *Predictor) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithMetrics sets the Prometheus collectors
func WithMetrics(m *telemetry.Metrics) PredictorOption {
	return func(p *Predictor) { p.metrics = m }
}

// NewPredictor creates a predictor in heuristic mode. Call Reload to load
// artifacts.
func NewPredictor(loader StateLoader, opts ...PredictorOption) *Predictor {
	p := &Predictor{
		loader:    loader,
		estimator: heuristic.New(),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.state.Store(HeuristicState(time.Now().UTC()))
	return p
}

// State returns the current serving state
func (p *Predictor) State() *State {
	return p.state.Load()
}

// Swap installs a new state. A nil state is ignored.
func (p *Predictor) Swap(st *State) {
	if st == nil {
		return
	}
	p.state.Store(st)
}

// Reload loads a fresh state and swaps it in. A failed load that would drop a
// working model keeps the current state.
func (p *Predictor) Reload() (*State, error) {
	p.reloadMu.Lock()
	defer p.reloadMu.Unlock()

	st, err := p.loader.Load()
	current := p.state.Load()
	if st == nil || (err != nil && !st.ModelLoaded() && current.ModelLoaded()) {
		p.metrics.ObserveReload(err, current.ModelLoaded())
		p.logger.Error("reload failed, keeping current state", zap.Error(err))
		return current, fmt.Errorf("reload: %w", err)
	}

	p.Swap(st)
	p.metrics.ObserveReload(err, st.ModelLoaded())
	p.logger.Info("serving state swapped", zap.String("mode", st.Mode()))
	return st, err
}

// Predict scores one flight request
func (p *Predictor) Predict(req models.FlightRequest) models.PredictionResult {
	start := time.Now()
	st := p.state.Load()

	vec, c := features.Prepare(req, st.Encoders)
	probability := p.estimator.Estimate(c)

	delay, modelUsed := 0.0, false
	if st.ModelLoaded() {
		d, err := st.Model.PredictOne(vec.Row())
		if err != nil {
			p.logger.Warn("duration model failed, synthesizing delay", zap.Error(err))
		} else {
			delay, modelUsed = d, true
		}
	}
	if !modelUsed {
		delay = p.estimator.SynthesizeDuration(probability)
	}

	risk, text := heuristic.Classify(probability)
	result := models.PredictionResult{
		Probability:        round(probability, 4),
		ProbabilityPercent: round(probability*100, 1),
		ExpectedDelay:      round(math.Max(0, delay), 1),
		RiskLevel:          risk,
		RiskText:           text,
		Attributions:       st.Explainer.Explain(vec, c, delay),
		ModelUsed:          modelUsed,
		Input: models.PredictionInput{
			Origin:      c.Origin,
			Destination: c.Dest,
			Airline:     c.Airline,
			Distance:    round(c.Distance, 1),
		},
	}

	p.metrics.ObservePrediction(string(risk), modelUsed, time.Since(start))
	return result
}

// Status reports the current state
func (p *Predictor) Status() models.ModelStatus {
	return p.state.Load().Status()
}

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
