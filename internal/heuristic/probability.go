// Package heuristic estimates delay probability from a fixed table of
// historical patterns and maps probabilities to risk tiers.
package heuristic

import (
	"math"
	"math/rand/v2"

	"github.com/jengzang/flight-delay-backend-go/internal/features"
	"github.com/jengzang/flight-delay-backend-go/internal/reference"
)

// Probability bounds and base rate
const (
	BaseRate       = 0.22
	MinProbability = 0.05
	MaxProbability = 0.85
	Jitter         = 0.04

	// Below this probability no delay duration is synthesized
	DurationThreshold = 0.25
)

var dayOfWeekDelta = map[int]float64{1: -0.02, 2: -0.03, 3: -0.02, 4: 0.01, 5: 0.06, 6: 0.03, 7: 0.05}

// Estimator produces jittered probability estimates. The random source
// returns values in [0, 1).
type Estimator struct {
	rand func() float64
}

// Option configures an Estimator
type Option func(*Estimator)

// WithRand replaces the random source
func WithRand(fn func() float64) Option {
	return func(e *Estimator) {
		if fn != nil {
			e.rand = fn
		}
	}
}

// New returns an estimator backed by the goroutine safe global generator
func New(opts ...Option) *Estimator {
	e := &Estimator{rand: rand.Float64}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Estimate returns the delay probability of a flight in
// [MinProbability, MaxProbability]
func (e *Estimator) Estimate(c features.Context) float64 {
	jitter := (2*e.rand() - 1) * Jitter
	return clamp(Score(c) + jitter)
}

// SynthesizeDuration stands in for the duration model when none is loaded
func (e *Estimator) SynthesizeDuration(probability float64) float64 {
	if probability <= DurationThreshold {
		return 0
	}
	return 15 + probability*60 + e.rand()*20
}

// Score is the probability before jitter and clamping
func Score(c features.Context) float64 {
	p := BaseRate

	switch h := c.DepHour; {
	case h >= 16 && h <= 20:
		p += 0.12
	case h >= 6 && h <= 9:
		p += 0.04
	case h < 6:
		p -= 0.06
	}

	p += dayOfWeekDelta[c.DayOfWeek]

	switch c.Month {
	case 6, 7, 8, 12:
		p += 0.08
	case 9, 10:
		p -= 0.04
	}

	switch d := c.Distance; {
	case d > 2000:
		p += 0.06
	case d > 1000:
		p += 0.03
	case d < 500:
		p -= 0.02
	}

	if reference.IsHub(c.Origin) {
		p += 0.05
	}
	if reference.IsHub(c.Dest) {
		p += 0.04
	}
	if reference.IsCongested(c.Origin) {
		p += 0.06
	}
	if reference.IsCongested(c.Dest) {
		p += 0.05
	}

	return p + reference.AirlineBias(c.Airline)
}

func clamp(p float64) float64 {
	return math.Max(MinProbability, math.Min(MaxProbability, p))
}
