package explain

import (
	"github.com/jengzang/flight-delay-backend-go/internal/features"
	"github.com/jengzang/flight-delay-backend-go/internal/models"
	"github.com/jengzang/flight-delay-backend-go/internal/reference"
)

var (
	dayEffects  = map[int]float64{1: -0.02, 2: -0.03, 3: -0.02, 4: 0.01, 5: 0.06, 6: 0.03, 7: 0.05}
	timeEffects = map[int]float64{
		features.EarlyMorning: -0.04,
		features.Morning:      -0.02,
		features.Afternoon:    0.01,
		features.Evening:      0.08,
		features.Night:        0.02,
	}
)

// Simulated explains predictions from a fixed table of historical delay
// patterns. It needs no trained artifacts and always returns eight entries.
type Simulated struct{}

// NewSimulated returns the rule based explainer
func NewSimulated() *Simulated {
	return &Simulated{}
}

// Mode implements Explainer
func (*Simulated) Mode() string { return ModeSimulated }

// Explain implements Explainer
func (*Simulated) Explain(v features.Vector, c features.Context, _ float64) []models.Attribution {
	attrs := []models.Attribution{
		attribution(features.DepHour, v, c, departureEffect(c.DepHour)),
		attribution(features.DayOfWeek, v, c, dayEffects[c.DayOfWeek]),
		attribution(features.Month, v, c, monthEffect(c.Month)),
		attribution(features.Distance, v, c, distanceEffect(c.Distance)),
		attribution(features.OriginEncoded, v, c, hubEffect(c.Origin, 0.06)),
		attribution(features.DestEncoded, v, c, hubEffect(c.Dest, 0.05)),
		attribution(features.AirlineEncoded, v, c, reference.AirlineBias(c.Airline)),
		attribution(features.DepTimeCategory, v, c, timeEffects[c.TimeCategory]),
	}
	return rank(attrs)
}

func departureEffect(hour int) float64 {
	switch {
	case hour >= 16 && hour <= 20:
		return 0.10
	case hour >= 6 && hour <= 9:
		return 0.04
	case hour < 6:
		return -0.06
	default:
		return 0.01
	}
}

func monthEffect(month int) float64 {
	switch month {
	case 6, 7, 8:
		return 0.07
	case 12:
		return 0.08
	case 9, 10:
		return -0.04
	default:
		return 0.01
	}
}

func distanceEffect(miles float64) float64 {
	switch {
	case miles > 2000:
		return 0.05
	case miles > 1000:
		return 0.02
	default:
		return -0.02
	}
}

func hubEffect(code string, hub float64) float64 {
	if reference.IsHub(code) {
		return hub
	}
	return -0.02
}
