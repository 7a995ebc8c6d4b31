package heuristic

import "github.com/jengzang/flight-delay-backend-go/internal/models"

var riskText = map[models.RiskLevel]string{
	models.RiskHigh:   "High risk of significant delay",
	models.RiskMedium: "Moderate risk of delay",
	models.RiskLow:    "Low risk of delay",
}

// Classify maps a probability to its risk tier and display text
func Classify(probability float64) (models.RiskLevel, string) {
	level := models.RiskLow
	switch {
	case probability >= 0.5:
		level = models.RiskHigh
	case probability >= 0.3:
		level = models.RiskMedium
	}
	return level, riskText[level]
}
