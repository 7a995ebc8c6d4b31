package features

import (
	"math"

	"github.com/jengzang/flight-delay-backend-go/internal/models"
)

// Row is one engineered training row. Categorical columns stay as raw codes
// until the encoder set is fitted, and missing numeric values are NaN until
// imputation.
type Row struct {
	Year            int
	Month           float64
	Quarter         float64
	DayofMonth      float64
	DayOfWeek       float64
	Airline         string
	Origin          string
	Dest            string
	Distance        float64
	ElapsedTime     float64
	DepHour         float64
	ArrHour         float64
	DepTimeCategory float64
	Target          float64
}

// Engineer derives the training row of one raw flight record. It never
// fails: anything missing or unreadable becomes NaN.
func Engineer(rec models.FlightRecord) Row {
	quarter := rec.Quarter
	if quarter == 0 && rec.Month > 0 {
		quarter = QuarterOf(rec.Month)
	}

	depHour := hourOrNaN(rec.CRSDepTime)
	return Row{
		Year:            rec.Year,
		Month:           float64(rec.Month),
		Quarter:         float64(quarter),
		DayofMonth:      float64(rec.DayofMonth),
		DayOfWeek:       float64(rec.DayOfWeek),
		Airline:         rec.Airline,
		Origin:          rec.Origin,
		Dest:            rec.Dest,
		Distance:        floatOrNaN(rec.Distance),
		ElapsedTime:     floatOrNaN(rec.CRSElapsedTime),
		DepHour:         depHour,
		ArrHour:         hourOrNaN(rec.CRSArrTime),
		DepTimeCategory: TimeCategoryOf(depHour),
		Target:          floatOrNaN(rec.ArrDelayMinutes),
	}
}

// EngineerAll maps Engineer over records, keeping their order
func EngineerAll(records []models.FlightRecord) []Row {
	rows := make([]Row, len(records))
	for i, rec := range records {
		rows[i] = Engineer(rec)
	}
	return rows
}

// QuarterOf returns the calendar quarter of a month (1-12)
func QuarterOf(month int) int {
	return (month-1)/3 + 1
}

func hourOrNaN(raw string) float64 {
	h, ok := ParseHour(raw)
	if !ok {
		return math.NaN()
	}
	return float64(h)
}

func floatOrNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}
