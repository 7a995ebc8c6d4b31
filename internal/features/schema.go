// Package features turns raw flight records and serving requests into the
// fixed feature schema consumed by the duration model.
package features

// NumFeatures is the width of every feature vector
const NumFeatures = 12

// Canonical feature names
const (
	Month           = "Month"
	Quarter         = "Quarter"
	DayofMonth      = "DayofMonth"
	DayOfWeek       = "DayOfWeek"
	AirlineEncoded  = "AirlineEncoded"
	OriginEncoded   = "OriginEncoded"
	DestEncoded     = "DestEncoded"
	Distance        = "Distance"
	ElapsedTime     = "ElapsedTime"
	DepHour         = "DepHour"
	ArrHour         = "ArrHour"
	DepTimeCategory = "DepTimeCategory"
)

// Columns is the single column order shared by training and serving. A model
// trained on any other order is rejected when it is loaded.
var Columns = [NumFeatures]string{
	Month,
	Quarter,
	DayofMonth,
	DayOfWeek,
	AirlineEncoded,
	OriginEncoded,
	DestEncoded,
	Distance,
	ElapsedTime,
	DepHour,
	ArrHour,
	DepTimeCategory,
}

var displayNames = map[string]string{
	Month:           "Month",
	Quarter:         "Quarter",
	DayofMonth:      "Day of Month",
	DayOfWeek:       "Day of Week",
	AirlineEncoded:  "Airline",
	OriginEncoded:   "Origin Airport",
	DestEncoded:     "Destination",
	Distance:        "Flight Distance",
	ElapsedTime:     "Flight Duration",
	DepHour:         "Departure Hour",
	ArrHour:         "Arrival Hour",
	DepTimeCategory: "Time of Day",
}

// DisplayName returns the human readable label of a feature
func DisplayName(name string) string {
	if label, ok := displayNames[name]; ok {
		return label
	}
	return name
}

// ColumnNames returns the canonical column order as a slice
func ColumnNames() []string {
	names := make([]string, NumFeatures)
	copy(names, Columns[:])
	return names
}

// ColumnIndex returns the position of a feature in the canonical order
func ColumnIndex(name string) (int, bool) {
	for i, c := range Columns {
		if c == name {
			return i, true
		}
	}
	return -1, false
}

// MatchesColumns reports whether names equals the canonical order exactly
func MatchesColumns(names []string) bool {
	if len(names) != NumFeatures {
		return false
	}
	for i, c := range Columns {
		if names[i] != c {
			return false
		}
	}
	return true
}

// Vector is one engineered feature row with named fields
type Vector struct {
	Month           float64 `json:"Month"`
	Quarter         float64 `json:"Quarter"`
	DayofMonth      float64 `json:"DayofMonth"`
	DayOfWeek       float64 `json:"DayOfWeek"`
	AirlineEncoded  float64 `json:"AirlineEncoded"`
	OriginEncoded   float64 `json:"OriginEncoded"`
	DestEncoded     float64 `json:"DestEncoded"`
	Distance        float64 `json:"Distance"`
	ElapsedTime     float64 `json:"ElapsedTime"`
	DepHour         float64 `json:"DepHour"`
	ArrHour         float64 `json:"ArrHour"`
	DepTimeCategory float64 `json:"DepTimeCategory"`
}

// Values returns the vector in canonical column order
func (v Vector) Values() [NumFeatures]float64 {
	return [NumFeatures]float64{
		v.Month,
		v.Quarter,
		v.DayofMonth,
		v.DayOfWeek,
		v.AirlineEncoded,
		v.OriginEncoded,
		v.DestEncoded,
		v.Distance,
		v.ElapsedTime,
		v.DepHour,
		v.ArrHour,
		v.DepTimeCategory,
	}
}

// Row returns the vector as a slice for model input
func (v Vector) Row() []float64 {
	values := v.Values()
	return values[:]
}
