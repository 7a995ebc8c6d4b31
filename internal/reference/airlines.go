package reference

import "sort"

// Airline is a row of the airline table
type Airline struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

var airlines = map[string]string{
	"AA": "American Airlines",
	"DL": "Delta Air Lines",
	"UA": "United Airlines",
	"WN": "Southwest Airlines",
	"B6": "JetBlue Airways",
	"AS": "Alaska Airlines",
	"NK": "Spirit Airlines",
	"F9": "Frontier Airlines",
}

// Historical on-time bias per carrier, in probability points
var airlineBias = map[string]float64{
	"AA": 0.02, "DL": -0.05, "UA": 0.03, "WN": 0.01,
	"B6": 0.04, "AS": -0.04, "NK": 0.12, "F9": 0.10,
}

// AirlineName returns the carrier name, or the code itself when unknown
func AirlineName(code string) string {
	if name, ok := airlines[code]; ok {
		return name
	}
	return code
}

// AirlineBias returns the carrier's delay bias; zero for unknown carriers
func AirlineBias(code string) float64 {
	return airlineBias[code]
}

// Airlines returns the airline table ordered by code
func Airlines() []Airline {
	list := make([]Airline, 0, len(airlines))
	for code, name := range airlines {
		list = append(list, Airline{Code: code, Name: name})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Code < list[j].Code })
	return list
}
