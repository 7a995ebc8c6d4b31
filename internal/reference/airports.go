// Package reference holds the static airport and airline tables shared by
// feature engineering, the delay heuristic and the reference-data endpoints.
package reference

import "sort"

// Airport is a row of the airport table
type Airport struct {
	Code  string  `json:"code"`
	City  string  `json:"city"`
	State string  `json:"state"`
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
}

var airports = map[string]Airport{
	"ATL": {Code: "ATL", City: "Atlanta", State: "GA", Lat: 33.6367, Lon: -84.4281},
	"ORD": {Code: "ORD", City: "Chicago", State: "IL", Lat: 41.9786, Lon: -87.9048},
	"DFW": {Code: "DFW", City: "Dallas/Fort Worth", State: "TX", Lat: 32.8968, Lon: -97.038},
	"DEN": {Code: "DEN", City: "Denver", State: "CO", Lat: 39.8617, Lon: -104.673},
	"LAX": {Code: "LAX", City: "Los Angeles", State: "CA", Lat: 33.9425, Lon: -118.408},
	"JFK": {Code: "JFK", City: "New York JFK", State: "NY", Lat: 40.6394, Lon: -73.7793},
	"SFO": {Code: "SFO", City: "San Francisco", State: "CA", Lat: 37.6198, Lon: -122.3748},
	"SEA": {Code: "SEA", City: "Seattle", State: "WA", Lat: 47.4479, Lon: -122.3103},
	"MIA": {Code: "MIA", City: "Miami", State: "FL", Lat: 25.7932, Lon: -80.2906},
	"BOS": {Code: "BOS", City: "Boston", State: "MA", Lat: 42.362, Lon: -71.0079},
	"PHX": {Code: "PHX", City: "Phoenix", State: "AZ", Lat: 33.4353, Lon: -112.0059},
	"IAH": {Code: "IAH", City: "Houston", State: "TX", Lat: 29.9844, Lon: -95.3414},
	"LAS": {Code: "LAS", City: "Las Vegas", State: "NV", Lat: 36.0834, Lon: -115.1518},
	"MCO": {Code: "MCO", City: "Orlando", State: "FL", Lat: 28.4294, Lon: -81.309},
	"CLT": {Code: "CLT", City: "Charlotte", State: "NC", Lat: 35.214, Lon: -80.9431},
	"EWR": {Code: "EWR", City: "Newark", State: "NJ", Lat: 40.6925, Lon: -74.1687},
	"MSP": {Code: "MSP", City: "Minneapolis", State: "MN", Lat: 44.8801, Lon: -93.2217},
	"DTW": {Code: "DTW", City: "Detroit", State: "MI", Lat: 42.2138, Lon: -83.3538},
	"PHL": {Code: "PHL", City: "Philadelphia", State: "PA", Lat: 39.8719, Lon: -75.2411},
	"SLC": {Code: "SLC", City: "Salt Lake City", State: "UT", Lat: 40.7889, Lon: -111.9799},
	"LGA": {Code: "LGA", City: "New York LaGuardia", State: "NY", Lat: 40.7772, Lon: -73.8726},
	"BWI": {Code: "BWI", City: "Baltimore", State: "MD", Lat: 39.1754, Lon: -76.6683},
	"DCA": {Code: "DCA", City: "Washington Reagan", State: "DC", Lat: 38.8521, Lon: -77.0377},
	"SAN": {Code: "SAN", City: "San Diego", State: "CA", Lat: 32.7336, Lon: -117.19},
	"TPA": {Code: "TPA", City: "Tampa", State: "FL", Lat: 27.9755, Lon: -82.5332},
}

var hubAirports = map[string]bool{
	"ATL": true, "ORD": true, "DFW": true, "DEN": true, "LAX": true,
	"JFK": true, "SFO": true, "EWR": true, "LGA": true, "PHL": true,
}

// Airports with chronic congestion delays
var congestedAirports = map[string]bool{
	"EWR": true, "LGA": true, "JFK": true, "SFO": true, "ORD": true,
}

// LookupAirport returns the airport for a code
func LookupAirport(code string) (Airport, bool) {
	a, ok := airports[code]
	return a, ok
}

// Airports returns the airport table ordered by code
func Airports() []Airport {
	list := make([]Airport, 0, len(airports))
	for _, a := range airports {
		list = append(list, a)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Code < list[j].Code })
	return list
}

// IsHub reports whether the airport is a major connecting hub
func IsHub(code string) bool {
	return hubAirports[code]
}

// IsCongested reports whether the airport is on the congested list
func IsCongested(code string) bool {
	return congestedAirports[code]
}
