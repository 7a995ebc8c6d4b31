package features

import (
	"strings"

	"github.com/jengzang/flight-delay-backend-go/internal/encoder"
	"github.com/jengzang/flight-delay-backend-go/internal/models"
	"github.com/jengzang/flight-delay-backend-go/internal/reference"
	"github.com/jengzang/flight-delay-backend-go/internal/spatial"
)

// Request defaults applied when a field is absent
const (
	DefaultMonth     = 6
	DefaultDay       = 15
	DefaultDayOfWeek = 3
	DefaultDepHour   = 14
	DefaultArrHour   = 17
	DefaultAirline   = "AA"

	// FallbackDistance is used when either airport is not in the table
	FallbackDistance = 1000.0

	minElapsedMinutes = 60.0
)

// Context is the raw view of a request used by the heuristic and the
// simulated explainer
type Context struct {
	Origin       string
	Dest         string
	Airline      string
	Distance     float64
	DepHour      int
	ArrHour      int
	DayOfWeek    int
	Month        int
	TimeCategory int
}

// Prepare builds the feature vector and context of a serving request. It
// never fails; a nil encoder set yields code 0 for every categorical column.
func Prepare(req models.FlightRequest, enc *encoder.Set) (Vector, Context) {
	origin := normalizeCode(req.Origin)
	dest := normalizeCode(req.Destination)
	airline := normalizeCode(req.Airline)
	if airline == "" {
		airline = DefaultAirline
	}

	month := intOr(req.Month, DefaultMonth)
	day := intOr(req.Day, DefaultDay)
	dow := intOr(req.DayOfWeek, DefaultDayOfWeek)
	depHour := hourOr(req.DepTime, req.DepHour, DefaultDepHour)
	arrHour := hourOr(req.ArrTime, req.ArrHour, DefaultArrHour)

	distance := RouteDistance(origin, dest)
	category := TimeCategory(depHour)
	airlineCode, originCode, destCode := enc.Codes(airline, origin, dest)

	v := Vector{
		Month:           float64(month),
		Quarter:         float64(QuarterOf(month)),
		DayofMonth:      float64(day),
		DayOfWeek:       float64(dow),
		AirlineEncoded:  float64(airlineCode),
		OriginEncoded:   float64(originCode),
		DestEncoded:     float64(destCode),
		Distance:        distance,
		ElapsedTime:     ElapsedMinutes(depHour, arrHour),
		DepHour:         float64(depHour),
		ArrHour:         float64(arrHour),
		DepTimeCategory: float64(category),
	}

	ctx := Context{
		Origin:       origin,
		Dest:         dest,
		Airline:      airline,
		Distance:     distance,
		DepHour:      depHour,
		ArrHour:      arrHour,
		DayOfWeek:    dow,
		Month:        month,
		TimeCategory: category,
	}
	return v, ctx
}

// RouteDistance returns the great-circle distance in miles between two airports,
// or FallbackDistance when either is unknown
func RouteDistance(origin, dest string) float64 {
	from, ok := reference.LookupAirport(origin)
	if !ok {
		return FallbackDistance
	}
	to, ok := reference.LookupAirport(dest)
	if !ok {
		return FallbackDistance
	}
	return spatial.HaversineMiles(from.Lat, from.Lon, to.Lat, to.Lon)
}

// ElapsedMinutes estimates block time from the scheduled hours, wrapping past
// midnight and never below an hour
func ElapsedMinutes(depHour, arrHour int) float64 {
	elapsed := float64(arrHour-depHour) * 60
	if elapsed < 0 {
		elapsed += 1440
	}
	if elapsed < minElapsedMinutes {
		elapsed = minElapsedMinutes
	}
	return elapsed
}

func normalizeCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func hourOr(raw string, hour *int, def int) int {
	if raw != "" {
		if h, ok := ParseHour(raw); ok {
			return h
		}
	}
	return intOr(hour, def)
}
