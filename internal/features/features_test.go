package features

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/flight-delay-backend-go/internal/encoder"
	"github.com/jengzang/flight-delay-backend-go/internal/models"
)

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func TestTimeCategoryBoundaries(t *testing.T) {
	tests := []struct {
		hour int
		want int
	}{
		{5, EarlyMorning},
		{9, Morning},
		{12, Afternoon},
		{17, Evening},
		{21, Night},
		{4, Night},
		{0, Night},
		{8, EarlyMorning},
		{16, Afternoon},
		{20, Evening},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, TimeCategory(tt.hour), "hour %d", tt.hour)
	}

	for h := 0; h < 24; h++ {
		c := TimeCategory(h)
		assert.True(t, c >= 1 && c <= 5)
	}
}

func TestTimeCategoryOfNaN(t *testing.T) {
	assert.True(t, math.IsNaN(TimeCategoryOf(math.NaN())))
	assert.Equal(t, 4.0, TimeCategoryOf(18))
}

func TestParseHour(t *testing.T) {
	a, ok := ParseHour(1530)
	require.True(t, ok)
	b, ok := ParseHour("15:30:00")
	require.True(t, ok)
	assert.Equal(t, 15, a)
	assert.Equal(t, a, b)

	tests := []struct {
		in   any
		want int
		ok   bool
	}{
		{"1530", 15, true},
		{"0530", 5, true},
		{530, 5, true},
		{1530.0, 15, true},
		{"1530.0", 15, true},
		{"07:05", 7, true},
		{2400, 0, true},
		{"", 0, false},
		{nil, 0, false},
		{math.NaN(), 0, false},
		{"abc", 0, false},
		{"25:00", 0, false},
		{-5, 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseHour(tt.in)
		assert.Equal(t, tt.ok, ok, "input %v", tt.in)
		if tt.ok {
			assert.Equal(t, tt.want, got, "input %v", tt.in)
		}
	}
}

func TestColumns(t *testing.T) {
	assert.True(t, MatchesColumns(ColumnNames()))
	assert.False(t, MatchesColumns([]string{Month, Quarter}))

	swapped := ColumnNames()
	swapped[0], swapped[1] = swapped[1], swapped[0]
	assert.False(t, MatchesColumns(swapped))

	idx, ok := ColumnIndex(DepHour)
	require.True(t, ok)
	assert.Equal(t, 9, idx)
	assert.Equal(t, "Flight Distance", DisplayName(Distance))
}

func TestVectorValuesFollowColumns(t *testing.T) {
	v := Vector{Month: 1, Quarter: 2, DayofMonth: 3, DayOfWeek: 4, AirlineEncoded: 5,
		OriginEncoded: 6, DestEncoded: 7, Distance: 8, ElapsedTime: 9, DepHour: 10,
		ArrHour: 11, DepTimeCategory: 12}

	for i, val := range v.Values() {
		assert.Equal(t, float64(i+1), val, Columns[i])
	}
	assert.Len(t, v.Row(), NumFeatures)
}

func TestEngineer(t *testing.T) {
	rec := models.FlightRecord{
		Year:            2019,
		Month:           7,
		Quarter:         3,
		DayofMonth:      12,
		DayOfWeek:       5,
		Airline:         "DL",
		Origin:          "ATL",
		Dest:            "ORD",
		Distance:        floatPtr(606),
		CRSDepTime:      "1815",
		CRSArrTime:      "19:40:00",
		ArrDel15:        1,
		ArrDelayMinutes: floatPtr(42),
	}

	row := Engineer(rec)
	assert.Equal(t, 18.0, row.DepHour)
	assert.Equal(t, 19.0, row.ArrHour)
	assert.Equal(t, 4.0, row.DepTimeCategory)
	assert.Equal(t, 606.0, row.Distance)
	assert.True(t, math.IsNaN(row.ElapsedTime))
	assert.Equal(t, 42.0, row.Target)
}

func TestEngineerMissingFields(t *testing.T) {
	row := Engineer(models.FlightRecord{Year: 2010, Month: 11})

	assert.Equal(t, 4.0, row.Quarter)
	assert.True(t, math.IsNaN(row.DepHour))
	assert.True(t, math.IsNaN(row.DepTimeCategory))
	assert.True(t, math.IsNaN(row.Distance))
	assert.True(t, math.IsNaN(row.Target))
}

func TestPrepareDefaults(t *testing.T) {
	v, ctx := Prepare(models.FlightRequest{Origin: "atl", Destination: "ORD"}, nil)

	assert.Equal(t, "ATL", ctx.Origin)
	assert.Equal(t, DefaultAirline, ctx.Airline)
	assert.Equal(t, 6.0, v.Month)
	assert.Equal(t, 2.0, v.Quarter)
	assert.Equal(t, 15.0, v.DayofMonth)
	assert.Equal(t, 3.0, v.DayOfWeek)
	assert.Equal(t, 14.0, v.DepHour)
	assert.Equal(t, 17.0, v.ArrHour)
	assert.Equal(t, 180.0, v.ElapsedTime)
	assert.Equal(t, 3.0, v.DepTimeCategory)
	assert.InDelta(t, 606, v.Distance, 5)
}

func TestPrepareUnknownAirports(t *testing.T) {
	enc := encoder.FitSet([]string{"AA", "DL"}, []string{"ATL", "ORD"}, []string{"ATL", "ORD"})

	v, ctx := Prepare(models.FlightRequest{Origin: "XXX", Destination: "YYY", Airline: "ZZ"}, enc)

	assert.Equal(t, FallbackDistance, v.Distance)
	assert.Equal(t, FallbackDistance, ctx.Distance)
	assert.Equal(t, 0.0, v.AirlineEncoded)
	assert.Equal(t, 0.0, v.OriginEncoded)
	assert.Equal(t, 0.0, v.DestEncoded)
	for _, val := range v.Values() {
		assert.False(t, math.IsNaN(val))
	}
}

func TestRouteDistance(t *testing.T) {
	assert.InDelta(t, 606, RouteDistance("ATL", "ORD"), 5)
	assert.InDelta(t, RouteDistance("ATL", "ORD"), RouteDistance("ORD", "ATL"), 1e-9)
	assert.Equal(t, FallbackDistance, RouteDistance("ATL", "XXX"))
	assert.Equal(t, FallbackDistance, RouteDistance("", "ORD"))
}

func TestPrepareEncodesKnownValues(t *testing.T) {
	enc := encoder.FitSet([]string{"AA", "DL"}, []string{"ATL", "ORD"}, []string{"ATL", "ORD"})

	v, _ := Prepare(models.FlightRequest{Origin: "ORD", Destination: "ATL", Airline: "DL"}, enc)

	assert.Equal(t, 1.0, v.AirlineEncoded)
	assert.Equal(t, 1.0, v.OriginEncoded)
	assert.Equal(t, 0.0, v.DestEncoded)
}

func TestPrepareTimeStrings(t *testing.T) {
	req := models.FlightRequest{
		Origin:      "JFK",
		Destination: "LAX",
		Month:       intPtr(12),
		DepHour:     intPtr(8),
		DepTime:     "22:15",
		ArrTime:     "0130",
	}

	v, ctx := Prepare(req, nil)
	assert.Equal(t, 22, ctx.DepHour)
	assert.Equal(t, 1.0, v.ArrHour)
	assert.Equal(t, 180.0, v.ElapsedTime)
	assert.Equal(t, 4.0, v.Quarter)
	assert.Equal(t, float64(Night), v.DepTimeCategory)
}

func TestElapsedMinutes(t *testing.T) {
	assert.Equal(t, 180.0, ElapsedMinutes(14, 17))
	assert.Equal(t, 120.0, ElapsedMinutes(23, 1))
	assert.Equal(t, 60.0, ElapsedMinutes(10, 10))
}
