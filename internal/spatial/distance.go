package spatial

import (
	"github.com/golang/geo/s2"
)

// EarthRadiusMiles is the radius used for scheduled route distances
const EarthRadiusMiles = 3959.0

// HaversineMiles calculates the great-circle distance between two points in statute miles
func HaversineMiles(lat1, lon1, lat2, lon2 float64) float64 {
	return centralAngle(lat1, lon1, lat2, lon2) * EarthRadiusMiles
}

// centralAngle returns the angle between two points in radians
func centralAngle(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lon1)
	p2 := s2.LatLngFromDegrees(lat2, lon2)
	return p1.Distance(p2).Radians()
}
