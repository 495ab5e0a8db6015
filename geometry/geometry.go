// Package geometry provides the little geographic math the radar
// serves alongside the journey tree: the compass bearing from the
// origin station to each reached station, and the crow-flies distance.
package geometry

import (
	"math"

	"github.com/jftuga/geodist"
)

// Bearing is the initial compass bearing in degrees from the first
// point to the second, in [0, 360).
func Bearing(fromLat, fromLon, toLat, toLon float64) float64 {
	phi1 := fromLat * math.Pi / 180
	phi2 := toLat * math.Pi / 180
	deltaLambda := (toLon - fromLon) * math.Pi / 180

	y := math.Sin(deltaLambda) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(deltaLambda)
	theta := math.Atan2(y, x)

	return math.Mod(theta*180/math.Pi+360, 360)
}

// DistanceKm is the haversine distance between two points in
// kilometres.
func DistanceKm(fromLat, fromLon, toLat, toLon float64) float64 {
	_, km := geodist.HaversineDistance(
		geodist.Coord{Lat: fromLat, Lon: fromLon},
		geodist.Coord{Lat: toLat, Lon: toLon},
	)
	return km
}
