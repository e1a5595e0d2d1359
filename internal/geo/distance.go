package geo

import (
	"math"

	"github.com/sentinelauth/sentinel/internal/models"
)

// earthRadiusKm is the mean radius of the spherical Earth model used by the
// haversine formula.
const earthRadiusKm = 6371.0

// DistanceKm returns the great-circle distance between two points in
// kilometers. Pure and symmetric; identical coordinates yield 0.
// Inputs are assumed to be within valid coordinate ranges (validated at the
// request boundary, not here).
func DistanceKm(a, b models.GeoPoint) float64 {
	dLat := toRadians(b.Latitude - a.Latitude)
	dLon := toRadians(b.Longitude - a.Longitude)

	h := math.Pow(math.Sin(dLat/2), 2) +
		math.Cos(toRadians(a.Latitude))*math.Cos(toRadians(b.Latitude))*math.Pow(math.Sin(dLon/2), 2)

	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

func toRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
