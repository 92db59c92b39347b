package geo

import (
	"math"
)

// EarthRadiusMeters is the mean Earth radius used for every great-circle computation.
const EarthRadiusMeters = 6371000.0

func degreesToRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// HaversineMeters calculates the great-circle distance between two points in meters.
func HaversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := degreesToRadians(lat1)
	lat2Rad := degreesToRadians(lat2)

	deltaLat := lat2Rad - lat1Rad
	deltaLon := degreesToRadians(lon2 - lon1)

	a := math.Pow(math.Sin(deltaLat/2), 2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Pow(math.Sin(deltaLon/2), 2)

	// clamp rounding noise for antipodal points
	a = math.Min(1, math.Max(0, a))

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}

// ValidCoordinates reports whether lat/lon form a finite, in-range pair.
func ValidCoordinates(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// MetersToLatDegrees converts a north-south distance to degrees of latitude.
func MetersToLatDegrees(m float64) float64 {
	return m / EarthRadiusMeters * 180 / math.Pi
}

// MetersToLonDegrees converts an east-west distance at the given latitude to degrees of longitude.
// Returns 360 near the poles, where any east-west distance spans every meridian.
func MetersToLonDegrees(m, atLat float64) float64 {
	c := math.Cos(degreesToRadians(atLat))
	if c < 1e-9 {
		return 360
	}
	return math.Min(360, m/(EarthRadiusMeters*c)*180/math.Pi)
}
