package utils

import (
	"errors"
	"math"
	"strconv"
)

// DegreesToKm converts a coordinate-degree delta to kilometers. One degree
// is roughly 111 km at the latitudes this service operates in.
const DegreesToKm = 111.0

// ApproxDistanceKm calculates the straight-line distance between two points
// using a planar approximation of the coordinate delta. Good enough for
// city-scale proximity checks and for the fare fallback path.
func ApproxDistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := lat2 - lat1
	dLng := lng2 - lng1
	return math.Sqrt(dLat*dLat+dLng*dLng) * DegreesToKm
}

// IsWithinRadius checks if a point is within a specified radius of another point
func IsWithinRadius(centerLat, centerLng, pointLat, pointLng, radiusKm float64) bool {
	return ApproxDistanceKm(centerLat, centerLng, pointLat, pointLng) < radiusKm
}

// ValidCoordinates reports whether a lat/lng pair is a plausible position.
func ValidCoordinates(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// ParseCoordinates parses lat/lng query strings into a validated pair.
func ParseCoordinates(latStr, lngStr string) (float64, float64, error) {
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return 0, 0, err
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		return 0, 0, err
	}
	if !ValidCoordinates(lat, lng) {
		return 0, 0, errors.New("coordinates out of range")
	}
	return lat, lng, nil
}

// Round2 rounds a value to 2 decimal places before persistence.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
