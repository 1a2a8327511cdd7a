package utils

const (
	// Primary fare formula rates.
	BaseFare      = 2.5
	PerKmRate     = 1.5
	PerMinuteRate = 0.3

	// Fallback rates used when the routing provider is unavailable.
	FallbackBaseFare  = 5.0
	FallbackPerKmRate = 1.5
)

// FareEstimate contains the computed distance, duration and fare for a trip.
type FareEstimate struct {
	Distance float64 `json:"distance"` // kilometers
	Duration float64 `json:"duration"` // minutes
	Fare     float64 `json:"fare"`
}

// CalculateFare applies the standard fare formula to a routed
// distance (km) and duration (minutes).
func CalculateFare(distanceKm, durationMin float64) float64 {
	return BaseFare + distanceKm*PerKmRate + durationMin*PerMinuteRate
}

// FallbackEstimate approximates distance, duration and fare from raw
// coordinates when no routing data is available. Duration is assumed to be
// two minutes per kilometer. It always produces a usable estimate.
func FallbackEstimate(pickupLat, pickupLng, dropoffLat, dropoffLng float64) FareEstimate {
	distance := ApproxDistanceKm(pickupLat, pickupLng, dropoffLat, dropoffLng)
	duration := 2 * distance
	fare := FallbackBaseFare + distance*FallbackPerKmRate

	return FareEstimate{
		Distance: Round2(distance),
		Duration: Round2(duration),
		Fare:     Round2(fare),
	}
}
