package services

import (
	"context"
	"log"

	"github.com/karmanya-engineer/uber-clone/pkg/utils"
)

// FareEstimator produces a distance/duration/fare triple for a trip. It
// prefers the routing provider and falls back to a straight-line
// approximation on any failure, so Estimate never returns an error.
// There is no retry; the fallback is the retry policy.
type FareEstimator struct {
	Routing RoutingService
}

func NewFareEstimator(routing RoutingService) *FareEstimator {
	return &FareEstimator{Routing: routing}
}

// Estimate computes the fare for a pickup/dropoff pair.
func (e *FareEstimator) Estimate(ctx context.Context, pickupLat, pickupLng, dropoffLat, dropoffLng float64) utils.FareEstimate {
	if e.Routing != nil {
		meters, seconds, err := e.Routing.Route(ctx, pickupLat, pickupLng, dropoffLat, dropoffLng)
		if err == nil {
			distance := meters / 1000
			duration := seconds / 60
			return utils.FareEstimate{
				Distance: utils.Round2(distance),
				Duration: utils.Round2(duration),
				Fare:     utils.Round2(utils.CalculateFare(distance, duration)),
			}
		}
		log.Printf("Routing service unavailable, using fallback estimate: %v", err)
	}

	return utils.FallbackEstimate(pickupLat, pickupLng, dropoffLat, dropoffLng)
}
