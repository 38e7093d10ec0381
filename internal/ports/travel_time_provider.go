package ports

import (
	"context"

	"fixture-trip-planner/internal/domain"
)

// Distance and travel duration between two locations.
type TravelEstimate struct {
	DistanceKm float64
	Hours      float64
}

// Contract for estimating travel between two locations.
type TravelTimeProvider interface {
	// Return travel distance and estimated duration from one location to another.
	Estimate(ctx context.Context, from, to domain.Coordinates) (TravelEstimate, error)
}
