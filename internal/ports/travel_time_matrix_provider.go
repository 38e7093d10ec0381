package ports

import (
	"context"

	"fixture-trip-planner/internal/domain"
)

// Optional extension of TravelTimeProvider that supports batched lookups.
type TravelTimeMatrixProvider interface {
	TravelTimeProvider
	// Return estimates from one origin to many destinations, keyed by
	// Coordinates.Key. Destinations the provider could not reach are absent.
	EstimateMany(ctx context.Context, from domain.Coordinates, to []domain.Coordinates) (map[string]TravelEstimate, error)
}
