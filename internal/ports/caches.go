package ports

import (
	"context"

	"fixture-trip-planner/internal/domain"
)

// Persistent cache of travel estimates for one origin and many destinations.
// Keys are Coordinates.Key values.
type TravelTimeCache interface {
	GetMany(ctx context.Context, origin string, destinations []string) (map[string]TravelEstimate, error)
	PutMany(ctx context.Context, origin string, results map[string]TravelEstimate) error
}

// Persistent cache mapping normalized address strings to coordinates.
type GeocodeCache interface {
	GetMany(ctx context.Context, addresses []string) (map[string]domain.Coordinates, error)
	PutMany(ctx context.Context, results map[string]domain.Coordinates) error
}
