package ports

import (
	"context"
	"errors"

	"fixture-trip-planner/internal/domain"
)

// ErrNotFound reports that an external lookup returned no result.
var ErrNotFound = errors.New("not found")

// Contract for resolving a free-text place to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (domain.Coordinates, error)
}

// Contract for retrieving the routed geometry of one leg, used for map output.
type RouteTracer interface {
	Trace(ctx context.Context, from, to domain.Coordinates) ([]domain.Coordinates, error)
}
