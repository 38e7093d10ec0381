package distance

import (
	"context"
	"errors"
	"math"

	"fixture-trip-planner/internal/domain"
	"fixture-trip-planner/internal/ports"
)

const (
	DefaultSpeedKmh      = 60.0
	DefaultEarthRadiusKm = 6372.8
)

// HaversineEstimator converts great-circle distance into hours at a fixed
// average speed. It is deterministic, symmetric and never calls out.
type HaversineEstimator struct {
	SpeedKmh      float64
	EarthRadiusKm float64
}

func NewHaversineEstimator() *HaversineEstimator {
	return &HaversineEstimator{SpeedKmh: DefaultSpeedKmh, EarthRadiusKm: DefaultEarthRadiusKm}
}

// DistanceKm is the great-circle distance between two points.
func (h *HaversineEstimator) DistanceKm(from, to domain.Coordinates) float64 {
	r := h.EarthRadiusKm
	if r <= 0 {
		r = DefaultEarthRadiusKm
	}

	lat1, lat2 := radians(from.Lat), radians(to.Lat)
	dLat := lat2 - lat1
	dLon := radians(to.Lon - from.Lon)

	a := math.Pow(math.Sin(dLat/2), 2) + math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dLon/2), 2)
	return 2 * r * math.Asin(math.Min(1, math.Sqrt(a)))
}

func (h *HaversineEstimator) Estimate(ctx context.Context, from, to domain.Coordinates) (ports.TravelEstimate, error) {
	if err := ctx.Err(); err != nil {
		return ports.TravelEstimate{}, err
	}
	if h.SpeedKmh <= 0 {
		return ports.TravelEstimate{}, errors.New("haversine estimate: speed must be positive")
	}
	if !from.Valid() || !to.Valid() {
		return ports.TravelEstimate{}, errors.New("haversine estimate: invalid coordinates")
	}

	km := h.DistanceKm(from, to)
	return ports.TravelEstimate{DistanceKm: km, Hours: km / h.SpeedKmh}, nil
}

func (h *HaversineEstimator) EstimateMany(
	ctx context.Context,
	from domain.Coordinates,
	to []domain.Coordinates,
) (map[string]ports.TravelEstimate, error) {
	out := make(map[string]ports.TravelEstimate, len(to))
	for _, c := range to {
		est, err := h.Estimate(ctx, from, c)
		if err != nil {
			return nil, err
		}
		out[c.Key()] = est
	}
	return out, nil
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }
